package ports

import (
	"context"

	"github.com/mikey/keyword-tagger/internal/core"
)

// RunNotifier defines the interface for reporting a finished run
type RunNotifier interface {
	// Notify sends the summary of a completed or aborted run
	Notify(ctx context.Context, summary *core.RunSummary) error
}
