package factory

import (
	"github.com/mikey/keyword-tagger/internal/adapters/notify"
	"github.com/mikey/keyword-tagger/internal/config"
	"github.com/mikey/keyword-tagger/internal/ports"
	"go.uber.org/zap"
)

// NotifierFactory creates run notifiers
type NotifierFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewNotifierFactory creates a new notifier factory
func NewNotifierFactory(cfg *config.Config, logger *zap.Logger) *NotifierFactory {
	return &NotifierFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateRunNotifier returns the SMTP notifier when mail reports are enabled
// and the log notifier otherwise
func (f *NotifierFactory) CreateRunNotifier() (ports.RunNotifier, error) {
	notifyCfg := f.cfg.GetNotify()
	if !notifyCfg.Enabled {
		return notify.NewLogNotifier(f.logger), nil
	}
	return notify.NewSMTPNotifier(notifyCfg, f.logger)
}
