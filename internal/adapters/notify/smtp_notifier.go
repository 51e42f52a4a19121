package notify

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/mikey/keyword-tagger/internal/config"
	"github.com/mikey/keyword-tagger/internal/core"
	"go.uber.org/zap"
)

// SMTPNotifier mails a run summary to a fixed list of recipients
type SMTPNotifier struct {
	address       string
	username      string
	password      string
	from          string
	to            []string
	subjectPrefix string
	logger        *zap.Logger
	dialTimeout   time.Duration
}

// NewSMTPNotifier creates a new SMTP notifier
func NewSMTPNotifier(cfg config.NotifyConfig, logger *zap.Logger) (*SMTPNotifier, error) {
	if len(cfg.To) == 0 {
		return nil, fmt.Errorf("notify.to must list at least one recipient")
	}
	return &SMTPNotifier{
		address:       cfg.SMTPAddress,
		username:      cfg.Username,
		password:      cfg.Password,
		from:          cfg.From,
		to:            cfg.To,
		subjectPrefix: cfg.SubjectPrefix,
		logger:        logger,
		dialTimeout:   10 * time.Second,
	}, nil
}

// Notify sends the summary over SMTP
func (n *SMTPNotifier) Notify(ctx context.Context, summary *core.RunSummary) error {
	dialer := net.Dialer{Timeout: n.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", n.address)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}

	deadline := time.Now().Add(30 * time.Second)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}
	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}

	if n.username != "" {
		if err := c.Auth(sasl.NewPlainClient("", n.username, n.password)); err != nil {
			return fmt.Errorf("AUTH failed: %w", err)
		}
	}

	if err := c.Mail(n.from, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	recipientOK := false
	for _, recipient := range n.to {
		if err := c.Rcpt(recipient, nil); err != nil {
			n.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
		} else {
			recipientOK = true
		}
	}
	if !recipientOK {
		return fmt.Errorf("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(n.message(summary)); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send message data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		n.logger.Warn("QUIT command failed", zap.Error(err))
	}

	n.logger.Info("Run report sent", zap.Strings("to", n.to), zap.String("run_id", summary.RunID))
	return nil
}

func (n *SMTPNotifier) message(summary *core.RunSummary) []byte {
	status := "completed"
	if summary.Aborted {
		status = "aborted"
	}
	subject := strings.TrimSpace(fmt.Sprintf("%s run %s %s", n.subjectPrefix, summary.RunID, status))

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", n.from)
	fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(n.to, ", "))
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(strings.ReplaceAll(FormatSummary(summary), "\n", "\r\n"))
	return buf.Bytes()
}

// FormatSummary renders a run summary as plain text
func FormatSummary(summary *core.RunSummary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Run ID: %s\n", summary.RunID)
	fmt.Fprintf(&sb, "Model: %s\n", summary.Model)
	fmt.Fprintf(&sb, "Started: %s\n", summary.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(&sb, "Duration: %s\n", summary.Duration().Round(time.Second))
	fmt.Fprintf(&sb, "Aborted: %t\n", summary.Aborted)
	fmt.Fprintf(&sb, "Keyword sets: %d\n", summary.KeywordSets)
	fmt.Fprintf(&sb, "Rows annotated: %d\n", summary.RowsProcessed)
	fmt.Fprintf(&sb, "Rows skipped: %d\n", summary.RowsSkipped)
	fmt.Fprintf(&sb, "Rows failed: %d\n", summary.RowsFailed)
	fmt.Fprintf(&sb, "Sheets written: %d\n", summary.SheetsWritten)
	fmt.Fprintf(&sb, "Sheets failed: %d\n", summary.SheetsFailed)
	fmt.Fprintf(&sb, "Files skipped: %d\n", summary.FilesSkipped)
	if len(summary.FailureMessages) > 0 {
		sb.WriteString("\nFailures:\n")
		for _, msg := range summary.FailureMessages {
			fmt.Fprintf(&sb, "- %s\n", msg)
		}
	}
	return sb.String()
}
