// Package notification delivers human-readable status messages to an
// operator over a best-effort transport (Telegram in production).
package notification

import (
	"context"

	"cryptoSwingBot/internal/ports"
)

// LogNotifier writes messages to the application log. Used in development
// and whenever no Telegram credentials are configured.
type LogNotifier struct {
	logger ports.Logger
}

// NewLogNotifier creates a log-based notifier.
func NewLogNotifier(logger ports.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Send logs the message instead of delivering it externally.
func (n *LogNotifier) Send(ctx context.Context, text string) error {
	n.logger.Info(ctx, "Notification", map[string]interface{}{"text": text})
	return nil
}

// Dispatcher wraps a Notifier with the swallow-and-log delivery policy: a
// transport failure is logged and never propagated, so the trading loop
// cannot stall or abort because a notification failed. There is no retry
// and no queuing.
type Dispatcher struct {
	notifier ports.Notifier
	logger   ports.Logger
}

// NewDispatcher creates a dispatcher over the given transport.
func NewDispatcher(notifier ports.Notifier, logger ports.Logger) *Dispatcher {
	return &Dispatcher{notifier: notifier, logger: logger}
}

// Notify delivers text on a best-effort basis.
func (d *Dispatcher) Notify(ctx context.Context, text string) {
	if err := d.notifier.Send(ctx, text); err != nil {
		d.logger.Warn(ctx, "Notification delivery failed", map[string]interface{}{
			"error": err.Error(),
			"text":  text,
		})
	}
}
