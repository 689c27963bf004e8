package ports

import "context"

// Notifier defines a transport for human-readable status messages.
// Delivery is best-effort; the dispatcher swallows transport failures so the
// trading loop never stalls on a notification.
type Notifier interface {
	// Send delivers a text message. Returns an error if delivery fails.
	Send(ctx context.Context, text string) error
}
