// Package notify is the push-notification collaborator. Delivery is
// fire-and-forget: failures are logged and never propagated to the caller.
package notify

import "context"

// Notifier sends a push notification to a device token with a structured
// data payload alongside the visible title/body.
type Notifier interface {
	Push(ctx context.Context, deviceToken, title, body string, data map[string]string) error
}

// Noop drops every notification. Used when FCM credentials are not configured
// and in tests.
type Noop struct{}

func (Noop) Push(ctx context.Context, deviceToken, title, body string, data map[string]string) error {
	return nil
}
