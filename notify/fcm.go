package notify

import (
	"context"
	"log"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/messaging"
)

// FCMNotifier pushes through Firebase Cloud Messaging using the Admin SDK.
type FCMNotifier struct {
	client *messaging.Client
}

// NewFCMNotifier builds a notifier from an initialized Firebase app.
func NewFCMNotifier(ctx context.Context, app *firebase.App) (*FCMNotifier, error) {
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, err
	}
	return &FCMNotifier{client: client}, nil
}

func (n *FCMNotifier) Push(ctx context.Context, deviceToken, title, body string, data map[string]string) error {
	if deviceToken == "" {
		log.Printf("fcm: no device token; drop notification %q", title)
		return nil
	}
	msg := &messaging.Message{
		Token: deviceToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}
	if _, err := n.client.Send(ctx, msg); err != nil {
		log.Printf("fcm: send to %s failed: %v", deviceToken, err)
		return err
	}
	return nil
}
