package auth

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	firebase "firebase.google.com/go"
	fbAuth "firebase.google.com/go/auth"
	"google.golang.org/api/option"
)

// InitFirebaseApp initializes the Firebase Admin SDK app using the
// GOOGLE_APPLICATION_CREDENTIALS environment variable for service account JSON.
// Returns nil if credentials are missing; callers treat a nil app as "Firebase
// features disabled".
func InitFirebaseApp(ctx context.Context) (*firebase.App, error) {
	cred := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	if cred == "" {
		// Local dev convenience: if a Firebase Admin service account json exists in the
		// working directory, use it. This is intentionally best-effort.
		matches, _ := filepath.Glob("*firebase-adminsdk*.json")
		switch len(matches) {
		case 0:
			return nil, nil
		case 1:
			cred = matches[0]
		default:
			return nil, errors.New("multiple firebase service account json files found in working directory; set GOOGLE_APPLICATION_CREDENTIALS explicitly")
		}
	}
	return firebase.NewApp(ctx, nil, option.WithCredentialsFile(cred))
}

// InitFirebaseAuth returns an auth client from an initialized app, or nil when
// the app itself is nil.
func InitFirebaseAuth(ctx context.Context, app *firebase.App) (*fbAuth.Client, error) {
	if app == nil {
		return nil, nil
	}
	return app.Auth(ctx)
}
