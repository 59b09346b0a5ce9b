package db

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"salonhub-backend/internal/config"
)

// Firestore wraps the Firebase app and the Firestore client built from it.
type Firestore struct {
	App    *firebase.App
	Client *firestore.Client
}

// New initialises the Firebase app and verifies Firestore is reachable.
func New(ctx context.Context, cfg config.Config) (*Firestore, error) {
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID}, firebaseOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firestore: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	fs := &Firestore{App: app, Client: client}
	if err := fs.Health(pingCtx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("firestore ping failed: %w", err)
	}
	return fs, nil
}

// Auth returns the Firebase Auth client used to verify admin ID tokens.
func (f *Firestore) Auth(ctx context.Context) (*auth.Client, error) {
	return f.App.Auth(ctx)
}

// Messaging returns the FCM client of the same Firebase app.
func (f *Firestore) Messaging(ctx context.Context) (*messaging.Client, error) {
	return f.App.Messaging(ctx)
}

func (f *Firestore) Close() {
	if f.Client != nil {
		_ = f.Client.Close()
	}
}

// Health checks Firestore connectivity with a cheap single-document read.
func (f *Firestore) Health(ctx context.Context) error {
	_, err := f.Client.Collection("branches").Limit(1).Documents(ctx).GetAll()
	return err
}

// IsNotFound reports whether err is a Firestore NotFound status.
func IsNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// IsCanceled reports whether err is a context or gRPC cancellation.
func IsCanceled(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	c := status.Code(err)
	return c == codes.Canceled || c == codes.DeadlineExceeded
}

func firebaseOptions(cfg config.Config) []option.ClientOption {
	if cfg.FirebaseCredFile == "" {
		return nil
	}

	cred := cfg.FirebaseCredFile
	// Allow inline JSON or base64-encoded JSON in env to avoid writing a file.
	if strings.HasPrefix(strings.TrimSpace(cred), "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(cred))}
	}
	if decoded, err := base64.StdEncoding.DecodeString(cred); err == nil && strings.HasPrefix(strings.TrimSpace(string(decoded)), "{") {
		return []option.ClientOption{option.WithCredentialsJSON(decoded)}
	}

	return []option.ClientOption{option.WithCredentialsFile(cred)}
}
