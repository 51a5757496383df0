package database

import (
	"context"
	"fmt"
	"os"

	"clipsynq/config"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/db"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

var _ Client = (*FirebaseClient)(nil)

// Scopes required by the Realtime Database REST streaming endpoint.
var streamScopes = []string{
	"https://www.googleapis.com/auth/firebase.database",
	"https://www.googleapis.com/auth/userinfo.email",
}

// FirebaseClient implements Client on top of the Firebase Admin SDK. Reads
// and writes go through the SDK; Watch streams the REST protocol directly
// because the Admin SDK exposes no listener API.
type FirebaseClient struct {
	db          *db.Client
	databaseURL string
	tokens      oauth2.TokenSource
}

// NewFirebaseClient initialises the Firebase app and database client from
// the loaded configuration.
func NewFirebaseClient(ctx context.Context) (*FirebaseClient, error) {
	credsFile := config.AppConfig.FirebaseCredentialsFile
	dbURL := config.AppConfig.FirebaseDatabaseURL
	if dbURL == "" {
		return nil, fmt.Errorf("firebase: FIREBASE_DATABASE_URL is not set")
	}

	opt := option.WithCredentialsFile(credsFile)
	app, err := firebase.NewApp(ctx, &firebase.Config{DatabaseURL: dbURL}, opt)
	if err != nil {
		return nil, fmt.Errorf("firebase: error initializing app: %w", err)
	}

	dbClient, err := app.Database(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase: error getting Database client: %w", err)
	}

	data, err := os.ReadFile(credsFile)
	if err != nil {
		return nil, fmt.Errorf("firebase: failed to read credentials: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, data, streamScopes...)
	if err != nil {
		return nil, fmt.Errorf("firebase: failed to parse credentials: %w", err)
	}

	return &FirebaseClient{
		db:          dbClient,
		databaseURL: dbURL,
		tokens:      creds.TokenSource,
	}, nil
}

func (c *FirebaseClient) Get(ctx context.Context, path string, v any) error {
	if err := c.db.NewRef(path).Get(ctx, v); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return nil
}

func (c *FirebaseClient) Set(ctx context.Context, path string, v any) error {
	if err := c.db.NewRef(path).Set(ctx, v); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func (c *FirebaseClient) Update(ctx context.Context, path string, fields map[string]any) error {
	if err := c.db.NewRef(path).Update(ctx, fields); err != nil {
		return fmt.Errorf("failed to update %s: %w", path, err)
	}
	return nil
}

func (c *FirebaseClient) Delete(ctx context.Context, path string) error {
	if err := c.db.NewRef(path).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete %s: %w", path, err)
	}
	return nil
}

func (c *FirebaseClient) Push(ctx context.Context, path string, v any) (string, error) {
	ref, err := c.db.NewRef(path).Push(ctx, v)
	if err != nil {
		return "", fmt.Errorf("failed to push under %s: %w", path, err)
	}
	return ref.Key, nil
}
