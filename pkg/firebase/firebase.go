package firebase

import (
	"context"

	"location-service/config"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/db"
	"google.golang.org/api/option"
)

// SetUpFireBase initializes the Firebase app and returns the Realtime
// Database client for the configured database URL.
func SetUpFireBase(cfg *config.Config) (*firebase.App, *db.Client, error) {
	ctx := context.Background()

	conf := &firebase.Config{
		DatabaseURL: cfg.FirebaseDatabaseURL,
	}

	var opts []option.ClientOption
	if cfg.FirebaseCredentials != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.FirebaseCredentials))
	}

	app, err := firebase.NewApp(ctx, conf, opts...)
	if err != nil {
		return nil, nil, err
	}

	client, err := app.Database(ctx)
	if err != nil {
		return nil, nil, err
	}

	return app, client, nil
}
