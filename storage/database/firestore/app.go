package firestoredb

import (
	"context"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/pkg/errors"
	"google.golang.org/api/option"

	"github.com/trezcool/edusite/core"
)

// NewApp initializes the Firebase app shared by the document store and the auth service.
func NewApp(ctx context.Context, conf *core.Config) (*firebase.App, error) {
	var opts []option.ClientOption
	if conf.Store.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(conf.Store.CredentialsFile))
	}
	var fbConf *firebase.Config
	if conf.Store.ProjectID != "" {
		fbConf = &firebase.Config{ProjectID: conf.Store.ProjectID}
	}

	app, err := firebase.NewApp(ctx, fbConf, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "initializing firebase app")
	}
	return app, nil
}

// Open returns a document store on the app's Firestore database.
func Open(ctx context.Context, app *firebase.App, logger core.Logger) (*DB, error) {
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "initializing firestore")
	}
	return NewDB(client, logger), nil
}

// NewDB wraps an existing Firestore client.
func NewDB(client *firestore.Client, logger core.Logger) *DB {
	return &DB{client: client, logger: logger}
}
