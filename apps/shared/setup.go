// Package shared holds the start-up wiring common to the api server and the admin CLI.
package shared

import (
	"context"
	"database/sql"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/edusite/core"
	"github.com/trezcool/edusite/core/user"
	authsvc "github.com/trezcool/edusite/services/auth"
	logsvc "github.com/trezcool/edusite/services/logger"
	"github.com/trezcool/edusite/storage/database"
	firestoredb "github.com/trezcool/edusite/storage/database/firestore"
	inmemdb "github.com/trezcool/edusite/storage/database/inmem"
	pgdb "github.com/trezcool/edusite/storage/database/postgres"
)

// Backend is everything opened from the configured store.
type Backend struct {
	Store core.DocumentStore
	Auth  user.Authenticator

	Directory user.Directory // firestore only
	Tokens    *authsvc.Local // self-hosted backends only
	SQL       *sql.DB        // postgres only
}

// NewLogger returns the rollbar logger backed by zap.
func NewLogger(conf *core.Config) (*logsvc.RollbarLogger, error) {
	sugar, err := logsvc.NewZapLogger(conf)
	if err != nil {
		return nil, errors.Wrap(err, "setting up zap")
	}
	return logsvc.NewRollbarLogger(sugar, conf), nil
}

// NewValidator returns a validator with every custom rule and translation registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	return validate, translator
}

// OpenBackend opens the configured document store and the identity provider that goes with it.
// Firebase Auth goes with the hosted backend; the others verify tokens signed with the app's secret key.
func OpenBackend(ctx context.Context, conf *core.Config, logger core.Logger, migrate bool) (*Backend, error) {
	switch conf.Store.Backend {
	case core.StoreMemory:
		logger.Warn("using the in-memory document store: data is lost on exit")
		tokens := authsvc.NewLocal(conf)
		return &Backend{Store: inmemdb.NewDB(), Auth: tokens, Tokens: tokens}, nil

	case core.StorePostgres:
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}
		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}
		if migrate {
			if err = database.Migrate(db.DB); err != nil {
				_ = db.Close()
				return nil, err
			}
		}
		store, err := pgdb.NewDB(db, database.URL(conf), logger)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		tokens := authsvc.NewLocal(conf)
		return &Backend{Store: store, Auth: tokens, Tokens: tokens, SQL: db.DB}, nil

	case core.StoreFirestore:
		app, err := firestoredb.NewApp(ctx, conf)
		if err != nil {
			return nil, err
		}
		store, err := firestoredb.Open(ctx, app, logger)
		if err != nil {
			return nil, err
		}
		fb, err := authsvc.NewFirebase(ctx, app)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		return &Backend{Store: store, Auth: fb, Directory: fb}, nil
	}
	return nil, errors.Errorf("unknown store backend %q", conf.Store.Backend)
}
