package cli

import (
	"context"
	"fmt"

	"github.com/truthdare/truthdare-api/internal/config"
	"github.com/truthdare/truthdare-api/internal/content"
	"github.com/truthdare/truthdare-api/internal/source"
	"github.com/truthdare/truthdare-api/internal/source/sqldb"
)

// openSource builds the content source cfg.Source names. The returned close
// function releases whatever the source holds and is never nil.
func openSource(ctx context.Context, cfg config.Config) (content.Source, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Source {
	case config.SourceFile:
		return source.NewFileSource(cfg.TruthsFile, cfg.DaresFile), noop, nil

	case config.SourceHTTP:
		src := source.NewHTTPSource(ctx, cfg.TruthsURL, cfg.DaresURL, source.OAuthConfig{
			TokenURL:     cfg.OAuthTokenURL,
			ClientID:     cfg.OAuthClientID,
			ClientSecret: cfg.OAuthClientSecret,
		})
		return src, noop, nil

	case config.SourceSQLite, config.SourcePostgres:
		db, err := openDB(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown source %q", cfg.Source)
}

// openDB opens the configured database and makes sure the tables exist.
func openDB(ctx context.Context, cfg config.Config) (*sqldb.DB, error) {
	driver := sqldb.DriverSQLite
	if cfg.Source == config.SourcePostgres {
		driver = sqldb.DriverPostgres
	}

	db, err := sqldb.New(driver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// newCache builds an uninitialized cache over the configured source.
func newCache(ctx context.Context, cfg config.Config) (*content.Cache, func() error, error) {
	src, closeFn, err := openSource(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return content.NewCache(content.NewLoader(src, cfg.LoadTimeout)), closeFn, nil
}
