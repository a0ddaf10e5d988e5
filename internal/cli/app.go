package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"

	"github.com/AntonStoeckl/library-circulation/circulation"
	"github.com/AntonStoeckl/library-circulation/circulation/memoryengine"
	"github.com/AntonStoeckl/library-circulation/circulation/oteladapters"
	"github.com/AntonStoeckl/library-circulation/circulation/postgresengine"
	"github.com/AntonStoeckl/library-circulation/circulation/sqliteengine"
	"github.com/AntonStoeckl/library-circulation/shell/config"
	"github.com/AntonStoeckl/library-circulation/sweep"
)

const serviceName = "library-circulation"

// Version is set at build time with -ldflags "-X ...cli.Version=...".
var Version = "dev"

// Observability bundles the collectors handed to stores, the engine and the handler wrappers.
// Unset fields stay nil interfaces.
type Observability struct {
	Logger           *slog.Logger
	ContextualLogger circulation.ContextualLogger
	Metrics          circulation.MetricsCollector
	Tracing          circulation.TracingCollector
}

// App is the wired service: one store, one sweep engine and their observability.
type App struct {
	Config        config.AppConfig
	Store         circulation.Store
	Engine        *sweep.Engine
	Observability Observability
	migrate       func(ctx context.Context) error
	closers       []func() error
}

// NewApp opens the configured store and builds the sweep engine. Logs go to logOut.
func NewApp(ctx context.Context, cfg config.AppConfig, logOut io.Writer) (*App, error) {
	app := &App{Config: cfg}

	obs, err := app.newObservability(ctx, logOut)
	if err != nil {
		return nil, err
	}

	app.Observability = obs

	if err = app.openStore(ctx); err != nil {
		return nil, errors.Join(err, app.Close())
	}

	engine, err := sweep.NewEngine(app.Store, engineOptions(cfg, obs)...)
	if err != nil {
		return nil, errors.Join(err, app.Close())
	}

	app.Engine = engine

	return app, nil
}

// Migrate creates the schema of SQL stores. It does nothing for the memory store.
func (a *App) Migrate(ctx context.Context) error {
	if a.migrate == nil {
		return nil
	}

	return a.migrate(ctx)
}

// Close releases the store connections and flushes telemetry, in reverse order of creation.
func (a *App) Close() error {
	var errs []error

	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}

	a.closers = nil

	return errors.Join(errs...)
}

func (a *App) newObservability(ctx context.Context, logOut io.Writer) (Observability, error) {
	obs := Observability{
		Logger: slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: a.Config.LogLevel})),
	}

	if !a.Config.OTELEnabled {
		return obs, nil
	}

	providers, err := config.NewObservabilityProviders(ctx, a.Config, Version)
	if err != nil {
		return Observability{}, err
	}

	a.closers = append(a.closers, providers.Shutdown)

	obs.Metrics = oteladapters.NewMetricsCollector(otel.Meter(serviceName))
	obs.Tracing = oteladapters.NewTracingCollector(otel.Tracer(serviceName))
	obs.ContextualLogger = oteladapters.NewSlogBridgeLogger(serviceName)

	return obs, nil
}

func (a *App) openStore(ctx context.Context) error {
	switch a.Config.Store {
	case config.StoreMemory:
		store, err := memoryengine.NewStore(memoryengine.WithLogger(a.Observability.Logger))
		if err != nil {
			return err
		}

		a.Store = store

		return nil

	case config.StoreSQLite:
		return a.openSQLite(ctx)

	case config.StorePostgres:
		return a.openPostgres(ctx)

	default:
		return config.ErrUnsupportedStore
	}
}

func (a *App) openSQLite(ctx context.Context) error {
	db, err := sqliteengine.OpenDB(ctx, a.Config.SQLitePath)
	if err != nil {
		return err
	}

	a.closers = append(a.closers, db.Close)
	options := sqliteOptions(a.Observability)

	var store sqliteengine.Store
	if a.Config.DBAdapter == config.AdapterSQLX {
		store, err = sqliteengine.NewStoreFromSQLX(sqlx.NewDb(db, sqliteengine.DriverName), options...)
	} else {
		store, err = sqliteengine.NewStoreFromSQLDB(db, options...)
	}

	if err != nil {
		return err
	}

	a.Store = store
	a.migrate = store.Migrate

	return nil
}

func (a *App) openPostgres(ctx context.Context) error {
	var (
		store postgresengine.Store
		err   error
	)

	options := postgresOptions(a.Observability)

	switch a.Config.DBAdapter {
	case config.AdapterSQL:
		db, openErr := config.PostgresSQLDB(ctx, a.Config.PostgresDSN)
		if openErr != nil {
			return openErr
		}

		a.closers = append(a.closers, db.Close)
		store, err = postgresengine.NewStoreFromSQLDB(db, options...)

	case config.AdapterSQLX:
		db, openErr := config.PostgresSQLX(ctx, a.Config.PostgresDSN)
		if openErr != nil {
			return openErr
		}

		a.closers = append(a.closers, db.Close)
		store, err = postgresengine.NewStoreFromSQLX(db, options...)

	default:
		poolConfig, configErr := config.PostgresPGXPoolConfig(a.Config.PostgresDSN)
		if configErr != nil {
			return configErr
		}

		pool, openErr := pgxpool.NewWithConfig(ctx, poolConfig)
		if openErr != nil {
			return openErr
		}

		a.closers = append(a.closers, func() error {
			pool.Close()
			return nil
		})

		if pingErr := pool.Ping(ctx); pingErr != nil {
			return pingErr
		}

		store, err = postgresengine.NewStoreFromPGXPool(pool, options...)
	}

	if err != nil {
		return err
	}

	a.Store = store
	a.migrate = store.Migrate

	return nil
}

func sqliteOptions(obs Observability) []sqliteengine.Option {
	options := []sqliteengine.Option{sqliteengine.WithLogger(obs.Logger)}

	if obs.ContextualLogger != nil {
		options = append(options, sqliteengine.WithContextualLogger(obs.ContextualLogger))
	}

	if obs.Metrics != nil {
		options = append(options, sqliteengine.WithMetrics(obs.Metrics))
	}

	if obs.Tracing != nil {
		options = append(options, sqliteengine.WithTracing(obs.Tracing))
	}

	return options
}

func postgresOptions(obs Observability) []postgresengine.Option {
	options := []postgresengine.Option{postgresengine.WithLogger(obs.Logger)}

	if obs.ContextualLogger != nil {
		options = append(options, postgresengine.WithContextualLogger(obs.ContextualLogger))
	}

	if obs.Metrics != nil {
		options = append(options, postgresengine.WithMetrics(obs.Metrics))
	}

	if obs.Tracing != nil {
		options = append(options, postgresengine.WithTracing(obs.Tracing))
	}

	return options
}

func engineOptions(cfg config.AppConfig, obs Observability) []sweep.Option {
	options := []sweep.Option{
		sweep.WithTimeout(cfg.SweepTimeout),
		sweep.WithLogger(obs.Logger),
	}

	if obs.ContextualLogger != nil {
		options = append(options, sweep.WithContextualLogger(obs.ContextualLogger))
	}

	if obs.Metrics != nil {
		options = append(options, sweep.WithMetrics(obs.Metrics))
	}

	if obs.Tracing != nil {
		options = append(options, sweep.WithTracing(obs.Tracing))
	}

	return options
}
