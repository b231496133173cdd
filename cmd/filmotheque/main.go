// Command filmotheque serves the film catalogue API.
//
//	filmotheque        serve until SIGINT or SIGTERM
//	filmotheque seed   load the bundled films into the store and exit
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/kbukum/filmotheque/account"
	"github.com/kbukum/filmotheque/auth/password"
	"github.com/kbukum/filmotheque/bootstrap"
	"github.com/kbukum/filmotheque/film"
	"github.com/kbukum/filmotheque/logger"
	"github.com/kbukum/filmotheque/observability"
	"github.com/kbukum/filmotheque/resource"
	"github.com/kbukum/filmotheque/server"
	"github.com/kbukum/filmotheque/server/endpoint"
	"github.com/kbukum/filmotheque/server/middleware"
	"github.com/kbukum/filmotheque/version"
)

const serviceName = "filmotheque"

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Version == "" {
		cfg.Version = version.GetVersionInfo().Version
	}

	app, err := bootstrap.NewApp(cfg)
	if err != nil {
		return err
	}

	backend, err := resource.Open(cfg.Store, app.Logger)
	if err != nil {
		return err
	}
	for _, c := range backend.Components {
		if err := app.RegisterComponent(c); err != nil {
			return err
		}
	}
	if err := app.RegisterComponent(observability.NewComponent(cfg.Observability, app.Name, app.Version, cfg.Environment, app.Logger)); err != nil {
		return err
	}

	app.OnStart(warmUp(backend.Store, cfg.Store.Driver, app.Logger))

	if len(args) > 0 && args[0] == "seed" {
		repo := film.NewRepository(backend.Store)
		return app.RunTask(ctx, func(ctx context.Context) error {
			added, err := repo.Seed(ctx)
			if err != nil {
				return err
			}
			app.Logger.Info("Films seeded", logger.Fields("added", len(added)))
			return nil
		})
	}
	if len(args) > 0 {
		return fmt.Errorf("unknown command %q", args[0])
	}

	srv := server.New(cfg.Server, app.Logger)
	if err := mount(ctx, srv, cfg, backend.Store, app.Components.HealthAll, app.Logger); err != nil {
		return err
	}
	// The server goes last so it only accepts requests once the store is up.
	if err := app.RegisterComponent(server.NewComponent(srv)); err != nil {
		return err
	}

	app.OnReady(func(context.Context) error {
		app.Logger.Info("Authentication configured", logger.Fields("auth", cfg.Auth.Describe()))
		return nil
	})
	return app.Run(ctx)
}

// warmUp reads from the film collection once the store components are up,
// so a misconfigured store fails startup instead of the first request.
func warmUp(store resource.Store, driver string, log *logger.Logger) bootstrap.Hook {
	return func(ctx context.Context) error {
		docs, err := store.Query(ctx, film.Collection, resource.Query{Limit: 1})
		if err != nil {
			return fmt.Errorf("store warm-up: %w", err)
		}
		log.Info("Store ready", logger.Fields("driver", driver, "catalogue_empty", len(docs) == 0))
		return nil
	}
}

// mount wires the account and film services onto srv. Routes are fixed
// before the server starts; the store is only used once requests arrive.
func mount(ctx context.Context, srv *server.Server, cfg *Config, store resource.Store, checker endpoint.HealthChecker, log *logger.Logger) error {
	metrics, err := observability.NewMetrics(observability.Meter(serviceName))
	if err != nil {
		return err
	}

	tokens, err := account.NewTokenService(cfg.Auth.JWT)
	if err != nil {
		return fmt.Errorf("token service: %w", err)
	}
	accounts := account.NewService(
		account.NewRepository(store),
		password.NewHasher(cfg.Auth.Password),
		tokens,
		account.WithMetrics(metrics),
		account.WithLogger(log),
	)

	srv.ApplyDefaults(cfg.Name, checker, metrics)

	engine := srv.Engine()
	users := engine.Group("", middleware.RateLimit(ctx, cfg.Server.RateLimit))
	account.NewHandler(accounts).RegisterRoutes(users)

	gate := middleware.Auth(accounts, log)
	film.NewHandler(film.NewRepository(store), log).RegisterRoutes(engine, gate)
	return nil
}
