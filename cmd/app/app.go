// @title						Storefront API
// @version					1.0
// @description				Каталог, корзина сессии и админка магазина
// @BasePath					/api/v1
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/DRSN-tech/storefront/internal/app"
	config "github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/DRSN-tech/storefront/pkg/postgres"
	"github.com/spf13/cobra"
)

const defaultMigrationsURL = "file://db/migrations"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Storefront backend: catalog, session carts and admin API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd(), newMigrateCmd())
	return root
}

func newServeCmd() *cobra.Command {
	var (
		migrationsURL string
		skipMigrate   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run HTTP and gRPC servers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fail(nil, err, "failed to load config")
			}

			log, err := logger.NewZapLogger(cfg.LogLevel)
			if err != nil {
				return fail(nil, err, "failed to initialize logger")
			}
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if skipMigrate {
				migrationsURL = ""
			}

			application, err := app.NewApp(ctx, cfg, log, migrationsURL)
			if err != nil {
				return fail(log, err, "failed to initialize app")
			}

			if err := application.Run(ctx); err != nil {
				return fail(log, err, "application stopped with error")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&migrationsURL, "migrations", defaultMigrationsURL, "migrations source URL")
	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not apply migrations on startup")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	var migrationsURL string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, err := logger.NewZapLogger(os.Getenv("LOG_LEVEL"))
			if err != nil {
				log, _ = logger.NewZapLogger("info")
			}
			defer func() { _ = log.Sync() }()

			dbCfg, err := config.LoadPGDBCfg()
			if err != nil {
				return fail(log, err, "failed to load database config")
			}

			if err := postgres.RunMigrations(postgres.DSN(dbCfg), migrationsURL, log); err != nil {
				return fail(log, err, "failed to run migrations")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&migrationsURL, "migrations", defaultMigrationsURL, "migrations source URL")
	return cmd
}

// fail пишет ошибку в лог (или в stderr, если логгера ещё нет) и возвращает её.
func fail(log logger.Logger, err error, msg string) error {
	if log == nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
		return err
	}

	log.Errorf(err, "%s", msg)
	return err
}
