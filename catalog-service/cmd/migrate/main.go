package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"storefront/catalog-service/internal/app/catalog/config"
	"storefront/catalog-service/migrations"
)

var dsn string

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the catalog database schema",
	Long: `Apply or roll back the catalog schema migrations embedded into the binary.

The connection is taken from --dsn or from the DB_* environment variables
(an optional .env file is read first).

Examples:
  migrate up                 # apply all pending migrations
  migrate down               # roll back the last migration
  migrate up-to 3            # migrate up to version 3
  migrate status             # show applied and pending migrations`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dsn, "dsn", "", "PostgreSQL connection string (defaults to DB_* env)")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: withDB(func(ctx context.Context, db *sql.DB, _ []string) error {
				return goose.UpContext(ctx, db, ".")
			}),
		},
		&cobra.Command{
			Use:   "up-to VERSION",
			Short: "Apply migrations up to VERSION",
			Args:  cobra.ExactArgs(1),
			RunE: withDB(func(ctx context.Context, db *sql.DB, args []string) error {
				version, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid version %q: %w", args[0], err)
				}
				return goose.UpToContext(ctx, db, ".", version)
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			Args:  cobra.NoArgs,
			RunE: withDB(func(ctx context.Context, db *sql.DB, _ []string) error {
				return goose.DownContext(ctx, db, ".")
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "Print the status of all migrations",
			Args:  cobra.NoArgs,
			RunE: withDB(func(ctx context.Context, db *sql.DB, _ []string) error {
				return goose.StatusContext(ctx, db, ".")
			}),
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			Args:  cobra.NoArgs,
			RunE: withDB(func(ctx context.Context, db *sql.DB, _ []string) error {
				return goose.VersionContext(ctx, db, ".")
			}),
		},
	)
}

// withDB открывает соединение и настраивает goose на встроенные миграции
func withDB(run func(ctx context.Context, db *sql.DB, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		connString := dsn
		if connString == "" {
			dbCfg := config.LoadDatabase()
			connString = dbCfg.DSN()
		}

		db, err := sql.Open("postgres", connString)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		if err := db.PingContext(cmd.Context()); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}

		goose.SetBaseFS(migrations.FS)
		if err := goose.SetDialect("postgres"); err != nil {
			return err
		}

		return run(cmd.Context(), db, args)
	}
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
