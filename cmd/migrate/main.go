package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"

	"github.com/MikeMC777/ecom-returns/internal/config"
)

const versionTimeFormat = "20060102150405"

func main() {
	cfg := config.Load()

	rootCmd := &cobra.Command{Use: "migrate", Short: "manage the ecom database schema"}
	rootCmd.PersistentFlags().StringVar(&cfg.MigrationsDir, "dir", cfg.MigrationsDir, "migrations directory")
	rootCmd.PersistentFlags().StringVar(&cfg.PostgresDSN, "dsn", cfg.PostgresDSN, "postgres connection string")
	rootCmd.AddCommand(
		createCommand(&cfg),
		upCommand(&cfg),
		downCommand(&cfg),
		versionCommand(&cfg),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// databaseURL points golang-migrate at its pgx/v5 driver.
func databaseURL(dsn string) string {
	for _, scheme := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(dsn, scheme) {
			return "pgx5://" + strings.TrimPrefix(dsn, scheme)
		}
	}
	return dsn
}

func newMigrate(cfg *config.Config) (*migrate.Migrate, error) {
	return migrate.New("file://"+filepath.ToSlash(cfg.MigrationsDir), databaseURL(cfg.PostgresDSN))
}

func createCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "create [name]",
		Short: "create empty up/down sql migrations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version := time.Now().UTC().Format(versionTimeFormat)
			base := filepath.Join(cfg.MigrationsDir, fmt.Sprintf("%s_%s", version, args[0]))
			for _, f := range []string{base + ".up.sql", base + ".down.sql"} {
				if err := os.WriteFile(f, nil, 0o644); err != nil {
					return err
				}
				fmt.Println("Created", f)
			}
			return nil
		},
	}
}

func upCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "migrate all the way up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newMigrate(cfg)
			if err != nil {
				return err
			}
			defer m.Close()

			err = m.Up()
			if errors.Is(err, migrate.ErrNoChange) {
				log.Printf("[migrate] no change")
				return nil
			}
			if err != nil {
				return err
			}
			log.Printf("[migrate] migrated up")
			return nil
		},
	}
}

func downCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "down [steps]",
		Short: "roll back the given number of migrations (default 1)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n <= 0 {
					return fmt.Errorf("steps must be a positive integer, got %q", args[0])
				}
				steps = n
			}
			m, err := newMigrate(cfg)
			if err != nil {
				return err
			}
			defer m.Close()

			if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
				return err
			}
			log.Printf("[migrate] rolled back %d step(s)", steps)
			return nil
		},
	}
}

func versionCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newMigrate(cfg)
			if err != nil {
				return err
			}
			defer m.Close()

			v, dirty, err := m.Version()
			if errors.Is(err, migrate.ErrNilVersion) {
				fmt.Println("no migrations applied")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Printf("version=%d dirty=%t\n", v, dirty)
			return nil
		},
	}
}
