package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"adminconsole/frontend/login"
	"adminconsole/infrastructure/rbac"
	"adminconsole/infrastructure/sqlite"
)

// seedConfig is read from the environment; flags override it.
type seedConfig struct {
	SQLitePath    string `env:"SQLITE_PATH" envDefault:"adminconsole.db"`
	MigrationsDir string `env:"MIGRATIONS_DIR"`
	Username      string `env:"SEED_USERNAME" envDefault:"admin"`
	Role          string `env:"SEED_ROLE" envDefault:"admin"`
	Password      string `env:"SEED_PASSWORD"`
}

func main() {
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("seed config: %v", err)
	}
	if err := run(context.Background(), cfg); err != nil {
		log.Fatalf("seed operator: %v", err)
	}
	fmt.Printf("seeded operator (username=%s, role=%s)\n", cfg.Username, cfg.Role)
}

func loadConfig(args []string) (seedConfig, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return seedConfig{}, fmt.Errorf("load .env: %w", err)
		}
	}
	var cfg seedConfig
	if err := env.Parse(&cfg); err != nil {
		return seedConfig{}, fmt.Errorf("parse env: %w", err)
	}

	fs := flag.NewFlagSet("seedOperator", flag.ContinueOnError)
	fs.StringVar(&cfg.SQLitePath, "db", cfg.SQLitePath, "sqlite file")
	fs.StringVar(&cfg.Username, "username", cfg.Username, "operator username")
	fs.StringVar(&cfg.Role, "role", cfg.Role, "operator role ("+strings.Join(rbac.Roles, ", ")+")")
	fs.StringVar(&cfg.Password, "password", cfg.Password, "operator password")
	if err := fs.Parse(args); err != nil {
		return seedConfig{}, err
	}
	return cfg, nil
}

func run(ctx context.Context, cfg seedConfig) error {
	if cfg.Password == "" {
		return errors.New("a password is required (SEED_PASSWORD or -password)")
	}
	if !rbac.ValidRole(cfg.Role) {
		return fmt.Errorf("unknown role %q", cfg.Role)
	}
	if err := login.ValidatePasswordPolicy(cfg.Password); err != nil {
		return err
	}

	db, err := sqlite.OpenDB(cfg.SQLitePath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	if err := sqlite.ApplyMigrations(ctx, db, cfg.MigrationsDir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return login.UpsertOperator(ctx, db, cfg.Username, cfg.Role, cfg.Password)
}
