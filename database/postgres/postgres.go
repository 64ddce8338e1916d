package postgres

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var migrations embed.FS

func New() (*sqlx.DB, error) {
	db, err := Connect(DSNFromEnv())
	if err != nil {
		return nil, err
	}

	if getEnv("DB_AUTO_MIGRATE", "true") == "true" {
		if err := Migrate(db); err != nil {
			db.Close()
			return nil, err
		}
	}

	return db, nil
}

func Connect(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

func DSNFromEnv() string {
	dsn := fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=%s",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_USER", "postgres"),
		getEnv("DB_NAME", "postureiq"),
		getEnv("DB_SSLMODE", "disable"),
	)

	if password := os.Getenv("DB_PASSWORD"); password != "" {
		escaped := strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(password)
		dsn += fmt.Sprintf(" password='%s'", escaped)
	}

	return dsn
}

// Migrate applies every embedded migration in file-name order. Statements are
// idempotent, so re-running on boot is safe.
func Migrate(db *sqlx.DB) error {
	names, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)

	for _, name := range names {
		stmt, err := migrations.ReadFile(name)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", name, err)
		}

		if _, err := db.Exec(string(stmt)); err != nil {
			return fmt.Errorf("failed to apply %s: %w", name, err)
		}

		logrus.WithField("migration", name).Info("Applied database migration")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
