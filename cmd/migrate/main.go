package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/locvowork/employee_records/internal/config"
	"github.com/locvowork/employee_records/internal/database"
	"github.com/locvowork/employee_records/internal/logger"
)

func main() {
	var (
		command = flag.String("command", "", "Migration command: up, down, version, force")
		steps   = flag.Int("steps", 0, "Number of migration steps (for up/down)")
		version = flag.Int("version", 0, "Migration version (for force)")
	)
	flag.Parse()

	if *command == "" {
		fmt.Println("Usage: migrate -command [up|down|version|force] [options]")
		fmt.Println("Commands:")
		fmt.Println("  up             - Apply all pending migrations")
		fmt.Println("  down           - Rollback migrations (1 step by default)")
		fmt.Println("  version        - Show current migration version")
		fmt.Println("  force          - Force set migration version")
		fmt.Println("")
		fmt.Println("Options:")
		fmt.Println("  -steps N       - Number of steps for up/down")
		fmt.Println("  -version N     - Version number for force")
		os.Exit(1)
	}

	ctx := context.Background()

	// Load configuration
	if err := config.LoadEnvConfig(); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.DefaultEnvConfig
	logger.InitLogging(logger.Options{
		FilePath: cfg.LOG_FILE_PATH,
		Level:    cfg.LOG_LEVEL,
		Format:   cfg.LOG_FORMAT,
	})

	driver := cfg.DB_DRIVER
	if driver == "" {
		driver = database.DriverPostgres
	}

	// Connect to database
	db, err := database.Open(ctx, database.Config{
		Driver:     driver,
		Host:       cfg.DB_HOST,
		Port:       cfg.DB_PORT,
		User:       cfg.DB_USER,
		Password:   cfg.DB_PASSWORD,
		DBName:     cfg.DB_NAME,
		SSLMode:    cfg.DB_SSL_MODE,
		SQLitePath: cfg.SQLITE_PATH,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Create migration instance; closing it also closes db.
	m, err := database.NewMigrator(db, driver)
	if err != nil {
		log.Fatalf("Failed to create migration instance: %v", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			log.Printf("Failed to close migration instance: %v %v", srcErr, dbErr)
		}
	}()

	// Execute command
	switch *command {
	case "up":
		if *steps > 0 {
			err = m.Steps(*steps)
		} else {
			err = m.Up()
		}
		report(err, "Migrations applied successfully", "No migrations to apply")

	case "down":
		n := *steps
		if n <= 0 {
			n = 1
		}
		err = m.Steps(-n)
		report(err, "Migrations rolled back successfully", "No migrations to rollback")

	case "version":
		v, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Println("No migrations applied yet")
			return
		}
		if err != nil {
			log.Fatalf("Failed to get version: %v", err)
		}
		fmt.Printf("Current version: %d\n", v)
		if dirty {
			fmt.Println("Database is in dirty state")
		} else {
			fmt.Println("Database is clean")
		}

	case "force":
		if *version == 0 {
			log.Fatal("Version number required for force command")
		}
		if err := m.Force(*version); err != nil {
			log.Fatalf("Force migration failed: %v", err)
		}
		fmt.Printf("Migration version forced to %d\n", *version)

	default:
		log.Fatalf("Unknown command: %s", *command)
	}
}

func report(err error, done, noChange string) {
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		fmt.Println(noChange)
	case err != nil:
		log.Fatalf("Migration failed: %v", err)
	default:
		fmt.Println(done)
	}
}
