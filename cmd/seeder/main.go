package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/locvowork/employee_records/internal/bootstrap"
	"github.com/locvowork/employee_records/internal/database"
)

func main() {
	// Define flags
	action := flag.String("action", "seed", "Action to perform: seed, clear, reindex")
	preset := flag.String("preset", "medium", "Data preset: small, medium, large")
	departments := flag.Int("departments", 0, "Number of departments (overrides preset)")
	employees := flag.Int("employees", 0, "Number of employees (overrides preset)")
	workers := flag.Int("workers", 0, "Concurrent workers (overrides preset)")
	batch := flag.Int("batch", 500, "Documents per bulk request (reindex)")
	yes := flag.Bool("yes", false, "Skip the confirmation prompt for clear")

	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Println("Employee Records Seeder")
	fmt.Println(strings.Repeat("=", 50))

	// Initialize app
	app := bootstrap.NewApp()
	if err := app.Initialize(ctx); err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.Close()

	var opts []database.SeederOption
	if app.Search != nil {
		opts = append(opts, database.WithSearchIndex(app.Search))
	}
	if app.ChangeLog != nil {
		opts = append(opts, database.WithChangeLog(app.ChangeLog))
	}
	seeder := database.NewDataSeeder(app.DB, app.Departments, app.Employees, opts...)

	// Execute action
	switch *action {
	case "seed":
		cfg := database.GetPresetConfig(database.SeedPreset(*preset))
		if *departments > 0 {
			cfg.Departments = *departments
		}
		if *employees > 0 {
			cfg.Employees = *employees
		}
		if *workers > 0 {
			cfg.Workers = *workers
		}
		fmt.Printf("Seeding %d departments, %d employees with %d workers\n", cfg.Departments, cfg.Employees, cfg.Workers)

		stats, err := seeder.SeedData(ctx, cfg)
		if err != nil {
			log.Fatalf("Seeding failed: %v", err)
		}
		fmt.Printf("Created %d departments, %d employees (%d already existed)\n", stats.Departments, stats.Employees, stats.Skipped)

	case "clear":
		if !*yes && !confirm("This will delete all employees and departments! Continue? (yes/no): ") {
			fmt.Println("Cancelled.")
			return
		}
		if err := seeder.ClearData(ctx); err != nil {
			log.Fatalf("Clear failed: %v", err)
		}

	case "reindex":
		n := *workers
		if n == 0 {
			n = 2
		}
		count, err := seeder.Reindex(ctx, *batch, n)
		if err != nil {
			log.Fatalf("Reindex failed: %v", err)
		}
		fmt.Printf("Reindexed %d employees\n", count)

	default:
		fmt.Printf("Unknown action: %s\n", *action)
		flag.PrintDefaults()
		os.Exit(2)
	}

	fmt.Println("Done!")
}

func confirm(prompt string) bool {
	fmt.Print(prompt)
	answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	return strings.TrimSpace(answer) == "yes"
}
