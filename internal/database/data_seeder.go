package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/locvowork/employee_records/internal/domain"
	"github.com/locvowork/employee_records/internal/logger"
	"github.com/locvowork/employee_records/pkg/dataflow"
)

// DepartmentSeeder is the part of the department service the seeder drives.
type DepartmentSeeder interface {
	CreateDepartment(ctx context.Context, candidate domain.Department) (domain.Department, error)
	ListDepartments(ctx context.Context) ([]domain.Department, error)
}

// EmployeeSeeder is the part of the employee service the seeder drives.
type EmployeeSeeder interface {
	CreateEmployee(ctx context.Context, candidate *domain.Employee) (domain.Employee, error)
	ExportEmployees(ctx context.Context, nameFilter string) ([]domain.Employee, error)
}

// SearchIndex is the bulk side of the search mirror.
type SearchIndex interface {
	BulkIndexEmployees(ctx context.Context, docs []EmployeeDoc) error
	ResetIndex(ctx context.Context) error
}

// ChangeLog is the maintenance side of the change log.
type ChangeLog interface {
	ClearChanges(ctx context.Context) (int, error)
}

type DataSeeder struct {
	db          *sql.DB
	departments DepartmentSeeder
	employees   EmployeeSeeder
	search      SearchIndex
	changes     ChangeLog
	rng         *rand.Rand
	now         func() time.Time
}

type SeederOption func(*DataSeeder)

func WithSearchIndex(idx SearchIndex) SeederOption {
	return func(ds *DataSeeder) { ds.search = idx }
}

func WithChangeLog(cl ChangeLog) SeederOption {
	return func(ds *DataSeeder) { ds.changes = cl }
}

// WithRandSeed makes generated data reproducible.
func WithRandSeed(seed int64) SeederOption {
	return func(ds *DataSeeder) { ds.rng = rand.New(rand.NewSource(seed)) }
}

func WithSeederClock(now func() time.Time) SeederOption {
	return func(ds *DataSeeder) { ds.now = now }
}

func NewDataSeeder(db *sql.DB, departments DepartmentSeeder, employees EmployeeSeeder, opts ...SeederOption) *DataSeeder {
	ds := &DataSeeder{
		db:          db,
		departments: departments,
		employees:   employees,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		now:         time.Now,
	}
	for _, o := range opts {
		o(ds)
	}
	return ds
}

var (
	departmentNames = []string{"HR", "Engineering", "Finance", "Sales", "Marketing", "Legal", "Operations", "Support", "Research", "Design"}
	firstNames      = []string{"Ann", "Bao", "Chloe", "Duc", "Elena", "Farid", "Grace", "Hung", "Ivy", "Jonas", "Khoa", "Linh", "Minh", "Nora", "Omar"}
	lastNames       = []string{"Nguyen", "Tran", "Smith", "Garcia", "Le", "Pham", "Kim", "Muller", "Rossi", "Vo"}
)

// SeedConfig sizes a seeding run.
type SeedConfig struct {
	Departments int
	Employees   int
	Workers     int
}

// SeedStats reports what a run created.
type SeedStats struct {
	Departments int
	Employees   int64
	Skipped     int64
}

// SeedData creates departments, then employees spread across them. Records
// that already exist are skipped, so reruns top up instead of failing.
func (ds *DataSeeder) SeedData(ctx context.Context, cfg SeedConfig) (SeedStats, error) {
	start := time.Now()
	var stats SeedStats

	if cfg.Departments > len(departmentNames) {
		cfg.Departments = len(departmentNames)
	}
	if cfg.Departments < 1 {
		return stats, fmt.Errorf("at least one department is required")
	}

	for _, name := range departmentNames[:cfg.Departments] {
		_, err := ds.departments.CreateDepartment(ctx, domain.Department{Name: name})
		var conflict *domain.ConflictError
		switch {
		case err == nil:
			stats.Departments++
		case errors.As(err, &conflict):
			logger.DebugLog(ctx, "department %s already exists", name)
		default:
			return stats, fmt.Errorf("failed to create department %s: %w", name, err)
		}
	}

	depts, err := ds.departments.ListDepartments(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to list departments: %w", err)
	}
	if len(depts) == 0 {
		return stats, fmt.Errorf("no departments to assign employees to")
	}

	// One candidate stream per department, merged for the workers.
	byDept := make(map[int64][]*domain.Employee, len(depts))
	for _, e := range ds.generateEmployees(cfg.Employees, depts) {
		byDept[e.DepartmentID] = append(byDept[e.DepartmentID], e)
	}
	streams := make([]dataflow.Stream[*domain.Employee], 0, len(byDept))
	for _, group := range byDept {
		streams = append(streams, dataflow.From(ctx, group...))
	}

	existing, err := ds.employees.ExportEmployees(ctx, "")
	if err != nil {
		return stats, fmt.Errorf("failed to list employees: %w", err)
	}
	known := make(map[string]struct{}, len(existing))
	for _, e := range existing {
		known[e.EmployeeID] = struct{}{}
	}

	var created, skipped int64
	fresh := dataflow.Filter(ctx, dataflow.FanIn(ctx, streams...), func(e *domain.Employee) bool {
		if _, ok := known[e.EmployeeID]; ok {
			atomic.AddInt64(&skipped, 1)
			return false
		}
		return true
	})
	err = dataflow.ForEach(ctx, fresh, func(e *domain.Employee) error {
		_, err := ds.employees.CreateEmployee(ctx, e)
		if err == nil {
			atomic.AddInt64(&created, 1)
		}
		return err
	}, dataflow.WithWorkers(cfg.Workers), dataflow.WithErrorHandler(func(err error) bool {
		var conflict *domain.ConflictError
		if errors.As(err, &conflict) {
			atomic.AddInt64(&skipped, 1)
			return true
		}
		return false
	}))
	stats.Employees = created
	stats.Skipped = skipped
	if err != nil {
		return stats, fmt.Errorf("failed to create employees: %w", err)
	}

	logger.InfoLog(ctx, "seeded %d departments, %d employees (%d skipped) in %v",
		stats.Departments, stats.Employees, stats.Skipped, time.Since(start))
	return stats, nil
}

// generateEmployees builds n candidates. Employee ids and names carry the
// sequence number so they stay unique.
func (ds *DataSeeder) generateEmployees(n int, depts []domain.Department) []*domain.Employee {
	thisYear := ds.now().Year()
	out := make([]*domain.Employee, 0, n)
	for i := 1; i <= n; i++ {
		dob := domain.NewDate(thisYear-20-ds.rng.Intn(45), time.Month(1+ds.rng.Intn(12)), 1+ds.rng.Intn(28))
		e := &domain.Employee{
			Person: domain.Person{
				Name: fmt.Sprintf("%s %s %d",
					firstNames[ds.rng.Intn(len(firstNames))],
					lastNames[ds.rng.Intn(len(lastNames))], i),
				DateOfBirth: dob,
			},
			EmployeeID:   fmt.Sprintf("S%06d", i),
			DepartmentID: depts[ds.rng.Intn(len(depts))].ID,
		}
		// One in ten has no salary on file.
		if ds.rng.Intn(10) != 0 {
			salary := math.Round(30000 + ds.rng.Float64()*120000)
			e.Salary = &salary
		}
		out = append(out, e)
	}
	return out
}

// ClearData removes all employees and departments, then the mirrors.
func (ds *DataSeeder) ClearData(ctx context.Context) error {
	tx, err := ds.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Employees first (child table)
	if _, err := tx.ExecContext(ctx, "DELETE FROM employees"); err != nil {
		return fmt.Errorf("failed to delete employees: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM departments"); err != nil {
		return fmt.Errorf("failed to delete departments: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	logger.InfoLog(ctx, "cleared SQL data")

	if ds.search != nil {
		if err := ds.search.ResetIndex(ctx); err != nil {
			return fmt.Errorf("failed to reset search index: %w", err)
		}
	}
	if ds.changes != nil {
		n, err := ds.changes.ClearChanges(ctx)
		if err != nil {
			return fmt.Errorf("failed to clear change log: %w", err)
		}
		logger.InfoLog(ctx, "cleared %d change records", n)
	}
	return nil
}

// Reindex rebuilds the search mirror from the relational store in batches.
func (ds *DataSeeder) Reindex(ctx context.Context, batchSize, workers int) (int, error) {
	if ds.search == nil {
		return 0, fmt.Errorf("search index is not configured")
	}

	all, err := ds.employees.ExportEmployees(ctx, "")
	if err != nil {
		return 0, fmt.Errorf("failed to load employees: %w", err)
	}

	docs := dataflow.Map(ctx, dataflow.From(ctx, all...), func(e domain.Employee) (EmployeeDoc, error) {
		return NewEmployeeDoc(e), nil
	}, dataflow.WithBufferSize(batchSize))
	batches := dataflow.Batch(ctx, docs, batchSize)
	err = dataflow.ForEach(ctx, batches, func(batch []EmployeeDoc) error {
		return ds.search.BulkIndexEmployees(ctx, batch)
	}, dataflow.WithWorkers(workers), dataflow.WithRetry(3, dataflow.ExponentialBackoff(500*time.Millisecond, 4*time.Second)))
	if err != nil {
		return 0, err
	}

	logger.InfoLog(ctx, "reindexed %d employees", len(all))
	return len(all), nil
}

// Presets
type SeedPreset string

const (
	PresetSmall  SeedPreset = "small"
	PresetMedium SeedPreset = "medium"
	PresetLarge  SeedPreset = "large"
)

// GetPresetConfig returns configuration for a preset
func GetPresetConfig(preset SeedPreset) SeedConfig {
	switch preset {
	case PresetSmall:
		return SeedConfig{Departments: 3, Employees: 20, Workers: 2}
	case PresetLarge:
		return SeedConfig{Departments: 10, Employees: 2000, Workers: 8}
	default:
		return SeedConfig{Departments: 5, Employees: 200, Workers: 4}
	}
}
