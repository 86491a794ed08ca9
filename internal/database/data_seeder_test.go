package database

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/locvowork/employee_records/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seedDepartments struct {
	mu    sync.Mutex
	depts []domain.Department
}

func (s *seedDepartments) CreateDepartment(_ context.Context, d domain.Department) (domain.Department, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.depts {
		if existing.Name == d.Name {
			return domain.Department{}, &domain.ConflictError{Entity: domain.EntityDepartment, Reason: "name already exists"}
		}
	}
	d.ID = int64(len(s.depts) + 1)
	s.depts = append(s.depts, d)
	return d, nil
}

func (s *seedDepartments) ListDepartments(context.Context) ([]domain.Department, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Department(nil), s.depts...), nil
}

type seedEmployees struct {
	mu    sync.Mutex
	byID  map[string]domain.Employee
	err   error
	calls int
}

func (s *seedEmployees) CreateEmployee(_ context.Context, e *domain.Employee) (domain.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return domain.Employee{}, s.err
	}
	if _, ok := s.byID[e.EmployeeID]; ok {
		return domain.Employee{}, &domain.ConflictError{Entity: domain.EntityEmployee, Reason: "employeeId already exists"}
	}
	s.byID[e.EmployeeID] = *e
	return *e, nil
}

func (s *seedEmployees) ExportEmployees(context.Context, string) ([]domain.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Employee, 0, len(s.byID))
	for _, e := range s.byID {
		out = append(out, e)
	}
	return out, nil
}

type seedSearch struct {
	mu      sync.Mutex
	batches [][]EmployeeDoc
	resets  int
}

func (s *seedSearch) BulkIndexEmployees(_ context.Context, docs []EmployeeDoc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, docs)
	return nil
}

func (s *seedSearch) ResetIndex(context.Context) error {
	s.resets++
	return nil
}

type seedChanges struct{ cleared int }

func (s *seedChanges) ClearChanges(context.Context) (int, error) {
	s.cleared++
	return 3, nil
}

func seederClock() time.Time {
	return time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC)
}

func TestSeedData(t *testing.T) {
	ctx := context.Background()
	depts := &seedDepartments{}
	emps := &seedEmployees{byID: map[string]domain.Employee{}}
	seeder := NewDataSeeder(nil, depts, emps, WithRandSeed(7), WithSeederClock(seederClock))

	stats, err := seeder.SeedData(ctx, SeedConfig{Departments: 3, Employees: 25, Workers: 4})
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Departments)
	assert.Equal(t, int64(25), stats.Employees)
	assert.Zero(t, stats.Skipped)

	for id, e := range emps.byID {
		assert.LessOrEqual(t, len(id), 10)
		assert.NotEmpty(t, e.Name)
		assert.True(t, e.DateOfBirth.Before(seederClock()), id)
		assert.Contains(t, []int64{1, 2, 3}, e.DepartmentID)
		if e.Salary != nil {
			assert.GreaterOrEqual(t, *e.Salary, 30000.0)
			assert.LessOrEqual(t, *e.Salary, 150000.0)
		}
	}

	t.Run("rerun skips existing records", func(t *testing.T) {
		calls := emps.calls
		stats, err := seeder.SeedData(ctx, SeedConfig{Departments: 3, Employees: 25, Workers: 2})
		require.NoError(t, err)
		assert.Equal(t, calls, emps.calls, "known ids never reach the store")
		assert.Zero(t, stats.Departments)
		assert.Zero(t, stats.Employees)
		assert.Equal(t, int64(25), stats.Skipped)
	})
}

func TestSeedDataFailsOnStoreError(t *testing.T) {
	boom := errors.New("store down")
	seeder := NewDataSeeder(nil, &seedDepartments{}, &seedEmployees{byID: map[string]domain.Employee{}, err: boom})

	_, err := seeder.SeedData(context.Background(), GetPresetConfig(PresetSmall))
	assert.ErrorIs(t, err, boom)

	_, err = seeder.SeedData(context.Background(), SeedConfig{Departments: 0, Employees: 1})
	assert.Error(t, err)
}

func TestClearData(t *testing.T) {
	ctx := context.Background()
	db, err := NewSQLiteDB(ctx, "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(ctx, db, DriverSQLite))

	_, err = db.ExecContext(ctx, "INSERT INTO departments (name) VALUES ($1)", "HR")
	require.NoError(t, err)
	_, err = db.ExecContext(ctx,
		"INSERT INTO employees (employee_id, name, date_of_birth, department_id) VALUES ($1, $2, $3, $4)",
		"E1", "Ann", "1990-01-01", 1)
	require.NoError(t, err)

	search := &seedSearch{}
	changes := &seedChanges{}
	seeder := NewDataSeeder(db, &seedDepartments{}, &seedEmployees{}, WithSearchIndex(search), WithChangeLog(changes))
	require.NoError(t, seeder.ClearData(ctx))

	for _, table := range []string{"employees", "departments"} {
		var n int
		require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n))
		assert.Zero(t, n, table)
	}
	assert.Equal(t, 1, search.resets)
	assert.Equal(t, 1, changes.cleared)
}

func TestReindex(t *testing.T) {
	ctx := context.Background()
	emps := &seedEmployees{byID: map[string]domain.Employee{}}
	for _, id := range []string{"E1", "E2", "E3", "E4", "E5"} {
		emps.byID[id] = domain.Employee{EmployeeID: id}
	}

	_, err := NewDataSeeder(nil, &seedDepartments{}, emps).Reindex(ctx, 2, 1)
	assert.Error(t, err, "reindex without a search index")

	search := &seedSearch{}
	n, err := NewDataSeeder(nil, &seedDepartments{}, emps, WithSearchIndex(search)).Reindex(ctx, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	require.Len(t, search.batches, 3)

	var ids []string
	for _, b := range search.batches {
		for _, doc := range b {
			ids = append(ids, doc.EmployeeID)
		}
	}
	assert.ElementsMatch(t, []string{"E1", "E2", "E3", "E4", "E5"}, ids)
}
