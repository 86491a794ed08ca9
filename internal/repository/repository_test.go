package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/locvowork/employee_records/internal/database"
	"github.com/locvowork/employee_records/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()
	db, err := database.NewSQLiteDB(ctx, "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(ctx, db, database.DriverSQLite))
	return db
}

func salaryOf(v float64) *float64 { return &v }

func seedDepartment(t *testing.T, repo domain.DepartmentRepository, name string) domain.Department {
	t.Helper()
	d := domain.Department{Name: name}
	require.NoError(t, repo.Create(context.Background(), &d))
	return d
}

func newEmployee(id, name string, dept int64, dob domain.Date, salary *float64) *domain.Employee {
	return &domain.Employee{
		Person:       domain.Person{Name: name, DateOfBirth: dob},
		EmployeeID:   id,
		DepartmentID: dept,
		Salary:       salary,
	}
}

func TestDepartmentRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewDepartmentRepository(newTestDB(t))

	t.Run("create assigns id and reads back", func(t *testing.T) {
		hr := seedDepartment(t, repo, "HR")
		assert.NotZero(t, hr.ID)

		got, err := repo.GetByID(ctx, hr.ID)
		require.NoError(t, err)
		assert.Equal(t, hr, *got)

		byName, err := repo.GetByName(ctx, "HR")
		require.NoError(t, err)
		assert.Equal(t, hr.ID, byName.ID)
	})

	t.Run("duplicate name conflicts", func(t *testing.T) {
		err := repo.Create(ctx, &domain.Department{Name: "HR"})
		var conflict *domain.ConflictError
		require.True(t, errors.As(err, &conflict), "got %v", err)
		assert.Equal(t, domain.EntityDepartment, conflict.Entity)
	})

	t.Run("missing rows are not found", func(t *testing.T) {
		var nf *domain.NotFoundError
		_, err := repo.GetByID(ctx, 999)
		assert.True(t, errors.As(err, &nf))
		_, err = repo.GetByName(ctx, "Nope")
		assert.True(t, errors.As(err, &nf))
		assert.True(t, errors.As(repo.Update(ctx, &domain.Department{ID: 999, Name: "X"}), &nf))
		assert.True(t, errors.As(repo.Delete(ctx, 999), &nf))
	})

	t.Run("update replaces name", func(t *testing.T) {
		ops := seedDepartment(t, repo, "Ops")
		ops.Name = "Operations"
		require.NoError(t, repo.Update(ctx, &ops))

		got, err := repo.GetByID(ctx, ops.ID)
		require.NoError(t, err)
		assert.Equal(t, "Operations", got.Name)
	})

	t.Run("list in id order", func(t *testing.T) {
		list, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "HR", list[0].Name)
		assert.Equal(t, "Operations", list[1].Name)
	})
}

func TestDepartmentRepositoryListEmpty(t *testing.T) {
	repo := NewDepartmentRepository(newTestDB(t))
	list, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestDeleteReferencedDepartmentConflicts(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	depts := NewDepartmentRepository(db)
	emps := NewEmployeeRepository(db)

	hr := seedDepartment(t, depts, "HR")
	require.NoError(t, emps.Create(ctx, newEmployee("E1", "Ann", hr.ID, domain.NewDate(1990, 1, 1), nil)))

	err := depts.Delete(ctx, hr.ID)
	var conflict *domain.ConflictError
	require.True(t, errors.As(err, &conflict), "got %v", err)
	assert.Equal(t, domain.ReasonHasEmployees, conflict.Reason)

	require.NoError(t, emps.Delete(ctx, "E1"))
	require.NoError(t, depts.Delete(ctx, hr.ID))
}

func TestEmployeeRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	depts := NewDepartmentRepository(db)
	repo := NewEmployeeRepository(db)

	hr := seedDepartment(t, depts, "HR")
	it := seedDepartment(t, depts, "IT")

	ann := newEmployee("E1", "Ann", hr.ID, domain.NewDate(1990, time.January, 1), salaryOf(50000))
	require.NoError(t, repo.Create(ctx, ann))
	assert.NotZero(t, ann.ID)

	t.Run("get resolves department", func(t *testing.T) {
		got, err := repo.GetByEmployeeID(ctx, "E1")
		require.NoError(t, err)
		assert.Equal(t, ann.ID, got.ID)
		assert.Equal(t, "Ann", got.Name)
		assert.Equal(t, "1990-01-01", got.DateOfBirth.String())
		require.NotNil(t, got.Department)
		assert.Equal(t, "HR", got.Department.Name)
		require.NotNil(t, got.Salary)
		assert.Equal(t, 50000.0, *got.Salary)
	})

	t.Run("business key lookup is exact", func(t *testing.T) {
		_, err := repo.GetByEmployeeID(ctx, "e1")
		var nf *domain.NotFoundError
		assert.True(t, errors.As(err, &nf))
	})

	t.Run("duplicate employeeId conflicts", func(t *testing.T) {
		err := repo.Create(ctx, newEmployee("E1", "Someone", hr.ID, domain.NewDate(1991, 1, 1), nil))
		var conflict *domain.ConflictError
		require.True(t, errors.As(err, &conflict), "got %v", err)
		assert.Equal(t, "employeeId already exists", conflict.Reason)
	})

	t.Run("duplicate name conflicts", func(t *testing.T) {
		err := repo.Create(ctx, newEmployee("E9", "Ann", hr.ID, domain.NewDate(1991, 1, 1), nil))
		var conflict *domain.ConflictError
		require.True(t, errors.As(err, &conflict), "got %v", err)
		assert.Equal(t, "name already exists", conflict.Reason)
	})

	t.Run("dangling department conflicts", func(t *testing.T) {
		err := repo.Create(ctx, newEmployee("E8", "Ghost", 404, domain.NewDate(1991, 1, 1), nil))
		var conflict *domain.ConflictError
		assert.True(t, errors.As(err, &conflict), "got %v", err)
	})

	t.Run("update overwrites mutable fields", func(t *testing.T) {
		patched := newEmployee("E1", "Ann B", it.ID, domain.NewDate(1989, time.May, 5), nil)
		require.NoError(t, repo.Update(ctx, patched))

		got, err := repo.GetByEmployeeID(ctx, "E1")
		require.NoError(t, err)
		assert.Equal(t, "Ann B", got.Name)
		assert.Equal(t, "IT", got.Department.Name)
		assert.Equal(t, "1989-05-05", got.DateOfBirth.String())
		assert.Nil(t, got.Salary)
	})

	t.Run("delete twice", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, newEmployee("E2", "Bob", hr.ID, domain.NewDate(1980, 1, 1), nil)))
		require.NoError(t, repo.Delete(ctx, "E2"))
		var nf *domain.NotFoundError
		assert.True(t, errors.As(repo.Delete(ctx, "E2"), &nf))
	})
}

func TestEmployeeRepositoryListAndCount(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	depts := NewDepartmentRepository(db)
	repo := NewEmployeeRepository(db)
	hr := seedDepartment(t, depts, "HR")

	names := []string{"Anna", "Joanne", "Bob", "HANNAH", "Carl", "50%_off"}
	for i, n := range names {
		id := string(rune('A'+i)) + "1"
		require.NoError(t, repo.Create(ctx, newEmployee(id, n, hr.ID, domain.NewDate(1990, 1, 1), nil)))
	}

	t.Run("no filter returns all in id order", func(t *testing.T) {
		all, err := repo.List(ctx, domain.EmployeeFilter{})
		require.NoError(t, err)
		require.Len(t, all, len(names))
		assert.Equal(t, "Anna", all[0].Name)

		total, err := repo.Count(ctx, domain.EmployeeFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(len(names)), total)
	})

	t.Run("filter is case-insensitive substring", func(t *testing.T) {
		got, err := repo.List(ctx, domain.EmployeeFilter{Name: "ANN"})
		require.NoError(t, err)
		var gotNames []string
		for _, e := range got {
			gotNames = append(gotNames, e.Name)
		}
		assert.Equal(t, []string{"Anna", "Joanne", "HANNAH"}, gotNames)

		total, err := repo.Count(ctx, domain.EmployeeFilter{Name: "ann"})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
	})

	t.Run("filter folds non-ASCII letters", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, newEmployee("U1", "ÉLISE Ñúñez", hr.ID, domain.NewDate(1990, 1, 1), nil)))
		t.Cleanup(func() { _ = repo.Delete(ctx, "U1") })

		got, err := repo.List(ctx, domain.EmployeeFilter{Name: "élise"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "U1", got[0].EmployeeID)

		total, err := repo.Count(ctx, domain.EmployeeFilter{Name: "ÑÚÑ"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
	})

	t.Run("wildcards match literally", func(t *testing.T) {
		got, err := repo.List(ctx, domain.EmployeeFilter{Name: "%_"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "50%_off", got[0].Name)
	})

	t.Run("limit and offset", func(t *testing.T) {
		got, err := repo.List(ctx, domain.EmployeeFilter{Limit: 2, Offset: 2})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "Bob", got[0].Name)
		assert.Equal(t, "HANNAH", got[1].Name)

		past, err := repo.List(ctx, domain.EmployeeFilter{Limit: 5, Offset: 50})
		require.NoError(t, err)
		assert.Empty(t, past)
	})
}
