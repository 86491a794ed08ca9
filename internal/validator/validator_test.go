package validator

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/locvowork/employee_records/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = func() time.Time { return time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC) }

func fieldOf(t *testing.T, err error) string {
	t.Helper()
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
	return verr.Field
}

func TestValidateDepartment(t *testing.T) {
	v := New(fixedNow)

	assert.NoError(t, v.Validate(&domain.Department{Name: "HR"}))
	assert.Equal(t, "name", fieldOf(t, v.Validate(&domain.Department{Name: ""})))
	assert.Equal(t, "name", fieldOf(t, v.Validate(&domain.Department{Name: "R&D"})))
	assert.Equal(t, "name", fieldOf(t, v.Validate(&domain.Department{Name: "Sales2"})))
	assert.Equal(t, "name", fieldOf(t, v.Validate(&domain.Department{Name: strings.Repeat("a", 101)})))
	assert.NoError(t, v.Validate(&domain.Department{Name: strings.Repeat("a", 100)}))
}

func TestValidateEmployee(t *testing.T) {
	v := New(fixedNow)
	salary := func(f float64) *float64 { return &f }

	valid := func() domain.Employee {
		return domain.Employee{
			Person:       domain.Person{Name: "Ann", DateOfBirth: domain.NewDate(1990, time.January, 1)},
			EmployeeID:   "E1",
			DepartmentID: 1,
			Salary:       salary(50000),
		}
	}

	e := valid()
	assert.NoError(t, v.Validate(&e))

	e = valid()
	e.Salary = nil
	assert.NoError(t, v.Validate(&e), "salary is optional")

	e = valid()
	e.EmployeeID = "E1234567890"
	assert.Equal(t, "employeeId", fieldOf(t, v.Validate(&e)))

	e = valid()
	e.EmployeeID = ""
	assert.Equal(t, "employeeId", fieldOf(t, v.Validate(&e)))

	e = valid()
	e.Salary = salary(-1)
	assert.Equal(t, "salary", fieldOf(t, v.Validate(&e)))

	e = valid()
	e.Salary = salary(1_000_001)
	assert.Equal(t, "salary", fieldOf(t, v.Validate(&e)))

	e = valid()
	e.Salary = salary(1_000_000)
	assert.NoError(t, v.Validate(&e))

	e = valid()
	e.Name = ""
	assert.Equal(t, "name", fieldOf(t, v.Validate(&e)))

	e = valid()
	e.DateOfBirth = domain.Date{}
	assert.Equal(t, "dateOfBirth", fieldOf(t, v.Validate(&e)))
}

func TestValidatePast(t *testing.T) {
	v := New(fixedNow)
	patch := func(dob domain.Date) *domain.EmployeePatch {
		return &domain.EmployeePatch{Name: "Ann", DateOfBirth: dob, DepartmentName: "HR"}
	}

	assert.NoError(t, v.Validate(patch(domain.NewDate(2026, time.June, 14))))
	assert.Equal(t, "dateOfBirth", fieldOf(t, v.Validate(patch(domain.NewDate(2026, time.June, 15)))))
	assert.Equal(t, "dateOfBirth", fieldOf(t, v.Validate(patch(domain.NewDate(2030, time.January, 1)))))
}
