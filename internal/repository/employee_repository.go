package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/locvowork/employee_records/internal/domain"
	"github.com/locvowork/employee_records/internal/repository/builder"
)

// employeeColumns is the projection every read uses; the department name
// comes from the join so reads return a resolved Department.
var employeeColumns = []string{
	"e.id", "e.employee_id", "e.name", "e.date_of_birth", "e.department_id", "e.salary", "d.name",
}

type employeeRepository struct {
	db *sql.DB
}

// NewEmployeeRepository creates a new instance of EmployeeRepository
func NewEmployeeRepository(db *sql.DB) domain.EmployeeRepository {
	return &employeeRepository{db: db}
}

func (r *employeeRepository) Create(ctx context.Context, e *domain.Employee) error {
	b := builder.NewSQLBuilder()
	query, args := b.Insert("employees", "employee_id", "name", "date_of_birth", "department_id", "salary").
		Values(e.EmployeeID, e.Name, e.DateOfBirth, e.DepartmentID, e.Salary).
		Returning("id").
		Build()

	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&e.ID); err != nil {
		return translateError(err, "create employee", domain.EntityEmployee, "department does not exist")
	}
	return nil
}

func (r *employeeRepository) GetByEmployeeID(ctx context.Context, employeeID string) (*domain.Employee, error) {
	query, args := selectEmployees().
		Where("e.employee_id = ?", employeeID).
		Build()

	e, err := scanEmployee(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, notFoundOr(err, "get employee", domain.EntityEmployee, employeeID)
	}
	return e, nil
}

func (r *employeeRepository) Update(ctx context.Context, e *domain.Employee) error {
	b := builder.NewSQLBuilder()
	query, args := b.Update("employees").
		Set("name", e.Name).
		Set("date_of_birth", e.DateOfBirth).
		Set("department_id", e.DepartmentID).
		Set("salary", e.Salary).
		Where("employee_id = ?", e.EmployeeID).
		Build()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return translateError(err, "update employee", domain.EntityEmployee, "department does not exist")
	}
	return expectAffected(res, "update employee", domain.EntityEmployee, e.EmployeeID)
}

func (r *employeeRepository) Delete(ctx context.Context, employeeID string) error {
	b := builder.NewSQLBuilder()
	query, args := b.Delete("employees").
		Where("employee_id = ?", employeeID).
		Build()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return translateError(err, "delete employee", domain.EntityEmployee, "")
	}
	return expectAffected(res, "delete employee", domain.EntityEmployee, employeeID)
}

func (r *employeeRepository) List(ctx context.Context, filter domain.EmployeeFilter) ([]domain.Employee, error) {
	b := selectEmployees()
	applyNameFilter(b, filter.Name)
	b.OrderBy("e.id ASC")

	if filter.Limit > 0 {
		b.Limit(filter.Limit)
		if filter.Offset > 0 {
			b.Offset(filter.Offset)
		}
	}

	query, args := b.Build()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translateError(err, "list employees", domain.EntityEmployee, "")
	}
	defer rows.Close()

	employees := []domain.Employee{}
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, translateError(err, "scan employee", domain.EntityEmployee, "")
		}
		employees = append(employees, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err, "list employees", domain.EntityEmployee, "")
	}
	return employees, nil
}

func (r *employeeRepository) Count(ctx context.Context, filter domain.EmployeeFilter) (int64, error) {
	b := builder.NewSQLBuilder()
	b.Select("COUNT(*)").From("employees e")
	applyNameFilter(b, filter.Name)

	query, args := b.Build()
	var total int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, translateError(err, "count employees", domain.EntityEmployee, "")
	}
	return total, nil
}

func selectEmployees() *builder.SQLBuilder {
	return builder.NewSQLBuilder().
		Select(employeeColumns...).
		From("employees e").
		Join("INNER", "departments d", "d.id = e.department_id")
}

// applyNameFilter adds a case-insensitive substring match. LIKE wildcards in
// the filter are matched literally.
func applyNameFilter(b *builder.SQLBuilder, name string) {
	if name == "" {
		return
	}
	escaped := likeEscaper.Replace(strings.ToLower(name))
	b.Where(`LOWER(e.name) LIKE ? ESCAPE '\'`, "%"+escaped+"%")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEmployee(row rowScanner) (*domain.Employee, error) {
	var (
		e        domain.Employee
		d        domain.Department
		salary   sql.NullFloat64
		deptName string
	)
	if err := row.Scan(&e.ID, &e.EmployeeID, &e.Name, &e.DateOfBirth, &e.DepartmentID, &salary, &deptName); err != nil {
		return nil, err
	}
	if salary.Valid {
		v := salary.Float64
		e.Salary = &v
	}
	d.ID = e.DepartmentID
	d.Name = deptName
	e.Department = &d
	return &e, nil
}
