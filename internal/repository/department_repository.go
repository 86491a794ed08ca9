package repository

import (
	"context"
	"database/sql"

	"github.com/locvowork/employee_records/internal/domain"
	"github.com/locvowork/employee_records/internal/repository/builder"
)

type departmentRepository struct {
	db *sql.DB
}

// NewDepartmentRepository creates a new instance of DepartmentRepository
func NewDepartmentRepository(db *sql.DB) domain.DepartmentRepository {
	return &departmentRepository{db: db}
}

func (r *departmentRepository) Create(ctx context.Context, d *domain.Department) error {
	b := builder.NewSQLBuilder()
	query, args := b.Insert("departments", "name").
		Values(d.Name).
		Returning("id").
		Build()

	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&d.ID); err != nil {
		return translateError(err, "create department", domain.EntityDepartment, "invalid reference")
	}
	return nil
}

func (r *departmentRepository) GetByID(ctx context.Context, id int64) (*domain.Department, error) {
	b := builder.NewSQLBuilder()
	query, args := b.Select("id", "name").
		From("departments").
		Where("id = ?", id).
		Build()

	var d domain.Department
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&d.ID, &d.Name); err != nil {
		return nil, notFoundOr(err, "get department", domain.EntityDepartment, id)
	}
	return &d, nil
}

func (r *departmentRepository) GetByName(ctx context.Context, name string) (*domain.Department, error) {
	b := builder.NewSQLBuilder()
	query, args := b.Select("id", "name").
		From("departments").
		Where("name = ?", name).
		Build()

	var d domain.Department
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&d.ID, &d.Name); err != nil {
		return nil, notFoundOr(err, "get department by name", domain.EntityDepartment, name)
	}
	return &d, nil
}

func (r *departmentRepository) Update(ctx context.Context, d *domain.Department) error {
	b := builder.NewSQLBuilder()
	query, args := b.Update("departments").
		Set("name", d.Name).
		Where("id = ?", d.ID).
		Build()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return translateError(err, "update department", domain.EntityDepartment, "invalid reference")
	}
	return expectAffected(res, "update department", domain.EntityDepartment, d.ID)
}

func (r *departmentRepository) Delete(ctx context.Context, id int64) error {
	b := builder.NewSQLBuilder()
	query, args := b.Delete("departments").
		Where("id = ?", id).
		Build()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return translateError(err, "delete department", domain.EntityDepartment, domain.ReasonHasEmployees)
	}
	return expectAffected(res, "delete department", domain.EntityDepartment, id)
}

func (r *departmentRepository) List(ctx context.Context) ([]domain.Department, error) {
	b := builder.NewSQLBuilder()
	query, args := b.Select("id", "name").
		From("departments").
		OrderBy("id ASC").
		Build()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translateError(err, "list departments", domain.EntityDepartment, "")
	}
	defer rows.Close()

	departments := []domain.Department{}
	for rows.Next() {
		var d domain.Department
		if err := rows.Scan(&d.ID, &d.Name); err != nil {
			return nil, translateError(err, "scan department", domain.EntityDepartment, "")
		}
		departments = append(departments, d)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err, "list departments", domain.EntityDepartment, "")
	}
	return departments, nil
}

// expectAffected reports a NotFoundError when a keyed write matched no row.
func expectAffected(res sql.Result, op, entity string, key interface{}) error {
	n, err := res.RowsAffected()
	if err != nil {
		return translateError(err, op, entity, "")
	}
	if n == 0 {
		return &domain.NotFoundError{Entity: entity, Key: key}
	}
	return nil
}
