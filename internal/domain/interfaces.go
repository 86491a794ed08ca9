package domain

import "context"

// EmployeeFilter defines criteria for listing employees
type EmployeeFilter struct {
	// Name is a case-insensitive substring; empty matches everything.
	Name   string
	Limit  int
	Offset int
}

// DepartmentRepository defines the interface for department data access
type DepartmentRepository interface {
	Create(ctx context.Context, d *Department) error
	GetByID(ctx context.Context, id int64) (*Department, error)
	GetByName(ctx context.Context, name string) (*Department, error)
	Update(ctx context.Context, d *Department) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]Department, error)
}

// EmployeeRepository defines the interface for employee data access.
// Reads return employees with their Department resolved.
type EmployeeRepository interface {
	Create(ctx context.Context, e *Employee) error
	GetByEmployeeID(ctx context.Context, employeeID string) (*Employee, error)
	Update(ctx context.Context, e *Employee) error
	Delete(ctx context.Context, employeeID string) error
	// List returns matching employees ordered by id. A zero Limit returns all rows.
	List(ctx context.Context, filter EmployeeFilter) ([]Employee, error)
	Count(ctx context.Context, filter EmployeeFilter) (int64, error)
}

// EmployeeIndexer mirrors employee writes into a search index.
type EmployeeIndexer interface {
	IndexEmployee(ctx context.Context, e Employee) error
	DeleteEmployee(ctx context.Context, employeeID string) error
}

// ChangeRecorder appends to a change log.
type ChangeRecorder interface {
	RecordChange(ctx context.Context, rec ChangeRecord) error
}
