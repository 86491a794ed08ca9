package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/locvowork/employee_records/internal/domain"
)

// fakeStore is an in-memory stand-in for the SQL repositories. It counts
// calls so tests can assert that nothing touched the store.
type fakeStore struct {
	departments map[int64]domain.Department
	employees   map[string]domain.Employee
	nextDeptID  int64
	nextEmpID   int64
	calls       int
	failWith    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		departments: map[int64]domain.Department{},
		employees:   map[string]domain.Employee{},
	}
}

func (f *fakeStore) touch() error {
	f.calls++
	return f.failWith
}

type fakeDepartmentRepo struct{ *fakeStore }

func (r fakeDepartmentRepo) Create(_ context.Context, d *domain.Department) error {
	if err := r.touch(); err != nil {
		return err
	}
	for _, existing := range r.departments {
		if existing.Name == d.Name {
			return &domain.ConflictError{Entity: domain.EntityDepartment, Reason: "name already exists"}
		}
	}
	r.nextDeptID++
	d.ID = r.nextDeptID
	r.departments[d.ID] = *d
	return nil
}

func (r fakeDepartmentRepo) GetByID(_ context.Context, id int64) (*domain.Department, error) {
	if err := r.touch(); err != nil {
		return nil, err
	}
	d, ok := r.departments[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: domain.EntityDepartment, Key: id}
	}
	return &d, nil
}

func (r fakeDepartmentRepo) GetByName(_ context.Context, name string) (*domain.Department, error) {
	if err := r.touch(); err != nil {
		return nil, err
	}
	for _, d := range r.departments {
		if d.Name == name {
			d := d
			return &d, nil
		}
	}
	return nil, &domain.NotFoundError{Entity: domain.EntityDepartment, Key: name}
}

func (r fakeDepartmentRepo) Update(_ context.Context, d *domain.Department) error {
	if err := r.touch(); err != nil {
		return err
	}
	if _, ok := r.departments[d.ID]; !ok {
		return &domain.NotFoundError{Entity: domain.EntityDepartment, Key: d.ID}
	}
	r.departments[d.ID] = *d
	return nil
}

func (r fakeDepartmentRepo) Delete(_ context.Context, id int64) error {
	if err := r.touch(); err != nil {
		return err
	}
	for _, e := range r.employees {
		if e.DepartmentID == id {
			return &domain.ConflictError{Entity: domain.EntityDepartment, Reason: domain.ReasonHasEmployees}
		}
	}
	delete(r.departments, id)
	return nil
}

func (r fakeDepartmentRepo) List(_ context.Context) ([]domain.Department, error) {
	if err := r.touch(); err != nil {
		return nil, err
	}
	out := make([]domain.Department, 0, len(r.departments))
	for _, d := range r.departments {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeEmployeeRepo struct{ *fakeStore }

func (r fakeEmployeeRepo) resolve(e domain.Employee) domain.Employee {
	if d, ok := r.departments[e.DepartmentID]; ok {
		e.Department = &d
	}
	return e
}

func (r fakeEmployeeRepo) Create(_ context.Context, e *domain.Employee) error {
	if err := r.touch(); err != nil {
		return err
	}
	if _, ok := r.employees[e.EmployeeID]; ok {
		return &domain.ConflictError{Entity: domain.EntityEmployee, Reason: "employeeId already exists"}
	}
	r.nextEmpID++
	e.ID = r.nextEmpID
	stored := *e
	stored.Department = nil
	r.employees[e.EmployeeID] = stored
	return nil
}

func (r fakeEmployeeRepo) GetByEmployeeID(_ context.Context, employeeID string) (*domain.Employee, error) {
	if err := r.touch(); err != nil {
		return nil, err
	}
	e, ok := r.employees[employeeID]
	if !ok {
		return nil, &domain.NotFoundError{Entity: domain.EntityEmployee, Key: employeeID}
	}
	e = r.resolve(e)
	return &e, nil
}

func (r fakeEmployeeRepo) Update(_ context.Context, e *domain.Employee) error {
	if err := r.touch(); err != nil {
		return err
	}
	if _, ok := r.employees[e.EmployeeID]; !ok {
		return &domain.NotFoundError{Entity: domain.EntityEmployee, Key: e.EmployeeID}
	}
	stored := *e
	stored.Department = nil
	r.employees[e.EmployeeID] = stored
	return nil
}

func (r fakeEmployeeRepo) Delete(_ context.Context, employeeID string) error {
	if err := r.touch(); err != nil {
		return err
	}
	if _, ok := r.employees[employeeID]; !ok {
		return &domain.NotFoundError{Entity: domain.EntityEmployee, Key: employeeID}
	}
	delete(r.employees, employeeID)
	return nil
}

func (r fakeEmployeeRepo) matching(name string) []domain.Employee {
	var out []domain.Employee
	for _, e := range r.employees {
		if name == "" || strings.Contains(strings.ToLower(e.Name), strings.ToLower(name)) {
			out = append(out, r.resolve(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r fakeEmployeeRepo) List(_ context.Context, filter domain.EmployeeFilter) ([]domain.Employee, error) {
	if err := r.touch(); err != nil {
		return nil, err
	}
	out := r.matching(filter.Name)
	if filter.Limit > 0 {
		start := min(filter.Offset, len(out))
		end := min(start+filter.Limit, len(out))
		out = out[start:end]
	}
	return out, nil
}

func (r fakeEmployeeRepo) Count(_ context.Context, filter domain.EmployeeFilter) (int64, error) {
	if err := r.touch(); err != nil {
		return 0, err
	}
	return int64(len(r.matching(filter.Name))), nil
}

type fakeIndexer struct {
	indexed []string
	deleted []string
	err     error
}

func (f *fakeIndexer) IndexEmployee(_ context.Context, e domain.Employee) error {
	f.indexed = append(f.indexed, e.EmployeeID)
	return f.err
}

func (f *fakeIndexer) DeleteEmployee(_ context.Context, employeeID string) error {
	f.deleted = append(f.deleted, employeeID)
	return f.err
}

type fakeRecorder struct {
	records []domain.ChangeRecord
	err     error
}

func (f *fakeRecorder) RecordChange(_ context.Context, rec domain.ChangeRecord) error {
	f.records = append(f.records, rec)
	return f.err
}

var errStoreDown = errors.New("store unavailable")
