package service

import (
	"context"
	"math"
	"strconv"

	"github.com/locvowork/employee_records/internal/domain"
	"github.com/locvowork/employee_records/internal/logger"
	"github.com/locvowork/employee_records/internal/validator"
)

const (
	GroupByDepartment = "department"
	GroupByAge        = "age"
)

// EmployeeService handles business logic for employees
type EmployeeService interface {
	CreateEmployee(ctx context.Context, candidate *domain.Employee) (domain.Employee, error)
	GetEmployee(ctx context.Context, employeeID string) (domain.Employee, error)
	ListEmployees(ctx context.Context, nameFilter, groupBy string, req domain.PageRequest) (domain.Page[domain.Employee], error)
	GroupByEmployees(ctx context.Context, groupBy string) (map[string][]domain.Employee, error)
	UpdateEmployee(ctx context.Context, patch domain.EmployeePatch, employeeID string) (domain.Employee, error)
	DeleteEmployee(ctx context.Context, employeeID string) (bool, error)
	CalculateAverageSalary(ctx context.Context) (float64, error)
	CalculateAverageAge(ctx context.Context) (float64, error)
	ExportEmployees(ctx context.Context, nameFilter string) ([]domain.Employee, error)
}

type employeeService struct {
	employees   domain.EmployeeRepository
	departments domain.DepartmentRepository
	validate    *validator.Validator
	opts        options
}

// NewEmployeeService creates a new EmployeeService instance
func NewEmployeeService(employees domain.EmployeeRepository, departments domain.DepartmentRepository, opts ...Option) EmployeeService {
	o := buildOptions(opts)
	return &employeeService{
		employees:   employees,
		departments: departments,
		validate:    o.validator(),
		opts:        o,
	}
}

// ==================== Write Operations ====================

// CreateEmployee resolves the referenced department, persists the candidate
// and returns the stored record.
func (s *employeeService) CreateEmployee(ctx context.Context, candidate *domain.Employee) (domain.Employee, error) {
	if candidate == nil {
		return domain.Employee{}, &domain.ValidationError{Message: "employee data is invalid"}
	}
	if candidate.DepartmentID == 0 {
		return domain.Employee{}, &domain.ValidationError{Field: "departmentId", Message: "no department id specified"}
	}
	if err := s.validate.Validate(candidate); err != nil {
		return domain.Employee{}, err
	}

	dept, err := s.departments.GetByID(ctx, candidate.DepartmentID)
	if err != nil {
		return domain.Employee{}, err
	}

	e := *candidate
	e.ID = 0
	e.Department = dept
	if err := s.employees.Create(ctx, &e); err != nil {
		return domain.Employee{}, err
	}
	e.Age = domain.AgeAt(e.DateOfBirth, s.opts.now())

	s.afterWrite(ctx, e, domain.ChangeCreated)
	return e, nil
}

// UpdateEmployee overwrites salary, department, name and date of birth.
// The business key never changes.
func (s *employeeService) UpdateEmployee(ctx context.Context, patch domain.EmployeePatch, employeeID string) (domain.Employee, error) {
	if err := s.validate.Validate(&patch); err != nil {
		return domain.Employee{}, err
	}

	existing, err := s.employees.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		return domain.Employee{}, err
	}

	dept, err := s.departments.GetByName(ctx, patch.DepartmentName)
	if err != nil {
		return domain.Employee{}, err
	}

	e := *existing
	e.Salary = patch.Salary
	e.DepartmentID = dept.ID
	e.Department = dept
	e.Name = patch.Name
	e.DateOfBirth = patch.DateOfBirth

	if err := s.employees.Update(ctx, &e); err != nil {
		return domain.Employee{}, err
	}
	e.Age = domain.AgeAt(e.DateOfBirth, s.opts.now())

	s.afterWrite(ctx, e, domain.ChangeUpdated)
	return e, nil
}

func (s *employeeService) DeleteEmployee(ctx context.Context, employeeID string) (bool, error) {
	existing, err := s.employees.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		return false, err
	}

	if err := s.employees.Delete(ctx, existing.EmployeeID); err != nil {
		return false, err
	}

	s.afterWrite(ctx, *existing, domain.ChangeDeleted)
	return true, nil
}

// afterWrite mirrors a committed write to the optional search index and
// change log. Neither can fail the operation.
func (s *employeeService) afterWrite(ctx context.Context, e domain.Employee, action domain.ChangeAction) {
	if s.opts.indexer != nil {
		var err error
		if action == domain.ChangeDeleted {
			err = s.opts.indexer.DeleteEmployee(ctx, e.EmployeeID)
		} else {
			err = s.opts.indexer.IndexEmployee(ctx, e)
		}
		if err != nil {
			logger.WarnLog(ctx, "Failed to sync employee %s to search index: %v", e.EmployeeID, err)
		}
	}
	s.opts.record(ctx, domain.EntityEmployee, e.EmployeeID, action)
}

// ==================== Read Operations ====================

func (s *employeeService) GetEmployee(ctx context.Context, employeeID string) (domain.Employee, error) {
	e, err := s.employees.GetByEmployeeID(ctx, employeeID)
	if err != nil {
		return domain.Employee{}, err
	}
	e.Age = domain.AgeAt(e.DateOfBirth, s.opts.now())
	return *e, nil
}

// ListEmployees returns one page of employees whose name contains nameFilter.
//
// With a groupBy key the store page is fetched first, its rows are grouped
// and flattened, and the flattened rows are paged again with the same
// request. Grouping therefore only reorders rows within the current window.
func (s *employeeService) ListEmployees(ctx context.Context, nameFilter, groupBy string, req domain.PageRequest) (domain.Page[domain.Employee], error) {
	if groupBy != "" && !isValidGroupBy(groupBy) {
		return domain.Page[domain.Employee]{}, &domain.InvalidGroupByError{Value: groupBy}
	}
	if req.Page < 0 {
		return domain.Page[domain.Employee]{}, &domain.ValidationError{Field: "page", Message: "must not be negative"}
	}
	if req.Size < 1 {
		return domain.Page[domain.Employee]{}, &domain.ValidationError{Field: "size", Message: "must be at least 1"}
	}
	if req.Page > math.MaxInt/req.Size {
		return domain.Page[domain.Employee]{}, &domain.ValidationError{Field: "page", Message: "is too large"}
	}

	filter := domain.EmployeeFilter{Name: nameFilter, Limit: req.Size, Offset: req.Offset()}
	rows, err := s.list(ctx, filter)
	if err != nil {
		return domain.Page[domain.Employee]{}, err
	}

	if groupBy == "" {
		total, err := s.employees.Count(ctx, filter)
		if err != nil {
			return domain.Page[domain.Employee]{}, err
		}
		return domain.NewPage(rows, req, total), nil
	}

	_, groups := groupEmployees(rows, s.groupKey(groupBy))
	flattened := make([]domain.Employee, 0, len(rows))
	for _, g := range groups {
		flattened = append(flattened, g...)
	}

	start := min(req.Offset(), len(flattened))
	end := min(start+req.Size, len(flattened))
	return domain.NewPage(flattened[start:end], req, int64(len(flattened))), nil
}

// GroupByEmployees buckets every employee by department name or by age.
func (s *employeeService) GroupByEmployees(ctx context.Context, groupBy string) (map[string][]domain.Employee, error) {
	if !isValidGroupBy(groupBy) {
		return nil, &domain.InvalidGroupByError{Value: groupBy}
	}

	all, err := s.list(ctx, domain.EmployeeFilter{})
	if err != nil {
		return nil, err
	}

	keyFn := func(e domain.Employee) string { return strconv.Itoa(e.Age) }
	if groupBy == GroupByDepartment {
		keyFn = domain.Employee.DepartmentName
	}

	keys, groups := groupEmployees(all, keyFn)
	grouped := make(map[string][]domain.Employee, len(keys))
	for i, k := range keys {
		grouped[k] = groups[i]
	}
	return grouped, nil
}

func (s *employeeService) ExportEmployees(ctx context.Context, nameFilter string) ([]domain.Employee, error) {
	return s.list(ctx, domain.EmployeeFilter{Name: nameFilter})
}

// ==================== Aggregates ====================

// CalculateAverageSalary treats a missing salary as zero and returns 0 for an
// empty store.
func (s *employeeService) CalculateAverageSalary(ctx context.Context) (float64, error) {
	all, err := s.list(ctx, domain.EmployeeFilter{})
	if err != nil {
		return 0, err
	}
	if len(all) == 0 {
		return 0, nil
	}

	var total float64
	for _, e := range all {
		total += e.SalaryOrZero()
	}
	return total / float64(len(all)), nil
}

// CalculateAverageAge returns the floored mean age, or 0 for an empty store.
func (s *employeeService) CalculateAverageAge(ctx context.Context) (float64, error) {
	all, err := s.list(ctx, domain.EmployeeFilter{})
	if err != nil {
		return 0, err
	}
	if len(all) == 0 {
		return 0, nil
	}

	var total float64
	for _, e := range all {
		total += float64(e.Age)
	}
	return math.Floor(total / float64(len(all))), nil
}

// ==================== Helpers ====================

// list fetches employees and fills in their age.
func (s *employeeService) list(ctx context.Context, filter domain.EmployeeFilter) ([]domain.Employee, error) {
	rows, err := s.employees.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	now := s.opts.now()
	for i := range rows {
		rows[i].Age = domain.AgeAt(rows[i].DateOfBirth, now)
	}
	if rows == nil {
		rows = []domain.Employee{}
	}
	return rows, nil
}

func (s *employeeService) groupKey(groupBy string) func(domain.Employee) string {
	if groupBy == GroupByDepartment {
		return func(e domain.Employee) string { return strconv.FormatInt(e.DepartmentID, 10) }
	}
	return func(e domain.Employee) string { return strconv.Itoa(e.Age) }
}

func isValidGroupBy(groupBy string) bool {
	return groupBy == GroupByDepartment || groupBy == GroupByAge
}

// groupEmployees buckets rows by key. Groups appear in order of their first
// member and keep the input order within each group.
func groupEmployees(rows []domain.Employee, key func(domain.Employee) string) ([]string, [][]domain.Employee) {
	index := make(map[string]int)
	var keys []string
	var groups [][]domain.Employee
	for _, e := range rows {
		k := key(e)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			keys = append(keys, k)
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], e)
	}
	return keys, groups
}
