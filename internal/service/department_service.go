package service

import (
	"context"
	"strconv"

	"github.com/locvowork/employee_records/internal/domain"
	"github.com/locvowork/employee_records/internal/validator"
)

// DepartmentService handles business logic for departments
type DepartmentService interface {
	ListDepartments(ctx context.Context) ([]domain.Department, error)
	CreateDepartment(ctx context.Context, candidate domain.Department) (domain.Department, error)
	GetDepartment(ctx context.Context, id int64) (domain.Department, error)
	UpdateDepartment(ctx context.Context, updated domain.Department) (domain.Department, error)
	DeleteDepartment(ctx context.Context, id int64) error
}

type departmentService struct {
	repo     domain.DepartmentRepository
	validate *validator.Validator
	opts     options
}

// NewDepartmentService creates a new DepartmentService instance
func NewDepartmentService(repo domain.DepartmentRepository, opts ...Option) DepartmentService {
	o := buildOptions(opts)
	return &departmentService{repo: repo, validate: o.validator(), opts: o}
}

func (s *departmentService) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	departments, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if departments == nil {
		departments = []domain.Department{}
	}
	return departments, nil
}

// CreateDepartment persists candidate; the store assigns the id.
func (s *departmentService) CreateDepartment(ctx context.Context, candidate domain.Department) (domain.Department, error) {
	if err := s.validate.Validate(&candidate); err != nil {
		return domain.Department{}, err
	}

	candidate.ID = 0
	if err := s.repo.Create(ctx, &candidate); err != nil {
		return domain.Department{}, err
	}

	s.opts.record(ctx, domain.EntityDepartment, strconv.FormatInt(candidate.ID, 10), domain.ChangeCreated)
	return candidate, nil
}

func (s *departmentService) GetDepartment(ctx context.Context, id int64) (domain.Department, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Department{}, err
	}
	return *d, nil
}

// UpdateDepartment replaces every field of the department with updated.ID.
func (s *departmentService) UpdateDepartment(ctx context.Context, updated domain.Department) (domain.Department, error) {
	if err := s.validate.Validate(&updated); err != nil {
		return domain.Department{}, err
	}
	if _, err := s.repo.GetByID(ctx, updated.ID); err != nil {
		return domain.Department{}, err
	}

	if err := s.repo.Update(ctx, &updated); err != nil {
		return domain.Department{}, err
	}

	s.opts.record(ctx, domain.EntityDepartment, strconv.FormatInt(updated.ID, 10), domain.ChangeUpdated)
	return updated, nil
}

// DeleteDepartment removes a department. The store rejects the delete with a
// ConflictError while employees still reference it.
func (s *departmentService) DeleteDepartment(ctx context.Context, id int64) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.opts.record(ctx, domain.EntityDepartment, strconv.FormatInt(id, 10), domain.ChangeDeleted)
	return nil
}
