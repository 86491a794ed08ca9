package domain

import "fmt"

// ValidationError reports malformed or missing input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NotFoundError reports that the referenced entity does not exist.
type NotFoundError struct {
	Entity string
	Key    interface{}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %v", e.Entity, e.Key)
}

// ConflictError reports a uniqueness or referential-integrity violation.
type ConflictError struct {
	Entity string
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict: %s", e.Entity, e.Reason)
}

// InvalidGroupByError reports an unsupported grouping key.
type InvalidGroupByError struct {
	Value string
}

func (e *InvalidGroupByError) Error() string {
	return fmt.Sprintf("invalid groupBy value: %q", e.Value)
}

const (
	EntityDepartment = "department"
	EntityEmployee   = "employee"

	// ReasonHasEmployees is the conflict reason for deleting a referenced department.
	ReasonHasEmployees = "has existing employees"
)
