package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorsUnwrapThroughWrapping(t *testing.T) {
	err := fmt.Errorf("service: %w", &NotFoundError{Entity: EntityDepartment, Key: int64(3)})

	var nf *NotFoundError
	assert.True(t, errors.As(err, &nf))
	assert.Equal(t, "department not found: 3", nf.Error())

	var conflict *ConflictError
	assert.False(t, errors.As(err, &conflict))
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "name: is required", (&ValidationError{Field: "name", Message: "is required"}).Error())
	assert.Equal(t, "employee is required", (&ValidationError{Message: "employee is required"}).Error())
	assert.Equal(t, "department conflict: has existing employees",
		(&ConflictError{Entity: EntityDepartment, Reason: ReasonHasEmployees}).Error())
	assert.Equal(t, `invalid groupBy value: "bogus"`, (&InvalidGroupByError{Value: "bogus"}).Error())
}
