package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/locvowork/employee_records/internal/domain"
)

var lettersOnly = regexp.MustCompile(`^[a-zA-Z]+$`)

type Validator struct {
	validate *validator.Validate
	now      func() time.Time
}

// New builds a validator. now decides what "past" means; nil uses time.Now.
func New(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	v := &Validator{validate: validator.New(), now: now}

	// Report fields by their JSON names.
	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// Date validates as the underlying time; the zero Date counts as missing.
	v.validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(domain.Date); ok {
			if d.IsZero() {
				return nil
			}
			return d.Time
		}
		return nil
	}, domain.Date{})

	// Custom validators
	v.validate.RegisterValidation("past", v.validatePast)
	v.validate.RegisterValidation("alphaonly", validateAlphaOnly)

	return v
}

// Validate checks struct tags and returns the first violation as a
// *domain.ValidationError.
func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &domain.ValidationError{Field: fe.Field(), Message: message(fe)}
	}
	return &domain.ValidationError{Message: err.Error()}
}

func (v *Validator) validatePast(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}
	y, m, d := v.now().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return t.Before(today)
}

func validateAlphaOnly(fl validator.FieldLevel) bool {
	return lettersOnly.MatchString(fl.Field().String())
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "past":
		return "must be in the past"
	case "alphaonly":
		return "must contain letters only"
	default:
		return fmt.Sprintf("failed on %s", fe.Tag())
	}
}
