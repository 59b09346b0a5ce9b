package service

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"salonhub-backend/internal/domain"
)

// ErrValidation marks a request rejected before any write.
var ErrValidation = errors.New("validation failed")

// ErrForbidden is returned when a branch admin touches another branch's record.
var ErrForbidden = errors.New("record belongs to another branch")

// owns reports ErrForbidden unless the record's branch matches scope. An
// empty scope is the super admin and owns every record.
func owns(scope, branch string) error {
	if scope == "" || strings.EqualFold(strings.TrimSpace(scope), strings.TrimSpace(branch)) {
		return nil
	}
	return ErrForbidden
}

// ValidationError lists the offending fields and their messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field, msg string) error {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("expense_category", func(fl validator.FieldLevel) bool {
		value := strings.ToLower(fl.Field().String())
		for _, c := range domain.ExpenseCategories {
			if c == value {
				return true
			}
		}
		return false
	})
	return v
}

// check runs struct validation and converts failures into a ValidationError.
func check(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := &ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Fields[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	case "expense_category":
		return "must be one of " + strings.Join(domain.ExpenseCategories, ", ")
	case "datetime":
		return "must be a date formatted " + fe.Param()
	case "email":
		return "must be a valid email"
	case "min":
		return "must have at least " + fe.Param()
	case "max":
		return "must have at most " + fe.Param()
	}
	return fe.Error()
}
