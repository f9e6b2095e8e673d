package reservation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrNotFound   = errors.New("reservation flow not found")
	ErrSubmitting = errors.New("a submission is already in progress")
	ErrClosed     = errors.New("reservation flow was closed")
	ErrCompleted  = errors.New("reservation flow already completed")
	ErrWrongStep  = errors.New("action not allowed at the current step")
	ErrNoPayment  = errors.New("no payment in progress")

	// ErrOrderMismatch is returned by Payments.Approve when the approved
	// order is not the one opened for the reservation
	ErrOrderMismatch = errors.New("approved order does not match checkout")
)

// ValidationError lists the fields that block a transition
type ValidationError struct {
	Fields []string `json:"fields"`
}

func (e *ValidationError) Error() string {
	return "invalid fields: " + strings.Join(e.Fields, ", ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks a struct's validate tags and reports failures by JSON name
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return &ValidationError{Fields: fields}
}
