// Package validation provides struct validation built on
// go-playground/validator plus structural graph checks.
package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validate is the shared validator instance with custom rules registered.
var Validate *validator.Validate

var taskIDPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

func init() {
	Validate = validator.New()

	_ = Validate.RegisterValidation("task_id", func(fl validator.FieldLevel) bool {
		return taskIDPattern.MatchString(fl.Field().String())
	})

	// Report field names using JSON tags
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
}

// Error describes a single failed rule.
type Error struct {
	Field   string      `json:"field"`
	Value   interface{} `json:"value"`
	Message string      `json:"message"`
}

func (e Error) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s (got: %v)", e.Field, e.Message, e.Value)
}

// Errors aggregates failed rules.
type Errors []Error

func (e Errors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Struct validates a struct against its validate tags.
func Struct(v interface{}) error {
	err := Validate.Struct(v)
	if err == nil {
		return nil
	}
	var out Errors
	if fieldErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range fieldErrors {
			out = append(out, Error{
				Field:   fe.Field(),
				Value:   fe.Value(),
				Message: fmt.Sprintf("failed '%s' rule", fe.Tag()),
			})
		}
		return out
	}
	return err
}

// TaskID validates a single task identifier.
func TaskID(id string) error {
	if !taskIDPattern.MatchString(id) {
		return Error{Field: "id", Value: id, Message: "failed 'task_id' rule"}
	}
	return nil
}
