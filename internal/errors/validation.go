package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/yukikurage/devboard-api/internal/models"
)

// RegisterValidators adds the taskstatus and taskpriority tags to gin's validator.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	if err := v.RegisterValidation("taskstatus", func(fl validator.FieldLevel) bool {
		_, err := models.ParseTaskStatus(fl.Field().String())
		return err == nil
	}); err != nil {
		return err
	}
	return v.RegisterValidation("taskpriority", func(fl validator.FieldLevel) bool {
		_, err := models.ParseTaskPriority(fl.Field().String())
		return err == nil
	})
}

// FromBinding converts a ShouldBind error into a validation APIError listing
// each invalid field.
func FromBinding(err error) *APIError {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		fields := make(map[string]string, len(ve))
		msgs := make([]string, 0, len(ve))
		for _, fe := range ve {
			msg := fieldError(fe)
			fields[lowerFirst(fe.Field())] = msg
			msgs = append(msgs, msg)
		}
		return Validation(strings.Join(msgs, "; "), fields)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return Validation(fmt.Sprintf("%s has the wrong type", typeErr.Field), nil)
	}

	return ErrInvalidInput
}

// fieldError converts a single FieldError into a human-readable message.
func fieldError(fe validator.FieldError) string {
	field := lowerFirst(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "taskstatus":
		return fmt.Sprintf("%s must be one of: %s", field, joinStatuses())
	case "taskpriority":
		return fmt.Sprintf("%s must be one of: %s", field, joinPriorities())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}

func joinStatuses() string {
	out := make([]string, len(models.TaskStatuses))
	for i, s := range models.TaskStatuses {
		out[i] = string(s)
	}
	return strings.Join(out, ", ")
}

func joinPriorities() string {
	out := make([]string, len(models.TaskPriorities))
	for i, p := range models.TaskPriorities {
		out[i] = string(p)
	}
	return strings.Join(out, ", ")
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
