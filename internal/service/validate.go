package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/softdesk/internal/apperror"
	"github.com/sakif/softdesk/internal/model"
)

// Field limits shared by the input types.
const (
	MaxUsernameLength = 150
	MaxNameLength     = 100
)

// usernamePattern accepts Unicode letters and digits plus _ . @ + -.
var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)

var validate = newValidator()

// newValidator reports fields under their JSON names and knows the closed
// enums of the model package.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return f.Name
		}
		return name
	})

	rules := map[string]func(string) bool{
		"username":     usernamePattern.MatchString,
		"project_type": func(s string) bool { return model.ProjectType(s).Valid() },
		"priority":     func(s string) bool { return model.Priority(s).Valid() },
		"tag":          func(s string) bool { return model.Tag(s).Valid() },
		"status":       func(s string) bool { return model.Status(s).Valid() },
	}
	for tag, ok := range rules {
		err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return ok(fl.Field().String())
		})
		if err != nil {
			panic(fmt.Sprintf("service: registering %q validation: %v", tag, err))
		}
	}
	return v
}

// validateInput runs the struct's validate tags and turns failures into a
// single apperror.Invalid carrying one message list per JSON field.
func validateInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("service: validating input: %w", err)
	}

	fields := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = append(fields[fe.Field()], fieldMessage(fe))
	}
	return apperror.Invalid(fields)
}

func fieldMessage(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "min":
		if isString {
			return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	case "gte":
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "lte":
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	case "username":
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	case "project_type", "priority", "tag", "status":
		return fmt.Sprintf("%q is not a valid choice.", fmt.Sprint(fe.Value()))
	}
	return fmt.Sprintf("Failed the %q check.", fe.Tag())
}

// NullableString tells an absent JSON key apart from an explicit null in
// PATCH bodies. Set is false when the key was absent.
type NullableString struct {
	Set   bool
	Value *string
}

// UnmarshalJSON records that the field was present, even when null.
func (n *NullableString) UnmarshalJSON(b []byte) error {
	n.Set = true
	if string(b) == "null" {
		n.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	n.Value = &s
	return nil
}

// Clear reports whether the caller asked to null the field.
func (n NullableString) Clear() bool {
	return n.Set && (n.Value == nil || *n.Value == "")
}
