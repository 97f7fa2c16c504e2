package validate

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Error describes rejected input as a map of field name to message.
type Error struct {
	Details map[string]string
}

func NewError(field, message string) *Error {
	e := &Error{Details: map[string]string{}}
	e.Add(field, message)
	return e
}

// Add keeps the first message reported for a field.
func (e *Error) Add(field, message string) {
	if e.Details == nil {
		e.Details = map[string]string{}
	}
	if _, ok := e.Details[field]; !ok {
		e.Details[field] = message
	}
}

func (e *Error) Error() string {
	fields := make([]string, 0, len(e.Details))
	for field := range e.Details {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, e.Details[field]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Merge combines validation errors; nil and non-validation errors are returned as is.
func Merge(errs ...error) error {
	var merged *Error
	for _, err := range errs {
		if err == nil {
			continue
		}
		var ve *Error
		if !errors.As(err, &ve) {
			return err
		}
		if merged == nil {
			merged = &Error{Details: map[string]string{}}
		}
		for field, message := range ve.Details {
			merged.Add(field, message)
		}
	}
	if merged == nil {
		return nil
	}
	return merged
}

var (
	instance *validator.Validate
	once     sync.Once
)

func get() *validator.Validate {
	once.Do(func() {
		instance = validator.New()
		instance.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = instance.RegisterValidation("password", validPassword)
	})
	return instance
}

// Struct validates a single struct object
func Struct(s interface{}) error {
	if s == nil {
		return fmt.Errorf("is nil")
	}
	if !isStruct(s) {
		return fmt.Errorf("not a struct")
	}
	return convert(get().Struct(s), "")
}

// Var validates a single value against the validator tag, reporting failures under field.
func Var(field string, value interface{}, tag string) error {
	return convert(get().Var(value, tag), field)
}

// UUID checks the canonical 8-4-4-4-12 hexadecimal identifier shape.
func UUID(field, value string) error {
	if value == "" {
		return NewError(field, fmt.Sprintf("%s is required", field))
	}
	if err := Var(field, strings.ToLower(value), "uuid"); err != nil {
		return NewError(field, "Invalid UUID format")
	}
	return nil
}

func convert(err error, field string) error {
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	var invalidValidationError *validator.InvalidValidationError

	if errors.As(err, &validationErrors) {
		result := &Error{Details: map[string]string{}}
		for _, fieldErr := range validationErrors {
			name := fieldErr.Field()
			if field != "" {
				name = field
			}
			result.Add(name, message(name, fieldErr))
		}
		return result
	} else if errors.As(err, &invalidValidationError) {
		return fmt.Errorf("invalid validation error: %w", err)
	}
	return fmt.Errorf("unknown validation error: %w", err)
}

func message(name string, fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", name)
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters long", name, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", name, fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("%s must not exceed %s characters", name, fe.Param())
		}
		return fmt.Sprintf("%s must not exceed %s", name, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", name, strings.Join(strings.Fields(fe.Param()), ", "))
	case "uuid":
		return fmt.Sprintf("%s must be a valid UUID", name)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", name)
	case "eqfield":
		return fmt.Sprintf("%s must match %s", name, lowerFirst(fe.Param()))
	case "nefield":
		return fmt.Sprintf("%s must differ from %s", name, lowerFirst(fe.Param()))
	case "password":
		return fmt.Sprintf("%s must contain an uppercase letter, a lowercase letter and a digit", name)
	}
	return fmt.Sprintf("%s is invalid (%s)", name, fe.Tag())
}

func validPassword(fl validator.FieldLevel) bool {
	var upper, lower, digit bool
	for _, r := range fl.Field().String() {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

func isStruct(s interface{}) bool {
	r := reflect.TypeOf(s)
	if r.Kind() == reflect.Ptr {
		r = r.Elem()
	}
	return r.Kind() == reflect.Struct
}
