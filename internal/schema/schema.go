// Package schema validates entities against the field rules declared in their
// `validate` struct tags. The same rules guard inbound requests on the server and
// inbound responses in the client gateway.
package schema

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Report JSON names so messages match the wire format.
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
		validate.RegisterCustomTypeFunc(func(v reflect.Value) interface{} {
			d, ok := v.Interface().(decimal.Decimal)
			if !ok {
				return nil
			}
			f, _ := d.Float64()
			return f
		}, decimal.Decimal{})
	})
	return validate
}

// FieldError describes one failed rule.
type FieldError struct {
	Field string
	Rule  string
	Param string
}

func (f FieldError) String() string {
	if f.Param != "" {
		return fmt.Sprintf("%s must satisfy %s=%s", f.Field, f.Rule, f.Param)
	}
	return fmt.Sprintf("%s is %s", f.Field, describe(f.Rule))
}

func describe(rule string) string {
	switch rule {
	case "required":
		return "required"
	case "email":
		return "not a valid email"
	default:
		return "invalid (" + rule + ")"
	}
}

// ValidationError lists every failed field of a value.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.String()
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validate checks a struct, or every element of a slice of structs.
func Validate(v interface{}) error {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return &ValidationError{Fields: []FieldError{{Field: "value", Rule: "required"}}}
		}
		rv = rv.Elem()
	}

	if rv.Kind() == reflect.Slice {
		for i := 0; i < rv.Len(); i++ {
			if err := Validate(rv.Index(i).Interface()); err != nil {
				var verr *ValidationError
				if errors.As(err, &verr) {
					for j := range verr.Fields {
						verr.Fields[j].Field = fmt.Sprintf("[%d].%s", i, verr.Fields[j].Field)
					}
				}
				return err
			}
		}
		return nil
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	err := instance().Struct(rv.Interface())
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		out.Fields = append(out.Fields, FieldError{Field: field, Rule: fe.Tag(), Param: fe.Param()})
	}
	return out
}
