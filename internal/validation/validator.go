// Package validation centraliza la validación de entrada (DTOs y campos sueltos).
package validation

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dropDatabas3/bizdesk/internal/domain/repository"
)

// Validator envuelve go-playground/validator con las reglas del dominio.
type Validator struct {
	v *validator.Validate
}

var std = New()

// New crea un validador con reglas propias y nombres de campo JSON.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("mobile", func(fl validator.FieldLevel) bool {
		return ValidMobile(fl.Field().String())
	})
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return repository.Role(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("otp", func(fl validator.FieldLevel) bool {
		return ValidCode(fl.Field().String())
	})

	return &Validator{v: v}
}

// Struct valida s y devuelve *FieldErrors si algo falla.
func (x *Validator) Struct(s any) error {
	err := x.v.Struct(s)
	if err == nil {
		return nil
	}
	ves, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	out := &FieldErrors{Fields: make(map[string]string, len(ves))}
	for _, fe := range ves {
		out.Fields[fe.Field()] = message(fe)
	}
	return out
}

// Struct valida con el validador por defecto del paquete.
func Struct(s any) error { return std.Struct(s) }

// IsEmail reporta si s es un email bien formado.
func IsEmail(s string) bool {
	return s != "" && std.v.Var(s, "email,max=254") == nil
}

// FieldErrors mapea campo JSON -> motivo.
type FieldErrors struct {
	Fields map[string]string
}

func (e *FieldErrors) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return strings.Join(parts, "; ")
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters long", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters long", fe.Param())
	case "mobile":
		return "must be a valid mobile number"
	case "role":
		return "must be one of admin, member, user"
	case "otp":
		return "must be a numeric code"
	case "excluded_with":
		return "cannot be combined with " + fe.Param()
	default:
		return "is invalid"
	}
}
