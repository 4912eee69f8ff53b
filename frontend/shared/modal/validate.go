package modal

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldErrors maps a form field name to its Spanish message.
type FieldErrors map[string]string

func (e FieldErrors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields under their form names so errors line up with inputs.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate runs the struct's validate tags and returns nil when input is
// valid.
func Validate(input any) FieldErrors {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"_": "Formulario no válido"}
	}
	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		out[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if", "required_with":
		return "Este campo es obligatorio"
	case "email":
		return "Introduce un email válido"
	case "eqfield":
		return "Las contraseñas no coinciden"
	case "min":
		return "Debe tener al menos " + fe.Param() + " caracteres"
	case "max":
		return "No puede superar " + fe.Param() + " caracteres"
	case "oneof":
		return "Valor no permitido"
	case "gt", "gte":
		return "Selecciona un valor"
	default:
		return "Valor no válido"
	}
}
