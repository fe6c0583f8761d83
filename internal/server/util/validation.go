package util

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

// Messages maps a json field name to the message shown when that field
// fails to bind or validate.
type Messages map[string]string

// BindAndValidate binds the request body into req and validates it. The
// returned message is empty on success. Otherwise it is the message of the
// first failing field, or fallback when the field has none.
func BindAndValidate(c echo.Context, req any, messages Messages, fallback string) string {
	if err := c.Bind(req); err != nil {
		return FieldMessage(err, messages, fallback)
	}
	if err := c.Validate(req); err != nil {
		return FieldMessage(err, messages, fallback)
	}
	return ""
}

// FieldMessage resolves err to the message of the field it reports on.
// Validation field names are json names, see server.CustomValidator.
func FieldMessage(err error, messages Messages, fallback string) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			// dive errors name the element, e.g. models[2]
			name, _, _ := strings.Cut(fe.Field(), "[")
			if msg, ok := messages[name]; ok {
				return msg
			}
		}
		return fallback
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		name, _, _ := strings.Cut(typeErr.Field, ".")
		if msg, ok := messages[name]; ok {
			return msg
		}
	}
	return fallback
}
