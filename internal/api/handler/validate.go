package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"unicode"

	"github.com/Rrens/article-hub/internal/api/response"
	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON field names rather than Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("nowhitespace", func(fl validator.FieldLevel) bool {
		return !strings.ContainsFunc(fl.Field().String(), unicode.IsSpace)
	})

	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return strings.ContainsFunc(s, unicode.IsLetter) && strings.ContainsFunc(s, unicode.IsDigit)
	})

	return v
}

// decodeAndValidate reads a JSON body into dst and validates it. On failure
// it writes the error response and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			response.BadRequest(w, "request body is empty")
			return false
		}
		response.BadRequest(w, "invalid request body")
		return false
	}
	return validateStruct(w, dst)
}

func validateStruct(w http.ResponseWriter, v any) bool {
	err := validate.Struct(v)
	if err == nil {
		return true
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		response.BadRequest(w, err.Error())
		return false
	}

	response.ValidationError(w, fieldErrors(validationErrors))
	return false
}

func fieldErrors(errs validator.ValidationErrors) map[string]string {
	fields := make(map[string]string, len(errs))
	for _, e := range errs {
		// Namespace is "UserCreate.email" or "ArticleCreate.tags[0]"
		field := e.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}

		switch e.Tag() {
		case "required":
			fields[field] = "field is required"
		case "email":
			fields[field] = "invalid email format"
		case "min":
			fields[field] = fmt.Sprintf("must be at least %s characters", e.Param())
		case "max":
			fields[field] = fmt.Sprintf("must be at most %s", e.Param())
		case "nowhitespace":
			fields[field] = "must not contain whitespace"
		case "password":
			fields[field] = "must contain at least one letter and one digit"
		default:
			fields[field] = "validation failed on " + e.Tag()
		}
	}
	return fields
}
