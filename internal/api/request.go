package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

var validate = validator.New()

// createSessionRequest is the body of POST /v1/sessions. The body is optional.
type createSessionRequest struct {
	DarkMode *bool `json:"dark_mode"`
}

// catalogQuery is the query string of GET /v1/catalog.
type catalogQuery struct {
	Filter string `validate:"max=512"`
}

// validationError lists every field that failed its tag.
type validationError struct {
	msgs []string
}

func (e *validationError) Error() string {
	return "invalid request: " + strings.Join(e.msgs, "; ")
}

// validateRequest runs struct tag validation, flattening the result into a
// *validationError.
func validateRequest(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	out := &validationError{}
	for _, fe := range fieldErrs {
		out.msgs = append(out.msgs, formatFieldError(fe))
	}
	return out
}

func formatFieldError(e validator.FieldError) string {
	field := strings.ToLower(e.Namespace())
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "gte":
		return fmt.Sprintf("%s must be >= %s", field, e.Param())
	case "gt":
		return fmt.Sprintf("%s must be > %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	}
	return fmt.Sprintf("%s is invalid", field)
}

// decodeJSON reads a size-limited JSON body into v. An empty body is
// accepted when allowEmpty is set.
func decodeJSON(r *http.Request, v interface{}, allowEmpty bool) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if err == io.EOF && allowEmpty {
		return nil
	}
	if err != nil {
		return &validationError{msgs: []string{fmt.Sprintf("invalid JSON: %s", err)}}
	}
	return validateRequest(v)
}
