package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"onboard/internal/apperr"
	"onboard/internal/auth"
)

var validate = validator.New()

// decode parses and validates a JSON request body.
func decode[T any](r *http.Request) (*T, error) {
	var in T
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		return nil, apperr.BadRequest("Invalid JSON body")
	}
	if err := validate.Struct(&in); err != nil {
		return nil, validationError(err)
	}
	return &in, nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s failed validation on the '%s' rule", fe.Field(), fe.Tag()))
		}
		return apperr.BadRequest(msgs...)
	}
	return apperr.BadRequest(err.Error())
}

func reqCtx(r *http.Request) *auth.RequestContext {
	return auth.RequestContextFrom(r.Context())
}
