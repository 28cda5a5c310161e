package errors

import (
	"errors"
	"net/http"
)

// ErrNotFound marks lookups of resources that do not exist; the
// management API maps it to 404.
var ErrNotFound = errors.New("not found")

type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func ToErrorResponse(err error) ErrorResponse {
	resp := ErrorResponse{Error: err.Error()}
	var k Kinder
	if errors.As(err, &k) {
		resp.Kind = string(k.FailureKind())
	}
	return resp
}

func ToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case KindResource.Matches(KindOf(err)):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
