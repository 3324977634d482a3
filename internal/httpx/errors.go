package httpx

import (
	"net/http"

	"github.com/sundayezeilo/usermgmt/internal/errx"
)

type kindResponse struct {
	status int
	code   string
}

var kindResponses = map[errx.Kind]kindResponse{
	errx.NotFound:     {http.StatusNotFound, "not_found"},
	errx.Conflict:     {http.StatusConflict, "conflict"},
	errx.Invalid:      {http.StatusBadRequest, "invalid_input"},
	errx.Unauthorized: {http.StatusUnauthorized, "unauthorized"},
	errx.Forbidden:    {http.StatusForbidden, "forbidden"},
	errx.Unavailable:  {http.StatusServiceUnavailable, "unavailable"},
}

var internalResponse = kindResponse{http.StatusInternalServerError, "internal_error"}

// responseFor returns the status and code for kind. Unknown and Internal
// both map to 500.
func responseFor(kind errx.Kind) kindResponse {
	if r, ok := kindResponses[kind]; ok {
		return r
	}
	return internalResponse
}

// WriteErrorKind writes an error body with the status and code for kind.
func WriteErrorKind(w http.ResponseWriter, kind errx.Kind, message string) {
	r := responseFor(kind)
	WriteError(w, r.status, r.code, message, nil)
}
