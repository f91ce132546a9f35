package httpx

import (
	"errors"
	"net/http"

	"github.com/meridian-crm/meridian-crm/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807.
// The detail carries the domain message verbatim so clients can surface it.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrInvalidCredentials):
		Problem(w, http.StatusUnauthorized, "Unauthorized", err.Error())
	case errors.Is(err, shared.ErrForbidden):
		Problem(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case shared.IsConflict(err):
		Problem(w, http.StatusConflict, "Conflict", err.Error())
	case shared.IsValidation(err):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
