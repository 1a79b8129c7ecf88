package httpresponse

import (
	"errors"
	"net/http"

	errs "akabo/internal/errors"
)

// WriteError maps the expected error kinds to their caller-visible status
// codes. Anything else is an internal fault and only the generic envelope
// goes out.
func WriteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errs.ErrUnauthorized):
		WriteResponseWithStatus(w, http.StatusUnauthorized,
			ErrorResponse{ErrorDescription: err.Error()})
	case errors.Is(err, errs.ErrInvalidInput),
		errors.Is(err, errs.ErrIllegalMove),
		errors.Is(err, errs.ErrDuplicate),
		errors.Is(err, errs.ErrNoMatch):
		WriteResponseWithStatus(w, http.StatusBadRequest,
			ErrorResponse{ErrorDescription: err.Error()})
	default:
		WriteInternalErrorResponse(w)
	}
}
