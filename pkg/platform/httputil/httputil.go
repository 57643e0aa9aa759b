// Package httputil writes JSON bodies and maps domain error codes onto HTTP
// statuses.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "friendsd/pkg/domain-errors"
)

// ErrorResponse is the error body shape shared by all handlers.
type ErrorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

// WriteJSON writes v with status. Encoding errors are ignored: the header is
// already sent.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes err as an ErrorResponse. Internal failures never leak
// their message.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	if code == "" {
		code = dErrors.CodeInternal
	}
	status := StatusFor(code)

	body := ErrorResponse{Error: string(code)}
	if status < http.StatusInternalServerError {
		var de *dErrors.Error
		if errors.As(err, &de) {
			body.Description = de.Message
		}
	}
	WriteJSON(w, status, body)
}

// StatusFor maps a domain code to an HTTP status.
func StatusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeBadRequest, dErrors.CodeValidation, dErrors.CodeInvalidInput:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeNotFound, dErrors.CodeUnknownTarget:
		return http.StatusNotFound
	case dErrors.CodeConflict, dErrors.CodeAlreadySent, dErrors.CodeAlreadyReceived, dErrors.CodeAlreadyFriends:
		return http.StatusConflict
	case dErrors.CodeSelfTarget, dErrors.CodeTargetUnreachable, dErrors.CodeNotFriends, dErrors.CodeNoSuchInvitation:
		return http.StatusUnprocessableEntity
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	case dErrors.CodeUnavailable, dErrors.CodeIdentityLoadFailed, dErrors.CodeResolverUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
