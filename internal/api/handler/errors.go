package handler

import (
	"net/http"

	"github.com/quincybot/rosterquiz/internal/api/apierr"
)

// Re-export from apierr for convenience
type APIError = apierr.APIError
type ErrorResponse = apierr.ErrorResponse

// Re-export error codes
const (
	CodeInvalidRequest     = apierr.CodeInvalidRequest
	CodeUnauthorized       = apierr.CodeUnauthorized
	CodeInvalidCredentials = apierr.CodeInvalidCredentials
	CodeInvalidNickname    = apierr.CodeInvalidNickname
	CodeInvalidPassword    = apierr.CodeInvalidPassword
	CodeNicknameTaken      = apierr.CodeNicknameTaken
	CodeNoPasswordSet      = apierr.CodeNoPasswordSet
	CodeUserNotFound       = apierr.CodeUserNotFound
	CodeSessionNotFound    = apierr.CodeSessionNotFound
	CodeOpenGameNotFound   = apierr.CodeOpenGameNotFound
	CodeOpenGameExists     = apierr.CodeOpenGameExists
	CodeSelfJoin           = apierr.CodeSelfJoin
	CodeNotYourTurn        = apierr.CodeNotYourTurn
	CodeNotInSession       = apierr.CodeNotInSession
	CodeInvalidSettings    = apierr.CodeInvalidSettings
	CodeRosterUnavailable  = apierr.CodeRosterUnavailable
	CodeInternalError      = apierr.CodeInternalError
)

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return apierr.NewUnauthorizedError()
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return apierr.NewInternalError()
}
