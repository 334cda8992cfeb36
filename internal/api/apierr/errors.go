package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/quincybot/rosterquiz/internal/model"
	"github.com/quincybot/rosterquiz/internal/services/auth"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInvalidNickname    = "INVALID_NICKNAME"
	CodeInvalidPassword    = "INVALID_PASSWORD"
	CodeNicknameTaken      = "NICKNAME_TAKEN"
	CodeNoPasswordSet      = "NO_PASSWORD_SET"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeSessionNotFound    = "SESSION_NOT_FOUND"
	CodeOpenGameNotFound   = "OPEN_GAME_NOT_FOUND"
	CodeOpenGameExists     = "OPEN_GAME_EXISTS"
	CodeSelfJoin           = "SELF_JOIN"
	CodeNotYourTurn        = "NOT_YOUR_TURN"
	CodeNotInSession       = "NOT_IN_SESSION"
	CodeInvalidSettings    = "INVALID_SETTINGS"
	CodeRosterUnavailable  = "ROSTER_UNAVAILABLE"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, model.ErrUserNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeUserNotFound, "Player not found"}}
	case errors.Is(err, model.ErrNicknameTaken):
		return &httpError{http.StatusConflict, APIError{CodeNicknameTaken, "Nickname already taken"}}
	case errors.Is(err, model.ErrInvalidNickname):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidNickname, "Nickname must be 3-15 letters, digits, _ or -"}}
	case errors.Is(err, model.ErrInvalidPassword):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidPassword, "Password must be at least 3 characters"}}
	case errors.Is(err, model.ErrNoPasswordSet):
		return &httpError{http.StatusConflict, APIError{CodeNoPasswordSet, "Account has no password set"}}
	case errors.Is(err, model.ErrSessionNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeSessionNotFound, "Game not found"}}
	case errors.Is(err, model.ErrOpenGameNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeOpenGameNotFound, "Open game not found or already started"}}
	case errors.Is(err, model.ErrOpenGameExists):
		return &httpError{http.StatusConflict, APIError{CodeOpenGameExists, "You already have an open game"}}
	case errors.Is(err, model.ErrSelfJoin):
		return &httpError{http.StatusConflict, APIError{CodeSelfJoin, "Cannot join your own game"}}
	case errors.Is(err, model.ErrNotYourTurn):
		return &httpError{http.StatusForbidden, APIError{CodeNotYourTurn, "Not your turn"}}
	case errors.Is(err, model.ErrNotInSession):
		return &httpError{http.StatusForbidden, APIError{CodeNotInSession, "You are not seated in this game"}}
	case errors.Is(err, model.ErrInvalidSettings):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidSettings, "Invalid game settings"}}
	case errors.Is(err, model.ErrRosterUnavailable), errors.Is(err, model.ErrClubNotFound):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeRosterUnavailable, "Roster data unavailable"}}

	case errors.Is(err, auth.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredentials, "Invalid nickname or password"}}
	case errors.Is(err, auth.ErrInvalidSession):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or expired session"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
