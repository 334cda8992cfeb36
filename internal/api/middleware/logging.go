package middleware

import (
	"log/slog"
	"net/http"

	"github.com/quincybot/rosterquiz/internal/middleware"
)

// Logging re-exports the shared request logging middleware
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger)
}
