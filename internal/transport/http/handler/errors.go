package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/carematch/carematch/internal/domain"
	"github.com/gin-gonic/gin"
)

const (
	errInternalServer = "Internal server error"
	errForbidden      = "Forbidden"
)

// respondError translates domain errors into the HTTP error taxonomy:
// not-found → 404, forbidden → 403, workflow-state violations → 400 with
// the domain message, anything else → 500.
func respondError(c *gin.Context, logger *slog.Logger, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrJobNotFound),
		errors.Is(err, domain.ErrNotificationNotFound),
		errors.Is(err, domain.ErrConversationNotFound),
		errors.Is(err, domain.ErrProfileNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": errForbidden})
	case errors.Is(err, domain.ErrJobLocked),
		errors.Is(err, domain.ErrWindowClosed),
		errors.Is(err, domain.ErrWindowOpen),
		errors.Is(err, domain.ErrNotConfirmed),
		errors.Is(err, domain.ErrCannotRestart),
		errors.Is(err, domain.ErrNoteRequired),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidCursor):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.ErrorContext(c.Request.Context(), op, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
	}
}
