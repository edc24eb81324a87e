package handlers

import (
	"log/slog"
	"net/http"

	"sommy-store/internal/apperr"

	"github.com/gin-gonic/gin"
)

// respondError translates the error taxonomy into HTTP statuses. Store
// failures are logged with their cause; clients only ever see the short
// message.
func respondError(c *gin.Context, log *slog.Logger, err error) {
	status := http.StatusInternalServerError

	switch apperr.KindOf(err) {
	case apperr.KindValidation, apperr.KindConflict:
		status = http.StatusBadRequest
	case apperr.KindNotFound:
		status = http.StatusNotFound
	default:
		log.Error("request failed", "path", c.FullPath(), "error", err)
	}

	c.JSON(status, gin.H{"message": apperr.Message(err)})
}
