package api

import (
	"errors"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"clinic-logistics-backend/internal/schedule"
	"clinic-logistics-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store   *store.GormStore
	engine  *schedule.Engine
	webpush *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(s *store.GormStore, engine *schedule.Engine, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		store:   s,
		engine:  engine,
		webpush: webpushOptions,
	}
}

// abortBookingError maps engine errors onto HTTP statuses. Engine errors are
// surfaced verbatim; anything unrecognized is an internal error.
func abortBookingError(c *gin.Context, err error) {
	switch {
	case schedule.IsValidation(err):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, schedule.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, schedule.ErrResourceConflict), errors.Is(err, schedule.ErrRequesterConflict):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, schedule.ErrOutOfHours), errors.Is(err, schedule.ErrResourceNotFound):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
