package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bed-request-backend/internal/store"
	"bed-request-backend/internal/ticket"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	tickets *ticket.Service
}

// NewHandler creates a new API handler.
func NewHandler(tickets *ticket.Service) *Handler {
	return &Handler{tickets: tickets}
}

// abortWithError maps the core's typed errors onto HTTP statuses.
func abortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrInvalidTransition), errors.Is(err, store.ErrStaleState):
		status = http.StatusConflict
	case errors.Is(err, store.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
