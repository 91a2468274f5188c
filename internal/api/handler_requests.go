package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bed-request-backend/internal/ticket"
)

// CreateRequest handles POST /api/requests.
func (h *Handler) CreateRequest(c *gin.Context) {
	var in ticket.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req, err := h.tickets.Create(c.Request.Context(), in)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

// AssignRequest handles POST /api/requests/:request_id/assign. It is invoked
// by the bed-inventory collaborator once a physical bed is reserved; a
// request that is no longer Pending gets a conflict, never a silent no-op.
func (h *Handler) AssignRequest(c *gin.Context) {
	req, err := h.tickets.Assign(c.Request.Context(), c.Param("request_id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// GetRequest handles GET /api/requests/:request_id.
func (h *Handler) GetRequest(c *gin.Context) {
	req, err := h.tickets.Get(c.Request.Context(), c.Param("request_id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// ListRequests handles GET /api/requests.
func (h *Handler) ListRequests(c *gin.Context) {
	reqs, err := h.tickets.List(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, reqs)
}
