package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
	"github.com/uniexp/uniexp-admin-backend/internal/models"
	"github.com/uniexp/uniexp-admin-backend/internal/services"
)

// EventHandler serves stored events
type EventHandler struct {
	eventService services.EventServiceInterface
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(eventService services.EventServiceInterface) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// List handles GET /events?status=&limit=&cursor=
func (h *EventHandler) List(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	status := models.EventStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		badRequest(c, "Invalid status filter")
		return
	}
	limit := cast.ToInt(c.DefaultQuery("limit", "20"))

	page, err := h.eventService.ListEvents(c.Request.Context(), sess, status, limit, c.Query("cursor"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Get handles GET /events/:id
func (h *EventHandler) Get(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	detail, err := h.eventService.GetEvent(c.Request.Context(), sess, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// Categories handles GET /events/categories
func (h *EventHandler) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": models.Categories()})
}
