package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/roomhive/service-reservation/internal/application"
	"github.com/roomhive/service-reservation/internal/common/response"
)

// InventoryHandler handles HTTP requests for inventory calendar operations.
type InventoryHandler struct {
	service *application.InventoryService
}

// NewInventoryHandler creates a new InventoryHandler.
func NewInventoryHandler(service *application.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: service}
}

// RegisterRoutes registers all inventory routes on the given router group.
func (h *InventoryHandler) RegisterRoutes(r *gin.RouterGroup) {
	inventory := r.Group("/api/v1/inventory")
	{
		inventory.POST("/calendar", h.SeedCalendar)
		inventory.GET("/rooms/:roomId/calendar", h.GetCalendar)
		inventory.PATCH("/rooms/:roomId/days/:date", h.AdjustDay)
	}
}

// SeedCalendar handles POST /api/v1/inventory/calendar.
func (h *InventoryHandler) SeedCalendar(c *gin.Context) {
	var req application.SeedCalendarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.SeedCalendar(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// GetCalendar handles GET /api/v1/inventory/rooms/:roomId/calendar?from=...&to=...
func (h *InventoryHandler) GetCalendar(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("roomId"))
	if err != nil {
		response.BadRequest(c, "invalid room ID")
		return
	}

	from, ok := parseDateQuery(c, "from")
	if !ok {
		return
	}
	to, ok := parseDateQuery(c, "to")
	if !ok {
		return
	}

	result, err := h.service.GetCalendar(c.Request.Context(), roomID, from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// AdjustDay handles PATCH /api/v1/inventory/rooms/:roomId/days/:date.
func (h *InventoryHandler) AdjustDay(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("roomId"))
	if err != nil {
		response.BadRequest(c, "invalid room ID")
		return
	}
	date, err := time.Parse("2006-01-02", c.Param("date"))
	if err != nil {
		response.BadRequest(c, "invalid date, expected YYYY-MM-DD")
		return
	}

	var req application.AdjustDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.AdjustDay(c.Request.Context(), roomID, date, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

func parseDateQuery(c *gin.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		response.BadRequest(c, name+" query parameter is required")
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		response.BadRequest(c, "invalid "+name+" date, expected YYYY-MM-DD")
		return time.Time{}, false
	}
	return t, true
}
