package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/roomhive/service-reservation/internal/application"
	"github.com/roomhive/service-reservation/internal/common/response"
)

// AdminHandler exposes operational endpoints not meant for guest traffic.
type AdminHandler struct {
	service *application.ReservationService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(service *application.ReservationService) *AdminHandler {
	return &AdminHandler{service: service}
}

// RegisterRoutes registers all admin routes on the given router group.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup) {
	admin := r.Group("/api/v1/admin/reservations")
	{
		admin.GET("", h.ListAll)
		admin.GET("/stats", h.Stats)
		admin.POST("/:id/complete", h.Complete)
		admin.POST("/:id/no-show", h.NoShow)
	}
}

// ListAll handles GET /api/v1/admin/reservations.
func (h *AdminHandler) ListAll(c *gin.Context) {
	page, limit := parsePagination(c)
	items, total, err := h.service.ListAllReservations(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, items, total, page, limit)
}

// Stats handles GET /api/v1/admin/reservations/stats.
func (h *AdminHandler) Stats(c *gin.Context) {
	result, err := h.service.GetReservationStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// Complete handles POST /api/v1/admin/reservations/:id/complete.
func (h *AdminHandler) Complete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	result, err := h.service.CompleteReservation(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// NoShow handles POST /api/v1/admin/reservations/:id/no-show.
func (h *AdminHandler) NoShow(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	result, err := h.service.MarkNoShow(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}
