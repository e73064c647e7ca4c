package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/roomhive/service-reservation/internal/application"
	"github.com/roomhive/service-reservation/internal/common/response"
)

// ReservationHandler handles HTTP requests for reservation operations.
type ReservationHandler struct {
	service *application.ReservationService
}

// NewReservationHandler creates a new ReservationHandler.
func NewReservationHandler(service *application.ReservationService) *ReservationHandler {
	return &ReservationHandler{service: service}
}

// RegisterRoutes registers all reservation routes on the given router group.
func (h *ReservationHandler) RegisterRoutes(r *gin.RouterGroup) {
	reservations := r.Group("/api/v1/reservations")
	{
		reservations.POST("", h.Create)
		reservations.GET("", h.List)
		reservations.GET("/by-code/:code", h.GetByCode)
		reservations.GET("/:id", h.Get)
		reservations.PATCH("/:id", h.Update)
		reservations.POST("/:id/confirm", h.Confirm)
		reservations.POST("/:id/check-in", h.CheckIn)
		reservations.POST("/:id/check-out", h.CheckOut)
		reservations.POST("/:id/cancel", h.Cancel)
		reservations.GET("/:id/refund-quote", h.RefundQuote)
	}
}

// Create handles POST /api/v1/reservations.
func (h *ReservationHandler) Create(c *gin.Context) {
	var req application.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateReservation(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// List handles GET /api/v1/reservations?guest_id=...
func (h *ReservationHandler) List(c *gin.Context) {
	guestID, err := uuid.Parse(c.Query("guest_id"))
	if err != nil {
		response.BadRequest(c, "guest_id query parameter is required")
		return
	}

	page, limit := parsePagination(c)
	result, err := h.service.GetGuestReservations(c.Request.Context(), guestID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// Get handles GET /api/v1/reservations/:id.
func (h *ReservationHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	result, err := h.service.GetReservation(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// GetByCode handles GET /api/v1/reservations/by-code/:code.
func (h *ReservationHandler) GetByCode(c *gin.Context) {
	result, err := h.service.GetReservationByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// Update handles PATCH /api/v1/reservations/:id.
func (h *ReservationHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req application.UpdateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateReservation(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// Confirm handles POST /api/v1/reservations/:id/confirm.
func (h *ReservationHandler) Confirm(c *gin.Context) {
	h.simpleTransition(c, h.service.ConfirmReservation)
}

// CheckIn handles POST /api/v1/reservations/:id/check-in.
func (h *ReservationHandler) CheckIn(c *gin.Context) {
	h.simpleTransition(c, h.service.CheckInReservation)
}

// CheckOut handles POST /api/v1/reservations/:id/check-out.
func (h *ReservationHandler) CheckOut(c *gin.Context) {
	h.simpleTransition(c, h.service.CheckOutReservation)
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

// Cancel handles POST /api/v1/reservations/:id/cancel.
func (h *ReservationHandler) Cancel(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CancelReservation(c.Request.Context(), id, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// RefundQuote handles GET /api/v1/reservations/:id/refund-quote.
func (h *ReservationHandler) RefundQuote(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	result, err := h.service.QuoteRefund(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

func (h *ReservationHandler) simpleTransition(c *gin.Context, op func(ctx context.Context, id uuid.UUID) (*application.ReservationDTO, error)) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	result, err := op(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid reservation ID")
		return uuid.Nil, false
	}
	return id, true
}

func parsePagination(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
