package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roomhive/service-reservation/internal/common/domain"
	"github.com/roomhive/service-reservation/internal/domain/inventory"
	"github.com/roomhive/service-reservation/internal/domain/reservation"
	"github.com/roomhive/service-reservation/internal/retry"
)

// SeedCalendarRequest creates ledger entries for a room over a date range.
type SeedCalendarRequest struct {
	RoomID       uuid.UUID `json:"room_id" binding:"required"`
	From         time.Time `json:"from" binding:"required"`
	To           time.Time `json:"to" binding:"required"`
	TotalUnits   int       `json:"total_units" binding:"required"`
	RateCents    int64     `json:"rate_cents" binding:"required"`
	MinRateCents int64     `json:"min_rate_cents"`
	MaxRateCents int64     `json:"max_rate_cents"`
	RatePlan     string    `json:"rate_plan"`
}

// AdjustDayRequest applies administrative mutations to one ledger entry.
// Nil fields are left untouched.
type AdjustDayRequest struct {
	RateCents *int64  `json:"rate_cents"`
	MinStay   *int    `json:"min_stay"`
	MaxStay   *int    `json:"max_stay"`
	Action    *string `json:"action"` // block | maintenance | out_of_order | unblock
	StopSell  *bool   `json:"stop_sell"`
	CTA       *bool   `json:"closed_to_arrival"`
	CTD       *bool   `json:"closed_to_departure"`
}

// InventoryDayDTO is the response representation of a ledger entry.
type InventoryDayDTO struct {
	RoomID            uuid.UUID `json:"room_id"`
	Date              time.Time `json:"date"`
	Status            string    `json:"status"`
	RateCents         int64     `json:"rate_cents"`
	MinRateCents      int64     `json:"min_rate_cents"`
	MaxRateCents      int64     `json:"max_rate_cents"`
	MinStay           int       `json:"min_stay"`
	MaxStay           int       `json:"max_stay"`
	Available         int       `json:"available"`
	Total             int       `json:"total"`
	RatePlan          string    `json:"rate_plan,omitempty"`
	StopSell          bool      `json:"stop_sell"`
	ClosedToArrival   bool      `json:"closed_to_arrival"`
	ClosedToDeparture bool      `json:"closed_to_departure"`
	OccupancyRate     float64   `json:"occupancy_rate"`
	HighDemand        bool      `json:"high_demand"`
	LowDemand         bool      `json:"low_demand"`
}

// InventoryService handles the administrative side of the ledger: seeding
// calendars and applying sell restrictions. Reserve/release stay with the
// ReservationService.
type InventoryService struct {
	ledger  inventory.Repository
	retrier *retry.Retrier
	logger  *zap.Logger
}

// NewInventoryService creates a new InventoryService.
func NewInventoryService(ledger inventory.Repository, retrier *retry.Retrier, logger *zap.Logger) *InventoryService {
	return &InventoryService{ledger: ledger, retrier: retrier, logger: logger}
}

// SeedCalendar pre-creates ledger entries for every date in [from, to).
func (s *InventoryService) SeedCalendar(ctx context.Context, req SeedCalendarRequest) ([]InventoryDayDTO, error) {
	from := reservation.NormalizeDate(req.From)
	to := reservation.NormalizeDate(req.To)
	if !to.After(from) {
		return nil, domain.NewValidationError("range end must be after range start")
	}

	minRate := req.MinRateCents
	maxRate := req.MaxRateCents
	if minRate == 0 && maxRate == 0 {
		minRate, maxRate = req.RateCents/2, req.RateCents*2
	}

	dates := reservation.Nights(from, to)
	days := make([]*inventory.Day, 0, len(dates))
	for _, date := range dates {
		day, err := inventory.NewDay(req.RoomID, date, req.TotalUnits, req.RateCents, minRate, maxRate, req.RatePlan)
		if err != nil {
			return nil, err
		}
		days = append(days, day)
	}

	err := s.retrier.Do(ctx, "seed_calendar", func(ctx context.Context) error {
		return s.ledger.SaveBatch(ctx, days)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to seed calendar: %w", err)
	}

	s.logger.Info("calendar seeded",
		zap.String("room_id", req.RoomID.String()),
		zap.Int("days", len(days)),
	)

	dtos := make([]InventoryDayDTO, len(days))
	for i, d := range days {
		dtos[i] = toInventoryDayDTO(d)
	}
	return dtos, nil
}

// GetCalendar reads ledger entries for [from, to).
func (s *InventoryService) GetCalendar(ctx context.Context, roomID uuid.UUID, from, to time.Time) ([]InventoryDayDTO, error) {
	days, err := s.ledger.FindRange(ctx, roomID, reservation.NormalizeDate(from), reservation.NormalizeDate(to))
	if err != nil {
		return nil, fmt.Errorf("failed to load calendar: %w", err)
	}
	dtos := make([]InventoryDayDTO, len(days))
	for i, d := range days {
		dtos[i] = toInventoryDayDTO(d)
	}
	return dtos, nil
}

// AdjustDay applies administrative mutations to one ledger entry with
// optimistic locking.
func (s *InventoryService) AdjustDay(ctx context.Context, roomID uuid.UUID, date time.Time, req AdjustDayRequest) (*InventoryDayDTO, error) {
	day, err := s.ledger.FindByRoomAndDate(ctx, roomID, reservation.NormalizeDate(date))
	if err != nil {
		return nil, err
	}

	if req.RateCents != nil {
		if err := day.UpdateRate(*req.RateCents); err != nil {
			return nil, err
		}
	}
	if req.MinStay != nil || req.MaxStay != nil {
		minStay := day.MinStay()
		if req.MinStay != nil {
			minStay = *req.MinStay
		}
		maxStay := day.MaxStay()
		if req.MaxStay != nil {
			maxStay = *req.MaxStay
		}
		if err := day.SetStayBounds(minStay, maxStay); err != nil {
			return nil, err
		}
	}
	if req.Action != nil {
		switch *req.Action {
		case "block":
			day.Block()
		case "maintenance":
			day.MarkMaintenance()
		case "out_of_order":
			day.MarkOutOfOrder()
		case "unblock":
			day.Unblock()
		default:
			return nil, domain.NewValidationError(fmt.Sprintf("unknown action: %s", *req.Action))
		}
	}
	if req.StopSell != nil {
		if *req.StopSell {
			day.EnableStopSell()
		} else {
			day.DisableStopSell()
		}
	}
	if req.CTA != nil {
		if *req.CTA {
			day.CloseToArrival()
		} else {
			day.OpenToArrival()
		}
	}
	if req.CTD != nil {
		if *req.CTD {
			day.CloseToDeparture()
		} else {
			day.OpenToDeparture()
		}
	}

	day.IncrementVersion()
	err = s.retrier.Do(ctx, "adjust_inventory_day", func(ctx context.Context) error {
		return s.ledger.Update(ctx, day)
	})
	if err != nil {
		return nil, err
	}

	dto := toInventoryDayDTO(day)
	return &dto, nil
}

func toInventoryDayDTO(d *inventory.Day) InventoryDayDTO {
	return InventoryDayDTO{
		RoomID:            d.RoomID(),
		Date:              d.Date(),
		Status:            string(d.Status()),
		RateCents:         d.RateCents(),
		MinRateCents:      d.MinRateCents(),
		MaxRateCents:      d.MaxRateCents(),
		MinStay:           d.MinStay(),
		MaxStay:           d.MaxStay(),
		Available:         d.Available(),
		Total:             d.Total(),
		RatePlan:          d.RatePlan(),
		StopSell:          d.StopSell(),
		ClosedToArrival:   d.ClosedToArrival(),
		ClosedToDeparture: d.ClosedToDeparture(),
		OccupancyRate:     d.OccupancyRate(),
		HighDemand:        d.IsHighDemand(),
		LowDemand:         d.IsLowDemand(),
	}
}
