package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roomhive/service-reservation/internal/cache"
	"github.com/roomhive/service-reservation/internal/common/domain"
	"github.com/roomhive/service-reservation/internal/common/kafka"
	"github.com/roomhive/service-reservation/internal/domain/inventory"
	"github.com/roomhive/service-reservation/internal/domain/reservation"
	"github.com/roomhive/service-reservation/internal/events"
	"github.com/roomhive/service-reservation/internal/metrics"
	"github.com/roomhive/service-reservation/internal/retry"
)

const (
	eventSource = "service-reservation"
	cacheTTL    = 30 * time.Second
)

// CreateReservationRequest holds the data needed to create a new reservation.
type CreateReservationRequest struct {
	RoomID        uuid.UUID `json:"room_id" binding:"required"`
	GuestID       uuid.UUID `json:"guest_id" binding:"required"`
	CheckIn       time.Time `json:"check_in" binding:"required"`
	CheckOut      time.Time `json:"check_out" binding:"required"`
	Adults        int       `json:"adults" binding:"required"`
	Children      int       `json:"children"`
	DiscountCents int64     `json:"discount_cents"`
}

// UpdateReservationRequest holds partial changes to an existing reservation.
// Nil fields keep their current value.
type UpdateReservationRequest struct {
	RoomID        *uuid.UUID `json:"room_id"`
	CheckIn       *time.Time `json:"check_in"`
	CheckOut      *time.Time `json:"check_out"`
	Adults        *int       `json:"adults"`
	Children      *int       `json:"children"`
	DiscountCents *int64     `json:"discount_cents"`
}

// ReservationDTO is the response representation of a reservation.
type ReservationDTO struct {
	ID               uuid.UUID             `json:"id"`
	ConfirmationCode string                `json:"confirmation_code"`
	RoomID           uuid.UUID             `json:"room_id"`
	GuestID          uuid.UUID             `json:"guest_id"`
	CheckIn          time.Time             `json:"check_in"`
	CheckOut         time.Time             `json:"check_out"`
	Adults           int                   `json:"adults"`
	Children         int                   `json:"children"`
	Money            reservation.Breakdown `json:"money"`
	Status           string                `json:"status"`
	PaymentStatus    string                `json:"payment_status"`
	RefundedCents    int64                 `json:"refunded_cents,omitempty"`
	CancelReason     string                `json:"cancel_reason,omitempty"`
	ConfirmedAt      *time.Time            `json:"confirmed_at,omitempty"`
	CancelledAt      *time.Time            `json:"cancelled_at,omitempty"`
	ActualCheckInAt  *time.Time            `json:"actual_check_in_at,omitempty"`
	ActualCheckOutAt *time.Time            `json:"actual_check_out_at,omitempty"`
	Version          int64                 `json:"version"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
}

// RefundQuoteDTO is the result of a refund calculation without cancelling.
type RefundQuoteDTO struct {
	ReservationID    uuid.UUID `json:"reservation_id"`
	TotalCents       int64     `json:"total_cents"`
	RefundCents      int64     `json:"refund_cents"`
	Currency         string    `json:"currency"`
	DaysUntilArrival int       `json:"days_until_arrival"`
	Cancellable      bool      `json:"cancellable"`
}

// ReservationStatsDTO holds reservation statistics for the admin dashboard.
type ReservationStatsDTO struct {
	TotalReservations int64            `json:"total_reservations"`
	ByStatus          map[string]int64 `json:"by_status"`
}

// EventPublisher publishes cloud events. Satisfied by the Kafka producer.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event *kafka.CloudEvent) error
}

// RefundProcessor executes refunds against the payment gateway.
type RefundProcessor interface {
	ProcessRefund(ctx context.Context, reservationID uuid.UUID, amountCents int64, currency string) error
}

// ReservationService orchestrates the reservation lifecycle: validation,
// overlap detection, inventory holds, persistence, and post-commit events.
type ReservationService struct {
	reservations reservation.Repository
	ledger       inventory.Repository
	pricing      reservation.PricingStrategy
	refundPolicy reservation.RefundPolicy
	retrier      *retry.Retrier
	producer     EventPublisher
	refunds      RefundProcessor
	cache        *cache.Cache
	logger       *zap.Logger
}

// NewReservationService creates a new ReservationService.
func NewReservationService(
	reservations reservation.Repository,
	ledger inventory.Repository,
	pricing reservation.PricingStrategy,
	refundPolicy reservation.RefundPolicy,
	retrier *retry.Retrier,
	producer EventPublisher,
	refunds RefundProcessor,
	dtoCache *cache.Cache,
	logger *zap.Logger,
) *ReservationService {
	return &ReservationService{
		reservations: reservations,
		ledger:       ledger,
		pricing:      pricing,
		refundPolicy: refundPolicy,
		retrier:      retrier,
		producer:     producer,
		refunds:      refunds,
		cache:        dtoCache,
		logger:       logger,
	}
}

// CreateReservation books a stay. The conflict check is a fast reject; the
// per-night conditional decrement in the ledger is what actually closes the
// race between concurrent requests.
func (s *ReservationService) CreateReservation(ctx context.Context, req CreateReservationRequest) (dto *ReservationDTO, err error) {
	defer func() { metrics.RecordOperation("create", err) }()

	now := time.Now().UTC()
	checkIn := reservation.NormalizeDate(req.CheckIn)
	checkOut := reservation.NormalizeDate(req.CheckOut)
	if !checkOut.After(checkIn) {
		return nil, domain.NewValidationError("check-out must be after check-in")
	}
	if checkIn.Before(reservation.NormalizeDate(now)) {
		return nil, domain.NewValidationError("check-in cannot be in the past")
	}

	breakdown, err := s.quoteStay(ctx, req.RoomID, checkIn, checkOut, req.DiscountCents, nil)
	if err != nil {
		return nil, err
	}

	overlap, err := s.reservations.HasOverlap(ctx, req.RoomID, checkIn, checkOut, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check for overlap: %w", err)
	}
	if overlap {
		return nil, domain.NewConflictError("room is unavailable for the requested dates")
	}

	res, err := reservation.NewReservation(
		req.RoomID, req.GuestID,
		checkIn, checkOut,
		req.Adults, req.Children,
		breakdown, now,
	)
	if err != nil {
		return nil, err
	}

	nights := res.Nights()
	err = s.retrier.Do(ctx, "create_reservation", func(ctx context.Context) error {
		if err := s.reserveNights(ctx, res.RoomID(), nights); err != nil {
			return err
		}
		if err := s.reservations.Save(ctx, res); err != nil {
			s.releaseNights(ctx, res.RoomID(), nights)
			return fmt.Errorf("failed to save reservation: %w", err)
		}
		return nil
	})
	if err != nil {
		if domain.IsConflict(err) {
			metrics.InventoryConflicts.Inc()
		}
		return nil, err
	}

	s.publishCreated(ctx, res)

	result := toReservationDTO(res)
	return &result, nil
}

// GetReservation retrieves a single reservation, read-through cached.
func (s *ReservationService) GetReservation(ctx context.Context, id uuid.UUID) (*ReservationDTO, error) {
	var cached ReservationDTO
	if s.cache.Get(ctx, reservationCacheKey(id), &cached) {
		return &cached, nil
	}

	res, err := s.reservations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	result := toReservationDTO(res)
	s.cache.Set(ctx, reservationCacheKey(id), result, cacheTTL)
	return &result, nil
}

// GetReservationByCode retrieves a reservation by confirmation code.
func (s *ReservationService) GetReservationByCode(ctx context.Context, code string) (*ReservationDTO, error) {
	res, err := s.reservations.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	result := toReservationDTO(res)
	return &result, nil
}

// GetGuestReservations retrieves paginated reservations for a guest.
func (s *ReservationService) GetGuestReservations(ctx context.Context, guestID uuid.UUID, page, limit int) (*domain.PaginatedResult[ReservationDTO], error) {
	items, total, err := s.reservations.FindByGuestID(ctx, guestID, page, limit)
	if err != nil {
		return nil, err
	}
	dtos := make([]ReservationDTO, len(items))
	for i, r := range items {
		dtos[i] = toReservationDTO(r)
	}
	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// ConfirmReservation transitions pending -> confirmed. No inventory change;
// the units are held since creation.
func (s *ReservationService) ConfirmReservation(ctx context.Context, id uuid.UUID) (dto *ReservationDTO, err error) {
	defer func() { metrics.RecordOperation("confirm", err) }()
	return s.transition(ctx, id, events.ReservationConfirmed, func(r *reservation.Reservation, now time.Time) error {
		return r.Confirm(now)
	})
}

// CheckInReservation records the guest's arrival.
func (s *ReservationService) CheckInReservation(ctx context.Context, id uuid.UUID) (dto *ReservationDTO, err error) {
	defer func() { metrics.RecordOperation("check_in", err) }()
	return s.transition(ctx, id, events.ReservationCheckedIn, func(r *reservation.Reservation, now time.Time) error {
		return r.RecordCheckIn(now)
	})
}

// CheckOutReservation records the guest's departure.
func (s *ReservationService) CheckOutReservation(ctx context.Context, id uuid.UUID) (dto *ReservationDTO, err error) {
	defer func() { metrics.RecordOperation("check_out", err) }()
	return s.transition(ctx, id, events.ReservationCheckedOut, func(r *reservation.Reservation, now time.Time) error {
		return r.RecordCheckOut(now)
	})
}

// CompleteReservation closes out a checked-out reservation.
func (s *ReservationService) CompleteReservation(ctx context.Context, id uuid.UUID) (dto *ReservationDTO, err error) {
	defer func() { metrics.RecordOperation("complete", err) }()
	return s.transition(ctx, id, events.ReservationCompleted, func(r *reservation.Reservation, now time.Time) error {
		return r.Complete(now)
	})
}

// CancelReservation cancels a pending/confirmed reservation before arrival,
// computes the refund against pre-release state, releases the held nights,
// and dispatches the refund to the payment gateway.
func (s *ReservationService) CancelReservation(ctx context.Context, id uuid.UUID, reason string) (dto *ReservationDTO, err error) {
	defer func() { metrics.RecordOperation("cancel", err) }()

	res, err := s.reservations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	// Refund reflects the stay as booked; it must be computed before any
	// inventory is released.
	refund := s.refundPolicy.Calculate(res.Money().TotalCents, now, res.CheckIn())

	if err = res.Cancel(reason, now); err != nil {
		return nil, err
	}
	res.RecordRefund(refund, now)
	res.IncrementVersion()

	err = s.retrier.Do(ctx, "cancel_reservation", func(ctx context.Context) error {
		return s.reservations.Update(ctx, res)
	})
	if err != nil {
		return nil, err
	}

	s.releaseNights(ctx, res.RoomID(), res.Nights())
	s.cache.Delete(ctx, reservationCacheKey(id))
	s.publishCancelled(ctx, res, reason, refund)
	s.dispatchRefund(ctx, res, refund)

	result := toReservationDTO(res)
	return &result, nil
}

// MarkNoShow applies a scheduler-flagged no-show: the nights still ahead are
// released and the guest forfeits the full amount.
func (s *ReservationService) MarkNoShow(ctx context.Context, id uuid.UUID) (dto *ReservationDTO, err error) {
	defer func() { metrics.RecordOperation("no_show", err) }()

	res, err := s.reservations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err = res.MarkNoShow(now); err != nil {
		return nil, err
	}
	res.IncrementVersion()

	err = s.retrier.Do(ctx, "mark_no_show", func(ctx context.Context) error {
		return s.reservations.Update(ctx, res)
	})
	if err != nil {
		return nil, err
	}

	today := reservation.NormalizeDate(now)
	var remaining []time.Time
	for _, night := range res.Nights() {
		if !night.Before(today) {
			remaining = append(remaining, night)
		}
	}
	s.releaseNights(ctx, res.RoomID(), remaining)
	s.cache.Delete(ctx, reservationCacheKey(id))
	s.publishStatus(ctx, res, events.ReservationNoShow)

	result := toReservationDTO(res)
	return &result, nil
}

// UpdateReservation modifies a non-terminal reservation. Room or date
// changes move the inventory holds as one logical step: the new nights are
// reserved, the persist happens, then the old nights are released; any
// failure rolls the new holds back.
func (s *ReservationService) UpdateReservation(ctx context.Context, id uuid.UUID, req UpdateReservationRequest) (dto *ReservationDTO, err error) {
	defer func() { metrics.RecordOperation("update", err) }()

	res, err := s.reservations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.Status().IsTerminal() {
		return nil, domain.NewNotModifiableError(fmt.Sprintf("reservation in status %s cannot be modified", res.Status()))
	}

	now := time.Now().UTC()

	roomID := res.RoomID()
	if req.RoomID != nil {
		roomID = *req.RoomID
	}
	checkIn := res.CheckIn()
	if req.CheckIn != nil {
		checkIn = reservation.NormalizeDate(*req.CheckIn)
	}
	checkOut := res.CheckOut()
	if req.CheckOut != nil {
		checkOut = reservation.NormalizeDate(*req.CheckOut)
	}
	adults := res.Adults()
	if req.Adults != nil {
		adults = *req.Adults
	}
	children := res.Children()
	if req.Children != nil {
		children = *req.Children
	}
	discount := res.Money().DiscountCents
	if req.DiscountCents != nil {
		discount = *req.DiscountCents
	}
	if !checkOut.After(checkIn) {
		return nil, domain.NewValidationError("check-out must be after check-in")
	}

	stayChanged := roomID != res.RoomID() || !checkIn.Equal(res.CheckIn()) || !checkOut.Equal(res.CheckOut())

	oldRoomID := res.RoomID()
	oldNights := res.Nights()

	var toReserve, toRelease []time.Time
	if stayChanged {
		excludeID := res.ID()
		overlap, err := s.reservations.HasOverlap(ctx, roomID, checkIn, checkOut, &excludeID)
		if err != nil {
			return nil, fmt.Errorf("failed to check for overlap: %w", err)
		}
		if overlap {
			return nil, domain.NewConflictError("room is unavailable for the requested dates")
		}
		toReserve, toRelease = nightDiff(oldRoomID, roomID, oldNights, reservation.Nights(checkIn, checkOut))
	}

	held := make(map[time.Time]bool, len(oldNights))
	if roomID == oldRoomID {
		for _, n := range oldNights {
			held[n] = true
		}
	}
	breakdown, err := s.quoteStay(ctx, roomID, checkIn, checkOut, discount, held)
	if err != nil {
		return nil, err
	}
	if err = res.Modify(roomID, checkIn, checkOut, adults, children, breakdown, now); err != nil {
		return nil, err
	}
	res.IncrementVersion()

	err = s.retrier.Do(ctx, "update_reservation", func(ctx context.Context) error {
		if err := s.reserveNights(ctx, roomID, toReserve); err != nil {
			return err
		}
		if err := s.reservations.Update(ctx, res); err != nil {
			s.releaseNights(ctx, roomID, toReserve)
			return err
		}
		return nil
	})
	if err != nil {
		if domain.IsConflict(err) {
			metrics.InventoryConflicts.Inc()
		}
		return nil, err
	}

	s.releaseNights(ctx, oldRoomID, toRelease)
	s.cache.Delete(ctx, reservationCacheKey(id))
	s.publishUpdated(ctx, res)

	result := toReservationDTO(res)
	return &result, nil
}

// QuoteRefund computes the refund a cancellation right now would yield.
func (s *ReservationService) QuoteRefund(ctx context.Context, id uuid.UUID) (*RefundQuoteDTO, error) {
	res, err := s.reservations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	refund := s.refundPolicy.Calculate(res.Money().TotalCents, now, res.CheckIn())
	cancellable := res.Status().CanBeCancelled() && res.CheckIn().After(reservation.NormalizeDate(now))

	return &RefundQuoteDTO{
		ReservationID:    res.ID(),
		TotalCents:       res.Money().TotalCents,
		RefundCents:      refund,
		Currency:         res.Money().Currency,
		DaysUntilArrival: reservation.DaysUntil(now, res.CheckIn()),
		Cancellable:      cancellable,
	}, nil
}

// --- Admin methods ---

// ListAllReservations returns a paginated list of all reservations (admin).
func (s *ReservationService) ListAllReservations(ctx context.Context, page, limit int) ([]ReservationDTO, int64, error) {
	items, total, err := s.reservations.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reservations: %w", err)
	}
	dtos := make([]ReservationDTO, len(items))
	for i, r := range items {
		dtos[i] = toReservationDTO(r)
	}
	return dtos, total, nil
}

// GetReservationStats returns aggregate reservation statistics (admin).
func (s *ReservationService) GetReservationStats(ctx context.Context) (*ReservationStatsDTO, error) {
	counts, err := s.reservations.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation stats: %w", err)
	}
	var total int64
	for _, c := range counts {
		total += c
	}
	return &ReservationStatsDTO{TotalReservations: total, ByStatus: counts}, nil
}

// --- Helpers ---

// quoteStay loads the ledger for the stay, enforces sell restrictions, and
// prices the breakdown from the per-night rates. Nights in held are already
// occupied by the caller's own reservation, so they price normally even when
// the ledger shows no free units.
func (s *ReservationService) quoteStay(ctx context.Context, roomID uuid.UUID, checkIn, checkOut time.Time, discount int64, held map[time.Time]bool) (reservation.Breakdown, error) {
	days, err := s.ledger.FindRange(ctx, roomID, checkIn, checkOut)
	if err != nil {
		return reservation.Breakdown{}, fmt.Errorf("failed to load inventory: %w", err)
	}

	nights := reservation.Nights(checkIn, checkOut)
	if len(days) != len(nights) {
		return reservation.Breakdown{}, domain.NewConflictError("room has no inventory for part of the requested dates")
	}

	first := days[0]
	if first.ClosedToArrival() {
		return reservation.Breakdown{}, domain.NewConflictError("arrival date is closed to arrival")
	}
	stayLen := len(nights)
	if stayLen < first.MinStay() {
		return reservation.Breakdown{}, domain.NewValidationError(fmt.Sprintf("stay must be at least %d nights", first.MinStay()))
	}
	if first.MaxStay() > 0 && stayLen > first.MaxStay() {
		return reservation.Breakdown{}, domain.NewValidationError(fmt.Sprintf("stay cannot exceed %d nights", first.MaxStay()))
	}
	if departure, err := s.ledger.FindByRoomAndDate(ctx, roomID, checkOut); err == nil && departure.ClosedToDeparture() {
		return reservation.Breakdown{}, domain.NewConflictError("departure date is closed to departure")
	}

	rates := make([]int64, len(days))
	for i, d := range days {
		if !held[d.Date()] && !d.Sellable() {
			return reservation.Breakdown{}, domain.NewConflictError(fmt.Sprintf("date %s is not sellable", d.Date().Format("2006-01-02")))
		}
		rates[i] = d.RateCents()
	}

	return s.pricing.Quote(reservation.PricingParams{
		NightlyRatesCents: rates,
		DiscountCents:     discount,
	})
}

// reserveNights takes one unit per night, rolling back the prefix already
// taken when any night fails so no partial hold survives.
func (s *ReservationService) reserveNights(ctx context.Context, roomID uuid.UUID, nights []time.Time) error {
	reserved := make([]time.Time, 0, len(nights))
	for _, night := range nights {
		if err := s.ledger.ReserveUnit(ctx, roomID, night); err != nil {
			s.releaseNights(ctx, roomID, reserved)
			return err
		}
		reserved = append(reserved, night)
	}
	return nil
}

// releaseNights returns units to the ledger. Failures are logged; a release
// that cannot be applied is an operational follow-up, not a caller error.
func (s *ReservationService) releaseNights(ctx context.Context, roomID uuid.UUID, nights []time.Time) {
	for _, night := range nights {
		if err := s.ledger.ReleaseUnit(ctx, roomID, night); err != nil {
			s.logger.Error("failed to release inventory unit",
				zap.String("room_id", roomID.String()),
				zap.Time("date", night),
				zap.Error(err),
			)
		}
	}
}

// nightDiff computes which nights to newly reserve and which to release when
// a stay moves. Shared nights on the same room are left untouched so a
// one-unit room can shift its own range.
func nightDiff(oldRoomID, newRoomID uuid.UUID, oldNights, newNights []time.Time) (toReserve, toRelease []time.Time) {
	if oldRoomID != newRoomID {
		return newNights, oldNights
	}
	oldSet := make(map[time.Time]bool, len(oldNights))
	for _, n := range oldNights {
		oldSet[n] = true
	}
	newSet := make(map[time.Time]bool, len(newNights))
	for _, n := range newNights {
		newSet[n] = true
	}
	for _, n := range newNights {
		if !oldSet[n] {
			toReserve = append(toReserve, n)
		}
	}
	for _, n := range oldNights {
		if !newSet[n] {
			toRelease = append(toRelease, n)
		}
	}
	return toReserve, toRelease
}

// transition runs a load-mutate-persist-publish cycle for the simple
// lifecycle operations.
func (s *ReservationService) transition(ctx context.Context, id uuid.UUID, eventType string, mutate func(*reservation.Reservation, time.Time) error) (*ReservationDTO, error) {
	res, err := s.reservations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := mutate(res, now); err != nil {
		return nil, err
	}
	res.IncrementVersion()

	err = s.retrier.Do(ctx, "update_reservation", func(ctx context.Context) error {
		return s.reservations.Update(ctx, res)
	})
	if err != nil {
		return nil, err
	}

	s.cache.Delete(ctx, reservationCacheKey(id))
	s.publishStatus(ctx, res, eventType)

	result := toReservationDTO(res)
	return &result, nil
}

func (s *ReservationService) dispatchRefund(ctx context.Context, res *reservation.Reservation, amountCents int64) {
	if s.refunds == nil || amountCents <= 0 {
		return
	}
	if err := s.refunds.ProcessRefund(ctx, res.ID(), amountCents, res.Money().Currency); err != nil {
		s.logger.Error("refund dispatch failed",
			zap.String("reservation_id", res.ID().String()),
			zap.Int64("amount_cents", amountCents),
			zap.Error(err),
		)
	}
}

func reservationCacheKey(id uuid.UUID) string {
	return "reservation:" + id.String()
}

func toReservationDTO(r *reservation.Reservation) ReservationDTO {
	return ReservationDTO{
		ID:               r.ID(),
		ConfirmationCode: r.ConfirmationCode(),
		RoomID:           r.RoomID(),
		GuestID:          r.GuestID(),
		CheckIn:          r.CheckIn(),
		CheckOut:         r.CheckOut(),
		Adults:           r.Adults(),
		Children:         r.Children(),
		Money:            r.Money(),
		Status:           string(r.Status()),
		PaymentStatus:    string(r.PaymentStatus()),
		RefundedCents:    r.RefundedCents(),
		CancelReason:     r.CancelReason(),
		ConfirmedAt:      r.ConfirmedAt(),
		CancelledAt:      r.CancelledAt(),
		ActualCheckInAt:  r.ActualCheckInAt(),
		ActualCheckOutAt: r.ActualCheckOutAt(),
		Version:          r.Version(),
		CreatedAt:        r.CreatedAt(),
		UpdatedAt:        r.UpdatedAt(),
	}
}

// --- Event publishing ---

func (s *ReservationService) publishCreated(ctx context.Context, res *reservation.Reservation) {
	evt := events.ReservationCreatedEvent{
		ReservationID:    res.ID(),
		ConfirmationCode: res.ConfirmationCode(),
		RoomID:           res.RoomID(),
		GuestID:          res.GuestID(),
		CheckIn:          res.CheckIn(),
		CheckOut:         res.CheckOut(),
		TotalCents:       res.Money().TotalCents,
		Currency:         res.Money().Currency,
		OccurredAt:       time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicReservationEvents, events.ReservationCreated, evt)
}

func (s *ReservationService) publishStatus(ctx context.Context, res *reservation.Reservation, eventType string) {
	evt := events.ReservationStatusEvent{
		ReservationID:    res.ID(),
		ConfirmationCode: res.ConfirmationCode(),
		GuestID:          res.GuestID(),
		Status:           string(res.Status()),
		OccurredAt:       time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicReservationEvents, eventType, evt)
}

func (s *ReservationService) publishCancelled(ctx context.Context, res *reservation.Reservation, reason string, refundCents int64) {
	evt := events.ReservationCancelledEvent{
		ReservationID:    res.ID(),
		ConfirmationCode: res.ConfirmationCode(),
		GuestID:          res.GuestID(),
		Reason:           reason,
		RefundCents:      refundCents,
		Currency:         res.Money().Currency,
		OccurredAt:       time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicReservationEvents, events.ReservationCancelled, evt)
}

func (s *ReservationService) publishUpdated(ctx context.Context, res *reservation.Reservation) {
	evt := events.ReservationUpdatedEvent{
		ReservationID:    res.ID(),
		ConfirmationCode: res.ConfirmationCode(),
		RoomID:           res.RoomID(),
		CheckIn:          res.CheckIn(),
		CheckOut:         res.CheckOut(),
		TotalCents:       res.Money().TotalCents,
		OccurredAt:       time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicReservationEvents, events.ReservationUpdated, evt)
}

// publishEvent is fire-and-forget: publish failures are logged, never
// surfaced as a booking failure.
func (s *ReservationService) publishEvent(ctx context.Context, topic, eventType string, data interface{}) {
	if s.producer == nil {
		return
	}
	cloudEvent, err := kafka.NewCloudEvent(eventSource, eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}
	if err := s.producer.PublishEvent(ctx, topic, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
