package reservation

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/roomhive/service-reservation/internal/common/domain"
)

const confirmationCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// NormalizeDate truncates a timestamp to its UTC calendar date.
func NormalizeDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Nights returns every calendar date in [checkIn, checkOut), one per
// occupied night.
func Nights(checkIn, checkOut time.Time) []time.Time {
	checkIn = NormalizeDate(checkIn)
	checkOut = NormalizeDate(checkOut)
	var nights []time.Time
	for d := checkIn; d.Before(checkOut); d = d.AddDate(0, 0, 1) {
		nights = append(nights, d)
	}
	return nights
}

// NightCount returns the number of nights in [checkIn, checkOut).
func NightCount(checkIn, checkOut time.Time) int {
	return int(NormalizeDate(checkOut).Sub(NormalizeDate(checkIn)).Hours() / 24)
}

// RangesOverlap reports whether [a1,a2) and [b1,b2) share at least one
// calendar date.
func RangesOverlap(a1, a2, b1, b2 time.Time) bool {
	return NormalizeDate(a1).Before(NormalizeDate(b2)) && NormalizeDate(b1).Before(NormalizeDate(a2))
}

// Breakdown is the monetary breakdown of a reservation in minor units.
type Breakdown struct {
	RoomRateCents      int64  `json:"room_rate_cents"`
	TaxCents           int64  `json:"tax_cents"`
	ServiceChargeCents int64  `json:"service_charge_cents"`
	DiscountCents      int64  `json:"discount_cents"`
	TotalCents         int64  `json:"total_cents"`
	Currency           string `json:"currency"`
}

// NewBreakdown derives the total from its parts.
func NewBreakdown(roomRate, tax, serviceCharge, discount int64, currency string) Breakdown {
	return Breakdown{
		RoomRateCents:      roomRate,
		TaxCents:           tax,
		ServiceChargeCents: serviceCharge,
		DiscountCents:      discount,
		TotalCents:         roomRate + tax + serviceCharge - discount,
		Currency:           currency,
	}
}

// Validate enforces total = subtotal + tax + service - discount.
func (b Breakdown) Validate() error {
	if b.RoomRateCents < 0 || b.TaxCents < 0 || b.ServiceChargeCents < 0 || b.DiscountCents < 0 {
		return domain.NewValidationError("monetary amounts must be non-negative")
	}
	if b.TotalCents != b.RoomRateCents+b.TaxCents+b.ServiceChargeCents-b.DiscountCents {
		return domain.NewValidationError("total does not match monetary breakdown")
	}
	if b.TotalCents < 0 {
		return domain.NewValidationError("total must be non-negative")
	}
	return nil
}

// Reservation is the aggregate root for the reservation domain. It is the
// only writer of its own lifecycle state; inventory effects are driven by
// the application service around its transitions.
type Reservation struct {
	id               uuid.UUID
	confirmationCode string
	roomID           uuid.UUID
	guestID          uuid.UUID
	checkIn          time.Time
	checkOut         time.Time
	adults           int
	children         int
	breakdown        Breakdown
	status           Status
	paymentStatus    PaymentStatus
	refundedCents    int64
	cancelReason     string

	confirmedAt      *time.Time
	cancelledAt      *time.Time
	actualCheckInAt  *time.Time
	actualCheckOutAt *time.Time

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// generateConfirmationCode creates a code in the format "RSV-XXXXXX".
func generateConfirmationCode() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(confirmationCodeChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate confirmation code: %w", err)
		}
		result[i] = confirmationCodeChars[n.Int64()]
	}
	return "RSV-" + string(result), nil
}

// NewReservation creates a new Reservation aggregate with status=pending.
// now anchors the "today" used for date validation.
func NewReservation(
	roomID uuid.UUID,
	guestID uuid.UUID,
	checkIn time.Time,
	checkOut time.Time,
	adults int,
	children int,
	breakdown Breakdown,
	now time.Time,
) (*Reservation, error) {
	if roomID == uuid.Nil {
		return nil, domain.NewValidationError("room ID is required")
	}
	if guestID == uuid.Nil {
		return nil, domain.NewValidationError("guest ID is required")
	}
	checkIn = NormalizeDate(checkIn)
	checkOut = NormalizeDate(checkOut)
	today := NormalizeDate(now)
	if !checkOut.After(checkIn) {
		return nil, domain.NewValidationError("check-out must be after check-in")
	}
	if checkIn.Before(today) {
		return nil, domain.NewValidationError("check-in cannot be in the past")
	}
	if adults < 1 {
		return nil, domain.NewValidationError("at least one adult is required")
	}
	if children < 0 {
		return nil, domain.NewValidationError("children count cannot be negative")
	}
	if err := breakdown.Validate(); err != nil {
		return nil, err
	}

	code, err := generateConfirmationCode()
	if err != nil {
		return nil, err
	}

	created := now.UTC()
	return &Reservation{
		id:               uuid.New(),
		confirmationCode: code,
		roomID:           roomID,
		guestID:          guestID,
		checkIn:          checkIn,
		checkOut:         checkOut,
		adults:           adults,
		children:         children,
		breakdown:        breakdown,
		status:           StatusPending,
		paymentStatus:    PaymentPending,
		version:          1,
		createdAt:        created,
		updatedAt:        created,
	}, nil
}

// Reconstruct rebuilds a Reservation from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	confirmationCode string,
	roomID uuid.UUID,
	guestID uuid.UUID,
	checkIn time.Time,
	checkOut time.Time,
	adults int,
	children int,
	breakdown Breakdown,
	status Status,
	paymentStatus PaymentStatus,
	refundedCents int64,
	cancelReason string,
	confirmedAt *time.Time,
	cancelledAt *time.Time,
	actualCheckInAt *time.Time,
	actualCheckOutAt *time.Time,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Reservation {
	return &Reservation{
		id:               id,
		confirmationCode: confirmationCode,
		roomID:           roomID,
		guestID:          guestID,
		checkIn:          NormalizeDate(checkIn),
		checkOut:         NormalizeDate(checkOut),
		adults:           adults,
		children:         children,
		breakdown:        breakdown,
		status:           status,
		paymentStatus:    paymentStatus,
		refundedCents:    refundedCents,
		cancelReason:     cancelReason,
		confirmedAt:      confirmedAt,
		cancelledAt:      cancelledAt,
		actualCheckInAt:  actualCheckInAt,
		actualCheckOutAt: actualCheckOutAt,
		version:          version,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

// --- Getters ---

// ID returns the reservation's unique identifier.
func (r *Reservation) ID() uuid.UUID { return r.id }

// ConfirmationCode returns the human-readable confirmation code.
func (r *Reservation) ConfirmationCode() string { return r.confirmationCode }

// RoomID returns the reserved room's identifier.
func (r *Reservation) RoomID() uuid.UUID { return r.roomID }

// GuestID returns the booking guest's identifier.
func (r *Reservation) GuestID() uuid.UUID { return r.guestID }

// CheckIn returns the check-in date (UTC midnight).
func (r *Reservation) CheckIn() time.Time { return r.checkIn }

// CheckOut returns the check-out date (UTC midnight).
func (r *Reservation) CheckOut() time.Time { return r.checkOut }

// Adults returns the adult occupancy count.
func (r *Reservation) Adults() int { return r.adults }

// Children returns the child occupancy count.
func (r *Reservation) Children() int { return r.children }

// Money returns the monetary breakdown.
func (r *Reservation) Money() Breakdown { return r.breakdown }

// Status returns the current lifecycle status.
func (r *Reservation) Status() Status { return r.status }

// PaymentStatus returns the current payment status.
func (r *Reservation) PaymentStatus() PaymentStatus { return r.paymentStatus }

// RefundedCents returns the refunded amount in minor units.
func (r *Reservation) RefundedCents() int64 { return r.refundedCents }

// CancelReason returns the recorded cancellation reason.
func (r *Reservation) CancelReason() string { return r.cancelReason }

// ConfirmedAt returns when the reservation was confirmed, or nil.
func (r *Reservation) ConfirmedAt() *time.Time { return r.confirmedAt }

// CancelledAt returns when the reservation was cancelled, or nil.
func (r *Reservation) CancelledAt() *time.Time { return r.cancelledAt }

// ActualCheckInAt returns the recorded physical check-in time, or nil.
func (r *Reservation) ActualCheckInAt() *time.Time { return r.actualCheckInAt }

// ActualCheckOutAt returns the recorded physical check-out time, or nil.
func (r *Reservation) ActualCheckOutAt() *time.Time { return r.actualCheckOutAt }

// Version returns the entity version for optimistic locking.
func (r *Reservation) Version() int64 { return r.version }

// CreatedAt returns the creation timestamp.
func (r *Reservation) CreatedAt() time.Time { return r.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (r *Reservation) UpdatedAt() time.Time { return r.updatedAt }

// Nights returns the calendar dates this reservation occupies.
func (r *Reservation) Nights() []time.Time { return Nights(r.checkIn, r.checkOut) }

// --- Behavior ---

// Confirm transitions the reservation from pending to confirmed. Inventory
// units are already held since creation, so no ledger effect is implied.
func (r *Reservation) Confirm(now time.Time) error {
	if !r.status.CanTransitionTo(StatusConfirmed) {
		return domain.NewInvalidStateError(string(r.status), string(StatusConfirmed))
	}
	ts := now.UTC()
	r.status = StatusConfirmed
	r.confirmedAt = &ts
	r.updatedAt = ts
	return nil
}

// RecordCheckIn records the physical arrival. Allowed only from confirmed
// and not before the check-in date.
func (r *Reservation) RecordCheckIn(now time.Time) error {
	if !r.status.CanTransitionTo(StatusCheckedIn) {
		return domain.NewInvalidStateError(string(r.status), string(StatusCheckedIn))
	}
	if NormalizeDate(now).Before(r.checkIn) {
		return domain.NewValidationError("cannot check in before the check-in date")
	}
	ts := now.UTC()
	r.status = StatusCheckedIn
	r.actualCheckInAt = &ts
	r.updatedAt = ts
	return nil
}

// RecordCheckOut records the physical departure. Allowed only from checked_in.
func (r *Reservation) RecordCheckOut(now time.Time) error {
	if !r.status.CanTransitionTo(StatusCheckedOut) {
		return domain.NewInvalidStateError(string(r.status), string(StatusCheckedOut))
	}
	ts := now.UTC()
	r.status = StatusCheckedOut
	r.actualCheckOutAt = &ts
	r.updatedAt = ts
	return nil
}

// Complete closes out a checked-out reservation.
func (r *Reservation) Complete(now time.Time) error {
	if !r.status.CanTransitionTo(StatusCompleted) {
		return domain.NewInvalidStateError(string(r.status), string(StatusCompleted))
	}
	r.status = StatusCompleted
	r.updatedAt = now.UTC()
	return nil
}

// Cancel transitions to cancelled. Permitted only from pending/confirmed and
// only while the stay has not started.
func (r *Reservation) Cancel(reason string, now time.Time) error {
	if !r.status.CanBeCancelled() {
		return domain.NewNotCancellableError(fmt.Sprintf("reservation in status %s cannot be cancelled", r.status))
	}
	if !r.checkIn.After(NormalizeDate(now)) {
		return domain.NewNotCancellableError("cancellation window has closed")
	}
	ts := now.UTC()
	r.status = StatusCancelled
	r.cancelReason = reason
	r.cancelledAt = &ts
	r.updatedAt = ts
	return nil
}

// MarkNoShow transitions a confirmed reservation to no_show. Driven by the
// external scheduler; the guest forfeits the full amount.
func (r *Reservation) MarkNoShow(now time.Time) error {
	if !r.status.CanTransitionTo(StatusNoShow) {
		return domain.NewInvalidStateError(string(r.status), string(StatusNoShow))
	}
	ts := now.UTC()
	r.status = StatusNoShow
	r.cancelledAt = &ts
	r.updatedAt = ts
	return nil
}

// Modify replaces the stay parameters of a non-terminal reservation without
// changing its identity or confirmation code. Inventory moves are the
// caller's responsibility.
func (r *Reservation) Modify(roomID uuid.UUID, checkIn, checkOut time.Time, adults, children int, breakdown Breakdown, now time.Time) error {
	if r.status.IsTerminal() {
		return domain.NewNotModifiableError(fmt.Sprintf("reservation in status %s cannot be modified", r.status))
	}
	checkIn = NormalizeDate(checkIn)
	checkOut = NormalizeDate(checkOut)
	if !checkOut.After(checkIn) {
		return domain.NewValidationError("check-out must be after check-in")
	}
	if checkIn.Before(NormalizeDate(now)) {
		return domain.NewValidationError("check-in cannot be in the past")
	}
	if adults < 1 {
		return domain.NewValidationError("at least one adult is required")
	}
	if children < 0 {
		return domain.NewValidationError("children count cannot be negative")
	}
	if err := breakdown.Validate(); err != nil {
		return err
	}
	r.roomID = roomID
	r.checkIn = checkIn
	r.checkOut = checkOut
	r.adults = adults
	r.children = children
	r.breakdown = breakdown
	r.updatedAt = now.UTC()
	return nil
}

// RecordRefund records the refunded amount and adjusts the payment status.
func (r *Reservation) RecordRefund(amountCents int64, now time.Time) {
	r.refundedCents = amountCents
	switch {
	case amountCents <= 0:
		// payment status unchanged; nothing was returned
	case amountCents >= r.breakdown.TotalCents:
		r.paymentStatus = PaymentRefunded
	default:
		r.paymentStatus = PaymentPartial
	}
	r.updatedAt = now.UTC()
}

// MarkPaid records full payment.
func (r *Reservation) MarkPaid(now time.Time) {
	r.paymentStatus = PaymentPaid
	r.updatedAt = now.UTC()
}

// IncrementVersion bumps the version for optimistic locking.
func (r *Reservation) IncrementVersion() {
	r.version++
	r.updatedAt = time.Now().UTC()
}
