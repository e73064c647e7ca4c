package events

import (
	"time"

	"github.com/google/uuid"
)

// Topics.
const (
	TopicReservationEvents = "reservation.events"
	TopicSchedulerEvents   = "scheduler.events"
)

// Event types on reservation.events.
const (
	ReservationCreated    = "reservation.created"
	ReservationConfirmed  = "reservation.confirmed"
	ReservationCheckedIn  = "reservation.checked_in"
	ReservationCheckedOut = "reservation.checked_out"
	ReservationCompleted  = "reservation.completed"
	ReservationCancelled  = "reservation.cancelled"
	ReservationNoShow     = "reservation.no_show"
	ReservationUpdated    = "reservation.updated"
)

// Event types consumed from scheduler.events.
const (
	NoShowFlagged = "reservation.noshow.flagged"
)

// ReservationCreatedEvent is published after a reservation is persisted in
// pending state with its inventory held.
type ReservationCreatedEvent struct {
	ReservationID    uuid.UUID `json:"reservation_id"`
	ConfirmationCode string    `json:"confirmation_code"`
	RoomID           uuid.UUID `json:"room_id"`
	GuestID          uuid.UUID `json:"guest_id"`
	CheckIn          time.Time `json:"check_in"`
	CheckOut         time.Time `json:"check_out"`
	TotalCents       int64     `json:"total_cents"`
	Currency         string    `json:"currency"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// ReservationStatusEvent covers the plain lifecycle transitions
// (confirmed, checked_in, checked_out, completed, no_show).
type ReservationStatusEvent struct {
	ReservationID    uuid.UUID `json:"reservation_id"`
	ConfirmationCode string    `json:"confirmation_code"`
	GuestID          uuid.UUID `json:"guest_id"`
	Status           string    `json:"status"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// ReservationCancelledEvent carries the cancellation reason and the refund
// computed before inventory release.
type ReservationCancelledEvent struct {
	ReservationID    uuid.UUID `json:"reservation_id"`
	ConfirmationCode string    `json:"confirmation_code"`
	GuestID          uuid.UUID `json:"guest_id"`
	Reason           string    `json:"reason"`
	RefundCents      int64     `json:"refund_cents"`
	Currency         string    `json:"currency"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// ReservationUpdatedEvent is published after a modification commits.
type ReservationUpdatedEvent struct {
	ReservationID    uuid.UUID `json:"reservation_id"`
	ConfirmationCode string    `json:"confirmation_code"`
	RoomID           uuid.UUID `json:"room_id"`
	CheckIn          time.Time `json:"check_in"`
	CheckOut         time.Time `json:"check_out"`
	TotalCents       int64     `json:"total_cents"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// NoShowFlaggedEvent is emitted by the external scheduler when a confirmed
// reservation missed its arrival window.
type NoShowFlaggedEvent struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	FlaggedAt     time.Time `json:"flagged_at"`
}
