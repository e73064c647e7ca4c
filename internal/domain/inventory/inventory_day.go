package inventory

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/roomhive/service-reservation/internal/common/domain"
)

// DayStatus represents the sell state of a single room-date.
type DayStatus string

const (
	DayAvailable   DayStatus = "available"
	DaySoldOut     DayStatus = "sold_out"
	DayBlocked     DayStatus = "blocked"
	DayMaintenance DayStatus = "maintenance"
	DayOutOfOrder  DayStatus = "out_of_order"
	DayReserved    DayStatus = "reserved"
)

// IsValid returns true if the status is recognized.
func (s DayStatus) IsValid() bool {
	switch s {
	case DayAvailable, DaySoldOut, DayBlocked, DayMaintenance, DayOutOfOrder, DayReserved:
		return true
	}
	return false
}

// IsBlocking returns true for statuses that remove the date from sale
// regardless of remaining units. They take precedence over the sold-out
// derivation.
func (s DayStatus) IsBlocking() bool {
	switch s {
	case DayBlocked, DayMaintenance, DayOutOfOrder:
		return true
	}
	return false
}

// ParseDayStatus converts a string to a DayStatus.
func ParseDayStatus(s string) (DayStatus, error) {
	status := DayStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid inventory day status: %s", s)
	}
	return status, nil
}

// Demand classification thresholds over the occupancy rate.
const (
	highDemandThreshold = 0.8
	lowDemandThreshold  = 0.3
)

// Day is one inventory ledger entry: the sellable state of a room on a
// calendar date. The (roomID, date) pair is its identity and the unit of
// contention for concurrent bookings.
type Day struct {
	roomID            uuid.UUID
	date              time.Time
	status            DayStatus
	rateCents         int64
	minRateCents      int64
	maxRateCents      int64
	minStay           int
	maxStay           int
	available         int
	total             int
	ratePlan          string
	stopSell          bool
	closedToArrival   bool
	closedToDeparture bool

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewDay creates a ledger entry with all units available.
func NewDay(roomID uuid.UUID, date time.Time, totalUnits int, rateCents, minRate, maxRate int64, ratePlan string) (*Day, error) {
	if roomID == uuid.Nil {
		return nil, domain.NewValidationError("room ID is required")
	}
	if totalUnits < 1 {
		return nil, domain.NewValidationError("total units must be positive")
	}
	if rateCents < 0 {
		return nil, domain.NewValidationError("rate must be non-negative")
	}
	if minRate > maxRate {
		return nil, domain.NewValidationError("rate bounds are inverted")
	}
	if rateCents < minRate || rateCents > maxRate {
		return nil, domain.NewValidationError("rate is outside its bounds")
	}

	now := time.Now().UTC()
	return &Day{
		roomID:       roomID,
		date:         normalizeDate(date),
		status:       DayAvailable,
		rateCents:    rateCents,
		minRateCents: minRate,
		maxRateCents: maxRate,
		minStay:      1,
		available:    totalUnits,
		total:        totalUnits,
		ratePlan:     ratePlan,
		version:      1,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// ReconstructDay rebuilds a Day from persistence data (no validation).
func ReconstructDay(
	roomID uuid.UUID,
	date time.Time,
	status DayStatus,
	rateCents, minRate, maxRate int64,
	minStay, maxStay int,
	available, total int,
	ratePlan string,
	stopSell, closedToArrival, closedToDeparture bool,
	version int64,
	createdAt, updatedAt time.Time,
) *Day {
	return &Day{
		roomID:            roomID,
		date:              normalizeDate(date),
		status:            status,
		rateCents:         rateCents,
		minRateCents:      minRate,
		maxRateCents:      maxRate,
		minStay:           minStay,
		maxStay:           maxStay,
		available:         available,
		total:             total,
		ratePlan:          ratePlan,
		stopSell:          stopSell,
		closedToArrival:   closedToArrival,
		closedToDeparture: closedToDeparture,
		version:           version,
		createdAt:         createdAt,
		updatedAt:         updatedAt,
	}
}

func normalizeDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// --- Getters ---

// RoomID returns the room this entry belongs to.
func (d *Day) RoomID() uuid.UUID { return d.roomID }

// Date returns the calendar date (UTC midnight).
func (d *Day) Date() time.Time { return d.date }

// Status returns the current sell status.
func (d *Day) Status() DayStatus { return d.status }

// RateCents returns the nightly rate in minor units.
func (d *Day) RateCents() int64 { return d.rateCents }

// MinRateCents returns the lower rate bound.
func (d *Day) MinRateCents() int64 { return d.minRateCents }

// MaxRateCents returns the upper rate bound.
func (d *Day) MaxRateCents() int64 { return d.maxRateCents }

// MinStay returns the minimum stay length for arrivals on this date.
func (d *Day) MinStay() int { return d.minStay }

// MaxStay returns the maximum stay length, 0 meaning unbounded.
func (d *Day) MaxStay() int { return d.maxStay }

// Available returns the remaining sellable units.
func (d *Day) Available() int { return d.available }

// Total returns the total unit count.
func (d *Day) Total() int { return d.total }

// RatePlan returns the rate plan code.
func (d *Day) RatePlan() string { return d.ratePlan }

// StopSell returns the stop-sell flag.
func (d *Day) StopSell() bool { return d.stopSell }

// ClosedToArrival returns the arrival closure flag.
func (d *Day) ClosedToArrival() bool { return d.closedToArrival }

// ClosedToDeparture returns the departure closure flag.
func (d *Day) ClosedToDeparture() bool { return d.closedToDeparture }

// Version returns the entity version for optimistic locking.
func (d *Day) Version() int64 { return d.version }

// CreatedAt returns the creation timestamp.
func (d *Day) CreatedAt() time.Time { return d.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (d *Day) UpdatedAt() time.Time { return d.updatedAt }

// --- Behavior ---

// Sellable reports whether a unit can currently be reserved.
func (d *Day) Sellable() bool {
	return !d.stopSell && !d.status.IsBlocking() && d.available > 0
}

// Reserve decrements available by one. It is the pure form of the
// conditional decrement the persistence layer issues as a single UPDATE.
func (d *Day) Reserve() error {
	if d.stopSell {
		return domain.NewConflictError("date is stop-sold")
	}
	if d.status.IsBlocking() {
		return domain.NewConflictError(fmt.Sprintf("date is %s", d.status))
	}
	if d.available <= 0 {
		return domain.NewConflictError("no inventory available")
	}
	d.available--
	d.deriveStatus()
	d.touch()
	return nil
}

// Release returns one unit, capped at total. Releasing a unit that was never
// reserved is a caller bug the ledger cannot detect.
func (d *Day) Release() {
	if d.available < d.total {
		d.available++
	}
	d.deriveStatus()
	d.touch()
}

// UpdateRate sets the nightly rate, which must stay within its bounds.
func (d *Day) UpdateRate(rateCents int64) error {
	if rateCents < d.minRateCents || rateCents > d.maxRateCents {
		return domain.NewValidationError(fmt.Sprintf("rate %d outside bounds [%d, %d]", rateCents, d.minRateCents, d.maxRateCents))
	}
	d.rateCents = rateCents
	d.touch()
	return nil
}

// SetStayBounds sets the min/max stay restrictions. maxStay of 0 disables
// the upper bound.
func (d *Day) SetStayBounds(minStay, maxStay int) error {
	if minStay < 1 {
		return domain.NewValidationError("min stay must be at least 1")
	}
	if maxStay != 0 && maxStay < minStay {
		return domain.NewValidationError("max stay cannot be below min stay")
	}
	d.minStay = minStay
	d.maxStay = maxStay
	d.touch()
	return nil
}

// Block removes the date from sale.
func (d *Day) Block() {
	d.status = DayBlocked
	d.touch()
}

// MarkMaintenance flags the date as under maintenance.
func (d *Day) MarkMaintenance() {
	d.status = DayMaintenance
	d.touch()
}

// MarkOutOfOrder flags the date as out of order.
func (d *Day) MarkOutOfOrder() {
	d.status = DayOutOfOrder
	d.touch()
}

// Unblock clears a blocking status and re-derives available/sold_out.
func (d *Day) Unblock() {
	if d.status.IsBlocking() {
		d.status = DayAvailable
	}
	d.deriveStatus()
	d.touch()
}

// EnableStopSell stops selling the date without changing its status.
func (d *Day) EnableStopSell() { d.stopSell = true; d.touch() }

// DisableStopSell resumes selling the date.
func (d *Day) DisableStopSell() { d.stopSell = false; d.touch() }

// CloseToArrival forbids stays starting on this date.
func (d *Day) CloseToArrival() { d.closedToArrival = true; d.touch() }

// OpenToArrival allows stays starting on this date.
func (d *Day) OpenToArrival() { d.closedToArrival = false; d.touch() }

// CloseToDeparture forbids stays ending on this date.
func (d *Day) CloseToDeparture() { d.closedToDeparture = true; d.touch() }

// OpenToDeparture allows stays ending on this date.
func (d *Day) OpenToDeparture() { d.closedToDeparture = false; d.touch() }

// OccupancyRate returns (total - available) / total.
func (d *Day) OccupancyRate() float64 {
	if d.total == 0 {
		return 0
	}
	return float64(d.total-d.available) / float64(d.total)
}

// IsHighDemand reports occupancy at or above 80%.
func (d *Day) IsHighDemand() bool { return d.OccupancyRate() >= highDemandThreshold }

// IsLowDemand reports occupancy at or below 30%.
func (d *Day) IsLowDemand() bool { return d.OccupancyRate() <= lowDemandThreshold }

// IncrementVersion bumps the version for optimistic locking.
func (d *Day) IncrementVersion() {
	d.version++
	d.updatedAt = time.Now().UTC()
}

// deriveStatus keeps status consistent with available when no blocking
// status takes precedence.
func (d *Day) deriveStatus() {
	if d.status.IsBlocking() {
		return
	}
	if d.available == 0 {
		d.status = DaySoldOut
	} else if d.status == DaySoldOut || d.status == DayAvailable {
		d.status = DayAvailable
	}
}

func (d *Day) touch() {
	d.updatedAt = time.Now().UTC()
}
