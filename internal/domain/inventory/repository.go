package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for the inventory ledger.
//
// ReserveUnit and ReleaseUnit are the contention-bearing operations. The
// implementation must perform each as a single conditional update against
// the (roomID, date) row so the decrement itself is the authoritative
// concurrency guard; ReserveUnit fails with a conflict error when no unit
// can be taken.
type Repository interface {
	// FindByRoomAndDate retrieves one ledger entry.
	FindByRoomAndDate(ctx context.Context, roomID uuid.UUID, date time.Time) (*Day, error)

	// FindRange retrieves ledger entries for [from, to), ordered by date.
	FindRange(ctx context.Context, roomID uuid.UUID, from, to time.Time) ([]*Day, error)

	// Save persists a new ledger entry.
	Save(ctx context.Context, d *Day) error

	// SaveBatch persists multiple new ledger entries.
	SaveBatch(ctx context.Context, days []*Day) error

	// Update persists administrative changes with optimistic locking.
	Update(ctx context.Context, d *Day) error

	// ReserveUnit atomically takes one unit for the room-date. Fails with a
	// conflict error when the date is unsellable or exhausted.
	ReserveUnit(ctx context.Context, roomID uuid.UUID, date time.Time) error

	// ReleaseUnit atomically returns one unit, capped at total.
	ReleaseUnit(ctx context.Context, roomID uuid.UUID, date time.Time) error
}
