package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/roomhive/service-reservation/internal/common/domain"
	"github.com/roomhive/service-reservation/internal/domain/inventory"
)

// InventoryDayModel is the GORM model for the inventory_days table. The
// (room_id, date) pair is the unit of contention; uniqueness is enforced on
// it.
type InventoryDayModel struct {
	ID                uint64    `gorm:"primaryKey;autoIncrement"`
	RoomID            uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_room_date"`
	Date              time.Time `gorm:"type:date;not null;uniqueIndex:idx_room_date"`
	Status            string    `gorm:"not null;size:20"`
	RateCents         int64     `gorm:"not null"`
	MinRateCents      int64     `gorm:"not null"`
	MaxRateCents      int64     `gorm:"not null"`
	MinStay           int       `gorm:"not null;default:1"`
	MaxStay           int       `gorm:"not null;default:0"`
	Available         int       `gorm:"not null"`
	Total             int       `gorm:"not null"`
	RatePlan          string    `gorm:"size:50"`
	StopSell          bool      `gorm:"not null;default:false"`
	ClosedToArrival   bool      `gorm:"not null;default:false"`
	ClosedToDeparture bool      `gorm:"not null;default:false"`
	Version           int64     `gorm:"not null;default:1"`
	CreatedAt         time.Time `gorm:"not null"`
	UpdatedAt         time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (InventoryDayModel) TableName() string {
	return "inventory_days"
}

var blockingStatuses = []string{
	string(inventory.DayBlocked),
	string(inventory.DayMaintenance),
	string(inventory.DayOutOfOrder),
}

// GormInventoryRepository is the GORM-based implementation of
// inventory.Repository.
type GormInventoryRepository struct {
	db *gorm.DB
}

// NewGormInventoryRepository creates a new GormInventoryRepository.
func NewGormInventoryRepository(db *gorm.DB) *GormInventoryRepository {
	return &GormInventoryRepository{db: db}
}

// FindByRoomAndDate retrieves one ledger entry.
func (r *GormInventoryRepository) FindByRoomAndDate(ctx context.Context, roomID uuid.UUID, date time.Time) (*inventory.Day, error) {
	var model InventoryDayModel
	if err := r.db.WithContext(ctx).Where("room_id = ? AND date = ?", roomID, date).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("InventoryDay", fmt.Sprintf("%s/%s", roomID, date.Format("2006-01-02")))
		}
		return nil, classify(fmt.Errorf("failed to find inventory day: %w", err))
	}
	return toDomainDay(&model)
}

// FindRange retrieves ledger entries for [from, to), ordered by date.
func (r *GormInventoryRepository) FindRange(ctx context.Context, roomID uuid.UUID, from, to time.Time) ([]*inventory.Day, error) {
	var models []InventoryDayModel
	if err := r.db.WithContext(ctx).
		Where("room_id = ? AND date >= ? AND date < ?", roomID, from, to).
		Order("date ASC").
		Find(&models).Error; err != nil {
		return nil, classify(fmt.Errorf("failed to find inventory range: %w", err))
	}

	days := make([]*inventory.Day, len(models))
	for i, m := range models {
		day, err := toDomainDay(&m)
		if err != nil {
			return nil, err
		}
		days[i] = day
	}
	return days, nil
}

// Save persists a new ledger entry.
func (r *GormInventoryRepository) Save(ctx context.Context, d *inventory.Day) error {
	if err := r.db.WithContext(ctx).Create(toDayModel(d)).Error; err != nil {
		return classify(fmt.Errorf("failed to save inventory day: %w", err))
	}
	return nil
}

// SaveBatch persists multiple new ledger entries in one statement.
func (r *GormInventoryRepository) SaveBatch(ctx context.Context, days []*inventory.Day) error {
	if len(days) == 0 {
		return nil
	}
	models := make([]*InventoryDayModel, len(days))
	for i, d := range days {
		models[i] = toDayModel(d)
	}
	if err := r.db.WithContext(ctx).Create(&models).Error; err != nil {
		return classify(fmt.Errorf("failed to save inventory days: %w", err))
	}
	return nil
}

// Update persists administrative changes with optimistic locking.
func (r *GormInventoryRepository) Update(ctx context.Context, d *inventory.Day) error {
	model := toDayModel(d)

	expectedVersion := d.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&InventoryDayModel{}).
		Where("room_id = ? AND date = ? AND version = ?", model.RoomID, model.Date, expectedVersion).
		Updates(map[string]interface{}{
			"status":              model.Status,
			"rate_cents":          model.RateCents,
			"min_rate_cents":      model.MinRateCents,
			"max_rate_cents":      model.MaxRateCents,
			"min_stay":            model.MinStay,
			"max_stay":            model.MaxStay,
			"available":           model.Available,
			"total":               model.Total,
			"rate_plan":           model.RatePlan,
			"stop_sell":           model.StopSell,
			"closed_to_arrival":   model.ClosedToArrival,
			"closed_to_departure": model.ClosedToDeparture,
			"version":             model.Version,
			"updated_at":          model.UpdatedAt,
		})

	if result.Error != nil {
		return classify(fmt.Errorf("failed to update inventory day: %w", result.Error))
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("inventory day was modified by another transaction")
	}
	return nil
}

// ReserveUnit takes one unit with a single conditional UPDATE. The WHERE
// clause is the concurrency guard: two racing callers cannot both decrement
// the last unit. The sold_out derivation rides in the same statement so the
// row never shows available=0 with status=available.
func (r *GormInventoryRepository) ReserveUnit(ctx context.Context, roomID uuid.UUID, date time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&InventoryDayModel{}).
		Where("room_id = ? AND date = ? AND available > 0 AND stop_sell = false AND status NOT IN ?", roomID, date, blockingStatuses).
		Updates(map[string]interface{}{
			"available":  gorm.Expr("available - 1"),
			"status":     gorm.Expr("CASE WHEN available - 1 = 0 THEN 'sold_out' ELSE status END"),
			"updated_at": time.Now().UTC(),
		})

	if result.Error != nil {
		return classify(fmt.Errorf("failed to reserve inventory unit: %w", result.Error))
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&InventoryDayModel{}).
			Where("room_id = ? AND date = ?", roomID, date).
			Count(&count).Error; err == nil && count == 0 {
			return domain.NewNotFoundError("InventoryDay", fmt.Sprintf("%s/%s", roomID, date.Format("2006-01-02")))
		}
		return domain.NewConflictError(fmt.Sprintf("no inventory available for %s", date.Format("2006-01-02")))
	}
	return nil
}

// ReleaseUnit returns one unit, capped at total, and clears sold_out when
// units come free. Blocking statuses are left untouched.
func (r *GormInventoryRepository) ReleaseUnit(ctx context.Context, roomID uuid.UUID, date time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&InventoryDayModel{}).
		Where("room_id = ? AND date = ? AND available < total", roomID, date).
		Updates(map[string]interface{}{
			"available":  gorm.Expr("available + 1"),
			"status":     gorm.Expr("CASE WHEN status = 'sold_out' THEN 'available' ELSE status END"),
			"updated_at": time.Now().UTC(),
		})

	if result.Error != nil {
		return classify(fmt.Errorf("failed to release inventory unit: %w", result.Error))
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&InventoryDayModel{}).
			Where("room_id = ? AND date = ?", roomID, date).
			Count(&count).Error; err == nil && count == 0 {
			return domain.NewNotFoundError("InventoryDay", fmt.Sprintf("%s/%s", roomID, date.Format("2006-01-02")))
		}
		// already at capacity; releasing an unreserved unit is a caller bug
		// the ledger cannot detect, so the cap simply holds
	}
	return nil
}

// --- Conversion helpers ---

func toDayModel(d *inventory.Day) *InventoryDayModel {
	return &InventoryDayModel{
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
		Version:           d.Version(),
		CreatedAt:         d.CreatedAt(),
		UpdatedAt:         d.UpdatedAt(),
	}
}

func toDomainDay(m *InventoryDayModel) (*inventory.Day, error) {
	status, err := inventory.ParseDayStatus(m.Status)
	if err != nil {
		return nil, err
	}
	return inventory.ReconstructDay(
		m.RoomID,
		m.Date,
		status,
		m.RateCents,
		m.MinRateCents,
		m.MaxRateCents,
		m.MinStay,
		m.MaxStay,
		m.Available,
		m.Total,
		m.RatePlan,
		m.StopSell,
		m.ClosedToArrival,
		m.ClosedToDeparture,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}
