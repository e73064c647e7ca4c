package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/roomhive/service-reservation/internal/common/domain"
	"github.com/roomhive/service-reservation/internal/domain/reservation"
)

// ReservationModel is the GORM model for the reservations table.
type ReservationModel struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ConfirmationCode   string     `gorm:"uniqueIndex;not null;size:20"`
	RoomID             uuid.UUID  `gorm:"type:uuid;index;not null"`
	GuestID            uuid.UUID  `gorm:"type:uuid;index;not null"`
	CheckIn            time.Time  `gorm:"type:date;not null;index"`
	CheckOut           time.Time  `gorm:"type:date;not null"`
	Adults             int        `gorm:"not null"`
	Children           int        `gorm:"not null;default:0"`
	RoomRateCents      int64      `gorm:"not null"`
	TaxCents           int64      `gorm:"not null"`
	ServiceChargeCents int64      `gorm:"not null"`
	DiscountCents      int64      `gorm:"not null;default:0"`
	TotalCents         int64      `gorm:"not null"`
	Currency           string     `gorm:"not null;size:3"`
	Status             string     `gorm:"not null;size:20;index"`
	PaymentStatus      string     `gorm:"not null;size:30"`
	RefundedCents      int64      `gorm:"not null;default:0"`
	CancelReason       string     `gorm:"size:500"`
	ConfirmedAt        *time.Time `gorm:""`
	CancelledAt        *time.Time `gorm:""`
	ActualCheckInAt    *time.Time `gorm:""`
	ActualCheckOutAt   *time.Time `gorm:""`
	Version            int64      `gorm:"not null;default:1"`
	CreatedAt          time.Time  `gorm:"not null"`
	UpdatedAt          time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (ReservationModel) TableName() string {
	return "reservations"
}

// GormReservationRepository is the GORM-based implementation of
// reservation.Repository.
type GormReservationRepository struct {
	db *gorm.DB
}

// NewGormReservationRepository creates a new GormReservationRepository.
func NewGormReservationRepository(db *gorm.DB) *GormReservationRepository {
	return &GormReservationRepository{db: db}
}

// FindByID retrieves a reservation by its unique identifier.
func (r *GormReservationRepository) FindByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	var model ReservationModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Reservation", id.String())
		}
		return nil, classify(fmt.Errorf("failed to find reservation by ID: %w", err))
	}
	return toDomainReservation(&model)
}

// FindByCode retrieves a reservation by its confirmation code.
func (r *GormReservationRepository) FindByCode(ctx context.Context, code string) (*reservation.Reservation, error) {
	var model ReservationModel
	if err := r.db.WithContext(ctx).Where("confirmation_code = ?", code).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Reservation", code)
		}
		return nil, classify(fmt.Errorf("failed to find reservation by code: %w", err))
	}
	return toDomainReservation(&model)
}

// FindByGuestID retrieves reservations for a guest with pagination.
func (r *GormReservationRepository) FindByGuestID(ctx context.Context, guestID uuid.UUID, page, limit int) ([]*reservation.Reservation, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&ReservationModel{}).Where("guest_id = ?", guestID).Count(&total).Error; err != nil {
		return nil, 0, classify(fmt.Errorf("failed to count guest reservations: %w", err))
	}

	var models []ReservationModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("guest_id = ?", guestID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, classify(fmt.Errorf("failed to find guest reservations: %w", err))
	}

	return toDomainReservations(models, total)
}

// ListAll retrieves all reservations with pagination (admin).
func (r *GormReservationRepository) ListAll(ctx context.Context, page, limit int) ([]*reservation.Reservation, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&ReservationModel{}).Count(&total).Error; err != nil {
		return nil, 0, classify(fmt.Errorf("failed to count reservations: %w", err))
	}

	var models []ReservationModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, classify(fmt.Errorf("failed to list reservations: %w", err))
	}

	return toDomainReservations(models, total)
}

// CountByStatus returns reservation counts grouped by status (admin).
func (r *GormReservationRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&ReservationModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, classify(fmt.Errorf("failed to count by status: %w", err))
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// HasOverlap reports whether any active reservation on the room overlaps
// [checkIn, checkOut) under half-open interval semantics.
func (r *GormReservationRepository) HasOverlap(ctx context.Context, roomID uuid.UUID, checkIn, checkOut time.Time, excludeID *uuid.UUID) (bool, error) {
	active := make([]string, 0, 3)
	for _, s := range reservation.ActiveStatuses() {
		active = append(active, string(s))
	}

	q := r.db.WithContext(ctx).Model(&ReservationModel{}).
		Where("room_id = ?", roomID).
		Where("status IN ?", active).
		Where("check_in < ? AND ? < check_out", checkOut, checkIn)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, classify(fmt.Errorf("failed to check overlap: %w", err))
	}
	return count > 0, nil
}

// Save persists a new reservation.
func (r *GormReservationRepository) Save(ctx context.Context, res *reservation.Reservation) error {
	model := toReservationModel(res)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return classify(fmt.Errorf("failed to save reservation: %w", err))
	}
	return nil
}

// Update persists changes with optimistic locking: the row is only written
// when the stored version matches the version the aggregate was loaded at.
func (r *GormReservationRepository) Update(ctx context.Context, res *reservation.Reservation) error {
	model := toReservationModel(res)

	expectedVersion := res.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&ReservationModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"room_id":              model.RoomID,
			"check_in":             model.CheckIn,
			"check_out":            model.CheckOut,
			"adults":               model.Adults,
			"children":             model.Children,
			"room_rate_cents":      model.RoomRateCents,
			"tax_cents":            model.TaxCents,
			"service_charge_cents": model.ServiceChargeCents,
			"discount_cents":       model.DiscountCents,
			"total_cents":          model.TotalCents,
			"currency":             model.Currency,
			"status":               model.Status,
			"payment_status":       model.PaymentStatus,
			"refunded_cents":       model.RefundedCents,
			"cancel_reason":        model.CancelReason,
			"confirmed_at":         model.ConfirmedAt,
			"cancelled_at":         model.CancelledAt,
			"actual_check_in_at":   model.ActualCheckInAt,
			"actual_check_out_at":  model.ActualCheckOutAt,
			"version":              model.Version,
			"updated_at":           model.UpdatedAt,
		})

	if result.Error != nil {
		return classify(fmt.Errorf("failed to update reservation: %w", result.Error))
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("reservation was modified by another transaction")
	}
	return nil
}

// --- Conversion helpers ---

func toReservationModel(res *reservation.Reservation) *ReservationModel {
	money := res.Money()
	return &ReservationModel{
		ID:                 res.ID(),
		ConfirmationCode:   res.ConfirmationCode(),
		RoomID:             res.RoomID(),
		GuestID:            res.GuestID(),
		CheckIn:            res.CheckIn(),
		CheckOut:           res.CheckOut(),
		Adults:             res.Adults(),
		Children:           res.Children(),
		RoomRateCents:      money.RoomRateCents,
		TaxCents:           money.TaxCents,
		ServiceChargeCents: money.ServiceChargeCents,
		DiscountCents:      money.DiscountCents,
		TotalCents:         money.TotalCents,
		Currency:           money.Currency,
		Status:             string(res.Status()),
		PaymentStatus:      string(res.PaymentStatus()),
		RefundedCents:      res.RefundedCents(),
		CancelReason:       res.CancelReason(),
		ConfirmedAt:        res.ConfirmedAt(),
		CancelledAt:        res.CancelledAt(),
		ActualCheckInAt:    res.ActualCheckInAt(),
		ActualCheckOutAt:   res.ActualCheckOutAt(),
		Version:            res.Version(),
		CreatedAt:          res.CreatedAt(),
		UpdatedAt:          res.UpdatedAt(),
	}
}

func toDomainReservation(m *ReservationModel) (*reservation.Reservation, error) {
	status, err := reservation.ParseStatus(m.Status)
	if err != nil {
		return nil, err
	}

	money := reservation.Breakdown{
		RoomRateCents:      m.RoomRateCents,
		TaxCents:           m.TaxCents,
		ServiceChargeCents: m.ServiceChargeCents,
		DiscountCents:      m.DiscountCents,
		TotalCents:         m.TotalCents,
		Currency:           m.Currency,
	}

	return reservation.Reconstruct(
		m.ID,
		m.ConfirmationCode,
		m.RoomID,
		m.GuestID,
		m.CheckIn,
		m.CheckOut,
		m.Adults,
		m.Children,
		money,
		status,
		reservation.PaymentStatus(m.PaymentStatus),
		m.RefundedCents,
		m.CancelReason,
		m.ConfirmedAt,
		m.CancelledAt,
		m.ActualCheckInAt,
		m.ActualCheckOutAt,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainReservations(models []ReservationModel, total int64) ([]*reservation.Reservation, int64, error) {
	out := make([]*reservation.Reservation, len(models))
	for i, m := range models {
		res, err := toDomainReservation(&m)
		if err != nil {
			return nil, 0, err
		}
		out[i] = res
	}
	return out, total, nil
}
