package application

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/roomhive/service-reservation/internal/common/domain"
	"github.com/roomhive/service-reservation/internal/common/kafka"
	"github.com/roomhive/service-reservation/internal/domain/inventory"
	"github.com/roomhive/service-reservation/internal/domain/reservation"
	"github.com/roomhive/service-reservation/internal/retry"
)

// --- Fakes ---

type fakeReservationRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*reservation.Reservation
}

func newFakeReservationRepo() *fakeReservationRepo {
	return &fakeReservationRepo{items: make(map[uuid.UUID]*reservation.Reservation)}
}

func (f *fakeReservationRepo) FindByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.items[id]
	if !ok {
		return nil, domain.NewNotFoundError("reservation", id.String())
	}
	return r, nil
}

func (f *fakeReservationRepo) FindByCode(ctx context.Context, code string) (*reservation.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.items {
		if r.ConfirmationCode() == code {
			return r, nil
		}
	}
	return nil, domain.NewNotFoundError("reservation", code)
}

func (f *fakeReservationRepo) FindByGuestID(ctx context.Context, guestID uuid.UUID, page, limit int) ([]*reservation.Reservation, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*reservation.Reservation
	for _, r := range f.items {
		if r.GuestID() == guestID {
			out = append(out, r)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeReservationRepo) ListAll(ctx context.Context, page, limit int) ([]*reservation.Reservation, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*reservation.Reservation, 0, len(f.items))
	for _, r := range f.items {
		out = append(out, r)
	}
	return out, int64(len(out)), nil
}

func (f *fakeReservationRepo) CountByStatus(ctx context.Context) (map[string]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[string]int64)
	for _, r := range f.items {
		counts[string(r.Status())]++
	}
	return counts, nil
}

func (f *fakeReservationRepo) HasOverlap(ctx context.Context, roomID uuid.UUID, checkIn, checkOut time.Time, excludeID *uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.items {
		if excludeID != nil && r.ID() == *excludeID {
			continue
		}
		if r.RoomID() != roomID || !r.Status().IsActive() {
			continue
		}
		if reservation.RangesOverlap(r.CheckIn(), r.CheckOut(), checkIn, checkOut) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeReservationRepo) Save(ctx context.Context, r *reservation.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[r.ID()] = r
	return nil
}

func (f *fakeReservationRepo) Update(ctx context.Context, r *reservation.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[r.ID()]; !ok {
		return domain.NewNotFoundError("reservation", r.ID().String())
	}
	f.items[r.ID()] = r
	return nil
}

type fakeLedger struct {
	mu            sync.Mutex
	days          map[string]*inventory.Day
	failReserveOn map[string]error
	releases      []string
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		days:          make(map[string]*inventory.Day),
		failReserveOn: make(map[string]error),
	}
}

func ledgerKey(roomID uuid.UUID, date time.Time) string {
	return roomID.String() + "/" + date.UTC().Format("2006-01-02")
}

func (f *fakeLedger) FindByRoomAndDate(ctx context.Context, roomID uuid.UUID, date time.Time) (*inventory.Day, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.days[ledgerKey(roomID, date)]
	if !ok {
		return nil, domain.NewNotFoundError("inventory day", ledgerKey(roomID, date))
	}
	return d, nil
}

func (f *fakeLedger) FindRange(ctx context.Context, roomID uuid.UUID, from, to time.Time) ([]*inventory.Day, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*inventory.Day
	for _, d := range f.days {
		if d.RoomID() == roomID && !d.Date().Before(from) && d.Date().Before(to) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date().Before(out[j].Date()) })
	return out, nil
}

func (f *fakeLedger) Save(ctx context.Context, d *inventory.Day) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.days[ledgerKey(d.RoomID(), d.Date())] = d
	return nil
}

func (f *fakeLedger) SaveBatch(ctx context.Context, days []*inventory.Day) error {
	for _, d := range days {
		if err := f.Save(ctx, d); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeLedger) Update(ctx context.Context, d *inventory.Day) error {
	return f.Save(ctx, d)
}

func (f *fakeLedger) ReserveUnit(ctx context.Context, roomID uuid.UUID, date time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := ledgerKey(roomID, date)
	if err, ok := f.failReserveOn[key]; ok {
		return err
	}
	d, ok := f.days[key]
	if !ok {
		return domain.NewNotFoundError("inventory day", key)
	}
	return d.Reserve()
}

func (f *fakeLedger) ReleaseUnit(ctx context.Context, roomID uuid.UUID, date time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := ledgerKey(roomID, date)
	d, ok := f.days[key]
	if !ok {
		return domain.NewNotFoundError("inventory day", key)
	}
	d.Release()
	f.releases = append(f.releases, key)
	return nil
}

func (f *fakeLedger) available(roomID uuid.UUID, date time.Time) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.days[ledgerKey(roomID, date)].Available()
}

type fakePublisher struct {
	mu     sync.Mutex
	events []*kafka.CloudEvent
}

func (f *fakePublisher) PublishEvent(ctx context.Context, topic string, event *kafka.CloudEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakePublisher) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.events))
	for i, e := range f.events {
		out[i] = e.Type
	}
	return out
}

type fakeRefunds struct {
	mu    sync.Mutex
	calls []int64
}

func (f *fakeRefunds) ProcessRefund(ctx context.Context, reservationID uuid.UUID, amountCents int64, currency string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, amountCents)
	return nil
}

// --- Harness ---

type serviceFixture struct {
	svc      *ReservationService
	repo     *fakeReservationRepo
	ledger   *fakeLedger
	producer *fakePublisher
	refunds  *fakeRefunds
	roomID   uuid.UUID
	guestID  uuid.UUID
}

func newFixture(t *testing.T) *serviceFixture {
	t.Helper()
	repo := newFakeReservationRepo()
	ledger := newFakeLedger()
	producer := &fakePublisher{}
	refunds := &fakeRefunds{}

	policy := retry.Policy{MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond, Multiplier: 2.0}
	retrier := retry.New(policy, domain.IsTransient, zap.NewNop())

	svc := NewReservationService(
		repo,
		ledger,
		reservation.NewStandardPricingStrategy(1000, 500, "USD"),
		reservation.DefaultRefundPolicy(),
		retrier,
		producer,
		refunds,
		nil,
		zap.NewNop(),
	)
	return &serviceFixture{
		svc:      svc,
		repo:     repo,
		ledger:   ledger,
		producer: producer,
		refunds:  refunds,
		roomID:   uuid.New(),
		guestID:  uuid.New(),
	}
}

// seedDays creates ledger entries with the given units starting at start.
func (fx *serviceFixture) seedDays(t *testing.T, start time.Time, nights, units int, rateCents int64) {
	t.Helper()
	for i := 0; i < nights; i++ {
		d, err := inventory.NewDay(fx.roomID, start.AddDate(0, 0, i), units, rateCents, rateCents/2, rateCents*2, "standard")
		require.NoError(t, err)
		require.NoError(t, fx.ledger.Save(context.Background(), d))
	}
}

func futureDate(daysAhead int) time.Time {
	return reservation.NormalizeDate(time.Now().UTC()).AddDate(0, 0, daysAhead)
}

func (fx *serviceFixture) createReservation(t *testing.T, checkIn, checkOut time.Time) *ReservationDTO {
	t.Helper()
	dto, err := fx.svc.CreateReservation(context.Background(), CreateReservationRequest{
		RoomID:   fx.roomID,
		GuestID:  fx.guestID,
		CheckIn:  checkIn,
		CheckOut: checkOut,
		Adults:   2,
	})
	require.NoError(t, err)
	return dto
}

// --- Tests ---

func TestCreateReservation(t *testing.T) {
	fx := newFixture(t)
	checkIn := futureDate(10)
	fx.seedDays(t, checkIn, 3, 2, 100000)

	dto := fx.createReservation(t, checkIn, checkIn.AddDate(0, 0, 2))

	assert.Equal(t, "pending", dto.Status)
	assert.Equal(t, int64(200000), dto.Money.RoomRateCents)
	assert.Equal(t, int64(20000), dto.Money.TaxCents)
	assert.Equal(t, int64(10000), dto.Money.ServiceChargeCents)
	assert.Equal(t, int64(230000), dto.Money.TotalCents)
	assert.Regexp(t, `^RSV-`, dto.ConfirmationCode)

	assert.Equal(t, 1, fx.ledger.available(fx.roomID, checkIn))
	assert.Equal(t, 1, fx.ledger.available(fx.roomID, checkIn.AddDate(0, 0, 1)))
	assert.Equal(t, 2, fx.ledger.available(fx.roomID, checkIn.AddDate(0, 0, 2)), "nights past check-out are untouched")

	assert.Equal(t, []string{"reservation.created"}, fx.producer.types())
}

func TestCreateReservationRejectsOverlap(t *testing.T) {
	fx := newFixture(t)
	checkIn := futureDate(10)
	fx.seedDays(t, checkIn, 5, 5, 100000)
	fx.createReservation(t, checkIn, checkIn.AddDate(0, 0, 3))

	_, err := fx.svc.CreateReservation(context.Background(), CreateReservationRequest{
		RoomID:   fx.roomID,
		GuestID:  uuid.New(),
		CheckIn:  checkIn.AddDate(0, 0, 2),
		CheckOut: checkIn.AddDate(0, 0, 4),
		Adults:   1,
	})
	require.Error(t, err)
	assert.Equal(t, domain.CodeConflict, domain.CodeOf(err))
	assert.Equal(t, 4, fx.ledger.available(fx.roomID, checkIn.AddDate(0, 0, 2)), "rejected request must not touch inventory")
}

func TestCreateReservationAllowsBackToBack(t *testing.T) {
	fx := newFixture(t)
	checkIn := futureDate(10)
	fx.seedDays(t, checkIn, 6, 1, 100000)
	first := fx.createReservation(t, checkIn, checkIn.AddDate(0, 0, 3))

	second := fx.createReservation(t, checkIn.AddDate(0, 0, 3), checkIn.AddDate(0, 0, 5))
	assert.NotEqual(t, first.ID, second.ID)
}

func TestCreateReservationRollsBackPartialHolds(t *testing.T) {
	fx := newFixture(t)
	checkIn := futureDate(10)
	fx.seedDays(t, checkIn, 3, 2, 100000)
	failNight := checkIn.AddDate(0, 0, 1)
	fx.ledger.failReserveOn[ledgerKey(fx.roomID, failNight)] = domain.NewConflictError("no inventory available")

	_, err := fx.svc.CreateReservation(context.Background(), CreateReservationRequest{
		RoomID:   fx.roomID,
		GuestID:  fx.guestID,
		CheckIn:  checkIn,
		CheckOut: checkIn.AddDate(0, 0, 3),
		Adults:   2,
	})
	require.Error(t, err)
	assert.Equal(t, domain.CodeConflict, domain.CodeOf(err))

	assert.Equal(t, 2, fx.ledger.available(fx.roomID, checkIn), "first night hold rolled back")
	assert.Empty(t, fx.repo.items, "no reservation persisted")
}

func TestCreateReservationRejectsMissingInventory(t *testing.T) {
	fx := newFixture(t)
	checkIn := futureDate(10)
	fx.seedDays(t, checkIn, 2, 2, 100000) // stay needs 3 nights

	_, err := fx.svc.CreateReservation(context.Background(), CreateReservationRequest{
		RoomID:   fx.roomID,
		GuestID:  fx.guestID,
		CheckIn:  checkIn,
		CheckOut: checkIn.AddDate(0, 0, 3),
		Adults:   2,
	})
	require.Error(t, err)
	assert.Equal(t, domain.CodeConflict, domain.CodeOf(err))
}

func TestCreateReservationHonorsMinStay(t *testing.T) {
	fx := newFixture(t)
	checkIn := futureDate(10)
	fx.seedDays(t, checkIn, 5, 2, 100000)
	d, err := fx.ledger.FindByRoomAndDate(context.Background(), fx.roomID, checkIn)
	require.NoError(t, err)
	require.NoError(t, d.SetStayBounds(3, 0))

	_, err = fx.svc.CreateReservation(context.Background(), CreateReservationRequest{
		RoomID:   fx.roomID,
		GuestID:  fx.guestID,
		CheckIn:  checkIn,
		CheckOut: checkIn.AddDate(0, 0, 2),
		Adults:   1,
	})
	require.Error(t, err)
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))
}

func TestConfirmAndLifecycle(t *testing.T) {
	fx := newFixture(t)
	checkIn := futureDate(10)
	fx.seedDays(t, checkIn, 2, 2, 100000)
	dto := fx.createReservation(t, checkIn, checkIn.AddDate(0, 0, 2))

	confirmed, err := fx.svc.ConfirmReservation(context.Background(), dto.ID)
	require.NoError(t, err)
	assert.Equal(t, "confirmed", confirmed.Status)
	assert.Greater(t, confirmed.Version, dto.Version)

	// Check-in is rejected before the arrival date.
	_, err = fx.svc.CheckInReservation(context.Background(), dto.ID)
	require.Error(t, err)
	assert.Equal(t, domain.CodeValidation, domain.CodeOf(err))

	// A second confirm is an invalid transition.
	_, err = fx.svc.ConfirmReservation(context.Background(), dto.ID)
	require.Error(t, err)
	assert.Equal(t, domain.CodeInvalidState, domain.CodeOf(err))
}

func TestCancelReservationRefundsAndReleases(t *testing.T) {
	fx := newFixture(t)
	checkIn := futureDate(5) // 50% tier
	fx.seedDays(t, checkIn, 2, 2, 100000)
	dto := fx.createReservation(t, checkIn, checkIn.AddDate(0, 0, 2))
	require.Equal(t, int64(230000), dto.Money.TotalCents)

	cancelled, err := fx.svc.CancelReservation(context.Background(), dto.ID, "plans changed")
	require.NoError(t, err)

	assert.Equal(t, "cancelled", cancelled.Status)
	assert.Equal(t, "plans changed", cancelled.CancelReason)
	assert.Equal(t, int64(115000), cancelled.RefundedCents)
	assert.Equal(t, string(reservation.PaymentPartial), cancelled.PaymentStatus)

	assert.Equal(t, 2, fx.ledger.available(fx.roomID, checkIn), "units returned")
	assert.Equal(t, 2, fx.ledger.available(fx.roomID, checkIn.AddDate(0, 0, 1)))

	require.Len(t, fx.refunds.calls, 1)
	assert.Equal(t, int64(115000), fx.refunds.calls[0])
	assert.Contains(t, fx.producer.types(), "reservation.cancelled")
}

func TestCancelReservationFullRefundOutsideSevenDays(t *testing.T) {
	fx := newFixture(t)
	checkIn := futureDate(10)
	fx.seedDays(t, checkIn, 1, 1, 100000)
	dto := fx.createReservation(t, checkIn, checkIn.AddDate(0, 0, 1))

	cancelled, err := fx.svc.CancelReservation(context.Background(), dto.ID, "")
	require.NoError(t, err)
	assert.Equal(t, dto.Money.TotalCents, cancelled.RefundedCents)
	assert.Equal(t, string(reservation.PaymentRefunded), cancelled.PaymentStatus)
}

func TestCancelSameDayRejected(t *testing.T) {
	fx := newFixture(t)
	checkIn := futureDate(0)
	fx.seedDays(t, checkIn, 1, 1, 100000)
	dto := fx.createReservation(t, checkIn, checkIn.AddDate(0, 0, 1))

	_, err := fx.svc.CancelReservation(context.Background(), dto.ID, "too late")
	require.Error(t, err)
	assert.Equal(t, domain.CodeNotCancellable, domain.CodeOf(err))
	assert.Empty(t, fx.refunds.calls)
	assert.Equal(t, 0, fx.ledger.available(fx.roomID, checkIn), "hold stays in place")
}

func TestMarkNoShowReleasesOnlyFutureNights(t *testing.T) {
	fx := newFixture(t)
	today := futureDate(0)
	yesterday := today.AddDate(0, 0, -1)

	// A confirmed stay that started yesterday, seeded directly.
	breakdown := reservation.NewBreakdown(300000, 30000, 15000, 0, "USD")
	res := reservation.Reconstruct(
		uuid.New(), "RSV-TEST01", fx.roomID, fx.guestID,
		yesterday, today.AddDate(0, 0, 2), 2, 0,
		breakdown, reservation.StatusConfirmed, reservation.PaymentPaid,
		0, "", nil, nil, nil, nil, 1, time.Now().UTC(), time.Now().UTC(),
	)
	require.NoError(t, fx.repo.Save(context.Background(), res))
	fx.seedDays(t, yesterday, 3, 1, 100000)
	for i := 0; i < 3; i++ {
		require.NoError(t, fx.ledger.ReserveUnit(context.Background(), fx.roomID, yesterday.AddDate(0, 0, i)))
	}

	dto, err := fx.svc.MarkNoShow(context.Background(), res.ID())
	require.NoError(t, err)
	assert.Equal(t, "no_show", dto.Status)
	assert.Equal(t, int64(0), dto.RefundedCents, "guest forfeits the full amount")

	assert.Equal(t, 0, fx.ledger.available(fx.roomID, yesterday), "past night stays consumed")
	assert.Equal(t, 1, fx.ledger.available(fx.roomID, today))
	assert.Equal(t, 1, fx.ledger.available(fx.roomID, today.AddDate(0, 0, 1)))
}

func TestUpdateReservationShiftsDatesOnSameRoom(t *testing.T) {
	fx := newFixture(t)
	checkIn := futureDate(10)
	fx.seedDays(t, checkIn, 4, 1, 100000)
	dto := fx.createReservation(t, checkIn, checkIn.AddDate(0, 0, 2))

	// Shift by one day: night 0 is released, night 1 is kept, night 2 is new.
	newCheckIn := checkIn.AddDate(0, 0, 1)
	newCheckOut := checkIn.AddDate(0, 0, 3)
	updated, err := fx.svc.UpdateReservation(context.Background(), dto.ID, UpdateReservationRequest{
		CheckIn:  &newCheckIn,
		CheckOut: &newCheckOut,
	})
	require.NoError(t, err)

	assert.True(t, updated.CheckIn.Equal(newCheckIn))
	assert.Equal(t, 1, fx.ledger.available(fx.roomID, checkIn), "dropped night released")
	assert.Equal(t, 0, fx.ledger.available(fx.roomID, checkIn.AddDate(0, 0, 1)), "shared night untouched")
	assert.Equal(t, 0, fx.ledger.available(fx.roomID, checkIn.AddDate(0, 0, 2)), "new night reserved")
	assert.Contains(t, fx.producer.types(), "reservation.updated")
}

func TestUpdateReservationRepricesSoldOutOwnStay(t *testing.T) {
	fx := newFixture(t)
	checkIn := futureDate(10)
	fx.seedDays(t, checkIn, 2, 1, 100000)
	dto := fx.createReservation(t, checkIn, checkIn.AddDate(0, 0, 2))

	// The reservation holds the last unit of both nights. Changing occupancy
	// reprices through those sold-out nights without treating them as a
	// conflict.
	adults := 3
	updated, err := fx.svc.UpdateReservation(context.Background(), dto.ID, UpdateReservationRequest{Adults: &adults})
	require.NoError(t, err)

	assert.Equal(t, 3, updated.Adults)
	assert.Equal(t, 0, fx.ledger.available(fx.roomID, checkIn), "held night unchanged")
	assert.Equal(t, 0, fx.ledger.available(fx.roomID, checkIn.AddDate(0, 0, 1)), "held night unchanged")
}

func TestUpdateReservationMovesRoom(t *testing.T) {
	fx := newFixture(t)
	checkIn := futureDate(10)
	fx.seedDays(t, checkIn, 2, 1, 100000)
	dto := fx.createReservation(t, checkIn, checkIn.AddDate(0, 0, 2))

	otherRoom := uuid.New()
	for i := 0; i < 2; i++ {
		d, err := inventory.NewDay(otherRoom, checkIn.AddDate(0, 0, i), 1, 150000, 75000, 300000, "standard")
		require.NoError(t, err)
		require.NoError(t, fx.ledger.Save(context.Background(), d))
	}

	updated, err := fx.svc.UpdateReservation(context.Background(), dto.ID, UpdateReservationRequest{RoomID: &otherRoom})
	require.NoError(t, err)

	assert.Equal(t, otherRoom, updated.RoomID)
	assert.Equal(t, int64(300000), updated.Money.RoomRateCents, "repriced at the new room's rate")
	assert.Equal(t, 1, fx.ledger.available(fx.roomID, checkIn), "old room released")
	assert.Equal(t, 0, fx.ledger.available(otherRoom, checkIn), "new room held")
}

func TestUpdateCancelledReservationRejected(t *testing.T) {
	fx := newFixture(t)
	checkIn := futureDate(10)
	fx.seedDays(t, checkIn, 2, 1, 100000)
	dto := fx.createReservation(t, checkIn, checkIn.AddDate(0, 0, 2))
	_, err := fx.svc.CancelReservation(context.Background(), dto.ID, "")
	require.NoError(t, err)

	adults := 3
	_, err = fx.svc.UpdateReservation(context.Background(), dto.ID, UpdateReservationRequest{Adults: &adults})
	require.Error(t, err)
	assert.Equal(t, domain.CodeNotModifiable, domain.CodeOf(err))
}

func TestQuoteRefund(t *testing.T) {
	fx := newFixture(t)
	checkIn := futureDate(2) // 20% tier
	fx.seedDays(t, checkIn, 1, 1, 100000)
	dto := fx.createReservation(t, checkIn, checkIn.AddDate(0, 0, 1))

	quote, err := fx.svc.QuoteRefund(context.Background(), dto.ID)
	require.NoError(t, err)
	assert.Equal(t, dto.Money.TotalCents, quote.TotalCents)
	assert.Equal(t, dto.Money.TotalCents*20/100, quote.RefundCents)
	assert.Equal(t, 2, quote.DaysUntilArrival)
	assert.True(t, quote.Cancellable)

	// Quoting does not change anything.
	again, err := fx.svc.GetReservation(context.Background(), dto.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending", again.Status)
}

func TestConcurrentCreatesSingleUnit(t *testing.T) {
	fx := newFixture(t)
	checkIn := futureDate(10)
	fx.seedDays(t, checkIn, 1, 1, 100000)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = fx.svc.CreateReservation(context.Background(), CreateReservationRequest{
				RoomID:   fx.roomID,
				GuestID:  uuid.New(),
				CheckIn:  checkIn,
				CheckOut: checkIn.AddDate(0, 0, 1),
				Adults:   1,
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.Equal(t, domain.CodeConflict, domain.CodeOf(err))
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one request may win the last unit")
	assert.Equal(t, 0, fx.ledger.available(fx.roomID, checkIn))
}

func TestGetReservationStats(t *testing.T) {
	fx := newFixture(t)
	checkIn := futureDate(10)
	fx.seedDays(t, checkIn, 6, 3, 100000)
	a := fx.createReservation(t, checkIn, checkIn.AddDate(0, 0, 2))
	fx.createReservation(t, checkIn.AddDate(0, 0, 3), checkIn.AddDate(0, 0, 5))
	_, err := fx.svc.ConfirmReservation(context.Background(), a.ID)
	require.NoError(t, err)

	stats, err := fx.svc.GetReservationStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalReservations)
	assert.Equal(t, int64(1), stats.ByStatus["pending"])
	assert.Equal(t, int64(1), stats.ByStatus["confirmed"])
}

func TestNightDiff(t *testing.T) {
	room := uuid.New()
	d0 := futureDate(10)
	nightsOf := func(start time.Time, n int) []time.Time {
		return reservation.Nights(start, start.AddDate(0, 0, n))
	}

	toReserve, toRelease := nightDiff(room, room, nightsOf(d0, 3), nightsOf(d0.AddDate(0, 0, 1), 3))
	assert.Equal(t, []time.Time{d0.AddDate(0, 0, 3)}, toReserve)
	assert.Equal(t, []time.Time{d0}, toRelease)

	other := uuid.New()
	toReserve, toRelease = nightDiff(room, other, nightsOf(d0, 2), nightsOf(d0, 2))
	assert.Len(t, toReserve, 2, "room move re-reserves everything")
	assert.Len(t, toRelease, 2)
}
