package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beatfarda/studio-api/internal/config"
	"github.com/beatfarda/studio-api/internal/model"
	apperrors "github.com/beatfarda/studio-api/pkg/errors"
	"github.com/beatfarda/studio-api/pkg/metrics"
)

type fakeBookingRepo struct {
	blocking []*model.Booking
	err      error
}

func (f *fakeBookingRepo) HoldSlot(ctx context.Context, booking *model.Booking) error {
	panic("not used")
}

func (f *fakeBookingRepo) Get(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	panic("not used")
}

func (f *fakeBookingRepo) ConfirmBooking(ctx context.Context, id uuid.UUID) (*model.Booking, bool, error) {
	panic("not used")
}

func (f *fakeBookingRepo) CancelBooking(ctx context.Context, id uuid.UUID) error {
	panic("not used")
}

func (f *fakeBookingRepo) ReleaseExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

func (f *fakeBookingRepo) CompleteElapsed(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

func (f *fakeBookingRepo) ListBlockingForDay(ctx context.Context, dayStart, dayEnd, now time.Time) ([]*model.Booking, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.blocking, nil
}

func (f *fakeBookingRepo) ListRange(ctx context.Context, start, end time.Time) ([]*model.Booking, error) {
	return f.blocking, nil
}

func testStudioConfig() config.StudioConfig {
	return config.StudioConfig{
		AccountID:          uuid.NewString(),
		DayStartHour:       10,
		DayEndHour:         22,
		SlotStepMinutes:    30,
		GlobalBufferBefore: 15,
		GlobalBufferAfter:  15,
		MinLeadTimeHours:   24,
		HoldMinutes:        15,
	}
}

func newTestService(repo *fakeBookingRepo, now time.Time) *Service {
	svc := NewService(repo, testStudioConfig(), metrics.NewForTest(), zerolog.Nop())
	svc.now = func() time.Time { return now }
	return svc
}

func at(day time.Time, hour, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
}

func slotStarts(slots []model.Slot) []time.Time {
	starts := make([]time.Time, 0, len(slots))
	for _, s := range slots {
		starts = append(starts, s.Start)
	}
	return starts
}

func TestGetAvailableSlots_EmptyDay(t *testing.T) {
	day := time.Date(2026, 9, 20, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 9, 10, 12, 0, 0, 0, time.UTC)
	svc := newTestService(&fakeBookingRepo{}, now)

	oneHour := &model.Service{ID: "svc_vocal_1h", Duration: 60, BufferBefore: 30}

	slots, err := svc.GetAvailableSlots(context.Background(), day, oneHour)
	require.NoError(t, err)

	// 10:00 through 21:00 starts, every 30 minutes.
	require.Len(t, slots, 23)
	assert.Equal(t, at(day, 10, 0), slots[0].Start)
	assert.Equal(t, at(day, 11, 0), slots[0].End)
	assert.Equal(t, at(day, 21, 0), slots[len(slots)-1].Start)
	assert.Equal(t, at(day, 22, 0), slots[len(slots)-1].End)
	for _, s := range slots {
		assert.True(t, s.Available)
	}
}

func TestGetAvailableSlots_BuffersAreMaxNotSum(t *testing.T) {
	day := time.Date(2026, 9, 20, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 9, 10, 12, 0, 0, 0, time.UTC)
	repo := &fakeBookingRepo{blocking: []*model.Booking{
		{StartTime: at(day, 14, 0), EndTime: at(day, 15, 0), Status: model.BookingStatusConfirmed},
	}}
	svc := newTestService(repo, now)

	// Service buffer-before 30 beats the global 15; buffer-after stays 15.
	oneHour := &model.Service{ID: "svc_vocal_1h", Duration: 60, BufferBefore: 30}

	slots, err := svc.GetAvailableSlots(context.Background(), day, oneHour)
	require.NoError(t, err)

	starts := slotStarts(slots)
	assert.Contains(t, starts, at(day, 12, 30))
	assert.NotContains(t, starts, at(day, 13, 0))
	assert.NotContains(t, starts, at(day, 14, 0))
	assert.NotContains(t, starts, at(day, 15, 0))
	assert.Contains(t, starts, at(day, 15, 30))
	assert.Len(t, slots, 18)
}

func TestGetAvailableSlots_ProvisionalHoldBlocks(t *testing.T) {
	day := time.Date(2026, 9, 20, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 9, 10, 12, 0, 0, 0, time.UTC)
	expires := now.Add(10 * time.Minute)
	repo := &fakeBookingRepo{blocking: []*model.Booking{
		{
			StartTime:            at(day, 18, 0),
			EndTime:              at(day, 19, 0),
			Status:               model.BookingStatusProvisional,
			ProvisionalExpiresAt: &expires,
		},
	}}
	svc := newTestService(repo, now)

	oneHour := &model.Service{ID: "svc_vocal_1h", Duration: 60}

	slots, err := svc.GetAvailableSlots(context.Background(), day, oneHour)
	require.NoError(t, err)
	assert.NotContains(t, slotStarts(slots), at(day, 18, 0))
	assert.NotContains(t, slotStarts(slots), at(day, 18, 30))
}

func TestGetAvailableSlots_LeadTimeExcludesNearSlots(t *testing.T) {
	day := time.Date(2026, 9, 20, 0, 0, 0, 0, time.UTC)
	// 24h lead lands mid-day: everything before 16:00 is too soon.
	now := time.Date(2026, 9, 19, 16, 0, 0, 0, time.UTC)
	svc := newTestService(&fakeBookingRepo{}, now)

	oneHour := &model.Service{ID: "svc_vocal_1h", Duration: 60}

	slots, err := svc.GetAvailableSlots(context.Background(), day, oneHour)
	require.NoError(t, err)
	require.NotEmpty(t, slots)
	assert.Equal(t, at(day, 16, 0), slots[0].Start)
	assert.Equal(t, at(day, 21, 0), slots[len(slots)-1].Start)
}

func TestGetAvailableSlots_WholeDayTooSoon(t *testing.T) {
	day := time.Date(2026, 9, 20, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 9, 20, 12, 0, 0, 0, time.UTC)
	svc := newTestService(&fakeBookingRepo{}, now)

	slots, err := svc.GetAvailableSlots(context.Background(), day, &model.Service{ID: "svc_vocal_1h", Duration: 60})
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestGetAvailableSlots_LongSessionFitsFewerStarts(t *testing.T) {
	day := time.Date(2026, 9, 20, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 9, 10, 12, 0, 0, 0, time.UTC)
	svc := newTestService(&fakeBookingRepo{}, now)

	threeHours := &model.Service{ID: "svc_vocal_3h", Duration: 180, BufferBefore: 30}

	slots, err := svc.GetAvailableSlots(context.Background(), day, threeHours)
	require.NoError(t, err)
	require.NotEmpty(t, slots)
	// Last start leaving room for three hours before close.
	assert.Equal(t, at(day, 19, 0), slots[len(slots)-1].Start)
	assert.Equal(t, at(day, 22, 0), slots[len(slots)-1].End)
}

func TestGetAvailableSlots_RejectsUnbookableService(t *testing.T) {
	now := time.Date(2026, 9, 10, 12, 0, 0, 0, time.UTC)
	svc := newTestService(&fakeBookingRepo{}, now)
	day := time.Date(2026, 9, 20, 0, 0, 0, 0, time.UTC)

	_, err := svc.GetAvailableSlots(context.Background(), day, &model.Service{ID: "svc_mix_std", Duration: 0})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrInvalidService))

	_, err = svc.GetAvailableSlots(context.Background(), day, nil)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrInvalidService))
}

func TestGetAvailableSlots_StoreErrorFailsClosed(t *testing.T) {
	now := time.Date(2026, 9, 10, 12, 0, 0, 0, time.UTC)
	repo := &fakeBookingRepo{err: errors.New("connection refused")}
	svc := newTestService(repo, now)
	day := time.Date(2026, 9, 20, 0, 0, 0, 0, time.UTC)

	slots, err := svc.GetAvailableSlots(context.Background(), day, &model.Service{ID: "svc_vocal_1h", Duration: 60})
	assert.Nil(t, slots)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrStoreUnavailable))
}
