package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walterreed/referral-api/internal/model"
	"github.com/walterreed/referral-api/internal/repository/memory"
	"github.com/walterreed/referral-api/pkg/logger"
)

// Friday 2026-08-21 10:00 UTC; the next clinic day is Monday 2026-08-24.
var friday = time.Date(2026, time.August, 21, 10, 0, 0, 0, time.UTC)

func newService(repo *memory.SlotRepository, cfg Config) *Service {
	return NewService(repo, cfg, logger.NewLogger(nil), nil)
}

func TestReserveNextSlotPicksEarliestEligible(t *testing.T) {
	repo := memory.NewSlotRepository()
	svc := newService(repo, Config{})

	appt, err := svc.ReserveNextSlot(context.Background(), friday, "MRN-1")
	require.NoError(t, err)

	assert.Equal(t, time.Monday, appt.Slot.Date.Weekday())
	assert.Equal(t, "2026-08-24", appt.Slot.Date.Format("2006-01-02"))
	assert.Equal(t, 11, appt.Slot.Hour)
	assert.Equal(t, DefaultLocation, appt.Location)
	assert.Equal(t, "MRN-1", appt.PatientMRN)
	assert.NotEqual(t, uuid.Nil, appt.ID)
}

func TestReserveNextSlotSameDayStartsAfterNow(t *testing.T) {
	repo := memory.NewSlotRepository()
	svc := newService(repo, Config{})

	// Monday 12:30: the 11:00 and 12:00 slots are already in the past.
	monday := time.Date(2026, time.August, 24, 12, 30, 0, 0, time.UTC)
	appt, err := svc.ReserveNextSlot(context.Background(), monday, "MRN-1")
	require.NoError(t, err)

	assert.Equal(t, "2026-08-24", appt.Slot.Date.Format("2006-01-02"))
	assert.Equal(t, 13, appt.Slot.Hour)
}

func TestReserveNextSlotSkipsBookedSlots(t *testing.T) {
	repo := memory.NewSlotRepository()
	svc := newService(repo, Config{})
	ctx := context.Background()

	// Book the next three candidates: Monday 11, 12 and 13.
	monday := time.Date(2026, time.August, 24, 0, 0, 0, 0, time.UTC)
	for _, hour := range []int{11, 12, 13} {
		slot := model.CalendarSlot{Date: monday, Hour: hour}
		token, err := repo.Hold(ctx, slot)
		require.NoError(t, err)
		require.NoError(t, repo.Book(ctx, slot, token, &model.Appointment{ID: uuid.New(), Slot: slot}))
	}

	appt, err := svc.ReserveNextSlot(ctx, friday, "MRN-1")
	require.NoError(t, err)
	assert.Equal(t, "2026-08-24", appt.Slot.Date.Format("2006-01-02"))
	assert.Equal(t, 14, appt.Slot.Hour, "fourth candidate wins when the first three are taken")
}

func TestReserveNextSlotRollsToNextClinicDay(t *testing.T) {
	repo := memory.NewSlotRepository()
	svc := newService(repo, Config{})
	ctx := context.Background()

	monday := time.Date(2026, time.August, 24, 0, 0, 0, 0, time.UTC)
	for _, hour := range []int{11, 12, 13, 14} {
		slot := model.CalendarSlot{Date: monday, Hour: hour}
		token, err := repo.Hold(ctx, slot)
		require.NoError(t, err)
		require.NoError(t, repo.Book(ctx, slot, token, &model.Appointment{ID: uuid.New(), Slot: slot}))
	}

	appt, err := svc.ReserveNextSlot(ctx, friday, "MRN-1")
	require.NoError(t, err)
	assert.Equal(t, time.Thursday, appt.Slot.Date.Weekday())
	assert.Equal(t, "2026-08-27", appt.Slot.Date.Format("2006-01-02"))
	assert.Equal(t, 11, appt.Slot.Hour)
}

func TestReserveNextSlotExhaustsHorizon(t *testing.T) {
	repo := memory.NewSlotRepository()
	// One clinic day within a one-week horizon keeps the test small.
	svc := newService(repo, Config{Horizon: 7 * 24 * time.Hour})
	ctx := context.Background()

	var booked []*model.Appointment
	for {
		appt, err := svc.ReserveNextSlot(ctx, friday, "MRN-1")
		if err != nil {
			require.ErrorIs(t, err, ErrNoSlotAvailable)
			break
		}
		booked = append(booked, appt)
	}

	// Mon 2026-08-24 and Thu 2026-08-27, four slots each.
	assert.Len(t, booked, 8)
}

func TestReserveNextSlotConcurrentNoDoubleBooking(t *testing.T) {
	repo := memory.NewSlotRepository()
	svc := newService(repo, Config{})
	ctx := context.Background()

	const n = 16
	results := make([]*model.Appointment, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.ReserveNextSlot(ctx, friday, "MRN-1")
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		key := results[i].Slot.Key()
		assert.False(t, seen[key], "slot %s booked twice", key)
		seen[key] = true
	}
	assert.Len(t, seen, n)
}

func TestReserveNextSlotContextCancelled(t *testing.T) {
	repo := memory.NewSlotRepository()
	svc := newService(repo, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.ReserveNextSlot(ctx, friday, "MRN-1")
	assert.ErrorIs(t, err, context.Canceled)
}
