// Package scheduler owns the clinic appointment calendar and reserves slots
// on it. It is the only component with cross-request shared state; the
// atomicity of a reservation lives in the SlotRepository claim, so the
// search loop itself never blocks on a contested slot.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/walterreed/referral-api/internal/model"
	"github.com/walterreed/referral-api/internal/repository"
	"github.com/walterreed/referral-api/pkg/logger"
	"github.com/walterreed/referral-api/pkg/metrics"
)

// ErrNoSlotAvailable means no free slot exists within the search horizon.
// Distinct from rule rejections; the caller defers with a no-availability
// reason.
var ErrNoSlotAvailable = errors.New("no slot available within the search horizon")

// Clinic calendar constraints.
const (
	DefaultStartHour = 11
	DefaultEndHour   = 15
	DefaultHorizon   = 8 * 7 * 24 * time.Hour
	DefaultLocation  = "Walter Reed Cardiology Clinic"
)

// DefaultWeekdays are the clinic's consultation days.
var DefaultWeekdays = []time.Weekday{time.Monday, time.Thursday}

type Config struct {
	Weekdays  []time.Weekday
	StartHour int
	EndHour   int
	Horizon   time.Duration
	Location  string
}

func (c *Config) applyDefaults() {
	if len(c.Weekdays) == 0 {
		c.Weekdays = DefaultWeekdays
	}
	if c.StartHour == 0 {
		c.StartHour = DefaultStartHour
	}
	if c.EndHour == 0 {
		c.EndHour = DefaultEndHour
	}
	if c.Horizon == 0 {
		c.Horizon = DefaultHorizon
	}
	if c.Location == "" {
		c.Location = DefaultLocation
	}
}

type Service struct {
	repo    repository.SlotRepository
	cfg     Config
	log     *logger.Logger
	metrics *metrics.Metrics
}

func NewService(repo repository.SlotRepository, cfg Config, log *logger.Logger, m *metrics.Metrics) *Service {
	cfg.applyDefaults()
	return &Service{
		repo:    repo,
		cfg:     cfg,
		log:     log.WithComponent("scheduler"),
		metrics: m,
	}
}

// ReserveNextSlot books the earliest free slot after the given instant.
// Candidates are generated lazily in chronological order, filtered to the
// allowed weekdays and hour range. Each candidate is claimed atomically; a
// lost race just advances to the next candidate. Returns ErrNoSlotAvailable
// once the bounded horizon is exhausted.
func (s *Service) ReserveNextSlot(ctx context.Context, after time.Time, patientMRN string) (*model.Appointment, error) {
	deadline := after.Add(s.cfg.Horizon)

	for cursor := after; ; {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("slot search aborted: %w", err)
		}

		slot := s.nextSlotAfter(cursor)
		if slot.Start().After(deadline) {
			break
		}
		cursor = slot.Start()

		token, err := s.repo.Hold(ctx, slot)
		if errors.Is(err, repository.ErrSlotUnavailable) {
			if s.metrics != nil {
				s.metrics.SlotClaimConflicts.Inc()
			}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to claim slot %s: %w", slot.Key(), err)
		}

		appt := &model.Appointment{
			ID:         uuid.New(),
			PatientMRN: patientMRN,
			Slot:       slot,
			Location:   s.cfg.Location,
			CreatedAt:  time.Now(),
		}
		if err := s.repo.Book(ctx, slot, token, appt); err != nil {
			if relErr := s.repo.Release(ctx, slot, token); relErr != nil {
				s.log.Error(relErr, "failed to release held slot", "slot", slot.Key())
			}
			return nil, fmt.Errorf("failed to book slot %s: %w", slot.Key(), err)
		}

		if s.metrics != nil {
			s.metrics.SlotsBooked.Inc()
		}
		s.log.Info("slot booked", "slot", slot.Key(), "appointment", appt.ID.String())
		return appt, nil
	}

	if s.metrics != nil {
		s.metrics.SchedulingExhausted.Inc()
	}
	return nil, ErrNoSlotAvailable
}

// nextSlotAfter returns the earliest eligible slot starting strictly after t.
// The calendar has no fixed horizon of its own; the caller bounds the search.
func (s *Service) nextSlotAfter(t time.Time) model.CalendarSlot {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	for {
		if s.allowedWeekday(day.Weekday()) {
			for hour := s.cfg.StartHour; hour < s.cfg.EndHour; hour++ {
				slot := model.CalendarSlot{Date: day, Hour: hour}
				if slot.Start().After(t) {
					return slot
				}
			}
		}
		day = day.AddDate(0, 0, 1)
	}
}

func (s *Service) allowedWeekday(d time.Weekday) bool {
	for _, w := range s.cfg.Weekdays {
		if w == d {
			return true
		}
	}
	return false
}
