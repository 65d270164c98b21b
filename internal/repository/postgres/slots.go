// Package postgres backs the clinic calendar with Postgres. Atomicity of
// the free-to-held transition rides on a conditional INSERT/UPDATE: the row
// version that loses the race affects zero rows and surfaces as
// ErrSlotUnavailable.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/walterreed/referral-api/internal/model"
	"github.com/walterreed/referral-api/internal/repository"
)

type slotRepository struct {
	db *sqlx.DB
}

func NewSlotRepository(db *sqlx.DB) repository.SlotRepository {
	return &slotRepository{db: db}
}

func (r *slotRepository) Hold(ctx context.Context, slot model.CalendarSlot) (string, error) {
	token := uuid.NewString()
	query := `
		INSERT INTO calendar_slots (slot_date, slot_hour, status, hold_token)
		VALUES ($1, $2, 'held', $3)
		ON CONFLICT (slot_date, slot_hour) DO UPDATE
			SET status = 'held', hold_token = $3
			WHERE calendar_slots.status = 'free'
	`
	res, err := r.db.ExecContext(ctx, query, slot.Date.Format("2006-01-02"), slot.Hour, token)
	if err != nil {
		return "", fmt.Errorf("failed to hold slot: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("failed to hold slot: %w", err)
	}
	if affected == 0 {
		return "", repository.ErrSlotUnavailable
	}
	return token, nil
}

func (r *slotRepository) Book(ctx context.Context, slot model.CalendarSlot, token string, appt *model.Appointment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin booking: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE calendar_slots
		SET status = 'booked', hold_token = NULL, appointment_id = $4
		WHERE slot_date = $1 AND slot_hour = $2 AND status = 'held' AND hold_token = $3
	`, slot.Date.Format("2006-01-02"), slot.Hour, token, appt.ID)
	if err != nil {
		return fmt.Errorf("failed to book slot: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to book slot: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotHeld
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO appointments (id, patient_mrn, slot_date, slot_hour, location, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, appt.ID, appt.PatientMRN, appt.Slot.Date.Format("2006-01-02"), appt.Slot.Hour, appt.Location, appt.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}

	return tx.Commit()
}

func (r *slotRepository) Release(ctx context.Context, slot model.CalendarSlot, token string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE calendar_slots
		SET status = 'free', hold_token = NULL
		WHERE slot_date = $1 AND slot_hour = $2 AND status = 'held' AND hold_token = $3
	`, slot.Date.Format("2006-01-02"), slot.Hour, token)
	if err != nil {
		return fmt.Errorf("failed to release slot: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to release slot: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotHeld
	}
	return nil
}

func (r *slotRepository) Status(ctx context.Context, slot model.CalendarSlot) (model.SlotStatus, error) {
	var status string
	err := r.db.GetContext(ctx, &status, `
		SELECT status FROM calendar_slots WHERE slot_date = $1 AND slot_hour = $2
	`, slot.Date.Format("2006-01-02"), slot.Hour)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SlotFree, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get slot status: %w", err)
	}
	return model.SlotStatus(status), nil
}
