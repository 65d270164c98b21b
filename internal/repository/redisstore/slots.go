// Package redisstore backs the clinic calendar with Redis. The free-to-held
// transition is a SET NX on the slot key; the held-to-booked and release
// transitions run as Lua scripts so the hold token is checked and swapped
// atomically.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/walterreed/referral-api/internal/model"
	"github.com/walterreed/referral-api/internal/repository"
)

const holdTTL = 30 * time.Second

type slotRepository struct {
	client *redis.Client
}

func NewSlotRepository(client *redis.Client) repository.SlotRepository {
	return &slotRepository{client: client}
}

func slotKey(slot model.CalendarSlot) string {
	return "slot:" + slot.Key()
}

// bookScript swaps a matching hold marker for a permanent booked marker.
var bookScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  redis.call("SET", KEYS[1], ARGV[2])
  return 1
else
  return 0
end
`)

// releaseScript deletes the slot key only while it still carries the hold
// token, mirroring the safe-unlock idiom.
var releaseScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (r *slotRepository) Hold(ctx context.Context, slot model.CalendarSlot) (string, error) {
	token := "held:" + uuid.NewString()
	ok, err := r.client.SetNX(ctx, slotKey(slot), token, holdTTL).Result()
	if err != nil {
		return "", fmt.Errorf("failed to hold slot: %w", err)
	}
	if !ok {
		return "", repository.ErrSlotUnavailable
	}
	return token, nil
}

func (r *slotRepository) Book(ctx context.Context, slot model.CalendarSlot, token string, appt *model.Appointment) error {
	booked, err := bookScript.Run(ctx, r.client, []string{slotKey(slot)}, token, "booked:"+appt.ID.String()).Int()
	if err != nil {
		return fmt.Errorf("failed to book slot: %w", err)
	}
	if booked == 0 {
		return repository.ErrNotHeld
	}

	data, err := json.Marshal(appt)
	if err != nil {
		return fmt.Errorf("failed to marshal appointment: %w", err)
	}
	if err := r.client.Set(ctx, "appointment:"+appt.ID.String(), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store appointment: %w", err)
	}
	return nil
}

func (r *slotRepository) Release(ctx context.Context, slot model.CalendarSlot, token string) error {
	deleted, err := releaseScript.Run(ctx, r.client, []string{slotKey(slot)}, token).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to release slot: %w", err)
	}
	if deleted == 0 {
		return repository.ErrNotHeld
	}
	return nil
}

func (r *slotRepository) Status(ctx context.Context, slot model.CalendarSlot) (model.SlotStatus, error) {
	val, err := r.client.Get(ctx, slotKey(slot)).Result()
	if errors.Is(err, redis.Nil) {
		return model.SlotFree, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get slot status: %w", err)
	}
	if strings.HasPrefix(val, "booked:") {
		return model.SlotBooked, nil
	}
	return model.SlotHeld, nil
}
