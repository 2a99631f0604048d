package booking

import (
	"context"
	"time"
)

// Slot is one bookable window on a resource's daily grid.
type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Grid derives the day's slot grid from now: the first slot starts at the next
// full hour (now itself when it is on the hour), slots are consecutive and the
// grid ends at MaxSlots, at the first start hour >= LastStartHour, or at midnight.
func Grid(now time.Time, p Policy) []Slot {
	local := now.In(p.Location)
	start := time.Date(local.Year(), local.Month(), local.Day(), local.Hour(), 0, 0, 0, p.Location)
	if local.Minute() > 0 {
		start = start.Add(time.Hour)
	}

	slots := make([]Slot, 0, p.MaxSlots)
	for i := 0; i < p.MaxSlots; i++ {
		s := start.Add(time.Duration(i) * p.SlotLength)
		if s.Hour() >= p.LastStartHour || !sameDay(s, local) {
			break
		}
		slots = append(slots, Slot{Start: s, End: s.Add(p.SlotLength)})
	}
	return slots
}

// AvailableSlots returns today's grid for the resource minus the slots whose
// start is already held by a CONFIRMED or ACTIVE booking. It reads the store on
// every call.
func (s *Service) AvailableSlots(ctx context.Context, resourceID string, now time.Time) ([]Slot, error) {
	grid := Grid(now, s.policy)
	if len(grid) == 0 {
		return grid, nil
	}

	dayStart, dayEnd := dayBounds(now, s.policy.Location)
	held, err := s.store.HeldStarts(ctx, resourceID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	taken := make(map[int64]struct{}, len(held))
	for _, t := range held {
		taken[t.Unix()] = struct{}{}
	}

	free := grid[:0]
	for _, slot := range grid {
		if _, ok := taken[slot.Start.Unix()]; !ok {
			free = append(free, slot)
		}
	}
	return free, nil
}

func dayBounds(now time.Time, loc *time.Location) (time.Time, time.Time) {
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
