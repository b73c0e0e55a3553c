// internal/engine/timesource.go
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/evn/siteops_backend/internal/models"
)

// TimeBounds is the result of resolving a shift's authoritative end.
//
// PlannedEnd is what hours and payment are accounted against. Deadline is
// when the sweep is allowed to act, and may lag PlannedEnd by the grace
// window anchored to the site's nominal closing time. The two deliberately
// differ: worked hours always reflect the planned boundary, the trigger may
// wait longer.
type TimeBounds struct {
	PlannedEnd time.Time
	Deadline   time.Time
}

// ResolveTimeBounds determines (plannedEnd, deadline) for a shift or
// schedule that started at start, given its optional slot and its site.
//
// plannedEnd priority: slot end on the start's local date, then the site's
// closing time on that date, then start + auto_close_minutes. When none of
// the three is configured the shift is unresolvable and the caller must skip
// it, never default to "now".
func ResolveTimeBounds(start time.Time, slot *models.TimeSlot, site *models.Site) (TimeBounds, error) {
	loc, err := siteLocation(site)
	if err != nil {
		return TimeBounds{}, err
	}

	var plannedEnd time.Time
	switch {
	case slot != nil && slot.EndTime != "":
		plannedEnd, err = combineClock(start, slot.EndTime, loc)
	case site.ClosingTime != "":
		plannedEnd, err = combineClock(start, site.ClosingTime, loc)
	case site.AutoCloseMinutes != nil:
		plannedEnd = start.Add(time.Duration(*site.AutoCloseMinutes) * time.Minute)
	default:
		return TimeBounds{}, fmt.Errorf("site %d: %w", site.ID, ErrUnresolvableTimeSource)
	}
	if err != nil {
		return TimeBounds{}, err
	}

	deadline := plannedEnd
	if site.ClosingTime != "" && site.AutoCloseMinutes != nil {
		grace := time.Duration(*site.AutoCloseMinutes) * time.Minute
		closing, err := combineClock(start, site.ClosingTime, loc)
		if err != nil {
			return TimeBounds{}, err
		}
		if plannedEnd.Equal(closing) {
			deadline = plannedEnd.Add(grace)
		} else {
			// The trigger waits on the site's closing time plus grace,
			// while accounting stays on plannedEnd.
			deadline = closing.Add(grace)
		}
	}

	return TimeBounds{PlannedEnd: plannedEnd.UTC(), Deadline: deadline.UTC()}, nil
}

func siteLocation(site *models.Site) (*time.Location, error) {
	if site.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(site.Timezone)
	if err != nil {
		return nil, fmt.Errorf("site %d: bad timezone %q: %w", site.ID, site.Timezone, err)
	}
	return loc, nil
}

// combineClock places a local clock string ("15:00") on the local date of
// ref. Когда часы указывают раньше старта — интервал через полночь,
// переносим на следующий день.
func combineClock(ref time.Time, clock string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad clock time %q: %w", clock, err)
	}
	y, m, d := ref.In(loc).Date()
	combined := time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, loc)
	if combined.Before(ref) {
		combined = combined.AddDate(0, 0, 1)
	}
	return combined, nil
}

// resolveShiftBounds loads the shift's site and linked slot (through its
// schedule, when there is one) and resolves its bounds.
func (e *Engine) resolveShiftBounds(ctx context.Context, shift *models.Shift) (TimeBounds, error) {
	site, err := e.sites.ByID(ctx, shift.SiteID)
	if err != nil {
		return TimeBounds{}, err
	}
	if site == nil {
		return TimeBounds{}, fmt.Errorf("site %d: %w", shift.SiteID, ErrNotFound)
	}

	var slot *models.TimeSlot
	if shift.ScheduleID != nil {
		sched, err := e.schedules.ByID(ctx, *shift.ScheduleID)
		if err != nil {
			return TimeBounds{}, err
		}
		if sched != nil && sched.SlotID != nil {
			slot, err = e.slots.ByID(ctx, *sched.SlotID)
			if err != nil {
				return TimeBounds{}, err
			}
		}
	}

	return ResolveTimeBounds(shift.StartTime, slot, site)
}
