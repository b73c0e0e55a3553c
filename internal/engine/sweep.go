// internal/engine/sweep.go
package engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/evn/siteops_backend/internal/models"
)

// SweepResult is the outcome of one reconciliation pass.
type SweepResult struct {
	RunID               string    `json:"run_id"`
	ProcessedAt         time.Time `json:"processed_at"`
	ClosedShiftCount    int       `json:"closed_shift_count"`
	ContinuedShiftCount int       `json:"continued_shift_count"`
	MissedScheduleCount int       `json:"missed_schedule_count"`
	ClosedSiteCount     int       `json:"closed_site_count"`
	Errors              []string  `json:"errors"`
}

// RunSweep reconciles everything overdue as of now: auto-closes expired
// ACTIVE shifts (then continuation, then site auto-close, in that order per
// shift) and flags never-opened PLANNED schedules as missed.
//
// Each item is independent: a failure is recorded in the result and the
// sweep moves on. Re-running over already-terminal records is a no-op, so
// overlapping or repeated sweeps are safe.
func (e *Engine) RunSweep(ctx context.Context, now time.Time) SweepResult {
	now = now.UTC()
	res := SweepResult{
		RunID:       uuid.NewString(),
		ProcessedAt: now,
		Errors:      []string{},
	}

	shifts, err := e.shifts.ActiveStartedBefore(ctx, now)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("load active shifts: %v", err))
	} else {
		for i := range shifts {
			e.sweepShift(ctx, &shifts[i], now, &res)
		}
	}

	schedules, err := e.schedules.OverduePlanned(ctx, now)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("load overdue schedules: %v", err))
	} else {
		for i := range schedules {
			e.sweepSchedule(ctx, &schedules[i], now, &res)
		}
	}

	if res.ClosedShiftCount > 0 || res.MissedScheduleCount > 0 || len(res.Errors) > 0 {
		log.Printf("sweep %s: closed %d shifts, continued %d, missed %d schedules, closed %d sites, %d errors",
			res.RunID, res.ClosedShiftCount, res.ContinuedShiftCount,
			res.MissedScheduleCount, res.ClosedSiteCount, len(res.Errors))
	}
	return res
}

func (e *Engine) sweepShift(ctx context.Context, shift *models.Shift, now time.Time, res *SweepResult) {
	bounds, err := e.resolveShiftBounds(ctx, shift)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("shift %d: %v", shift.ID, err))
		return
	}
	if now.Before(bounds.Deadline) {
		return
	}

	closed, err := e.AutoCloseShift(ctx, shift, bounds.PlannedEnd)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("shift %d: auto close: %v", shift.ID, err))
		return
	}
	if !closed {
		// Терминальный статус — кто-то уже закрыл.
		return
	}
	res.ClosedShiftCount++

	if next, err := e.continueShift(ctx, shift, bounds.PlannedEnd); err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("shift %d: continuation: %v", shift.ID, err))
	} else if next != nil {
		res.ContinuedShiftCount++
	}

	// Site closure must see the just-committed shift closure, hence last.
	if siteClosed, err := e.AutoCloseSiteIfEmpty(ctx, shift.SiteID, bounds.PlannedEnd); err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("shift %d: site %d auto close: %v", shift.ID, shift.SiteID, err))
	} else if siteClosed {
		res.ClosedSiteCount++
	}
}

func (e *Engine) sweepSchedule(ctx context.Context, sched *models.ShiftSchedule, now time.Time, res *SweepResult) {
	site, err := e.sites.ByID(ctx, sched.SiteID)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("schedule %d: %v", sched.ID, err))
		return
	}
	if site == nil {
		res.Errors = append(res.Errors, fmt.Sprintf("schedule %d: site %d: %v", sched.ID, sched.SiteID, ErrNotFound))
		return
	}

	var slot *models.TimeSlot
	if sched.SlotID != nil {
		slot, err = e.slots.ByID(ctx, *sched.SlotID)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("schedule %d: %v", sched.ID, err))
			return
		}
	}

	bounds, err := ResolveTimeBounds(sched.PlannedStart, slot, site)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("schedule %d: %v", sched.ID, err))
		return
	}
	if now.Before(bounds.Deadline) {
		return
	}

	// Работник так и не открыл смену: без Shift и без оплаты.
	ok, err := e.schedules.Transition(ctx, sched.ID, models.SchedulePlanned, models.ScheduleMissed, true)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("schedule %d: mark missed: %v", sched.ID, err))
		return
	}
	if !ok {
		return
	}
	res.MissedScheduleCount++

	e.publish(Event{
		Type:     EventScheduleMissed,
		At:       now,
		Actor:    ActorSystem,
		WorkerID: sched.WorkerID,
		SiteID:   sched.SiteID,
	})
}
