// internal/engine/shift.go
package engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/evn/siteops_backend/internal/geo"
	"github.com/evn/siteops_backend/internal/models"
)

type OpenShiftParams struct {
	WorkerID int
	SiteID   int
	Coords   string
	Actor    Actor
	// ScheduleID binds the shift to a known schedule; when nil the engine
	// looks up a planned schedule covering Now itself.
	ScheduleID *int
	Now        time.Time
}

// OpenShift creates an ACTIVE shift for the worker. Human opens pass the
// geofence; system opens (continuation) skip it and reuse prior coordinates.
func (e *Engine) OpenShift(ctx context.Context, p OpenShiftParams) (*models.Shift, error) {
	site, err := e.sites.ByID(ctx, p.SiteID)
	if err != nil {
		return nil, err
	}
	if site == nil {
		return nil, fmt.Errorf("site %d: %w", p.SiteID, ErrNotFound)
	}

	if p.Actor != ActorSystem {
		check, err := geo.Validate(p.Coords, site.Coords, site.RadiusMeters)
		if err != nil {
			return nil, err
		}
		if !check.WithinRange {
			return nil, &GeofenceError{
				DistanceMeters:    check.DistanceMeters,
				MaxDistanceMeters: site.RadiusMeters,
			}
		}
	}

	// Один работник — одна активная смена.
	active, err := e.shifts.ActiveByWorker(ctx, p.WorkerID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, ErrShiftAlreadyActive
	}

	now := p.Now.UTC()
	shift := &models.Shift{
		WorkerID:    p.WorkerID,
		SiteID:      p.SiteID,
		Status:      models.ShiftActive,
		StartTime:   now,
		StartCoords: p.Coords,
	}

	var sched *models.ShiftSchedule
	if p.ScheduleID != nil {
		sched, err = e.schedules.ByID(ctx, *p.ScheduleID)
		if err != nil {
			return nil, err
		}
		if sched == nil {
			return nil, fmt.Errorf("schedule %d: %w", *p.ScheduleID, ErrNotFound)
		}
		// Чужое, уже не planned или не покрывающее Now расписание —
		// для вызывающего его нет. Система (continuation) передаёт
		// проверенное расписание сама.
		if p.Actor != ActorSystem {
			if sched.WorkerID != p.WorkerID || sched.SiteID != p.SiteID ||
				sched.Status != models.SchedulePlanned ||
				sched.PlannedStart.After(now.Add(openLead)) || !sched.PlannedEnd.After(now) {
				return nil, fmt.Errorf("schedule %d: %w", *p.ScheduleID, ErrNotFound)
			}
		}
	} else {
		sched, err = e.schedules.PlannedCovering(ctx, p.WorkerID, p.SiteID, now, openLead)
		if err != nil {
			return nil, err
		}
	}

	if sched != nil {
		shift.ScheduleID = &sched.ID
		shift.IsPlanned = true
		shift.HourlyRate = sched.HourlyRate
		if sched.SlotID != nil {
			slot, err := e.slots.ByID(ctx, *sched.SlotID)
			if err != nil {
				return nil, err
			}
			if slot != nil {
				shift.StartLabel = slot.Label()
			}
		}
	} else if slot, err := e.coveringSlot(ctx, site, now); err != nil {
		return nil, err
	} else if slot != nil {
		shift.HourlyRate = slot.HourlyRate
		shift.StartLabel = slot.Label()
	}

	if shift.StartLabel == "" {
		loc, err := siteLocation(site)
		if err != nil {
			return nil, err
		}
		shift.StartLabel = now.In(loc).Format("15:04")
	}

	if err := e.shifts.Create(ctx, shift); err != nil {
		return nil, err
	}

	if sched != nil && sched.Status == models.SchedulePlanned {
		if _, err := e.schedules.Transition(ctx, sched.ID, models.SchedulePlanned, models.ScheduleInProgress, false); err != nil {
			log.Printf("shift %d: failed to mark schedule %d in progress: %v", shift.ID, sched.ID, err)
		}
	}

	e.publish(Event{
		Type:     EventShiftOpened,
		At:       now,
		Actor:    p.Actor,
		WorkerID: p.WorkerID,
		SiteID:   p.SiteID,
		ShiftID:  shift.ID,
	})
	return shift, nil
}

type CloseShiftParams struct {
	WorkerID int
	ShiftID  int
	Coords   string
	Actor    Actor
	Now      time.Time
}

// CloseShift ends the worker's active shift at Now and computes worked hours
// and payment. Admin closes skip the geofence re-check.
func (e *Engine) CloseShift(ctx context.Context, p CloseShiftParams) (*models.Shift, error) {
	shift, err := e.shifts.ByID(ctx, p.ShiftID)
	if err != nil {
		return nil, err
	}
	if shift == nil {
		return nil, fmt.Errorf("shift %d: %w", p.ShiftID, ErrNotFound)
	}
	if p.Actor == ActorWorker && shift.WorkerID != p.WorkerID {
		// Чужая смена — для вызывающего её не существует.
		return nil, fmt.Errorf("shift %d: %w", p.ShiftID, ErrNotFound)
	}
	if shift.Status != models.ShiftActive {
		return nil, ErrShiftNotActive
	}

	endCoords := ""
	if p.Actor == ActorWorker && p.Coords != "" {
		site, err := e.sites.ByID(ctx, shift.SiteID)
		if err != nil {
			return nil, err
		}
		if site == nil {
			return nil, fmt.Errorf("site %d: %w", shift.SiteID, ErrNotFound)
		}
		check, err := geo.Validate(p.Coords, site.Coords, site.RadiusMeters)
		if err != nil {
			return nil, err
		}
		if !check.WithinRange {
			return nil, &GeofenceError{
				DistanceMeters:    check.DistanceMeters,
				MaxDistanceMeters: site.RadiusMeters,
			}
		}
		endCoords = p.Coords
	}

	end := p.Now.UTC()
	if end.Before(shift.StartTime) {
		end = shift.StartTime
	}
	hours := workedHours(shift.StartTime, end)
	payment := roundHalfUp(hours * shift.HourlyRate)

	ok, err := e.shifts.CloseActive(ctx, shift.ID, end, endCoords, hours, payment, models.ShiftCompleted)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Кто-то успел закрыть раньше (например, sweep).
		return nil, ErrShiftNotActive
	}

	shift.Status = models.ShiftCompleted
	shift.EndTime = &end
	shift.EndCoords = endCoords
	shift.TotalHours = hours
	shift.TotalPayment = payment

	if shift.ScheduleID != nil {
		if _, err := e.schedules.Transition(ctx, *shift.ScheduleID, models.ScheduleInProgress, models.ScheduleCompleted, false); err != nil {
			log.Printf("shift %d: failed to complete schedule %d: %v", shift.ID, *shift.ScheduleID, err)
		}
	}

	e.publish(Event{
		Type:     EventShiftClosed,
		At:       end,
		Actor:    p.Actor,
		WorkerID: shift.WorkerID,
		SiteID:   shift.SiteID,
		ShiftID:  shift.ID,
	})

	// The site may have just emptied out.
	if _, err := e.AutoCloseSiteIfEmpty(ctx, shift.SiteID, end); err != nil {
		log.Printf("shift %d: site %d auto-close check failed: %v", shift.ID, shift.SiteID, err)
	}
	return shift, nil
}

// AutoCloseShift ends an overdue shift at the resolved plannedEnd — never at
// the sweep's wall clock. Re-running on a terminal shift is a no-op; the
// returned bool reports whether this call actually closed it.
func (e *Engine) AutoCloseShift(ctx context.Context, shift *models.Shift, plannedEnd time.Time) (bool, error) {
	if shift.Status.Terminal() {
		return false, nil
	}

	end := plannedEnd.UTC()
	if end.Before(shift.StartTime) {
		end = shift.StartTime
	}
	hours := workedHours(shift.StartTime, end)
	payment := roundHalfUp(hours * shift.HourlyRate)

	ok, err := e.shifts.CloseActive(ctx, shift.ID, end, shift.StartCoords, hours, payment, models.ShiftAutoClosed)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	shift.Status = models.ShiftAutoClosed
	shift.EndTime = &end
	shift.EndCoords = shift.StartCoords
	shift.TotalHours = hours
	shift.TotalPayment = payment

	if shift.ScheduleID != nil {
		if _, err := e.schedules.Transition(ctx, *shift.ScheduleID, models.ScheduleInProgress, models.ScheduleCompleted, true); err != nil {
			log.Printf("shift %d: failed to complete schedule %d: %v", shift.ID, *shift.ScheduleID, err)
		}
	}

	e.publish(Event{
		Type:     EventShiftAutoClosed,
		At:       end,
		Actor:    ActorSystem,
		WorkerID: shift.WorkerID,
		SiteID:   shift.SiteID,
		ShiftID:  shift.ID,
	})
	return true, nil
}

// ActiveShift returns the worker's current ACTIVE shift, or nil.
func (e *Engine) ActiveShift(ctx context.Context, workerID int) (*models.Shift, error) {
	return e.shifts.ActiveByWorker(ctx, workerID)
}

// coveringSlot picks the active catalog slot whose window contains now.
func (e *Engine) coveringSlot(ctx context.Context, site *models.Site, now time.Time) (*models.TimeSlot, error) {
	loc, err := siteLocation(site)
	if err != nil {
		return nil, err
	}
	day := now.In(loc)
	date := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)

	slots, err := e.slots.ForSiteDate(ctx, site.ID, date)
	if err != nil {
		return nil, err
	}
	for i := range slots {
		slot := &slots[i]
		if !slot.Active {
			continue
		}
		start, err := combineClock(dayStart, slot.StartTime, loc)
		if err != nil {
			continue
		}
		end, err := combineClock(start, slot.EndTime, loc)
		if err != nil {
			continue
		}
		// Допускаем старт слота чуть заранее, как и для расписаний.
		if !now.Before(start.Add(-openLead)) && now.Before(end) {
			return slot, nil
		}
	}
	return nil, nil
}
