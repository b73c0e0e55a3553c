// internal/engine/repos.go
package engine

import (
	"context"
	"time"

	"github.com/evn/siteops_backend/internal/models"
)

// Lookup methods return (nil, nil) when no row matches; only infrastructure
// failures come back as errors. Guarded writes return false when the status
// precondition no longer holds, which is how concurrent closers lose the race
// without corrupting anything.

type ShiftRepo interface {
	ByID(ctx context.Context, id int) (*models.Shift, error)
	ActiveByWorker(ctx context.Context, workerID int) (*models.Shift, error)
	ActiveStartedBefore(ctx context.Context, cutoff time.Time) ([]models.Shift, error)
	CountActiveBySite(ctx context.Context, siteID int) (int, error)
	Create(ctx context.Context, shift *models.Shift) error
	// CloseActive ends the shift only while it is still active.
	CloseActive(ctx context.Context, id int, end time.Time, endCoords string,
		hours, payment float64, status models.ShiftStatus) (bool, error)
}

type ScheduleRepo interface {
	ByID(ctx context.Context, id int) (*models.ShiftSchedule, error)
	// PlannedAt matches planned_start == start exactly, not "close to".
	PlannedAt(ctx context.Context, workerID, siteID int, start time.Time) (*models.ShiftSchedule, error)
	// PlannedCovering finds the planned schedule a worker may open now,
	// allowing starts up to lead early.
	PlannedCovering(ctx context.Context, workerID, siteID int, at time.Time, lead time.Duration) (*models.ShiftSchedule, error)
	OverduePlanned(ctx context.Context, cutoff time.Time) ([]models.ShiftSchedule, error)
	// Transition moves the schedule from one status to another; the from
	// status is the optimistic guard.
	Transition(ctx context.Context, id int, from, to models.ScheduleStatus, autoClosed bool) (bool, error)
}

type SiteRepo interface {
	ByID(ctx context.Context, id int) (*models.Site, error)
}

type SlotRepo interface {
	ByID(ctx context.Context, id int) (*models.TimeSlot, error)
	ForSiteDate(ctx context.Context, siteID int, date time.Time) ([]models.TimeSlot, error)
}

type OpeningRepo interface {
	OpenBySite(ctx context.Context, siteID int) (*models.SiteOpening, error)
	Create(ctx context.Context, opening *models.SiteOpening) error
	// CloseOpen closes the opening only while closed_at is still NULL.
	CloseOpen(ctx context.Context, id int, closedAt time.Time, closedBy *int) (bool, error)
}
