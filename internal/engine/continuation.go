// internal/engine/continuation.go
package engine

import (
	"context"
	"time"

	"github.com/evn/siteops_backend/internal/models"
)

// continueShift opens the next back-to-back planned shift after closed was
// auto-closed with the resolved end plannedEnd.
//
// The match is exact: a schedule for the same worker and site whose
// planned_start equals plannedEnd to the instant. A gap of even one minute
// means no continuation — the schedule stays planned for manual handling or
// is flagged missed by a later sweep. The new shift starts at plannedEnd
// with the closed shift's coordinates and skips the geofence check.
func (e *Engine) continueShift(ctx context.Context, closed *models.Shift, plannedEnd time.Time) (*models.Shift, error) {
	next, err := e.schedules.PlannedAt(ctx, closed.WorkerID, closed.SiteID, plannedEnd.UTC())
	if err != nil {
		return nil, err
	}
	if next == nil {
		return nil, nil
	}

	return e.OpenShift(ctx, OpenShiftParams{
		WorkerID:   closed.WorkerID,
		SiteID:     closed.SiteID,
		Coords:     closed.StartCoords,
		Actor:      ActorSystem,
		ScheduleID: &next.ID,
		Now:        plannedEnd,
	})
}
