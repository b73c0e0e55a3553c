// internal/engine/site.go
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/evn/siteops_backend/internal/geo"
	"github.com/evn/siteops_backend/internal/models"
)

// OpenSite opens the site's working day. The opener must be inside the
// geofence; a site with an unclosed opening cannot be opened again.
func (e *Engine) OpenSite(ctx context.Context, siteID, workerID int, coords string, now time.Time) (*models.SiteOpening, error) {
	site, err := e.sites.ByID(ctx, siteID)
	if err != nil {
		return nil, err
	}
	if site == nil {
		return nil, fmt.Errorf("site %d: %w", siteID, ErrNotFound)
	}

	check, err := geo.Validate(coords, site.Coords, site.RadiusMeters)
	if err != nil {
		return nil, err
	}
	if !check.WithinRange {
		return nil, &GeofenceError{
			DistanceMeters:    check.DistanceMeters,
			MaxDistanceMeters: site.RadiusMeters,
		}
	}

	existing, err := e.openings.OpenBySite(ctx, siteID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrSiteAlreadyOpen
	}

	opening := &models.SiteOpening{
		SiteID:   siteID,
		OpenedAt: now.UTC(),
		OpenedBy: workerID,
	}
	if err := e.openings.Create(ctx, opening); err != nil {
		return nil, err
	}

	e.publish(Event{
		Type:      EventSiteOpened,
		At:        opening.OpenedAt,
		Actor:     ActorWorker,
		WorkerID:  workerID,
		SiteID:    siteID,
		OpeningID: opening.ID,
	})
	return opening, nil
}

// CloseSite closes the site's working day by hand. Запрещено, пока на
// площадке остаются активные смены — сначала закрываются они.
func (e *Engine) CloseSite(ctx context.Context, siteID, workerID int, coords string, now time.Time) (*models.SiteOpening, error) {
	site, err := e.sites.ByID(ctx, siteID)
	if err != nil {
		return nil, err
	}
	if site == nil {
		return nil, fmt.Errorf("site %d: %w", siteID, ErrNotFound)
	}

	opening, err := e.openings.OpenBySite(ctx, siteID)
	if err != nil {
		return nil, err
	}
	if opening == nil {
		return nil, ErrSiteNotOpen
	}

	check, err := geo.Validate(coords, site.Coords, site.RadiusMeters)
	if err != nil {
		return nil, err
	}
	if !check.WithinRange {
		return nil, &GeofenceError{
			DistanceMeters:    check.DistanceMeters,
			MaxDistanceMeters: site.RadiusMeters,
		}
	}

	activeCount, err := e.shifts.CountActiveBySite(ctx, siteID)
	if err != nil {
		return nil, err
	}
	if activeCount > 0 {
		return nil, ErrShiftsStillActive
	}

	closedAt := now.UTC()
	closedBy := workerID
	ok, err := e.openings.CloseOpen(ctx, opening.ID, closedAt, &closedBy)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSiteNotOpen
	}

	opening.ClosedAt = &closedAt
	opening.ClosedBy = &closedBy

	e.publish(Event{
		Type:      EventSiteClosed,
		At:        closedAt,
		Actor:     ActorWorker,
		WorkerID:  workerID,
		SiteID:    siteID,
		OpeningID: opening.ID,
	})
	return opening, nil
}

// AutoCloseSiteIfEmpty closes the site's open opening when its active-shift
// count has dropped to zero. Invoked after every terminal shift transition;
// safe to call when nothing is open.
func (e *Engine) AutoCloseSiteIfEmpty(ctx context.Context, siteID int, triggerTime time.Time) (bool, error) {
	opening, err := e.openings.OpenBySite(ctx, siteID)
	if err != nil {
		return false, err
	}
	if opening == nil {
		return false, nil
	}

	activeCount, err := e.shifts.CountActiveBySite(ctx, siteID)
	if err != nil {
		return false, err
	}
	if activeCount > 0 {
		return false, nil
	}

	closedAt := triggerTime.UTC()
	ok, err := e.openings.CloseOpen(ctx, opening.ID, closedAt, nil)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	e.publish(Event{
		Type:      EventSiteClosed,
		At:        closedAt,
		Actor:     ActorSystem,
		SiteID:    siteID,
		OpeningID: opening.ID,
	})
	return true, nil
}
