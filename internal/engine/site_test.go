package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSiteAndAlreadyOpen(t *testing.T) {
	store := newMemStore()
	testSite(store, 1, "18:00", 30)
	e, sink := newTestEngine(store)
	ctx := context.Background()

	opening, err := e.OpenSite(ctx, 1, 7, nearCoords, utc(7, 0))
	require.NoError(t, err)
	assert.Equal(t, 1, opening.SiteID)
	assert.Equal(t, 7, opening.OpenedBy)
	assert.Nil(t, opening.ClosedAt)
	assert.Equal(t, []string{EventSiteOpened}, sink.types())

	_, err = e.OpenSite(ctx, 1, 8, nearCoords, utc(7, 5))
	assert.ErrorIs(t, err, ErrSiteAlreadyOpen)
}

func TestOpenSiteGeofence(t *testing.T) {
	store := newMemStore()
	testSite(store, 1, "18:00", 30)
	e, _ := newTestEngine(store)

	_, err := e.OpenSite(context.Background(), 1, 7, farCoords, utc(7, 0))
	var geofence *GeofenceError
	assert.ErrorAs(t, err, &geofence)
}

func TestCloseSiteRequiresNoActiveShifts(t *testing.T) {
	store := newMemStore()
	testSite(store, 1, "18:00", 30)
	e, _ := newTestEngine(store)
	ctx := context.Background()

	_, err := e.OpenSite(ctx, 1, 7, nearCoords, utc(7, 0))
	require.NoError(t, err)

	shift, err := e.OpenShift(ctx, OpenShiftParams{
		WorkerID: 9, SiteID: 1, Coords: nearCoords, Actor: ActorWorker, Now: utc(9, 0),
	})
	require.NoError(t, err)

	_, err = e.CloseSite(ctx, 1, 7, nearCoords, utc(10, 0))
	assert.ErrorIs(t, err, ErrShiftsStillActive)

	_, err = e.CloseShift(ctx, CloseShiftParams{
		WorkerID: 9, ShiftID: shift.ID, Actor: ActorWorker, Now: utc(10, 0),
	})
	require.NoError(t, err)

	// Последняя смена закрыта — площадку уже закрыла система.
	_, err = e.CloseSite(ctx, 1, 7, nearCoords, utc(10, 5))
	assert.ErrorIs(t, err, ErrSiteNotOpen)
}

func TestCloseSiteByWorker(t *testing.T) {
	store := newMemStore()
	testSite(store, 1, "18:00", 30)
	e, _ := newTestEngine(store)
	ctx := context.Background()

	_, err := e.OpenSite(ctx, 1, 7, nearCoords, utc(7, 0))
	require.NoError(t, err)

	opening, err := e.CloseSite(ctx, 1, 7, nearCoords, utc(18, 0))
	require.NoError(t, err)
	require.NotNil(t, opening.ClosedAt)
	assert.Equal(t, utc(18, 0), *opening.ClosedAt)
	require.NotNil(t, opening.ClosedBy)
	assert.Equal(t, 7, *opening.ClosedBy)
}

func TestCloseSiteNotOpen(t *testing.T) {
	store := newMemStore()
	testSite(store, 1, "18:00", 30)
	e, _ := newTestEngine(store)

	_, err := e.CloseSite(context.Background(), 1, 7, nearCoords, utc(18, 0))
	assert.ErrorIs(t, err, ErrSiteNotOpen)
}

func TestAutoCloseIfEmptyOnlyWhenZeroActive(t *testing.T) {
	store := newMemStore()
	testSite(store, 1, "18:00", 30)
	e, _ := newTestEngine(store)
	ctx := context.Background()

	_, err := e.OpenSite(ctx, 1, 7, nearCoords, utc(7, 0))
	require.NoError(t, err)

	shift, err := e.OpenShift(ctx, OpenShiftParams{
		WorkerID: 9, SiteID: 1, Coords: nearCoords, Actor: ActorWorker, Now: utc(9, 0),
	})
	require.NoError(t, err)

	closed, err := e.AutoCloseSiteIfEmpty(ctx, 1, utc(10, 0))
	require.NoError(t, err)
	assert.False(t, closed)

	closedShift, err := e.AutoCloseShift(ctx, shift, utc(10, 0))
	require.NoError(t, err)
	require.True(t, closedShift)

	closed, err = e.AutoCloseSiteIfEmpty(ctx, 1, utc(10, 0))
	require.NoError(t, err)
	assert.True(t, closed)

	// Повторный вызов — нечего закрывать.
	closed, err = e.AutoCloseSiteIfEmpty(ctx, 1, utc(10, 0))
	require.NoError(t, err)
	assert.False(t, closed)
}
