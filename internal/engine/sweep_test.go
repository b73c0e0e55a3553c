package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evn/siteops_backend/internal/models"
)

func june2() time.Time {
	return time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
}

// Площадка закрывается в 18:00 с грейсом 30 минут, слот тоже кончается в
// 18:00: в 18:29 sweep ничего не делает, в 18:31 закрывает смену концом
// 18:00, а не 18:31.
func TestSweepGraceWindowAroundClosing(t *testing.T) {
	store := newMemStore()
	testSite(store, 1, "18:00", 30)
	slot := addSlot(store, 100, 1, june2(), "10:00", "18:00", 300)
	slotID := slot.ID
	addSchedule(store, 7, 1, &slotID, utc(10, 0), utc(18, 0), 300)
	e, _ := newTestEngine(store)
	ctx := context.Background()

	shift, err := e.OpenShift(ctx, OpenShiftParams{
		WorkerID: 7, SiteID: 1, Coords: nearCoords, Actor: ActorWorker, Now: utc(10, 0),
	})
	require.NoError(t, err)

	res := e.RunSweep(ctx, utc(18, 29))
	assert.Zero(t, res.ClosedShiftCount)
	assert.Empty(t, res.Errors)

	res = e.RunSweep(ctx, utc(18, 31))
	assert.Equal(t, 1, res.ClosedShiftCount)
	assert.Empty(t, res.Errors)

	stored, err := e.shifts.ByID(ctx, shift.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ShiftAutoClosed, stored.Status)
	require.NotNil(t, stored.EndTime)
	assert.Equal(t, utc(18, 0), *stored.EndTime)
	assert.Equal(t, 8.0, stored.TotalHours)
	assert.Equal(t, 2400.0, stored.TotalPayment)
}

// Слот A кончается в 14:00, слот B того же работника начинается ровно в
// 14:00: автозакрытие A сразу открывает B со start=14:00 и теми же
// координатами.
func TestSweepContinuationBackToBack(t *testing.T) {
	store := newMemStore()
	testSite(store, 1, "", 0) // без closing_time: дедлайн равен концу слота
	slotA := addSlot(store, 100, 1, june2(), "07:00", "14:00", 300)
	slotB := addSlot(store, 101, 1, june2(), "14:00", "18:00", 320)
	aID, bID := slotA.ID, slotB.ID
	schedA := addSchedule(store, 7, 1, &aID, utc(7, 0), utc(14, 0), 300)
	schedB := addSchedule(store, 7, 1, &bID, utc(14, 0), utc(18, 0), 320)
	e, _ := newTestEngine(store)
	ctx := context.Background()

	first, err := e.OpenShift(ctx, OpenShiftParams{
		WorkerID: 7, SiteID: 1, Coords: nearCoords, Actor: ActorWorker, Now: utc(7, 0),
	})
	require.NoError(t, err)

	res := e.RunSweep(ctx, utc(14, 5))
	assert.Equal(t, 1, res.ClosedShiftCount)
	assert.Equal(t, 1, res.ContinuedShiftCount)
	assert.Empty(t, res.Errors)

	closed, err := e.shifts.ByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ShiftAutoClosed, closed.Status)
	assert.Equal(t, utc(14, 0), *closed.EndTime)

	next, err := e.ActiveShift(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, utc(14, 0), next.StartTime)
	assert.Equal(t, nearCoords, next.StartCoords)
	assert.Equal(t, 320.0, next.HourlyRate)
	require.NotNil(t, next.ScheduleID)
	assert.Equal(t, schedB.ID, *next.ScheduleID)

	assert.Equal(t, models.ScheduleCompleted, store.ScheduleByID(schedA.ID).Status)
	assert.Equal(t, models.ScheduleInProgress, store.ScheduleByID(schedB.ID).Status)
}

// Зазор даже в одну минуту — продолжения нет.
func TestSweepNoContinuationWithGap(t *testing.T) {
	store := newMemStore()
	testSite(store, 1, "", 0)
	slotA := addSlot(store, 100, 1, june2(), "07:00", "14:00", 300)
	slotB := addSlot(store, 101, 1, june2(), "14:01", "18:00", 320)
	aID, bID := slotA.ID, slotB.ID
	addSchedule(store, 7, 1, &aID, utc(7, 0), utc(14, 0), 300)
	schedB := addSchedule(store, 7, 1, &bID, utc(14, 1), utc(18, 0), 320)
	e, _ := newTestEngine(store)
	ctx := context.Background()

	_, err := e.OpenShift(ctx, OpenShiftParams{
		WorkerID: 7, SiteID: 1, Coords: nearCoords, Actor: ActorWorker, Now: utc(7, 0),
	})
	require.NoError(t, err)

	res := e.RunSweep(ctx, utc(14, 2))
	assert.Equal(t, 1, res.ClosedShiftCount)
	assert.Zero(t, res.ContinuedShiftCount)

	next, err := e.ActiveShift(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, next)
	assert.Equal(t, models.SchedulePlanned, store.ScheduleByID(schedB.ID).Status)
}

// Последняя активная смена закрывается — площадка закрывается в том же
// проходе, closed_by = система.
func TestSweepClosesEmptiedSiteSamePass(t *testing.T) {
	store := newMemStore()
	testSite(store, 1, "", 0)
	slot := addSlot(store, 100, 1, june2(), "07:00", "14:00", 300)
	slotID := slot.ID
	addSchedule(store, 7, 1, &slotID, utc(7, 0), utc(14, 0), 300)
	e, _ := newTestEngine(store)
	ctx := context.Background()

	_, err := e.OpenSite(ctx, 1, 7, nearCoords, utc(6, 50))
	require.NoError(t, err)
	_, err = e.OpenShift(ctx, OpenShiftParams{
		WorkerID: 7, SiteID: 1, Coords: nearCoords, Actor: ActorWorker, Now: utc(7, 0),
	})
	require.NoError(t, err)

	res := e.RunSweep(ctx, utc(14, 10))
	assert.Equal(t, 1, res.ClosedShiftCount)
	assert.Equal(t, 1, res.ClosedSiteCount)

	opening := store.openings[0]
	require.NotNil(t, opening.ClosedAt)
	assert.Equal(t, utc(14, 0), *opening.ClosedAt)
	assert.Nil(t, opening.ClosedBy)
}

// Никогда не открытое расписание после дедлайна помечается пропущенным: без
// смены и без оплаты.
func TestSweepMarksMissedSchedule(t *testing.T) {
	store := newMemStore()
	testSite(store, 1, "", 0)
	slot := addSlot(store, 100, 1, june2(), "10:00", "14:00", 300)
	slotID := slot.ID
	sched := addSchedule(store, 7, 1, &slotID, utc(10, 0), utc(14, 0), 300)
	e, sink := newTestEngine(store)
	ctx := context.Background()

	res := e.RunSweep(ctx, utc(13, 0))
	assert.Zero(t, res.MissedScheduleCount)

	res = e.RunSweep(ctx, utc(14, 30))
	assert.Equal(t, 1, res.MissedScheduleCount)

	got := store.ScheduleByID(sched.ID)
	assert.Equal(t, models.ScheduleMissed, got.Status)
	assert.True(t, got.AutoClosed)
	assert.Empty(t, store.shifts)
	assert.Contains(t, sink.types(), EventScheduleMissed)
}

// Повторный запуск — гарантированный no-op.
func TestSweepIdempotent(t *testing.T) {
	store := newMemStore()
	testSite(store, 1, "", 0)
	slot := addSlot(store, 100, 1, june2(), "07:00", "14:00", 300)
	slotID := slot.ID
	addSchedule(store, 7, 1, &slotID, utc(7, 0), utc(14, 0), 300)
	e, _ := newTestEngine(store)
	ctx := context.Background()

	_, err := e.OpenShift(ctx, OpenShiftParams{
		WorkerID: 7, SiteID: 1, Coords: nearCoords, Actor: ActorWorker, Now: utc(7, 0),
	})
	require.NoError(t, err)

	res := e.RunSweep(ctx, utc(14, 10))
	assert.Equal(t, 1, res.ClosedShiftCount)

	res = e.RunSweep(ctx, utc(14, 15))
	assert.Zero(t, res.ClosedShiftCount)
	assert.Zero(t, res.MissedScheduleCount)
	assert.Empty(t, res.Errors)
}

// Ошибка на одном элементе не срывает остальные.
func TestSweepIsolatesItemErrors(t *testing.T) {
	store := newMemStore()
	testSite(store, 1, "", 0)
	// Площадка без слота, closing_time и грейса — время закрытия
	// неразрешимо.
	store.sites[2] = &models.Site{ID: 2, Coords: siteCoords, RadiusMeters: 100, Timezone: "UTC"}
	slot := addSlot(store, 100, 1, june2(), "07:00", "14:00", 300)
	slotID := slot.ID
	addSchedule(store, 7, 1, &slotID, utc(7, 0), utc(14, 0), 300)
	e, _ := newTestEngine(store)
	ctx := context.Background()

	_, err := e.OpenShift(ctx, OpenShiftParams{
		WorkerID: 8, SiteID: 2, Coords: nearCoords, Actor: ActorWorker, Now: utc(7, 0),
	})
	require.NoError(t, err)
	_, err = e.OpenShift(ctx, OpenShiftParams{
		WorkerID: 7, SiteID: 1, Coords: nearCoords, Actor: ActorWorker, Now: utc(7, 0),
	})
	require.NoError(t, err)

	res := e.RunSweep(ctx, utc(14, 10))
	assert.Equal(t, 1, res.ClosedShiftCount)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "no slot, closing time or grace period")

	// Неразрешимая смена осталась активной.
	active, err := e.ActiveShift(ctx, 8)
	require.NoError(t, err)
	require.NotNil(t, active)
}
