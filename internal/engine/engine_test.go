package engine

import (
	"context"
	"time"

	"github.com/evn/siteops_backend/internal/models"
)

// In-memory fakes mirroring the Postgres repositories, including the
// status-guarded writes.

type memStore struct {
	shifts    []*models.Shift
	schedules []*models.ShiftSchedule
	slots     map[int]*models.TimeSlot
	sites     map[int]*models.Site
	openings  []*models.SiteOpening
	nextID    int
}

func newMemStore() *memStore {
	return &memStore{
		slots: map[int]*models.TimeSlot{},
		sites: map[int]*models.Site{},
	}
}

func (m *memStore) id() int {
	m.nextID++
	return m.nextID
}

func copyShift(s *models.Shift) *models.Shift {
	c := *s
	return &c
}

func copySchedule(s *models.ShiftSchedule) *models.ShiftSchedule {
	c := *s
	return &c
}

func copyOpening(o *models.SiteOpening) *models.SiteOpening {
	c := *o
	return &c
}

// --- ShiftRepo ---

func (m *memStore) ByID(_ context.Context, id int) (*models.Shift, error) {
	for _, s := range m.shifts {
		if s.ID == id {
			return copyShift(s), nil
		}
	}
	return nil, nil
}

func (m *memStore) ActiveByWorker(_ context.Context, workerID int) (*models.Shift, error) {
	for _, s := range m.shifts {
		if s.WorkerID == workerID && s.Status == models.ShiftActive {
			return copyShift(s), nil
		}
	}
	return nil, nil
}

func (m *memStore) ActiveStartedBefore(_ context.Context, cutoff time.Time) ([]models.Shift, error) {
	var out []models.Shift
	for _, s := range m.shifts {
		if s.Status == models.ShiftActive && s.StartTime.Before(cutoff) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *memStore) CountActiveBySite(_ context.Context, siteID int) (int, error) {
	n := 0
	for _, s := range m.shifts {
		if s.SiteID == siteID && s.Status == models.ShiftActive {
			n++
		}
	}
	return n, nil
}

func (m *memStore) Create(_ context.Context, shift *models.Shift) error {
	shift.ID = m.id()
	m.shifts = append(m.shifts, copyShift(shift))
	return nil
}

func (m *memStore) CloseActive(_ context.Context, id int, end time.Time, endCoords string,
	hours, payment float64, status models.ShiftStatus) (bool, error) {
	for _, s := range m.shifts {
		if s.ID != id {
			continue
		}
		if s.Status != models.ShiftActive {
			return false, nil
		}
		e := end
		s.EndTime = &e
		s.EndCoords = endCoords
		s.TotalHours = hours
		s.TotalPayment = payment
		s.Status = status
		return true, nil
	}
	return false, nil
}

// --- ScheduleRepo ---

type scheduleStore struct{ *memStore }

func (m *memStore) ScheduleByID(id int) *models.ShiftSchedule {
	for _, s := range m.schedules {
		if s.ID == id {
			return s
		}
	}
	return nil
}

func (m *memStore) scheduleByID(_ context.Context, id int) (*models.ShiftSchedule, error) {
	if s := m.ScheduleByID(id); s != nil {
		return copySchedule(s), nil
	}
	return nil, nil
}

func (s scheduleStore) ByID(ctx context.Context, id int) (*models.ShiftSchedule, error) {
	return s.scheduleByID(ctx, id)
}

func (s scheduleStore) PlannedAt(_ context.Context, workerID, siteID int, start time.Time) (*models.ShiftSchedule, error) {
	for _, sc := range s.schedules {
		if sc.WorkerID == workerID && sc.SiteID == siteID &&
			sc.Status == models.SchedulePlanned && sc.PlannedStart.Equal(start) {
			return copySchedule(sc), nil
		}
	}
	return nil, nil
}

func (s scheduleStore) PlannedCovering(_ context.Context, workerID, siteID int, at time.Time, lead time.Duration) (*models.ShiftSchedule, error) {
	var best *models.ShiftSchedule
	for _, sc := range s.schedules {
		if sc.WorkerID != workerID || sc.SiteID != siteID || sc.Status != models.SchedulePlanned {
			continue
		}
		if sc.PlannedStart.After(at.Add(lead)) || !sc.PlannedEnd.After(at) {
			continue
		}
		if best == nil || sc.PlannedStart.Before(best.PlannedStart) {
			best = sc
		}
	}
	if best == nil {
		return nil, nil
	}
	return copySchedule(best), nil
}

func (s scheduleStore) OverduePlanned(_ context.Context, cutoff time.Time) ([]models.ShiftSchedule, error) {
	var out []models.ShiftSchedule
	for _, sc := range s.schedules {
		if sc.Status == models.SchedulePlanned && !sc.AutoClosed && sc.PlannedStart.Before(cutoff) {
			out = append(out, *sc)
		}
	}
	return out, nil
}

func (s scheduleStore) Transition(_ context.Context, id int, from, to models.ScheduleStatus, autoClosed bool) (bool, error) {
	sc := s.ScheduleByID(id)
	if sc == nil || sc.Status != from {
		return false, nil
	}
	sc.Status = to
	sc.AutoClosed = autoClosed
	return true, nil
}

// --- SlotRepo ---

type slotStore struct{ *memStore }

func (s slotStore) ByID(_ context.Context, id int) (*models.TimeSlot, error) {
	if slot, ok := s.slots[id]; ok {
		c := *slot
		return &c, nil
	}
	return nil, nil
}

func (s slotStore) ForSiteDate(_ context.Context, siteID int, date time.Time) ([]models.TimeSlot, error) {
	var out []models.TimeSlot
	for _, slot := range s.slots {
		if slot.SiteID == siteID && slot.Date.Equal(date) {
			out = append(out, *slot)
		}
	}
	return out, nil
}

// --- SiteRepo ---

type siteStore struct{ *memStore }

func (s siteStore) ByID(_ context.Context, id int) (*models.Site, error) {
	if site, ok := s.sites[id]; ok {
		c := *site
		return &c, nil
	}
	return nil, nil
}

// --- OpeningRepo ---

type openingStore struct{ *memStore }

func (s openingStore) OpenBySite(_ context.Context, siteID int) (*models.SiteOpening, error) {
	for _, o := range s.openings {
		if o.SiteID == siteID && o.ClosedAt == nil {
			return copyOpening(o), nil
		}
	}
	return nil, nil
}

func (s openingStore) Create(_ context.Context, opening *models.SiteOpening) error {
	opening.ID = s.id()
	s.openings = append(s.openings, copyOpening(opening))
	return nil
}

func (s openingStore) CloseOpen(_ context.Context, id int, closedAt time.Time, closedBy *int) (bool, error) {
	for _, o := range s.openings {
		if o.ID != id {
			continue
		}
		if o.ClosedAt != nil {
			return false, nil
		}
		t := closedAt
		o.ClosedAt = &t
		o.ClosedBy = closedBy
		return true, nil
	}
	return false, nil
}

// --- Notifier ---

type eventSink struct {
	events []Event
}

func (s *eventSink) Publish(ev Event) {
	s.events = append(s.events, ev)
}

func (s *eventSink) types() []string {
	var out []string
	for _, ev := range s.events {
		out = append(out, ev.Type)
	}
	return out
}

// --- test wiring ---

const (
	siteCoords = "55.751244,37.618423"
	// ~50 m and ~150 m north of the site
	nearCoords = "55.751694,37.618423"
	farCoords  = "55.752593,37.618423"
)

func newTestEngine(store *memStore) (*Engine, *eventSink) {
	sink := &eventSink{}
	e := New(store, scheduleStore{store}, slotStore{store}, siteStore{store}, openingStore{store}, sink)
	return e, sink
}

func testSite(store *memStore, id int, closing string, graceMinutes int) *models.Site {
	site := &models.Site{
		ID:           id,
		Name:         "Центр",
		Coords:       siteCoords,
		RadiusMeters: 100,
		Timezone:     "UTC",
	}
	site.ClosingTime = closing
	if graceMinutes > 0 {
		g := graceMinutes
		site.AutoCloseMinutes = &g
	}
	store.sites[id] = site
	return site
}

func addSlot(store *memStore, id, siteID int, date time.Time, start, end string, rate float64) *models.TimeSlot {
	slot := &models.TimeSlot{
		ID:         id,
		SiteID:     siteID,
		Date:       date,
		StartTime:  start,
		EndTime:    end,
		HourlyRate: rate,
		Active:     true,
	}
	store.slots[id] = slot
	return slot
}

func addSchedule(store *memStore, workerID, siteID int, slotID *int, start, end time.Time, rate float64) *models.ShiftSchedule {
	sched := &models.ShiftSchedule{
		ID:           store.id(),
		WorkerID:     workerID,
		SiteID:       siteID,
		SlotID:       slotID,
		PlannedStart: start,
		PlannedEnd:   end,
		Status:       models.SchedulePlanned,
		HourlyRate:   rate,
	}
	store.schedules = append(store.schedules, sched)
	return sched
}
