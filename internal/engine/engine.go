// internal/engine/engine.go
package engine

import (
	"math"
	"time"
)

// Actor — кто инициировал переход: работник, админ или система.
type Actor string

const (
	ActorWorker Actor = "worker"
	ActorAdmin  Actor = "admin"
	ActorSystem Actor = "system"
)

// openLead is how early a worker may open a planned shift.
const openLead = 20 * time.Minute

// Event is one committed state transition, published to the live feed.
type Event struct {
	Type      string    `json:"type"`
	At        time.Time `json:"at"`
	Actor     Actor     `json:"actor"`
	WorkerID  int       `json:"worker_id,omitempty"`
	SiteID    int       `json:"site_id,omitempty"`
	ShiftID   int       `json:"shift_id,omitempty"`
	OpeningID int       `json:"opening_id,omitempty"`
}

const (
	EventShiftOpened     = "shift_opened"
	EventShiftClosed     = "shift_closed"
	EventShiftAutoClosed = "shift_auto_closed"
	EventSiteOpened      = "site_opened"
	EventSiteClosed      = "site_closed"
	EventScheduleMissed  = "schedule_missed"
)

type Notifier interface {
	Publish(ev Event)
}

// Engine drives the shift and site-opening state machines. It holds no
// mutable run-state of its own: every operation takes ctx and an explicit
// "now", so sweeps are replayable.
type Engine struct {
	shifts    ShiftRepo
	schedules ScheduleRepo
	slots     SlotRepo
	sites     SiteRepo
	openings  OpeningRepo
	notifier  Notifier
}

func New(shifts ShiftRepo, schedules ScheduleRepo, slots SlotRepo, sites SiteRepo, openings OpeningRepo, notifier Notifier) *Engine {
	return &Engine{
		shifts:    shifts,
		schedules: schedules,
		slots:     slots,
		sites:     sites,
		openings:  openings,
		notifier:  notifier,
	}
}

func (e *Engine) publish(ev Event) {
	if e.notifier != nil {
		e.notifier.Publish(ev)
	}
}

// roundHalfUp rounds to 2 decimals, half up. Inputs are never negative:
// hours come from an end clamped to start.
func roundHalfUp(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

// workedHours converts a start/end pair into billable hours.
func workedHours(start, end time.Time) float64 {
	return roundHalfUp(end.Sub(start).Seconds() / 3600)
}
