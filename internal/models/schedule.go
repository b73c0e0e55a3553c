// internal/models/schedule.go
package models

import "time"

type ScheduleStatus string

const (
	SchedulePlanned    ScheduleStatus = "planned"
	ScheduleInProgress ScheduleStatus = "in_progress"
	ScheduleCompleted  ScheduleStatus = "completed"
	ScheduleCancelled  ScheduleStatus = "cancelled"
	ScheduleMissed     ScheduleStatus = "missed"
)

// ShiftSchedule — запланированная смена до её фактического начала.
type ShiftSchedule struct {
	ID           int            `json:"id"`
	WorkerID     int            `json:"worker_id"`
	SiteID       int            `json:"site_id"`
	SlotID       *int           `json:"slot_id,omitempty"`
	PlannedStart time.Time      `json:"planned_start"`
	PlannedEnd   time.Time      `json:"planned_end"`
	Status       ScheduleStatus `json:"status"`
	AutoClosed   bool           `json:"auto_closed"`
	HourlyRate   float64        `json:"hourly_rate"`
}
