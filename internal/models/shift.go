// internal/models/shift.go
package models

import "time"

type ShiftStatus string

const (
	ShiftActive     ShiftStatus = "active"
	ShiftCompleted  ShiftStatus = "completed"
	ShiftAutoClosed ShiftStatus = "auto_closed"
	ShiftCancelled  ShiftStatus = "cancelled"
)

// Terminal reports whether the shift can no longer be mutated.
func (s ShiftStatus) Terminal() bool {
	return s == ShiftCompleted || s == ShiftAutoClosed || s == ShiftCancelled
}

type Shift struct {
	ID           int         `json:"id"`
	WorkerID     int         `json:"worker_id"`
	SiteID       int         `json:"site_id"`
	ScheduleID   *int        `json:"schedule_id,omitempty"`
	Status       ShiftStatus `json:"status"`
	StartTime    time.Time   `json:"start_time"`
	EndTime      *time.Time  `json:"end_time,omitempty"`
	StartCoords  string      `json:"start_coords"`
	EndCoords    string      `json:"end_coords,omitempty"`
	HourlyRate   float64     `json:"hourly_rate"`
	TotalHours   float64     `json:"total_hours"`
	TotalPayment float64     `json:"total_payment"`
	IsPlanned    bool        `json:"is_planned"`
	StartLabel   string      `json:"start_label,omitempty"`
}
