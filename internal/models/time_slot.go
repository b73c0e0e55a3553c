// internal/models/time_slot.go
package models

import "time"

// TimeSlot — рабочий интервал площадки на конкретную дату.
// StartTime/EndTime are local clock strings ("07:00"), combined with the
// site timezone when an instant is needed.
type TimeSlot struct {
	ID         int       `json:"id"`
	SiteID     int       `json:"site_id"`
	Date       time.Time `json:"date"`
	StartTime  string    `json:"start_time"`
	EndTime    string    `json:"end_time"`
	HourlyRate float64   `json:"hourly_rate"`
	Active     bool      `json:"active"`
}

// Label returns the slot in the "07:00-15:00" form used across the API.
func (s *TimeSlot) Label() string {
	return s.StartTime + "-" + s.EndTime
}
