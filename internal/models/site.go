// internal/models/site.go
package models

import "time"

type Site struct {
	ID               int     `json:"id"`
	Name             string  `json:"name"`
	Coords           string  `json:"coords"` // "lat,lon"
	RadiusMeters     float64 `json:"radius_meters"`
	OpeningTime      string  `json:"opening_time,omitempty"` // "07:00", local clock
	ClosingTime      string  `json:"closing_time,omitempty"` // "23:00", local clock
	Timezone         string  `json:"timezone"`
	AutoCloseMinutes *int    `json:"auto_close_minutes,omitempty"`
}

type SiteOpening struct {
	ID       int        `json:"id"`
	SiteID   int        `json:"site_id"`
	OpenedAt time.Time  `json:"opened_at"`
	ClosedAt *time.Time `json:"closed_at,omitempty"`
	OpenedBy int        `json:"opened_by"`
	ClosedBy *int       `json:"closed_by,omitempty"` // nil = закрыто системой
}

// Open reports whether the opening has not been closed yet.
func (o *SiteOpening) Open() bool {
	return o != nil && o.ClosedAt == nil
}
