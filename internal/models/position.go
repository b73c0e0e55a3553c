// models/position.go
package models

import "time"

// PositionUpdate — одна точка трека работника с мобильного клиента.
type PositionUpdate struct {
	ID        int       `json:"id"`
	WorkerID  int       `json:"worker_id"`
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	Speed     *float64  `json:"speed,omitempty"`
	Accuracy  *float64  `json:"accuracy,omitempty"`
	Battery   *int      `json:"battery,omitempty"`
	Event     string    `json:"event,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type LastLocation struct {
	WorkerID int       `json:"worker_id"`
	Lat      float64   `json:"lat"`
	Lon      float64   `json:"lon"`
	Battery  *int      `json:"battery,omitempty"`
	Ts       time.Time `json:"ts"`
}
