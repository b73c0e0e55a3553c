// internal/engine/errors.go
package engine

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound               = errors.New("not found")
	ErrShiftAlreadyActive     = errors.New("worker already has an active shift")
	ErrShiftNotActive         = errors.New("shift is not active")
	ErrSiteAlreadyOpen        = errors.New("site is already open")
	ErrSiteNotOpen            = errors.New("site is not open")
	ErrShiftsStillActive      = errors.New("site has active shifts, close them first")
	ErrUnresolvableTimeSource = errors.New("no slot, closing time or grace period to resolve planned end")
)

// GeofenceError — работник вне радиуса площадки.
type GeofenceError struct {
	DistanceMeters    float64 `json:"distance_meters"`
	MaxDistanceMeters float64 `json:"max_distance_meters"`
}

func (e *GeofenceError) Error() string {
	return fmt.Sprintf("out of geofence range: %.0f m from site, max %.0f m",
		e.DistanceMeters, e.MaxDistanceMeters)
}

// IsConflict reports whether err is a state conflict: the call failed but
// left state untouched, so the caller may retry after conditions change.
func IsConflict(err error) bool {
	return errors.Is(err, ErrShiftAlreadyActive) ||
		errors.Is(err, ErrShiftNotActive) ||
		errors.Is(err, ErrSiteAlreadyOpen) ||
		errors.Is(err, ErrSiteNotOpen) ||
		errors.Is(err, ErrShiftsStillActive)
}
