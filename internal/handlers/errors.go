// handlers/errors.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/evn/siteops_backend/internal/engine"
	"github.com/evn/siteops_backend/internal/geo"
	"github.com/evn/siteops_backend/internal/pkg/response"
)

// RespondEngineError переводит ошибки движка в HTTP-статусы.
func RespondEngineError(w http.ResponseWriter, err error) {
	var geofenceErr *engine.GeofenceError
	switch {
	case errors.As(err, &geofenceErr):
		response.RespondWithJSON(w, http.StatusForbidden, map[string]interface{}{
			"error":               "out of geofence range",
			"distance_meters":     geofenceErr.DistanceMeters,
			"max_distance_meters": geofenceErr.MaxDistanceMeters,
		})
	case errors.Is(err, geo.ErrInvalidCoords):
		response.RespondWithError(w, http.StatusBadRequest, "Invalid coordinates")
	case errors.Is(err, engine.ErrNotFound):
		response.RespondWithError(w, http.StatusNotFound, err.Error())
	case engine.IsConflict(err):
		response.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, engine.ErrUnresolvableTimeSource):
		response.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		response.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
