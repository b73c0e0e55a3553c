// handlers/admin/force_close_shift.go
package admin

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/evn/siteops_backend/internal/engine"
	"github.com/evn/siteops_backend/internal/handlers"
	"github.com/evn/siteops_backend/internal/pkg/response"
)

// ForceCloseShiftHandler принудительно закрывает активную смену работника.
// Геозона не проверяется, часы считаются по фактическому времени.
func ForceCloseShiftHandler(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		workerID, err := strconv.Atoi(chi.URLParam(r, "workerID"))
		if err != nil {
			response.RespondWithError(w, http.StatusBadRequest, "Invalid worker ID")
			return
		}

		active, err := eng.ActiveShift(r.Context(), workerID)
		if err != nil {
			response.RespondWithError(w, http.StatusInternalServerError, "Database error")
			return
		}
		if active == nil {
			response.RespondWithError(w, http.StatusNotFound, "No active shift found for the worker")
			return
		}

		shift, err := eng.CloseShift(r.Context(), engine.CloseShiftParams{
			WorkerID: workerID,
			ShiftID:  active.ID,
			Actor:    engine.ActorAdmin,
			Now:      time.Now().UTC(),
		})
		if err != nil {
			handlers.RespondEngineError(w, err)
			return
		}

		workedSeconds := int(shift.EndTime.Sub(shift.StartTime).Seconds())
		response.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
			"message":     "Shift closed",
			"shift":       shift,
			"worked_time": response.FormatDuration(workedSeconds),
		})
	}
}
