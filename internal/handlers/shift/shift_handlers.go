// handlers/shift/shift_handlers.go
package shift

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/evn/siteops_backend/internal/engine"
	"github.com/evn/siteops_backend/internal/handlers"
	"github.com/evn/siteops_backend/internal/middleware"
	"github.com/evn/siteops_backend/internal/pkg/response"
	"github.com/evn/siteops_backend/internal/repositories"
)

type openShiftRequest struct {
	SiteID     int    `json:"site_id"`
	Coords     string `json:"coords"`
	ScheduleID *int   `json:"schedule_id,omitempty"`
}

// OpenShiftHandler открывает смену текущего работника.
func OpenShiftHandler(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		workerID, ok := middleware.GetWorkerIDFromContext(r.Context())
		if !ok {
			response.RespondWithError(w, http.StatusUnauthorized, "Worker ID not found in context")
			return
		}

		var req openShiftRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if req.SiteID == 0 || req.Coords == "" {
			response.RespondWithError(w, http.StatusBadRequest, "site_id and coords are required")
			return
		}

		shift, err := eng.OpenShift(r.Context(), engine.OpenShiftParams{
			WorkerID:   workerID,
			SiteID:     req.SiteID,
			Coords:     req.Coords,
			Actor:      engine.ActorWorker,
			ScheduleID: req.ScheduleID,
			Now:        time.Now().UTC(),
		})
		if err != nil {
			handlers.RespondEngineError(w, err)
			return
		}
		response.RespondWithJSON(w, http.StatusCreated, shift)
	}
}

type closeShiftRequest struct {
	ShiftID int    `json:"shift_id"`
	Coords  string `json:"coords"`
}

// CloseShiftHandler закрывает активную смену текущего работника.
func CloseShiftHandler(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		workerID, ok := middleware.GetWorkerIDFromContext(r.Context())
		if !ok {
			response.RespondWithError(w, http.StatusUnauthorized, "Worker ID not found in context")
			return
		}

		var req closeShiftRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if req.ShiftID == 0 {
			response.RespondWithError(w, http.StatusBadRequest, "shift_id is required")
			return
		}

		shift, err := eng.CloseShift(r.Context(), engine.CloseShiftParams{
			WorkerID: workerID,
			ShiftID:  req.ShiftID,
			Coords:   req.Coords,
			Actor:    engine.ActorWorker,
			Now:      time.Now().UTC(),
		})
		if err != nil {
			handlers.RespondEngineError(w, err)
			return
		}
		response.RespondWithJSON(w, http.StatusOK, shift)
	}
}

// GetActiveShiftHandler возвращает текущую активную смену работника.
func GetActiveShiftHandler(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		workerID, ok := middleware.GetWorkerIDFromContext(r.Context())
		if !ok {
			response.RespondWithError(w, http.StatusUnauthorized, "Worker ID not found in context")
			return
		}

		shift, err := eng.ActiveShift(r.Context(), workerID)
		if err != nil {
			response.RespondWithError(w, http.StatusInternalServerError, "Database error")
			return
		}
		if shift == nil {
			response.RespondWithError(w, http.StatusNotFound, "No active shift")
			return
		}
		response.RespondWithJSON(w, http.StatusOK, shift)
	}
}

// ListActiveShiftsHandler — все активные смены, для админки.
func ListActiveShiftsHandler(repo *repositories.ShiftRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shifts, err := repo.ListActive(r.Context())
		if err != nil {
			response.RespondWithError(w, http.StatusInternalServerError, "Database error")
			return
		}
		response.RespondWithJSON(w, http.StatusOK, shifts)
	}
}

// GetEndedShiftsHandler — завершённые смены за период, по умолчанию за сутки.
func GetEndedShiftsHandler(repo *repositories.ShiftRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		to := time.Now().UTC()
		from := to.Add(-24 * time.Hour)

		if v := r.URL.Query().Get("from"); v != "" {
			t, err := time.Parse("2006-01-02", v)
			if err != nil {
				response.RespondWithError(w, http.StatusBadRequest, "Invalid 'from' date")
				return
			}
			from = t
		}
		if v := r.URL.Query().Get("to"); v != "" {
			t, err := time.Parse("2006-01-02", v)
			if err != nil {
				response.RespondWithError(w, http.StatusBadRequest, "Invalid 'to' date")
				return
			}
			// Включаем весь день "to"
			to = t.AddDate(0, 0, 1)
		}

		shifts, err := repo.ListEnded(r.Context(), from, to)
		if err != nil {
			response.RespondWithError(w, http.StatusInternalServerError, "Database error")
			return
		}
		response.RespondWithJSON(w, http.StatusOK, shifts)
	}
}

// GetWorkerShiftsHandler — история смен конкретного работника.
func GetWorkerShiftsHandler(repo *repositories.ShiftRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		workerID, err := strconv.Atoi(chi.URLParam(r, "workerID"))
		if err != nil {
			response.RespondWithError(w, http.StatusBadRequest, "Invalid worker ID")
			return
		}

		shifts, err := repo.ListByWorker(r.Context(), workerID)
		if err != nil {
			response.RespondWithError(w, http.StatusInternalServerError, "Database error")
			return
		}
		response.RespondWithJSON(w, http.StatusOK, shifts)
	}
}
