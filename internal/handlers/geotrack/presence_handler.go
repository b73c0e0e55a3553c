// handlers/geotrack/presence_handler.go

package geotrack

import (
	"encoding/json"
	"net/http"

	"github.com/evn/siteops_backend/internal/middleware"
	"github.com/evn/siteops_backend/internal/models"
	"github.com/evn/siteops_backend/internal/pkg/response"
	"github.com/evn/siteops_backend/internal/services/presence"
)

type PresenceHandler struct {
	service *presence.Service
}

func NewPresenceHandler(service *presence.Service) *PresenceHandler {
	return &PresenceHandler{service: service}
}

func (h *PresenceHandler) PostPosition(w http.ResponseWriter, r *http.Request) {
	var update models.PositionUpdate

	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		response.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	workerID, ok := middleware.GetWorkerIDFromContext(r.Context())
	if !ok {
		response.RespondWithError(w, http.StatusUnauthorized, "Worker ID not found in context")
		return
	}
	update.WorkerID = workerID

	if err := h.service.HandleUpdate(r.Context(), &update); err != nil {
		response.RespondWithError(w, http.StatusInternalServerError, "Failed to save location")
		return
	}

	response.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *PresenceHandler) GetLast(w http.ResponseWriter, r *http.Request) {
	locations, err := h.service.LastLocations(r.Context())
	if err != nil {
		response.RespondWithError(w, http.StatusInternalServerError, "DB error")
		return
	}
	response.RespondWithJSON(w, http.StatusOK, locations)
}
