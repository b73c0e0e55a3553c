// handlers/site/site_handlers.go
package site

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

type siteActionRequest struct {
	Coords string `json:"coords"`
}

// ListSitesHandler — список площадок.
func ListSitesHandler(repo *repositories.SiteRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sites, err := repo.List(r.Context())
		if err != nil {
			response.RespondWithError(w, http.StatusInternalServerError, "Database error")
			return
		}
		response.RespondWithJSON(w, http.StatusOK, sites)
	}
}

// OpenSiteHandler открывает рабочий день площадки.
func OpenSiteHandler(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		workerID, ok := middleware.GetWorkerIDFromContext(r.Context())
		if !ok {
			response.RespondWithError(w, http.StatusUnauthorized, "Worker ID not found in context")
			return
		}

		siteID, err := strconv.Atoi(chi.URLParam(r, "siteID"))
		if err != nil {
			response.RespondWithError(w, http.StatusBadRequest, "Invalid site ID")
			return
		}

		var req siteActionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if req.Coords == "" {
			response.RespondWithError(w, http.StatusBadRequest, "coords is required")
			return
		}

		opening, err := eng.OpenSite(r.Context(), siteID, workerID, req.Coords, time.Now().UTC())
		if err != nil {
			handlers.RespondEngineError(w, err)
			return
		}
		response.RespondWithJSON(w, http.StatusCreated, opening)
	}
}

// CloseSiteHandler закрывает рабочий день площадки вручную.
func CloseSiteHandler(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		workerID, ok := middleware.GetWorkerIDFromContext(r.Context())
		if !ok {
			response.RespondWithError(w, http.StatusUnauthorized, "Worker ID not found in context")
			return
		}

		siteID, err := strconv.Atoi(chi.URLParam(r, "siteID"))
		if err != nil {
			response.RespondWithError(w, http.StatusBadRequest, "Invalid site ID")
			return
		}

		var req siteActionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if req.Coords == "" {
			response.RespondWithError(w, http.StatusBadRequest, "coords is required")
			return
		}

		opening, err := eng.CloseSite(r.Context(), siteID, workerID, req.Coords, time.Now().UTC())
		if err != nil {
			handlers.RespondEngineError(w, err)
			return
		}
		response.RespondWithJSON(w, http.StatusOK, opening)
	}
}
