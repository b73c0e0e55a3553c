package routes

import (
	"database/sql"
	"net/http"

	"github.com/evn/siteops_backend/config"
	"github.com/evn/siteops_backend/internal/engine"
	"github.com/evn/siteops_backend/internal/handlers"
	adminHandlers "github.com/evn/siteops_backend/internal/handlers/admin"
	geotrackHandlers "github.com/evn/siteops_backend/internal/handlers/geotrack"
	shiftHandlers "github.com/evn/siteops_backend/internal/handlers/shift"
	siteHandlers "github.com/evn/siteops_backend/internal/handlers/site"
	"github.com/evn/siteops_backend/internal/middleware"
	"github.com/evn/siteops_backend/internal/pkg/response"
	"github.com/evn/siteops_backend/internal/repositories"
	"github.com/evn/siteops_backend/internal/services/events"
	"github.com/evn/siteops_backend/internal/services/presence"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // ← алиас!
	"github.com/go-chi/jwtauth/v5"
	"github.com/redis/go-redis/v9"
)

// Setup инициализирует и возвращает настроенный маршрутизатор вместе с движком,
// чтобы main мог гонять фоновую сверку на том же экземпляре.
func Setup(cfg *config.Config, database *sql.DB, redisClient *redis.Client) (*chi.Mux, *engine.Engine) {
	jwtAuth := jwtauth.New("HS256", []byte(cfg.JwtSecret), nil)

	shiftRepo := repositories.NewShiftRepository(database)
	scheduleRepo := repositories.NewScheduleRepository(database)
	slotRepo := repositories.NewSlotRepository(database)
	siteRepo := repositories.NewSiteRepository(database)
	openingRepo := repositories.NewOpeningRepository(database)
	posRepo := repositories.NewPositionRepository(database)

	hub := events.NewHub()
	eng := engine.New(shiftRepo, scheduleRepo, slotRepo, siteRepo, openingRepo, hub)

	presenceSvc := presence.NewService(posRepo, redisClient)
	presenceHandler := geotrackHandlers.NewPresenceHandler(presenceSvc)

	router := chi.NewRouter()

	// Используем chiMiddleware для Logger и Recoverer
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(jwtauth.Verifier(jwtAuth))
	router.Use(middleware.AddWorkerIDToContext())

	// Публичные маршруты
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	router.Get("/api/sites", siteHandlers.ListSitesHandler(siteRepo))

	router.Group(func(r chi.Router) {
		r.Use(jwtauth.Authenticator(jwtAuth))

		r.Post("/api/shifts/open", shiftHandlers.OpenShiftHandler(eng))
		r.Post("/api/shifts/close", shiftHandlers.CloseShiftHandler(eng))
		r.Get("/api/shifts/active", shiftHandlers.GetActiveShiftHandler(eng))
		r.Get("/api/workers/{workerID}/shifts", shiftHandlers.GetWorkerShiftsHandler(shiftRepo))

		r.Post("/api/sites/{siteID}/open", siteHandlers.OpenSiteHandler(eng))
		r.Post("/api/sites/{siteID}/close", siteHandlers.CloseSiteHandler(eng))

		r.Post("/api/geo", presenceHandler.PostPosition)
		r.Get("/api/workers/last", presenceHandler.GetLast)

		r.Get("/ws/events", handlers.WebSocketHandler(hub))

		// Админские
		r.Group(func(ar chi.Router) {
			ar.Use(middleware.AdminOnly())

			ar.Get("/api/admin/active-shifts", shiftHandlers.ListActiveShiftsHandler(shiftRepo))
			ar.Get("/api/admin/ended-shifts", shiftHandlers.GetEndedShiftsHandler(shiftRepo))
			ar.Post("/api/admin/workers/{workerID}/force-close", adminHandlers.ForceCloseShiftHandler(eng))
			ar.Get("/api/admin/reconcile", adminHandlers.ReconcileHandler(eng))
		})
	})

	return router, eng
}
