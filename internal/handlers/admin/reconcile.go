// handlers/admin/reconcile.go
package admin

import (
	"net/http"
	"time"

	"github.com/evn/siteops_backend/internal/engine"
	"github.com/evn/siteops_backend/internal/pkg/response"
)

// ReconcileHandler запускает сверку вручную, вне таймера.
func ReconcileHandler(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result := eng.RunSweep(r.Context(), time.Now().UTC())
		response.RespondWithJSON(w, http.StatusOK, result)
	}
}
