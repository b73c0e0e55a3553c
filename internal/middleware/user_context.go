// internal/middleware/user_context.go
package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/evn/siteops_backend/config"
	"github.com/evn/siteops_backend/internal/pkg/response"
	"github.com/go-chi/jwtauth/v5"
)

// GetWorkerIDFromContext возвращает worker_id из контекста.
func GetWorkerIDFromContext(ctx context.Context) (int, bool) {
	if val := ctx.Value(config.WorkerIDKey); val != nil {
		if id, ok := val.(int); ok {
			return id, true
		}
	}
	return 0, false
}

// AddWorkerIDToContext извлекает worker_id из JWT и кладёт в контекст.
func AddWorkerIDToContext() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, _, err := jwtauth.FromContext(r.Context())
			if err != nil || token == nil {
				next.ServeHTTP(w, r)
				return
			}
			claims := token.PrivateClaims()
			var workerID int
			if rawID, ok := claims["worker_id"]; ok {
				switch v := rawID.(type) {
				case float64:
					workerID = int(v)
				case int:
					workerID = v
				case string:
					if id, err := strconv.Atoi(v); err == nil {
						workerID = id
					}
				}
			}
			if workerID != 0 {
				ctx := context.WithValue(r.Context(), config.WorkerIDKey, workerID)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AdminOnly проверяет роль из JWT, пропускает только админские.
func AdminOnly() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, _, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.RespondWithError(w, http.StatusUnauthorized, "Invalid token")
				return
			}
			claims, err := token.AsMap(r.Context())
			if err != nil {
				response.RespondWithError(w, http.StatusUnauthorized, "Invalid claims")
				return
			}
			role, ok := claims["role"].(string)
			if !ok {
				response.RespondWithError(w, http.StatusForbidden, "Role not found")
				return
			}
			switch role {
			case "admin", "superadmin":
				// Всё ок, разрешено
			default:
				response.RespondWithError(w, http.StatusForbidden, "Access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
