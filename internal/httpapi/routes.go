package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/kparks44/rumble-backend/internal/hub"
	"github.com/kparks44/rumble-backend/internal/queue"
	"github.com/kparks44/rumble-backend/internal/ws"
)

func SetupRoutes(h *hub.Hub, q *queue.Queue, allowedOrigins []string, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	})

	// Public routes
	r.Get("/status", Status(h, q))
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(h, q, log))

	return c.Handler(r)
}
