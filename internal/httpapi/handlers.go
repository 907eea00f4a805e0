package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/kparks44/rumble-backend/internal/hub"
	"github.com/kparks44/rumble-backend/internal/queue"
)

type statusResponse struct {
	Status      string `json:"status"`
	QueueSize   int    `json:"queueSize"`
	ActiveRooms int    `json:"activeRooms"`
	UsersOnline int    `json:"usersOnline"`
}

// Status returns aggregate counters only; never participant identities.
func Status(h *hub.Hub, q *queue.Queue) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reply := make(chan hub.StatsView, 1)
		h.Inbox() <- hub.Stats{Reply: reply}
		stats := <-reply

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(statusResponse{
			Status:      "online",
			QueueSize:   q.Size(),
			ActiveRooms: stats.ActiveRooms,
			UsersOnline: stats.UsersOnline,
		})
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
