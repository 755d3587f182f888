package server

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/parley-app/parley/internal/relay"
)

// HealthCheck reports liveness for load balancers and uptime probes.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Relay server is healthy."))
}

// ServeWs returns an http.HandlerFunc that upgrades the request to a
// websocket and attaches the connection to the hub.
func ServeWs(hub *relay.Hub, cfg *Config, log *slog.Logger) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  64 * 1024,
		WriteBufferSize: 64 * 1024,
		CheckOrigin:     checkOrigin(cfg.FrontendURL),
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("failed to upgrade connection", slog.Any("error", err))
			return
		}

		client := relay.NewClient(hub, conn)
		client.Hub.Register <- client

		go client.WritePump()
		go client.ReadPump()
	}
}

// checkOrigin restricts upgrades to the configured frontend origin. An
// empty origin header (non-browser clients such as the CLI) is always
// accepted.
func checkOrigin(frontendURL string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		if frontendURL == "" {
			return true
		}
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		return origin == frontendURL
	}
}
