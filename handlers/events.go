package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"

	"solpass.app/cloud/internal/events"
	"solpass.app/cloud/internal/logger"
	"solpass.app/cloud/internal/metrics"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS middleware already vets origins for the REST routes; the
		// stream carries no secrets, only the same payloads the bus does.
		return true
	},
}

type streamFrame struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

// EventStream upgrades to a websocket and forwards every bus event to the
// client as {"event": ..., "payload": ...} frames. The browser used DOM
// events for this; over HTTP a socket is the equivalent fan-out.
func (s *Server) EventStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("Event stream upgrade failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	defer conn.Close()

	metrics.EventStreamClients.Inc()
	defer metrics.EventStreamClients.Dec()

	// Buffered so a slow client drops frames instead of stalling Publish.
	frames := make(chan streamFrame, 64)

	forward := func(name string) events.Handler {
		return func(payload interface{}) {
			select {
			case frames <- streamFrame{Event: name, Payload: payload}:
			default:
			}
		}
	}

	for _, name := range []string{
		events.BalanceUpdated,
		events.SubscriptionCreated,
		events.SubscriptionUpdated,
		events.TransactionCompleted,
	} {
		unsubscribe := s.Bus.Subscribe(name, forward(name))
		defer unsubscribe()
	}

	// Reader goroutine notices the peer going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case frame := <-frames:
			if err := conn.WriteJSON(frame); err != nil {
				return
			}
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}
