package handlers

import (
	"net/http"

	"insafe-lab/internal/streaming"
	"insafe-lab/pkg/logger"
)

// StreamingHandler handles the live scan feed
type StreamingHandler struct {
	wsHub    *streaming.WebSocketHub
	eventBus *streaming.EventBus
	logger   *logger.Logger
}

// NewStreamingHandler creates a new streaming handler
func NewStreamingHandler(wsHub *streaming.WebSocketHub, eventBus *streaming.EventBus, log *logger.Logger) *StreamingHandler {
	return &StreamingHandler{
		wsHub:    wsHub,
		eventBus: eventBus,
		logger:   log.WithComponent("streaming-handler"),
	}
}

// HandleWebSocket handles GET /ws
func (h *StreamingHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if h.wsHub == nil {
		respondError(w, http.StatusServiceUnavailable, "live feed not available")
		return
	}

	h.logger.Debug().
		Str("remote_addr", r.RemoteAddr).
		Str("user_agent", r.UserAgent()).
		Msg("websocket connection request")

	h.wsHub.ServeWebSocket(w, r)
}

// GetStats handles GET /api/v1/streaming/stats
func (h *StreamingHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats := map[string]int{
		"websocketClients":    0,
		"eventBusSubscribers": 0,
	}
	if h.wsHub != nil {
		stats["websocketClients"] = h.wsHub.ClientCount()
	}
	if h.eventBus != nil {
		stats["eventBusSubscribers"] = h.eventBus.SubscriberCount()
	}
	respondJSON(w, http.StatusOK, stats)
}
