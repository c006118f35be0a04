package order_api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-raffles/internal/logger"
	"ms-raffles/internal/notify"
)

// SSEHandler streams coalesced new-order notifications to the admin
// dashboard over Server-Sent Events.
type SSEHandler struct {
	Logger  *logger.Logger
	Emitter *notify.OrderEventEmitter
}

func NewSSEHandler(log *logger.Logger, emitter *notify.OrderEventEmitter) *SSEHandler {
	return &SSEHandler{
		Logger:  log,
		Emitter: emitter,
	}
}

// HandleRaffleOrders streams new-order notifications for one raffle.
func (h *SSEHandler) HandleRaffleOrders(w http.ResponseWriter, r *http.Request) {
	raffleID := chi.URLParam(r, "raffleID")
	if raffleID == "" {
		http.Error(w, "Raffle ID is required", http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	h.setupSSEHeaders(w)

	// Context cancels when the client disconnects
	ctx := r.Context()
	eventChan := h.Emitter.SubscribeToRaffle(ctx, raffleID)

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"raffleID\":\"%s\"}\n\n", raffleID)
	flusher.Flush()

	h.Logger.Info("SSE", fmt.Sprintf("Client connected to order notifications for raffle: %s", raffleID))

	for {
		select {
		case n, ok := <-eventChan:
			if !ok {
				h.Logger.Debug("SSE", fmt.Sprintf("Channel closed for raffle: %s", raffleID))
				return
			}

			jsonData, err := json.Marshal(n)
			if err != nil {
				h.Logger.Error("SSE", fmt.Sprintf("Failed to serialize notification: %v", err))
				continue
			}

			fmt.Fprintf(w, "event: new_order\ndata: %s\n\n", jsonData)
			flusher.Flush()

		case <-ctx.Done():
			h.Logger.Debug("SSE", fmt.Sprintf("Client disconnected from raffle: %s", raffleID))
			return
		}
	}
}

func (h *SSEHandler) setupSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream;charset=UTF-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, max-age=0, must-revalidate")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
	w.Header().Set("X-Content-Type-Options", "nosniff")
}
