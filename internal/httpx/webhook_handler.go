package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/shopfront/orders/internal/payments"
)

// WebhookHandler always acknowledges the provider with 200, whatever happened
// inside. A non-2xx would trigger the provider's retry storm; redelivery is
// already safe because of the processor's idempotency guard.
type WebhookHandler struct {
	Processor *payments.Processor
	Log       *zap.Logger
}

func (h *WebhookHandler) Register(r *chi.Mux) {
	r.Post("/webhooks/payment", h.handle)
}

func (h *WebhookHandler) handle(w http.ResponseWriter, r *http.Request) {
	var n payments.Notification
	if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
		h.Log.Warn("undecodable payment notification", zap.Error(err))
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	if err := h.Processor.Handle(r.Context(), n); err != nil {
		// Internal failure, not a duplicate: logged for alerting, still acked.
		h.Log.Error("payment notification processing failed",
			zap.String("event", n.Event),
			zap.String("payment_id", n.Object.ID),
			zap.Error(err))
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
