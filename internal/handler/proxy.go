package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/mobiles24/storefront/internal/upstream"
)

// ProxyHandler forwards requests to upstream endpoints that browsers cannot
// hit directly. Upstream status and body pass through verbatim on success;
// failures map to a fixed error JSON.
type ProxyHandler struct {
	client *upstream.Client
	logger *slog.Logger
}

func NewProxyHandler(client *upstream.Client, logger *slog.Logger) *ProxyHandler {
	return &ProxyHandler{client: client, logger: logger}
}

// Accessories proxies the storeOI feed, running the client's fallback
// sequence. Always responds 200; a dead upstream yields an empty item list.
func (h *ProxyHandler) Accessories(w http.ResponseWriter, r *http.Request) {
	payload, err := h.client.Accessories(r.Context())
	if err != nil {
		h.logger.Warn("accessories proxy failed", "error", err)
		writeJSON(w, http.StatusOK, map[string]any{"items": []any{}})
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

// ProductDetail proxies the per-model detail endpoint keyed by brand+model.
func (h *ProxyHandler) ProductDetail(w http.ResponseWriter, r *http.Request) {
	brand := strings.TrimSpace(r.URL.Query().Get("brand"))
	model := strings.TrimSpace(r.URL.Query().Get("model"))
	if brand == "" || model == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"status":  false,
			"message": "brand and model are required",
		})
		return
	}

	status, body, err := h.client.ProductDetail(r.Context(), brand, model)
	if err != nil {
		h.logger.Warn("product detail proxy failed", "brand", brand, "model", model, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"status":  false,
			"message": "failed to load phone details",
		})
		return
	}
	if status != http.StatusOK {
		writeJSON(w, status, map[string]any{
			"status":  false,
			"message": "upstream failed",
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
