package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mobiles24/storefront/internal/catalog"
)

// CatalogHandler serves the normalized catalog: the merged listing, the
// filtered views, and single-item detail lookup.
type CatalogHandler struct {
	loader *catalog.Loader
	logger *slog.Logger
}

func NewCatalogHandler(loader *catalog.Loader, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{loader: loader, logger: logger}
}

// Catalog returns the full merged catalog for one page load.
func (h *CatalogHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	cat, err := h.loader.Load(r.Context())
	if err != nil {
		h.logger.Error("catalog load failed", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

// Items returns the listing filtered by source, company, and search query.
func (h *CatalogHandler) Items(w http.ResponseWriter, r *http.Request) {
	cat, err := h.loader.Load(r.Context())
	if err != nil {
		h.logger.Error("catalog load failed", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}

	list, ok := itemsForSource(cat, r.URL.Query().Get("source"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid source"})
		return
	}

	filtered := catalog.Filter(list, r.URL.Query().Get("company"), r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, map[string]any{
		"items": filtered,
		"count": len(filtered),
	})
}

// Item resolves a single item by id across all three source lists.
func (h *CatalogHandler) Item(w http.ResponseWriter, r *http.Request) {
	cat, err := h.loader.Load(r.Context())
	if err != nil {
		h.logger.Error("catalog load failed", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}

	item := cat.FindItem(r.PathValue("id"))
	if item == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Companies returns the distinct company names for the company filter bar.
func (h *CatalogHandler) Companies(w http.ResponseWriter, r *http.Request) {
	cat, err := h.loader.Load(r.Context())
	if err != nil {
		h.logger.Error("catalog load failed", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}

	list, ok := itemsForSource(cat, r.URL.Query().Get("source"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid source"})
		return
	}

	companies := catalog.Companies(list)
	if companies == nil {
		companies = []string{}
	}
	writeJSON(w, http.StatusOK, companies)
}

func itemsForSource(cat *catalog.Catalog, source string) ([]catalog.PhoneItem, bool) {
	switch source {
	case "", "all":
		return cat.Items(), true
	case "used":
		return cat.Used, true
	case "new":
		return cat.New, true
	case "accessories", "accessory":
		return cat.Accessories, true
	default:
		return nil, false
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
