package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/mobiles24/storefront/internal/catalog"
	"github.com/mobiles24/storefront/internal/store"
)

const (
	sessionName  = "mobiles24"
	sessionIDKey = "wishlist_id"
)

// WishlistHandler manages each visitor's liked items. Visitors are
// identified by a cookie session; the wishlist itself lives in sqlite so it
// survives restarts.
type WishlistHandler struct {
	wishlistStore *store.WishlistStore
	sessions      sessions.Store
	logger        *slog.Logger
}

func NewWishlistHandler(ws *store.WishlistStore, sessionStore sessions.Store, logger *slog.Logger) *WishlistHandler {
	return &WishlistHandler{wishlistStore: ws, sessions: sessionStore, logger: logger}
}

// sessionID returns the visitor's stable wishlist id, minting one on first
// contact. A cookie that fails to decode is treated as a fresh visitor.
func (h *WishlistHandler) sessionID(w http.ResponseWriter, r *http.Request) (string, error) {
	sess, _ := h.sessions.Get(r, sessionName)
	if id, ok := sess.Values[sessionIDKey].(string); ok && id != "" {
		return id, nil
	}
	id := uuid.NewString()
	sess.Values[sessionIDKey] = id
	if err := sess.Save(r, w); err != nil {
		return "", err
	}
	return id, nil
}

func (h *WishlistHandler) List(w http.ResponseWriter, r *http.Request) {
	id, err := h.sessionID(w, r)
	if err != nil {
		h.logger.Error("wishlist session", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "session unavailable"})
		return
	}

	items, err := h.wishlistStore.List(id)
	if err != nil {
		h.logger.Error("wishlist list", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list wishlist"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"count": len(items),
	})
}

func (h *WishlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	id, err := h.sessionID(w, r)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "session unavailable"})
		return
	}

	item, ok := decodeItem(w, r)
	if !ok {
		return
	}

	if err := h.wishlistStore.Add(id, item); err != nil {
		h.logger.Error("wishlist add", "item", item.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to add item"})
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *WishlistHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id, err := h.sessionID(w, r)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "session unavailable"})
		return
	}

	item, ok := decodeItem(w, r)
	if !ok {
		return
	}

	wishlisted, err := h.wishlistStore.Toggle(id, item)
	if err != nil {
		h.logger.Error("wishlist toggle", "item", item.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to toggle item"})
		return
	}

	count, err := h.wishlistStore.Count(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to count wishlist"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"wishlisted": wishlisted,
		"count":      count,
	})
}

func (h *WishlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id, err := h.sessionID(w, r)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "session unavailable"})
		return
	}

	itemID := r.PathValue("id")
	if itemID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.wishlistStore.Remove(id, itemID); err != nil {
		h.logger.Error("wishlist remove", "item", itemID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to remove item"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeItem(w http.ResponseWriter, r *http.Request) (catalog.PhoneItem, bool) {
	var item catalog.PhoneItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return item, false
	}
	if item.ID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "id is required"})
		return item, false
	}
	return item, true
}
