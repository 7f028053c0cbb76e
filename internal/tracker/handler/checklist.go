package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mobiles24/storefront/internal/tracker/model"
	"github.com/mobiles24/storefront/internal/tracker/store"
	"github.com/mobiles24/storefront/internal/websocket"
)

type ChecklistHandler struct {
	sectionStore *store.SectionStore
	hub          *websocket.Hub
	logger       *slog.Logger
}

func NewChecklistHandler(ss *store.SectionStore, hub *websocket.Hub, logger *slog.Logger) *ChecklistHandler {
	return &ChecklistHandler{sectionStore: ss, hub: hub, logger: logger}
}

func (h *ChecklistHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

// Sections returns every section with its items.
func (h *ChecklistHandler) Sections(w http.ResponseWriter, r *http.Request) {
	sections, err := h.sectionStore.ListSections()
	if err != nil {
		h.logger.Error("failed to list sections", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list sections"})
		return
	}
	if sections == nil {
		sections = []model.ChecklistSection{}
	}
	writeJSON(w, http.StatusOK, sections)
}

type addItemRequest struct {
	SectionID    string `json:"sectionId"`
	SectionTitle string `json:"sectionTitle"`
	Title        string `json:"title"`
}

// AddItem creates a pending item. The target section is named either by
// id or by title; a title that matches no existing section (ignoring
// case) creates a new section.
func (h *ChecklistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title is required"})
		return
	}

	sectionID := req.SectionID
	if sectionID == "" {
		if strings.TrimSpace(req.SectionTitle) == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "sectionId or sectionTitle is required"})
			return
		}
		section, err := h.sectionStore.EnsureSection(req.SectionTitle)
		if err != nil {
			h.logger.Error("failed to ensure section", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create section"})
			return
		}
		sectionID = section.ID
	}

	item, err := h.sectionStore.AddItem(sectionID, req.Title)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "section not found"})
			return
		}
		h.logger.Error("failed to add item", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to add item"})
		return
	}

	h.broadcast(websocket.NewMessage("checklist_item", "created", item.ID, map[string]any{"sectionId": sectionID}))
	writeJSON(w, http.StatusCreated, map[string]any{"sectionId": sectionID, "item": item})
}

type setStatusRequest struct {
	Status model.Status `json:"status"`
}

// SetStatus updates a single item's status.
func (h *ChecklistHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	sectionID := r.PathValue("section_id")
	itemID := r.PathValue("id")

	var req setStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if !req.Status.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status must be pending, bug or resolved"})
		return
	}

	item, err := h.sectionStore.SetItemStatus(sectionID, itemID, req.Status)
	if err != nil {
		h.logger.Error("failed to set item status", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update item"})
		return
	}
	if item == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
		return
	}

	h.broadcast(websocket.NewMessage("checklist_item", "updated", item.ID, map[string]any{"status": string(item.Status)}))
	writeJSON(w, http.StatusOK, item)
}

// DeleteItem removes an item, and the section too when it was the last
// item in it.
func (h *ChecklistHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	sectionID := r.PathValue("section_id")
	itemID := r.PathValue("id")

	deleted, sectionRemoved, err := h.sectionStore.DeleteItem(sectionID, itemID)
	if err != nil {
		h.logger.Error("failed to delete item", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete item"})
		return
	}
	if !deleted {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
		return
	}

	h.broadcast(websocket.NewMessage("checklist_item", "deleted", itemID, nil))
	if sectionRemoved {
		h.broadcast(websocket.NewMessage("section", "deleted", sectionID, nil))
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true, "sectionRemoved": sectionRemoved})
}

// Items returns a flat item list filtered by ?status= and ?q=.
// status accepts all, pending, bug or resolved; "all" and empty both
// mean no filter.
func (h *ChecklistHandler) Items(w http.ResponseWriter, r *http.Request) {
	statusParam := r.URL.Query().Get("status")
	if statusParam == "all" {
		statusParam = ""
	}
	status := model.Status(statusParam)
	if status != "" && !status.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status filter"})
		return
	}

	items, err := h.sectionStore.ListItems(status, r.URL.Query().Get("q"))
	if err != nil {
		h.logger.Error("failed to list items", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list items"})
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Counters returns item tallies by status.
func (h *ChecklistHandler) Counters(w http.ResponseWriter, r *http.Request) {
	counters, err := h.sectionStore.Counters()
	if err != nil {
		h.logger.Error("failed to count items", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to count items"})
		return
	}
	writeJSON(w, http.StatusOK, counters)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
