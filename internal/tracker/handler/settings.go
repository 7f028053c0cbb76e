package handler

import (
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mobiles24/storefront/internal/backup"
	"github.com/mobiles24/storefront/internal/tracker/store"
	"github.com/mobiles24/storefront/internal/websocket"
)

type SettingsHandler struct {
	settingsStore *store.SettingsStore
	backupMgr     *backup.Manager
	hub           *websocket.Hub
	logger        *slog.Logger
}

func NewSettingsHandler(ss *store.SettingsStore, bm *backup.Manager, hub *websocket.Hub, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{settingsStore: ss, backupMgr: bm, hub: hub, logger: logger}
}

func (h *SettingsHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

// GetTheme returns the stored theme.
func (h *SettingsHandler) GetTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := h.settingsStore.GetTheme()
	if err != nil {
		h.logger.Error("failed to get theme", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get theme"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"theme": theme})
}

type themeRequest struct {
	Theme string `json:"theme"`
}

// UpdateTheme stores the theme, light or dark.
func (h *SettingsHandler) UpdateTheme(w http.ResponseWriter, r *http.Request) {
	var req themeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if err := h.settingsStore.SetTheme(req.Theme); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "theme must be light or dark"})
		return
	}

	h.broadcast(websocket.NewMessage("settings", "theme_changed", req.Theme, nil))
	writeJSON(w, http.StatusOK, map[string]string{"theme": req.Theme})
}

// GetBackupSettings returns the backup schedule settings. The
// passphrase salt is reported only as configured or not.
func (h *SettingsHandler) GetBackupSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsStore.GetBackupSettings()
	if err != nil {
		h.logger.Error("failed to get backup settings", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get backup settings"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"enabled":              settings["backup_enabled"] == "true",
		"scheduleHour":         settings["backup_schedule_hour"],
		"retentionDays":        settings["backup_retention_days"],
		"passphraseConfigured": settings["backup_passphrase_salt"] != "",
	})
}

type backupSettingsRequest struct {
	Enabled       *bool `json:"enabled"`
	ScheduleHour  *int  `json:"scheduleHour"`
	RetentionDays *int  `json:"retentionDays"`
}

// UpdateBackupSettings updates the backup schedule settings.
func (h *SettingsHandler) UpdateBackupSettings(w http.ResponseWriter, r *http.Request) {
	var req backupSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if req.ScheduleHour != nil && (*req.ScheduleHour < 0 || *req.ScheduleHour > 23) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "scheduleHour must be 0-23"})
		return
	}
	if req.RetentionDays != nil && *req.RetentionDays < 1 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "retentionDays must be at least 1"})
		return
	}

	if req.Enabled != nil {
		if err := h.settingsStore.Set("backup_enabled", strconv.FormatBool(*req.Enabled)); err != nil {
			h.logger.Error("failed to update backup settings", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update settings"})
			return
		}
	}
	if req.ScheduleHour != nil {
		if err := h.settingsStore.Set("backup_schedule_hour", strconv.Itoa(*req.ScheduleHour)); err != nil {
			h.logger.Error("failed to update backup settings", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update settings"})
			return
		}
	}
	if req.RetentionDays != nil {
		if err := h.settingsStore.Set("backup_retention_days", strconv.Itoa(*req.RetentionDays)); err != nil {
			h.logger.Error("failed to update backup settings", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update settings"})
			return
		}
	}

	h.GetBackupSettings(w, r)
}

type passphraseRequest struct {
	Passphrase string `json:"passphrase"`
}

// SetBackupPassphrase generates a fresh salt for the passphrase, stores
// the salt, and caches the derived credentials so scheduled backups can
// run without re-entry.
func (h *SettingsHandler) SetBackupPassphrase(w http.ResponseWriter, r *http.Request) {
	var req passphraseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if len(req.Passphrase) < 8 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "passphrase must be at least 8 characters"})
		return
	}

	salt, err := backup.GenerateSalt()
	if err != nil {
		h.logger.Error("failed to generate salt", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to set passphrase"})
		return
	}

	if err := h.settingsStore.Set("backup_passphrase_salt", hex.EncodeToString(salt)); err != nil {
		h.logger.Error("failed to store salt", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to set passphrase"})
		return
	}

	if h.backupMgr != nil {
		h.backupMgr.CacheKey(req.Passphrase, salt)
	}

	writeJSON(w, http.StatusOK, map[string]bool{"configured": true})
}
