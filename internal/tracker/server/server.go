package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mobiles24/storefront/internal/backup"
	"github.com/mobiles24/storefront/internal/middleware"
	"github.com/mobiles24/storefront/internal/tracker/handler"
	"github.com/mobiles24/storefront/internal/tracker/store"
	"github.com/mobiles24/storefront/internal/websocket"
)

type Server struct {
	db         *sql.DB
	checklistH *handler.ChecklistHandler
	settingsH  *handler.SettingsHandler
	backupH    *handler.BackupHandler
	hub        *websocket.Hub
	backupMgr  *backup.Manager
	logger     *slog.Logger
}

func New(db *sql.DB, backupCfg backup.Config, logger *slog.Logger) *Server {
	sectionStore := store.NewSectionStore(db)
	settingsStore := store.NewSettingsStore(db)
	backupStore := store.NewBackupStore(db)

	hub := websocket.NewHub(logger.With("component", "websocket"))

	backupMgr := backup.NewManager(backupCfg, db, backupStore, settingsStore, func(s backup.Status) {
		hub.Broadcast(websocket.Message{
			Type:   "backup_status",
			Entity: "backup",
			Action: string(s.State),
		})
	}, logger.With("component", "backup"))

	return &Server{
		db:         db,
		checklistH: handler.NewChecklistHandler(sectionStore, hub, logger.With("component", "checklist")),
		settingsH:  handler.NewSettingsHandler(settingsStore, backupMgr, hub, logger.With("component", "settings")),
		backupH:    handler.NewBackupHandler(backupMgr, backupStore, logger.With("component", "backup")),
		hub:        hub,
		backupMgr:  backupMgr,
		logger:     logger,
	}
}

// BackupManager returns the backup manager so main can run its scheduler.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupMgr
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)

	// Checklist API
	mux.HandleFunc("GET /api/sections", s.checklistH.Sections)
	mux.HandleFunc("POST /api/items", s.checklistH.AddItem)
	mux.HandleFunc("GET /api/items", s.checklistH.Items)
	mux.HandleFunc("GET /api/counters", s.checklistH.Counters)
	mux.HandleFunc("PUT /api/sections/{section_id}/items/{id}/status", s.checklistH.SetStatus)
	mux.HandleFunc("DELETE /api/sections/{section_id}/items/{id}", s.checklistH.DeleteItem)

	// Settings API
	mux.HandleFunc("GET /api/settings/theme", s.settingsH.GetTheme)
	mux.HandleFunc("PUT /api/settings/theme", s.settingsH.UpdateTheme)
	mux.HandleFunc("GET /api/settings/backup", s.settingsH.GetBackupSettings)
	mux.HandleFunc("PUT /api/settings/backup", s.settingsH.UpdateBackupSettings)
	mux.HandleFunc("PUT /api/settings/backup/passphrase", s.settingsH.SetBackupPassphrase)

	// Backup API
	mux.HandleFunc("POST /api/backups", s.backupH.RunNow)
	mux.HandleFunc("GET /api/backups", s.backupH.List)
	mux.HandleFunc("GET /api/backups/status", s.backupH.Status)
	mux.HandleFunc("GET /api/backups/{id}/download", s.backupH.Download)

	// WebSocket for live checklist updates
	mux.HandleFunc("GET /ws", websocket.HandleWebSocket(s.hub))

	return middleware.RequestLogger(s.logger)(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
