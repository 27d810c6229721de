package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/textlens/textlens/internal/config"
	"github.com/textlens/textlens/internal/history"
	"github.com/textlens/textlens/internal/images"
	"github.com/textlens/textlens/internal/models"
	"github.com/textlens/textlens/internal/storage"
)

type Handler struct {
	dir          string
	sessionStore *storage.SessionStore
	historyStore *history.Store
	downloader   *images.Downloader
}

// New builds a Handler rooted at the given working directory.
func New(dir string) *Handler {
	return &Handler{
		dir:          dir,
		sessionStore: storage.New(),
		historyStore: history.NewStore(dir),
		downloader:   images.NewDownloader(dir),
	}
}

func (h *Handler) settingsPath() string {
	return filepath.Join(h.dir, config.SettingsFile)
}

func (h *Handler) promptsPath() string {
	return filepath.Join(h.dir, config.CustomPromptsFile)
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}

// Session helpers
func (h *Handler) getSessionOrError(w http.ResponseWriter, sessionID string) (*models.AnalysisSession, bool) {
	session, exists := h.sessionStore.Get(sessionID)
	if !exists {
		h.writeError(w, "Session not found", http.StatusNotFound)
		return nil, false
	}
	return session, true
}
