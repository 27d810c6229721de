package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/textlens/textlens/internal/config"
	"github.com/textlens/textlens/internal/history"
)

func (h *Handler) HandleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		settings, err := config.LoadSettings(h.settingsPath())
		if err != nil {
			h.writeError(w, "Failed to load settings: "+err.Error(), http.StatusInternalServerError)
			return
		}
		h.writeJSON(w, settings)
	case "PUT":
		var settings config.Settings
		if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
			h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}
		if err := config.SaveSettings(h.settingsPath(), settings); err != nil {
			h.writeError(w, "Failed to save settings: "+err.Error(), http.StatusInternalServerError)
			return
		}
		h.writeJSON(w, settings)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) HandlePrompts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		prompts, err := config.LoadPrompts(h.promptsPath())
		if err != nil {
			h.writeError(w, "Failed to load prompts: "+err.Error(), http.StatusInternalServerError)
			return
		}
		h.writeJSON(w, prompts)
	case "PUT":
		var prompts map[string]string
		if err := json.NewDecoder(r.Body).Decode(&prompts); err != nil {
			h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}
		if err := config.SavePrompts(h.promptsPath(), prompts); err != nil {
			h.writeError(w, "Failed to save prompts: "+err.Error(), http.StatusInternalServerError)
			return
		}
		h.writeJSON(w, prompts)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		entries, err := h.historyStore.Load()
		if err != nil {
			h.writeError(w, "Failed to load history: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if entries == nil {
			entries = []history.Entry{}
		}
		h.writeJSON(w, entries)
	case "DELETE":
		if err := h.historyStore.Clear(); err != nil {
			h.writeError(w, "Failed to clear history: "+err.Error(), http.StatusInternalServerError)
			return
		}
		h.writeJSON(w, map[string]string{"status": "cleared"})
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleMarkUsed moves a downloaded image into the DaVinci export folder.
func (h *Handler) HandleMarkUsed(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if request.Name == "" {
		h.writeError(w, "name is required", http.StatusBadRequest)
		return
	}

	path, err := h.downloader.MarkUsed(request.Name)
	if err != nil {
		h.writeError(w, "Failed to move image: "+err.Error(), http.StatusBadRequest)
		return
	}
	h.writeJSON(w, map[string]string{"path": path})
}
