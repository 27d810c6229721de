package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/textlens/textlens/internal/analysis"
	"github.com/textlens/textlens/internal/config"
	"github.com/textlens/textlens/internal/history"
	"github.com/textlens/textlens/internal/llm"
)

// HandleAnalyze runs the paragraph pipeline over posted text and returns
// the resulting session.
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request struct {
		Text     string `json:"text"`
		Provider string `json:"provider"`
		Prompt   string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if request.Text == "" {
		h.writeError(w, "text is required", http.StatusBadRequest)
		return
	}

	settings, err := config.LoadSettings(h.settingsPath())
	if err != nil {
		slog.Warn("Falling back to default settings", "error", err)
	}

	// A named custom prompt overrides the configured system prompt.
	if request.Prompt != "" {
		prompts, err := config.LoadPrompts(h.promptsPath())
		if err == nil {
			if p, ok := prompts[request.Prompt]; ok {
				settings.SystemPrompt = p
			}
		}
	}

	provider, err := llm.ForProvider(request.Provider, settings.LLMURL)
	if err != nil {
		h.writeError(w, "Unknown provider: "+request.Provider, http.StatusBadRequest)
		return
	}

	service := analysis.NewService(settings, provider)
	session, err := service.Analyze(r.Context(), request.Text)
	if err != nil {
		h.writeError(w, "Analysis failed: "+err.Error(), http.StatusBadRequest)
		return
	}
	session.Provider = request.Provider

	h.sessionStore.Set(session.ID, session)

	if err := h.historyStore.Add(history.Entry{
		ID:         session.ID,
		Timestamp:  session.CreatedAt,
		Preview:    session.Text,
		Paragraphs: len(session.Paragraphs),
		Images:     session.ImageCount(),
		Engine:     settings.SearchEngine,
		Model:      settings.LLMModel,
	}); err != nil {
		slog.Warn("Failed to record history entry", "error", err)
	}

	h.writeJSON(w, session)
}
