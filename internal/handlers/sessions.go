package handlers

import (
	"net/http"
	"strings"

	"github.com/textlens/textlens/internal/models"
	"github.com/textlens/textlens/internal/report"
)

func (h *Handler) HandleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		sessions := h.sessionStore.GetAll()
		sessionList := make([]*models.AnalysisSession, 0, len(sessions))
		for _, session := range sessions {
			sessionList = append(sessionList, session)
		}
		h.writeJSON(w, sessionList)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) HandleSessionDetail(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	sessionID, action, _ := strings.Cut(rest, "/")

	session, ok := h.getSessionOrError(w, sessionID)
	if !ok {
		return
	}

	switch {
	case action == "export" && r.Method == "POST":
		path, err := report.SaveToYAML(h.dir, session)
		if err != nil {
			h.writeError(w, "Export failed: "+err.Error(), http.StatusInternalServerError)
			return
		}
		h.writeJSON(w, map[string]string{"path": path})
	case action == "" && r.Method == "GET":
		h.writeJSON(w, session)
	case action == "" && r.Method == "DELETE":
		h.sessionStore.Delete(sessionID)
		h.writeJSON(w, map[string]string{"status": "deleted"})
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
