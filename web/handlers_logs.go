package web

import (
	"net/http"
	"strconv"

	"github.com/vicentefelipechile/enlacevrc/access"
)

const (
	defaultLogPageSize = 50
	maxLogPageSize     = 500
)

// handleListLogs pages through the audit log, newest first. Admin only;
// the log records moderation actions against named people.
func (s *Server) handleListLogs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	_, err := s.Gate.Authorize(ctx, CallerIDFromContext(ctx), access.RoleAdmin)
	if err != nil {
		writeError(w, r, err)
		return
	}

	limit := defaultLogPageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxLogPageSize {
			writeJSON(w, http.StatusBadRequest, envelope{Error: "invalid limit"})
			return
		}
	}

	var before int64
	if raw := r.URL.Query().Get("before"); raw != "" {
		before, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || before < 1 {
			writeJSON(w, http.StatusBadRequest, envelope{Error: "invalid before cursor"})
			return
		}
	}

	entries, err := s.Logs.GetEntries(ctx, limit, before)
	if err != nil {
		writeError(w, r, err)
		return
	}

	type logEntry struct {
		ID        int64  `json:"id"`
		Level     string `json:"level"`
		Message   string `json:"message"`
		Actor     string `json:"actor"`
		CreatedAt string `json:"created_at"`
	}

	result := make([]logEntry, 0, len(entries))
	for _, e := range entries {
		result = append(result, logEntry{
			ID:        e.ID,
			Level:     e.Level.String(),
			Message:   e.Message,
			Actor:     e.Actor,
			CreatedAt: e.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	writeData(w, http.StatusOK, result)
}
