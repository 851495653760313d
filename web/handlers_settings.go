package web

import (
	"net/http"

	"github.com/vicentefelipechile/enlacevrc/access"
	"github.com/vicentefelipechile/enlacevrc/settings"
)

type defineSettingRequest struct {
	Key     string `json:"key"`
	Type    string `json:"type"`
	Default string `json:"default"`
}

type settingResponse struct {
	Key     string `json:"key"`
	Type    string `json:"type"`
	Default string `json:"default"`
}

// handleDefineSetting creates a global setting and fans the default out to
// every registered server. Admin only.
func (s *Server) handleDefineSetting(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, err := s.Gate.Authorize(ctx, CallerIDFromContext(ctx), access.RoleAdmin)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var body defineSettingRequest
	if err = decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	kind, err := settings.ParseKind(body.Type)
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := s.Propagator.DefineSetting(ctx, body.Key, kind, body.Default, actor.DiscordID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, envelope{
		Success: true,
		Message: result.Message(),
		Data: map[string]interface{}{
			"applied": result.Applied,
			"servers": result.TotalGuilds,
		},
	})
}

func (s *Server) handleListSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	_, err := s.Gate.Authorize(ctx, CallerIDFromContext(ctx), access.RoleStaffOrAdmin)
	if err != nil {
		writeError(w, r, err)
		return
	}

	defs, err := s.Catalog.ListDefinitions(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}

	result := make([]settingResponse, 0, len(defs))
	for _, d := range defs {
		result = append(result, settingResponse{
			Key:     d.Key,
			Type:    d.Kind.String(),
			Default: d.Default.Encode(),
		})
	}

	writeData(w, http.StatusOK, result)
}
