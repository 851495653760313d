package web

import (
	"net/http"

	"github.com/vicentefelipechile/enlacevrc/access"
	"goji.io/pat"
)

type createServerRequest struct {
	GuildID string `json:"guild_id"`
	Name    string `json:"name"`
}

// handleCreateServer registers a Discord server and seeds it with every
// existing setting at its default. Admin only.
func (s *Server) handleCreateServer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, err := s.Gate.Authorize(ctx, CallerIDFromContext(ctx), access.RoleAdmin)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var body createServerRequest
	if err = decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := s.Registry.Create(ctx, body.GuildID, body.Name, actor.DiscordID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	message := "server registered"
	if result.SeedingFailed {
		message = "server registered, but seeding its settings failed"
	}

	writeJSON(w, http.StatusCreated, envelope{
		Success: true,
		Message: message,
		Data: map[string]interface{}{
			"guild":          result.Guild,
			"settings_added": result.SettingsAdded,
			"total_settings": result.TotalSettings,
		},
	})
}

func (s *Server) handleListServers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	_, err := s.Gate.Authorize(ctx, CallerIDFromContext(ctx), access.RoleStaffOrAdmin)
	if err != nil {
		writeError(w, r, err)
		return
	}

	list, err := s.Guilds.List(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, list)
}

// handleDeleteServer runs the full teardown cascade. Admin only.
func (s *Server) handleDeleteServer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, err := s.Gate.Authorize(ctx, CallerIDFromContext(ctx), access.RoleAdmin)
	if err != nil {
		writeError(w, r, err)
		return
	}

	err = s.Registry.Delete(ctx, pat.Param(r, "guildID"), actor.DiscordID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeMessage(w, http.StatusOK, "server deleted")
}

func (s *Server) handleListServerSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	_, err := s.Gate.Authorize(ctx, CallerIDFromContext(ctx), access.RoleStaffOrAdmin)
	if err != nil {
		writeError(w, r, err)
		return
	}

	entries, err := s.Config.ListForGuild(ctx, pat.Param(r, "guildID"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, entries)
}

type setSettingRequest struct {
	Value string `json:"value"`
}

// handleSetServerSetting overrides one setting on one server. The instance
// row has to exist already; definitions only come from the catalog.
func (s *Server) handleSetServerSetting(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, err := s.Gate.Authorize(ctx, CallerIDFromContext(ctx), access.RoleStaffOrAdmin)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var body setSettingRequest
	if err = decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	err = s.Config.Set(ctx, pat.Param(r, "guildID"), pat.Param(r, "key"), body.Value, actor.DiscordID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeMessage(w, http.StatusOK, "setting updated")
}

func (s *Server) handleDeleteServerSetting(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	_, err := s.Gate.Authorize(ctx, CallerIDFromContext(ctx), access.RoleAdmin)
	if err != nil {
		writeError(w, r, err)
		return
	}

	err = s.Config.Delete(ctx, pat.Param(r, "guildID"), pat.Param(r, "key"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeMessage(w, http.StatusOK, "setting removed")
}

type addGroupRequest struct {
	GroupID string `json:"group_id"`
	Name    string `json:"name"`
}

func (s *Server) handleAddGroupBinding(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, err := s.Gate.Authorize(ctx, CallerIDFromContext(ctx), access.RoleStaffOrAdmin)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var body addGroupRequest
	if err = decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	binding, err := s.Registry.AddGroupBinding(ctx, pat.Param(r, "guildID"), body.GroupID, body.Name, actor.DiscordID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusCreated, binding)
}

func (s *Server) handleListGroupBindings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	_, err := s.Gate.Authorize(ctx, CallerIDFromContext(ctx), access.RoleStaffOrAdmin)
	if err != nil {
		writeError(w, r, err)
		return
	}

	bindings, err := s.Guilds.ListBindings(ctx, pat.Param(r, "guildID"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, bindings)
}

func (s *Server) handleRemoveGroupBinding(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	_, err := s.Gate.Authorize(ctx, CallerIDFromContext(ctx), access.RoleStaffOrAdmin)
	if err != nil {
		writeError(w, r, err)
		return
	}

	err = s.Registry.RemoveGroupBinding(ctx, pat.Param(r, "guildID"), pat.Param(r, "groupID"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeMessage(w, http.StatusOK, "group unbound")
}
