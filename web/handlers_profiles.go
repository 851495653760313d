package web

import (
	"net/http"

	"github.com/vicentefelipechile/enlacevrc/access"
	"github.com/vicentefelipechile/enlacevrc/profiles"
	"goji.io/pat"
)

type createProfileRequest struct {
	DiscordID  string `json:"discord_id"`
	VRChatID   string `json:"vrchat_id"`
	VRChatName string `json:"vrchat_name"`
}

func (s *Server) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, err := s.Gate.Authorize(ctx, CallerIDFromContext(ctx), access.RoleStaffOrAdmin)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var body createProfileRequest
	if err = decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	profile, err := profiles.Create(ctx, s.Profiles, body.DiscordID, body.VRChatID, body.VRChatName, actor.DiscordID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusCreated, profile)
}

// handleGetProfile looks a profile up by either external id.
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	_, err := s.Gate.Authorize(ctx, CallerIDFromContext(ctx), access.RoleStaffOrAdmin)
	if err != nil {
		writeError(w, r, err)
		return
	}

	profile, err := s.Profiles.Resolve(ctx, pat.Param(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, profile)
}

func (s *Server) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	_, err := s.Gate.Authorize(ctx, CallerIDFromContext(ctx), access.RoleStaffOrAdmin)
	if err != nil {
		writeError(w, r, err)
		return
	}

	err = profiles.Remove(ctx, s.Profiles, pat.Param(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeMessage(w, http.StatusOK, "profile removed")
}

type banRequest struct {
	Reason string `json:"reason"`
}

// The moderation operations run their own gate, so the raw caller id goes
// straight through; a denial comes back as ErrForbidden and gets audited
// inside the state machine.
func (s *Server) handleBan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body banRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	profile, err := s.Moderator.Ban(ctx, CallerIDFromContext(ctx), pat.Param(r, "id"), body.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, profile)
}

func (s *Server) handleUnban(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	profile, err := s.Moderator.Unban(ctx, CallerIDFromContext(ctx), pat.Param(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, profile)
}

type verifyRequest struct {
	MethodID int64  `json:"method_id"`
	GuildID  string `json:"guild_id"`
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body verifyRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	profile, err := s.Moderator.Verify(ctx, CallerIDFromContext(ctx), pat.Param(r, "id"), body.MethodID, body.GuildID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, profile)
}

func (s *Server) handleUnverify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	profile, err := s.Moderator.Unverify(ctx, CallerIDFromContext(ctx), pat.Param(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, profile)
}
