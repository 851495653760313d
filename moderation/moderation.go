// Package moderation enforces the profile lifecycle: two independent binary
// axes (banned, verified), each with a guarded forward and reverse
// transition. Every attempt, allowed or denied, leaves an audit entry.
package moderation

import (
	"context"
	"fmt"
	"time"

	"emperror.dev/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vicentefelipechile/enlacevrc/access"
	"github.com/vicentefelipechile/enlacevrc/auditlog"
	"github.com/vicentefelipechile/enlacevrc/common"
	"github.com/vicentefelipechile/enlacevrc/guilds"
	"github.com/vicentefelipechile/enlacevrc/profiles"
)

var logger = common.GetFixedPrefixLogger("moderation")

var metricActions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "enlacevrc_moderation_actions_total",
	Help: "Completed moderation transitions, by action",
}, []string{"action"})

var (
	// no-op transitions are rejected, never silently accepted
	ErrAlreadyBanned   = errors.New("profile is already banned")
	ErrNotBanned       = errors.New("profile is not banned")
	ErrAlreadyVerified = errors.New("profile is already verified")
	ErrNotVerified     = errors.New("profile is not verified")
)

// GuildResolver is the slice of the server registry Verify needs.
type GuildResolver interface {
	Get(ctx context.Context, guildID string) (*guilds.Guild, error)
}

// Moderator runs the guarded transitions. All four operations require at
// least staff; the stored actor is the gate's resolved identity, never the
// raw caller supplied id.
type Moderator struct {
	Gate     *access.Gate
	Profiles profiles.Store
	Guilds   GuildResolver
	Methods  MethodStore
	Audit    auditlog.Recorder
}

func NewModerator(gate *access.Gate, profileStore profiles.Store, guildResolver GuildResolver, methods MethodStore, audit auditlog.Recorder) *Moderator {
	return &Moderator{
		Gate:     gate,
		Profiles: profileStore,
		Guilds:   guildResolver,
		Methods:  methods,
		Audit:    audit,
	}
}

// Ban marks a profile banned. Requires a non-empty reason, rejects a second
// ban with a conflict, and writes all four ban fields in one statement.
func (m *Moderator) Ban(ctx context.Context, callerID, profileRef, reason string) (*profiles.Profile, error) {
	actor, err := m.authorize(ctx, callerID, "ban", profileRef)
	if err != nil {
		return nil, err
	}

	if reason == "" {
		return nil, common.MissingField("reason")
	}

	profile, err := m.resolve(ctx, actor, "ban", profileRef)
	if err != nil {
		return nil, err
	}

	if profile.IsBanned {
		m.record(ctx, auditlog.LevelWarning,
			fmt.Sprintf("rejected ban of %s: already banned", profile.VRChatName), actor.DiscordID)
		return nil, ErrAlreadyBanned
	}

	err = m.Profiles.SetBanFields(ctx, profile.ID, reason, actor.DiscordID, time.Now())
	if err != nil {
		m.record(ctx, auditlog.LevelError,
			fmt.Sprintf("storage failure banning %s", profile.VRChatName), actor.DiscordID)
		return nil, common.ErrWithCaller(err)
	}

	metricActions.WithLabelValues("ban").Inc()
	m.record(ctx, auditlog.LevelInfo,
		fmt.Sprintf("banned %s (vrchat: %s, discord: %s), reason: %s",
			profile.VRChatName, profile.VRChatID, profile.DiscordID, reason), actor.DiscordID)

	return m.Profiles.Resolve(ctx, profile.VRChatID)
}

// Unban lifts an active ban, clearing all four ban fields together.
func (m *Moderator) Unban(ctx context.Context, callerID, profileRef string) (*profiles.Profile, error) {
	actor, err := m.authorize(ctx, callerID, "unban", profileRef)
	if err != nil {
		return nil, err
	}

	profile, err := m.resolve(ctx, actor, "unban", profileRef)
	if err != nil {
		return nil, err
	}

	if !profile.IsBanned {
		m.record(ctx, auditlog.LevelWarning,
			fmt.Sprintf("rejected unban of %s: not banned", profile.VRChatName), actor.DiscordID)
		return nil, ErrNotBanned
	}

	err = m.Profiles.ClearBanFields(ctx, profile.ID, actor.DiscordID)
	if err != nil {
		m.record(ctx, auditlog.LevelError,
			fmt.Sprintf("storage failure unbanning %s", profile.VRChatName), actor.DiscordID)
		return nil, common.ErrWithCaller(err)
	}

	metricActions.WithLabelValues("unban").Inc()
	m.record(ctx, auditlog.LevelInfo,
		fmt.Sprintf("unbanned %s (vrchat: %s, discord: %s)",
			profile.VRChatName, profile.VRChatID, profile.DiscordID), actor.DiscordID)

	return m.Profiles.Resolve(ctx, profile.VRChatID)
}

// Verify marks a profile verified through a known, enabled method, from a
// registered server. verified_from records the server's internal identity,
// not the raw external id.
func (m *Moderator) Verify(ctx context.Context, callerID, profileRef string, methodID int64, sourceGuildID string) (*profiles.Profile, error) {
	actor, err := m.authorize(ctx, callerID, "verify", profileRef)
	if err != nil {
		return nil, err
	}

	method, err := m.Methods.GetMethod(ctx, methodID)
	if err != nil && !errors.Is(err, ErrMethodNotFound) {
		return nil, common.ErrWithCaller(err)
	}
	if method == nil || method.Disabled {
		return nil, common.NewValidationError("invalid verification method")
	}

	guild, err := m.Guilds.Get(ctx, sourceGuildID)
	if err != nil {
		return nil, err
	}

	profile, err := m.resolve(ctx, actor, "verify", profileRef)
	if err != nil {
		return nil, err
	}

	if profile.IsVerified {
		m.record(ctx, auditlog.LevelWarning,
			fmt.Sprintf("rejected verification of %s: already verified", profile.VRChatName), actor.DiscordID)
		return nil, ErrAlreadyVerified
	}

	err = m.Profiles.SetVerificationFields(ctx, profile.ID, methodID, guild.ID, actor.DiscordID, time.Now())
	if err != nil {
		m.record(ctx, auditlog.LevelError,
			fmt.Sprintf("storage failure verifying %s", profile.VRChatName), actor.DiscordID)
		return nil, common.ErrWithCaller(err)
	}

	metricActions.WithLabelValues("verify").Inc()
	m.record(ctx, auditlog.LevelInfo,
		fmt.Sprintf("verified %s (vrchat: %s, discord: %s) via %s from server %s",
			profile.VRChatName, profile.VRChatID, profile.DiscordID, method.Name, guild.Name), actor.DiscordID)

	return m.Profiles.Resolve(ctx, profile.VRChatID)
}

// Unverify reverses a verification, clearing all four verification fields
// together.
func (m *Moderator) Unverify(ctx context.Context, callerID, profileRef string) (*profiles.Profile, error) {
	actor, err := m.authorize(ctx, callerID, "unverify", profileRef)
	if err != nil {
		return nil, err
	}

	profile, err := m.resolve(ctx, actor, "unverify", profileRef)
	if err != nil {
		return nil, err
	}

	if !profile.IsVerified {
		m.record(ctx, auditlog.LevelWarning,
			fmt.Sprintf("rejected unverification of %s: not verified", profile.VRChatName), actor.DiscordID)
		return nil, ErrNotVerified
	}

	err = m.Profiles.ClearVerificationFields(ctx, profile.ID, actor.DiscordID)
	if err != nil {
		m.record(ctx, auditlog.LevelError,
			fmt.Sprintf("storage failure unverifying %s", profile.VRChatName), actor.DiscordID)
		return nil, common.ErrWithCaller(err)
	}

	metricActions.WithLabelValues("unverify").Inc()
	m.record(ctx, auditlog.LevelInfo,
		fmt.Sprintf("unverified %s (vrchat: %s, discord: %s)",
			profile.VRChatName, profile.VRChatID, profile.DiscordID), actor.DiscordID)

	return m.Profiles.Resolve(ctx, profile.VRChatID)
}

// authorize runs the gate and audits denials before any storage access.
func (m *Moderator) authorize(ctx context.Context, callerID, action, profileRef string) (*access.Staff, error) {
	actor, err := m.Gate.Authorize(ctx, callerID, access.RoleStaffOrAdmin)
	if err != nil {
		m.record(ctx, auditlog.LevelWarning,
			fmt.Sprintf("denied %s of %s: %s", action, profileRef, err.Error()), callerID)
		return nil, err
	}

	return actor, nil
}

func (m *Moderator) resolve(ctx context.Context, actor *access.Staff, action, profileRef string) (*profiles.Profile, error) {
	profile, err := m.Profiles.Resolve(ctx, profileRef)
	if errors.Is(err, profiles.ErrProfileNotFound) {
		m.record(ctx, auditlog.LevelWarning,
			fmt.Sprintf("rejected %s: no profile matches %s", action, profileRef), actor.DiscordID)
		return nil, err
	}
	if err != nil {
		return nil, common.ErrWithCaller(err)
	}

	return profile, nil
}

func (m *Moderator) record(ctx context.Context, level auditlog.Level, message string, actor string) {
	err := m.Audit.Record(ctx, level, message, actor)
	if err != nil {
		logger.WithError(err).Errorf("failed writing audit entry: [%s] %s", level, message)
	}
}
