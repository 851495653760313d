// Package guilds is the registry of Discord servers and their VRChat group
// bindings. Registering and deleting a server goes through the propagation
// engine so the per server setting instances never diverge from the global
// catalog.
package guilds

import (
	"context"
	"time"

	"github.com/vicentefelipechile/enlacevrc/common"
	"github.com/vicentefelipechile/enlacevrc/settings"
)

var logger = common.GetFixedPrefixLogger("guilds")

type Registry struct {
	Store      Store
	Propagator *settings.Propagator
}

func NewRegistry(store Store, propagator *settings.Propagator) *Registry {
	return &Registry{Store: store, Propagator: propagator}
}

// CreateResult carries the new server alongside how it was seeded with
// settings. SettingsAdded equals TotalSettings on full success;
// SeedingFailed means the catalog could not be read at all, as opposed to
// there being no settings defined.
type CreateResult struct {
	Guild         *Guild
	SettingsAdded int
	TotalSettings int
	SeedingFailed bool
}

// Create registers a server and instantiates every existing setting
// definition on it at the default value.
func (r *Registry) Create(ctx context.Context, guildID, name, actor string) (*CreateResult, error) {
	if guildID == "" {
		return nil, common.MissingField("guild_id")
	}
	if name == "" {
		return nil, common.MissingField("name")
	}

	exists, err := r.Store.Exists(ctx, guildID)
	if err != nil {
		return nil, common.ErrWithCaller(err)
	}
	if exists {
		return nil, ErrGuildExists
	}

	guild := &Guild{
		GuildID: guildID,
		Name:    name,
		AddedAt: time.Now(),
		AddedBy: actor,
	}

	err = r.Store.Insert(ctx, guild)
	if err != nil {
		return nil, common.ErrWithCaller(err)
	}

	seeded, err := r.Propagator.InstantiateGuild(ctx, guildID, actor)
	if err != nil {
		// the server row is valid on its own; report the seeding failure
		// but don't undo the registration
		logger.WithError(err).Errorf("failed instantiating settings for new server %s", guildID)
	}

	result := &CreateResult{Guild: guild}
	if seeded != nil {
		result.SettingsAdded = seeded.SettingsAdded
		result.TotalSettings = seeded.TotalSettings
		result.SeedingFailed = seeded.SeedingFailed
	}

	return result, nil
}

// Delete removes a server and everything it owns via the teardown cascade.
func (r *Registry) Delete(ctx context.Context, guildID, actor string) error {
	exists, err := r.Store.Exists(ctx, guildID)
	if err != nil {
		return common.ErrWithCaller(err)
	}
	if !exists {
		return ErrGuildNotFound
	}

	return r.Propagator.TeardownGuild(ctx, guildID, actor)
}

// AddGroupBinding binds a VRChat group to a registered server.
func (r *Registry) AddGroupBinding(ctx context.Context, guildID, groupID, name, actor string) (*GroupBinding, error) {
	if groupID == "" {
		return nil, common.MissingField("group_id")
	}

	exists, err := r.Store.Exists(ctx, guildID)
	if err != nil {
		return nil, common.ErrWithCaller(err)
	}
	if !exists {
		return nil, ErrGuildNotFound
	}

	_, err = r.Store.GetBinding(ctx, groupID, guildID)
	if err == nil {
		return nil, ErrBindingExists
	}
	if err != ErrBindingNotFound {
		return nil, common.ErrWithCaller(err)
	}

	binding := &GroupBinding{
		GroupID: groupID,
		GuildID: guildID,
		Name:    name,
		AddedAt: time.Now(),
		AddedBy: actor,
	}

	err = r.Store.InsertBinding(ctx, binding)
	if err != nil {
		return nil, common.ErrWithCaller(err)
	}

	return binding, nil
}

// RemoveGroupBinding unbinds a single VRChat group from a server.
func (r *Registry) RemoveGroupBinding(ctx context.Context, guildID, groupID string) error {
	return r.Store.DeleteBinding(ctx, groupID, guildID)
}
