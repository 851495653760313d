package settings

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vicentefelipechile/enlacevrc/auditlog"
	"github.com/vicentefelipechile/enlacevrc/common"
)

var (
	metricFanoutWrites = promauto.NewCounter(prometheus.CounterOpts{
		Name: "enlacevrc_propagation_writes_total",
		Help: "Setting instance rows written by the propagation engine",
	})
	metricFanoutFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "enlacevrc_propagation_failures_total",
		Help: "Setting instance writes that failed during fan-out",
	})
)

// GuildDirectory is the slice of the guild registry the propagation engine
// needs: enumeration for fan-out, and the row/binding deletes that are part
// of the teardown cascade. Implemented by the guilds package.
type GuildDirectory interface {
	ListGuildIDs(ctx context.Context) ([]string, error)
	DeleteGuildRow(ctx context.Context, guildID string) error
	DeleteGuildBindings(ctx context.Context, guildID string) (deleted int, err error)
}

// Propagator keeps the setting catalog and the per guild instances from
// diverging. All fan-out is a sequential loop of short writes; individual
// failures are audited, never retried, and never roll back the parent
// operation.
type Propagator struct {
	Catalog CatalogStore
	Config  ConfigStore
	Guilds  GuildDirectory
	Audit   auditlog.Recorder
}

func NewPropagator(catalog CatalogStore, config ConfigStore, guilds GuildDirectory, audit auditlog.Recorder) *Propagator {
	return &Propagator{
		Catalog: catalog,
		Config:  config,
		Guilds:  guilds,
		Audit:   audit,
	}
}

// DefineResult reports the outcome of a DefineSetting call.
// EnumerationFailed means the server list could not even be read, which is
// not the same as there being zero servers.
type DefineResult struct {
	Key               string
	Applied           int
	TotalGuilds       int
	EnumerationFailed bool
}

// Message is the user facing summary: zero existing servers is an explicit,
// distinguishable success, not an error.
func (r *DefineResult) Message() string {
	if r.EnumerationFailed {
		return fmt.Sprintf("setting %s created, but applying it to existing servers failed", r.Key)
	}
	if r.TotalGuilds == 0 {
		return fmt.Sprintf("setting %s created, no servers to update", r.Key)
	}

	return fmt.Sprintf("setting %s created and applied to %d servers", r.Key, r.Applied)
}

// DefineSetting creates the definition and fans its default value out to
// every server registered at the time of propagation. The catalog entry is
// never rolled back: per guild failures leave a warning in the audit log
// and the operation still reports success.
func (p *Propagator) DefineSetting(ctx context.Context, key string, kind Kind, defaultEncoded string, actor string) (*DefineResult, error) {
	def, err := Define(ctx, p.Catalog, key, kind, defaultEncoded, actor)
	if err != nil {
		return nil, err
	}

	guildIDs, err := p.Guilds.ListGuildIDs(ctx)
	if err != nil {
		// the definition exists but we could not even enumerate servers;
		// surface that as a partial failure, the parent state is valid
		logger.WithError(err).Error("failed listing servers for setting fan-out")
		p.record(ctx, auditlog.LevelWarning,
			fmt.Sprintf("setting %s created but server fan-out failed entirely", key), actor)
		return &DefineResult{Key: key, EnumerationFailed: true}, nil
	}

	result := &DefineResult{Key: key, TotalGuilds: len(guildIDs)}

	encoded := def.Default.Encode()
	for _, guildID := range guildIDs {
		err := p.Config.Upsert(ctx, guildID, key, encoded, actor)
		if err != nil {
			metricFanoutFailures.Inc()
			logger.WithError(err).Errorf("failed applying setting %s to server %s", key, guildID)
			continue
		}

		metricFanoutWrites.Inc()
		result.Applied++
	}

	if result.Applied != result.TotalGuilds {
		p.record(ctx, auditlog.LevelWarning,
			fmt.Sprintf("setting %s applied to %d of %d servers", key, result.Applied, result.TotalGuilds), actor)
	} else {
		p.record(ctx, auditlog.LevelInfo, result.Message(), actor)
	}

	return result, nil
}

// InstantiateResult reports how a new guild was seeded with settings.
// SettingsAdded equals TotalSettings on full success. SeedingFailed means
// the catalog itself could not be read, which is not the same as the
// catalog being empty.
type InstantiateResult struct {
	GuildID       string
	SettingsAdded int
	TotalSettings int
	SeedingFailed bool
}

// InstantiateGuild seeds a freshly registered server with one entry per
// existing setting definition, each at its default value.
func (p *Propagator) InstantiateGuild(ctx context.Context, guildID string, actor string) (*InstantiateResult, error) {
	defs, err := p.Catalog.ListDefinitions(ctx)
	if err != nil {
		p.record(ctx, auditlog.LevelWarning,
			fmt.Sprintf("server %s registered but reading the setting catalog failed", guildID), actor)
		return &InstantiateResult{GuildID: guildID, SeedingFailed: true}, common.ErrWithCaller(err)
	}

	entries := make([]*Entry, 0, len(defs))
	for _, d := range defs {
		entries = append(entries, &Entry{
			GuildID:   guildID,
			Key:       d.Key,
			Value:     d.Default.Encode(),
			UpdatedBy: actor,
		})
	}

	written, err := p.Config.UpsertMany(ctx, guildID, entries)
	if err != nil {
		logger.WithError(err).Errorf("partial settings instantiation for server %s", guildID)
	}

	result := &InstantiateResult{
		GuildID:       guildID,
		SettingsAdded: written,
		TotalSettings: len(defs),
	}

	if written != len(defs) {
		p.record(ctx, auditlog.LevelWarning,
			fmt.Sprintf("server %s instantiated with %d of %d settings", guildID, written, len(defs)), actor)
	} else {
		p.record(ctx, auditlog.LevelInfo,
			fmt.Sprintf("server %s instantiated with %d settings", guildID, written), actor)
	}

	return result, nil
}

// TeardownGuild removes everything owned by a server, in a fixed order:
// setting entries first, then group bindings, then the server row. The
// order is for auditability; there are no storage level foreign keys. Each
// step is audited on its own so a partial cascade is diagnosable from the
// log, while the caller gets a single pass/fail.
func (p *Propagator) TeardownGuild(ctx context.Context, guildID string, actor string) error {
	deletedEntries, err := p.Config.DeleteAll(ctx, guildID)
	if err != nil {
		p.record(ctx, auditlog.LevelError,
			fmt.Sprintf("teardown of server %s failed deleting settings", guildID), actor)
		return common.ErrWithCaller(err)
	}
	p.record(ctx, auditlog.LevelInfo,
		fmt.Sprintf("teardown of server %s removed %d settings", guildID, deletedEntries), actor)

	deletedBindings, err := p.Guilds.DeleteGuildBindings(ctx, guildID)
	if err != nil {
		p.record(ctx, auditlog.LevelError,
			fmt.Sprintf("teardown of server %s failed deleting group bindings", guildID), actor)
		return common.ErrWithCaller(err)
	}
	p.record(ctx, auditlog.LevelInfo,
		fmt.Sprintf("teardown of server %s removed %d group bindings", guildID, deletedBindings), actor)

	err = p.Guilds.DeleteGuildRow(ctx, guildID)
	if err != nil {
		p.record(ctx, auditlog.LevelError,
			fmt.Sprintf("teardown of server %s failed deleting the server row", guildID), actor)
		return common.ErrWithCaller(err)
	}
	p.record(ctx, auditlog.LevelInfo,
		fmt.Sprintf("server %s deleted", guildID), actor)

	return nil
}

// record writes an audit entry, logging instead of failing the caller if
// the sink is down.
func (p *Propagator) record(ctx context.Context, level auditlog.Level, message string, actor string) {
	err := p.Audit.Record(ctx, level, message, actor)
	if err != nil {
		logger.WithError(err).Errorf("failed writing audit entry: [%s] %s", level, message)
	}
}
