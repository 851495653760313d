package settings

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"emperror.dev/errors"
	"github.com/vicentefelipechile/enlacevrc/auditlog"
)

// in-memory stand-ins for the SQL stores, enough to exercise the engine

type memCatalog struct {
	defs []*Definition
}

func (m *memCatalog) DefinitionExists(ctx context.Context, key string) (bool, error) {
	for _, d := range m.defs {
		if d.Key == key {
			return true, nil
		}
	}
	return false, nil
}

func (m *memCatalog) InsertDefinition(ctx context.Context, def *Definition) error {
	m.defs = append(m.defs, def)
	return nil
}

func (m *memCatalog) ListDefinitions(ctx context.Context) ([]*Definition, error) {
	return m.defs, nil
}

type memConfig struct {
	rows map[string]map[string]*Entry // guild id -> key -> entry

	failGuilds map[string]bool // guilds whose writes fail
}

func newMemConfig() *memConfig {
	return &memConfig{rows: make(map[string]map[string]*Entry)}
}

func (m *memConfig) Upsert(ctx context.Context, guildID, key, value, actor string) error {
	if m.failGuilds[guildID] {
		return errors.New("simulated storage failure")
	}

	if m.rows[guildID] == nil {
		m.rows[guildID] = make(map[string]*Entry)
	}
	m.rows[guildID][key] = &Entry{GuildID: guildID, Key: key, Value: value, UpdatedAt: time.Now(), UpdatedBy: actor}
	return nil
}

func (m *memConfig) UpsertMany(ctx context.Context, guildID string, entries []*Entry) (int, error) {
	written := 0
	var lastErr error
	for _, e := range entries {
		err := m.Upsert(ctx, guildID, e.Key, e.Value, e.UpdatedBy)
		if err != nil {
			lastErr = err
			continue
		}
		written++
	}
	return written, lastErr
}

func (m *memConfig) Set(ctx context.Context, guildID, key, value, actor string) error {
	if m.rows[guildID] == nil || m.rows[guildID][key] == nil {
		return ErrEntryNotFound
	}
	return m.Upsert(ctx, guildID, key, value, actor)
}

func (m *memConfig) Delete(ctx context.Context, guildID, key string) error {
	if m.rows[guildID] == nil || m.rows[guildID][key] == nil {
		return ErrEntryNotFound
	}
	delete(m.rows[guildID], key)
	return nil
}

func (m *memConfig) DeleteAll(ctx context.Context, guildID string) (int, error) {
	n := len(m.rows[guildID])
	delete(m.rows, guildID)
	return n, nil
}

func (m *memConfig) Get(ctx context.Context, guildID, key string) (*Entry, error) {
	if m.rows[guildID] == nil || m.rows[guildID][key] == nil {
		return nil, ErrEntryNotFound
	}
	return m.rows[guildID][key], nil
}

func (m *memConfig) ListForGuild(ctx context.Context, guildID string) ([]*Entry, error) {
	result := []*Entry{}
	for _, e := range m.rows[guildID] {
		result = append(result, e)
	}
	return result, nil
}

type memGuilds struct {
	ids      []string
	bindings map[string]int

	failList bool
}

func (m *memGuilds) ListGuildIDs(ctx context.Context) ([]string, error) {
	if m.failList {
		return nil, errors.New("simulated enumeration failure")
	}
	return m.ids, nil
}

func (m *memGuilds) DeleteGuildRow(ctx context.Context, guildID string) error {
	for i, id := range m.ids {
		if id == guildID {
			m.ids = append(m.ids[:i], m.ids[i+1:]...)
			return nil
		}
	}
	return errors.New("server not found")
}

func (m *memGuilds) DeleteGuildBindings(ctx context.Context, guildID string) (int, error) {
	n := m.bindings[guildID]
	delete(m.bindings, guildID)
	return n, nil
}

type auditEntry struct {
	Level   auditlog.Level
	Message string
	Actor   string
}

type memAudit struct {
	entries []auditEntry
}

func (m *memAudit) Record(ctx context.Context, level auditlog.Level, message string, actor string) error {
	m.entries = append(m.entries, auditEntry{level, message, actor})
	return nil
}

func (m *memAudit) countLevel(level auditlog.Level) int {
	n := 0
	for _, e := range m.entries {
		if e.Level == level {
			n++
		}
	}
	return n
}

func newTestPropagator(guildIDs ...string) (*Propagator, *memCatalog, *memConfig, *memGuilds, *memAudit) {
	catalog := &memCatalog{}
	config := newMemConfig()
	guilds := &memGuilds{ids: guildIDs, bindings: make(map[string]int)}
	audit := &memAudit{}
	return NewPropagator(catalog, config, guilds, audit), catalog, config, guilds, audit
}

func TestDefineSettingAppliedToAllServers(t *testing.T) {
	p, _, config, _, _ := newTestPropagator("g1", "g2")

	result, err := p.DefineSetting(context.Background(), "feature_flag", KindBoolean, "1", "admin_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Applied != 2 || result.TotalGuilds != 2 {
		t.Errorf("applied %d of %d, expected 2 of 2", result.Applied, result.TotalGuilds)
	}

	if !strings.Contains(result.Message(), "applied to 2 servers") {
		t.Errorf("unexpected message: %q", result.Message())
	}

	for _, g := range []string{"g1", "g2"} {
		entry, err := config.Get(context.Background(), g, "feature_flag")
		if err != nil {
			t.Errorf("server %s is missing the new setting", g)
			continue
		}
		if entry.Value != "1" {
			t.Errorf("server %s has value %q, expected \"1\"", g, entry.Value)
		}
	}
}

func TestDefineSettingNoServers(t *testing.T) {
	p, _, config, _, audit := newTestPropagator()

	result, err := p.DefineSetting(context.Background(), "lonely", KindString, "x", "admin_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.TotalGuilds != 0 || result.Applied != 0 {
		t.Errorf("expected empty fan-out, got %d of %d", result.Applied, result.TotalGuilds)
	}

	if !strings.Contains(result.Message(), "no servers to update") {
		t.Errorf("unexpected message: %q", result.Message())
	}

	if len(config.rows) != 0 {
		t.Errorf("expected no entries, found %d servers with rows", len(config.rows))
	}

	if audit.countLevel(auditlog.LevelWarning) != 0 {
		t.Error("an empty fan-out is a success and should not audit a warning")
	}
}

func TestDefineSettingEnumerationFailure(t *testing.T) {
	p, catalog, _, guilds, audit := newTestPropagator("g1", "g2")
	guilds.failList = true

	result, err := p.DefineSetting(context.Background(), "orphaned", KindString, "v", "admin_1")
	if err != nil {
		t.Fatalf("an enumeration failure should not fail the definition: %v", err)
	}

	if !result.EnumerationFailed {
		t.Error("result does not flag the failed server enumeration")
	}

	// distinct from the genuine zero-server success
	if strings.Contains(result.Message(), "no servers to update") {
		t.Errorf("enumeration failure reported as a zero-server success: %q", result.Message())
	}
	if !strings.Contains(result.Message(), "failed") {
		t.Errorf("unexpected message: %q", result.Message())
	}

	if audit.countLevel(auditlog.LevelWarning) != 1 {
		t.Errorf("expected one warning audit entry, got %d", audit.countLevel(auditlog.LevelWarning))
	}

	exists, _ := catalog.DefinitionExists(context.Background(), "orphaned")
	if !exists {
		t.Error("catalog entry was rolled back after the enumeration failure")
	}
}

func TestDefineSettingDuplicateKey(t *testing.T) {
	p, _, _, _, _ := newTestPropagator("g1")

	_, err := p.DefineSetting(context.Background(), "dup", KindString, "a", "admin_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = p.DefineSetting(context.Background(), "dup", KindString, "b", "admin_1")
	if !errors.Is(err, ErrSettingExists) {
		t.Errorf("expected ErrSettingExists, got %v", err)
	}
}

func TestDefineSettingPartialFailureAuditsWarning(t *testing.T) {
	p, catalog, config, _, audit := newTestPropagator("g1", "g2", "g3")
	config.failGuilds = map[string]bool{"g2": true}

	result, err := p.DefineSetting(context.Background(), "flaky", KindNumeric, "5", "admin_1")
	if err != nil {
		t.Fatalf("partial fan-out failure should not fail the operation: %v", err)
	}

	if result.Applied != 2 || result.TotalGuilds != 3 {
		t.Errorf("applied %d of %d, expected 2 of 3", result.Applied, result.TotalGuilds)
	}

	if audit.countLevel(auditlog.LevelWarning) != 1 {
		t.Errorf("expected one warning audit entry, got %d", audit.countLevel(auditlog.LevelWarning))
	}

	// the catalog entry stays, fan-out failures never roll it back
	exists, _ := catalog.DefinitionExists(context.Background(), "flaky")
	if !exists {
		t.Error("catalog entry was rolled back after partial fan-out failure")
	}
}

func TestInstantiateGuildSeedsAllDefaults(t *testing.T) {
	p, _, config, _, _ := newTestPropagator("g1")

	for _, key := range []string{"a", "b"} {
		_, err := p.DefineSetting(context.Background(), key, KindBoolean, "0", "admin_1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	result, err := p.InstantiateGuild(context.Background(), "g2", "admin_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.SettingsAdded != 2 || result.TotalSettings != 2 {
		t.Errorf("settings_added=%d total_settings=%d, expected 2 and 2", result.SettingsAdded, result.TotalSettings)
	}

	entries, _ := config.ListForGuild(context.Background(), "g2")
	if len(entries) != 2 {
		t.Errorf("server g2 has %d entries, expected 2", len(entries))
	}
}

// every (guild, setting) pair that ever existed ends up with exactly one
// entry, regardless of the order settings and servers were added in
func TestPropagationConsistency(t *testing.T) {
	p, _, config, guilds, _ := newTestPropagator()

	addGuild := func(id string) {
		guilds.ids = append(guilds.ids, id)
		if _, err := p.InstantiateGuild(context.Background(), id, "admin_1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	addSetting := func(key string) {
		if _, err := p.DefineSetting(context.Background(), key, KindString, "v", "admin_1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	addSetting("s1")
	addGuild("g1")
	addSetting("s2")
	addGuild("g2")
	addGuild("g3")
	addSetting("s3")

	for _, g := range []string{"g1", "g2", "g3"} {
		entries, _ := config.ListForGuild(context.Background(), g)
		if len(entries) != 3 {
			t.Errorf("server %s has %d entries, expected 3", g, len(entries))
		}

		seen := make(map[string]int)
		for _, e := range entries {
			seen[e.Key]++
		}
		for _, s := range []string{"s1", "s2", "s3"} {
			if seen[s] != 1 {
				t.Errorf("server %s has %d entries for %s, expected exactly 1", g, seen[s], s)
			}
		}
	}
}

func TestTeardownGuildCascade(t *testing.T) {
	p, _, config, guilds, audit := newTestPropagator("g1", "g2")
	guilds.bindings["g1"] = 2
	guilds.bindings["g2"] = 1

	for i := 0; i < 3; i++ {
		if _, err := p.DefineSetting(context.Background(), fmt.Sprintf("s%d", i), KindString, "v", "admin_1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	audit.entries = nil

	err := p.TeardownGuild(context.Background(), "g1", "admin_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rows, _ := config.ListForGuild(context.Background(), "g1"); len(rows) != 0 {
		t.Errorf("server g1 still has %d setting entries", len(rows))
	}
	if guilds.bindings["g1"] != 0 {
		t.Error("server g1 still has group bindings")
	}
	for _, id := range guilds.ids {
		if id == "g1" {
			t.Error("server row g1 still present")
		}
	}

	// the untouched server keeps everything
	if rows, _ := config.ListForGuild(context.Background(), "g2"); len(rows) != 3 {
		t.Errorf("server g2 lost entries, has %d of 3", len(rows))
	}
	if guilds.bindings["g2"] != 1 {
		t.Error("server g2 lost its group binding")
	}

	// three independently audited steps
	if len(audit.entries) != 3 {
		t.Errorf("expected 3 audit entries for the cascade, got %d", len(audit.entries))
	}
}
