// Package settings holds the global setting catalog, the per guild
// configuration store and the propagation engine that keeps the two in sync
// as settings and servers are added or removed.
package settings

import (
	"context"
	"time"

	"emperror.dev/errors"
	"github.com/vicentefelipechile/enlacevrc/common"
)

var logger = common.GetFixedPrefixLogger("settings")

var (
	// ErrSettingExists is the conflict returned when defining a setting
	// whose key is already taken. Duplicate definitions are never merged.
	ErrSettingExists = errors.New("setting already exists")

	// ErrEntryNotFound means the (guild, setting) instance row is missing.
	ErrEntryNotFound = errors.New("server setting not found")
)

// Definition is a global setting definition. Immutable once created; there
// is deliberately no update or delete operation.
type Definition struct {
	Key     string
	Kind    Kind
	Default Value

	CreatedAt time.Time
	CreatedBy string
}

// Entry is one guild's concrete value for one setting definition.
type Entry struct {
	GuildID string
	Key     string
	Value   string

	UpdatedAt time.Time
	UpdatedBy string
}

// CatalogStore is the storage behind the setting catalog.
type CatalogStore interface {
	DefinitionExists(ctx context.Context, key string) (bool, error)
	InsertDefinition(ctx context.Context, def *Definition) error
	ListDefinitions(ctx context.Context) ([]*Definition, error)
}

// ConfigStore is the storage for per guild setting instances. UpsertMany and
// Upsert are last-write-wins on conflict, so a race between the new-setting
// and new-guild triggers settles on a full, consistent set of rows either
// way.
type ConfigStore interface {
	Upsert(ctx context.Context, guildID, key, value, actor string) error
	UpsertMany(ctx context.Context, guildID string, entries []*Entry) (written int, err error)
	Set(ctx context.Context, guildID, key, value, actor string) error
	Delete(ctx context.Context, guildID, key string) error
	DeleteAll(ctx context.Context, guildID string) (deleted int, err error)
	Get(ctx context.Context, guildID, key string) (*Entry, error)
	ListForGuild(ctx context.Context, guildID string) ([]*Entry, error)
}

// Define validates and inserts a new setting definition. The existence check
// runs first so the caller gets ErrSettingExists rather than a storage-level
// constraint error.
func Define(ctx context.Context, catalog CatalogStore, key string, kind Kind, defaultEncoded string, actor string) (*Definition, error) {
	if key == "" {
		return nil, common.MissingField("key")
	}

	def, err := ParseValue(kind, defaultEncoded)
	if err != nil {
		return nil, err
	}

	exists, err := catalog.DefinitionExists(ctx, key)
	if err != nil {
		return nil, common.ErrWithCaller(err)
	}
	if exists {
		return nil, ErrSettingExists
	}

	definition := &Definition{
		Key:       key,
		Kind:      kind,
		Default:   def,
		CreatedAt: time.Now(),
		CreatedBy: actor,
	}

	err = catalog.InsertDefinition(ctx, definition)
	if err != nil {
		return nil, common.ErrWithCaller(err)
	}

	return definition, nil
}
