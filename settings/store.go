package settings

import (
	"context"
	"database/sql"
	"time"

	"github.com/vicentefelipechile/enlacevrc/common"
)

type rawDefinition struct {
	Key          string    `db:"key"`
	ValueType    uint8     `db:"value_type"`
	DefaultValue string    `db:"default_value"`
	CreatedAt    time.Time `db:"created_at"`
	CreatedBy    string    `db:"created_by"`
}

type rawEntry struct {
	GuildID    string    `db:"guild_id"`
	SettingKey string    `db:"setting_key"`
	Value      string    `db:"value"`
	UpdatedAt  time.Time `db:"updated_at"`
	UpdatedBy  string    `db:"updated_by"`
}

// SQLCatalog implements CatalogStore on the settings table.
type SQLCatalog struct{}

func NewSQLCatalog() *SQLCatalog {
	return &SQLCatalog{}
}

func (c *SQLCatalog) DefinitionExists(ctx context.Context, key string) (bool, error) {
	var exists bool
	err := common.SQLX.GetContext(ctx, &exists,
		"SELECT EXISTS (SELECT 1 FROM settings WHERE key = $1)", key)
	return exists, err
}

func (c *SQLCatalog) InsertDefinition(ctx context.Context, def *Definition) error {
	const q = `INSERT INTO settings (key, value_type, default_value, created_at, created_by)
	VALUES (:key, :value_type, :default_value, :created_at, :created_by);`

	_, err := common.SQLX.NamedExecContext(ctx, q, &rawDefinition{
		Key:          def.Key,
		ValueType:    uint8(def.Kind),
		DefaultValue: def.Default.Encode(),
		CreatedAt:    def.CreatedAt,
		CreatedBy:    def.CreatedBy,
	})
	return err
}

func (c *SQLCatalog) ListDefinitions(ctx context.Context) ([]*Definition, error) {
	rows := []rawDefinition{}
	err := common.SQLX.SelectContext(ctx, &rows, "SELECT * FROM settings ORDER BY key")
	if err != nil {
		return nil, err
	}

	result := make([]*Definition, 0, len(rows))
	for _, v := range rows {
		def, err := ParseValue(Kind(v.ValueType), v.DefaultValue)
		if err != nil {
			// a row written before stricter encoding checks, keep it usable
			logger.WithError(err).Warnf("setting %s has an undecodable default, treating as string", v.Key)
			def = Value{Kind: KindString, Str: v.DefaultValue}
		}

		result = append(result, &Definition{
			Key:       v.Key,
			Kind:      Kind(v.ValueType),
			Default:   def,
			CreatedAt: v.CreatedAt,
			CreatedBy: v.CreatedBy,
		})
	}

	return result, nil
}

// SQLConfigStore implements ConfigStore on the discord_settings table.
type SQLConfigStore struct{}

func NewSQLConfigStore() *SQLConfigStore {
	return &SQLConfigStore{}
}

const upsertQuery = `INSERT INTO discord_settings (guild_id, setting_key, value, updated_at, updated_by)
VALUES (:guild_id, :setting_key, :value, :updated_at, :updated_by)
ON CONFLICT (guild_id, setting_key) DO UPDATE
SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at, updated_by = EXCLUDED.updated_by;`

func (s *SQLConfigStore) Upsert(ctx context.Context, guildID, key, value, actor string) error {
	_, err := common.SQLX.NamedExecContext(ctx, upsertQuery, &rawEntry{
		GuildID:    guildID,
		SettingKey: key,
		Value:      value,
		UpdatedAt:  time.Now(),
		UpdatedBy:  actor,
	})
	return err
}

// UpsertMany writes the entries one by one and reports how many actually
// made it. It deliberately does not wrap the loop in a transaction; the
// propagation engine's contract is "report the actual written count", not
// all-or-nothing.
func (s *SQLConfigStore) UpsertMany(ctx context.Context, guildID string, entries []*Entry) (int, error) {
	written := 0
	var lastErr error
	for _, e := range entries {
		err := s.Upsert(ctx, guildID, e.Key, e.Value, e.UpdatedBy)
		if err != nil {
			lastErr = err
			logger.WithError(err).Errorf("failed instantiating setting %s for server %s", e.Key, guildID)
			continue
		}

		written++
	}

	return written, lastErr
}

func (s *SQLConfigStore) Set(ctx context.Context, guildID, key, value, actor string) error {
	const q = `UPDATE discord_settings SET value = $3, updated_at = $4, updated_by = $5
	WHERE guild_id = $1 AND setting_key = $2;`

	result, err := common.SQLX.ExecContext(ctx, q, guildID, key, value, time.Now(), actor)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrEntryNotFound
	}

	return nil
}

func (s *SQLConfigStore) Delete(ctx context.Context, guildID, key string) error {
	result, err := common.SQLX.ExecContext(ctx,
		"DELETE FROM discord_settings WHERE guild_id = $1 AND setting_key = $2", guildID, key)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrEntryNotFound
	}

	return nil
}

func (s *SQLConfigStore) DeleteAll(ctx context.Context, guildID string) (int, error) {
	result, err := common.SQLX.ExecContext(ctx,
		"DELETE FROM discord_settings WHERE guild_id = $1", guildID)
	if err != nil {
		return 0, err
	}

	rows, err := result.RowsAffected()
	return int(rows), err
}

func (s *SQLConfigStore) Get(ctx context.Context, guildID, key string) (*Entry, error) {
	var row rawEntry
	err := common.SQLX.GetContext(ctx, &row,
		"SELECT * FROM discord_settings WHERE guild_id = $1 AND setting_key = $2", guildID, key)
	if err == sql.ErrNoRows {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, err
	}

	return row.toEntry(), nil
}

func (s *SQLConfigStore) ListForGuild(ctx context.Context, guildID string) ([]*Entry, error) {
	rows := []rawEntry{}
	err := common.SQLX.SelectContext(ctx, &rows,
		"SELECT * FROM discord_settings WHERE guild_id = $1 ORDER BY setting_key", guildID)
	if err != nil {
		return nil, err
	}

	result := make([]*Entry, 0, len(rows))
	for _, v := range rows {
		result = append(result, v.toEntry())
	}

	return result, nil
}

func (r *rawEntry) toEntry() *Entry {
	return &Entry{
		GuildID:   r.GuildID,
		Key:       r.SettingKey,
		Value:     r.Value,
		UpdatedAt: r.UpdatedAt,
		UpdatedBy: r.UpdatedBy,
	}
}
