package guilds

import (
	"context"
	"database/sql"

	"github.com/vicentefelipechile/enlacevrc/common"
)

// Store is what the registry needs from storage. SQLStore implements it,
// and also satisfies settings.GuildDirectory so the propagation engine can
// enumerate servers and run the teardown cascade.
type Store interface {
	Insert(ctx context.Context, g *Guild) error
	Get(ctx context.Context, guildID string) (*Guild, error)
	Exists(ctx context.Context, guildID string) (bool, error)
	List(ctx context.Context) ([]*Guild, error)

	InsertBinding(ctx context.Context, b *GroupBinding) error
	GetBinding(ctx context.Context, groupID, guildID string) (*GroupBinding, error)
	ListBindings(ctx context.Context, guildID string) ([]*GroupBinding, error)
	DeleteBinding(ctx context.Context, groupID, guildID string) error
}

type SQLStore struct{}

func NewSQLStore() *SQLStore {
	return &SQLStore{}
}

func (s *SQLStore) Insert(ctx context.Context, g *Guild) error {
	const q = `INSERT INTO discord_servers (guild_id, name, added_at, added_by)
	VALUES (:guild_id, :name, :added_at, :added_by) RETURNING id;`

	rows, err := common.SQLX.NamedQueryContext(ctx, q, g)
	if err != nil {
		return err
	}
	defer rows.Close()

	if rows.Next() {
		err = rows.Scan(&g.ID)
	}
	return err
}

func (s *SQLStore) Get(ctx context.Context, guildID string) (*Guild, error) {
	var g Guild
	err := common.SQLX.GetContext(ctx, &g, "SELECT * FROM discord_servers WHERE guild_id = $1", guildID)
	if err == sql.ErrNoRows {
		return nil, ErrGuildNotFound
	}
	if err != nil {
		return nil, err
	}

	return &g, nil
}

func (s *SQLStore) Exists(ctx context.Context, guildID string) (bool, error) {
	var exists bool
	err := common.SQLX.GetContext(ctx, &exists,
		"SELECT EXISTS (SELECT 1 FROM discord_servers WHERE guild_id = $1)", guildID)
	return exists, err
}

func (s *SQLStore) List(ctx context.Context) ([]*Guild, error) {
	result := []*Guild{}
	err := common.SQLX.SelectContext(ctx, &result, "SELECT * FROM discord_servers ORDER BY added_at")
	return result, err
}

// ListGuildIDs implements settings.GuildDirectory.
func (s *SQLStore) ListGuildIDs(ctx context.Context) ([]string, error) {
	result := []string{}
	err := common.SQLX.SelectContext(ctx, &result, "SELECT guild_id FROM discord_servers ORDER BY added_at")
	return result, err
}

// DeleteGuildRow implements settings.GuildDirectory.
func (s *SQLStore) DeleteGuildRow(ctx context.Context, guildID string) error {
	result, err := common.SQLX.ExecContext(ctx, "DELETE FROM discord_servers WHERE guild_id = $1", guildID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrGuildNotFound
	}

	return nil
}

// DeleteGuildBindings implements settings.GuildDirectory.
func (s *SQLStore) DeleteGuildBindings(ctx context.Context, guildID string) (int, error) {
	result, err := common.SQLX.ExecContext(ctx, "DELETE FROM vrchat_groups WHERE guild_id = $1", guildID)
	if err != nil {
		return 0, err
	}

	rows, err := result.RowsAffected()
	return int(rows), err
}

func (s *SQLStore) InsertBinding(ctx context.Context, b *GroupBinding) error {
	const q = `INSERT INTO vrchat_groups (group_id, guild_id, name, added_at, added_by)
	VALUES (:group_id, :guild_id, :name, :added_at, :added_by);`

	_, err := common.SQLX.NamedExecContext(ctx, q, b)
	return err
}

func (s *SQLStore) GetBinding(ctx context.Context, groupID, guildID string) (*GroupBinding, error) {
	var b GroupBinding
	err := common.SQLX.GetContext(ctx, &b,
		"SELECT * FROM vrchat_groups WHERE group_id = $1 AND guild_id = $2", groupID, guildID)
	if err == sql.ErrNoRows {
		return nil, ErrBindingNotFound
	}
	if err != nil {
		return nil, err
	}

	return &b, nil
}

func (s *SQLStore) ListBindings(ctx context.Context, guildID string) ([]*GroupBinding, error) {
	result := []*GroupBinding{}
	err := common.SQLX.SelectContext(ctx, &result,
		"SELECT * FROM vrchat_groups WHERE guild_id = $1 ORDER BY added_at", guildID)
	return result, err
}

func (s *SQLStore) DeleteBinding(ctx context.Context, groupID, guildID string) error {
	result, err := common.SQLX.ExecContext(ctx,
		"DELETE FROM vrchat_groups WHERE group_id = $1 AND guild_id = $2", groupID, guildID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrBindingNotFound
	}

	return nil
}
