package guilds

import (
	"time"

	"emperror.dev/errors"
)

var (
	ErrGuildExists   = errors.New("server already registered")
	ErrGuildNotFound = errors.New("server not found")

	ErrBindingExists   = errors.New("group binding already exists")
	ErrBindingNotFound = errors.New("group binding not found")
)

// Guild is a Discord server registered with the system. ID is the internal
// identity; GuildID is the external Discord snowflake.
type Guild struct {
	ID int64 `db:"id"`

	GuildID string `db:"guild_id"`
	Name    string `db:"name"`

	AddedAt time.Time `db:"added_at"`
	AddedBy string    `db:"added_by"`
}

// GroupBinding links a VRChat group to a server. Bindings live and die with
// their server: deleting a server tears them down as part of the cascade.
type GroupBinding struct {
	GroupID string `db:"group_id"`
	GuildID string `db:"guild_id"`

	Name string `db:"name"`

	AddedAt time.Time `db:"added_at"`
	AddedBy string    `db:"added_by"`
}
