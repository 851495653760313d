package guilds

import "github.com/vicentefelipechile/enlacevrc/common"

var DBSchemas = []string{`
CREATE TABLE IF NOT EXISTS discord_servers (
	id BIGSERIAL PRIMARY KEY,

	guild_id TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,

	added_at TIMESTAMP WITH TIME ZONE NOT NULL,
	added_by TEXT NOT NULL
);
`, `
CREATE TABLE IF NOT EXISTS vrchat_groups (
	group_id TEXT NOT NULL,
	guild_id TEXT NOT NULL,

	name TEXT NOT NULL,

	added_at TIMESTAMP WITH TIME ZONE NOT NULL,
	added_by TEXT NOT NULL,

	PRIMARY KEY(group_id, guild_id)
);
`, `
CREATE INDEX IF NOT EXISTS idx_vrchat_groups_guild_id ON vrchat_groups(guild_id);
`}

func init() {
	common.RegisterDBSchemas("guilds", DBSchemas...)
}
