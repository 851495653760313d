package settings

import "github.com/vicentefelipechile/enlacevrc/common"

var DBSchemas = []string{`
CREATE TABLE IF NOT EXISTS settings (
	key TEXT PRIMARY KEY,

	value_type SMALLINT NOT NULL,
	default_value TEXT NOT NULL,

	created_at TIMESTAMP WITH TIME ZONE NOT NULL,
	created_by TEXT NOT NULL
);
`, `
CREATE TABLE IF NOT EXISTS discord_settings (
	guild_id TEXT NOT NULL,
	setting_key TEXT NOT NULL,

	value TEXT NOT NULL,

	updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
	updated_by TEXT NOT NULL,

	PRIMARY KEY(guild_id, setting_key)
);
`, `
CREATE INDEX IF NOT EXISTS idx_discord_settings_guild_id ON discord_settings(guild_id);
`}

func init() {
	common.RegisterDBSchemas("settings", DBSchemas...)
}
