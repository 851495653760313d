package access

import "github.com/vicentefelipechile/enlacevrc/common"

var DBSchemas = []string{`
CREATE TABLE IF NOT EXISTS staff (
	discord_id TEXT PRIMARY KEY,
	name TEXT NOT NULL,

	added_at TIMESTAMP WITH TIME ZONE NOT NULL,
	added_by TEXT NOT NULL
);
`, `
CREATE TABLE IF NOT EXISTS bot_admins (
	discord_id TEXT PRIMARY KEY,
	name TEXT NOT NULL,

	added_at TIMESTAMP WITH TIME ZONE NOT NULL,
	added_by TEXT NOT NULL
);
`}

func init() {
	common.RegisterDBSchemas("access", DBSchemas...)
}
