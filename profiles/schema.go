package profiles

import "github.com/vicentefelipechile/enlacevrc/common"

var DBSchemas = []string{`
CREATE TABLE IF NOT EXISTS profiles (
	id BIGSERIAL PRIMARY KEY,

	discord_id TEXT NOT NULL UNIQUE,
	vrchat_id TEXT NOT NULL UNIQUE,
	vrchat_name TEXT NOT NULL,

	added_at TIMESTAMP WITH TIME ZONE NOT NULL,
	updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
	created_by TEXT NOT NULL,
	updated_by TEXT NOT NULL,

	-- the four ban fields are set and cleared together
	is_banned BOOLEAN NOT NULL DEFAULT FALSE,
	banned_reason TEXT,
	banned_by TEXT,
	banned_at TIMESTAMP WITH TIME ZONE,

	-- same pairing rule for the verification fields; verified_from is the
	-- internal id of the server the verification came from
	is_verified BOOLEAN NOT NULL DEFAULT FALSE,
	verification_id BIGINT,
	verified_from BIGINT,
	verified_by TEXT,
	verified_at TIMESTAMP WITH TIME ZONE
);
`, `
CREATE INDEX IF NOT EXISTS idx_profiles_is_banned ON profiles(is_banned);
`}

func init() {
	common.RegisterDBSchemas("profiles", DBSchemas...)
}
