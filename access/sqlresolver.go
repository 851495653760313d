package access

import (
	"context"
	"database/sql"

	"github.com/mediocregopher/radix/v3"
	"github.com/vicentefelipechile/enlacevrc/common"
)

var logger = common.GetFixedPrefixLogger("access")

// role membership barely changes, cache hits for a minute
const cacheTTLSeconds = 60

// SQLResolver resolves roles against the staff and bot_admins tables, with
// a short redis cache in front since role lookups run on every request.
type SQLResolver struct{}

func NewSQLResolver() *SQLResolver {
	return &SQLResolver{}
}

func (r *SQLResolver) ResolveAdmin(ctx context.Context, externalID string) (*Staff, error) {
	return r.resolve(ctx, "bot_admins", "access:admin:", externalID)
}

func (r *SQLResolver) ResolveStaff(ctx context.Context, externalID string) (*Staff, error) {
	return r.resolve(ctx, "staff", "access:staff:", externalID)
}

func (r *SQLResolver) resolve(ctx context.Context, table string, cachePrefix string, externalID string) (*Staff, error) {
	if cached := cacheGet(cachePrefix + externalID); cached != "" {
		return &Staff{DiscordID: externalID, Name: cached}, nil
	}

	var row struct {
		DiscordID string `db:"discord_id"`
		Name      string `db:"name"`
	}

	err := common.SQLX.GetContext(ctx, &row,
		"SELECT discord_id, name FROM "+table+" WHERE discord_id = $1", externalID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	cacheSet(cachePrefix+row.DiscordID, row.Name)

	return &Staff{DiscordID: row.DiscordID, Name: row.Name}, nil
}

func cacheGet(key string) string {
	var v string
	err := common.RedisPool.Do(radix.Cmd(&v, "GET", key))
	if err != nil {
		logger.WithError(err).Warn("failed reading role cache")
		return ""
	}

	return v
}

func cacheSet(key, value string) {
	err := common.RedisPool.Do(radix.FlatCmd(nil, "SETEX", key, cacheTTLSeconds, value))
	if err != nil {
		logger.WithError(err).Warn("failed writing role cache")
	}
}
