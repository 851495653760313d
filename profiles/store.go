package profiles

import (
	"context"
	"database/sql"
	"time"

	"github.com/vicentefelipechile/enlacevrc/common"
)

// Store is the storage surface the moderation state machine runs on. The
// field group writes are single UPDATE statements, so each group is set or
// cleared atomically.
type Store interface {
	Resolve(ctx context.Context, externalID string) (*Profile, error)
	Insert(ctx context.Context, p *Profile) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit int) ([]*Profile, error)

	SetBanFields(ctx context.Context, id int64, reason, by string, at time.Time) error
	ClearBanFields(ctx context.Context, id int64, actor string) error
	SetVerificationFields(ctx context.Context, id int64, methodID, fromGuild int64, by string, at time.Time) error
	ClearVerificationFields(ctx context.Context, id int64, actor string) error
}

type SQLStore struct{}

func NewSQLStore() *SQLStore {
	return &SQLStore{}
}

// Resolve tries the vrchat id first, then the discord id, and reports
// ErrProfileNotFound only after both missed. Every operation that accepts
// "either id" goes through here; the two-step lookup is not duplicated
// anywhere else.
func (s *SQLStore) Resolve(ctx context.Context, externalID string) (*Profile, error) {
	var p Profile
	err := common.SQLX.GetContext(ctx, &p, "SELECT * FROM profiles WHERE vrchat_id = $1", externalID)
	if err == nil {
		return &p, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	err = common.SQLX.GetContext(ctx, &p, "SELECT * FROM profiles WHERE discord_id = $1", externalID)
	if err == sql.ErrNoRows {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (s *SQLStore) Insert(ctx context.Context, p *Profile) error {
	const q = `INSERT INTO profiles (discord_id, vrchat_id, vrchat_name, added_at, updated_at, created_by, updated_by)
	VALUES (:discord_id, :vrchat_id, :vrchat_name, :added_at, :updated_at, :created_by, :updated_by) RETURNING id;`

	rows, err := common.SQLX.NamedQueryContext(ctx, q, p)
	if err != nil {
		return err
	}
	defer rows.Close()

	if rows.Next() {
		err = rows.Scan(&p.ID)
	}
	return err
}

func (s *SQLStore) Delete(ctx context.Context, id int64) error {
	result, err := common.SQLX.ExecContext(ctx, "DELETE FROM profiles WHERE id = $1", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrProfileNotFound
	}

	return nil
}

func (s *SQLStore) List(ctx context.Context, limit int) ([]*Profile, error) {
	result := []*Profile{}
	err := common.SQLX.SelectContext(ctx, &result, "SELECT * FROM profiles ORDER BY id LIMIT $1", limit)
	return result, err
}

func (s *SQLStore) SetBanFields(ctx context.Context, id int64, reason, by string, at time.Time) error {
	const q = `UPDATE profiles
	SET is_banned = TRUE, banned_reason = $2, banned_by = $3, banned_at = $4,
	    updated_at = $4, updated_by = $3
	WHERE id = $1;`

	return execOne(ctx, q, id, reason, by, at)
}

func (s *SQLStore) ClearBanFields(ctx context.Context, id int64, actor string) error {
	const q = `UPDATE profiles
	SET is_banned = FALSE, banned_reason = NULL, banned_by = NULL, banned_at = NULL,
	    updated_at = $2, updated_by = $3
	WHERE id = $1;`

	return execOne(ctx, q, id, time.Now(), actor)
}

func (s *SQLStore) SetVerificationFields(ctx context.Context, id int64, methodID, fromGuild int64, by string, at time.Time) error {
	const q = `UPDATE profiles
	SET is_verified = TRUE, verification_id = $2, verified_from = $3, verified_by = $4, verified_at = $5,
	    updated_at = $5, updated_by = $4
	WHERE id = $1;`

	return execOne(ctx, q, id, methodID, fromGuild, by, at)
}

func (s *SQLStore) ClearVerificationFields(ctx context.Context, id int64, actor string) error {
	const q = `UPDATE profiles
	SET is_verified = FALSE, verification_id = NULL, verified_from = NULL, verified_by = NULL, verified_at = NULL,
	    updated_at = $2, updated_by = $3
	WHERE id = $1;`

	return execOne(ctx, q, id, time.Now(), actor)
}

func execOne(ctx context.Context, query string, args ...interface{}) error {
	result, err := common.SQLX.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrProfileNotFound
	}

	return nil
}
