package moderation

import (
	"context"
	"database/sql"

	"emperror.dev/errors"
	"github.com/vicentefelipechile/enlacevrc/common"
)

var DBSchemas = []string{`
CREATE TABLE IF NOT EXISTS verification_methods (
	id BIGSERIAL PRIMARY KEY,

	name TEXT NOT NULL,
	disabled BOOLEAN NOT NULL DEFAULT FALSE
);
`}

func init() {
	common.RegisterDBSchemas("moderation", DBSchemas...)
}

var ErrMethodNotFound = errors.New("verification method not found")

// VerificationMethod is one of the known ways a profile can get verified.
// Disabled methods stay in the table for old rows to reference but are
// rejected for new verifications.
type VerificationMethod struct {
	ID       int64  `db:"id"`
	Name     string `db:"name"`
	Disabled bool   `db:"disabled"`
}

// MethodStore looks verification methods up by id.
type MethodStore interface {
	GetMethod(ctx context.Context, id int64) (*VerificationMethod, error)
}

type SQLMethodStore struct{}

func NewSQLMethodStore() *SQLMethodStore {
	return &SQLMethodStore{}
}

func (s *SQLMethodStore) GetMethod(ctx context.Context, id int64) (*VerificationMethod, error) {
	var m VerificationMethod
	err := common.SQLX.GetContext(ctx, &m, "SELECT * FROM verification_methods WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, ErrMethodNotFound
	}
	if err != nil {
		return nil, err
	}

	return &m, nil
}
