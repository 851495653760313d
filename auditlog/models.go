package auditlog

import (
	"time"

	"github.com/vicentefelipechile/enlacevrc/common"
)

const DBSchema = `
CREATE TABLE IF NOT EXISTS audit_logs (
	id BIGSERIAL PRIMARY KEY,

	level SMALLINT NOT NULL,
	message TEXT NOT NULL,
	actor TEXT NOT NULL,

	created_at TIMESTAMP WITH TIME ZONE NOT NULL
)
`

func init() {
	common.RegisterDBSchemas("auditlog", DBSchema)
}

// Level is the severity of an audit entry. The set is fixed and ordered.
type Level uint8

const (
	LevelSystem Level = iota
	LevelDebug
	LevelInfo
	LevelWarning
	LevelError
	LevelCritical
)

func (l Level) String() string {
	switch l {
	case LevelSystem:
		return "system"
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	case LevelCritical:
		return "critical"
	}

	return "unknown"
}

type rawEntry struct {
	ID        int64     `db:"id"`
	Level     uint8     `db:"level"`
	Message   string    `db:"message"`
	Actor     string    `db:"actor"`
	CreatedAt time.Time `db:"created_at"`
}

func (r *rawEntry) toEntry() *Entry {
	return &Entry{
		ID:        r.ID,
		Level:     Level(r.Level),
		Message:   r.Message,
		Actor:     r.Actor,
		CreatedAt: r.CreatedAt,
	}
}

// Entry is a single append-only audit record. Entries are never updated or
// deleted once written.
type Entry struct {
	ID        int64
	Level     Level
	Message   string
	Actor     string
	CreatedAt time.Time
}
