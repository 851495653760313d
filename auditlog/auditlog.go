package auditlog

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vicentefelipechile/enlacevrc/common"
)

var logger = common.GetFixedPrefixLogger("auditlog")

var metricEntriesWritten = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "enlacevrc_audit_entries_total",
	Help: "Audit log entries written, by severity",
}, []string{"level"})

// Recorder is the append-only audit sink used by every mutating operation.
// A failed Record must never mask the outcome of the operation that called
// it; callers log the error and move on.
type Recorder interface {
	Record(ctx context.Context, level Level, message string, actor string) error
}

// SQLSink writes audit entries to the audit_logs table.
type SQLSink struct{}

func NewSQLSink() *SQLSink {
	return &SQLSink{}
}

func (s *SQLSink) Record(ctx context.Context, level Level, message string, actor string) error {
	const insertStatement = `INSERT INTO audit_logs (level, message, actor, created_at)
	VALUES (:level, :message, :actor, :created_at);`

	raw := &rawEntry{
		Level:     uint8(level),
		Message:   message,
		Actor:     actor,
		CreatedAt: time.Now(),
	}

	_, err := common.SQLX.NamedExecContext(ctx, insertStatement, raw)
	if err == nil {
		metricEntriesWritten.WithLabelValues(level.String()).Inc()
	}

	return err
}

// RetryRecord will retry Record until it succeeds or 60 seconds has elapsed.
// Used where losing the entry is worse than delaying the caller.
func RetryRecord(sink Recorder, level Level, message string, actor string) {
	started := time.Now()
	for {
		err := sink.Record(context.Background(), level, message, actor)
		if err == nil {
			return
		}

		if time.Since(started) > time.Minute {
			logger.WithError(err).Errorf("gave up retrying audit entry: [%s] %s", level, message)
			return
		}
		logger.WithError(err).Errorf("failed saving audit entry, retrying in a second... [%s] %s", level, message)

		time.Sleep(time.Second)
	}
}

// GetEntries returns up to limit entries, newest first, optionally only
// those with an id lower than before.
func (s *SQLSink) GetEntries(ctx context.Context, limit int, before int64) ([]*Entry, error) {
	result := []rawEntry{}

	var err error
	if before > 0 {
		err = common.SQLX.SelectContext(ctx, &result, "SELECT * FROM audit_logs WHERE id < $2 ORDER BY id DESC LIMIT $1", limit, before)
	} else {
		err = common.SQLX.SelectContext(ctx, &result, "SELECT * FROM audit_logs ORDER BY id DESC LIMIT $1", limit)
	}

	if err != nil {
		return nil, err
	}

	parsedResult := make([]*Entry, 0, len(result))
	for _, v := range result {
		parsedResult = append(parsedResult, v.toEntry())
	}

	return parsedResult, nil
}
