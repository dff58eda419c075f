// Package auditlog implements the append-only audit trail: one immutable
// record per write operation, with before/after snapshots.
package auditlog

import (
	"context"

	"github.com/google/uuid"

	"mpi-core/internal/domain/audit"
	"mpi-core/internal/infrastructure/database/postgres"
	"mpi-core/internal/auditlog/queries"
	"mpi-core/internal/mpierrors"
)

const defaultQueryCap = 500

// Writer is the Postgres-backed audit log. Records are immutable:
// the core never updates or deletes a row once written.
type Writer struct {
	db       *postgres.Client
	queryCap int
}

// New builds a Writer. queryCap caps every query method's result size
// regardless of the limit requested by the caller; pass 0 to use the
// default of 500.
func New(db *postgres.Client, queryCap int) *Writer {
	if queryCap <= 0 {
		queryCap = defaultQueryCap
	}
	return &Writer{db: db, queryCap: queryCap}
}

func (w *Writer) cap(limit int) int {
	if limit <= 0 || limit > w.queryCap {
		return w.queryCap
	}
	return limit
}

// Log appends one immutable record with a server-assigned timestamp.
func (w *Writer) Log(ctx context.Context, action audit.Action, entityType string, entityID uuid.UUID, before, after []byte, actor audit.ActorContext) error {
	userID := actor.UserID
	if userID == "" {
		userID = "system"
	}
	var sourceAddress, userAgent *string
	if actor.SourceAddress != "" {
		sourceAddress = &actor.SourceAddress
	}
	if actor.UserAgent != "" {
		userAgent = &actor.UserAgent
	}

	err := w.db.Exec(ctx, queries.AuditQueries.Insert,
		uuid.New(), userID, sourceAddress, userAgent,
		string(action), entityType, entityID, before, after,
	)
	if err != nil {
		return mpierrors.Audit("failed to append audit record", err)
	}
	return nil
}

// LogsForEntity returns newest-first records for one entity, capped.
func (w *Writer) LogsForEntity(ctx context.Context, entityType string, entityID uuid.UUID, limit int) ([]audit.Record, error) {
	rows, err := w.db.Query(ctx, queries.AuditQueries.LogsForEntity, entityType, entityID, w.cap(limit))
	if err != nil {
		return nil, mpierrors.Audit("logs_for_entity failed", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// Recent returns the newest records across all entities, capped.
func (w *Writer) Recent(ctx context.Context, limit int) ([]audit.Record, error) {
	rows, err := w.db.Query(ctx, queries.AuditQueries.Recent, w.cap(limit))
	if err != nil {
		return nil, mpierrors.Audit("recent failed", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// ByUser returns the newest records for one actor, capped.
func (w *Writer) ByUser(ctx context.Context, userID string, limit int) ([]audit.Record, error) {
	rows, err := w.db.Query(ctx, queries.AuditQueries.ByUser, userID, w.cap(limit))
	if err != nil {
		return nil, mpierrors.Audit("by_user failed", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func scanRecords(rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}) ([]audit.Record, error) {
	var out []audit.Record
	for rows.Next() {
		var r audit.Record
		var action string
		var sourceAddress, userAgent *string
		if err := rows.Scan(&r.ID, &r.Timestamp, &r.Actor.UserID, &sourceAddress, &userAgent,
			&action, &r.EntityType, &r.EntityID, &r.Before, &r.After); err != nil {
			return nil, mpierrors.Audit("failed to scan audit record", err)
		}
		r.Action = audit.Action(action)
		r.SourceAddress, r.UserAgent = sourceAddress, userAgent
		if sourceAddress != nil {
			r.Actor.SourceAddress = *sourceAddress
		}
		if userAgent != nil {
			r.Actor.UserAgent = *userAgent
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
