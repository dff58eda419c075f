// Package store implements the patient aggregate store: a transactional
// CRUD layer over the root and its exclusively-owned child collections, a
// Redis read-through cache on GetByID, and ordered, failure-isolated
// post-commit side effects (index, audit, event).
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"mpi-core/internal/domain/audit"
	"mpi-core/internal/domain/event"
	"mpi-core/internal/domain/patient"
	"mpi-core/internal/infrastructure/database/postgres"
	"mpi-core/internal/infrastructure/database/redis"
	"mpi-core/internal/mpierrors"
	"mpi-core/internal/store/queries"
)

// Indexer is the subset of the blocking index the store drives on every
// commit.
type Indexer interface {
	Upsert(ctx context.Context, p *patient.Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// AuditWriter is the subset of the audit log the store appends to.
type AuditWriter interface {
	Log(ctx context.Context, action audit.Action, entityType string, entityID uuid.UUID, before, after []byte, actor audit.ActorContext) error
}

// EventPublisher is the subset of the event bus the store fans out to.
type EventPublisher interface {
	Publish(e event.Event) error
}

// Store is the Postgres-backed patient aggregate store.
type Store struct {
	db      *postgres.Client
	tx      *postgres.TransactionManager
	cache   *redis.Client
	indexer Indexer
	audit   AuditWriter
	events  EventPublisher
	logger  *slog.Logger
}

func New(db *postgres.Client, tx *postgres.TransactionManager, cache *redis.Client, indexer Indexer, auditWriter AuditWriter, events EventPublisher, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, tx: tx, cache: cache, indexer: indexer, audit: auditWriter, events: events, logger: logger}
}

// Create assigns an identity if absent, inserts the root and every child
// collection in one transaction, and rejects on identifier conflicts.
func (s *Store) Create(ctx context.Context, actor audit.ActorContext, p *patient.Patient) (*patient.Patient, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if _, ok := p.PrimaryName(); !ok {
		return nil, mpierrors.ValidationFailed("patient must have exactly one primary name")
	}
	if err := validateAtMostOnePrimary(p); err != nil {
		return nil, err
	}
	if err := validateLinks(p); err != nil {
		return nil, err
	}

	err := s.tx.WithTransactionIsolation(ctx, pgx.Serializable, func(tx *postgres.Transaction) error {
		if err := s.checkIdentifierConflicts(ctx, tx, p); err != nil {
			return err
		}

		row := tx.QueryRow(ctx, queries.PatientQueries.InsertPatient,
			p.ID, p.Active, string(p.Gender), p.BirthDate, p.Deceased, p.DeceasedAt,
			maritalString(p.MaritalStatus), p.MultipleBirth, p.ManagingOrganization, actor.UserID,
		)
		if err := row.Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
			return mpierrors.Database("failed to insert patient", err)
		}
		p.CreatedBy, p.UpdatedBy = actor.UserID, actor.UserID

		return s.insertChildren(ctx, tx, p)
	})
	if err != nil {
		return nil, asCancelled(ctx, err)
	}

	s.afterCommit(ctx, audit.ActionCreate, p, nil, actor)
	return p, nil
}

// GetByID returns the live patient for id, reading through Redis first.
func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	if s.cache != nil {
		if raw, err := s.cache.GetWithPattern(ctx, "patient_by_id", id.String()); err == nil {
			var p patient.Patient
			if jsonErr := json.Unmarshal([]byte(raw), &p); jsonErr == nil {
				return &p, nil
			}
		} else if !redis.IsMiss(err) {
			s.logger.Warn("cache read failed, falling through to database", "error", err)
		}
	}

	p, err := s.loadFromDB(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}

	if s.cache != nil {
		go func() {
			payload, err := json.Marshal(p)
			if err != nil {
				return
			}
			if err := s.cache.SetWithPattern(context.Background(), "patient_by_id", payload, id.String()); err != nil {
				s.logger.Warn("cache warm failed", "patient_id", id, "error", err)
			}
		}()
	}
	return p, nil
}

// Update replaces the root and every child collection (delete-then-insert),
// preserving identity and created-at.
func (s *Store) Update(ctx context.Context, actor audit.ActorContext, p *patient.Patient) (*patient.Patient, error) {
	if _, ok := p.PrimaryName(); !ok {
		return nil, mpierrors.ValidationFailed("patient must have exactly one primary name")
	}
	if err := validateAtMostOnePrimary(p); err != nil {
		return nil, err
	}
	if err := validateLinks(p); err != nil {
		return nil, err
	}

	before, err := s.GetByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if before == nil {
		return nil, mpierrors.NotFound(fmt.Sprintf("patient %s not found", p.ID))
	}
	beforeJSON, _ := json.Marshal(before)

	err = s.tx.WithTransactionIsolation(ctx, pgx.Serializable, func(tx *postgres.Transaction) error {
		if err := s.checkIdentifierConflicts(ctx, tx, p); err != nil {
			return err
		}

		row := tx.QueryRow(ctx, queries.PatientQueries.UpdatePatient,
			p.ID, p.Active, string(p.Gender), p.BirthDate, p.Deceased, p.DeceasedAt,
			maritalString(p.MaritalStatus), p.MultipleBirth, p.ManagingOrganization, actor.UserID,
		)
		if err := row.Scan(&p.UpdatedAt); err != nil {
			return mpierrors.Database("failed to update patient", err)
		}
		p.CreatedAt, p.CreatedBy = before.CreatedAt, before.CreatedBy
		p.UpdatedBy = actor.UserID

		if err := deleteChildren(ctx, tx, p.ID); err != nil {
			return err
		}
		return s.insertChildren(ctx, tx, p)
	})
	if err != nil {
		return nil, asCancelled(ctx, err)
	}

	s.invalidateCache(ctx, p.ID)

	s.afterCommit(ctx, audit.ActionUpdate, p, beforeJSON, actor)
	return p, nil
}

// Delete soft-deletes a patient; child rows are left intact and identifier
// uniqueness remains enforced against the tombstoned rows.
func (s *Store) Delete(ctx context.Context, actor audit.ActorContext, id uuid.UUID) error {
	before, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if before == nil {
		return mpierrors.NotFound(fmt.Sprintf("patient %s not found", id))
	}
	beforeJSON, _ := json.Marshal(before)

	err = s.tx.WithTransaction(ctx, func(tx *postgres.Transaction) error {
		if execErr := tx.Exec(ctx, queries.PatientQueries.SoftDeletePatient, id, actor.UserID); execErr != nil {
			return mpierrors.Database("failed to soft-delete patient", execErr)
		}
		return nil
	})
	if err != nil {
		return asCancelled(ctx, err)
	}

	s.invalidateCache(ctx, id)

	now := time.Now()
	s.runIndexThenAuditThenEvent(ctx, func() error { return s.indexer.Delete(ctx, id) },
		audit.ActionDelete, "patient", id, beforeJSON, nil, actor,
		event.Deleted(id, now))
	return nil
}

// SearchByFamilyLike is a convenience lookup, not on the matching path.
func (s *Store) SearchByFamilyLike(ctx context.Context, pattern string, limit int) ([]*patient.Patient, error) {
	rows, err := s.db.Query(ctx, queries.PatientQueries.SearchByFamilyLike, pattern, limit)
	if err != nil {
		return nil, mpierrors.Database("search_by_family_like failed", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, mpierrors.Database("failed to scan search result", err)
		}
		ids = append(ids, id)
	}
	return s.loadMany(ctx, ids)
}

// ListActive is a cursorable enumeration of live patients.
func (s *Store) ListActive(ctx context.Context, limit, offset int) ([]*patient.Patient, error) {
	rows, err := s.db.Query(ctx, queries.PatientQueries.ListActive, limit, offset)
	if err != nil {
		return nil, mpierrors.Database("list_active failed", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, mpierrors.Database("failed to scan list_active result", err)
		}
		ids = append(ids, id)
	}
	return s.loadMany(ctx, ids)
}

func (s *Store) loadMany(ctx context.Context, ids []uuid.UUID) ([]*patient.Patient, error) {
	out := make([]*patient.Patient, 0, len(ids))
	for _, id := range ids {
		p, err := s.loadFromDB(ctx, s.db, id)
		if err != nil {
			return nil, err
		}
		if p != nil {
			out = append(out, p)
		}
	}
	return out, nil
}

// afterCommit runs index-update -> audit-write -> event-publish in order,
// each best-effort. A failure here never reaches the caller: the committed
// transaction is authoritative.
func (s *Store) afterCommit(ctx context.Context, action audit.Action, p *patient.Patient, before []byte, actor audit.ActorContext) {
	after, _ := json.Marshal(p)
	var ev event.Event
	now := time.Now()
	if action == audit.ActionCreate {
		ev = event.Created(p, now)
	} else {
		ev = event.Updated(p, now)
	}
	s.runIndexThenAuditThenEvent(ctx, func() error { return s.indexer.Upsert(ctx, p) },
		action, "patient", p.ID, before, after, actor, ev)
}

func (s *Store) runIndexThenAuditThenEvent(ctx context.Context, indexOp func() error, action audit.Action, entityType string, entityID uuid.UUID, before, after []byte, actor audit.ActorContext, ev event.Event) {
	if err := indexOp(); err != nil {
		s.logger.Error("blocking index update failed, commit stands", "entity_id", entityID, "error", err)
	}
	if err := s.audit.Log(ctx, action, entityType, entityID, before, after, actor); err != nil {
		s.logger.Error("audit write failed, commit stands", "entity_id", entityID, "error", err)
	}
	if err := s.events.Publish(ev); err != nil {
		s.logger.Error("event publish failed, commit stands", "entity_id", entityID, "error", err)
	}
}

func (s *Store) checkIdentifierConflicts(ctx context.Context, tx *postgres.Transaction, p *patient.Patient) error {
	for _, id := range p.Identifiers {
		row := tx.QueryRow(ctx, queries.PatientQueries.CheckIdentifierConflict, id.System, id.Value, p.ID)
		var conflictID uuid.UUID
		if err := row.Scan(&conflictID); err == nil {
			return mpierrors.UniquenessViolated(fmt.Sprintf("identifier (%s,%s) already assigned to patient %s", id.System, id.Value, conflictID))
		} else if !isNoRows(err) {
			return mpierrors.Database("failed to check identifier conflict", err)
		}
	}
	return nil
}

func (s *Store) insertChildren(ctx context.Context, tx *postgres.Transaction, p *patient.Patient) error {
	for _, n := range p.Names {
		if err := tx.Exec(ctx, queries.PatientQueries.InsertName, p.ID, n.Family, n.Given, n.Prefix, n.Suffix, string(n.Use), n.IsPrimary); err != nil {
			return mpierrors.Database("failed to insert patient name", err)
		}
	}
	for _, id := range p.Identifiers {
		if err := tx.Exec(ctx, queries.PatientQueries.InsertIdentifier, p.ID, string(id.Type), id.System, id.Value, id.Assigner); err != nil {
			return mpierrors.Database("failed to insert patient identifier", err)
		}
	}
	for _, a := range p.Addresses {
		if err := tx.Exec(ctx, queries.PatientQueries.InsertAddress, p.ID, a.Line1, a.Line2, a.City, a.State, a.PostalCode, a.Country, string(a.Use), a.IsPrimary); err != nil {
			return mpierrors.Database("failed to insert patient address", err)
		}
	}
	for _, c := range p.Contacts {
		if err := tx.Exec(ctx, queries.PatientQueries.InsertContact, p.ID, string(c.Channel), c.Value, string(c.Use), c.IsPrimary); err != nil {
			return mpierrors.Database("failed to insert patient contact", err)
		}
	}
	for _, l := range p.Links {
		if err := tx.Exec(ctx, queries.PatientQueries.InsertLink, p.ID, l.Other, string(l.Type)); err != nil {
			return mpierrors.Database("failed to insert patient link", err)
		}
	}
	return nil
}

func deleteChildren(ctx context.Context, tx *postgres.Transaction, id uuid.UUID) error {
	for _, q := range []string{
		queries.PatientQueries.DeleteNames,
		queries.PatientQueries.DeleteIdentifiers,
		queries.PatientQueries.DeleteAddresses,
		queries.PatientQueries.DeleteContacts,
		queries.PatientQueries.DeleteLinks,
	} {
		if err := tx.Exec(ctx, q, id); err != nil {
			return mpierrors.Database("failed to clear child collection", err)
		}
	}
	return nil
}

func validateAtMostOnePrimary(p *patient.Patient) error {
	names, addrs, contacts := 0, 0, 0
	for _, n := range p.Names {
		if n.IsPrimary {
			names++
		}
	}
	for _, a := range p.Addresses {
		if a.IsPrimary {
			addrs++
		}
	}
	for _, c := range p.Contacts {
		if c.IsPrimary {
			contacts++
		}
	}
	if names != 1 {
		return mpierrors.ValidationFailed("exactly one primary name is required")
	}
	if addrs > 1 {
		return mpierrors.ValidationFailed("at most one primary address is allowed")
	}
	if contacts > 1 {
		return mpierrors.ValidationFailed("at most one primary contact is allowed")
	}
	return nil
}

func validateLinks(p *patient.Patient) error {
	seen := make(map[string]bool, len(p.Links))
	for _, l := range p.Links {
		if l.Other == p.ID {
			return mpierrors.ValidationFailed("a patient cannot link to itself")
		}
		key := fmt.Sprintf("%s|%s", l.Other, l.Type)
		if seen[key] {
			return mpierrors.ValidationFailed("duplicate (other,type) link")
		}
		seen[key] = true
	}
	return nil
}

// invalidateCache evicts the cached aggregate after a write; eviction
// failures are logged, the database row is authoritative.
func (s *Store) invalidateCache(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DelWithPattern(ctx, "patient_by_id", id.String()); err != nil {
		s.logger.Warn("cache invalidation failed", "patient_id", id, "error", err)
	}
}

// asCancelled maps a caller-deadline failure onto the Cancelled kind. The
// checkpoint sits before commit: a transaction that reached commit is never
// reported as cancelled.
func asCancelled(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return mpierrors.Cancelled("operation cancelled before commit")
	}
	return err
}

func maritalString(m *patient.MaritalStatus) *string {
	if m == nil {
		return nil
	}
	s := string(*m)
	return &s
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
