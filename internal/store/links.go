package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"mpi-core/internal/domain/audit"
	"mpi-core/internal/domain/event"
	"mpi-core/internal/domain/patient"
	"mpi-core/internal/infrastructure/database/postgres"
	"mpi-core/internal/mpierrors"
	"mpi-core/internal/store/queries"
)

// Link adds a directed relation from patient a to patient b. The link row
// belongs to a's aggregate; b may be tombstoned (dangling references are
// permitted for historical continuity).
func (s *Store) Link(ctx context.Context, actor audit.ActorContext, a, b uuid.UUID, linkType patient.LinkType) error {
	if a == b {
		return mpierrors.ValidationFailed("a patient cannot link to itself")
	}
	if _, ok := patient.ParseLinkType(string(linkType)); !ok {
		return mpierrors.ValidationFailed(fmt.Sprintf("unknown link type %q", linkType))
	}

	before, err := s.GetByID(ctx, a)
	if err != nil {
		return err
	}
	if before == nil {
		return mpierrors.NotFound(fmt.Sprintf("patient %s not found", a))
	}
	beforeJSON, _ := json.Marshal(before)

	err = s.tx.WithTransaction(ctx, func(tx *postgres.Transaction) error {
		if err := checkLinkAbsent(ctx, tx, a, b, linkType); err != nil {
			return err
		}
		if err := tx.Exec(ctx, queries.PatientQueries.InsertLink, a, b, string(linkType)); err != nil {
			return mpierrors.Database("failed to insert patient link", err)
		}
		if err := tx.Exec(ctx, queries.PatientQueries.TouchPatient, a, actor.UserID); err != nil {
			return mpierrors.Database("failed to touch linking patient", err)
		}
		return nil
	})
	if err != nil {
		return asCancelled(ctx, err)
	}

	s.invalidateCache(ctx, a)

	after := *before
	after.Links = append(append([]patient.PatientLink{}, before.Links...), patient.PatientLink{Other: b, Type: linkType})
	afterJSON, _ := json.Marshal(&after)

	s.runIndexThenAuditThenEvent(ctx, func() error { return s.indexer.Upsert(ctx, &after) },
		audit.ActionLink, "patient", a, beforeJSON, afterJSON, actor,
		event.Linked(a, b, time.Now()))
	return nil
}

// Unlink removes the (a, b, type) relation from a's aggregate.
func (s *Store) Unlink(ctx context.Context, actor audit.ActorContext, a, b uuid.UUID, linkType patient.LinkType) error {
	if _, ok := patient.ParseLinkType(string(linkType)); !ok {
		return mpierrors.ValidationFailed(fmt.Sprintf("unknown link type %q", linkType))
	}

	before, err := s.GetByID(ctx, a)
	if err != nil {
		return err
	}
	if before == nil {
		return mpierrors.NotFound(fmt.Sprintf("patient %s not found", a))
	}
	beforeJSON, _ := json.Marshal(before)

	err = s.tx.WithTransaction(ctx, func(tx *postgres.Transaction) error {
		row := tx.QueryRow(ctx, queries.PatientQueries.CheckLinkExists, a, b, string(linkType))
		var one int
		if err := row.Scan(&one); err != nil {
			if isNoRows(err) {
				return mpierrors.NotFound(fmt.Sprintf("no %s link from %s to %s", linkType, a, b))
			}
			return mpierrors.Database("failed to check patient link", err)
		}
		if err := tx.Exec(ctx, queries.PatientQueries.DeleteLink, a, b, string(linkType)); err != nil {
			return mpierrors.Database("failed to delete patient link", err)
		}
		if err := tx.Exec(ctx, queries.PatientQueries.TouchPatient, a, actor.UserID); err != nil {
			return mpierrors.Database("failed to touch unlinking patient", err)
		}
		return nil
	})
	if err != nil {
		return asCancelled(ctx, err)
	}

	s.invalidateCache(ctx, a)

	after := *before
	after.Links = make([]patient.PatientLink, 0, len(before.Links))
	for _, l := range before.Links {
		if l.Other == b && l.Type == linkType {
			continue
		}
		after.Links = append(after.Links, l)
	}
	afterJSON, _ := json.Marshal(&after)

	s.runIndexThenAuditThenEvent(ctx, func() error { return s.indexer.Upsert(ctx, &after) },
		audit.ActionUnlink, "patient", a, beforeJSON, afterJSON, actor,
		event.Unlinked(a, b, time.Now()))
	return nil
}

// Merge folds the src identity into dst: src is soft-deleted and the two
// aggregates are cross-linked (src replaced_by dst, dst replaces src) so
// historical references through src keep resolving. Both patients must be
// live when the merge starts.
func (s *Store) Merge(ctx context.Context, actor audit.ActorContext, src, dst uuid.UUID) error {
	if src == dst {
		return mpierrors.ValidationFailed("cannot merge a patient into itself")
	}

	srcBefore, err := s.GetByID(ctx, src)
	if err != nil {
		return err
	}
	if srcBefore == nil {
		return mpierrors.NotFound(fmt.Sprintf("merge source %s not found", src))
	}
	dstBefore, err := s.GetByID(ctx, dst)
	if err != nil {
		return err
	}
	if dstBefore == nil {
		return mpierrors.NotFound(fmt.Sprintf("merge destination %s not found", dst))
	}
	srcJSON, _ := json.Marshal(srcBefore)

	err = s.tx.WithTransaction(ctx, func(tx *postgres.Transaction) error {
		if err := insertLinkIfAbsent(ctx, tx, src, dst, patient.LinkReplacedBy); err != nil {
			return err
		}
		if err := insertLinkIfAbsent(ctx, tx, dst, src, patient.LinkReplaces); err != nil {
			return err
		}
		if err := tx.Exec(ctx, queries.PatientQueries.SoftDeletePatient, src, actor.UserID); err != nil {
			return mpierrors.Database("failed to soft-delete merge source", err)
		}
		if err := tx.Exec(ctx, queries.PatientQueries.TouchPatient, dst, actor.UserID); err != nil {
			return mpierrors.Database("failed to touch merge destination", err)
		}
		return nil
	})
	if err != nil {
		return asCancelled(ctx, err)
	}

	s.invalidateCache(ctx, src)
	s.invalidateCache(ctx, dst)

	dstAfter := *dstBefore
	dstAfter.Links = append(append([]patient.PatientLink{}, dstBefore.Links...), patient.PatientLink{Other: src, Type: patient.LinkReplaces})
	dstJSON, _ := json.Marshal(&dstAfter)

	s.runIndexThenAuditThenEvent(ctx, func() error {
		if err := s.indexer.Delete(ctx, src); err != nil {
			return err
		}
		return s.indexer.Upsert(ctx, &dstAfter)
	},
		audit.ActionMerge, "patient", src, srcJSON, dstJSON, actor,
		event.Merged(src, dst, time.Now()))
	return nil
}

func checkLinkAbsent(ctx context.Context, tx *postgres.Transaction, a, b uuid.UUID, linkType patient.LinkType) error {
	row := tx.QueryRow(ctx, queries.PatientQueries.CheckLinkExists, a, b, string(linkType))
	var one int
	if err := row.Scan(&one); err == nil {
		return mpierrors.UniquenessViolated(fmt.Sprintf("link (%s,%s,%s) already exists", a, b, linkType))
	} else if !isNoRows(err) {
		return mpierrors.Database("failed to check patient link", err)
	}
	return nil
}

func insertLinkIfAbsent(ctx context.Context, tx *postgres.Transaction, a, b uuid.UUID, linkType patient.LinkType) error {
	row := tx.QueryRow(ctx, queries.PatientQueries.CheckLinkExists, a, b, string(linkType))
	var one int
	err := row.Scan(&one)
	if err == nil {
		return nil
	}
	if !isNoRows(err) {
		return mpierrors.Database("failed to check patient link", err)
	}
	if err := tx.Exec(ctx, queries.PatientQueries.InsertLink, a, b, string(linkType)); err != nil {
		return mpierrors.Database("failed to insert merge link", err)
	}
	return nil
}
