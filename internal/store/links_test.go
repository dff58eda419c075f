package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"mpi-core/internal/domain/audit"
	"mpi-core/internal/domain/patient"
	"mpi-core/internal/mpierrors"
)

func TestLinkRejectsSelfLink(t *testing.T) {
	s := &Store{}
	id := uuid.New()
	err := s.Link(context.Background(), audit.DefaultActorContext(), id, id, patient.LinkSeeAlso)
	assert.True(t, mpierrors.Is(err, mpierrors.KindValidationFailed))
}

func TestLinkRejectsUnknownLinkType(t *testing.T) {
	s := &Store{}
	err := s.Link(context.Background(), audit.DefaultActorContext(), uuid.New(), uuid.New(), patient.LinkType("friend"))
	assert.True(t, mpierrors.Is(err, mpierrors.KindValidationFailed))
}

func TestUnlinkRejectsUnknownLinkType(t *testing.T) {
	s := &Store{}
	err := s.Unlink(context.Background(), audit.DefaultActorContext(), uuid.New(), uuid.New(), patient.LinkType("friend"))
	assert.True(t, mpierrors.Is(err, mpierrors.KindValidationFailed))
}

func TestMergeRejectsSelfMerge(t *testing.T) {
	s := &Store{}
	id := uuid.New()
	err := s.Merge(context.Background(), audit.DefaultActorContext(), id, id)
	assert.True(t, mpierrors.Is(err, mpierrors.KindValidationFailed))
}

func TestAsCancelledMapsDeadlineFailures(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := asCancelled(ctx, context.Canceled)
	assert.True(t, mpierrors.Is(err, mpierrors.KindCancelled))
}

func TestAsCancelledLeavesOtherErrorsAlone(t *testing.T) {
	orig := mpierrors.ValidationFailed("bad input")
	err := asCancelled(context.Background(), orig)
	assert.Equal(t, orig, err)
}
