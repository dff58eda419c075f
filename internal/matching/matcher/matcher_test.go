package matcher_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mpi-core/internal/domain/patient"
	"mpi-core/internal/matching/matcher"
	"mpi-core/internal/matching/scoring"
	"mpi-core/internal/mpierrors"
)

type fakeBlocker struct {
	hits []matcher.BlockCandidate
	err  error
}

func (f *fakeBlocker) SearchNameYear(ctx context.Context, familyName string, birthYear *int, limit int) ([]matcher.BlockCandidate, error) {
	return f.hits, f.err
}

type fakeLoader struct {
	byID map[uuid.UUID]*patient.Patient
}

func (f *fakeLoader) GetByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	return f.byID[id], nil
}

func mkPatient(family, given string) *patient.Patient {
	return &patient.Patient{
		ID:     uuid.New(),
		Gender: patient.GenderMale,
		Names:  []patient.PatientName{{Family: family, Given: []string{given}, IsPrimary: true}},
	}
}

func TestFindMatchesSortsByScoreThenIdentity(t *testing.T) {
	scorer, err := scoring.NewProbabilistic(scoring.DefaultWeights(), 0.0)
	require.NoError(t, err)
	m := matcher.New(scorer, nil, nil, nil)

	query := mkPatient("Smith", "John")
	exact := mkPatient("Smith", "John")
	partial := mkPatient("Smith", "Jon")

	results := m.FindMatches(query, []*patient.Patient{partial, exact})
	require.Len(t, results, 2)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
}

func TestBlockAndMatchLenientOnBlockingFailure(t *testing.T) {
	scorer, err := scoring.NewProbabilistic(scoring.DefaultWeights(), 0.85)
	require.NoError(t, err)
	blocker := &fakeBlocker{err: assertErr}
	loader := &fakeLoader{byID: map[uuid.UUID]*patient.Patient{}}
	m := matcher.New(scorer, blocker, loader, nil)

	query := mkPatient("Smith", "John")
	results, err := m.BlockAndMatch(context.Background(), query, 10, true)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestBlockAndMatchStrictPropagatesError(t *testing.T) {
	scorer, err := scoring.NewProbabilistic(scoring.DefaultWeights(), 0.85)
	require.NoError(t, err)
	blocker := &fakeBlocker{err: assertErr}
	loader := &fakeLoader{byID: map[uuid.UUID]*patient.Patient{}}
	m := matcher.New(scorer, blocker, loader, nil)

	query := mkPatient("Smith", "John")
	_, err = m.BlockAndMatch(context.Background(), query, 10, false)
	require.Error(t, err)
	assert.True(t, mpierrors.Is(err, mpierrors.KindIndex))
}

func TestBlockAndMatchHydratesAndScores(t *testing.T) {
	scorer, err := scoring.NewProbabilistic(scoring.DefaultWeights(), 0.0)
	require.NoError(t, err)

	candidate := mkPatient("Smith", "John")
	blocker := &fakeBlocker{hits: []matcher.BlockCandidate{{ID: candidate.ID}}}
	loader := &fakeLoader{byID: map[uuid.UUID]*patient.Patient{candidate.ID: candidate}}
	m := matcher.New(scorer, blocker, loader, nil)

	query := mkPatient("Smith", "John")
	results, err := m.BlockAndMatch(context.Background(), query, 10, false)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, candidate.ID, results[0].Candidate.ID)
}

var assertErr = &mpierrors.Error{Kind: mpierrors.KindIndex, Message: "boom"}
