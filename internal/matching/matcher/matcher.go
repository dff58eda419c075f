// Package matcher is the façade over the matching pipeline: blocking
// retrieval, composite scoring, thresholding, and ranking.
package matcher

import (
	"context"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"mpi-core/internal/domain/patient"
	"mpi-core/internal/matching/scoring"
	"mpi-core/internal/mpierrors"
)

// BlockCandidate is one hit from the blocking index's name-with-year search.
type BlockCandidate struct {
	ID uuid.UUID
}

// Blocker is the subset of the blocking index the matcher needs. Defined
// here, not imported from internal/blocking, so the matcher depends only on
// the shape it uses.
type Blocker interface {
	SearchNameYear(ctx context.Context, familyName string, birthYear *int, limit int) ([]BlockCandidate, error)
}

// Loader is the subset of the patient store the matcher needs to hydrate
// full aggregates from blocking hits.
type Loader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
}

// Matcher is the façade over a single configured composite scorer.
type Matcher struct {
	Scorer  scoring.Scorer
	Blocker Blocker
	Loader  Loader
	Logger  *slog.Logger

	// ResultCap bounds BlockAndMatch's candidate retrieval when the caller
	// passes no explicit cap. Zero means the built-in default of 100.
	ResultCap int
}

// New builds a Matcher. Logger may be nil, in which case slog.Default() is used.
func New(scorer scoring.Scorer, blocker Blocker, loader Loader, logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Matcher{Scorer: scorer, Blocker: blocker, Loader: loader, Logger: logger}
}

// MatchPair applies the configured composite scorer to a single pair.
func (m *Matcher) MatchPair(query, candidate *patient.Patient) scoring.MatchResult {
	return m.Scorer.Score(query, candidate)
}

// FindMatches scores every candidate, keeps only those the scorer marks
// is_match, and returns them sorted by score descending with ties broken by
// candidate identity ascending.
func (m *Matcher) FindMatches(query *patient.Patient, candidates []*patient.Patient) []scoring.MatchResult {
	results := make([]scoring.MatchResult, 0, len(candidates))
	for _, c := range candidates {
		func() {
			defer func() {
				if r := recover(); r != nil {
					m.Logger.Error("scorer panicked, omitting pair", "candidate", c.ID, "recover", r)
				}
			}()
			res := m.Scorer.Score(query, c)
			if res.IsMatch {
				results = append(results, res)
			}
		}()
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Candidate.ID.String() < results[j].Candidate.ID.String()
	})
	return results
}

const defaultBlockCap = 100

// BlockAndMatch retrieves name-with-year candidates from the blocking index,
// hydrates full aggregates from the store, and scores them. If lenient is
// true a blocking failure is logged and treated as an empty candidate set;
// otherwise it propagates as an Index error.
func (m *Matcher) BlockAndMatch(ctx context.Context, query *patient.Patient, k int, lenient bool) ([]scoring.MatchResult, error) {
	if k <= 0 {
		k = m.ResultCap
	}
	if k <= 0 {
		k = defaultBlockCap
	}

	familyName := ""
	if name, ok := query.PrimaryName(); ok {
		familyName = name.Family
	}
	var birthYear *int
	if query.BirthDate != nil {
		y := query.BirthDate.UTC().Year()
		birthYear = &y
	}

	hits, err := m.Blocker.SearchNameYear(ctx, familyName, birthYear, k)
	if err != nil {
		if lenient {
			m.Logger.Warn("blocking search failed, continuing with empty candidate set", "error", err)
			hits = nil
		} else {
			return nil, mpierrors.Index("blocking search failed", err)
		}
	}

	candidates := make([]*patient.Patient, 0, len(hits))
	for _, h := range hits {
		p, err := m.Loader.GetByID(ctx, h.ID)
		if err != nil {
			m.Logger.Error("failed to hydrate blocking hit, omitting", "id", h.ID, "error", err)
			continue
		}
		if p == nil {
			continue
		}
		candidates = append(candidates, p)
	}

	return m.FindMatches(query, candidates), nil
}
