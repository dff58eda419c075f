package scoring

import (
	"mpi-core/internal/domain/patient"
	"mpi-core/internal/mpierrors"
)

// Weights is the configurable weighting for the Probabilistic composite
// scorer. Must sum to 1.0.
type Weights struct {
	Name       float64
	DOB        float64
	Gender     float64
	Address    float64
	Identifier float64
}

// DefaultWeights is the standard distribution: names and birth dates carry
// most of the signal, identifiers and addresses are corroborating.
func DefaultWeights() Weights {
	return Weights{Name: 0.35, DOB: 0.30, Gender: 0.10, Address: 0.15, Identifier: 0.10}
}

const weightSumTolerance = 1e-9

// Validate rejects any weight set that does not sum to 1.0.
func (w Weights) Validate() error {
	sum := w.Name + w.DOB + w.Gender + w.Address + w.Identifier
	diff := sum - 1.0
	if diff < 0 {
		diff = -diff
	}
	if diff > weightSumTolerance {
		return mpierrors.ValidationFailed("matching weights must sum to 1.0")
	}
	return nil
}

// Classification is the band a total composite score falls into.
type Classification string

const (
	ClassDefinite Classification = "definite"
	ClassProbable Classification = "probable"
	ClassPossible Classification = "possible"
	ClassUnlikely Classification = "unlikely"
)

// Classify buckets a total score using the configured threshold, independent
// of the is_match decision.
func Classify(total, threshold float64) Classification {
	switch {
	case total >= 0.95:
		return ClassDefinite
	case total >= threshold:
		return ClassProbable
	case total >= 0.50:
		return ClassPossible
	default:
		return ClassUnlikely
	}
}

// Breakdown is the per-field scoring detail every MatchResult carries
// verbatim for auditability.
type Breakdown struct {
	Name       float64
	DOB        float64
	Gender     float64
	Address    float64
	Identifier float64
}

// MatchResult is the outcome of scoring one candidate against a query.
type MatchResult struct {
	Candidate      *patient.Patient
	Score          float64
	Classification Classification
	IsMatch        bool
	Breakdown      Breakdown
}

func computeBreakdown(query, candidate *patient.Patient) Breakdown {
	nameScore := 0.0
	if qn, ok := query.PrimaryName(); ok {
		if cn, ok := candidate.PrimaryName(); ok {
			nameScore = NameComposite(qn, cn)
		}
	}
	return Breakdown{
		Name:       nameScore,
		DOB:        DateOfBirth(query.BirthDate, candidate.BirthDate),
		Gender:     Gender(query.Gender, candidate.Gender),
		Address:    Address(query.Addresses, candidate.Addresses),
		Identifier: Identifier(query.Identifiers, candidate.Identifiers),
	}
}

// Scorer computes a MatchResult for a query/candidate pair.
type Scorer interface {
	Score(query, candidate *patient.Patient) MatchResult
}

// Probabilistic is the weighted-sum composite scorer.
type Probabilistic struct {
	Weights   Weights
	Threshold float64
}

// NewProbabilistic validates weights and builds a Probabilistic scorer.
func NewProbabilistic(weights Weights, threshold float64) (*Probabilistic, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	return &Probabilistic{Weights: weights, Threshold: threshold}, nil
}

func (p *Probabilistic) Score(query, candidate *patient.Patient) MatchResult {
	b := computeBreakdown(query, candidate)
	total := p.Weights.Name*b.Name + p.Weights.DOB*b.DOB + p.Weights.Gender*b.Gender +
		p.Weights.Address*b.Address + p.Weights.Identifier*b.Identifier
	return MatchResult{
		Candidate:      candidate,
		Score:          total,
		Classification: Classify(total, p.Threshold),
		IsMatch:        total >= p.Threshold,
		Breakdown:      b,
	}
}

// Deterministic is the rule-based point-counting scorer: an exact shared
// identifier short-circuits to a definite match, otherwise thresholded
// field agreements are counted over a denominator.
type Deterministic struct {
	MatchThreshold float64
}

// NewDeterministic builds a Deterministic scorer with the default match
// threshold of 0.75.
func NewDeterministic() *Deterministic {
	return &Deterministic{MatchThreshold: 0.75}
}

func (d *Deterministic) Score(query, candidate *patient.Patient) MatchResult {
	b := computeBreakdown(query, candidate)

	if b.Identifier >= 0.98 {
		return MatchResult{Candidate: candidate, Score: 1.0, Classification: ClassDefinite, IsMatch: true, Breakdown: b}
	}

	points := 0.0
	denominator := 3.0
	if b.Name >= 0.90 {
		points++
	}
	if b.DOB >= 0.95 {
		points++
	}
	if b.Gender == 1.00 {
		points++
	}
	if len(query.Addresses) > 0 || len(candidate.Addresses) > 0 {
		denominator = 4.0
		if b.Address >= 0.80 {
			points++
		}
	}

	score := points / denominator
	return MatchResult{
		Candidate:      candidate,
		Score:          score,
		Classification: Classify(score, d.MatchThreshold),
		IsMatch:        score >= d.MatchThreshold,
		Breakdown:      b,
	}
}
