// Package blocking implements the blocking index: a MongoDB-backed
// full-text/fuzzy candidate retrieval layer that keeps the matcher's
// candidate set tractable. The fuzzy searches scan every live index entry
// and apply the edit-distance filter client-side.
package blocking

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/google/uuid"

	"mpi-core/internal/domain/patient"
	"mpi-core/internal/infrastructure/database/mongodb"
	"mpi-core/internal/matching/matcher"
	"mpi-core/internal/mpierrors"
)

const collectionName = "patient_index"

// doc is the indexed representation of one live patient.
type doc struct {
	ID          string `bson:"_id"`
	Family      string `bson:"family"`
	Given       string `bson:"given"`
	FullName    string `bson:"full_name"`
	BirthDate   string `bson:"birth_date,omitempty"`
	BirthYear   int    `bson:"birth_year,omitempty"`
	Gender      string `bson:"gender"`
	PostalCode  string `bson:"postal_code,omitempty"`
	City        string `bson:"city,omitempty"`
	State       string `bson:"state,omitempty"`
	Identifiers string `bson:"identifiers"`
	Active      bool   `bson:"active"`
}

func toDoc(p *patient.Patient) doc {
	name, _ := p.PrimaryName()
	d := doc{
		ID:       p.ID.String(),
		Family:   name.Family,
		Given:    strings.Join(name.Given, " "),
		FullName: p.FullName(),
		Gender:   strings.ToLower(string(p.Gender)),
		Active:   p.Active && !p.IsTombstoned(),
	}
	if p.BirthDate != nil {
		d.BirthDate = p.BirthDate.UTC().Format("2006-01-02")
		d.BirthYear = p.BirthDate.UTC().Year()
	}
	if addr, ok := p.PrimaryAddress(); ok {
		if addr.PostalCode != nil {
			d.PostalCode = *addr.PostalCode
		}
		if addr.City != nil {
			d.City = *addr.City
		}
		if addr.State != nil {
			d.State = *addr.State
		}
	}
	idParts := make([]string, 0, len(p.Identifiers))
	for _, id := range p.Identifiers {
		idParts = append(idParts, fmt.Sprintf("%s:%s", id.Type, id.Value))
	}
	d.Identifiers = strings.Join(idParts, " ")
	return d
}

// Store is the subset of the patient store needed to rebuild the index from
// the authoritative source.
type Store interface {
	ListActive(ctx context.Context, limit, offset int) ([]*patient.Patient, error)
}

const defaultEditDistance = 2

// Index is the MongoDB-backed blocking index.
type Index struct {
	client       *mongodb.Client
	editDistance int
}

// New builds an Index. editDistance bounds the fuzzy family-name search in
// SearchNameYear; values outside {0,1,2} fall back to 2.
func New(client *mongodb.Client, editDistance int) *Index {
	if editDistance < 0 || editDistance > 2 {
		editDistance = defaultEditDistance
	}
	return &Index{client: client, editDistance: editDistance}
}

// EnsureSchema creates the backing collection and its text + supporting
// indexes. Safe to call on every startup.
func (ix *Index) EnsureSchema(ctx context.Context) error {
	if err := ix.client.CreateCollection(ctx, collectionName); err != nil {
		return mpierrors.Index("failed to create blocking index collection", err)
	}

	models := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "full_name", Value: "text"},
				{Key: "family", Value: "text"},
				{Key: "given", Value: "text"},
				{Key: "identifiers", Value: "text"},
			},
			Options: options.Index().SetWeights(bson.D{
				{Key: "identifiers", Value: 10},
				{Key: "full_name", Value: 5},
				{Key: "family", Value: 5},
				{Key: "given", Value: 3},
			}).SetName("patient_fulltext"),
		},
		{Keys: bson.D{{Key: "active", Value: 1}, {Key: "family", Value: 1}}},
		{Keys: bson.D{{Key: "active", Value: 1}, {Key: "birth_year", Value: 1}}},
	}
	if err := ix.client.CreateIndexes(ctx, collectionName, models); err != nil {
		return mpierrors.Index("failed to create blocking index indexes", err)
	}
	return nil
}

// Upsert inserts or replaces the indexed document for one patient.
func (ix *Index) Upsert(ctx context.Context, p *patient.Patient) error {
	d := toDoc(p)
	_, err := ix.client.Collection(collectionName).ReplaceOne(
		ctx, bson.M{"_id": d.ID}, d, options.Replace().SetUpsert(true),
	)
	if err != nil {
		return mpierrors.Index("failed to upsert patient into blocking index", err)
	}
	return nil
}

// BatchInsert indexes many patients in a single commit, used by initial
// population and by RebuildFromStore.
func (ix *Index) BatchInsert(ctx context.Context, patients []*patient.Patient) error {
	if len(patients) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(patients))
	for _, p := range patients {
		docs = append(docs, toDoc(p))
	}
	_, err := ix.client.Collection(collectionName).InsertMany(ctx, docs)
	if err != nil {
		return mpierrors.Index("failed to batch-insert into blocking index", err)
	}
	return nil
}

// Delete removes a patient's entry from the index (tombstone propagation).
func (ix *Index) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := ix.client.Collection(collectionName).DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return mpierrors.Index("failed to delete from blocking index", err)
	}
	return nil
}

// ExactSearch runs a BM25-like phrase search over {full_name, family, given,
// identifiers}, excluding tombstoned patients, capped at limit results
// ordered by relevance.
func (ix *Index) ExactSearch(ctx context.Context, query string, limit int) ([]matcher.BlockCandidate, error) {
	filter := bson.M{
		"active": true,
		"$text":  bson.M{"$search": query},
	}
	projection := bson.M{"score": bson.M{"$meta": "textScore"}}
	opts := options.Find().
		SetProjection(projection).
		SetSort(bson.M{"score": bson.M{"$meta": "textScore"}}).
		SetLimit(int64(limit))

	cursor, err := ix.client.Collection(collectionName).Find(ctx, filter, opts)
	if err != nil {
		return nil, mpierrors.Index("exact search failed", err)
	}
	defer cursor.Close(ctx)

	return decodeCandidates(ctx, cursor)
}

// FuzzyFamilySearch returns candidates whose family name is within
// editDistance (Damerau-Levenshtein, transposition counted as one edit) of
// familyName. The scan covers live entries only; the fine-grained
// edit-distance filter runs client-side.
func (ix *Index) FuzzyFamilySearch(ctx context.Context, familyName string, editDistance, limit int) ([]matcher.BlockCandidate, error) {
	target := strings.ToLower(strings.TrimSpace(familyName))
	if target == "" {
		return nil, nil
	}

	bucketFilter := bson.M{"active": true}
	cursor, err := ix.client.Collection(collectionName).Find(ctx, bucketFilter)
	if err != nil {
		return nil, mpierrors.Index("fuzzy search scan failed", err)
	}
	defer cursor.Close(ctx)

	var hits []matcher.BlockCandidate
	for cursor.Next(ctx) {
		var d doc
		if err := cursor.Decode(&d); err != nil {
			continue
		}
		if damerauLevenshtein(strings.ToLower(d.Family), target) > editDistance {
			continue
		}
		id, err := uuid.Parse(d.ID)
		if err != nil {
			continue
		}
		hits = append(hits, matcher.BlockCandidate{ID: id})
		if len(hits) >= limit {
			break
		}
	}
	return hits, cursor.Err()
}

// SearchNameYear implements matcher.Blocker: a fuzzy family-name match is
// required; an equal birth year is a ranking boost, never a filter.
func (ix *Index) SearchNameYear(ctx context.Context, familyName string, birthYear *int, limit int) ([]matcher.BlockCandidate, error) {
	target := strings.ToLower(strings.TrimSpace(familyName))
	if target == "" {
		return nil, nil
	}

	cursor, err := ix.client.Collection(collectionName).Find(ctx, bson.M{"active": true})
	if err != nil {
		return nil, mpierrors.Index("name+year blocking search failed", err)
	}
	defer cursor.Close(ctx)

	var matches []yearScored
	for cursor.Next(ctx) {
		var d doc
		if err := cursor.Decode(&d); err != nil {
			continue
		}
		dist := damerauLevenshtein(strings.ToLower(d.Family), target)
		if dist > ix.editDistance {
			continue
		}
		id, err := uuid.Parse(d.ID)
		if err != nil {
			continue
		}
		matches = append(matches, yearScored{
			id:       id,
			yearHit:  birthYear != nil && d.BirthYear == *birthYear,
			distance: dist,
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, mpierrors.Index("name+year blocking cursor failed", err)
	}

	// Year-matching, closer-distance candidates rank first; year is a
	// ranking boost only, never a filter.
	sortScored(matches)

	out := make([]matcher.BlockCandidate, 0, len(matches))
	for _, m := range matches {
		out = append(out, matcher.BlockCandidate{ID: m.id})
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

// yearScored carries a fuzzy-family-match hit plus whether its birth year
// matched, for ranking (never filtering) in SearchNameYear.
type yearScored struct {
	id       uuid.UUID
	yearHit  bool
	distance int
}

func sortScored(matches []yearScored) {
	for i := 1; i < len(matches); i++ {
		j := i
		for j > 0 && less(matches[j], matches[j-1]) {
			matches[j], matches[j-1] = matches[j-1], matches[j]
			j--
		}
	}
}

func less(a, b yearScored) bool {
	if a.yearHit != b.yearHit {
		return a.yearHit
	}
	return a.distance < b.distance
}

func decodeCandidates(ctx context.Context, cursor *mongo.Cursor) ([]matcher.BlockCandidate, error) {
	var out []matcher.BlockCandidate
	for cursor.Next(ctx) {
		var d doc
		if err := cursor.Decode(&d); err != nil {
			continue
		}
		id, err := uuid.Parse(d.ID)
		if err != nil {
			continue
		}
		out = append(out, matcher.BlockCandidate{ID: id})
	}
	return out, cursor.Err()
}

// RebuildFromStore repopulates the index from the authoritative store, the
// permitted crash-recovery path for a transiently stale index.
func (ix *Index) RebuildFromStore(ctx context.Context, store Store) error {
	if _, err := ix.client.Collection(collectionName).DeleteMany(ctx, bson.M{}); err != nil {
		return mpierrors.Index("failed to clear blocking index before rebuild", err)
	}

	const pageSize = 500
	offset := 0
	for {
		page, err := store.ListActive(ctx, pageSize, offset)
		if err != nil {
			return mpierrors.Index("failed to page store during rebuild", err)
		}
		if len(page) == 0 {
			break
		}
		if err := ix.BatchInsert(ctx, page); err != nil {
			return err
		}
		offset += len(page)
		if len(page) < pageSize {
			break
		}
	}
	return nil
}
