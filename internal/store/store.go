package store

import (
	"go.uber.org/zap"

	"github.com/Digital-Assistant/Project-Management-Utilities/pkg/types"
)

// Store holds one mutable record per task, keyed by title. Records are
// created once at load time and updated in place afterwards; the engine
// is single-threaded, so no locking is needed.
type Store struct {
	byTitle map[string]*types.Record
	order   []string // titles in input row order
}

// FromRecords builds a store from loaded records, preserving row order.
// Titles are assumed unique; the loader rejects duplicates up front.
func FromRecords(records []*types.Record) *Store {
	s := &Store{byTitle: make(map[string]*types.Record, len(records))}
	for _, rec := range records {
		s.byTitle[rec.Title] = rec
		s.order = append(s.order, rec.Title)
	}
	return s
}

// Get returns the record for title, if present.
func (s *Store) Get(title string) (*types.Record, bool) {
	rec, ok := s.byTitle[title]
	return rec, ok
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.order)
}

// Records returns all records in input row order. The slice is fresh but
// the records are the shared mutable instances.
func (s *Store) Records() []*types.Record {
	out := make([]*types.Record, 0, len(s.order))
	for _, title := range s.order {
		out = append(out, s.byTitle[title])
	}
	return out
}

// MergeState overlays completion outcomes from a prior run onto matching
// records. Titles present only in the prior state are ignored; the input
// schema may have changed since the snapshot was taken. Returns how many
// records were already marked succeeded.
func (s *Store) MergeState(prior []*types.Record, logger *zap.Logger) int {
	done := 0
	for _, old := range prior {
		rec, ok := s.byTitle[old.Title]
		if !ok {
			logger.Debug("ignoring stale state entry", zap.String("title", old.Title))
			continue
		}
		rec.Outcome = old.Outcome
		if rec.Outcome.State == types.StateSucceeded {
			done++
		}
	}
	return done
}
