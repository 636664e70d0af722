package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Digital-Assistant/Project-Management-Utilities/internal/store"
	"github.com/Digital-Assistant/Project-Management-Utilities/pkg/types"
)

func TestRecordsPreserveInputOrder(t *testing.T) {
	s := store.FromRecords([]*types.Record{
		{Title: "C"}, {Title: "A"}, {Title: "B"},
	})
	var titles []string
	for _, r := range s.Records() {
		titles = append(titles, r.Title)
	}
	assert.Equal(t, []string{"C", "A", "B"}, titles)
	assert.Equal(t, 3, s.Len())
}

func TestGetReturnsSharedMutableRecord(t *testing.T) {
	s := store.FromRecords([]*types.Record{{Title: "A"}})
	r, ok := s.Get("A")
	require.True(t, ok)
	r.Outcome = types.Succeeded("https://github.com/acme/app/issues/1")

	again, _ := s.Get("A")
	assert.Equal(t, types.StateSucceeded, again.Outcome.State)
}

func TestMergeStateCopiesOutcomesByTitle(t *testing.T) {
	s := store.FromRecords([]*types.Record{
		{Title: "A"}, {Title: "B"}, {Title: "C"},
	})
	prior := []*types.Record{
		{Title: "A", Outcome: types.Succeeded("https://github.com/acme/app/issues/1")},
		{Title: "B", Outcome: types.Failed("boom")},
		{Title: "Removed", Outcome: types.Succeeded("https://github.com/acme/app/issues/2")},
	}

	done := s.MergeState(prior, zap.NewNop())

	assert.Equal(t, 1, done)
	a, _ := s.Get("A")
	assert.Equal(t, types.StateSucceeded, a.Outcome.State)
	b, _ := s.Get("B")
	assert.Equal(t, types.StateFailed, b.Outcome.State)
	c, _ := s.Get("C")
	assert.Equal(t, types.StatePending, c.Outcome.State, "records without prior state stay pending")
	_, ok := s.Get("Removed")
	assert.False(t, ok, "titles only in prior state are ignored")
}

func TestMergeStateWithNoPriorStateIsANoop(t *testing.T) {
	s := store.FromRecords([]*types.Record{{Title: "A"}})
	assert.Equal(t, 0, s.MergeState(nil, zap.NewNop()))
	a, _ := s.Get("A")
	assert.Equal(t, types.StatePending, a.Outcome.State)
}
