package vector

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIndex struct {
	candidates []Candidate
	err        error
	calls      int
}

func (f *fakeIndex) Query(ctx context.Context, namespace string, vector []float32, topK int) ([]Candidate, error) {
	f.calls++
	return f.candidates, f.err
}

func TestBestMatchPicksStrictMaximum(t *testing.T) {
	best, ok := BestMatch([]Candidate{
		{ID: "a", Score: 0.31},
		{ID: "b", Score: 0.87},
		{ID: "c", Score: 0.54},
	})

	require.True(t, ok)
	assert.Equal(t, "b", best.ID)
	assert.Equal(t, 0.87, best.Score)
}

func TestBestMatchTieKeepsFirstSeen(t *testing.T) {
	best, ok := BestMatch([]Candidate{
		{ID: "first", Score: 0.9},
		{ID: "second", Score: 0.9},
		{ID: "third", Score: 0.2},
	})

	require.True(t, ok)
	assert.Equal(t, "first", best.ID)
}

func TestBestMatchEmptyList(t *testing.T) {
	_, ok := BestMatch(nil)
	assert.False(t, ok)

	_, ok = BestMatch([]Candidate{})
	assert.False(t, ok)
}

func TestFindBestMatchDimensionMismatchSkipsIndex(t *testing.T) {
	idx := &fakeIndex{candidates: []Candidate{{ID: "a", Score: 1}}}
	m := NewMatcher(idx, 4, nil)

	_, _, err := m.FindBestMatch(context.Background(), "files", []float32{1, 2}, 3)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDimensionMismatch))
	assert.Equal(t, 0, idx.calls, "index must not be called on a precondition failure")
}

func TestFindBestMatchEmptyResponseIsNotAnError(t *testing.T) {
	idx := &fakeIndex{}
	m := NewMatcher(idx, 2, nil)

	_, ok, err := m.FindBestMatch(context.Background(), "files", []float32{1, 2}, 3)

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, idx.calls)
}

func TestFindBestMatchFiltersUnknownIDs(t *testing.T) {
	idx := &fakeIndex{candidates: []Candidate{
		{ID: "ghost", Score: 0.99},
		{ID: "known", Score: 0.42},
	}}
	known := func(id string) bool { return id == "known" }
	m := NewMatcher(idx, 2, known)

	// The winner is unknown to the catalog, so the result is no-match even
	// though a weaker known candidate exists.
	_, ok, err := m.FindBestMatch(context.Background(), "files", []float32{1, 2}, 3)

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFindBestMatchReturnsKnownWinner(t *testing.T) {
	idx := &fakeIndex{candidates: []Candidate{
		{ID: "esim-001", Score: 0.92},
		{ID: "roaming-001", Score: 0.55},
	}}
	m := NewMatcher(idx, 3, func(id string) bool { return true })

	best, ok, err := m.FindBestMatch(context.Background(), "files", []float32{1, 2, 3}, 3)

	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "esim-001", best.ID)
}

func TestFindBestMatchPropagatesQueryError(t *testing.T) {
	idx := &fakeIndex{err: errors.New("index down")}
	m := NewMatcher(idx, 2, nil)

	_, _, err := m.FindBestMatch(context.Background(), "files", []float32{1, 2}, 3)
	assert.Error(t, err)
}
