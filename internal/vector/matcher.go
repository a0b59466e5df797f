package vector

import (
	"context"
	"errors"
	"fmt"
)

// ErrDimensionMismatch is a precondition failure: the supplied vector does
// not have the dimension the namespace was configured with. Raised before
// any index call is made.
var ErrDimensionMismatch = errors.New("query vector dimension does not match index configuration")

// Candidate is one entry of a top-k similarity response, in provider order.
type Candidate struct {
	ID    string
	Score float64
}

// Index is the namespace-scoped similarity search the matcher runs against.
type Index interface {
	Query(ctx context.Context, namespace string, vector []float32, topK int) ([]Candidate, error)
}

// BestMatch reduces a candidate list to the single candidate with the
// strictly highest score. On ties the candidate seen first in provider
// order wins, so the result is deterministic for a fixed response. An empty
// list yields ok=false.
func BestMatch(candidates []Candidate) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Score > best.Score {
			best = c
		}
	}
	return best, true
}

// KnownFunc reports whether a match id exists in the knowledge catalog.
type KnownFunc func(id string) bool

type Matcher struct {
	index     Index
	dimension int
	known     KnownFunc
}

// NewMatcher builds a matcher over index. known may be nil, in which case
// every returned id is accepted.
func NewMatcher(index Index, dimension int, known KnownFunc) *Matcher {
	return &Matcher{
		index:     index,
		dimension: dimension,
		known:     known,
	}
}

// FindBestMatch queries one namespace for the top-k nearest candidates and
// selects the best one. A missing match (empty response, or a winner the
// catalog does not know) is a normal outcome reported as ok=false, never
// an error.
func (m *Matcher) FindBestMatch(ctx context.Context, namespace string, vector []float32, topK int) (Candidate, bool, error) {
	if len(vector) != m.dimension {
		return Candidate{}, false, fmt.Errorf("%w: got %d, want %d",
			ErrDimensionMismatch, len(vector), m.dimension)
	}

	candidates, err := m.index.Query(ctx, namespace, vector, topK)
	if err != nil {
		return Candidate{}, false, fmt.Errorf("similarity query failed: %w", err)
	}

	best, ok := BestMatch(candidates)
	if !ok {
		return Candidate{}, false, nil
	}
	if m.known != nil && !m.known(best.ID) {
		return Candidate{}, false, nil
	}
	return best, true, nil
}
