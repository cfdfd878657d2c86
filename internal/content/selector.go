package content

import (
	"math/rand/v2"
	"slices"

	"github.com/truthdare/truthdare-api/internal/model"
)

// Rand is the randomness a Selector draws from.
// IntN returns a uniform value in [0, n) and is only called with n > 0.
// *rand.Rand from math/rand/v2 satisfies it but is not safe for concurrent
// use; share one only behind a lock.
type Rand interface {
	IntN(n int) int
}

// globalRand uses the process-wide math/rand/v2 source, which is safe for
// concurrent use and seeded randomly at startup.
type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Selector picks records from snapshots. It keeps no state besides its
// random source and caches no results.
type Selector struct {
	rnd Rand
}

// NewSelector returns a Selector drawing from rnd, or from the process-wide
// generator when rnd is nil. Tests pass a deterministic Rand.
func NewSelector(rnd Rand) *Selector {
	if rnd == nil {
		rnd = globalRand{}
	}
	return &Selector{rnd: rnd}
}

// Random returns a uniformly chosen record of the snapshot.
// It fails with ErrEmptyCollection (category not found) when there are no items.
func (sel *Selector) Random(s *Snapshot) (model.Record, error) {
	if s.Len() == 0 {
		return model.Record{}, emptyCollection(s.kind)
	}
	return s.items[sel.rnd.IntN(len(s.items))], nil
}

// RandomByTag returns a uniformly chosen record carrying tag.
//
// The tag is normalized first, so "FUNNY" and "funny" draw from the same
// bucket. A tag the kind does not know and a known tag with no current items
// both fail with ErrUnknownTag.
func (sel *Selector) RandomByTag(s *Snapshot, tag string) (model.Record, error) {
	bucket := s.bucket(model.NormalizeTag(tag))
	if len(bucket) == 0 {
		return model.Record{}, unknownTag(s, tag)
	}
	return s.items[bucket[sel.rnd.IntN(len(bucket))]], nil
}

// RandomAcrossKinds picks a or b with equal probability, then a random record
// of the chosen snapshot. Only the chosen snapshot being empty is an error.
func (sel *Selector) RandomAcrossKinds(a, b *Snapshot) (model.Kind, model.Record, error) {
	chosen := a
	if sel.rnd.IntN(2) == 1 {
		chosen = b
	}
	rec, err := sel.Random(chosen)
	if err != nil {
		return chosen.kind, model.Record{}, err
	}
	return chosen.kind, rec, nil
}

// ListTags returns the tags present in the snapshot in lexicographic order.
// The result is a fresh slice on every call.
func ListTags(s *Snapshot) []string {
	return slices.Clone(s.tags)
}
