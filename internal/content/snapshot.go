// Package content is the content cache and selection engine.
//
// DATA FLOW:
//
//	Source -> Loader -> Snapshot (items + byTag index) -> Cache -> Selector / Stats
//
// A Snapshot is built once and never modified. The Cache publishes one
// Snapshot per kind through an atomic pointer, so readers never lock and
// never see a half-built index. Nothing in this package logs; errors are
// returned as values and the caller decides what to report.
package content

import (
	"slices"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/truthdare/truthdare-api/internal/model"
)

// Snapshot is an immutable, fully indexed view of one kind's content.
//
// INVARIANTS:
//   - every items[i].ID is unique within the snapshot
//   - every items[i].Tag is a recognised, lower-case tag of kind
//   - byTag is derived from items only: each index appears in exactly one
//     bucket, buckets keep source order, and empty buckets do not exist
//   - tags holds the sorted keys of byTag
type Snapshot struct {
	kind       model.Kind
	generation string
	items      []model.Record
	byTag      map[string][]int
	tags       []string
	loadedAt   time.Time
}

// NewSnapshot validates records and builds the partition index.
//
// Tags are normalized to lower-case before validation, so "Easy" and "easy"
// land in the same bucket. The records slice is copied; the caller keeps
// ownership of its argument. Any invalid record fails the whole snapshot
// with a schema *LoadError.
func NewSnapshot(kind model.Kind, records []model.Record) (*Snapshot, error) {
	if kind.Tags() == nil {
		return nil, &LoadError{Kind: kind, Reason: ReasonSchema, Record: -1, Err: ErrInvalidRecord}
	}

	items := make([]model.Record, len(records))
	byTag := make(map[string][]int)
	seen := make(map[int64]int, len(records))

	for i, rec := range records {
		if strings.TrimSpace(rec.Text) == "" {
			return nil, schemaError(kind, i, "content must not be empty")
		}

		tag := model.NormalizeTag(rec.Tag)
		if !kind.ValidTag(tag) {
			return nil, schemaError(kind, i, "%s %q is not one of %s",
				kind.TagField(), rec.Tag, strings.Join(kind.Tags(), ", "))
		}

		if first, dup := seen[rec.ID]; dup {
			return nil, schemaError(kind, i, "duplicate id %d (first seen at record %d)", rec.ID, first)
		}
		seen[rec.ID] = i

		rec.Tag = tag
		items[i] = rec
		byTag[tag] = append(byTag[tag], i)
	}

	tags := make([]string, 0, len(byTag))
	for tag := range byTag {
		tags = append(tags, tag)
	}
	slices.Sort(tags)

	return &Snapshot{
		kind:       kind,
		generation: xid.New().String(),
		items:      items,
		byTag:      byTag,
		tags:       tags,
		loadedAt:   time.Now().UTC(),
	}, nil
}

// Kind returns the content kind this snapshot holds.
func (s *Snapshot) Kind() model.Kind { return s.kind }

// Generation is a unique id assigned when the snapshot was built.
// Two snapshots never share a generation, even if their content is equal.
func (s *Snapshot) Generation() string { return s.generation }

// LoadedAt is the construction time in UTC.
func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

// Len returns the number of items.
func (s *Snapshot) Len() int { return len(s.items) }

// Item returns the i-th record in source order.
func (s *Snapshot) Item(i int) model.Record { return s.items[i] }

// Items returns a copy of all records in source order.
func (s *Snapshot) Items() []model.Record { return slices.Clone(s.items) }

// bucket returns the item indices for an already-normalized tag.
func (s *Snapshot) bucket(tag string) []int { return s.byTag[tag] }
