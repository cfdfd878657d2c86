package content

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/truthdare/truthdare-api/internal/model"
)

// Five truths tagged general, general, funny, deep, embarrassing.
const truthsJSON = `[
	{"id": 1, "content": "What is your biggest fear?", "category": "general"},
	{"id": 2, "content": "Who was your first crush?", "category": "General"},
	{"id": 3, "content": "What is the funniest thing you have googled?", "category": "funny"},
	{"id": 4, "content": "What do you regret most?", "category": "deep"},
	{"id": 5, "content": "What is your most embarrassing moment?", "category": "embarrassing"}
]`

const daresJSON = `[
	{"id": 1, "content": "Do 10 jumping jacks", "difficulty": "Easy"},
	{"id": 2, "content": "Sing the chorus of a song", "difficulty": "easy"},
	{"id": 3, "content": "Call a random contact and sing", "difficulty": "hard"}
]`

// fakeSource serves JSON documents from memory. Kinds with no document set
// behave like a missing file.
type fakeSource struct {
	mu    sync.Mutex
	docs  map[model.Kind]string
	calls map[model.Kind]int
}

func newFakeSource(truths, dares string) *fakeSource {
	return &fakeSource{
		docs:  map[model.Kind]string{model.KindTruth: truths, model.KindDare: dares},
		calls: make(map[model.Kind]int),
	}
}

func (f *fakeSource) set(kind model.Kind, doc string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[kind] = doc
}

func (f *fakeSource) unset(kind model.Kind) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.docs, kind)
}

func (f *fakeSource) callCount(kind model.Kind) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[kind]
}

func (f *fakeSource) Records(_ context.Context, kind model.Kind) ([]RawRecord, error) {
	f.mu.Lock()
	doc, ok := f.docs[kind]
	f.calls[kind]++
	f.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("%w: no document for %s", ErrSourceUnavailable, kind)
	}
	return DecodeRecords(strings.NewReader(doc))
}

// fixedRand always returns the same value (mod n).
type fixedRand int

func (f fixedRand) IntN(n int) int { return int(f) % n }

// cycleRand returns 0, 1, 2, ... (mod n) across calls.
type cycleRand struct {
	mu   sync.Mutex
	next int
}

func (c *cycleRand) IntN(n int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := c.next % n
	c.next++
	return v
}

func mustSnapshot(t *testing.T, kind model.Kind, doc string) *Snapshot {
	t.Helper()
	loader := NewLoader(newFakeSource(doc, doc), 0)
	snap, err := loader.Load(context.Background(), kind)
	require.NoError(t, err)
	return snap
}

func newTestCache(t *testing.T, src *fakeSource) *Cache {
	t.Helper()
	c := NewCache(NewLoader(src, 0))
	require.NoError(t, c.Initialize(context.Background()))
	return c
}
