package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/truthdare/truthdare-api/internal/content"
	"github.com/truthdare/truthdare-api/internal/model"
)

const truthsDoc = `[
	{"id": 1, "content": "What is your biggest fear?", "category": "general"},
	{"id": 2, "content": "What is the funniest thing you have googled?", "category": "funny"},
	{"id": 3, "content": "What do you regret most?", "category": "deep"}
]`

const daresDoc = `[
	{"id": 1, "content": "Do 10 jumping jacks", "difficulty": "easy"},
	{"id": 2, "content": "Call a random contact and sing", "difficulty": "hard"}
]`

// memSource serves JSON documents from memory. Kinds without a document
// behave like a missing file.
type memSource struct {
	mu   sync.Mutex
	docs map[model.Kind]string
}

func newMemSource(truths, dares string) *memSource {
	return &memSource{docs: map[model.Kind]string{
		model.KindTruth: truths,
		model.KindDare:  dares,
	}}
}

func (m *memSource) set(kind model.Kind, doc string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[kind] = doc
}

func (m *memSource) Records(_ context.Context, kind model.Kind) ([]content.RawRecord, error) {
	m.mu.Lock()
	doc, ok := m.docs[kind]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: no document for %s", content.ErrSourceUnavailable, kind)
	}
	return content.DecodeRecords(strings.NewReader(doc))
}

// firstRand always picks index 0, or truths in a coin flip.
type firstRand struct{}

func (firstRand) IntN(int) int { return 0 }

// lastRand always picks the last index, or dares in a coin flip.
type lastRand struct{}

func (lastRand) IntN(n int) int { return n - 1 }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestCache(t *testing.T, src *memSource) *content.Cache {
	t.Helper()
	c := content.NewCache(content.NewLoader(src, 0))
	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return c
}

func newTestGameService(t *testing.T, src *memSource, rnd content.Rand) *GameService {
	t.Helper()
	return NewGameService(newTestCache(t, src), content.NewSelector(rnd), quietLogger())
}
