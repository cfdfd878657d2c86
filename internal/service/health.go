package service

import (
	"time"

	"github.com/truthdare/truthdare-api/internal/content"
	"github.com/truthdare/truthdare-api/internal/model"
)

// HealthData holds the headline counts of a health check.
type HealthData struct {
	TotalTruths      int `json:"total_truths"`
	TotalDares       int `json:"total_dares"`
	TruthCategories  int `json:"truth_categories"`
	DareDifficulties int `json:"dare_difficulties"`
}

// Health is the result of a health check. It is always produced, even when
// the cache cannot serve; Status and Error say why.
type Health struct {
	Status       string               `json:"status"`
	Timestamp    string               `json:"timestamp"`
	Data         HealthData           `json:"data"`
	Categories   map[string]int       `json:"categories"`
	Difficulties map[string]int       `json:"difficulties"`
	Error        string               `json:"error,omitempty"`
	Generations  map[string]string    `json:"generations,omitempty"`
	LoadedAt     map[string]time.Time `json:"loaded_at,omitempty"`
}

// TruthStats is the truths half of a Stats response.
type TruthStats struct {
	Total               int            `json:"total"`
	Categories          map[string]int `json:"categories"`
	AvailableCategories []string       `json:"available_categories"`
}

// DareStats is the dares half of a Stats response.
type DareStats struct {
	Total                 int            `json:"total"`
	Difficulties          map[string]int `json:"difficulties"`
	AvailableDifficulties []string       `json:"available_difficulties"`
}

// Stats is the full content breakdown.
type Stats struct {
	Truths     TruthStats `json:"truths"`
	Dares      DareStats  `json:"dares"`
	TotalItems int        `json:"total_items"`
}

// Health reports:
//   - healthy:   both kinds have items
//   - degraded:  exactly one kind is empty
//   - unhealthy: both kinds are empty, or the cache cannot serve at all
func (s *GameService) Health() Health {
	h := Health{
		Timestamp:    s.now().UTC().Format(time.RFC3339),
		Categories:   map[string]int{},
		Difficulties: map[string]int{},
	}

	truths, dares, err := s.snapshots()
	if err != nil {
		h.Status = StatusUnhealthy
		h.Error = err.Error()
		return h
	}

	report := content.Combine(content.ComputeStats(truths), content.ComputeStats(dares))
	h.Data = HealthData{
		TotalTruths:      report.Truths.Total,
		TotalDares:       report.Dares.Total,
		TruthCategories:  len(report.Truths.PerTag),
		DareDifficulties: len(report.Dares.PerTag),
	}
	h.Categories = report.Truths.PerTag
	h.Difficulties = report.Dares.PerTag
	h.Generations = make(map[string]string, 2)
	h.LoadedAt = make(map[string]time.Time, 2)

	empty := 0
	for _, snap := range []*content.Snapshot{truths, dares} {
		name := snap.Kind().Plural()
		h.Generations[name] = snap.Generation()
		h.LoadedAt[name] = snap.LoadedAt()
		if report.Of(snap.Kind()).Total == 0 {
			empty++
		}
	}

	switch empty {
	case 2:
		h.Status = StatusUnhealthy
		h.Error = "no content available"
	case 1:
		h.Status = StatusDegraded
	default:
		h.Status = StatusHealthy
	}
	return h
}

// Stats returns per-tag counts for both kinds.
func (s *GameService) Stats() (Stats, error) {
	truths, dares, err := s.snapshots()
	if err != nil {
		return Stats{}, err
	}

	report := content.Combine(content.ComputeStats(truths), content.ComputeStats(dares))
	return Stats{
		Truths: TruthStats{
			Total:               report.Truths.Total,
			Categories:          report.Truths.PerTag,
			AvailableCategories: content.ListTags(truths),
		},
		Dares: DareStats{
			Total:                 report.Dares.Total,
			Difficulties:          report.Dares.PerTag,
			AvailableDifficulties: content.ListTags(dares),
		},
		TotalItems: report.TotalItems(),
	}, nil
}

// snapshots reads both kinds. Each is read independently, so during a reload
// the pair may mix generations; each snapshot on its own is consistent.
func (s *GameService) snapshots() (*content.Snapshot, *content.Snapshot, error) {
	truths, err := s.store.Snapshot(model.KindTruth)
	if err != nil {
		return nil, nil, err
	}
	dares, err := s.store.Snapshot(model.KindDare)
	if err != nil {
		return nil, nil, err
	}
	return truths, dares, nil
}
