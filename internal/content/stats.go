package content

import "github.com/truthdare/truthdare-api/internal/model"

// Stats summarises one snapshot.
type Stats struct {
	Total  int            `json:"total"`
	PerTag map[string]int `json:"per_tag"`
}

// ComputeStats counts each bucket of the partition index. Total is the sum of
// the bucket sizes, which equals Len() by construction. An empty snapshot
// yields Total 0 and an empty, non-nil PerTag.
func ComputeStats(s *Snapshot) Stats {
	st := Stats{PerTag: make(map[string]int, len(s.byTag))}
	for tag, bucket := range s.byTag {
		st.PerTag[tag] = len(bucket)
		st.Total += len(bucket)
	}
	return st
}

// Report combines the stats of both kinds for health and statistics views.
type Report struct {
	Truths Stats `json:"truths"`
	Dares  Stats `json:"dares"`
}

// Combine builds a Report. It is a pure function of its inputs.
func Combine(truths, dares Stats) Report {
	return Report{Truths: truths, Dares: dares}
}

// TotalItems is the number of records across both kinds.
func (r Report) TotalItems() int {
	return r.Truths.Total + r.Dares.Total
}

// Of returns the stats for kind.
func (r Report) Of(kind model.Kind) Stats {
	if kind == model.KindDare {
		return r.Dares
	}
	return r.Truths
}
