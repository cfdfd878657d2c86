// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data. A Record is the only content type;
// the Kind it belongs to decides which tags it may carry.
package model

import (
	"fmt"
	"slices"
	"strings"
)

// Kind is one of the two top-level content partitions.
type Kind string

const (
	KindTruth Kind = "truth"
	KindDare  Kind = "dare"
)

// Kinds lists every content kind in a fixed order (truths first).
var Kinds = []Kind{KindTruth, KindDare}

// Recognised tags per kind. Tags are always stored lower-case.
var (
	TruthCategories  = []string{"general", "relationships", "funny", "deep", "embarrassing"}
	DareDifficulties = []string{"easy", "medium", "hard"}
)

// ParseKind converts user or config input ("truth", "Dares", ...) into a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "truth", "truths":
		return KindTruth, nil
	case "dare", "dares":
		return KindDare, nil
	}
	return "", fmt.Errorf("unknown content kind %q", s)
}

// Plural returns the collection name used in file names, tables and reports.
func (k Kind) Plural() string {
	return string(k) + "s"
}

// TagField is the name of the JSON field holding the tag for this kind.
// Truths are tagged by category, dares by difficulty.
func (k Kind) TagField() string {
	if k == KindDare {
		return "difficulty"
	}
	return "category"
}

// Tags returns the closed set of tags a record of this kind may carry.
// The returned slice is a copy; callers may modify it.
func (k Kind) Tags() []string {
	switch k {
	case KindTruth:
		return slices.Clone(TruthCategories)
	case KindDare:
		return slices.Clone(DareDifficulties)
	}
	return nil
}

// ValidTag reports whether tag (already normalized) belongs to this kind.
func (k Kind) ValidTag(tag string) bool {
	switch k {
	case KindTruth:
		return slices.Contains(TruthCategories, tag)
	case KindDare:
		return slices.Contains(DareDifficulties, tag)
	}
	return false
}

// NormalizeTag trims and lower-cases a tag so "Easy", " easy " and "EASY" compare equal.
func NormalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// Record is a single immutable truth question or dare challenge.
//
// ID is assigned by the source data and is unique within its kind.
// Tag is the category (truths) or difficulty (dares), normalized to lower-case.
type Record struct {
	ID   int64  `json:"id"`
	Text string `json:"content"`
	Tag  string `json:"tag"`
}
