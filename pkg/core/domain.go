// Package core holds the catalogue domain: records, sanitization, merge
// and the Service that serializes access to the store.
package core

import (
	"sort"

	"golang.org/x/text/cases"
)

// Source is a supporting citation attached to a Record.
// Every field is optional, but a Source with no field set is never stored.
type Source struct {
	Titre  string `json:"titre,omitempty" yaml:"titre,omitempty"`
	Auteur string `json:"auteur,omitempty" yaml:"auteur,omitempty"`
	URL    string `json:"url,omitempty" yaml:"url,omitempty"`
}

// Record is one phrase with its counter-argument and supporting sources.
// Phrase is the unique key of the catalogue.
type Record struct {
	Phrase       string   `json:"phrase" yaml:"phrase"`
	Argumentaire string   `json:"argumentaire" yaml:"argumentaire"`
	Sources      []Source `json:"sources" yaml:"sources"`
}

// Clone returns a deep copy of the record. Sources is never nil in the copy.
func (r Record) Clone() Record {
	out := r
	out.Sources = make([]Source, len(r.Sources))
	copy(out.Sources, r.Sources)
	return out
}

// FoldKey returns the case-insensitive ordering key for a phrase.
func FoldKey(phrase string) string {
	// Casers are stateful, so a fresh one is built per call.
	return cases.Fold().String(phrase)
}

// SortRecords orders records ascending by folded phrase, ties broken by the raw phrase.
func SortRecords(records []Record) {
	keys := make(map[string]string, len(records))
	for _, r := range records {
		keys[r.Phrase] = FoldKey(r.Phrase)
	}
	sort.SliceStable(records, func(i, j int) bool {
		ki, kj := keys[records[i].Phrase], keys[records[j].Phrase]
		if ki != kj {
			return ki < kj
		}
		return records[i].Phrase < records[j].Phrase
	})
}

// EventType represents the type of change observed on the store.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents a change of the persisted store.
type Event struct {
	Type      EventType
	Path      string
	Timestamp int64 // Unix timestamp
}

// String implements fmt.Stringer (and lifecycle.Event).
func (e Event) String() string {
	return string(e.Type) + " " + e.Path
}
