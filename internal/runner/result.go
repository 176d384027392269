package runner

import (
	"fmt"
	"time"
)

// Kind is the category of an updated item.
type Kind string

const (
	KindCore   Kind = "core"
	KindGeo    Kind = "geo"
	KindConfig Kind = "config"
)

// ItemResult is the outcome for one core, geo file or config entry.
type ItemResult struct {
	Kind        Kind
	Name        string
	Path        string    // Destination on disk
	Tag         string    // Release tag, cores only
	Asset       string    // Selected asset name, cores only
	OldSize     int64     // Size before the update, 0 if absent
	NewSize     int64     // Size after the update
	InstalledAt time.Time // Modification time of the installed binary, cores only
	Err         error     // nil on success
}

// OK reports whether the item was updated.
func (r ItemResult) OK() bool {
	return r.Err == nil
}

// Summary collects the results of one update section.
type Summary struct {
	Kind    Kind
	Items   []ItemResult
	Warning string // Set when the section had nothing to do
	Err     error  // Set when the section could not run at all
}

// Succeeded returns the number of updated items.
func (s *Summary) Succeeded() int {
	n := 0
	for _, it := range s.Items {
		if it.OK() {
			n++
		}
	}

	return n
}

// Failed returns the number of items that could not be updated.
func (s *Summary) Failed() int {
	return len(s.Items) - s.Succeeded()
}

// OK reports whether the section ran and every item succeeded.
func (s *Summary) OK() bool {
	return s.Err == nil && s.Failed() == 0
}

func (s *Summary) add(item ItemResult) {
	s.Items = append(s.Items, item)
}

// String returns a one-line tally, e.g. "2 updated, 1 failed".
func (s *Summary) String() string {
	return fmt.Sprintf("%d updated, %d failed", s.Succeeded(), s.Failed())
}
