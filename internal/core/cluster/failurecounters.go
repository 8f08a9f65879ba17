package cluster

import "github.com/cohortdb/cohortdb-go/pkg/cmap"

// FailureCounters tracks a per-url consecutive-failure count. It never
// decrements except via Reset, so a node that has failed twice stays
// ineligible for striping until it proves itself again with a clean
// response.
type FailureCounters struct {
	counts *cmap.Map[string, int]
}

// NewFailureCounters returns an empty set of counters.
func NewFailureCounters() *FailureCounters {
	return &FailureCounters{counts: cmap.New[string, int]()}
}

// Get returns the current failure count for url, 0 if never recorded.
func (f *FailureCounters) Get(url string) int {
	v, _ := f.counts.Get(url)
	return v
}

// Increment records one more failure for url and returns the new count.
func (f *FailureCounters) Increment(url string) int {
	return f.counts.Update(url, func(v int, _ bool) int { return v + 1 })
}

// Reset clears url's failure count, e.g. after a successful response.
func (f *FailureCounters) Reset(url string) {
	f.counts.Set(url, 0)
}

// Eligible reports whether url may be chosen for striped reads: true iff
// its failure count is at most 1.
func (f *FailureCounters) Eligible(url string) bool {
	return f.Get(url) <= 1
}
