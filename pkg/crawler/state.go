package crawler

import (
	"sync"

	"github.com/zarif007/RepliKat/pkg/models"
)

// visitedSet tracks canonical URLs already scheduled for fetch during one
// crawl invocation. Safe for concurrent use by racing branches.
type visitedSet struct {
	mu   sync.Mutex
	urls map[string]struct{}
}

func newVisitedSet() *visitedSet {
	return &visitedSet{urls: make(map[string]struct{})}
}

// Add marks the URL as scheduled. Returns true if it was newly added,
// false if another branch already claimed it.
func (v *visitedSet) Add(canonicalURL string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, exists := v.urls[canonicalURL]; exists {
		return false
	}
	v.urls[canonicalURL] = struct{}{}
	return true
}

// Contains reports whether the URL has been scheduled already.
func (v *visitedSet) Contains(canonicalURL string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, exists := v.urls[canonicalURL]
	return exists
}

// Len returns the number of scheduled URLs.
func (v *visitedSet) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.urls)
}

// pageBudget is the shared fetch counter for one crawl. The check and the
// increment happen under one lock, so concurrent branches can never push the
// total past the ceiling.
type pageBudget struct {
	mu   sync.Mutex
	used int
	max  int
}

func newPageBudget(max int) *pageBudget {
	return &pageBudget{max: max}
}

// TryAcquire charges one fetch against the budget. Returns false once the
// ceiling is reached; no fetch may be issued in that case.
func (b *pageBudget) TryAcquire() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.used >= b.max {
		return false
	}
	b.used++
	return true
}

// Exhausted reports whether the budget has no remaining capacity.
func (b *pageBudget) Exhausted() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.used >= b.max
}

// Used returns the number of fetches charged so far.
func (b *pageBudget) Used() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.used
}

// outcomeCounter tallies node outcomes across concurrent branches for the
// crawl report.
type outcomeCounter struct {
	mu     sync.Mutex
	counts map[models.NodeOutcome]int
}

func newOutcomeCounter() *outcomeCounter {
	return &outcomeCounter{counts: make(map[models.NodeOutcome]int)}
}

func (o *outcomeCounter) record(outcome models.NodeOutcome) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.counts[outcome]++
}

func (o *outcomeCounter) snapshot() map[models.NodeOutcome]int {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make(map[models.NodeOutcome]int, len(o.counts))
	for k, v := range o.counts {
		out[k] = v
	}
	return out
}
