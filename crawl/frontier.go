package crawl

import (
	"strings"
	"sync"

	"github.com/fwojciec/docindex/bloom"
)

// Frontier is a FIFO queue of page URLs that admits each URL once.
// A Bloom filter answers most lookups; its hits are confirmed against the
// exact set of admitted URLs, so a false positive never drops a page.
// It is safe for concurrent use.
type Frontier struct {
	mu       sync.Mutex
	seen     *bloom.Filter
	admitted map[string]struct{}
	queue    []string
}

// NewFrontier creates a Frontier sized for n expected URLs with the given
// false positive rate.
func NewFrontier(n uint, fpRate float64) *Frontier {
	return &Frontier{
		seen:     bloom.NewFilter(n, fpRate),
		admitted: make(map[string]struct{}),
	}
}

// Push queues rawURL unless it was pushed before. Fragments are ignored, so
// URLs differing only by fragment are duplicates.
func (f *Frontier) Push(rawURL string) bool {
	key := stripFragment(rawURL)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seen.TestAndAdd(key) {
		if _, ok := f.admitted[key]; ok {
			return false
		}
	}
	f.admitted[key] = struct{}{}
	f.queue = append(f.queue, key)
	return true
}

// Drain removes and returns up to n queued URLs in the order they were pushed.
func (f *Frontier) Drain(n int) []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	n = min(n, len(f.queue))
	if n <= 0 {
		return nil
	}
	out := f.queue[:n:n]
	f.queue = f.queue[n:]
	return out
}

// Len returns the number of queued URLs.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

func stripFragment(rawURL string) string {
	if i := strings.IndexByte(rawURL, '#'); i >= 0 {
		return rawURL[:i]
	}
	return rawURL
}
