// Package bloom provides record deduplication using Bloom filters.
package bloom

import (
	"fmt"
	"strings"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"

	"github.com/fwojciec/harvest"
)

// SeenFilter tracks record identities across the pages of one harvest
// run, so an item listed on several pages is emitted once. It is safe
// for concurrent use by multiple goroutines.
type SeenFilter struct {
	mu sync.Mutex
	f  *bloom.BloomFilter
}

// NewSeenFilter creates a filter sized for n expected records with the
// given false positive rate.
func NewSeenFilter(n uint, fpRate float64) *SeenFilter {
	return &SeenFilter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// Key builds a record's dedupe identity: its URL when present, otherwise
// name and price. URL fragments are stripped so links differing only by
// fragment collapse together.
func Key(r *harvest.Record) string {
	if url, ok := r.Get(harvest.FieldURL); ok {
		if idx := strings.Index(url, "#"); idx != -1 {
			url = url[:idx]
		}
		return "url:" + strings.ToLower(url)
	}
	name, _ := r.Get(harvest.FieldName)
	price := r.Numeric[harvest.FieldPrice]
	return fmt.Sprintf("name:%s|%g", strings.ToLower(name), price)
}

// Seen marks the record and reports whether it was already present.
// False positives are possible; false negatives are not.
func (s *SeenFilter) Seen(r *harvest.Record) bool {
	key := Key(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := s.f.TestString(key)
	if !seen {
		s.f.AddString(key)
	}
	return seen
}

// EstimatedCount returns the approximate number of distinct records seen.
func (s *SeenFilter) EstimatedCount() uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return uint(s.f.ApproximatedSize())
}
