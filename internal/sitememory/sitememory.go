// Package sitememory remembers which sites were already handled during the
// current browsing session.
package sitememory

import (
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"
)

// Origin extracts the cache key of a page: its host. Unparseable input, or
// input without a host, is used verbatim.
func Origin(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return rawURL
	}
	return strings.ToLower(u.Hostname())
}

type Record struct {
	Origin      string    `json:"origin"`
	ProcessedAt time.Time `json:"processedAt"`
}

// Service is the session-scoped set of processed origins. Safe for
// concurrent use.
type Service struct {
	mu      sync.RWMutex
	records map[string]Record
	now     func() time.Time
}

func New() *Service {
	return &Service{
		records: make(map[string]Record),
		now:     time.Now,
	}
}

// IsProcessed reports whether the origin of rawURL was marked in this session.
func (s *Service) IsProcessed(rawURL string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[Origin(rawURL)]
	return ok
}

// MarkProcessed records the origin of rawURL and returns it. Marking twice
// keeps the first timestamp.
func (s *Service) MarkProcessed(rawURL string) string {
	origin := Origin(rawURL)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[origin]; !ok {
		s.records[origin] = Record{Origin: origin, ProcessedAt: s.now()}
	}
	return origin
}

// Clear forgets every origin and returns how many were dropped.
func (s *Service) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.records)
	s.records = make(map[string]Record)
	return n
}

func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Records returns a snapshot sorted by origin.
func (s *Service) Records() []Record {
	s.mu.RLock()
	out := make([]Record, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Origin < out[j].Origin })
	return out
}
