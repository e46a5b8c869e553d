package checks

import (
	"context"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/spoolguard/spoolguard/internal/spool"
)

// session owns all mutable state of one verification run: the record cache
// and the accumulated error list. A session is created at the start of Run
// and cleared unconditionally when Run returns, on every exit path.
//
// The cache exists so that tools sharing a spool reuse one fetch. In
// single-spool mode it degenerates to a cache of size one. Concurrent tool
// evaluation is safe: the cache is mutex-guarded and a singleflight group
// collapses simultaneous fetches of the same spool into one request.
type session struct {
	token   string
	mode    Mode
	slotMap spool.ToolSlotMap

	mu    sync.Mutex
	cache map[int]*spool.Spool
	errs  []string

	flight singleflight.Group
}

func newSession(token string) *session {
	return &session{
		token: token,
		cache: make(map[int]*spool.Spool),
	}
}

// fetchSpool resolves a spool id through the cache, fetching at most once
// per id per session.
func (s *session) fetchSpool(ctx context.Context, inv Inventory, id int) (*spool.Spool, error) {
	s.mu.Lock()
	if cached, ok := s.cache[id]; ok {
		s.mu.Unlock()
		return cached, nil
	}
	s.mu.Unlock()

	v, err, _ := s.flight.Do(strconv.Itoa(id), func() (any, error) {
		record, err := inv.Spool(ctx, id)
		if err != nil {
			// Errors are not cached; a later tool may retry.
			return nil, err
		}
		s.mu.Lock()
		s.cache[id] = record
		s.mu.Unlock()
		return record, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*spool.Spool), nil
}

// cacheLen returns the number of cached records.
func (s *session) cacheLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cache)
}

// appendError records a blocking violation message in arrival order.
func (s *session) appendError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, msg)
}

// errors returns a copy of the accumulated error messages.
func (s *session) errors() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.errs...)
}

// clear drops the cache and the error list. Called at session start and,
// via defer, on every exit path including panics.
func (s *session) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[int]*spool.Spool)
	s.errs = nil
}
