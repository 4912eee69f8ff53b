package viewstate

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Phase is the load lifecycle of a screen.
type Phase int

const (
	Idle Phase = iota
	Loading
	Loaded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Ticket identifies one load. Only the most recently issued ticket may
// write the screen buffer.
type Ticket uint64

// Snapshot is a consistent copy of a screen's state.
type Snapshot[T any] struct {
	Phase    Phase
	Data     T
	HasData  bool
	Err      error
	LoadedAt time.Time
	Filters  map[string]string
}

// Screen owns the list buffer and filter record of one screen instance.
type Screen[T any] struct {
	mu sync.Mutex

	key     string
	onStale func(key string)

	issued   Ticket
	phase    Phase
	before   Phase
	data     T
	hasData  bool
	err      error
	loadedAt time.Time
	filters  map[string]string
}

func NewScreen[T any](key string) *Screen[T] {
	return &Screen[T]{key: key, filters: make(map[string]string)}
}

func (s *Screen[T]) Key() string { return s.key }

// Begin issues a new ticket and moves the screen to Loading. Data from the
// last successful load stays readable.
func (s *Screen[T]) Begin() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	if s.phase != Loading {
		s.before = s.phase
	}
	s.phase = Loading
	return s.issued
}

// Complete stores data if t is still the latest ticket. It reports whether
// the result was applied.
func (s *Screen[T]) Complete(t Ticket, data T) bool {
	s.mu.Lock()
	if t != s.issued {
		s.mu.Unlock()
		s.stale()
		return false
	}
	s.phase = Loaded
	s.data = data
	s.hasData = true
	s.err = nil
	s.loadedAt = time.Now()
	s.mu.Unlock()
	return true
}

// Fail records err if t is still the latest ticket. Previous data is kept.
func (s *Screen[T]) Fail(t Ticket, err error) bool {
	s.mu.Lock()
	if t != s.issued {
		s.mu.Unlock()
		s.stale()
		return false
	}
	s.phase = Failed
	s.err = err
	s.mu.Unlock()
	return true
}

// Abandon drops a cancelled load. If t is the latest ticket the screen
// returns to the phase it had before Begin; the buffer is untouched.
func (s *Screen[T]) Abandon(t Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t == s.issued && s.phase == Loading {
		s.phase = s.before
	}
}

func (s *Screen[T]) stale() {
	if s.onStale != nil {
		s.onStale(s.key)
	}
}

// MergeFilters records the settled value of each given field. Fields not
// present in values keep their last value.
func (s *Screen[T]) MergeFilters(values map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range values {
		s.filters[k] = v
	}
}

func (s *Screen[T]) Snapshot() Snapshot[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	filters := make(map[string]string, len(s.filters))
	for k, v := range s.filters {
		filters[k] = v
	}
	return Snapshot[T]{
		Phase:    s.phase,
		Data:     s.data,
		HasData:  s.hasData,
		Err:      s.err,
		LoadedAt: s.loadedAt,
		Filters:  filters,
	}
}

// Load runs fetch under a fresh ticket and returns the resulting snapshot.
// When ctx is cancelled the ticket is abandoned and ctx's error returned.
// A superseded load leaves the buffer alone; the snapshot then reflects
// whichever load is current.
func (s *Screen[T]) Load(ctx context.Context, fetch func(ctx context.Context) (T, error)) (Snapshot[T], error) {
	t := s.Begin()
	data, err := fetch(ctx)
	if ctxErr := ctx.Err(); ctxErr != nil && (err == nil || errors.Is(err, ctxErr)) {
		s.Abandon(t)
		return s.Snapshot(), ctxErr
	}
	if err != nil {
		s.Fail(t, err)
		return s.Snapshot(), err
	}
	s.Complete(t, data)
	return s.Snapshot(), nil
}
