package delta

import (
	"sort"
	"sync"
	"time"

	"github.com/Sharathvc23/nanda-bridge/internal/bridge/agentfacts"
	"github.com/Sharathvc23/nanda-bridge/internal/platform/errors"
)

// DefaultMaxDeltas bounds feed memory when no explicit capacity is given.
const DefaultMaxDeltas = 10000

// Store is an in-memory, capacity-bound delta feed.
//
// All operations are safe for concurrent use. Add is linearizable: sequence
// numbers are assigned under the store lock, so two concurrent adds never
// observe the same sequence and feed order matches assignment order.
type Store struct {
	mu        sync.Mutex
	deltas    []Delta
	lastSeq   uint64
	lastTS    time.Time
	maxDeltas int
	now       func() time.Time
}

// NewStore returns a feed retaining at most maxDeltas entries. Pass
// DefaultMaxDeltas unless the caller has a measured reason not to.
func NewStore(maxDeltas int) (*Store, error) {
	if maxDeltas <= 0 {
		return nil, errors.New(errors.CodeInvalidArgument, "max deltas must be positive")
	}
	return &Store{
		maxDeltas: maxDeltas,
		now:       time.Now,
	}, nil
}

// SetClock replaces the timestamp source. Test hook; call before the store
// is shared across goroutines.
func (s *Store) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Add records a change and returns it with its assigned sequence number and
// timestamp. When the feed exceeds capacity the oldest entries are dropped;
// sequence numbers are never reused, so a consumer polling past the drop
// point observes a gap rather than a replay.
func (s *Store) Add(action Action, agent agentfacts.AgentFacts) (Delta, error) {
	if !action.Valid() {
		return Delta{}, errors.WithMetadata(errors.CodeInvalidAction, "unknown delta action",
			map[string]string{"action": string(action)})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.now().UTC()
	// Wall clocks can step backwards; feed timestamps must not.
	if ts.Before(s.lastTS) {
		ts = s.lastTS
	}
	s.lastTS = ts

	s.lastSeq++
	d := Delta{
		Seq:       s.lastSeq,
		Action:    action,
		Agent:     agent,
		Timestamp: ts,
	}
	s.deltas = append(s.deltas, d)
	if len(s.deltas) > s.maxDeltas {
		drop := len(s.deltas) - s.maxDeltas
		s.deltas = append(s.deltas[:0], s.deltas[drop:]...)
	}
	return d, nil
}

// Since returns all retained deltas with a sequence number strictly greater
// than since, in ascending order. since 0 means "from the beginning of
// retention". The slice is a copy; callers may keep it.
func (s *Store) Since(since uint64) []Delta {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.searchLocked(since)
	out := make([]Delta, len(s.deltas)-idx)
	copy(out, s.deltas[idx:])
	return out
}

// Get returns the delta with the given sequence number, or
// errors.CodeNotFound if it was never assigned or has been pruned.
func (s *Store) Get(seq uint64) (Delta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq > 0 {
		idx := s.searchLocked(seq - 1)
		if idx < len(s.deltas) && s.deltas[idx].Seq == seq {
			return s.deltas[idx], nil
		}
	}
	return Delta{}, errors.New(errors.CodeNotFound, "delta not found")
}

// searchLocked returns the index of the first retained delta with Seq >
// since. Sequence numbers are ascending within the slice but may have gaps
// after a restore, so this is a binary search rather than offset math.
func (s *Store) searchLocked(since uint64) int {
	return sort.Search(len(s.deltas), func(i int) bool {
		return s.deltas[i].Seq > since
	})
}

// NextSeq returns the sequence number the next Add will be assigned.
// Consumers bootstrapping a cursor use NextSeq-1 as "caught up to now".
func (s *Store) NextSeq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeq + 1
}

// CurrentSeq returns the highest sequence number assigned so far, zero when
// nothing has been added.
func (s *Store) CurrentSeq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeq
}

// Len returns the number of retained deltas.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.deltas)
}

// Clear drops all retained deltas but keeps the sequence counter, so
// sequence numbers stay unique across a clear.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deltas = nil
}
