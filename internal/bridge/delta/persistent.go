package delta

import (
	"context"
	"log"

	"github.com/Sharathvc23/nanda-bridge/internal/bridge/agentfacts"
)

// Appender persists deltas after they are admitted to the in-memory feed.
type Appender interface {
	AppendDelta(ctx context.Context, d Delta) error
}

// Loader reads deltas back from durable storage.
type Loader interface {
	ListDeltasSince(ctx context.Context, since uint64) ([]Delta, error)
}

// PersistentStore layers durable storage behind a Store.
//
// The in-memory feed stays authoritative for sequence assignment and
// ordering. Persistence is best effort: a failed append leaves the delta in
// memory and logs the degradation instead of rolling back, because readers
// may already have observed the sequence number. Reads prefer durable
// storage so a restarted process can serve history beyond the in-memory
// retention window, falling back to memory when the durable read fails or
// comes back empty.
//
// Either hook may be nil, which degrades that direction to memory-only.
// The application therefore runs one feed type whether or not a database
// is configured.
type PersistentStore struct {
	*Store
	appender Appender
	loader   Loader
}

// NewPersistentStore wraps store with optional persistence hooks.
func NewPersistentStore(store *Store, appender Appender, loader Loader) *PersistentStore {
	return &PersistentStore{
		Store:    store,
		appender: appender,
		loader:   loader,
	}
}

// Add admits the delta to the in-memory feed, then persists it. The
// returned delta is the admitted one even when persistence fails.
func (s *PersistentStore) Add(ctx context.Context, action Action, agent agentfacts.AgentFacts) (Delta, error) {
	d, err := s.Store.Add(action, agent)
	if err != nil {
		return Delta{}, err
	}
	if s.appender != nil {
		if err := s.appender.AppendDelta(ctx, d); err != nil {
			log.Printf("delta: persist seq %d: %v (feed continues in memory)", d.Seq, err)
		}
	}
	return d, nil
}

// Since returns deltas after the given cursor, preferring durable storage.
func (s *PersistentStore) Since(ctx context.Context, since uint64) []Delta {
	if s.loader != nil {
		deltas, err := s.loader.ListDeltasSince(ctx, since)
		if err != nil {
			log.Printf("delta: durable read since %d: %v (falling back to memory)", since, err)
		} else if len(deltas) > 0 {
			return deltas
		}
	}
	return s.Store.Since(since)
}

// Restore replays durable history into the in-memory feed so that sequence
// assignment resumes after the highest persisted delta. Called once at
// startup, before the store is shared.
func (s *PersistentStore) Restore(ctx context.Context) error {
	if s.loader == nil {
		return nil
	}
	deltas, err := s.loader.ListDeltasSince(ctx, 0)
	if err != nil {
		return err
	}
	s.Store.mu.Lock()
	defer s.Store.mu.Unlock()
	for _, d := range deltas {
		if d.Seq <= s.Store.lastSeq {
			continue
		}
		s.Store.lastSeq = d.Seq
		if d.Timestamp.After(s.Store.lastTS) {
			s.Store.lastTS = d.Timestamp
		}
		s.Store.deltas = append(s.Store.deltas, d)
		if len(s.Store.deltas) > s.Store.maxDeltas {
			drop := len(s.Store.deltas) - s.Store.maxDeltas
			s.Store.deltas = append(s.Store.deltas[:0], s.Store.deltas[drop:]...)
		}
	}
	return nil
}
