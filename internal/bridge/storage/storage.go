// Package storage defines persistence interfaces for the bridge.
//
// Two concerns persist independently: the delta log (the append-only change
// feed) and the agent catalog (current state of each agent). Implementations
// live in subpackages; the in-memory path uses no storage at all.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/Sharathvc23/nanda-bridge/internal/bridge/agentfacts"
	"github.com/Sharathvc23/nanda-bridge/internal/bridge/delta"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// DeltaLog persists the change feed.
type DeltaLog interface {
	// AppendDelta stores one delta. Sequence numbers are assigned upstream;
	// appending a duplicate seq is an error.
	AppendDelta(ctx context.Context, d delta.Delta) error
	// ListDeltasSince returns persisted deltas with seq > since, ascending.
	ListDeltasSince(ctx context.Context, since uint64) ([]delta.Delta, error)
	// GetDeltaBySeq returns one delta or ErrNotFound.
	GetDeltaBySeq(ctx context.Context, seq uint64) (delta.Delta, error)
	// LatestSeq returns the highest persisted seq, zero when empty.
	LatestSeq(ctx context.Context) (uint64, error)
}

// AgentRecord is one row of the agent catalog.
type AgentRecord struct {
	CanonicalID string
	Facts       agentfacts.AgentFacts
	Public      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AgentStore persists the current agent catalog.
type AgentStore interface {
	PutAgent(ctx context.Context, record AgentRecord) error
	// GetAgent returns one record or ErrNotFound.
	GetAgent(ctx context.Context, canonicalID string) (AgentRecord, error)
	// DeleteAgent removes one record; deleting an absent record is a no-op.
	DeleteAgent(ctx context.Context, canonicalID string) error
	// ListAgents returns a page of records ordered by canonical ID.
	ListAgents(ctx context.Context, limit, offset int) ([]AgentRecord, error)
	CountAgents(ctx context.Context) (int, error)
}
