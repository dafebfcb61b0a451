// Package catalog provides a storage-backed converter.
//
// Where SimpleConverter holds agents in memory, Catalog keeps the canonical
// records in an AgentStore so the index survives restarts. Records enter
// the catalog already converted; Catalog never sees a registry-internal
// agent model.
package catalog

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/Sharathvc23/nanda-bridge/internal/bridge/agentfacts"
	"github.com/Sharathvc23/nanda-bridge/internal/bridge/converter"
	"github.com/Sharathvc23/nanda-bridge/internal/bridge/identity"
	"github.com/Sharathvc23/nanda-bridge/internal/bridge/storage"
	"github.com/Sharathvc23/nanda-bridge/internal/platform/errors"
)

// Catalog adapts an AgentStore to the Converter contract.
type Catalog struct {
	store storage.AgentStore
	now   func() time.Time
}

// New builds a catalog over the given store.
func New(store storage.AgentStore) (*Catalog, error) {
	if store == nil {
		return nil, errors.New(errors.CodeInvalidArgument, "agent store is required")
	}
	return &Catalog{store: store, now: time.Now}, nil
}

// SetClock replaces the timestamp source. Test hook.
func (c *Catalog) SetClock(now func() time.Time) {
	if now != nil {
		c.now = now
	}
}

// Put stores or replaces one canonical record. The storage key is the
// canonical ID parsed from the record's DID; the original creation time is
// preserved on update.
func (c *Catalog) Put(ctx context.Context, facts agentfacts.AgentFacts, public bool) (string, error) {
	canonicalID := identity.Parse(facts.ID)
	if canonicalID == "" {
		return "", errors.New(errors.CodeInvalidArgument, "agent id is required")
	}
	now := c.now().UTC()
	record := storage.AgentRecord{
		CanonicalID: canonicalID,
		Facts:       facts,
		Public:      public,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := c.store.PutAgent(ctx, record); err != nil {
		return "", errors.Wrap(errors.CodeStorageFailure, "put agent", err)
	}
	return canonicalID, nil
}

// Remove deletes one record and returns its last known facts. Removing an
// unknown agent reports not-found.
func (c *Catalog) Remove(ctx context.Context, canonicalID string) (agentfacts.AgentFacts, error) {
	record, err := c.store.GetAgent(ctx, canonicalID)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return agentfacts.AgentFacts{}, errors.WithMetadata(errors.CodeAgentNotFound, "agent not found",
				map[string]string{"agent_id": canonicalID})
		}
		return agentfacts.AgentFacts{}, errors.Wrap(errors.CodeStorageFailure, "get agent", err)
	}
	if err := c.store.DeleteAgent(ctx, canonicalID); err != nil {
		return agentfacts.AgentFacts{}, errors.Wrap(errors.CodeStorageFailure, "delete agent", err)
	}
	return record.Facts, nil
}

// ListAgents returns a page of canonical records ordered by canonical ID.
// Visibility filtering happens at the serving layer, matching the
// in-memory converter.
func (c *Catalog) ListAgents(ctx context.Context, limit, offset int) ([]agentfacts.AgentFacts, error) {
	if err := converter.ValidateListOptions(limit, offset); err != nil {
		return nil, err
	}
	records, err := c.store.ListAgents(ctx, limit, offset)
	if err != nil {
		return nil, errors.Wrap(errors.CodeStorageFailure, "list agents", err)
	}
	out := make([]agentfacts.AgentFacts, len(records))
	for i, record := range records {
		out[i] = record.Facts
	}
	return out, nil
}

// GetAgent returns one canonical record.
func (c *Catalog) GetAgent(ctx context.Context, canonicalID string) (agentfacts.AgentFacts, error) {
	record, err := c.get(ctx, canonicalID)
	if err != nil {
		return agentfacts.AgentFacts{}, err
	}
	return record.Facts, nil
}

// IsPublic reports an agent's visibility.
func (c *Catalog) IsPublic(ctx context.Context, canonicalID string) (bool, error) {
	record, err := c.get(ctx, canonicalID)
	if err != nil {
		return false, err
	}
	return record.Public, nil
}

// Count returns the catalog size, public and private alike.
func (c *Catalog) Count(ctx context.Context) (int, error) {
	count, err := c.store.CountAgents(ctx)
	if err != nil {
		return 0, errors.Wrap(errors.CodeStorageFailure, "count agents", err)
	}
	return count, nil
}

func (c *Catalog) get(ctx context.Context, canonicalID string) (storage.AgentRecord, error) {
	record, err := c.store.GetAgent(ctx, canonicalID)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return storage.AgentRecord{}, errors.WithMetadata(errors.CodeAgentNotFound, "agent not found",
				map[string]string{"agent_id": canonicalID})
		}
		return storage.AgentRecord{}, errors.Wrap(errors.CodeStorageFailure, "get agent", err)
	}
	return record, nil
}

var _ converter.Converter = (*Catalog)(nil)
