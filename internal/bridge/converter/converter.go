// Package converter defines the adapter contract between a registry's
// internal agent model and the canonical AgentFacts schema.
//
// A registry integrates by providing a Converter. Internal agent types
// never cross the boundary; each implementation converts to AgentFacts
// before returning, so the feed, HTTP, and MCP layers trade only in
// canonical records.
package converter

import (
	"context"

	"github.com/Sharathvc23/nanda-bridge/internal/bridge/agentfacts"
	"github.com/Sharathvc23/nanda-bridge/internal/platform/errors"
)

// Pagination bounds for ListAgents. Requests outside these bounds are
// rejected, not clamped, so callers learn about the limit instead of
// silently receiving a truncated page.
const (
	MinListLimit     = 1
	MaxListLimit     = 500
	DefaultListLimit = 100
)

// Converter adapts one registry's agents to the canonical schema.
//
// GetAgent accepts a canonical ID and returns errors.CodeAgentNotFound for
// unknown agents. IsPublic is consulted before exposing an agent through
// any federation surface; non-public agents are indistinguishable from
// absent ones on the index but yield a distinct error on direct resolve.
type Converter interface {
	ListAgents(ctx context.Context, limit, offset int) ([]agentfacts.AgentFacts, error)
	GetAgent(ctx context.Context, canonicalID string) (agentfacts.AgentFacts, error)
	IsPublic(ctx context.Context, canonicalID string) (bool, error)
}

// ValidateListOptions checks pagination bounds shared by every converter
// and by the HTTP layer.
func ValidateListOptions(limit, offset int) error {
	if limit < MinListLimit || limit > MaxListLimit {
		return errors.New(errors.CodeInvalidLimit, "limit must be between 1 and 500")
	}
	if offset < 0 {
		return errors.New(errors.CodeInvalidOffset, "offset must not be negative")
	}
	return nil
}
