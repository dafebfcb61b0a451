// Package domain defines the MCP tools exposing the federation read
// surface to agent-native clients.
package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/Sharathvc23/nanda-bridge/internal/bridge"
	"github.com/Sharathvc23/nanda-bridge/internal/bridge/agentfacts"
	"github.com/Sharathvc23/nanda-bridge/internal/bridge/converter"
	"github.com/Sharathvc23/nanda-bridge/internal/bridge/delta"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const toolTimeout = 5 * time.Second

// IndexInput selects a page of the public agent index.
type IndexInput struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// IndexResult is the public agent index page.
type IndexResult struct {
	RegistryID string                  `json:"registry_id"`
	Agents     []agentfacts.AgentFacts `json:"agents"`
	TotalCount int                     `json:"total_count"`
}

// IndexTool describes the index listing tool.
func IndexTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "nanda_index",
		Description: "Lists the registry's public agents in AgentFacts format. Supports limit (1-500) and offset paging.",
	}
}

// IndexHandler executes an index listing request.
func IndexHandler(b *bridge.Bridge) mcp.ToolHandlerFor[IndexInput, IndexResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input IndexInput) (*mcp.CallToolResult, IndexResult, error) {
		runCtx, cancel := context.WithTimeout(ctx, toolTimeout)
		defer cancel()

		limit := input.Limit
		if limit == 0 {
			limit = converter.DefaultListLimit
		}
		index, err := b.Index(runCtx, limit, input.Offset)
		if err != nil {
			return nil, IndexResult{}, fmt.Errorf("index failed: %w", err)
		}
		return nil, IndexResult{
			RegistryID: index.RegistryID,
			Agents:     index.Agents,
			TotalCount: index.TotalCount,
		}, nil
	}
}

// ResolveInput identifies one agent by ID, DID, or handle.
type ResolveInput struct {
	Agent string `json:"agent"`
}

// ResolveResult carries one resolved agent record.
type ResolveResult struct {
	Agent agentfacts.AgentFacts `json:"agent"`
}

// ResolveTool describes the agent resolution tool.
func ResolveTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "nanda_resolve",
		Description: "Resolves one public agent by canonical ID, DID, handle, or namespaced identifier.",
	}
}

// ResolveHandler executes an agent resolution request.
func ResolveHandler(b *bridge.Bridge) mcp.ToolHandlerFor[ResolveInput, ResolveResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ResolveInput) (*mcp.CallToolResult, ResolveResult, error) {
		runCtx, cancel := context.WithTimeout(ctx, toolTimeout)
		defer cancel()

		facts, err := b.Resolve(runCtx, input.Agent)
		if err != nil {
			return nil, ResolveResult{}, fmt.Errorf("resolve failed: %w", err)
		}
		return nil, ResolveResult{Agent: facts}, nil
	}
}

// DeltasInput selects changes after a sequence cursor.
type DeltasInput struct {
	Since uint64 `json:"since,omitempty"`
}

// DeltasResult carries changes plus the watermark to poll with next.
type DeltasResult struct {
	RegistryID string        `json:"registry_id"`
	Deltas     []delta.Delta `json:"deltas"`
	NextSeq    uint64        `json:"next_seq"`
}

// DeltasTool describes the change feed tool.
func DeltasTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "nanda_deltas",
		Description: "Returns agent changes after a sequence number, plus the next_seq watermark for incremental sync.",
	}
}

// DeltasHandler executes a change feed request.
func DeltasHandler(b *bridge.Bridge) mcp.ToolHandlerFor[DeltasInput, DeltasResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input DeltasInput) (*mcp.CallToolResult, DeltasResult, error) {
		runCtx, cancel := context.WithTimeout(ctx, toolTimeout)
		defer cancel()

		deltas, nextSeq := b.Deltas(runCtx, input.Since)
		if deltas == nil {
			deltas = []delta.Delta{}
		}
		return nil, DeltasResult{
			RegistryID: b.RegistryID(),
			Deltas:     deltas,
			NextSeq:    nextSeq,
		}, nil
	}
}
