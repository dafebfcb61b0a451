// Package bridge composes a converter, a delta feed, and registry identity
// into the federation surface other registries consume.
//
// Every deployment constructs its own Bridge; there is no process-wide
// default instance.
package bridge

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Sharathvc23/nanda-bridge/internal/bridge/agentfacts"
	"github.com/Sharathvc23/nanda-bridge/internal/bridge/converter"
	"github.com/Sharathvc23/nanda-bridge/internal/bridge/delta"
	"github.com/Sharathvc23/nanda-bridge/internal/bridge/identity"
	"github.com/Sharathvc23/nanda-bridge/internal/platform/errors"
)

// registrar is the optional write surface of an in-memory converter.
type registrar interface {
	Register(agent converter.SimpleAgent) (agentfacts.AgentFacts, error)
	Unregister(canonicalID string) (converter.SimpleAgent, bool)
}

// publisher is the optional write surface of a storage-backed converter.
type publisher interface {
	Put(ctx context.Context, facts agentfacts.AgentFacts, public bool) (string, error)
	Remove(ctx context.Context, canonicalID string) (agentfacts.AgentFacts, error)
}

// Options configures a Bridge. RegistryID, ProviderName, and ProviderURL
// are required; BaseURL defaults to ProviderURL and Namespaces to the
// provider's wildcard DID namespace.
type Options struct {
	RegistryID   string
	ProviderName string
	ProviderURL  string
	BaseURL      string
	Namespaces   []string
	Tools        []agentfacts.Tool
}

// Bridge is the federation facade.
type Bridge struct {
	conv converter.Converter
	feed *delta.PersistentStore
	opts Options

	mu    sync.RWMutex
	tools []agentfacts.Tool

	now func() time.Time
}

// New builds a Bridge. A nil converter gets an in-memory SimpleConverter; a
// nil feed gets a memory-only delta store at default capacity.
func New(conv converter.Converter, feed *delta.PersistentStore, opts Options) (*Bridge, error) {
	if opts.RegistryID == "" {
		return nil, errors.New(errors.CodeInvalidArgument, "registry id is required")
	}
	if opts.ProviderName == "" || opts.ProviderURL == "" {
		return nil, errors.New(errors.CodeInvalidArgument, "provider name and url are required")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = opts.ProviderURL
	}
	if len(opts.Namespaces) == 0 {
		opts.Namespaces = []string{fmt.Sprintf("did:web:%s:*", domainOf(opts.ProviderURL))}
	}

	if conv == nil {
		simple, err := converter.NewSimpleConverter(converter.SimpleOptions{
			RegistryID:   opts.RegistryID,
			ProviderName: opts.ProviderName,
			ProviderURL:  opts.ProviderURL,
			BaseURL:      opts.BaseURL,
		})
		if err != nil {
			return nil, err
		}
		conv = simple
	}
	if feed == nil {
		store, err := delta.NewStore(delta.DefaultMaxDeltas)
		if err != nil {
			return nil, err
		}
		feed = delta.NewPersistentStore(store, nil, nil)
	}

	return &Bridge{
		conv:  conv,
		feed:  feed,
		opts:  opts,
		tools: opts.Tools,
		now:   time.Now,
	}, nil
}

// Converter returns the underlying converter.
func (b *Bridge) Converter() converter.Converter { return b.conv }

// Feed returns the underlying delta feed.
func (b *Bridge) Feed() *delta.PersistentStore { return b.feed }

// RegistryID returns the registry identifier.
func (b *Bridge) RegistryID() string { return b.opts.RegistryID }

// Index returns the page of public agents. Non-public agents are filtered
// out; total_count reflects the filtered page, not the catalog size.
func (b *Bridge) Index(ctx context.Context, limit, offset int) (agentfacts.IndexResponse, error) {
	agents, err := b.conv.ListAgents(ctx, limit, offset)
	if err != nil {
		return agentfacts.IndexResponse{}, err
	}

	public := make([]agentfacts.AgentFacts, 0, len(agents))
	for _, facts := range agents {
		visible, err := b.conv.IsPublic(ctx, identity.Parse(facts.ID))
		if err != nil {
			// An agent removed between list and visibility check is simply
			// not shown.
			if errors.CodeOf(err) == errors.CodeAgentNotFound {
				continue
			}
			return agentfacts.IndexResponse{}, err
		}
		if visible {
			public = append(public, facts)
		}
	}

	return agentfacts.IndexResponse{
		GeneratedAt: b.now().UTC(),
		RegistryID:  b.opts.RegistryID,
		Agents:      public,
		TotalCount:  len(public),
	}, nil
}

// Resolve returns one public agent by any identifier shape. Absent agents
// and unparseable identifiers report not-found; present but non-public
// agents report a distinct visibility error.
func (b *Bridge) Resolve(ctx context.Context, identifier string) (agentfacts.AgentFacts, error) {
	canonicalID := identity.Parse(identifier)
	if canonicalID == "" {
		return agentfacts.AgentFacts{}, errors.WithMetadata(errors.CodeAgentNotFound, "agent not found",
			map[string]string{"identifier": identifier})
	}

	facts, err := b.conv.GetAgent(ctx, canonicalID)
	if err != nil {
		return agentfacts.AgentFacts{}, err
	}
	visible, err := b.conv.IsPublic(ctx, canonicalID)
	if err != nil {
		return agentfacts.AgentFacts{}, err
	}
	if !visible {
		return agentfacts.AgentFacts{}, errors.WithMetadata(errors.CodeAgentNotPublic, "agent is not public",
			map[string]string{"agent_id": canonicalID})
	}
	return facts, nil
}

// Deltas returns changes after the given cursor plus the next_seq watermark
// consumers poll with.
func (b *Bridge) Deltas(ctx context.Context, since uint64) ([]delta.Delta, uint64) {
	return b.feed.Since(ctx, since), b.feed.NextSeq()
}

// RecordUpsert appends an upsert delta for an already-converted agent.
func (b *Bridge) RecordUpsert(ctx context.Context, facts agentfacts.AgentFacts) (delta.Delta, error) {
	return b.feed.Add(ctx, delta.ActionUpsert, facts)
}

// RecordRemove appends a remove delta carrying the agent's last known facts.
func (b *Bridge) RecordRemove(ctx context.Context, facts agentfacts.AgentFacts) (delta.Delta, error) {
	return b.feed.Add(ctx, delta.ActionRemove, facts)
}

// RegisterAgent registers an agent with the underlying converter and
// records an upsert delta when the agent is public. The converter must
// support registration (SimpleConverter does).
func (b *Bridge) RegisterAgent(ctx context.Context, agent converter.SimpleAgent) (agentfacts.AgentFacts, error) {
	reg, ok := b.conv.(registrar)
	if !ok {
		return agentfacts.AgentFacts{}, errors.New(errors.CodeInvalidArgument, "converter does not support registration")
	}
	facts, err := reg.Register(agent)
	if err != nil {
		return agentfacts.AgentFacts{}, err
	}
	if agent.Public {
		if _, err := b.RecordUpsert(ctx, facts); err != nil {
			return agentfacts.AgentFacts{}, err
		}
	}
	return facts, nil
}

// PublishAgent stores an already-converted agent through a storage-backed
// converter and records an upsert delta when public.
func (b *Bridge) PublishAgent(ctx context.Context, facts agentfacts.AgentFacts, public bool) error {
	pub, ok := b.conv.(publisher)
	if !ok {
		return errors.New(errors.CodeInvalidArgument, "converter does not support publishing")
	}
	if _, err := pub.Put(ctx, facts, public); err != nil {
		return err
	}
	if public {
		if _, err := b.RecordUpsert(ctx, facts); err != nil {
			return err
		}
	}
	return nil
}

// UnregisterAgent removes an agent and records a remove delta when it was
// public. Removing an unknown agent is a no-op, matching registration
// being idempotent in the other direction.
func (b *Bridge) UnregisterAgent(ctx context.Context, identifier string) error {
	canonicalID := identity.Parse(identifier)
	if canonicalID == "" {
		return nil
	}

	facts, err := b.conv.GetAgent(ctx, canonicalID)
	if err != nil {
		if errors.CodeOf(err) == errors.CodeAgentNotFound {
			return nil
		}
		return err
	}
	wasPublic, err := b.conv.IsPublic(ctx, canonicalID)
	if err != nil {
		return err
	}

	switch conv := b.conv.(type) {
	case registrar:
		conv.Unregister(canonicalID)
	case publisher:
		if _, err := conv.Remove(ctx, canonicalID); err != nil {
			if errors.CodeOf(err) != errors.CodeAgentNotFound {
				return err
			}
		}
	default:
		return errors.New(errors.CodeInvalidArgument, "converter does not support removal")
	}

	if wasPublic {
		if _, err := b.RecordRemove(ctx, facts); err != nil {
			return err
		}
	}
	return nil
}

// AddTool advertises one MCP tool descriptor.
func (b *Bridge) AddTool(tool agentfacts.Tool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tools = append(b.tools, tool)
}

// Tools returns the advertised tool descriptors.
func (b *Bridge) Tools() []agentfacts.Tool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]agentfacts.Tool, len(b.tools))
	copy(out, b.tools)
	return out
}

// WellKnown builds the discovery document peers fetch to federate.
func (b *Bridge) WellKnown() agentfacts.WellKnown {
	capabilities := []string{"agentfacts", "deltas"}
	toolsURL := ""
	if len(b.Tools()) > 0 {
		capabilities = append(capabilities, "mcp-tools")
		toolsURL = b.opts.BaseURL + "/nanda/tools"
	}
	return agentfacts.WellKnown{
		RegistryID:  b.opts.RegistryID,
		RegistryDID: fmt.Sprintf("did:web:%s", domainOf(b.opts.BaseURL)),
		Namespaces:  b.opts.Namespaces,
		IndexURL:    b.opts.BaseURL + "/nanda/index",
		ResolveURL:  b.opts.BaseURL + "/nanda/resolve",
		DeltasURL:   b.opts.BaseURL + "/nanda/deltas",
		ToolsURL:    toolsURL,
		Provider: agentfacts.Provider{
			Name: b.opts.ProviderName,
			URL:  b.opts.ProviderURL,
		},
		Capabilities: capabilities,
	}
}

func domainOf(url string) string {
	url = strings.TrimPrefix(url, "https://")
	url = strings.TrimPrefix(url, "http://")
	return strings.TrimSuffix(url, "/")
}
