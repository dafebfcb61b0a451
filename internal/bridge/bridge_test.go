package bridge

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Sharathvc23/nanda-bridge/internal/bridge/agentfacts"
	"github.com/Sharathvc23/nanda-bridge/internal/bridge/catalog"
	"github.com/Sharathvc23/nanda-bridge/internal/bridge/converter"
	"github.com/Sharathvc23/nanda-bridge/internal/bridge/delta"
	"github.com/Sharathvc23/nanda-bridge/internal/bridge/storage/sqlite"
	"github.com/Sharathvc23/nanda-bridge/internal/platform/errors"
)

func testOptions() Options {
	return Options{
		RegistryID:   "reg1",
		ProviderName: "Example Labs",
		ProviderURL:  "https://example.com",
		BaseURL:      "https://registry.example.com",
	}
}

func newTestBridge(t *testing.T) *Bridge {
	t.Helper()
	b, err := New(nil, nil, testOptions())
	if err != nil {
		t.Fatalf("new bridge: %v", err)
	}
	return b
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{name: "missing registry id", opts: Options{ProviderName: "p", ProviderURL: "https://p"}},
		{name: "missing provider name", opts: Options{RegistryID: "r", ProviderURL: "https://p"}},
		{name: "missing provider url", opts: Options{RegistryID: "r", ProviderName: "p"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(nil, nil, tc.opts); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestRegisterAgentRecordsUpsertDelta(t *testing.T) {
	b := newTestBridge(t)
	ctx := context.Background()

	facts, err := b.RegisterAgent(ctx, converter.SimpleAgent{
		ID: "agentX", Name: "Agent X", Description: "d", Namespace: "prod", Public: true,
	})
	if err != nil {
		t.Fatalf("register agent: %v", err)
	}
	if facts.Handle != "@reg1:prod/agentX" {
		t.Fatalf("unexpected handle %q", facts.Handle)
	}

	deltas, nextSeq := b.Deltas(ctx, 0)
	if len(deltas) != 1 || deltas[0].Action != delta.ActionUpsert {
		t.Fatalf("expected one upsert delta, got %+v", deltas)
	}
	if nextSeq != 2 {
		t.Fatalf("expected next seq 2, got %d", nextSeq)
	}
}

func TestRegisterPrivateAgentRecordsNoDelta(t *testing.T) {
	b := newTestBridge(t)
	ctx := context.Background()

	if _, err := b.RegisterAgent(ctx, converter.SimpleAgent{ID: "hidden", Name: "H", Description: "d"}); err != nil {
		t.Fatalf("register agent: %v", err)
	}
	deltas, _ := b.Deltas(ctx, 0)
	if len(deltas) != 0 {
		t.Fatalf("expected no deltas for private agent, got %d", len(deltas))
	}
}

func TestUnregisterAgentRecordsRemoveDelta(t *testing.T) {
	b := newTestBridge(t)
	ctx := context.Background()

	if _, err := b.RegisterAgent(ctx, converter.SimpleAgent{
		ID: "agentX", Name: "Agent X", Description: "d", Namespace: "prod", Public: true,
	}); err != nil {
		t.Fatalf("register agent: %v", err)
	}
	// Identifier shape does not matter for removal.
	if err := b.UnregisterAgent(ctx, "@reg1:prod/agentX"); err != nil {
		t.Fatalf("unregister agent: %v", err)
	}

	deltas, _ := b.Deltas(ctx, 0)
	if len(deltas) != 2 {
		t.Fatalf("expected upsert and remove deltas, got %d", len(deltas))
	}
	last := deltas[1]
	if last.Action != delta.ActionRemove {
		t.Fatalf("expected remove action, got %s", last.Action)
	}
	// Remove deltas carry the full last-known record.
	if last.Agent.AgentName != "Agent X" {
		t.Fatalf("expected snapshot in remove delta, got %+v", last.Agent)
	}

	if _, err := b.Resolve(ctx, "agentX"); errors.CodeOf(err) != errors.CodeAgentNotFound {
		t.Fatalf("expected agent gone after unregister, got %v", err)
	}
}

func TestUnregisterUnknownAgentIsNoOp(t *testing.T) {
	b := newTestBridge(t)
	if err := b.UnregisterAgent(context.Background(), "missing"); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
	if err := b.UnregisterAgent(context.Background(), "@reg1:prod/"); err != nil {
		t.Fatalf("expected no-op for empty canonical id, got %v", err)
	}
}

func TestIndexFiltersPrivateAgents(t *testing.T) {
	b := newTestBridge(t)
	ctx := context.Background()

	if _, err := b.RegisterAgent(ctx, converter.SimpleAgent{ID: "pub", Name: "P", Description: "d", Public: true}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := b.RegisterAgent(ctx, converter.SimpleAgent{ID: "priv", Name: "Q", Description: "d"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	index, err := b.Index(ctx, 100, 0)
	if err != nil {
		t.Fatalf("index: %v", err)
	}
	if index.TotalCount != 1 || len(index.Agents) != 1 {
		t.Fatalf("expected one public agent, got %+v", index)
	}
	if index.Agents[0].AgentName != "P" {
		t.Fatalf("unexpected agent %+v", index.Agents[0])
	}
	if index.RegistryID != "reg1" {
		t.Fatalf("unexpected registry id %q", index.RegistryID)
	}
}

func TestResolveByEveryIdentifierShape(t *testing.T) {
	b := newTestBridge(t)
	ctx := context.Background()

	facts, err := b.RegisterAgent(ctx, converter.SimpleAgent{
		ID: "agentX", Name: "Agent X", Description: "d", Namespace: "prod", Public: true,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	for _, identifier := range []string{"agentX", "prod:agentX", facts.ID, facts.Handle} {
		got, err := b.Resolve(ctx, identifier)
		if err != nil {
			t.Fatalf("resolve %q: %v", identifier, err)
		}
		if got.ID != facts.ID {
			t.Fatalf("resolve %q: got %q", identifier, got.ID)
		}
	}
}

func TestResolveErrorTaxonomy(t *testing.T) {
	b := newTestBridge(t)
	ctx := context.Background()

	if _, err := b.RegisterAgent(ctx, converter.SimpleAgent{ID: "priv", Name: "Q", Description: "d"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := b.Resolve(ctx, "missing"); errors.CodeOf(err) != errors.CodeAgentNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := b.Resolve(ctx, "priv"); errors.CodeOf(err) != errors.CodeAgentNotPublic {
		t.Fatalf("expected not public, got %v", err)
	}
	// Malformed identifiers parse to empty and read as not found.
	if _, err := b.Resolve(ctx, "@reg1:prod/"); errors.CodeOf(err) != errors.CodeAgentNotFound {
		t.Fatalf("expected not found for empty canonical id, got %v", err)
	}
}

func TestDeltasWatermarkSupportsPolling(t *testing.T) {
	b := newTestBridge(t)
	ctx := context.Background()

	_, next := b.Deltas(ctx, 0)
	if next != 1 {
		t.Fatalf("expected initial next seq 1, got %d", next)
	}

	if _, err := b.RegisterAgent(ctx, converter.SimpleAgent{ID: "a", Name: "A", Description: "d", Public: true}); err != nil {
		t.Fatalf("register: %v", err)
	}
	deltas, next := b.Deltas(ctx, 0)
	if len(deltas) != 1 || next != 2 {
		t.Fatalf("expected one delta and next seq 2, got %d deltas, next %d", len(deltas), next)
	}

	// Polling from the watermark sees nothing until the next change.
	deltas, _ = b.Deltas(ctx, next-1)
	if len(deltas) != 0 {
		t.Fatalf("expected caught-up poll to be empty, got %d", len(deltas))
	}
}

func TestToolsAndWellKnown(t *testing.T) {
	b := newTestBridge(t)

	wk := b.WellKnown()
	if wk.RegistryDID != "did:web:registry.example.com" {
		t.Fatalf("unexpected registry did %q", wk.RegistryDID)
	}
	if wk.IndexURL != "https://registry.example.com/nanda/index" {
		t.Fatalf("unexpected index url %q", wk.IndexURL)
	}
	if wk.ToolsURL != "" {
		t.Fatalf("expected no tools url without tools, got %q", wk.ToolsURL)
	}
	if len(wk.Capabilities) != 2 {
		t.Fatalf("unexpected capabilities %v", wk.Capabilities)
	}
	if len(wk.Namespaces) != 1 || wk.Namespaces[0] != "did:web:example.com:*" {
		t.Fatalf("unexpected namespaces %v", wk.Namespaces)
	}

	b.AddTool(agentfacts.Tool{
		ToolID:      "search_agents",
		Description: "Search agents by capability",
		Endpoint:    "https://registry.example.com/tools/search",
		Version:     "1.0.0",
	})
	wk = b.WellKnown()
	if wk.ToolsURL != "https://registry.example.com/nanda/tools" {
		t.Fatalf("expected tools url, got %q", wk.ToolsURL)
	}
	if len(wk.Capabilities) != 3 || wk.Capabilities[2] != "mcp-tools" {
		t.Fatalf("expected mcp-tools capability, got %v", wk.Capabilities)
	}
	if len(b.Tools()) != 1 {
		t.Fatalf("expected one tool, got %d", len(b.Tools()))
	}
}

func TestPublishAgentOverCatalog(t *testing.T) {
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "bridge.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	cat, err := catalog.New(store)
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}
	b, err := New(cat, nil, testOptions())
	if err != nil {
		t.Fatalf("new bridge: %v", err)
	}
	ctx := context.Background()

	conv, err := converter.NewSimpleConverter(converter.SimpleOptions{
		RegistryID: "reg1", ProviderName: "Example Labs", ProviderURL: "https://example.com",
	})
	if err != nil {
		t.Fatalf("new converter: %v", err)
	}
	facts := conv.ToFacts(converter.SimpleAgent{ID: "agentX", Name: "Agent X", Description: "d", Namespace: "prod", Public: true})

	if err := b.PublishAgent(ctx, facts, true); err != nil {
		t.Fatalf("publish agent: %v", err)
	}
	got, err := b.Resolve(ctx, "agentX")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.ID != facts.ID {
		t.Fatalf("unexpected facts %+v", got)
	}
	deltas, _ := b.Deltas(ctx, 0)
	if len(deltas) != 1 || deltas[0].Action != delta.ActionUpsert {
		t.Fatalf("expected one upsert delta, got %+v", deltas)
	}

	if err := b.UnregisterAgent(ctx, facts.Handle); err != nil {
		t.Fatalf("unregister: %v", err)
	}
	if _, err := b.Resolve(ctx, "agentX"); errors.CodeOf(err) != errors.CodeAgentNotFound {
		t.Fatalf("expected agent gone, got %v", err)
	}
	deltas, _ = b.Deltas(ctx, 0)
	if len(deltas) != 2 || deltas[1].Action != delta.ActionRemove {
		t.Fatalf("expected remove delta, got %+v", deltas)
	}
}

func TestRegisterAgentRequiresRegistrar(t *testing.T) {
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "bridge.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	cat, err := catalog.New(store)
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}
	b, err := New(cat, nil, testOptions())
	if err != nil {
		t.Fatalf("new bridge: %v", err)
	}

	_, err = b.RegisterAgent(context.Background(), converter.SimpleAgent{ID: "a", Name: "A", Description: "d"})
	if err == nil {
		t.Fatal("expected error registering through a catalog-backed bridge")
	}
}
