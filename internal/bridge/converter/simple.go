package converter

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Sharathvc23/nanda-bridge/internal/bridge/agentfacts"
	"github.com/Sharathvc23/nanda-bridge/internal/platform/errors"
)

// SimpleAgent is a ready-made internal agent model for registries without
// one of their own. Registries with an existing model implement Converter
// directly instead.
type SimpleAgent struct {
	ID          string
	Name        string
	Description string

	Namespace string
	Version   string
	Labels    []string
	Skills    []agentfacts.Skill
	Endpoints map[string]string
	Metadata  map[string]any
	Public    bool

	Classification   string
	DynamicEndpoints []string

	AdaptiveResolverURL      string
	AdaptiveResolverPolicies []string

	Streaming      bool
	Batch          bool
	AuthMethods    []string
	RequiredScopes []string

	CertificationLevel  string
	CertificationIssuer string
	Attestations        []string

	PerformanceScore float64
	Availability90d  string
	AuditTrail       string

	TelemetryEnabled   bool
	TelemetryRetention string
	TelemetrySampling  float64
}

// SimpleConverter adapts SimpleAgent records held in memory.
//
// Registration order is preserved so pagination through ListAgents is
// stable across calls.
type SimpleConverter struct {
	Base

	mu     sync.RWMutex
	agents map[string]SimpleAgent
	order  []string
}

// SimpleOptions configures a SimpleConverter. BaseURL defaults to
// ProviderURL; DIDMethod defaults to "web".
type SimpleOptions struct {
	RegistryID   string
	ProviderName string
	ProviderURL  string
	BaseURL      string
	DIDMethod    string
}

// NewSimpleConverter builds a converter for SimpleAgent records.
func NewSimpleConverter(opts SimpleOptions) (*SimpleConverter, error) {
	if opts.RegistryID == "" {
		return nil, errors.New(errors.CodeInvalidArgument, "registry id is required")
	}
	if opts.ProviderName == "" || opts.ProviderURL == "" {
		return nil, errors.New(errors.CodeInvalidArgument, "provider name and url are required")
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = opts.ProviderURL
	}
	didMethod := opts.DIDMethod
	if didMethod == "" {
		didMethod = "web"
	}
	return &SimpleConverter{
		Base: Base{
			RegistryID:   opts.RegistryID,
			ProviderName: opts.ProviderName,
			ProviderURL:  opts.ProviderURL,
			BaseURL:      baseURL,
			DIDMethod:    didMethod,
		},
		agents: make(map[string]SimpleAgent),
	}, nil
}

// Register stores or replaces an agent and returns its canonical facts.
func (c *SimpleConverter) Register(agent SimpleAgent) (agentfacts.AgentFacts, error) {
	if agent.ID == "" {
		return agentfacts.AgentFacts{}, errors.New(errors.CodeInvalidArgument, "agent id is required")
	}
	if agent.Namespace == "" {
		agent.Namespace = "default"
	}
	if agent.Version == "" {
		agent.Version = "1.0.0"
	}

	c.mu.Lock()
	if _, exists := c.agents[agent.ID]; !exists {
		c.order = append(c.order, agent.ID)
	}
	c.agents[agent.ID] = agent
	c.mu.Unlock()

	return c.ToFacts(agent), nil
}

// Unregister removes an agent. Removing an unknown agent is a no-op; the
// returned bool reports whether anything was removed.
func (c *SimpleConverter) Unregister(canonicalID string) (SimpleAgent, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	agent, ok := c.agents[canonicalID]
	if !ok {
		return SimpleAgent{}, false
	}
	delete(c.agents, canonicalID)
	for i, id := range c.order {
		if id == canonicalID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return agent, true
}

// ListAgents returns a page of canonical facts in registration order.
func (c *SimpleConverter) ListAgents(_ context.Context, limit, offset int) ([]agentfacts.AgentFacts, error) {
	if err := ValidateListOptions(limit, offset); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if offset >= len(c.order) {
		return []agentfacts.AgentFacts{}, nil
	}
	end := offset + limit
	if end > len(c.order) {
		end = len(c.order)
	}
	out := make([]agentfacts.AgentFacts, 0, end-offset)
	for _, id := range c.order[offset:end] {
		out = append(out, c.ToFacts(c.agents[id]))
	}
	return out, nil
}

// GetAgent returns the canonical facts for one agent.
func (c *SimpleConverter) GetAgent(_ context.Context, canonicalID string) (agentfacts.AgentFacts, error) {
	c.mu.RLock()
	agent, ok := c.agents[canonicalID]
	c.mu.RUnlock()
	if !ok {
		return agentfacts.AgentFacts{}, errors.WithMetadata(errors.CodeAgentNotFound, "agent not found",
			map[string]string{"agent_id": canonicalID})
	}
	return c.ToFacts(agent), nil
}

// IsPublic reports an agent's visibility. Unknown agents report the same
// not-found error as GetAgent.
func (c *SimpleConverter) IsPublic(_ context.Context, canonicalID string) (bool, error) {
	c.mu.RLock()
	agent, ok := c.agents[canonicalID]
	c.mu.RUnlock()
	if !ok {
		return false, errors.WithMetadata(errors.CodeAgentNotFound, "agent not found",
			map[string]string{"agent_id": canonicalID})
	}
	return agent.Public, nil
}

// ToFacts converts one SimpleAgent into its canonical representation. The
// conversion is pure; calling it twice with the same agent yields the same
// facts, digest included.
func (c *SimpleConverter) ToFacts(agent SimpleAgent) agentfacts.AgentFacts {
	namespace := agent.Namespace
	if namespace == "" {
		namespace = "default"
	}
	version := agent.Version
	if version == "" {
		version = "1.0.0"
	}

	did := c.DID(namespace, agent.ID)
	handle := c.Handle(namespace, agent.ID)
	provider := c.Provider()

	staticURLs := sortedValues(agent.Endpoints)
	if len(staticURLs) == 0 && c.BaseURL != "" {
		staticURLs = []string{fmt.Sprintf("%s/agents/%s", c.BaseURL, agent.ID)}
	}

	var resolver *agentfacts.AdaptiveResolver
	if agent.AdaptiveResolverURL != "" {
		policies := agent.AdaptiveResolverPolicies
		if len(policies) == 0 {
			policies = []string{"capability_negotiation", "load_balancing"}
		}
		resolver = &agentfacts.AdaptiveResolver{URL: agent.AdaptiveResolverURL, Policies: policies}
	}

	authMethods := agent.AuthMethods
	if len(authMethods) == 0 {
		authMethods = []string{"did-auth"}
	}

	skills := agent.Skills
	if len(skills) == 0 {
		skills = []agentfacts.Skill{{
			ID:          fmt.Sprintf("urn:%s:agent", c.RegistryID),
			Description: fmt.Sprintf("%s agent", c.ProviderName),
		}}
	}
	skillIDs := make([]string, len(skills))
	for i, s := range skills {
		skillIDs[i] = s.ID
	}

	level := agent.CertificationLevel
	if level == "" {
		level = "self-declared"
	}
	issuer := agent.CertificationIssuer
	if issuer == "" {
		issuer = c.ProviderName
	}

	var evaluations *agentfacts.Evaluations
	if agent.PerformanceScore != 0 || agent.Availability90d != "" || agent.AuditTrail != "" {
		evaluations = &agentfacts.Evaluations{
			PerformanceScore: agent.PerformanceScore,
			Availability90d:  agent.Availability90d,
			AuditTrail:       agent.AuditTrail,
		}
	}

	var telemetry *agentfacts.Telemetry
	if agent.TelemetryEnabled {
		telemetry = &agentfacts.Telemetry{
			Enabled:   true,
			Retention: agent.TelemetryRetention,
			Sampling:  agent.TelemetrySampling,
		}
	}

	extension := map[string]any{
		"namespace":   namespace,
		"original_id": agent.ID,
		"public":      agent.Public,
	}
	if agent.Classification != "" {
		extension["classification"] = agent.Classification
	}
	for k, v := range agent.Metadata {
		extension[k] = v
	}
	metadataKey := "x_" + strings.ReplaceAll(c.RegistryID, "-", "_")

	label := namespace
	if len(agent.Labels) > 0 {
		label = agent.Labels[0]
	}

	return agentfacts.AgentFacts{
		ID:          did,
		Handle:      handle,
		AgentName:   agent.Name,
		Label:       label,
		Description: agent.Description,
		Version:     version,
		Provider:    provider,
		Endpoints: agentfacts.Endpoints{
			Static:           staticURLs,
			Dynamic:          agent.DynamicEndpoints,
			AdaptiveResolver: resolver,
		},
		Capabilities: agentfacts.Capabilities{
			Modalities: agent.Labels,
			Skills:     skillIDs,
			Authentication: agentfacts.Authentication{
				Methods:        authMethods,
				RequiredScopes: agent.RequiredScopes,
			},
			Streaming: agent.Streaming,
			Batch:     agent.Batch,
		},
		Skills: skills,
		Certification: &agentfacts.Certification{
			Level:        level,
			Issuer:       issuer,
			Attestations: agent.Attestations,
		},
		Evaluations: evaluations,
		Telemetry:   telemetry,
		Metadata:    map[string]any{metadataKey: extension},
		Proof:       c.Proof(agent.ID, namespace, version),
	}
}

// sortedValues keeps endpoint ordering deterministic; Go maps iterate in
// random order.
func sortedValues(m map[string]string) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(m))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}
