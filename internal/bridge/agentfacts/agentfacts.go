// Package agentfacts defines the NANDA AgentFacts wire schema.
//
// AgentFacts is the canonical, already-validated representation of one agent
// exchanged between federated registries. The delta feed treats it as an
// opaque value with an identifier; only converters build or inspect the
// nested blocks.
package agentfacts

import "time"

// Provider identifies the organization running an agent.
type Provider struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	DID  string `json:"did,omitempty"`
}

// AdaptiveResolver configures dynamic endpoint resolution.
type AdaptiveResolver struct {
	URL      string   `json:"url"`
	Policies []string `json:"policies,omitempty"`
}

// Endpoints specifies how to reach an agent.
type Endpoints struct {
	Static           []string          `json:"static,omitempty"`
	Dynamic          []string          `json:"dynamic,omitempty"`
	AdaptiveResolver *AdaptiveResolver `json:"adaptive_resolver,omitempty"`
}

// Authentication specifies supported auth methods.
type Authentication struct {
	Methods        []string `json:"methods,omitempty"`
	RequiredScopes []string `json:"requiredScopes,omitempty"`
}

// Capabilities describes what an agent can do at the modality level.
type Capabilities struct {
	Modalities     []string       `json:"modalities,omitempty"`
	Skills         []string       `json:"skills,omitempty"`
	Authentication Authentication `json:"authentication"`
	Streaming      bool           `json:"streaming"`
	Batch          bool           `json:"batch"`
}

// Skill describes one specific agent capability in detail.
type Skill struct {
	ID                 string   `json:"id"`
	Description        string   `json:"description"`
	InputModes         []string `json:"inputModes,omitempty"`
	OutputModes        []string `json:"outputModes,omitempty"`
	Version            string   `json:"version,omitempty"`
	SupportedLanguages []string `json:"supportedLanguages,omitempty"`
	LatencyBudgetMs    int      `json:"latencyBudgetMs,omitempty"`
	MaxTokens          int      `json:"maxTokens,omitempty"`
}

// Certification is the trust-verification block.
// Levels: "self-declared", "verified", "audited".
type Certification struct {
	Level        string     `json:"level"`
	Issuer       string     `json:"issuer,omitempty"`
	Attestations []string   `json:"attestations,omitempty"`
	IssuanceDate *time.Time `json:"issuanceDate,omitempty"`
}

// Evaluations carries performance metrics and audit references.
type Evaluations struct {
	PerformanceScore float64 `json:"performanceScore,omitempty"`
	Availability90d  string  `json:"availability90d,omitempty"`
	AuditTrail       string  `json:"auditTrail,omitempty"`
}

// Telemetry is the observability configuration block.
type Telemetry struct {
	Enabled   bool    `json:"enabled"`
	Retention string  `json:"retention,omitempty"`
	Sampling  float64 `json:"sampling,omitempty"`
}

// Proof is a lightweight integrity attestation. It carries no secret key:
// anyone can recompute the digest, so it detects accidental corruption of
// its inputs, not tampering.
type Proof struct {
	Method     string `json:"method"`
	Digest     string `json:"digest"`
	RegistryID string `json:"registry_id"`
}

// AgentFacts is the canonical agent record exchanged between registries.
type AgentFacts struct {
	ID     string `json:"id"`
	Handle string `json:"handle,omitempty"`

	AgentName   string `json:"agent_name"`
	Label       string `json:"label,omitempty"`
	Description string `json:"description"`
	Version     string `json:"version"`

	Provider     Provider     `json:"provider"`
	Endpoints    Endpoints    `json:"endpoints"`
	Capabilities Capabilities `json:"capabilities"`
	Skills       []Skill      `json:"skills,omitempty"`

	Certification *Certification `json:"certification,omitempty"`
	Evaluations   *Evaluations   `json:"evaluations,omitempty"`
	Telemetry     *Telemetry     `json:"telemetry,omitempty"`

	// Metadata holds registry-specific extensions under x_<registry> keys.
	Metadata map[string]any `json:"metadata,omitempty"`

	Proof *Proof `json:"proof,omitempty"`
}

// Tool describes one MCP tool a registry advertises for its agents.
type Tool struct {
	ToolID      string   `json:"tool_id"`
	Description string   `json:"description"`
	Endpoint    string   `json:"endpoint"`
	Params      []string `json:"params,omitempty"`
	Version     string   `json:"version"`
}

// IndexResponse is the payload for the registry index endpoint.
type IndexResponse struct {
	GeneratedAt time.Time    `json:"generated_at"`
	RegistryID  string       `json:"registry_id"`
	Agents      []AgentFacts `json:"agents"`
	TotalCount  int          `json:"total_count"`
}

// WellKnown is the registry discovery document served at
// /.well-known/nanda.json. Peers use it to find the federation endpoints.
type WellKnown struct {
	RegistryID  string   `json:"registry_id"`
	RegistryDID string   `json:"registry_did"`
	Namespaces  []string `json:"namespaces"`

	IndexURL   string `json:"index_url"`
	ResolveURL string `json:"resolve_url"`
	DeltasURL  string `json:"deltas_url"`
	ToolsURL   string `json:"tools_url,omitempty"`

	Provider     Provider `json:"provider"`
	Capabilities []string `json:"capabilities"`

	Peers []string `json:"peers,omitempty"`
}
