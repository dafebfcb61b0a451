package converter

import (
	"fmt"
	"strings"

	"github.com/Sharathvc23/nanda-bridge/internal/bridge/agentfacts"
	"github.com/Sharathvc23/nanda-bridge/internal/bridge/identity"
)

// Base carries the registry identity every converter needs and the
// derived-identifier builders. Embed it in custom converters; the Converter
// interface itself stays free of any required supertype.
type Base struct {
	RegistryID   string
	ProviderName string
	ProviderURL  string
	BaseURL      string
	DIDMethod    string
}

// Domain returns the provider URL stripped to its host, the DID domain
// component.
func (b Base) Domain() string {
	url := strings.TrimPrefix(b.ProviderURL, "https://")
	url = strings.TrimPrefix(url, "http://")
	return strings.TrimSuffix(url, "/")
}

// DID builds the agent DID for this registry.
func (b Base) DID(namespace, canonicalID string) string {
	return identity.BuildDID(b.DIDMethod, b.Domain(), namespace, canonicalID)
}

// Handle builds the agent handle for this registry.
func (b Base) Handle(namespace, canonicalID string) string {
	return identity.BuildHandle(b.RegistryID, namespace, canonicalID)
}

// Provider builds the provider block stamped into every converted record.
func (b Base) Provider() agentfacts.Provider {
	return agentfacts.Provider{
		Name: b.ProviderName,
		URL:  b.ProviderURL,
		DID:  fmt.Sprintf("did:%s:%s", b.DIDMethod, b.Domain()),
	}
}

// Proof builds the integrity proof block for one agent version.
func (b Base) Proof(canonicalID, namespace, version string) *agentfacts.Proof {
	return &agentfacts.Proof{
		Method:     identity.ProofMethod,
		Digest:     identity.BuildProofDigest(canonicalID, namespace, version, b.RegistryID),
		RegistryID: b.RegistryID,
	}
}
