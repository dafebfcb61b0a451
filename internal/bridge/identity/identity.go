// Package identity builds and parses the three agent addressing formats.
//
// One agent has three derived views of a single canonical ID: a DID
// (did:<method>:<domain>:agents:<namespace>:<id>), a human-oriented handle
// (@<registry>:<namespace>/<id>), and the opaque canonical ID itself, which
// is the only form used as a storage key. The views are never stored
// separately; they are rebuilt on demand.
//
// The builders perform no escaping: a canonical ID, namespace, or registry
// ID containing ':' or '/' produces output Parse will mis-split. This is a
// known limitation of the addressing scheme, kept rather than papered over
// with an invented escaping convention.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// ProofMethod names the digest algorithm used by BuildProofDigest.
const ProofMethod = "sha256"

// BuildDID constructs a decentralized identifier for an agent.
func BuildDID(method, domain, namespace, canonicalID string) string {
	return fmt.Sprintf("did:%s:%s:agents:%s:%s", method, domain, namespace, canonicalID)
}

// BuildHandle constructs a human-oriented handle for an agent.
func BuildHandle(registryID, namespace, canonicalID string) string {
	return fmt.Sprintf("@%s:%s/%s", registryID, namespace, canonicalID)
}

// BuildProofDigest computes the hex-encoded SHA-256 digest over the four
// identity fields joined by ':'. It is an integrity placeholder, not a
// signature: there is no secret key and anyone can recompute it.
func BuildProofDigest(canonicalID, namespace, version, registryID string) string {
	payload := strings.Join([]string{canonicalID, namespace, version, registryID}, ":")
	digest := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(digest[:])
}

// Parse recovers the canonical ID from any caller-supplied identifier shape.
//
// Shapes are tried in fixed priority order, first match wins:
//
//  1. handle: input starts with '@'; the segment after the last '/' is the
//     canonical ID (registry and namespace are discarded).
//  2. DID: input starts with "did:"; the segment after the last ':' is the
//     canonical ID.
//  3. namespaced: input contains ':'; the segment after the last ':' is the
//     canonical ID.
//  4. plain: the input is already the canonical ID.
//
// Parse never fails. A malformed input (trailing '/' or ':') yields an empty
// canonical ID, which callers must treat as not-found, not as a crash.
// Callers needing the namespace or registry context must retain the
// original input alongside the parsed ID.
func Parse(input string) string {
	if strings.HasPrefix(input, "@") {
		if idx := strings.LastIndex(input, "/"); idx >= 0 {
			return input[idx+1:]
		}
		return input[1:]
	}

	if strings.HasPrefix(input, "did:") {
		parts := strings.Split(input, ":")
		return parts[len(parts)-1]
	}

	if strings.Contains(input, ":") {
		parts := strings.Split(input, ":")
		return parts[len(parts)-1]
	}

	return input
}
