package identity

import (
	"strings"
	"testing"
)

func TestBuildDID(t *testing.T) {
	got := BuildDID("web", "example.com", "prod", "agentX")
	want := "did:web:example.com:agents:prod:agentX"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestBuildHandle(t *testing.T) {
	got := BuildHandle("reg1", "prod", "agentX")
	want := "@reg1:prod/agentX"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestParsePriorityOrder(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "handle", input: "@reg1:prod/agentX", want: "agentX"},
		{name: "handle without slash", input: "@reg1", want: "reg1"},
		{name: "did", input: "did:web:example.com:agents:prod:agentX", want: "agentX"},
		{name: "namespaced", input: "prod:agentX", want: "agentX"},
		{name: "plain", input: "agentX", want: "agentX"},
		{name: "empty", input: "", want: ""},
		{name: "trailing slash handle", input: "@reg1:prod/", want: ""},
		{name: "trailing colon did", input: "did:web:example.com:", want: ""},
		{name: "handle wins over did prefix in id", input: "@reg1:prod/did:thing", want: "did:thing"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Parse(tc.input); got != tc.want {
				t.Fatalf("Parse(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestParseRoundTrips(t *testing.T) {
	if got := Parse(BuildHandle("reg1", "prod", "agentX")); got != "agentX" {
		t.Fatalf("handle round trip: got %q", got)
	}
	if got := Parse(BuildDID("web", "example.com", "prod", "agentX")); got != "agentX" {
		t.Fatalf("did round trip: got %q", got)
	}
	if got := Parse("agentX"); got != "agentX" {
		t.Fatalf("plain round trip: got %q", got)
	}
}

func TestParseSeparatorLimitation(t *testing.T) {
	// Canonical IDs containing separators are mis-split by design; the codec
	// documents rather than corrects this.
	did := BuildDID("web", "example.com", "prod", "agent:v2")
	if got := Parse(did); got != "v2" {
		t.Fatalf("expected mis-split tail %q, got %q", "v2", got)
	}
}

func TestBuildProofDigest(t *testing.T) {
	digest := BuildProofDigest("agentX", "prod", "1.0.0", "reg1")
	if len(digest) != 64 {
		t.Fatalf("expected 64 hex characters, got %d", len(digest))
	}
	if digest != strings.ToLower(digest) {
		t.Fatal("expected lowercase hex encoding")
	}
	if digest != BuildProofDigest("agentX", "prod", "1.0.0", "reg1") {
		t.Fatal("expected digest to be deterministic")
	}
	if digest == BuildProofDigest("agentY", "prod", "1.0.0", "reg1") {
		t.Fatal("expected digest to change with inputs")
	}
}
