// Package rest serves the NANDA federation endpoints over HTTP JSON.
package rest

import (
	"net/http"
	"time"

	"github.com/Sharathvc23/nanda-bridge/internal/bridge"
	"github.com/Sharathvc23/nanda-bridge/internal/bridge/agentfacts"
	"github.com/Sharathvc23/nanda-bridge/internal/bridge/delta"
	"github.com/Sharathvc23/nanda-bridge/internal/platform/errors"
)

// DeltaResponse is the payload for the delta feed endpoint. NextSeq is the
// watermark consumers poll with on their next request.
type DeltaResponse struct {
	RegistryID  string        `json:"registry_id"`
	GeneratedAt time.Time     `json:"generated_at"`
	Deltas      []delta.Delta `json:"deltas"`
	NextSeq     uint64        `json:"next_seq"`
}

// ToolsResponse is the payload for the tool listing endpoint.
type ToolsResponse struct {
	RegistryID string            `json:"registry_id"`
	Tools      []agentfacts.Tool `json:"tools"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Service serves the federation HTTP surface for one bridge.
type Service struct {
	bridge *bridge.Bridge
	now    func() time.Time
}

// New builds the HTTP service.
func New(b *bridge.Bridge) (*Service, error) {
	if b == nil {
		return nil, errors.New(errors.CodeInvalidArgument, "bridge is required")
	}
	return &Service{bridge: b, now: time.Now}, nil
}

// Handler returns the routed HTTP handler.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	registerRoutes(mux, s)
	return mux
}
