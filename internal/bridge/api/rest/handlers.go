package rest

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/Sharathvc23/nanda-bridge/internal/bridge/converter"
	"github.com/Sharathvc23/nanda-bridge/internal/bridge/delta"
	"github.com/Sharathvc23/nanda-bridge/internal/platform/errors"
)

func (s *Service) handleIndex(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", converter.DefaultListLimit, errors.CodeInvalidLimit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	offset, err := queryInt(r, "offset", 0, errors.CodeInvalidOffset)
	if err != nil {
		s.writeError(w, err)
		return
	}

	index, err := s.bridge.Index(r.Context(), limit, offset)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, index)
}

func (s *Service) handleResolve(w http.ResponseWriter, r *http.Request) {
	identifier := strings.TrimSpace(r.URL.Query().Get("agent"))
	if identifier == "" {
		s.writeError(w, errors.New(errors.CodeInvalidArgument, "agent query parameter is required"))
		return
	}

	facts, err := s.bridge.Resolve(r.Context(), identifier)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, facts)
}

func (s *Service) handleDeltas(w http.ResponseWriter, r *http.Request) {
	since, err := querySince(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	deltas, nextSeq := s.bridge.Deltas(r.Context(), since)
	if deltas == nil {
		deltas = []delta.Delta{}
	}
	writeJSON(w, http.StatusOK, DeltaResponse{
		RegistryID:  s.bridge.RegistryID(),
		GeneratedAt: s.now().UTC(),
		Deltas:      deltas,
		NextSeq:     nextSeq,
	})
}

func (s *Service) handleTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ToolsResponse{
		RegistryID: s.bridge.RegistryID(),
		Tools:      s.bridge.Tools(),
	})
}

func (s *Service) handleWellKnown(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.bridge.WellKnown())
}

// queryInt parses an optional non-negative integer query parameter. Range
// checks beyond non-negativity belong to the core.
func queryInt(r *http.Request, name string, fallback int, code errors.Code) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(code, name+" must be an integer")
	}
	return value, nil
}

func querySince(r *http.Request) (uint64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("since"))
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, errors.New(errors.CodeInvalidSince, "since must be a non-negative integer")
	}
	return value, nil
}

func (s *Service) writeError(w http.ResponseWriter, err error) {
	code := errors.CodeOf(err)
	writeJSON(w, code.HTTPStatus(), errorResponse{
		Error: err.Error(),
		Code:  string(code),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	_ = encoder.Encode(payload)
}
