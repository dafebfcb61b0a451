package rest

import "net/http"

func registerRoutes(mux *http.ServeMux, s *Service) {
	if mux == nil {
		return
	}
	mux.HandleFunc(http.MethodGet+" /nanda/index", s.handleIndex)
	mux.HandleFunc(http.MethodGet+" /nanda/resolve", s.handleResolve)
	mux.HandleFunc(http.MethodGet+" /nanda/deltas", s.handleDeltas)
	mux.HandleFunc(http.MethodGet+" /nanda/tools", s.handleTools)
	mux.HandleFunc(http.MethodGet+" /.well-known/nanda.json", s.handleWellKnown)
}
