package transport

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/covenant-ledger/covenant/internal/domain/vault"
)

// Server wires the read-only HTTP surface. Mutations go through MCP tools.
type Server struct {
	svc *vault.Service
}

// NewRouter creates the HTTP router. The MCP handler is mounted at /mcp
// behind the auth middleware; the read endpoints and health check are open.
func NewRouter(svc *vault.Service, mcpHandler http.Handler, authMiddleware func(http.Handler) http.Handler, metricsHandler http.Handler) *chi.Mux {
	r := chi.NewRouter()

	srv := &Server{svc: svc}

	if mcpHandler != nil {
		if authMiddleware != nil {
			mcpHandler = authMiddleware(mcpHandler)
		}
		r.Handle("/mcp", mcpHandler)
	}
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	r.Get("/health", srv.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/globals", srv.handleGlobals)
		r.Get("/projects", srv.handleListProjects)
		r.Get("/projects/{id}", srv.handleGetProject)
		r.Get("/projects/{id}/balances", srv.handleBalances)
		r.Get("/projects/{id}/metrics", srv.handleMetrics)
		r.Get("/projects/{id}/events", srv.handleEvents)
		r.Get("/projects/{id}/claims/{claimant}", srv.handleClaim)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleGlobals(w http.ResponseWriter, r *http.Request) {
	g, err := s.svc.GetGlobals(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, g)
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.svc.ListProjects(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if projects == nil {
		projects = []vault.Project{}
	}
	writeJSON(w, projects)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(w, r)
	if !ok {
		return
	}
	proj, err := s.svc.GetProject(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, proj)
}

func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(w, r)
	if !ok {
		return
	}
	balances, err := s.svc.GetBalances(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, balances)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(w, r)
	if !ok {
		return
	}
	metrics, err := s.svc.GetMetrics(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, metrics)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(w, r)
	if !ok {
		return
	}
	opts := vault.ListEventsOptions{ProjectID: &id}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		opts.Limit = limit
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			http.Error(w, "invalid offset", http.StatusBadRequest)
			return
		}
		opts.Offset = offset
	}
	events, err := s.svc.ListEvents(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}
	if events == nil {
		events = []vault.Event{}
	}
	writeJSON(w, events)
}

func (s *Server) handleClaim(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(w, r)
	if !ok {
		return
	}
	claim, err := s.svc.GetClaim(r.Context(), id, chi.URLParam(r, "claimant"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, claim)
}

func projectID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid project id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, vault.ErrProjectNotFound):
		status = http.StatusNotFound
	case errors.Is(err, vault.ErrUnauthorized):
		status = http.StatusForbidden
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
