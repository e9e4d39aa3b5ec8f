// Package chi wires the envdex use cases into an HTTP API.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/envdex/internal/domain"
	domproj "github.com/kailas-cloud/envdex/internal/domain/project"
	domrec "github.com/kailas-cloud/envdex/internal/domain/record"
	domsearch "github.com/kailas-cloud/envdex/internal/domain/search"
	"github.com/kailas-cloud/envdex/internal/metrics"
	healthuc "github.com/kailas-cloud/envdex/internal/usecase/health"
	projectuc "github.com/kailas-cloud/envdex/internal/usecase/project"
	registryuc "github.com/kailas-cloud/envdex/internal/usecase/registry"
	searchuc "github.com/kailas-cloud/envdex/internal/usecase/search"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the registry, search, and project use cases over HTTP.
type Server struct {
	registry      *registryuc.Service
	search        *searchuc.Service
	projects      *projectuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	maxRetries    int
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. maxReindexRetries bounds the reindex sweep.
func NewServer(
	registry *registryuc.Service,
	search *searchuc.Service,
	projects *projectuc.Service,
	health *healthuc.Service,
	maxReindexRetries int,
	logger *zap.Logger,
) *Server {
	s := &Server{
		registry:   registry,
		search:     search,
		projects:   projects,
		health:     health,
		maxRetries: maxReindexRetries,
		logger:     logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrRecordNotFound, http.StatusNotFound, codeRecordNotFound),
		sentinelHandler(domain.ErrProjectNotFound, http.StatusNotFound, codeProjectNotFound),
		sentinelHandler(domain.ErrLinkNotFound, http.StatusNotFound, codeLinkNotFound),
		sentinelHandler(domain.ErrAlreadyExists, http.StatusConflict, codeAlreadyExists),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeEmbeddingProviderError),
	}
	return s
}

// Router builds the chi route tree with the standard middleware stack.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(middleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(TenantMiddleware())
	r.Use(metrics.Middleware())

	r.Get("/health", s.healthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/records", s.upsertRecord)
		r.Get("/records", s.listRecords)
		r.Delete("/records", s.deleteAllRecords)
		r.Get("/records/{name}", s.getRecord)
		r.Delete("/records/{name}", s.deleteRecord)
		r.Post("/records/reindex", s.reindexFailed)
		r.Get("/stats", s.getStats)
		r.Post("/search", s.searchRecords)

		r.Post("/projects", s.createProject)
		r.Get("/projects", s.listProjects)
		r.Get("/projects/{name}", s.getProject)
		r.Delete("/projects/{name}", s.deleteProject)
		r.Put("/projects/{name}/links", s.linkRecord)
		r.Delete("/projects/{name}/links/{record}", s.unlinkRecord)
	})

	return r
}

// upsertRecord handles POST /v1/records.
func (s *Server) upsertRecord(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	draft, err := domrec.New(
		tenantFromContext(r.Context()), req.Name, req.Description,
		domrec.Category(req.Category), req.Service, req.Required,
		req.Example, req.Keywords, req.RelatedTo,
	)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	res, err := s.registry.Upsert(r.Context(), draft)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
		w.Header().Set("Location", "/v1/records/"+res.Record.Name())
	}
	writeJSON(w, status, upsertResponse{
		Record:  recordToDTO(&res.Record),
		Created: res.Created,
		Indexed: res.Indexed,
	})
}

// getRecord handles GET /v1/records/{name}.
func (s *Server) getRecord(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	rec, st, err := s.registry.Get(r.Context(), tenantFromContext(r.Context()), name)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, recordDetailResponse{
		Record:      recordToDTO(&rec),
		IndexStatus: statusToDTO(&st),
	})
}

// listRecords handles GET /v1/records.
func (s *Server) listRecords(w http.ResponseWriter, r *http.Request) {
	records, err := s.registry.List(r.Context(), tenantFromContext(r.Context()))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]recordResponse, len(records))
	for i := range records {
		items[i] = recordToDTO(&records[i])
	}
	writeJSON(w, http.StatusOK, recordListResponse{Items: items, Total: len(items)})
}

// deleteRecord handles DELETE /v1/records/{name}.
func (s *Server) deleteRecord(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if err := s.registry.Delete(r.Context(), tenantFromContext(r.Context()), name); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// deleteAllRecords handles DELETE /v1/records.
func (s *Server) deleteAllRecords(w http.ResponseWriter, r *http.Request) {
	n, err := s.registry.DeleteAll(r.Context(), tenantFromContext(r.Context()))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteAllResponse{Deleted: n})
}

// reindexFailed handles POST /v1/records/reindex.
func (s *Server) reindexFailed(w http.ResponseWriter, r *http.Request) {
	n, err := s.registry.ReindexFailed(r.Context(), tenantFromContext(r.Context()), s.maxRetries)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reindexResponse{Recovered: n})
}

// getStats handles GET /v1/stats.
func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.registry.Stats(r.Context(), tenantFromContext(r.Context()))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statsToDTO(stats))
}

// searchRecords handles POST /v1/search.
func (s *Server) searchRecords(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	q, err := domsearch.NewQuery(
		tenantFromContext(r.Context()), req.Query,
		domrec.Category(req.Category), req.Service, req.RequiredOnly,
		req.Limit, req.MinScore,
	)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	results, err := s.search.Search(r.Context(), &q)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]searchResultItem, len(results))
	for i := range results {
		items[i] = scoredToDTO(&results[i])
	}
	writeJSON(w, http.StatusOK, searchResponse{Items: items, Total: len(items)})
}

// createProject handles POST /v1/projects.
func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	p, err := s.projects.Create(r.Context(), tenantFromContext(r.Context()), req.Name, req.RepoURL, req.Tags)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.Header().Set("Location", "/v1/projects/"+p.Name)
	writeJSON(w, http.StatusCreated, projectToDTO(&p))
}

// listProjects handles GET /v1/projects.
func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.projects.List(r.Context(), tenantFromContext(r.Context()))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]projectResponse, len(projects))
	for i := range projects {
		items[i] = projectToDTO(&projects[i])
	}
	writeJSON(w, http.StatusOK, projectListResponse{Items: items, Total: len(items)})
}

// getProject handles GET /v1/projects/{name}.
func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	p, links, err := s.projects.Get(r.Context(), tenantFromContext(r.Context()), name)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	linkItems := make([]linkResponse, len(links))
	for i := range links {
		linkItems[i] = linkToDTO(&links[i])
	}
	writeJSON(w, http.StatusOK, projectDetailResponse{
		Project: projectToDTO(&p),
		Links:   linkItems,
	})
}

// deleteProject handles DELETE /v1/projects/{name}.
func (s *Server) deleteProject(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if err := s.projects.Delete(r.Context(), tenantFromContext(r.Context()), name); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// linkRecord handles PUT /v1/projects/{name}/links.
func (s *Server) linkRecord(w http.ResponseWriter, r *http.Request) {
	projectName := chi.URLParam(r, "name")

	var req linkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Record == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "record is required")
		return
	}

	l, err := s.projects.Link(
		r.Context(), tenantFromContext(r.Context()), projectName, req.Record,
		domproj.Environment(req.Environment), req.ExampleOverride,
	)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, linkToDTO(&l))
}

// unlinkRecord handles DELETE /v1/projects/{name}/links/{record}.
// The environment comes from the "env" query parameter, defaulting to "default".
func (s *Server) unlinkRecord(w http.ResponseWriter, r *http.Request) {
	projectName := chi.URLParam(r, "name")
	recordName := chi.URLParam(r, "record")
	env := domproj.Environment(r.URL.Query().Get("env"))

	err := s.projects.Unlink(r.Context(), tenantFromContext(r.Context()), projectName, recordName, env)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// healthCheck handles GET /health.
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidInput,
		domain.ErrRecordNotFound,
		domain.ErrProjectNotFound,
		domain.ErrLinkNotFound,
		domain.ErrAlreadyExists,
		domain.ErrEmbeddingProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
