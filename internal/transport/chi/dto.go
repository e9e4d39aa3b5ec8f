package chi

import (
	"time"

	domproj "github.com/kailas-cloud/envdex/internal/domain/project"
	domrec "github.com/kailas-cloud/envdex/internal/domain/record"
	domsearch "github.com/kailas-cloud/envdex/internal/domain/search"
	registryuc "github.com/kailas-cloud/envdex/internal/usecase/registry"
)

// errorCode is the machine-readable error discriminator in error responses.
type errorCode string

const (
	codeBadRequest             errorCode = "bad_request"
	codeValidationFailed       errorCode = "validation_failed"
	codeRecordNotFound         errorCode = "record_not_found"
	codeProjectNotFound        errorCode = "project_not_found"
	codeLinkNotFound           errorCode = "link_not_found"
	codeAlreadyExists          errorCode = "already_exists"
	codeEmbeddingProviderError errorCode = "embedding_provider_error"
	codeInternalError          errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

type recordRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	Service     string   `json:"service,omitempty"`
	Required    bool     `json:"required,omitempty"`
	Example     string   `json:"example,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	RelatedTo   []string `json:"related_to,omitempty"`
}

type recordResponse struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Category    string     `json:"category"`
	Service     string     `json:"service,omitempty"`
	Required    bool       `json:"required"`
	Example     string     `json:"example,omitempty"`
	Keywords    []string   `json:"keywords,omitempty"`
	RelatedTo   []string   `json:"related_to,omitempty"`
	IndexedAt   *time.Time `json:"indexed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type indexStatusResponse struct {
	State     string    `json:"state"`
	Error     string    `json:"error,omitempty"`
	Retries   int       `json:"retries,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

type upsertResponse struct {
	Record  recordResponse `json:"record"`
	Created bool           `json:"created"`
	Indexed bool           `json:"indexed"`
}

type recordDetailResponse struct {
	Record      recordResponse      `json:"record"`
	IndexStatus indexStatusResponse `json:"index_status"`
}

type recordListResponse struct {
	Items []recordResponse `json:"items"`
	Total int              `json:"total"`
}

type searchRequest struct {
	Query        string  `json:"query"`
	Category     string  `json:"category,omitempty"`
	Service      string  `json:"service,omitempty"`
	RequiredOnly bool    `json:"required_only,omitempty"`
	Limit        int     `json:"limit,omitempty"`
	MinScore     float64 `json:"min_score,omitempty"`
}

type searchResultItem struct {
	Record    recordResponse `json:"record"`
	Score     float64        `json:"score"`
	MatchType string         `json:"match_type"`
}

type searchResponse struct {
	Items []searchResultItem `json:"items"`
	Total int                `json:"total"`
}

type statsResponse struct {
	Total         int            `json:"total"`
	ByCategory    map[string]int `json:"by_category"`
	ByService     map[string]int `json:"by_service"`
	RequiredCount int            `json:"required_count"`
}

type deleteAllResponse struct {
	Deleted int `json:"deleted"`
}

type reindexResponse struct {
	Recovered int `json:"recovered"`
}

type projectRequest struct {
	Name    string   `json:"name"`
	RepoURL string   `json:"repo_url,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

type projectResponse struct {
	Name      string    `json:"name"`
	RepoURL   string    `json:"repo_url,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type projectDetailResponse struct {
	Project projectResponse `json:"project"`
	Links   []linkResponse  `json:"links"`
}

type projectListResponse struct {
	Items []projectResponse `json:"items"`
	Total int               `json:"total"`
}

type linkRequest struct {
	Record          string `json:"record"`
	Environment     string `json:"environment,omitempty"`
	ExampleOverride string `json:"example_override,omitempty"`
}

type linkResponse struct {
	Record          string    `json:"record"`
	Project         string    `json:"project"`
	Environment     string    `json:"environment"`
	ExampleOverride string    `json:"example_override,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func recordToDTO(rec *domrec.Record) recordResponse {
	resp := recordResponse{
		ID:          rec.ID(),
		Name:        rec.Name(),
		Description: rec.Description(),
		Category:    string(rec.Category()),
		Service:     rec.Service(),
		Required:    rec.Required(),
		Example:     rec.Example(),
		Keywords:    rec.Keywords(),
		RelatedTo:   rec.RelatedTo(),
		CreatedAt:   rec.CreatedAt(),
		UpdatedAt:   rec.UpdatedAt(),
	}
	if !rec.IndexedAt().IsZero() {
		t := rec.IndexedAt()
		resp.IndexedAt = &t
	}
	return resp
}

func statusToDTO(st *domrec.IndexStatus) indexStatusResponse {
	return indexStatusResponse{
		State:     string(st.State),
		Error:     st.Error,
		Retries:   st.Retries,
		UpdatedAt: st.UpdatedAt,
	}
}

func scoredToDTO(sr *domsearch.ScoredRecord) searchResultItem {
	return searchResultItem{
		Record:    recordToDTO(&sr.Record),
		Score:     sr.Score,
		MatchType: string(sr.MatchType),
	}
}

func statsToDTO(st registryuc.Stats) statsResponse {
	byCategory := make(map[string]int, len(st.ByCategory))
	for c, n := range st.ByCategory {
		byCategory[string(c)] = n
	}
	return statsResponse{
		Total:         st.Total,
		ByCategory:    byCategory,
		ByService:     st.ByService,
		RequiredCount: st.RequiredCount,
	}
}

func projectToDTO(p *domproj.Project) projectResponse {
	return projectResponse{
		Name:      p.Name,
		RepoURL:   p.RepoURL,
		Tags:      p.Tags,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func linkToDTO(l *domproj.Link) linkResponse {
	return linkResponse{
		Record:          l.RecordName,
		Project:         l.ProjectName,
		Environment:     string(l.Environment),
		ExampleOverride: l.ExampleOverride,
		CreatedAt:       l.CreatedAt,
	}
}
