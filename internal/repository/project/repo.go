// Package project persists projects and record-to-project links.
package project

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/envdex/internal/domain"
	domproj "github.com/kailas-cloud/envdex/internal/domain/project"
)

// store is the consumer interface for project rows (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	DelMulti(ctx context.Context, keys []string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo implements the project store contract.
type Repo struct {
	store store
}

// New creates a project repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Create stores a new project. Returns domain.ErrAlreadyExists on a duplicate
// (tenant, name) pair.
func (r *Repo) Create(ctx context.Context, p *domproj.Project) error {
	key := projectKey(p.Tenant, p.Name)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check project %s: %w", key, err)
	}
	if exists {
		return domain.ErrAlreadyExists
	}
	if err := r.store.HSet(ctx, key, buildProjectFields(p)); err != nil {
		return fmt.Errorf("create project %s: %w", key, err)
	}
	return nil
}

// Get returns a project by (tenant, name).
func (r *Repo) Get(ctx context.Context, tenant, name string) (domproj.Project, error) {
	key := projectKey(tenant, name)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return domproj.Project{}, fmt.Errorf("get project %s: %w", key, err)
	}
	if len(m) == 0 {
		return domproj.Project{}, domain.ErrProjectNotFound
	}
	return parseProjectFields(tenant, name, m), nil
}

// List returns every project of a tenant in scan order.
func (r *Repo) List(ctx context.Context, tenant string) ([]domproj.Project, error) {
	prefix := projectKey(tenant, "")
	keys, err := r.store.Scan(ctx, prefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan projects for %s: %w", tenant, err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	maps, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load projects for %s: %w", tenant, err)
	}

	projects := make([]domproj.Project, 0, len(maps))
	for i, m := range maps {
		if len(m) == 0 {
			continue
		}
		projects = append(projects, parseProjectFields(tenant, keys[i][len(prefix):], m))
	}
	return projects, nil
}

// Delete removes a project and all of its links.
func (r *Repo) Delete(ctx context.Context, tenant, name string) error {
	key := projectKey(tenant, name)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check project %s: %w", key, err)
	}
	if !exists {
		return domain.ErrProjectNotFound
	}

	linkKeys, err := r.store.Scan(ctx, linkPattern(tenant, name))
	if err != nil {
		return fmt.Errorf("scan links for %s: %w", key, err)
	}
	if len(linkKeys) > 0 {
		if err := r.store.DelMulti(ctx, linkKeys); err != nil {
			return fmt.Errorf("delete links for %s: %w", key, err)
		}
	}

	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("delete project %s: %w", key, err)
	}
	return nil
}

// SaveLink upserts a link row; (record, project, environment) is the key, so
// rebinding the same triple replaces the previous override.
func (r *Repo) SaveLink(ctx context.Context, l *domproj.Link) error {
	key := linkKey(l.Tenant, l.ProjectName, l.RecordName, l.Environment)
	if err := r.store.HSet(ctx, key, buildLinkFields(l)); err != nil {
		return fmt.Errorf("save link %s: %w", key, err)
	}
	return nil
}

// ListLinks returns every link of a project in scan order.
func (r *Repo) ListLinks(ctx context.Context, tenant, projectName string) ([]domproj.Link, error) {
	keys, err := r.store.Scan(ctx, linkPattern(tenant, projectName))
	if err != nil {
		return nil, fmt.Errorf("scan links for %s/%s: %w", tenant, projectName, err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	maps, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load links for %s/%s: %w", tenant, projectName, err)
	}

	links := make([]domproj.Link, 0, len(maps))
	for _, m := range maps {
		if len(m) == 0 {
			continue
		}
		links = append(links, parseLinkFields(tenant, m))
	}
	return links, nil
}

// DeleteLink removes one (record, project, environment) binding.
func (r *Repo) DeleteLink(ctx context.Context, tenant, projectName, recordName string, env domproj.Environment) error {
	key := linkKey(tenant, projectName, recordName, env)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check link %s: %w", key, err)
	}
	if !exists {
		return domain.ErrLinkNotFound
	}
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("delete link %s: %w", key, err)
	}
	return nil
}

func projectKey(tenant, name string) string {
	return fmt.Sprintf("%sproject:%s:%s", domain.KeyPrefix, tenant, name)
}

func linkKey(tenant, projectName, recordName string, env domproj.Environment) string {
	return fmt.Sprintf("%slink:%s:%s:%s:%s", domain.KeyPrefix, tenant, projectName, recordName, env)
}

func linkPattern(tenant, projectName string) string {
	return fmt.Sprintf("%slink:%s:%s:*", domain.KeyPrefix, tenant, projectName)
}
