// Package project implements project CRUD and record-to-project links with
// environment labels.
package project

import (
	"context"
	"fmt"

	domproj "github.com/kailas-cloud/envdex/internal/domain/project"
)

// Service handles projects and their record links.
type Service struct {
	projects ProjectStore
	records  RecordReader
}

// New creates a project service.
func New(projects ProjectStore, records RecordReader) *Service {
	return &Service{projects: projects, records: records}
}

// Create validates and stores a new project.
func (s *Service) Create(ctx context.Context, tenant, name, repoURL string, tags []string) (domproj.Project, error) {
	p, err := domproj.New(tenant, name, repoURL, tags)
	if err != nil {
		return domproj.Project{}, err
	}
	if err := s.projects.Create(ctx, &p); err != nil {
		return domproj.Project{}, fmt.Errorf("create project: %w", err)
	}
	return p, nil
}

// Get returns a project with its links.
func (s *Service) Get(ctx context.Context, tenant, name string) (domproj.Project, []domproj.Link, error) {
	p, err := s.projects.Get(ctx, tenant, name)
	if err != nil {
		return domproj.Project{}, nil, fmt.Errorf("get project: %w", err)
	}
	links, err := s.projects.ListLinks(ctx, tenant, name)
	if err != nil {
		return domproj.Project{}, nil, fmt.Errorf("list links: %w", err)
	}
	return p, links, nil
}

// List returns every project of a tenant.
func (s *Service) List(ctx context.Context, tenant string) ([]domproj.Project, error) {
	projects, err := s.projects.List(ctx, tenant)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// Delete removes a project and its links.
func (s *Service) Delete(ctx context.Context, tenant, name string) error {
	if err := s.projects.Delete(ctx, tenant, name); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}

// Link binds a record to a project under an environment label. Both sides
// must exist; rebinding the same triple replaces the example override.
func (s *Service) Link(
	ctx context.Context, tenant, projectName, recordName string,
	env domproj.Environment, exampleOverride string,
) (domproj.Link, error) {
	if _, err := s.projects.Get(ctx, tenant, projectName); err != nil {
		return domproj.Link{}, fmt.Errorf("get project: %w", err)
	}
	if _, err := s.records.Get(ctx, tenant, recordName); err != nil {
		return domproj.Link{}, fmt.Errorf("get record: %w", err)
	}

	l, err := domproj.NewLink(tenant, recordName, projectName, env, exampleOverride)
	if err != nil {
		return domproj.Link{}, err
	}
	if err := s.projects.SaveLink(ctx, &l); err != nil {
		return domproj.Link{}, fmt.Errorf("save link: %w", err)
	}
	return l, nil
}

// Unlink removes one (record, project, environment) binding.
func (s *Service) Unlink(ctx context.Context, tenant, projectName, recordName string, env domproj.Environment) error {
	if env == "" {
		env = domproj.EnvDefault
	}
	if err := s.projects.DeleteLink(ctx, tenant, projectName, recordName, env); err != nil {
		return fmt.Errorf("delete link: %w", err)
	}
	return nil
}
