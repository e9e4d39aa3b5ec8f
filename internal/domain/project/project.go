// Package project defines the organizational grouping of records and the
// per-environment bindings between records and projects.
package project

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/envdex/internal/domain"
)

// Environment labels a record-to-project binding.
type Environment string

const (
	// EnvDev is the development environment.
	EnvDev Environment = "dev"
	// EnvStaging is the staging environment.
	EnvStaging Environment = "staging"
	// EnvProd is the production environment.
	EnvProd Environment = "prod"
	// EnvDefault applies when no environment-specific binding exists.
	EnvDefault Environment = "default"
)

// IsValid reports whether e is one of the fixed environment labels.
func (e Environment) IsValid() bool {
	switch e {
	case EnvDev, EnvStaging, EnvProd, EnvDefault:
		return true
	}
	return false
}

// Project groups records under a (tenant, name) unique key.
type Project struct {
	Tenant    string
	Name      string
	RepoURL   string
	Tags      []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// New validates and creates a project.
func New(tenant, name, repoURL string, tags []string) (Project, error) {
	if tenant == "" {
		return Project{}, fmt.Errorf("%w: tenant is required", domain.ErrInvalidInput)
	}
	if name == "" {
		return Project{}, fmt.Errorf("%w: project name is required", domain.ErrInvalidInput)
	}
	return Project{Tenant: tenant, Name: name, RepoURL: repoURL, Tags: tags}, nil
}

// Link binds a record to a project under one environment label.
// Uniqueness is (record, project, environment): the same record may bind
// differently per environment, optionally overriding its example value.
type Link struct {
	Tenant          string
	RecordName      string
	ProjectName     string
	Environment     Environment
	ExampleOverride string
	CreatedAt       time.Time
}

// NewLink validates and creates a link. An empty environment defaults to EnvDefault.
func NewLink(tenant, recordName, projectName string, env Environment, exampleOverride string) (Link, error) {
	if tenant == "" {
		return Link{}, fmt.Errorf("%w: tenant is required", domain.ErrInvalidInput)
	}
	if recordName == "" || projectName == "" {
		return Link{}, fmt.Errorf("%w: record and project names are required", domain.ErrInvalidInput)
	}
	if env == "" {
		env = EnvDefault
	}
	if !env.IsValid() {
		return Link{}, fmt.Errorf("%w: unknown environment %q", domain.ErrInvalidInput, env)
	}
	return Link{
		Tenant:          tenant,
		RecordName:      recordName,
		ProjectName:     projectName,
		Environment:     env,
		ExampleOverride: exampleOverride,
	}, nil
}
