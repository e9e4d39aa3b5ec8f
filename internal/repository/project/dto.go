package project

import (
	"strconv"
	"strings"
	"time"

	domproj "github.com/kailas-cloud/envdex/internal/domain/project"
)

const (
	fieldRepoURL   = "repo_url"
	fieldTags      = "tags"
	fieldRecord    = "record"
	fieldEnv       = "environment"
	fieldExample   = "example_override"
	fieldCreatedAt = "created_at"
	fieldUpdatedAt = "updated_at"
)

// Unit separator, same codec as repository/record: tags may contain commas.
const listSeparator = "\x1f"

func buildProjectFields(p *domproj.Project) map[string]string {
	return map[string]string{
		fieldRepoURL:   p.RepoURL,
		fieldTags:      strings.Join(p.Tags, listSeparator),
		fieldCreatedAt: strconv.FormatInt(p.CreatedAt.UnixMilli(), 10),
		fieldUpdatedAt: strconv.FormatInt(p.UpdatedAt.UnixMilli(), 10),
	}
}

func parseProjectFields(tenant, name string, m map[string]string) domproj.Project {
	var tags []string
	if m[fieldTags] != "" {
		tags = strings.Split(m[fieldTags], listSeparator)
	}
	return domproj.Project{
		Tenant:    tenant,
		Name:      name,
		RepoURL:   m[fieldRepoURL],
		Tags:      tags,
		CreatedAt: parseMillis(m[fieldCreatedAt]),
		UpdatedAt: parseMillis(m[fieldUpdatedAt]),
	}
}

func buildLinkFields(l *domproj.Link) map[string]string {
	return map[string]string{
		fieldRecord:    l.RecordName,
		"project":      l.ProjectName,
		fieldEnv:       string(l.Environment),
		fieldExample:   l.ExampleOverride,
		fieldCreatedAt: strconv.FormatInt(l.CreatedAt.UnixMilli(), 10),
	}
}

func parseLinkFields(tenant string, m map[string]string) domproj.Link {
	return domproj.Link{
		Tenant:          tenant,
		RecordName:      m[fieldRecord],
		ProjectName:     m["project"],
		Environment:     domproj.Environment(m[fieldEnv]),
		ExampleOverride: m[fieldExample],
		CreatedAt:       parseMillis(m[fieldCreatedAt]),
	}
}

func parseMillis(s string) time.Time {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil || ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
