package project

import (
	"context"

	domproj "github.com/kailas-cloud/envdex/internal/domain/project"
	domrec "github.com/kailas-cloud/envdex/internal/domain/record"
)

// ProjectStore is the project and link persistence contract.
type ProjectStore interface {
	Create(ctx context.Context, p *domproj.Project) error
	Get(ctx context.Context, tenant, name string) (domproj.Project, error)
	List(ctx context.Context, tenant string) ([]domproj.Project, error)
	Delete(ctx context.Context, tenant, name string) error
	SaveLink(ctx context.Context, l *domproj.Link) error
	ListLinks(ctx context.Context, tenant, projectName string) ([]domproj.Link, error)
	DeleteLink(ctx context.Context, tenant, projectName, recordName string, env domproj.Environment) error
}

// RecordReader checks record existence before linking.
type RecordReader interface {
	Get(ctx context.Context, tenant, name string) (domrec.Record, error)
}
