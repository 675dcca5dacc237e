// Package promise persists executive promises and tracks their
// outcomes against stated deadlines.
package promise

import (
	"context"
	"time"

	"github.com/sells-group/biotrust-cli/internal/model"
)

// Store defines the persistence interface for the promise tracker.
// SavePromise is an upsert keyed on the content-derived promise id, so
// re-saving an extraction is a no-op rather than a duplicate.
type Store interface {
	// Promises
	SavePromise(ctx context.Context, p model.Promise) error
	GetPromise(ctx context.Context, id string) (*model.Promise, error)
	ListByExecutive(ctx context.Context, executiveName, company string) ([]model.Promise, error)
	ListByCompany(ctx context.Context, company string) ([]model.Promise, error)
	DueBefore(ctx context.Context, cutoff time.Time) ([]model.Promise, error)
	SearchPromises(ctx context.Context, query string) ([]model.Promise, error)

	// Credibility aggregates
	SaveExecutiveCredibility(ctx context.Context, cred model.ExecutiveCredibility) error
	GetExecutiveCredibility(ctx context.Context, executiveID string) (*model.ExecutiveCredibility, error)
	SaveCompanyCredibility(ctx context.Context, cred model.CompanyCredibility) error
	GetCompanyCredibility(ctx context.Context, company string) (*model.CompanyCredibility, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
