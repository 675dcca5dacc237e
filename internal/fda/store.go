package fda

import (
	"context"

	"github.com/sells-group/biotrust-cli/internal/model"
)

// Store defines the persistence interface for FDA submissions.
// SaveSubmission is an upsert keyed on the content-derived submission
// id. The decided-listing methods feed the precedent search.
type Store interface {
	SaveSubmission(ctx context.Context, sub model.Submission) error
	GetSubmission(ctx context.Context, id string) (*model.Submission, error)
	ListDecidedByIndicationAndType(ctx context.Context, indication string, drugType model.DrugType, limit int) ([]model.Submission, error)
	ListDecidedByDivision(ctx context.Context, division model.ReviewDivision, limit int) ([]model.Submission, error)

	Migrate(ctx context.Context) error
	Close() error
}
