package analyses

import "context"

// Repo defines persistence operations for analyses.
type Repo interface {
	Create(ctx context.Context, analysis Analysis) error
	GetByID(ctx context.Context, analysisID string) (Analysis, error)
	UpdateStatus(ctx context.Context, analysisID string, update StatusUpdate) error
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]Analysis, error)
}
