package analyses

import (
	"context"
	"sort"
	"sync"

	"legal-backend/internal/shared/pagination"
)

// MemoryRepo stores analyses in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu      sync.RWMutex
	byID    map[string]Analysis
	byOwner map[string][]string
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:    make(map[string]Analysis),
		byOwner: make(map[string][]string),
	}
}

// Create stores the analysis.
func (r *MemoryRepo) Create(ctx context.Context, analysis Analysis) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[analysis.ID] = analysis
	r.byOwner[analysis.OwnerID] = append(r.byOwner[analysis.OwnerID], analysis.ID)
	return nil
}

// GetByID returns an analysis by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, analysisID string) (Analysis, error) {
	if err := ctx.Err(); err != nil {
		return Analysis{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	analysis, ok := r.byID[analysisID]
	if !ok {
		return Analysis{}, ErrNotFound
	}
	return cloneAnalysis(analysis), nil
}

// UpdateStatus applies a status transition to an existing analysis.
func (r *MemoryRepo) UpdateStatus(ctx context.Context, analysisID string, update StatusUpdate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	analysis, ok := r.byID[analysisID]
	if !ok {
		return ErrNotFound
	}
	r.byID[analysisID] = applyUpdate(analysis, update)
	return nil
}

// ListByOwner returns analyses for an owner, newest first.
func (r *MemoryRepo) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit, offset = pagination.Clamp(limit, offset, pagination.MaxRepoLimit)

	r.mu.RLock()
	ids := r.byOwner[ownerID]
	out := make([]Analysis, 0, len(ids))
	for _, id := range ids {
		out = append(out, cloneAnalysis(r.byID[id]))
	}
	r.mu.RUnlock()

	if offset >= len(out) {
		return []Analysis{}, nil
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out[offset:min(offset+limit, len(out))], nil
}

func applyUpdate(a Analysis, u StatusUpdate) Analysis {
	if u.Status != "" {
		a.Status = u.Status
	}
	if u.Result != nil {
		r := u.Result.Clone()
		a.Result = &r
		a.OverallRisk = string(r.OverallRisk)
	}
	if u.ErrorCode != "" {
		a.ErrorCode = u.ErrorCode
	}
	if u.ErrorMessage != nil {
		a.ErrorMessage = u.ErrorMessage
	}
	if u.StartedAt != nil {
		a.StartedAt = u.StartedAt
	}
	if u.CompletedAt != nil {
		a.CompletedAt = u.CompletedAt
	}
	return a
}

func cloneAnalysis(a Analysis) Analysis {
	if a.Result != nil {
		r := a.Result.Clone()
		a.Result = &r
	}
	return a
}

var _ Repo = (*MemoryRepo)(nil)
