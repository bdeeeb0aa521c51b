package admission

import (
	"context"
	"fmt"
)

// Snapshot is every stored record in storage order.
type Snapshot struct {
	Schools []SchoolProfile `json:"schools"`
	Batches []Batch         `json:"batches"`
}

// Review lists stored records and hands out editors for them.
type Review struct {
	repo   Repository
	policy RenamePolicy
}

func NewReview(repo Repository, policy RenamePolicy) *Review {
	return &Review{repo: repo, policy: policy}
}

func (r *Review) Load(ctx context.Context) (Snapshot, error) {
	schools, err := r.repo.ListSchools(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to list schools: %w", err)
	}
	batches, err := r.repo.ListBatches(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to list batches: %w", err)
	}
	return Snapshot{Schools: schools, Batches: batches}, nil
}

// DeleteSchool removes the profile immediately. There is no undo.
func (r *Review) DeleteSchool(ctx context.Context, id string) error {
	return r.repo.DeleteSchool(ctx, id)
}

// DeleteBatch removes the batch immediately. There is no undo.
func (r *Review) DeleteBatch(ctx context.Context, id string) error {
	return r.repo.DeleteBatch(ctx, id)
}

func (r *Review) NewSchool() *SchoolEditor { return NewSchoolEditor(r.repo) }

func (r *Review) NewBatch() *Editor { return NewEditor(r.repo, r.policy) }

func (r *Review) EditSchool(ctx context.Context, id string) (*SchoolEditor, error) {
	schools, err := r.repo.ListSchools(ctx)
	if err != nil {
		return nil, err
	}
	for _, s := range schools {
		if s.ID == id {
			return EditSchool(r.repo, s), nil
		}
	}
	return nil, fmt.Errorf("%w: school %s", ErrNotFound, id)
}

func (r *Review) EditBatch(ctx context.Context, id string) (*Editor, error) {
	batches, err := r.repo.ListBatches(ctx)
	if err != nil {
		return nil, err
	}
	for _, b := range batches {
		if b.ID == id {
			return EditBatch(r.repo, r.policy, b), nil
		}
	}
	return nil, fmt.Errorf("%w: batch %s", ErrNotFound, id)
}
