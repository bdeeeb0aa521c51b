package storage

import (
	"context"

	"github.com/eccowas/admitgen/pkg/admission"
)

// Ensure Repo implements admission.Repository
var _ admission.Repository = (*Repo)(nil)

// Repo stores school profiles under SchoolKey and admission batches under
// StudentKey.
type Repo struct {
	schools Collection[admission.SchoolProfile]
	batches Collection[admission.Batch]
}

func NewRepo(db *DB) *Repo {
	return &Repo{
		schools: Collection[admission.SchoolProfile]{
			db:  db,
			key: SchoolKey,
			id:  func(s *admission.SchoolProfile) *string { return &s.ID },
		},
		batches: Collection[admission.Batch]{
			db:  db,
			key: StudentKey,
			id:  func(b *admission.Batch) *string { return &b.ID },
		},
	}
}

func (r *Repo) ListSchools(ctx context.Context) ([]admission.SchoolProfile, error) {
	return r.schools.List(ctx)
}

func (r *Repo) AddSchool(ctx context.Context, s *admission.SchoolProfile) error {
	return r.schools.Add(ctx, s)
}

func (r *Repo) UpdateSchool(ctx context.Context, s admission.SchoolProfile) error {
	return r.schools.Replace(ctx, s)
}

func (r *Repo) DeleteSchool(ctx context.Context, id string) error {
	return r.schools.Delete(ctx, id)
}

func (r *Repo) ListBatches(ctx context.Context) ([]admission.Batch, error) {
	return r.batches.List(ctx)
}

func (r *Repo) AddBatch(ctx context.Context, b *admission.Batch) error {
	return r.batches.Add(ctx, b)
}

func (r *Repo) UpdateBatch(ctx context.Context, b admission.Batch) error {
	return r.batches.Replace(ctx, b)
}

func (r *Repo) DeleteBatch(ctx context.Context, id string) error {
	return r.batches.Delete(ctx, id)
}
