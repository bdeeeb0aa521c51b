package admission

import "context"

// SchoolStore persists school profiles in insertion order.
type SchoolStore interface {
	ListSchools(ctx context.Context) ([]SchoolProfile, error)

	// AddSchool appends the profile, assigning ID when it is empty.
	AddSchool(ctx context.Context, s *SchoolProfile) error

	// UpdateSchool replaces the stored profile with the same ID in place.
	// Returns ErrNotFound when no such profile exists.
	UpdateSchool(ctx context.Context, s SchoolProfile) error

	DeleteSchool(ctx context.Context, id string) error
}

// BatchStore persists admission batches in insertion order.
type BatchStore interface {
	ListBatches(ctx context.Context) ([]Batch, error)

	// AddBatch appends the batch, assigning ID when it is empty.
	AddBatch(ctx context.Context, b *Batch) error

	// UpdateBatch replaces the stored batch with the same ID in place.
	// Returns ErrNotFound when no such batch exists.
	UpdateBatch(ctx context.Context, b Batch) error

	DeleteBatch(ctx context.Context, id string) error
}

// Repository is the typed view of the persisted collections.
type Repository interface {
	SchoolStore
	BatchStore
}

// ActiveSchool returns the first stored profile. The zero profile and false are
// returned when none exists; rendering then falls back to defaults.
func ActiveSchool(ctx context.Context, schools SchoolStore) (SchoolProfile, bool, error) {
	all, err := schools.ListSchools(ctx)
	if err != nil {
		return SchoolProfile{}, false, err
	}
	if len(all) == 0 {
		return SchoolProfile{}, false, nil
	}
	return all[0], true, nil
}

// Entries flattens every stored batch.
func Entries(ctx context.Context, batches BatchStore) ([]Entry, error) {
	all, err := batches.ListBatches(ctx)
	if err != nil {
		return nil, err
	}
	return Flatten(all), nil
}
