package admission

import (
	"context"
	"fmt"
	"strings"
)

// RenamePolicy decides what happens when a rename collides with another name in
// the same batch.
type RenamePolicy int

const (
	// RejectDuplicateRenames refuses the rename with ErrDuplicateName.
	RejectDuplicateRenames RenamePolicy = iota
	// AllowDuplicateRenames replaces the name even if it is already present.
	AllowDuplicateRenames
)

// ParseRenamePolicy maps the config values "reject" and "allow".
func ParseRenamePolicy(s string) (RenamePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reject":
		return RejectDuplicateRenames, nil
	case "allow":
		return AllowDuplicateRenames, nil
	}
	return 0, fmt.Errorf("unknown rename policy %q (want reject or allow)", s)
}

// Editor composes a new batch or edits a stored one. It is not safe for
// concurrent use; each view owns its editor.
type Editor struct {
	AdmissionYear  string
	AdmissionClass string

	// Buffer holds the name being typed.
	Buffer string

	id     string
	names  []string
	policy RenamePolicy
	store  BatchStore
}

// NewEditor starts an empty batch. Commit appends it.
func NewEditor(store BatchStore, policy RenamePolicy) *Editor {
	return &Editor{store: store, policy: policy}
}

// EditBatch loads b for editing. Commit replaces it in place.
func EditBatch(store BatchStore, policy RenamePolicy, b Batch) *Editor {
	return &Editor{
		AdmissionYear:  b.AdmissionYear.String(),
		AdmissionClass: b.AdmissionClass,
		id:             b.ID,
		names:          append([]string(nil), b.Names...),
		policy:         policy,
		store:          store,
	}
}

// ID is the id of the stored batch being edited. It is empty for a new batch,
// also after Commit, which resets the editor for the next one.
func (e *Editor) ID() string { return e.id }

// Names returns a copy of the current names.
func (e *Editor) Names() []string {
	return append([]string(nil), e.names...)
}

// AddName appends the trimmed candidate unless it is empty or already present.
// It reports whether the list changed. The typing buffer is always cleared.
func (e *Editor) AddName(candidate string) bool {
	e.Buffer = ""
	name := strings.TrimSpace(candidate)
	if name == "" || e.indexOf(name) >= 0 {
		return false
	}
	e.names = append(e.names, name)
	return true
}

// AddBuffered adds whatever is in the typing buffer.
func (e *Editor) AddBuffered() bool {
	return e.AddName(e.Buffer)
}

// RemoveName deletes the name at position i.
func (e *Editor) RemoveName(i int) error {
	if i < 0 || i >= len(e.names) {
		return fmt.Errorf("%w: %d", ErrNoSuchName, i)
	}
	e.names = append(e.names[:i], e.names[i+1:]...)
	return nil
}

// RenameName replaces the name at position i with the trimmed value. An empty
// value leaves the name unchanged.
func (e *Editor) RenameName(i int, value string) error {
	if i < 0 || i >= len(e.names) {
		return fmt.Errorf("%w: %d", ErrNoSuchName, i)
	}
	name := strings.TrimSpace(value)
	if name == "" {
		return nil
	}
	if e.policy == RejectDuplicateRenames {
		if j := e.indexOf(name); j >= 0 && j != i {
			return fmt.Errorf("%w: %q", ErrDuplicateName, name)
		}
	}
	e.names[i] = name
	return nil
}

// Batch returns the batch as it would be committed.
func (e *Editor) Batch() Batch {
	return Batch{
		ID:             e.id,
		AdmissionYear:  Year(e.AdmissionYear),
		AdmissionClass: e.AdmissionClass,
		Names:          e.Names(),
	}
}

// Commit validates and persists the batch. A validation failure returns a
// *ValidationError and writes nothing. After a new batch is committed the
// editor is reset so the next batch can be composed.
func (e *Editor) Commit(ctx context.Context) (Batch, error) {
	b := e.Batch()
	if err := check(b, ErrIncompleteBatch); err != nil {
		return Batch{}, err
	}

	if e.id != "" {
		if err := e.store.UpdateBatch(ctx, b); err != nil {
			return Batch{}, fmt.Errorf("failed to update batch: %w", err)
		}
		return b, nil
	}

	if err := e.store.AddBatch(ctx, &b); err != nil {
		return Batch{}, fmt.Errorf("failed to save batch: %w", err)
	}
	e.AdmissionYear, e.AdmissionClass, e.Buffer = "", "", ""
	e.names = nil
	return b, nil
}

func (e *Editor) indexOf(name string) int {
	for i, n := range e.names {
		if n == name {
			return i
		}
	}
	return -1
}
