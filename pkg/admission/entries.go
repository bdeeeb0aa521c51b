package admission

import "fmt"

// Flatten returns one Entry per name, in batch order and then name order.
// The same name in two batches yields two entries.
func Flatten(batches []Batch) []Entry {
	n := 0
	for _, b := range batches {
		n += len(b.Names)
	}
	out := make([]Entry, 0, n)
	for _, b := range batches {
		for _, name := range b.Names {
			out = append(out, Entry{
				Index:          len(out),
				BatchID:        b.ID,
				Name:           name,
				AdmissionYear:  b.AdmissionYear.String(),
				AdmissionClass: b.AdmissionClass,
			})
		}
	}
	return out
}

// EntryAt returns the entry at position i.
func EntryAt(entries []Entry, i int) (Entry, error) {
	if i < 0 || i >= len(entries) {
		return Entry{}, fmt.Errorf("%w: entry %d (have %d)", ErrNotFound, i, len(entries))
	}
	return entries[i], nil
}

// EntryByName returns the first entry whose name matches exactly.
func EntryByName(entries []Entry, name string) (Entry, error) {
	for _, e := range entries {
		if e.Name == name {
			return e, nil
		}
	}
	return Entry{}, fmt.Errorf("%w: no entry named %q", ErrNotFound, name)
}
