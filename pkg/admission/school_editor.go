package admission

import (
	"context"
	"fmt"
)

// FieldSpec describes one editable school profile field.
type FieldSpec struct {
	Name  string // JSON name
	Label string
	Type  string // HTML input type: text, email, tel, date, image
}

// SchoolFields lists the profile fields in form order.
var SchoolFields = []FieldSpec{
	{"schoolName", "School Name", "text"},
	{"motto", "Motto", "text"},
	{"headquartersAddress", "HQ Address", "text"},
	{"annexAddress", "Annex Address", "text"},
	{"email", "Email", "email"},
	{"phone1", "Phone 1", "tel"},
	{"phone2", "Phone 2", "tel"},
	{"website", "Website", "text"},
	{"ownerName", "Owner Name", "text"},
	{"ownerNumber", "Owner Number", "tel"},
	{"dateIssued", "Date Issued", "date"},
	{"deadline", "Deadline", "date"},
	{"logo", "Logo", "image"},
	{"signature", "Signature", "image"},
}

var schoolFieldRefs = map[string]func(*SchoolProfile) *string{
	"schoolName":          func(s *SchoolProfile) *string { return &s.SchoolName },
	"motto":               func(s *SchoolProfile) *string { return &s.Motto },
	"headquartersAddress": func(s *SchoolProfile) *string { return &s.HeadquartersAddress },
	"annexAddress":        func(s *SchoolProfile) *string { return &s.AnnexAddress },
	"email":               func(s *SchoolProfile) *string { return &s.Email },
	"phone1":              func(s *SchoolProfile) *string { return &s.Phone1 },
	"phone2":              func(s *SchoolProfile) *string { return &s.Phone2 },
	"website":             func(s *SchoolProfile) *string { return &s.Website },
	"ownerName":           func(s *SchoolProfile) *string { return &s.OwnerName },
	"ownerNumber":         func(s *SchoolProfile) *string { return &s.OwnerNumber },
	"dateIssued":          func(s *SchoolProfile) *string { return &s.DateIssued },
	"deadline":            func(s *SchoolProfile) *string { return &s.Deadline },
	"logo":                func(s *SchoolProfile) *string { return &s.Logo },
	"signature":           func(s *SchoolProfile) *string { return &s.Signature },
}

// Field returns the value of the named field.
func (s SchoolProfile) Field(name string) (string, bool) {
	ref, ok := schoolFieldRefs[name]
	if !ok {
		return "", false
	}
	return *ref(&s), true
}

// SchoolEditor edits a school profile field by field.
type SchoolEditor struct {
	profile SchoolProfile
	store   SchoolStore
}

// NewSchoolEditor starts an empty profile. Commit appends it.
func NewSchoolEditor(store SchoolStore) *SchoolEditor {
	return &SchoolEditor{store: store}
}

// EditSchool loads s for editing. Commit replaces it in place.
func EditSchool(store SchoolStore, s SchoolProfile) *SchoolEditor {
	return &SchoolEditor{profile: s, store: store}
}

// Set assigns a field by its JSON name.
func (e *SchoolEditor) Set(field, value string) error {
	ref, ok := schoolFieldRefs[field]
	if !ok {
		return fmt.Errorf("unknown school field %q", field)
	}
	*ref(&e.profile) = value
	return nil
}

// Profile returns the profile as it would be committed.
func (e *SchoolEditor) Profile() SchoolProfile { return e.profile }

// Commit validates and persists the profile.
func (e *SchoolEditor) Commit(ctx context.Context) (SchoolProfile, error) {
	p := e.profile
	if err := check(p, ErrInvalidSchool); err != nil {
		return SchoolProfile{}, err
	}
	if p.ID != "" {
		if err := e.store.UpdateSchool(ctx, p); err != nil {
			return SchoolProfile{}, fmt.Errorf("failed to update school: %w", err)
		}
		return p, nil
	}
	if err := e.store.AddSchool(ctx, &p); err != nil {
		return SchoolProfile{}, fmt.Errorf("failed to save school: %w", err)
	}
	e.profile = p
	return p, nil
}
