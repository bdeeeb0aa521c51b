// Package admission holds the records staff enter (school profile, admission
// batches), the entries derived from them, and the editors that validate and
// persist changes through a Repository.
package admission

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// SchoolProfile supplies letterhead and signature content. Only the first stored
// profile is used when rendering letters.
type SchoolProfile struct {
	ID string `json:"id"`

	SchoolName          string `json:"schoolName"`
	Motto               string `json:"motto"`
	HeadquartersAddress string `json:"headquartersAddress"`
	AnnexAddress        string `json:"annexAddress"`

	Email   string `json:"email" validate:"omitempty,email"`
	Phone1  string `json:"phone1"`
	Phone2  string `json:"phone2"`
	Website string `json:"website"`

	// Logo and Signature are data URIs.
	Logo      string `json:"logo"`
	Signature string `json:"signature"`

	// DateIssued and Deadline are calendar dates, normally YYYY-MM-DD.
	DateIssued string `json:"dateIssued"`
	Deadline   string `json:"deadline"`

	OwnerName   string `json:"ownerName"`
	OwnerNumber string `json:"ownerNumber"`
}

// Batch is one admission cohort.
type Batch struct {
	ID             string   `json:"id"`
	AdmissionYear  Year     `json:"admissionYear" validate:"required"`
	AdmissionClass string   `json:"admissionClass" validate:"required"`
	Names          []string `json:"names" validate:"min=1,dive,required"`
}

// Year is an admission year. Older exports store it as a JSON number, newer
// ones as a string; both decode to the same value.
type Year string

func (y *Year) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*y = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*y = Year(s)
	default:
		f, err := strconv.ParseFloat(string(b), 64)
		if err != nil {
			return fmt.Errorf("admission year %s: %w", b, err)
		}
		*y = Year(strconv.FormatFloat(f, 'f', -1, 64))
	}
	return nil
}

func (y Year) String() string { return string(y) }

// Entry is one addressee derived from a batch. Entries are never stored.
type Entry struct {
	// Index is the entry's position in the flattened list.
	Index          int
	BatchID        string
	Name           string
	AdmissionYear  string
	AdmissionClass string
}
