// Package letter composes provisional admission letters from a school profile
// and an entry, and renders them as printable HTML or plain text.
package letter

import (
	"fmt"
	"strings"
	"time"

	"github.com/eccowas/admitgen/pkg/admission"
)

const (
	Accreditation        = "(WAEC, NECO, JAMB APPROVED)"
	Heading              = "OFFER OF PROVISIONAL ADMISSION"
	SignatureLabel       = "Registrar"
	SignaturePlaceholder = "__________________"
)

// Letterhead is the resolved header block.
type Letterhead struct {
	Logo         string
	SchoolName   string
	Motto        string
	Headquarters string
	Annex        string
	Phones       string
	Email        string
	Website      string
}

// TextSpan is a run of paragraph text, optionally bold.
type TextSpan struct {
	Text   string
	Strong bool
}

type Paragraph struct {
	Spans []TextSpan
}

func (p Paragraph) String() string {
	var b strings.Builder
	for _, sp := range p.Spans {
		b.WriteString(sp.Text)
	}
	return b.String()
}

// Letter is one fully resolved document. Every field is final; renderers do no
// further lookups.
type Letter struct {
	Entry      admission.Entry
	Letterhead Letterhead
	IssueDate  string
	Salutation string
	Heading    string
	Paragraphs []Paragraph

	// Signature is a data URI. Empty means the placeholder line is printed.
	Signature string
}

// Compose builds the letter for entry. An unset or unreadable issue date uses
// now; an unset or unreadable deadline uses the default deadline.
func Compose(school admission.SchoolProfile, entry admission.Entry, now time.Time) Letter {
	issued := now
	if t, ok := ParseDate(school.DateIssued); ok {
		issued = t
	}
	deadline := Defaults[FieldDeadline]
	if t, ok := ParseDate(school.Deadline); ok {
		deadline = FormatWeekday(t)
	}
	class := Or(FieldAdmissionClass, entry.AdmissionClass)
	year := Or(FieldAdmissionYear, entry.AdmissionYear)

	return Letter{
		Entry: entry,
		Letterhead: Letterhead{
			Logo:         school.Logo,
			SchoolName:   strings.ToUpper(Or(FieldSchoolName, school.SchoolName)),
			Motto:        Or(FieldMotto, school.Motto),
			Headquarters: Or(FieldHeadquarters, school.HeadquartersAddress),
			Annex:        Or(FieldAnnex, school.AnnexAddress),
			Phones:       Phones(school.Phone1, school.Phone2),
			Email:        Or(FieldEmail, school.Email),
			Website:      DisplayWebsite(Or(FieldWebsite, school.Website)),
		},
		IssueDate:  FormatOrdinal(issued),
		Salutation: fmt.Sprintf("Dear %s,", entry.Name),
		Heading:    Heading,
		Paragraphs: body(class, year, deadline),
		Signature:  school.Signature,
	}
}

// ComposeAll builds one letter per entry, in entry order.
func ComposeAll(school admission.SchoolProfile, entries []admission.Entry, now time.Time) []Letter {
	out := make([]Letter, 0, len(entries))
	for _, e := range entries {
		out = append(out, Compose(school, e, now))
	}
	return out
}

func body(class, year, deadline string) []Paragraph {
	return []Paragraph{
		{Spans: []TextSpan{
			{Text: "Sequel to the entrance examination you wrote in this school, I am directed to inform you that you have been offered a provisional admission into "},
			{Text: class, Strong: true},
			{Text: " for the "},
			{Text: year, Strong: true},
			{Text: " academic session."},
		}},
		{Spans: []TextSpan{
			{Text: "You are expected to demonstrate a high sense of discipline and sterling qualities while you make obedience to rules, hard and independent work your watchwords."},
		}},
		{Spans: []TextSpan{
			{Text: "To secure this admission, you are to pay 100% of the total fees on or before "},
			{Text: deadline, Strong: true},
			{Text: " to enhance the completion of all the registration formalities."},
		}},
		{Spans: []TextSpan{
			{Text: "All relevant fees are to be paid into bank using an attached teller and the copy brought to school in exchange for school receipt."},
		}},
		{Spans: []TextSpan{
			{Text: "Congratulations on your brilliant performance as I wish you a happy stay in ECCOWAS academic community."},
		}},
	}
}
