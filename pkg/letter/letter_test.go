package letter

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/eccowas/admitgen/pkg/admission"
)

var fixedNow = time.Date(2024, time.January, 22, 9, 30, 0, 0, time.UTC)

func TestOrdinalSuffix(t *testing.T) {
	cases := map[int]string{
		1: "st", 2: "nd", 3: "rd", 4: "th",
		11: "th", 12: "th", 13: "th",
		21: "st", 22: "nd", 23: "rd", 24: "th",
		30: "th", 31: "st",
	}
	for day, want := range cases {
		if got := OrdinalSuffix(day); got != want {
			t.Fatalf("OrdinalSuffix(%d) = %q, want %q", day, got, want)
		}
	}
}

func TestDateFormats(t *testing.T) {
	d := time.Date(2024, time.February, 5, 0, 0, 0, 0, time.UTC)
	if got, want := FormatOrdinal(d), "5th of February 2024"; got != want {
		t.Fatalf("FormatOrdinal = %q, want %q", got, want)
	}
	if got, want := FormatWeekday(d), "Monday the 5th of February 2024"; got != want {
		t.Fatalf("FormatWeekday = %q, want %q", got, want)
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in string
		ok bool
		y  int
		m  time.Month
		d  int
	}{
		{"2024-02-05", true, 2024, time.February, 5},
		{"2024-03-01T10:00:00Z", true, 2024, time.March, 1},
		{" 2024-12-31 ", true, 2024, time.December, 31},
		{"", false, 0, 0, 0},
		{"next week", false, 0, 0, 0},
	}
	for _, c := range cases {
		got, ok := ParseDate(c.in)
		if ok != c.ok {
			t.Fatalf("ParseDate(%q) ok = %v, want %v", c.in, ok, c.ok)
		}
		if ok && (got.Year() != c.y || got.Month() != c.m || got.Day() != c.d) {
			t.Fatalf("ParseDate(%q) = %v", c.in, got)
		}
	}
}

func TestPhones(t *testing.T) {
	cases := []struct{ p1, p2, want string }{
		{"0801", "0802", "0801, 0802"},
		{"0801", "", "0801"},
		{"", "0802", Defaults[FieldPhones]},
		{"", "", Defaults[FieldPhones]},
	}
	for _, c := range cases {
		if got := Phones(c.p1, c.p2); got != c.want {
			t.Fatalf("Phones(%q, %q) = %q, want %q", c.p1, c.p2, got, c.want)
		}
	}
}

func TestDisplayWebsite(t *testing.T) {
	cases := map[string]string{
		"https://www.eccowascollege.com/": "www.eccowascollege.com",
		"www.eccowascollege.com":          "www.eccowascollege.com",
		"http://school.edu.ng/admissions": "school.edu.ng/admissions",
		"our website":                     "our website",
		"":                                "",
	}
	for in, want := range cases {
		if got := DisplayWebsite(in); got != want {
			t.Fatalf("DisplayWebsite(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestComposeWithoutSchoolUsesDefaults(t *testing.T) {
	entry := admission.Entry{Name: "Ada", AdmissionYear: "2024", AdmissionClass: "JSS1"}
	l := Compose(admission.SchoolProfile{}, entry, fixedNow)

	want := Letterhead{
		SchoolName:   "ECCOWAS (COSMOPOLITAN) COLLEGE",
		Motto:        "Omo wa labake",
		Headquarters: Defaults[FieldHeadquarters],
		Annex:        Defaults[FieldAnnex],
		Phones:       "08033774645, 08051667070",
		Email:        "eccolabschools@gmail.com",
		Website:      "www.eccowascollege.com",
	}
	if l.Letterhead != want {
		t.Fatalf("unexpected letterhead.\nwant: %#v\ngot:  %#v", want, l.Letterhead)
	}
	if l.Salutation != "Dear Ada," {
		t.Fatalf("salutation = %q", l.Salutation)
	}
	if l.IssueDate != "22nd of January 2024" {
		t.Fatalf("issue date = %q, want today", l.IssueDate)
	}
	if len(l.Paragraphs) != 5 {
		t.Fatalf("got %d paragraphs, want 5", len(l.Paragraphs))
	}
	first := l.Paragraphs[0].String()
	if !strings.Contains(first, "provisional admission into JSS1 for the 2024 academic session.") {
		t.Fatalf("first paragraph = %q", first)
	}
	third := l.Paragraphs[2].String()
	if !strings.Contains(third, "on or before Monday the 5th of February 2024 to enhance") {
		t.Fatalf("third paragraph = %q", third)
	}
	if l.Signature != "" {
		t.Fatalf("signature = %q, want placeholder", l.Signature)
	}
}

func TestComposeUsesSchoolValues(t *testing.T) {
	school := admission.SchoolProfile{
		SchoolName: "Test College",
		Phone1:     "0801",
		Phone2:     "0802",
		DateIssued: "2024-03-01",
		Deadline:   "2024-04-01",
		Signature:  "data:image/png;base64,AAAA",
	}
	l := Compose(school, admission.Entry{Name: "Bola"}, fixedNow)

	if l.Letterhead.SchoolName != "TEST COLLEGE" || l.Letterhead.Motto != Defaults[FieldMotto] {
		t.Fatalf("fields did not fall back independently: %#v", l.Letterhead)
	}
	if l.Letterhead.Phones != "0801, 0802" {
		t.Fatalf("phones = %q", l.Letterhead.Phones)
	}
	if l.IssueDate != "1st of March 2024" {
		t.Fatalf("issue date = %q", l.IssueDate)
	}
	if !strings.Contains(l.Paragraphs[2].String(), "Monday the 1st of April 2024") {
		t.Fatalf("deadline not used: %q", l.Paragraphs[2].String())
	}
	// Missing class and year fall back too.
	if !strings.Contains(l.Paragraphs[0].String(), "into S.S.S 1 for the 2023/2024 academic session") {
		t.Fatalf("class/year defaults not used: %q", l.Paragraphs[0].String())
	}
}

func TestComposeBadDatesFallBack(t *testing.T) {
	l := Compose(admission.SchoolProfile{DateIssued: "soon", Deadline: "later"}, admission.Entry{Name: "Ada"}, fixedNow)
	if l.IssueDate != FormatOrdinal(fixedNow) {
		t.Fatalf("issue date = %q", l.IssueDate)
	}
	if !strings.Contains(l.Paragraphs[2].String(), Defaults[FieldDeadline]) {
		t.Fatalf("deadline did not fall back: %q", l.Paragraphs[2].String())
	}
}

func TestLetterNode(t *testing.T) {
	l := Compose(admission.SchoolProfile{}, admission.Entry{Name: "Ada", AdmissionYear: "2024", AdmissionClass: "JSS1"}, fixedNow)

	var buf bytes.Buffer
	if err := Render(&buf, l); err != nil {
		t.Fatalf("Render: %v", err)
	}
	doc, err := goquery.NewDocumentFromReader(&buf)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if got := doc.Find(".letter-container").Length(); got != 1 {
		t.Fatalf("got %d sheets, want 1", got)
	}
	if got := doc.Find(".school-name").Text(); got != Defaults[FieldSchoolName] {
		t.Fatalf("school name = %q", got)
	}
	if got := doc.Find(".letter-heading").Text(); got != Heading {
		t.Fatalf("heading = %q", got)
	}
	var bold []string
	doc.Find(".letter-paragraph strong").Each(func(_ int, s *goquery.Selection) {
		bold = append(bold, s.Text())
	})
	if strings.Join(bold, "|") != "JSS1|2024|"+Defaults[FieldDeadline] {
		t.Fatalf("bold spans = %#v", bold)
	}
	if doc.Find("img").Length() != 0 {
		t.Fatal("rendered an image without a logo or signature")
	}
	if got := doc.Find(".signature").Text(); !strings.Contains(got, SignaturePlaceholder) || !strings.Contains(got, SignatureLabel) {
		t.Fatalf("signature block = %q", got)
	}
	if style := doc.Find("style").Text(); !strings.Contains(style, "@page { size: A4; margin: 0 }") {
		t.Fatal("stylesheet missing the A4 page rule")
	}
}

func TestPrintBulk(t *testing.T) {
	entries := admission.Flatten([]admission.Batch{
		{AdmissionYear: "2024", AdmissionClass: "JSS1", Names: []string{"Ada", "Bola"}},
	})
	letters := ComposeAll(admission.SchoolProfile{}, entries, fixedNow)

	var buf bytes.Buffer
	if err := Print(context.Background(), &buf, letters); err != nil {
		t.Fatalf("Print: %v", err)
	}
	doc, err := goquery.NewDocumentFromReader(&buf)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var salutations []string
	doc.Find(".letter-container .salutation").Each(func(_ int, s *goquery.Selection) {
		salutations = append(salutations, s.Text())
	})
	if strings.Join(salutations, "|") != "Dear Ada,|Dear Bola," {
		t.Fatalf("salutations = %#v", salutations)
	}
}

func TestPrintStopsWhenCancelled(t *testing.T) {
	letters := ComposeAll(admission.SchoolProfile{}, []admission.Entry{{Name: "Ada"}, {Name: "Bola"}}, fixedNow)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	err := Print(ctx, &buf, letters)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Print error = %v, want context.Canceled", err)
	}
	if strings.Contains(buf.String(), "Dear Ada,") {
		t.Fatal("letters were written after cancellation")
	}
}

func TestText(t *testing.T) {
	l := Compose(admission.SchoolProfile{}, admission.Entry{Name: "Ada", AdmissionYear: "2024", AdmissionClass: "JSS1"}, fixedNow)
	got, err := Text(l)
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(got), "\n")

	wantStart := []string{
		"ECCOWAS (COSMOPOLITAN) COLLEGE",
		"Motto: Omo wa labake",
		"(WAEC, NECO, JAMB APPROVED)",
		"HEADQUARTERS: " + Defaults[FieldHeadquarters],
		"ANNEX: " + Defaults[FieldAnnex],
		"Tel: 08033774645, 08051667070 • e-mail: eccolabschools@gmail.com",
		"www.eccowascollege.com",
		"22nd of January 2024",
		"Dear Ada,",
		"OFFER OF PROVISIONAL ADMISSION",
	}
	if len(lines) < len(wantStart) {
		t.Fatalf("too few lines: %#v", lines)
	}
	for i, want := range wantStart {
		if lines[i] != want {
			t.Fatalf("line %d = %q, want %q", i, lines[i], want)
		}
	}
	tail := strings.Join(lines[len(lines)-2:], "|")
	if tail != SignatureLabel+"|"+SignaturePlaceholder {
		t.Fatalf("signature lines = %q", tail)
	}
}

func TestTextHeaderUsesSchoolValues(t *testing.T) {
	school := admission.SchoolProfile{
		SchoolName: "Ridgeway College",
		Motto:      "Learn",
		Signature:  "data:image/png;base64,AAAA",
	}
	got, err := Text(Compose(school, admission.Entry{Name: "Ada"}, fixedNow))
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(got), "\n")

	expect := []string{"RIDGEWAY COLLEGE", "Motto: Learn", Accreditation}
	if !reflect.DeepEqual(lines[:3], expect) {
		t.Fatalf("unexpected header.\nwant: %#v\ngot:  %#v", expect, lines[:3])
	}
	tail := strings.Join(lines[len(lines)-2:], "|")
	if tail != SignatureLabel+"|[Signature]" {
		t.Fatalf("signature lines = %q", tail)
	}
}

func TestWriteTextSeparatesLetters(t *testing.T) {
	letters := ComposeAll(admission.SchoolProfile{}, []admission.Entry{{Name: "Ada"}, {Name: "Bola"}}, fixedNow)
	var buf bytes.Buffer
	if err := WriteText(context.Background(), &buf, letters); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	if got := strings.Count(buf.String(), PageBreak); got != 1 {
		t.Fatalf("got %d page breaks, want 1", got)
	}
}

func TestFilename(t *testing.T) {
	cases := map[string]string{
		"Ada Obi":   "admission-letter-ada-obi.html",
		"  O'Neil ": "admission-letter-o-neil.html",
		"???":       "admission-letter-student.html",
	}
	for name, want := range cases {
		if got := Filename(Letter{Entry: admission.Entry{Name: name}}); got != want {
			t.Fatalf("Filename(%q) = %q, want %q", name, got, want)
		}
	}
}
