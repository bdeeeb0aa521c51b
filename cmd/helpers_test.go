package cmd

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/eccowas/admitgen/pkg/admission"
)

func TestKebab(t *testing.T) {
	cases := map[string]string{
		"schoolName":          "school-name",
		"headquartersAddress": "headquarters-address",
		"phone1":              "phone1",
		"email":               "email",
	}
	for in, want := range cases {
		if got := kebab(in); got != want {
			t.Fatalf("kebab(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseRename(t *testing.T) {
	i, name, err := parseRename("2=Ada Obi")
	if err != nil || i != 2 || name != "Ada Obi" {
		t.Fatalf("parseRename = %d, %q, %v", i, name, err)
	}
	// Only the first '=' splits.
	if _, name, _ := parseRename("0=a=b"); name != "a=b" {
		t.Fatalf("name = %q, want %q", name, "a=b")
	}
	for _, bad := range []string{"Ada", "x=Ada"} {
		if _, _, err := parseRename(bad); err == nil {
			t.Fatalf("parseRename(%q) accepted", bad)
		}
	}
}

func TestPickEntry(t *testing.T) {
	entries := admission.Flatten([]admission.Batch{
		{AdmissionYear: "2024", AdmissionClass: "JSS1", Names: []string{"Ada", "Bola"}},
		{AdmissionYear: "2024", AdmissionClass: "SS1", Names: []string{"Bola"}},
	})

	e, err := pickEntry(entries, "2")
	if err != nil || e.AdmissionClass != "SS1" {
		t.Fatalf("pickEntry by position = %#v, %v", e, err)
	}
	e, err = pickEntry(entries, "Bola")
	if err != nil || e.Index != 1 {
		t.Fatalf("pickEntry by name = %#v, %v", e, err)
	}
	if _, err := pickEntry(entries, "9"); !errors.Is(err, admission.ErrNotFound) {
		t.Fatalf("out of range error = %v", err)
	}
	if _, err := pickEntry(entries, "Chidi"); !errors.Is(err, admission.ErrNotFound) {
		t.Fatalf("unknown name error = %v", err)
	}
}

func TestPickBatch(t *testing.T) {
	batches := []admission.Batch{{ID: "a"}, {ID: "b"}}
	if b, err := pickBatch(batches, "b"); err != nil || b.ID != "b" {
		t.Fatalf("by id = %#v, %v", b, err)
	}
	if b, err := pickBatch(batches, "0"); err != nil || b.ID != "a" {
		t.Fatalf("by position = %#v, %v", b, err)
	}
	if _, err := pickBatch(batches, "-1"); !errors.Is(err, admission.ErrNotFound) {
		t.Fatalf("negative position error = %v", err)
	}
}

func TestReadNames(t *testing.T) {
	got, err := readNames(strings.NewReader("Ada\n  Bola \n\nChidi"))
	if err != nil {
		t.Fatalf("readNames: %v", err)
	}
	expect := []string{"Ada", "  Bola ", "", "Chidi"}
	if !reflect.DeepEqual(got, expect) {
		t.Fatalf("unexpected names.\nwant: %#v\ngot:  %#v", expect, got)
	}
}

func TestRemovalOrder(t *testing.T) {
	got := removalOrder([]int{1, 3, 1, 0, 3})
	expect := []int{3, 1, 0}
	if !reflect.DeepEqual(got, expect) {
		t.Fatalf("unexpected order.\nwant: %#v\ngot:  %#v", expect, got)
	}

	ed := admission.NewEditor(nil, admission.RejectDuplicateRenames)
	for _, n := range []string{"Ada", "Bola", "Chidi"} {
		ed.AddName(n)
	}
	for _, i := range removalOrder([]int{1, 1}) {
		if err := ed.RemoveName(i); err != nil {
			t.Fatalf("RemoveName(%d): %v", i, err)
		}
	}
	if names := ed.Names(); !reflect.DeepEqual(names, []string{"Ada", "Chidi"}) {
		t.Fatalf("names after removing position 1 twice = %#v", names)
	}
	if got := removalOrder(nil); len(got) != 0 {
		t.Fatalf("removalOrder(nil) = %#v", got)
	}
}
