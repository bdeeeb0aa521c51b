package storage

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/eccowas/admitgen/pkg/admission"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.sqlite"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// putValue stores value verbatim, bypassing the list checks.
func putValue(t *testing.T, db *DB, key, value string) {
	t.Helper()
	if _, err := db.sql.Exec("INSERT INTO kv(key, value) VALUES(?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value", key, value); err != nil {
		t.Fatalf("insert: %v", err)
	}
}

func rawStrings(raws []json.RawMessage) []string {
	out := make([]string, 0, len(raws))
	for _, r := range raws {
		out = append(out, string(r))
	}
	return out
}

func TestReadAllMissingKey(t *testing.T) {
	db := openTestDB(t)
	got, err := db.ReadAll(context.Background(), "nothing")
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected an empty list, got %#v", got)
	}
}

func TestAppendKeepsOrder(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	for _, v := range []interface{}{map[string]int{"a": 1}, "two", 3} {
		if err := db.Append(ctx, "k", v); err != nil {
			t.Fatalf("Append(%v): %v", v, err)
		}
	}
	got, err := db.ReadAll(ctx, "k")
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	want := []string{`{"a":1}`, `"two"`, `3`}
	if !reflect.DeepEqual(rawStrings(got), want) {
		t.Fatalf("unexpected list.\nwant: %#v\ngot:  %#v", want, rawStrings(got))
	}
}

func TestReadAllCoercesStoredValues(t *testing.T) {
	cases := []struct {
		name  string
		value string
		want  []string
	}{
		{"object is wrapped", `{"a":1}`, []string{`{"a":1}`}},
		{"number is wrapped", `42`, []string{`42`}},
		{"invalid json", `{not json`, []string{}},
		{"null", `null`, []string{}},
		{"false", `false`, []string{}},
		{"zero", `0`, []string{}},
		{"empty string", `""`, []string{}},
		{"list", ` [1, 2] `, []string{`1`, `2`}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			db := openTestDB(t)
			putValue(t, db, "k", c.value)
			got, err := db.ReadAll(context.Background(), "k")
			if err != nil {
				t.Fatalf("ReadAll: %v", err)
			}
			if !reflect.DeepEqual(rawStrings(got), c.want) {
				t.Fatalf("unexpected list.\nwant: %#v\ngot:  %#v", c.want, rawStrings(got))
			}
		})
	}
}

func TestAppendOntoNonList(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	putValue(t, db, "k", `{"a":1}`)

	if err := db.Append(ctx, "k", 2); err != nil {
		t.Fatalf("Append: %v", err)
	}
	got, _ := db.ReadAll(ctx, "k")
	if want := []string{`{"a":1}`, `2`}; !reflect.DeepEqual(rawStrings(got), want) {
		t.Fatalf("unexpected list.\nwant: %#v\ngot:  %#v", want, rawStrings(got))
	}
}

func TestOverwriteRejectsNonList(t *testing.T) {
	db := openTestDB(t)
	if err := db.Overwrite(context.Background(), "k", map[string]int{"a": 1}); err == nil {
		t.Fatal("Overwrite accepted an object")
	}
	if err := db.Overwrite(context.Background(), "k", nil); err != nil {
		t.Fatalf("Overwrite(nil): %v", err)
	}
	got, _ := db.ReadAll(context.Background(), "k")
	if len(got) != 0 {
		t.Fatalf("expected an empty list, got %#v", rawStrings(got))
	}
}

func TestUpdateErrorWritesNothing(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	db.Append(ctx, "k", 1)

	boom := errors.New("boom")
	err := db.Update(ctx, "k", func(current []json.RawMessage) (interface{}, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Update error = %v, want boom", err)
	}
	got, _ := db.ReadAll(ctx, "k")
	if want := []string{`1`}; !reflect.DeepEqual(rawStrings(got), want) {
		t.Fatalf("value changed: %#v", rawStrings(got))
	}
}

func TestRemoveKeyAndClearAll(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	db.Append(ctx, SchoolKey, 1)
	db.Append(ctx, StudentKey, 2)

	if err := db.RemoveKey(ctx, SchoolKey); err != nil {
		t.Fatalf("RemoveKey: %v", err)
	}
	keys, _ := db.Keys(ctx)
	if !reflect.DeepEqual(keys, []string{StudentKey}) {
		t.Fatalf("keys after RemoveKey = %#v", keys)
	}

	if err := db.ClearAll(ctx); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	keys, _ = db.Keys(ctx)
	if len(keys) != 0 {
		t.Fatalf("keys after ClearAll = %#v", keys)
	}
}

func TestRepoBatches(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	a := admission.Batch{AdmissionYear: "2024", AdmissionClass: "JSS1", Names: []string{"Ada"}}
	b := admission.Batch{AdmissionYear: "2024", AdmissionClass: "JSS2", Names: []string{"Bola"}}
	if err := repo.AddBatch(ctx, &a); err != nil {
		t.Fatalf("AddBatch: %v", err)
	}
	if err := repo.AddBatch(ctx, &b); err != nil {
		t.Fatalf("AddBatch: %v", err)
	}
	if a.ID == "" || b.ID == "" || a.ID == b.ID {
		t.Fatalf("ids not assigned: %q %q", a.ID, b.ID)
	}

	a.Names = append(a.Names, "Chi")
	if err := repo.UpdateBatch(ctx, a); err != nil {
		t.Fatalf("UpdateBatch: %v", err)
	}
	got, err := repo.ListBatches(ctx)
	if err != nil {
		t.Fatalf("ListBatches: %v", err)
	}
	if !reflect.DeepEqual(got, []admission.Batch{a, b}) {
		t.Fatalf("unexpected batches.\nwant: %#v\ngot:  %#v", []admission.Batch{a, b}, got)
	}

	if err := repo.DeleteBatch(ctx, a.ID); err != nil {
		t.Fatalf("DeleteBatch: %v", err)
	}
	if err := repo.DeleteBatch(ctx, a.ID); !errors.Is(err, admission.ErrNotFound) {
		t.Fatalf("second DeleteBatch error = %v, want ErrNotFound", err)
	}
	if err := repo.UpdateBatch(ctx, a); !errors.Is(err, admission.ErrNotFound) {
		t.Fatalf("UpdateBatch of deleted batch error = %v, want ErrNotFound", err)
	}
	got, _ = repo.ListBatches(ctx)
	if len(got) != 1 || got[0].ID != b.ID {
		t.Fatalf("unexpected batches after delete: %#v", got)
	}
}

func TestListAssignsMissingIDsOnce(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()
	putValue(t, db, StudentKey, `[{"admissionYear":2024,"admissionClass":"JSS1","names":["Ada"]},"garbage",{"id":"keep","admissionYear":"2025","admissionClass":"SSS1","names":["Bola"]}]`)

	first, err := repo.ListBatches(ctx)
	if err != nil {
		t.Fatalf("ListBatches: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("expected the malformed record to be skipped, got %d batches", len(first))
	}
	if first[0].ID == "" || first[0].AdmissionYear != "2024" {
		t.Fatalf("unexpected first batch: %#v", first[0])
	}
	if first[1].ID != "keep" {
		t.Fatalf("existing id replaced: %q", first[1].ID)
	}

	second, _ := repo.ListBatches(ctx)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("ids not persisted.\nfirst:  %#v\nsecond: %#v", first, second)
	}

	// The listed id addresses the stored record.
	first[0].AdmissionClass = "JSS3"
	if err := repo.UpdateBatch(ctx, first[0]); err != nil {
		t.Fatalf("UpdateBatch: %v", err)
	}
}

func TestRepoSchools(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	s := admission.SchoolProfile{SchoolName: "Test College", Email: "office@test.edu"}
	if err := repo.AddSchool(ctx, &s); err != nil {
		t.Fatalf("AddSchool: %v", err)
	}
	raws, _ := db.ReadAll(ctx, SchoolKey)
	if len(raws) != 1 {
		t.Fatalf("expected one stored school, got %d", len(raws))
	}
	stored := gjson.ParseBytes(raws[0])
	if stored.Get("schoolName").String() != "Test College" || stored.Get("id").String() != s.ID {
		t.Fatalf("unexpected stored record: %s", raws[0])
	}

	active, ok, err := admission.ActiveSchool(ctx, repo)
	if err != nil || !ok || active != s {
		t.Fatalf("ActiveSchool = %#v, %v, %v", active, ok, err)
	}
}

func TestImportDump(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	// Browser storage holds every value as JSON text.
	dump := `{
		"schoolData": "[{\"schoolName\":\"Test College\"}]",
		"studentData": [{"admissionYear":"2024","admissionClass":"JSS1","names":["Ada","Bola"]}]
	}`
	counts, err := db.ImportDump(ctx, []byte(dump), false)
	if err != nil {
		t.Fatalf("ImportDump: %v", err)
	}
	if want := map[string]int{SchoolKey: 1, StudentKey: 1}; !reflect.DeepEqual(counts, want) {
		t.Fatalf("counts = %#v, want %#v", counts, want)
	}

	entries, err := admission.Entries(ctx, NewRepo(db))
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(entries) != 2 || entries[1].Name != "Bola" {
		t.Fatalf("unexpected entries: %#v", entries)
	}

	// Appending again doubles the batches; replacing resets them.
	db.ImportDump(ctx, []byte(dump), false)
	if stats, _ := db.GetStats(ctx); stats[1].Records != 2 {
		t.Fatalf("append import: %#v", stats)
	}
	db.ImportDump(ctx, []byte(dump), true)
	if stats, _ := db.GetStats(ctx); stats[1].Records != 1 {
		t.Fatalf("replace import: %#v", stats)
	}

	if _, err := db.ImportDump(ctx, []byte(`[1,2]`), false); err == nil {
		t.Fatal("ImportDump accepted a list")
	}
}

func TestImportSingleRecord(t *testing.T) {
	db := openTestDB(t)
	n, err := db.Import(context.Background(), SchoolKey, []byte(`{"schoolName":"Test College"}`), false)
	if err != nil || n != 1 {
		t.Fatalf("Import = %d, %v", n, err)
	}
	if _, err := db.Import(context.Background(), SchoolKey, []byte(`{oops`), false); err == nil {
		t.Fatal("Import accepted invalid JSON")
	}
}

func TestDumpRoundTrip(t *testing.T) {
	src := openTestDB(t)
	ctx := context.Background()
	repo := NewRepo(src)
	repo.AddSchool(ctx, &admission.SchoolProfile{SchoolName: "Test College"})
	repo.AddBatch(ctx, &admission.Batch{AdmissionYear: "2024", AdmissionClass: "JSS1", Names: []string{"Ada"}})

	dump, err := src.Dump(ctx)
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}

	dst := openTestDB(t)
	if _, err := dst.ImportDump(ctx, dump, true); err != nil {
		t.Fatalf("ImportDump: %v", err)
	}
	want, _ := admission.NewReview(repo, admission.RejectDuplicateRenames).Load(ctx)
	got, _ := admission.NewReview(NewRepo(dst), admission.RejectDuplicateRenames).Load(ctx)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip changed records.\nwant: %#v\ngot:  %#v", want, got)
	}
}

func TestGetStats(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	db.Append(ctx, SchoolKey, map[string]string{"schoolName": "x"})
	db.Append(ctx, StudentKey, 1)
	db.Append(ctx, StudentKey, 2)

	stats, err := db.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if len(stats) != 2 || stats[0].Key != SchoolKey || stats[0].Records != 1 || stats[1].Records != 2 {
		t.Fatalf("unexpected stats: %#v", stats)
	}
}

func TestOverwriteWithReadAllKeepsStoredValue(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	cases := []string{
		`[{"schoolName":"St. Ann & <Co>","motto":"Ìmọ̀ ni agbára"},3]`,
		`[{"schoolName":"St. Ann \u0026 \u003cCo\u003e","x":"é"},3]`,
		`[]`,
	}
	for _, stored := range cases {
		putValue(t, db, SchoolKey, stored)
		items, err := db.ReadAll(ctx, SchoolKey)
		if err != nil {
			t.Fatalf("ReadAll: %v", err)
		}
		if err := db.Overwrite(ctx, SchoolKey, items); err != nil {
			t.Fatalf("Overwrite: %v", err)
		}
		got, _, err := getRaw(ctx, db.sql, SchoolKey)
		if err != nil {
			t.Fatalf("getRaw: %v", err)
		}
		if got != stored {
			t.Fatalf("stored value changed.\nwant: %s\ngot:  %s", stored, got)
		}
	}
}

func TestImportDumpIsAllOrNothing(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	dump := `{
		"schoolData": [{"schoolName":"Test College"}],
		"studentData": "not json"
	}`
	if _, err := db.ImportDump(ctx, []byte(dump), false); err == nil {
		t.Fatal("ImportDump accepted a key that is not JSON")
	}
	keys, err := db.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	if len(keys) != 0 {
		t.Fatalf("keys after failed import = %#v, want none", keys)
	}
}
