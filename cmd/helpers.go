package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/spf13/viper"

	"github.com/eccowas/admitgen/internal/utils"
	"github.com/eccowas/admitgen/pkg/admission"
	"github.com/eccowas/admitgen/pkg/storage"
)

func dbPathFromConfig() (string, error) {
	return utils.GetAbsDBPath(viper.GetString("db.path"))
}

func openDB() (*storage.DB, error) {
	path, err := dbPathFromConfig()
	if err != nil {
		return nil, err
	}
	db, err := storage.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	return db, nil
}

// withWriteLock opens the database with the file lock held for the whole run.
func withWriteLock(fn func(db *storage.DB) error) error {
	path, err := dbPathFromConfig()
	if err != nil {
		return err
	}
	lock, err := utils.NewDBLock(path)
	if err != nil {
		return err
	}
	if err := lock.Lock(); err != nil {
		return err
	}
	defer lock.Unlock()

	db, err := storage.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open database %s: %w", path, err)
	}
	defer db.Close()
	return fn(db)
}

func renamePolicy() (admission.RenamePolicy, error) {
	return admission.ParseRenamePolicy(viper.GetString("editor.rename_duplicates"))
}

// kebab turns a JSON field name into its flag name: schoolName -> school-name.
func kebab(name string) string {
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// pickSchool finds a profile by id or by its 0-based position.
func pickSchool(schools []admission.SchoolProfile, ref string) (admission.SchoolProfile, error) {
	for _, s := range schools {
		if s.ID == ref {
			return s, nil
		}
	}
	if i, err := strconv.Atoi(ref); err == nil && i >= 0 && i < len(schools) {
		return schools[i], nil
	}
	return admission.SchoolProfile{}, fmt.Errorf("%w: school %s", admission.ErrNotFound, ref)
}

// pickBatch finds a batch by id or by its 0-based position.
func pickBatch(batches []admission.Batch, ref string) (admission.Batch, error) {
	for _, b := range batches {
		if b.ID == ref {
			return b, nil
		}
	}
	if i, err := strconv.Atoi(ref); err == nil && i >= 0 && i < len(batches) {
		return batches[i], nil
	}
	return admission.Batch{}, fmt.Errorf("%w: batch %s", admission.ErrNotFound, ref)
}

// pickEntry selects an entry by position, falling back to the first exact name
// match.
func pickEntry(entries []admission.Entry, ref string) (admission.Entry, error) {
	if i, err := strconv.Atoi(ref); err == nil {
		return admission.EntryAt(entries, i)
	}
	return admission.EntryByName(entries, ref)
}

// parseRename reads "INDEX=NAME".
func parseRename(s string) (int, string, error) {
	idx, name, ok := strings.Cut(s, "=")
	if !ok {
		return 0, "", fmt.Errorf("rename %q must look like INDEX=NAME", s)
	}
	i, err := strconv.Atoi(strings.TrimSpace(idx))
	if err != nil {
		return 0, "", fmt.Errorf("rename %q: index must be a number", s)
	}
	return i, name, nil
}

func printValidation(err error) {
	var ve *admission.ValidationError
	if !errors.As(err, &ve) {
		return
	}
	utils.Log.Error(admission.Message(err))
	for _, f := range ve.Fields {
		utils.Log.Errorf("  %s: %s", f.Field, f.Error)
	}
}
