package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/eccowas/admitgen/internal/utils"
	"github.com/eccowas/admitgen/pkg/admission"
	"github.com/eccowas/admitgen/pkg/letter"
)

type errorResponse struct {
	Error  string                 `json:"error"`
	Fields []admission.FieldError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		utils.Log.Warnf("Failed to encode response: %v", err)
	}
}

// statusFor maps domain errors to HTTP statuses.
func statusFor(err error) int {
	var ve *admission.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusUnprocessableEntity
	case errors.Is(err, admission.ErrNotFound), errors.Is(err, admission.ErrNoSuchName):
		return http.StatusNotFound
	case errors.Is(err, admission.ErrDuplicateName):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: err.Error()}
	var ve *admission.ValidationError
	if errors.As(err, &ve) {
		resp.Fields = ve.Fields
	}
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		utils.Log.Errorf("Request failed: %v", err)
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.DB.GetStats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Review.Load(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleImport loads a browser storage dump. ?replace=true overwrites the
// keys it names instead of appending.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	replace := r.URL.Query().Get("replace") == "true"

	var counts map[string]int
	err = s.write(func() error {
		var err error
		counts, err = s.DB.ImportDump(r.Context(), body, replace)
		return err
	})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

func (s *Server) handleListSchools(w http.ResponseWriter, r *http.Request) {
	schools, err := s.Repo.ListSchools(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, schools)
}

func (s *Server) handleCreateSchool(w http.ResponseWriter, r *http.Request) {
	var p admission.SchoolProfile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	p.ID = ""

	var saved admission.SchoolProfile
	err := s.write(func() error {
		var err error
		saved, err = admission.EditSchool(s.Repo, p).Commit(r.Context())
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleUpdateSchool(w http.ResponseWriter, r *http.Request) {
	var p admission.SchoolProfile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	p.ID = r.PathValue("id")

	var saved admission.SchoolProfile
	err := s.write(func() error {
		var err error
		saved, err = admission.EditSchool(s.Repo, p).Commit(r.Context())
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteSchool(w http.ResponseWriter, r *http.Request) {
	err := s.write(func() error {
		return s.Review.DeleteSchool(r.Context(), r.PathValue("id"))
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListBatches(w http.ResponseWriter, r *http.Request) {
	batches, err := s.Repo.ListBatches(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, batches)
}

// batchEditor loads the posted batch into an editor so names are trimmed and
// deduplicated the same way as in the forms.
func (s *Server) batchEditor(b admission.Batch) *admission.Editor {
	ed := admission.EditBatch(s.Repo, s.Policy, admission.Batch{
		ID:             b.ID,
		AdmissionYear:  b.AdmissionYear,
		AdmissionClass: b.AdmissionClass,
	})
	for _, n := range b.Names {
		ed.AddName(n)
	}
	return ed
}

func (s *Server) handleCreateBatch(w http.ResponseWriter, r *http.Request) {
	var b admission.Batch
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	b.ID = ""

	var saved admission.Batch
	err := s.write(func() error {
		var err error
		saved, err = s.batchEditor(b).Commit(r.Context())
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleUpdateBatch(w http.ResponseWriter, r *http.Request) {
	var b admission.Batch
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	b.ID = r.PathValue("id")

	var saved admission.Batch
	err := s.write(func() error {
		var err error
		saved, err = s.batchEditor(b).Commit(r.Context())
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteBatch(w http.ResponseWriter, r *http.Request) {
	err := s.write(func() error {
		return s.Review.DeleteBatch(r.Context(), r.PathValue("id"))
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := admission.Entries(r.Context(), s.Repo)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

type letterResponse struct {
	Entry    admission.Entry `json:"entry"`
	Filename string          `json:"filename"`
	Text     string          `json:"text"`
}

func (s *Server) handleLetterJSON(w http.ResponseWriter, r *http.Request) {
	l, err := s.letterAt(r, r.PathValue("index"))
	if err != nil {
		writeError(w, err)
		return
	}
	text, err := letter.Text(l)
	if err != nil {
		writeError(w, err)
		return
	}
	lettersRendered.WithLabelValues("json").Inc()
	writeJSON(w, http.StatusOK, letterResponse{Entry: l.Entry, Filename: letter.Filename(l), Text: text})
}

// letterAt composes the letter for the entry at a path index.
func (s *Server) letterAt(r *http.Request, index string) (letter.Letter, error) {
	i, err := strconv.Atoi(index)
	if err != nil {
		return letter.Letter{}, admission.NewValidationError(errors.New("entry index must be a number"),
			admission.FieldError{Field: "index", Error: "number"})
	}
	entries, err := admission.Entries(r.Context(), s.Repo)
	if err != nil {
		return letter.Letter{}, err
	}
	e, err := admission.EntryAt(entries, i)
	if err != nil {
		return letter.Letter{}, err
	}
	school, _, err := admission.ActiveSchool(r.Context(), s.Repo)
	if err != nil {
		return letter.Letter{}, err
	}
	return letter.Compose(school, e, s.Now()), nil
}
