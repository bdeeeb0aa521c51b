package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/eccowas/admitgen/internal/utils"
	"github.com/eccowas/admitgen/pkg/admission"
	"github.com/eccowas/admitgen/pkg/images"
	"github.com/eccowas/admitgen/pkg/letter"
)

const inputClass = "w-full border border-slate-300 rounded-lg px-3 py-2 focus:border-green-600"

func renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		utils.Log.Errorf("%s %s failed: %v", r.Method, r.URL.Path, err)
	}
	w.WriteHeader(status)
	PageLayout("Error - Admission Letters", r.URL.Path,
		Main(Class("container mx-auto mt-8 mb-16 p-4"), flash(err.Error())),
	).Render(w)
}

// --- Home ---

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Review.Load(r.Context())
	if err != nil {
		renderError(w, r, err)
		return
	}
	entries := admission.Flatten(snap.Batches)
	schoolName := letter.Defaults[letter.FieldSchoolName]
	if len(snap.Schools) > 0 {
		schoolName = letter.Or(letter.FieldSchoolName, snap.Schools[0].SchoolName)
	}

	stat := func(value int, label string) g.Node {
		return Div(Class("text-center px-6"),
			Div(Class("text-3xl font-extrabold text-green-800 tabular-nums"), g.Text(strconv.Itoa(value))),
			Div(Class("text-xs uppercase tracking-wider text-slate-500 mt-2"), g.Text(label)),
		)
	}

	PageLayout("Admission Letters", "/",
		Main(Class("container mx-auto mt-8 mb-16 p-4"),
			card(schoolName,
				P(Class("mb-6 text-slate-600"), g.Text("Enter the school details and the admitted students, then print one letter per student.")),
				Div(Class("flex flex-wrap justify-center gap-6 mb-6"),
					stat(len(snap.Schools), "School Profiles"),
					stat(len(snap.Batches), "Batches"),
					stat(len(entries), "Letters"),
				),
				Div(Class("flex flex-wrap gap-3"),
					linkButton("/school", "Add School"),
					linkButton("/student", "Add Students"),
					linkButton("/letters", "View Letters"),
					linkButton("/print", "Print All"),
				),
			),
		),
	).Render(w)
}

// --- School ---

func (s *Server) handleSchoolForm(w http.ResponseWriter, r *http.Request) {
	var profile admission.SchoolProfile
	if id := r.URL.Query().Get("id"); id != "" {
		ed, err := s.Review.EditSchool(r.Context(), id)
		if err != nil {
			renderError(w, r, err)
			return
		}
		profile = ed.Profile()
	}
	schoolPage(profile, "").Render(w)
}

func schoolPage(p admission.SchoolProfile, msg string) g.Node {
	title := "Add School"
	if p.ID != "" {
		title = "Edit School"
	}

	var fields []g.Node
	for _, f := range admission.SchoolFields {
		value, _ := p.Field(f.Name)
		fields = append(fields, schoolField(f, value))
	}

	return PageLayout(title+" - Admission Letters", "/school",
		Main(Class("container mx-auto mt-8 mb-16 p-4 max-w-3xl"),
			flash(msg),
			card(title,
				Form(Method("POST"), Action("/school"), g.Attr("enctype", "multipart/form-data"), g.Attr("novalidate", ""),
					Class("grid md:grid-cols-2 gap-4"),
					Input(Type("hidden"), Name("id"), Value(p.ID)),
					g.Group(fields),
					Div(Class("md:col-span-2"), button("Save School", Type("submit"))),
				),
			),
		),
	)
}

func schoolField(f admission.FieldSpec, value string) g.Node {
	id := "field-" + f.Name
	if f.Type != "image" {
		return Div(
			Label(For(id), Class("block text-sm font-medium text-slate-600 mb-1"), g.Text(f.Label)),
			Input(ID(id), Type(f.Type), Name(f.Name), Value(value), Class(inputClass)),
		)
	}
	return Div(
		Label(For(id), Class("block text-sm font-medium text-slate-600 mb-1"), g.Text(f.Label)),
		g.If(value != "", Img(Src(value), Alt(f.Label), Class("h-16 mb-2 object-contain"))),
		Input(Type("hidden"), Name(f.Name+"_current"), Value(value)),
		Input(ID(id), Type("file"), Name(f.Name), Accept("image/*"), Class(inputClass)),
		g.If(value != "", Label(Class("text-sm text-slate-500"),
			Input(Type("checkbox"), Name(f.Name+"_remove"), Value("1")), g.Text(" Remove"),
		)),
	)
}

// formImage returns the data URI for an image field: a fresh upload wins, then
// the value the form was rendered with.
func formImage(r *http.Request, name string) (string, error) {
	if r.FormValue(name+"_remove") != "" {
		return "", nil
	}
	file, _, err := r.FormFile(name)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return r.FormValue(name + "_current"), nil
	}
	if err != nil {
		return r.FormValue(name + "_current"), err
	}
	defer file.Close()
	uri, err := images.FromReader(file)
	if err != nil {
		return r.FormValue(name + "_current"), err
	}
	return uri, nil
}

func (s *Server) handleSchoolSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(2*images.MaxSize + 1<<20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ed := s.Review.NewSchool()
	if id := r.FormValue("id"); id != "" {
		var err error
		if ed, err = s.Review.EditSchool(r.Context(), id); err != nil {
			renderError(w, r, err)
			return
		}
	}

	var imageErrs []string
	for _, f := range admission.SchoolFields {
		if f.Type == "image" {
			uri, err := formImage(r, f.Name)
			if err != nil {
				imageErrs = append(imageErrs, fmt.Sprintf("%s: %v", f.Label, err))
			}
			ed.Set(f.Name, uri)
			continue
		}
		if _, ok := r.Form[f.Name]; ok {
			ed.Set(f.Name, r.FormValue(f.Name))
		}
	}

	var saved admission.SchoolProfile
	err := s.write(func() error {
		var err error
		saved, err = ed.Commit(r.Context())
		return err
	})
	if err != nil {
		if !admission.IsValidation(err) {
			renderError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusUnprocessableEntity)
		schoolPage(ed.Profile(), admission.Message(err)).Render(w)
		return
	}
	if len(imageErrs) > 0 {
		schoolPage(saved, "Saved, but some images could not be read. "+strings.Join(imageErrs, "; ")).Render(w)
		return
	}
	http.Redirect(w, r, "/review", http.StatusSeeOther)
}

// --- Students ---

func (s *Server) handleStudentForm(w http.ResponseWriter, r *http.Request) {
	var b admission.Batch
	if id := r.URL.Query().Get("id"); id != "" {
		ed, err := s.Review.EditBatch(r.Context(), id)
		if err != nil {
			renderError(w, r, err)
			return
		}
		b = ed.Batch()
	}
	msg := ""
	if n := r.URL.Query().Get("saved"); n != "" {
		msg = "Saved a batch of " + n + " names."
	}
	studentPage(b, msg, "").Render(w)
}

func studentPage(b admission.Batch, notice, errMsg string) g.Node {
	title := "Add Students"
	if b.ID != "" {
		title = "Edit Batch"
	}
	return PageLayout(title+" - Admission Letters", "/student",
		Main(Class("container mx-auto mt-8 mb-16 p-4 max-w-3xl"),
			flash(errMsg),
			g.If(notice != "", Div(Class("bg-green-50 border border-green-300 text-green-800 rounded-lg p-4 mb-6"), g.Text(notice))),
			card(title,
				Form(Method("POST"), Action("/student"), Class("grid gap-4"),
					Input(Type("hidden"), Name("id"), Value(b.ID)),
					Div(
						Label(For("admissionYear"), Class("block text-sm font-medium text-slate-600 mb-1"), g.Text("Admission Year")),
						Input(ID("admissionYear"), Type("text"), Name("admissionYear"), Value(b.AdmissionYear.String()), Placeholder("2023/2024"), Class(inputClass)),
					),
					Div(
						Label(For("admissionClass"), Class("block text-sm font-medium text-slate-600 mb-1"), g.Text("Admission Class")),
						Input(ID("admissionClass"), Type("text"), Name("admissionClass"), Value(b.AdmissionClass), Placeholder("JSS 1"), Class(inputClass)),
					),
					Div(
						Label(For("names"), Class("block text-sm font-medium text-slate-600 mb-1"), g.Text("Student Names (one per line)")),
						Textarea(ID("names"), Name("names"), g.Attr("rows", "10"), Class(inputClass), g.Text(strings.Join(b.Names, "\n"))),
					),
					Div(button("Save Batch", Type("submit"))),
				),
			),
		),
	)
}

func (s *Server) handleStudentSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	posted := admission.Batch{
		ID:             r.FormValue("id"),
		AdmissionYear:  admission.Year(r.FormValue("admissionYear")),
		AdmissionClass: r.FormValue("admissionClass"),
		Names:          strings.Split(r.FormValue("names"), "\n"),
	}
	ed := s.batchEditor(posted)

	var saved admission.Batch
	err := s.write(func() error {
		var err error
		saved, err = ed.Commit(r.Context())
		return err
	})
	if err != nil {
		if !admission.IsValidation(err) {
			renderError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusUnprocessableEntity)
		studentPage(ed.Batch(), "", admission.Message(err)).Render(w)
		return
	}
	if posted.ID != "" {
		http.Redirect(w, r, "/review", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/student?saved="+strconv.Itoa(len(saved.Names)), http.StatusSeeOther)
}

// --- Review ---

func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Review.Load(r.Context())
	if err != nil {
		renderError(w, r, err)
		return
	}

	deleteForm := func(action string) g.Node {
		return Form(Method("POST"), Action(action), Class("inline"),
			g.Attr("onsubmit", "return confirm('Delete this record? This cannot be undone.')"),
			Button(Type("submit"), Class("text-red-700 hover:underline"), g.Text("Delete")),
		)
	}

	var schoolRows []g.Node
	for i, sp := range snap.Schools {
		active := ""
		if i == 0 {
			active = " (used on letters)"
		}
		schoolRows = append(schoolRows, Tr(Class("border-t"),
			Td(Class("py-2 pr-4"), g.Text(letter.Or(letter.FieldSchoolName, sp.SchoolName)+active)),
			Td(Class("py-2 pr-4"), g.Text(sp.Email)),
			Td(Class("py-2 pr-4"), g.Text(letter.Phones(sp.Phone1, sp.Phone2))),
			Td(Class("py-2 space-x-3"),
				A(Href("/school?id="+sp.ID), Class("text-green-800 hover:underline"), g.Text("Edit")),
				deleteForm("/review/schools/"+sp.ID+"/delete"),
			),
		))
	}

	var batchRows []g.Node
	for _, b := range snap.Batches {
		batchRows = append(batchRows, Tr(Class("border-t align-top"),
			Td(Class("py-2 pr-4"), g.Text(b.AdmissionYear.String())),
			Td(Class("py-2 pr-4"), g.Text(b.AdmissionClass)),
			Td(Class("py-2 pr-4"), g.Text(strings.Join(b.Names, ", "))),
			Td(Class("py-2 space-x-3"),
				A(Href("/student?id="+b.ID), Class("text-green-800 hover:underline"), g.Text("Edit")),
				deleteForm("/review/batches/"+b.ID+"/delete"),
			),
		))
	}

	PageLayout("Review - Admission Letters", "/review",
		Main(Class("container mx-auto mt-8 mb-16 p-4"),
			card("School Profiles",
				g.If(len(schoolRows) == 0, P(Class("text-slate-500"), g.Text("No school saved yet. Letters use the default letterhead."))),
				g.If(len(schoolRows) > 0, Table(Class("w-full text-left text-sm"),
					THead(Tr(Th(g.Text("Name")), Th(g.Text("Email")), Th(g.Text("Phones")), Th())),
					TBody(g.Group(schoolRows)),
				)),
			),
			card("Student Batches",
				g.If(len(batchRows) == 0, P(Class("text-slate-500"), g.Text("No batches saved yet."))),
				g.If(len(batchRows) > 0, Table(Class("w-full text-left text-sm"),
					THead(Tr(Th(g.Text("Year")), Th(g.Text("Class")), Th(g.Text("Names")), Th())),
					TBody(g.Group(batchRows)),
				)),
			),
		),
	).Render(w)
}

func (s *Server) handleReviewDeleteSchool(w http.ResponseWriter, r *http.Request) {
	err := s.write(func() error {
		return s.Review.DeleteSchool(r.Context(), r.PathValue("id"))
	})
	if err != nil {
		renderError(w, r, err)
		return
	}
	http.Redirect(w, r, "/review", http.StatusSeeOther)
}

func (s *Server) handleReviewDeleteBatch(w http.ResponseWriter, r *http.Request) {
	err := s.write(func() error {
		return s.Review.DeleteBatch(r.Context(), r.PathValue("id"))
	})
	if err != nil {
		renderError(w, r, err)
		return
	}
	http.Redirect(w, r, "/review", http.StatusSeeOther)
}

// --- Letters ---

func (s *Server) handleLetters(w http.ResponseWriter, r *http.Request) {
	entries, err := admission.Entries(r.Context(), s.Repo)
	if err != nil {
		renderError(w, r, err)
		return
	}

	selected := -1
	q := r.URL.Query()
	if v := q.Get("entry"); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			renderError(w, r, admission.NewValidationError(errors.New("entry must be a number")))
			return
		}
		e, err := admission.EntryAt(entries, i)
		if err != nil {
			renderError(w, r, err)
			return
		}
		selected = e.Index
	} else if name := q.Get("name"); name != "" {
		e, err := admission.EntryByName(entries, name)
		if err != nil {
			renderError(w, r, err)
			return
		}
		selected = e.Index
	}

	var items []g.Node
	for _, e := range entries {
		cls := "block px-3 py-2 rounded-lg text-sm "
		if e.Index == selected {
			cls += "bg-green-800 text-white"
		} else {
			cls += "hover:bg-green-50"
		}
		items = append(items, Li(A(Href(fmt.Sprintf("/letters?entry=%d", e.Index)), Class(cls),
			g.Text(e.Name),
			Span(Class("block text-xs opacity-75"), g.Text(e.AdmissionClass+" • "+e.AdmissionYear)),
		)))
	}

	var preview g.Node
	switch {
	case len(entries) == 0:
		preview = P(Class("text-slate-500"), g.Text("No students yet. Add a batch first."))
	case selected < 0:
		preview = P(Class("text-slate-500"), g.Text("Select a student to preview their letter."))
	default:
		school, _, err := admission.ActiveSchool(r.Context(), s.Repo)
		if err != nil {
			renderError(w, r, err)
			return
		}
		l := letter.Compose(school, entries[selected], s.Now())
		lettersRendered.WithLabelValues("preview").Inc()
		preview = Div(
			Div(Class("no-print flex flex-wrap gap-3 mb-4"),
				linkButton(fmt.Sprintf("/letters/%d/download", selected), "Download"),
				linkButton(fmt.Sprintf("/letters/%d?print=1", selected), "Print"),
			),
			Div(Class("overflow-x-auto"), l.Node()),
		)
	}

	PageLayout("Letters - Admission Letters", "/letters",
		Main(Class("container mx-auto mt-8 mb-16 p-4 grid md:grid-cols-4 gap-6"),
			Aside(Class("no-print md:col-span-1 bg-white rounded-xl shadow p-4"),
				Div(Class("flex justify-between items-center mb-3"),
					H2(Class("font-semibold text-green-900"), g.Text("Students")),
					g.If(len(entries) > 0, A(Href("/print"), Class("text-sm text-green-800 hover:underline"), g.Text("Print all"))),
				),
				Ul(Class("space-y-1"), g.Group(items)),
			),
			Section(Class("md:col-span-3"), preview),
		),
	).Render(w)
}

func (s *Server) handleLetter(w http.ResponseWriter, r *http.Request) {
	l, err := s.letterAt(r, r.PathValue("index"))
	if err != nil {
		renderError(w, r, err)
		return
	}
	lettersRendered.WithLabelValues("html").Inc()
	letter.Document("Admission Letter - "+l.Entry.Name, g.Group([]g.Node{
		l.Node(),
		g.If(r.URL.Query().Get("print") != "", Script(g.Raw("window.print()"))),
	})).Render(w)
}

func (s *Server) handleLetterDownload(w http.ResponseWriter, r *http.Request) {
	l, err := s.letterAt(r, r.PathValue("index"))
	if err != nil {
		renderError(w, r, err)
		return
	}
	lettersRendered.WithLabelValues("download").Inc()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", letter.Filename(l)))
	if err := letter.Render(w, l); err != nil {
		utils.Log.Warnf("Failed to write letter download: %v", err)
	}
}

// handlePrint renders every letter in one document. ?format=text returns plain
// text with a form feed between letters.
func (s *Server) handlePrint(w http.ResponseWriter, r *http.Request) {
	entries, err := admission.Entries(r.Context(), s.Repo)
	if err != nil {
		renderError(w, r, err)
		return
	}
	school, _, err := admission.ActiveSchool(r.Context(), s.Repo)
	if err != nil {
		renderError(w, r, err)
		return
	}
	letters := letter.ComposeAll(school, entries, s.Now())

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		err = letter.WriteText(r.Context(), w, letters)
	} else {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		err = letter.Print(r.Context(), w, letters)
	}
	if err != nil {
		utils.Log.Warnf("Print job stopped: %v", err)
		return
	}
	lettersRendered.WithLabelValues("print").Add(float64(len(letters)))
}
