package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/eccowas/admitgen/internal/utils"
	"github.com/eccowas/admitgen/pkg/admission"
	"github.com/eccowas/admitgen/pkg/storage"
)

type Server struct {
	DB       *storage.DB
	Repo     admission.Repository
	Review   *admission.Review
	Policy   admission.RenamePolicy
	Username string
	Password string

	// Lock, when set, is held across each write so CLI runs against the same
	// database wait for the server.
	Lock *utils.DBLock

	// Now stamps letters whose issue date is unset.
	Now func() time.Time

	// mu serialises writes coming from concurrent requests.
	mu sync.Mutex
}

func New(db *storage.DB, policy admission.RenamePolicy, user, pass string) *Server {
	repo := storage.NewRepo(db)
	return &Server{
		DB:       db,
		Repo:     repo,
		Review:   admission.NewReview(repo, policy),
		Policy:   policy,
		Username: user,
		Password: pass,
		Now:      time.Now,
	}
}

// Handler returns the full route table wrapped in logging and basic auth.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Pages
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /school", s.handleSchoolForm)
	mux.HandleFunc("POST /school", s.handleSchoolSubmit)
	mux.HandleFunc("GET /student", s.handleStudentForm)
	mux.HandleFunc("POST /student", s.handleStudentSubmit)
	mux.HandleFunc("GET /review", s.handleReview)
	mux.HandleFunc("POST /review/schools/{id}/delete", s.handleReviewDeleteSchool)
	mux.HandleFunc("POST /review/batches/{id}/delete", s.handleReviewDeleteBatch)
	mux.HandleFunc("GET /letters", s.handleLetters)
	mux.HandleFunc("GET /letters/{index}", s.handleLetter)
	mux.HandleFunc("GET /letters/{index}/download", s.handleLetterDownload)
	mux.HandleFunc("GET /print", s.handlePrint)
	mux.HandleFunc("GET /help", s.handleHelp)

	// API Group
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/snapshot", s.handleSnapshot)
	mux.HandleFunc("POST /api/import", s.handleImport)
	mux.HandleFunc("GET /api/schools", s.handleListSchools)
	mux.HandleFunc("POST /api/schools", s.handleCreateSchool)
	mux.HandleFunc("PUT /api/schools/{id}", s.handleUpdateSchool)
	mux.HandleFunc("DELETE /api/schools/{id}", s.handleDeleteSchool)
	mux.HandleFunc("GET /api/batches", s.handleListBatches)
	mux.HandleFunc("POST /api/batches", s.handleCreateBatch)
	mux.HandleFunc("PUT /api/batches/{id}", s.handleUpdateBatch)
	mux.HandleFunc("DELETE /api/batches/{id}", s.handleDeleteBatch)
	mux.HandleFunc("GET /api/entries", s.handleEntries)
	mux.HandleFunc("GET /api/letters/{index}", s.handleLetterJSON)

	mux.Handle("GET /metrics", promhttp.Handler())

	return s.logRequests(s.basicAuth(mux))
}

func (s *Server) Start(addr string) error {
	utils.Log.Infof("Starting server on %s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) basicAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.Username == "" && s.Password == "" {
			next.ServeHTTP(w, r)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != s.Username || pass != s.Password {
			w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		requestsTotal.WithLabelValues(r.Method, http.StatusText(rec.status)).Inc()
		utils.Log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Info("Handled request")
	})
}

// write runs fn with the write lock held.
func (s *Server) write(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Lock != nil {
		if err := s.Lock.Lock(); err != nil {
			return err
		}
		defer s.Lock.Unlock()
	}
	return fn()
}
