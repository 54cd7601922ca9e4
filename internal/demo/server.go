package demo

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/five82/prodwatch/internal/backend"
)

const maxBodyBytes = 64 << 10

// Options configure the demo server.
type Options struct {
	Logger *slog.Logger
	// Step is the delay between simulated stages. Zero disables the
	// simulation; processes then only move through POST /progresso.
	Step time.Duration
	Now  func() time.Time
}

// Server is the demo analysis backend.
type Server struct {
	store  *Store
	router chi.Router
	log    *slog.Logger
	step   time.Duration
	now    func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer builds the router and an empty process store.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		store:  NewStore(now),
		router: chi.NewRouter(),
		log:    logger.With("component", "demo"),
		step:   opts.Step,
		now:    now,
		ctx:    ctx,
		cancel: cancel,
	}
	s.routes()
	return s
}

// Store exposes the process store, mainly for tests.
func (s *Server) Store() *Store {
	return s.store
}

func (s *Server) routes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/", s.handleHello)
	r.Post("/registro", s.handleRegister)
	r.Get("/status/{processID}", s.handleStatus)
	r.Post("/progresso/{processID}", s.handleProgress)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
	}
}

// Close stops running simulations and waits for them.
func (s *Server) Close() {
	s.cancel()
	s.wg.Wait()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) handleHello(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, backend.HelloResponse{
		Message: "Olá do backend de demonstração!",
		Time:    s.now().Format("15:04:05"),
		Status:  "conectado",
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req backend.AnalysisRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "JSON invalido")
		return
	}
	req.URL = strings.TrimSpace(req.URL)
	if err := req.Validate(); err != nil {
		s.log.Info("rejected url", "url", req.URL, "error", err)
		writeError(w, http.StatusBadRequest, "URL invalida")
		return
	}

	p := s.store.Create(req.URL)
	s.log.Info("process registered", "process_id", p.ID, "url", p.URL)
	if s.step > 0 {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.simulate(s.ctx, p)
		}()
	}

	writeJSON(w, http.StatusOK, backend.SubmitResponse{
		Success:     true,
		ReceivedURL: p.URL,
		ProcessID:   p.ID,
		Status:      "iniciado",
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "processID")
	p, ok := s.store.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Processo nao encontrado")
		return
	}
	writeJSON(w, http.StatusOK, p.response())
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "processID")
	var report backend.ProgressReport
	if err := decodeJSON(r, &report); err != nil {
		writeError(w, http.StatusBadRequest, "JSON invalido")
		return
	}
	p, ok := s.store.Report(id, report)
	if !ok {
		writeError(w, http.StatusNotFound, "Processo nao encontrado")
		return
	}
	s.log.Info("progress reported", "process_id", id, "stage", p.Stage, "progress", p.Progress, "status", p.Status)
	writeJSON(w, http.StatusOK, p.response())
}

func decodeJSON(r *http.Request, dest any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dest); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("trailing data after JSON body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, backend.ErrorResponse{Error: msg})
}
