package demo

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/five82/prodwatch/internal/backend"
)

// Process is the demo backend's record of one analysis.
type Process struct {
	ID        string
	URL       string
	Status    string
	Progress  int
	Stage     string
	UpdatedAt time.Time
}

func (p Process) response() backend.StatusResponse {
	return backend.StatusResponse{
		Status:    p.Status,
		Progress:  p.Progress,
		Stage:     p.Stage,
		Timestamp: p.UpdatedAt.Format("15:04:05"),
	}
}

// Store keeps processes in memory for the life of the server.
type Store struct {
	mu    sync.RWMutex
	procs map[string]*Process
	now   func() time.Time
}

// NewStore returns an empty Store.
func NewStore(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{procs: make(map[string]*Process), now: now}
}

// Create registers url under a fresh id.
func (s *Store) Create(url string) Process {
	p := &Process{
		ID:        uuid.NewString(),
		URL:       url,
		Status:    backend.WireProcessing,
		Stage:     "Iniciando",
		UpdatedAt: s.now(),
	}
	s.mu.Lock()
	s.procs[p.ID] = p
	s.mu.Unlock()
	return *p
}

// Get returns a copy of the process with id.
func (s *Store) Get(id string) (Process, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.procs[id]
	if !ok {
		return Process{}, false
	}
	return *p, true
}

// Report applies a progress report. A report at 100% concludes the process,
// a report with status "erro" fails it. Finished processes ignore further
// reports.
func (s *Store) Report(id string, r backend.ProgressReport) (Process, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.procs[id]
	if !ok {
		return Process{}, false
	}
	if p.Status != backend.WireProcessing {
		return *p, true
	}

	p.Stage = strings.TrimSpace(r.Stage)
	p.Progress = min(max(r.Progress, 0), 100)
	p.UpdatedAt = s.now()
	switch {
	case backend.ParseState(r.Status) == backend.StateError:
		p.Status = backend.WireError
	case p.Progress >= 100:
		p.Status = backend.WireConcluded
	default:
		p.Status = backend.WireProcessing
	}
	return *p, true
}

// Len returns the number of known processes.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.procs)
}
