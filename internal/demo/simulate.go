package demo

import (
	"context"
	"strings"
	"time"

	"github.com/five82/prodwatch/internal/backend"
)

// Stage is one step of the simulated scrape.
type Stage struct {
	Label   string
	Percent int
}

// Stages mirror the steps the real scraper reports.
var Stages = []Stage{
	{"Iniciando navegador", 10},
	{"Carregando pagina", 30},
	{"Extraindo dados", 50},
	{"Coletando comentarios", 70},
	{"Salvando dados", 90},
	{"Concluido", 100},
}

// FailToken in a submitted URL makes the simulation fail while loading the page.
const FailToken = "demo-fail"

// simulate walks p through Stages, one every step, reporting into the store
// the same way the scraper would.
func (s *Server) simulate(ctx context.Context, p Process) {
	fail := strings.Contains(p.URL, FailToken)
	ticker := time.NewTicker(s.step)
	defer ticker.Stop()

	for i, stage := range Stages {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		report := backend.ProgressReport{Stage: stage.Label, Progress: stage.Percent, Status: "processando"}
		if fail && i == 1 {
			report = backend.ProgressReport{Stage: "Erro ao carregar", Progress: 0, Status: backend.WireError}
		}
		updated, ok := s.store.Report(p.ID, report)
		if !ok {
			return
		}
		s.log.Debug("simulated progress", "process_id", p.ID, "stage", updated.Stage, "progress", updated.Progress, "status", updated.Status)
		if updated.Status != backend.WireProcessing {
			s.log.Info("simulation finished", "process_id", p.ID, "status", updated.Status)
			return
		}
	}
}
