package backend

import "strings"

// AnalysisRequest is the job-creation payload sent to /registro.
type AnalysisRequest struct {
	URL string `json:"url" validate:"required,contains=amazon.com.br,contains=/dp/"`
}

// SubmitResponse mirrors the /registro reply. Erro is set instead of the
// other fields when the backend refuses the job.
type SubmitResponse struct {
	Success     bool   `json:"sucesso"`
	ReceivedURL string `json:"url_recebida"`
	ProcessID   string `json:"process_id"`
	Status      string `json:"status"`
	Error       string `json:"erro,omitempty"`
}

// Accepted reports whether the backend created the job.
func (r SubmitResponse) Accepted() bool {
	return r.Success && strings.TrimSpace(r.ProcessID) != ""
}

// StatusResponse mirrors /status/{process_id}. Error is only set when the
// backend does not know the process.
type StatusResponse struct {
	Status    string `json:"status"`
	Progress  int    `json:"progresso"`
	Stage     string `json:"etapa_atual"`
	Timestamp string `json:"timestamp_lega,omitempty"`
	Error     string `json:"erro,omitempty"`
}

// Unknown reports whether the backend answered that the process id does not exist.
func (r StatusResponse) Unknown() bool {
	return strings.TrimSpace(r.Error) != ""
}

// State returns the parsed processing state.
func (r StatusResponse) State() State {
	return ParseState(r.Status)
}

// Percent returns Progress clamped to 0..100.
func (r StatusResponse) Percent() int {
	switch {
	case r.Progress < 0:
		return 0
	case r.Progress > 100:
		return 100
	default:
		return r.Progress
	}
}

// State is the processing state reported by the status endpoint.
type State int

const (
	StateProcessing State = iota
	StateConcluded
	StateError
)

// Wire values used by the backend.
const (
	WireProcessing = "processing"
	WireConcluded  = "concluido"
	WireError      = "erro"
)

// ParseState maps a wire status onto State. Anything unrecognised counts as
// still processing.
func ParseState(value string) State {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case WireConcluded, "concluded":
		return StateConcluded
	case WireError, "error":
		return StateError
	default:
		return StateProcessing
	}
}

func (s State) String() string {
	switch s {
	case StateConcluded:
		return WireConcluded
	case StateError:
		return WireError
	default:
		return WireProcessing
	}
}

// ProgressReport is what the scraper posts to /progresso/{process_id}.
// The scraper reports "processando" while working and "erro" on failure.
type ProgressReport struct {
	Stage    string `json:"etapa"`
	Progress int    `json:"progresso"`
	Status   string `json:"status"`
}

// HelloResponse mirrors the backend root route used as a health probe.
type HelloResponse struct {
	Message string `json:"mensagem"`
	Time    string `json:"hora"`
	Status  string `json:"status"`
}

// ErrorResponse is the generic {erro} envelope.
type ErrorResponse struct {
	Error string `json:"erro"`
}
