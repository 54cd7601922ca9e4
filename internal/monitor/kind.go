package monitor

// Phase is the controller's position in the submit/monitor state machine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseValidating
	PhaseSubmitting
	PhaseMonitoring
	PhaseDone
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseValidating:
		return "validating"
	case PhaseSubmitting:
		return "submitting"
	case PhaseMonitoring:
		return "monitoring"
	case PhaseDone:
		return "done"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether only a new submission can leave this phase.
func (p Phase) Terminal() bool {
	return p == PhaseDone || p == PhaseFailed
}

// Busy reports whether a submission or poll session is in progress.
func (p Phase) Busy() bool {
	return p == PhaseSubmitting || p == PhaseMonitoring
}

// Kind classifies a rendered panel.
type Kind int

const (
	KindProcessing Kind = iota
	KindSuccess
	KindError
	KindInfo
)

func (k Kind) String() string {
	switch k {
	case KindProcessing:
		return "processing"
	case KindSuccess:
		return "success"
	case KindError:
		return "error"
	case KindInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Icon returns the glyph shown next to the panel title.
func (k Kind) Icon() string {
	switch k {
	case KindSuccess:
		return "✅"
	case KindError:
		return "❌"
	case KindInfo:
		return "ℹ️"
	default:
		return "⏳"
	}
}

// Title returns the default panel heading.
func (k Kind) Title() string {
	switch k {
	case KindSuccess:
		return "Success!"
	case KindError:
		return "Error!"
	case KindInfo:
		return "Information"
	default:
		return "Processing..."
	}
}

// Fault names the error category behind an error panel.
type Fault int

const (
	FaultNone Fault = iota
	// FaultValidation: the URL was rejected locally, nothing was sent.
	FaultValidation
	// FaultRejected: the backend refused the job.
	FaultRejected
	// FaultTransport: the submission could not reach the backend.
	FaultTransport
	// FaultNotFound: the backend no longer knows the process id.
	FaultNotFound
	// FaultRemote: the backend reported a processing failure.
	FaultRemote
	// FaultTimeout: the session ceiling or the poll failure threshold was hit.
	FaultTimeout
)

func (f Fault) String() string {
	switch f {
	case FaultNone:
		return "none"
	case FaultValidation:
		return "validation"
	case FaultRejected:
		return "submission_rejected"
	case FaultTransport:
		return "transport"
	case FaultNotFound:
		return "process_not_found"
	case FaultRemote:
		return "remote_processing"
	case FaultTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}
