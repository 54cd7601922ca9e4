package monitor

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/five82/prodwatch/internal/backend"
)

// Panel is everything the result area shows. The UI draws it; the
// controller only ever replaces it or updates its Progress.
type Panel struct {
	Kind    Kind
	Fault   Fault
	Icon    string // empty uses Kind.Icon
	Title   string // empty uses Kind.Title
	Message string
	Lines   []Line
	Loading bool

	Progress *Progress

	Artifacts  []string
	Detail     string
	OccurredAt string
	Hint       []string
	Action     string
}

// Line is a labelled value in the panel body.
type Line struct {
	Label string
	Value string
}

// Heading returns the icon and title to display.
func (p Panel) Heading() (icon, title string) {
	icon, title = p.Icon, p.Title
	if icon == "" {
		icon = p.Kind.Icon()
	}
	if title == "" {
		title = p.Kind.Title()
	}
	return icon, title
}

// Empty reports whether nothing has been rendered yet.
func (p Panel) Empty() bool {
	return p.Message == "" && p.Title == "" && p.Progress == nil
}

// Tier buckets progress into the three bar colors.
type Tier int

const (
	TierLow Tier = iota
	TierMid
	TierHigh
)

// TierFor returns the color tier for a percentage.
func TierFor(percent int) Tier {
	switch {
	case percent < 30:
		return TierLow
	case percent < 70:
		return TierMid
	default:
		return TierHigh
	}
}

// Progress is the live view of the latest status snapshot.
type Progress struct {
	Percent   int
	Stage     string
	Timestamp string
	Waiting   bool // no snapshot received yet
}

// Tier returns the bar color tier.
func (p Progress) Tier() Tier {
	return TierFor(p.Percent)
}

// Glyph escalates from waiting to working above 50% and almost done above 90%.
func (p Progress) Glyph() string {
	switch {
	case p.Percent > 90:
		return "✅"
	case p.Percent > 50:
		return "⚡"
	default:
		return "⏳"
	}
}

// Fraction returns Percent as 0..1 for progress bars.
func (p Progress) Fraction() float64 {
	return float64(p.Percent) / 100
}

// Caption is the small line under the stage label.
func (p Progress) Caption() string {
	if p.Waiting {
		return "Waiting for progress"
	}
	return fmt.Sprintf("Progress: %d%% • %s", p.Percent, p.Timestamp)
}

func progressFrom(resp *backend.StatusResponse) Progress {
	return Progress{
		Percent:   resp.Percent(),
		Stage:     resp.Stage,
		Timestamp: resp.Timestamp,
	}
}

func validationPanel(err error) Panel {
	msg := "Invalid Amazon URL. It must be an Amazon.com.br product link."
	var verr *backend.ValidationError
	if errors.As(err, &verr) && verr.Empty {
		msg = "Paste the Amazon product URL!"
	}
	return Panel{
		Kind:    KindError,
		Fault:   FaultValidation,
		Message: msg,
		Action:  "Fix the URL and press enter",
	}
}

func submittingPanel() Panel {
	return Panel{
		Kind:    KindProcessing,
		Message: "Starting product analysis...",
		Loading: true,
	}
}

func connectionErrorPanel() Panel {
	return Panel{
		Kind:    KindError,
		Fault:   FaultTransport,
		Message: "Could not connect to the server. Check that the backend is running.",
		Action:  "Press enter to try again",
	}
}

func rejectedPanel(reason string) Panel {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "the backend refused the job"
	}
	return Panel{
		Kind:    KindError,
		Fault:   FaultRejected,
		Message: "Error: " + reason,
		Action:  "Press enter to try again",
	}
}

func startedPanel(h Handle, status string) Panel {
	lines := []Line{
		{Label: "URL", Value: h.SubmittedURL},
		{Label: "ID", Value: h.ProcessID},
	}
	if s := strings.TrimSpace(status); s != "" {
		lines = append(lines, Line{Label: "Status", Value: s})
	}
	return Panel{
		Kind:     KindInfo,
		Title:    "Analysis started",
		Message:  "Analysis started successfully!",
		Lines:    lines,
		Progress: &Progress{Stage: "Starting...", Waiting: true},
	}
}

func notFoundPanel(processID string) Panel {
	return Panel{
		Kind:    KindError,
		Fault:   FaultNotFound,
		Message: "Process not found: " + processID,
		Action:  "Press enter to submit again",
	}
}

func connectionLostPanel() Panel {
	return Panel{
		Kind:    KindError,
		Fault:   FaultTimeout,
		Message: "Connection to the server was lost",
		Action:  "Press enter to try again",
	}
}

func timeLimitPanel(limit time.Duration) Panel {
	return Panel{
		Kind:    KindError,
		Fault:   FaultTimeout,
		Message: fmt.Sprintf("Time limit exceeded (%s). Processing may have run into problems.", humanize(limit)),
		Action:  "Press enter to try again",
	}
}

func completedPanel(p Progress, artifacts []string, now time.Time) Panel {
	return Panel{
		Kind:       KindSuccess,
		Icon:       "🎉",
		Title:      "Processing complete!",
		Message:    "Task finished successfully!",
		Progress:   &p,
		Artifacts:  append([]string(nil), artifacts...),
		Detail:     p.Stage,
		OccurredAt: orClock(p.Timestamp, now),
		Hint: []string{
			"Files were saved to the project folder.",
			"You can close this window or start a new analysis.",
		},
		Action: "Press enter to analyze another product",
	}
}

func remoteErrorPanel(p Progress, now time.Time) Panel {
	return Panel{
		Kind:       KindError,
		Fault:      FaultRemote,
		Title:      "Processing error",
		Message:    "An error occurred during execution:",
		Progress:   &p,
		Detail:     p.Stage,
		OccurredAt: orClock(p.Timestamp, now),
		Hint: []string{
			"Try again or check the product URL.",
			"If the problem persists, restart the backend server.",
		},
		Action: "Press enter to try again",
	}
}

func orClock(label string, now time.Time) string {
	if s := strings.TrimSpace(label); s != "" {
		return s
	}
	return now.Format("15:04:05")
}

func humanize(d time.Duration) string {
	switch {
	case d >= time.Minute && d%time.Minute == 0:
		return fmt.Sprintf("%d minutes", int(d.Minutes()))
	default:
		return d.String()
	}
}
