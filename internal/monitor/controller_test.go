package monitor

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/prodwatch/internal/backend"
)

const productURL = "https://www.amazon.com.br/Some-Product/dp/B000123456"

type statusReply struct {
	resp *backend.StatusResponse
	err  error
}

type fakeAPI struct {
	submitResp  *backend.SubmitResponse
	submitErr   error
	submitCalls []backend.AnalysisRequest

	replies     []statusReply
	statusCalls []string
}

func (f *fakeAPI) Submit(_ context.Context, req backend.AnalysisRequest) (*backend.SubmitResponse, error) {
	f.submitCalls = append(f.submitCalls, req)
	return f.submitResp, f.submitErr
}

func (f *fakeAPI) FetchStatus(_ context.Context, processID string) (*backend.StatusResponse, error) {
	f.statusCalls = append(f.statusCalls, processID)
	if len(f.replies) == 0 {
		return nil, errors.New("no reply queued")
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	return r.resp, r.err
}

func (f *fakeAPI) queue(replies ...statusReply) {
	f.replies = append(f.replies, replies...)
}

type pendingTimer struct {
	d   time.Duration
	msg tea.Msg
}

type harness struct {
	c      *Controller
	api    *fakeAPI
	now    time.Time
	timers []pendingTimer
}

func newHarness() *harness {
	h := &harness{
		api: &fakeAPI{
			submitResp: &backend.SubmitResponse{
				Success:     true,
				ReceivedURL: productURL,
				ProcessID:   "proc-1",
				Status:      "iniciado",
			},
		},
		now: time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC),
	}
	h.c = New(Options{
		API: h.api,
		Now: func() time.Time { return h.now },
		After: func(d time.Duration, msg tea.Msg) tea.Cmd {
			h.timers = append(h.timers, pendingTimer{d: d, msg: msg})
			return nil
		},
	})
	return h
}

// drive runs cmd and feeds every resulting message back into the controller.
func (h *harness) drive(cmd tea.Cmd) {
	for cmd != nil {
		msg := cmd()
		if batch, ok := msg.(tea.BatchMsg); ok {
			for _, sub := range batch {
				h.drive(sub)
			}
			return
		}
		cmd = h.c.Update(msg)
	}
}

func (h *harness) submit(url string) {
	h.drive(h.c.Submit(url))
}

func (h *harness) countTimers(match func(tea.Msg) bool) int {
	n := 0
	for _, pt := range h.timers {
		if match(pt.msg) {
			n++
		}
	}
	return n
}

func (h *harness) take(t *testing.T, match func(tea.Msg) bool) pendingTimer {
	t.Helper()
	for i, pt := range h.timers {
		if match(pt.msg) {
			h.timers = append(h.timers[:i], h.timers[i+1:]...)
			return pt
		}
	}
	t.Fatalf("no pending timer matched; timers = %#v", h.timers)
	return pendingTimer{}
}

func (h *harness) firePoll(t *testing.T) {
	t.Helper()
	pt := h.take(t, isPollTick)
	h.now = h.now.Add(pt.d)
	h.drive(h.c.Update(pt.msg))
}

func (h *harness) fireSafety(t *testing.T) {
	t.Helper()
	pt := h.take(t, isSafety)
	h.now = h.now.Add(pt.d)
	h.drive(h.c.Update(pt.msg))
}

func isPollTick(msg tea.Msg) bool {
	_, ok := msg.(pollTickMsg)
	return ok
}

func isSafety(msg tea.Msg) bool {
	_, ok := msg.(safetyTimeoutMsg)
	return ok
}

func processing(percent int, stage string) statusReply {
	return statusReply{resp: &backend.StatusResponse{Status: "processing", Progress: percent, Stage: stage, Timestamp: "10:00:05"}}
}

func TestSubmit_InvalidURLsMakeNoNetworkCalls(t *testing.T) {
	cases := []string{
		"",
		"   ",
		"https://example.com/not-amazon",
		"https://www.amazon.com.br/gp/bestsellers",
		"https://www.amazon.com/Some-Product/dp/B000123456",
	}
	for _, url := range cases {
		t.Run(url, func(t *testing.T) {
			h := newHarness()
			h.submit(url)

			if h.c.Phase() != PhaseIdle {
				t.Fatalf("Phase = %v, want idle", h.c.Phase())
			}
			panel := h.c.Panel()
			if panel.Kind != KindError || panel.Fault != FaultValidation {
				t.Fatalf("panel = %#v, want validation error", panel)
			}
			if panel.Action == "" {
				t.Fatalf("validation panel has no follow-up action")
			}
			if len(h.api.submitCalls) != 0 || len(h.api.statusCalls) != 0 {
				t.Fatalf("network calls = %d submit, %d status; want none", len(h.api.submitCalls), len(h.api.statusCalls))
			}
			if len(h.timers) != 0 {
				t.Fatalf("timers = %d, want 0", len(h.timers))
			}
		})
	}
}

func TestSubmit_EmptyURLAsksForURL(t *testing.T) {
	h := newHarness()
	h.submit("")
	if got := h.c.Panel().Message; got != "Paste the Amazon product URL!" {
		t.Fatalf("Message = %q, want paste prompt", got)
	}
}

func TestSubmit_ShowsProcessingBeforeResponse(t *testing.T) {
	h := newHarness()
	cmd := h.c.Submit(productURL)
	if cmd == nil {
		t.Fatalf("Submit returned nil command for a valid URL")
	}
	if h.c.Phase() != PhaseSubmitting {
		t.Fatalf("Phase = %v, want submitting", h.c.Phase())
	}
	panel := h.c.Panel()
	if panel.Kind != KindProcessing || !panel.Loading {
		t.Fatalf("panel = %#v, want loading processing panel", panel)
	}
	if len(h.api.submitCalls) != 0 {
		t.Fatalf("submit issued before the command ran")
	}
}

func TestSubmit_TransportFailureShowsConnectionError(t *testing.T) {
	h := newHarness()
	h.api.submitResp = nil
	h.api.submitErr = backend.ErrTransport

	h.submit(productURL)

	if h.c.Phase() != PhaseIdle {
		t.Fatalf("Phase = %v, want idle", h.c.Phase())
	}
	if got := h.c.Panel().Fault; got != FaultTransport {
		t.Fatalf("Fault = %v, want transport", got)
	}
	if len(h.api.submitCalls) != 1 {
		t.Fatalf("submit calls = %d, want exactly 1 (no retry)", len(h.api.submitCalls))
	}
	if len(h.timers) != 0 {
		t.Fatalf("timers = %d, want 0", len(h.timers))
	}
}

func TestSubmit_RejectionShowsServerMessage(t *testing.T) {
	h := newHarness()
	h.api.submitResp = &backend.SubmitResponse{Success: false, Error: "URL invalida"}

	h.submit(productURL)

	panel := h.c.Panel()
	if h.c.Phase() != PhaseIdle || panel.Fault != FaultRejected {
		t.Fatalf("phase/panel = %v/%#v, want idle rejection", h.c.Phase(), panel)
	}
	if panel.Message != "Error: URL invalida" {
		t.Fatalf("Message = %q, want server message", panel.Message)
	}
	if len(h.api.submitCalls) != 1 {
		t.Fatalf("submit calls = %d, want 1", len(h.api.submitCalls))
	}
}

func TestSubmit_SuccessArmsOnePollAndOneSafetyTimer(t *testing.T) {
	h := newHarness()
	h.submit(productURL)

	if h.c.Phase() != PhaseMonitoring {
		t.Fatalf("Phase = %v, want monitoring", h.c.Phase())
	}
	info, ok := h.c.Session()
	if !ok {
		t.Fatalf("Session() reported no session while monitoring")
	}
	if !info.PollTimerActive || !info.SafetyTimerActive {
		t.Fatalf("session timers = %#v, want both active", info)
	}
	if info.Handle.ProcessID != "proc-1" || info.Handle.SubmittedURL != productURL {
		t.Fatalf("handle = %#v, want proc-1 for %s", info.Handle, productURL)
	}
	if n := h.countTimers(isPollTick); n != 1 {
		t.Fatalf("poll timers = %d, want 1", n)
	}
	if n := h.countTimers(isSafety); n != 1 {
		t.Fatalf("safety timers = %d, want 1", n)
	}
	for _, pt := range h.timers {
		switch pt.msg.(type) {
		case pollTickMsg:
			if pt.d != DefaultPollInterval {
				t.Fatalf("poll interval = %v, want %v", pt.d, DefaultPollInterval)
			}
		case safetyTimeoutMsg:
			if pt.d != DefaultSessionTimeout {
				t.Fatalf("safety timeout = %v, want %v", pt.d, DefaultSessionTimeout)
			}
		}
	}

	panel := h.c.Panel()
	if panel.Progress == nil || !panel.Progress.Waiting {
		t.Fatalf("started panel progress = %#v, want waiting bar", panel.Progress)
	}
	if len(panel.Lines) != 3 || panel.Lines[2].Value != "iniciado" {
		t.Fatalf("started panel lines = %#v, want url/id/status", panel.Lines)
	}
}

func TestMonitor_ConcludedScenario(t *testing.T) {
	h := newHarness()
	h.api.queue(
		processing(10, "Iniciando navegador"),
		processing(50, "Extraindo dados"),
		statusReply{resp: &backend.StatusResponse{Status: "concluido", Progress: 100, Stage: "Concluido", Timestamp: "10:00:09"}},
	)

	h.submit(productURL)

	h.firePoll(t)
	if p := h.c.Panel().Progress; p == nil || p.Percent != 10 || p.Tier() != TierLow {
		t.Fatalf("progress after first poll = %#v, want 10%% low tier", p)
	}
	h.firePoll(t)
	if p := h.c.Panel().Progress; p == nil || p.Percent != 50 || p.Tier() != TierMid || p.Glyph() != "⏳" {
		t.Fatalf("progress after second poll = %#v, want 50%% mid tier", p)
	}
	h.firePoll(t)

	if h.c.Phase() != PhaseDone {
		t.Fatalf("Phase = %v, want done", h.c.Phase())
	}
	panel := h.c.Panel()
	if panel.Kind != KindSuccess {
		t.Fatalf("Kind = %v, want success", panel.Kind)
	}
	want := []string{"amazon_product.csv", "amazon_reviews.csv"}
	if !reflect.DeepEqual(panel.Artifacts, want) {
		t.Fatalf("Artifacts = %v, want %v", panel.Artifacts, want)
	}
	if panel.Detail != "Concluido" || panel.OccurredAt != "10:00:09" {
		t.Fatalf("Detail/OccurredAt = %q/%q, want Concluido/10:00:09", panel.Detail, panel.OccurredAt)
	}
	if _, ok := h.c.Session(); ok {
		t.Fatalf("session still live after completion")
	}
	if n := h.countTimers(isPollTick); n != 0 {
		t.Fatalf("poll timers after completion = %d, want 0", n)
	}
	if len(h.api.statusCalls) != 3 {
		t.Fatalf("status calls = %d, want 3", len(h.api.statusCalls))
	}

	// The safety timer still fires later and must not touch the success view.
	h.fireSafety(t)
	if h.c.Phase() != PhaseDone || !reflect.DeepEqual(h.c.Panel(), panel) {
		t.Fatalf("late safety timer changed the done view: %#v", h.c.Panel())
	}
	if len(h.api.statusCalls) != 3 {
		t.Fatalf("status calls after completion = %d, want 3", len(h.api.statusCalls))
	}
}

func TestMonitor_StaleTickAfterCompletionIsIgnored(t *testing.T) {
	h := newHarness()
	h.api.queue(statusReply{resp: &backend.StatusResponse{Status: "concluido", Progress: 100, Stage: "Concluido"}})
	h.submit(productURL)
	h.firePoll(t)

	done := h.c.Panel()
	if cmd := h.c.Update(pollTickMsg{gen: h.c.gen}); cmd != nil {
		t.Fatalf("tick after completion returned a command")
	}
	if len(h.api.statusCalls) != 1 {
		t.Fatalf("status calls = %d, want 1", len(h.api.statusCalls))
	}
	if !reflect.DeepEqual(h.c.Panel(), done) {
		t.Fatalf("done panel changed after stale tick")
	}
	if done.OccurredAt != "10:00:01" {
		t.Fatalf("OccurredAt = %q, want clock fallback 10:00:01", done.OccurredAt)
	}
}

func TestMonitor_RemoteErrorShowsStage(t *testing.T) {
	h := newHarness()
	h.api.queue(
		processing(30, "Carregando pagina"),
		statusReply{resp: &backend.StatusResponse{Status: "erro", Progress: 0, Stage: "Erro ao carregar", Timestamp: "10:00:04"}},
	)
	h.submit(productURL)
	h.firePoll(t)
	h.firePoll(t)

	if h.c.Phase() != PhaseFailed {
		t.Fatalf("Phase = %v, want failed", h.c.Phase())
	}
	panel := h.c.Panel()
	if panel.Fault != FaultRemote || panel.Detail != "Erro ao carregar" || panel.OccurredAt != "10:00:04" {
		t.Fatalf("panel = %#v, want remote error with stage detail", panel)
	}
	if n := h.countTimers(isPollTick); n != 0 {
		t.Fatalf("poll timers = %d, want 0", n)
	}
	h.fireSafety(t)
	if h.c.Panel().Fault != FaultRemote {
		t.Fatalf("safety timer replaced the remote error view")
	}
}

func TestMonitor_UnknownProcessFails(t *testing.T) {
	h := newHarness()
	h.api.queue(statusReply{resp: &backend.StatusResponse{Error: "Processo nao encontrado"}})
	h.submit(productURL)
	h.firePoll(t)

	panel := h.c.Panel()
	if h.c.Phase() != PhaseFailed || panel.Fault != FaultNotFound {
		t.Fatalf("phase/panel = %v/%#v, want not-found failure", h.c.Phase(), panel)
	}
	if panel.Message != "Process not found: proc-1" {
		t.Fatalf("Message = %q", panel.Message)
	}
}

func TestMonitor_FourthConsecutiveFailureLosesConnection(t *testing.T) {
	h := newHarness()
	fail := statusReply{err: backend.ErrTransport}
	h.api.queue(fail, fail, fail, fail)
	h.submit(productURL)

	for i := 1; i <= 3; i++ {
		h.firePoll(t)
		if h.c.Phase() != PhaseMonitoring {
			t.Fatalf("after %d failures Phase = %v, want monitoring", i, h.c.Phase())
		}
		info, _ := h.c.Session()
		if info.ConsecutiveFailures != i {
			t.Fatalf("ConsecutiveFailures = %d, want %d", info.ConsecutiveFailures, i)
		}
	}

	h.firePoll(t)
	if h.c.Phase() != PhaseFailed {
		t.Fatalf("after 4 failures Phase = %v, want failed", h.c.Phase())
	}
	if got := h.c.Panel().Message; got != "Connection to the server was lost" {
		t.Fatalf("Message = %q, want connection lost", got)
	}
	if n := h.countTimers(isPollTick); n != 0 {
		t.Fatalf("poll timers = %d, want 0", n)
	}
}

func TestMonitor_SuccessResetsFailureCount(t *testing.T) {
	h := newHarness()
	h.api.queue(statusReply{err: backend.ErrTransport}, processing(20, "Iniciando navegador"))
	h.submit(productURL)

	h.firePoll(t)
	if info, _ := h.c.Session(); info.ConsecutiveFailures != 1 {
		t.Fatalf("ConsecutiveFailures = %d, want 1", info.ConsecutiveFailures)
	}
	h.firePoll(t)
	info, ok := h.c.Session()
	if !ok || info.ConsecutiveFailures != 0 {
		t.Fatalf("ConsecutiveFailures = %d (live=%v), want 0", info.ConsecutiveFailures, ok)
	}
	if !info.LastUpdate.Equal(h.now) {
		t.Fatalf("LastUpdate = %v, want %v", info.LastUpdate, h.now)
	}
}

func TestMonitor_StaleFailureLosesConnection(t *testing.T) {
	h := newHarness()
	h.api.queue(statusReply{err: backend.ErrTransport})
	h.submit(productURL)

	h.now = h.now.Add(DefaultStaleAfter)
	h.firePoll(t)

	if h.c.Phase() != PhaseFailed || h.c.Panel().Fault != FaultTimeout {
		t.Fatalf("phase/panel = %v/%#v, want stale connection loss", h.c.Phase(), h.c.Panel())
	}
}

func TestMonitor_SafetyTimeoutStopsPolling(t *testing.T) {
	h := newHarness()
	h.api.queue(processing(40, "Carregando pagina"))
	h.submit(productURL)
	h.firePoll(t)

	h.fireSafety(t)

	if h.c.Phase() != PhaseFailed {
		t.Fatalf("Phase = %v, want failed", h.c.Phase())
	}
	panel := h.c.Panel()
	if panel.Fault != FaultTimeout || panel.Message != "Time limit exceeded (10 minutes). Processing may have run into problems." {
		t.Fatalf("panel = %#v, want time limit error", panel)
	}

	// The poll tick armed before the timeout fires into a stopped session.
	h.firePoll(t)
	if len(h.api.statusCalls) != 1 {
		t.Fatalf("status calls = %d, want 1", len(h.api.statusCalls))
	}
}

func TestMonitor_LateStatusAfterTimeoutIgnored(t *testing.T) {
	h := newHarness()
	h.submit(productURL)
	pt := h.take(t, isPollTick)
	fetch := h.c.Update(pt.msg)
	if fetch == nil {
		t.Fatalf("poll tick returned no fetch command")
	}
	if info, _ := h.c.Session(); !info.FetchInFlight || info.PollTimerActive {
		t.Fatalf("session = %#v, want fetch in flight and poll timer idle", info)
	}

	h.fireSafety(t)
	timedOut := h.c.Panel()

	h.api.queue(processing(60, "Coletando comentarios"))
	h.drive(fetch)

	if !reflect.DeepEqual(h.c.Panel(), timedOut) {
		t.Fatalf("late status result changed the timeout view")
	}
}

func TestSubmit_NewSubmissionInvalidatesPreviousSession(t *testing.T) {
	h := newHarness()
	h.submit(productURL)
	oldPoll := h.take(t, isPollTick)
	oldSafety := h.take(t, isSafety)

	h.api.submitResp = &backend.SubmitResponse{Success: true, ProcessID: "proc-2", ReceivedURL: productURL}
	h.submit(productURL)

	info, ok := h.c.Session()
	if !ok || info.Handle.ProcessID != "proc-2" {
		t.Fatalf("session = %#v, want proc-2", info)
	}

	if cmd := h.c.Update(oldPoll.msg); cmd != nil {
		t.Fatalf("old session tick produced a command")
	}
	before := h.c.Panel()
	h.c.Update(oldSafety.msg)
	if h.c.Phase() != PhaseMonitoring || !reflect.DeepEqual(h.c.Panel(), before) {
		t.Fatalf("old safety timer affected the new session")
	}

	h.api.queue(processing(10, "Iniciando navegador"))
	h.firePoll(t)
	if len(h.api.statusCalls) != 1 || h.api.statusCalls[0] != "proc-2" {
		t.Fatalf("status calls = %v, want [proc-2]", h.api.statusCalls)
	}
}

func TestSubmit_ValidationFailureDiscardsSession(t *testing.T) {
	h := newHarness()
	h.submit(productURL)
	oldPoll := h.take(t, isPollTick)

	h.submit("https://example.com/not-amazon")

	if _, ok := h.c.Session(); ok {
		t.Fatalf("session survived a new submission")
	}
	if cmd := h.c.Update(oldPoll.msg); cmd != nil {
		t.Fatalf("old tick produced a command after resubmission")
	}
	if len(h.api.statusCalls) != 0 {
		t.Fatalf("status calls = %d, want 0", len(h.api.statusCalls))
	}
}

func TestMonitor_CustomThresholds(t *testing.T) {
	h := newHarness()
	h.c = New(Options{
		API:          h.api,
		MaxFailures:  1,
		PollInterval: time.Second,
		Now:          func() time.Time { return h.now },
		After: func(d time.Duration, msg tea.Msg) tea.Cmd {
			h.timers = append(h.timers, pendingTimer{d: d, msg: msg})
			return nil
		},
	})
	h.api.queue(statusReply{err: backend.ErrTransport}, statusReply{err: backend.ErrTransport})
	h.submit(productURL)

	h.firePoll(t)
	if h.c.Phase() != PhaseMonitoring {
		t.Fatalf("Phase = %v after 1 failure, want monitoring", h.c.Phase())
	}
	h.firePoll(t)
	if h.c.Phase() != PhaseFailed {
		t.Fatalf("Phase = %v after 2 failures, want failed", h.c.Phase())
	}
}

func TestUpdate_IgnoresForeignMessages(t *testing.T) {
	h := newHarness()
	if cmd := h.c.Update(tea.KeyMsg{}); cmd != nil {
		t.Fatalf("Update(KeyMsg) returned a command")
	}
	if h.c.Phase() != PhaseIdle || !h.c.Panel().Empty() {
		t.Fatalf("controller changed on a foreign message")
	}
}
