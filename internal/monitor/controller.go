package monitor

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/prodwatch/internal/backend"
)

const (
	DefaultPollInterval   = 1500 * time.Millisecond
	DefaultMaxFailures    = 3
	DefaultStaleAfter     = 30 * time.Second
	DefaultSessionTimeout = 10 * time.Minute
	DefaultRequestTimeout = 5 * time.Second
)

// DefaultArtifacts are the files the backend writes on success.
var DefaultArtifacts = []string{"amazon_product.csv", "amazon_reviews.csv"}

// Scheduler returns a command that delivers msg once d has elapsed.
type Scheduler func(d time.Duration, msg tea.Msg) tea.Cmd

// TickAfter is the Scheduler backed by tea.Tick.
func TickAfter(d time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return msg })
}

// Options configure a Controller. Zero values use the defaults above.
type Options struct {
	Context        context.Context
	API            backend.API
	Logger         *slog.Logger
	PollInterval   time.Duration
	MaxFailures    int // polling stops once consecutive failures exceed this
	StaleAfter     time.Duration
	SessionTimeout time.Duration
	RequestTimeout time.Duration
	Artifacts      []string
	Now            func() time.Time
	After          Scheduler
}

// Handle identifies a submitted process.
type Handle struct {
	ProcessID    string
	SubmittedURL string
}

// Controller owns the state of one analysis request: validation,
// submission, polling and the terminal result. It must only be driven from
// the Bubble Tea update loop; the commands it returns perform the network
// calls and report back through messages.
type Controller struct {
	opts    Options
	log     *slog.Logger
	phase   Phase
	panel   Panel
	gen     uint64
	session *session
}

// New builds a Controller with defaults applied.
func New(opts Options) *Controller {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.MaxFailures <= 0 {
		opts.MaxFailures = DefaultMaxFailures
	}
	if opts.StaleAfter <= 0 {
		opts.StaleAfter = DefaultStaleAfter
	}
	if opts.SessionTimeout <= 0 {
		opts.SessionTimeout = DefaultSessionTimeout
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	if len(opts.Artifacts) == 0 {
		opts.Artifacts = DefaultArtifacts
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.After == nil {
		opts.After = TickAfter
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Controller{
		opts: opts,
		log:  logger.With("component", "monitor"),
	}
}

// Phase returns the current state machine phase.
func (c *Controller) Phase() Phase {
	return c.phase
}

// Panel returns the current render model.
func (c *Controller) Panel() Panel {
	return c.panel
}

// Session reports the live poll session, if any.
func (c *Controller) Session() (SessionInfo, bool) {
	if c.session == nil {
		return SessionInfo{}, false
	}
	return c.session.info(), true
}

// Submit validates raw and, when it passes, sends it to the backend. Any
// previous session is discarded first, so its pending timers and fetches
// become no-ops.
func (c *Controller) Submit(raw string) tea.Cmd {
	c.discard()

	req := backend.AnalysisRequest{URL: strings.TrimSpace(raw)}
	c.phase = PhaseValidating
	if err := req.Validate(); err != nil {
		c.phase = PhaseIdle
		c.panel = validationPanel(err)
		c.log.Info("url rejected", "url", req.URL, "error", err)
		return nil
	}

	c.phase = PhaseSubmitting
	c.panel = submittingPanel()
	c.log.Info("submitting analysis", "url", req.URL)
	return c.submitCmd(c.gen, req)
}

// Monitor starts polling h. It arms exactly one poll timer and one safety
// timer for the new session.
func (c *Controller) Monitor(h Handle) tea.Cmd {
	c.discard()

	now := c.opts.Now()
	s := &session{
		gen:         c.gen,
		handle:      h,
		startedAt:   now,
		lastUpdate:  now,
		pollArmed:   true,
		safetyArmed: true,
	}
	c.session = s
	c.phase = PhaseMonitoring
	c.panel = startedPanel(h, "")
	c.log.Info("monitoring process", "process_id", h.ProcessID, "interval", c.opts.PollInterval, "timeout", c.opts.SessionTimeout)

	return tea.Batch(
		c.opts.After(c.opts.PollInterval, pollTickMsg{gen: s.gen}),
		c.opts.After(c.opts.SessionTimeout, safetyTimeoutMsg{gen: s.gen}),
	)
}

// Update applies a controller message and returns the follow-up command.
// Messages it does not own are ignored.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case submitResultMsg:
		return c.handleSubmitResult(msg)
	case pollTickMsg:
		return c.handlePollTick(msg)
	case statusResultMsg:
		return c.handleStatusResult(msg)
	case safetyTimeoutMsg:
		return c.handleSafetyTimeout(msg)
	}
	return nil
}

func (c *Controller) handleSubmitResult(msg submitResultMsg) tea.Cmd {
	if msg.gen != c.gen || c.phase != PhaseSubmitting {
		return nil
	}
	if msg.err != nil {
		c.phase = PhaseIdle
		c.panel = connectionErrorPanel()
		c.log.Warn("submission failed", "url", msg.url, "error", msg.err)
		return nil
	}
	if msg.resp == nil || !msg.resp.Accepted() {
		reason := ""
		if msg.resp != nil {
			reason = msg.resp.Error
		}
		c.phase = PhaseIdle
		c.panel = rejectedPanel(reason)
		c.log.Warn("submission refused", "url", msg.url, "reason", reason)
		return nil
	}

	h := Handle{ProcessID: msg.resp.ProcessID, SubmittedURL: msg.resp.ReceivedURL}
	if strings.TrimSpace(h.SubmittedURL) == "" {
		h.SubmittedURL = msg.url
	}
	cmd := c.Monitor(h)
	c.panel = startedPanel(h, msg.resp.Status)
	return cmd
}

func (c *Controller) handlePollTick(msg pollTickMsg) tea.Cmd {
	s := c.live(msg.gen)
	if s == nil || !s.pollArmed {
		return nil
	}
	s.pollArmed = false
	s.inflight = true
	s.polls++
	return c.fetchCmd(s.gen, s.handle.ProcessID)
}

func (c *Controller) handleStatusResult(msg statusResultMsg) tea.Cmd {
	s := c.live(msg.gen)
	if s == nil {
		return nil
	}
	s.inflight = false

	if msg.err == nil && msg.resp == nil {
		msg.err = errors.New("empty status response")
	}
	if msg.err != nil {
		return c.pollFailed(s, msg.err)
	}

	resp := msg.resp
	if resp.Unknown() {
		c.log.Warn("process not found", "process_id", s.handle.ProcessID, "reason", resp.Error)
		c.finish(PhaseFailed, notFoundPanel(s.handle.ProcessID))
		return nil
	}

	now := c.opts.Now()
	progress := progressFrom(resp)
	c.panel.Progress = &progress
	s.failures = 0
	s.lastUpdate = now

	switch resp.State() {
	case backend.StateConcluded:
		c.log.Info("process concluded", "process_id", s.handle.ProcessID, "stage", progress.Stage)
		c.finish(PhaseDone, completedPanel(progress, c.opts.Artifacts, now))
		return nil
	case backend.StateError:
		c.log.Warn("process failed", "process_id", s.handle.ProcessID, "stage", progress.Stage)
		c.finish(PhaseFailed, remoteErrorPanel(progress, now))
		return nil
	}

	s.pollArmed = true
	return c.opts.After(c.opts.PollInterval, pollTickMsg{gen: s.gen})
}

func (c *Controller) pollFailed(s *session, err error) tea.Cmd {
	s.failures++
	idle := c.opts.Now().Sub(s.lastUpdate)
	c.log.Warn("status poll failed", "process_id", s.handle.ProcessID, "failures", s.failures, "idle", idle, "error", err)

	if s.failures > c.opts.MaxFailures || idle > c.opts.StaleAfter {
		c.finish(PhaseFailed, connectionLostPanel())
		return nil
	}
	s.pollArmed = true
	return c.opts.After(c.opts.PollInterval, pollTickMsg{gen: s.gen})
}

func (c *Controller) handleSafetyTimeout(msg safetyTimeoutMsg) tea.Cmd {
	s := c.session
	if s == nil || s.gen != msg.gen || !s.safetyArmed {
		return nil
	}
	s.stop()
	if c.phase == PhaseDone {
		return nil
	}
	c.log.Warn("session time limit exceeded", "process_id", s.handle.ProcessID, "limit", c.opts.SessionTimeout)
	c.finish(PhaseFailed, timeLimitPanel(c.opts.SessionTimeout))
	return nil
}

// live returns the session for gen while it is still being monitored.
func (c *Controller) live(gen uint64) *session {
	if c.phase != PhaseMonitoring || c.session == nil || c.session.gen != gen {
		return nil
	}
	return c.session
}

func (c *Controller) finish(phase Phase, panel Panel) {
	if c.session != nil {
		c.session.stop()
		c.session = nil
	}
	c.phase = phase
	c.panel = panel
}

func (c *Controller) discard() {
	if c.session != nil {
		c.session.stop()
		c.session = nil
	}
	c.gen++
}

func (c *Controller) submitCmd(gen uint64, req backend.AnalysisRequest) tea.Cmd {
	api, ctx, timeout := c.opts.API, c.opts.Context, c.opts.RequestTimeout
	return func() tea.Msg {
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		resp, err := api.Submit(callCtx, req)
		return submitResultMsg{gen: gen, url: req.URL, resp: resp, err: err}
	}
}

func (c *Controller) fetchCmd(gen uint64, processID string) tea.Cmd {
	api, ctx, timeout := c.opts.API, c.opts.Context, c.opts.RequestTimeout
	return func() tea.Msg {
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		resp, err := api.FetchStatus(callCtx, processID)
		return statusResultMsg{gen: gen, resp: resp, err: err}
	}
}

// Messages

type submitResultMsg struct {
	gen  uint64
	url  string
	resp *backend.SubmitResponse
	err  error
}

type pollTickMsg struct{ gen uint64 }

type statusResultMsg struct {
	gen  uint64
	resp *backend.StatusResponse
	err  error
}

type safetyTimeoutMsg struct{ gen uint64 }
