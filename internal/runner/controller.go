package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hay-kot/shellmark/internal/core/history"
	"github.com/hay-kot/shellmark/internal/core/marker"
	"github.com/hay-kot/shellmark/internal/core/stats"
	"github.com/hay-kot/shellmark/internal/integration/terminal"
)

// RunRecorder persists a summary of every completed run.
type RunRecorder interface {
	Save(ctx context.Context, entry history.Entry) error
}

// Controller owns one reusable terminal and runs at most one command in it at
// a time. Output of each run is extracted, recorded in the statistics store
// and reported through the sinks.
type Controller struct {
	host      terminal.Host
	stats     *stats.Store
	extractor *marker.Extractor
	sinks     Sinks
	cfg       Config
	log       zerolog.Logger
	recorder  RunRecorder
	now       func() time.Time

	// ctx bounds stream reads and is cancelled by Close.
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	state   State
	term    terminal.Terminal
	profile profile
	current *run
	idle    chan struct{}
	closed  bool
}

// New creates a Controller. Statistics are owned by the caller so they can
// outlive the controller and be shared with other views.
func New(host terminal.Host, st *stats.Store, sinks Sinks, cfg Config, log zerolog.Logger) *Controller {
	cfg = cfg.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())

	idle := make(chan struct{})
	close(idle)

	return &Controller{
		host:      host,
		stats:     st,
		extractor: marker.New(cfg.BenchIterations),
		sinks:     sinks,
		cfg:       cfg,
		log:       log,
		now:       time.Now,
		ctx:       ctx,
		cancel:    cancel,
		idle:      idle,
	}
}

// WithRecorder sets the hook that persists run summaries.
func (c *Controller) WithRecorder(r RunRecorder) *Controller {
	c.recorder = r
	return c
}

// State returns the current run state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ResetStatistics clears the statistics store. The terminal is untouched.
func (c *Controller) ResetStatistics() {
	c.stats.Reset()
	c.log.Debug().Msg("statistics reset")
}

// Wait blocks until no run is in flight or ctx ends.
func (c *Controller) Wait(ctx context.Context) error {
	c.mu.Lock()
	idle := c.idle
	c.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ExecuteCommand starts command in the managed terminal and returns once it
// has been dispatched. The report arrives later through the sinks. While a
// run is in flight the busy message is emitted and ErrBusy returned.
func (c *Controller) ExecuteCommand(ctx context.Context, command string, opts Options) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.state != StateIdle {
		c.mu.Unlock()
		c.log.Debug().Str("command", command).Str("state", c.State().String()).Msg("rejecting concurrent execution")
		emit(c.sinks.OnOutput, BusyMessage)
		return ErrBusy
	}
	c.state = StateAwaitingIntegration
	c.idle = make(chan struct{})
	c.mu.Unlock()

	log := c.log.With().Str("command", command).Logger()

	term, err := c.provision(ctx, c.cfg.profileFor(opts))
	if err != nil {
		c.finish(nil)
		return fmt.Errorf("provision terminal: %w", err)
	}

	r := &run{
		command: command,
		opts:    opts,
		term:    term,
		done:    make(chan struct{}),
	}

	// Subscribed before dispatch so the start of this command is never missed.
	r.subs = []terminal.Subscription{
		c.host.OnDidStartExecution(func(e terminal.StartEvent) { c.handleStart(r, e) }),
		c.host.OnDidEndExecution(func(e terminal.EndEvent) { c.handleEnd(r, e) }),
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		r.dispose()
		c.finish(nil)
		return ErrClosed
	}
	c.current = r
	c.mu.Unlock()

	gateErr := terminal.WaitForIntegration(ctx, term, c.cfg.IntegrationTimeout, c.cfg.PollInterval)
	if gateErr != nil && !errors.Is(gateErr, terminal.ErrIntegrationTimeout) {
		c.finish(r)
		return gateErr
	}
	if gateErr != nil {
		log.Debug().Dur("timeout", c.cfg.IntegrationTimeout).Msg("shell integration not ready")
	}

	c.mu.Lock()
	c.state = StateRunning
	c.mu.Unlock()

	if err := c.dispatch(term, command, opts, gateErr == nil); err != nil {
		if errors.Is(err, terminal.ErrTerminalClosed) {
			c.dropTerminal(term)
		}
		c.finish(r)
		return fmt.Errorf("dispatch command: %w", err)
	}

	log.Debug().Bool("integrated", gateErr == nil).Msg("command dispatched")
	return nil
}

// Close disposes the managed terminal and abandons any run in flight.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	r := c.current
	term := c.term
	c.term = nil
	c.mu.Unlock()

	c.cancel()
	if r != nil {
		c.finish(r)
	}
	if term != nil {
		if err := term.Dispose(); err != nil {
			return fmt.Errorf("dispose terminal: %w", err)
		}
	}
	return nil
}

// provision returns the managed terminal, recreating it when the environment
// profile differs from the one it was created with.
func (c *Controller) provision(ctx context.Context, p profile) (terminal.Terminal, error) {
	c.mu.Lock()
	term, cur := c.term, c.profile
	c.mu.Unlock()

	if term != nil && cur != p {
		c.log.Debug().Str("terminal", term.ID()).Msg("terminal profile changed, recreating")
		if err := term.Dispose(); err != nil {
			c.log.Warn().Err(err).Msg("failed to dispose terminal")
		}
		term = nil
	}

	if term == nil {
		var err error
		term, err = c.host.CreateTerminal(ctx, terminal.CreateOptions{
			Name: c.cfg.TerminalName,
			Env:  p.env(),
		})
		if err != nil {
			c.mu.Lock()
			c.term = nil
			c.mu.Unlock()
			return nil, err
		}
		c.log.Debug().Str("terminal", term.ID()).Str("prompt_command", p.promptCommand).Bool("vte", p.enableVTE).Msg("terminal created")
	}

	c.mu.Lock()
	c.term = term
	c.profile = p
	c.mu.Unlock()

	term.Show()
	return term, nil
}

func (c *Controller) dispatch(term terminal.Terminal, command string, opts Options, ready bool) error {
	if opts.UseShellIntegration {
		if si := term.ShellIntegration(); ready && si != nil && si.CanExecuteCommand() {
			return si.ExecuteCommand(command)
		}
		emit(c.sinks.OnOutput, FallbackWarning)
		c.stats.RecordFallbackWarning()
	}
	return term.SendText(command)
}

// handleStart is called on a host goroutine and must not block.
func (c *Controller) handleStart(r *run, e terminal.StartEvent) {
	if !terminal.Same(e.Terminal, r.term) || !r.claim() {
		return
	}
	go c.consume(r, e.Execution)
}

// consume reads the whole execution stream, then extracts and reports.
func (c *Controller) consume(r *run, exec terminal.Execution) {
	defer close(r.done)

	var b strings.Builder
	for chunk, err := range exec.Read(c.ctx) {
		if err != nil {
			if errors.Is(err, context.Canceled) {
				c.log.Debug().Str("command", r.command).Msg("execution abandoned")
				return
			}
			c.log.Error().Err(err).Str("command", r.command).Msg("error reading execution stream")
			return
		}
		b.WriteString(chunk)
	}
	output := b.String()

	c.stats.RecordCompletionMarkerCount(marker.CountCompletionMarkers(output))

	res := c.extractor.Extract(output, r.opts.EnableVTEChecks)
	for _, m := range res.Mismatches {
		c.log.Warn().Stringer("tier", m.Tier).Str("regex", m.Regex.String()).Str("index", m.Index.String()).Msg("scan mismatch")
		c.stats.RecordMismatch(m)
	}
	c.stats.Record(res, output)

	c.log.Debug().
		Stringer("tier", res.Tier).
		Float64("regex_us", res.RegexMicros).
		Float64("index_us", res.IndexMicros).
		Msg("extraction complete")

	emit(c.sinks.OnOutput, FormatMatch(res, output))
	emit(c.sinks.OnDebug, c.stats.Render())

	if c.recorder != nil {
		entry := history.NewEntry(r.command, res, c.now())
		if err := c.recorder.Save(c.ctx, entry); err != nil {
			c.log.Warn().Err(err).Msg("failed to save run history")
		}
	}
}

func (c *Controller) handleEnd(r *run, e terminal.EndEvent) {
	if !terminal.Same(e.Terminal, r.term) || !r.claimed() {
		return
	}

	c.mu.Lock()
	if c.current == r {
		c.state = StateCleanup
	}
	c.mu.Unlock()

	<-r.done

	if r.opts.AutoCloseTerminal {
		c.dropTerminal(r.term)
		if err := r.term.Dispose(); err != nil {
			c.log.Warn().Err(err).Msg("failed to dispose terminal")
		}
	}

	c.finish(r)
}

// finish unsubscribes r and returns the controller to idle. r may be nil when
// the run failed before subscribing. Safe to call more than once.
func (c *Controller) finish(r *run) {
	if r != nil {
		r.dispose()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if r != nil && c.current != r {
		return
	}
	c.current = nil
	c.state = StateIdle
	select {
	case <-c.idle:
	default:
		close(c.idle)
	}
}

// dropTerminal forgets term if it is still the managed terminal.
func (c *Controller) dropTerminal(term terminal.Terminal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if terminal.Same(c.term, term) {
		c.term = nil
	}
}

func emit(fn func(string), s string) {
	if fn != nil {
		fn(s)
	}
}
