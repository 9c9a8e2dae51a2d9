package failover

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/angeloszaimis/ober/internal/announce"
	"github.com/angeloszaimis/ober/internal/healthcheck"
	"github.com/angeloszaimis/ober/internal/hysteresis"
)

var (
	ErrTerminated      = errors.New("failover controller terminated")
	ErrInvalidInterval = errors.New("poll interval must be longer than the probe timeout")
)

// Prober checks the local proxy once. *healthcheck.Probe satisfies it.
type Prober interface {
	Check(ctx context.Context) healthcheck.Observation
}

// Emitter writes route commands. *announce.Emitter satisfies it.
type Emitter interface {
	Emit(state hysteresis.State) (int, error)
	WithdrawAll() (int, error)
}

// Recorder receives metrics. *metrics.Metrics satisfies it.
type Recorder interface {
	ObserveProbe(healthy bool, latency time.Duration, answered bool)
	RecordTransition(state string)
	RecordCommands(action string, n int)
	SetPhase(phase string)
}

// Config holds the poll interval and the rise/fall thresholds.
type Config struct {
	Interval time.Duration
	Rise     int
	Fall     int
}

// Option customises a Controller built by New.
type Option func(*Controller)

// WithTicker replaces the real ticker, for driving the loop by hand.
func WithTicker(f TickerFunc) Option {
	return func(c *Controller) {
		c.newTicker = f
	}
}

// WithRecorder reports probes, transitions and phases to r.
func WithRecorder(r Recorder) Option {
	return func(c *Controller) {
		c.recorder = r
	}
}

// WithLogger sets the logger; slog.Default is used otherwise.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// Controller ties probe, hysteresis and emitter together. All of its
// state is owned by the goroutine calling Run (or Step and Drain), so it
// holds no locks.
type Controller struct {
	interval  time.Duration
	prober    Prober
	emitter   Emitter
	counter   *hysteresis.Counter
	phase     Phase
	newTicker TickerFunc
	recorder  Recorder
	logger    *slog.Logger
}

// New builds a running controller with unknown health. It fails with
// ErrInvalidInterval unless the interval exceeds healthcheck.Timeout.
func New(cfg Config, prober Prober, emitter Emitter, opts ...Option) (*Controller, error) {
	if cfg.Interval <= healthcheck.Timeout {
		return nil, fmt.Errorf("%w: interval %s, probe timeout %s",
			ErrInvalidInterval, cfg.Interval, healthcheck.Timeout)
	}

	c := &Controller{
		interval:  cfg.Interval,
		prober:    prober,
		emitter:   emitter,
		counter:   hysteresis.NewCounter(cfg.Rise, cfg.Fall),
		phase:     PhaseRunning,
		newTicker: newRealTicker,
		recorder:  nopRecorder{},
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.recorder.SetPhase(c.phase.String())
	return c, nil
}

// Run polls until ctx is cancelled, then drains and returns nil. A
// cancelled ctx interrupts the wait for the next tick at once. Run returns
// an error only when the announcer can no longer be written to.
func (c *Controller) Run(ctx context.Context) error {
	if c.phase != PhaseRunning {
		return ErrTerminated
	}

	c.logger.Info("Failover controller started",
		slog.Duration("interval", c.interval),
		slog.Duration("probe_timeout", healthcheck.Timeout))

	ticker := c.newTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return c.Drain()

		case <-ticker.C():
			if ctx.Err() != nil {
				return c.Drain()
			}
			if err := c.Step(ctx); err != nil {
				c.setPhase(PhaseTerminated)
				return err
			}
		}
	}
}

// Step runs one probe, feeds the counter and emits on a flip. A probe cut
// short by ctx is discarded.
func (c *Controller) Step(ctx context.Context) error {
	if c.phase != PhaseRunning {
		return ErrTerminated
	}

	obs := c.prober.Check(ctx)
	if ctx.Err() != nil {
		return nil
	}

	c.recorder.ObserveProbe(obs.Healthy, obs.Latency, obs.StatusCode != 0)
	if !obs.Healthy {
		c.logger.Debug("Probe failed",
			slog.Duration("latency", obs.Latency),
			slog.Any("err", obs.Err))
	}

	state, changed := c.counter.Observe(obs.Healthy)
	if !changed {
		return nil
	}

	if state == hysteresis.StateUp {
		c.logger.Info("Proxy is healthy, announcing routes")
	} else {
		c.logger.Warn("Proxy is down, withdrawing routes")
	}
	c.recorder.RecordTransition(state.String())

	n, err := c.emitter.Emit(state)
	if action, ok := announce.ActionFor(state); ok {
		c.recorder.RecordCommands(string(action), n)
	}
	if err != nil {
		return fmt.Errorf("emit %s: %w", state, err)
	}

	return nil
}

// Drain withdraws every route whatever the last known health and
// terminates the controller. Only the first call does anything.
func (c *Controller) Drain() error {
	if c.phase != PhaseRunning {
		return nil
	}

	c.setPhase(PhaseDraining)
	c.logger.Info("Draining, withdrawing all routes",
		slog.String("last_health", c.counter.State().String()))

	n, err := c.emitter.WithdrawAll()
	c.recorder.RecordCommands(string(announce.ActionWithdraw), n)

	c.setPhase(PhaseTerminated)
	if err != nil {
		return fmt.Errorf("withdraw on drain: %w", err)
	}

	c.logger.Info("Drain complete", slog.Int("withdrawn", n))
	return nil
}

// Phase returns the lifecycle phase.
func (c *Controller) Phase() Phase {
	return c.phase
}

// Health returns the last debounced health state.
func (c *Controller) Health() hysteresis.State {
	return c.counter.State()
}

func (c *Controller) setPhase(p Phase) {
	c.phase = p
	c.recorder.SetPhase(p.String())
}

type nopRecorder struct{}

func (nopRecorder) ObserveProbe(bool, time.Duration, bool) {}
func (nopRecorder) RecordTransition(string)                {}
func (nopRecorder) RecordCommands(string, int)             {}
func (nopRecorder) SetPhase(string)                        {}
