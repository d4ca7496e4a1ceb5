package agent

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"runtime/debug"

	"github.com/nstehr/tidewatch/tidewatch-core/channel"
	"github.com/nstehr/tidewatch/tidewatch-core/host"
	"github.com/nstehr/tidewatch/tidewatch-core/intel"
	"github.com/nstehr/tidewatch/tidewatch-core/nav"
	"github.com/nstehr/tidewatch/tidewatch-core/rules"
)

// Outcome is how a tick ended.
type Outcome int

const (
	Completed Outcome = iota
	Suspended
	Faulted
)

func (o Outcome) String() string {
	switch o {
	case Completed:
		return "completed"
	case Suspended:
		return "suspended"
	case Faulted:
		return "faulted"
	default:
		return "unknown"
	}
}

// TickResult is what the host gets back from RunTick. Err is set only for
// Faulted ticks.
type TickResult struct {
	Round   int
	Outcome Outcome
	Fired   []string
	Events  []Event
	Err     error
}

// Config is the per-match tuning every agent is built with.
type Config struct {
	Layout channel.Layout
	Costs  intel.Costs
	Nav    nav.Config
	Seed   int64
}

// Stats counts tick outcomes and detected events over the agent's life.
type Stats struct {
	Ticks     int
	Completed int
	Suspended int
	Faulted   int
	Events    map[EventKind]int
}

func (s *Stats) record(res TickResult) {
	s.Ticks++
	switch res.Outcome {
	case Completed:
		s.Completed++
	case Suspended:
		s.Suspended++
	case Faulted:
		s.Faulted++
	}
	for _, ev := range res.Events {
		if s.Events == nil {
			s.Events = make(map[EventKind]int)
		}
		s.Events[ev.Kind]++
	}
}

// budget turns the host's remaining compute allowance into checkpoints.
type budget struct {
	ctrl host.Controller
}

func (b budget) Checkpoint(cost int) error {
	if b.ctrl.BudgetLeft() < cost {
		return host.ErrSuspended
	}
	return nil
}

// Agent owns the decision-making for a single robot. It is driven by the
// host through RunTick, once per round.
type Agent struct {
	ctx    *rules.Context
	engine *rules.Engine
	prev   *stateSnapshot

	Stats Stats
}

func New(ctrl host.Controller, pb *rules.Playbook, cfg Config) *Agent {
	log := slog.With("robot", ctrl.ID(), "type", string(ctrl.Type()), "team", ctrl.Team().String())
	c := &rules.Context{
		Host:     ctrl,
		Intel:    intel.New(cfg.Layout, cfg.Costs),
		Writer:   channel.NewWriter(ctrl, cfg.Layout),
		NavCfg:   cfg.Nav,
		Budget:   budget{ctrl: ctrl},
		Doctrine: pb.Doctrine,
		Rand:     rand.New(rand.NewSource(cfg.Seed + int64(ctrl.ID()))),
		Log:      log,
	}
	c.Nav = nav.New(ctrl, c.Budget, c.NavCfg, c.Resync)
	return &Agent{ctx: c, engine: pb.Engine(ctrl.Type())}
}

// Context exposes the agent's state for the harness and tests.
func (a *Agent) Context() *rules.Context { return a.ctx }

// RunTick runs one round of decision logic. It never panics: a panic or an
// unexpected error ends the tick as Faulted and the next tick starts over
// from a full refresh.
func (a *Agent) RunTick() (res TickResult) {
	c := a.ctx
	res.Round = c.Host.Round()

	defer func() {
		if r := recover(); r != nil {
			res.Outcome = Faulted
			res.Err = fmt.Errorf("panic: %v", r)
			c.Log.Error("tick panicked", "round", res.Round, "panic", r, "stack", string(debug.Stack()))
		}
		a.Stats.record(res)
	}()

	err := a.tick(&res)
	switch {
	case err == nil:
		res.Outcome = Completed
	case errors.Is(err, host.ErrSuspended):
		res.Outcome = Suspended
		c.Log.Debug("tick suspended", "round", res.Round, "budget", c.Host.BudgetLeft())
	default:
		res.Outcome = Faulted
		res.Err = err
		c.Log.Error("tick faulted", "round", res.Round, "error", err)
	}
	return res
}

func (a *Agent) tick(res *TickResult) error {
	c := a.ctx
	if err := c.Intel.Refresh(c.Host, c.Budget, intel.Full); err != nil {
		return err
	}
	if rules.IsMobile(c.Host.Type()) {
		if err := c.Publish(); err != nil {
			return err
		}
	}

	snap := takeSnapshot(c)
	res.Events = detectEvents(snap, c.Host.Team(), a.prev)
	a.prev = &snap
	for _, ev := range res.Events {
		c.Log.Info("event", "kind", string(ev.Kind), "round", ev.Round, "detail", ev.Detail)
	}

	if a.engine == nil {
		return nil
	}
	fired, err := a.engine.Evaluate(rules.RuleEnv{Ctx: c})
	res.Fired = fired
	return err
}
