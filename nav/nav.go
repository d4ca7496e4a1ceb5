// Package nav moves a robot toward a target one step at a time using a
// bounded rotational wall-hug: head straight for the target, rotate clockwise
// around obstacles, then turn back toward the target after each detour step.
package nav

import (
	"log/slog"

	"github.com/nstehr/tidewatch/tidewatch-core/host"
	"github.com/nstehr/tidewatch/tidewatch-core/model"
)

// Config bounds a single navigation trip.
type Config struct {
	MaxMoves    int `yaml:"max_moves" json:"max_moves"`
	HoldEvery   int `yaml:"hold_every" json:"hold_every"`
	ArrivalCost int `yaml:"arrival_cost" json:"arrival_cost"`
	StepCost    int `yaml:"step_cost" json:"step_cost"`
}

func DefaultConfig() Config {
	return Config{MaxMoves: 60, HoldEvery: 4, ArrivalCost: 50, StepCost: 200}
}

// Status is the result of a trip.
type Status int

const (
	OnTarget Status = iota + 1
	Adjacent        // next to the target, which is occupied
	Failed          // move cap exhausted or aborted
)

func (s Status) String() string {
	switch s {
	case OnTarget:
		return "on_target"
	case Adjacent:
		return "adjacent"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Options tune one MoveTo call.
type Options struct {
	// Tolerance 0 means the exact tile; otherwise any tile within
	// squared distance (Tolerance+1)².
	Tolerance int
	// IgnoreCurrents lets the robot step against a tile's current.
	IgnoreCurrents bool
	// Skirmish is tried once per iteration while the action cooldown is ready.
	Skirmish func() error
	// Urgent aborts the trip when it flips from false to true.
	Urgent func() bool
	// Hold ends the tick instead of stepping.
	Hold func() bool
}

// Trip is the resumable state of one navigation. It survives a suspended
// tick so the next tick continues with the same heading and move count.
type Trip struct {
	Target    model.Tile
	Tolerance int
	Moves     int

	to, move     model.Direction
	stalled      int
	urgentBefore bool
}

// Navigator is owned by one agent.
type Navigator struct {
	cfg       Config
	ctrl      host.Controller
	cp        host.Checkpointer
	afterMove func() error
	trip      *Trip
}

// New returns a navigator. afterMove runs after each successful step; the
// agent uses it to merge channel writes into its cache between steps.
func New(ctrl host.Controller, cp host.Checkpointer, cfg Config, afterMove func() error) *Navigator {
	return &Navigator{cfg: cfg, ctrl: ctrl, cp: cp, afterMove: afterMove}
}

// Current returns the trip in progress, if any.
func (n *Navigator) Current() *Trip { return n.trip }

// Cancel forgets the trip in progress.
func (n *Navigator) Cancel() { n.trip = nil }

func (n *Navigator) resume(target model.Tile, opts Options) *Trip {
	if t := n.trip; t != nil && t.Target == target && t.Tolerance == opts.Tolerance {
		return t
	}
	d := n.ctrl.Location().DirectionTo(target)
	t := &Trip{Target: target, Tolerance: opts.Tolerance, to: d, move: d}
	t.urgentBefore = opts.Urgent != nil && opts.Urgent()
	n.trip = t
	return t
}

// MoveTo drives the robot toward target. It returns ErrSuspended when the
// tick must end first (budget or movement exhausted); calling MoveTo with the
// same target on a later tick resumes the trip. Only successful steps count
// against MaxMoves, except that a full sweep of all 8 headings without a
// legal step counts as one, so an enclosed robot fails instead of spinning.
func (n *Navigator) MoveTo(target model.Tile, opts Options) (Status, error) {
	t := n.resume(target, opts)

	for t.Moves < n.cfg.MaxMoves {
		if opts.Urgent != nil && !t.urgentBefore && opts.Urgent() {
			slog.Debug("navigation aborted, urgency changed", "target", target, "moves", t.Moves)
			n.trip = nil
			return Failed, nil
		}
		if opts.Skirmish != nil && n.ctrl.ActionReady() {
			if err := opts.Skirmish(); err != nil {
				return 0, err
			}
		}

		if err := n.cp.Checkpoint(n.cfg.ArrivalCost); err != nil {
			return 0, err
		}
		if st, ok := n.arrived(t); ok {
			n.trip = nil
			return st, nil
		}

		if err := n.cp.Checkpoint(n.cfg.StepCost); err != nil {
			return 0, err
		}
		if opts.Hold != nil && opts.Hold() {
			return 0, host.ErrSuspended
		}
		if n.canStep(t.move, opts) && n.ctrl.Perform(host.Move(t.move)) == nil {
			t.Moves++
			t.stalled = 0
			if n.afterMove != nil {
				if err := n.afterMove(); err != nil {
					return 0, err
				}
			}
			if t.move != t.to {
				t.move = t.move.RotateLeft()
			} else {
				t.to = n.ctrl.Location().DirectionTo(target)
				t.move = t.to
			}
			continue
		}
		if !n.ctrl.MovementReady() {
			return 0, host.ErrSuspended
		}
		t.move = t.move.RotateRight()
		t.stalled++
		if t.stalled >= len(model.Compass) {
			t.stalled = 0
			t.Moves++
		}
	}

	slog.Debug("navigation failed, move cap reached", "target", target, "cap", n.cfg.MaxMoves)
	n.trip = nil
	return Failed, nil
}

func (n *Navigator) arrived(t *Trip) (Status, bool) {
	loc := n.ctrl.Location()
	if t.Tolerance > 0 {
		r := t.Tolerance + 1
		if loc.DistanceSquaredTo(t.Target) <= r*r {
			return OnTarget, true
		}
		return 0, false
	}
	if loc == t.Target {
		return OnTarget, true
	}
	if loc.IsAdjacentTo(t.Target) && n.ctrl.IsOccupied(t.Target) {
		return Adjacent, true
	}
	return 0, false
}

// canStep refuses to walk straight into a current pushing back at us.
func (n *Navigator) canStep(d model.Direction, opts Options) bool {
	if d == model.Center || !n.ctrl.CanPerform(host.Move(d)) {
		return false
	}
	if opts.IgnoreCurrents {
		return true
	}
	info, ok := n.ctrl.SenseTile(n.ctrl.Location().Add(d))
	return !ok || info.Current != d.Opposite()
}
