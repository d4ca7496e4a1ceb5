package rules

import (
	"errors"
	"fmt"
	"sort"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/nstehr/tidewatch/tidewatch-core/channel"
	"github.com/nstehr/tidewatch/tidewatch-core/host"
	"github.com/nstehr/tidewatch/tidewatch-core/model"
)

// Engine runs one role's compiled rules against an agent each tick.
// Rules fire in priority order; exclusive rules block lower-priority rules
// in the same category, so a robot commits to one task per tick. Compiled
// programs are read-only and an Engine may be shared by every agent of a role.
type Engine struct {
	rules []*Rule
}

// NewEngine compiles all rule conditions into expr bytecode and sorts by priority.
func NewEngine(rules []*Rule) (*Engine, error) {
	compiled, err := compileRules(rules)
	if err != nil {
		return nil, err
	}
	return &Engine{rules: compiled}, nil
}

// Rules returns the rule names in evaluation order.
func (e *Engine) Rules() []string {
	names := make([]string, len(e.rules))
	for i, r := range e.rules {
		names[i] = r.Name
	}
	return names
}

// Evaluate runs all rules for one tick and returns the names of the rules
// that fired. A suspended action stops evaluation and ErrSuspended is
// returned as is; any other action error ends the tick as a fault.
func (e *Engine) Evaluate(env RuleEnv) ([]string, error) {
	fired := make(map[string]bool) // category → exclusive rule already fired
	var names []string

	for _, r := range e.rules {
		if fired[r.Category] {
			continue
		}

		result, err := vm.Run(r.program, env)
		if err != nil {
			env.Ctx.Log.Warn("rule condition error", "rule", r.Name, "error", err)
			continue
		}

		match, ok := result.(bool)
		if !ok || !match {
			continue
		}

		names = append(names, r.Name)
		env.Ctx.Log.Debug("rule fired", "rule", r.Name, "priority", r.Priority, "category", r.Category)

		if err := r.Action(env); err != nil {
			if errors.Is(err, host.ErrSuspended) {
				return names, err
			}
			return names, fmt.Errorf("rule %q: %w", r.Name, err)
		}

		if r.Exclusive {
			fired[r.Category] = true
		}
	}

	if len(names) == 0 {
		logIdleDiagnostics(env)
	}
	return names, nil
}

// logIdleDiagnostics dumps what the robot knows when zero rules fire.
// Throttled to one dump per DiagnosticsGap rounds.
func logIdleDiagnostics(env RuleEnv) {
	c := env.Ctx
	round := c.Host.Round()
	if c.Memory.LastDiagnostics != 0 && round-c.Memory.LastDiagnostics < c.Doctrine.DiagnosticsGap {
		return
	}
	c.Memory.LastDiagnostics = round

	c.Log.Warn("idle diagnostics",
		"round", round,
		"actionReady", c.Host.ActionReady(),
		"movementReady", c.Host.MovementReady(),
		"cargo", env.Cargo(),
		"anchors", c.Host.Anchors(),
		"goal", c.Memory.Goal.Kind.String(),
	)
}

// logChannelDiagnostics reports channel occupancy from a base's point of
// view, every DiagnosticsGap rounds.
func logChannelDiagnostics(env RuleEnv) {
	c := env.Ctx
	round := c.Host.Round()
	if round%c.Doctrine.DiagnosticsGap != 0 {
		return
	}
	l := c.Intel.Layout()
	c.Log.Info("channel diagnostics",
		"round", round,
		"bases", len(c.Intel.Bases()),
		"enemyBases", len(c.Intel.EnemyBases()),
		"wells", fmt.Sprintf("%d/%d", len(c.Intel.Wells()), l.Wells.Len()),
		"zones", len(c.Intel.Zones()),
		"neutralZones", len(c.Intel.ZonesOwnedBy(model.Neutral)),
		"symmetry", c.Intel.Symmetry().String(),
		"full", partitionsFull(c),
	)
}

func partitionsFull(c *Context) []string {
	l := c.Intel.Layout()
	var full []string
	if len(c.Intel.Bases()) == l.Bases.Len() {
		full = append(full, channel.KindBase.String())
	}
	if len(c.Intel.EnemyBases()) == l.EnemyBases.Len() {
		full = append(full, channel.KindEnemyBase.String())
	}
	if len(c.Intel.Wells()) == l.Wells.Len() {
		full = append(full, channel.KindWell.String())
	}
	return full
}

func compileRules(rules []*Rule) ([]*Rule, error) {
	for _, r := range rules {
		prog, err := expr.Compile(r.ConditionSrc, expr.Env(RuleEnv{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compile rule %q: %w", r.Name, err)
		}
		r.program = prog
	}
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority > rules[j].Priority
	})
	return rules, nil
}
