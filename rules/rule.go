package rules

import "github.com/expr-lang/expr/vm"

// ActionFunc carries out a rule's behaviour for one agent. Returning
// host.ErrSuspended ends the tick; the agent resumes next tick.
type ActionFunc func(env RuleEnv) error

// Rule is the atomic unit of agent behavior: a condition → action pair.
// The engine evaluates rules by priority and uses Category + Exclusive so a
// robot commits to a single task per tick.
type Rule struct {
	Name         string      // human-readable identifier
	Priority     int         // higher = evaluated first
	Category     string      // grouping for exclusive semantics
	Exclusive    bool        // if true, blocks lower-priority rules in same category
	ConditionSrc string      // expr source
	program      *vm.Program // compiled bytecode
	Action       ActionFunc
}
