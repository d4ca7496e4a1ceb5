package rules

import (
	"fmt"
	"log/slog"

	"github.com/nstehr/tidewatch/tidewatch-core/model"
)

// Playbook holds one compiled Engine per robot kind. It is built once per
// team and shared by every agent on that team.
type Playbook struct {
	Doctrine Doctrine
	engines  map[model.RobotType]*Engine
}

// NewPlaybook validates d and compiles every role's rules.
func NewPlaybook(d Doctrine) (*Playbook, error) {
	d.Validate()
	pb := &Playbook{Doctrine: d, engines: make(map[model.RobotType]*Engine)}
	for rt, rules := range CompileDoctrine(d) {
		e, err := NewEngine(rules)
		if err != nil {
			return nil, fmt.Errorf("compile %s rules: %w", rt, err)
		}
		pb.engines[rt] = e
	}
	slog.Debug("playbook compiled", "doctrine", d.Name, "roles", len(pb.engines))
	return pb, nil
}

// Engine returns the rule engine for a kind, or nil when the kind has no
// behaviour.
func (p *Playbook) Engine(rt model.RobotType) *Engine {
	return p.engines[rt]
}
