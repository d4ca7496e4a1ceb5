package rules

import (
	"fmt"

	"github.com/nstehr/tidewatch/tidewatch-core/model"
)

// CompileDoctrine generates every role's rule set from a doctrine.
// All conditions are built via fmt.Sprintf with interpolated values, so the
// compiler never generates invalid expr. Kinds without an entry have no
// behaviour.
func CompileDoctrine(d Doctrine) map[model.RobotType][]*Rule {
	d.Validate()
	return map[model.RobotType][]*Rule{
		model.Headquarters: baseRules(d),
		model.Carrier:      haulerRules(d),
		model.Launcher:     combatRules(d),
		model.Amplifier:    supportRules(d),
	}
}

func baseRules(d Doctrine) []*Rule {
	var rules []*Rule

	rules = append(rules, &Rule{
		Name:         "establish",
		Priority:     1000,
		Category:     "setup",
		Exclusive:    true,
		ConditionSrc: `!Established()`,
		Action:       ActionEstablish,
	})

	rules = append(rules, &Rule{
		Name:         "report-channel",
		Priority:     950,
		Category:     "diagnostics",
		Exclusive:    false,
		ConditionSrc: fmt.Sprintf(`Round() %% %d == 0`, d.DiagnosticsGap),
		Action:       ActionReportChannel,
	})

	rules = append(rules, &Rule{
		Name:         "infer-symmetry",
		Priority:     900,
		Category:     "intel",
		Exclusive:    true,
		ConditionSrc: `EnemyBaseCount() > 0 || WellCount() > 0`,
		Action:       ActionInferSymmetry,
	})

	// Exclusive with spawning: when a token is wanted but unaffordable the
	// base saves instead of producing.
	rules = append(rules, &Rule{
		Name:         "build-anchor",
		Priority:     800,
		Category:     "production",
		Exclusive:    true,
		ConditionSrc: fmt.Sprintf(`Round() > %d && ActionReady() && AnchorsWanted()`, d.AnchorAfter),
		Action:       ActionBuildAnchor,
	})

	if len(d.Opening) > 0 {
		rules = append(rules, &Rule{
			Name:         "spawn-opening",
			Priority:     700,
			Category:     "production",
			Exclusive:    true,
			ConditionSrc: fmt.Sprintf(`ActionReady() && Spawned() < %d`, len(d.Opening)),
			Action:       ActionSpawnOpening,
		})
	}

	rules = append(rules, &Rule{
		Name:         "spawn",
		Priority:     600,
		Category:     "production",
		Exclusive:    true,
		ConditionSrc: `ActionReady()`,
		Action:       ActionSpawn,
	})

	return rules
}

func orientRule() *Rule {
	return &Rule{
		Name:         "orient",
		Priority:     1000,
		Category:     "setup",
		Exclusive:    true,
		ConditionSrc: `!Established()`,
		Action:       ActionOrient,
	}
}

func haulerRules(d Doctrine) []*Rule {
	rules := []*Rule{orientRule()}

	rules = append(rules, &Rule{
		Name:         "retaliate",
		Priority:     950,
		Category:     "combat",
		Exclusive:    false,
		ConditionSrc: fmt.Sprintf(`ActionReady() && EnemiesInRange(%q) > 0`, model.Launcher),
		Action:       ActionRetaliate,
	})

	rules = append(rules, &Rule{
		Name:         "claim-zone",
		Priority:     900,
		Category:     "task",
		Exclusive:    true,
		ConditionSrc: `NeutralZoneKnown() && (HoldingAnchor() || (ActionReady() && AnchorAvailable()))`,
		Action:       ActionClaimZone,
	})

	rules = append(rules, &Rule{
		Name:         "deposit",
		Priority:     800,
		Category:     "task",
		Exclusive:    true,
		ConditionSrc: fmt.Sprintf(`BaseCount() > 0 && (CargoFull() || Goal() == %q)`, GoalDeposit.String()),
		Action:       ActionDeposit,
	})

	rules = append(rules, &Rule{
		Name:         "collect",
		Priority:     700,
		Category:     "task",
		Exclusive:    true,
		ConditionSrc: `!CargoFull()`,
		Action:       ActionCollect,
	})

	return rules
}

func combatRules(d Doctrine) []*Rule {
	rules := []*Rule{orientRule()}

	rules = append(rules, &Rule{
		Name:         "rush",
		Priority:     900,
		Category:     "task",
		Exclusive:    true,
		ConditionSrc: `Rushing()`,
		Action:       ActionRush,
	})

	rules = append(rules, &Rule{
		Name:         "hold-station",
		Priority:     800,
		Category:     "task",
		Exclusive:    true,
		ConditionSrc: `Stationed()`,
		Action:       ActionHoldStation,
	})

	rules = append(rules, &Rule{
		Name:         "seek",
		Priority:     700,
		Category:     "task",
		Exclusive:    true,
		ConditionSrc: `true`,
		Action:       ActionSeek,
	})

	return rules
}

func supportRules(d Doctrine) []*Rule {
	return []*Rule{
		orientRule(),
		{
			Name:         "patrol",
			Priority:     700,
			Category:     "task",
			Exclusive:    true,
			ConditionSrc: `true`,
			Action:       ActionPatrol,
		},
	}
}
