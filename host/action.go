package host

import (
	"fmt"

	"github.com/nstehr/tidewatch/tidewatch-core/model"
)

// ActionKind enumerates the interactions a robot can ask the host for.
type ActionKind int

const (
	ActMove ActionKind = iota + 1
	ActAttack
	ActBuildRobot
	ActBuildAnchor
	ActTakeAnchor
	ActPlaceAnchor
	ActCollect
	ActTransfer
)

var actionNames = map[ActionKind]string{
	ActMove:        "move",
	ActAttack:      "attack",
	ActBuildRobot:  "build_robot",
	ActBuildAnchor: "build_anchor",
	ActTakeAnchor:  "take_anchor",
	ActPlaceAnchor: "place_anchor",
	ActCollect:     "collect",
	ActTransfer:    "transfer",
}

func (k ActionKind) String() string {
	if s, ok := actionNames[k]; ok {
		return s
	}
	return "unknown"
}

// IsMovement reports whether the action consumes the movement cooldown
// rather than the action cooldown.
func (k ActionKind) IsMovement() bool { return k == ActMove }

// Action is a single request to the host. Only the fields relevant to Kind
// are read.
type Action struct {
	Kind     ActionKind         `json:"kind"`
	Dir      model.Direction    `json:"dir,omitempty"`
	Target   model.Tile         `json:"target"`
	Robot    model.RobotType    `json:"robot,omitempty"`
	Resource model.ResourceKind `json:"resource,omitempty"`
	Amount   int                `json:"amount,omitempty"`
}

func (a Action) String() string {
	switch a.Kind {
	case ActMove:
		return fmt.Sprintf("move %s", a.Dir)
	case ActBuildRobot:
		return fmt.Sprintf("build %s at %v", a.Robot, a.Target)
	case ActTransfer:
		return fmt.Sprintf("transfer %d %s to %v", a.Amount, a.Resource, a.Target)
	case ActBuildAnchor, ActPlaceAnchor:
		return a.Kind.String()
	default:
		return fmt.Sprintf("%s %v", a.Kind, a.Target)
	}
}

func Move(d model.Direction) Action { return Action{Kind: ActMove, Dir: d} }

func Attack(t model.Tile) Action { return Action{Kind: ActAttack, Target: t} }

func BuildRobot(rt model.RobotType, at model.Tile) Action {
	return Action{Kind: ActBuildRobot, Robot: rt, Target: at}
}

func BuildAnchor() Action { return Action{Kind: ActBuildAnchor} }

// TakeAnchor picks up a claim token from the base at t.
func TakeAnchor(base model.Tile) Action { return Action{Kind: ActTakeAnchor, Target: base} }

// PlaceAnchor claims the zone the robot is standing on.
func PlaceAnchor() Action { return Action{Kind: ActPlaceAnchor} }

// Collect gathers as much as possible from the well at t.
func Collect(well model.Tile) Action { return Action{Kind: ActCollect, Target: well} }

func Transfer(to model.Tile, kind model.ResourceKind, amount int) Action {
	return Action{Kind: ActTransfer, Target: to, Resource: kind, Amount: amount}
}

// TryPerform issues a only if the host affirms it is legal. A refusal after
// a positive legality check is swallowed: it is treated as a no-op.
func TryPerform(c Controller, a Action) bool {
	if !c.CanPerform(a) {
		return false
	}
	return c.Perform(a) == nil
}
