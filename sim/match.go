package sim

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"math"
	"math/rand"

	"github.com/google/uuid"

	"github.com/nstehr/tidewatch/tidewatch-core/agent"
	"github.com/nstehr/tidewatch/tidewatch-core/channel"
	"github.com/nstehr/tidewatch/tidewatch-core/intel"
	"github.com/nstehr/tidewatch/tidewatch-core/model"
	"github.com/nstehr/tidewatch/tidewatch-core/nav"
	"github.com/nstehr/tidewatch/tidewatch-core/rules"
)

// Setup is everything needed to start a match.
type Setup struct {
	Width     int
	Height    int
	Symmetry  model.Symmetry
	Seed      int64
	Params    Params
	Layout    channel.Layout
	Costs     intel.Costs
	Nav       nav.Config
	Doctrines [2]rules.Doctrine
}

// DefaultSetup is a 40x40 map of random symmetry with every default.
func DefaultSetup(seed int64) Setup {
	return Setup{
		Width:     40,
		Height:    40,
		Seed:      seed,
		Params:    DefaultParams(),
		Layout:    channel.DefaultLayout(),
		Costs:     intel.DefaultCosts(),
		Nav:       nav.DefaultConfig(),
		Doctrines: [2]rules.Doctrine{rules.DefaultDoctrine(), rules.DefaultDoctrine()},
	}
}

// RoundRecord is the trace entry written after every round.
type RoundRecord struct {
	Match     string         `json:"match"`
	Round     int            `json:"round"`
	Robots    []model.Robot  `json:"robots"`
	Zones     []model.Island `json:"zones"`
	Resources [2]Stock       `json:"resources"`
	Channels  [2][]int       `json:"channels"`
	Ticks     map[string]int `json:"ticks"`
}

// Result summarises a finished match. Winner is Neutral for a draw.
type Result struct {
	Match    string         `json:"match"`
	Winner   model.Team     `json:"winner"`
	Rounds   int            `json:"rounds"`
	Reason   string         `json:"reason"`
	Zones    [2]int         `json:"zones"`
	Robots   [2]int         `json:"robots"`
	Faults   int            `json:"faults"`
	Suspends int            `json:"suspends"`
	Overruns int            `json:"overruns"`
	Seed     int64          `json:"seed"`
	Width    int            `json:"width"`
	Height   int            `json:"height"`
	Symmetry model.Symmetry `json:"symmetry"`

	// Events counts what the agents detected, by event kind.
	Events map[string]int `json:"events,omitempty"`
}

type seat struct {
	ctrl  *controller
	agent *agent.Agent
}

// Match drives every robot's agent through the rounds of one game.
type Match struct {
	ID    string
	World *World

	// Record, when set, receives every round as it completes.
	Record func(RoundRecord) error

	setup     Setup
	playbooks [2]*rules.Playbook
	seats     map[int]*seat
	held      [2]int
	faults    int
	suspends  int
	events    map[string]int
	winner    model.Team
	reason    string
}

func NewMatch(s Setup) (*Match, error) {
	if err := s.Params.Validate(); err != nil {
		return nil, fmt.Errorf("params: %w", err)
	}
	if err := s.Layout.Validate(); err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	if zones := 2 * s.Params.Map.ZonesPerSide; zones > s.Layout.Zones.Len() {
		return nil, fmt.Errorf("%d zones do not fit %d zone slots", zones, s.Layout.Zones.Len())
	}

	m, err := GenerateMap(s.Width, s.Height, s.Symmetry, s.Params.Map, rand.New(rand.NewSource(s.Seed)))
	if err != nil {
		return nil, fmt.Errorf("generate map: %w", err)
	}

	mt := &Match{
		ID:     uuid.NewString(),
		World:  NewWorld(m, s.Params, s.Layout),
		setup:  s,
		seats:  make(map[int]*seat),
		events: make(map[string]int),
		winner: model.Neutral,
	}
	for i, d := range s.Doctrines {
		pb, err := rules.NewPlaybook(d)
		if err != nil {
			return nil, fmt.Errorf("team %s playbook: %w", model.Team(i), err)
		}
		mt.playbooks[i] = pb
	}
	slog.Info("match created", "match", mt.ID, "width", s.Width, "height", s.Height,
		"symmetry", m.Symmetry.String(), "zones", len(m.Zones), "wells", len(m.Wells))
	return mt, nil
}

func (m *Match) seatFor(r *robot) *seat {
	if st, ok := m.seats[r.id]; ok {
		return st
	}
	ctrl := &controller{w: m.World, r: r}
	st := &seat{
		ctrl:  ctrl,
		agent: agent.New(ctrl, m.playbooks[r.team], agent.Config{
			Layout: m.setup.Layout,
			Costs:  m.setup.Costs,
			Nav:    m.setup.Nav,
			Seed:   m.setup.Seed,
		}),
	}
	m.seats[r.id] = st
	return st
}

// Done reports whether a team has already won.
func (m *Match) Done() bool { return m.winner != model.Neutral }

// Step plays one round: every robot alive at its start takes one turn in ID
// order, then the world settles.
func (m *Match) Step() RoundRecord {
	w := m.World
	w.startRound()
	ticks := make(map[string]int)

	for _, r := range w.robots {
		if r.dead {
			continue
		}
		st := m.seatFor(r)
		st.ctrl.beginTurn()
		res := st.agent.RunTick()
		ticks[res.Outcome.String()]++
		for _, ev := range res.Events {
			m.events[string(ev.Kind)]++
		}
		switch res.Outcome {
		case agent.Faulted:
			m.faults++
			slog.Error("tick faulted", "match", m.ID, "robot", r.id, "round", w.round, "error", res.Err)
		case agent.Suspended:
			m.suspends++
		}
		if st.ctrl.budget < 0 {
			w.Overruns++
		}
	}

	rec := RoundRecord{
		Match:     m.ID,
		Round:     w.round,
		Robots:    w.Robots(),
		Zones:     w.Zones(),
		Resources: [2]Stock{w.Stock(model.TeamA), w.Stock(model.TeamB)},
		Channels:  [2][]int{w.Channel(model.TeamA).Snapshot(), w.Channel(model.TeamB).Snapshot()},
		Ticks:     ticks,
	}
	w.endRound()
	for id, st := range m.seats {
		if st.ctrl.r.dead {
			delete(m.seats, id)
		}
	}
	m.checkDomination()
	return rec
}

// checkDomination awards the match to a team that has held at least
// WinShare of the zones for WinHoldRounds consecutive rounds.
func (m *Match) checkDomination() {
	w := m.World
	if len(w.zones) == 0 {
		return
	}
	need := int(math.Ceil(w.Params.WinShare * float64(len(w.zones))))
	for _, t := range []model.Team{model.TeamA, model.TeamB} {
		if w.zonesOwned(t) >= need {
			m.held[t]++
		} else {
			m.held[t] = 0
		}
		if m.held[t] >= w.Params.WinHoldRounds {
			m.winner, m.reason = t, "zones held"
			return
		}
	}
}

// Run plays up to rounds rounds, stopping early on a domination win or when
// ctx is cancelled.
func (m *Match) Run(ctx context.Context, rounds int) (Result, error) {
	for range rounds {
		if err := ctx.Err(); err != nil {
			return m.Result(), err
		}
		rec := m.Step()
		if m.Record != nil {
			if err := m.Record(rec); err != nil {
				return m.Result(), fmt.Errorf("record round %d: %w", rec.Round, err)
			}
		}
		if m.Done() {
			break
		}
	}
	res := m.Result()
	slog.Info("match finished", "match", m.ID, "winner", res.Winner.String(), "reason", res.Reason,
		"rounds", res.Rounds, "faults", res.Faults, "overruns", res.Overruns)
	return res, nil
}

// Result scores the match as it stands. Without a domination win the team
// holding more zones wins, then the team with more robots.
func (m *Match) Result() Result {
	w := m.World
	res := Result{
		Match:    m.ID,
		Winner:   m.winner,
		Rounds:   w.round - 1,
		Reason:   m.reason,
		Faults:   m.faults,
		Suspends: m.suspends,
		Overruns: w.Overruns,
		Seed:     m.setup.Seed,
		Width:    w.Map.Terrain.Width,
		Height:   w.Map.Terrain.Height,
		Symmetry: w.Map.Symmetry,
		Events:   maps.Clone(m.events),
	}
	for _, t := range []model.Team{model.TeamA, model.TeamB} {
		res.Zones[t] = w.zonesOwned(t)
		res.Robots[t] = w.count(t)
	}
	if res.Winner != model.Neutral {
		return res
	}
	switch {
	case res.Zones[model.TeamA] != res.Zones[model.TeamB]:
		res.Reason = "more zones"
		res.Winner = model.TeamA
		if res.Zones[model.TeamB] > res.Zones[model.TeamA] {
			res.Winner = model.TeamB
		}
	case res.Robots[model.TeamA] != res.Robots[model.TeamB]:
		res.Reason = "more robots"
		res.Winner = model.TeamA
		if res.Robots[model.TeamB] > res.Robots[model.TeamA] {
			res.Winner = model.TeamB
		}
	default:
		res.Reason = "draw"
	}
	return res
}
