package agent

import (
	"fmt"
	"sort"

	"github.com/nstehr/tidewatch/tidewatch-core/model"
	"github.com/nstehr/tidewatch/tidewatch-core/rules"
)

// EventKind identifies a change in what the agent knows that is worth a log
// line and a counter.
type EventKind string

const (
	EventUrgencyStarted      EventKind = "urgency_started"
	EventEnemyBaseDiscovered EventKind = "enemy_base_discovered"
	EventSymmetryResolved    EventKind = "symmetry_resolved"
	EventZoneCaptured        EventKind = "zone_captured"
	EventZoneLost            EventKind = "zone_lost"
)

// Event is detected by diffing consecutive snapshots of the agent's cache.
type Event struct {
	Kind   EventKind
	Round  int
	Detail string
}

// stateSnapshot captures the diffable fields after a tick's refresh.
type stateSnapshot struct {
	round      int
	rushing    bool
	enemyBases map[model.Tile]bool
	symmetry   model.Symmetry
	zoneOwners map[int]model.Team
}

func takeSnapshot(c *rules.Context) stateSnapshot {
	snap := stateSnapshot{
		round:      c.Host.Round(),
		rushing:    c.Memory.RushRounds > 0 && c.Rushing(),
		enemyBases: make(map[model.Tile]bool),
		symmetry:   c.Intel.Symmetry(),
		zoneOwners: make(map[int]model.Team),
	}
	for _, b := range c.Intel.EnemyBases() {
		snap.enemyBases[b] = true
	}
	for _, z := range c.Intel.Zones() {
		snap.zoneOwners[z.Index] = z.Owner
	}
	return snap
}

// detectEvents compares cur against the previous snapshot. The first tick
// has nothing to compare with and yields no events.
func detectEvents(cur stateSnapshot, team model.Team, prev *stateSnapshot) []Event {
	if prev == nil {
		return nil
	}
	var events []Event
	add := func(kind EventKind, format string, args ...any) {
		events = append(events, Event{Kind: kind, Round: cur.round, Detail: fmt.Sprintf(format, args...)})
	}

	if prev.rushing && !cur.rushing {
		add(EventUrgencyStarted, "rush phase over at round %d", cur.round)
	}

	var found []model.Tile
	for b := range cur.enemyBases {
		if !prev.enemyBases[b] {
			found = append(found, b)
		}
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].X != found[j].X {
			return found[i].X < found[j].X
		}
		return found[i].Y < found[j].Y
	})
	for _, b := range found {
		add(EventEnemyBaseDiscovered, "enemy base at %v", b)
	}

	if prev.symmetry == model.Unknown && cur.symmetry != model.Unknown {
		add(EventSymmetryResolved, "map is %s", cur.symmetry)
	}

	zones := make([]int, 0, len(cur.zoneOwners))
	for idx := range cur.zoneOwners {
		zones = append(zones, idx)
	}
	sort.Ints(zones)
	for _, idx := range zones {
		owner := cur.zoneOwners[idx]
		was, known := prev.zoneOwners[idx]
		switch {
		case owner == team && (!known || was != team):
			add(EventZoneCaptured, "zone %d now held by %s", idx, team)
		case known && was == team && owner != team:
			add(EventZoneLost, "zone %d lost to %s", idx, owner)
		}
	}
	return events
}
