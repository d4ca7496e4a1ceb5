package intel

import (
	"log/slog"

	"github.com/nstehr/tidewatch/tidewatch-core/channel"
	"github.com/nstehr/tidewatch/tidewatch-core/host"
	"github.com/nstehr/tidewatch/tidewatch-core/model"
)

// PublishStats counts write outcomes of one Publish call.
type PublishStats map[channel.Outcome]int

// Publish shares what the last full refresh sensed: resource sites, contested
// zones with their current owner and enemy bases. Write failures are expected
// and only counted.
func (c *Cache) Publish(w *channel.Writer, team model.Team, cp host.Checkpointer) (PublishStats, error) {
	stats := make(PublishStats)
	s := c.Surroundings

	if err := cp.Checkpoint(c.costs.Publish); err != nil {
		return stats, err
	}
	for _, well := range s.Wells {
		stats[w.PublishWell(well)]++
	}

	if err := cp.Checkpoint(c.costs.Publish); err != nil {
		return stats, err
	}
	for _, z := range s.Islands {
		stats[w.PublishZone(z.Index, z.Loc, z.Owner)]++
	}

	if err := cp.Checkpoint(c.costs.Publish); err != nil {
		return stats, err
	}
	for _, r := range s.Robots {
		if r.Team == team.Opponent() && r.Type == model.Headquarters {
			stats[w.PublishBase(r.Loc, true)]++
		}
	}

	if n := stats[channel.Full]; n > 0 {
		slog.Debug("observations dropped, partition full", "count", n)
	}
	return stats, nil
}
