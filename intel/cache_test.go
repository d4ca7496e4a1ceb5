package intel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nstehr/tidewatch/tidewatch-core/channel"
	"github.com/nstehr/tidewatch/tidewatch-core/host"
	"github.com/nstehr/tidewatch/tidewatch-core/model"
)

type fakeSource struct {
	*channel.Array
	reads  map[int]int
	sensed model.Surroundings
	senses int
}

func newFakeSource() *fakeSource {
	return &fakeSource{Array: channel.NewArray(64), reads: make(map[int]int)}
}

func (f *fakeSource) ReadSlot(i int) int {
	f.reads[i]++
	return f.Array.ReadSlot(i)
}

func (f *fakeSource) Sense() model.Surroundings {
	f.senses++
	return f.sensed
}

func (f *fakeSource) OnMap(t model.Tile) bool { return t.X >= 0 && t.Y >= 0 && t.X < 60 && t.Y < 60 }

// budget suspends once remaining drops below a checkpoint's cost.
type budget struct {
	left   int
	checks int
}

func (b *budget) Checkpoint(cost int) error {
	b.checks++
	if b.left < cost {
		return host.ErrSuspended
	}
	b.left -= cost
	return nil
}

func unlimited() *budget { return &budget{left: 1 << 30} }

func TestRefreshDecodesChannel(t *testing.T) {
	src := newFakeSource()
	layout := channel.DefaultLayout()
	w := channel.NewWriter(src, layout)
	w.PublishBase(model.Tile{X: 2, Y: 3}, false)
	w.PublishBase(model.Tile{X: 30, Y: 40}, true)
	w.PublishWell(model.Well{Loc: model.Tile{X: 5, Y: 5}, Kind: model.Mana})
	w.PublishWell(model.Well{Loc: model.Tile{X: 6, Y: 5}, Kind: model.Adamantium})
	w.PublishZone(2, model.Tile{X: 20, Y: 20}, model.Neutral)
	w.PublishSymmetry(model.Vertical)

	c := New(layout, DefaultCosts())
	require.NoError(t, c.Refresh(src, unlimited(), Light))

	assert.Equal(t, []model.Tile{{X: 2, Y: 3}}, c.Bases())
	assert.Equal(t, []model.Tile{{X: 30, Y: 40}}, c.EnemyBases())
	assert.Len(t, c.Wells(), 2)
	assert.Equal(t, []model.Well{{Loc: model.Tile{X: 5, Y: 5}, Kind: model.Mana}}, c.WellsOf(model.Mana))
	assert.Equal(t, []model.Island{{Index: 2, Loc: model.Tile{X: 20, Y: 20}, Owner: model.Neutral}}, c.Zones())
	assert.Equal(t, model.Vertical, c.Symmetry())
	assert.Equal(t, 0, src.senses, "light refresh must not sense")
}

func TestRefreshReadsWriteOnceSlotsUntilKnown(t *testing.T) {
	src := newFakeSource()
	layout := channel.DefaultLayout()
	w := channel.NewWriter(src, layout)
	w.PublishBase(model.Tile{X: 1, Y: 1}, false)
	w.PublishWell(model.Well{Loc: model.Tile{X: 4, Y: 4}, Kind: model.Mana})
	src.reads = make(map[int]int)

	c := New(layout, DefaultCosts())
	require.NoError(t, c.Refresh(src, unlimited(), Light))
	require.NoError(t, c.Refresh(src, unlimited(), Light))

	assert.Equal(t, 1, src.reads[layout.Bases.Start], "known base slot re-read")
	assert.Equal(t, 2, src.reads[layout.Bases.Start+1], "empty base slot should be polled")
	assert.Equal(t, 1, src.reads[layout.Wells.Start])
	assert.Equal(t, 2, src.reads[layout.Wells.Start+1])
	assert.Zero(t, src.reads[layout.Wells.Start+2], "well scan stops at the first empty slot")
	assert.Equal(t, 2, src.reads[layout.Zones.Start], "zones are always re-read")
	assert.Equal(t, 2, src.reads[layout.Symmetry])
}

func TestRefreshTracksZoneOwnerAndSymmetry(t *testing.T) {
	src := newFakeSource()
	layout := channel.DefaultLayout()
	w := channel.NewWriter(src, layout)
	w.PublishZone(0, model.Tile{X: 9, Y: 9}, model.Neutral)

	c := New(layout, DefaultCosts())
	require.NoError(t, c.Refresh(src, unlimited(), Light))
	z, ok := c.Zone(0)
	require.True(t, ok)
	assert.Equal(t, model.Neutral, z.Owner)
	assert.Equal(t, model.Unknown, c.Symmetry())

	w.PublishZone(0, model.Tile{X: 9, Y: 9}, model.TeamA)
	w.PublishSymmetry(model.Rotational)
	require.NoError(t, c.Refresh(src, unlimited(), Light))
	z, _ = c.Zone(0)
	assert.Equal(t, model.TeamA, z.Owner)
	assert.Equal(t, model.Rotational, c.Symmetry())
	assert.Len(t, c.ZonesOwnedBy(model.TeamA), 1)
	assert.Empty(t, c.ZonesOwnedBy(model.Neutral))
}

func TestFullRefreshSenses(t *testing.T) {
	src := newFakeSource()
	src.sensed = model.Surroundings{Round: 7, Wells: []model.Well{{Loc: model.Tile{X: 1, Y: 2}}}}
	c := New(channel.DefaultLayout(), DefaultCosts())

	require.NoError(t, c.Refresh(src, unlimited(), Full))
	assert.Equal(t, 1, src.senses)
	assert.Equal(t, 7, c.Surroundings.Round)
	assert.Equal(t, 1, c.Refreshes[Full])
}

func TestRefreshSuspendsAtCheckpoint(t *testing.T) {
	src := newFakeSource()
	c := New(channel.DefaultLayout(), DefaultCosts())
	b := &budget{left: 250} // enough for the two cheap sections, not the zone scan

	err := c.Refresh(src, b, Full)
	assert.ErrorIs(t, err, host.ErrSuspended)
	assert.Equal(t, 0, src.senses)
	assert.Zero(t, c.Refreshes[Full])
}

func TestPublishSharesSensedObservations(t *testing.T) {
	src := newFakeSource()
	layout := channel.DefaultLayout()
	src.sensed = model.Surroundings{
		Wells:   []model.Well{{Loc: model.Tile{X: 3, Y: 3}, Kind: model.Adamantium}},
		Islands: []model.Island{{Index: 4, Loc: model.Tile{X: 7, Y: 8}, Owner: model.TeamB}},
		Robots: []model.Robot{
			{ID: 1, Team: model.TeamB, Type: model.Headquarters, Loc: model.Tile{X: 50, Y: 50}},
			{ID: 2, Team: model.TeamA, Type: model.Headquarters, Loc: model.Tile{X: 1, Y: 1}},
			{ID: 3, Team: model.TeamB, Type: model.Launcher, Loc: model.Tile{X: 49, Y: 50}},
		},
	}
	c := New(layout, DefaultCosts())
	require.NoError(t, c.Refresh(src, unlimited(), Full))

	w := channel.NewWriter(src, layout)
	stats, err := c.Publish(w, model.TeamA, unlimited())
	require.NoError(t, err)
	assert.Equal(t, 3, stats[channel.Claimed])

	require.NoError(t, c.Refresh(src, unlimited(), Light))
	assert.Equal(t, []model.Tile{{X: 50, Y: 50}}, c.EnemyBases())
	assert.Empty(t, c.Bases(), "own bases are published by the base itself")
	assert.Len(t, c.Wells(), 1)
	z, ok := c.Zone(4)
	require.True(t, ok)
	assert.Equal(t, model.TeamB, z.Owner)

	stats, err = c.Publish(w, model.TeamA, unlimited())
	require.NoError(t, err)
	assert.Equal(t, 2, stats[channel.Duplicate])
	assert.Equal(t, 1, stats[channel.Unchanged])
}
