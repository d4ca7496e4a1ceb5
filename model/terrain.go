package model

// TerrainType classifies a single map tile.
type TerrainType byte

const (
	Open    TerrainType = 0 // passable ground
	Wall    TerrainType = 1 // impassable
	Current TerrainType = 2 // passable; pushes robots along its direction
)

// TileInfo is what a robot learns by sensing one tile.
type TileInfo struct {
	Passable bool
	Current  Direction // Center when the tile has no current
}

// Terrain is the full-resolution map owned by the host. Agents never see it
// directly; they only get TileInfo for tiles within sensing range.
type Terrain struct {
	Width    int
	Height   int
	Grid     []TerrainType // row-major: Grid[y*Width + x]
	Currents []Direction   // parallel to Grid, Center where no current
}

// NewTerrain returns an all-open terrain.
func NewTerrain(width, height int) *Terrain {
	return &Terrain{
		Width:    width,
		Height:   height,
		Grid:     make([]TerrainType, width*height),
		Currents: make([]Direction, width*height),
	}
}

// OnMap reports whether t is inside the map bounds.
func (g *Terrain) OnMap(t Tile) bool {
	return t.X >= 0 && t.X < g.Width && t.Y >= 0 && t.Y < g.Height
}

// At returns the terrain type at t. Off-map tiles read as Wall.
func (g *Terrain) At(t Tile) TerrainType {
	if !g.OnMap(t) {
		return Wall
	}
	return g.Grid[t.Y*g.Width+t.X]
}

// Set assigns a terrain type; currents are cleared unless typ is Current.
func (g *Terrain) Set(t Tile, typ TerrainType, current Direction) {
	if !g.OnMap(t) {
		return
	}
	i := t.Y*g.Width + t.X
	g.Grid[i] = typ
	if typ == Current {
		g.Currents[i] = current
	} else {
		g.Currents[i] = Center
	}
}

// Info returns the sensed view of tile t.
func (g *Terrain) Info(t Tile) TileInfo {
	if !g.OnMap(t) {
		return TileInfo{}
	}
	i := t.Y*g.Width + t.X
	return TileInfo{
		Passable: g.Grid[i] != Wall,
		Current:  g.Currents[i],
	}
}

// Center returns the middle tile of the map.
func (g *Terrain) Center() Tile {
	return Tile{X: g.Width / 2, Y: g.Height / 2}
}
