// Package grid provides the tile grid, pathfinding, and line-of-sight tests
// used by the combat engine and the enemy AI.
//
// The grid stores only terrain traversability. Occupancy is derived from
// combatant positions and supplied per query as a Blocker, so there is a
// single source of truth for where combatants stand.
package grid

import "fmt"

// Position is a tile coordinate. X grows rightward, Y grows downward.
type Position struct {
	X int
	Y int
}

// Chebyshev returns the chessboard distance between p and q. Movement and
// attack ranges use this metric because diagonal steps cost the same as
// orthogonal steps (see PathOptions).
func (p Position) Chebyshev(q Position) int {
	dx := abs(p.X - q.X)
	dy := abs(p.Y - q.Y)
	if dx > dy {
		return dx
	}
	return dy
}

// Adjacent reports whether q is one of the eight tiles surrounding p.
//
// Postcondition: returns true iff Chebyshev(p, q) == 1.
func (p Position) Adjacent(q Position) bool {
	return p.Chebyshev(q) == 1
}

// Blocker reports whether a tile is occupied. A nil Blocker means no tile is
// occupied.
type Blocker func(Position) bool

// Grid is a rectangular tile grid with per-tile traversability.
//
// Invariant: width >= 1 and height >= 1.
type Grid struct {
	width   int
	height  int
	blocked []bool
}

// New creates an open grid of the given dimensions.
//
// Precondition: width >= 1 and height >= 1.
// Postcondition: every tile is traversable.
func New(width, height int) (*Grid, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("grid.New: dimensions must be >= 1, got %dx%d", width, height)
	}
	return &Grid{
		width:   width,
		height:  height,
		blocked: make([]bool, width*height),
	}, nil
}

// Width returns the grid width in tiles.
func (g *Grid) Width() int { return g.width }

// Height returns the grid height in tiles.
func (g *Grid) Height() int { return g.height }

// InBounds reports whether p lies inside the grid.
func (g *Grid) InBounds(p Position) bool {
	return p.X >= 0 && p.X < g.width && p.Y >= 0 && p.Y < g.height
}

// SetBlocked marks the terrain at p as impassable (or passable again).
// Out-of-bounds positions are ignored.
func (g *Grid) SetBlocked(p Position, blocked bool) {
	if !g.InBounds(p) {
		return
	}
	g.blocked[p.Y*g.width+p.X] = blocked
}

// Traversable reports whether p is inside the grid and not blocked terrain.
// Occupancy is a separate concern; see Blocker.
func (g *Grid) Traversable(p Position) bool {
	if !g.InBounds(p) {
		return false
	}
	return !g.blocked[p.Y*g.width+p.X]
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
