package grid

import "container/heap"

// Cost model: every step costs 1, orthogonal or diagonal. Ranges and path
// budgets are therefore Chebyshev distances when diagonals are allowed. This
// choice is fixed for a build; changing it requires retuning AP budgets.
const stepCost = 1

// PathOptions controls FindPath and ReachableTiles.
type PathOptions struct {
	// MaxCost is the AP budget. Paths costing more are unreachable.
	// A negative MaxCost means no budget.
	MaxCost int
	// AllowDiagonals enables 8-way movement. Diagonal steps through a
	// blocked orthogonal corner are never taken.
	AllowDiagonals bool
	// Occupied marks tiles blocked by living combatants. May be nil.
	// The mover's own tile must not be marked.
	Occupied Blocker
}

// Path is the result of a FindPath call.
type Path struct {
	// Reachable is true when a path within budget exists.
	Reachable bool
	// Tiles is the step sequence, excluding the origin and ending at the
	// destination. Empty when from == to.
	Tiles []Position
	// Cost is the total AP cost of the path.
	Cost int
}

// ReachableTile is one entry of the frontier returned by ReachableTiles.
type ReachableTile struct {
	Position Position
	Cost     int
}

var orthoDirs = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

var allDirs = [8][2]int{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

type pathNode struct {
	pos    Position
	g, h   int
	parent *pathNode
	index  int // heap index
}

type openList []*pathNode

func (ol openList) Len() int            { return len(ol) }
func (ol openList) Less(i, j int) bool  { return ol[i].g+ol[i].h < ol[j].g+ol[j].h }
func (ol openList) Swap(i, j int)       { ol[i], ol[j] = ol[j], ol[i]; ol[i].index = i; ol[j].index = j }
func (ol *openList) Push(x interface{}) { n := x.(*pathNode); n.index = len(*ol); *ol = append(*ol, n) }
func (ol *openList) Pop() interface{} {
	old := *ol
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*ol = old[:len(old)-1]
	return n
}

// passable reports whether p can be entered by the mover.
func passable(g *Grid, p Position, occupied Blocker) bool {
	if !g.Traversable(p) {
		return false
	}
	return occupied == nil || !occupied(p)
}

// heuristic is admissible for the unit-cost model: Chebyshev when moving
// 8-way, Manhattan when moving 4-way.
func heuristic(a, b Position, diagonals bool) int {
	if diagonals {
		return a.Chebyshev(b)
	}
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

// FindPath searches for the cheapest path from from to to using A*.
//
// The origin is never checked for occupancy (the mover stands there); the
// destination and every intermediate tile must be traversable and
// unoccupied. from == to yields a trivial reachable path of cost 0.
//
// Precondition: g must be non-nil.
// Postcondition: when Reachable, Cost <= opts.MaxCost (if budgeted) and
// Tiles ends at to; when not Reachable, Tiles is nil and Cost is 0.
func (g *Grid) FindPath(from, to Position, opts PathOptions) Path {
	if from == to {
		if !g.InBounds(from) {
			return Path{}
		}
		return Path{Reachable: true}
	}
	if !g.InBounds(from) || !passable(g, to, opts.Occupied) {
		return Path{}
	}

	dirs := orthoDirs[:]
	if opts.AllowDiagonals {
		dirs = allDirs[:]
	}

	start := &pathNode{pos: from, h: heuristic(from, to, opts.AllowDiagonals)}
	ol := &openList{start}
	heap.Init(ol)

	closed := make(map[Position]bool)
	best := map[Position]*pathNode{from: start}

	for ol.Len() > 0 {
		cur := heap.Pop(ol).(*pathNode)
		if cur.pos == to {
			return Path{Reachable: true, Tiles: buildTiles(cur), Cost: cur.g}
		}
		if closed[cur.pos] {
			continue
		}
		closed[cur.pos] = true

		for _, d := range dirs {
			next := Position{X: cur.pos.X + d[0], Y: cur.pos.Y + d[1]}
			if !passable(g, next, opts.Occupied) {
				continue
			}
			// No diagonal corner-cutting through blocked orthogonals.
			if d[0] != 0 && d[1] != 0 {
				if !passable(g, Position{X: cur.pos.X + d[0], Y: cur.pos.Y}, opts.Occupied) ||
					!passable(g, Position{X: cur.pos.X, Y: cur.pos.Y + d[1]}, opts.Occupied) {
					continue
				}
			}
			cost := cur.g + stepCost
			if opts.MaxCost >= 0 && cost > opts.MaxCost {
				continue
			}
			if closed[next] {
				continue
			}
			if prev, ok := best[next]; ok && cost >= prev.g {
				continue
			}
			node := &pathNode{
				pos:    next,
				g:      cost,
				h:      heuristic(next, to, opts.AllowDiagonals),
				parent: cur,
			}
			best[next] = node
			heap.Push(ol, node)
		}
	}
	return Path{}
}

func buildTiles(end *pathNode) []Position {
	var rev []Position
	for n := end; n.parent != nil; n = n.parent {
		rev = append(rev, n.pos)
	}
	tiles := make([]Position, len(rev))
	for i, p := range rev {
		tiles[len(rev)-1-i] = p
	}
	return tiles
}

// ReachableTiles returns every tile reachable from from within budget,
// excluding the origin itself, as a frontier of {position, cost} pairs.
// The result is empty, never an error, when nothing is reachable.
//
// Precondition: g must be non-nil.
// Postcondition: every entry has 1 <= Cost <= budget and a traversable,
// unoccupied position.
func (g *Grid) ReachableTiles(from Position, budget int, opts PathOptions) []ReachableTile {
	if budget < 1 || !g.InBounds(from) {
		return nil
	}

	dirs := orthoDirs[:]
	if opts.AllowDiagonals {
		dirs = allDirs[:]
	}

	// Uniform step cost: breadth-first expansion yields optimal costs.
	costs := map[Position]int{from: 0}
	queue := []Position{from}
	var out []ReachableTile

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		c := costs[cur]
		if c >= budget {
			continue
		}
		for _, d := range dirs {
			next := Position{X: cur.X + d[0], Y: cur.Y + d[1]}
			if _, seen := costs[next]; seen {
				continue
			}
			if !passable(g, next, opts.Occupied) {
				continue
			}
			if d[0] != 0 && d[1] != 0 {
				if !passable(g, Position{X: cur.X + d[0], Y: cur.Y}, opts.Occupied) ||
					!passable(g, Position{X: cur.X, Y: cur.Y + d[1]}, opts.Occupied) {
					continue
				}
			}
			costs[next] = c + stepCost
			queue = append(queue, next)
			out = append(out, ReachableTile{Position: next, Cost: c + stepCost})
		}
	}
	return out
}
