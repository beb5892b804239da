package grid

// HasLineOfSight reports whether a straight line between tiles a and b is
// clear of blocked terrain. The test walks the Bresenham line from a to b;
// the endpoints themselves never block. Combatants do not block sight, only
// terrain does.
//
// Precondition: g must be non-nil.
// Postcondition: symmetric — HasLineOfSight(a, b) == HasLineOfSight(b, a)
// for in-bounds endpoints.
func (g *Grid) HasLineOfSight(a, b Position) bool {
	if !g.InBounds(a) || !g.InBounds(b) {
		return false
	}
	if a == b {
		return true
	}
	// Canonicalize endpoint order so the rasterized line, and therefore the
	// answer, is identical for (a,b) and (b,a).
	if b.Y < a.Y || (b.Y == a.Y && b.X < a.X) {
		a, b = b, a
	}

	dx := abs(b.X - a.X)
	dy := -abs(b.Y - a.Y)
	sx := 1
	if a.X > b.X {
		sx = -1
	}
	sy := 1
	if a.Y > b.Y {
		sy = -1
	}

	x, y := a.X, a.Y
	err := dx + dy
	for {
		if x == b.X && y == b.Y {
			return true
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
		cur := Position{X: x, Y: y}
		if cur == b {
			return true
		}
		if !g.Traversable(cur) {
			return false
		}
	}
}
