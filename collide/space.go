// Package collide provides the collision side of the engine: a
// spatial-hash broad phase over geoms, analytic narrow-phase contact
// generation between shape pairs, and ray queries.
package collide

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/codifies/mechsim/actor"
)

// cellKey addresses one cell of the uniform grid.
type cellKey struct {
	X, Y, Z int
}

type cell struct {
	geomIndices []int
}

// NearFunc is the narrow-phase callback invoked for every candidate
// geom pair found by the broad phase.
type NearFunc func(a, b *actor.Geom)

// Space tracks all collision geometry and finds potentially
// intersecting pairs with a uniform spatial hash grid. Geoms with an
// unbounded AABB (planes) are kept aside and paired against everything.
type Space struct {
	cellSize float64
	cells    []cell
	cellMask int

	geoms     []*actor.Geom
	unbounded []*actor.Geom
}

// NewSpace creates a space. cellSize should roughly match the typical
// geom diameter; numCells is rounded up to a power of two.
func NewSpace(cellSize float64, numCells int) *Space {
	numCells = nextPowerOfTwo(numCells)
	cells := make([]cell, numCells)
	for i := range cells {
		cells[i].geomIndices = make([]int, 0, 8)
	}
	return &Space{
		cellSize: cellSize,
		cells:    cells,
		cellMask: numCells - 1,
	}
}

func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n++
	return n
}

// Add registers a geom with the space.
func (s *Space) Add(g *actor.Geom) {
	if g.AABB().Unbounded() {
		s.unbounded = append(s.unbounded, g)
		return
	}
	s.geoms = append(s.geoms, g)
}

// Remove unregisters a geom. Removing an unknown geom is a no-op.
func (s *Space) Remove(g *actor.Geom) {
	for i, other := range s.geoms {
		if other == g {
			s.geoms = append(s.geoms[:i], s.geoms[i+1:]...)
			return
		}
	}
	for i, other := range s.unbounded {
		if other == g {
			s.unbounded = append(s.unbounded[:i], s.unbounded[i+1:]...)
			return
		}
	}
}

// Len returns the number of registered geoms.
func (s *Space) Len() int {
	return len(s.geoms) + len(s.unbounded)
}

// Geoms calls fn for every registered geom.
func (s *Space) Geoms(fn func(g *actor.Geom)) {
	for _, g := range s.geoms {
		fn(g)
	}
	for _, g := range s.unbounded {
		fn(g)
	}
}

// Collide enumerates candidate pairs and hands each one to near.
// Pairs are pruned by AABB overlap, category/collide bits, and the
// static/sleeping rules: two bodiless geoms never pair, and a pair
// whose bodies are both disabled is skipped.
func (s *Space) Collide(near NearFunc) {
	s.rebuildGrid()

	seen := make([]bool, len(s.geoms))
	unseen := make([]bool, len(s.geoms))

	for idx, ga := range s.geoms {
		copy(seen, unseen)

		minCell := s.worldToCell(ga.AABB().Min)
		maxCell := s.worldToCell(ga.AABB().Max)
		for x := minCell.X; x <= maxCell.X; x++ {
			for y := minCell.Y; y <= maxCell.Y; y++ {
				for z := minCell.Z; z <= maxCell.Z; z++ {
					ci := s.hashCell(cellKey{x, y, z})
					for _, otherIdx := range s.cells[ci].geomIndices {
						if otherIdx <= idx || seen[otherIdx] {
							continue
						}
						seen[otherIdx] = true

						gb := s.geoms[otherIdx]
						if !pairable(ga, gb) {
							continue
						}
						if !ga.AABB().Overlaps(gb.AABB()) {
							continue
						}
						near(ga, gb)
					}
				}
			}
		}
	}

	// Planes and other unbounded geoms pair against every bounded geom.
	for _, gp := range s.unbounded {
		for _, g := range s.geoms {
			if pairable(gp, g) {
				near(gp, g)
			}
		}
	}
}

func pairable(a, b *actor.Geom) bool {
	ba, bb := a.Body(), b.Body()
	if ba == nil && bb == nil {
		return false
	}
	if (ba == nil || ba.Disabled) && (bb == nil || bb.Disabled) {
		return false
	}
	return a.ShouldCollide(b)
}

func (s *Space) rebuildGrid() {
	for i := range s.cells {
		s.cells[i].geomIndices = s.cells[i].geomIndices[:0]
	}
	for idx, g := range s.geoms {
		minCell := s.worldToCell(g.AABB().Min)
		maxCell := s.worldToCell(g.AABB().Max)
		for x := minCell.X; x <= maxCell.X; x++ {
			for y := minCell.Y; y <= maxCell.Y; y++ {
				for z := minCell.Z; z <= maxCell.Z; z++ {
					ci := s.hashCell(cellKey{x, y, z})
					s.cells[ci].geomIndices = append(s.cells[ci].geomIndices, idx)
				}
			}
		}
	}
	for i := range s.cells {
		if len(s.cells[i].geomIndices) > 1 {
			sort.Ints(s.cells[i].geomIndices)
		}
	}
}

func (s *Space) worldToCell(pos mgl64.Vec3) cellKey {
	return cellKey{
		X: int(math.Floor(pos.X() / s.cellSize)),
		Y: int(math.Floor(pos.Y() / s.cellSize)),
		Z: int(math.Floor(pos.Z() / s.cellSize)),
	}
}

func (s *Space) hashCell(key cellKey) int {
	h := (key.X * 73856093) ^ (key.Y * 19349663) ^ (key.Z * 83492791)
	return h & s.cellMask
}
