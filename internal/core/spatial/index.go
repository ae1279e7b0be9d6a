// Package spatial holds the nearest-neighbour index over hostile positions.
//
// The index is rebuilt from scratch every tick. Movement between rebuilds
// makes it at most one tick stale, which the combat loop accepts.
package spatial

import (
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"

	"github.com/zeusync/horde/internal/core/models"
	"github.com/zeusync/horde/internal/core/systems/physics"
)

// Point is one indexed entity position.
type Point struct {
	Handle models.Handle
	Pos    physics.Vec2
}

// Match is the result of a nearest query. Distance is Euclidean, not squared.
type Match struct {
	Handle   models.Handle
	Pos      physics.Vec2
	Distance float64
}

// Stats counts index activity since creation.
type Stats struct {
	Points   int
	Rebuilds uint64
	Queries  uint64
}

// Index is a 2D kd-tree that only supports full replacement. It is not safe
// for concurrent use.
type Index struct {
	tree   *kdtree.Tree
	points points
	stats  Stats
}

func New() *Index {
	return &Index{}
}

// Rebuild discards the previous tree and builds a balanced one over pts.
// The caller keeps ownership of pts.
func (i *Index) Rebuild(pts []Point) {
	i.stats.Rebuilds++
	i.points = i.points[:0]
	for _, p := range pts {
		i.points = append(i.points, node{handle: p.Handle, pos: p.Pos})
	}
	i.stats.Points = len(i.points)
	if len(i.points) == 0 {
		i.tree = nil
		return
	}
	// kdtree.New partitions the slice in place; the tree copies the values.
	i.tree = kdtree.New(i.points, false)
}

// Nearest returns the indexed point closest to q.
func (i *Index) Nearest(q physics.Vec2) (Match, bool) {
	i.stats.Queries++
	if i.tree == nil {
		return Match{}, false
	}
	c, distSq := i.tree.Nearest(node{pos: q})
	n, ok := c.(node)
	if !ok {
		return Match{}, false
	}
	return Match{Handle: n.handle, Pos: n.pos, Distance: math.Sqrt(distSq)}, true
}

// Len returns the number of indexed points.
func (i *Index) Len() int { return len(i.points) }

func (i *Index) Stats() Stats { return i.stats }
