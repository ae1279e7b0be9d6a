package spatial

import (
	"gonum.org/v1/gonum/spatial/kdtree"

	"github.com/zeusync/horde/internal/core/models"
	"github.com/zeusync/horde/internal/core/systems/physics"
)

var (
	_ kdtree.Comparable = node{}
	_ kdtree.Interface  = points(nil)
	_ kdtree.SortSlicer = plane{}
)

type node struct {
	handle models.Handle
	pos    physics.Vec2
}

// Compare returns the signed distance of n from the plane through c
// perpendicular to dimension d.
func (n node) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	o := c.(node)
	if d == 0 {
		return n.pos.X - o.pos.X
	}
	return n.pos.Y - o.pos.Y
}

func (n node) Dims() int { return 2 }

// Distance is the squared Euclidean distance; Index.Nearest takes the root.
func (n node) Distance(c kdtree.Comparable) float64 {
	return n.pos.DistanceSq(c.(node).pos)
}

type points []node

func (p points) Index(i int) kdtree.Comparable         { return p[i] }
func (p points) Len() int                              { return len(p) }
func (p points) Pivot(d kdtree.Dim) int                { return plane{points: p, dim: d}.Pivot() }
func (p points) Slice(start, end int) kdtree.Interface { return p[start:end] }

// plane orders points along one dimension for median selection.
type plane struct {
	points
	dim kdtree.Dim
}

func (p plane) Less(i, j int) bool {
	if p.dim == 0 {
		return p.points[i].pos.X < p.points[j].pos.X
	}
	return p.points[i].pos.Y < p.points[j].pos.Y
}

func (p plane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }

func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.points = p.points[start:end]
	return p
}

func (p plane) Swap(i, j int) { p.points[i], p.points[j] = p.points[j], p.points[i] }
