package neighbors

import "gonum.org/v1/gonum/spatial/kdtree"

// ratedPoint is a training point carrying its rating as payload.
type ratedPoint struct {
	coords kdtree.Point
	rating float64
	order  int
}

func (p ratedPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	return p.coords[d] - c.(ratedPoint).coords[d]
}

func (p ratedPoint) Dims() int { return len(p.coords) }

// Distance is the squared Euclidean distance.
func (p ratedPoint) Distance(c kdtree.Comparable) float64 {
	return p.coords.Distance(c.(ratedPoint).coords)
}

type ratedPoints []ratedPoint

func (p ratedPoints) Index(i int) kdtree.Comparable         { return p[i] }
func (p ratedPoints) Len() int                              { return len(p) }
func (p ratedPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }
func (p ratedPoints) Pivot(d kdtree.Dim) int {
	return kdtree.Partition(ratedPlane{ratedPoints: p, dim: d}, kdtree.MedianOfMedians(ratedPlane{ratedPoints: p, dim: d}))
}

// ratedPlane sorts points along one dimension.
type ratedPlane struct {
	ratedPoints
	dim kdtree.Dim
}

func (p ratedPlane) Less(i, j int) bool {
	return p.ratedPoints[i].coords[p.dim] < p.ratedPoints[j].coords[p.dim]
}
func (p ratedPlane) Slice(start, end int) kdtree.SortSlicer {
	return ratedPlane{ratedPoints: p.ratedPoints[start:end], dim: p.dim}
}
func (p ratedPlane) Swap(i, j int) {
	p.ratedPoints[i], p.ratedPoints[j] = p.ratedPoints[j], p.ratedPoints[i]
}
