package loader

import (
	"math"

	"github.com/tidwall/rtree"

	"pathbench/pkg/apperror"
)

// Snapper finds the road-graph vertex closest to a coordinate.
// Points are indexed as (lon, lat) boxes of zero extent.
type Snapper struct {
	rg *RoadGraph
	tr rtree.RTreeG[int]
}

// NewSnapper indexes every vertex of rg.
func NewSnapper(rg *RoadGraph) *Snapper {
	s := &Snapper{rg: rg}
	for v := range rg.NodeIDs {
		p := [2]float64{rg.Lon[v], rg.Lat[v]}
		s.tr.Insert(p, p, v)
	}
	return s
}

// Len returns the number of indexed vertices.
func (s *Snapper) Len() int {
	return s.tr.Len()
}

// Nearest returns the vertex closest to (lat, lon) and its great-circle
// distance in meters.
func (s *Snapper) Nearest(lat, lon float64) (int, float64, error) {
	if s.tr.Len() == 0 {
		return 0, 0, apperror.New(apperror.CodeEmptyGraph, "no vertices to snap to")
	}

	// Longitude differences shrink with latitude; scaling them keeps the box
	// distance a consistent lower bound on the point distance.
	cosLat := math.Cos(lat * math.Pi / 180)
	boxDist := func(min, max [2]float64, _ int, _ bool) float64 {
		dx := axisGap(lon, min[0], max[0]) * cosLat
		dy := axisGap(lat, min[1], max[1])
		return dx*dx + dy*dy
	}

	best := -1
	s.tr.Nearby(boxDist, func(_, _ [2]float64, v int, _ float64) bool {
		best = v
		return false
	})
	if best < 0 {
		return 0, 0, apperror.New(apperror.CodeInternal, "nearest-vertex search returned nothing")
	}

	return best, Haversine(lat, lon, s.rg.Lat[best], s.rg.Lon[best]), nil
}

func axisGap(p, lo, hi float64) float64 {
	switch {
	case p < lo:
		return lo - p
	case p > hi:
		return p - hi
	default:
		return 0
	}
}
