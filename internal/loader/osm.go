package loader

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"

	"pathbench/pkg/apperror"
	"pathbench/pkg/graph"
	"pathbench/pkg/logger"
)

// RoadGraph is a car-routable road network. Vertex i is the OSM node
// NodeIDs[i] located at (Lat[i], Lon[i]); edge weights are millimetres.
type RoadGraph struct {
	Graph   *graph.Graph
	NodeIDs []int64
	Lat     []float64
	Lon     []float64

	// SkippedSegments counts way segments with an endpoint lacking coordinates.
	SkippedSegments int

	index map[osm.NodeID]int
}

// IndexOf resolves an OSM node id to its vertex index.
func (rg *RoadGraph) IndexOf(id int64) (int, bool) {
	v, ok := rg.index[osm.NodeID(id)]
	return v, ok
}

// carHighways lists highway tag values accessible by car.
var carHighways = map[string]bool{
	"motorway":       true,
	"motorway_link":  true,
	"trunk":          true,
	"trunk_link":     true,
	"primary":        true,
	"primary_link":   true,
	"secondary":      true,
	"secondary_link": true,
	"tertiary":       true,
	"tertiary_link":  true,
	"unclassified":   true,
	"residential":    true,
	"living_street":  true,
	"service":        true,
}

func isCarAccessible(tags osm.Tags) bool {
	if !carHighways[tags.Find("highway")] {
		return false
	}
	if tags.Find("area") == "yes" {
		return false
	}
	switch tags.Find("access") {
	case "no", "private":
		return false
	}
	return tags.Find("motor_vehicle") != "no"
}

// directionFlags returns the allowed travel directions along the way's node
// order. Motorways and roundabouts are implicitly oneway; an explicit oneway
// tag wins. Reversible ways are dropped.
func directionFlags(tags osm.Tags) (forward, backward bool) {
	forward, backward = true, true

	hw := tags.Find("highway")
	if hw == "motorway" || hw == "motorway_link" || tags.Find("junction") == "roundabout" {
		backward = false
	}

	switch tags.Find("oneway") {
	case "yes", "true", "1":
		forward, backward = true, false
	case "-1", "reverse":
		forward, backward = false, true
	case "no":
		forward, backward = true, true
	case "reversible":
		forward, backward = false, false
	}
	return forward, backward
}

type roadWay struct {
	nodes    []osm.NodeID
	forward  bool
	backward bool
}

// acceptWay filters a way and captures its node list and directions.
func acceptWay(w *osm.Way) (roadWay, bool) {
	if !isCarAccessible(w.Tags) || len(w.Nodes) < 2 {
		return roadWay{}, false
	}
	fwd, bwd := directionFlags(w.Tags)
	if !fwd && !bwd {
		return roadWay{}, false
	}
	ids := make([]osm.NodeID, len(w.Nodes))
	for i, wn := range w.Nodes {
		ids[i] = wn.ID
	}
	return roadWay{nodes: ids, forward: fwd, backward: bwd}, true
}

type coord struct{ lat, lon float64 }

// LoadOSM reads an OpenStreetMap extract. Files ending in .pbf are read with
// the PBF decoder, .osm and .xml files with the XML decoder.
func LoadOSM(ctx context.Context, path string) (*RoadGraph, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperror.Wrap(err, apperror.CodeNotFound, "OSM file not found").
				WithDetails("path", path)
		}
		return nil, apperror.Wrap(err, apperror.CodeInvalidGraph, "cannot open OSM file").
			WithDetails("path", path)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pbf":
		return DecodeOSMPBF(ctx, f)
	case ".osm", ".xml":
		return DecodeOSMXML(ctx, f)
	default:
		return nil, apperror.Newf(apperror.CodeInvalidArgument,
			"unsupported OSM file extension %q", filepath.Ext(path)).
			WithDetails("path", path)
	}
}

// DecodeOSMPBF builds a road graph from PBF data in two passes: ways first,
// then coordinates of the nodes those ways reference. The reader is rewound
// between passes.
func DecodeOSMPBF(ctx context.Context, rs io.ReadSeeker) (*RoadGraph, error) {
	referenced := make(map[osm.NodeID]struct{})
	var ways []roadWay

	scanner := osmpbf.New(ctx, rs, 1)
	scanner.SkipNodes = true
	scanner.SkipRelations = true
	for scanner.Scan() {
		w, ok := scanner.Object().(*osm.Way)
		if !ok {
			continue
		}
		rw, ok := acceptWay(w)
		if !ok {
			continue
		}
		for _, id := range rw.nodes {
			referenced[id] = struct{}{}
		}
		ways = append(ways, rw)
	}
	if err := closeScanner(scanner.Err(), scanner.Close(), "pass 1 (ways)"); err != nil {
		return nil, err
	}

	logger.Debug("OSM pass 1 complete", "ways", len(ways), "referenced_nodes", len(referenced))

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInvalidGraph, "seek for pass 2")
	}

	coords := make(map[osm.NodeID]coord, len(referenced))
	scanner = osmpbf.New(ctx, rs, 1)
	scanner.SkipWays = true
	scanner.SkipRelations = true
	for scanner.Scan() {
		n, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		if _, needed := referenced[n.ID]; needed {
			coords[n.ID] = coord{lat: n.Lat, lon: n.Lon}
		}
	}
	if err := closeScanner(scanner.Err(), scanner.Close(), "pass 2 (nodes)"); err != nil {
		return nil, err
	}

	logger.Debug("OSM pass 2 complete", "coordinates", len(coords))

	return buildRoadGraph(ways, coords)
}

// DecodeOSMXML builds a road graph from OSM XML in a single pass.
func DecodeOSMXML(ctx context.Context, r io.Reader) (*RoadGraph, error) {
	coords := make(map[osm.NodeID]coord)
	var ways []roadWay

	scanner := osmxml.New(ctx, r)
	for scanner.Scan() {
		switch obj := scanner.Object().(type) {
		case *osm.Node:
			coords[obj.ID] = coord{lat: obj.Lat, lon: obj.Lon}
		case *osm.Way:
			if rw, ok := acceptWay(obj); ok {
				ways = append(ways, rw)
			}
		}
	}
	if err := closeScanner(scanner.Err(), scanner.Close(), "xml scan"); err != nil {
		return nil, err
	}

	return buildRoadGraph(ways, coords)
}

func closeScanner(scanErr, closeErr error, stage string) error {
	err := scanErr
	if err == nil {
		err = closeErr
	}
	if err == nil {
		return nil
	}
	if ctxErr := apperror.FromContext(err); ctxErr != nil && ctxErr.Code != apperror.CodeInternal {
		return ctxErr.WithDetails("stage", stage)
	}
	return apperror.Wrap(err, apperror.CodeInvalidGraph, "failed to decode OSM data").
		WithDetails("stage", stage)
}

// buildRoadGraph numbers nodes in order of first appearance along the
// accepted ways and emits one edge per allowed direction of each segment.
func buildRoadGraph(ways []roadWay, coords map[osm.NodeID]coord) (*RoadGraph, error) {
	rg := &RoadGraph{index: make(map[osm.NodeID]int)}

	for _, w := range ways {
		for _, id := range w.nodes {
			c, ok := coords[id]
			if !ok {
				continue
			}
			if _, seen := rg.index[id]; seen {
				continue
			}
			rg.index[id] = len(rg.NodeIDs)
			rg.NodeIDs = append(rg.NodeIDs, int64(id))
			rg.Lat = append(rg.Lat, c.lat)
			rg.Lon = append(rg.Lon, c.lon)
		}
	}

	g, err := graph.New(len(rg.NodeIDs))
	if err != nil {
		return nil, err
	}
	rg.Graph = g

	for _, w := range ways {
		for i := 0; i+1 < len(w.nodes); i++ {
			u, okU := rg.index[w.nodes[i]]
			v, okV := rg.index[w.nodes[i+1]]
			if !okU || !okV {
				rg.SkippedSegments++
				continue
			}
			weight := edgeWeightMM(Haversine(rg.Lat[u], rg.Lon[u], rg.Lat[v], rg.Lon[v]))
			if w.forward {
				if err := g.AddEdge(u, v, weight); err != nil {
					return nil, err
				}
			}
			if w.backward {
				if err := g.AddEdge(v, u, weight); err != nil {
					return nil, err
				}
			}
		}
	}

	if len(rg.NodeIDs) == 0 {
		return nil, apperror.New(apperror.CodeEmptyGraph, "no car-accessible roads found")
	}

	return rg, nil
}
