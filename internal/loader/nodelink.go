// Package loader turns graph files and generator parameters into populated
// graphs for the benchmark harness.
//
// Supported inputs:
//   - node-link JSON documents (the format written by NetworkX)
//   - OpenStreetMap extracts in PBF or XML form
//   - synthetic complete, chain and grid graphs
package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"math"
	"os"
	"strconv"

	"pathbench/pkg/apperror"
	"pathbench/pkg/graph"
)

// defaultLinkWeight is used for links without a weight attribute.
const defaultLinkWeight int64 = 1

// NodeLinkGraph is a graph decoded from a node-link document together with
// the mapping from vertex index back to the document's node ids.
type NodeLinkGraph struct {
	Graph *graph.Graph

	// IDs[i] is the document id of vertex i.
	IDs []int64

	Directed bool

	// SkippedLinks counts links that referenced an unknown node id.
	SkippedLinks int

	index map[int64]int
}

// IndexOf resolves a document node id to its vertex index.
func (g *NodeLinkGraph) IndexOf(id int64) (int, bool) {
	v, ok := g.index[id]
	return v, ok
}

type nodeLinkDocument struct {
	Directed json.RawMessage `json:"directed"`
	Nodes    *[]nodeLinkNode `json:"nodes"`
	Links    *[]nodeLinkLink `json:"links"`
	Edges    *[]nodeLinkLink `json:"edges"`
}

type nodeLinkNode struct {
	ID json.Number `json:"id"`
}

type nodeLinkLink struct {
	Source json.Number  `json:"source"`
	Target json.Number  `json:"target"`
	Weight *json.Number `json:"weight"`
}

// LoadNodeLink reads and decodes the node-link document at path.
func LoadNodeLink(path string) (*NodeLinkGraph, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperror.Wrap(err, apperror.CodeNotFound, "graph file not found").
				WithDetails("path", path)
		}
		return nil, apperror.Wrap(err, apperror.CodeInvalidGraph, "cannot open graph file").
			WithDetails("path", path)
	}
	defer f.Close()

	g, err := DecodeNodeLink(f)
	if err != nil {
		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			return nil, appErr.WithDetails("path", path)
		}
		return nil, err
	}
	return g, nil
}

// DecodeNodeLink decodes a node-link document.
//
// Node ids are mapped to vertex indices in document order. Links naming an
// unknown id are skipped and counted; a duplicate node id, a non-integer id
// or a negative weight fails the whole decode. Undirected documents get both
// edge directions. Documents written with the newer "edges" key are accepted
// when "links" is absent.
func DecodeNodeLink(r io.Reader) (*NodeLinkGraph, error) {
	var doc nodeLinkDocument
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInvalidGraph, "malformed node-link JSON")
	}

	directed, err := parseDirected(doc.Directed)
	if err != nil {
		return nil, err
	}

	if doc.Nodes == nil {
		return nil, apperror.NewWithField(apperror.CodeInvalidGraph, "missing nodes array", "nodes")
	}
	links := doc.Links
	if links == nil {
		links = doc.Edges
	}
	if links == nil {
		return nil, apperror.NewWithField(apperror.CodeInvalidGraph, "missing links array", "links")
	}

	nodes := *doc.Nodes
	g, err := graph.New(len(nodes))
	if err != nil {
		return nil, err
	}

	out := &NodeLinkGraph{
		Graph:    g,
		IDs:      make([]int64, len(nodes)),
		Directed: directed,
		index:    make(map[int64]int, len(nodes)),
	}

	for i, n := range nodes {
		id, err := parseID(n.ID)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.CodeInvalidGraph, "node id is not an integer").
				WithField("nodes.id").
				WithDetails("node", i)
		}
		if prev, dup := out.index[id]; dup {
			dup := apperror.Newf(apperror.CodeDuplicateNode, "duplicate node id %d", id)
			return nil, apperror.Wrap(dup, apperror.CodeInvalidGraph, dup.Message).
				WithField("nodes.id").
				WithDetails("first", prev).
				WithDetails("second", i)
		}
		out.index[id] = i
		out.IDs[i] = id
	}

	for i, l := range *links {
		src, err := parseID(l.Source)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.CodeInvalidGraph, "link source is not an integer").
				WithField("links.source").
				WithDetails("link", i)
		}
		dst, err := parseID(l.Target)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.CodeInvalidGraph, "link target is not an integer").
				WithField("links.target").
				WithDetails("link", i)
		}
		weight, err := parseWeight(l.Weight)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.CodeInvalidGraph, "link weight is not a number").
				WithField("links.weight").
				WithDetails("link", i)
		}

		u, okU := out.index[src]
		v, okV := out.index[dst]
		if !okU || !okV {
			out.SkippedLinks++
			continue
		}

		if err := g.AddEdge(u, v, weight); err != nil {
			return nil, annotateLink(err, i)
		}
		if !directed {
			if err := g.AddEdge(v, u, weight); err != nil {
				return nil, annotateLink(err, i)
			}
		}
	}

	return out, nil
}

func annotateLink(err error, link int) error {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return appErr.WithDetails("link", link)
	}
	return err
}

// parseDirected accepts a JSON bool or number; an absent or null value means
// directed.
func parseDirected(raw json.RawMessage) (bool, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return true, nil
	}

	var b bool
	if err := json.Unmarshal(trimmed, &b); err == nil {
		return b, nil
	}
	var f float64
	if err := json.Unmarshal(trimmed, &f); err == nil {
		return f != 0, nil
	}
	return false, apperror.NewWithField(apperror.CodeInvalidGraph,
		"directed must be a boolean or a number", "directed")
}

func parseID(n json.Number) (int64, error) {
	return strconv.ParseInt(n.String(), 10, 64)
}

// parseWeight returns the default weight for a missing value. Fractional
// weights are truncated toward zero.
func parseWeight(n *json.Number) (int64, error) {
	if n == nil {
		return defaultLinkWeight, nil
	}
	if w, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		return w, nil
	}
	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, strconv.ErrRange
	}
	return int64(f), nil
}
