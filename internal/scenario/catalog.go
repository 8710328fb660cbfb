// Package scenario describes the benchmark inputs offered by the menu and the
// CLI and materialises them into graphs.
package scenario

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"

	"pathbench/pkg/apperror"
	"pathbench/pkg/config"
)

// Kind selects how a scenario's graph is obtained.
type Kind string

const (
	KindNodeLink Kind = "nodelink"
	KindComplete Kind = "complete"
	KindChain    Kind = "chain"
	KindGrid     Kind = "grid"
	KindOSM      Kind = "osm"
)

// Size labels
const (
	SizeSmall  = "Small"
	SizeMedium = "Medium"
	SizeLarge  = "Large"
)

// Case labels
const (
	CaseBest    = "Best"
	CaseAverage = "Average"
	CaseWorst   = "Worst"
)

// Scenario is one benchmark input. Size and Case together identify the
// scenario's rows in the result stores.
type Scenario struct {
	Key   string
	Label string
	Size  string
	Case  string
	Kind  Kind

	// Path is the input file for nodelink and osm kinds.
	Path string

	// Generator parameters.
	Vertices int
	Rows     int
	Cols     int
	Weight   int64

	// Source is a vertex index. For file kinds SourceID, when set, names the
	// source by its node id instead; for osm a non-zero SourceLat/SourceLon
	// pair is snapped to the nearest vertex.
	Source    int
	SourceID  *int64
	SourceLat float64
	SourceLon float64
}

// Name is the "Size/Case" form used in metrics and logs.
func (s Scenario) Name() string {
	return s.Size + "/" + s.Case
}

// Catalog is the ordered set of scenarios offered to the user.
type Catalog struct {
	scenarios []Scenario
	byKey     map[string]int
}

var sizeCodes = []struct {
	size string
	code string
}{
	{SizeSmall, "P"},
	{SizeMedium, "M"},
	{SizeLarge, "G"},
}

// NewCatalog builds the nine built-in scenarios followed by the configured
// extra scenarios.
//
// Keys 1-9 walk Small, Medium, Large, each with Best, Average and Worst. The
// best and average cases load <graphs_dir>/grafo_<P|M|G>_<melhor|medio>.json;
// the worst case is an undirected complete graph of weight 1.
func NewCatalog(cfg *config.BenchConfig) (*Catalog, error) {
	completeSizes := []int{cfg.CompleteSize.Small, cfg.CompleteSize.Medium, cfg.CompleteSize.Large}

	c := &Catalog{byKey: make(map[string]int)}
	key := 1
	for i, sc := range sizeCodes {
		for _, file := range []struct{ caseName, suffix string }{
			{CaseBest, "melhor"},
			{CaseAverage, "medio"},
		} {
			c.add(Scenario{
				Key:    strconv.Itoa(key),
				Label:  fmt.Sprintf("%s graph (%s case)", sc.size, file.caseName),
				Size:   sc.size,
				Case:   file.caseName,
				Kind:   KindNodeLink,
				Path:   filepath.Join(cfg.GraphsDir, fmt.Sprintf("grafo_%s_%s.json", sc.code, file.suffix)),
				Source: cfg.Source,
			})
			key++
		}
		c.add(Scenario{
			Key:      strconv.Itoa(key),
			Label:    fmt.Sprintf("%s graph (%s case)", sc.size, CaseWorst),
			Size:     sc.size,
			Case:     CaseWorst,
			Kind:     KindComplete,
			Vertices: completeSizes[i],
			Weight:   1,
			Source:   cfg.Source,
		})
		key++
	}

	for _, extra := range cfg.ExtraScenarios {
		s, err := FromConfig(extra, cfg.Source)
		if err != nil {
			return nil, err
		}
		if _, dup := c.byKey[s.Key]; dup {
			return nil, apperror.Newf(apperror.CodeInvalidScenario,
				"scenario key %q is already taken", s.Key).
				WithField("bench.extra_scenarios")
		}
		c.add(s)
	}

	return c, nil
}

func (c *Catalog) add(s Scenario) {
	c.byKey[s.Key] = len(c.scenarios)
	c.scenarios = append(c.scenarios, s)
}

// FromConfig converts a configured extra scenario. Missing size and case
// labels default to the key and "Custom".
func FromConfig(e config.ExtraScenario, defaultSource int) (Scenario, error) {
	s := Scenario{
		Key:       e.Key,
		Label:     e.Label,
		Size:      e.Size,
		Case:      e.Case,
		Kind:      Kind(e.Kind),
		Path:      e.Path,
		Vertices:  e.Vertices,
		Rows:      e.Rows,
		Cols:      e.Cols,
		Weight:    e.Weight,
		Source:    defaultSource,
		SourceLat: e.SourceLat,
		SourceLon: e.SourceLon,
	}
	if e.SourceID != 0 {
		id := e.SourceID
		s.SourceID = &id
	}
	if s.Size == "" {
		s.Size = e.Key
	}
	if s.Case == "" {
		s.Case = "Custom"
	}
	if s.Label == "" {
		s.Label = fmt.Sprintf("%s (%s)", s.Size, s.Kind)
	}
	if s.Weight == 0 {
		s.Weight = 1
	}
	return s, s.Validate()
}

// Validate checks that the scenario carries what its kind needs.
func (s Scenario) Validate() error {
	fail := func(msg string) error {
		return apperror.New(apperror.CodeInvalidScenario, msg).
			WithDetails("scenario", s.Key)
	}

	if s.Key == "" {
		return fail("scenario key is required")
	}
	switch s.Kind {
	case KindNodeLink, KindOSM:
		if s.Path == "" {
			return fail("file scenario needs a path")
		}
	case KindComplete, KindChain:
		if s.Vertices <= 0 {
			return fail("generated scenario needs a positive vertex count")
		}
	case KindGrid:
		if s.Rows <= 0 || s.Cols <= 0 {
			return fail("grid scenario needs positive rows and cols")
		}
	default:
		return fail(fmt.Sprintf("unknown scenario kind %q", s.Kind))
	}
	if s.Weight < 0 {
		return fail("generator weight must be non-negative")
	}
	if s.Source < 0 {
		return fail("source must be non-negative")
	}
	return nil
}

// All returns the scenarios in menu order.
func (c *Catalog) All() []Scenario {
	out := make([]Scenario, len(c.scenarios))
	copy(out, c.scenarios)
	return out
}

// Get looks a scenario up by its menu key.
func (c *Catalog) Get(key string) (Scenario, error) {
	i, ok := c.byKey[key]
	if !ok {
		return Scenario{}, apperror.Newf(apperror.CodeInvalidScenario, "unknown scenario %q", key).
			WithDetails("known", c.Keys())
	}
	return c.scenarios[i], nil
}

// Keys returns the menu keys in menu order.
func (c *Catalog) Keys() []string {
	keys := make([]string, len(c.scenarios))
	for i, s := range c.scenarios {
		keys[i] = s.Key
	}
	return keys
}

// Sizes returns the distinct size labels in first-seen order.
func (c *Catalog) Sizes() []string {
	seen := make(map[string]int)
	for i, s := range c.scenarios {
		if _, ok := seen[s.Size]; !ok {
			seen[s.Size] = i
		}
	}
	sizes := make([]string, 0, len(seen))
	for size := range seen {
		sizes = append(sizes, size)
	}
	sort.Slice(sizes, func(a, b int) bool { return seen[sizes[a]] < seen[sizes[b]] })
	return sizes
}
