// Package preset implements the filter preset system from spec §4.9: named
// parameter bags (FilterPreset) serializable to the nested key/value text
// grammar, collected into FilterPresetCollections that can be looked up by
// filter name and diffed against each other.
package preset

import (
	"sync"

	"github.com/tonefx/tonefx"
)

// FilterPreset is a named parameter bag for one filter instance: {filterName,
// name, floats, ints, strings, points, curveTables}, per spec §3.
type FilterPreset struct {
	FilterName string
	Name       string

	Floats      map[string]float64
	Ints        map[string]int64
	Strings     map[string]string
	Points      map[string]tonefx.Point
	CurveTables map[string][]tonefx.Point
}

// New creates an empty, named preset for filterName.
func New(filterName, name string) FilterPreset {
	return FilterPreset{
		FilterName:  filterName,
		Name:        name,
		Floats:      map[string]float64{},
		Ints:        map[string]int64{},
		Strings:     map[string]string{},
		Points:      map[string]tonefx.Point{},
		CurveTables: map[string][]tonefx.Point{},
	}
}

// Equal reports structural (value) equality between two presets.
func (p FilterPreset) Equal(other FilterPreset) bool {
	if p.FilterName != other.FilterName || p.Name != other.Name {
		return false
	}
	if len(p.Floats) != len(other.Floats) || len(p.Ints) != len(other.Ints) ||
		len(p.Strings) != len(other.Strings) || len(p.Points) != len(other.Points) ||
		len(p.CurveTables) != len(other.CurveTables) {
		return false
	}
	for k, v := range p.Floats {
		if ov, ok := other.Floats[k]; !ok || ov != v {
			return false
		}
	}
	for k, v := range p.Ints {
		if ov, ok := other.Ints[k]; !ok || ov != v {
			return false
		}
	}
	for k, v := range p.Strings {
		if ov, ok := other.Strings[k]; !ok || ov != v {
			return false
		}
	}
	for k, v := range p.Points {
		if ov, ok := other.Points[k]; !ok || ov != v {
			return false
		}
	}
	for k, v := range p.CurveTables {
		ov, ok := other.CurveTables[k]
		if !ok || len(ov) != len(v) {
			return false
		}
		for i := range v {
			if v[i] != ov[i] {
				return false
			}
		}
	}
	return true
}

// Collection is an ordered list of presets (FilterPresetCollection in spec
// §3/§4.9), safe for concurrent use.
type Collection struct {
	mu      sync.Mutex
	presets []FilterPreset
}

// NewCollection creates an empty preset collection.
func NewCollection() *Collection { return &Collection{} }

// Append adds p to the end of the collection.
func (c *Collection) Append(p FilterPreset) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.presets = append(c.presets, p)
}

// Presets returns a snapshot of every preset in the collection, in
// insertion order.
func (c *Collection) Presets() []FilterPreset {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]FilterPreset, len(c.presets))
	copy(out, c.presets)
	return out
}

// Len reports the number of presets in the collection.
func (c *Collection) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.presets)
}

// CollectionForFilter projects every preset whose FilterName matches,
// preserving relative order.
func (c *Collection) CollectionForFilter(filterName string) []FilterPreset {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []FilterPreset
	for _, p := range c.presets {
		if p.FilterName == filterName {
			out = append(out, p)
		}
	}
	return out
}

// ByIndex returns the i'th preset (0-based) among those matching
// filterName, or (zero, false) if i is out of range.
func (c *Collection) ByIndex(filterName string, i int) (FilterPreset, bool) {
	matches := c.CollectionForFilter(filterName)
	if i < 0 || i >= len(matches) {
		return FilterPreset{}, false
	}
	return matches[i], true
}

// Equal reports whether c and other contain the same set of presets,
// modulo ordering, per spec §8's usePresets/currentActiveStateToPresetCollection
// round-trip law.
func (c *Collection) Equal(other *Collection) bool {
	a := c.Presets()
	b := other.Presets()
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
	for _, pa := range a {
		found := false
		for i, pb := range b {
			if used[i] {
				continue
			}
			if pa.Equal(pb) {
				used[i] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// diffKey identifies a preset independent of its parameter values, for
// Diff's added/removed/changed classification.
func diffKey(p FilterPreset) string { return p.FilterName + "\x00" + p.Name }

// Diff reports the preset names added in other (present in other, absent
// here), removed (present here, absent in other), and changed (present in
// both under the same filterName/name but with different parameters) —
// the preset-collection-equality supplement from SPEC_FULL.md, grounded on
// the teacher's sharded-cache stats-reporting idiom.
func (c *Collection) Diff(other *Collection) (added, removed, changed []string) {
	a := c.Presets()
	b := other.Presets()

	aByKey := make(map[string]FilterPreset, len(a))
	for _, p := range a {
		aByKey[diffKey(p)] = p
	}
	bByKey := make(map[string]FilterPreset, len(b))
	for _, p := range b {
		bByKey[diffKey(p)] = p
	}

	for key, pb := range bByKey {
		pa, ok := aByKey[key]
		if !ok {
			added = append(added, pb.Name)
			continue
		}
		if !pa.Equal(pb) {
			changed = append(changed, pb.Name)
		}
	}
	for key, pa := range aByKey {
		if _, ok := bByKey[key]; !ok {
			removed = append(removed, pa.Name)
		}
	}
	return added, removed, changed
}
