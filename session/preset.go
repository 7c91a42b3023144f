package session

import (
	"os"

	"github.com/tonefx/tonefx"
	"github.com/tonefx/tonefx/filter"
	"github.com/tonefx/tonefx/preset"
)

// LoadPresetFromPath reads and parses a preset collection from path,
// without applying it to the session (spec §4.9: load and apply are
// separate steps, the latter handled by UsePresets).
func LoadPresetFromPath(path string) (*preset.Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, tonefx.NewError(tonefx.KindPipelineFailure, err)
	}
	c, err := preset.Parse(data)
	if err != nil {
		return nil, tonefx.NewError(tonefx.KindParseFailure, err)
	}
	return c, nil
}

// SavePresetToPath serializes c to the preset text grammar and writes it
// to path.
func SavePresetToPath(c *preset.Collection, path string) error {
	data := preset.Serialize(c)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return tonefx.NewError(tonefx.KindPipelineFailure, err)
	}
	return nil
}

// UsePresets installs presets as the session's active preset library and
// applies to each filter the first preset whose filter name equals the
// filter's Name(), per spec §4.9. Tags set with AssociateFilterWithId are
// not consulted for this match. Calling
// UsePresets a second time with the same collection is a no-op beyond
// reapplying identical parameter values (idempotent, per the spec's
// "applying the same collection twice must be a no-op" note).
func (s *Session) UsePresets(presets *preset.Collection) error {
	s.mu.Lock()
	s.presets = presets
	filters := make(map[filter.Filter]*filterMeta, len(s.meta))
	for f, m := range s.meta {
		filters[f] = m
	}
	s.mu.Unlock()

	for f := range filters {
		matches := presets.CollectionForFilter(f.Name())
		if len(matches) == 0 {
			continue
		}
		if err := f.FromPreset(matches[0]); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.markAllDirtyLocked()
	s.mu.Unlock()
	return nil
}

// CurrentStateToPresetCollection exports every filter in the stack,
// enabled or not, as a FilterPreset named presetName, independent of the
// filter's enabled/mandatory state.
func (s *Session) CurrentStateToPresetCollection(presetName string) *preset.Collection {
	s.mu.Lock()
	all := s.stack.Filters()
	s.mu.Unlock()

	c := preset.NewCollection()
	for _, f := range all {
		c.Append(f.ToPreset(presetName))
	}
	return c
}

// CurrentActiveStateToPresetCollection is CurrentStateToPresetCollection
// restricted to filters that would currently render (enabled or
// mandatory), per spec §4.9's active-state export.
func (s *Session) CurrentActiveStateToPresetCollection(presetName string) *preset.Collection {
	renderable := s.Renderable()
	c := preset.NewCollection()
	for _, f := range renderable {
		c.Append(f.ToPreset(presetName))
	}
	return c
}

// SetPresetByIndex applies the i'th preset in presets matching tag's
// filter to that filter, per spec §4.9's indexed preset-cycling
// operation (e.g. stepping through a curated collection of vignette
// looks). Returns ErrFilterNotFound if no filter in s carries tag, and
// ErrPresetIndexRange if i is out of range for that filter's presets.
func SetPresetByIndex(s *Session, presets *preset.Collection, tag filter.Tag, i int) error {
	f, ok := s.filterByTag(tag)
	if !ok {
		return ErrFilterNotFound
	}
	p, ok := presets.ByIndex(f.Name(), i)
	if !ok {
		return ErrPresetIndexRange
	}
	if err := f.FromPreset(p); err != nil {
		return err
	}
	s.mu.Lock()
	if m, ok := s.meta[f]; ok {
		m.dirty = true
	}
	s.mu.Unlock()
	return nil
}
