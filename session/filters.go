package session

import "github.com/tonefx/tonefx/filter"

// FilterPlugin exposes a bundle of filters to add in bulk. The plugin
// discovery protocol itself (loadIoPluginFromPath and friends) is out of
// core per spec §6; this interface is the session-side surface a loaded
// plugin must satisfy.
type FilterPlugin interface {
	Filters() []filter.Filter
}

// AddFilter appends f to the filter stack with default meta-info
// (disabled, not mandatory, not dirty) and registers it under its own
// Tag(). Returns ErrDuplicateFilter if f is already present.
func (s *Session) AddFilter(f filter.Filter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addFilterLocked(f)
}

func (s *Session) addFilterLocked(f filter.Filter) error {
	if _, exists := s.meta[f]; exists {
		return ErrDuplicateFilter
	}
	s.stack.Append(f)
	s.meta[f] = &filterMeta{tag: f.Tag()}
	return nil
}

// RemoveFilter drops f from the stack and its meta-info.
func (s *Session) RemoveFilter(f filter.Filter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.meta[f]; !exists {
		return ErrFilterNotFound
	}
	if err := s.stack.Remove(f); err != nil {
		return err
	}
	delete(s.meta, f)
	return nil
}

// AddFiltersFromCollection adds every filter in fs, validating that none
// duplicate an existing or sibling entry before appending any of them.
func (s *Session) AddFiltersFromCollection(fs []filter.Filter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[filter.Filter]bool{}
	for _, f := range fs {
		if _, exists := s.meta[f]; exists || seen[f] {
			return ErrDuplicateFilter
		}
		seen[f] = true
	}
	for _, f := range fs {
		if err := s.addFilterLocked(f); err != nil {
			return err
		}
	}
	return nil
}

// AddFiltersFromPlugin adds every filter p.Filters() exposes.
func (s *Session) AddFiltersFromPlugin(p FilterPlugin) error {
	return s.AddFiltersFromCollection(p.Filters())
}

// AssociateFilterWithId attaches tag to f's meta-info, the enumerated
// identity preset lookup routes by (spec §4.7).
func (s *Session) AssociateFilterWithId(f filter.Filter, tag filter.Tag) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.meta[f]
	if !ok {
		return ErrFilterNotFound
	}
	m.tag = tag
	return nil
}

func (s *Session) metaByRefLocked(f filter.Filter) (*filterMeta, bool) {
	m, ok := s.meta[f]
	return m, ok
}

func (s *Session) metaByNameLocked(name string) (*filterMeta, bool) {
	for f, m := range s.meta {
		if f.Name() == name {
			return m, true
		}
	}
	return nil, false
}

func (s *Session) metaByTagLocked(tag filter.Tag) (*filterMeta, bool) {
	for f, m := range s.meta {
		if f.Tag() == tag || m.tag == tag {
			return m, true
		}
	}
	return nil, false
}

func (s *Session) filterByTagLocked(tag filter.Tag) (filter.Filter, bool) {
	for f, m := range s.meta {
		if f.Tag() == tag || m.tag == tag {
			return f, true
		}
	}
	return nil, false
}

// filterByTag is package-internal, used by SetPresetByIndex.
func (s *Session) filterByTag(tag filter.Tag) (filter.Filter, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filterByTagLocked(tag)
}

// EnableFilter/EnableFilterByName/EnableFilterByTag mark a filter enabled,
// so ShouldRenderFilter reports true for it.
func (s *Session) EnableFilter(f filter.Filter) error {
	return s.setEnabled(s.metaByRefLocked, f, true)
}
func (s *Session) EnableFilterByName(name string) error {
	return s.setEnabledByName(name, true)
}
func (s *Session) EnableFilterByTag(tag filter.Tag) error {
	return s.setEnabledByTag(tag, true)
}

// DisableFilter/DisableFilterByName/DisableFilterByTag clear a filter's
// enabled flag. A mandatory filter still renders (ShouldRenderFilter checks
// enabled OR mandatory).
func (s *Session) DisableFilter(f filter.Filter) error {
	return s.setEnabled(s.metaByRefLocked, f, false)
}
func (s *Session) DisableFilterByName(name string) error {
	return s.setEnabledByName(name, false)
}
func (s *Session) DisableFilterByTag(tag filter.Tag) error {
	return s.setEnabledByTag(tag, false)
}

// SetMandatoryFilter/SetMandatoryFilterByName/SetMandatoryFilterByTag mark
// a filter as rendering regardless of its enabled flag.
func (s *Session) SetMandatoryFilter(f filter.Filter) error {
	return s.setMandatory(s.metaByRefLocked, f, true)
}
func (s *Session) SetMandatoryFilterByName(name string) error {
	return s.setMandatoryByName(name, true)
}
func (s *Session) SetMandatoryFilterByTag(tag filter.Tag) error {
	return s.setMandatoryByTag(tag, true)
}

// UnsetMandatoryFilter/UnsetMandatoryFilterByName/UnsetMandatoryFilterByTag
// clear a filter's mandatory flag.
func (s *Session) UnsetMandatoryFilter(f filter.Filter) error {
	return s.setMandatory(s.metaByRefLocked, f, false)
}
func (s *Session) UnsetMandatoryFilterByName(name string) error {
	return s.setMandatoryByName(name, false)
}
func (s *Session) UnsetMandatoryFilterByTag(tag filter.Tag) error {
	return s.setMandatoryByTag(tag, false)
}

func (s *Session) setEnabled(lookup func(filter.Filter) (*filterMeta, bool), f filter.Filter, v bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := lookup(f)
	if !ok {
		return ErrFilterNotFound
	}
	m.enabled = v
	return nil
}

func (s *Session) setEnabledByName(name string, v bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.metaByNameLocked(name)
	if !ok {
		return ErrFilterNotFound
	}
	m.enabled = v
	return nil
}

func (s *Session) setEnabledByTag(tag filter.Tag, v bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.metaByTagLocked(tag)
	if !ok {
		return ErrFilterNotFound
	}
	m.enabled = v
	return nil
}

func (s *Session) setMandatory(lookup func(filter.Filter) (*filterMeta, bool), f filter.Filter, v bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := lookup(f)
	if !ok {
		return ErrFilterNotFound
	}
	m.mandatory = v
	return nil
}

func (s *Session) setMandatoryByName(name string, v bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.metaByNameLocked(name)
	if !ok {
		return ErrFilterNotFound
	}
	m.mandatory = v
	return nil
}

func (s *Session) setMandatoryByTag(tag filter.Tag, v bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.metaByTagLocked(tag)
	if !ok {
		return ErrFilterNotFound
	}
	m.mandatory = v
	return nil
}

// ShouldRenderFilter reports whether f renders in the next pass: enabled
// OR mandatory, per spec §4.7.
func (s *Session) ShouldRenderFilter(f filter.Filter) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.meta[f]
	if !ok {
		return false
	}
	return m.enabled || m.mandatory
}

// Renderable returns the stack-ordered subset of filters that should
// render right now (spec §4.6 step 1 of the render protocol).
func (s *Session) Renderable() []filter.Filter {
	s.mu.Lock()
	all := s.stack.Filters()
	meta := make(map[filter.Filter]*filterMeta, len(s.meta))
	for f, m := range s.meta {
		meta[f] = m
	}
	s.mu.Unlock()

	out := make([]filter.Filter, 0, len(all))
	for _, f := range all {
		if m := meta[f]; m != nil && (m.enabled || m.mandatory) {
			out = append(out, f)
		}
	}
	return out
}

// markAllDirtyLocked sets every filter's dirty flag, used after a forced
// preview update and after a fresh import.
func (s *Session) markAllDirtyLocked() {
	for _, m := range s.meta {
		m.dirty = true
	}
}

func (s *Session) clearAllDirtyLocked() {
	for _, m := range s.meta {
		m.dirty = false
	}
}
