package session

import (
	"os"

	"github.com/tonefx/tonefx"
	"github.com/tonefx/tonefx/action"
	"github.com/tonefx/tonefx/preset"
)

// sessionMetaFilterName tags the sentinel preset SerializeSession prepends
// to carry session-level metadata (currently just the imported image's
// path) that has no natural home in a per-filter FilterPreset.
const sessionMetaFilterName = "__session__"

// SerializeSession writes the session's active filter state (per
// CurrentActiveStateToPresetCollection) plus its imported image path to
// path, using the same textual preset grammar preset.Serialize produces
// elsewhere — the simplest contract consistent with SerializeSession
// appearing alongside Import/Export/RenderPreview in the Action taxonomy.
func (s *Session) SerializeSession(path string) error {
	var data []byte

	a := action.NewSerializeSession(
		func() error {
			c := s.CurrentActiveStateToPresetCollection("session")
			s.mu.Lock()
			imagePath := s.imagePath
			s.mu.Unlock()

			meta := preset.New(sessionMetaFilterName, "session")
			meta.Strings["imagePath"] = imagePath
			full := preset.NewCollection()
			full.Append(meta)
			for _, p := range c.Presets() {
				full.Append(p)
			}
			data = preset.Serialize(full)
			return nil
		},
		func() error {
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return tonefx.NewError(tonefx.KindPipelineFailure, err)
			}
			s.mu.Lock()
			s.sessionPath = path
			s.mu.Unlock()
			return nil
		},
	)
	if err := a.Process(); err != nil {
		return err
	}
	return a.Commit()
}

// DeserializeSession reads a file written by SerializeSession, importing
// the recorded image (if the session has a pipeline configured) and
// applying the recorded preset collection to the session's current filter
// stack via UsePresets.
func (s *Session) DeserializeSession(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return tonefx.NewError(tonefx.KindPipelineFailure, err)
	}
	full, err := preset.Parse(data)
	if err != nil {
		return tonefx.NewError(tonefx.KindParseFailure, err)
	}

	var imagePath string
	filters := preset.NewCollection()
	for _, p := range full.Presets() {
		if p.FilterName == sessionMetaFilterName {
			imagePath = p.Strings["imagePath"]
			continue
		}
		filters.Append(p)
	}

	if imagePath != "" {
		if err := s.ImportImageFromPath(imagePath); err != nil {
			return err
		}
	}
	return s.UsePresets(filters)
}
