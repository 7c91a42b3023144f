package session

import (
	"github.com/tonefx/tonefx/filter"
	"github.com/tonefx/tonefx/internal/parallel"
	"github.com/tonefx/tonefx/preview"
)

// Reset discards the original and preview images, the filter stack, and
// the preset library, returning the session to its just-constructed state
// (device handles and thread pool are kept, per spec §4.7's "reset clears
// image and filter state, not the runtime handles").
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.originalImage = nil
	s.previewImage = nil
	s.stack = filter.NewStack()
	s.meta = map[filter.Filter]*filterMeta{}
	s.alphaPlane = nil
	s.cachedAlphaPlane = false
	s.imagePath = ""
	s.sessionPath = ""
	s.pendingPreview = nil
	s.presets = nil
}

// Clone returns an independent Session sharing this session's device
// handles and pipeline but with its own filter stack (deep-copied via
// Filter.Clone), preset library, and thread pool. The original and
// preview images are not duplicated; call ImportImageFromPath/Data on the
// clone to populate them.
func (s *Session) Clone() (*Session, error) {
	s.mu.Lock()
	name := s.name
	device := s.device
	previewDevice := s.previewDevice
	pipeline := s.pipeline
	maxThreads := s.maxThreads
	previewOpts := append([]preview.Option(nil), s.previewOpts...)
	filters := s.stack.Filters()
	metaCopy := make(map[filter.Filter]filterMeta, len(s.meta))
	for f, m := range s.meta {
		metaCopy[f] = *m
	}
	s.mu.Unlock()

	opts := []Option{WithName(name), WithMaxThreads(maxThreads), WithPreviewOptions(previewOpts...)}
	if previewDevice != nil {
		opts = append(opts, WithGLDevice(previewDevice))
	}
	out, err := New(pipeline, opts...)
	if err != nil {
		return nil, err
	}
	out.mu.Lock()
	out.device = device
	out.mu.Unlock()

	for _, f := range filters {
		clone := f.Clone()
		if err := out.AddFilter(clone); err != nil {
			return nil, err
		}
		if orig, ok := metaCopy[f]; ok {
			out.mu.Lock()
			*out.meta[clone] = orig
			out.mu.Unlock()
		}
	}
	return out, nil
}

// SetThreadCount replaces the session's worker pool with one sized n,
// first draining every runnable already enqueued on the old pool.
func (s *Session) SetThreadCount(n int) {
	s.mu.Lock()
	old := s.pool
	s.mu.Unlock()
	old.WaitForAll()

	pool := parallel.New(n)
	s.mu.Lock()
	s.pool = pool
	s.maxThreads = n
	s.mu.Unlock()
}

// Synchronize blocks until every action dispatched on the session's
// thread pool has completed, per spec §5's drain-before-shutdown note.
func (s *Session) Synchronize() {
	s.mu.Lock()
	pool := s.pool
	s.mu.Unlock()
	pool.WaitForAll()
}
