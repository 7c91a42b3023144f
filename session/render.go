package session

import (
	"github.com/tonefx/tonefx"
	"github.com/tonefx/tonefx/action"
	"github.com/tonefx/tonefx/backend"
	"github.com/tonefx/tonefx/canvas"
	"github.com/tonefx/tonefx/filter"
	"github.com/tonefx/tonefx/layer"
)

func fullRect(w, h int) tonefx.Rect { return tonefx.NewRect(0, 0, w, h) }

// ensureRenderTargetLocked returns previewImage's bottom layer, creating it
// on device (matching the top layer's format/size) if this is the first
// render. It reads no Session state; its callers, the RenderPreview actions
// of UpdatePreview and AsyncUpdatePreview, do not hold s.mu.
func ensureRenderTargetLocked(device backend.Device, img *canvas.Image) (*layer.ImageLayer, error) {
	if img.Len() >= 2 {
		bottom, _ := img.BottomLayer()
		if err := bottom.UpdateDataForBackend(device); err != nil {
			return nil, err
		}
		return bottom, nil
	}
	top, ok := img.TopLayer()
	if !ok {
		return nil, ErrNoOriginalImage
	}
	if err := top.UpdateDataForBackend(device); err != nil {
		return nil, err
	}
	dst, err := layer.New("rendered", device, top.Format(), top.Width(), top.Height(), nil)
	if err != nil {
		return nil, err
	}
	if err := img.AppendLayer(dst); err != nil {
		return nil, err
	}
	return dst, nil
}

// UpdatePreview runs a RenderPreview action synchronously (spec §4.7): if
// force is set every filter is marked dirty first; the preview controller's
// max-FPS rate limit is then consulted (see preview.Controller.ShouldRender)
// and, if it permits a re-render, the enabled-or-mandatory filter stack
// renders from the preview's top (source) layer into its bottom (rendered)
// layer.
func (s *Session) UpdatePreview(force bool) error {
	s.mu.Lock()
	if force {
		s.markAllDirtyLocked()
	}
	preview := s.previewImage
	s.mu.Unlock()

	if preview == nil {
		return ErrNoPreviewImage
	}
	if !s.previewCtl.ShouldRender(force) {
		return nil
	}

	device := s.renderDevice()
	renderable := s.Renderable()

	a := action.NewRenderPreview(
		func() error {
			src, ok := preview.TopLayer()
			if !ok {
				return ErrNoPreviewImage
			}
			dst, err := ensureRenderTargetLocked(device, preview)
			if err != nil {
				return err
			}
			return filter.Render(device, dst, src, renderable)
		},
		func() error {
			s.mu.Lock()
			s.clearAllDirtyLocked()
			s.mu.Unlock()
			return nil
		},
	)
	if err := a.Process(); err != nil {
		return err
	}
	return a.Commit()
}

// AsyncUpdatePreview enqueues a preview re-render onto the session's
// thread pool instead of blocking the caller, with one exception: per
// spec §5, a RenderPreview action whose device is the GL backend must run
// both process() and commit() on the origin thread, so when the preview
// device is GL, AsyncUpdatePreview falls back to UpdatePreview's
// synchronous path rather than dispatching to a worker.
//
// Only one preview action may be in flight at a time (spec §5's ordering
// note): if a previously dispatched action has not finished,
// AsyncUpdatePreview is a no-op. If it has finished, its result is
// committed first (which must happen on this call's goroutine, matching
// the goroutine that dispatched it — see action.Base.Commit) before a new
// render is kicked off.
func (s *Session) AsyncUpdatePreview(force bool) error {
	device := s.renderDevice()
	if device.ID() == backend.GL {
		return s.UpdatePreview(force)
	}

	s.mu.Lock()
	if force {
		s.markAllDirtyLocked()
	}
	preview := s.previewImage
	pending := s.pendingPreview
	s.mu.Unlock()

	if preview == nil {
		return ErrNoPreviewImage
	}

	if pending != nil {
		if !pending.Finished() {
			return nil
		}
		if err := pending.Commit(); err != nil {
			return err
		}
	}

	if !s.previewCtl.ShouldRender(force) {
		return nil
	}

	renderable := s.Renderable()
	a := action.NewRenderPreview(
		func() error {
			src, ok := preview.TopLayer()
			if !ok {
				return ErrNoPreviewImage
			}
			dst, err := ensureRenderTargetLocked(device, preview)
			if err != nil {
				return err
			}
			return filter.Render(device, dst, src, renderable)
		},
		func() error {
			s.mu.Lock()
			s.clearAllDirtyLocked()
			s.mu.Unlock()
			return nil
		},
	)

	s.mu.Lock()
	s.pendingPreview = a
	s.mu.Unlock()

	s.pool.Run(func() { _ = a.Process() })
	return nil
}

// AsyncRenderToLayer enqueues a one-shot render of the current filter
// stack from the original image's top layer into destination, on the
// thread pool. useCPU forces the CPU backend regardless of any configured
// GL preview device. The returned action must be driven to completion by
// the caller: poll Finished() and then call Commit() from the same
// goroutine that called AsyncRenderToLayer.
func (s *Session) AsyncRenderToLayer(destination *layer.ImageLayer, useCPU bool) (*action.Base, error) {
	s.mu.Lock()
	original := s.originalImage
	s.mu.Unlock()
	if original == nil {
		return nil, ErrNoOriginalImage
	}
	src, ok := original.TopLayer()
	if !ok {
		return nil, ErrNoOriginalImage
	}

	device := s.renderDevice()
	if useCPU {
		device = s.device
	}
	renderable := s.Renderable()

	a := action.NewRenderPreview(
		func() error {
			if err := destination.UpdateDataForBackend(device); err != nil {
				return err
			}
			if err := src.UpdateDataForBackend(device); err != nil {
				return err
			}
			return filter.Render(device, destination, src, renderable)
		},
		func() error { return nil },
	)
	s.pool.Run(func() { _ = a.Process() })
	return a, nil
}
