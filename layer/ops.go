package layer

import (
	"github.com/tonefx/tonefx"
	"github.com/tonefx/tonefx/backend"
)

// Fill overwrites every backend object with pixelValue (PixelSize() bytes).
// Fill needs no prior pixel content, so it is applied to each backend
// independently rather than staged through a CPU rebuild.
func (l *ImageLayer) Fill(pixelValue []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.backends) == 0 {
		return ErrNoBackendObjects
	}
	for _, bo := range l.backends {
		if err := l.fillBackend(bo, pixelValue); err != nil {
			l.resetLocked()
			return err
		}
	}
	return nil
}

func (l *ImageLayer) fillBackend(bo *backendObject, pixelValue []byte) error {
	if bo.cpu != nil {
		return bo.cpu.Fill(pixelValue)
	}
	data := make([]byte, l.width*l.height*len(pixelValue))
	for p := 0; p < l.width*l.height; p++ {
		copy(data[p*len(pixelValue):], pixelValue)
	}
	full := tonefx.NewRect(0, 0, l.width, l.height)
	return bo.gpu.Upload(data, l.format, l.width, l.height, full, 0, 0)
}

// FillChannel overwrites channelIndex's lane in every pixel with
// channelValue. Unlike Fill, a single-channel write is not something every
// backend can do without reading its own prior content, so this is staged
// through the CPU backend object and the other backends are rebuilt from
// its result; it requires a CPU backend object be present.
func (l *ImageLayer) FillChannel(channelIndex int, channelValue []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if channelIndex < 0 || channelIndex >= l.format.ChannelCount {
		return ErrChannelOutOfRange
	}
	cpuObj, ok := l.backends[backend.CPU]
	if !ok {
		return ErrNoCPUBackend
	}
	if err := cpuObj.cpu.FillChannel(channelIndex, channelValue); err != nil {
		l.resetLocked()
		return err
	}
	if err := l.rebuildOtherBackendsFromCPULocked(cpuObj.cpu); err != nil {
		l.resetLocked()
		return err
	}
	return nil
}

// Copy copies srcRect of source into this layer at (dstX,dstY). The source
// pixels are retrieved once and then uploaded to every backend object
// independently, since the write does not depend on this layer's prior
// content.
func (l *ImageLayer) Copy(source *ImageLayer, srcRect tonefx.Rect, dstX, dstY int) error {
	if source.Format() != l.format {
		return ErrFormatMismatch
	}
	data, err := source.Retrieve(srcRect)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.backends) == 0 {
		return ErrNoBackendObjects
	}
	dstRect := tonefx.NewRect(dstX, dstY, srcRect.Width, srcRect.Height)
	if !dstRect.ValidFor(l.width, l.height) {
		return ErrRectOutOfBounds
	}
	packed := tonefx.NewRect(0, 0, srcRect.Width, srcRect.Height)
	for _, bo := range l.backends {
		var err error
		if bo.cpu != nil {
			err = bo.cpu.CopyRaw(data, l.format, srcRect.Width, srcRect.Height, packed, dstX, dstY)
		} else {
			err = bo.gpu.Upload(data, l.format, srcRect.Width, srcRect.Height, packed, dstX, dstY)
		}
		if err != nil {
			l.resetLocked()
			return err
		}
	}
	return nil
}

// CopyChannel copies srcChannelIndex of source into dstChannelIndex of this
// layer, over srcRect placed at (dstX,dstY). Both layers must have a CPU
// backend object present: channel-level copies stage through it.
func (l *ImageLayer) CopyChannel(srcChannelIndex, dstChannelIndex int, source *ImageLayer, srcRect tonefx.Rect, dstX, dstY int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	cpuObj, ok := l.backends[backend.CPU]
	if !ok {
		return ErrNoCPUBackend
	}

	source.mu.Lock()
	srcCPU, srcOK := source.backends[backend.CPU]
	source.mu.Unlock()
	if !srcOK {
		return ErrNoCPUBackend
	}

	if err := cpuObj.cpu.CopyChannel(srcChannelIndex, dstChannelIndex, srcCPU.cpu, srcRect, dstX, dstY); err != nil {
		l.resetLocked()
		return err
	}
	if err := l.rebuildOtherBackendsFromCPULocked(cpuObj.cpu); err != nil {
		l.resetLocked()
		return err
	}
	return nil
}

// AddAlphaChannel appends a zero-filled alpha lane to every backend object,
// staged through the CPU backend object, which must be present.
func (l *ImageLayer) AddAlphaChannel() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	cpuObj, ok := l.backends[backend.CPU]
	if !ok {
		return ErrNoCPUBackend
	}
	if err := cpuObj.cpu.AddAlphaChannel(); err != nil {
		return err
	}
	l.format = cpuObj.cpu.Format()
	if err := l.rebuildOtherBackendsFromCPULocked(cpuObj.cpu); err != nil {
		l.resetLocked()
		return err
	}
	return nil
}

// RemoveAlphaChannel strips the alpha lane from every backend object,
// staged through the CPU backend object, which must be present. Returns
// false, nil (not an error) if the layer's format already has no alpha
// lane.
func (l *ImageLayer) RemoveAlphaChannel() (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	cpuObj, ok := l.backends[backend.CPU]
	if !ok {
		return false, ErrNoCPUBackend
	}
	if !cpuObj.cpu.Format().HasAlpha() {
		return false, nil
	}
	if err := cpuObj.cpu.DiscardAlphaChannel(); err != nil {
		return false, err
	}
	l.format = cpuObj.cpu.Format()
	if err := l.rebuildOtherBackendsFromCPULocked(cpuObj.cpu); err != nil {
		l.resetLocked()
		return false, err
	}
	return true, nil
}

// SetChannelFromLayer copies source's channel 0 into this layer's
// dstChannelIndex, staged through both layers' CPU backend objects (used by
// AlphaMaskMode to mix mask data into a parent layer's alpha lane).
func (l *ImageLayer) SetChannelFromLayer(dstChannelIndex int, source *ImageLayer) error {
	full := tonefx.NewRect(0, 0, l.width, l.height)
	return l.CopyChannel(0, dstChannelIndex, source, full, 0, 0)
}
