package layer

import (
	"github.com/tonefx/tonefx"
	"github.com/tonefx/tonefx/backend"
	"github.com/tonefx/tonefx/pixfmt"
)

// Duplicate returns a new layer with the same contents, replicated across
// the same set of backend devices as this one.
func (l *ImageLayer) Duplicate() (*ImageLayer, error) {
	return l.DuplicateArea(tonefx.NewRect(0, 0, l.Width(), l.Height()))
}

// DuplicateArea returns a new layer containing just area of this layer's
// pixels, replicated across the same set of backend devices as this one.
func (l *ImageLayer) DuplicateArea(area tonefx.Rect) (*ImageLayer, error) {
	l.mu.Lock()
	devices := l.deviceListLocked()
	format := l.format
	l.mu.Unlock()

	data, err := l.Retrieve(area)
	if err != nil {
		return nil, err
	}
	if len(devices) == 0 {
		return nil, ErrNoBackendObjects
	}

	out, err := New(l.name, devices[0], format, area.Width, area.Height, data)
	if err != nil {
		return nil, err
	}
	for _, device := range devices[1:] {
		if err := out.UpdateDataForBackend(device); err != nil {
			out.Reset()
			return nil, err
		}
	}
	return out, nil
}

// DuplicateChannel extracts channelIndex (over area, or the full layer if
// area is nil) into a new single-channel layer, replicated across the same
// set of backend devices as this one.
func (l *ImageLayer) DuplicateChannel(channelIndex int, area *tonefx.Rect) (*ImageLayer, error) {
	rect := tonefx.NewRect(0, 0, l.Width(), l.Height())
	if area != nil {
		rect = *area
	}

	l.mu.Lock()
	devices := l.deviceListLocked()
	chSize := l.format.ChannelSize()
	l.mu.Unlock()

	data, err := l.RetrieveChannel(channelIndex, rect)
	if err != nil {
		return nil, err
	}
	if len(devices) == 0 {
		return nil, ErrNoBackendObjects
	}

	var channelFormat pixfmt.Format
	switch chSize {
	case 2:
		channelFormat = pixfmt.Mono16
	default:
		channelFormat = pixfmt.Mono8
	}

	out, err := New(l.name, devices[0], channelFormat, rect.Width, rect.Height, data)
	if err != nil {
		return nil, err
	}
	for _, device := range devices[1:] {
		if err := out.UpdateDataForBackend(device); err != nil {
			out.Reset()
			return nil, err
		}
	}
	return out, nil
}

// deviceListLocked returns the devices backing this layer's current
// backend objects. Called with l.mu held.
func (l *ImageLayer) deviceListLocked() []backend.Device {
	devices := make([]backend.Device, 0, len(l.backends))
	for _, bo := range l.backends {
		devices = append(devices, bo.device)
	}
	return devices
}
