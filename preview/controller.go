// Package preview implements the preview controller from spec §4.8: it
// decides the preview plane's scaling from a pixel-count budget, rebuilds
// it on import, and rate-limits re-renders by a max-FPS wall clock.
//
// Grounded on gogpu-gg's functional-options constructors
// (gg.NewContext(w,h,opts...)) for Controller's knobs, and on
// internal/image's bucketed-allocation style for why a scale factor is
// picked iteratively rather than solved in closed form: the teacher's own
// image pool sizing favors a simple, auditable stepping loop over an
// algebraic shortcut.
package preview

import (
	"sync"
	"time"

	"github.com/tonefx/tonefx/backend"
	"github.com/tonefx/tonefx/canvas"
	"github.com/tonefx/tonefx/layer"
	"github.com/tonefx/tonefx/ops"
)

const (
	// defaultMaxMegapixels is the default preview pixel-count budget.
	defaultMaxMegapixels = 50.0
	// defaultQuality is the default quality factor applied to the budget.
	defaultQuality = 1.0
	// defaultMaxFPS bounds how often updatePreview actually re-renders.
	defaultMaxFPS = 30.0
	// scaleStep is the per-iteration reduction spec §4.8 names explicitly.
	scaleStep = 0.015
)

// Option configures a Controller at construction.
type Option func(*Controller)

// WithMaxMegapixels sets the preview pixel-count budget (megapixels).
func WithMaxMegapixels(mp float64) Option {
	return func(c *Controller) { c.maxMegapixels = mp }
}

// WithQuality sets the quality factor q applied to the budget:
// adjustedMax = maxMegapixels * q.
func WithQuality(q float64) Option {
	return func(c *Controller) { c.quality = q }
}

// WithMaxFPS sets the re-render rate limit.
func WithMaxFPS(fps float64) Option {
	return func(c *Controller) { c.maxFPS = fps }
}

// Controller owns the preview-scaling decision and the render-rate limiter.
// Safe for concurrent use.
type Controller struct {
	mu sync.Mutex

	maxMegapixels float64
	quality       float64
	maxFPS        float64

	isScaledDown bool
	scaleFactor  float64

	lastRender time.Time
	hasRender  bool
}

// NewController constructs a Controller with spec §4.8's defaults (50
// megapixels, quality 1.0), overridden by opts.
func NewController(opts ...Option) *Controller {
	c := &Controller{
		maxMegapixels: defaultMaxMegapixels,
		quality:       defaultQuality,
		maxFPS:        defaultMaxFPS,
		scaleFactor:   1.0,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AdjustedMaxMegapixels returns maxMegapixels * quality.
func (c *Controller) AdjustedMaxMegapixels() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.maxMegapixels * c.quality
}

// IsScaledDown reports whether the most recent BuildPreview produced a
// downsampled preview plane rather than reusing the original at full
// resolution.
func (c *Controller) IsScaledDown() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isScaledDown
}

// ScaleFactor returns the linear scale applied to the original's
// dimensions to produce the preview plane (1.0 when not scaled down).
func (c *Controller) ScaleFactor() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scaleFactor
}

// BuildPreview computes the preview plane for original per spec §4.8: if
// the original's pixel count already fits strictly under the adjusted
// budget, the preview *is* the original (same canvas.Image,
// isScaledDown=false). Otherwise a scale factor is found by reducing from
// 1.0 in scaleStep increments until the scaled pixel count fits, a
// downsampled plane is built via ops.AreaSample (the "2x2 area sampler" of
// spec §4.8), and a second copy of that same plane — named
// "PreviewTemplate" — is appended onto original. BuildPreview does not
// read that layer back: every call samples the original's top layer again.
//
// Boundary note: spec §4.8's prose gates on "originalMegapixels ≤
// adjustedMax", but spec §8 scenario 3 puts a 12.0-megapixel original
// against a 12-megapixel budget and still expects isScaledDown=true. This
// implementation takes the scenario as ground truth for the boundary and
// compares with strict "<", so an original sitting exactly on the budget
// is treated as over budget rather than within it; see DESIGN.md for the
// full reconciliation of the two sections.
func (c *Controller) BuildPreview(device backend.Device, original *canvas.Image) (*canvas.Image, error) {
	top, ok := original.TopLayer()
	if !ok {
		return nil, ErrEmptyOriginal
	}

	w, h := top.Width(), top.Height()
	originalMP := float64(w*h) / 1_000_000.0
	adjusted := c.AdjustedMaxMegapixels()

	if originalMP < adjusted {
		c.mu.Lock()
		c.isScaledDown = false
		c.scaleFactor = 1.0
		c.mu.Unlock()
		return original, nil
	}

	scale := 1.0
	for float64(w)*scale*float64(h)*scale/1_000_000.0 >= adjusted && scale > scaleStep {
		scale -= scaleStep
	}

	dstW := maxInt(1, int(float64(w)*scale))
	dstH := maxInt(1, int(float64(h)*scale))

	srcBytes, err := top.Retrieve(fullRect(w, h))
	if err != nil {
		return nil, err
	}
	format := top.Format()
	dstBytes := make([]byte, dstW*dstH*format.PixelSize())
	ops.AreaSample(dstBytes, dstW, dstH, srcBytes, w, h, format)

	previewLayer, err := layer.New("Preview", device, format, dstW, dstH, dstBytes)
	if err != nil {
		return nil, err
	}
	templateLayer, err := layer.New("PreviewTemplate", device, format, dstW, dstH, dstBytes)
	if err != nil {
		return nil, err
	}
	if err := original.AppendLayer(templateLayer); err != nil {
		return nil, err
	}

	previewImage := canvas.New(format)
	if err := previewImage.AppendLayer(previewLayer); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.isScaledDown = true
	c.scaleFactor = scale
	c.mu.Unlock()

	return previewImage, nil
}

// ShouldRender reports whether an updatePreview call arriving right now
// should actually re-render, per spec §4.8's max-FPS rate limit: if force
// is set, or no prior render is recorded, or at least 1000/maxFPS ms have
// elapsed since the last one, it returns true and resets the timer.
// Otherwise it returns false without touching the timer.
func (c *Controller) ShouldRender(force bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !force && c.hasRender {
		minInterval := time.Duration(1000.0/c.maxFPS) * time.Millisecond
		if time.Since(c.lastRender) < minInterval {
			return false
		}
	}
	c.lastRender = time.Now()
	c.hasRender = true
	return true
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
