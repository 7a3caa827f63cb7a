package canvas

import (
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/parthubhe/DeepFakeStudio/internal/geometry"
	"github.com/parthubhe/DeepFakeStudio/internal/mask"
)

// Button identifies the pointer button of an event.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonSecondary
	ButtonOther
)

// PointerEvent is a raw pointer event in display coordinates.
type PointerEvent struct {
	ClientX float64
	ClientY float64
	Button  Button
	Shift   bool
}

// AddPointFunc receives a classified add-point command and returns the
// authoritative point set after the append. The canvas redraws from the
// returned set synchronously.
type AddPointFunc func(label mask.Label, p mask.Point) mask.PointSet

// Marker radius in native pixels, so visual size is independent of the
// display scale.
const markerRadius = 6

var (
	positiveColor = color.RGBA{R: 0x00, G: 0xc8, B: 0x00, A: 0xff}
	negativeColor = color.RGBA{R: 0xdc, G: 0x00, B: 0x00, A: 0xff}
	clearColor    = color.RGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xff}
)

// Canvas renders the visible point set for one mask pass over the clip frame
// and translates raw pointer events into add-point commands.
type Canvas struct {
	mapper       geometry.Mapper
	nativeWidth  int
	nativeHeight int
	strict       bool

	frame    image.Image
	visible  mask.PointSet
	rendered *image.RGBA
	onAdd    AddPointFunc
}

// New constructs a canvas for a clip frame of the given native dimensions.
// strictButtons enables the deployment mode that requires the primary button
// for positive marks and the secondary button for negative marks.
func New(mapper geometry.Mapper, nativeWidth, nativeHeight int, strictButtons bool, onAdd AddPointFunc) *Canvas {
	c := &Canvas{
		mapper:       mapper,
		nativeWidth:  nativeWidth,
		nativeHeight: nativeHeight,
		strict:       strictButtons,
		visible:      mask.NewPointSet(),
		onAdd:        onAdd,
	}
	c.redraw()
	return c
}

// SuppressContextMenu reports whether the host must block the platform's
// native context menu on the secondary button. Without this, every negative
// mark in strict mode would pop a menu.
func (c *Canvas) SuppressContextMenu() bool {
	return c.strict
}

// SetFrame installs the background frame image and redraws. A nil frame is
// legal: the canvas keeps accepting points against native resolution while
// the operator sees a placeholder background.
func (c *Canvas) SetFrame(frame image.Image) {
	c.frame = frame
	c.redraw()
}

// Render performs an idempotent full redraw from the given point set.
func (c *Canvas) Render(points mask.PointSet) {
	c.visible = points.Normalized()
	c.redraw()
}

// HandlePointer classifies the event and, when it denotes an add, maps the
// position to native pixels, forwards the command, and redraws synchronously.
// It reports whether a point was added.
func (c *Canvas) HandlePointer(ev PointerEvent) bool {
	label, ok := c.Classify(ev)
	if !ok {
		return false
	}
	p := c.mapper.ToNative(ev.ClientX, ev.ClientY)
	if c.onAdd == nil {
		c.visible.Add(label, p)
		c.redraw()
		return true
	}
	c.visible = c.onAdd(label, p).Normalized()
	c.redraw()
	return true
}

// Classify applies the single deterministic rule: a held shift modifier means
// negative, otherwise positive. In strict-button mode the event must also
// carry the matching button (primary for positive, secondary for negative)
// or it is ignored.
func (c *Canvas) Classify(ev PointerEvent) (mask.Label, bool) {
	if ev.Shift {
		if c.strict && ev.Button != ButtonSecondary {
			return 0, false
		}
		return mask.Negative, true
	}
	if c.strict && ev.Button != ButtonPrimary {
		return 0, false
	}
	return mask.Positive, true
}

// Points returns the currently visible point set.
func (c *Canvas) Points() mask.PointSet {
	return c.visible.Clone()
}

// Snapshot returns the last rendered image at native resolution.
func (c *Canvas) Snapshot() *image.RGBA {
	return c.rendered
}

// EncodePNG writes the current rendering as PNG.
func (c *Canvas) EncodePNG(w io.Writer) error {
	return png.Encode(w, c.rendered)
}

func (c *Canvas) redraw() {
	bounds := image.Rect(0, 0, c.nativeWidth, c.nativeHeight)
	img := image.NewRGBA(bounds)

	for y := 0; y < c.nativeHeight; y++ {
		for x := 0; x < c.nativeWidth; x++ {
			img.SetRGBA(x, y, clearColor)
		}
	}
	if c.frame != nil {
		drawScaled(img, c.frame)
	}

	for _, p := range c.visible.Positive {
		drawDisc(img, p, positiveColor)
	}
	for _, p := range c.visible.Negative {
		drawDisc(img, p, negativeColor)
	}
	c.rendered = img
}

// drawScaled paints src over dst stretched to dst's bounds using
// nearest-neighbor sampling. Extracted frames normally match the native
// resolution already, in which case this is a plain copy.
func drawScaled(dst *image.RGBA, src image.Image) {
	dstBounds := dst.Bounds()
	srcBounds := src.Bounds()
	dw, dh := dstBounds.Dx(), dstBounds.Dy()
	sw, sh := srcBounds.Dx(), srcBounds.Dy()
	if dw == 0 || dh == 0 || sw == 0 || sh == 0 {
		return
	}
	for y := 0; y < dh; y++ {
		sy := srcBounds.Min.Y + y*sh/dh
		for x := 0; x < dw; x++ {
			sx := srcBounds.Min.X + x*sw/dw
			dst.Set(dstBounds.Min.X+x, dstBounds.Min.Y+y, src.At(sx, sy))
		}
	}
}

func drawDisc(img *image.RGBA, center mask.Point, fill color.RGBA) {
	cx, cy := int(center.X+0.5), int(center.Y+0.5)
	for dy := -markerRadius; dy <= markerRadius; dy++ {
		for dx := -markerRadius; dx <= markerRadius; dx++ {
			if dx*dx+dy*dy > markerRadius*markerRadius {
				continue
			}
			x, y := cx+dx, cy+dy
			if image.Pt(x, y).In(img.Bounds()) {
				img.SetRGBA(x, y, fill)
			}
		}
	}
}
