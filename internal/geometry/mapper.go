package geometry

import (
	"github.com/parthubhe/DeepFakeStudio/internal/mask"
)

// Box is a rendered element's on-screen bounding box in display pixels.
type Box struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// Mapper converts pointer positions on a scaled, displayed image into native
// frame pixel coordinates, and back for rendering. No clamping is performed:
// a pointer position outside the box maps to coordinates outside the frame,
// and the canvas's own hit-testing is the only clamp.
type Mapper struct {
	left   float64
	top    float64
	scaleX float64
	scaleY float64
}

// NewMapper builds a mapper from the displayed element's bounding box and the
// frame's native dimensions.
func NewMapper(box Box, nativeWidth, nativeHeight int) Mapper {
	return Mapper{
		left:   box.Left,
		top:    box.Top,
		scaleX: float64(nativeWidth) / box.Width,
		scaleY: float64(nativeHeight) / box.Height,
	}
}

// NewMapperForDisplayWidth builds a mapper for a fixed-width preview canvas
// anchored at the origin. The display height is derived from the native
// aspect ratio, so the logical scale factor is identical on both axes and
// matches NewMapper for an equivalent box.
func NewMapperForDisplayWidth(displayWidth float64, nativeWidth, nativeHeight int) Mapper {
	displayHeight := displayWidth * float64(nativeHeight) / float64(nativeWidth)
	return NewMapper(Box{Width: displayWidth, Height: displayHeight}, nativeWidth, nativeHeight)
}

// ToNative maps a pointer position (display space) to native frame pixels.
func (m Mapper) ToNative(clientX, clientY float64) mask.Point {
	return mask.Point{
		X: (clientX - m.left) * m.scaleX,
		Y: (clientY - m.top) * m.scaleY,
	}
}

// ToDisplay maps a native frame point back to display coordinates.
func (m Mapper) ToDisplay(p mask.Point) (float64, float64) {
	return p.X/m.scaleX + m.left, p.Y/m.scaleY + m.top
}

// Scale returns the horizontal and vertical native-per-display factors.
func (m Mapper) Scale() (float64, float64) {
	return m.scaleX, m.scaleY
}
