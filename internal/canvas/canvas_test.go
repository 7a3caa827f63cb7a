package canvas_test

import (
	"image"
	"image/color"
	"testing"

	"github.com/parthubhe/DeepFakeStudio/internal/canvas"
	"github.com/parthubhe/DeepFakeStudio/internal/geometry"
	"github.com/parthubhe/DeepFakeStudio/internal/mask"
)

func nativeMapper() geometry.Mapper {
	return geometry.NewMapper(geometry.Box{Width: 832, Height: 480}, 832, 480)
}

func TestPlainClickAlwaysAppendsPositive(t *testing.T) {
	set := mask.NewPointSet()
	c := canvas.New(nativeMapper(), 832, 480, false, func(label mask.Label, p mask.Point) mask.PointSet {
		set.Add(label, p)
		return set
	})

	for i := 0; i < 5; i++ {
		if !c.HandlePointer(canvas.PointerEvent{ClientX: float64(10 * i), ClientY: 20, Button: canvas.ButtonPrimary}) {
			t.Fatalf("event %d rejected", i)
		}
	}
	if len(set.Positive) != 5 || len(set.Negative) != 0 {
		t.Fatalf("unexpected split: +%d -%d", len(set.Positive), len(set.Negative))
	}
}

func TestShiftClickAlwaysAppendsNegative(t *testing.T) {
	set := mask.NewPointSet()
	c := canvas.New(nativeMapper(), 832, 480, false, func(label mask.Label, p mask.Point) mask.PointSet {
		set.Add(label, p)
		return set
	})

	c.HandlePointer(canvas.PointerEvent{ClientX: 5, ClientY: 5, Shift: true})
	c.HandlePointer(canvas.PointerEvent{ClientX: 6, ClientY: 6, Button: canvas.ButtonSecondary, Shift: true})
	if len(set.Negative) != 2 || len(set.Positive) != 0 {
		t.Fatalf("unexpected split: +%d -%d", len(set.Positive), len(set.Negative))
	}
}

func TestPointCountMatchesAddsRegardlessOfInterleaving(t *testing.T) {
	set := mask.NewPointSet()
	c := canvas.New(nativeMapper(), 832, 480, false, func(label mask.Label, p mask.Point) mask.PointSet {
		set.Add(label, p)
		return set
	})

	events := []canvas.PointerEvent{
		{ClientX: 1, ClientY: 1},
		{ClientX: 2, ClientY: 2, Shift: true},
		{ClientX: 3, ClientY: 3},
		{ClientX: 3, ClientY: 3},
		{ClientX: 4, ClientY: 4, Shift: true},
	}
	for _, ev := range events {
		c.HandlePointer(ev)
	}
	if set.Len() != len(events) {
		t.Fatalf("expected %d points, got %d", len(events), set.Len())
	}
}

func TestStrictModeRequiresMatchingButton(t *testing.T) {
	set := mask.NewPointSet()
	c := canvas.New(nativeMapper(), 832, 480, true, func(label mask.Label, p mask.Point) mask.PointSet {
		set.Add(label, p)
		return set
	})

	if c.HandlePointer(canvas.PointerEvent{Button: canvas.ButtonSecondary}) {
		t.Fatal("secondary without shift must be ignored in strict mode")
	}
	if c.HandlePointer(canvas.PointerEvent{Button: canvas.ButtonPrimary, Shift: true}) {
		t.Fatal("primary with shift must be ignored in strict mode")
	}
	if !c.HandlePointer(canvas.PointerEvent{Button: canvas.ButtonPrimary}) {
		t.Fatal("primary without shift must add a positive point")
	}
	if !c.HandlePointer(canvas.PointerEvent{Button: canvas.ButtonSecondary, Shift: true}) {
		t.Fatal("secondary with shift must add a negative point")
	}
	if !c.SuppressContextMenu() {
		t.Fatal("strict mode must suppress the native context menu")
	}
	if len(set.Positive) != 1 || len(set.Negative) != 1 {
		t.Fatalf("unexpected split: +%d -%d", len(set.Positive), len(set.Negative))
	}
}

func TestEventsMapThroughDisplayScale(t *testing.T) {
	// 500 px wide preview of an 832x480 frame: center click lands at (416,240).
	m := geometry.NewMapperForDisplayWidth(500, 832, 480)
	set := mask.NewPointSet()
	c := canvas.New(m, 832, 480, false, func(label mask.Label, p mask.Point) mask.PointSet {
		set.Add(label, p)
		return set
	})

	displayHeight := 500.0 * 480.0 / 832.0
	c.HandlePointer(canvas.PointerEvent{ClientX: 250, ClientY: displayHeight / 2})
	if len(set.Positive) != 1 {
		t.Fatalf("expected one point, got %+v", set)
	}
	p := set.Positive[0]
	if p.X < 415.9 || p.X > 416.1 || p.Y < 239.9 || p.Y > 240.1 {
		t.Fatalf("unexpected native point: %+v", p)
	}
}

func TestRenderDrawsMarkersWithoutFrame(t *testing.T) {
	c := canvas.New(nativeMapper(), 832, 480, false, nil)
	set := mask.NewPointSet()
	set.Add(mask.Positive, mask.Point{X: 100, Y: 100})
	set.Add(mask.Negative, mask.Point{X: 200, Y: 200})
	c.Render(set)

	img := c.Snapshot()
	if img == nil {
		t.Fatal("expected rendered image")
	}
	if !isGreenish(img.RGBAAt(100, 100)) {
		t.Fatalf("expected positive marker at (100,100), got %+v", img.RGBAAt(100, 100))
	}
	if !isReddish(img.RGBAAt(200, 200)) {
		t.Fatalf("expected negative marker at (200,200), got %+v", img.RGBAAt(200, 200))
	}
}

func TestRenderIsIdempotent(t *testing.T) {
	c := canvas.New(nativeMapper(), 832, 480, false, nil)
	set := mask.NewPointSet()
	set.Add(mask.Positive, mask.Point{X: 50, Y: 50})

	c.Render(set)
	first := clonePixels(c.Snapshot())
	c.Render(set)
	second := clonePixels(c.Snapshot())

	if len(first) != len(second) {
		t.Fatal("snapshot sizes differ")
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatal("repeated render of the same set produced different pixels")
		}
	}
}

func TestFrameImageDrawsUnderMarkers(t *testing.T) {
	frame := image.NewRGBA(image.Rect(0, 0, 832, 480))
	blue := color.RGBA{B: 0xff, A: 0xff}
	for y := 0; y < 480; y++ {
		for x := 0; x < 832; x++ {
			frame.SetRGBA(x, y, blue)
		}
	}

	c := canvas.New(nativeMapper(), 832, 480, false, nil)
	c.SetFrame(frame)
	set := mask.NewPointSet()
	set.Add(mask.Positive, mask.Point{X: 400, Y: 240})
	c.Render(set)

	img := c.Snapshot()
	if got := img.RGBAAt(10, 10); got != blue {
		t.Fatalf("expected frame pixel at (10,10), got %+v", got)
	}
	if !isGreenish(img.RGBAAt(400, 240)) {
		t.Fatalf("expected marker over frame at (400,240), got %+v", img.RGBAAt(400, 240))
	}
}

func isGreenish(c color.RGBA) bool { return c.G > 150 && c.R < 100 && c.B < 100 }
func isReddish(c color.RGBA) bool  { return c.R > 150 && c.G < 100 && c.B < 100 }

func clonePixels(img *image.RGBA) []uint8 {
	out := make([]uint8, len(img.Pix))
	copy(out, img.Pix)
	return out
}
