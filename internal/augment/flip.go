package augment

import (
	"context"
	"fmt"
	"image"
	"iter"
)

const (
	FlipHorizontal = "horizontal"
	FlipVertical   = "vertical"
)

type flipArgs struct {
	Direction string `json:"direction"`
}

// Flip mirrors the image left-to-right (horizontal, the default) or
// top-to-bottom (vertical).
func Flip(ctx context.Context, img image.Image, args Args) iter.Seq2[Derived, error] {
	var a flipArgs
	if err := args.decode(&a); err != nil {
		return fail(err)
	}
	if a.Direction == "" {
		a.Direction = FlipHorizontal
	}
	if a.Direction != FlipHorizontal && a.Direction != FlipVertical {
		return fail(fmt.Errorf("unsupported flip direction %q", a.Direction))
	}
	return func(yield func(Derived, error) bool) {
		if err := ctx.Err(); err != nil {
			yield(Derived{}, err)
			return
		}
		b := img.Bounds()
		dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				sx, sy := x, y
				if a.Direction == FlipHorizontal {
					sx = b.Dx() - 1 - x
				} else {
					sy = b.Dy() - 1 - y
				}
				dst.Set(x, y, img.At(b.Min.X+sx, b.Min.Y+sy))
			}
		}
		yield(Derived{Image: dst, Tags: []string{a.Direction}}, nil)
	}
}
