package augment

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"iter"
	"strconv"
)

const (
	CropLeftDownCenter = "left_down_center"
	CropRandom         = "random"
)

type cropArgs struct {
	CropDimensions [][]int `json:"crop_dimensions"`
	CropType       string  `json:"crop_type"`
}

// Crop cuts one window per entry of crop_dimensions ([[dy, dx], ...]).
// Only the left_down_center type is implemented: the window is anchored at
// the image origin. The random type yields an error; any other type yields
// nothing.
func Crop(ctx context.Context, img image.Image, args Args) iter.Seq2[Derived, error] {
	var a cropArgs
	if err := args.decode(&a); err != nil {
		return fail(err)
	}
	if a.CropType == "" {
		a.CropType = CropRandom
	}
	return func(yield func(Derived, error) bool) {
		for _, dim := range a.CropDimensions {
			if err := ctx.Err(); err != nil {
				yield(Derived{}, err)
				return
			}
			if len(dim) < 2 || dim[0] <= 0 || dim[1] <= 0 {
				yield(Derived{}, fmt.Errorf("crop dimension %v must be [dy, dx]", dim))
				return
			}
			dy, dx := dim[0], dim[1]
			switch a.CropType {
			case CropLeftDownCenter:
				b := img.Bounds()
				window := image.Rect(b.Min.X, b.Min.Y, b.Min.X+dx, b.Min.Y+dy)
				out := Derived{Image: subImage(img, window), Tags: []string{strconv.Itoa(dy), strconv.Itoa(dx)}}
				if !yield(out, nil) {
					return
				}
			case CropRandom:
				yield(Derived{}, errors.New("crop type random is not implemented, use RANDOM_CROP"))
				return
			}
		}
	}
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// subImage returns the part of img inside r, clipped to the image bounds.
func subImage(img image.Image, r image.Rectangle) image.Image {
	r = r.Intersect(img.Bounds())
	if s, ok := img.(subImager); ok {
		return s.SubImage(r)
	}
	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), img, r.Min, draw.Src)
	return dst
}
