package augment

import (
	"context"
	"errors"
	"image"
	"iter"
	"math/rand/v2"
	"strconv"
)

type randomCropArgs struct {
	CropDimensions []int   `json:"crop_dimensions"`
	TargetCount    int     `json:"target_count"`
	Seed           *uint64 `json:"seed,omitempty"`
}

// RandomCrop cuts up to target_count windows of crop_dimensions ([dy, dx])
// around random centres. A centre is never drawn within dy rows or dx
// columns of an earlier one, so windows do not overlap. The sequence ends
// early once no admissible centre remains. An optional seed makes the draw
// reproducible.
func RandomCrop(ctx context.Context, img image.Image, args Args) iter.Seq2[Derived, error] {
	var a randomCropArgs
	if err := args.decode(&a); err != nil {
		return fail(err)
	}
	if len(a.CropDimensions) < 2 || a.CropDimensions[0] <= 0 || a.CropDimensions[1] <= 0 {
		return fail(errors.New("crop_dimensions must be [dy, dx]"))
	}
	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	if a.Seed != nil {
		rng = rand.New(rand.NewPCG(*a.Seed, *a.Seed))
	}
	dy, dx := a.CropDimensions[0], a.CropDimensions[1]
	b := img.Bounds()

	return func(yield func(Derived, error) bool) {
		takenY := map[int]bool{}
		takenX := map[int]bool{}
		for i := 0; i < a.TargetCount; i++ {
			if err := ctx.Err(); err != nil {
				yield(Derived{}, err)
				return
			}
			cy, okY := pickCentre(rng, dy, b.Dy(), takenY)
			cx, okX := pickCentre(rng, dx, b.Dx(), takenX)
			if !okY || !okX {
				return
			}
			for v := cy - dy; v < cy+dy; v++ {
				takenY[v] = true
			}
			for v := cx - dx; v < cx+dx; v++ {
				takenX[v] = true
			}
			top := b.Min.Y + cy - dy/2
			left := b.Min.X + cx - dx/2
			window := image.Rect(left, top, left+dx, top+dy)
			out := Derived{
				Image: subImage(img, window),
				Tags:  []string{strconv.Itoa(dy), strconv.Itoa(dx), strconv.Itoa(i)},
			}
			if !yield(out, nil) {
				return
			}
		}
	}
}

// pickCentre draws a centre coordinate along an axis of length size so that
// a window of length crop fits around it, skipping taken coordinates.
func pickCentre(rng *rand.Rand, crop, size int, taken map[int]bool) (int, bool) {
	lo := (crop + 1) / 2
	hi := size - crop/2
	var candidates []int
	for v := lo; v < hi; v++ {
		if !taken[v] {
			candidates = append(candidates, v)
		}
	}
	if len(candidates) == 0 {
		return 0, false
	}
	return candidates[rng.IntN(len(candidates))], true
}
