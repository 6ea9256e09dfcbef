package augment

import (
	"context"
	"errors"
	"image"
	"image/color"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataprep/internal/domain"
)

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), A: 255})
		}
	}
	return img
}

func collect(t *testing.T, seq iter.Seq2[Derived, error]) ([]Derived, error) {
	t.Helper()
	var outs []Derived
	for out, err := range seq {
		if err != nil {
			return outs, err
		}
		outs = append(outs, out)
	}
	return outs, nil
}

func TestRegistryBind(t *testing.T) {
	reg := Default()

	stage, err := reg.Bind(domain.AugmentationSpec{Kind: "CROP", Module: "crop", Function: "image_cropping"})
	require.NoError(t, err)
	assert.Equal(t, "CROP", stage.Kind)
	assert.Equal(t, "crop/image_cropping", stage.Ref)

	_, err = reg.Bind(domain.AugmentationSpec{Kind: "BLUR", Module: "blur", Function: "image_blurring"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Equal(t, []string{
		"crop/image_cropping",
		"crop/image_random_cropping",
		"flip/image_flipping",
		"random_crop/image_random_cropping",
	}, reg.Refs())
}

func TestStageApplyWrapsErrors(t *testing.T) {
	reg := NewRegistry()
	boom := errors.New("boom")
	reg.Register("test", "explode", func(ctx context.Context, img image.Image, args Args) iter.Seq2[Derived, error] {
		return func(yield func(Derived, error) bool) {
			if !yield(Derived{Image: img, Tags: []string{"ok"}}, nil) {
				return
			}
			yield(Derived{}, boom)
		}
	})
	stage, err := reg.Bind(domain.AugmentationSpec{Kind: "EXPLODE", Module: "test", Function: "explode"})
	require.NoError(t, err)

	outs, err := collect(t, stage.Apply(context.Background(), gradient(4, 4)))
	require.Len(t, outs, 1)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, "EXPLODE", stageErr.Kind)
	assert.ErrorIs(t, err, domain.ErrStageFailed)
	assert.ErrorIs(t, err, boom)
}

func TestCropLeftDownCenter(t *testing.T) {
	args := Args{"crop_dimensions": []any{[]any{20.0, 30.0}, []any{10, 10}}, "crop_type": CropLeftDownCenter}

	outs, err := collect(t, Crop(context.Background(), gradient(64, 48), args))
	require.NoError(t, err)
	require.Len(t, outs, 2)

	assert.Equal(t, image.Rect(0, 0, 30, 20), outs[0].Image.Bounds())
	assert.Equal(t, []string{"20", "30"}, outs[0].Tags)
	assert.Equal(t, image.Rect(0, 0, 10, 10), outs[1].Image.Bounds())
}

func TestCropUnknownTypeYieldsNothing(t *testing.T) {
	args := Args{"crop_dimensions": [][]int{{20, 20}}, "crop_type": "center"}

	outs, err := collect(t, Crop(context.Background(), gradient(64, 48), args))
	require.NoError(t, err)
	assert.Empty(t, outs)
}

func TestCropRandomTypeFails(t *testing.T) {
	args := Args{"crop_dimensions": [][]int{{20, 20}}}

	_, err := collect(t, Crop(context.Background(), gradient(64, 48), args))
	assert.Error(t, err)
}

func TestCropMalformedDimensionFails(t *testing.T) {
	args := Args{"crop_dimensions": [][]int{{20}}, "crop_type": CropLeftDownCenter}

	_, err := collect(t, Crop(context.Background(), gradient(64, 48), args))
	assert.Error(t, err)
}

func TestRandomCropWindowsDoNotOverlap(t *testing.T) {
	seed := uint64(7)
	args := Args{"crop_dimensions": []int{10, 10}, "target_count": 3, "seed": seed}

	outs, err := collect(t, RandomCrop(context.Background(), gradient(100, 100), args))
	require.NoError(t, err)
	require.Len(t, outs, 3)

	for i, out := range outs {
		b := out.Image.Bounds()
		assert.Equal(t, 10, b.Dx())
		assert.Equal(t, 10, b.Dy())
		assert.True(t, b.In(image.Rect(0, 0, 100, 100)))
		assert.Equal(t, []string{"10", "10", string(rune('0' + i))}, out.Tags)
		for _, other := range outs[i+1:] {
			assert.False(t, b.Overlaps(other.Image.Bounds()), "%v overlaps %v", b, other.Image.Bounds())
		}
	}
}

func TestRandomCropSeedIsReproducible(t *testing.T) {
	args := Args{"crop_dimensions": []int{8, 8}, "target_count": 2, "seed": 42}
	img := gradient(64, 64)

	first, err := collect(t, RandomCrop(context.Background(), img, args))
	require.NoError(t, err)
	second, err := collect(t, RandomCrop(context.Background(), img, args))
	require.NoError(t, err)

	require.Len(t, first, len(second))
	for i := range first {
		assert.Equal(t, first[i].Image.Bounds(), second[i].Image.Bounds())
	}
}

func TestRandomCropStopsWhenNoRoomLeft(t *testing.T) {
	args := Args{"crop_dimensions": []int{10, 10}, "target_count": 5, "seed": 1}

	outs, err := collect(t, RandomCrop(context.Background(), gradient(12, 12), args))
	require.NoError(t, err)
	assert.Len(t, outs, 1)
}

func TestRandomCropRequiresDimensions(t *testing.T) {
	_, err := collect(t, RandomCrop(context.Background(), gradient(12, 12), Args{"target_count": 1}))
	assert.Error(t, err)
}

func TestFlip(t *testing.T) {
	img := gradient(4, 3)

	outs, err := collect(t, Flip(context.Background(), img, Args{}))
	require.NoError(t, err)
	require.Len(t, outs, 1)
	assert.Equal(t, []string{FlipHorizontal}, outs[0].Tags)
	assert.Equal(t, img.At(3, 1), outs[0].Image.At(0, 1))

	outs, err = collect(t, Flip(context.Background(), img, Args{"direction": FlipVertical}))
	require.NoError(t, err)
	require.Len(t, outs, 1)
	assert.Equal(t, img.At(1, 2), outs[0].Image.At(1, 0))

	_, err = collect(t, Flip(context.Background(), img, Args{"direction": "diagonal"}))
	assert.Error(t, err)
}
