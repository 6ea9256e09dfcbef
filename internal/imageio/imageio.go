// Package imageio loads source images and encodes derived ones.
package imageio

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"

	"dataprep/internal/domain"
)

// JPEGQuality is used for every JPEG output.
const JPEGQuality = 95

// Load decodes the image at path. When size is set and differs from the
// native size the image is rescaled to it.
func Load(path string, size *domain.ImageSize) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", filepath.Base(path), err)
	}
	if size == nil {
		return img, nil
	}
	return Resize(img, *size), nil
}

// Resize scales img to size. An image already at that size is returned as is.
func Resize(img image.Image, size domain.ImageSize) image.Image {
	b := img.Bounds()
	if size.Width <= 0 || size.Height <= 0 || (b.Dx() == size.Width && b.Dy() == size.Height) {
		return img
	}
	dst := image.NewNRGBA(image.Rect(0, 0, size.Width, size.Height))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// Encode serialises img in the format implied by name's extension.
func Encode(img image.Image, name string) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".png":
		err = png.Encode(&buf, img)
	case ".jpg", ".jpeg":
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality})
	default:
		return nil, fmt.Errorf("unsupported image extension %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// ContentType returns the MIME type for name's extension.
func ContentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}

// IsImageFile reports whether name carries one of the crawled image extensions.
func IsImageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpeg", ".jpg", ".png":
		return true
	default:
		return false
	}
}
