// Package imageutil shrinks oversized uploads before they are base64-encoded
// into the vision request, keeping payloads within the hosted model's input
// limits. Downscaling happens at the upload boundary so the request builder
// stays a pure function of its inputs.
package imageutil

import (
	"bytes"
	"image"
	"image/jpeg"
	_ "image/png"

	"github.com/apex/log"
	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/draw"
)

const jpegQuality = 85

// Downscale resizes the image so neither dimension exceeds maxDim, honoring
// the EXIF orientation of JPEG sources, and re-encodes as JPEG. Inputs the
// standard decoders cannot read (e.g. WebP) and images already within bounds
// are returned untouched with their original content type.
func Downscale(data []byte, contentType string, maxDim int) ([]byte, string) {
	if maxDim <= 0 {
		return data, contentType
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		// Not decodable here (WebP or exotic input): forward as-is, the
		// hosted model accepts it either way.
		return data, contentType
	}

	orientation := exifOrientation(data)
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	if width <= maxDim && height <= maxDim && orientation == 1 {
		return data, contentType
	}

	if orientation != 1 {
		img = reorient(img, orientation)
		width, height = img.Bounds().Dx(), img.Bounds().Dy()
	}

	newWidth, newHeight := width, height
	if width > maxDim || height > maxDim {
		scale := float64(maxDim) / float64(width)
		if s := float64(maxDim) / float64(height); s < scale {
			scale = s
		}
		newWidth = int(float64(width) * scale)
		newHeight = int(float64(height) * scale)
	}

	scaled := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: jpegQuality}); err != nil {
		log.Warnf("image re-encode failed, forwarding original: %v", err)
		return data, contentType
	}

	log.Debugf("image downscaled: %d bytes -> %d bytes (%dx%d -> %dx%d, orientation %d)",
		len(data), buf.Len(), width, height, newWidth, newHeight, orientation)
	return buf.Bytes(), "image/jpeg"
}

// exifOrientation reads the EXIF orientation tag, defaulting to 1 (upright)
// when the tag or the EXIF block is absent.
func exifOrientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	value, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return value
}

// reorient rotates the image for the common EXIF rotation values. Mirrored
// orientations (2, 4, 5, 7) are rare from phone cameras and are left as-is.
func reorient(img image.Image, orientation int) image.Image {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	switch orientation {
	case 3: // rotated 180
		out := image.NewRGBA(image.Rect(0, 0, width, height))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				out.Set(width-1-x, height-1-y, img.At(bounds.Min.X+x, bounds.Min.Y+y))
			}
		}
		return out
	case 6: // rotated 90 CW
		out := image.NewRGBA(image.Rect(0, 0, height, width))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				out.Set(height-1-y, x, img.At(bounds.Min.X+x, bounds.Min.Y+y))
			}
		}
		return out
	case 8: // rotated 90 CCW
		out := image.NewRGBA(image.Rect(0, 0, height, width))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				out.Set(y, width-1-x, img.At(bounds.Min.X+x, bounds.Min.Y+y))
			}
		}
		return out
	default:
		return img
	}
}
