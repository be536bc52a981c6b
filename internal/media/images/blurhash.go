package images

import (
	"fmt"
	"image"

	"github.com/bbrks/go-blurhash"
)

// blurHashSize is the longest side of the thumbnail the hash is computed
// from. The placeholder is low resolution, so a small image is enough.
const blurHashSize = 64

// ComputeBlurHash encodes a 4x3 component BlurHash for img.
func ComputeBlurHash(img image.Image) (string, error) {
	hash, err := blurhash.Encode(4, 3, thumbnail(img))
	if err != nil {
		return "", fmt.Errorf("encode blurhash: %w", err)
	}
	return hash, nil
}

// thumbnail downsamples img with nearest-neighbor scaling, keeping the
// aspect ratio.
func thumbnail(img image.Image) image.Image {
	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	if srcW <= blurHashSize && srcH <= blurHashSize {
		return img
	}

	dstW, dstH := blurHashSize, blurHashSize
	if srcW > srcH {
		dstH = max(srcH*blurHashSize/srcW, 1)
	} else {
		dstW = max(srcW*blurHashSize/srcH, 1)
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	for y := range dstH {
		for x := range dstW {
			sx := bounds.Min.X + x*srcW/dstW
			sy := bounds.Min.Y + y*srcH/dstH
			dst.Set(x, y, img.At(sx, sy))
		}
	}
	return dst
}
