// Package photo turns uploaded equipment photos into small inline
// thumbnails. The backing store holds rows of text with a hard cell-size
// cap, so photos are downscaled, recompressed as lossy JPEG and stored
// base64-encoded in the foto_b64 field.
package photo

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
)

const (
	// MaxDimension bounds the longer side of the stored thumbnail
	MaxDimension = 480
	// Quality is the JPEG quality of the stored thumbnail
	Quality = 60
)

// EncodeThumbnail decodes an uploaded image (JPEG, PNG or GIF), scales it
// down so the longer side is at most MaxDimension, and returns it as
// base64-encoded JPEG.
func EncodeThumbnail(data []byte) (string, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("photo: decode: %w", err)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > MaxDimension || h > MaxDimension {
		if w >= h {
			h = h * MaxDimension / w
			w = MaxDimension
		} else {
			w = w * MaxDimension / h
			h = MaxDimension
		}
		if w < 1 {
			w = 1
		}
		if h < 1 {
			h = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
		src = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: Quality}); err != nil {
		return "", fmt.Errorf("photo: encode: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Decode returns the raw JPEG bytes of a stored thumbnail
func Decode(b64 string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("photo: decode base64: %w", err)
	}
	return data, nil
}
