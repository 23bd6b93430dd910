package photo

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func solidPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 80, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func decodeThumbnail(t *testing.T, b64 string) image.Image {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		t.Fatalf("thumbnail is not valid base64: %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("thumbnail is not valid JPEG: %v", err)
	}
	return img
}

func TestEncodeThumbnailDownscalesLandscape(t *testing.T) {
	b64, err := EncodeThumbnail(solidPNG(t, 1600, 900))
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	img := decodeThumbnail(t, b64)
	b := img.Bounds()
	if b.Dx() != MaxDimension {
		t.Fatalf("expected width %d, got %d", MaxDimension, b.Dx())
	}
	if b.Dy() != 900*MaxDimension/1600 {
		t.Fatalf("aspect ratio lost: %dx%d", b.Dx(), b.Dy())
	}
}

func TestEncodeThumbnailDownscalesPortrait(t *testing.T) {
	b64, err := EncodeThumbnail(solidPNG(t, 600, 1200))
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	img := decodeThumbnail(t, b64)
	b := img.Bounds()
	if b.Dy() != MaxDimension {
		t.Fatalf("expected height %d, got %d", MaxDimension, b.Dy())
	}
	if b.Dx() != 600*MaxDimension/1200 {
		t.Fatalf("aspect ratio lost: %dx%d", b.Dx(), b.Dy())
	}
}

func TestEncodeThumbnailKeepsSmallImages(t *testing.T) {
	b64, err := EncodeThumbnail(solidPNG(t, 320, 240))
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	img := decodeThumbnail(t, b64)
	b := img.Bounds()
	if b.Dx() != 320 || b.Dy() != 240 {
		t.Fatalf("small image should not be scaled, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestEncodeThumbnailRejectsGarbage(t *testing.T) {
	if _, err := EncodeThumbnail([]byte("definitely not an image")); err == nil {
		t.Fatalf("expected an error for non-image input")
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	b64, err := EncodeThumbnail(solidPNG(t, 100, 100))
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	raw, err := Decode(b64)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if _, err := jpeg.Decode(bytes.NewReader(raw)); err != nil {
		t.Fatalf("decoded bytes are not JPEG: %v", err)
	}

	if _, err := Decode("!!not-base64!!"); err == nil {
		t.Fatalf("expected an error for invalid base64")
	}
}
