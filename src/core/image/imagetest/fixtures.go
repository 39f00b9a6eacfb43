// Package imagetest builds deterministic image fixtures for tests.
package imagetest

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math/rand"
)

func noise(w, h int) *image.RGBA {
	rng := rand.New(rand.NewSource(int64(w*7919 + h)))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(rng.Intn(256)),
				G: uint8(rng.Intn(256)),
				B: uint8(rng.Intn(256)),
				A: 255,
			})
		}
	}
	return img
}

// JPEG returns a noisy w x h JPEG. Noise keeps even small sizes well above a few KB.
func JPEG(w, h int) []byte {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, noise(w, h), &jpeg.Options{Quality: 95}); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// PNG returns a noisy w x h PNG.
func PNG(w, h int) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, noise(w, h)); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// DataURL wraps data in the "<mime-header>,<base64>" transport.
func DataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
