package detectors

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-trafficlight/images"
)

func TestNewLetterbox(t *testing.T) {
	tests := []struct {
		name     string
		original image.Point
		wantGain float32
		wantSize image.Point
		wantPad  image.Point
	}{
		{name: "landscape", original: image.Pt(1280, 720), wantGain: 0.5, wantSize: image.Pt(640, 360), wantPad: image.Pt(0, 140)},
		{name: "portrait", original: image.Pt(300, 600), wantGain: 640.0 / 600.0, wantSize: image.Pt(320, 640), wantPad: image.Pt(160, 0)},
		{name: "square", original: image.Pt(640, 640), wantGain: 1, wantSize: image.Pt(640, 640), wantPad: image.Pt(0, 0)},
		{name: "odd padding", original: image.Pt(640, 321), wantGain: 1, wantSize: image.Pt(640, 321), wantPad: image.Pt(0, 159)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lb := NewLetterbox(tt.original, image.Pt(640, 640))
			assert.InDelta(t, tt.wantGain, lb.Gain, 1e-6)
			assert.Equal(t, tt.wantSize, lb.Size)
			assert.Equal(t, tt.wantPad, lb.Pad)
		})
	}
}

func TestLetterboxUnmap(t *testing.T) {
	lb := NewLetterbox(image.Pt(1280, 720), image.Pt(640, 640))

	got := lb.Unmap(images.Box{X1: 0, Y1: 140, X2: 640, Y2: 500})
	assert.Equal(t, images.Box{X1: 0, Y1: 0, X2: 1280, Y2: 720}, got)
}

func TestLetterboxImagePadsWithGray(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 80, 40))
	red := color.RGBA{255, 0, 0, 255}
	draw.Draw(img, img.Bounds(), &image.Uniform{C: red}, image.Point{}, draw.Src)

	boxed, lb := LetterboxImage(img, image.Pt(40, 40))
	require.Equal(t, image.Rect(0, 0, 40, 40), boxed.Bounds())
	assert.Equal(t, image.Pt(40, 20), lb.Size)
	assert.Equal(t, image.Pt(0, 10), lb.Pad)

	gray := color.NRGBA{114, 114, 114, 255}
	solid := color.NRGBA{255, 0, 0, 255}
	assert.Equal(t, gray, boxed.NRGBAAt(20, 0))
	assert.Equal(t, gray, boxed.NRGBAAt(20, 9))
	assert.Equal(t, solid, boxed.NRGBAAt(20, 10))
	assert.Equal(t, solid, boxed.NRGBAAt(20, 29))
	assert.Equal(t, gray, boxed.NRGBAAt(20, 30))
}
