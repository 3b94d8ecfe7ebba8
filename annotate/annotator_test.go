package annotate

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-trafficlight/common"
	"github.com/nvr-ai/go-trafficlight/images"
)

var black = color.RGBA{A: 255}

func TestAnnotateEmptyDetectionsIsIdentical(t *testing.T) {
	frame := images.NewBlankFrame(64, 48, color.RGBA{12, 34, 56, 255})
	defer frame.Close()

	out, err := NewAnnotator(nil).Annotate(frame, nil)
	require.NoError(t, err)
	defer out.Close()

	assert.Equal(t, images.ComputeFrameChecksum(frame), images.ComputeFrameChecksum(out))
}

func TestAnnotatePreservesDimensionsAndSource(t *testing.T) {
	frame := images.NewBlankFrame(120, 90, black)
	defer frame.Close()
	before := images.ComputeFrameChecksum(frame)

	dets := []common.Detection{
		{Label: "red", Confidence: 0.91, X1: 10, Y1: 30, X2: 50, Y2: 80},
		// Partially outside the frame; drawing clips.
		{Label: "green", Confidence: 0.4, X1: 100, Y1: 5, X2: 150, Y2: 120},
	}

	out, err := NewAnnotator(nil).Annotate(frame, dets)
	require.NoError(t, err)
	defer out.Close()

	assert.Equal(t, frame.Width(), out.Width())
	assert.Equal(t, frame.Height(), out.Height())
	assert.Equal(t, before, images.ComputeFrameChecksum(frame), "source frame must not change")
	assert.NotEqual(t, before, images.ComputeFrameChecksum(out))
}

func TestAnnotateBoxColours(t *testing.T) {
	tests := []struct {
		name  string
		label string
		want  color.RGBA
	}{
		{name: "red", label: "red", want: color.RGBA{255, 0, 0, 255}},
		{name: "green", label: "green", want: color.RGBA{0, 255, 0, 255}},
		{name: "yellow", label: "yellow", want: color.RGBA{255, 255, 0, 255}},
		{name: "unknown", label: "unknown", want: FallbackColor},
		{name: "off", label: "off", want: FallbackColor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := images.NewBlankFrame(100, 100, black)
			defer frame.Close()

			det := common.Detection{Label: tt.label, Confidence: 0.5, X1: 20, Y1: 40, X2: 70, Y2: 90}
			out, err := NewAnnotator(nil).Annotate(frame, []common.Detection{det})
			require.NoError(t, err)
			defer out.Close()

			// Left, right and bottom edges of the box, away from the
			// caption. X2 and Y2 are drawn through.
			assert.Equal(t, tt.want, out.At(20, 65))
			assert.Equal(t, tt.want, out.At(70, 65))
			assert.Equal(t, tt.want, out.At(45, 90))
			// Interior is untouched.
			assert.Equal(t, black, out.At(45, 65))
		})
	}
}

func TestAnnotateEmptyFrame(t *testing.T) {
	_, err := NewAnnotator(nil).Annotate(images.Frame{}, nil)
	assert.Error(t, err)
}

func TestPaletteOverrides(t *testing.T) {
	p, err := NewPalette(map[string]string{"Off": "#0000ff", "red": "#800000"})
	require.NoError(t, err)

	assert.Equal(t, color.RGBA{0, 0, 255, 255}, p.ColorFor("off"))
	assert.Equal(t, color.RGBA{128, 0, 0, 255}, p.ColorFor("RED"))
	assert.Equal(t, color.RGBA{0, 255, 0, 255}, p.ColorFor("green"))
	assert.Equal(t, FallbackColor, p.ColorFor("pedestrian"))

	_, err = NewPalette(map[string]string{"red": "not-a-colour"})
	assert.Error(t, err)
}
