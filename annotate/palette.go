// Package annotate burns detection boxes and captions into frames.
package annotate

import (
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
)

// FallbackColor is used for any label without a palette entry.
var FallbackColor = color.RGBA{R: 128, G: 128, B: 128, A: 255}

// Palette maps class labels to box colours.
type Palette struct {
	colors   map[string]color.RGBA
	fallback color.RGBA
}

// DefaultPalette returns the traffic light palette: red, green and yellow
// signals drawn in their own colour, everything else in gray.
func DefaultPalette() *Palette {
	return &Palette{
		colors: map[string]color.RGBA{
			"red":    {R: 255, G: 0, B: 0, A: 255},
			"green":  {R: 0, G: 255, B: 0, A: 255},
			"yellow": {R: 255, G: 255, B: 0, A: 255},
		},
		fallback: FallbackColor,
	}
}

// NewPalette builds the default palette and applies hex colour overrides.
//
// Arguments:
//   - overrides: Label to hex colour (e.g. "#ff8800") map. May be nil.
//
// Returns:
//   - *Palette: The resulting palette.
//   - error: If any override is not a valid hex colour.
func NewPalette(overrides map[string]string) (*Palette, error) {
	p := DefaultPalette()
	for label, hex := range overrides {
		c, err := colorful.Hex(hex)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid colour %q for label %q", hex, label)
		}
		r, g, b := c.RGB255()
		p.colors[strings.ToLower(label)] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return p, nil
}

// ColorFor returns the colour for a label. Matching is case-insensitive.
func (p *Palette) ColorFor(label string) color.RGBA {
	if c, ok := p.colors[strings.ToLower(label)]; ok {
		return c
	}
	return p.fallback
}
