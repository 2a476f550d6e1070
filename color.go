package pointlab

import (
	"fmt"
	"image/color"
	"math"
	"strings"
)

// Color is an RGBA color with float64 components in [0, 1].
type Color struct {
	R, G, B, A float64
}

var (
	Transparent = Color{}
	Black       = Color{0, 0, 0, 1}
	White       = Color{1, 1, 1, 1}
)

// Fixed recolor applied to the reconstructed meshes.
var (
	PoissonColor   = Color{0, 0, 1, 1}
	BallPivotColor = Color{0.1, 0.3, 1, 1}
)

// DefaultBackground is the viewport clear color.
var DefaultBackground = Color{0.1, 0.1, 0.1, 1}

// Presets holds the uniform repaint colors offered per viewport; a nil
// entry means "keep the geometry's own colors".
var Presets = map[string]*Color{
	"default": nil,
	"blue":    {0, 0, 1, 1},
	"red":     {1, 0, 0, 1},
	"green":   {0, 1, 0, 1},
	"yellow":  {1, 1, 0, 1},
	"white":   {1, 1, 1, 1},
}

func MakeColor(c color.Color) Color {
	r, g, b, a := c.RGBA()
	const d = 0xffff
	return Color{float64(r) / d, float64(g) / d, float64(b) / d, float64(a) / d}
}

// HexColor parses "rgb", "rrggbb" and "#"-prefixed forms.
func HexColor(x string) Color {
	x = strings.Trim(x, "#")
	var r, g, b int
	switch len(x) {
	case 3:
		fmt.Sscanf(x, "%1x%1x%1x", &r, &g, &b)
		r = (r << 4) | r
		g = (g << 4) | g
		b = (b << 4) | b
	case 6:
		fmt.Sscanf(x, "%02x%02x%02x", &r, &g, &b)
	}
	return Color{float64(r) / 255, float64(g) / 255, float64(b) / 255, 1}
}

func (c Color) NRGBA() color.NRGBA {
	r := uint8(Clamp(c.R, 0, 1) * 255)
	g := uint8(Clamp(c.G, 0, 1) * 255)
	b := uint8(Clamp(c.B, 0, 1) * 255)
	a := uint8(Clamp(c.A, 0, 1) * 255)
	return color.NRGBA{r, g, b, a}
}

func (a Color) Add(b Color) Color {
	return Color{a.R + b.R, a.G + b.G, a.B + b.B, a.A + b.A}
}

func (a Color) Sub(b Color) Color {
	return Color{a.R - b.R, a.G - b.G, a.B - b.B, a.A - b.A}
}

func (a Color) Mul(b Color) Color {
	return Color{a.R * b.R, a.G * b.G, a.B * b.B, a.A * b.A}
}

func (a Color) MulScalar(b float64) Color {
	return Color{a.R * b, a.G * b, a.B * b, a.A * b}
}

func (a Color) DivScalar(b float64) Color {
	return Color{a.R / b, a.G / b, a.B / b, a.A / b}
}

func (a Color) Min(b Color) Color {
	return Color{math.Min(a.R, b.R), math.Min(a.G, b.G), math.Min(a.B, b.B), math.Min(a.A, b.A)}
}

func (a Color) Max(b Color) Color {
	return Color{math.Max(a.R, b.R), math.Max(a.G, b.G), math.Max(a.B, b.B), math.Max(a.A, b.A)}
}

func (a Color) Lerp(b Color, t float64) Color {
	return a.Add(b.Sub(a).MulScalar(t))
}

// Alpha returns the color with its alpha replaced.
func (a Color) Alpha(alpha float64) Color {
	return Color{a.R, a.G, a.B, alpha}
}
