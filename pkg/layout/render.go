package layout

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
)

// Style is how the caption strip is painted.
type Style struct {
	Face       font.Face
	Text       color.Color
	Background color.Color
}

// Render paints a new canvas according to p. src is never modified.
func Render(src image.Image, p Plan, logo image.Image, caption string, st Style) *image.RGBA {
	bg := st.Background
	if bg == nil {
		bg = color.White
	}
	fg := st.Text
	if fg == nil {
		fg = color.Black
	}

	canvas := image.NewRGBA(image.Rect(0, 0, p.Canvas.X, p.Canvas.Y))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	sb := src.Bounds()
	draw.Draw(canvas, image.Rectangle{Min: p.Offset, Max: p.Offset.Add(sb.Size())}, src, sb.Min, draw.Src)

	if logo != nil && p.Logo != nil {
		lb := logo.Bounds()
		op := draw.Src
		if hasAlpha(logo) {
			op = draw.Over
		}
		draw.Draw(canvas, image.Rectangle{Min: *p.Logo, Max: p.Logo.Add(lb.Size())}, logo, lb.Min, op)
	}

	if st.Face != nil && caption != "" {
		Typeface{Face: st.Face}.Draw(canvas, p.Text, caption, fg)
	}

	return canvas
}

// hasAlpha reports whether img has any pixel that is not fully opaque.
func hasAlpha(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	return false
}

// ParseColor accepts "#RRGGBB", "#RGB", "white" and "black".
func ParseColor(s string) (color.Color, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "white":
		return color.White, nil
	case "black":
		return color.Black, nil
	}

	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return nil, fmt.Errorf("invalid color %q", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid color %q: %w", s, err)
	}

	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
