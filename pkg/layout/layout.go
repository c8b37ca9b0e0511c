// Package layout places a photo, its logo and caption on a bordered canvas.
package layout

import (
	"image"
	"math"

	"k8s.io/klog/v2"
)

// Rates are fractions of the source image's shorter side, used when RatePriority is set.
type Rates struct {
	FontSize    float64
	LogoSize    float64
	Border      float64
	TextPadding float64
	LogoPadding float64
	// TextMargin is negative to inherit LogoPadding.
	TextMargin float64
}

// Config describes the caption strip and borders.
type Config struct {
	FontSize     int
	LogoSize     int
	BorderWidth  int
	BorderHeight int
	TextPadding  int
	LogoPadding  int
	// TextMargin is the left anchor for text when there is no logo. Negative inherits LogoPadding.
	TextMargin int

	IncludeTop    bool
	IncludeBottom bool
	IncludeLeft   bool
	IncludeRight  bool

	// RatePriority derives every dimension from Rates instead of the literal pixel values.
	RatePriority bool
	Rates        Rates
}

// Dimensions are the pixel values in effect for a single image.
type Dimensions struct {
	FontSize     int
	LogoSize     int
	BorderWidth  int
	BorderHeight int
	TextPadding  int
	LogoPadding  int
	TextMargin   int
}

// Resolve returns the dimensions for a w×h source image.
func (c Config) Resolve(w, h int) Dimensions {
	if !c.RatePriority {
		d := Dimensions{
			FontSize:     c.FontSize,
			LogoSize:     c.LogoSize,
			BorderWidth:  c.BorderWidth,
			BorderHeight: c.BorderHeight,
			TextPadding:  c.TextPadding,
			LogoPadding:  c.LogoPadding,
			TextMargin:   c.TextMargin,
		}
		if d.TextMargin < 0 {
			d.TextMargin = d.LogoPadding
		}
		return d
	}

	short := float64(min(w, h))
	scale := func(rate float64) int {
		return int(math.Round(rate * short))
	}

	border := scale(c.Rates.Border)
	d := Dimensions{
		FontSize:     scale(c.Rates.FontSize),
		LogoSize:     scale(c.Rates.LogoSize),
		BorderWidth:  border,
		BorderHeight: border,
		TextPadding:  scale(c.Rates.TextPadding),
		LogoPadding:  scale(c.Rates.LogoPadding),
	}

	if c.Rates.TextMargin < 0 {
		d.TextMargin = d.LogoPadding
	} else {
		d.TextMargin = scale(c.Rates.TextMargin)
	}
	return d
}

// Plan is the placement of every element on the output canvas.
type Plan struct {
	Dimensions

	Canvas image.Point
	// Offset is where the source image's top-left corner lands.
	Offset image.Point
	// Logo is the logo's top-left corner, or nil without a logo.
	Logo *image.Point
	// Text is the top-left corner of the caption's bounding box.
	Text        image.Point
	StripHeight int
}

func included(on bool, v int) int {
	if on {
		return v
	}
	return 0
}

// Compute lays out a w×h source image with a caption box and an optional logo of the given sizes.
func Compute(w, h int, caption image.Point, logo *image.Point, c Config) Plan {
	d := c.Resolve(w, h)

	logoH := 0
	if logo != nil {
		logoH = logo.Y
	}

	p := Plan{Dimensions: d}
	p.StripHeight = max(caption.Y, logoH) + d.BorderHeight

	extraW := included(c.IncludeLeft, d.BorderWidth) + included(c.IncludeRight, d.BorderWidth)
	extraH := included(c.IncludeTop, d.BorderHeight) + p.StripHeight

	p.Canvas = image.Pt(w+extraW, h+extraH)
	p.Offset = image.Pt(included(c.IncludeLeft, d.BorderWidth), included(c.IncludeTop, d.BorderHeight))

	stripTop := h + p.Offset.Y
	textX := p.Offset.X + d.TextMargin

	if logo != nil {
		lp := image.Pt(p.Offset.X+d.LogoPadding, stripTop+(p.StripHeight-logo.Y)/2)
		p.Logo = &lp
		textX = lp.X + logo.X + d.TextPadding
	}

	p.Text = image.Pt(textX, stripTop+(p.StripHeight-caption.Y)/2)

	klog.V(1).Infof("layout for %dx%d: canvas=%v offset=%v logo=%v text=%v strip=%d", w, h, p.Canvas, p.Offset, p.Logo, p.Text, p.StripHeight)
	return p
}
