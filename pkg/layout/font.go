package layout

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"strings"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"k8s.io/klog/v2"
)

// Fonts parses each font file once and hands out sized faces.
type Fonts struct {
	mu     sync.Mutex
	parsed map[string]*opentype.Font
	failed map[string]bool
}

// NewFonts returns an empty font cache.
func NewFonts() *Fonts {
	return &Fonts{
		parsed: map[string]*opentype.Font{},
		failed: map[string]bool{},
	}
}

func (f *Fonts) load(path string) (*opentype.Font, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if ft, ok := f.parsed[path]; ok {
		return ft, nil
	}

	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	ft, err := opentype.Parse(bs)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	f.parsed[path] = ft
	return ft, nil
}

// Face returns path at size pixels. Faces are not safe for concurrent use, so callers get a fresh one.
// If the font cannot be loaded, the built-in basicfont face is returned instead.
func (f *Fonts) Face(path string, size int) font.Face {
	if path == "" || size <= 0 {
		klog.V(1).Infof("no usable font (path=%q size=%d), using built-in face", path, size)
		return basicfont.Face7x13
	}

	ft, err := f.load(path)
	if err == nil {
		var face font.Face
		face, err = opentype.NewFace(ft, &opentype.FaceOptions{Size: float64(size), DPI: 72, Hinting: font.HintingFull})
		if err == nil {
			return face
		}
	}

	f.mu.Lock()
	warned := f.failed[path]
	f.failed[path] = true
	f.mu.Unlock()

	if !warned {
		klog.Warningf("Failed to load font %s: %v. Using default font.", path, err)
	}
	return basicfont.Face7x13
}

// Typeface measures and draws multi-line text with a face.
type Typeface struct {
	Face font.Face
}

func (t Typeface) lineHeight() int {
	return t.Face.Metrics().Height.Ceil()
}

// Measure returns the size of the box enclosing text.
func (t Typeface) Measure(text string) image.Point {
	if text == "" {
		return image.Point{}
	}

	lines := strings.Split(text, "\n")
	w := 0
	for _, l := range lines {
		w = max(w, font.MeasureString(t.Face, l).Ceil())
	}

	m := t.Face.Metrics()
	h := (len(lines)-1)*t.lineHeight() + m.Ascent.Ceil() + m.Descent.Ceil()
	return image.Pt(w, h)
}

// Draw renders text left-aligned with the top of its box at pt.
func (t Typeface) Draw(dst draw.Image, pt image.Point, text string, c color.Color) {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(c), Face: t.Face}
	ascent := t.Face.Metrics().Ascent.Ceil()

	for i, l := range strings.Split(text, "\n") {
		d.Dot = fixed.P(pt.X, pt.Y+ascent+i*t.lineHeight())
		d.DrawString(l)
	}
}
