package framer

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/disintegration/imaging"
	"k8s.io/klog/v2"

	"github.com/tstromberg/framer/pkg/layout"
	"github.com/tstromberg/framer/pkg/meta"
)

var (
	// ErrUnreadableImage means the source image could not be decoded.
	ErrUnreadableImage = errors.New("unreadable image")
	// ErrNoMetadata means the metadata extractor returned an empty record.
	ErrNoMetadata = errors.New("no metadata")
)

// Processor frames one image at a time. It is safe for concurrent use.
type Processor struct {
	c          *Config
	ex         Extractor
	fonts      *layout.Fonts
	normalizer meta.Normalizer
	text       color.Color
	background color.Color
}

// NewProcessor returns a Processor for c that reads metadata with ex.
func NewProcessor(c *Config, ex Extractor) (*Processor, error) {
	text, err := layout.ParseColor(c.Font.Color)
	if err != nil {
		return nil, fmt.Errorf("%w: font.color: %v", ErrConfig, err)
	}

	bg, err := layout.ParseColor(c.Border.Color)
	if err != nil {
		return nil, fmt.Errorf("%w: border.color: %v", ErrConfig, err)
	}

	return &Processor{
		c:          c,
		ex:         ex,
		fonts:      layout.NewFonts(),
		normalizer: meta.Normalizer{},
		text:       text,
		background: bg,
	}, nil
}

// Process writes a framed copy of in to out.
func (p *Processor) Process(in string, out string) error {
	src, err := imaging.Open(in, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnreadableImage, in, err)
	}

	r, err := p.ex.Extract(in)
	if err != nil {
		klog.Warningf("metadata extraction for %s: %v", in, err)
	}
	if len(r) == 0 {
		return fmt.Errorf("%w: %s", ErrNoMetadata, in)
	}

	m := p.normalizer.Normalize(r)
	caption := meta.Caption(m)
	klog.V(1).Infof("caption for %s:\n%s", in, caption)

	lc := p.c.Layout()
	b := src.Bounds()
	d := lc.Resolve(b.Dx(), b.Dy())

	face := p.fonts.Face(p.c.Font.Path, d.FontSize)
	defer face.Close()
	box := layout.Typeface{Face: face}.Measure(caption)

	var logoSize *image.Point
	logo := LoadLogo(LogoPath(m.CameraModel, p.c.Logo.Options), d.LogoSize)
	if logo != nil {
		s := logo.Bounds().Size()
		logoSize = &s
	}

	plan := layout.Compute(b.Dx(), b.Dy(), box, logoSize, lc)
	framed := layout.Render(src, plan, logo, caption, layout.Style{Face: face, Text: p.text, Background: p.background})

	return save(out, framed, p.c.Image.OutputQuality)
}

// save encodes img by the extension of path: PNG for .png, JPEG otherwise.
func save(path string, img image.Image, quality int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	enc := imgio.JPEGEncoder(quality)
	if strings.EqualFold(filepath.Ext(path), ".png") {
		enc = imgio.PNGEncoder()
	}

	if err := imgio.Save(path, img, enc); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}
