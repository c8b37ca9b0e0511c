package framer

import (
	"image"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
	"k8s.io/klog/v2"
)

// LogoPath returns the logo whose brand occurs in model (case-insensitive), else the default entry.
// Longer brands are tried first so that "Nikon Z" beats "Nikon".
func LogoPath(model string, options map[string]string) string {
	brands := make([]string, 0, len(options))
	for b := range options {
		if strings.EqualFold(b, DefaultLogo) {
			continue
		}
		brands = append(brands, b)
	}

	sort.Slice(brands, func(i, j int) bool {
		if len(brands[i]) != len(brands[j]) {
			return len(brands[i]) > len(brands[j])
		}
		return brands[i] < brands[j]
	})

	m := strings.ToLower(model)
	for _, b := range brands {
		if strings.Contains(m, strings.ToLower(b)) {
			return options[b]
		}
	}

	for b, p := range options {
		if strings.EqualFold(b, DefaultLogo) {
			return p
		}
	}
	return ""
}

// fit scales w×h to fit inside a size×size box, keeping the aspect ratio. It never enlarges.
func fit(w, h, size int) (int, int) {
	if w <= size && h <= size {
		return w, h
	}

	scale := math.Min(float64(size)/float64(w), float64(size)/float64(h))
	x := max(int(math.Round(float64(w)*scale)), 1)
	y := max(int(math.Round(float64(h)*scale)), 1)
	return x, y
}

// LoadLogo reads the logo at path, shrunk to fit a size×size box. It returns nil if the logo cannot be read.
func LoadLogo(path string, size int) image.Image {
	if path == "" {
		return nil
	}

	if _, err := os.Stat(path); err != nil {
		klog.Warningf("Logo path does not exist: %s", path)
		return nil
	}

	i, err := imgio.Open(path)
	if err != nil {
		klog.Warningf("Unable to open or read logo file at %s: %v", path, err)
		return nil
	}

	if size <= 0 {
		return image.NewRGBA(image.Rectangle{})
	}

	w, h := i.Bounds().Dx(), i.Bounds().Dy()
	if w == 0 || h == 0 {
		return i
	}

	x, y := fit(w, h, size)
	if x == w && y == h {
		return i
	}

	klog.V(1).Infof("resizing logo %s from %dx%d to %dx%d", path, w, h, x, y)
	return transform.Resize(i, x, y, transform.Lanczos)
}
