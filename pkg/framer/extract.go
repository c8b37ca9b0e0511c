package framer

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/barasher/go-exiftool"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
	"k8s.io/klog/v2"

	"github.com/tstromberg/framer/pkg/meta"
)

// Metadata backends.
const (
	BackendExiftool = "exiftool"
	BackendGoexif   = "goexif"
)

// Extractor reads the raw metadata record of an image file.
type Extractor interface {
	Extract(path string) (meta.Record, error)
	Close() error
}

// NewExtractor returns the configured backend, falling back to goexif if exiftool cannot be started.
func NewExtractor(c *Config) (Extractor, error) {
	switch c.Metadata.Backend {
	case BackendGoexif:
		return &Goexif{}, nil
	case BackendExiftool:
		e, err := NewExiftool(c.Exiftool.Path, c.Workers())
		if err != nil {
			klog.Warningf("exiftool unavailable (%v), using built-in EXIF decoder", err)
			return &Goexif{}, nil
		}
		return e, nil
	}
	return nil, fmt.Errorf("%w: unknown metadata.backend %q", ErrConfig, c.Metadata.Backend)
}

// Exiftool extracts metadata with a pool of long-running exiftool processes, one per worker.
type Exiftool struct {
	pool chan *exiftool.Exiftool
	n    int
}

// NewExiftool starts n exiftool processes. bin may be empty to search $PATH.
func NewExiftool(bin string, n int) (*Exiftool, error) {
	n = max(n, 1)
	e := &Exiftool{pool: make(chan *exiftool.Exiftool, n)}

	opts := []func(*exiftool.Exiftool) error{}
	if bin != "" {
		opts = append(opts, exiftool.SetExiftoolBinaryPath(bin))
	}

	for i := 0; i < n; i++ {
		et, err := exiftool.NewExiftool(opts...)
		if err != nil {
			if cerr := e.Close(); cerr != nil {
				klog.Errorf("close exiftool: %v", cerr)
			}
			return nil, fmt.Errorf("exiftool: %w", err)
		}
		e.pool <- et
		e.n++
	}

	klog.V(1).Infof("started %d exiftool processes", n)
	return e, nil
}

// Extract returns the fields exiftool reports for path.
func (e *Exiftool) Extract(path string) (meta.Record, error) {
	et := <-e.pool
	defer func() { e.pool <- et }()

	fis := et.ExtractMetadata(path)
	if len(fis) == 0 {
		return meta.Record{}, nil
	}

	fi := fis[0]
	if fi.Err != nil {
		return meta.Record{}, fmt.Errorf("extract fail for %q: %w", path, fi.Err)
	}

	r := meta.Record{}
	for k, v := range fi.Fields {
		klog.V(2).Infof("%q=%v", k, v)
		r[k] = v
	}
	fromPrinted(r)
	return r, nil
}

// printedDMS matches exiftool's default coordinate print format, e.g. 34 deg 3' 8.07" N.
var printedDMS = regexp.MustCompile(`^(\d+(?:\.\d+)?) deg (\d+(?:\.\d+)?)' (\d+(?:\.\d+)?)"(?: ([NSEW]))?$`)

var printedRefs = map[string]string{"North": "N", "South": "S", "East": "E", "West": "W"}

// fromPrinted rewrites printed GPS coordinates and references into [[d,1],[m,1],[s,1]] triples and single letters.
func fromPrinted(r meta.Record) {
	for _, axis := range []string{"GPSLatitude", "GPSLongitude"} {
		ref := axis + "Ref"
		if s, ok := r[ref].(string); ok {
			if short, ok := printedRefs[s]; ok {
				r[ref] = short
			}
		}

		s, ok := r[axis].(string)
		if !ok {
			continue
		}
		m := printedDMS.FindStringSubmatch(strings.TrimSpace(s))
		if m == nil {
			klog.V(1).Infof("unrecognized %s: %q", axis, s)
			continue
		}

		triple := make([]any, 0, 3)
		for _, part := range m[1:4] {
			f, err := strconv.ParseFloat(part, 64)
			if err != nil {
				break
			}
			triple = append(triple, []any{f, 1.0})
		}
		if len(triple) != 3 {
			continue
		}

		r[axis] = triple
		if m[4] != "" {
			r[ref] = m[4]
		}
	}
}

// Close stops every exiftool process.
func (e *Exiftool) Close() error {
	var errs []error
	for ; e.n > 0; e.n-- {
		et := <-e.pool
		if err := et.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// aliases renames goexif field names to the names exiftool uses.
var aliases = map[exif.FieldName]string{
	exif.ISOSpeedRatings: "ISO",
}

// Goexif extracts metadata in-process. Rationals are reported as [numerator, denominator] pairs.
type Goexif struct{}

type walker struct {
	r meta.Record
}

func (w walker) Walk(name exif.FieldName, tag *tiff.Tag) error {
	v, ok := tagValue(tag)
	if !ok {
		return nil
	}

	key := string(name)
	if a, ok := aliases[name]; ok {
		key = a
	}
	klog.V(2).Infof("%q=%v", key, v)
	w.r[key] = v
	return nil
}

func tagValue(tag *tiff.Tag) (any, bool) {
	n := int(tag.Count)
	if n == 0 {
		return nil, false
	}

	switch tag.Format() {
	case tiff.StringVal:
		s, err := tag.StringVal()
		if err != nil {
			return nil, false
		}
		return strings.TrimRight(s, "\x00 "), true
	case tiff.RatVal:
		vals := make([]any, 0, n)
		for i := 0; i < n; i++ {
			num, den, err := tag.Rat2(i)
			if err != nil {
				return nil, false
			}
			vals = append(vals, []any{float64(num), float64(den)})
		}
		if n == 1 {
			return vals[0], true
		}
		return vals, true
	case tiff.IntVal:
		vals := make([]any, 0, n)
		for i := 0; i < n; i++ {
			v, err := tag.Int64(i)
			if err != nil {
				return nil, false
			}
			vals = append(vals, float64(v))
		}
		if n == 1 {
			return vals[0], true
		}
		return vals, true
	case tiff.FloatVal:
		vals := make([]any, 0, n)
		for i := 0; i < n; i++ {
			v, err := tag.Float(i)
			if err != nil {
				return nil, false
			}
			vals = append(vals, v)
		}
		if n == 1 {
			return vals[0], true
		}
		return vals, true
	}

	return nil, false
}

// Extract decodes the EXIF block of path. Files without EXIF yield an empty record.
func (Goexif) Extract(path string) (meta.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return meta.Record{}, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil && (x == nil || exif.IsCriticalError(err)) {
		klog.V(1).Infof("no EXIF in %s: %v", path, err)
		return meta.Record{}, nil
	}
	if err != nil {
		klog.V(1).Infof("partial EXIF in %s: %v", path, err)
	}

	w := walker{r: meta.Record{}}
	if err := x.Walk(w); err != nil {
		return w.r, fmt.Errorf("walk: %w", err)
	}
	return w.r, nil
}

func (Goexif) Close() error { return nil }
