package framer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
)

// Stats summarizes a batch.
type Stats struct {
	mu sync.Mutex

	Processed int
	Skipped   int
	Failed    int
	// Bytes is the total size of the written images.
	Bytes   uint64
	Elapsed time.Duration
}

func (s *Stats) record(p *Photo, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case err == nil:
		s.Processed++
		if fi, serr := os.Stat(p.OutPath); serr == nil {
			s.Bytes += uint64(fi.Size())
		}
		klog.Infof("Processed %s", p.OutPath)
	case errors.Is(err, ErrNoMetadata), errors.Is(err, ErrUnreadableImage):
		s.Skipped++
		klog.Warningf("skipping %s: %v", p.InPath, err)
	default:
		s.Failed++
		klog.Errorf("%s failed: %v", p.InPath, err)
	}
}

func (s *Stats) String() string {
	return fmt.Sprintf("%d processed, %d skipped, %d failed, %s written",
		s.Processed, s.Skipped, s.Failed, humanize.Bytes(s.Bytes))
}

// Run frames every image in the configured input folder.
func Run(ctx context.Context, c *Config, ex Extractor) (*Stats, error) {
	inDir := c.Image.InputFolder
	outDir := c.Image.OutputFolder
	klog.Infof("frame: %s -> %s", inDir, outDir)

	if _, err := os.Stat(inDir); err != nil {
		return nil, fmt.Errorf("input folder: %w", err)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("output folder: %w", err)
	}

	ps, err := Find(inDir, outDir, c.Image.OutputPrefix, c.Image.Recursive)
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}
	klog.Infof("found %d images in %s", len(ps), inDir)

	return dispatch(ctx, c, ex, ps)
}

// ProcessFiles frames explicitly named files, writing them to the output folder.
func ProcessFiles(ctx context.Context, c *Config, ex Extractor, paths []string) (*Stats, error) {
	ps := make([]*Photo, 0, len(paths))
	for _, path := range paths {
		rel := filepath.Base(path)
		ps = append(ps, &Photo{InPath: path, RelPath: rel, OutPath: outPath(c.Image.OutputFolder, c.Image.OutputPrefix, rel)})
	}
	return dispatch(ctx, c, ex, ps)
}

// dispatch processes ps with c.Workers() images in flight. A failing image never stops the batch.
func dispatch(ctx context.Context, c *Config, ex Extractor, ps []*Photo) (*Stats, error) {
	start := time.Now()
	st := &Stats{}

	proc, err := NewProcessor(c, ex)
	if err != nil {
		return nil, err
	}

	var g errgroup.Group
	g.SetLimit(c.Workers())

	for _, p := range ps {
		if ctx.Err() != nil {
			break
		}
		p := p
		g.Go(func() error {
			st.record(p, proc.Process(p.InPath, p.OutPath))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return st, err
	}

	st.Elapsed = time.Since(start)
	klog.Infof("Total processing time: %.2f seconds (%s)", st.Elapsed.Seconds(), st)

	if err := ctx.Err(); err != nil {
		return st, fmt.Errorf("interrupted: %w", err)
	}
	return st, nil
}
