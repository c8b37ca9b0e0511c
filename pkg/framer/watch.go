package framer

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/karrick/godirwalk"
	"k8s.io/klog/v2"
)

// settle is how long a file must stay unmodified before it is framed.
var settle = 500 * time.Millisecond

// watchDirs returns root plus, when recursive, every non-hidden subdirectory except outDir.
func watchDirs(root string, outDir string, recursive bool) ([]string, error) {
	root = filepath.Clean(root)
	if !recursive {
		return []string{root}, nil
	}

	outDir = filepath.Clean(outDir)
	dirs := []string{}
	err := godirwalk.Walk(root, &godirwalk.Options{
		Callback: func(path string, de *godirwalk.Dirent) error {
			path = filepath.Clean(path)
			if !de.IsDir() {
				return nil
			}
			if path != root && (filepath.Base(path)[0] == '.' || path == outDir) {
				return godirwalk.SkipThis
			}
			dirs = append(dirs, path)
			return nil
		},
		Unsorted: true,
	})
	return dirs, err
}

// Watch frames new or modified images in the input folder until ctx is cancelled.
func Watch(ctx context.Context, c *Config, ex Extractor) error {
	proc, err := NewProcessor(c, ex)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("new watcher: %w", err)
	}
	defer w.Close()

	root := filepath.Clean(c.Image.InputFolder)
	dirs, err := watchDirs(root, c.Image.OutputFolder, c.Image.Recursive)
	if err != nil {
		return fmt.Errorf("walk %s: %w", root, err)
	}

	for _, d := range dirs {
		if err := w.Add(d); err != nil {
			return fmt.Errorf("watch %s: %w", d, err)
		}
	}
	klog.Infof("watching %d dirs under %s ...", len(dirs), root)

	sem := make(chan struct{}, c.Workers())
	st := &Stats{}
	q := newQueue(settle, func(in string) {
		rel, err := filepath.Rel(root, in)
		if err != nil {
			klog.Errorf("rel %s: %v", in, err)
			return
		}

		sem <- struct{}{}
		defer func() { <-sem }()
		p := &Photo{InPath: in, RelPath: rel, OutPath: outPath(c.Image.OutputFolder, c.Image.OutputPrefix, rel)}
		st.record(p, proc.Process(p.InPath, p.OutPath))
	})
	defer func() {
		q.stop()
		klog.Infof("watch stopped: %s", st)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			klog.V(1).Infof("event: %s", event)

			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}

			if !isImage(event.Name) || filepath.Base(event.Name)[0] == '.' || isOutput(event.Name, c.Image.OutputPrefix) {
				continue
			}
			q.add(event.Name)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			klog.Errorf("watch error: %v", err)
		}
	}
}

// queue runs do for a path once it has been quiet for settle. A path is never handled by two
// goroutines at once: events that arrive while it is being handled queue a single extra pass.
type queue struct {
	settle time.Duration
	do     func(path string)

	mu      sync.Mutex
	wg      sync.WaitGroup
	pending map[string]*time.Timer
	running map[string]bool
	dirty   map[string]bool
}

func newQueue(settle time.Duration, do func(path string)) *queue {
	return &queue{
		settle:  settle,
		do:      do,
		pending: map[string]*time.Timer{},
		running: map[string]bool{},
		dirty:   map[string]bool{},
	}
}

// add schedules path, pushing back a schedule that has not fired yet.
func (q *queue) add(path string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if t, ok := q.pending[path]; ok && t.Stop() {
		t.Reset(q.settle)
		return
	}

	q.wg.Add(1)
	q.pending[path] = time.AfterFunc(q.settle, func() { q.run(path) })
}

func (q *queue) run(path string) {
	defer q.wg.Done()

	q.mu.Lock()
	if q.running[path] {
		q.dirty[path] = true
		q.mu.Unlock()
		return
	}
	q.running[path] = true
	q.mu.Unlock()

	for {
		q.do(path)

		q.mu.Lock()
		if !q.dirty[path] {
			delete(q.running, path)
			q.mu.Unlock()
			return
		}
		delete(q.dirty, path)
		q.mu.Unlock()
	}
}

// stop drops schedules that have not fired and waits for the rest.
func (q *queue) stop() {
	q.mu.Lock()
	for path, t := range q.pending {
		if t.Stop() {
			q.wg.Done()
		}
		delete(q.pending, path)
	}
	q.mu.Unlock()
	q.wg.Wait()
}
