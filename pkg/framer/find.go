package framer

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/karrick/godirwalk"
	"k8s.io/klog/v2"
)

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

func isImage(path string) bool {
	return imageExts[strings.ToLower(filepath.Ext(path))]
}

// isOutput reports whether path is named like a framed output.
func isOutput(path string, prefix string) bool {
	return prefix != "" && strings.HasPrefix(filepath.Base(path), prefix)
}

// outPath returns where a photo at rel (relative to the input folder) is written.
func outPath(outDir string, prefix string, rel string) string {
	return filepath.Join(outDir, filepath.Dir(rel), prefix+filepath.Base(rel))
}

// Find returns the images under root. Subdirectories are only searched when recursive is set.
func Find(root string, outDir string, prefix string, recursive bool) ([]*Photo, error) {
	found := []*Photo{}
	root = filepath.Clean(root)
	outDir = filepath.Clean(outDir)

	err := godirwalk.Walk(root, &godirwalk.Options{
		Callback: func(path string, de *godirwalk.Dirent) error {
			if filepath.Clean(path) == root {
				return nil
			}

			if filepath.Base(path)[0] == '.' {
				return godirwalk.SkipThis
			}

			if de.IsDir() {
				// our own output must not be framed again
				if !recursive || filepath.Clean(path) == outDir {
					return godirwalk.SkipThis
				}
				return nil
			}

			if !isImage(path) {
				klog.V(2).Infof("ignoring %s", path)
				return nil
			}

			if isOutput(path, prefix) {
				klog.V(2).Infof("ignoring earlier output %s", path)
				return nil
			}

			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}

			klog.V(1).Infof("found %s", path)
			found = append(found, &Photo{InPath: path, RelPath: rel, OutPath: outPath(outDir, prefix, rel)})
			return nil
		},
		Unsorted: true,
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	sort.Slice(found, func(i, j int) bool {
		return found[i].RelPath < found[j].RelPath
	})
	return found, nil
}
