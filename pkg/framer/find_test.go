package framer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, root string, rel string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
}

func relPaths(ps []*Photo) []string {
	out := []string{}
	for _, p := range ps {
		out = append(out, p.RelPath)
	}
	return out
}

func TestFind(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{
		"b.jpg",
		"a.JPEG",
		"c.png",
		"notes.txt",
		".hidden.jpg",
		".thumbs/d.jpg",
		"trip/e.jpg",
		"trip/day2/f.png",
		"output/EXIF_b.jpg",
		"EXIF_c.png",
		"trip/EXIF_e.jpg",
	} {
		touch(t, root, rel)
	}
	outDir := filepath.Join(root, "output")

	tests := []struct {
		name      string
		recursive bool
		want      []string
	}{
		{name: "flat", want: []string{"a.JPEG", "b.jpg", "c.png"}},
		{name: "recursive", recursive: true, want: []string{"a.JPEG", "b.jpg", "c.png", "trip/day2/f.png", "trip/e.jpg"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ps, err := Find(root, outDir, "EXIF_", tc.recursive)
			require.NoError(t, err)

			want := []string{}
			for _, w := range tc.want {
				want = append(want, filepath.FromSlash(w))
			}
			if diff := cmp.Diff(want, relPaths(ps)); diff != "" {
				t.Errorf("Find() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFindOutPath(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "trip/e.jpg")

	ps, err := Find(root, "/out", "EXIF_", true)
	require.NoError(t, err)
	require.Len(t, ps, 1)

	if diff := cmp.Diff(filepath.Join("/out", "trip", "EXIF_e.jpg"), ps[0].OutPath); diff != "" {
		t.Errorf("OutPath mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(filepath.Join(root, "trip", "e.jpg"), ps[0].InPath); diff != "" {
		t.Errorf("InPath mismatch (-want +got):\n%s", diff)
	}
}

func TestFindMissingRoot(t *testing.T) {
	_, err := Find(filepath.Join(t.TempDir(), "missing"), "out", "", false)
	require.Error(t, err)
}

func TestFindSameFolder(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "a.jpg")
	touch(t, root, "EXIF_a.jpg")
	touch(t, root, "EXIF_EXIF_a.jpg")

	ps, err := Find(root, root, "EXIF_", false)
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"a.jpg"}, relPaths(ps)); diff != "" {
		t.Errorf("Find() mismatch (-want +got):\n%s", diff)
	}

	// without a prefix every image is an input
	ps, err = Find(root, root, "", false)
	require.NoError(t, err)
	assert.Len(t, ps, 3)
}
