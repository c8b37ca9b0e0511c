package framer

import (
	"context"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tstromberg/framer/pkg/meta"
)

func TestRun(t *testing.T) {
	c := testConfig(t)
	c.Basic.UseMultithreading = true
	c.Basic.ThreadNums = 3
	in, out := c.Image.InputFolder, c.Image.OutputFolder

	writeJPEG(t, filepath.Join(in, "a.jpg"), 60, 40, color.White)
	writeJPEG(t, filepath.Join(in, "b.jpg"), 60, 40, color.White)
	require.NoError(t, os.WriteFile(filepath.Join(in, "c.jpg"), []byte("junk"), 0o600))
	writePNG(t, filepath.Join(in, "d.png"), 60, 40, color.Black)
	writeJPEG(t, filepath.Join(in, "sub", "e.jpg"), 60, 40, color.White)

	// a directory where the output file should go makes the save fail
	require.NoError(t, os.MkdirAll(filepath.Join(out, "EXIF_d.png"), 0o755))

	ex := &fakeExtractor{records: map[string]meta.Record{
		"a.jpg": canon,
		"b.jpg": {},
		"c.jpg": canon,
		"d.png": canon,
		"e.jpg": canon,
	}}

	st, err := Run(context.Background(), c, ex)
	require.NoError(t, err)

	assert.Equal(t, 1, st.Processed)
	assert.Equal(t, 2, st.Skipped)
	assert.Equal(t, 1, st.Failed)
	assert.Positive(t, st.Bytes)
	assert.FileExists(t, filepath.Join(out, "EXIF_a.jpg"))
	assert.NoFileExists(t, filepath.Join(out, "EXIF_b.jpg"))
	assert.NoFileExists(t, filepath.Join(out, "sub", "EXIF_e.jpg"))
	// c.jpg fails to decode before extraction
	assert.Equal(t, 3, ex.calls)
}

func TestRunRecursive(t *testing.T) {
	c := testConfig(t)
	c.Image.Recursive = true
	in, out := c.Image.InputFolder, c.Image.OutputFolder

	writeJPEG(t, filepath.Join(in, "a.jpg"), 60, 40, color.White)
	writeJPEG(t, filepath.Join(in, "sub", "e.jpg"), 60, 40, color.White)

	ex := &fakeExtractor{records: map[string]meta.Record{"a.jpg": canon, "e.jpg": canon}}
	st, err := Run(context.Background(), c, ex)
	require.NoError(t, err)

	assert.Equal(t, 2, st.Processed)
	assert.FileExists(t, filepath.Join(out, "EXIF_a.jpg"))
	assert.FileExists(t, filepath.Join(out, "sub", "EXIF_e.jpg"))
}

func TestRunMissingInput(t *testing.T) {
	c := testConfig(t)
	_, err := Run(context.Background(), c, &fakeExtractor{})
	assert.Error(t, err)
}

func TestRunCancelled(t *testing.T) {
	c := testConfig(t)
	writeJPEG(t, filepath.Join(c.Image.InputFolder, "a.jpg"), 60, 40, color.White)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ex := &fakeExtractor{records: map[string]meta.Record{"a.jpg": canon}}
	st, err := Run(ctx, c, ex)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, st.Processed)
	assert.Equal(t, 0, ex.calls)
}

func TestProcessFiles(t *testing.T) {
	c := testConfig(t)
	dir := t.TempDir()
	a := filepath.Join(dir, "x", "a.jpg")
	b := filepath.Join(dir, "y", "b.png")
	writeJPEG(t, a, 60, 40, color.White)
	writePNG(t, b, 60, 40, color.Black)

	ex := &fakeExtractor{records: map[string]meta.Record{"a.jpg": canon, "b.png": canon}}
	st, err := ProcessFiles(context.Background(), c, ex, []string{a, b})
	require.NoError(t, err)

	assert.Equal(t, 2, st.Processed)
	assert.FileExists(t, filepath.Join(c.Image.OutputFolder, "EXIF_a.jpg"))
	assert.FileExists(t, filepath.Join(c.Image.OutputFolder, "EXIF_b.png"))
}
