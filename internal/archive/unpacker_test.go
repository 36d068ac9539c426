package archive

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeZip(t *testing.T, entries map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upload.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for name, content := range entries {
		entry, err := w.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return path
}

func TestUnpackPrefersNonHiddenShapefile(t *testing.T) {
	zipPath := writeZip(t, map[string]string{
		"data/._municipios.shp": "resource fork junk",
		"data/municipios.shp":   "real shapefile bytes",
		"data/municipios.dbf":   "attributes",
	})

	got, err := Unpack(zipPath, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "municipios.shp", filepath.Base(got))
}

func TestUnpackAllHiddenFallsBackToFirst(t *testing.T) {
	zipPath := writeZip(t, map[string]string{
		"._only.shp": "junk",
	})

	got, err := Unpack(zipPath, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "._only.shp", filepath.Base(got))
}

func TestUnpackNestedDirectories(t *testing.T) {
	zipPath := writeZip(t, map[string]string{
		"a/b/c/deep.shp": "bytes",
	})

	got, err := Unpack(zipPath, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "deep.shp", filepath.Base(got))
}

func TestUnpackNoShapefile(t *testing.T) {
	zipPath := writeZip(t, map[string]string{
		"readme.txt": "no geometry here",
	})

	_, err := Unpack(zipPath, t.TempDir())
	var formatErr *FormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Contains(t, formatErr.Error(), "no .shp file")
}

func TestUnpackCorruptArchive(t *testing.T) {
	zipPath := filepath.Join(t.TempDir(), "broken.zip")
	require.NoError(t, os.WriteFile(zipPath, []byte("this is not a zip"), 0o644))

	_, err := Unpack(zipPath, t.TempDir())
	var formatErr *FormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Contains(t, formatErr.Error(), "not a valid zip")
}

func TestUnpackRejectsEscapingEntries(t *testing.T) {
	zipPath := writeZip(t, map[string]string{
		"../evil.shp": "outside the scratch dir",
	})

	scratch := t.TempDir()
	_, err := Unpack(zipPath, scratch)
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(filepath.Dir(scratch), "evil.shp"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestUnpackExtractsUnderScratchDir(t *testing.T) {
	zipPath := writeZip(t, map[string]string{
		"m.shp": "bytes",
	})

	scratch := t.TempDir()
	got, err := Unpack(zipPath, scratch)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, scratch), "extracted file must live under the scratch dir")

	data, err := os.ReadFile(got)
	require.NoError(t, err)
	assert.Equal(t, "bytes", string(data))
}
