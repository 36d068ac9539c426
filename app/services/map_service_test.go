package services

import (
	"archive/zip"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	shp "github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/climate-mapper/app/config"
	"github.com/climate-mapper/app/models"
	"github.com/climate-mapper/internal/extractor"
	"github.com/climate-mapper/internal/matcher"
	"github.com/climate-mapper/internal/shapefile"
)

func newTestService(t *testing.T) *MapService {
	t.Helper()
	logger := zap.NewNop()
	cfg := config.Defaults().Extract
	ext, err := extractor.New(extractor.Options{
		ZonePattern:   cfg.ZonePattern,
		MinNameLength: cfg.MinNameLength,
		ExcerptLength: cfg.ExcerptLength,
	}, logger)
	require.NoError(t, err)
	return NewMapService(ext, matcher.New(config.Defaults().Match.Threshold, logger), logger)
}

// writeShapefile fabricates a polygon shapefile with a NAMEUNIT column.
func writeShapefile(t *testing.T, dir string, names []string) []string {
	t.Helper()
	shpPath := filepath.Join(dir, "municipios.shp")
	w, err := shp.Create(shpPath, shp.POLYGON)
	require.NoError(t, err)

	w.SetFields([]shp.Field{shp.StringField("NAMEUNIT", 40)})
	for i, name := range names {
		off := float64(i) * 2
		ring := []shp.Point{
			{X: off, Y: 0}, {X: off, Y: 1}, {X: off + 1, Y: 1}, {X: off + 1, Y: 0}, {X: off, Y: 0},
		}
		poly := shp.Polygon(*shp.NewPolyLine([][]shp.Point{ring}))
		w.Write(&poly)
		require.NoError(t, w.WriteAttribute(i, 0, name))
	}
	w.Close()

	base := shpPath[:len(shpPath)-len(".shp")]
	// go-shp's writer names the attribute file "<base>dbf" without the
	// dot; readers expect "<base>.dbf".
	require.NoError(t, os.Rename(base+"dbf", base+".dbf"))
	return []string{shpPath, base + ".shx", base + ".dbf"}
}

func zipFiles(t *testing.T, dir string, paths []string) string {
	t.Helper()
	zipPath := filepath.Join(dir, "municipios.zip")
	f, err := os.Create(zipPath)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, p := range paths {
		data, err := os.ReadFile(p)
		require.NoError(t, err)
		entry, err := zw.Create(filepath.Base(p))
		require.NoError(t, err)
		_, err = entry.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return zipPath
}

func writeDoc(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "zonas.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestGenerateGeoJSONEndToEnd(t *testing.T) {
	ms := newTestService(t)
	dir := t.TempDir()

	files := writeShapefile(t, dir, []string{"Springfield", "Shelbyville", "Ogdenville"})
	zipPath := zipFiles(t, dir, files)
	docPath := writeDoc(t, dir, "Springfield D3\nShelbyville B1")

	result, err := ms.Generate(context.Background(), docPath, zipPath, t.TempDir(), ModeGeoJSON)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Rows)
	assert.Equal(t, 2, result.MatchedRows)
	assert.Equal(t, 2, result.ExtractedRows)
	assert.Equal(t, "NAMEUNIT", result.NameColumn)

	var fc models.FeatureCollection
	require.NoError(t, json.Unmarshal([]byte(result.GeoJSON), &fc))
	require.Len(t, fc.Features, 3)

	byName := map[string]string{}
	for _, feat := range fc.Features {
		byName[feat.Properties["NAMEUNIT"].(string)] = feat.Properties["zone_category"].(string)
	}
	assert.Equal(t, "D3", byName["Springfield"])
	assert.Equal(t, "B1", byName["Shelbyville"])
	assert.Equal(t, models.ZoneUnassigned, byName["Ogdenville"])
}

func TestGenerateGeoJSONIdempotent(t *testing.T) {
	ms := newTestService(t)
	dir := t.TempDir()

	files := writeShapefile(t, dir, []string{"Springfield", "Shelbyville"})
	zipPath := zipFiles(t, dir, files)
	docPath := writeDoc(t, dir, "Springfield D3\nShelbyville B1")

	first, err := ms.Generate(context.Background(), docPath, zipPath, t.TempDir(), ModeGeoJSON)
	require.NoError(t, err)
	second, err := ms.Generate(context.Background(), docPath, zipPath, t.TempDir(), ModeGeoJSON)
	require.NoError(t, err)
	assert.Equal(t, first.GeoJSON, second.GeoJSON)
}

func TestGenerateCaseDiacriticVariance(t *testing.T) {
	ms := newTestService(t)
	dir := t.TempDir()

	files := writeShapefile(t, dir, []string{"Sant Boi de Llobregat"})
	zipPath := zipFiles(t, dir, files)
	docPath := writeDoc(t, dir, "Sant Boi De Llobregat C2")

	result, err := ms.Generate(context.Background(), docPath, zipPath, t.TempDir(), ModeGeoJSON)
	require.NoError(t, err)
	assert.Equal(t, 1, result.MatchedRows)
}

func TestGenerateImageMode(t *testing.T) {
	ms := newTestService(t)
	dir := t.TempDir()

	files := writeShapefile(t, dir, []string{"Springfield", "Shelbyville"})
	zipPath := zipFiles(t, dir, files)
	docPath := writeDoc(t, dir, "Springfield D3\nShelbyville B1")

	scratch := t.TempDir()
	result, err := ms.Generate(context.Background(), docPath, zipPath, scratch, ModeImage)
	require.NoError(t, err)
	require.NotEmpty(t, result.ImagePath)

	info, err := os.Stat(result.ImagePath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestGenerateUnreadableDocumentAbortsBeforeRendering(t *testing.T) {
	ms := newTestService(t)
	dir := t.TempDir()

	files := writeShapefile(t, dir, []string{"Springfield"})
	zipPath := zipFiles(t, dir, files)
	docPath := writeDoc(t, dir, "texto sin tabla alguna")

	scratch := t.TempDir()
	_, err := ms.Generate(context.Background(), docPath, zipPath, scratch, ModeImage)
	var extractErr *extractor.ExtractionError
	require.ErrorAs(t, err, &extractErr)

	_, statErr := os.Stat(filepath.Join(scratch, "climate_map.png"))
	assert.True(t, os.IsNotExist(statErr), "no partial image on extraction failure")
}

func TestGenerateEmptyShapefile(t *testing.T) {
	ms := newTestService(t)
	dir := t.TempDir()

	files := writeShapefile(t, dir, nil)
	zipPath := zipFiles(t, dir, files)
	docPath := writeDoc(t, dir, "Springfield D3")

	_, err := ms.Generate(context.Background(), docPath, zipPath, t.TempDir(), ModeGeoJSON)
	var emptyErr *shapefile.EmptyDatasetError
	require.ErrorAs(t, err, &emptyErr)
}
