package projector

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/climate-mapper/app/models"
)

func TestRenderPNGWritesFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "map.png")
	opts := RenderOptions{Width: 400, Height: 300}

	require.NoError(t, RenderPNG(sampleDataset(), opts, out))

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestRenderPNGNoGeometry(t *testing.T) {
	ds := &models.ReconciledDataset{
		Records: []models.GeometryRecord{{ZoneCategory: models.ZoneUnassigned}},
	}
	err := RenderPNG(ds, RenderOptions{Width: 100, Height: 100}, filepath.Join(t.TempDir(), "x.png"))
	assert.Error(t, err)
}

func TestCategoryColorsStable(t *testing.T) {
	ds := sampleDataset()
	a := categoryColors(ds)
	b := categoryColors(ds)
	assert.Equal(t, a, b)
}

func TestCategoryColorsDistinct(t *testing.T) {
	ds := &models.ReconciledDataset{
		Records: []models.GeometryRecord{
			{ZoneCategory: "A3"},
			{ZoneCategory: "B4"},
			{ZoneCategory: "D3"},
			{ZoneCategory: models.ZoneUnassigned},
		},
	}
	colors := categoryColors(ds)
	require.Len(t, colors, 3)
	assert.NotEqual(t, colors["A3"], colors["B4"])
	assert.NotEqual(t, colors["B4"], colors["D3"])
	_, hasUnassigned := colors[models.ZoneUnassigned]
	assert.False(t, hasUnassigned, "unassigned keeps the neutral fill, not a palette slot")
}
