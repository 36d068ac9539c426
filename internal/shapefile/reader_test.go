package shapefile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	shp "github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePolygons(t *testing.T, names []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "units.shp")
	w, err := shp.Create(path, shp.POLYGON)
	require.NoError(t, err)

	w.SetFields([]shp.Field{
		shp.StringField("NAMEUNIT", 40),
		shp.NumberField("POB", 10),
	})
	for i, name := range names {
		off := float64(i) * 2
		ring := []shp.Point{
			{X: off, Y: 0}, {X: off, Y: 1}, {X: off + 1, Y: 1}, {X: off + 1, Y: 0}, {X: off, Y: 0},
		}
		poly := shp.Polygon(*shp.NewPolyLine([][]shp.Point{ring}))
		w.Write(&poly)
		require.NoError(t, w.WriteAttribute(i, 0, name))
		require.NoError(t, w.WriteAttribute(i, 1, 1000*(i+1)))
	}
	w.Close()
	// go-shp's writer names the attribute file "<base>dbf" without the
	// dot; readers expect "<base>.dbf".
	base := path[:len(path)-len(".shp")]
	require.NoError(t, os.Rename(base+"dbf", base+".dbf"))
	return path
}

func TestReadFieldsAndRecords(t *testing.T) {
	path := writePolygons(t, []string{"Springfield", "Shelbyville"})

	table, err := Read(path)
	require.NoError(t, err)

	require.Len(t, table.Fields, 2)
	assert.Equal(t, "NAMEUNIT", table.Fields[0].Name)
	assert.True(t, table.Fields[0].IsString())
	assert.False(t, table.Fields[1].IsString())

	require.Len(t, table.Records, 2)
	assert.Equal(t, "Springfield", table.Attribute(0, 0))
	assert.Equal(t, "Shelbyville", table.Attribute(1, 0))
	assert.Equal(t, "1000", table.Attribute(0, 1))
}

func TestReadGeometryRings(t *testing.T) {
	path := writePolygons(t, []string{"Springfield"})

	table, err := Read(path)
	require.NoError(t, err)

	require.Len(t, table.Records[0].Geometry.Rings, 1)
	ring := table.Records[0].Geometry.Rings[0]
	require.Len(t, ring, 5)
	assert.Equal(t, [2]float64{0, 0}, ring[0])
	assert.Equal(t, ring[0], ring[len(ring)-1], "ring is closed")
}

func TestReadEmptyShapefile(t *testing.T) {
	path := writePolygons(t, nil)

	_, err := Read(path)
	var emptyErr *EmptyDatasetError
	require.ErrorAs(t, err, &emptyErr)
	assert.Contains(t, emptyErr.Error(), "no rows")
}

func TestReadMissingAttributeTable(t *testing.T) {
	path := writePolygons(t, []string{"Springfield"})
	require.NoError(t, os.Remove(path[:len(path)-len(".shp")]+".dbf"))

	_, err := Read(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no attribute table")
	var emptyErr *EmptyDatasetError
	assert.False(t, errors.As(err, &emptyErr))
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "absent.shp"))
	require.Error(t, err)
	var emptyErr *EmptyDatasetError
	assert.False(t, errors.As(err, &emptyErr), "missing file is not an empty dataset")
}
