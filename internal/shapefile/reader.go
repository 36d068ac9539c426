// Package shapefile loads the extracted .shp/.dbf pair into the
// in-memory geometry table the reconciliation pipeline works on.
package shapefile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	shp "github.com/jonas-p/go-shp"

	"github.com/climate-mapper/app/models"
)

// EmptyDatasetError reports a shapefile that parsed but holds zero
// rows. It is raised before reconciliation so the pipeline fails fast.
type EmptyDatasetError struct {
	Path string
}

func (e *EmptyDatasetError) Error() string {
	return fmt.Sprintf("shapefile %s contains no rows", e.Path)
}

// Read loads path into a GeometryTable. Every shapefile row becomes a
// record, polygon or not; rows whose shape is not a polygon keep an
// empty geometry so the row count is preserved end to end.
func Read(path string) (*models.GeometryTable, error) {
	// go-shp ignores a missing .dbf and reports zero fields, which
	// downstream reads as "no name column". Fail here with the real
	// cause instead.
	dbfPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".dbf"
	if _, err := os.Stat(dbfPath); err != nil {
		return nil, fmt.Errorf("shapefile %s has no attribute table (.dbf): %w", path, err)
	}

	r, err := shp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open shapefile: %w", err)
	}
	defer r.Close()

	fields := r.Fields()
	table := &models.GeometryTable{
		Fields: make([]models.Field, len(fields)),
	}
	for i, f := range fields {
		table.Fields[i] = models.Field{
			Name: f.String(),
			Type: byte(f.Fieldtype),
		}
	}

	for r.Next() {
		row, shape := r.Shape()
		rec := models.GeometryRecord{
			Attributes: make([]string, len(fields)),
			Geometry:   decodeGeometry(shape),
		}
		for col := range fields {
			// DBF values come back padded with spaces and NULs.
			rec.Attributes[col] = strings.TrimRight(r.ReadAttribute(row, col), " \x00")
		}
		table.Records = append(table.Records, rec)
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("read shapefile rows: %w", err)
	}

	if len(table.Records) == 0 {
		return nil, &EmptyDatasetError{Path: path}
	}
	return table, nil
}

// decodeGeometry splits a shapefile polygon into its rings. The Parts
// offsets delimit ring boundaries within the flat Points slice.
func decodeGeometry(s shp.Shape) models.Geometry {
	switch p := s.(type) {
	case *shp.Polygon:
		return ringsFrom(p.Parts, p.Points)
	case *shp.PolygonZ:
		return ringsFrom(p.Parts, p.Points)
	case *shp.PolygonM:
		return ringsFrom(p.Parts, p.Points)
	default:
		return models.Geometry{}
	}
}

func ringsFrom(parts []int32, points []shp.Point) models.Geometry {
	var g models.Geometry
	for i, start := range parts {
		end := len(points)
		if i+1 < len(parts) {
			end = int(parts[i+1])
		}
		ring := make(models.Ring, 0, end-int(start))
		for _, pt := range points[start:end] {
			ring = append(ring, [2]float64{pt.X, pt.Y})
		}
		g.Rings = append(g.Rings, ring)
	}
	return g
}
