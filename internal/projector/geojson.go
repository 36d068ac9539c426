// Package projector renders the reconciled dataset, either as a
// GeoJSON feature collection or as a choropleth PNG.
package projector

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/climate-mapper/app/models"
)

// ToGeoJSON serializes the full dataset: every attribute column plus
// the classification fields, no filtering. Output is deterministic for
// identical inputs (struct field order and sorted property keys).
func ToGeoJSON(ds *models.ReconciledDataset) (string, error) {
	fc := models.NewFeatureCollection()
	for _, rec := range ds.Records {
		props := make(map[string]interface{}, len(ds.Fields)+2)
		for i, f := range ds.Fields {
			props[f.Name] = attributeValue(f, rec.Attributes[i])
		}
		if rec.MatchedName != "" {
			props["matched_name"] = rec.MatchedName
		}
		props["zone_category"] = rec.ZoneCategory

		fc.Features = append(fc.Features, models.Feature{
			Type:       "Feature",
			Properties: props,
			Geometry:   geometryOf(rec.Geometry),
		})
	}

	b, err := json.Marshal(fc)
	if err != nil {
		return "", fmt.Errorf("encode geojson: %w", err)
	}
	return string(b), nil
}

// attributeValue keeps numeric DBF columns numeric in the output
// instead of leaking their string padding.
func attributeValue(f models.Field, v string) interface{} {
	if f.Type == 'N' || f.Type == 'F' {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return n
		}
	}
	return v
}

// geometryOf regroups shapefile rings into GeoJSON polygons. Outer
// rings are wound clockwise in shapefiles; each one opens a new
// polygon and the counter-clockwise rings that follow are its holes.
func geometryOf(g models.Geometry) models.GeoJSONGeometry {
	var polygons [][][][2]float64
	for _, ring := range g.Rings {
		if len(polygons) == 0 || isClockwise(ring) {
			polygons = append(polygons, [][][2]float64{ring})
		} else {
			last := len(polygons) - 1
			polygons[last] = append(polygons[last], ring)
		}
	}

	switch len(polygons) {
	case 0:
		return models.GeoJSONGeometry{Type: "Polygon", Coordinates: [][][2]float64{}}
	case 1:
		return models.GeoJSONGeometry{Type: "Polygon", Coordinates: polygons[0]}
	default:
		return models.GeoJSONGeometry{Type: "MultiPolygon", Coordinates: polygons}
	}
}

// isClockwise uses the shoelace sum; a positive sum means clockwise in
// lon/lat axis order.
func isClockwise(ring models.Ring) bool {
	var sum float64
	for i := 0; i < len(ring); i++ {
		j := (i + 1) % len(ring)
		sum += (ring[j][0] - ring[i][0]) * (ring[j][1] + ring[i][1])
	}
	return sum > 0
}
