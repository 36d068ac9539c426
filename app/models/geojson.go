package models

// GeoJSON types for the structured output mode. Polygon coordinates are
// [][][]float64 (rings of positions), MultiPolygon adds one more level.

// FeatureCollection is the top-level GeoJSON object.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature is a single geographic feature with geometry and properties.
type Feature struct {
	Type       string                 `json:"type"`
	Properties map[string]interface{} `json:"properties"`
	Geometry   GeoJSONGeometry        `json:"geometry"`
}

// GeoJSONGeometry holds either Polygon or MultiPolygon coordinates.
type GeoJSONGeometry struct {
	Type        string      `json:"type"`
	Coordinates interface{} `json:"coordinates"`
}

// NewFeatureCollection returns an empty collection with the type fields
// already set.
func NewFeatureCollection() *FeatureCollection {
	return &FeatureCollection{Type: "FeatureCollection", Features: []Feature{}}
}
