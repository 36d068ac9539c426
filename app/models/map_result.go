package models

// MapResult is the terminal output of one pipeline run. Exactly one of
// GeoJSON / ImagePath is set, selected by the caller's output mode.
type MapResult struct {
	GeoJSON   string `json:"geojson,omitempty"`
	ImagePath string `json:"image_path,omitempty"`

	// Run statistics, surfaced in responses and logs.
	Rows          int    `json:"rows"`
	MatchedRows   int    `json:"matched_rows"`
	ExtractedRows int    `json:"extracted_rows"`
	NameColumn    string `json:"name_column"`
}
