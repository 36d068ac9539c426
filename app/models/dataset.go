package models

// ZoneUnassigned is the sentinel category given to geometry rows that
// could not be joined to a document entry. It is never absent: every
// output row carries either a validated zone code or this label.
const ZoneUnassigned = "unassigned"

// Field describes one attribute column of the geometry table.
type Field struct {
	Name string `json:"name"`
	// Type is the DBF field type byte: 'C' character, 'N' numeric,
	// 'F' float, 'D' date, 'L' logical.
	Type byte `json:"type"`
}

// IsString reports whether the column holds character data.
func (f Field) IsString() bool { return f.Type == 'C' }

// Ring is a closed sequence of [lon, lat] positions.
type Ring [][2]float64

// Geometry is one polygon or multipolygon, part-decoded from the
// shapefile: each element of Rings is one ring (outer or hole; the
// shapefile winding order is preserved as read).
type Geometry struct {
	Rings []Ring
}

// GeometryRecord is one municipality row of the geometry table.
// Identity is the row position; the geometry and attributes are fixed
// at read time, the classification fields are filled in by the
// reconciler.
type GeometryRecord struct {
	Attributes []string `json:"attributes"` // parallel to GeometryTable.Fields
	Geometry   Geometry `json:"-"`

	// MatchedName is the document-side name this row was joined
	// through, empty when unassigned.
	MatchedName  string `json:"matched_name,omitempty"`
	ZoneCategory string `json:"zone_category,omitempty"`
}

// GeometryTable is the attribute table plus geometries read from a
// shapefile.
type GeometryTable struct {
	Fields  []Field          `json:"fields"`
	Records []GeometryRecord `json:"records"`
}

// Attribute returns the value of the named row attribute, matching the
// column case-insensitively is the caller's job; col is an index here.
func (t *GeometryTable) Attribute(row, col int) string {
	return t.Records[row].Attributes[col]
}

// DocumentEntry is one (municipality, zone) pair recovered from the
// document. Entries keep their encounter order and are never
// deduplicated at extraction time.
type DocumentEntry struct {
	MunicipalityName string `json:"municipality_name"`
	ZoneCode         string `json:"zone_code"`
}

// NameMapping maps every distinct geometry-side name to its matched
// document-side name. Unmatched names are present with an empty string,
// so the mapping is total over the names it was built from.
type NameMapping map[string]string

// Matched reports whether name was assigned a document-side match.
func (m NameMapping) Matched(name string) bool { return m[name] != "" }

// ReconciledDataset is the geometry table after classification. Records
// alias the input table's rows, each augmented with MatchedName and
// ZoneCategory; row count always equals the input row count.
type ReconciledDataset struct {
	Fields  []Field
	Records []GeometryRecord
}

// Categories returns the distinct non-unassigned zone categories in
// first-appearance order.
func (d *ReconciledDataset) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range d.Records {
		if r.ZoneCategory == ZoneUnassigned || seen[r.ZoneCategory] {
			continue
		}
		seen[r.ZoneCategory] = true
		out = append(out, r.ZoneCategory)
	}
	return out
}
