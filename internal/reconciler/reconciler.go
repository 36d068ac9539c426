// Package reconciler performs the left-join classification: every
// geometry row survives into the output exactly once, carrying either
// its joined zone code or the unassigned sentinel.
package reconciler

import (
	"go.uber.org/zap"

	"github.com/climate-mapper/app/models"
)

// Classify joins the geometry table to the document entries through
// the name mapping. When the document side repeats a municipality with
// conflicting codes, the first occurrence wins; the policy is
// deterministic because extraction preserves encounter order.
func Classify(table *models.GeometryTable, nameCol int, mapping models.NameMapping, entries []models.DocumentEntry, logger *zap.Logger) *models.ReconciledDataset {
	zoneByName := make(map[string]string, len(entries))
	for _, e := range entries {
		if _, dup := zoneByName[e.MunicipalityName]; !dup {
			zoneByName[e.MunicipalityName] = e.ZoneCode
		}
	}

	out := &models.ReconciledDataset{
		Fields:  table.Fields,
		Records: make([]models.GeometryRecord, len(table.Records)),
	}
	assigned := 0
	for i, rec := range table.Records {
		rec.MatchedName = ""
		rec.ZoneCategory = models.ZoneUnassigned

		name := rec.Attributes[nameCol]
		if matched := mapping[name]; matched != "" {
			if zone, ok := zoneByName[matched]; ok {
				rec.MatchedName = matched
				rec.ZoneCategory = zone
				assigned++
			}
		}
		out.Records[i] = rec
	}

	logger.Info("dataset reconciled",
		zap.Int("rows", len(out.Records)),
		zap.Int("assigned", assigned),
		zap.Int("unassigned", len(out.Records)-assigned))
	return out
}
