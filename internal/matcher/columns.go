package matcher

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/climate-mapper/app/models"
)

// ColumnNotFoundError reports a geometry table with no plausible
// municipality-name column by either heuristic.
type ColumnNotFoundError struct {
	Columns []string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("no municipality name column found in shapefile, columns: %v", e.Columns)
}

// columnStrategy proposes a column index, or reports that it has no
// opinion. Strategies are combined by DetectNameColumn in priority
// order.
type columnStrategy func(t *models.GeometryTable) (int, bool)

// DetectNameColumn locates the attribute column holding municipality
// names: first by the configured priority list of known headers
// (case-insensitive), then by the longest-average-string fallback.
func DetectNameColumn(t *models.GeometryTable, priorities []string, minAvgLen float64, logger *zap.Logger) (int, error) {
	strategies := []columnStrategy{
		priorityColumn(priorities),
		longestAverageColumn(minAvgLen),
	}
	for _, s := range strategies {
		if col, ok := s(t); ok {
			logger.Info("name column selected",
				zap.String("column", t.Fields[col].Name))
			return col, nil
		}
	}
	names := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		names[i] = f.Name
	}
	return 0, &ColumnNotFoundError{Columns: names}
}

func priorityColumn(priorities []string) columnStrategy {
	return func(t *models.GeometryTable) (int, bool) {
		for _, want := range priorities {
			for i, f := range t.Fields {
				if strings.EqualFold(f.Name, want) {
					return i, true
				}
			}
		}
		return 0, false
	}
}

// longestAverageColumn picks the string-typed column whose values are
// longest on average; names run longer than codes. Columns at or below
// the floor are rejected so a table of two-letter codes cannot win.
func longestAverageColumn(minAvgLen float64) columnStrategy {
	return func(t *models.GeometryTable) (int, bool) {
		bestCol, bestAvg := 0, minAvgLen
		found := false
		for i, f := range t.Fields {
			if !f.IsString() {
				continue
			}
			avg := averageLength(t, i)
			if avg > bestAvg {
				bestCol, bestAvg = i, avg
				found = true
			}
		}
		return bestCol, found
	}
}

func averageLength(t *models.GeometryTable, col int) float64 {
	total, n := 0, 0
	for row := range t.Records {
		v := strings.TrimSpace(t.Attribute(row, col))
		if v == "" {
			continue
		}
		total += len([]rune(v))
		n++
	}
	if n == 0 {
		return 0
	}
	return float64(total) / float64(n)
}
