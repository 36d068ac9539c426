package services

import (
	"context"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/climate-mapper/app/config"
	"github.com/climate-mapper/app/models"
	"github.com/climate-mapper/internal/archive"
	"github.com/climate-mapper/internal/extractor"
	"github.com/climate-mapper/internal/matcher"
	"github.com/climate-mapper/internal/projector"
	"github.com/climate-mapper/internal/reconciler"
	"github.com/climate-mapper/internal/shapefile"
)

// OutputMode selects the projector's terminal mode.
type OutputMode string

const (
	ModeImage   OutputMode = "image"
	ModeGeoJSON OutputMode = "geojson"
)

// MapService runs the reconciliation pipeline end to end. It is
// stateless across invocations: every mutable structure is built fresh
// per call, so concurrent Generate calls are safe.
type MapService struct {
	extractor *extractor.Extractor
	matcher   *matcher.Matcher
	logger    *zap.Logger
}

func NewMapService(ext *extractor.Extractor, m *matcher.Matcher, logger *zap.Logger) *MapService {
	return &MapService{extractor: ext, matcher: m, logger: logger}
}

// Generate reconciles the document at docPath with the archived
// shapefile at zipPath and projects the result. All intermediate files
// land under scratchDir, which the caller owns and cleans up; in image
// mode the returned path points inside scratchDir and must be copied
// out before cleanup.
//
// Failures are deterministic functions of the input and are never
// retried here. Document extraction failure aborts the whole run
// rather than emitting an all-unassigned map.
func (ms *MapService) Generate(ctx context.Context, docPath, zipPath, scratchDir string, mode OutputMode) (*models.MapResult, error) {
	start := time.Now()

	shpPath, err := archive.Unpack(zipPath, scratchDir)
	if err != nil {
		return nil, err
	}
	ms.logger.Info("shapefile extracted", zap.String("path", shpPath))

	table, err := shapefile.Read(shpPath)
	if err != nil {
		return nil, err
	}

	entries, err := ms.extractor.Extract(docPath)
	if err != nil {
		return nil, err
	}

	nameCol, err := matcher.DetectNameColumn(table, config.C.Match.NameColumns, config.C.Match.MinColumnLength, ms.logger)
	if err != nil {
		return nil, err
	}

	pool := make([]string, len(entries))
	for i, e := range entries {
		pool[i] = e.MunicipalityName
	}
	mapping := ms.matcher.BuildNameMapping(distinctNames(table, nameCol), pool)

	dataset := reconciler.Classify(table, nameCol, mapping, entries, ms.logger)

	result := &models.MapResult{
		Rows:          len(dataset.Records),
		ExtractedRows: len(entries),
		NameColumn:    table.Fields[nameCol].Name,
	}
	for _, rec := range dataset.Records {
		if rec.ZoneCategory != models.ZoneUnassigned {
			result.MatchedRows++
		}
	}

	switch mode {
	case ModeGeoJSON:
		geojson, err := projector.ToGeoJSON(dataset)
		if err != nil {
			return nil, err
		}
		result.GeoJSON = geojson
	default:
		outPath := filepath.Join(scratchDir, "climate_map.png")
		opts := projector.RenderOptions{
			Width:  config.C.Render.Width,
			Height: config.C.Render.Height,
		}
		if err := projector.RenderPNG(dataset, opts, outPath); err != nil {
			return nil, err
		}
		result.ImagePath = outPath
	}

	ms.logger.Info("map generated",
		zap.String("mode", string(mode)),
		zap.Int("rows", result.Rows),
		zap.Int("matched", result.MatchedRows),
		zap.Duration("duration", time.Since(start)))
	return result, nil
}

// distinctNames collects the distinct values of the name column in row
// order, skipping blanks.
func distinctNames(t *models.GeometryTable, col int) []string {
	seen := make(map[string]bool, len(t.Records))
	var names []string
	for _, rec := range t.Records {
		name := rec.Attributes[col]
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}
