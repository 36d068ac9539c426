package controllers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/climate-mapper/app/config"
	"github.com/climate-mapper/app/responses"
	"github.com/climate-mapper/app/services"
	"github.com/climate-mapper/helpers/utils"
	"github.com/climate-mapper/internal/archive"
	"github.com/climate-mapper/internal/extractor"
	"github.com/climate-mapper/internal/matcher"
	"github.com/climate-mapper/internal/shapefile"
)

// MapController is the upload collaborator in front of the pipeline:
// it sanitizes filenames, enforces size and extension limits, owns the
// per-call scratch directory and persists produced images under the
// shared output directory.
type MapController struct {
	mapService   *services.MapService
	cacheService services.ICacheService
	logger       *zap.Logger
}

func NewMapController(mapService *services.MapService, cacheService services.ICacheService, logger *zap.Logger) *MapController {
	return &MapController{
		mapService:   mapService,
		cacheService: cacheService,
		logger:       logger,
	}
}

var unsafeChars = regexp.MustCompile(`[^\w.\-]`)

// sanitizeFilename strips path components and dangerous characters
// before a client-supplied name touches the filesystem.
func sanitizeFilename(name string) string {
	return unsafeChars.ReplaceAllString(filepath.Base(name), "_")
}

// GenerateMap handles POST /api/v1/maps/generate: multipart upload of
// a document ("pdf") and a zipped shapefile ("shp"), with a "geojson"
// query flag selecting the structured output mode.
func (mc *MapController) GenerateMap(c *gin.Context) {
	geojsonMode := c.Query("geojson") == "true"

	docHeader, err := c.FormFile("pdf")
	if err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:   "MISSING_FILE",
			Message: "missing document upload field \"pdf\"",
		})
		return
	}
	zipHeader, err := c.FormFile("shp")
	if err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:   "MISSING_FILE",
			Message: "missing archive upload field \"shp\"",
		})
		return
	}

	if !mc.validateUpload(c, docHeader.Filename, docHeader.Size, config.C.Upload.MaxDocumentMB, ".pdf", ".txt", ".md") {
		return
	}
	if !mc.validateUpload(c, zipHeader.Filename, zipHeader.Size, config.C.Upload.MaxArchiveMB, ".zip") {
		return
	}

	// Each request gets an isolated scratch directory, discarded on
	// every exit path.
	scratchDir, err := os.MkdirTemp("", "climate-mapper-*")
	if err != nil {
		mc.internalError(c, err)
		return
	}
	defer os.RemoveAll(scratchDir)

	docPath := filepath.Join(scratchDir, sanitizeFilename(docHeader.Filename))
	zipPath := filepath.Join(scratchDir, sanitizeFilename(zipHeader.Filename))
	if err := c.SaveUploadedFile(docHeader, docPath); err != nil {
		mc.internalError(c, err)
		return
	}
	if err := c.SaveUploadedFile(zipHeader, zipPath); err != nil {
		mc.internalError(c, err)
		return
	}

	mode := services.ModeImage
	if geojsonMode {
		mode = services.ModeGeoJSON
	}

	// Finished GeoJSON runs are cached by input fingerprint; image
	// runs are not, their files age out of the output directory.
	var fingerprint string
	if geojsonMode {
		if fingerprint, err = utils.Fingerprint(string(mode), docPath, zipPath); err == nil {
			if cached, found, cerr := mc.cacheService.Get(c.Request.Context(), fingerprint); cerr == nil && found {
				c.Data(http.StatusOK, "application/json", []byte(cached.GeoJSON))
				return
			}
		}
	}

	result, err := mc.mapService.Generate(c.Request.Context(), docPath, zipPath, scratchDir, mode)
	if err != nil {
		mc.pipelineError(c, err)
		return
	}

	if geojsonMode {
		if fingerprint != "" {
			mc.cacheService.Set(c.Request.Context(), fingerprint, result)
		}
		c.Data(http.StatusOK, "application/json", []byte(result.GeoJSON))
		return
	}

	finalPath, err := mc.persistImage(result.ImagePath)
	if err != nil {
		mc.internalError(c, err)
		return
	}
	// Sweep old images once per completed request; cheap enough to
	// not need a scheduler.
	go mc.evictOldImages()

	c.File(finalPath)
}

// validateUpload enforces the collaborator contract limits before the
// core is invoked.
func (mc *MapController) validateUpload(c *gin.Context, name string, size int64, maxMB int, allowedExts ...string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	allowed := false
	for _, a := range allowedExts {
		if ext == a {
			allowed = true
			break
		}
	}
	if !allowed {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:   "INVALID_EXTENSION",
			Message: "extension " + ext + " not allowed, expected one of " + strings.Join(allowedExts, ", "),
		})
		return false
	}
	if size > int64(maxMB)<<20 {
		c.JSON(http.StatusRequestEntityTooLarge, responses.ErrorResponse{
			Error:   "FILE_TOO_LARGE",
			Message: "file exceeds the maximum allowed size",
		})
		return false
	}
	return true
}

// persistImage copies the scratch-dir PNG into the shared output
// directory under a generated name, so it outlives scratch cleanup.
func (mc *MapController) persistImage(srcPath string) (string, error) {
	outDir := config.C.Upload.OutputDir
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}
	finalPath := filepath.Join(outDir, "climate_map_"+utils.GenerateShortID()+".png")

	data, err := os.ReadFile(srcPath)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(finalPath, data, 0o644); err != nil {
		return "", err
	}
	mc.logger.Info("image persisted", zap.String("path", finalPath))
	return finalPath, nil
}

// evictOldImages removes output-dir entries past the eviction age.
func (mc *MapController) evictOldImages() {
	entries, err := os.ReadDir(config.C.Upload.OutputDir)
	if err != nil {
		return
	}
	cutoff := time.Now().Add(-config.OutputEvictionAge())
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			path := filepath.Join(config.C.Upload.OutputDir, e.Name())
			if err := os.Remove(path); err == nil {
				mc.logger.Info("evicted old image", zap.String("path", path))
			}
		}
	}
}

// pipelineError maps the core error taxonomy onto HTTP statuses:
// input-shaped failures are 422s the client can act on, everything
// else is a 500.
func (mc *MapController) pipelineError(c *gin.Context, err error) {
	var formatErr *archive.FormatError
	var extractErr *extractor.ExtractionError
	var columnErr *matcher.ColumnNotFoundError
	var emptyErr *shapefile.EmptyDatasetError

	switch {
	case errors.As(err, &formatErr):
		c.JSON(http.StatusUnprocessableEntity, responses.ErrorResponse{
			Error:   "ARCHIVE_FORMAT",
			Message: err.Error(),
		})
	case errors.As(err, &extractErr):
		c.JSON(http.StatusUnprocessableEntity, responses.ErrorResponse{
			Error:   "DOCUMENT_UNREADABLE",
			Message: err.Error(),
		})
	case errors.As(err, &columnErr):
		c.JSON(http.StatusUnprocessableEntity, responses.ErrorResponse{
			Error:   "COLUMN_NOT_FOUND",
			Message: err.Error(),
		})
	case errors.As(err, &emptyErr):
		c.JSON(http.StatusUnprocessableEntity, responses.ErrorResponse{
			Error:   "EMPTY_DATASET",
			Message: err.Error(),
		})
	default:
		mc.internalError(c, err)
	}
}

func (mc *MapController) internalError(c *gin.Context, err error) {
	mc.logger.Error("internal error processing upload", zap.Error(err))
	c.JSON(http.StatusInternalServerError, responses.ErrorResponse{
		Error:   "INTERNAL",
		Message: "internal server error",
	})
}

// HealthCheck responds to liveness probes.
func (mc *MapController) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, responses.HealthResponse{Status: "ok", Version: "1.3.0"})
}

// GetCacheStats exposes result-cache statistics.
func (mc *MapController) GetCacheStats(c *gin.Context) {
	stats, err := mc.cacheService.GetStats(c.Request.Context())
	if err != nil {
		mc.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, responses.StatsResponse{Cache: stats})
}

// InvalidateCache clears the result cache.
func (mc *MapController) InvalidateCache(c *gin.Context) {
	if err := mc.cacheService.Clear(c.Request.Context()); err != nil {
		mc.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cache cleared"})
}
