package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type MatchCfg struct {
	// Score above which a fuzzy match is accepted (0-100, exclusive).
	Threshold float64 `yaml:"threshold" json:"threshold"`
	// Column headers checked first when locating the municipality name
	// column, case-insensitive, in priority order.
	NameColumns []string `yaml:"name_columns" json:"name_columns"`
	// Minimum average string length for the fallback column heuristic.
	MinColumnLength float64 `yaml:"min_column_length" json:"min_column_length"`
}

type ExtractCfg struct {
	// Pattern a token must satisfy to count as a climate-zone code,
	// applied case-insensitively. Default covers the Spanish CTE scheme
	// (A1..E1, greek variants, roman numerals I-V).
	ZonePattern string `yaml:"zone_pattern" json:"zone_pattern"`
	// Minimum municipality name length accepted by the strict tier.
	MinNameLength int `yaml:"min_name_length" json:"min_name_length"`
	// Length of the diagnostic excerpt attached to extraction failures.
	ExcerptLength int `yaml:"excerpt_length" json:"excerpt_length"`
}

type UploadCfg struct {
	MaxDocumentMB int    `yaml:"max_document_mb" json:"max_document_mb"`
	MaxArchiveMB  int    `yaml:"max_archive_mb" json:"max_archive_mb"`
	OutputDir     string `yaml:"output_dir" json:"output_dir"`
	RateLimitQPS  int    `yaml:"rate_limit_qps" json:"rate_limit_qps"`
}

type RenderCfg struct {
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

type CacheCfg struct {
	Size     int    `yaml:"size" json:"size"`
	TTLHours int    `yaml:"ttl_hours" json:"ttl_hours"`
	RedisURL string `yaml:"redis_url" json:"redis_url"`
}

type MapperCfg struct {
	Match   MatchCfg   `yaml:"match" json:"match"`
	Extract ExtractCfg `yaml:"extract" json:"extract"`
	Upload  UploadCfg  `yaml:"upload" json:"upload"`
	Render  RenderCfg  `yaml:"render" json:"render"`
	Cache   CacheCfg   `yaml:"cache" json:"cache"`
}

var C = Defaults()

// Defaults returns the built-in configuration, tuned for Spanish
// municipal shapefiles and CTE climate-zone tables.
func Defaults() MapperCfg {
	return MapperCfg{
		Match: MatchCfg{
			Threshold: 80,
			NameColumns: []string{
				"NAMEUNIT", "NOMBRE", "MUNICIPIO", "NOM_MUN", "NM_MUN", "MUNIC",
				"NAME", "NMUN", "DENOMINACI", "ROTULO", "TEXTO", "ETIQUETA",
				"NOMBRE_MUN", "NAMEUNI", "MUNI_NAME",
			},
			MinColumnLength: 3,
		},
		Extract: ExtractCfg{
			ZonePattern:   `^([A-E\x{03B1}-\x{03B5}][1-4][a-z]?|I{1,3}V?|IV|V)$`,
			MinNameLength: 2,
			ExcerptLength: 1000,
		},
		Upload: UploadCfg{
			MaxDocumentMB: 50,
			MaxArchiveMB:  100,
			OutputDir:     "uploads",
			RateLimitQPS:  10,
		},
		Render: RenderCfg{
			Width:  1200,
			Height: 1000,
		},
		Cache: CacheCfg{
			Size:     1000,
			TTLHours: 24,
		},
	}
}

// Load reads the YAML config at path over the defaults, then applies
// environment overrides. A missing file is not an error; the defaults
// stand.
func Load(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnv()
			return nil
		}
		return err
	}
	cfg := Defaults()
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return err
	}
	C = cfg
	applyEnv()
	return nil
}

func applyEnv() {
	if v := os.Getenv("REDIS_URL"); v != "" {
		C.Cache.RedisURL = v
	}
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		C.Upload.OutputDir = v
	}
	if v := os.Getenv("MATCH_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			C.Match.Threshold = f
		}
	}
	if v := os.Getenv("RATE_LIMIT_QPS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			C.Upload.RateLimitQPS = n
		}
	}
}

func CacheTTL() time.Duration { return time.Duration(C.Cache.TTLHours) * time.Hour }

// OutputEvictionAge is how long generated images stay in the shared
// output directory before the post-request sweep removes them.
func OutputEvictionAge() time.Duration { return time.Hour }
