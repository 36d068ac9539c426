// Package extractor recovers the municipality/zone table out of an
// unreliable document. The document may render its table as markdown
// pipes, whitespace-aligned columns, or free text, so extraction is an
// ordered cascade of strategies: each is a pure function from the
// flattened text to entries, tried in order until one yields rows.
package extractor

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/climate-mapper/app/models"
	"github.com/climate-mapper/internal/normalizer"
)

// ExtractionError reports a document from which no (municipality, zone)
// pair could be recovered by any tier. Excerpt carries the head of the
// flattened text so the caller can see what the document looked like.
type ExtractionError struct {
	Excerpt string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("no municipality/zone pairs found in document. Content: %s", e.Excerpt)
}

// Strategy is one extraction tier: flattened text in, entries out.
// Strategies never fail; an empty result means "try the next tier".
type Strategy func(text string) []models.DocumentEntry

// Extractor runs the tier cascade over a document.
type Extractor struct {
	zoneRe     *regexp.Regexp
	looseRe    *regexp.Regexp
	minNameLen int
	excerptLen int
	strategies []Strategy
	logger     *zap.Logger
}

// Options tune the cascade. ZonePattern is compiled case-insensitively.
type Options struct {
	ZonePattern   string
	MinNameLength int
	ExcerptLength int
}

// New builds an Extractor with the strict line tier followed by the
// loose regex tier. Both tiers share the configured zone pattern: the
// strict tier anchors it over whole tokens, the loose tier embeds its
// unanchored form after a capitalized name sequence.
func New(opts Options, logger *zap.Logger) (*Extractor, error) {
	zoneRe, err := regexp.Compile("(?i)" + opts.ZonePattern)
	if err != nil {
		return nil, fmt.Errorf("compile zone pattern: %w", err)
	}
	inline := strings.TrimSuffix(strings.TrimPrefix(opts.ZonePattern, "^"), "$")
	looseRe, err := regexp.Compile(
		`([A-ZÁÉÍÓÚÑ][a-záéíóúñ]+(?:\s+[a-záéíóúñA-ZÁÉÍÓÚÑ]+)*?)\s+(` + inline + `)\b`)
	if err != nil {
		return nil, fmt.Errorf("compile loose zone pattern: %w", err)
	}
	e := &Extractor{
		zoneRe:     zoneRe,
		looseRe:    looseRe,
		minNameLen: opts.MinNameLength,
		excerptLen: opts.ExcerptLength,
		logger:     logger,
	}
	e.strategies = []Strategy{e.strictLineTier, e.looseRegexTier}
	return e, nil
}

// Extract flattens the document at path and runs the cascade. Rows come
// back in encounter order with no deduplication: repeated names stay
// repeated, conflicting codes and all.
func (e *Extractor) Extract(path string) ([]models.DocumentEntry, error) {
	text, err := Flatten(path)
	if err != nil {
		return nil, fmt.Errorf("flatten document: %w", err)
	}
	return e.ExtractText(text)
}

// ExtractText runs the cascade over already-flattened text.
func (e *Extractor) ExtractText(text string) ([]models.DocumentEntry, error) {
	for i, strategy := range e.strategies {
		entries := strategy(text)
		if len(entries) > 0 {
			e.logger.Info("document table extracted",
				zap.Int("tier", i+1),
				zap.Int("rows", len(entries)))
			return entries, nil
		}
		e.logger.Warn("extraction tier yielded no rows", zap.Int("tier", i+1))
	}
	return nil, &ExtractionError{Excerpt: e.excerpt(text)}
}

// excerpt folds the head of the flattened text onto one line for the
// error diagnostic.
func (e *Extractor) excerpt(text string) string {
	runes := []rune(text)
	if len(runes) > e.excerptLen {
		runes = runes[:e.excerptLen]
	}
	return strings.ReplaceAll(string(runes), "\n", " | ")
}

// strictLineTier treats each line as a potential table row: strip
// markdown table punctuation, collapse whitespace, split off the last
// token and accept it only when it is a zone code and the remaining
// text is long enough to be a name. Low false-positive rate, so it
// runs first.
func (e *Extractor) strictLineTier(text string) []models.DocumentEntry {
	var entries []models.DocumentEntry
	for _, line := range strings.Split(text, "\n") {
		clean := strings.TrimSpace(line)
		if clean == "" || strings.HasPrefix(clean, "#") || strings.HasPrefix(clean, "---") {
			continue
		}
		clean = strings.ReplaceAll(clean, "|", " ")
		clean = normalizer.CollapseSpaces(clean)

		cut := strings.LastIndex(clean, " ")
		if cut < 0 {
			continue
		}
		name, code := strings.TrimSpace(clean[:cut]), clean[cut+1:]
		if !e.zoneRe.MatchString(code) {
			continue
		}
		// Reject stray single-letter fragments posing as names.
		if len([]rune(name)) <= e.minNameLen {
			continue
		}
		entries = append(entries, models.DocumentEntry{
			MunicipalityName: name,
			ZoneCode:         strings.ToUpper(code),
		})
	}
	return entries
}

// looseRegexTier finds a capitalized word sequence followed by a
// zone-code token anywhere in the raw text, across line boundaries.
// Higher recall, higher false-positive rate; only runs when the strict
// tier found nothing.
func (e *Extractor) looseRegexTier(text string) []models.DocumentEntry {
	var entries []models.DocumentEntry
	for _, m := range e.looseRe.FindAllStringSubmatch(text, -1) {
		name, code := strings.TrimSpace(m[1]), m[2]
		if len([]rune(name)) <= 3 {
			continue
		}
		entries = append(entries, models.DocumentEntry{
			MunicipalityName: name,
			ZoneCode:         strings.ToUpper(code),
		})
	}
	return entries
}

// Flatten converts the document at path into plain text lines. PDF
// pages go through position-aware row reconstruction; plain-text and
// markdown documents are read as-is.
func Flatten(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
		return flattenPlain(path)
	default:
		return flattenPDF(path)
	}
}
