// Package matcher aligns the two independently-spelled name
// vocabularies (geometry attributes vs. document entries) into a single
// join key via approximate string similarity.
package matcher

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/xrash/smetrics"
	"go.uber.org/zap"

	"github.com/climate-mapper/app/models"
	"github.com/climate-mapper/internal/normalizer"
)

// Score rates the similarity of two names on a 0-100 scale. Both sides
// are folded (diacritics stripped, lower-cased) before scoring, so
// "Sant Boi de Llobregat" and "Sant Boi De Llobregat" land at 100. The
// score is the best of Jaro-Winkler, plain edit-distance similarity,
// and token-sorted edit-distance similarity, making it tolerant of
// reordered words as well as misspellings.
func Score(a, b string) float64 {
	fa, fb := normalizer.Fold(a), normalizer.Fold(b)
	if fa == "" || fb == "" {
		return 0
	}
	if fa == fb {
		return 100
	}

	best := smetrics.JaroWinkler(fa, fb, 0.7, 4) * 100
	if s := levRatio(fa, fb) * 100; s > best {
		best = s
	}
	if s := levRatio(sortTokens(fa), sortTokens(fb)) * 100; s > best {
		best = s
	}
	return best
}

func levRatio(a, b string) float64 {
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}

func sortTokens(s string) string {
	fields := strings.Fields(s)
	sort.Strings(fields)
	return strings.Join(fields, " ")
}

// BestMatch returns the pool entry most similar to candidate and its
// score. The pool is scanned in order and only a strictly greater
// score displaces the current best, so ties resolve to the first
// maximal entry deterministically. An empty pool scores 0.
func BestMatch(candidate string, pool []string) (string, float64) {
	var bestName string
	bestScore := -1.0
	for _, p := range pool {
		if s := Score(candidate, p); s > bestScore {
			bestName, bestScore = p, s
		}
	}
	if bestScore < 0 {
		return "", 0
	}
	return bestName, bestScore
}

// Matcher builds name mappings under a fixed confidence threshold.
type Matcher struct {
	threshold float64
	logger    *zap.Logger
}

func New(threshold float64, logger *zap.Logger) *Matcher {
	return &Matcher{threshold: threshold, logger: logger}
}

// BuildNameMapping maps every distinct geometry-side name to its best
// document-side match, or to "" when the best score does not exceed
// the threshold. The pool keeps extraction repeats: duplicates raise a
// name's chance of being chosen but never merge. The result is total
// over names.
func (m *Matcher) BuildNameMapping(names []string, pool []string) models.NameMapping {
	mapping := make(models.NameMapping, len(names))
	matched := 0
	for _, name := range names {
		best, score := BestMatch(name, pool)
		if score > m.threshold {
			mapping[name] = best
			matched++
		} else {
			mapping[name] = ""
		}
	}
	m.logger.Info("name mapping built",
		zap.Int("names", len(names)),
		zap.Int("matched", matched),
		zap.Float64("threshold", m.threshold))
	return mapping
}
