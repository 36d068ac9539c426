package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/climate-mapper/app/models"
)

func TestScoreIdenticalAfterFolding(t *testing.T) {
	// Case and diacritic variance must not cost anything.
	assert.Equal(t, 100.0, Score("Sant Boi de Llobregat", "Sant Boi De Llobregat"))
	assert.Equal(t, 100.0, Score("Móstoles", "MOSTOLES"))
}

func TestScoreToleratesReorderedTokens(t *testing.T) {
	s := Score("Boi Sant de Llobregat", "Sant Boi de Llobregat")
	assert.Greater(t, s, 80.0)
}

func TestScoreLowForUnrelatedNames(t *testing.T) {
	assert.Less(t, Score("Ogdenville", "Springfield"), 80.0)
}

func TestScoreEmptyInput(t *testing.T) {
	assert.Equal(t, 0.0, Score("", "Madrid"))
	assert.Equal(t, 0.0, Score("Madrid", ""))
}

func TestBestMatchFirstMaximalWins(t *testing.T) {
	// Two pool entries fold to the same string; the earlier one must
	// be reported.
	name, score := BestMatch("Madrid", []string{"MADRID", "Madrid"})
	assert.Equal(t, "MADRID", name)
	assert.Equal(t, 100.0, score)
}

func TestBestMatchEmptyPool(t *testing.T) {
	name, score := BestMatch("Madrid", nil)
	assert.Equal(t, "", name)
	assert.Equal(t, 0.0, score)
}

func TestBuildNameMappingScenario(t *testing.T) {
	m := New(80, zap.NewNop())
	pool := []string{"Springfield", "Shelbyville"}

	mapping := m.BuildNameMapping([]string{"Springfield", "Shelbyville", "Ogdenville"}, pool)
	require.Len(t, mapping, 3)
	assert.Equal(t, "Springfield", mapping["Springfield"])
	assert.Equal(t, "Shelbyville", mapping["Shelbyville"])
	assert.Equal(t, "", mapping["Ogdenville"])
	assert.False(t, mapping.Matched("Ogdenville"))
}

func TestBuildNameMappingIsTotal(t *testing.T) {
	m := New(80, zap.NewNop())
	names := []string{"Madrid", "Zzzzz", "Qqqqq"}

	mapping := m.BuildNameMapping(names, []string{"Madrid"})
	for _, n := range names {
		_, present := mapping[n]
		assert.True(t, present, "mapping must cover %q", n)
	}
}

func TestThresholdMonotonicity(t *testing.T) {
	names := []string{"Springfield", "Shelbyvile", "Ogdenville", "Mostoles"}
	pool := []string{"Springfield", "Shelbyville", "Móstoles"}

	matchedAt := func(threshold float64) int {
		mapping := New(threshold, zap.NewNop()).BuildNameMapping(names, pool)
		n := 0
		for _, v := range mapping {
			if v != "" {
				n++
			}
		}
		return n
	}

	prev := matchedAt(0)
	for _, th := range []float64{20, 40, 60, 80, 95, 100} {
		cur := matchedAt(th)
		assert.LessOrEqual(t, cur, prev, "raising threshold to %v must not add matches", th)
		prev = cur
	}
}

func TestMappingNeverMatchesAtOrBelowThreshold(t *testing.T) {
	m := New(100, zap.NewNop())
	// Exact folds score 100, which does not exceed a threshold of 100.
	mapping := m.BuildNameMapping([]string{"Madrid"}, []string{"Madrid"})
	assert.Equal(t, models.NameMapping{"Madrid": ""}, mapping)
}
