package testkit

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edustat/domain/dataset"
)

func TestCohortGenerator_Shape(t *testing.T) {
	config := DefaultCohortConfig()
	config.MissingPostRate = 0
	cohort := NewCohortGenerator(config).Generate()

	require.Len(t, cohort.PreTest.Rows, 41)
	require.Len(t, cohort.Records, 41)
	assert.Len(t, cohort.PostControl.Rows, 21)
	assert.Len(t, cohort.PostExperimental.Rows, 20)
	assert.Equal(t, "istudent_id", cohort.PostExperimental.Headers[0])

	counts := map[dataset.Group]int{}
	for _, r := range cohort.Records {
		counts[r.Group]++
		assert.True(t, r.Complete())
		assert.GreaterOrEqual(t, r.PreTest, 0.0)
		assert.LessOrEqual(t, r.PostTest, 100.0)
		assert.Equal(t, math.Round(r.PreTest), r.PreTest)
	}
	assert.Equal(t, 21, counts[dataset.GroupControl])
	assert.Equal(t, 20, counts[dataset.GroupExperimental])
}

func TestCohortGenerator_Deterministic(t *testing.T) {
	a := NewCohortGenerator(DefaultCohortConfig()).Generate()
	b := NewCohortGenerator(DefaultCohortConfig()).Generate()
	assert.Equal(t, a.PreTest, b.PreTest)
	assert.Equal(t, a.PostControl, b.PostControl)

	other := DefaultCohortConfig()
	other.Seed = 7
	c := NewCohortGenerator(other).Generate()
	assert.NotEqual(t, a.PreTest, c.PreTest)
}

func TestCohortGenerator_MissingPost(t *testing.T) {
	config := DefaultCohortConfig()
	config.MissingPostRate = 1
	cohort := NewCohortGenerator(config).Generate()

	assert.Empty(t, cohort.PostControl.Rows)
	assert.Empty(t, cohort.PostExperimental.Rows)
	for _, r := range cohort.Records {
		assert.True(t, math.IsNaN(r.PostTest))
	}
}

func TestCohort_WriteRaw(t *testing.T) {
	dir := t.TempDir()
	cohort := NewCohortGenerator(DefaultCohortConfig()).Generate()
	require.NoError(t, cohort.WriteRaw(context.Background(), dir))

	for _, name := range []string{"pre_test_scores.csv", "post_test_control.csv", "post_test_experimental.csv"} {
		assert.FileExists(t, filepath.Join(dir, "raw", name))
	}
}

func TestScores(t *testing.T) {
	g := NewCohortGenerator(DefaultCohortConfig())
	scores := g.Scores(2000, 10, 2)
	require.Len(t, scores, 2000)

	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	assert.InDelta(t, 10, sum/2000, 0.2)
}
