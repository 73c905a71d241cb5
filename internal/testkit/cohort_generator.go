package testkit

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"path/filepath"

	"edustat/adapters/excel"
	"edustat/domain/dataset"
)

// CohortGeneratorConfig configures the synthetic pre/post study generator
type CohortGeneratorConfig struct {
	ControlCount      int     `json:"control_count"`
	ExperimentalCount int     `json:"experimental_count"`
	PreMean           float64 `json:"pre_mean"`
	PreStdDev         float64 `json:"pre_std_dev"`
	ControlGain       float64 `json:"control_gain"`
	ExperimentalGain  float64 `json:"experimental_gain"`
	GainStdDev        float64 `json:"gain_std_dev"`
	MaxScore          float64 `json:"max_score"`
	// MissingPostRate is the probability that a student has no post-test row
	MissingPostRate float64 `json:"missing_post_rate"`
	// HeaderTypo writes the experimental post-test id column as istudent_id
	HeaderTypo bool  `json:"header_typo"`
	Seed       int64 `json:"seed"`
}

// DefaultCohortConfig returns a cohort shaped like a two-class teaching study
func DefaultCohortConfig() CohortGeneratorConfig {
	return CohortGeneratorConfig{
		ControlCount:      21,
		ExperimentalCount: 20,
		PreMean:           55,
		PreStdDev:         12,
		ControlGain:       6,
		ExperimentalGain:  15,
		GainStdDev:        8,
		MaxScore:          100,
		MissingPostRate:   0.05,
		HeaderTypo:        true,
		Seed:              42,
	}
}

// Cohort is a generated study: the raw tables plus the records they merge into
type Cohort struct {
	PreTest          *dataset.Table
	PostControl      *dataset.Table
	PostExperimental *dataset.Table
	Records          []dataset.StudentRecord
}

// CohortGenerator produces reproducible synthetic score sheets
type CohortGenerator struct {
	config CohortGeneratorConfig
	rng    *rand.Rand
}

// NewCohortGenerator creates a new cohort generator
func NewCohortGenerator(config CohortGeneratorConfig) *CohortGenerator {
	return &CohortGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate builds one cohort. Scores are whole numbers clamped to
// [0, MaxScore]; students are interleaved across groups in roster order.
func (g *CohortGenerator) Generate() *Cohort {
	idHeader := "student_id"
	if g.config.HeaderTypo {
		idHeader = "istudent_id"
	}
	c := &Cohort{
		PreTest:          &dataset.Table{Headers: []string{"student_id", "total_score", "group"}},
		PostControl:      &dataset.Table{Headers: []string{"student_id", "total_score"}},
		PostExperimental: &dataset.Table{Headers: []string{idHeader, "total_score"}},
	}

	remaining := map[dataset.Group]int{
		dataset.GroupControl:      g.config.ControlCount,
		dataset.GroupExperimental: g.config.ExperimentalCount,
	}
	for i := 0; remaining[dataset.GroupControl]+remaining[dataset.GroupExperimental] > 0; i++ {
		group := dataset.GroupControl
		if remaining[group] == 0 || (i%2 == 1 && remaining[dataset.GroupExperimental] > 0) {
			group = dataset.GroupExperimental
		}
		remaining[group]--

		id := fmt.Sprintf("STU%03d", i+1)
		pre := g.score(g.config.PreMean, g.config.PreStdDev)
		c.PreTest.Rows = append(c.PreTest.Rows, dataset.Row{
			"student_id":  id,
			"total_score": formatWhole(pre),
			"group":       string(group),
		})

		post := math.NaN()
		if g.rng.Float64() >= g.config.MissingPostRate {
			gain := g.config.ControlGain
			postTable, key := c.PostControl, "student_id"
			if group == dataset.GroupExperimental {
				gain = g.config.ExperimentalGain
				postTable, key = c.PostExperimental, idHeader
			}
			post = g.score(pre+gain, g.config.GainStdDev)
			postTable.Rows = append(postTable.Rows, dataset.Row{
				key:           id,
				"total_score": formatWhole(post),
			})
		}

		c.Records = append(c.Records, dataset.NewStudentRecord(id, group, pre, post))
	}
	return c
}

// WriteRaw writes the cohort's raw CSV files under dataDir/raw
func (c *Cohort) WriteRaw(ctx context.Context, dataDir string) error {
	writer := excel.NewDataWriter()
	raw := filepath.Join(dataDir, "raw")
	for name, table := range map[string]*dataset.Table{
		"pre_test_scores.csv":        c.PreTest,
		"post_test_control.csv":      c.PostControl,
		"post_test_experimental.csv": c.PostExperimental,
	} {
		if err := writer.WriteCSV(ctx, filepath.Join(raw, name), table); err != nil {
			return err
		}
	}
	return nil
}

// Scores draws n normal scores without clamping or rounding
func (g *CohortGenerator) Scores(n int, mean, stdDev float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = mean + g.rng.NormFloat64()*stdDev
	}
	return out
}

func (g *CohortGenerator) score(mean, stdDev float64) float64 {
	v := math.Round(mean + g.rng.NormFloat64()*stdDev)
	return math.Min(math.Max(v, 0), g.config.MaxScore)
}

func formatWhole(v float64) string {
	return fmt.Sprintf("%.0f", v)
}
