package comparison

import (
	stderrors "errors"
	"sort"

	moremath "github.com/aclements/go-moremath/stats"

	domain "edustat/domain/stats"
	"edustat/internal/errors"
)

// CompareRanksMannWhitney runs a two-sided Mann-Whitney U test. Tied
// values receive midranks. The reported statistic is U for the control
// sample.
func CompareRanksMannWhitney(control, experimental domain.Sample) (domain.RankTestResult, error) {
	if err := checkSample("control", control, 1); err != nil {
		return domain.RankTestResult{}, err
	}
	if err := checkSample("experimental", experimental, 1); err != nil {
		return domain.RankTestResult{}, err
	}

	if isConstant(control) && isConstant(experimental) && control[0] == experimental[0] {
		return domain.RankTestResult{}, errors.DegenerateVariance(
			"all observations are equal, ranks carry no information")
	}

	res, err := moremath.MannWhitneyUTest(control, experimental, moremath.LocationDiffers)
	if err != nil {
		if stderrors.Is(err, moremath.ErrSamplesEqual) {
			return domain.RankTestResult{}, errors.DegenerateVariance(
				"all observations are equal, ranks carry no information")
		}
		return domain.RankTestResult{}, errors.Wrap(err, "mann-whitney test failed")
	}

	n1, n2 := len(control), len(experimental)
	limit := moremath.MannWhitneyExactLimit
	if hasTies(control, experimental) {
		limit = moremath.MannWhitneyTiesExactLimit
	}

	return domain.RankTestResult{
		Statistic: res.U,
		PValue:    res.P,
		N1:        n1,
		N2:        n2,
		Exact:     n1 <= limit && n2 <= limit,
	}, nil
}

// hasTies reports whether any value occurs more than once across both samples
func hasTies(first, second []float64) bool {
	combined := make([]float64, 0, len(first)+len(second))
	combined = append(combined, first...)
	combined = append(combined, second...)
	sort.Float64s(combined)
	for i := 1; i < len(combined); i++ {
		if combined[i] == combined[i-1] {
			return true
		}
	}
	return false
}
