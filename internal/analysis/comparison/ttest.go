package comparison

import (
	"math"

	domain "edustat/domain/stats"
	"edustat/internal/errors"
)

// DefaultConfidenceLevel is used by CompareMeans for the mean-difference interval
const DefaultConfidenceLevel = 0.95

// CompareMeans runs a two-sample t-test of experimental against control
// with a 95% confidence interval for the mean difference.
//
// equalVariance selects the pooled-variance Student test; otherwise the
// Welch test with Satterthwaite degrees of freedom is used.
func CompareMeans(control, experimental domain.Sample, equalVariance bool) (domain.ComparisonResult, error) {
	return CompareMeansAt(control, experimental, equalVariance, DefaultConfidenceLevel)
}

// CompareMeansAt is CompareMeans with an explicit confidence level in (0, 1).
func CompareMeansAt(control, experimental domain.Sample, equalVariance bool, confidenceLevel float64) (domain.ComparisonResult, error) {
	if !(confidenceLevel > 0 && confidenceLevel < 1) {
		return domain.ComparisonResult{}, errors.Newf(errors.CodeInvalidInput,
			"confidence level must be in (0, 1), got %v", confidenceLevel)
	}
	if err := checkSample("control", control, 2); err != nil {
		return domain.ComparisonResult{}, err
	}
	if err := checkSample("experimental", experimental, 2); err != nil {
		return domain.ComparisonResult{}, err
	}

	n1 := float64(len(control))
	n2 := float64(len(experimental))
	mean1, var1, err := finiteMoments("control", control)
	if err != nil {
		return domain.ComparisonResult{}, err
	}
	mean2, var2, err := finiteMoments("experimental", experimental)
	if err != nil {
		return domain.ComparisonResult{}, err
	}

	var se, df float64
	if equalVariance {
		pooledSD := math.Sqrt(((n1-1)*var1 + (n2-1)*var2) / (n1 + n2 - 2))
		se = pooledSD * math.Sqrt(1/n1+1/n2)
		df = n1 + n2 - 2
	} else {
		a := var1 / n1
		b := var2 / n2
		se = math.Sqrt(a + b)
		// Welch-Satterthwaite equation
		df = (a + b) * (a + b) / (var1*var1/(n1*n1*(n1-1)) + var2*var2/(n2*n2*(n2-1)))
	}

	if se == 0 {
		return domain.ComparisonResult{}, errors.DegenerateVariance(
			"standard error is zero: both samples are constant")
	}
	if !finite(se, df) || df <= 0 {
		return domain.ComparisonResult{}, errors.Newf(errors.CodeNonFiniteValue,
			"standard error %v or degrees of freedom %v overflows float64", se, df)
	}

	diff := mean2 - mean1
	tStat := diff / se
	if !finite(diff, tStat) {
		return domain.ComparisonResult{}, errors.NonFiniteValue("mean difference overflows float64")
	}

	d, err := CohensD(control, experimental)
	if err != nil {
		return domain.ComparisonResult{}, err
	}

	controlSummary, err := Summarize(control)
	if err != nil {
		return domain.ComparisonResult{}, err
	}
	experimentalSummary, err := Summarize(experimental)
	if err != nil {
		return domain.ComparisonResult{}, err
	}

	margin := tCritical(df, confidenceLevel) * se
	if !finite(diff-margin, diff+margin) {
		return domain.ComparisonResult{}, errors.NonFiniteValue("confidence interval overflows float64")
	}

	return domain.ComparisonResult{
		Method:           domain.MethodFor(equalVariance),
		MeanDifference:   diff,
		StandardError:    se,
		TStatistic:       tStat,
		DegreesOfFreedom: df,
		PValue:           tTestPValue(tStat, df),
		CohensD:          d,
		ConfidenceInterval: domain.ConfidenceInterval{
			Lower: diff - margin,
			Upper: diff + margin,
			Level: confidenceLevel,
		},
		Control:      controlSummary,
		Experimental: experimentalSummary,
	}, nil
}

// PairedTTest tests the mean of post-pre differences against zero.
// pre[i] and post[i] must belong to the same student.
func PairedTTest(pre, post domain.Sample) (domain.PairedResult, error) {
	if len(pre) != len(post) {
		return domain.PairedResult{}, errors.Newf(errors.CodeInvalidInput,
			"paired samples differ in length: %d pre vs %d post", len(pre), len(post))
	}
	if err := checkSample("pre-test", pre, 2); err != nil {
		return domain.PairedResult{}, err
	}
	if err := checkSample("post-test", post, 2); err != nil {
		return domain.PairedResult{}, err
	}

	diffs := make(domain.Sample, len(pre))
	for i := range pre {
		diffs[i] = post[i] - pre[i]
	}

	if err := checkSample("pre/post difference", diffs, 2); err != nil {
		return domain.PairedResult{}, err
	}

	mean, variance, err := finiteMoments("pre/post difference", diffs)
	if err != nil {
		return domain.PairedResult{}, err
	}
	sd := math.Sqrt(variance)
	if sd == 0 {
		return domain.PairedResult{}, errors.DegenerateVariance(
			"pre/post differences are constant")
	}

	n := float64(len(diffs))
	tStat := mean / (sd / math.Sqrt(n))
	df := n - 1

	return domain.PairedResult{
		MeanDifference:   mean,
		StdDevDifference: sd,
		TStatistic:       tStat,
		DegreesOfFreedom: df,
		PValue:           tTestPValue(tStat, df),
		N:                len(diffs),
	}, nil
}
