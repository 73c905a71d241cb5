// Package comparison computes the descriptive and inferential statistics
// used to compare a control group with an experimental group.
//
// Every function here is a pure function of its inputs: no I/O, no
// logging, no shared state. Invalid input is reported through the
// INVALID_INPUT, NON_FINITE_VALUE and DEGENERATE_VARIANCE error codes of
// edustat/internal/errors and never turned into NaN or Inf results.
package comparison

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	domain "edustat/domain/stats"
	"edustat/internal/errors"
)

// checkSample rejects empty samples, samples smaller than minN, and
// samples holding NaN/Inf. name is used in error messages.
func checkSample(name string, sample domain.Sample, minN int) error {
	if len(sample) == 0 {
		return errors.Newf(errors.CodeInvalidInput, "%s sample is empty", name)
	}
	if len(sample) < minN {
		return errors.Newf(errors.CodeInvalidInput,
			"%s sample has %d observations, need at least %d", name, len(sample), minN)
	}
	if i := sample.FirstNonFinite(); i >= 0 {
		return errors.Newf(errors.CodeNonFiniteValue,
			"%s sample has non-finite value %v at index %d", name, sample[i], i)
	}
	return nil
}

// moments returns the mean and the unbiased (n-1) variance. A constant
// sample yields exactly zero variance.
func moments(sample domain.Sample) (mean, variance float64) {
	if isConstant(sample) {
		return sample[0], 0
	}
	return stat.MeanVariance(sample, nil)
}

// finiteMoments is moments for samples whose sums may overflow. Values
// near the float64 limit yield a NON_FINITE_VALUE error.
func finiteMoments(name string, sample domain.Sample) (mean, variance float64, err error) {
	mean, variance = moments(sample)
	if !finite(mean, variance) {
		return 0, 0, errors.Newf(errors.CodeNonFiniteValue,
			"%s sample overflows float64: mean %v, variance %v", name, mean, variance)
	}
	return mean, variance, nil
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func isConstant(sample domain.Sample) bool {
	for _, v := range sample[1:] {
		if v != sample[0] {
			return false
		}
	}
	return true
}

// Summarize computes count, mean, sample standard deviation, min, max and
// median of a non-empty sample of finite values.
func Summarize(sample domain.Sample) (domain.GroupSummary, error) {
	if err := checkSample("summary", sample, 1); err != nil {
		return domain.GroupSummary{}, err
	}

	data := stats.Float64Data(sample)
	min, err := data.Min()
	if err != nil {
		return domain.GroupSummary{}, errors.Wrap(err, "failed to compute minimum")
	}
	max, err := data.Max()
	if err != nil {
		return domain.GroupSummary{}, errors.Wrap(err, "failed to compute maximum")
	}
	median, err := data.Median()
	if err != nil {
		return domain.GroupSummary{}, errors.Wrap(err, "failed to compute median")
	}
	if !finite(median) {
		return domain.GroupSummary{}, errors.NonFiniteValue("summary sample overflows float64: median is not finite")
	}

	mean, variance, err := finiteMoments("summary", sample)
	if err != nil {
		return domain.GroupSummary{}, err
	}
	// Rounding in the sum can push the mean an ulp outside the observed range.
	mean = math.Min(math.Max(mean, min), max)

	return domain.GroupSummary{
		Count:  len(sample),
		Mean:   mean,
		StdDev: math.Sqrt(variance),
		Min:    min,
		Max:    max,
		Median: median,
	}, nil
}

// FitNormal returns the maximum likelihood normal fit: the sample mean and
// the population (divisor n) standard deviation.
func FitNormal(sample domain.Sample) (domain.NormalFit, error) {
	if err := checkSample("normal fit", sample, 1); err != nil {
		return domain.NormalFit{}, err
	}

	mean, err := stats.Mean(stats.Float64Data(sample))
	if err != nil {
		return domain.NormalFit{}, errors.Wrap(err, "failed to compute mean")
	}
	sigma, err := stats.StandardDeviationPopulation(stats.Float64Data(sample))
	if err != nil {
		return domain.NormalFit{}, errors.Wrap(err, "failed to compute standard deviation")
	}

	return domain.NormalFit{Mu: mean, Sigma: sigma, N: len(sample)}, nil
}
