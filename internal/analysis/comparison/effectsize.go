package comparison

import (
	"math"

	domain "edustat/domain/stats"
	"edustat/internal/errors"
)

// CohensD computes (mean_experimental - mean_control) / sqrt((var1+var2)/2).
// The unweighted average of the two variances is used whatever variance
// assumption the accompanying t-test makes.
func CohensD(control, experimental domain.Sample) (float64, error) {
	if err := checkSample("control", control, 2); err != nil {
		return 0, err
	}
	if err := checkSample("experimental", experimental, 2); err != nil {
		return 0, err
	}

	mean1, var1, err := finiteMoments("control", control)
	if err != nil {
		return 0, err
	}
	mean2, var2, err := finiteMoments("experimental", experimental)
	if err != nil {
		return 0, err
	}

	pooledSD := math.Sqrt(var1/2 + var2/2)
	if !finite(pooledSD, mean2-mean1) {
		return 0, errors.NonFiniteValue("pooled standard deviation overflows float64")
	}
	if pooledSD == 0 {
		return 0, errors.DegenerateVariance("pooled standard deviation is zero")
	}
	return (mean2 - mean1) / pooledSD, nil
}

// HedgesG applies the small-sample bias correction to a Cohen's d value
func HedgesG(cohenD float64, n1, n2 int) float64 {
	totalN := n1 + n2
	if totalN < 3 {
		return cohenD
	}
	correction := 1.0 - (3.0 / (4.0*float64(totalN) - 9.0))
	return cohenD * correction
}

// InterpretCohensD classifies |d|: below 0.5 small, below 0.8 medium, else large
func InterpretCohensD(d float64) domain.EffectMagnitude {
	absD := math.Abs(d)
	switch {
	case absD < 0.5:
		return domain.EffectSmall
	case absD < 0.8:
		return domain.EffectMedium
	default:
		return domain.EffectLarge
	}
}
