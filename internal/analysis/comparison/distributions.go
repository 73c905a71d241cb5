package comparison

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// studentsT returns the standard Student's t distribution with nu degrees of freedom
func studentsT(nu float64) distuv.StudentsT {
	return distuv.StudentsT{Mu: 0, Sigma: 1, Nu: nu}
}

// tTestPValue computes the two-tailed p-value of a t statistic.
// Degrees of freedom may be fractional (Welch-Satterthwaite).
func tTestPValue(tStatistic, degreesOfFreedom float64) float64 {
	p := 2 * studentsT(degreesOfFreedom).Survival(math.Abs(tStatistic))
	if p > 1 {
		p = 1
	}
	return p
}

// tCritical returns the two-tailed critical value for the given confidence level
func tCritical(degreesOfFreedom, confidenceLevel float64) float64 {
	alpha := 1.0 - confidenceLevel
	return studentsT(degreesOfFreedom).Quantile(1.0 - alpha/2.0)
}

// normalQuantile computes quantile function for standard normal (inverse CDF)
func normalQuantile(p float64) float64 {
	return distuv.UnitNormal.Quantile(p)
}

// normalUpperTail computes P(Z > z) for standard normal
func normalUpperTail(z float64) float64 {
	return distuv.UnitNormal.Survival(z)
}
