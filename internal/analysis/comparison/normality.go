package comparison

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	domain "edustat/domain/stats"
	"edustat/internal/errors"
)

// Sample size range supported by the Royston approximation
const (
	minShapiroN = 3
	maxShapiroN = 5000
)

// Royston (1992) polynomial coefficients, lowest degree first
var (
	swC1 = []float64{0, 0.221157, -0.147981, -2.071190, 4.434685, -2.706056}
	swC2 = []float64{0, 0.042981, -0.293762, -1.752461, 5.682633, -3.582633}
	swC3 = []float64{0.544, -0.39978, 0.025054, -6.714e-4}
	swC4 = []float64{1.3822, -0.77857, 0.062767, -0.0020322}
	swC5 = []float64{-1.5861, -0.31082, -0.083751, 0.0038915}
	swC6 = []float64{-0.4803, -0.082676, 0.0030302}
	swG  = []float64{-2.273, 0.459}
)

// TestNormality runs the Shapiro-Wilk test. The result is advisory: it
// helps choose between CompareMeans and CompareRanksMannWhitney and does
// not change either.
func TestNormality(sample domain.Sample) (domain.NormalityResult, error) {
	if err := checkSample("normality", sample, minShapiroN); err != nil {
		return domain.NormalityResult{}, err
	}
	n := len(sample)
	if n > maxShapiroN {
		return domain.NormalityResult{}, errors.Newf(errors.CodeInvalidInput,
			"shapiro-wilk supports at most %d observations, got %d", maxShapiroN, n)
	}
	if isConstant(sample) {
		return domain.NormalityResult{}, errors.DegenerateVariance(
			"all observations are equal, normality is undefined")
	}

	x := make([]float64, n)
	copy(x, sample)
	sort.Float64s(x)

	w := shapiroWilkW(x)
	p := shapiroWilkPValue(w, n)
	if !finite(w, p) {
		return domain.NormalityResult{}, errors.NonFiniteValue(
			"normality sample overflows float64: W is not finite")
	}
	return domain.NormalityResult{
		Statistic: w,
		PValue:    p,
		N:         n,
	}, nil
}

// RecommendTest picks the parametric comparison when no group rejects
// normality at alpha and the rank-based comparison otherwise.
func RecommendTest(alpha float64, results ...domain.NormalityResult) domain.TestRecommendation {
	for _, r := range results {
		if !r.LooksNormal(alpha) {
			return domain.RecommendRankBased
		}
	}
	return domain.RecommendParametric
}

// shapiroWilkW computes W for sorted, non-constant data
func shapiroWilkW(sorted []float64) float64 {
	a := shapiroWilkCoefficients(len(sorted))

	mean := floats.Sum(sorted) / float64(len(sorted))
	ss := 0.0
	for _, v := range sorted {
		d := v - mean
		ss += d * d
	}

	num := floats.Dot(a, sorted)
	w := num * num / ss
	if w > 1 {
		w = 1
	}
	return w
}

// shapiroWilkCoefficients returns the antisymmetric weights a_1..a_n
func shapiroWilkCoefficients(n int) []float64 {
	a := make([]float64, n)
	if n == 3 {
		a[0], a[2] = -math.Sqrt2/2, math.Sqrt2/2
		return a
	}

	nf := float64(n)
	m := make([]float64, n)
	for i := range m {
		m[i] = normalQuantile((float64(i+1) - 0.375) / (nf + 0.25))
	}
	mm := floats.Dot(m, m)
	rootMM := math.Sqrt(mm)
	u := 1 / math.Sqrt(nf)

	an := m[n-1]/rootMM + polyval(swC1, u)
	a[0], a[n-1] = -an, an

	first, last := 1, n-2
	var phi float64
	if n > 5 {
		an1 := m[n-2]/rootMM + polyval(swC2, u)
		a[1], a[n-2] = -an1, an1
		phi = (mm - 2*m[n-1]*m[n-1] - 2*m[n-2]*m[n-2]) / (1 - 2*an*an - 2*an1*an1)
		first, last = 2, n-3
	} else {
		phi = (mm - 2*m[n-1]*m[n-1]) / (1 - 2*an*an)
	}

	scale := math.Sqrt(phi)
	for i := first; i <= last; i++ {
		a[i] = m[i] / scale
	}
	return a
}

// shapiroWilkPValue maps W to a p-value with Royston's normalising transform
func shapiroWilkPValue(w float64, n int) float64 {
	if n == 3 {
		p := 6 / math.Pi * (math.Asin(math.Sqrt(w)) - math.Pi/3)
		return math.Min(math.Max(p, 0), 1)
	}

	nf := float64(n)
	y := math.Log(1 - w)
	var mu, sigma float64
	if n <= 11 {
		gamma := polyval(swG, nf)
		if y >= gamma {
			return 0
		}
		y = -math.Log(gamma - y)
		mu = polyval(swC3, nf)
		sigma = math.Exp(polyval(swC4, nf))
	} else {
		ln := math.Log(nf)
		mu = polyval(swC5, ln)
		sigma = math.Exp(polyval(swC6, ln))
	}

	return normalUpperTail((y - mu) / sigma)
}

// polyval evaluates c[0] + c[1]x + c[2]x^2 + ...
func polyval(c []float64, x float64) float64 {
	result := 0.0
	for i := len(c) - 1; i >= 0; i-- {
		result = result*x + c[i]
	}
	return result
}
