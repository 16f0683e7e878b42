package engine

import (
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/vegasq/askdata/dataset"
	"github.com/vegasq/askdata/query"
)

// apply computes fn over xs. It returns dataset.Undefined where the
// function has no value: an empty input for anything but sum and count, or
// fewer than two values for std.
func apply(fn query.AggFunc, xs []float64) interface{} {
	switch fn {
	case query.FuncSum:
		return floats.Sum(xs)
	case query.FuncCount:
		return len(xs)
	}
	if len(xs) == 0 {
		return dataset.Undefined
	}
	switch fn {
	case query.FuncMean:
		return stat.Mean(xs, nil)
	case query.FuncMedian:
		return quantile(sorted(xs), 0.5)
	case query.FuncMin:
		return floats.Min(xs)
	case query.FuncMax:
		return floats.Max(xs)
	case query.FuncStd:
		if len(xs) < 2 {
			return dataset.Undefined
		}
		return stat.StdDev(xs, nil)
	}
	return dataset.Undefined
}

// formula states how fn is computed, for method strings.
func formula(fn query.AggFunc) string {
	switch fn {
	case query.FuncSum:
		return "sum of values"
	case query.FuncMean:
		return "arithmetic mean, sum / n"
	case query.FuncMedian:
		return "median, mean of the two middle values when n is even"
	case query.FuncMin:
		return "smallest value"
	case query.FuncMax:
		return "largest value"
	case query.FuncStd:
		return "sample standard deviation, sqrt(sum((x - mean)^2) / (n - 1))"
	case query.FuncCount:
		return "number of non-missing values"
	}
	return fn.String()
}

func sorted(xs []float64) []float64 {
	out := make([]float64, len(xs))
	copy(out, xs)
	sort.Float64s(out)
	return out
}

// quantile returns the p-quantile of ascending xs by linear interpolation
// between closest ranks: h = (n-1)p, x[floor h] + (h - floor h)(x[floor h + 1] - x[floor h]).
func quantile(xs []float64, p float64) float64 {
	n := len(xs)
	if n == 1 {
		return xs[0]
	}
	h := float64(n-1) * p
	lo := int(math.Floor(h))
	if lo >= n-1 {
		return xs[n-1]
	}
	return xs[lo] + (h-float64(lo))*(xs[lo+1]-xs[lo])
}

// meanStd returns the mean and sample standard deviation of xs. The
// deviation is 0 for fewer than two values.
func meanStd(xs []float64) (mean, std float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	if len(xs) == 1 {
		return xs[0], 0
	}
	return stat.MeanStdDev(xs, nil)
}

// num formats a parameter for a method string.
func num(f float64) string {
	return strconv.FormatFloat(f, 'g', 6, 64)
}

func roundTo(f float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(f*p) / p
}
