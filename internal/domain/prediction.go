package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseFeatureValues splits comma separated input into numbers.
// Elements that do not parse, including empty ones, become NaN so the
// prediction service can reject them. Out of range numbers such as 1e400
// become +Inf or -Inf. Neither NaN nor infinities survive JSON, so both are
// sent to the service as null.
func ParseFeatureValues(input string) []float64 {
	parts := strings.Split(input, ",")
	values := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			v = math.NaN()
		}
		values[i] = v
	}
	return values
}

// FormatPrediction renders a prediction value returned by the service.
func FormatPrediction(v any) string {
	switch p := v.(type) {
	case string:
		return p
	case float64:
		return formatNumber(p)
	case bool:
		return strconv.FormatBool(p)
	case nil:
		return "null"
	default:
		return fmt.Sprint(p)
	}
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case math.Abs(f) >= 1e21 || (f != 0 && math.Abs(f) < 1e-6):
		return strconv.FormatFloat(f, 'g', -1, 64)
	default:
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
}

// FormatValues renders parsed feature values, NaN included, as comma separated text.
func FormatValues(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}
