package workflow

import (
	"encoding/json"
	"math"

	"github.com/emiliopalmerini/modelcraft/internal/ports"
)

// ResolveMetric picks the training score from a response. Fields are checked
// in the order metric, accuracy, r2; the first one holding a number wins.
// ok is false when no field holds a number or the winning number is not finite.
func ResolveMetric(resp *ports.TrainingResponse) (score float64, ok bool) {
	for _, v := range []any{resp.Metric, resp.Accuracy, resp.R2} {
		f, isNum := asNumber(v)
		if !isNum {
			continue
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
