package engine

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MergeParams layers parameter maps left to right; later sources win on key
// collision. Inputs are not mutated.
func MergeParams(layers ...map[string]any) map[string]any {
	merged := make(map[string]any)
	for _, layer := range layers {
		for k, v := range layer {
			merged[k] = v
		}
	}
	return merged
}

// floatParam reads a numeric parameter, tolerating the integer and float
// widths the BSON decoder may hand back.
func floatParam(params map[string]any, key string) (float64, bool) {
	return asFloat(params[key])
}

func asFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// trainingMaxFor reads the per-lift training max from the merged params. The
// "trainingMaxes" value may arrive as a plain map or as a decoded BSON
// document depending on where the params came from.
func trainingMaxFor(params map[string]any, lift string) (float64, bool) {
	switch m := params["trainingMaxes"].(type) {
	case map[string]float64:
		v, ok := m[lift]
		return v, ok
	case map[string]any:
		return asFloat(m[lift])
	case primitive.M:
		return asFloat(m[lift])
	}
	return 0, false
}
