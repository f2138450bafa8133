package matching

import (
	"encoding/json"
	"reflect"

	"github.com/ohler55/ojg/jp"

	"github.com/stubkit/stubd/pkg/stub"
)

// MatchJSONPath evaluates JSONPath conditions against a JSON body.
// All conditions must match. A body that is not valid JSON never matches.
//
// The expected value may be a scalar, a structure compared by equality, or an
// existence check of the form {"exists": true|false}. String values may be
// regexes.
func MatchJSONPath(conditions map[string]any, body []byte) bool {
	if len(conditions) == 0 {
		return true
	}

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return false
	}

	for path, expected := range conditions {
		if !matchSingleJSONPath(path, expected, data) {
			return false
		}
	}
	return true
}

func matchSingleJSONPath(path string, expected, data any) bool {
	expr, err := jp.ParseString(path)
	if err != nil {
		return false
	}

	results := expr.Get(data)

	if exists, ok := existenceCheck(expected); ok {
		return exists == (len(results) > 0)
	}
	if len(results) == 0 {
		return false
	}

	// Wildcard paths can return several results; any of them may match.
	for _, result := range results {
		if s, ok := expected.(string); ok {
			if rs, isStr := result.(string); isStr && stub.NewValue(s).Matches(rs) {
				return true
			}
			continue
		}
		if valuesEqual(result, expected) {
			return true
		}
	}
	return false
}

// existenceCheck recognises {"exists": bool}.
func existenceCheck(expected any) (exists, ok bool) {
	m, isMap := expected.(map[string]any)
	if !isMap || len(m) != 1 {
		return false, false
	}
	b, isBool := m["exists"].(bool)
	return b, isBool
}

// valuesEqual compares two decoded values, treating all numeric types alike.
func valuesEqual(actual, expected any) bool {
	if actual == nil || expected == nil {
		return actual == nil && expected == nil
	}

	actualNum, actualIsNum := toFloat64(actual)
	expectedNum, expectedIsNum := toFloat64(expected)
	if actualIsNum && expectedIsNum {
		return actualNum == expectedNum
	}

	return reflect.DeepEqual(normalize(actual), normalize(expected))
}

// normalize rewrites numbers to float64 so documents decoded by different
// codecs (YAML ints, JSON floats) compare equal.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			out[k] = normalize(child)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, child := range t {
			out[i] = normalize(child)
		}
		return out
	}
	if n, ok := toFloat64(v); ok {
		return n
	}
	return v
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint32:
		return float64(n), true
	default:
		return 0, false
	}
}
