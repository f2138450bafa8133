package matching

import (
	"net/url"
	"strings"

	"github.com/stubkit/stubd/pkg/stub"
)

// MatchQueryParam checks a single query parameter. Repeated parameters match
// when any value, or the comma-joined list, matches.
func MatchQueryParam(name string, expected stub.Value, params url.Values) bool {
	values, ok := params[name]
	if !ok {
		return false
	}
	for _, v := range values {
		if expected.Matches(v) {
			return true
		}
	}
	return len(values) > 1 && expected.Matches(strings.Join(values, ","))
}

// MatchQuery checks if all declared query parameters match.
// Extra parameters on the request are ignored.
func MatchQuery(expected map[string]stub.Value, params url.Values) bool {
	for name, value := range expected {
		if !MatchQueryParam(name, value, params) {
			return false
		}
	}
	return true
}
