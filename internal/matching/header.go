package matching

import (
	"net/http"
	"strings"

	"github.com/stubkit/stubd/pkg/stub"
)

const authorizationHeader = "Authorization"

// MatchHeader checks if a specific header matches.
// Header names are case-insensitive. A header sent multiple times matches
// when any single value, or the comma-joined list, matches.
func MatchHeader(name string, expected stub.Value, headers http.Header) bool {
	values := headers.Values(name)
	if len(values) == 0 {
		return false
	}
	for _, v := range values {
		if expected.Matches(v) {
			return true
		}
	}
	return len(values) > 1 && expected.Matches(strings.Join(values, ", "))
}

// MatchHeaders checks if all declared headers match.
// Authorization is evaluated separately so a missing credential can be
// reported as AuthorizationRequired instead of NoMatch.
func MatchHeaders(expected map[string]stub.Value, headers http.Header) bool {
	for name, value := range expected {
		if http.CanonicalHeaderKey(name) == authorizationHeader {
			continue
		}
		if !MatchHeader(name, value, headers) {
			return false
		}
	}
	return true
}
