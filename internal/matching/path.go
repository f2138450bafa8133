package matching

import (
	"github.com/stubkit/stubd/pkg/stub"
)

// MatchPath checks the request path against the pattern URL.
// The pattern matches on literal equality or regex full-match.
func MatchPath(pattern stub.Value, path string) bool {
	if path == "" {
		path = "/"
	}
	return pattern.Matches(path)
}
