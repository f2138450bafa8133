package matching

import (
	"github.com/stubkit/stubd/pkg/stub"
)

// Verdict classifies the result of evaluating a pattern against a request.
type Verdict int

const (
	// NoMatch means at least one declared field did not match.
	NoMatch Verdict = iota
	// Match means every declared field matched.
	Match
	// AuthorizationRequired means the pattern matched apart from a missing
	// or empty Authorization header.
	AuthorizationRequired
)

func (v Verdict) String() string {
	switch v {
	case Match:
		return "match"
	case AuthorizationRequired:
		return "authorization_required"
	default:
		return "no_match"
	}
}

// None is the index reported when no lifecycle matches.
const None = -1

// Result is the outcome of FindBestMatch.
type Result struct {
	// Index is the catalog position of the matching lifecycle, or None.
	Index   int
	Verdict Verdict
}

// Found reports whether the result points at a catalog entry.
func (r Result) Found() bool {
	return r.Index != None
}

// FindBestMatch returns the first lifecycle in catalog whose pattern matches
// req. An authorization-denied pattern stops the scan at its index.
func FindBestMatch(catalog []*stub.Lifecycle, req *stub.Request) Result {
	for i, lc := range catalog {
		if lc == nil {
			continue
		}
		switch v := Evaluate(&lc.Pattern, req); v {
		case Match, AuthorizationRequired:
			return Result{Index: i, Verdict: v}
		}
	}
	return Result{Index: None, Verdict: NoMatch}
}

// Evaluate checks a single pattern against a request.
func Evaluate(p *stub.Pattern, req *stub.Request) Verdict {
	if !p.AcceptsMethod(req.Method) {
		return NoMatch
	}
	if !MatchPath(p.URL, req.Path) {
		return NoMatch
	}
	if !MatchQuery(p.Query, req.Query) {
		return NoMatch
	}
	if !MatchHeaders(p.Headers, req.Header) {
		return NoMatch
	}
	if !MatchBody(p, req) {
		return NoMatch
	}

	if p.NeedsAuthorization() {
		auth := req.Authorization()
		if auth == "" {
			return AuthorizationRequired
		}
		if want, ok := p.Headers[authorizationHeader]; ok && !want.Matches(auth) {
			return NoMatch
		}
	}
	return Match
}
