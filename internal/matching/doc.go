// Package matching resolves an inbound request against an ordered stub catalog.
//
// Lifecycles are scanned in declaration order and the first one whose request
// pattern fully matches wins. Every field declared on a pattern must match:
//
//   - Method: exact, case-sensitive equality, or the ANY / * wildcard
//   - Path: literal equality or regex full-match
//   - Query and headers: each declared key must be present and one of its
//     values must satisfy literal equality or regex full-match
//   - Post: raw literal or regex, falling back to field-level matching for
//     form-encoded and JSON bodies
//   - JSONPath: conditions evaluated against a JSON body
//
// A pattern that requires authorization and otherwise matches a request with
// no Authorization header yields AuthorizationRequired for that index.
//
// The package has no side effects. Hit counters and response cursors are
// advanced by the repository once a match is resolved.
package matching
