// Package stub defines the rule catalog entities served by stubd.
//
// A Lifecycle pairs one request Pattern with an ordered list of Responses.
// Patterns and responses are immutable once a Lifecycle is built; the only
// mutable state is the per-lifecycle hit counter and response cursor, both of
// which are updated atomically so a Lifecycle can be shared between catalog
// snapshots and matched by many goroutines at once.
//
// Matching produces an Outcome, a closed set of result types:
//
//   - Matched: a lifecycle matched and its next response was selected
//   - Unauthorized: a lifecycle matched but requires an Authorization header
//   - NotFound: no lifecycle matched
package stub
