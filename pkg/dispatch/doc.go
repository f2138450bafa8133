// Package dispatch renders a resolved stub outcome onto an HTTP response.
//
// Every outcome first receives the common headers (Server, Date and the
// cache-suppression trio). A type switch over the outcome then selects one
// strategy:
//
//   - OK: declared status, headers, optional latency, body
//   - Redirect: a 3xx status with a mandatory Location and Connection: close
//   - Unauthorized: 401 explaining the missing Authorization header
//   - NotFound: 404 echoing the unmatched method and URI
//
// Strategies validate everything they need before writing, so a failure is
// returned as an error while the response is still untouched and the caller
// can answer with a 500.
package dispatch
