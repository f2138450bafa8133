// Package metrics exposes stubd's Prometheus collectors.
//
// Each server owns a Metrics value backed by its own prometheus.Registry, so
// several servers in one process (as in tests) never collide on registration.
//
//   - stubd_stub_requests_total{outcome}: stubs portal requests by outcome
//   - stubd_stub_request_duration_seconds{outcome}: stubs portal latency
//   - stubd_stub_render_errors_total{reason}: responses that failed to render
//   - stubd_stub_active_requests: stubs portal requests in flight
//   - stubd_catalog_size: lifecycles in the catalog
//   - stubd_catalog_reloads_total{source,result}: catalog reloads
//   - stubd_admin_requests_total{method,status}: admin portal requests
//
// Go runtime and process collectors are registered alongside.
package metrics
