// Package admin serves the admin port: runtime inspection and editing of the
// stub catalog.
//
// Lifecycles are addressed by catalog index, which shifts when an earlier
// entry is deleted, or by their stable id under /id/{id}.
//
//	GET    /            list the catalog (YAML, or JSON with Accept: application/json)
//	POST   /            append lifecycles parsed from the body
//	GET    /{index}     fetch one lifecycle
//	PUT    /{index}     replace one lifecycle
//	DELETE /{index}     remove one lifecycle
//	GET    /id/{id}     fetch, replace or remove by id (also PUT and DELETE)
//	GET    /status      server and catalog summary
//	GET    /unused      lifecycles that were never matched
//	GET    /stats       hits per URL
//	POST   /refresh     reload the catalog from its data source
//	GET    /health      liveness
//	GET    /metrics     Prometheus metrics
//
// The editing verbs answer with short plain-text messages. Malformed input
// never takes the server down: parse failures and panics become a 500 whose
// body describes the problem.
package admin
