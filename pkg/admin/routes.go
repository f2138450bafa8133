// Route registration for the admin portal.

package admin

import (
	"net/http"
)

func (a *AdminAPI) registerRoutes(mux *http.ServeMux) {
	// Catalog by index
	mux.HandleFunc("GET /{$}", a.handleList)
	mux.HandleFunc("POST /{$}", a.handleCreate)
	mux.HandleFunc("PUT /{$}", a.handleRootNotAllowed)
	mux.HandleFunc("DELETE /{$}", a.handleRootNotAllowed)
	mux.HandleFunc("GET /{index}", a.handleGet)
	mux.HandleFunc("PUT /{index}", a.handleUpdate)
	mux.HandleFunc("DELETE /{index}", a.handleDelete)

	// Catalog by stable id
	mux.HandleFunc("GET /id/{id}", a.handleGetByID)
	mux.HandleFunc("PUT /id/{id}", a.handleUpdateByID)
	mux.HandleFunc("DELETE /id/{id}", a.handleDeleteByID)

	// Inspection and operations
	mux.HandleFunc("GET /status", a.handleStatus)
	mux.HandleFunc("GET /unused", a.handleUnused)
	mux.HandleFunc("GET /stats", a.handleStats)
	mux.HandleFunc("POST /refresh", a.handleRefresh)
	mux.HandleFunc("GET /health", a.handleHealth)
	if a.metrics != nil {
		mux.Handle("GET /metrics", a.metrics.Handler())
	}
}
