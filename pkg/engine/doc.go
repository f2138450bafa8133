// Package engine runs stubd: the stubs portal and the admin portal, each on
// its own http.Server, over one shared lifecycle repository.
//
// The repository is loaded from the configured data source at startup. With
// watching enabled, edits to the source are reloaded into the running
// catalog after a short debounce; POST /refresh on the admin port does the
// same on demand. A failed reload keeps the previous catalog.
package engine
