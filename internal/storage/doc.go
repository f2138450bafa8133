// Package storage owns the stub catalog.
//
// Repository keeps the ordered lifecycle list as an immutable snapshot behind
// an atomic pointer. Readers (matching, listing) load the snapshot without
// locking. Writers serialize on a mutex, build a new slice and publish it in
// one store, so a reader never observes a partially applied edit.
//
// Lifecycles are shared between snapshots by pointer, so an edit to one index
// leaves the hit counters and response cursors of every other entry intact.
package storage
