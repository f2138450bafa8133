// Package cli implements the stubd command line.
//
// Settings come from flags, STUBD_* environment variables and an optional
// settings file given with --settings, in that order of precedence.
package cli
