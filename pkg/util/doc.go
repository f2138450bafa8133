// Package util provides small helpers shared across stubd packages.
//
//   - TruncateBody: cap request bodies for safe logging
package util
