package util

import "unicode/utf8"

// MaxLogBodySize is the default maximum body size for logging (2KB).
const MaxLogBodySize = 2 * 1024

const truncatedSuffix = "...(truncated)"

// TruncateBody returns body as a string of at most maxSize bytes, appending
// "...(truncated)" when it was cut. The cut never splits a UTF-8 sequence.
// If maxSize <= 0, uses MaxLogBodySize.
func TruncateBody(body []byte, maxSize int) string {
	if maxSize <= 0 {
		maxSize = MaxLogBodySize
	}
	if len(body) <= maxSize {
		return string(body)
	}
	cut := maxSize
	for cut > 0 && cut > maxSize-utf8.UTFMax && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return string(body[:cut]) + truncatedSuffix
}
