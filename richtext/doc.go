// Package richtext flattens the small HTML subset used in session fields
// (p, h1-h4, br, li, strong, b) into ordered styled text segments.
//
// Flatten walks a parsed fragment and never touches anything outside it.
// StripToPlainText is the degraded plain-text mode used by tabular outputs.
package richtext
