package programpdf

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// measureFunc returns the width of text in the given weight.
type measureFunc func(text string, bold bool) float64

// word is a whitespace-delimited token. space marks whitespace before it.
type word struct {
	text  string
	bold  bool
	space bool
}

// run is a painted word, X is its offset from the line start.
type run struct {
	Text  string
	Bold  bool
	X     float64
	Width float64
}

type line struct {
	Runs  []run
	Width float64
}

// lineBuilder packs words greedily. Spaces are only measured between words,
// never at the start of a line.
type lineBuilder struct {
	measure measureFunc
	runs    []run
	width   float64
}

func (b *lineBuilder) empty() bool {
	return len(b.runs) == 0
}

func (b *lineBuilder) gap(w word) float64 {
	if b.empty() || !w.space {
		return 0
	}
	return b.measure(" ", w.bold)
}

// projected is the line width if w were appended.
func (b *lineBuilder) projected(w word) float64 {
	return b.width + b.gap(w) + b.measure(w.text, w.bold)
}

func (b *lineBuilder) add(w word) {
	b.width += b.gap(w)
	width := b.measure(w.text, w.bold)
	b.runs = append(b.runs, run{Text: w.text, Bold: w.bold, X: b.width, Width: width})
	b.width += width
}

func (b *lineBuilder) take() line {
	out := line{Runs: b.runs, Width: b.width}
	b.runs = nil
	b.width = 0
	return out
}

// wrapWords packs words into lines no wider than maxWidth. A word wider than
// maxWidth is placed alone on its own line.
func wrapWords(words []word, maxWidth float64, measure measureFunc) []line {
	b := lineBuilder{measure: measure}
	lines := make([]line, 0)
	for _, w := range words {
		if !b.empty() && b.projected(w) > maxWidth {
			lines = append(lines, b.take())
		}
		b.add(w)
	}
	if !b.empty() {
		lines = append(lines, b.take())
	}
	return lines
}

// splitWords tokenizes text. leadingSpace marks the first word as preceded
// by whitespace from an earlier segment.
func splitWords(text string, bold, leadingSpace bool) []word {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil
	}
	if first, _ := utf8.DecodeRuneInString(text); unicode.IsSpace(first) {
		leadingSpace = true
	}
	words := make([]word, len(fields))
	for i, field := range fields {
		words[i] = word{text: field, bold: bold, space: i > 0 || leadingSpace}
	}
	return words
}

func endsWithSpace(text string) bool {
	last, _ := utf8.DecodeLastRuneInString(text)
	return unicode.IsSpace(last)
}
