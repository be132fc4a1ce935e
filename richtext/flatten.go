package richtext

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Flatten converts an HTML fragment into ordered segments. Empty input yields
// no segments. Unknown elements are transparent.
func Flatten(src string) []TextSegment {
	if strings.TrimSpace(src) == "" {
		return nil
	}

	nodes, err := html.ParseFragment(strings.NewReader(src), fragmentContext())
	if err != nil {
		if plain := StripToPlainText(src); plain != "" {
			return []TextSegment{Text(plain, false, false)}
		}
		return nil
	}

	f := &flattener{}
	for _, node := range nodes {
		f.walk(node, false, false)
	}
	return f.segments
}

func fragmentContext() *html.Node {
	return &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
}

type flattener struct {
	segments []TextSegment
}

func (f *flattener) walk(node *html.Node, bold, listItem bool) {
	switch node.Type {
	case html.TextNode:
		if text := normalizeText(node.Data); text != "" {
			f.segments = append(f.segments, Text(text, bold, listItem))
		}
	case html.ElementNode:
		f.element(node, bold, listItem)
	}
}

func (f *flattener) element(node *html.Node, bold, listItem bool) {
	switch node.DataAtom {
	case atom.Strong, atom.B:
		f.children(node, true, listItem)
	case atom.Li:
		f.segments = append(f.segments, Bullet())
		f.children(node, bold, true)
		f.segments = append(f.segments, Newline())
	case atom.P:
		f.children(node, bold, listItem)
		f.segments = append(f.segments, Newline())
	case atom.H1, atom.H2, atom.H3, atom.H4:
		f.children(node, true, listItem)
		f.segments = append(f.segments, Newline())
	case atom.Br:
		f.segments = append(f.segments, Newline())
	case atom.Script, atom.Style:
		// raw text children are not content
	default:
		f.children(node, bold, listItem)
	}
}

func (f *flattener) children(node *html.Node, bold, listItem bool) {
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		f.walk(child, bold, listItem)
	}
}

// normalizeText strips emoji, collapses whitespace runs and keeps a single
// space at each edge that had whitespace. Blank text yields "".
func normalizeText(raw string) string {
	raw = StripEmoji(raw)
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return ""
	}
	text := strings.Join(fields, " ")
	if first, _ := utf8.DecodeRuneInString(raw); unicode.IsSpace(first) {
		text = " " + text
	}
	if last, _ := utf8.DecodeLastRuneInString(raw); unicode.IsSpace(last) {
		text += " "
	}
	return text
}
