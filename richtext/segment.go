package richtext

// SegmentKind tags a TextSegment.
type SegmentKind int

const (
	// SegmentText carries styled text.
	SegmentText SegmentKind = iota
	// SegmentNewline forces a line flush plus paragraph spacing.
	SegmentNewline
	// SegmentBullet starts a list item.
	SegmentBullet
)

func (k SegmentKind) String() string {
	switch k {
	case SegmentText:
		return "text"
	case SegmentNewline:
		return "newline"
	case SegmentBullet:
		return "bullet"
	default:
		return "unknown"
	}
}

// TextSegment is one unit of flattened rich text. Text, Bold and ListItem are
// only meaningful for SegmentText.
type TextSegment struct {
	Kind     SegmentKind
	Text     string
	Bold     bool
	ListItem bool
}

// Text builds a text segment.
func Text(text string, bold, listItem bool) TextSegment {
	return TextSegment{Kind: SegmentText, Text: text, Bold: bold, ListItem: listItem}
}

// Newline builds a newline marker.
func Newline() TextSegment {
	return TextSegment{Kind: SegmentNewline}
}

// Bullet builds a list item marker.
func Bullet() TextSegment {
	return TextSegment{Kind: SegmentBullet, ListItem: true}
}
