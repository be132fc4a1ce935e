package programpdf

// Color is an RGB color.
type Color struct {
	R, G, B int
}

var (
	colorPrimary  = Color{11, 113, 134}
	colorAccent   = Color{255, 184, 3}
	colorWhite    = Color{255, 255, 255}
	colorFooter   = Color{128, 128, 128}
	colorDivider  = Color{200, 200, 200}
	colorMuted    = Color{100, 100, 100}
	colorLabel    = Color{80, 80, 80}
	colorBody     = Color{60, 60, 60}
	colorCoverBox = Color{247, 250, 252}
)

// Style is the font state of a drawing phase.
type Style struct {
	Bold   bool
	Italic bool
	Size   float64
	Color  Color
}

// WithBold returns a copy of s with the bold flag set.
func (s Style) WithBold(bold bool) Style {
	s.Bold = bold
	return s
}

func (s Style) fontStyle() string {
	switch {
	case s.Bold && s.Italic:
		return "BI"
	case s.Bold:
		return "B"
	case s.Italic:
		return "I"
	default:
		return ""
	}
}

func (s Style) apply(c canvas) {
	c.SetFont(s.fontStyle(), s.Size)
	c.SetTextColor(s.Color)
}

// Font steps per phase, largest first.
var (
	styleDayTitle   = Style{Bold: true, Size: 16, Color: colorPrimary}
	styleDayDate    = Style{Size: 11, Color: colorMuted}
	styleSlot       = Style{Bold: true, Size: 10, Color: colorWhite}
	styleTitle      = Style{Bold: true, Size: 11, Color: colorPrimary}
	styleOrganizer  = Style{Size: 8, Color: colorLabel}
	styleBody       = Style{Size: 8, Color: colorBody}
	styleSpeakers   = Style{Size: 7, Color: colorPrimary}
	styleBadge      = Style{Bold: true, Size: 7, Color: colorWhite}
	styleHeader     = Style{Bold: true, Size: 16, Color: colorWhite}
	styleLogoText   = Style{Size: 8, Color: colorWhite}
	styleFooter     = Style{Size: 9, Color: colorFooter}
	styleCoverTitle = Style{Bold: true, Size: 28, Color: colorPrimary}
	styleCoverSub   = Style{Bold: true, Size: 18, Color: colorAccent}
	styleCoverInfo  = Style{Size: 11, Color: colorBody}
	styleCoverBadge = Style{Bold: true, Size: 10, Color: colorWhite}
	styleCoverNote  = Style{Italic: true, Size: 9, Color: colorMuted}
)
