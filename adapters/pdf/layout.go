package programpdf

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-program/program"
	"github.com/goliatone/go-program/richtext"
)

const (
	marginX         = 15.0
	headerHeight    = 35.0
	accentHeight    = 2.0
	contentTop      = 50.0
	bottomMargin    = 25.0
	sessionX        = 20.0
	lineHeight      = 4.5
	paragraphGap    = 1.0
	bulletIndent    = 8.0
	badgeGap        = 3.0
	slotBandHeight  = 10.0
	slotReserve     = 35.0
	sessionReserve  = 30.0
	organizerValueX = 45.0
	logoTop         = 10.0
	logoGap         = 5.0
	coverBoxHeight  = 80.0
	minCoverTitle   = 14.0

	organizerLabel = "Organizer:"
	bulletGlyph    = "•"
)

// layout is the cursor state of a single render. It is not shared.
type layout struct {
	c      canvas
	times  program.TimeFormatter
	title  string
	specs  []LogoSpec
	logos  []*Logo
	page   int
	y      float64
	width  float64
	height float64
	bottom float64
	style  Style
}

func newLayout(c canvas, times program.TimeFormatter, title string, specs []LogoSpec, logos []*Logo) *layout {
	w, h := c.PageSize()
	l := &layout{
		c:      c,
		times:  times,
		title:  title,
		specs:  specs,
		logos:  logos,
		width:  w,
		height: h,
		bottom: h - bottomMargin,
		style:  styleBody,
	}
	for i, logo := range logos {
		if logo != nil {
			c.RegisterImage(logoImageName(i), logo.PNG)
		}
	}
	return l
}

func logoImageName(i int) string {
	return fmt.Sprintf("logo-%d", i)
}

func (l *layout) contentWidth() float64 {
	return l.width - 50
}

func (l *layout) setStyle(s Style) {
	l.style = s
	s.apply(l.c)
}

// newPage starts a page, paints the chrome and restores the phase style.
func (l *layout) newPage() {
	current := l.style
	l.c.AddPage()
	l.page++
	l.chrome()
	l.y = contentTop
	l.setStyle(current)
}

// ensure breaks the page when height does not fit above the bottom margin.
func (l *layout) ensure(height float64) {
	if l.page == 0 || l.y+height > l.bottom {
		l.newPage()
	}
}

func (l *layout) chrome() {
	c := l.c
	c.SetFillColor(colorPrimary)
	c.Rect(0, 0, l.width, headerHeight, "F")
	c.SetFillColor(colorAccent)
	c.Rect(0, headerHeight, l.width, accentHeight, "F")

	x := marginX
	for i, spec := range l.specs {
		w, h := spec.size()
		if i < len(l.logos) && l.logos[i] != nil {
			c.Image(logoImageName(i), x, logoTop, w, h)
		} else if name := strings.TrimSpace(spec.Name); name != "" {
			styleLogoText.apply(c)
			c.Text(x, logoTop+h/2+1, name)
			if tw := c.TextWidth(name); tw > w {
				w = tw
			}
		}
		x += w + logoGap
	}

	if l.title != "" {
		styleHeader.apply(c)
		c.Text(l.width-c.TextWidth(l.title)-marginX, 22, l.title)
	}

	styleFooter.apply(c)
	label := fmt.Sprintf("Page %d", l.page)
	c.Text((l.width-c.TextWidth(label))/2, l.height-10, label)
	c.SetDrawColor(colorDivider)
	c.SetLineWidth(0.5)
	c.Line(marginX, l.height-15, l.width-marginX, l.height-15)
}

func (l *layout) centered(text string, y float64, s Style) {
	l.setStyle(s)
	l.c.Text((l.width-l.c.TextWidth(text))/2, y, text)
}

// fit shortens text with an ellipsis until it fits maxWidth.
func (l *layout) fit(text string, s Style, maxWidth float64) string {
	s.apply(l.c)
	if l.c.TextWidth(text) <= maxWidth {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := strings.TrimSpace(string(runes)) + "..."
		if l.c.TextWidth(candidate) <= maxWidth {
			return candidate
		}
	}
	return ""
}

func (l *layout) measure(s Style) measureFunc {
	return func(text string, bold bool) float64 {
		s.WithBold(bold).apply(l.c)
		return l.c.TextWidth(text)
	}
}

func (l *layout) paintLine(ln line, x float64, s Style) {
	for _, r := range ln.Runs {
		l.setStyle(s.WithBold(r.Bold))
		l.c.Text(x+r.X, l.y, r.Text)
	}
	l.setStyle(s)
}

// paragraph wraps plain text at x within width, one lineHeight per line.
func (l *layout) paragraph(text string, s Style, x, width float64) {
	lines := wrapWords(splitWords(text, s.Bold, false), width, l.measure(s))
	l.setStyle(s)
	for _, ln := range lines {
		l.ensure(lineHeight)
		l.paintLine(ln, x, s)
		l.y += lineHeight
	}
}

// cover paints the title page.
func (l *layout) cover(conf *program.Conference, prog *program.Program, days, sessions int, disclaimer string) {
	l.setStyle(styleCoverTitle)
	l.newPage()

	y := 60.0
	title := strings.TrimSpace(conf.Title)
	titleStyle := styleCoverTitle
	for titleStyle.Size > minCoverTitle && l.measure(titleStyle)(title, true) > l.width-30 {
		titleStyle.Size -= 2
	}
	lines := wrapWords(splitWords(title, true, false), l.width-30, l.measure(titleStyle))
	for i, ln := range lines {
		if i > 0 {
			y += titleStyle.Size * 0.45
		}
		l.y = y
		l.paintLine(ln, (l.width-ln.Width)/2, titleStyle)
	}

	y += 20
	if sub := strings.TrimSpace(prog.Title); sub != "" {
		l.centered(l.fit(sub, styleCoverSub, l.width-30), y, styleCoverSub)
	}

	y += 15
	l.c.SetDrawColor(colorPrimary)
	l.c.SetLineWidth(0.5)
	l.c.Line(l.width/4, y, l.width*3/4, y)

	y += 20
	boxX := 30.0
	boxW := l.width - 60
	l.c.SetFillColor(colorCoverBox)
	l.c.SetDrawColor(colorPrimary)
	l.c.SetLineWidth(0.3)
	l.c.RoundedRect(boxX, y, boxW, coverBoxHeight, 3, "FD")

	rows := [][2]string{
		{"Dates:", program.FormatDateRange(conf.StartDate, conf.EndDate)},
		{"Location:", strings.TrimSpace(conf.Location)},
		{"Venue:", strings.TrimSpace(conf.Venue)},
		{"Duration:", fmt.Sprintf("%d Days", days)},
		{"Sessions:", fmt.Sprintf("%d Sessions", sessions)},
	}
	rowY := y + 15
	for _, row := range rows {
		if row[1] == "" {
			continue
		}
		l.setStyle(styleCoverInfo)
		l.c.Text(boxX+10, rowY, row[0])
		value := l.fit(row[1], styleCoverInfo.WithBold(true), boxW-50)
		l.setStyle(styleCoverInfo.WithBold(true))
		l.c.Text(boxX+40, rowY, value)
		rowY += 12
	}

	y += coverBoxHeight + 15
	status := strings.ToUpper(strings.TrimSpace(prog.Status))
	if status != "" {
		fill := colorAccent
		if status == program.StatusPublished {
			fill = colorPrimary
		}
		l.c.SetFillColor(fill)
		l.c.RoundedRect((l.width-50)/2, y, 50, 12, 3, "F")
		l.centered(l.fit(status, styleCoverBadge, 46), y+8, styleCoverBadge)
	}

	if disclaimer != "" {
		l.centered(l.fit(disclaimer, styleCoverNote, l.width-30), l.height-40, styleCoverNote)
	}
}

func (l *layout) day(d program.Day) int {
	l.setStyle(styleDayTitle)
	l.newPage()
	l.c.Text(marginX, l.y, fmt.Sprintf("Day %d", d.Number))
	if date := program.FormatDate(d.Date); date != "" {
		l.setStyle(styleDayDate)
		l.c.Text(marginX, l.y+8, date)
	}
	l.y += 20

	count := 0
	for _, slot := range d.Slots {
		l.slot(slot)
		count += len(slot.Sessions)
	}
	return count
}

func (l *layout) slot(s program.TimeSlot) {
	l.setStyle(styleSlot)
	l.ensure(slotReserve)

	l.c.SetFillColor(colorPrimary)
	l.c.RoundedRect(marginX, l.y, l.width-2*marginX, slotBandHeight, 2, "F")

	start := l.times.Format(s.StartTime)
	end := l.times.Format(s.ToTime)
	label := fmt.Sprintf("%s - %s (%s)", start.EventZone, end.EventZone, program.EventZoneLabel)
	l.c.Text(sessionX, l.y+7, label)
	if start.LocalZone != "" && !(start.SameClock() && end.SameClock()) {
		local := fmt.Sprintf("%s - %s (%s)", start.LocalZone, end.LocalZone, start.ZoneLabel)
		l.setStyle(styleSlot.WithBold(false))
		l.c.Text(l.width-sessionX-l.c.TextWidth(local), l.y+7, local)
	}
	l.y += 15

	for _, session := range s.Sessions {
		l.session(session)
		l.y += 5
	}
	l.y += 5
}

func (l *layout) session(s program.Session) {
	l.setStyle(styleTitle)
	l.ensure(sessionReserve)

	l.c.SetDrawColor(colorDivider)
	l.c.SetLineWidth(0.2)
	l.c.Line(sessionX, l.y, l.width-sessionX, l.y)
	l.y += 8

	l.badges(s)

	l.paragraph(program.SessionTitle(s), styleTitle, sessionX, l.contentWidth())
	l.y += 3

	if organizer := strings.TrimSpace(s.Organizer); organizer != "" {
		l.setStyle(styleOrganizer.WithBold(true))
		l.ensure(lineHeight)
		l.c.Text(sessionX, l.y, organizerLabel)
		l.paragraph(organizer, styleOrganizer, organizerValueX, l.contentWidth()-(organizerValueX-sessionX))
		l.y += 1.5
	}

	if segments := richtext.Flatten(s.Preamble); len(segments) > 0 {
		l.flow(segments, styleBody)
		l.y += 3
	}
	if segments := richtext.Flatten(s.Speakers); len(segments) > 0 {
		l.flow(segments, styleSpeakers)
		l.y += 3
	}
}

// badges paints the hall and theme chips on one row. Chips never wrap; a chip
// that would overflow the row is shortened.
func (l *layout) badges(s program.Session) {
	type chip struct {
		text string
		fill Color
	}
	chips := make([]chip, 0, 2)
	if hall := strings.TrimSpace(s.VenueHall); hall != "" {
		chips = append(chips, chip{hall, colorPrimary})
	}
	if theme := strings.TrimSpace(s.Theme); theme != "" {
		chips = append(chips, chip{theme, colorAccent})
	}
	if len(chips) == 0 {
		return
	}

	l.setStyle(styleBadge)
	l.ensure(lineHeight)
	right := l.width - sessionX
	x := sessionX
	for _, ch := range chips {
		text := l.fit(ch.text, styleBadge, right-x-6)
		if text == "" {
			break
		}
		l.setStyle(styleBadge)
		w := l.c.TextWidth(text) + 6
		l.c.SetFillColor(ch.fill)
		l.c.RoundedRect(x, l.y-3, w, 6, 1, "F")
		l.c.Text(x+3, l.y+1, text)
		x += w + badgeGap
	}
	l.y += 8
}

func (l *layout) flow(segments []richtext.TextSegment, s Style) {
	f := &textFlow{l: l, style: s, x: sessionX, width: l.contentWidth()}
	f.b.measure = l.measure(s)
	f.write(segments)
}

// textFlow lays out flattened rich text. Bullets open a hanging indent that
// lasts until the next newline.
type textFlow struct {
	l            *layout
	style        Style
	x            float64
	width        float64
	b            lineBuilder
	list         bool
	bulletOpen   bool
	pendingSpace bool
}

func (f *textFlow) write(segments []richtext.TextSegment) {
	for _, seg := range segments {
		switch seg.Kind {
		case richtext.SegmentNewline:
			f.flush()
			if f.bulletOpen {
				f.l.y += lineHeight
				f.bulletOpen = false
			}
			f.list = false
			f.pendingSpace = false
			f.l.y += paragraphGap
		case richtext.SegmentBullet:
			f.flush()
			if f.bulletOpen {
				f.l.y += lineHeight
			}
			f.list = true
			f.pendingSpace = false
			f.l.setStyle(f.style.WithBold(false))
			f.l.ensure(lineHeight)
			f.l.c.Text(f.x+2, f.l.y, bulletGlyph)
			f.bulletOpen = true
		case richtext.SegmentText:
			for _, w := range splitWords(seg.Text, seg.Bold, f.pendingSpace) {
				if !f.b.empty() && f.b.projected(w) > f.available() {
					f.flush()
				}
				f.b.add(w)
			}
			f.pendingSpace = endsWithSpace(seg.Text)
		}
	}
	f.flush()
	if f.bulletOpen {
		f.l.y += lineHeight
		f.bulletOpen = false
	}
}

func (f *textFlow) available() float64 {
	if f.list {
		return f.width - bulletIndent
	}
	return f.width
}

func (f *textFlow) flush() {
	if f.b.empty() {
		return
	}
	ln := f.b.take()
	f.l.setStyle(f.style)
	f.l.ensure(lineHeight)
	x := f.x
	if f.list {
		x += bulletIndent
	}
	f.l.paintLine(ln, x, f.style)
	f.l.y += lineHeight
	f.bulletOpen = false
}
