package program

import (
	"context"
	"encoding/json"
	"io"

	"github.com/goliatone/go-program/richtext"
)

// EmbedView is the schedule as the public embed page shows it.
type EmbedView struct {
	Conference EmbedConference `json:"conference"`
	Program    EmbedProgram    `json:"program"`
	Timezone   string          `json:"timezone"`
	Days       []EmbedDay      `json:"days"`
}

// EmbedConference holds the cover details.
type EmbedConference struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	DateRange string `json:"dateRange,omitempty"`
	Location  string `json:"location,omitempty"`
	Venue     string `json:"venue,omitempty"`
}

// EmbedProgram holds program metadata.
type EmbedProgram struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Status     string   `json:"status,omitempty"`
	DaysCount  int      `json:"daysCount"`
	VenueHalls []string `json:"venueHalls,omitempty"`
}

// EmbedDay is one conference day.
type EmbedDay struct {
	Day       int         `json:"day"`
	Date      string      `json:"date,omitempty"`
	ShortDate string      `json:"shortDate,omitempty"`
	Slots     []EmbedSlot `json:"slots"`
}

// EmbedSlot is a time slot with both clock renderings.
type EmbedSlot struct {
	Start    ClockTimes     `json:"start"`
	End      ClockTimes     `json:"end"`
	Sessions []EmbedSession `json:"sessions"`
}

// EmbedSession carries display fields. Preamble and Speakers hold plain
// text; the Rich variants keep bold and list structure as segments.
type EmbedSession struct {
	ID           string         `json:"id"`
	VenueHall    string         `json:"venueHall,omitempty"`
	Theme        string         `json:"theme,omitempty"`
	Title        string         `json:"title"`
	Organizer    string         `json:"organizer,omitempty"`
	Preamble     string         `json:"preamble,omitempty"`
	Speakers     string         `json:"speakers,omitempty"`
	PreambleRich []EmbedSegment `json:"preambleRich,omitempty"`
	SpeakersRich []EmbedSegment `json:"speakersRich,omitempty"`
}

// EmbedSegment is one flattened rich-text unit: "text", "newline" or
// "bullet".
type EmbedSegment struct {
	Kind     string `json:"kind"`
	Text     string `json:"text,omitempty"`
	Bold     bool   `json:"bold,omitempty"`
	ListItem bool   `json:"listItem,omitempty"`
}

func embedSegments(src string) []EmbedSegment {
	segments := richtext.Flatten(src)
	if len(segments) == 0 {
		return nil
	}
	out := make([]EmbedSegment, 0, len(segments))
	for _, seg := range segments {
		out = append(out, EmbedSegment{Kind: seg.Kind.String(), Text: seg.Text, Bold: seg.Bold, ListItem: seg.ListItem})
	}
	return out
}

// BuildEmbedView groups the input into the embed view.
func BuildEmbedView(in RenderInput, times TimeFormatter) EmbedView {
	view := EmbedView{Days: make([]EmbedDay, 0)}
	if times.Local != nil {
		view.Timezone = times.Local.String()
	}
	if in.Conference != nil {
		view.Conference = EmbedConference{
			ID:        in.Conference.ID,
			Title:     in.Conference.Title,
			DateRange: FormatDateRange(in.Conference.StartDate, in.Conference.EndDate),
			Location:  in.Conference.Location,
			Venue:     in.Conference.Venue,
		}
	}
	if in.Program != nil {
		view.Program = EmbedProgram{
			ID:         in.Program.ID,
			Title:      in.Program.Title,
			Status:     in.Program.Status,
			DaysCount:  DayCount(in.Program, in.Sessions),
			VenueHalls: in.Program.VenueHalls,
		}
	}

	for _, day := range BuildDays(in.Conference, in.Program, in.Sessions) {
		embedDay := EmbedDay{
			Day:       day.Number,
			Date:      FormatDate(day.Date),
			ShortDate: FormatDayDate(day.Date),
			Slots:     make([]EmbedSlot, 0, len(day.Slots)),
		}
		for _, slot := range day.Slots {
			embedSlot := EmbedSlot{
				Start:    times.Format(slot.StartTime),
				End:      times.Format(slot.ToTime),
				Sessions: make([]EmbedSession, 0, len(slot.Sessions)),
			}
			for _, session := range slot.Sessions {
				embedSlot.Sessions = append(embedSlot.Sessions, EmbedSession{
					ID:           session.ID,
					VenueHall:    session.VenueHall,
					Theme:        session.Theme,
					Title:        SessionTitle(session),
					Organizer:    session.Organizer,
					Preamble:     richtext.StripToPlainText(session.Preamble),
					Speakers:     richtext.StripToPlainText(session.Speakers),
					PreambleRich: embedSegments(session.Preamble),
					SpeakersRich: embedSegments(session.Speakers),
				})
			}
			embedDay.Slots = append(embedDay.Slots, embedSlot)
		}
		view.Days = append(view.Days, embedDay)
	}
	return view
}

// JSONRenderer writes the embed view as JSON.
type JSONRenderer struct{}

// Render encodes the embed view to w.
func (r JSONRenderer) Render(ctx context.Context, in RenderInput, w io.Writer) (RenderStats, error) {
	if in.Conference == nil || in.Program == nil {
		return RenderStats{}, NewError(KindValidation, "program json requires conference and program", nil)
	}
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return RenderStats{}, err
		}
	}
	times, err := TimeFormatterFor(in.Options.Format)
	if err != nil {
		return RenderStats{}, err
	}

	view := BuildEmbedView(in, times)
	stats := RenderStats{Pages: len(view.Days)}
	for _, day := range view.Days {
		for _, slot := range day.Slots {
			stats.Sessions += len(slot.Sessions)
		}
	}

	cw := &countingWriter{w: w}
	encoder := json.NewEncoder(cw)
	if in.Options.JSON.Indent {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(view); err != nil {
		return stats, err
	}
	stats.Bytes = cw.count
	return stats, nil
}
