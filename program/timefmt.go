package program

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"
)

const (
	// EventTimezone is the conference reference zone (East Africa Time).
	EventTimezone = "Africa/Kampala"
	// EventZoneLabel is the short label printed next to event clock times.
	EventZoneLabel = "EAT"

	clockLayout = "03:04 PM"
)

var eventLocation = loadEventLocation()

func loadEventLocation() *time.Location {
	loc, err := time.LoadLocation(EventTimezone)
	if err != nil {
		return time.FixedZone(EventZoneLabel, 3*60*60)
	}
	return loc
}

// EventLocation returns the fixed event zone.
func EventLocation() *time.Location {
	return eventLocation
}

// ClockTimes is an instant rendered in the event zone and the viewer zone.
type ClockTimes struct {
	EventZone string `json:"eventZone"`
	LocalZone string `json:"localZone"`
	ZoneLabel string `json:"zoneLabel"`
}

// SameClock reports whether both zones show the same wall clock.
func (c ClockTimes) SameClock() bool {
	return c.EventZone == c.LocalZone
}

// TimeFormatter renders instants for the event zone and a viewer zone.
type TimeFormatter struct {
	Event *time.Location
	Local *time.Location
}

// NewTimeFormatter creates a formatter for the given viewer zone. A nil zone
// uses time.Local.
func NewTimeFormatter(local *time.Location) TimeFormatter {
	if local == nil {
		local = time.Local
	}
	return TimeFormatter{Event: eventLocation, Local: local}
}

// TimeFormatterFor resolves the viewer zone from format options.
func TimeFormatterFor(opts FormatOptions) (TimeFormatter, error) {
	if opts.Viewer != nil {
		return NewTimeFormatter(opts.Viewer), nil
	}
	if tz := strings.TrimSpace(opts.Timezone); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return TimeFormatter{}, NewError(KindValidation, "invalid timezone", err)
		}
		return NewTimeFormatter(loc), nil
	}
	return NewTimeFormatter(nil), nil
}

// Format renders t in both zones. The zero time yields empty strings.
func (f TimeFormatter) Format(t time.Time) ClockTimes {
	if t.IsZero() {
		return ClockTimes{}
	}
	local := t.In(f.local())
	return ClockTimes{
		EventZone: t.In(f.event()).Format(clockLayout),
		LocalZone: local.Format(clockLayout),
		ZoneLabel: zoneLabel(local),
	}
}

// FormatString parses an ISO-8601 instant and renders it. Empty or
// unparseable input yields empty strings.
func (f TimeFormatter) FormatString(iso string) ClockTimes {
	t, ok := ParseInstant(iso)
	if !ok {
		return ClockTimes{}
	}
	return f.Format(t)
}

// EventClock renders t in the event zone only.
func (f TimeFormatter) EventClock(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(f.event()).Format(clockLayout)
}

func (f TimeFormatter) event() *time.Location {
	if f.Event == nil {
		return eventLocation
	}
	return f.Event
}

func (f TimeFormatter) local() *time.Location {
	if f.Local == nil {
		return time.Local
	}
	return f.Local
}

// zoneLabel returns the zone abbreviation, rewriting numeric abbreviations
// such as "+03" or "-0530" into "GMT+3" and "GMT-5:30".
func zoneLabel(t time.Time) string {
	name, offset := t.Zone()
	name = strings.TrimSpace(name)
	if name != "" && name[0] != '+' && name[0] != '-' {
		return name
	}
	if offset == 0 {
		return "GMT"
	}
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	hours := offset / 3600
	minutes := (offset % 3600) / 60
	if minutes == 0 {
		return fmt.Sprintf("GMT%s%d", sign, hours)
	}
	return fmt.Sprintf("GMT%s%d:%02d", sign, hours, minutes)
}

// ParseInstant parses the ISO-8601 layouts the document store emits.
func ParseInstant(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.000-07:00",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}
