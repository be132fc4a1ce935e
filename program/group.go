package program

import (
	"strings"
	"time"
)

// SlotKey encodes a (start, end) pair. Instants are normalized to UTC so two
// renderings of the same moment share a key.
func SlotKey(start, end time.Time) string {
	return start.UTC().Format(time.RFC3339Nano) + "-" + end.UTC().Format(time.RFC3339Nano)
}

// GroupByTimeSlot partitions sessions into slots in first-seen order. Sessions
// keep their scan order within a slot.
func GroupByTimeSlot(sessions []Session) []TimeSlot {
	if len(sessions) == 0 {
		return nil
	}
	index := make(map[string]int, len(sessions))
	slots := make([]TimeSlot, 0, len(sessions))
	for _, session := range sessions {
		key := SlotKey(session.StartTime, session.ToTime)
		pos, ok := index[key]
		if !ok {
			pos = len(slots)
			index[key] = pos
			slots = append(slots, TimeSlot{
				Key:       key,
				StartTime: session.StartTime,
				ToTime:    session.ToTime,
			})
		}
		slots[pos].Sessions = append(slots[pos].Sessions, session)
	}
	return slots
}

// SessionsByDay returns the sessions scheduled on day.
func SessionsByDay(sessions []Session, day int) []Session {
	out := make([]Session, 0)
	for _, session := range sessions {
		if session.Day == day {
			out = append(out, session)
		}
	}
	return out
}

// FilterByHall keeps sessions in hall. "all" or an empty hall keeps everything.
func FilterByHall(sessions []Session, hall string) []Session {
	hall = strings.TrimSpace(hall)
	if hall == "" || strings.EqualFold(hall, "all") {
		return sessions
	}
	out := make([]Session, 0, len(sessions))
	for _, session := range sessions {
		if session.VenueHall == hall {
			out = append(out, session)
		}
	}
	return out
}

// BuildDays walks days 1..DaysCount and returns the ones with sessions. A
// program without a day count spans up to its latest session day.
func BuildDays(conf *Conference, prog *Program, sessions []Session) []Day {
	if prog == nil {
		return nil
	}
	var start time.Time
	if conf != nil {
		start = conf.StartDate
	}
	count := DayCount(prog, sessions)
	days := make([]Day, 0, count)
	for number := 1; number <= count; number++ {
		daySessions := SessionsByDay(sessions, number)
		if len(daySessions) == 0 {
			continue
		}
		days = append(days, Day{
			Number: number,
			Date:   DayDate(start, number),
			Slots:  GroupByTimeSlot(daySessions),
		})
	}
	return days
}

// DayCount returns the program day count, falling back to the highest
// session day when the program does not declare one.
func DayCount(prog *Program, sessions []Session) int {
	if prog != nil && prog.DaysCount > 0 {
		return prog.DaysCount
	}
	count := 0
	for _, session := range sessions {
		if session.Day > count {
			count = session.Day
		}
	}
	return count
}

// UntitledSession is shown for sessions without a title.
const UntitledSession = "Untitled Session"

// SessionTitle returns the trimmed session title or UntitledSession.
func SessionTitle(session Session) string {
	if title := strings.TrimSpace(session.Title); title != "" {
		return title
	}
	return UntitledSession
}
