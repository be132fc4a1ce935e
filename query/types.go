package query

import (
	"strings"
	"time"

	"github.com/goliatone/go-errors"
)

// ProgramSchedule fetches the grouped schedule of a conference.
type ProgramSchedule struct {
	ConferenceID string
	Day          int
	Hall         string
	Timezone     string
}

func (ProgramSchedule) Type() string { return "program:schedule" }

func (msg ProgramSchedule) Validate() error {
	if msg.Day < 0 {
		return errors.New("day must not be negative", errors.CategoryValidation).
			WithTextCode("INVALID_DAY")
	}
	if tz := strings.TrimSpace(msg.Timezone); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return errors.Wrap(err, errors.CategoryValidation, "invalid timezone").
				WithTextCode("INVALID_TIMEZONE")
		}
	}
	return nil
}

// StoredPrograms lists stored program documents.
type StoredPrograms struct {
	Prefix string
}

func (StoredPrograms) Type() string { return "program:stored" }

func (StoredPrograms) Validate() error { return nil }
