package command

import (
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-program/program"
)

// GenerateProgram renders a conference program document.
type GenerateProgram struct {
	ConferenceID string
	Format       program.Format
	Day          int
	Hall         string
	Timezone     string
	Store        bool
	Result       *program.Document
}

func (GenerateProgram) Type() string { return "program:generate" }

func (msg GenerateProgram) Validate() error {
	if msg.Day < 0 {
		return errors.New("day must not be negative", errors.CategoryValidation).
			WithTextCode("INVALID_DAY")
	}
	if !knownFormat(msg.Format) {
		return errors.New("unsupported program format", errors.CategoryValidation).
			WithTextCode("INVALID_FORMAT")
	}
	if tz := strings.TrimSpace(msg.Timezone); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return errors.Wrap(err, errors.CategoryValidation, "invalid timezone").
				WithTextCode("INVALID_TIMEZONE")
		}
	}
	return nil
}

// Request converts the message into a runner request.
func (msg GenerateProgram) Request() program.Request {
	return program.Request{
		Query:   program.SourceQuery{ConferenceID: strings.TrimSpace(msg.ConferenceID)},
		Format:  program.NormalizeFormat(msg.Format),
		Day:     msg.Day,
		Hall:    strings.TrimSpace(msg.Hall),
		Options: program.RenderOptions{Format: program.FormatOptions{Timezone: strings.TrimSpace(msg.Timezone)}},
		Store:   msg.Store,
	}
}

// CleanupArtifacts removes stored program documents older than the
// handler's retention window.
type CleanupArtifacts struct {
	Now    time.Time
	Prefix string
	Result *int
}

func (CleanupArtifacts) Type() string { return "program:cleanup" }

func (CleanupArtifacts) Validate() error { return nil }

func knownFormat(format program.Format) bool {
	switch program.NormalizeFormat(format) {
	case program.FormatPDF, program.FormatXLSX, program.FormatJSON, program.FormatSQLite:
		return true
	default:
		return false
	}
}
