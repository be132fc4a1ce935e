package sourcebun

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-program/program"
	"github.com/uptrace/bun"
)

// Source loads conference programs from a Bun-backed database.
type Source struct {
	DB *bun.DB
}

// NewSource creates a Bun-backed source.
func NewSource(db *bun.DB) *Source {
	return &Source{DB: db}
}

// Migrate creates the program tables when they do not exist.
func (s *Source) Migrate(ctx context.Context) error {
	if s == nil || s.DB == nil {
		return program.NewError(program.KindNotImpl, "source database not configured", nil)
	}
	models := []any{(*conferenceModel)(nil), (*programModel)(nil), (*sessionModel)(nil)}
	for _, model := range models {
		if _, err := s.DB.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Load returns the selected conference, its published program and the
// program's published sessions ordered by day and start time.
func (s *Source) Load(ctx context.Context, query program.SourceQuery) (program.Bundle, error) {
	if s == nil || s.DB == nil {
		return program.Bundle{}, program.NewError(program.KindNotImpl, "source database not configured", nil)
	}

	conf := new(conferenceModel)
	q := s.DB.NewSelect().Model(conf)
	if query.ConferenceID != "" {
		q = q.Where("id = ?", query.ConferenceID)
	} else {
		q = q.Where("is_active = ?", true).Order("start_date DESC")
	}
	if err := q.Limit(1).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return program.Bundle{}, program.NewError(program.KindNotFound, "conference not found", nil)
		}
		return program.Bundle{}, err
	}

	prog := new(programModel)
	err := s.DB.NewSelect().Model(prog).
		Where("conference_id = ?", conf.ID).
		Where("UPPER(status) = ?", program.StatusPublished).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return program.Bundle{}, program.NewError(program.KindNotFound, fmt.Sprintf("no published program for conference %q", conf.ID), nil)
		}
		return program.Bundle{}, err
	}

	models := make([]sessionModel, 0)
	err = s.DB.NewSelect().Model(&models).
		Where("program_id = ?", prog.ID).
		Where("UPPER(status) = ?", program.StatusPublished).
		OrderExpr("day ASC, start_time ASC").
		Scan(ctx)
	if err != nil {
		return program.Bundle{}, err
	}

	loadedProgram, err := prog.toProgram()
	if err != nil {
		return program.Bundle{}, err
	}
	sessions := make([]program.Session, len(models))
	for i, model := range models {
		sessions[i] = model.toSession()
	}
	program.SortSessions(sessions)

	loadedConference := conf.toConference()
	return program.Bundle{
		Conference: &loadedConference,
		Program:    &loadedProgram,
		Sessions:   sessions,
	}, nil
}

// SaveConference inserts or replaces a conference.
func (s *Source) SaveConference(ctx context.Context, conf program.Conference) error {
	model := modelFromConference(conf)
	_, err := s.DB.NewInsert().Model(&model).On("CONFLICT (id) DO UPDATE").
		Set("title = EXCLUDED.title").
		Set("start_date = EXCLUDED.start_date").
		Set("end_date = EXCLUDED.end_date").
		Set("location = EXCLUDED.location").
		Set("venue = EXCLUDED.venue").
		Set("is_active = EXCLUDED.is_active").
		Exec(ctx)
	return err
}

// SaveProgram inserts or replaces a program.
func (s *Source) SaveProgram(ctx context.Context, prog program.Program) error {
	model, err := modelFromProgram(prog)
	if err != nil {
		return err
	}
	_, err = s.DB.NewInsert().Model(&model).On("CONFLICT (id) DO UPDATE").
		Set("conference_id = EXCLUDED.conference_id").
		Set("title = EXCLUDED.title").
		Set("status = EXCLUDED.status").
		Set("days_count = EXCLUDED.days_count").
		Set("venue_halls = EXCLUDED.venue_halls").
		Exec(ctx)
	return err
}

// SaveSessions inserts sessions.
func (s *Source) SaveSessions(ctx context.Context, sessions ...program.Session) error {
	if len(sessions) == 0 {
		return nil
	}
	models := make([]sessionModel, len(sessions))
	for i, session := range sessions {
		models[i] = modelFromSession(session)
	}
	_, err := s.DB.NewInsert().Model(&models).Exec(ctx)
	return err
}

type conferenceModel struct {
	bun.BaseModel `bun:"table:conferences,alias:c"`

	ID        string    `bun:",pk"`
	Title     string    `bun:",notnull"`
	StartDate time.Time `bun:"start_date,nullzero"`
	EndDate   time.Time `bun:"end_date,nullzero"`
	Location  string    `bun:"location"`
	Venue     string    `bun:"venue"`
	IsActive  bool      `bun:"is_active,notnull"`
}

type programModel struct {
	bun.BaseModel `bun:"table:programs,alias:p"`

	ID           string `bun:",pk"`
	ConferenceID string `bun:"conference_id,notnull"`
	Title        string `bun:"title"`
	Status       string `bun:"status,notnull"`
	DaysCount    int    `bun:"days_count"`
	VenueHalls   []byte `bun:"venue_halls"`
}

type sessionModel struct {
	bun.BaseModel `bun:"table:sessions,alias:s"`

	ID        string    `bun:",pk"`
	ProgramID string    `bun:"program_id,notnull"`
	Day       int       `bun:"day,notnull"`
	StartTime time.Time `bun:"start_time,nullzero"`
	ToTime    time.Time `bun:"to_time,nullzero"`
	VenueHall string    `bun:"venue_hall"`
	Theme     string    `bun:"theme"`
	Title     string    `bun:"title"`
	Organizer string    `bun:"organizer"`
	Preamble  string    `bun:"preamble"`
	Speakers  string    `bun:"speakers"`
	Status    string    `bun:"status,notnull"`
}

func modelFromConference(conf program.Conference) conferenceModel {
	return conferenceModel{
		ID:        conf.ID,
		Title:     conf.Title,
		StartDate: utc(conf.StartDate),
		EndDate:   utc(conf.EndDate),
		Location:  conf.Location,
		Venue:     conf.Venue,
		IsActive:  conf.IsActive,
	}
}

func (m conferenceModel) toConference() program.Conference {
	return program.Conference{
		ID:        m.ID,
		Title:     m.Title,
		StartDate: m.StartDate,
		EndDate:   m.EndDate,
		Location:  m.Location,
		Venue:     m.Venue,
		IsActive:  m.IsActive,
	}
}

func modelFromProgram(prog program.Program) (programModel, error) {
	halls, err := json.Marshal(prog.VenueHalls)
	if err != nil {
		return programModel{}, err
	}
	return programModel{
		ID:           prog.ID,
		ConferenceID: prog.ConferenceID,
		Title:        prog.Title,
		Status:       prog.Status,
		DaysCount:    prog.DaysCount,
		VenueHalls:   halls,
	}, nil
}

func (m programModel) toProgram() (program.Program, error) {
	prog := program.Program{
		ID:           m.ID,
		ConferenceID: m.ConferenceID,
		Title:        m.Title,
		Status:       m.Status,
		DaysCount:    m.DaysCount,
	}
	if len(m.VenueHalls) > 0 {
		if err := json.Unmarshal(m.VenueHalls, &prog.VenueHalls); err != nil {
			return program.Program{}, err
		}
	}
	return prog, nil
}

func modelFromSession(session program.Session) sessionModel {
	return sessionModel{
		ID:        session.ID,
		ProgramID: session.ProgramID,
		Day:       session.Day,
		StartTime: utc(session.StartTime),
		ToTime:    utc(session.ToTime),
		VenueHall: session.VenueHall,
		Theme:     session.Theme,
		Title:     session.Title,
		Organizer: session.Organizer,
		Preamble:  session.Preamble,
		Speakers:  session.Speakers,
		Status:    session.Status,
	}
}

func (m sessionModel) toSession() program.Session {
	return program.Session{
		ID:        m.ID,
		ProgramID: m.ProgramID,
		Day:       m.Day,
		StartTime: m.StartTime,
		ToTime:    m.ToTime,
		VenueHall: m.VenueHall,
		Theme:     m.Theme,
		Title:     m.Title,
		Organizer: m.Organizer,
		Preamble:  m.Preamble,
		Speakers:  m.Speakers,
		Status:    m.Status,
	}
}

func utc(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}
