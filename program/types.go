package program

import (
	"context"
	"io"
	"time"
)

// Format is the program output format.
type Format string

const (
	FormatPDF    Format = "pdf"
	FormatXLSX   Format = "xlsx"
	FormatJSON   Format = "json"
	FormatSQLite Format = "sqlite"
)

// StatusPublished marks programs and sessions visible to attendees.
const StatusPublished = "PUBLISHED"

// Conference describes the event a program belongs to.
type Conference struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Location  string    `json:"location,omitempty"`
	Venue     string    `json:"venue,omitempty"`
	IsActive  bool      `json:"isActive,omitempty"`
}

// Program is the published schedule of a conference.
type Program struct {
	ID           string   `json:"id"`
	ConferenceID string   `json:"conferenceId"`
	Title        string   `json:"title"`
	Status       string   `json:"status"`
	DaysCount    int      `json:"daysCount"`
	VenueHalls   []string `json:"venueHalls,omitempty"`
}

// Session is a single scheduled item. Preamble and Speakers hold rich text.
type Session struct {
	ID        string    `json:"id"`
	ProgramID string    `json:"programId,omitempty"`
	Day       int       `json:"day"`
	StartTime time.Time `json:"startTime"`
	ToTime    time.Time `json:"toTime"`
	VenueHall string    `json:"venueHall"`
	Theme     string    `json:"theme,omitempty"`
	Title     string    `json:"title"`
	Organizer string    `json:"organizer,omitempty"`
	Preamble  string    `json:"preamble,omitempty"`
	Speakers  string    `json:"speakers,omitempty"`
	Status    string    `json:"status,omitempty"`
}

// TimeSlot groups sessions sharing the same start and end instants.
type TimeSlot struct {
	Key       string
	StartTime time.Time
	ToTime    time.Time
	Sessions  []Session
}

// Day is a conference day with its grouped sessions.
type Day struct {
	Number int
	Date   time.Time
	Slots  []TimeSlot
}

// Bundle is the data a program render needs.
type Bundle struct {
	Conference *Conference
	Program    *Program
	Sessions   []Session
}

// SourceQuery selects the conference to load. An empty ConferenceID selects
// the active conference.
type SourceQuery struct {
	ConferenceID string
}

// Source loads conference data from the backing document store.
type Source interface {
	Load(ctx context.Context, query SourceQuery) (Bundle, error)
}

// SourceFunc adapts a function to a Source.
type SourceFunc func(ctx context.Context, query SourceQuery) (Bundle, error)

func (f SourceFunc) Load(ctx context.Context, query SourceQuery) (Bundle, error) {
	if f == nil {
		return Bundle{}, NewError(KindInternal, "source func is nil", nil)
	}
	return f(ctx, query)
}

// FormatOptions configures time zone rendering.
type FormatOptions struct {
	// Timezone is the viewer IANA zone used for the local clock column.
	Timezone string
	// Viewer overrides Timezone when set.
	Viewer *time.Location
}

// XLSXOptions configures workbook output.
type XLSXOptions struct {
	OmitHeaders bool
}

// SQLiteOptions configures database output.
type SQLiteOptions struct {
	TableName string
}

// JSONOptions configures embed view output.
type JSONOptions struct {
	Indent bool
}

// RenderOptions configures renderer behavior.
type RenderOptions struct {
	Format FormatOptions
	XLSX   XLSXOptions
	JSON   JSONOptions
	SQLite SQLiteOptions
}

// RenderInput is handed to renderers.
type RenderInput struct {
	Conference *Conference
	Program    *Program
	Sessions   []Session
	Options    RenderOptions
}

// RenderStats capture renderer output.
type RenderStats struct {
	Pages    int
	Sessions int
	Bytes    int64
}

// Renderer writes a program document to w.
type Renderer interface {
	Render(ctx context.Context, in RenderInput, w io.Writer) (RenderStats, error)
}

// Request asks the runner for a program document.
type Request struct {
	Query   SourceQuery
	Bundle  *Bundle
	Format  Format
	Day     int
	Hall    string
	Options RenderOptions
	Store   bool
}

// Document is a rendered program artifact.
type Document struct {
	ID          string
	Format      Format
	Filename    string
	ContentType string
	Bytes       []byte
	Pages       int
	Sessions    int
	Artifact    *ArtifactRef
}

// ArtifactMeta captures stored artifact metadata.
type ArtifactMeta struct {
	ContentType string
	Size        int64
	Filename    string
	CreatedAt   time.Time
}

// ArtifactRef references a stored artifact.
type ArtifactRef struct {
	Key  string
	Meta ArtifactMeta
}

// ArtifactStore stores rendered documents.
type ArtifactStore interface {
	Put(ctx context.Context, key string, r io.Reader, meta ArtifactMeta) (ArtifactRef, error)
	Open(ctx context.Context, key string) (io.ReadCloser, ArtifactMeta, error)
	Delete(ctx context.Context, key string) error
}

// Logger provides logging hooks.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Errorf(format string, args ...any)
}

// NopLogger is a no-op logger.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any) {}
func (NopLogger) Infof(string, ...any)  {}
func (NopLogger) Errorf(string, ...any) {}
