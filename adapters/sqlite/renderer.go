package programsqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/goliatone/go-program/program"
	"github.com/goliatone/go-program/richtext"
	_ "modernc.org/sqlite"
)

const (
	defaultTableName    = "sessions"
	conferenceTableName = "conference"
)

var sessionColumns = []string{
	"id", "day", "date", "start_utc", "end_utc", "start_eat", "end_eat",
	"venue_hall", "theme", "title", "organizer", "preamble", "speakers",
}

var conferenceColumns = []string{
	"id", "title", "program_id", "program_title", "status", "start_date", "end_date", "location", "venue", "days_count",
}

// Renderer writes sessions into a SQLite database file.
type Renderer struct {
	TableName string
}

// Render buffers the program into a temp SQLite database and streams it to w.
func (r Renderer) Render(ctx context.Context, in program.RenderInput, w io.Writer) (program.RenderStats, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if in.Conference == nil || in.Program == nil {
		return program.RenderStats{}, program.NewError(program.KindValidation, "program sqlite requires conference and program", nil)
	}
	times, err := program.TimeFormatterFor(in.Options.Format)
	if err != nil {
		return program.RenderStats{}, err
	}

	tableName := strings.TrimSpace(in.Options.SQLite.TableName)
	if tableName == "" {
		tableName = strings.TrimSpace(r.TableName)
	}
	tableName = sanitizeIdentifier(tableName, defaultTableName)
	if strings.EqualFold(tableName, conferenceTableName) {
		return program.RenderStats{}, program.NewError(program.KindValidation, fmt.Sprintf("table name %q is reserved", tableName), nil)
	}

	tempFile, err := os.CreateTemp("", "go-program-*.sqlite")
	if err != nil {
		return program.RenderStats{}, program.NewError(program.KindRender, "sqlite temp file create failed", err)
	}
	path := tempFile.Name()
	if err := tempFile.Close(); err != nil {
		_ = os.Remove(path)
		return program.RenderStats{}, program.NewError(program.KindRender, "sqlite temp file close failed", err)
	}
	defer func() {
		_ = os.Remove(path)
	}()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return program.RenderStats{}, program.NewError(program.KindRender, "sqlite open failed", err)
	}

	stats, err := writeProgram(ctx, db, tableName, in, times)
	if err != nil {
		_ = db.Close()
		return stats, err
	}
	if err := db.Close(); err != nil {
		return stats, program.NewError(program.KindRender, "sqlite close failed", err)
	}

	file, err := os.Open(path)
	if err != nil {
		return stats, program.NewError(program.KindRender, "sqlite temp file open failed", err)
	}
	defer func() {
		_ = file.Close()
	}()

	cw := &countingWriter{w: w}
	if _, err := io.Copy(cw, file); err != nil {
		return program.RenderStats{Sessions: stats.Sessions, Pages: stats.Pages, Bytes: cw.count}, err
	}
	stats.Bytes = cw.count
	return stats, nil
}

func writeProgram(ctx context.Context, db *sql.DB, tableName string, in program.RenderInput, times program.TimeFormatter) (program.RenderStats, error) {
	stats := program.RenderStats{}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return stats, program.NewError(program.KindRender, "sqlite begin transaction failed", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, createSQL(conferenceTableName, conferenceColumns, map[string]string{"days_count": "INTEGER"})); err != nil {
		return stats, program.NewError(program.KindRender, "sqlite create table failed", err)
	}
	if _, err := tx.ExecContext(ctx, createSQL(tableName, sessionColumns, map[string]string{"day": "INTEGER"})); err != nil {
		return stats, program.NewError(program.KindRender, "sqlite create table failed", err)
	}

	conf, prog := in.Conference, in.Program
	if _, err := tx.ExecContext(ctx, insertSQL(conferenceTableName, conferenceColumns),
		conf.ID, conf.Title, prog.ID, prog.Title, prog.Status,
		formatInstant(conf.StartDate), formatInstant(conf.EndDate),
		conf.Location, conf.Venue, program.DayCount(prog, in.Sessions),
	); err != nil {
		return stats, program.NewError(program.KindRender, "sqlite insert failed", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertSQL(tableName, sessionColumns))
	if err != nil {
		return stats, program.NewError(program.KindRender, "sqlite prepare insert failed", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for _, day := range program.BuildDays(conf, prog, in.Sessions) {
		stats.Pages++
		for _, slot := range day.Slots {
			for _, session := range slot.Sessions {
				if err := ctx.Err(); err != nil {
					return stats, err
				}
				if _, err := stmt.ExecContext(ctx,
					session.ID,
					session.Day,
					program.FormatDayDate(day.Date),
					formatInstant(session.StartTime),
					formatInstant(session.ToTime),
					times.EventClock(session.StartTime),
					times.EventClock(session.ToTime),
					session.VenueHall,
					session.Theme,
					program.SessionTitle(session),
					session.Organizer,
					richtext.StripToPlainText(session.Preamble),
					richtext.StripToPlainText(session.Speakers),
				); err != nil {
					return stats, program.NewError(program.KindRender, "sqlite insert failed", err)
				}
				stats.Sessions++
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return stats, program.NewError(program.KindRender, "sqlite commit failed", err)
	}
	return stats, nil
}

func createSQL(table string, columns []string, types map[string]string) string {
	defs := make([]string, len(columns))
	for i, name := range columns {
		sqlType := types[name]
		if sqlType == "" {
			sqlType = "TEXT"
		}
		defs[i] = fmt.Sprintf("%s %s", quoteIdentifier(name), sqlType)
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdentifier(table), strings.Join(defs, ", "))
}

func insertSQL(table string, columns []string) string {
	names := make([]string, len(columns))
	marks := make([]string, len(columns))
	for i, name := range columns {
		names[i] = quoteIdentifier(name)
		marks[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", quoteIdentifier(table), strings.Join(names, ", "), strings.Join(marks, ", "))
}

func formatInstant(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func sanitizeIdentifier(name, fallback string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return fallback
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	sanitized := strings.Trim(b.String(), "_")
	if sanitized == "" {
		sanitized = fallback
	}
	if sanitized[0] >= '0' && sanitized[0] <= '9' {
		sanitized = "t_" + sanitized
	}
	return sanitized
}

type countingWriter struct {
	w     io.Writer
	count int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.count += int64(n)
	return n, err
}
