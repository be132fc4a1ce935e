package program

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const defaultConferenceTitle = "Conference"

var filenameUnsafe = regexp.MustCompile(`[^A-Za-z0-9]`)

// Filename derives "{title}_Program_{year}.{ext}" from the conference title and
// start year. A missing start date falls back to now's year.
func Filename(conf *Conference, format Format, now time.Time) string {
	title := defaultConferenceTitle
	year := now.Year()
	if conf != nil {
		if t := strings.TrimSpace(conf.Title); t != "" {
			title = t
		}
		if !conf.StartDate.IsZero() {
			year = conf.StartDate.In(eventLocation).Year()
		}
	}
	ext := string(format)
	if ext == "" {
		ext = string(FormatPDF)
	}
	return fmt.Sprintf("%s_Program_%04d.%s", filenameUnsafe.ReplaceAllString(title, "_"), year, ext)
}

// ContentType returns the MIME type for a format.
func ContentType(format Format) string {
	switch format {
	case FormatPDF:
		return "application/pdf"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatJSON:
		return "application/json"
	case FormatSQLite:
		return "application/vnd.sqlite3"
	default:
		return "application/octet-stream"
	}
}

// NormalizeFormat coerces format values into known aliases with defaults applied.
func NormalizeFormat(format Format) Format {
	normalized := strings.ToLower(strings.TrimSpace(string(format)))
	switch normalized {
	case "", string(FormatPDF):
		return FormatPDF
	case "excel", "xls":
		return FormatXLSX
	case "db", "sqlite3":
		return FormatSQLite
	default:
		return Format(normalized)
	}
}
