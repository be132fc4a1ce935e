package program

import (
	"context"
	"fmt"
	"io"

	"github.com/goliatone/go-program/richtext"
	"github.com/xuri/excelize/v2"
)

const (
	emptySheetName  = "Program"
	excelMaxSheetNm = 31
)

var xlsxHeaders = []string{"Time (EAT)", "Local Time", "Hall", "Theme", "Title", "Organizer", "Description", "Speakers"}

var xlsxColumnWidths = []float64{22, 28, 16, 18, 40, 24, 60, 40}

// XLSXRenderer writes the schedule as a workbook with one sheet per day.
type XLSXRenderer struct{}

// Render writes the workbook to w.
func (r XLSXRenderer) Render(ctx context.Context, in RenderInput, w io.Writer) (RenderStats, error) {
	if in.Conference == nil || in.Program == nil {
		return RenderStats{}, NewError(KindValidation, "program xlsx requires conference and program", nil)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	times, err := TimeFormatterFor(in.Options.Format)
	if err != nil {
		return RenderStats{}, err
	}

	file := excelize.NewFile()
	defer func() {
		_ = file.Close()
	}()

	headerID, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return RenderStats{}, err
	}
	wrapID, err := file.NewStyle(&excelize.Style{Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"}})
	if err != nil {
		return RenderStats{}, err
	}

	days := BuildDays(in.Conference, in.Program, in.Sessions)
	defaultSheet := file.GetSheetName(0)
	stats := RenderStats{}

	if len(days) == 0 {
		file.SetSheetName(defaultSheet, emptySheetName)
		if err := writeXLSXSheet(file, emptySheetName, nil, times, in.Options.XLSX, headerID, wrapID); err != nil {
			return stats, err
		}
		stats.Pages = 1
	}

	for i, day := range days {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		name := xlsxSheetName(day)
		if i == 0 {
			file.SetSheetName(defaultSheet, name)
		} else if _, err := file.NewSheet(name); err != nil {
			return stats, err
		}
		if err := writeXLSXSheet(file, name, day.Slots, times, in.Options.XLSX, headerID, wrapID); err != nil {
			return stats, err
		}
		for _, slot := range day.Slots {
			stats.Sessions += len(slot.Sessions)
		}
		stats.Pages++
	}

	cw := &countingWriter{w: w}
	if _, err := file.WriteTo(cw); err != nil {
		return stats, err
	}
	stats.Bytes = cw.count
	return stats, nil
}

func writeXLSXSheet(file *excelize.File, sheet string, slots []TimeSlot, times TimeFormatter, opts XLSXOptions, headerID, wrapID int) error {
	stream, err := file.NewStreamWriter(sheet)
	if err != nil {
		return err
	}
	for i, width := range xlsxColumnWidths {
		if err := stream.SetColWidth(i+1, i+1, width); err != nil {
			return err
		}
	}

	rowIndex := 1
	if !opts.OmitHeaders {
		headers := make([]interface{}, len(xlsxHeaders))
		for i, label := range xlsxHeaders {
			headers[i] = excelize.Cell{StyleID: headerID, Value: label}
		}
		if err := stream.SetRow(fmt.Sprintf("A%d", rowIndex), headers); err != nil {
			return err
		}
		rowIndex++
	}

	for _, slot := range slots {
		eventRange, localRange := slotRanges(times, slot)
		for _, session := range slot.Sessions {
			values := []string{
				eventRange,
				localRange,
				session.VenueHall,
				session.Theme,
				SessionTitle(session),
				session.Organizer,
				richtext.StripToPlainText(session.Preamble),
				richtext.StripToPlainText(session.Speakers),
			}
			cells := make([]interface{}, len(values))
			for i, value := range values {
				cells[i] = excelize.Cell{StyleID: wrapID, Value: value}
			}
			if err := stream.SetRow(fmt.Sprintf("A%d", rowIndex), cells); err != nil {
				return err
			}
			rowIndex++
		}
	}
	return stream.Flush()
}

// slotRanges returns the event zone range and, when the viewer clock differs,
// the local range with its zone label.
func slotRanges(times TimeFormatter, slot TimeSlot) (string, string) {
	start := times.Format(slot.StartTime)
	end := times.Format(slot.ToTime)
	eventRange := fmt.Sprintf("%s - %s", start.EventZone, end.EventZone)
	if start.EventZone == "" && end.EventZone == "" {
		eventRange = ""
	}
	if start.LocalZone == "" || (start.SameClock() && end.SameClock()) {
		return eventRange, ""
	}
	return eventRange, fmt.Sprintf("%s - %s (%s)", start.LocalZone, end.LocalZone, start.ZoneLabel)
}

func xlsxSheetName(day Day) string {
	name := fmt.Sprintf("Day %d", day.Number)
	if !day.Date.IsZero() {
		name = fmt.Sprintf("Day %d - %s", day.Number, day.Date.In(eventLocation).Format("Jan 2"))
	}
	if len(name) > excelMaxSheetNm {
		name = name[:excelMaxSheetNm]
	}
	return name
}
