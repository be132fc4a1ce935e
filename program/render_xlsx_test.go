package program

import (
	"bytes"
	"context"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestXLSXRenderer_SheetPerDay(t *testing.T) {
	bundle := sampleBundle()
	bundle.Sessions[0].Preamble = "<p>Welcome <strong>all</strong></p>"
	buf := &bytes.Buffer{}

	stats, err := XLSXRenderer{}.Render(context.Background(), RenderInput{
		Conference: bundle.Conference,
		Program:    bundle.Program,
		Sessions:   bundle.Sessions,
		Options:    RenderOptions{Format: FormatOptions{Timezone: "UTC"}},
	}, buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if stats.Pages != 2 || stats.Sessions != 3 || stats.Bytes == 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	file, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	sheets := file.GetSheetList()
	if len(sheets) != 2 || sheets[0] != "Day 1 - Oct 20" || sheets[1] != "Day 2 - Oct 21" {
		t.Fatalf("unexpected sheets %v", sheets)
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		t.Fatalf("get rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "Time (EAT)" || rows[0][4] != "Title" {
		t.Fatalf("unexpected header %v", rows[0])
	}
	first := rows[1]
	if first[0] != "10:00 AM - 11:00 AM" || first[1] != "07:00 AM - 08:00 AM (UTC)" {
		t.Fatalf("unexpected time columns %v", first)
	}
	if first[2] != "Hall A" || first[4] != "Opening" || first[6] != "Welcome all" {
		t.Fatalf("unexpected session row %v", first)
	}
}

func TestXLSXRenderer_EmptyProgram(t *testing.T) {
	bundle := sampleBundle()
	buf := &bytes.Buffer{}
	stats, err := XLSXRenderer{}.Render(context.Background(), RenderInput{
		Conference: bundle.Conference,
		Program:    bundle.Program,
		Options:    RenderOptions{XLSX: XLSXOptions{OmitHeaders: true}},
	}, buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if stats.Pages != 1 || stats.Sessions != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	file, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	if sheets := file.GetSheetList(); len(sheets) != 1 || sheets[0] != "Program" {
		t.Fatalf("unexpected sheets %v", sheets)
	}
}

func TestXLSXRenderer_RequiresProgram(t *testing.T) {
	_, err := XLSXRenderer{}.Render(context.Background(), RenderInput{Conference: &Conference{}}, &bytes.Buffer{})
	if KindFromError(err) != KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
