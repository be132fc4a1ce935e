package program

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	errorslib "github.com/goliatone/go-errors"
)

type stubRenderer struct {
	got   RenderInput
	calls int
	err   error
}

func (r *stubRenderer) Render(ctx context.Context, in RenderInput, w io.Writer) (RenderStats, error) {
	_ = ctx
	r.calls++
	r.got = in
	if r.err != nil {
		return RenderStats{}, r.err
	}
	n, _ := w.Write([]byte("%PDF-stub"))
	return RenderStats{Pages: 2, Sessions: len(in.Sessions), Bytes: int64(n)}, nil
}

func sampleBundle() Bundle {
	start := time.Date(2025, 10, 20, 6, 0, 0, 0, time.UTC)
	return Bundle{
		Conference: &Conference{ID: "conf-1", Title: "Energy Week", StartDate: start, EndDate: start.AddDate(0, 0, 1), IsActive: true},
		Program:    &Program{ID: "prog-1", ConferenceID: "conf-1", Title: "Main", Status: StatusPublished, DaysCount: 2},
		Sessions: []Session{
			{ID: "s1", ProgramID: "prog-1", Day: 1, StartTime: start.Add(time.Hour), ToTime: start.Add(2 * time.Hour), VenueHall: "Hall A", Title: "Opening", Status: StatusPublished},
			{ID: "s2", ProgramID: "prog-1", Day: 1, StartTime: start.Add(time.Hour), ToTime: start.Add(2 * time.Hour), VenueHall: "Hall B", Title: "Panel", Status: StatusPublished},
			{ID: "s3", ProgramID: "prog-1", Day: 2, StartTime: start.Add(25 * time.Hour), ToTime: start.Add(26 * time.Hour), VenueHall: "Hall A", Title: "Closing", Status: StatusPublished},
		},
	}
}

func newStubRunner(renderer Renderer) *Runner {
	runner := NewRunner()
	_ = runner.Renderers.Register(FormatPDF, renderer)
	runner.Now = func() time.Time { return time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC) }
	runner.IDGenerator = func() string { return "doc-1" }
	return runner
}

func TestRunner_RendersInlineBundle(t *testing.T) {
	renderer := &stubRenderer{}
	runner := newStubRunner(renderer)
	bundle := sampleBundle()

	doc, err := runner.Run(context.Background(), Request{Bundle: &bundle})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if doc.ID != "doc-1" || doc.Format != FormatPDF {
		t.Fatalf("unexpected document %+v", doc)
	}
	if doc.Filename != "Energy_Week_Program_2025.pdf" || doc.ContentType != "application/pdf" {
		t.Fatalf("unexpected filename or content type %q %q", doc.Filename, doc.ContentType)
	}
	if string(doc.Bytes) != "%PDF-stub" || doc.Pages != 2 || doc.Sessions != 3 {
		t.Fatalf("unexpected render result %+v", doc)
	}
	if doc.Artifact != nil {
		t.Fatalf("expected no artifact without store request")
	}
}

func TestRunner_FiltersDayAndHall(t *testing.T) {
	renderer := &stubRenderer{}
	runner := newStubRunner(renderer)
	bundle := sampleBundle()

	if _, err := runner.Run(context.Background(), Request{Bundle: &bundle, Day: 1, Hall: "Hall B"}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(renderer.got.Sessions) != 1 || renderer.got.Sessions[0].ID != "s2" {
		t.Fatalf("unexpected filtered sessions %+v", renderer.got.Sessions)
	}
}

func TestRunner_LoadsFromSourceAndStores(t *testing.T) {
	source := NewMemorySource()
	bundle := sampleBundle()
	source.AddConference(*bundle.Conference)
	source.AddProgram(*bundle.Program)
	source.AddSessions(bundle.Sessions...)

	store := NewMemoryStore()
	runner := newStubRunner(&stubRenderer{})
	runner.Source = source
	runner.Store = store

	doc, err := runner.Run(context.Background(), Request{Format: "pdf", Store: true})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if doc.Artifact == nil || doc.Artifact.Key != "programs/doc-1/Energy_Week_Program_2025.pdf" {
		t.Fatalf("unexpected artifact %+v", doc.Artifact)
	}
	rc, meta, err := store.Open(context.Background(), doc.Artifact.Key)
	if err != nil {
		t.Fatalf("open artifact: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if !bytes.Equal(data, doc.Bytes) || meta.Size != int64(len(doc.Bytes)) || meta.ContentType != "application/pdf" {
		t.Fatalf("unexpected stored artifact %q %+v", data, meta)
	}
}

func TestRunner_Errors(t *testing.T) {
	bundle := sampleBundle()
	noProgram := Bundle{Conference: bundle.Conference}
	badSession := sampleBundle()
	badSession.Sessions[0].ToTime = badSession.Sessions[0].StartTime.Add(-time.Hour)

	cases := []struct {
		name     string
		runner   *Runner
		req      Request
		category errorslib.Category
	}{
		{"missing program", newStubRunner(&stubRenderer{}), Request{Bundle: &noProgram}, errorslib.CategoryValidation},
		{"session ends before start", newStubRunner(&stubRenderer{}), Request{Bundle: &badSession}, errorslib.CategoryValidation},
		{"day out of range", newStubRunner(&stubRenderer{}), Request{Bundle: &bundle, Day: 3}, errorslib.CategoryValidation},
		{"unknown format", newStubRunner(&stubRenderer{}), Request{Bundle: &bundle, Format: "csv"}, errorslib.CategoryNotFound},
		{"no source", newStubRunner(&stubRenderer{}), Request{}, errorslib.CategoryValidation},
		{"store not configured", newStubRunner(&stubRenderer{}), Request{Bundle: &bundle, Store: true}, errorslib.CategoryValidation},
		{"render failure", newStubRunner(&stubRenderer{err: NewError(KindRender, "failed to generate program pdf", errors.New("boom"))}), Request{Bundle: &bundle}, errorslib.CategoryInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.runner.Run(context.Background(), tc.req)
			var mapped *errorslib.Error
			if !errors.As(err, &mapped) {
				t.Fatalf("expected go-errors error, got %T %v", err, err)
			}
			if mapped.Category != tc.category {
				t.Fatalf("expected category %s, got %s (%s)", tc.category, mapped.Category, mapped.Message)
			}
		})
	}
}

func TestRunner_SourceNotFound(t *testing.T) {
	runner := newStubRunner(&stubRenderer{})
	runner.Source = NewMemorySource()
	_, err := runner.Run(context.Background(), Request{})
	var mapped *errorslib.Error
	if !errors.As(err, &mapped) || mapped.Category != errorslib.CategoryNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRunner_JSONFormat(t *testing.T) {
	runner := NewRunner()
	runner.IDGenerator = func() string { return "doc-2" }
	bundle := sampleBundle()

	doc, err := runner.Run(context.Background(), Request{Bundle: &bundle, Format: FormatJSON, Options: RenderOptions{Format: FormatOptions{Timezone: "UTC"}}})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.HasSuffix(doc.Filename, ".json") || doc.ContentType != "application/json" {
		t.Fatalf("unexpected json document %+v", doc)
	}
	var view EmbedView
	if err := json.Unmarshal(doc.Bytes, &view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if len(view.Days) != 2 || doc.Sessions != 3 {
		t.Fatalf("unexpected view %+v", view)
	}
}
