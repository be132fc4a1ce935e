package programhttp

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-program/program"
)

func newTestHandler(t *testing.T, store program.ArtifactStore) *Handler {
	t.Helper()
	start := time.Date(2025, 10, 20, 6, 0, 0, 0, time.UTC)
	source := program.NewMemorySource()
	source.AddConference(program.Conference{ID: "conf-1", Title: "Energy Week", StartDate: start, EndDate: start.AddDate(0, 0, 1), IsActive: true})
	source.AddProgram(program.Program{ID: "prog-1", ConferenceID: "conf-1", Title: "Main", Status: program.StatusPublished, DaysCount: 2})
	source.AddSessions(
		program.Session{ID: "s1", ProgramID: "prog-1", Day: 1, StartTime: start.Add(time.Hour), ToTime: start.Add(2 * time.Hour), VenueHall: "Hall A", Title: "Opening", Status: program.StatusPublished},
		program.Session{ID: "s2", ProgramID: "prog-1", Day: 2, StartTime: start.Add(25 * time.Hour), ToTime: start.Add(26 * time.Hour), VenueHall: "Hall B", Title: "Closing", Status: program.StatusPublished},
	)

	runner := program.NewRunner()
	runner.Source = source
	runner.Store = store
	runner.Now = func() time.Time { return time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC) }
	runner.IDGenerator = func() string { return "doc-1" }

	return NewHandler(Config{Runner: runner, Store: store})
}

func decodeError(t *testing.T, ctx *testContext) errorBody {
	t.Helper()
	var payload errorResponse
	if err := json.NewDecoder(ctx.recorder.Body).Decode(&payload); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return payload.Error
}

func TestRegisterRoutes_UsesBasePath(t *testing.T) {
	handler := NewHandler(Config{BasePath: "/events/program/"})
	routes := &recordingRouter{}
	handler.RegisterRoutes(routes)

	for _, path := range []string{
		"/events/program/download",
		"/events/program/:conferenceID/download",
		"/events/program/artifacts",
		"/events/program/artifacts/:id/:filename",
	} {
		if routes.routes[path] == nil {
			t.Fatalf("expected route %s, got %v", path, routes.routes)
		}
	}
}

func TestDownload_ActiveConferenceJSON(t *testing.T) {
	handler := newTestHandler(t, nil)
	ctx := newTestContext("/programs/download", nil, map[string]string{"format": "json"})

	if err := handler.Download(ctx); err != nil {
		t.Fatalf("download: %v", err)
	}
	if ctx.recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", ctx.recorder.Code)
	}
	if cd := ctx.recorder.Header().Get("Content-Disposition"); !strings.Contains(cd, `filename="Energy_Week_Program_2025.json"`) {
		t.Fatalf("unexpected content disposition %q", cd)
	}
	if ct := ctx.recorder.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if id := ctx.recorder.Header().Get("X-Program-Id"); id != "doc-1" {
		t.Fatalf("unexpected program id %q", id)
	}

	var view program.EmbedView
	if err := json.NewDecoder(ctx.recorder.Body).Decode(&view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(view.Days) != 2 || view.Conference.Title != "Energy Week" {
		t.Fatalf("unexpected view: %+v", view)
	}
}

func TestDownload_FiltersByDayAndConference(t *testing.T) {
	handler := newTestHandler(t, nil)
	ctx := newTestContext("/programs/conf-1/download",
		map[string]string{"conferenceID": "conf-1"},
		map[string]string{"format": "json", "day": "2"})

	if err := handler.Download(ctx); err != nil {
		t.Fatalf("download: %v", err)
	}
	if ctx.recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", ctx.recorder.Code)
	}
	var view program.EmbedView
	if err := json.NewDecoder(ctx.recorder.Body).Decode(&view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	total := 0
	for _, day := range view.Days {
		for _, slot := range day.Slots {
			for _, session := range slot.Sessions {
				total++
				if session.ID != "s2" {
					t.Fatalf("unexpected session %q", session.ID)
				}
			}
		}
	}
	if total != 1 {
		t.Fatalf("expected one session, got %d", total)
	}
}

func TestDownload_ErrorStatus(t *testing.T) {
	handler := newTestHandler(t, nil)

	cases := []struct {
		name   string
		params map[string]string
		query  map[string]string
		status int
		code   string
	}{
		{"unknown conference", map[string]string{"conferenceID": "missing"}, map[string]string{"format": "json"}, http.StatusNotFound, "not_found"},
		{"bad day", nil, map[string]string{"format": "json", "day": "abc"}, http.StatusBadRequest, "validation"},
		{"day out of range", nil, map[string]string{"format": "json", "day": "9"}, http.StatusBadRequest, "validation"},
		{"bad timezone", nil, map[string]string{"format": "json", "tz": "Mars/Base"}, http.StatusBadRequest, "validation"},
		{"store without backend", nil, map[string]string{"format": "json", "store": "true"}, http.StatusBadRequest, "validation"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := newTestContext("/programs/download", tc.params, tc.query)
			if err := handler.Download(ctx); err != nil {
				t.Fatalf("download: %v", err)
			}
			if ctx.recorder.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, ctx.recorder.Code)
			}
			if body := decodeError(t, ctx); body.Code != tc.code {
				t.Fatalf("expected code %q, got %q (%s)", tc.code, body.Code, body.Message)
			}
		})
	}
}

func TestDownload_StoresAndServesArtifact(t *testing.T) {
	store := program.NewMemoryStore()
	handler := newTestHandler(t, store)

	ctx := newTestContext("/programs/download", nil, map[string]string{"format": "json", "store": "1"})
	if err := handler.Download(ctx); err != nil {
		t.Fatalf("download: %v", err)
	}
	rendered := ctx.recorder.Body.String()
	key := ctx.recorder.Header().Get("X-Program-Artifact")
	if key != "programs/doc-1/Energy_Week_Program_2025.json" {
		t.Fatalf("unexpected artifact key %q", key)
	}

	ctx = newTestContext("/programs/artifacts/doc-1/Energy_Week_Program_2025.json",
		map[string]string{"id": "doc-1", "filename": "Energy_Week_Program_2025.json"}, nil)
	if err := handler.Artifact(ctx); err != nil {
		t.Fatalf("artifact: %v", err)
	}
	if ctx.recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", ctx.recorder.Code)
	}
	if ctx.recorder.Body.String() != rendered {
		t.Fatalf("stored artifact differs from rendered document")
	}
	if cd := ctx.recorder.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Fatalf("expected attachment disposition, got %q", cd)
	}
}

func TestArtifact_MissingKeyIsNotFound(t *testing.T) {
	handler := newTestHandler(t, program.NewMemoryStore())
	ctx := newTestContext("/programs/artifacts/doc-9/missing.pdf",
		map[string]string{"id": "doc-9", "filename": "missing.pdf"}, nil)

	if err := handler.Artifact(ctx); err != nil {
		t.Fatalf("artifact: %v", err)
	}
	if ctx.recorder.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", ctx.recorder.Code)
	}
}

func TestArtifacts_ListingUnsupported(t *testing.T) {
	handler := newTestHandler(t, program.NewMemoryStore())
	ctx := newTestContext("/programs/artifacts", nil, nil)

	if err := handler.Artifacts(ctx); err != nil {
		t.Fatalf("artifacts: %v", err)
	}
	if ctx.recorder.Code != http.StatusNotImplemented {
		t.Fatalf("expected 501, got %d", ctx.recorder.Code)
	}
}

func TestStatusForError(t *testing.T) {
	cases := map[program.ErrorKind]int{
		program.KindValidation: http.StatusBadRequest,
		program.KindNotFound:   http.StatusNotFound,
		program.KindTimeout:    http.StatusRequestTimeout,
		program.KindCanceled:   http.StatusConflict,
		program.KindNotImpl:    http.StatusNotImplemented,
		program.KindAsset:      http.StatusBadGateway,
		program.KindRender:     http.StatusInternalServerError,
		program.KindInternal:   http.StatusInternalServerError,
	}
	for kind, want := range cases {
		got := statusForError(program.AsGoError(program.NewError(kind, "boom", nil)))
		if got != want {
			t.Fatalf("%s: expected %d, got %d", kind, want, got)
		}
	}
}
