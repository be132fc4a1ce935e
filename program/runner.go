package program

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Runner resolves program data, renders it and optionally stores the result.
type Runner struct {
	Renderers   *RendererRegistry
	Source      Source
	Store       ArtifactStore
	Logger      Logger
	Now         func() time.Time
	IDGenerator func() string
}

// NewRunner creates a runner with the XLSX and JSON renderers registered.
// The PDF and SQLite renderers live in adapter packages and are registered by
// the caller.
func NewRunner() *Runner {
	renderers := NewRendererRegistry()
	_ = renderers.Register(FormatXLSX, XLSXRenderer{})
	_ = renderers.Register(FormatJSON, JSONRenderer{})

	return &Runner{
		Renderers:   renderers,
		Logger:      NopLogger{},
		Now:         time.Now,
		IDGenerator: uuid.NewString,
	}
}

// Run renders a program document.
func (r *Runner) Run(ctx context.Context, req Request) (Document, error) {
	if r == nil {
		return Document{}, AsGoError(NewError(KindInternal, "runner is nil", nil))
	}
	if r.Renderers == nil {
		return Document{}, AsGoError(NewError(KindInternal, "runner renderers are not configured", nil))
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if r.Now == nil {
		r.Now = time.Now
	}
	if r.Logger == nil {
		r.Logger = NopLogger{}
	}
	if r.IDGenerator == nil {
		r.IDGenerator = uuid.NewString
	}

	format := NormalizeFormat(req.Format)
	renderer, ok := r.Renderers.Resolve(format)
	if !ok {
		return Document{}, AsGoError(NewError(KindNotFound, fmt.Sprintf("renderer %q not registered", format), nil))
	}

	bundle, err := r.resolveBundle(ctx, req)
	if err != nil {
		return Document{}, AsGoError(err)
	}
	if err := ValidateBundle(bundle); err != nil {
		return Document{}, AsGoError(err)
	}
	if req.Day < 0 || req.Day > DayCount(bundle.Program, bundle.Sessions) {
		return Document{}, AsGoError(NewError(KindValidation, fmt.Sprintf("day %d is out of range", req.Day), nil))
	}

	sessions := FilterByHall(bundle.Sessions, req.Hall)
	if req.Day > 0 {
		sessions = SessionsByDay(sessions, req.Day)
	}

	id := r.IDGenerator()
	r.Logger.Infof("program %s: rendering %s for %q (%d sessions)", id, format, bundle.Conference.Title, len(sessions))

	var buf bytes.Buffer
	stats, err := renderer.Render(ctx, RenderInput{
		Conference: bundle.Conference,
		Program:    bundle.Program,
		Sessions:   sessions,
		Options:    req.Options,
	}, &buf)
	if err != nil {
		r.Logger.Errorf("program %s: render failed: %v", id, err)
		return Document{}, AsGoError(err)
	}

	doc := Document{
		ID:          id,
		Format:      format,
		Filename:    Filename(bundle.Conference, format, r.Now()),
		ContentType: ContentType(format),
		Bytes:       buf.Bytes(),
		Pages:       stats.Pages,
		Sessions:    stats.Sessions,
	}

	if req.Store {
		if r.Store == nil {
			return Document{}, AsGoError(NewError(KindValidation, "artifact store is not configured", nil))
		}
		key := artifactKey(id, doc.Filename)
		ref, err := r.Store.Put(ctx, key, bytes.NewReader(doc.Bytes), ArtifactMeta{
			ContentType: doc.ContentType,
			Filename:    doc.Filename,
			CreatedAt:   r.Now(),
		})
		if err != nil {
			r.Logger.Errorf("program %s: store failed: %v", id, err)
			return Document{}, AsGoError(err)
		}
		doc.Artifact = &ref
	}

	r.Logger.Infof("program %s: rendered %s (%d bytes, %d pages)", id, doc.Filename, len(doc.Bytes), doc.Pages)
	return doc, nil
}

func (r *Runner) resolveBundle(ctx context.Context, req Request) (Bundle, error) {
	if req.Bundle != nil {
		return *req.Bundle, nil
	}
	if r.Source == nil {
		return Bundle{}, NewError(KindValidation, "program source is not configured", nil)
	}
	bundle, err := r.Source.Load(ctx, req.Query)
	if err != nil {
		return Bundle{}, err
	}
	return bundle, nil
}

// ValidateBundle checks the input shape every renderer relies on.
func ValidateBundle(bundle Bundle) error {
	if bundle.Conference == nil {
		return NewError(KindValidation, "conference is required", nil)
	}
	if bundle.Program == nil {
		return NewError(KindValidation, "program is required", nil)
	}
	if bundle.Program.DaysCount < 0 {
		return NewError(KindValidation, "program days count must not be negative", nil)
	}
	for _, session := range bundle.Sessions {
		if session.Day < 1 {
			return NewError(KindValidation, fmt.Sprintf("session %q has invalid day %d", session.ID, session.Day), nil)
		}
		if !session.StartTime.IsZero() && !session.ToTime.IsZero() && session.ToTime.Before(session.StartTime) {
			return NewError(KindValidation, fmt.Sprintf("session %q ends before it starts", session.ID), nil)
		}
	}
	return nil
}

func artifactKey(id, filename string) string {
	return strings.Join([]string{"programs", id, filename}, "/")
}
