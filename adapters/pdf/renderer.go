package programpdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/goliatone/go-program/program"
)

const (
	// DefaultHeaderTitle is printed on the right of every page header.
	DefaultHeaderTitle = "Conference Program"
	// DefaultDisclaimer is printed at the bottom of the cover page.
	DefaultDisclaimer = "This program is subject to change. Please check for updates regularly."
)

// Renderer lays out a conference program as an A4 PDF.
type Renderer struct {
	HeaderTitle string
	Disclaimer  string
	Logos       []LogoSpec
	Loader      LogoLoader
	Logger      program.Logger
	Now         func() time.Time

	newCanvas func(title string) canvas
}

// Render writes the program PDF to w. Nothing is written when layout fails.
func (r Renderer) Render(ctx context.Context, in program.RenderInput, w io.Writer) (program.RenderStats, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if in.Conference == nil || in.Program == nil {
		return program.RenderStats{}, program.NewError(program.KindValidation, "program pdf requires conference and program", nil)
	}
	if w == nil {
		return program.RenderStats{}, program.NewError(program.KindValidation, "program pdf requires writer", nil)
	}
	times, err := program.TimeFormatterFor(in.Options.Format)
	if err != nil {
		return program.RenderStats{}, err
	}

	loader := r.Loader
	if loader.Logger == nil {
		loader.Logger = r.logger()
	}
	logos := loader.Load(ctx, r.Logos)
	if err := ctx.Err(); err != nil {
		return program.RenderStats{}, err
	}

	data, stats, err := r.build(in, times, logos)
	if err != nil {
		r.logger().Errorf("program pdf: %v", err)
		return program.RenderStats{}, err
	}

	cw := &countingWriter{w: w}
	if _, err := cw.Write(data); err != nil {
		return program.RenderStats{Pages: stats.Pages, Sessions: stats.Sessions, Bytes: cw.count}, err
	}
	stats.Bytes = cw.count
	r.logger().Debugf("program pdf: %d pages, %d sessions, %d bytes", stats.Pages, stats.Sessions, stats.Bytes)
	return stats, nil
}

// Generate renders the program and returns it with its download filename.
func (r Renderer) Generate(ctx context.Context, conf *program.Conference, prog *program.Program, sessions []program.Session, opts program.RenderOptions) (program.Document, error) {
	var buf bytes.Buffer
	stats, err := r.Render(ctx, program.RenderInput{
		Conference: conf,
		Program:    prog,
		Sessions:   sessions,
		Options:    opts,
	}, &buf)
	if err != nil {
		return program.Document{}, err
	}
	return program.Document{
		Format:      program.FormatPDF,
		Filename:    program.Filename(conf, program.FormatPDF, r.now()),
		ContentType: program.ContentType(program.FormatPDF),
		Bytes:       buf.Bytes(),
		Pages:       stats.Pages,
		Sessions:    stats.Sessions,
	}, nil
}

func (r Renderer) build(in program.RenderInput, times program.TimeFormatter, logos []*Logo) (data []byte, stats program.RenderStats, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("layout panic: %v", rec)
		}
		if err != nil {
			data = nil
			stats = program.RenderStats{}
			err = program.NewError(program.KindRender, "failed to generate program pdf", err)
		}
	}()

	title := r.headerTitle()
	c := r.canvas(title)
	specs := r.Logos
	if len(specs) > len(logos) {
		specs = specs[:len(logos)]
	}
	l := newLayout(c, times, title, specs, logos)

	days := program.BuildDays(in.Conference, in.Program, in.Sessions)
	l.cover(in.Conference, in.Program, program.DayCount(in.Program, in.Sessions), len(in.Sessions), r.disclaimer())
	for _, day := range days {
		stats.Sessions += l.day(day)
	}
	stats.Pages = l.page

	if err := c.Err(); err != nil {
		return nil, stats, err
	}
	var buf bytes.Buffer
	if err := c.Output(&buf); err != nil {
		return nil, stats, err
	}
	return buf.Bytes(), stats, nil
}

func (r Renderer) canvas(title string) canvas {
	if r.newCanvas != nil {
		return r.newCanvas(title)
	}
	return newFPDFCanvas(title)
}

func (r Renderer) headerTitle() string {
	if r.HeaderTitle == "" {
		return DefaultHeaderTitle
	}
	return r.HeaderTitle
}

func (r Renderer) disclaimer() string {
	if r.Disclaimer == "" {
		return DefaultDisclaimer
	}
	return r.Disclaimer
}

func (r Renderer) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r Renderer) logger() program.Logger {
	if r.Logger == nil {
		return program.NopLogger{}
	}
	return r.Logger
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
