// Package programpdf lays out a conference program as a paginated A4 PDF.
//
// The renderer draws a cover page, then one page group per conference day
// with time-slot bands and session cards. Rich-text session fields are
// flattened with the richtext package and word-wrapped with measured text
// widths; page breaks re-emit the header and footer chrome and restore the
// style of the phase being drawn.
//
//	renderer := programpdf.Renderer{Logos: []programpdf.LogoSpec{{Name: "MEMD", Source: "public/MEMD.png"}}}
//	doc, err := renderer.Generate(ctx, conf, prog, sessions, program.RenderOptions{})
//
// Each Render call owns its own document state; a Renderer value is safe for
// concurrent use.
package programpdf
