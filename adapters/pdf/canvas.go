package programpdf

import (
	"bytes"
	"io"

	"github.com/go-pdf/fpdf"
)

const fontFamily = "Helvetica"

// canvas is the drawing surface the layout writes to. Coordinates are in
// millimeters from the top-left corner.
type canvas interface {
	AddPage()
	PageSize() (width, height float64)
	SetFont(style string, size float64)
	SetTextColor(c Color)
	SetFillColor(c Color)
	SetDrawColor(c Color)
	SetLineWidth(width float64)
	Text(x, y float64, text string)
	TextWidth(text string) float64
	Rect(x, y, w, h float64, style string)
	RoundedRect(x, y, w, h, radius float64, style string)
	Line(x1, y1, x2, y2 float64)
	RegisterImage(name string, data []byte)
	Image(name string, x, y, w, h float64)
	Output(w io.Writer) error
	Err() error
}

type fpdfCanvas struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func newFPDFCanvas(title string) *fpdfCanvas {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("go-program", true)
	if title != "" {
		pdf.SetTitle(title, true)
	}
	pdf.SetFont(fontFamily, "", 10)
	return &fpdfCanvas{
		pdf: pdf,
		tr:  pdf.UnicodeTranslatorFromDescriptor(""),
	}
}

func (c *fpdfCanvas) AddPage() { c.pdf.AddPage() }

func (c *fpdfCanvas) PageSize() (float64, float64) { return c.pdf.GetPageSize() }

func (c *fpdfCanvas) SetFont(style string, size float64) { c.pdf.SetFont(fontFamily, style, size) }

func (c *fpdfCanvas) SetTextColor(col Color) { c.pdf.SetTextColor(col.R, col.G, col.B) }

func (c *fpdfCanvas) SetFillColor(col Color) { c.pdf.SetFillColor(col.R, col.G, col.B) }

func (c *fpdfCanvas) SetDrawColor(col Color) { c.pdf.SetDrawColor(col.R, col.G, col.B) }

func (c *fpdfCanvas) SetLineWidth(width float64) { c.pdf.SetLineWidth(width) }

func (c *fpdfCanvas) Text(x, y float64, text string) { c.pdf.Text(x, y, c.tr(text)) }

func (c *fpdfCanvas) TextWidth(text string) float64 { return c.pdf.GetStringWidth(c.tr(text)) }

func (c *fpdfCanvas) Rect(x, y, w, h float64, style string) { c.pdf.Rect(x, y, w, h, style) }

func (c *fpdfCanvas) RoundedRect(x, y, w, h, radius float64, style string) {
	c.pdf.RoundedRect(x, y, w, h, radius, "1234", style)
}

func (c *fpdfCanvas) Line(x1, y1, x2, y2 float64) { c.pdf.Line(x1, y1, x2, y2) }

func (c *fpdfCanvas) RegisterImage(name string, data []byte) {
	c.pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(data))
}

func (c *fpdfCanvas) Image(name string, x, y, w, h float64) {
	c.pdf.ImageOptions(name, x, y, w, h, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
}

func (c *fpdfCanvas) Output(w io.Writer) error { return c.pdf.Output(w) }

func (c *fpdfCanvas) Err() error { return c.pdf.Error() }
