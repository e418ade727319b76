// Package pdf serializes layout instructions into PDF bytes.
//
// The emitter is a thin adapter: it paints instructions strictly in the
// order given, so later instructions land on top of earlier ones. All
// placement decisions belong to the layout engine; nothing here measures,
// wraps, or repositions content.
package pdf

import (
	"bytes"
	"fmt"
	"os"

	"github.com/jung-kurt/gofpdf"

	"github.com/elevatehq/invoicer/layout"
)

// Emitter renders instruction sequences to PDF. It is stateless and safe
// for concurrent use.
type Emitter struct{}

// New creates a PDF emitter.
func New() *Emitter { return &Emitter{} }

// Emit serializes the instruction sequence onto pages of the given
// geometry and returns the document bytes.
func (e *Emitter) Emit(page layout.Page, ins []layout.Instruction) ([]byte, error) {
	doc := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: page.Width, Ht: page.Height},
	})
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)
	doc.AddPage()

	for _, in := range ins {
		switch v := in.(type) {
		case layout.Text:
			e.text(doc, page, v)
		case layout.Rect:
			doc.SetFillColor(int(v.Fill.R), int(v.Fill.G), int(v.Fill.B))
			doc.Rect(v.X, v.Y, v.W, v.H, "F")
		case layout.RoundedRect:
			doc.SetFillColor(int(v.Fill.R), int(v.Fill.G), int(v.Fill.B))
			style := "F"
			if v.Stroke != nil {
				doc.SetDrawColor(int(v.Stroke.R), int(v.Stroke.G), int(v.Stroke.B))
				style = "FD"
			}
			doc.RoundedRect(v.X, v.Y, v.W, v.H, v.Radius, "1234", style)
		case layout.Line:
			doc.SetDrawColor(int(v.Color.R), int(v.Color.G), int(v.Color.B))
			doc.SetLineWidth(v.Width)
			doc.Line(v.X1, v.Y1, v.X2, v.Y2)
		case layout.Image:
			// A missing or unreadable logo never breaks the document.
			if _, err := os.Stat(v.Ref); err != nil {
				continue
			}
			doc.ImageOptions(v.Ref, v.X, v.Y, v.W, v.H, false,
				gofpdf.ImageOptions{ReadDpi: true}, 0, "")
		case layout.PageBreak:
			doc.AddPage()
		default:
			return nil, fmt.Errorf("pdf: unknown instruction %T", in)
		}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: emit document: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *Emitter) text(doc *gofpdf.Fpdf, page layout.Page, t layout.Text) {
	family, style := splitFont(t.Font)
	doc.SetFont(family, style, t.Size)
	doc.SetTextColor(int(t.Color.R), int(t.Color.G), int(t.Color.B))

	width := t.Width
	if width == 0 {
		width = page.Width - t.X
	}

	doc.SetXY(t.X, t.Y)
	doc.CellFormat(width, t.Size*1.2, t.Content, "", 0, alignString(t.Align), false, 0, "")
}

// splitFont maps pdfkit-style font names onto gofpdf's family+style pairs.
func splitFont(name string) (string, string) {
	switch name {
	case layout.HelveticaBold:
		return "Helvetica", "B"
	case layout.Helvetica, "":
		return "Helvetica", ""
	default:
		return name, ""
	}
}

func alignString(a layout.Align) string {
	switch a {
	case layout.AlignCenter:
		return "C"
	case layout.AlignRight:
		return "R"
	default:
		return "L"
	}
}
