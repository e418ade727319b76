// Package layout converts an invoice record into an ordered sequence of
// positioned draw instructions, independent of any output encoding.
//
// Rendering is a pure function: the same record always yields the same
// instruction sequence. Instruction order is paint order; later
// instructions draw on top of earlier ones (the badge rectangle is emitted
// before its centered label).
package layout

// Color is an opaque RGB paint color.
type Color struct {
	R, G, B uint8
}

// RGB builds a Color from 8-bit components.
func RGB(r, g, b uint8) Color { return Color{R: r, G: g, B: b} }

// Palette used by the invoice layout.
var (
	ColorBrand     = RGB(0x1E, 0x3A, 0x8A) // header band, badge, table header
	ColorWhite     = RGB(0xFF, 0xFF, 0xFF)
	ColorBlack     = RGB(0x00, 0x00, 0x00)
	ColorPaleBlue  = RGB(0xF1, 0xF6, 0xFB) // payment box fill
	ColorPaleEdge  = RGB(0xE6, 0xEE, 0xF8) // payment box stroke
	ColorSeparator = RGB(0xE6, 0xE6, 0xE6)
	ColorTableRule = RGB(0xCC, 0xCC, 0xCC)
	ColorRowRule   = RGB(0xF0, 0xF0, 0xF0)
)

// Font names understood by downstream emitters.
const (
	Helvetica     = "Helvetica"
	HelveticaBold = "Helvetica-Bold"
)

// Align positions text within a bounding width.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Page declares the target page size and margin in points.
type Page struct {
	Width  float64
	Height float64
	Margin float64
}

// A4 is the default page: 595.28 x 841.89 pt with a 40 pt margin.
var A4 = Page{Width: 595.28, Height: 841.89, Margin: 40}

// Instruction is one positioned rendering primitive. The concrete types
// are Text, Rect, RoundedRect, Line, Image and PageBreak.
type Instruction interface {
	op()
}

// Text draws a string at an absolute position. When Width is non-zero the
// content is bounded to that width and aligned within it; content never
// paints past X+Width.
type Text struct {
	Content string
	X, Y    float64
	Font    string
	Size    float64
	Color   Color
	Width   float64 // 0 means unbounded
	Align   Align
}

// Rect draws a filled rectangle.
type Rect struct {
	X, Y, W, H float64
	Fill       Color
}

// RoundedRect draws a rectangle with rounded corners, filled and
// optionally stroked.
type RoundedRect struct {
	X, Y, W, H float64
	Radius     float64
	Fill       Color
	Stroke     *Color // nil means fill only
}

// Line draws a straight stroke between two points.
type Line struct {
	X1, Y1, X2, Y2 float64
	Color          Color
	Width          float64
}

// Image places a referenced image into a bounding box. Emitters that
// cannot resolve the reference skip it; a missing logo never breaks the
// document.
type Image struct {
	Ref        string
	X, Y, W, H float64
}

// PageBreak starts a continuation page. Subsequent instructions paint on
// the new page.
type PageBreak struct{}

func (Text) op()        {}
func (Rect) op()        {}
func (RoundedRect) op() {}
func (Line) op()        {}
func (Image) op()       {}
func (PageBreak) op()   {}
