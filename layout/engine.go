package layout

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/elevatehq/invoicer/invoice"
	"github.com/elevatehq/invoicer/types"
)

// Defaults substituted for missing optional record fields. Missing data
// renders a named fallback or an empty string; it never fails layout.
const (
	DefaultClientName    = "Unnamed Client"
	DefaultDescription   = "No description"
	DefaultBankName      = "COOPERATIVE BANK"
	DefaultAccountNumber = "01108111046300"
	DefaultAdministrator = "Kennedy Kechula"
	DefaultTerms         = "Please send payment at least 7 days before the event.\n(Grand Total is inclusive of VAT)"
	// NumberPlaceholder stands in for the invoice number on drafts that
	// have not been issued yet.
	NumberPlaceholder = "N/A"
)

// dateLayout matches the en-GB short format of the production documents.
const dateLayout = "02 Jan 2006"

// Region geometry, in points, relative to the page and its margin.
const (
	logoW, logoH = 65, 50

	badgeW, badgeH = 120, 34
	badgeY         = 55
	badgeRadius    = 4

	separatorY = 120
	sectionTop = 135

	tableTop       = 220
	tableHeaderH   = 24
	rowH           = 24
	rowTextSize    = 10
	rowLineSpacing = 12

	colNoOffset    = 10
	colDescOffset  = 50
	colPriceOffset = 330
	colTotalOffset = 440
	amountColW     = 90
	headerColW     = 80

	paymentBoxW = 260
	bandH       = 54
	totalBoxGap = 300

	// footerReserve is the vertical space the totals band, terms,
	// signature block and clearance above the pinned contact line claim
	// below the last table row. Rows never flow into it.
	footerReserve = 324

	// contactOffset pins the contact line this far above the bottom edge,
	// independent of how tall the content above grew.
	contactOffset = 70

	// contTableTop is where the repeated table header lands on a
	// continuation page.
	contTableTop = 60
)

// ErrOverflow reports that the table bottom would invade the reserved
// footer region on a single page.
var ErrOverflow = errors.New("layout: content exceeds the single-page footer reservation")

// OverflowError carries the offending geometry. Returned only under
// OverflowFail; retrying without changing the record cannot succeed.
type OverflowError struct {
	Bottom float64 // where the content wanted to end
	Limit  float64 // bottom of the usable region
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("layout: content bottom %.2f exceeds limit %.2f", e.Bottom, e.Limit)
}

// Is reports ErrOverflow so callers can match with errors.Is.
func (e *OverflowError) Is(target error) bool { return target == ErrOverflow }

// OverflowPolicy decides what happens when the table outgrows the page.
// Whichever policy is configured applies consistently; the engine never
// silently overdraws the footer.
type OverflowPolicy int

const (
	// OverflowPaginate starts a continuation page and repeats the table
	// header there.
	OverflowPaginate OverflowPolicy = iota
	// OverflowFail rejects the record with an OverflowError.
	OverflowFail
)

// Engine lays out invoice documents. It is stateless and safe for
// concurrent use.
type Engine struct {
	page   Page
	policy OverflowPolicy
}

// Option configures an Engine.
type Option func(*Engine)

// WithPage overrides the page geometry.
func WithPage(p Page) Option {
	return func(e *Engine) {
		e.page = p
	}
}

// WithOverflowPolicy selects the page-overflow policy.
func WithOverflowPolicy(p OverflowPolicy) Option {
	return func(e *Engine) {
		e.policy = p
	}
}

// New creates a layout Engine. The default target is A4 with pagination
// on overflow.
func New(opts ...Option) *Engine {
	e := &Engine{
		page:   A4,
		policy: OverflowPaginate,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Page returns the page geometry documents are laid out for.
func (e *Engine) Page() Page { return e.page }

// Render lays out a record into draw instructions. It is a pure function
// of the record: no clock reads, no store access, no hidden state. The
// grand total is taken from the record as computed by the money model and
// is never re-summed here.
func (e *Engine) Render(rec *invoice.Record) ([]Instruction, error) {
	var ins []Instruction

	ins = append(ins, e.header(rec)...)
	ins = append(ins, e.meta(rec)...)

	rows, bottom, err := e.table(rec)
	if err != nil {
		return nil, err
	}
	ins = append(ins, rows...)

	ins = append(ins, e.footer(rec, bottom+20)...)
	return ins, nil
}

// header draws the top band: logo slot, company name, and the INVOICE
// badge with its label centered inside the badge bounds.
func (e *Engine) header(rec *invoice.Record) []Instruction {
	var ins []Instruction
	left := e.page.Margin

	if rec.Company.LogoRef != "" {
		ins = append(ins, Image{Ref: rec.Company.LogoRef, X: left, Y: 40, W: logoW, H: logoH})
	}

	name, tagline := splitCompanyName(rec.Company.Name)
	ins = append(ins, Text{
		Content: name,
		X:       left + 80, Y: 50,
		Font: HelveticaBold, Size: 16,
		Color: ColorBrand,
	})
	if tagline != "" {
		ins = append(ins, Text{
			Content: tagline,
			X:       left + 80, Y: 70,
			Font: Helvetica, Size: 12,
			Color: ColorBrand,
		})
	}

	// Badge first, label second: the label paints on top. Centering is
	// derived from the badge bounds so a width change never misaligns it.
	badgeX := e.page.Width - badgeW - left
	ins = append(ins,
		RoundedRect{X: badgeX, Y: badgeY, W: badgeW, H: badgeH, Radius: badgeRadius, Fill: ColorBrand},
		Text{
			Content: "INVOICE",
			X:       badgeX, Y: badgeY + 8,
			Font: HelveticaBold, Size: 16,
			Color: ColorWhite,
			Width: badgeW, Align: AlignCenter,
		},
		Line{X1: left, Y1: separatorY, X2: e.page.Width - left, Y2: separatorY, Color: ColorSeparator, Width: 1},
	)
	return ins
}

// meta draws the client block on the left and the invoice number and
// issue date on the right half, aligned to the same band.
func (e *Engine) meta(rec *invoice.Record) []Instruction {
	left := e.page.Margin

	clientName := rec.ClientName
	if clientName == "" {
		clientName = DefaultClientName
	}

	ins := []Instruction{
		Text{Content: "Invoice To :", X: left, Y: sectionTop, Font: Helvetica, Size: 11, Color: ColorBrand},
		Text{Content: clientName, X: left, Y: sectionTop + 18, Font: HelveticaBold, Size: 13, Color: ColorBlack},
	}
	if rec.ClientEmail != "" {
		ins = append(ins, Text{
			Content: "Email: " + rec.ClientEmail,
			X:       left, Y: sectionTop + 38,
			Font: Helvetica, Size: 10, Color: ColorBlack,
		})
	}

	number := rec.Number
	if number == "" {
		number = NumberPlaceholder
	}
	date := NumberPlaceholder
	if !rec.IssueDate.IsZero() {
		date = rec.IssueDate.Format(dateLayout)
	}

	metaX := e.page.Width/2 + 40
	ins = append(ins,
		Text{Content: "Invoice No: " + number, X: metaX, Y: sectionTop + 5, Font: Helvetica, Size: 10, Color: ColorBlack},
		Text{Content: "Date: " + date, X: metaX, Y: sectionTop + 20, Font: Helvetica, Size: 10, Color: ColorBlack},
	)
	return ins
}

// tableHeader draws the colored header row and its underline at top.
func (e *Engine) tableHeader(top float64) []Instruction {
	left := e.page.Margin
	return []Instruction{
		Rect{X: left, Y: top, W: e.page.Width - left - 20, H: tableHeaderH, Fill: ColorBrand},
		Text{Content: "NO", X: left + colNoOffset, Y: top + 7, Font: HelveticaBold, Size: 10, Color: ColorWhite},
		Text{Content: "DESCRIPTION", X: left + colDescOffset, Y: top + 7, Font: HelveticaBold, Size: 10, Color: ColorWhite},
		Text{Content: "PRICE", X: left + colPriceOffset, Y: top + 7, Font: HelveticaBold, Size: 10, Color: ColorWhite, Width: headerColW, Align: AlignRight},
		Text{Content: "TOTAL", X: left + colTotalOffset, Y: top + 7, Font: HelveticaBold, Size: 10, Color: ColorWhite, Width: headerColW, Align: AlignRight},
		Line{X1: left, Y1: top + tableHeaderH, X2: e.page.Width - left, Y2: top + tableHeaderH, Color: ColorTableRule, Width: 0.5},
	}
}

// table draws the header row and flows the line items downward. The
// cursor advances by the fixed row height for every item regardless of
// content; with zero items the header still renders and the cursor stays
// at the top of the body. Returns the instructions and the final cursor.
func (e *Engine) table(rec *invoice.Record) ([]Instruction, float64, error) {
	left := e.page.Margin
	right := e.page.Width - left
	descX := left + colDescOffset
	priceX := left + colPriceOffset
	descWidth := float64(colPriceOffset - colDescOffset - 10) // stops short of the price column

	ins := e.tableHeader(tableTop)
	y := float64(tableTop) + tableHeaderH + 8

	rowLimit := e.page.Height - footerReserve

	for i, item := range rec.LineItems {
		if y+rowH > rowLimit {
			if e.policy == OverflowFail {
				return nil, 0, &OverflowError{Bottom: y + rowH, Limit: rowLimit}
			}
			ins = append(ins, PageBreak{})
			ins = append(ins, e.tableHeader(contTableTop)...)
			y = contTableTop + tableHeaderH + 8
		}

		ins = append(ins, Text{
			Content: strconv.Itoa(i + 1),
			X:       left + colNoOffset, Y: y,
			Font: Helvetica, Size: rowTextSize, Color: ColorBlack,
		})

		desc := item.Description
		if desc == "" {
			desc = DefaultDescription
		}
		for j, line := range wrapText(desc, descWidth, rowTextSize) {
			ins = append(ins, Text{
				Content: line,
				X:       descX, Y: y + float64(j)*rowLineSpacing,
				Font: Helvetica, Size: rowTextSize, Color: ColorBlack,
				Width: descWidth,
			})
		}

		amount := types.FormatCurrency(item.UnitPrice.Amount, rec.Currency)
		ins = append(ins,
			Text{Content: amount, X: priceX, Y: y, Font: Helvetica, Size: rowTextSize, Color: ColorBlack, Width: amountColW, Align: AlignRight},
			Text{Content: amount, X: left + colTotalOffset, Y: y, Font: Helvetica, Size: rowTextSize, Color: ColorBlack, Width: amountColW, Align: AlignRight},
		)

		y += rowH
		ins = append(ins, Line{X1: left, Y1: y - 6, X2: right, Y2: y - 6, Color: ColorRowRule, Width: 0.5})
	}

	return ins, y, nil
}

// footer draws the totals band, terms, signature block, and the contact
// line pinned to the bottom edge.
func (e *Engine) footer(rec *invoice.Record, paymentsTop float64) []Instruction {
	left := e.page.Margin
	right := e.page.Width - left
	totalBoxX := left + totalBoxGap
	totalBoxW := e.page.Width - left - totalBoxX

	bankName := rec.Company.BankName
	if bankName == "" {
		bankName = DefaultBankName
	}
	accountNumber := rec.Company.AccountNumber
	if accountNumber == "" {
		accountNumber = DefaultAccountNumber
	}

	stroke := ColorPaleEdge
	ins := []Instruction{
		RoundedRect{X: left, Y: paymentsTop, W: paymentBoxW, H: bandH, Radius: 4, Fill: ColorPaleBlue, Stroke: &stroke},
		Text{Content: "PAYMENT METHOD :", X: left + 10, Y: paymentsTop + 8, Font: HelveticaBold, Size: 11, Color: ColorBrand},
		Text{Content: bankName, X: left + 10, Y: paymentsTop + 26, Font: Helvetica, Size: 10, Color: ColorBlack},
		Text{Content: accountNumber, X: left + 10, Y: paymentsTop + 40, Font: Helvetica, Size: 10, Color: ColorBlack},

		RoundedRect{X: totalBoxX, Y: paymentsTop, W: totalBoxW, H: bandH, Radius: 4, Fill: ColorBrand},
		Text{Content: "GRAND TOTAL :", X: totalBoxX + 10, Y: paymentsTop + 8, Font: HelveticaBold, Size: 11, Color: ColorWhite},
		Text{Content: types.FormatCurrency(rec.Total.Amount, rec.Currency), X: totalBoxX + 10, Y: paymentsTop + 28, Font: HelveticaBold, Size: 13, Color: ColorWhite},
	}

	footerLineY := paymentsTop + 100
	footerTextY := footerLineY + 12
	ins = append(ins,
		Line{X1: left, Y1: footerLineY, X2: right, Y2: footerLineY, Color: ColorSeparator, Width: 1},
		Text{Content: "Thank you for doing business with us!", X: left, Y: footerTextY, Font: Helvetica, Size: 10, Color: ColorBlack},
		Text{Content: "Terms and Conditions :", X: left, Y: footerTextY + 20, Font: HelveticaBold, Size: 10, Color: ColorBlack},
	)

	terms := rec.Terms
	if terms == "" {
		terms = DefaultTerms
	}
	for i, line := range strings.Split(terms, "\n") {
		ins = append(ins, Text{
			Content: line,
			X:       left, Y: footerTextY + 34 + float64(i)*rowLineSpacing,
			Font: Helvetica, Size: 9, Color: ColorBlack,
		})
	}

	administrator := rec.Company.Administrator
	if administrator == "" {
		administrator = DefaultAdministrator
	}
	signatureY := footerTextY + 80
	ins = append(ins,
		Text{Content: administrator, X: totalBoxX, Y: signatureY, Font: HelveticaBold, Size: 11, Color: ColorBlack, Width: totalBoxW, Align: AlignRight},
		Text{Content: "Administrator", X: totalBoxX, Y: signatureY + 18, Font: Helvetica, Size: 10, Color: ColorBlack, Width: totalBoxW, Align: AlignRight},
	)

	contactY := e.page.Height - contactOffset
	ins = append(ins,
		Text{Content: "Phone: " + rec.Company.Phone, X: left, Y: contactY, Font: Helvetica, Size: 9, Color: ColorBlack},
		Text{Content: "Email: " + rec.Company.Email, X: left + 180, Y: contactY, Font: Helvetica, Size: 9, Color: ColorBlack},
		Text{Content: "Address: " + rec.Company.Address, X: left + 340, Y: contactY, Font: Helvetica, Size: 9, Color: ColorBlack},
	)
	return ins
}

// splitCompanyName breaks a company name at its first newline so profiles
// can stack a tagline under the name, the way the letterhead does.
func splitCompanyName(name string) (string, string) {
	head, tail, found := strings.Cut(name, "\n")
	if !found {
		return name, ""
	}
	return head, tail
}

// avgCharWidth approximates the Helvetica advance per rune in em units.
// The estimate is deliberately wide so wrapped text stays inside its
// bounding width without real font metrics.
const avgCharWidth = 0.55

// wrapText word-wraps content so no line's estimated width exceeds
// maxWidth at the given font size. Words longer than a whole line are
// hard-split on rune boundaries, so multi-byte text never splits
// mid-rune. Deterministic for identical input.
func wrapText(content string, maxWidth, size float64) []string {
	maxChars := int(maxWidth / (size * avgCharWidth))
	if maxChars < 1 {
		maxChars = 1
	}

	words := strings.Fields(content)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := ""
	for _, word := range words {
		for utf8.RuneCountInString(word) > maxChars {
			if current != "" {
				lines = append(lines, current)
				current = ""
			}
			runes := []rune(word)
			lines = append(lines, string(runes[:maxChars]))
			word = string(runes[maxChars:])
		}
		switch {
		case current == "":
			current = word
		case utf8.RuneCountInString(current)+1+utf8.RuneCountInString(word) <= maxChars:
			current += " " + word
		default:
			lines = append(lines, current)
			current = word
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}
