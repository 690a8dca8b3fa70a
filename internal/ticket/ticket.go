// Package ticket builds the printable kitchen receipt for an order.
//
// The layout is a fixed-width plain-text document rendered from a structured
// view model. The same rendering backs the on-screen preview and the print
// surface, so it must be byte-identical for identical input.
package ticket

import (
	"fmt"

	"github.com/fornace/kitchen-panel/internal/domain/order"
)

const (
	// Width is the ticket column width in characters, sized for 80mm
	// thermal receipt printers.
	Width = 40

	dateLayout = "02-01-2006"
	timeLayout = "15:04"
)

var bannerLines = []string{
	"PIZZERÍA LA FORNACE",
	"TICKET DE COCINA",
}

// Document is the ticket view model: every field maps to a literal block of
// output lines, in layout order. Optional fields left empty are omitted by
// the renderer.
type Document struct {
	Banner []string

	OrderID int64
	Date    string
	Time    string

	Items []ItemBlock

	Address string
	Phone   string

	// Instructions and ETA are optional blocks.
	Instructions string
	ETAMinutes   int

	Subtotal string
	Shipping string
	Tax      string
	// Discount is empty unless the order carries a positive discount.
	Discount string
	Total    string

	StatusLabel   string
	PaymentMethod string
}

// ItemBlock is the rendered form of one line item.
type ItemBlock struct {
	// Heading is "{quantity}x {name}", with the size name appended in
	// parentheses when present.
	Heading string
	// Extras are the indented "+ name (price)" lines, in received order.
	Extras []string
	// Notes is empty when the item has no notes.
	Notes string
	// Price is the indented unit-price-times-quantity line.
	Price string
}

// Build maps an order onto the ticket view model. It is total: missing
// optional fields become empty view-model fields and unknown statuses keep
// their verbatim label via the status engine fallback.
func Build(o order.Order) Document {
	doc := Document{
		Banner:  bannerLines,
		OrderID: o.ID,
		Date:    o.CreatedAt.Format(dateLayout),
		Time:    o.CreatedAt.Format(timeLayout),

		Address: o.Address,
		Phone:   o.Phone,

		Instructions: o.SpecialInstructions,
		ETAMinutes:   o.ETAMinutes,

		Subtotal: o.Subtotal.Format(),
		Shipping: o.Shipping.Format(),
		Tax:      o.Tax.Format(),
		Total:    o.Total.Format(),

		StatusLabel:   order.Describe(o.Status).Label,
		PaymentMethod: o.PaymentMethod,
	}

	if o.Discount.IsPositive() {
		doc.Discount = "-" + o.Discount.Format()
	}
	if doc.PaymentMethod == "" {
		doc.PaymentMethod = "No especificado"
	}

	doc.Items = make([]ItemBlock, 0, len(o.Items))
	for _, li := range o.Items {
		doc.Items = append(doc.Items, buildItem(li))
	}
	return doc
}

func buildItem(li order.LineItem) ItemBlock {
	heading := fmt.Sprintf("%dx %s", li.Quantity, li.Name)
	if li.Size != nil {
		heading += fmt.Sprintf(" (%s)", li.Size.Name)
	}

	block := ItemBlock{
		Heading: heading,
		Price:   "Precio: " + li.LineTotal().Format(),
	}
	for _, ex := range li.Extras {
		block.Extras = append(block.Extras, fmt.Sprintf("+ %s (%s)", ex.Name, ex.Price.Format()))
	}
	if li.Notes != "" {
		block.Notes = "Notas: " + li.Notes
	}
	return block
}

// Render produces the final ticket text for an order. Pure and total:
// identical input yields an identical string and no input makes it fail.
func Render(o order.Order) string {
	return Text(Build(o))
}
