package ticket

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const indent = "    "

var (
	ruleHeavy = strings.Repeat("=", Width)
	ruleLight = strings.Repeat("-", Width)
)

// Text renders the view model into the ticket's plain-text layout. Each
// Document field becomes its literal lines in the fixed order; empty optional
// fields produce no lines at all.
func Text(doc Document) string {
	var b strings.Builder

	line := func(s string) {
		b.WriteString(s)
		b.WriteByte('\n')
	}
	blank := func() { b.WriteByte('\n') }

	// Header block.
	line(ruleHeavy)
	for _, title := range doc.Banner {
		line(center(title))
	}
	line(ruleHeavy)
	line(fmt.Sprintf("Orden #: %d", doc.OrderID))
	line("Fecha: " + doc.Date)
	line("Hora: " + doc.Time)
	blank()

	// Items.
	line(ruleLight)
	line("ITEMS DEL PEDIDO:")
	line(ruleLight)
	blank()
	for _, item := range doc.Items {
		line(item.Heading)
		for _, ex := range item.Extras {
			line(indent + ex)
		}
		if item.Notes != "" {
			line(indent + item.Notes)
		}
		line(indent + item.Price)
		blank()
	}

	// Delivery.
	line(ruleLight)
	line("DIRECCIÓN DE ENTREGA:")
	line(ruleLight)
	line(doc.Address)
	line("Tel: " + doc.Phone)
	blank()

	if doc.Instructions != "" {
		line("INSTRUCCIONES ESPECIALES:")
		line(doc.Instructions)
		blank()
	}
	if doc.ETAMinutes > 0 {
		line(fmt.Sprintf("ETA: %d minutos", doc.ETAMinutes))
		blank()
	}

	// Totals.
	line(ruleLight)
	line("SUBTOTAL: " + doc.Subtotal)
	line("ENVÍO: " + doc.Shipping)
	line("IVA: " + doc.Tax)
	if doc.Discount != "" {
		line("DESCUENTO: " + doc.Discount)
	}
	line(ruleLight)
	line("TOTAL: " + doc.Total)
	line(ruleLight)
	blank()

	// Footer.
	line("Estado: " + doc.StatusLabel)
	line("Método de pago: " + doc.PaymentMethod)
	blank()
	line(ruleHeavy)

	return b.String()
}

// center pads s on the left so it sits centered within Width columns.
// Strings wider than the ticket are left as-is.
func center(s string) string {
	n := utf8.RuneCountInString(s)
	if n >= Width {
		return s
	}
	return strings.Repeat(" ", (Width-n)/2) + s
}
