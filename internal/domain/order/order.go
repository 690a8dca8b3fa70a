package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a read-only snapshot of an order as served by the order store.
// The panel never creates or mutates orders locally; every refresh replaces
// the whole list. Total is authoritative as received and is never recomputed
// from the line items.
type Order struct {
	ID        int64
	Status    Status
	CreatedAt time.Time

	// Items keep the exact sequence the store returned. Item and extra
	// ordering is significant for ticket output.
	Items []LineItem

	Subtotal Money
	Shipping Money
	Tax      Money
	Discount Money
	Total    Money

	Address string
	Phone   string

	SpecialInstructions string
	ETAMinutes          int
	PaymentMethod       string
}

// LineItem is a single position of an order.
type LineItem struct {
	Name      string
	Quantity  int
	UnitPrice Money
	Size      *Size
	Extras    []Extra
	Notes     string
}

// LineTotal is the displayed per-item price: unit price times quantity,
// as the kitchen ticket has always shown it.
func (li LineItem) LineTotal() Money {
	qty := decimal.NewFromInt(int64(li.Quantity))
	return MoneyFromDecimal(li.UnitPrice.Decimal().Mul(qty))
}

// Size is an optional product size choice.
type Size struct {
	Name string
}

// Extra is an optional paid addition to a line item.
type Extra struct {
	Name  string
	Price Money
}

// Role is the caller identity class reported by the auth collaborator.
type Role string

// Roles allowed to operate the kitchen panel.
const (
	RoleAdmin         Role = "admin"
	RoleAdministrator Role = "administrator"
	RoleCook          Role = "cook"
)

// Allowed reports whether the role may access the panel.
func (r Role) Allowed() bool {
	switch r {
	case RoleAdmin, RoleAdministrator, RoleCook:
		return true
	default:
		return false
	}
}
