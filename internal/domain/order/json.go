package order

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// Wire format notes: the order store serves the fields of §DATA shape with
// the Spanish address keys the pizzeria backend has always used (direccion,
// telefono). Decoding is tolerant: unknown keys are skipped, optional keys
// may be absent or null, money scalars may be numbers or strings, and a
// non-array order list decodes as empty.

// createdAt arrives either RFC 3339 or as a naive ISO timestamp.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func parseTime(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// DecodeList parses the order-store list payload. Anything other than a JSON
// array is treated as an empty list, per the collaborator contract.
func DecodeList(data []byte) ([]Order, error) {
	d := jx.DecodeBytes(data)
	if d.Next() != jx.Array {
		return nil, nil
	}

	var orders []Order
	if err := d.Arr(func(d *jx.Decoder) error {
		o, err := decodeOrder(d)
		if err != nil {
			return err
		}
		orders = append(orders, o)
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "decode order list")
	}
	return orders, nil
}

// DecodeOrder parses a single order object.
func DecodeOrder(data []byte) (Order, error) {
	d := jx.DecodeBytes(data)
	o, err := decodeOrder(d)
	if err != nil {
		return Order{}, errors.Wrap(err, "decode order")
	}
	return o, nil
}

func decodeOrder(d *jx.Decoder) (Order, error) {
	var o Order
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			o.ID, err = d.Int64()
		case "status", "estado":
			s, serr := d.Str()
			o.Status, err = Status(s), serr
		case "createdAt", "fecha":
			s, serr := d.Str()
			if serr != nil {
				return serr
			}
			o.CreatedAt, err = parseTime(s)
		case "lineItems", "items":
			err = d.Arr(func(d *jx.Decoder) error {
				li, lerr := decodeLineItem(d)
				if lerr != nil {
					return lerr
				}
				o.Items = append(o.Items, li)
				return nil
			})
		case "subtotal":
			o.Subtotal, err = decodeMoney(d)
		case "shippingCost", "costo_envio":
			o.Shipping, err = decodeMoney(d)
		case "tax", "impuestos":
			o.Tax, err = decodeMoney(d)
		case "discount", "descuento":
			o.Discount, err = decodeMoney(d)
		case "total":
			o.Total, err = decodeMoney(d)
		case "deliveryAddress", "direccion":
			o.Address, err = optStr(d)
		case "phone", "telefono":
			o.Phone, err = optStr(d)
		case "specialInstructions", "instrucciones_especiales":
			o.SpecialInstructions, err = optStr(d)
		case "etaMinutes", "eta_minutos":
			o.ETAMinutes, err = optInt(d)
		case "paymentMethod", "metodo_pago":
			o.PaymentMethod, err = optStr(d)
		default:
			err = d.Skip()
		}
		return err
	})
	return o, err
}

func decodeLineItem(d *jx.Decoder) (LineItem, error) {
	var li LineItem
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "name", "nombre":
			li.Name, err = d.Str()
		case "quantity", "cantidad":
			li.Quantity, err = d.Int()
		case "unitPrice", "precio_unitario":
			li.UnitPrice, err = decodeMoney(d)
		case "size", "tamanio":
			if d.Next() == jx.Null {
				return d.Null()
			}
			var sz Size
			err = d.Obj(func(d *jx.Decoder, key string) error {
				if key == "name" || key == "nombre" {
					var serr error
					sz.Name, serr = d.Str()
					return serr
				}
				return d.Skip()
			})
			if err == nil {
				li.Size = &sz
			}
		case "extras":
			if d.Next() == jx.Null {
				return d.Null()
			}
			err = d.Arr(func(d *jx.Decoder) error {
				ex, xerr := decodeExtra(d)
				if xerr != nil {
					return xerr
				}
				li.Extras = append(li.Extras, ex)
				return nil
			})
		case "notes", "notas":
			li.Notes, err = optStr(d)
		default:
			err = d.Skip()
		}
		return err
	})
	return li, err
}

func decodeExtra(d *jx.Decoder) (Extra, error) {
	var ex Extra
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "name", "nombre":
			ex.Name, err = d.Str()
		case "price", "precio":
			ex.Price, err = decodeMoney(d)
		default:
			err = d.Skip()
		}
		return err
	})
	return ex, err
}

// optStr reads a string field that may be null.
func optStr(d *jx.Decoder) (string, error) {
	if d.Next() == jx.Null {
		return "", d.Null()
	}
	return d.Str()
}

// optInt reads an integer field that may be null.
func optInt(d *jx.Decoder) (int, error) {
	if d.Next() == jx.Null {
		return 0, d.Null()
	}
	return d.Int()
}

// Encode writes the order in the panel's response shape, including the
// status descriptor the UI needs to draw affordances.
func Encode(e *jx.Encoder, o Order) {
	desc := Describe(o.Status)

	e.ObjStart()
	e.FieldStart("id")
	e.Int64(o.ID)
	e.FieldStart("status")
	e.Str(string(o.Status))
	e.FieldStart("statusLabel")
	e.Str(desc.Label)
	e.FieldStart("badgeStyle")
	e.Str(desc.BadgeStyle)
	e.FieldStart("borderStyle")
	e.Str(desc.BorderStyle)
	e.FieldStart("actionable")
	e.Bool(desc.Actionable())
	e.FieldStart("actions")
	e.ArrStart()
	for _, a := range desc.Actions {
		e.ObjStart()
		e.FieldStart("label")
		e.Str(a.Label)
		e.FieldStart("target")
		e.Str(string(a.Target))
		e.ObjEnd()
	}
	e.ArrEnd()
	if !o.CreatedAt.IsZero() {
		e.FieldStart("createdAt")
		e.Str(o.CreatedAt.Format(time.RFC3339))
	}

	e.FieldStart("lineItems")
	e.ArrStart()
	for _, li := range o.Items {
		encodeLineItem(e, li)
	}
	e.ArrEnd()

	e.FieldStart("subtotal")
	encodeMoney(e, o.Subtotal)
	e.FieldStart("shippingCost")
	encodeMoney(e, o.Shipping)
	e.FieldStart("tax")
	encodeMoney(e, o.Tax)
	e.FieldStart("discount")
	encodeMoney(e, o.Discount)
	e.FieldStart("total")
	encodeMoney(e, o.Total)
	e.FieldStart("totalFormatted")
	e.Str(o.Total.Format())

	e.FieldStart("direccion")
	e.Str(o.Address)
	e.FieldStart("telefono")
	e.Str(o.Phone)

	if o.SpecialInstructions != "" {
		e.FieldStart("specialInstructions")
		e.Str(o.SpecialInstructions)
	}
	if o.ETAMinutes > 0 {
		e.FieldStart("etaMinutes")
		e.Int(o.ETAMinutes)
	}
	if o.PaymentMethod != "" {
		e.FieldStart("paymentMethod")
		e.Str(o.PaymentMethod)
	}
	e.ObjEnd()
}

func encodeLineItem(e *jx.Encoder, li LineItem) {
	e.ObjStart()
	e.FieldStart("name")
	e.Str(li.Name)
	e.FieldStart("quantity")
	e.Int(li.Quantity)
	e.FieldStart("unitPrice")
	encodeMoney(e, li.UnitPrice)
	e.FieldStart("priceFormatted")
	e.Str(li.LineTotal().Format())
	if li.Size != nil {
		e.FieldStart("size")
		e.ObjStart()
		e.FieldStart("name")
		e.Str(li.Size.Name)
		e.ObjEnd()
	}
	if len(li.Extras) > 0 {
		e.FieldStart("extras")
		e.ArrStart()
		for _, ex := range li.Extras {
			e.ObjStart()
			e.FieldStart("name")
			e.Str(ex.Name)
			e.FieldStart("price")
			encodeMoney(e, ex.Price)
			e.ObjEnd()
		}
		e.ArrEnd()
	}
	if li.Notes != "" {
		e.FieldStart("notes")
		e.Str(li.Notes)
	}
	e.ObjEnd()
}
