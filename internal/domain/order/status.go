package order

// Status is the lifecycle state of an order as reported by the order store.
// The set is open on the wire: values outside the known enumeration are kept
// verbatim and treated as terminal.
type Status string

const (
	StatusPending        Status = "pending"
	StatusConfirmed      Status = "confirmed"
	StatusPreparing      Status = "preparing"
	StatusOutForDelivery Status = "out_for_delivery"
	StatusDelivered      Status = "delivered"
	StatusVoided         Status = "voided"
	StatusCancelled      Status = "cancelled"
)

// Action is a user affordance that proposes a status transition. The engine
// only proposes; the actual mutation is a store call followed by a full
// list reload.
type Action struct {
	Label  string
	Target Status
}

// Descriptor carries everything the panel needs to render an order's status:
// the label and styling plus the allowed transition actions.
type Descriptor struct {
	Label       string
	BadgeStyle  string
	BorderStyle string

	// Actions holds the allowed transitions in display order. Next mirrors
	// the target of the first (sequential) action; empty when terminal.
	Actions []Action
	Next    Status
}

// Actionable reports whether the status exposes at least one transition.
func (d Descriptor) Actionable() bool { return len(d.Actions) > 0 }

// ActionLabel is the label of the sequential action, or "".
func (d Descriptor) ActionLabel() string {
	if len(d.Actions) == 0 {
		return ""
	}
	return d.Actions[0].Label
}

var descriptors = map[Status]Descriptor{
	StatusPending: {
		Label:       "Pendiente",
		BadgeStyle:  "warning",
		BorderStyle: "warning",
		Actions:     []Action{{Label: "Confirmar", Target: StatusConfirmed}},
		Next:        StatusConfirmed,
	},
	StatusConfirmed: {
		Label:       "Confirmado",
		BadgeStyle:  "info",
		BorderStyle: "info",
		Actions:     []Action{{Label: "Iniciar preparación", Target: StatusPreparing}},
		Next:        StatusPreparing,
	},
	StatusPreparing: {
		Label:       "En preparación",
		BadgeStyle:  "primary",
		BorderStyle: "primary",
		Actions:     []Action{{Label: "Enviar a reparto", Target: StatusOutForDelivery}},
		Next:        StatusOutForDelivery,
	},
	StatusOutForDelivery: {
		Label:       "En camino",
		BadgeStyle:  "dark",
		BorderStyle: "dark",
		// The only status with two affordances: the sequential advance and
		// the explicit delivery confirmation. Both land on delivered.
		Actions: []Action{
			{Label: "Avanzar", Target: StatusDelivered},
			{Label: "Marcar entregado", Target: StatusDelivered},
		},
		Next: StatusDelivered,
	},
	StatusDelivered: {
		Label:       "Entregado",
		BadgeStyle:  "success",
		BorderStyle: "success",
	},
	StatusVoided: {
		Label:       "Anulado",
		BadgeStyle:  "secondary",
		BorderStyle: "secondary",
	},
	StatusCancelled: {
		Label:       "Cancelado",
		BadgeStyle:  "danger",
		BorderStyle: "danger",
	},
}

// Describe maps a status to its display descriptor. Unrecognized values get
// a fallback that shows the raw value and exposes no actions; Describe never
// fails, so render paths stay total.
func Describe(s Status) Descriptor {
	if d, ok := descriptors[s]; ok {
		return d
	}
	return Descriptor{
		Label:       string(s),
		BadgeStyle:  "secondary",
		BorderStyle: "secondary",
	}
}

// Terminal reports whether the status admits no further transition.
func Terminal(s Status) bool {
	return !Describe(s).Actionable()
}

// kitchenActive is the exact status set the "all" dashboard view shows.
// Delivered, voided and cancelled orders are valid but not kitchen work.
var kitchenActive = map[Status]bool{
	StatusPending:        true,
	StatusConfirmed:      true,
	StatusPreparing:      true,
	StatusOutForDelivery: true,
}

// KitchenActive reports whether the status belongs in the "all" view.
func KitchenActive(s Status) bool {
	return kitchenActive[s]
}
