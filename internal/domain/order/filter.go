package order

import "sort"

// FilterAll selects every kitchen-relevant order (see KitchenActive); any
// other filter value selects orders whose status matches it exactly.
const FilterAll = "all"

// Arrange returns the orders selected by filter, newest first. The sort is
// stable so orders sharing a timestamp keep their fetch order. The input
// slice is not modified.
func Arrange(orders []Order, filter string) []Order {
	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		if matches(o.Status, filter) {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func matches(s Status, filter string) bool {
	if filter == "" || filter == FilterAll {
		return KitchenActive(s)
	}
	return string(s) == filter
}
