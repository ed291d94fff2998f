// Package filter derives the filtered view of the record set that feeds the
// dashboard KPIs and charts.
package filter

import (
	"sort"
	"strings"

	"expensedash/internal/core"
)

// AllValue is the selector value meaning "no constraint".
const AllValue = "All"

// Spec is a conjunction of optional predicates. A nil field is unconstrained.
type Spec struct {
	Category    *string `json:"category,omitempty"`
	PaymentMode *string `json:"payment_mode,omitempty"`
	Month       *string `json:"month,omitempty"` // YYYY-MM prefix of the date
}

// Domain lists the selectable filter values present in a record set.
type Domain struct {
	Categories   []string `json:"categories"`
	PaymentModes []string `json:"payment_modes"`
	Months       []string `json:"months"`
}

func (s Spec) WithCategory(v string) Spec {
	s.Category = &v
	return s
}

func (s Spec) WithPaymentMode(v string) Spec {
	s.PaymentMode = &v
	return s
}

func (s Spec) WithMonth(v string) Spec {
	s.Month = &v
	return s
}

// IsEmpty reports whether no predicate is active.
func (s Spec) IsEmpty() bool {
	return s.Category == nil && s.PaymentMode == nil && s.Month == nil
}

// Match reports whether e satisfies every active predicate.
func (s Spec) Match(e core.Expense) bool {
	if s.Category != nil && e.Category != *s.Category {
		return false
	}
	if s.PaymentMode != nil && e.PaymentMode != *s.PaymentMode {
		return false
	}
	if s.Month != nil && !strings.HasPrefix(e.Date, *s.Month) {
		return false
	}
	return true
}

// ParseSpec builds a Spec from a key lookup such as url.Values.Get.
// Missing, empty and "All" values leave the predicate inactive.
func ParseSpec(get func(key string) string) Spec {
	var s Spec
	if v, ok := selected(get("category")); ok {
		s = s.WithCategory(v)
	}
	if v, ok := selected(get("payment_mode")); ok {
		s = s.WithPaymentMode(v)
	}
	if v, ok := selected(get("month")); ok {
		s = s.WithMonth(v)
	}
	return s
}

func selected(v string) (string, bool) {
	v = strings.TrimSpace(v)
	if v == "" || v == AllValue {
		return "", false
	}
	return v, true
}

// Apply returns the records matching spec, preserving input order.
func Apply(records []core.Expense, spec Spec) []core.Expense {
	out := make([]core.Expense, 0, len(records))
	for _, e := range records {
		if spec.Match(e) {
			out = append(out, e)
		}
	}
	return out
}

// Options returns the sorted distinct categories, payment modes and months in records.
func Options(records []core.Expense) Domain {
	cats := map[string]struct{}{}
	modes := map[string]struct{}{}
	months := map[string]struct{}{}
	for _, e := range records {
		cats[e.Category] = struct{}{}
		modes[e.PaymentMode] = struct{}{}
		months[e.Month()] = struct{}{}
	}
	return Domain{
		Categories:   sortedKeys(cats),
		PaymentModes: sortedKeys(modes),
		Months:       sortedKeys(months),
	}
}

// ComputeKPIs summarises records. The mean of an empty set is 0.
func ComputeKPIs(records []core.Expense) core.KPIs {
	var total, cashback float64
	for _, e := range records {
		total += e.Amount
		cashback += e.Cashback
	}
	k := core.KPIs{
		Total:         core.Round2(total),
		Count:         len(records),
		TotalCashback: core.Round2(cashback),
	}
	if len(records) > 0 {
		k.Mean = core.Round2(total / float64(len(records)))
	}
	return k
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
