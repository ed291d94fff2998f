package analytics

import (
	"sort"

	"expensedash/internal/core"
)

// group accumulates the records sharing a grouping key.
type group struct {
	key      string
	labels   []string // components of a composite key
	n        int
	sum      float64
	sumSq    float64
	cashback float64
	min, max float64
	amounts  []float64
}

func (g *group) mean() float64 {
	if g.n == 0 {
		return 0
	}
	return g.sum / float64(g.n)
}

// keyFunc returns the grouping labels of a record, or ok=false to skip it.
type keyFunc func(e core.Expense) (labels []string, ok bool)

func by(field func(e core.Expense) string) keyFunc {
	return func(e core.Expense) ([]string, bool) {
		return []string{field(e)}, true
	}
}

func categoryOf(e core.Expense) string { return e.Category }
func paymentModeOf(e core.Expense) string { return e.PaymentMode }
func descriptionOf(e core.Expense) string { return e.Description }
func monthOf(e core.Expense) string { return e.Month() }

// groupBy folds records into groups, returned sorted by key ascending.
func groupBy(records []core.Expense, key keyFunc) []*group {
	index := map[string]*group{}
	for _, e := range records {
		labels, ok := key(e)
		if !ok {
			continue
		}
		k := joinKey(labels)
		g, exists := index[k]
		if !exists {
			g = &group{key: k, labels: labels, min: e.Amount, max: e.Amount}
			index[k] = g
		}
		g.n++
		g.sum += e.Amount
		g.sumSq += e.Amount * e.Amount
		g.cashback += e.Cashback
		g.amounts = append(g.amounts, e.Amount)
		if e.Amount < g.min {
			g.min = e.Amount
		}
		if e.Amount > g.max {
			g.max = e.Amount
		}
	}

	out := make([]*group, 0, len(index))
	for _, g := range index {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].key < out[j].key })
	return out
}

func joinKey(labels []string) string {
	if len(labels) == 1 {
		return labels[0]
	}
	k := ""
	for i, l := range labels {
		if i > 0 {
			k += "\x00"
		}
		k += l
	}
	return k
}

// sortDesc orders groups by metric descending, keeping key order for ties.
func sortDesc(groups []*group, metric func(*group) float64) {
	sort.SliceStable(groups, func(i, j int) bool {
		return metric(groups[i]) > metric(groups[j])
	})
}

// sortDescNullsLast orders by a metric that may be undefined; undefined values go last.
func sortDescNullsLast(groups []*group, metric func(*group) (float64, bool)) {
	sort.SliceStable(groups, func(i, j int) bool {
		vi, oki := metric(groups[i])
		vj, okj := metric(groups[j])
		if oki != okj {
			return oki
		}
		return oki && vi > vj
	})
}

func where(records []core.Expense, keep func(core.Expense) bool) []core.Expense {
	out := make([]core.Expense, 0, len(records))
	for _, e := range records {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

func inCategory(name string) func(core.Expense) bool {
	return func(e core.Expense) bool { return e.Category == name }
}

func totalAmount(records []core.Expense) float64 {
	var s float64
	for _, e := range records {
		s += e.Amount
	}
	return s
}

func sumOf(g *group) float64 { return g.sum }

// monthlyTotals returns spend per YYYY-MM in month order.
func monthlyTotals(records []core.Expense) []*group {
	return groupBy(records, by(monthOf))
}

// ratio returns num*100/den, ok=false when den is zero.
func ratio(num, den float64) (float64, bool) {
	if den == 0 {
		return 0, false
	}
	return num * 100 / den, true
}
