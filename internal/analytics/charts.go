package analytics

import "expensedash/internal/core"

// Point is one bar or line point of a dashboard chart.
type Point struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// Charts holds the three dashboard series computed over a filtered record set.
type Charts struct {
	ByCategory    []Point `json:"by_category"`
	ByPaymentMode []Point `json:"by_payment_mode"`
	MonthlyTrend  []Point `json:"monthly_trend"`
}

// SpendByCategory sums amounts per category, ordered by category.
func SpendByCategory(records []core.Expense) []Point {
	return series(records, by(categoryOf))
}

// SpendByPaymentMode sums amounts per payment mode, ordered by payment mode.
func SpendByPaymentMode(records []core.Expense) []Point {
	return series(records, by(paymentModeOf))
}

// MonthlyTrend sums amounts per YYYY-MM in month order.
func MonthlyTrend(records []core.Expense) []Point {
	return series(records, by(monthOf))
}

// BuildCharts computes every dashboard series.
func BuildCharts(records []core.Expense) Charts {
	return Charts{
		ByCategory:    SpendByCategory(records),
		ByPaymentMode: SpendByPaymentMode(records),
		MonthlyTrend:  MonthlyTrend(records),
	}
}

func series(records []core.Expense, key keyFunc) []Point {
	groups := groupBy(records, key)
	out := make([]Point, 0, len(groups))
	for _, g := range groups {
		out = append(out, Point{Label: g.key, Amount: core.Round2(g.sum)})
	}
	return out
}
