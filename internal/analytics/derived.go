package analytics

import (
	"math"
	"sort"
	"strconv"
	"time"

	"expensedash/internal/core"
)

// Catalog B: derived and statistical insights.

// averageByWeekday groups by day of week (0 = Sunday). Records whose date does
// not parse are left out.
func averageByWeekday(records []core.Expense) Table {
	t := newTable("day_of_week", "day_name", "avg_spending")
	groups := groupBy(records, func(e core.Expense) ([]string, bool) {
		wd, ok := e.Weekday()
		if !ok {
			return nil, false
		}
		return []string{strconv.Itoa(int(wd))}, true
	})
	sortDesc(groups, (*group).mean)
	for _, g := range groups {
		wd, _ := strconv.Atoi(g.key)
		t.add(int64(wd), time.Weekday(wd).String(), money(g.mean()))
	}
	return t
}

func averageByCategory(records []core.Expense) Table {
	t := newTable("category", "avg_transaction_value")
	groups := groupBy(records, by(categoryOf))
	sortDesc(groups, (*group).mean)
	for _, g := range groups {
		t.add(g.key, money(g.mean()))
	}
	return t
}

// variance is the population variance E[x²] − E[x]², floored at zero to absorb
// floating-point cancellation.
func (g *group) variance() float64 {
	if g.n == 0 {
		return 0
	}
	m := g.mean()
	return math.Max(0, g.sumSq/float64(g.n)-m*m)
}

// varianceByCategory backs both B3 and B9.
func varianceByCategory(records []core.Expense) Table {
	t := newTable("category", "variance")
	groups := groupBy(records, by(categoryOf))
	sortDesc(groups, (*group).variance)
	for _, g := range groups {
		t.add(g.key, money(g.variance()))
	}
	return t
}

func paymentModeShare(records []core.Expense) Table {
	t := newTable("payment_mode", "transaction_count", "percentage")
	total := float64(len(records))
	for _, g := range groupBy(records, by(paymentModeOf)) {
		t.add(g.key, int64(g.n), percent(float64(g.n), total))
	}
	return t
}

// median picks the central ranked value, averaging the two central values for
// even counts.
func (g *group) median() float64 {
	if g.n == 0 {
		return 0
	}
	sorted := append([]float64(nil), g.amounts...)
	sort.Float64s(sorted)
	lo, hi := (g.n+1)/2, (g.n+2)/2
	return (sorted[lo-1] + sorted[hi-1]) / 2
}

func medianByCategory(records []core.Expense) Table {
	t := newTable("category", "median_amount")
	for _, g := range groupBy(records, by(categoryOf)) {
		t.add(g.key, money(g.median()))
	}
	return t
}

// spendByWeekOfMonth buckets days 1–7 as week 1, 8–14 as week 2 and so on.
func spendByWeekOfMonth(records []core.Expense) Table {
	t := newTable("week_of_month", "total_spent")
	groups := groupBy(records, func(e core.Expense) ([]string, bool) {
		d, ok := e.DayOfMonth()
		if !ok {
			return nil, false
		}
		return []string{strconv.Itoa((d-1)/7 + 1)}, true
	})
	sortDesc(groups, sumOf)
	for _, g := range groups {
		week, _ := strconv.Atoi(g.key)
		t.add(int64(week), money(g.sum))
	}
	return t
}

func spendingSpikes(records []core.Expense) Table {
	t := newTable("month", "total_spent")
	months := monthlyTotals(records)
	if len(months) == 0 {
		return t
	}
	var s float64
	for _, g := range months {
		s += g.sum
	}
	avg := s / float64(len(months))

	spikes := make([]*group, 0, len(months))
	for _, g := range months {
		if g.sum > avg {
			spikes = append(spikes, g)
		}
	}
	sortDesc(spikes, sumOf)
	for _, g := range spikes {
		t.add(g.key, money(g.sum))
	}
	return t
}

// rollingAverage is the trailing mean of the current and up to two preceding months.
func rollingAverage(records []core.Expense) Table {
	t := newTable("month", "total_spent", "rolling_avg")
	months := monthlyTotals(records)
	for i, g := range months {
		start := i - 2
		if start < 0 {
			start = 0
		}
		var s float64
		for _, w := range months[start : i+1] {
			s += w.sum
		}
		t.add(g.key, money(g.sum), money(s/float64(i+1-start)))
	}
	return t
}

func cashbackRatio(records []core.Expense, key func(core.Expense) string, column string) Table {
	t := newTable(column, "cashback_ratio")
	groups := groupBy(records, by(key))
	sortDescNullsLast(groups, func(g *group) (float64, bool) { return ratio(g.cashback, g.sum) })
	for _, g := range groups {
		t.add(g.key, percent(g.cashback, g.sum))
	}
	return t
}

func cashbackRatioByCategory(records []core.Expense) Table {
	earning := where(records, func(e core.Expense) bool { return e.Cashback > 0 })
	return cashbackRatio(earning, categoryOf, "category")
}

func cashbackEfficiencyByPaymentMode(records []core.Expense) Table {
	t := cashbackRatio(records, paymentModeOf, "payment_mode")
	t.Columns[1] = "cashback_efficiency"
	return t
}

func zeroCashbackShare(records []core.Expense) Table {
	t := newTable("zero_cashback_percentage")
	if len(records) == 0 {
		return t
	}
	var zero float64
	for _, e := range records {
		if e.Cashback == 0 {
			zero += e.Amount
		}
	}
	t.add(percent(zero, totalAmount(records)))
	return t
}

// highCashbackTransactions lists records earning more than 5% back. Records
// with a zero amount have no defined ratio and are skipped.
func highCashbackTransactions(records []core.Expense) Table {
	t := newTable("date", "category", "amount", "cashback", "cashback_percentage")
	rows := where(records, func(e core.Expense) bool {
		return e.Amount > 0 && e.Cashback/e.Amount > 0.05
	})
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Cashback/rows[i].Amount > rows[j].Cashback/rows[j].Amount
	})
	for _, e := range rows {
		t.add(e.Date, e.Category, money(e.Amount), money(e.Cashback), percent(e.Cashback, e.Amount))
	}
	return t
}

// aboveCategoryAverage reports month/category totals above that category's
// mean monthly total.
func aboveCategoryAverage(records []core.Expense) Table {
	t := newTable("month", "category", "total_spent")
	monthly := groupBy(records, func(e core.Expense) ([]string, bool) {
		return []string{e.Month(), e.Category}, true
	})

	type acc struct {
		sum float64
		n   int
	}
	perCategory := map[string]*acc{}
	for _, g := range monthly {
		a, ok := perCategory[g.labels[1]]
		if !ok {
			a = &acc{}
			perCategory[g.labels[1]] = a
		}
		a.sum += g.sum
		a.n++
	}

	above := make([]*group, 0, len(monthly))
	for _, g := range monthly {
		a := perCategory[g.labels[1]]
		if g.sum > a.sum/float64(a.n) {
			above = append(above, g)
		}
	}
	sort.SliceStable(above, func(i, j int) bool {
		if above[i].labels[0] != above[j].labels[0] {
			return above[i].labels[0] < above[j].labels[0]
		}
		return above[i].sum > above[j].sum
	})
	for _, g := range above {
		t.add(g.labels[0], g.labels[1], money(g.sum))
	}
	return t
}
