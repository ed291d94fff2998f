package analytics

import (
	"sort"
	"time"

	"expensedash/internal/core"
)

// Catalog A: general spending insights.

func spendByCategoryDesc(records []core.Expense) Table {
	t := newTable("category", "total_spent")
	groups := groupBy(records, by(categoryOf))
	sortDesc(groups, sumOf)
	for _, g := range groups {
		t.add(g.key, money(g.sum))
	}
	return t
}

func spendByPaymentMode(records []core.Expense) Table {
	t := newTable("payment_mode", "total_spent")
	for _, g := range groupBy(records, by(paymentModeOf)) {
		t.add(g.key, money(g.sum))
	}
	return t
}

func totalCashback(records []core.Expense) Table {
	t := newTable("total_cashback")
	if len(records) == 0 {
		return t
	}
	var s float64
	for _, e := range records {
		s += e.Cashback
	}
	t.add(money(s))
	return t
}

func topCategories(records []core.Expense) Table {
	t := spendByCategoryDesc(records)
	if len(t.Rows) > 5 {
		t.Rows = t.Rows[:5]
	}
	return t
}

func transportationByPaymentMode(records []core.Expense) Table {
	t := newTable("payment_mode", "total_spent")
	groups := groupBy(where(records, inCategory("Transportation")), by(paymentModeOf))
	sortDesc(groups, sumOf)
	for _, g := range groups {
		t.add(g.key, money(g.sum))
	}
	return t
}

func cashbackTransactions(records []core.Expense) Table {
	t := newTable("date", "category", "payment_mode", "amount", "cashback")
	rows := where(records, func(e core.Expense) bool { return e.Cashback > 0 })
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Cashback > rows[j].Cashback })
	for _, e := range rows {
		t.add(e.Date, e.Category, e.PaymentMode, money(e.Amount), money(e.Cashback))
	}
	return t
}

func monthlySpend(records []core.Expense) Table {
	t := newTable("month", "total_spent")
	for _, g := range monthlyTotals(records) {
		t.add(g.key, money(g.sum))
	}
	return t
}

var leisureCategories = map[string]bool{"Travel": true, "Entertainment": true, "Gifts": true}

func leisureSpendByMonth(records []core.Expense) Table {
	t := newTable("month", "category", "total_spent")
	groups := groupBy(
		where(records, func(e core.Expense) bool { return leisureCategories[e.Category] }),
		func(e core.Expense) ([]string, bool) { return []string{e.Month(), e.Category}, true },
	)
	sortDesc(groups, sumOf)
	for _, g := range groups {
		t.add(g.labels[0], g.labels[1], money(g.sum))
	}
	return t
}

func recurringDescriptions(records []core.Expense) Table {
	t := newTable("description", "frequency")
	groups := groupBy(records, by(descriptionOf))
	sortDesc(groups, func(g *group) float64 { return float64(g.n) })
	for _, g := range groups {
		if g.n > 2 {
			t.add(g.key, int64(g.n))
		}
	}
	return t
}

func monthlyCashback(records []core.Expense) Table {
	t := newTable("month", "total_cashback")
	for _, g := range monthlyTotals(records) {
		t.add(g.key, money(g.cashback))
	}
	return t
}

// monthOverMonth backs both A11 and B7. The first month has a null delta.
func monthOverMonth(records []core.Expense) Table {
	t := newTable("month", "total_spent", "month_change")
	var prev float64
	for i, g := range monthlyTotals(records) {
		var change any
		if i > 0 {
			change = money(g.sum - prev)
		}
		t.add(g.key, money(g.sum), change)
		prev = g.sum
	}
	return t
}

func travelCostsByType(records []core.Expense) Table {
	t := newTable("travel_type", "avg_cost", "min_cost", "max_cost")
	groups := groupBy(where(records, inCategory("Travel")), by(descriptionOf))
	sortDesc(groups, (*group).mean)
	for _, g := range groups {
		t.add(g.key, money(g.mean()), money(g.min), money(g.max))
	}
	return t
}

// groceryDayType splits Grocery spend into Weekend and Weekday. Dates that do
// not parse fall into Weekday, as they fail the weekend test.
func groceryDayType(records []core.Expense) Table {
	t := newTable("day_type", "total_spent")
	groups := groupBy(where(records, inCategory("Grocery")), func(e core.Expense) ([]string, bool) {
		if wd, ok := e.Weekday(); ok && (wd == time.Saturday || wd == time.Sunday) {
			return []string{"Weekend"}, true
		}
		return []string{"Weekday"}, true
	})
	for _, g := range groups {
		t.add(g.key, money(g.sum))
	}
	return t
}

// ntile assigns 1-based bucket numbers to n ordered items the way SQL NTILE does:
// the first n%buckets buckets hold one extra item.
func ntile(n, buckets int) []int {
	out := make([]int, n)
	if n == 0 || buckets <= 0 {
		return out
	}
	size, extra := n/buckets, n%buckets
	i := 0
	for b := 1; b <= buckets && i < n; b++ {
		count := size
		if b <= extra {
			count++
		}
		for j := 0; j < count && i < n; j++ {
			out[i] = b
			i++
		}
	}
	return out
}

func categoryPriority(records []core.Expense) Table {
	t := newTable("category", "total_spent", "priority_level")
	groups := groupBy(records, by(categoryOf))
	sortDesc(groups, sumOf)
	tiers := ntile(len(groups), 3)
	for i, g := range groups {
		level := "Medium Priority"
		switch tiers[i] {
		case 1:
			level = "High Priority"
		case 3:
			level = "Low Priority"
		}
		t.add(g.key, money(g.sum), level)
	}
	return t
}

// CategoryShares returns every category's percentage of total spend, highest first.
// Percentages are null when total spend is zero.
func CategoryShares(records []core.Expense) Table {
	t := newTable("category", "percentage_contribution")
	grand := totalAmount(records)
	groups := groupBy(records, by(categoryOf))
	sortDescNullsLast(groups, func(g *group) (float64, bool) { return ratio(g.sum, grand) })
	for _, g := range groups {
		t.add(g.key, percent(g.sum, grand))
	}
	return t
}

func topCategoryShare(records []core.Expense) Table {
	t := CategoryShares(records)
	if len(t.Rows) > 1 {
		t.Rows = t.Rows[:1]
	}
	return t
}
