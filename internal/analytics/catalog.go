// Package analytics implements the fixed library of dashboard queries.
//
// Every query is a pure function from the full record set to a Table. Queries
// never fail on data: empty input yields zero rows and undefined ratios are
// reported as null cells.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"expensedash/internal/core"
)

// Catalog identifies one of the two query catalogs.
type Catalog string

const (
	CatalogGeneral Catalog = "A"
	CatalogDerived Catalog = "B"
)

var ErrUnknownQuery = errors.New("unknown query")

// QueryFunc computes a result table from the full record set.
type QueryFunc func(records []core.Expense) Table

// Query is one catalog entry.
type Query struct {
	ID    int       `json:"id"`
	Label string    `json:"label"`
	Fn    QueryFunc `json:"-"`
}

// Result pairs a query with its output.
type Result struct {
	Catalog Catalog `json:"catalog"`
	ID      int     `json:"id"`
	Label   string  `json:"label"`
	Table   Table   `json:"table"`
}

func generalQueries() []Query {
	return []Query{
		{1, "What is the total amount spent in each category?", spendByCategoryDesc},
		{2, "What is the total amount spent using each payment mode?", spendByPaymentMode},
		{3, "What is the total cashback received across all transactions?", totalCashback},
		{4, "Which are the top 5 most expensive categories in terms of spending?", topCategories},
		{5, "How much was spent on transportation using different payment modes?", transportationByPaymentMode},
		{6, "Which transactions resulted in cashback?", cashbackTransactions},
		{7, "What is the total spending in each month of the year?", monthlySpend},
		{8, "Which months have the highest spending in Travel, Entertainment, or Gifts?", leisureSpendByMonth},
		{9, "Are there any recurring expenses during specific months?", recurringDescriptions},
		{10, "How much cashback or rewards were earned in each month?", monthlyCashback},
		{11, "How has overall spending changed over time?", monthOverMonth},
		{12, "What are the typical costs for different travel types?", travelCostsByType},
		{13, "Are there patterns in grocery spending (weekday vs weekend)?", groceryDayType},
		{14, "Define High and Low Priority Categories based on spending", categoryPriority},
		{15, "Which category contributes the highest percentage of total spending?", topCategoryShare},
	}
}

func derivedQueries() []Query {
	return []Query{
		{1, "Which day of the week has the highest average spending?", averageByWeekday},
		{2, "What is the average transaction value per category?", averageByCategory},
		{3, "Which categories have the highest spending variability?", varianceByCategory},
		{4, "What percentage of transactions are Cash vs Online?", paymentModeShare},
		{5, "What is the median expense amount per category?", medianByCategory},
		{6, "Which week of the month contributes most to spending?", spendByWeekOfMonth},
		{7, "Month-over-month spending change", monthOverMonth},
		{8, "Months with abnormal spending spikes", spendingSpikes},
		{9, "Categories showing seasonal behavior", varianceByCategory},
		{10, "Rolling 3-month average spending", rollingAverage},
		{11, "Highest cashback-to-spend ratio by category", cashbackRatioByCategory},
		{12, "Cashback efficiency by payment mode", cashbackEfficiencyByPaymentMode},
		{13, "Percentage of spending with zero cashback", zeroCashbackShare},
		{14, "Transactions with cashback > 5%", highCashbackTransactions},
		{15, "Categories exceeding their monthly average", aboveCategoryAverage},
	}
}

// Catalogs returns the catalogs in display order.
func Catalogs() []Catalog {
	return []Catalog{CatalogGeneral, CatalogDerived}
}

// Title is the display name of the catalog.
func (c Catalog) Title() string {
	switch c {
	case CatalogGeneral:
		return "General insights"
	case CatalogDerived:
		return "Derived insights"
	default:
		return string(c)
	}
}

// ParseCatalog accepts the catalog letter or its name, case-insensitively.
func ParseCatalog(s string) (Catalog, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "a", "general":
		return CatalogGeneral, nil
	case "b", "derived":
		return CatalogDerived, nil
	default:
		return "", fmt.Errorf("catalog %q: %w", s, ErrUnknownQuery)
	}
}

// Queries returns the entries of a catalog in display order.
func Queries(c Catalog) ([]Query, error) {
	switch c {
	case CatalogGeneral:
		return generalQueries(), nil
	case CatalogDerived:
		return derivedQueries(), nil
	default:
		return nil, fmt.Errorf("catalog %q: %w", c, ErrUnknownQuery)
	}
}

// Lookup finds a single catalog entry.
func Lookup(c Catalog, id int) (Query, error) {
	qs, err := Queries(c)
	if err != nil {
		return Query{}, err
	}
	for _, q := range qs {
		if q.ID == id {
			return q, nil
		}
	}
	return Query{}, fmt.Errorf("catalog %s query %d: %w", c, id, ErrUnknownQuery)
}

// Run executes one query over the full record set.
func Run(c Catalog, id int, records []core.Expense) (Table, error) {
	q, err := Lookup(c, id)
	if err != nil {
		return Table{}, err
	}
	return q.Fn(records), nil
}

// RunCatalog executes every query of a catalog and returns the results in
// catalog order. Queries only read records, so they run concurrently.
func RunCatalog(ctx context.Context, c Catalog, records []core.Expense) ([]Result, error) {
	qs, err := Queries(c)
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(qs))
	g, ctx := errgroup.WithContext(ctx)
	for i, q := range qs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = Result{Catalog: c, ID: q.ID, Label: q.Label, Table: q.Fn(records)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("run catalog %s: %w", c, err)
	}
	return results, nil
}
