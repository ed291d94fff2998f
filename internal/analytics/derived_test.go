package analytics

import (
	"reflect"
	"testing"

	"expensedash/internal/core"
)

func TestMedianByCategory(t *testing.T) {
	tests := []struct {
		name    string
		amounts []float64
		want    float64
	}{
		{"single", []float64{42}, 42},
		{"odd", []float64{30, 10, 20}, 20},
		{"even", []float64{40, 10, 30, 20}, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var records []core.Expense
			for i, a := range tt.amounts {
				records = append(records, exp(int64(i+1), "2024-01-01", "Grocery", "Cash", "", a, 0))
			}
			got := medianByCategory(records)
			if v, _ := cellFloat(got, 0, "median_amount"); v != tt.want {
				t.Fatalf("median = %v, want %v", v, tt.want)
			}
		})
	}
}

func TestAverageByCategory(t *testing.T) {
	records := []core.Expense{
		exp(1, "2024-01-01", "Grocery", "Cash", "", 10, 0),
		exp(2, "2024-01-02", "Grocery", "Cash", "", 30, 0),
		exp(3, "2024-01-03", "Travel", "Online", "", 100, 0),
		exp(4, "2024-01-04", "Bills", "Card", "", 5, 0),
	}
	got := averageByCategory(records)

	want := []Row{{"Travel", 100.0}, {"Grocery", 20.0}, {"Bills", 5.0}}
	if !reflect.DeepEqual(got.Columns, []string{"category", "avg_transaction_value"}) {
		t.Fatalf("columns = %v", got.Columns)
	}
	if !reflect.DeepEqual(got.Rows, want) {
		t.Fatalf("rows = %v, want %v", got.Rows, want)
	}
}

func TestVarianceByCategory(t *testing.T) {
	records := []core.Expense{
		exp(1, "2024-01-01", "Grocery", "Cash", "", 10, 0),
		exp(2, "2024-01-02", "Grocery", "Cash", "", 20, 0),
		exp(3, "2024-01-03", "Rent", "Online", "", 500, 0),
		exp(4, "2024-02-03", "Rent", "Online", "", 500, 0),
	}
	got := varianceByCategory(records)
	want := []Row{{"Grocery", 25.0}, {"Rent", 0.0}}
	if !reflect.DeepEqual(got.Rows, want) {
		t.Fatalf("rows = %v, want %v", got.Rows, want)
	}
}

func TestAverageByWeekday(t *testing.T) {
	records := []core.Expense{
		exp(1, "2024-06-01", "Grocery", "Cash", "", 30, 0), // Saturday
		exp(2, "2024-06-08", "Grocery", "Cash", "", 10, 0), // Saturday
		exp(3, "2024-06-03", "Grocery", "Cash", "", 50, 0), // Monday
		exp(4, "garbage", "Grocery", "Cash", "", 1000, 0),
	}
	got := averageByWeekday(records)
	want := []Row{
		{int64(1), "Monday", 50.0},
		{int64(6), "Saturday", 20.0},
	}
	if !reflect.DeepEqual(got.Rows, want) {
		t.Fatalf("rows = %v, want %v", got.Rows, want)
	}
}

func TestPaymentModeShare(t *testing.T) {
	records := []core.Expense{
		exp(1, "2024-01-01", "Grocery", "Cash", "", 10, 0),
		exp(2, "2024-01-01", "Grocery", "Online", "", 10, 0),
		exp(3, "2024-01-01", "Grocery", "Online", "", 10, 0),
	}
	got := paymentModeShare(records)
	want := []Row{
		{"Cash", int64(1), 33.33},
		{"Online", int64(2), 66.67},
	}
	if !reflect.DeepEqual(got.Rows, want) {
		t.Fatalf("rows = %v, want %v", got.Rows, want)
	}
}

func TestSpendByWeekOfMonth(t *testing.T) {
	records := []core.Expense{
		exp(1, "2024-01-07", "Grocery", "Cash", "", 10, 0),
		exp(2, "2024-01-08", "Grocery", "Cash", "", 20, 0),
		exp(3, "2024-02-29", "Grocery", "Cash", "", 5, 0),
		exp(4, "2024-03-31", "Grocery", "Cash", "", 6, 0),
	}
	got := spendByWeekOfMonth(records)
	want := []Row{{int64(2), 20.0}, {int64(5), 11.0}, {int64(1), 10.0}}
	if !reflect.DeepEqual(got.Rows, want) {
		t.Fatalf("rows = %v, want %v", got.Rows, want)
	}
}

func TestSpendingSpikes(t *testing.T) {
	records := []core.Expense{
		exp(1, "2024-01-01", "Grocery", "Cash", "", 100, 0),
		exp(2, "2024-02-01", "Grocery", "Cash", "", 100, 0),
		exp(3, "2024-03-01", "Grocery", "Cash", "", 400, 0),
	}
	got := spendingSpikes(records)
	want := []Row{{"2024-03", 400.0}}
	if !reflect.DeepEqual(got.Rows, want) {
		t.Fatalf("rows = %v, want %v", got.Rows, want)
	}

	flat := spendingSpikes(records[:2])
	if flat.Len() != 0 {
		t.Fatalf("equal months cannot spike, got %v", flat.Rows)
	}
}

func TestRollingAverage(t *testing.T) {
	records := []core.Expense{
		exp(1, "2024-01-01", "Grocery", "Cash", "", 30, 0),
		exp(2, "2024-02-01", "Grocery", "Cash", "", 60, 0),
		exp(3, "2024-03-01", "Grocery", "Cash", "", 90, 0),
		exp(4, "2024-04-01", "Grocery", "Cash", "", 120, 0),
	}
	got := rollingAverage(records)
	want := []any{30.0, 45.0, 60.0, 90.0}
	if !reflect.DeepEqual(column(got, "rolling_avg"), want) {
		t.Fatalf("rolling = %v, want %v", column(got, "rolling_avg"), want)
	}
}

func TestCashbackRatios(t *testing.T) {
	records := []core.Expense{
		exp(1, "2024-01-01", "Grocery", "Card", "", 100, 5),
		exp(2, "2024-01-01", "Travel", "Card", "", 100, 0),
		exp(3, "2024-01-01", "Gifts", "Cash", "", 0, 0),
		exp(4, "2024-01-01", "Fuel", "Online", "", 50, 10),
	}

	byCategory := cashbackRatioByCategory(records)
	want := []Row{{"Fuel", 20.0}, {"Grocery", 5.0}}
	if !reflect.DeepEqual(byCategory.Rows, want) {
		t.Fatalf("by category = %v, want %v", byCategory.Rows, want)
	}

	byMode := cashbackEfficiencyByPaymentMode(records)
	if byMode.Columns[1] != "cashback_efficiency" {
		t.Fatalf("columns = %v", byMode.Columns)
	}
	want = []Row{{"Online", 20.0}, {"Card", 2.5}, {"Cash", nil}}
	if !reflect.DeepEqual(byMode.Rows, want) {
		t.Fatalf("by mode = %v, want %v", byMode.Rows, want)
	}
}

func TestZeroCashbackShare(t *testing.T) {
	tests := []struct {
		name    string
		records []core.Expense
		want    []Row
	}{
		{"empty", nil, []Row{}},
		{"zero total", []core.Expense{exp(1, "2024-01-01", "A", "Cash", "", 0, 0)}, []Row{{nil}}},
		{"mixed", []core.Expense{
			exp(1, "2024-01-01", "A", "Cash", "", 75, 0),
			exp(2, "2024-01-01", "A", "Card", "", 25, 1),
		}, []Row{{75.0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := zeroCashbackShare(tt.records)
			if !reflect.DeepEqual(got.Rows, tt.want) {
				t.Fatalf("rows = %v, want %v", got.Rows, tt.want)
			}
		})
	}
}

func TestHighCashbackTransactions(t *testing.T) {
	records := []core.Expense{
		exp(1, "2024-01-01", "Grocery", "Card", "", 100, 5),
		exp(2, "2024-01-02", "Grocery", "Card", "", 100, 6),
		exp(3, "2024-01-03", "Fuel", "Card", "", 10, 2),
		exp(4, "2024-01-04", "Gifts", "Card", "", 0, 3),
	}
	got := highCashbackTransactions(records)
	want := []Row{
		{"2024-01-03", "Fuel", 10.0, 2.0, 20.0},
		{"2024-01-02", "Grocery", 100.0, 6.0, 6.0},
	}
	if !reflect.DeepEqual(got.Rows, want) {
		t.Fatalf("rows = %v, want %v", got.Rows, want)
	}
}

func TestAboveCategoryAverage(t *testing.T) {
	records := []core.Expense{
		exp(1, "2024-01-01", "Grocery", "Cash", "", 100, 0),
		exp(2, "2024-02-01", "Grocery", "Cash", "", 300, 0),
		exp(3, "2024-02-01", "Travel", "Cash", "", 50, 0),
		exp(4, "2024-01-01", "Travel", "Cash", "", 10, 0),
		exp(5, "2024-03-01", "Travel", "Cash", "", 60, 0),
	}
	got := aboveCategoryAverage(records)
	want := []Row{
		{"2024-02", "Grocery", 300.0},
		{"2024-02", "Travel", 50.0},
		{"2024-03", "Travel", 60.0},
	}
	if !reflect.DeepEqual(got.Rows, want) {
		t.Fatalf("rows = %v, want %v", got.Rows, want)
	}
}
