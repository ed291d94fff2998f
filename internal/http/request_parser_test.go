package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"expensedash/internal/analytics"
	"expensedash/internal/core"
)

func TestRequestBodyParser_JSON(t *testing.T) {
	body := `{"date": "2024-06-15", "category": "Grocery", "amount": 42.5, "cashback": "1,25"}`
	req := httptest.NewRequest(http.MethodPost, "/api/expenses", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !parser.IsJSON() {
		t.Error("Expected IsJSON() to be true")
	}

	want := core.ExpenseInput{Date: "2024-06-15", Category: "Grocery", Amount: "42.5", Cashback: "1,25"}
	if got := parser.ExpenseInput(); got != want {
		t.Errorf("ExpenseInput() = %+v, want %+v", got, want)
	}
}

func TestRequestBodyParser_FormData(t *testing.T) {
	body := "date=2024-06-15&category=Food&payment_mode=Card&description=lunch+out&amount=12%2C50"
	req := httptest.NewRequest(http.MethodPost, "/api/expenses", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if parser.IsJSON() {
		t.Error("Expected IsJSON() to be false for form data")
	}

	in := parser.ExpenseInput()
	if in.Description != "lunch out" || in.Amount != "12,50" || in.PaymentMode != "Card" {
		t.Errorf("ExpenseInput() = %+v", in)
	}
}

func TestRequestBodyParser_EmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/expenses", strings.NewReader(""))

	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if val := parser.Get("nonexistent"); val != "" {
		t.Errorf("Get('nonexistent') = %q, want empty string", val)
	}
}

func TestRequestBodyParser_Errors(t *testing.T) {
	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/expenses", strings.NewReader(`{"amount":`))
		req.Header.Set("Content-Type", "application/json")
		if err := NewRequestBodyParser(req).Parse(); err == nil {
			t.Fatal("expected error for malformed JSON")
		}
	})

	t.Run("too large", func(t *testing.T) {
		body := "description=" + strings.Repeat("x", maxBodyBytes)
		req := httptest.NewRequest(http.MethodPost, "/api/expenses", strings.NewReader(body))
		if err := NewRequestBodyParser(req).Parse(); !errors.Is(err, errBodyTooLarge) {
			t.Fatalf("Parse() error = %v, want errBodyTooLarge", err)
		}
	})
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  Grocery  ", "Grocery"},
		{"a\x00b\x07c", "abc"},
		{"line\nbreak\ttab", "line\nbreak\ttab"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := sanitizeInput(tt.in); got != tt.want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseFilterSpec(t *testing.T) {
	tests := []struct {
		name         string
		query        url.Values
		wantCategory string
		wantMonth    string
		wantEmpty    bool
	}{
		{"no params", url.Values{}, "", "", true},
		{"All is unconstrained", url.Values{"category": {"All"}, "payment_mode": {"All"}}, "", "", true},
		{"category and month", url.Values{"category": {" Travel "}, "month": {"2024-01"}}, "Travel", "2024-01", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := ParseFilterSpec(tt.query)
			if spec.IsEmpty() != tt.wantEmpty {
				t.Fatalf("IsEmpty() = %v, want %v (%+v)", spec.IsEmpty(), tt.wantEmpty, spec)
			}
			if tt.wantCategory != "" && (spec.Category == nil || *spec.Category != tt.wantCategory) {
				t.Errorf("Category = %v, want %q", spec.Category, tt.wantCategory)
			}
			if tt.wantMonth != "" && (spec.Month == nil || *spec.Month != tt.wantMonth) {
				t.Errorf("Month = %v, want %q", spec.Month, tt.wantMonth)
			}
		})
	}
}

func TestParseQueryID(t *testing.T) {
	if id, err := ParseQueryID(" 12 "); err != nil || id != 12 {
		t.Fatalf("ParseQueryID(12) = %d, %v", id, err)
	}
	if _, err := ParseQueryID("twelve"); !errors.Is(err, analytics.ErrUnknownQuery) {
		t.Fatalf("ParseQueryID(twelve) error = %v", err)
	}
}
