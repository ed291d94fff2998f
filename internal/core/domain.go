package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// DateLayout is the on-disk representation of an expense date.
const DateLayout = "2006-01-02"

// maxDescriptionRunes bounds a description in characters, not bytes.
const maxDescriptionRunes = 200

type (
	// Expense is a single persisted spending record. Records are append-only.
	Expense struct {
		ID          int64   `json:"id"`
		Date        string  `json:"date"`
		Category    string  `json:"category"`
		PaymentMode string  `json:"payment_mode"`
		Description string  `json:"description"`
		Amount      float64 `json:"amount"`
		Cashback    float64 `json:"cashback"`
	}

	// ExpenseInput is the raw, user-entered form of an expense before validation.
	ExpenseInput struct {
		Date        string `json:"date"`
		Category    string `json:"category"`
		PaymentMode string `json:"payment_mode"`
		Description string `json:"description"`
		Amount      string `json:"amount"`
		Cashback    string `json:"cashback"`
	}

	// KPIs summarises a set of expenses for the dashboard header.
	KPIs struct {
		Total         float64 `json:"total"`
		Count         int     `json:"count"`
		TotalCashback float64 `json:"total_cashback"`
		Mean          float64 `json:"mean"`
	}
)

var (
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidCashback    = errors.New("invalid cashback")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
)

// ValidationError reports input rejected before it reaches the store.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validate %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// StorageError reports an I/O failure in the persistence layer.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Month returns the YYYY-MM prefix of the date, or the whole date when it is shorter.
func (e Expense) Month() string {
	if len(e.Date) < 7 {
		return e.Date
	}
	return e.Date[:7]
}

// Weekday parses the date and returns its day of the week.
func (e Expense) Weekday() (time.Weekday, bool) {
	t, err := time.Parse(DateLayout, e.Date)
	if err != nil {
		return 0, false
	}
	return t.Weekday(), true
}

// DayOfMonth parses the date and returns its day of the month.
func (e Expense) DayOfMonth() (int, bool) {
	t, err := time.Parse(DateLayout, e.Date)
	if err != nil {
		return 0, false
	}
	return t.Day(), true
}

// Validate checks the invariants enforced at entry. Cashback above the amount is accepted.
func (e Expense) Validate() error {
	if _, err := time.Parse(DateLayout, e.Date); err != nil {
		return &ValidationError{Field: "date", Err: ErrInvalidDate}
	}
	if !validMoney(e.Amount) {
		return &ValidationError{Field: "amount", Err: ErrInvalidAmount}
	}
	if !validMoney(e.Cashback) {
		return &ValidationError{Field: "cashback", Err: ErrInvalidCashback}
	}
	if utf8.RuneCountInString(e.Description) > maxDescriptionRunes {
		return &ValidationError{Field: "description", Err: ErrDescriptionTooLong}
	}
	return nil
}

// NewExpense parses and validates raw input into an Expense without an ID.
// Empty amount or cashback defaults to zero.
func NewExpense(in ExpenseInput) (Expense, error) {
	amount, err := ParseAmount(in.Amount)
	if err != nil {
		return Expense{}, &ValidationError{Field: "amount", Err: err}
	}
	cashback, err := ParseAmount(in.Cashback)
	if err != nil {
		return Expense{}, &ValidationError{Field: "cashback", Err: ErrInvalidCashback}
	}

	e := Expense{
		Date:        strings.TrimSpace(in.Date),
		Category:    strings.TrimSpace(in.Category),
		PaymentMode: strings.TrimSpace(in.PaymentMode),
		Description: strings.TrimSpace(in.Description),
		Amount:      amount,
		Cashback:    cashback,
	}
	if err := e.Validate(); err != nil {
		return Expense{}, err
	}
	return e, nil
}
