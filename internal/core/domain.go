package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

// DateLayout is the storage format for every date in the ledger. It is
// load-bearing: sort order and month bucketing both parse through it.
const DateLayout = "02-01-2006"

// MonthKeyLayout is the bucket key format used by the monthly trend.
const MonthKeyLayout = "2006-01"

// CategorySalary is the income sentinel: a transaction in this category
// counts as income, every other category counts as expense.
const CategorySalary = "Salaire"

// Categories is the fixed category set offered at transaction entry.
var Categories = []string{
	"Alimentation",
	"Transport",
	"Loisirs",
	"Factures",
	"Santé",
	"Éducation",
	CategorySalary,
	"Autres",
}

type (
	Frequency string

	// Transaction is one ledger entry. Date and Amount stay exactly as
	// entered; records that fail to parse are excluded from sorting and
	// aggregation but are never deleted.
	Transaction struct {
		ID          string `json:"id"`
		Date        string `json:"date"`
		Description string `json:"description"`
		Amount      string `json:"amount"`
		Category    string `json:"category"`
		Account     string `json:"account"`
	}

	// Budget is a monthly spending ceiling for one expense category.
	// At most one budget exists per category.
	Budget struct {
		Category string          `json:"category"`
		Amount   decimal.Decimal `json:"amount"`
	}

	// RecurrenceRule is a template the recurrence engine materializes into
	// concrete transactions. NextDate only ever advances forward.
	RecurrenceRule struct {
		ID          string    `json:"id"`
		Description string    `json:"description"`
		Amount      string    `json:"amount"`
		Category    string    `json:"category"`
		Account     string    `json:"account"`
		Frequency   Frequency `json:"frequency"`
		NextDate    string    `json:"next_date"`
	}

	// Account is a display name identifying a pool of funds. Transactions
	// and rules reference accounts by name.
	Account struct {
		Name string `json:"name"`
	}
)

var (
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyAccount     = errors.New("empty account")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrUnknownCategory  = errors.New("unknown category")
	ErrUnknownFrequency = errors.New("unknown frequency")
)

// ParseDate parses a stored date string. The layout is strict: two-digit
// day, two-digit month, four-digit year.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// FormatDate renders a date in the storage layout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseAmount parses a stored amount string. A comma decimal separator is
// tolerated because amounts are kept as the user entered them.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// Magnitude parses an amount and returns its absolute value, the form all
// aggregation works in.
func Magnitude(s string) (decimal.Decimal, error) {
	d, err := ParseAmount(s)
	if err != nil {
		return decimal.Zero, err
	}
	return d.Abs(), nil
}

func validCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

func (f Frequency) Valid() bool {
	switch f {
	case Weekly, Monthly, Yearly:
		return true
	}
	return false
}

// Validate checks a transaction at the input boundary. Stores never accept
// an invalid record through Add; malformed records can only enter a store
// by already being present in its backing file.
func (t Transaction) Validate() error {
	if _, err := ParseDate(t.Date); err != nil {
		return err
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if _, err := ParseAmount(t.Amount); err != nil {
		return err
	}
	if !validCategory(t.Category) {
		return ErrUnknownCategory
	}
	if strings.TrimSpace(t.Account) == "" {
		return ErrEmptyAccount
	}
	return nil
}

func (r RecurrenceRule) Validate() error {
	if strings.TrimSpace(r.Description) == "" {
		return ErrEmptyDescription
	}
	if _, err := ParseAmount(r.Amount); err != nil {
		return err
	}
	if !validCategory(r.Category) {
		return ErrUnknownCategory
	}
	if strings.TrimSpace(r.Account) == "" {
		return ErrEmptyAccount
	}
	if !r.Frequency.Valid() {
		return ErrUnknownFrequency
	}
	if _, err := ParseDate(r.NextDate); err != nil {
		return err
	}
	return nil
}
