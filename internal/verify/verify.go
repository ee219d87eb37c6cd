// Package verify holds the harness's assertion primitives: pure,
// side-effect-free checks over captured DOM content, downloaded artifacts,
// and numeric values across locale formats.
package verify

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// AssertionError reports an observed value disagreeing with the expected
// one. Both values are carried verbatim.
type AssertionError struct {
	What     string
	Expected string
	Actual   string
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("%s: expected %q, got %q", e.What, e.Expected, e.Actual)
}

// Contains asserts that content includes fragment.
func Contains(what, content, fragment string) error {
	if !strings.Contains(content, fragment) {
		return &AssertionError{What: what, Expected: "content containing " + fragment, Actual: truncate(content, 200)}
	}
	return nil
}

// Lacks asserts that content does not include fragment.
func Lacks(what, content, fragment string) error {
	if strings.Contains(content, fragment) {
		return &AssertionError{What: what, Expected: "content without " + fragment, Actual: truncate(content, 200)}
	}
	return nil
}

// Equal asserts string equality.
func Equal(what, expected, actual string) error {
	if expected != actual {
		return &AssertionError{What: what, Expected: expected, Actual: actual}
	}
	return nil
}

// ParseLocaleNumber parses a decimal that may use either a dot or a comma
// separator ("1250.00", "1.250,00", "-123,45").
func ParseLocaleNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") {
		// Comma is the decimal separator; dots are thousands markers.
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a locale-formatted number: %q", s)
	}
	return v, nil
}

// NumericEqual asserts two rendered numbers are the same value regardless
// of which decimal separator either uses.
func NumericEqual(what, expected, actual string) error {
	e, err := ParseLocaleNumber(expected)
	if err != nil {
		return &AssertionError{What: what, Expected: expected, Actual: actual}
	}
	a, err := ParseLocaleNumber(actual)
	if err != nil {
		return &AssertionError{What: what, Expected: expected, Actual: actual}
	}
	if math.Abs(e-a) > 0.005 {
		return &AssertionError{What: what, Expected: expected, Actual: actual}
	}
	return nil
}

// MovementRow is a rendered ledger row as the scenarios capture it.
type MovementRow struct {
	ID          int64
	Description string
	Amount      float64
	Account     string
	Category    string
}

// BalancedPair asserts the transfer invariant: exactly two rows whose
// amounts are additive inverses, on two distinct accounts, sharing one
// description.
func BalancedPair(rows []MovementRow, description string, amount float64, origin, destination string) error {
	if len(rows) != 2 {
		return &AssertionError{
			What:     "transfer row count",
			Expected: "exactly 2 movements",
			Actual:   fmt.Sprintf("%d movements", len(rows)),
		}
	}
	var debit, credit *MovementRow
	for i := range rows {
		if rows[i].Description != description {
			return &AssertionError{What: "transfer description", Expected: description, Actual: rows[i].Description}
		}
		switch {
		case math.Abs(rows[i].Amount+amount) < 0.005:
			debit = &rows[i]
		case math.Abs(rows[i].Amount-amount) < 0.005:
			credit = &rows[i]
		}
	}
	if debit == nil || credit == nil {
		return &AssertionError{
			What:     "transfer amounts",
			Expected: fmt.Sprintf("one %+.2f and one %+.2f leg", -amount, amount),
			Actual:   fmt.Sprintf("%+.2f and %+.2f", rows[0].Amount, rows[1].Amount),
		}
	}
	if debit.Account == credit.Account {
		return &AssertionError{What: "transfer accounts", Expected: "two distinct accounts", Actual: debit.Account}
	}
	if debit.Account != origin {
		return &AssertionError{What: "debited account", Expected: origin, Actual: debit.Account}
	}
	if credit.Account != destination {
		return &AssertionError{What: "credited account", Expected: destination, Actual: credit.Account}
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
