package report

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"chit-fund-analyzer/domain"
)

var (
	lakh  = decimal.NewFromInt(100_000)
	crore = decimal.NewFromInt(10_000_000)
)

// FormatINR formats an amount with Indian digit grouping.
// e.g., 1927345.5 → "₹19,27,345.50"
func FormatINR(amount decimal.Decimal) string {
	prefix := "₹"
	if amount.IsNegative() {
		prefix = "-₹"
		amount = amount.Abs()
	}
	fixed := amount.StringFixed(2)
	intPart, decPart, _ := strings.Cut(fixed, ".")
	return prefix + groupIndian(intPart) + "." + decPart
}

// FormatINRCompact uses lakh and crore units for large amounts.
// e.g., 1927345 → "₹19.27 L"
func FormatINRCompact(amount decimal.Decimal) string {
	prefix := "₹"
	if amount.IsNegative() {
		prefix = "-₹"
		amount = amount.Abs()
	}
	switch {
	case amount.GreaterThanOrEqual(crore):
		return prefix + amount.Div(crore).StringFixed(2) + " Cr"
	case amount.GreaterThanOrEqual(lakh):
		return prefix + amount.Div(lakh).StringFixed(2) + " L"
	default:
		return prefix + strings.TrimPrefix(FormatINR(amount), "₹")
	}
}

// groupIndian groups the last three digits, then pairs.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(parts, ",") + "," + tail
}

// FormatPercent renders a fraction as a percentage with two decimals.
func FormatPercent(fraction decimal.Decimal) string {
	return fraction.Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
}

// FormatRate renders a rate as a percentage, or "n/a" when undefined.
func FormatRate(r domain.Rate) string {
	if !r.Defined {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", r.Value*100)
}
