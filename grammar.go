package main

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// All line grammars of the diary format live here. The reconciliation marker
// grammar in particular is a read/write contract shared by the expense
// extractor, the matching engine and the diary mutator, and must round-trip
// byte-for-byte.

var (
	// dateHeadingPattern matches "## <Weekday> <YYYY-MM-DD> ..." and captures
	// the date. The weekday token is validated elsewhere; here only the date
	// matters. \S instead of \w because Norwegian weekdays contain ø.
	dateHeadingPattern = regexp.MustCompile(`^## (\S+) (\d{4}-\d{2}-\d{2})`)

	// entryHeadingPattern decomposes a flattened date-heading key:
	// "<weekday-token> <YYYY-MM-DD> <free-text itinerary>".
	entryHeadingPattern = regexp.MustCompile(`^([^ ]*) (20\d\d-\d\d-\d\d)(.*)$`)

	// itineraryLegPattern splits one " - "-separated itinerary part into a
	// free-text leg and an optional parenthesized annotation.
	itineraryLegPattern = regexp.MustCompile(`^([^(]*)(\(.*\))?$`)

	// expenseLinePattern matches "* <CCY> <amount> - <type> - <description>".
	// The type label may contain internal whitespace ("harbour due").
	expenseLinePattern = regexp.MustCompile(
		`^\*\s+(` + strings.Join(SupportedCurrencies, "|") + `)\s+` +
			`(-?\d+(?:\.\d+)?)\s+-\s+` +
			`([\pL\pN\s]+?)\s+-\s+` +
			`(.+)$`)

	// reconciledMarkerPattern captures the components of a full
	// "(reconciled: BANK - DATE - CCY:AMT[/N][/BANKCCY:DEDUCTED])" marker.
	reconciledMarkerPattern = regexp.MustCompile(
		`\(reconciled:\s*(\w+)\s*-\s*(\d{4}-\d{2}-\d{2})\s*-\s*(\w+):(\d+\.?\d*)(?:/\d+|/\w+:\d+\.?\d*)?\)`)

	// reconciledAnnotationPattern only detects that a line carries any
	// reconciliation annotation.
	reconciledAnnotationPattern = regexp.MustCompile(`\(reconciled:[^)]+\)`)

	// cashAnnotationPattern marks expenses settled in cash; those never
	// appear on a bank statement.
	cashAnnotationPattern = regexp.MustCompile(`(?i)\(cash\)`)

	// splitMarkerLinePattern finds a split descriptor on a diary line, with
	// an optional "reconciled: " prefix meaning the split is already settled.
	splitMarkerLinePattern = regexp.MustCompile(
		`\((reconciled:\s*)?(\w+)\s*-\s*(\d{4}-\d{2}-\d{2})\s*-\s*(\w+):(\d+\.?\d*)/(\d+)\)`)

	// splitMarkerPattern parses a bare split descriptor (marker text without
	// parentheses) as kept on ExpenseRecord.SplitMarker.
	splitMarkerPattern = regexp.MustCompile(
		`^(\w+)\s*-\s*(\d{4}-\d{2}-\d{2})\s*-\s*(\w+):(\d+\.?\d*)/(\d+)$`)
)

// MarkerKey identifies one reconciled bank transaction. Amount is kept
// formatted to two decimals so that set membership is byte-exact.
type MarkerKey struct {
	Bank     string
	Date     string
	Currency string
	Amount   string
}

// NewMarkerKey builds the key a bank transaction would get in diary text.
func NewMarkerKey(t BankTransaction) MarkerKey {
	return MarkerKey{
		Bank:     t.Bank,
		Date:     t.Date.Format(DiaryDateFormat),
		Currency: t.Currency,
		Amount:   t.Amount.String(),
	}
}

// FormatReconciliationMarker renders the annotation appended to a matched
// diary line. When transaction and settlement currencies differ the deducted
// amount is carried after a slash so the settlement can be audited later.
func FormatReconciliationMarker(t BankTransaction) string {
	if t.Currency != t.BankCurrency {
		return fmt.Sprintf("(reconciled: %s - %s - %s:%s/%s:%s)",
			t.Bank, t.Date.Format(DiaryDateFormat), t.Currency, t.Amount.String(),
			t.BankCurrency, t.DeductedAmount.String())
	}
	return fmt.Sprintf("(reconciled: %s - %s - %s:%s)",
		t.Bank, t.Date.Format(DiaryDateFormat), t.Currency, t.Amount.String())
}

// SplitMarker is a parsed split descriptor: one bank transaction jointly
// covered by Count diary lines.
type SplitMarker struct {
	Bank     string
	Date     time.Time
	Currency string
	Amount   MoneyWith2DecimalPlaces
	Count    int
}

// ParseSplitMarker parses marker text of the form
// "BANK - YYYY-MM-DD - CCY:AMT/COUNT". Returns ok=false when the text does
// not follow the grammar.
func ParseSplitMarker(text string) (SplitMarker, bool) {
	m := splitMarkerPattern.FindStringSubmatch(text)
	if m == nil {
		return SplitMarker{}, false
	}
	date, err := time.Parse(DiaryDateFormat, m[2])
	if err != nil {
		return SplitMarker{}, false
	}
	var amount MoneyWith2DecimalPlaces
	if err := amount.ParseString(m[4]); err != nil {
		return SplitMarker{}, false
	}
	count, err := strconv.Atoi(m[5])
	if err != nil {
		return SplitMarker{}, false
	}
	return SplitMarker{
		Bank:     m[1],
		Date:     date,
		Currency: m[3],
		Amount:   amount,
		Count:    count,
	}, true
}

// formatAmountTo2Decimals normalizes a textual amount ("15.7", "15.70") to
// the two-decimal form used in marker keys.
func formatAmountTo2Decimals(s string) (string, error) {
	var m MoneyWith2DecimalPlaces
	if err := m.ParseString(s); err != nil {
		return "", err
	}
	return m.String(), nil
}
