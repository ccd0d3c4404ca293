package main

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// MoneyWith2DecimalPlaces is a wrapper to parse money from "1,500.00" or
// "1,500" to 150000 cents. Whole-cent integers avoid float drift in the
// tolerance comparisons of the matching engine.
type MoneyWith2DecimalPlaces struct {
	int
}

// ParseString removes commas and parses string as float, rounding to cents.
func (m *MoneyWith2DecimalPlaces) ParseString(s string) error {
	sanitizedText := strings.Replace(s, ",", "", -1)
	floatVal, err := strconv.ParseFloat(sanitizedText, 64)
	if err != nil {
		return err
	}
	m.int = int(math.Round(floatVal * 100))
	return nil
}

// UnmarshalText removes commas and parses string as float.
func (m *MoneyWith2DecimalPlaces) UnmarshalText(text []byte) error {
	return m.ParseString(string(text))
}

// MoneyFromFloat rounds a float amount to whole cents.
func MoneyFromFloat(v float64) MoneyWith2DecimalPlaces {
	return MoneyWith2DecimalPlaces{int: int(math.Round(v * 100))}
}

// Cents returns the raw amount in cents.
func (m MoneyWith2DecimalPlaces) Cents() int {
	return m.int
}

// Abs returns the absolute amount.
func (m MoneyWith2DecimalPlaces) Abs() MoneyWith2DecimalPlaces {
	if m.int < 0 {
		return MoneyWith2DecimalPlaces{int: -m.int}
	}
	return m
}

// String formats as "NNN.NN" with exactly two decimals and no thousands
// separator. This is the representation used by the reconciliation marker
// grammar and the unmatched ledger, so it must be stable.
func (m MoneyWith2DecimalPlaces) String() string {
	cents := m.int
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// MarshalJSON implements the json.Marshaler interface.
func (m MoneyWith2DecimalPlaces) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// DiaryEntry is one day of the diary: a date heading found under a top-level
// (trip) heading, with its subsections merged in.
type DiaryEntry struct {
	// Trip is the top-level heading the day belongs to.
	Trip string
	// Weekday is the weekday token exactly as written in the heading.
	Weekday string
	// Date of the entry.
	Date time.Time
	// Itinerary is the raw free-text suffix of the date heading.
	Itinerary string
	// ItineraryList is the itinerary decomposed into alternating free-text
	// legs and parenthesized annotations.
	ItineraryList []string
	// Sections maps subsection name ("Expenses", ...) to its node.
	Sections map[string]*HeadingNode
	// SectionOrder preserves the subsection order of the source file.
	SectionOrder []string
	// Content is body text directly under the date heading.
	Content string
	// SourceFile and SourceOffset locate the entry for error reports and
	// chronological tie-breaking.
	SourceFile   string
	SourceOffset int
}

// ExpenseRecord is a diary-side expense candidate for reconciliation.
type ExpenseRecord struct {
	// Date of the day heading the line was found under.
	Date time.Time
	// Amount in Currency.
	Amount   MoneyWith2DecimalPlaces
	Currency string
	// ExpenseType is the free-text type label, may contain spaces.
	ExpenseType string
	// Description is the free text after the type.
	Description string
	// SplitMarker is the unprefixed split descriptor text
	// "BANK - YYYY-MM-DD - CCY:AMT/COUNT" when this line is one member of a
	// pending split, empty otherwise.
	SplitMarker string
	// Provenance for in-place rewriting.
	SourceFile   string
	LineNum      int
	OriginalLine string
}

// BankTransaction is an expense from a bank export. Amounts are always
// positive: the sign is normalized by the readers to "money that left the
// account".
type BankTransaction struct {
	Date time.Time
	// Amount in the transaction Currency.
	Amount   MoneyWith2DecimalPlaces
	Currency string
	// Description of the counterparty or purpose.
	Description string
	// Bank identifier, no spaces ("N26", "Wise", ...).
	Bank string
	// BankCurrency is the settlement currency of the account.
	BankCurrency string
	// DeductedAmount is what actually left the account, in BankCurrency.
	DeductedAmount MoneyWith2DecimalPlaces
	// MerchantCategory is set by readers that export one, empty otherwise.
	MerchantCategory string
	// Provenance.
	SourceFile string
	LineNum    int
}

// BankFileParser parses bank transactions from one export file.
// Single malformed records are logged and skipped; an error is returned only
// when the whole file can't be processed.
type BankFileParser interface {
	ParseBankTransactions(filePath string, defaultCurrency string) ([]BankTransaction, error)
}
