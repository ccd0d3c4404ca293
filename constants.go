package main

// DiaryDateFormat is the date format used everywhere in the diary and its outputs.
const DiaryDateFormat = "2006-01-02"

// File paths and defaults.
const (
	DEFAULT_CONFIG_FILE_PATH = "config.yaml"
	DEFAULT_BASE_CURRENCY    = "EUR"
)

// Matching tolerances. Split amounts are pre-computed shares and must match
// almost exactly, so they don't use the configurable amount tolerance.
const (
	DEFAULT_AMOUNT_TOLERANCE    = 2.0
	DEFAULT_DATE_TOLERANCE_DAYS = 2
	// Both in cents of MoneyWith2DecimalPlaces.
	SPLIT_AMOUNT_TOLERANCE_CENTS = 10
	NEAR_EXACT_AMOUNT_CENTS      = 10
)

// SupportedCurrencies lists currencies an expense line may be denominated in.
// The expense line grammar is built from this list, so adding a currency here
// is enough to start parsing it.
var SupportedCurrencies = []string{
	"EUR", "BGN", "NOK", "USD", "GBP", "SEK", "DKK", "PLN", "TRY", "CHF",
	"HRK", "RON", "RSD", "ALL", "MKD", "BAM",
}
