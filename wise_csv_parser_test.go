package main

import (
	"testing"
	"time"
)

func TestWiseCsvFileParser_ParseBankTransactions(t *testing.T) {
	filePath := "testdata/wise/example.csv"
	transactions, err := WiseCsvFileParser{}.ParseBankTransactions(filePath, "EUR")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []BankTransaction{
		{
			Date:           time.Date(2024, time.May, 11, 0, 0, 0, 0, time.UTC),
			Amount:         MoneyWith2DecimalPlaces{int: 990},
			Currency:       "EUR",
			Description:    "Fjord Ferries (crossing)",
			Bank:           "Wise",
			BankCurrency:   "NOK",
			DeductedAmount: MoneyWith2DecimalPlaces{int: 11600},
			SourceFile:     filePath,
			LineNum:        2,
		},
		{
			// No target side and no finish date: source amount, created date.
			Date:           time.Date(2024, time.May, 12, 0, 0, 0, 0, time.UTC),
			Amount:         MoneyWith2DecimalPlaces{int: 4200},
			Currency:       "EUR",
			Description:    "Harbour Office",
			Bank:           "Wise",
			BankCurrency:   "EUR",
			DeductedAmount: MoneyWith2DecimalPlaces{int: 4200},
			SourceFile:     filePath,
			LineNum:        3,
		},
	}

	if len(transactions) != len(expected) {
		t.Fatalf("expected %d transactions, got %d: %+v", len(expected), len(transactions), transactions)
	}
	for i, transaction := range transactions {
		if transaction != expected[i] {
			t.Errorf("expected transaction %+v, but got %+v", expected[i], transaction)
		}
	}
}

func TestWiseCsvFileParser_WhitespaceDates(t *testing.T) {
	filePath := "testdata/wise/whitespace_dates.csv"
	transactions, err := WiseCsvFileParser{}.ParseBankTransactions(filePath, "EUR")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A blank "Finished on" cell falls back to "Created on"; a row with
	// neither date is skipped, not fatal.
	expected := []BankTransaction{
		{
			Date:           time.Date(2024, time.May, 15, 0, 0, 0, 0, time.UTC),
			Amount:         MoneyWith2DecimalPlaces{int: 1200},
			Currency:       "EUR",
			Description:    "Camp Site",
			Bank:           "Wise",
			BankCurrency:   "EUR",
			DeductedAmount: MoneyWith2DecimalPlaces{int: 1200},
			SourceFile:     filePath,
			LineNum:        2,
		},
	}

	if len(transactions) != len(expected) {
		t.Fatalf("expected %d transactions, got %d: %+v", len(expected), len(transactions), transactions)
	}
	for i, transaction := range transactions {
		if transaction != expected[i] {
			t.Errorf("expected transaction %+v, but got %+v", expected[i], transaction)
		}
	}
}

func TestWiseCsvFileParser_InvalidFilePath(t *testing.T) {
	_, err := WiseCsvFileParser{}.ParseBankTransactions("testdata/wise/not_existing_path.csv", "EUR")
	checkErrorContainsSubstring(t, err, "failed to open file")
}
