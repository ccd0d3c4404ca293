package main

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// N26CsvFileParser parses N26 CSV exports. N26 renames columns per account
// language, so every field is resolved through an ordered list of known
// header variants.
type N26CsvFileParser struct{}

var (
	n26AmountColumns      = []string{"Amount (EUR)", "Amount", "Beloep", "Summa"}
	n26DateColumns        = []string{"Value Date", "Booking Date", "Date", "Dato", "Datum"}
	n26DescriptionColumns = []string{"Partner Name", "Description", "Beskrivelse", "Payment Reference"}
)

func (p N26CsvFileParser) ParseBankTransactions(
	filePath string, defaultCurrency string,
) ([]BankTransaction, error) {
	rows, header, err := readCsvWithHeader(filePath)
	if err != nil {
		return nil, err
	}

	var transactions []BankTransaction
	for i, row := range rows {
		lineNum := i + 2 // line 1 is the header

		deducted, ok := firstParsableAmount(row, header, n26AmountColumns)
		if !ok || deducted >= 0 {
			continue // incomes and unparseable rows are not expenses
		}
		deducted = -deducted

		dateStr := firstNonEmpty(row, header, n26DateColumns)
		if dateStr == "" {
			continue
		}
		date, err := time.Parse(DiaryDateFormat, dateStr)
		if err != nil {
			log.Printf("Warning: can't parse line %d of '%s': %v", lineNum, filePath, err)
			continue
		}

		description := firstNonEmpty(row, header, n26DescriptionColumns)

		amount := deducted
		currency := defaultCurrency
		originalAmount := strings.TrimSpace(columnValue(row, header, "Original Amount"))
		originalCurrency := strings.TrimSpace(columnValue(row, header, "Original Currency"))
		if originalAmount != "" && originalCurrency != "" {
			v, err := parseDecimalComma(originalAmount)
			if err != nil {
				log.Printf("Warning: can't parse line %d of '%s': %v", lineNum, filePath, err)
				continue
			}
			if v < 0 {
				v = -v
			}
			amount = v
			currency = originalCurrency
		}

		transactions = append(transactions, BankTransaction{
			Date:           date,
			Amount:         MoneyFromFloat(amount),
			Currency:       currency,
			Description:    description,
			Bank:           "N26",
			BankCurrency:   defaultCurrency,
			DeductedAmount: MoneyFromFloat(deducted),
			SourceFile:     filePath,
			LineNum:        lineNum,
		})
	}
	return transactions, nil
}

// readCsvWithHeader reads a CSV file fully and returns its data rows plus a
// header-name-to-column index.
func readCsvWithHeader(filePath string) ([][]string, map[string]int, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("file is empty")
	}

	header := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		name = strings.TrimSpace(strings.Trim(name, `"`))
		if i == 0 {
			name = strings.TrimPrefix(name, "\uFEFF")
		}
		header[name] = i
	}
	return records[1:], header, nil
}

func columnValue(row []string, header map[string]int, name string) string {
	i, ok := header[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

func firstNonEmpty(row []string, header map[string]int, names []string) string {
	for _, name := range names {
		if v := columnValue(row, header, name); v != "" {
			return v
		}
	}
	return ""
}

func firstParsableAmount(row []string, header map[string]int, names []string) (float64, bool) {
	for _, name := range names {
		v := columnValue(row, header, name)
		if v == "" {
			continue
		}
		if amount, err := parseDecimalComma(v); err == nil {
			return amount, true
		}
	}
	return 0, false
}

// parseDecimalComma accepts both "15.72" and "15,72".
func parseDecimalComma(s string) (float64, error) {
	return strconv.ParseFloat(strings.Replace(strings.TrimSpace(s), ",", ".", 1), 64)
}
