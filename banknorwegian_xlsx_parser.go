package main

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/tealeg/xlsx"
)

// Column layout of a Bank Norwegian XLSX export.
const (
	bankNorwegianDateColumn        = 0 // Excel serial date
	bankNorwegianDescriptionColumn = 1
	bankNorwegianTypeColumn        = 2
	bankNorwegianAmountColumn      = 3
	bankNorwegianCurrencyColumn    = 5
	bankNorwegianDeductedColumn    = 6
	bankNorwegianAreaColumn        = 7
	bankNorwegianCategoryColumn    = 8
)

// Transaction types that are not expenses.
var bankNorwegianSkipTypes = map[string]struct{}{
	"Innbetaling": {}, "Interest": {}, "Rente": {},
}

var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// BankNorwegianXlsxFileParser parses Bank Norwegian XLSX exports. The account
// settles in NOK; card transactions abroad carry their original currency and
// amount next to the deducted NOK amount.
type BankNorwegianXlsxFileParser struct{}

func (p BankNorwegianXlsxFileParser) ParseBankTransactions(
	filePath string, defaultCurrency string,
) ([]BankTransaction, error) {
	f, err := xlsx.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	if len(f.Sheets) < 1 {
		return nil, fmt.Errorf("no sheets in '%s'", filePath)
	}
	sheet := f.Sheets[0]

	var transactions []BankTransaction
	for i, row := range sheet.Rows {
		if i == 0 {
			continue // header row
		}
		lineNum := i + 1

		dateStr := cellValue(row, bankNorwegianDateColumn)
		if dateStr == "" {
			continue
		}
		serial, err := strconv.ParseFloat(dateStr, 64)
		if err != nil {
			log.Printf("Warning: can't parse row %d of '%s': bad date '%s'", lineNum, filePath, dateStr)
			continue
		}
		date := excelEpoch.AddDate(0, 0, int(serial))

		description := strings.TrimSpace(cellValue(row, bankNorwegianDescriptionColumn))
		txType := cellValue(row, bankNorwegianTypeColumn)
		if _, skip := bankNorwegianSkipTypes[txType]; skip {
			continue
		}

		amountStr := cellValue(row, bankNorwegianAmountColumn)
		if amountStr == "" {
			continue
		}
		originalAmount, err := strconv.ParseFloat(amountStr, 64)
		if err != nil {
			log.Printf("Warning: can't parse row %d of '%s': bad amount '%s'", lineNum, filePath, amountStr)
			continue
		}
		if originalAmount >= 0 {
			continue // deposits
		}
		originalAmount = -originalAmount

		currency := cellValue(row, bankNorwegianCurrencyColumn)
		if currency == "" {
			currency = "NOK"
		}

		deducted := originalAmount
		if deductedStr := cellValue(row, bankNorwegianDeductedColumn); deductedStr != "" {
			v, err := strconv.ParseFloat(deductedStr, 64)
			if err == nil {
				if v < 0 {
					v = -v
				}
				deducted = v
			}
		}

		if area := strings.TrimSpace(cellValue(row, bankNorwegianAreaColumn)); area != "" && !strings.Contains(description, area) {
			description = description + " (" + area + ")"
		}

		category := strings.TrimSpace(cellValue(row, bankNorwegianCategoryColumn))
		if txType == "Kontantuttak" || strings.Contains(category, "ATM") {
			description = "ATM: " + description
		}

		transactions = append(transactions, BankTransaction{
			Date:             date,
			Amount:           MoneyFromFloat(originalAmount),
			Currency:         currency,
			Description:      description,
			Bank:             "BankNorwegian",
			BankCurrency:     "NOK",
			DeductedAmount:   MoneyFromFloat(deducted),
			MerchantCategory: category,
			SourceFile:       filePath,
			LineNum:          lineNum,
		})
	}
	return transactions, nil
}

func cellValue(row *xlsx.Row, i int) string {
	if row == nil || i >= len(row.Cells) {
		return ""
	}
	return strings.TrimSpace(row.Cells[i].Value)
}
