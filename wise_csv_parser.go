package main

import (
	"log"
	"strings"
	"time"
)

// WiseCsvFileParser parses Wise (TransferWise) CSV exports. Only completed
// outgoing transfers count as expenses; the source side is what left the
// account and the target side, when present, is the transaction itself.
type WiseCsvFileParser struct{}

func (p WiseCsvFileParser) ParseBankTransactions(
	filePath string, defaultCurrency string,
) ([]BankTransaction, error) {
	rows, header, err := readCsvWithHeader(filePath)
	if err != nil {
		return nil, err
	}

	var transactions []BankTransaction
	for i, row := range rows {
		lineNum := i + 2

		if columnValue(row, header, "Status") != "COMPLETED" {
			continue
		}
		if columnValue(row, header, "Direction") != "OUT" {
			continue
		}

		dateStr := columnValue(row, header, "Finished on")
		if strings.TrimSpace(dateStr) == "" {
			dateStr = columnValue(row, header, "Created on")
		}
		// Timestamps come as "YYYY-MM-DD hh:mm:ss"; only the date matters.
		dateFields := strings.Fields(dateStr)
		if len(dateFields) == 0 {
			continue
		}
		date, err := time.Parse(DiaryDateFormat, dateFields[0])
		if err != nil {
			log.Printf("Warning: can't parse line %d of '%s': %v", lineNum, filePath, err)
			continue
		}

		sourceAmountStr := strings.TrimSpace(columnValue(row, header, "Source amount (after fees)"))
		sourceCurrency := strings.TrimSpace(columnValue(row, header, "Source currency"))
		if sourceCurrency == "" {
			sourceCurrency = defaultCurrency
		}
		var deducted float64
		if sourceAmountStr != "" {
			v, err := parseDecimalComma(sourceAmountStr)
			if err != nil {
				log.Printf("Warning: can't parse line %d of '%s': %v", lineNum, filePath, err)
				continue
			}
			deducted = v
		}

		targetAmountStr := strings.TrimSpace(columnValue(row, header, "Target amount (after fees)"))
		targetCurrency := strings.TrimSpace(columnValue(row, header, "Target currency"))

		var amount float64
		var currency string
		if targetAmountStr != "" && targetCurrency != "" {
			v, err := parseDecimalComma(targetAmountStr)
			if err != nil {
				log.Printf("Warning: can't parse line %d of '%s': %v", lineNum, filePath, err)
				continue
			}
			amount = v
			currency = targetCurrency
		} else if sourceAmountStr != "" {
			amount = deducted
			currency = sourceCurrency
		} else {
			continue
		}

		description := strings.TrimSpace(columnValue(row, header, "Target name"))
		if note := strings.TrimSpace(columnValue(row, header, "Note")); note != "" {
			description = description + " (" + note + ")"
		}

		transactions = append(transactions, BankTransaction{
			Date:           date,
			Amount:         MoneyFromFloat(amount).Abs(),
			Currency:       currency,
			Description:    description,
			Bank:           "Wise",
			BankCurrency:   sourceCurrency,
			DeductedAmount: MoneyFromFloat(deducted).Abs(),
			SourceFile:     filePath,
			LineNum:        lineNum,
		})
	}
	return transactions, nil
}
