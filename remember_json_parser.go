package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// RememberJsonFileParser parses Remember credit card JSON exports. The path
// may be a glob: monthly exports overlap, so transactions are deduplicated
// by id across files.
type RememberJsonFileParser struct{}

type rememberExport struct {
	Transactions []rememberTransaction `json:"transactions"`
}

type rememberTransaction struct {
	ID                  int     `json:"id"`
	TransactionAmount   float64 `json:"transactionAmount"`
	BillingAmount       float64 `json:"billingAmount"`
	TransactionDate     string  `json:"transactionDate"`
	TransactionCurrency string  `json:"transactionCurrency"`
	BillingCurrency     string  `json:"billingCurrency"`
	Description         string  `json:"description"`
	City                string  `json:"city"`
	ReasonCode          string  `json:"reasonCode"`
}

func (p RememberJsonFileParser) ParseBankTransactions(
	filePath string, defaultCurrency string,
) ([]BankTransaction, error) {
	files := []string{filePath}
	if strings.Contains(filePath, "*") {
		matched, err := filepath.Glob(filePath)
		if err != nil {
			return nil, fmt.Errorf("bad glob '%s': %w", filePath, err)
		}
		sort.Strings(matched)
		files = matched
	}

	seenIDs := make(map[int]struct{})
	var transactions []BankTransaction
	for _, jsonFile := range files {
		buf, err := os.ReadFile(jsonFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open file: %w", err)
		}
		var export rememberExport
		if err := json.Unmarshal(buf, &export); err != nil {
			return nil, fmt.Errorf("failed to parse '%s': %w", jsonFile, err)
		}

		for _, tx := range export.Transactions {
			if _, seen := seenIDs[tx.ID]; seen {
				continue
			}
			seenIDs[tx.ID] = struct{}{}

			if tx.TransactionAmount >= 0 {
				continue
			}

			if len(tx.TransactionDate) < 10 {
				continue
			}
			date, err := time.Parse(DiaryDateFormat, tx.TransactionDate[:10])
			if err != nil {
				log.Printf("Warning: can't parse transaction %d of '%s': %v", tx.ID, jsonFile, err)
				continue
			}

			currency := tx.TransactionCurrency
			if currency == "" {
				currency = "NOK"
			}
			billingCurrency := tx.BillingCurrency
			if billingCurrency == "" {
				billingCurrency = "NOK"
			}

			description := strings.TrimSpace(tx.Description)
			if city := strings.TrimSpace(tx.City); city != "" &&
				!strings.Contains(strings.ToUpper(description), strings.ToUpper(city)) {
				description = description + " (" + city + ")"
			}

			lower := strings.ToLower(description)
			isAtm := tx.ReasonCode == "CASH" ||
				strings.Contains(lower, "kontantuttak") ||
				strings.Contains(lower, "gebyr kontantuttak")
			if isAtm && !strings.HasPrefix(description, "ATM:") {
				description = "ATM: " + description
			}

			// Currency markup fees have no diary counterpart.
			if tx.ReasonCode == "fee" || strings.Contains(lower, "valutapaaslag") {
				continue
			}

			transactions = append(transactions, BankTransaction{
				Date:           date,
				Amount:         MoneyFromFloat(tx.TransactionAmount).Abs(),
				Currency:       currency,
				Description:    description,
				Bank:           "Remember",
				BankCurrency:   billingCurrency,
				DeductedAmount: MoneyFromFloat(tx.BillingAmount).Abs(),
				SourceFile:     jsonFile,
				LineNum:        tx.ID,
			})
		}
	}
	return transactions, nil
}
