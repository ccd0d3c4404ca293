package main

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// nonReconciledHeader pins the column layout of the unmatched ledger.
var nonReconciledHeader = []string{
	"date", "currency", "amount", "description", "bank",
	"bank_currency", "deducted_amount", "merchant_category", "source_file",
}

// LedgerRow is one row of the unmatched ledger. A row whose date starts
// with '#' is a user comment: kept verbatim, excluded from matching and
// deduplicated against separately.
type LedgerRow struct {
	Date             string
	Currency         string
	Amount           string
	Description      string
	Bank             string
	BankCurrency     string
	DeductedAmount   string
	MerchantCategory string
	SourceFile       string
}

// IsCommented reports whether the row was commented out by the user.
func (r LedgerRow) IsCommented() bool {
	return strings.HasPrefix(r.Date, "#")
}

// ledgerDedupKey is the deduplication identity of a ledger row.
type ledgerDedupKey struct {
	Date        string
	Currency    string
	Amount      string
	Description string
	Bank        string
}

// key returns the row identity: (date without comment marker, currency,
// amount, description with any "ATM: " prefix stripped, bank).
func (r LedgerRow) key() ledgerDedupKey {
	return ledgerDedupKey{
		Date:        strings.TrimLeft(r.Date, "#"),
		Currency:    r.Currency,
		Amount:      r.Amount,
		Description: strings.TrimPrefix(r.Description, "ATM: "),
		Bank:        r.Bank,
	}
}

func ledgerRowFromTransaction(t BankTransaction) LedgerRow {
	return LedgerRow{
		Date:             t.Date.Format(DiaryDateFormat),
		Currency:         t.Currency,
		Amount:           t.Amount.String(),
		Description:      t.Description,
		Bank:             t.Bank,
		BankCurrency:     t.BankCurrency,
		DeductedAmount:   t.DeductedAmount.String(),
		MerchantCategory: t.MerchantCategory,
		SourceFile:       t.SourceFile,
	}
}

// transactionFromLedgerRow rebuilds a transaction for re-matching a
// persisted row against the current diary.
func transactionFromLedgerRow(r LedgerRow) (BankTransaction, error) {
	date, err := time.Parse(DiaryDateFormat, r.Date)
	if err != nil {
		return BankTransaction{}, err
	}
	var amount, deducted MoneyWith2DecimalPlaces
	if err := amount.ParseString(r.Amount); err != nil {
		return BankTransaction{}, err
	}
	if r.DeductedAmount != "" {
		if err := deducted.ParseString(r.DeductedAmount); err != nil {
			return BankTransaction{}, err
		}
	}
	return BankTransaction{
		Date:             date,
		Amount:           amount,
		Currency:         r.Currency,
		Description:      r.Description,
		Bank:             r.Bank,
		BankCurrency:     r.BankCurrency,
		DeductedAmount:   deducted,
		MerchantCategory: r.MerchantCategory,
		SourceFile:       r.SourceFile,
	}, nil
}

// loadLedgerRows reads the ledger CSV. A missing file is an empty ledger.
func loadLedgerRows(filePath string) ([]LedgerRow, error) {
	f, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("can't open unmatched ledger '%s': %w", filePath, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("can't read unmatched ledger '%s': %w", filePath, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	col := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		col[strings.TrimSpace(name)] = i
	}
	get := func(record []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	rows := make([]LedgerRow, 0, len(records)-1)
	for _, record := range records[1:] {
		rows = append(rows, LedgerRow{
			Date:             get(record, "date"),
			Currency:         get(record, "currency"),
			Amount:           get(record, "amount"),
			Description:      get(record, "description"),
			Bank:             get(record, "bank"),
			BankCurrency:     get(record, "bank_currency"),
			DeductedAmount:   get(record, "deducted_amount"),
			MerchantCategory: get(record, "merchant_category"),
			SourceFile:       get(record, "source_file"),
		})
	}
	return rows, nil
}

// UpdateUnmatchedLedger folds newly unmatched transactions into the
// persisted CSV ledger. Previously persisted rows that now match a diary
// record are removed; rows already present are not duplicated; commented
// rows are preserved verbatim at the end and suppress re-adding their
// transaction. Repeating the same run adds nothing the second time.
func UpdateUnmatchedLedger(
	newUnmatched []BankTransaction,
	filePath string,
	diary []ExpenseRecord,
	amountTolerance float64,
	dateToleranceDays int,
	aliases AliasTable,
	dryRun bool,
) (added, removed, duplicates int, err error) {
	rows, err := loadLedgerRows(filePath)
	if err != nil {
		return 0, 0, 0, err
	}

	var activeRows, commentedRows []LedgerRow
	for _, row := range rows {
		if row.IsCommented() {
			commentedRows = append(commentedRows, row)
		} else {
			activeRows = append(activeRows, row)
		}
	}

	// Drop persisted rows whose transaction now matches a diary record.
	var stillUnmatched []LedgerRow
	for _, row := range activeRows {
		t, convErr := transactionFromLedgerRow(row)
		if convErr != nil {
			stillUnmatched = append(stillUnmatched, row)
			continue
		}
		if _, ok := findMatch(t, diary, amountTolerance, dateToleranceDays, aliases); ok {
			removed++
		} else {
			stillUnmatched = append(stillUnmatched, row)
		}
	}

	// Commented rows count as present: the user silenced that transaction.
	existingKeys := make(map[ledgerDedupKey]struct{}, len(stillUnmatched)+len(commentedRows))
	for _, row := range stillUnmatched {
		existingKeys[row.key()] = struct{}{}
	}
	for _, row := range commentedRows {
		existingKeys[row.key()] = struct{}{}
	}

	var newRows []LedgerRow
	for _, t := range newUnmatched {
		row := ledgerRowFromTransaction(t)
		if _, ok := existingKeys[row.key()]; ok {
			duplicates++
			continue
		}
		newRows = append(newRows, row)
		existingKeys[row.key()] = struct{}{}
	}
	added = len(newRows)

	if dryRun {
		return added, removed, duplicates, nil
	}

	allActive := append(stillUnmatched, newRows...)
	sort.SliceStable(allActive, func(i, j int) bool {
		return allActive[i].Date < allActive[j].Date
	})
	sort.SliceStable(commentedRows, func(i, j int) bool {
		return strings.TrimLeft(commentedRows[i].Date, "#") < strings.TrimLeft(commentedRows[j].Date, "#")
	})

	if dir := filepath.Dir(filePath); dir != "." {
		if mkErr := os.MkdirAll(dir, 0755); mkErr != nil {
			return added, removed, duplicates, fmt.Errorf("can't create ledger directory: %w", mkErr)
		}
	}

	f, err := os.Create(filePath)
	if err != nil {
		return added, removed, duplicates, fmt.Errorf("can't write unmatched ledger '%s': %w", filePath, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(nonReconciledHeader); err != nil {
		return added, removed, duplicates, err
	}
	for _, row := range allActive {
		if err := writer.Write(row.fields()); err != nil {
			return added, removed, duplicates, err
		}
	}
	for _, row := range commentedRows {
		if err := writer.Write(row.fields()); err != nil {
			return added, removed, duplicates, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return added, removed, duplicates, err
	}
	log.Printf("Unmatched ledger '%s': %d added, %d removed, %d duplicates skipped.", filePath, added, removed, duplicates)
	return added, removed, duplicates, nil
}

func (r LedgerRow) fields() []string {
	return []string{
		r.Date, r.Currency, r.Amount, r.Description, r.Bank,
		r.BankCurrency, r.DeductedAmount, r.MerchantCategory, r.SourceFile,
	}
}
