package main

import (
	"path/filepath"
	"strings"
	"testing"
)

func ledgerPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "non-reconciled.csv")
}

func TestUpdateUnmatchedLedger_AddsAndIsIdempotent(t *testing.T) {
	path := ledgerPath(t)
	unmatched := []BankTransaction{
		bankTx(12, 18550, "NOK", "VINMONOPOLET BERGEN"),
		bankTx(11, 990, "EUR", "ferry"),
	}

	added, removed, duplicates, err := UpdateUnmatchedLedger(unmatched, path, nil, 2.0, 2, nil, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if added != 2 || removed != 0 || duplicates != 0 {
		t.Errorf("expected 2 added, got added=%d removed=%d duplicates=%d", added, removed, duplicates)
	}

	content := readFileString(t, path)
	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got:\n%s", content)
	}
	assertStringEqual(t, lines[0], strings.Join(nonReconciledHeader, ","))
	// Rows are sorted by date.
	if !strings.HasPrefix(lines[1], "2024-05-11,EUR,9.90,ferry,N26") {
		t.Errorf("unexpected first row: %s", lines[1])
	}
	if !strings.HasPrefix(lines[2], "2024-05-12,NOK,185.50,VINMONOPOLET BERGEN,N26") {
		t.Errorf("unexpected second row: %s", lines[2])
	}

	// Same input again: nothing added, everything counted as duplicate.
	added, removed, duplicates, err = UpdateUnmatchedLedger(unmatched, path, nil, 2.0, 2, nil, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if added != 0 || duplicates != 2 {
		t.Errorf("expected idempotent rerun, got added=%d duplicates=%d", added, duplicates)
	}
	assertStringEqual(t, readFileString(t, path), content)
}

func TestUpdateUnmatchedLedger_RemovesRowsThatNowMatch(t *testing.T) {
	path := ledgerPath(t)
	transaction := bankTx(12, 1572, "EUR", "LIDL SAGT BERGEN")

	if _, _, _, err := UpdateUnmatchedLedger([]BankTransaction{transaction}, path, nil, 2.0, 2, nil, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The diary caught up: the persisted row now matches.
	diary := []ExpenseRecord{diaryRec(12, 1572, "EUR", "Lidl")}
	added, removed, duplicates, err := UpdateUnmatchedLedger(nil, path, diary, 2.0, 2, nil, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if added != 0 || removed != 1 || duplicates != 0 {
		t.Errorf("expected 1 removed, got added=%d removed=%d duplicates=%d", added, removed, duplicates)
	}

	content := readFileString(t, path)
	if strings.Contains(content, "LIDL SAGT BERGEN") {
		t.Errorf("expected matched row removed, got:\n%s", content)
	}
}

func TestUpdateUnmatchedLedger_CommentedRowsPreservedAndSuppress(t *testing.T) {
	path := ledgerPath(t)
	transaction := bankTx(12, 18550, "NOK", "VINMONOPOLET BERGEN")

	if _, _, _, err := UpdateUnmatchedLedger([]BankTransaction{transaction}, path, nil, 2.0, 2, nil, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The user comments the row out by prefixing its date with '#'.
	commented := strings.Replace(readFileString(t, path), "2024-05-12,NOK", "#2024-05-12,NOK", 1)
	if err := writeFileString(path, commented); err != nil {
		t.Fatalf("can't rewrite ledger: %v", err)
	}

	added, _, duplicates, err := UpdateUnmatchedLedger([]BankTransaction{transaction}, path, nil, 2.0, 2, nil, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if added != 0 || duplicates != 1 {
		t.Errorf("expected commented row to suppress re-adding, got added=%d duplicates=%d", added, duplicates)
	}

	content := readFileString(t, path)
	if !strings.Contains(content, "#2024-05-12,NOK,185.50") {
		t.Errorf("expected commented row preserved, got:\n%s", content)
	}
	if strings.Count(content, "VINMONOPOLET BERGEN") != 1 {
		t.Errorf("expected one row for the transaction, got:\n%s", content)
	}
}

func TestUpdateUnmatchedLedger_DedupIgnoresAtmPrefix(t *testing.T) {
	path := ledgerPath(t)
	plain := bankTx(12, 50000, "NOK", "MINIBANK BERGEN")

	if _, _, _, err := UpdateUnmatchedLedger([]BankTransaction{plain}, path, nil, 2.0, 2, nil, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	prefixed := plain
	prefixed.Description = "ATM: MINIBANK BERGEN"
	added, _, duplicates, err := UpdateUnmatchedLedger([]BankTransaction{prefixed}, path, nil, 2.0, 2, nil, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if added != 0 || duplicates != 1 {
		t.Errorf("expected ATM-prefixed duplicate suppressed, got added=%d duplicates=%d", added, duplicates)
	}
}

func TestUpdateUnmatchedLedger_DryRunLeavesFileMissing(t *testing.T) {
	path := ledgerPath(t)
	added, _, _, err := UpdateUnmatchedLedger(
		[]BankTransaction{bankTx(12, 990, "EUR", "ferry")}, path, nil, 2.0, 2, nil, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if added != 1 {
		t.Errorf("expected planned add reported, got %d", added)
	}
	if _, err := loadLedgerRows(path); err != nil {
		t.Errorf("unexpected error loading missing ledger: %v", err)
	}
	if rows, _ := loadLedgerRows(path); rows != nil {
		t.Errorf("expected no file written on dry run, got %+v", rows)
	}
}
