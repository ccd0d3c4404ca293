package main

import (
	"testing"
	"time"
)

const reconcilableDiary = `# Norway 2024

## Saturday 2024-05-11 Bergen

Some prose that mentions EUR 10.00 but is not an expense line.

### Expenses

* NOK 120.00 - food - station kiosk
* EUR 15.72 - groceries - Lidl
* EUR 4.50 - coffee - cafe (cash)
* EUR 9.90 - transport - ferry (reconciled: Wise - 2024-05-11 - EUR:9.90)
* EUR 10.50 - dinner - shared pizza (N26 - 2024-05-11 - EUR:31.50/3)
* EUR 10.50 - dinner - shared pizza (reconciled: N26 - 2024-05-04 - EUR:31.50/3)
`

func TestParseDiaryExpenses_Filters(t *testing.T) {
	path := writeTempFile(t, "diary.md", reconcilableDiary)
	records := ParseDiaryExpenses(path)

	if len(records) != 3 {
		t.Fatalf("expected 3 unreconciled records, got %d: %+v", len(records), records)
	}

	first := records[0]
	if first.Currency != "NOK" || first.Amount.Cents() != 12000 {
		t.Errorf("unexpected first record: %+v", first)
	}
	if !first.Date.Equal(time.Date(2024, time.May, 11, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected date from the heading, got %v", first.Date)
	}
	if first.LineNum != 9 {
		t.Errorf("expected line number 9, got %d", first.LineNum)
	}

	second := records[1]
	if second.Description != "Lidl" || second.SplitMarker != "" {
		t.Errorf("unexpected second record: %+v", second)
	}

	third := records[2]
	if third.SplitMarker != "N26 - 2024-05-11 - EUR:31.50/3" {
		t.Errorf("expected split marker retained, got %q", third.SplitMarker)
	}
}

func TestParseDiaryExpenses_LinesAboveFirstDateIgnored(t *testing.T) {
	content := "* EUR 5.00 - coffee - cafe\n\n## Saturday 2024-05-11 Bergen\n\n* EUR 7.00 - coffee - cafe\n"
	path := writeTempFile(t, "diary.md", content)
	records := ParseDiaryExpenses(path)
	if len(records) != 1 || records[0].Amount.Cents() != 700 {
		t.Errorf("expected only the dated expense, got %+v", records)
	}
}

func TestParseDiaryExpenses_MissingFileYieldsNoRecords(t *testing.T) {
	if records := ParseDiaryExpenses("testdata/does_not_exist.md"); records != nil {
		t.Errorf("expected nil for missing file, got %+v", records)
	}
}

func TestCollectReconciledMarkers(t *testing.T) {
	path := writeTempFile(t, "diary.md", reconcilableDiary)
	markers := CollectReconciledMarkers(path)

	expected := []MarkerKey{
		{Bank: "Wise", Date: "2024-05-11", Currency: "EUR", Amount: "9.90"},
		{Bank: "N26", Date: "2024-05-04", Currency: "EUR", Amount: "31.50"},
	}
	if len(markers) != len(expected) {
		t.Fatalf("expected %d markers, got %v", len(expected), markers)
	}
	for _, key := range expected {
		if _, ok := markers[key]; !ok {
			t.Errorf("expected marker %+v in %v", key, markers)
		}
	}
}

func TestCollectReconciledMarkers_NormalizesAmount(t *testing.T) {
	content := "## Saturday 2024-05-11 Bergen\n\n* EUR 9.90 - transport - ferry (reconciled: Wise - 2024-05-11 - EUR:9.9)\n"
	path := writeTempFile(t, "diary.md", content)
	markers := CollectReconciledMarkers(path)
	key := MarkerKey{Bank: "Wise", Date: "2024-05-11", Currency: "EUR", Amount: "9.90"}
	if _, ok := markers[key]; !ok {
		t.Errorf("expected amount normalized to two decimals, got %v", markers)
	}
}
