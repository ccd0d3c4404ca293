package main

import (
	"strings"
	"testing"
	"time"
)

const updateDiary = `# Trip

## Saturday 2024-05-11 Bergen

### Expenses

* EUR 15.72 - groceries - Lidl

## Monday 2024-05-13 Oslo

### Expenses

* EUR 4.00 - coffee - cafe
`

func mustUpdate(t *testing.T, path string, date time.Time, section, line string) {
	t.Helper()
	var out strings.Builder
	if err := UpdateDiary(&out, path, date, section, line, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUpdateDiary_AppendsToExistingSection(t *testing.T) {
	path := writeTempFile(t, "diary.md", updateDiary)
	mustUpdate(t, path, time.Date(2024, time.May, 11, 0, 0, 0, 0, time.UTC),
		"expenses", "* EUR 7.10 - groceries - Rema")

	content := readFileString(t, path)
	expected := "* EUR 15.72 - groceries - Lidl\n* EUR 7.10 - groceries - Rema"
	if !strings.Contains(content, expected) {
		t.Errorf("expected line appended at section end, got:\n%s", content)
	}
	// The entry must land inside the Saturday section, before Monday.
	if strings.Index(content, "Rema") > strings.Index(content, "2024-05-13") {
		t.Errorf("entry landed in the wrong day:\n%s", content)
	}
}

func TestUpdateDiary_CreatesSectionInExistingDate(t *testing.T) {
	path := writeTempFile(t, "diary.md", updateDiary)
	mustUpdate(t, path, time.Date(2024, time.May, 11, 0, 0, 0, 0, time.UTC),
		"maintenance", "* replaced impeller")

	content := readFileString(t, path)
	if !strings.Contains(content, "### Maintenance\n\n* replaced impeller") {
		t.Errorf("expected new section with title-cased header, got:\n%s", content)
	}
	// New sections open right after the day heading, before existing ones.
	pos := strings.Index(content, "### Maintenance")
	if pos < strings.Index(content, "## Saturday") || pos > strings.Index(content, "### Expenses") {
		t.Errorf("section must land inside the Saturday entry:\n%s", content)
	}
}

func TestUpdateDiary_CreatesDateSectionChronologically(t *testing.T) {
	path := writeTempFile(t, "diary.md", updateDiary)
	// 2024-05-12 is a Sunday, between the two existing days.
	mustUpdate(t, path, time.Date(2024, time.May, 12, 0, 0, 0, 0, time.UTC),
		"expenses", "* EUR 9.90 - transport - ferry")

	content := readFileString(t, path)
	if !strings.Contains(content, "## Sunday 2024-05-12") {
		t.Errorf("expected new date heading with weekday, got:\n%s", content)
	}
	sunday := strings.Index(content, "## Sunday 2024-05-12")
	saturday := strings.Index(content, "## Saturday 2024-05-11")
	monday := strings.Index(content, "## Monday 2024-05-13")
	if !(saturday < sunday && sunday < monday) {
		t.Errorf("expected chronological insertion, got:\n%s", content)
	}
}

func TestUpdateDiary_AppendsNewDateAtEnd(t *testing.T) {
	path := writeTempFile(t, "diary.md", updateDiary)
	mustUpdate(t, path, time.Date(2024, time.May, 14, 0, 0, 0, 0, time.UTC),
		"expenses", "* EUR 5.00 - coffee - cafe")

	content := readFileString(t, path)
	if !strings.Contains(content, "## Tuesday 2024-05-14") {
		t.Errorf("expected new trailing date heading, got:\n%s", content)
	}
	if strings.Index(content, "2024-05-14") < strings.Index(content, "2024-05-13") {
		t.Errorf("expected new date after the last one:\n%s", content)
	}
}

func TestUpdateDiary_DryRunLeavesFileUntouched(t *testing.T) {
	path := writeTempFile(t, "diary.md", updateDiary)
	var out strings.Builder
	err := UpdateDiary(&out, path, time.Date(2024, time.May, 12, 0, 0, 0, 0, time.UTC),
		"expenses", "* EUR 9.90 - transport - ferry", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertStringEqual(t, readFileString(t, path), updateDiary)
	if !strings.Contains(out.String(), "DRY RUN") {
		t.Errorf("expected dry run banner, got:\n%s", out.String())
	}
}

func TestUpdateDiary_MissingFile(t *testing.T) {
	var out strings.Builder
	err := UpdateDiary(&out, "testdata/does_not_exist.md",
		time.Date(2024, time.May, 12, 0, 0, 0, 0, time.UTC), "expenses", "* x", false)
	checkErrorContainsSubstring(t, err, "can't read diary file")
}

func TestEnsureSectionExists(t *testing.T) {
	path := writeTempFile(t, "diary.md", updateDiary)
	var out strings.Builder

	// Existing date, missing section: created.
	modified, err := EnsureSectionExists(&out, path,
		time.Date(2024, time.May, 11, 0, 0, 0, 0, time.UTC), "time accounting", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !modified {
		t.Errorf("expected file modified")
	}
	if !strings.Contains(readFileString(t, path), "### Time Accounting") {
		t.Errorf("expected section header created, got:\n%s", readFileString(t, path))
	}

	// Second call is a no-op.
	modified, err = EnsureSectionExists(&out, path,
		time.Date(2024, time.May, 11, 0, 0, 0, 0, time.UTC), "time accounting", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if modified {
		t.Errorf("expected existing section to be left alone")
	}
}

func TestFormatExpenseLineEntry(t *testing.T) {
	got := FormatExpenseLineEntry(7.1, "EUR", "groceries", "Lidl (milk)")
	assertStringEqual(t, got, "* EUR 7.10 - groceries - Lidl (milk)")
}
