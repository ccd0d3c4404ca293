package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseArgs_ReconcileDefaults(t *testing.T) {
	args, isHelpRequested, err := parseArgs([]string{"reconcile", "statement.csv"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if isHelpRequested {
		t.Error("Expected isHelpRequested to be false")
	}
	if args.ConfigPath != "config.yaml" {
		t.Errorf("Expected default config path, got '%s'", args.ConfigPath)
	}
	if args.Reconcile == nil {
		t.Fatal("Expected reconcile subcommand to be set")
	}
	if args.Reconcile.InputFile != "statement.csv" {
		t.Errorf("Expected input file 'statement.csv', got '%s'", args.Reconcile.InputFile)
	}
	if args.Reconcile.Format != FORMAT_N26 {
		t.Errorf("Expected default format '%s', got '%s'", FORMAT_N26, args.Reconcile.Format)
	}
	if args.Reconcile.Tolerance != nil || args.Reconcile.DateTolerance != nil {
		t.Errorf("Expected tolerances unset, got %+v", args.Reconcile)
	}
	if args.Reconcile.DryRun || args.Reconcile.Verbose {
		t.Errorf("Expected dry-run and verbose off, got %+v", args.Reconcile)
	}
}

func TestParseArgs_ReconcileWithFlags(t *testing.T) {
	args, _, err := parseArgs([]string{
		"--config", "other.yaml",
		"reconcile", "-f", "wise", "-n", "-t", "0.5", "--date-tolerance", "5",
		"--diary", "a.md", "--diary", "b.md", "statement.csv",
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if args.ConfigPath != "other.yaml" {
		t.Errorf("Expected config path 'other.yaml', got '%s'", args.ConfigPath)
	}
	r := args.Reconcile
	if r == nil {
		t.Fatal("Expected reconcile subcommand to be set")
	}
	if r.Format != FORMAT_WISE || !r.DryRun {
		t.Errorf("Unexpected reconcile args: %+v", r)
	}
	if r.Tolerance == nil || *r.Tolerance != 0.5 {
		t.Errorf("Expected tolerance 0.5, got %v", r.Tolerance)
	}
	if r.DateTolerance == nil || *r.DateTolerance != 5 {
		t.Errorf("Expected date tolerance 5, got %v", r.DateTolerance)
	}
	if len(r.Diary) != 2 || r.Diary[0] != "a.md" || r.Diary[1] != "b.md" {
		t.Errorf("Expected two diary files, got %v", r.Diary)
	}
}

func TestParseArgs_DigestExpenses(t *testing.T) {
	args, _, err := parseArgs([]string{"digest", "--start", "2024-05-01", "expenses"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if args.Digest == nil || args.Digest.Expenses == nil {
		t.Fatalf("Expected digest expenses subcommand, got %+v", args)
	}
	if args.Digest.Start != "2024-05-01" {
		t.Errorf("Expected start date '2024-05-01', got '%s'", args.Digest.Start)
	}
}

func TestParseArgs_AddDefaults(t *testing.T) {
	args, _, err := parseArgs([]string{"add", "--line", "EUR 7.10 - groceries - Lidl"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if args.Add == nil {
		t.Fatal("Expected add subcommand to be set")
	}
	if args.Add.Section != "expenses" {
		t.Errorf("Expected default section 'expenses', got '%s'", args.Add.Section)
	}
	if args.Add.Currency != "EUR" || args.Add.Type != "groceries" {
		t.Errorf("Unexpected add defaults: %+v", args.Add)
	}
	if args.Add.Line != "EUR 7.10 - groceries - Lidl" {
		t.Errorf("Expected line kept verbatim, got '%s'", args.Add.Line)
	}
}

func TestParseArgs_HelpRequested(t *testing.T) {
	_, isHelpRequested, err := parseArgs([]string{"--help"})
	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
	if !isHelpRequested {
		t.Error("Expected isHelpRequested to be true")
	}
}

func TestParseArgs_NoSubcommand(t *testing.T) {
	_, isHelpRequested, err := parseArgs([]string{})
	if err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
	if !isHelpRequested {
		t.Error("Expected isHelpRequested to be true when no subcommand is given")
	}
}

func TestParseArgs_InvalidArgument(t *testing.T) {
	_, _, err := parseArgs([]string{"--invalid-argument"})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !strings.Contains(err.Error(), "--invalid-argument") {
		t.Errorf("got: %v, expected mention of --invalid-argument", err)
	}
}

func TestParseArgs_ReconcileMissingInputFile(t *testing.T) {
	_, _, err := parseArgs([]string{"reconcile"})
	if err == nil {
		t.Error("Expected error for missing input file, got nil")
	}
}

func TestBankParserForFormat(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{FORMAT_N26, "main.N26CsvFileParser"},
		{FORMAT_WISE, "main.WiseCsvFileParser"},
		{FORMAT_BANKNORWEGIAN, "main.BankNorwegianXlsxFileParser"},
		{FORMAT_REMEMBER, "main.RememberJsonFileParser"},
	}
	for _, tt := range tests {
		parser, err := bankParserForFormat(tt.format)
		if err != nil {
			t.Errorf("Expected no error for format '%s', got: %v", tt.format, err)
			continue
		}
		if got := fmt.Sprintf("%T", parser); got != tt.want {
			t.Errorf("Expected parser %s for format '%s', got %s", tt.want, tt.format, got)
		}
	}

	_, err := bankParserForFormat("dnb")
	checkErrorContainsSubstring(t, err, "unknown format 'dnb'")
}

func TestRunApplication_MissingConfig(t *testing.T) {
	err := runApplication(Args{ConfigPath: "not_existing_config.yaml", Digest: &DigestCmd{}})
	checkErrorContainsSubstring(t, err, "can't find configuration file")
}

func TestRunApplication_InvalidConfig(t *testing.T) {
	path := writeTempFile(t, "config.yaml", "unknownField: true")
	err := runApplication(Args{ConfigPath: path, Digest: &DigestCmd{}})
	checkErrorContainsSubstring(t, err, "is wrong")
}

func TestRunApplication_ReconcileEndToEnd(t *testing.T) {
	tempDir := t.TempDir()
	diaryPath := filepath.Join(tempDir, "diary-2024.md")
	ledgerPath := filepath.Join(tempDir, "unmatched.csv")
	if err := writeFileString(diaryPath,
		"# Norway 2024\n\n## Saturday 2024-05-11 Bergen\n\n### Expenses\n\n"+
			"* EUR 15.72 - groceries - Lidl\n"); err != nil {
		t.Fatalf("failed to write diary: %v", err)
	}
	configPath := filepath.Join(tempDir, "config.yaml")
	if err := writeFileString(configPath, fmt.Sprintf(
		"diaryFilesGlobs:\n  - %q\nunmatchedLedgerPath: %q\ntimeZoneLocation: \"UTC\"\n",
		filepath.Join(tempDir, "diary-*.md"), ledgerPath)); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	args := Args{
		ConfigPath: configPath,
		Reconcile:  &ReconcileCmd{InputFile: "testdata/n26/example.csv", Format: FORMAT_N26},
	}
	if err := runApplication(args); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	diary := readFileString(t, diaryPath)
	if !strings.Contains(diary,
		"* EUR 15.72 - groceries - Lidl (reconciled: N26 - 2024-05-12 - EUR:15.72)") {
		t.Errorf("Expected Lidl line marked as reconciled, got:\n%s", diary)
	}
	ledger := readFileString(t, ledgerPath)
	if !strings.Contains(ledger, "VINMONOPOLET") || !strings.Contains(ledger, "NOK") {
		t.Errorf("Expected unmatched NOK transaction in ledger, got:\n%s", ledger)
	}

	// A second run finds everything settled and changes nothing.
	if err := runApplication(args); err != nil {
		t.Fatalf("Expected no error on second run, got: %v", err)
	}
	if got := readFileString(t, diaryPath); got != diary {
		t.Errorf("Expected diary untouched on second run, got:\n%s", got)
	}
	if got := readFileString(t, ledgerPath); got != ledger {
		t.Errorf("Expected ledger untouched on second run, got:\n%s", got)
	}
}

func TestParseDateFlag(t *testing.T) {
	date, err := parseDateFlag("2024-05-11", "--start")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if date == nil || date.Format(DiaryDateFormat) != "2024-05-11" {
		t.Errorf("Expected parsed date 2024-05-11, got %v", date)
	}

	date, err = parseDateFlag("", "--start")
	if err != nil || date != nil {
		t.Errorf("Expected nil date for empty flag, got %v, %v", date, err)
	}

	_, err = parseDateFlag("11.05.2024", "--start")
	checkErrorContainsSubstring(t, err, "invalid --start date")
}
