package main

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/alexflint/go-arg"
)

const FORMAT_N26 = "n26"
const FORMAT_WISE = "wise"
const FORMAT_BANKNORWEGIAN = "banknorwegian"
const FORMAT_REMEMBER = "remember"

type DigestCmd struct {
	SelectSubsection   *SelectSubsectionCmd   `arg:"subcommand:select-subsection" help:"Extract specific subsections from diary entries."`
	ExportJson         *ExportJsonCmd         `arg:"subcommand:export-json" help:"Export the flattened diary as JSON."`
	FindAllSubsections *FindAllSubsectionsCmd `arg:"subcommand:find-all-subsections" help:"Check subsection titles against the known set."`
	Expenses           *ExpensesCmd           `arg:"subcommand:expenses" help:"Summarize diary expenses in EUR by category and payer."`
	Start              string                 `arg:"--start" help:"Only show dates at or after this date (YYYY-MM-DD)."`
	End                string                 `arg:"--end" help:"Only show dates up until and including this date (YYYY-MM-DD)."`
	Diary              []string               `arg:"--diary,separate" help:"Diary file to read; repeatable. By default the configured diary globs."`
}

type SelectSubsectionCmd struct {
	Section []string `arg:"--section,separate" help:"Section title to extract; repeatable."`
}

type ExportJsonCmd struct{}

type FindAllSubsectionsCmd struct{}

type ExpensesCmd struct{}

type ReconcileCmd struct {
	InputFile     string   `arg:"positional,required" help:"Bank export file (or glob for 'remember' format)."`
	Format        string   `arg:"-f,--format" default:"n26" help:"Input format: n26, wise, banknorwegian, remember."`
	Diary         []string `arg:"--diary,separate" help:"Diary file to reconcile against; repeatable. By default the configured diary globs."`
	Currency      string   `arg:"--currency" help:"Default currency when the export doesn't specify one. By default from configuration."`
	Tolerance     *float64 `arg:"-t,--tolerance" help:"Amount tolerance for fuzzy matching. By default from configuration."`
	DateTolerance *int     `arg:"--date-tolerance" help:"Date tolerance in days. By default from configuration."`
	DryRun        bool     `arg:"-n,--dry-run" help:"Show matches without modifying files."`
	Verbose       bool     `arg:"-v,--verbose" help:"Show detailed matching info."`
}

type AddCmd struct {
	Section     string   `arg:"-s,--section" default:"expenses" help:"Section name to add under."`
	Date        string   `arg:"-d,--date" help:"Date (YYYY-MM-DD). By default today."`
	Line        string   `arg:"-l,--line" help:"Full line to add, e.g. 'EUR 7.10 - groceries - Lidl'."`
	Amount      *float64 `arg:"-a,--amount" help:"Amount, used with --currency, --type, --description."`
	Currency    string   `arg:"-c,--currency" default:"EUR" help:"Currency of --amount."`
	Type        string   `arg:"--type" default:"groceries" help:"Expense type of --amount."`
	Description string   `arg:"--description" help:"Description, e.g. 'Lidl (milk, bread)'."`
	Diary       string   `arg:"--diary" help:"Diary file to update. By default the newest configured diary."`
	DryRun      bool     `arg:"-n,--dry-run" help:"Show what would be done without modifying files."`
}

type Args struct {
	ConfigPath string        `arg:"--config" default:"config.yaml" help:"Path to the configuration YAML file. By default is used 'config.yaml' path."`
	Digest     *DigestCmd    `arg:"subcommand:digest" help:"Analyze and extract information from diary files."`
	Reconcile  *ReconcileCmd `arg:"subcommand:reconcile" help:"Reconcile bank expenses with diary entries."`
	Add        *AddCmd       `arg:"subcommand:add" help:"Add an entry to the diary."`
}

// Version is application version string and should be updated with `go build -ldflags`.
var Version = "development"

func (Args) Version() string {
	return Version
}

func (Args) Description() string {
	return "diary-ledger is a local tool to keep travel diary expenses and bank statements reconciled."
}

func main() {
	args, isHelpRequested, err := parseArgs(os.Args[1:])
	if err != nil {
		log.Fatalf("Error parsing arguments: %v", err)
	}
	if isHelpRequested {
		os.Exit(0)
	}

	if err := runApplication(args); err != nil {
		log.Fatalf("%s", err)
	}
}

// parseArgs parses command line arguments. The second result reports that
// help was requested (or no subcommand given) and already printed.
func parseArgs(arguments []string) (Args, bool, error) {
	var args Args
	p, err := arg.NewParser(arg.Config{}, &args)
	if err != nil {
		return args, false, fmt.Errorf("can't create argument parser: %w", err)
	}

	err = p.Parse(arguments)
	if err == arg.ErrHelp {
		p.WriteHelp(os.Stdout)
		return args, true, nil
	}
	if err != nil {
		return args, false, err
	}
	if p.Subcommand() == nil {
		p.WriteHelp(os.Stdout)
		return args, true, nil
	}
	return args, false, nil
}

func runApplication(args Args) error {
	configPath, err := getAbsolutePath(args.ConfigPath)
	if err != nil {
		return fmt.Errorf("can't find configuration file '%s': %v", args.ConfigPath, err)
	}
	config, err := readConfig(configPath)
	if err != nil {
		return fmt.Errorf("configuration file '%s' is wrong: %s", configPath, err)
	}

	switch {
	case args.Digest != nil:
		return runDigest(args.Digest, config)
	case args.Reconcile != nil:
		return runReconcile(args.Reconcile, config)
	case args.Add != nil:
		return runAdd(args.Add, config)
	}
	return nil
}

// diaryFilesFor resolves the diary files a command works on: explicit --diary
// values win, otherwise the configured globs.
func diaryFilesFor(explicit []string, config *Config) ([]string, error) {
	if len(explicit) > 0 {
		return explicit, nil
	}
	files, err := expandDiaryGlobs(config.DiaryFilesGlobs)
	if err != nil {
		return nil, err
	}
	if len(files) < 1 {
		return nil, fmt.Errorf("no diary files found by globs %v", config.DiaryFilesGlobs)
	}
	return files, nil
}

// loadDiaryEntries parses all diary files into one heading tree and flattens
// it into the chronological day list.
func loadDiaryEntries(files []string, start, end *time.Time) ([]DiaryEntry, *HeadingNode, error) {
	root := newHeadingNode()
	for _, file := range files {
		tree, err := ParseMarkdownFile(file)
		if err != nil {
			return nil, nil, err
		}
		root.merge(tree)
	}
	entries, err := FlattenEntries(root, start, end)
	if err != nil {
		return nil, nil, err
	}
	return entries, root, nil
}

func parseDateFlag(value, flag string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	date, err := time.Parse(DiaryDateFormat, value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s date '%s': expected YYYY-MM-DD", flag, value)
	}
	return &date, nil
}

func runDigest(cmd *DigestCmd, config *Config) error {
	start, err := parseDateFlag(cmd.Start, "--start")
	if err != nil {
		return err
	}
	end, err := parseDateFlag(cmd.End, "--end")
	if err != nil {
		return err
	}

	files, err := diaryFilesFor(cmd.Diary, config)
	if err != nil {
		return err
	}
	entries, root, err := loadDiaryEntries(files, start, end)
	if err != nil {
		return err
	}

	switch {
	case cmd.SelectSubsection != nil:
		SelectSubsections(os.Stdout, entries, cmd.SelectSubsection.Section)
	case cmd.ExportJson != nil:
		return ExportDiaryJSON(os.Stdout, entries)
	case cmd.FindAllSubsections != nil:
		LintSubsections(os.Stdout, root)
	case cmd.Expenses != nil:
		summary, err := SummarizeExpenses(entries)
		if err != nil {
			return err
		}
		DumpExpenseSummary(os.Stdout, summary)
	default:
		return fmt.Errorf("digest needs a subcommand: select-subsection, export-json, find-all-subsections or expenses")
	}
	return nil
}

// bankParserForFormat maps the --format flag to a reader.
func bankParserForFormat(format string) (BankFileParser, error) {
	switch format {
	case FORMAT_N26:
		return N26CsvFileParser{}, nil
	case FORMAT_WISE:
		return WiseCsvFileParser{}, nil
	case FORMAT_BANKNORWEGIAN:
		return BankNorwegianXlsxFileParser{}, nil
	case FORMAT_REMEMBER:
		return RememberJsonFileParser{}, nil
	default:
		return nil, fmt.Errorf(
			"unknown format '%s', supported only: %s, %s, %s, %s",
			format, FORMAT_N26, FORMAT_WISE, FORMAT_BANKNORWEGIAN, FORMAT_REMEMBER,
		)
	}
}

func runReconcile(cmd *ReconcileCmd, config *Config) error {
	parser, err := bankParserForFormat(cmd.Format)
	if err != nil {
		return err
	}

	currency := cmd.Currency
	if currency == "" {
		currency = config.DefaultCurrency
	}
	amountTolerance := config.AmountTolerance
	if cmd.Tolerance != nil {
		amountTolerance = *cmd.Tolerance
	}
	dateTolerance := config.DateToleranceDays
	if cmd.DateTolerance != nil {
		dateTolerance = *cmd.DateTolerance
	}

	aliases := LoadAliases(config.AliasesPath)
	if cmd.Verbose && len(aliases) > 0 {
		log.Printf("Loaded %d alias mappings.", len(aliases))
	}

	diaryFiles, err := diaryFilesFor(cmd.Diary, config)
	if err != nil {
		return err
	}

	log.Printf("Parsing '%s' with %T%+v parser.", cmd.InputFile, parser, parser)
	bankTransactions, err := parser.ParseBankTransactions(cmd.InputFile, currency)
	if err != nil {
		return fmt.Errorf("can't parse bank transactions from '%s': %w", cmd.InputFile, err)
	}
	log.Printf("Found %d bank transactions in '%s'.", len(bankTransactions), cmd.InputFile)

	var diaryExpenses []ExpenseRecord
	markers := make(map[MarkerKey]struct{})
	for _, file := range diaryFiles {
		records := ParseDiaryExpenses(file)
		diaryExpenses = append(diaryExpenses, records...)
		if cmd.Verbose && len(records) > 0 {
			log.Printf("Found %d expenses in '%s'.", len(records), file)
		}
		for key := range CollectReconciledMarkers(file) {
			markers[key] = struct{}{}
		}
	}
	log.Printf("Found %d total expenses in diaries.", len(diaryExpenses))
	if cmd.Verbose && len(markers) > 0 {
		log.Printf("Found %d existing reconciliation markers.", len(markers))
	}

	result := ReconcileExpenses(bankTransactions, diaryExpenses, markers, aliases, amountTolerance, dateTolerance)

	matchedCount := len(result.Matched)
	for _, group := range result.SplitGroups {
		matchedCount += len(group.Members)
	}
	fmt.Println("\n=== Results ===")
	if result.AlreadyReconciled > 0 {
		fmt.Printf("Already reconciled: %d\n", result.AlreadyReconciled)
	}
	fmt.Printf("Matched: %d\n", matchedCount)
	fmt.Printf("Unmatched: %d\n", len(result.Unmatched))

	if cmd.Verbose || cmd.DryRun {
		dumpMatches(result)
	}

	if matchedCount > 0 {
		updates, err := MarkReconciled(result.Matched, result.SplitGroups, cmd.DryRun)
		if err != nil {
			return err
		}
		if cmd.DryRun {
			if cmd.Verbose {
				fmt.Printf("\nWould mark %d diary entries as reconciled.\n", matchedCount)
			}
		} else {
			for file, count := range updates {
				fmt.Printf("Marked %d entries as reconciled in %s\n", count, file)
			}
		}
	}

	added, removed, duplicates, err := UpdateUnmatchedLedger(
		result.Unmatched, config.UnmatchedLedgerPath, diaryExpenses,
		amountTolerance, dateTolerance, aliases, cmd.DryRun,
	)
	if err != nil {
		return err
	}
	if added > 0 || removed > 0 || duplicates > 0 {
		verb := "Updated"
		if cmd.DryRun {
			verb = "Would update"
		}
		fmt.Printf("\n%s %s:\n", verb, config.UnmatchedLedgerPath)
		if added > 0 {
			fmt.Printf("  %d new entries\n", added)
		}
		if removed > 0 {
			fmt.Printf("  %d entries removed (now matched)\n", removed)
		}
		if duplicates > 0 {
			fmt.Printf("  %d duplicates skipped\n", duplicates)
		}
	}
	if cmd.DryRun {
		fmt.Println("\n(Dry run - no files modified)")
	}
	return nil
}

func dumpMatches(result ReconcileResult) {
	pairs := append([]MatchedPair{}, result.Matched...)
	for _, group := range result.SplitGroups {
		for _, member := range group.Members {
			pairs = append(pairs, MatchedPair{Bank: group.Bank, Diary: member})
		}
	}
	if len(pairs) > 0 {
		fmt.Println("\n--- Matched expenses ---")
		for _, pair := range pairs {
			fmt.Printf("  %s %s %s '%s'\n",
				pair.Bank.Date.Format(DiaryDateFormat), pair.Bank.Currency,
				pair.Bank.Amount.String(), pair.Bank.Description)
			fmt.Printf("    -> %s %s - %s - %s\n",
				pair.Diary.Currency, pair.Diary.Amount.String(),
				pair.Diary.ExpenseType, pair.Diary.Description)
		}
	}
	if len(result.Unmatched) > 0 {
		fmt.Println("\n--- Unmatched expenses (need manual review) ---")
		for _, t := range result.Unmatched {
			fmt.Printf("  %s %s %s '%s'\n",
				t.Date.Format(DiaryDateFormat), t.Currency, t.Amount.String(), t.Description)
		}
	}
}

func runAdd(cmd *AddCmd, config *Config) error {
	timeZone, err := time.LoadLocation(config.TimeZoneLocation)
	if err != nil {
		return fmt.Errorf("unknown TimeZoneLocation: %s", config.TimeZoneLocation)
	}

	dateStr := cmd.Date
	if dateStr == "" {
		dateStr = time.Now().In(timeZone).Format(DiaryDateFormat)
	}
	targetDate, err := time.Parse(DiaryDateFormat, dateStr)
	if err != nil {
		return fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD)", dateStr)
	}

	diaryFile := cmd.Diary
	if diaryFile == "" {
		files, err := diaryFilesFor(nil, config)
		if err != nil {
			return err
		}
		// Diary files carry the year in their name, the newest sorts last.
		sort.Strings(files)
		diaryFile = files[len(files)-1]
	}

	var entryLine string
	switch {
	case cmd.Line != "":
		entryLine = "* " + cmd.Line
	case cmd.Amount != nil && cmd.Description != "":
		entryLine = FormatExpenseLineEntry(*cmd.Amount, strings.ToUpper(cmd.Currency), cmd.Type, cmd.Description)
	case cmd.Description != "":
		return fmt.Errorf("--description requires --amount for expense entries, use --line for non-expense entries")
	}

	if entryLine != "" {
		return UpdateDiary(os.Stdout, diaryFile, targetDate, cmd.Section, entryLine, cmd.DryRun)
	}
	_, err = EnsureSectionExists(os.Stdout, diaryFile, targetDate, cmd.Section, cmd.DryRun)
	return err
}
