package main

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Subsection titles the diary convention knows about. This is an informal
// allow-list used for lint warnings only, never enforced during parsing.
var allowedSubsectionTitles = map[string]struct{}{
	"Time accounting":                 {},
	"Expenses":                        {},
	"Mistakes and incidents":          {},
	"Maintenance":                     {},
	"Equipment bought":                {},
	"Embarkments and disembarkments":  {},
	"Times and positions":             {},
}

// digestExpensePattern is the looser expense shape used by the summary: any
// three-letter currency, the rest of the line as free details.
var digestExpensePattern = regexp.MustCompile(`^\* ([A-Z]{3}) (-?\d+(?:\.\d+)?) - (.*)$`)

var (
	paidByPattern = regexp.MustCompile(`- paid by ([^ ]*)`)
	sharedPattern = regexp.MustCompile(` - DIV(\d+)`)
)

// SelectSubsections prints the chosen subsection(s) of every diary day that
// has them, grouped under trip and day headings.
func SelectSubsections(w io.Writer, entries []DiaryEntry, sections []string) {
	header := ""
	for _, entry := range entries {
		if entry.Trip != header {
			fmt.Fprintf(w, "# %s\n\n", entry.Trip)
			header = entry.Trip
		}
		dayPrinted := false
		for _, section := range sections {
			node, ok := entry.Sections[section]
			if !ok {
				continue
			}
			if !dayPrinted {
				fmt.Fprintf(w, "## %s %s%s\n\n", entry.Weekday, entry.Date.Format(DiaryDateFormat), entry.Itinerary)
				dayPrinted = true
			}
			fmt.Fprintf(w, "### %s\n%s", section, node.Content)
		}
	}
}

// diaryEntryJSON is the export projection of a diary day.
type diaryEntryJSON struct {
	Trip          string            `json:"trip"`
	Weekday       string            `json:"dow"`
	Date          string            `json:"date"`
	Itinerary     string            `json:"itinerary"`
	ItineraryList []string          `json:"itineraryList"`
	Sections      map[string]string `json:"sections"`
}

// ExportDiaryJSON writes the flattened diary as a JSON array.
func ExportDiaryJSON(w io.Writer, entries []DiaryEntry) error {
	out := make([]diaryEntryJSON, 0, len(entries))
	for _, entry := range entries {
		sections := make(map[string]string, len(entry.Sections))
		for name, node := range entry.Sections {
			sections[name] = node.Content
		}
		out = append(out, diaryEntryJSON{
			Trip:          entry.Trip,
			Weekday:       entry.Weekday,
			Date:          entry.Date.Format(DiaryDateFormat),
			Itinerary:     entry.Itinerary,
			ItineraryList: entry.ItineraryList,
			Sections:      sections,
		})
	}
	encoder := json.NewEncoder(w)
	return encoder.Encode(out)
}

// LintSubsections compares every subsection title in the tree against the
// informal allow-list and reports both directions of mismatch. Warnings
// only; unknown titles never fail a parse.
func LintSubsections(w io.Writer, root *HeadingNode) {
	found := make(map[string]struct{})
	for _, trip := range root.ChildOrder {
		tripNode := root.Children[trip]
		for _, day := range tripNode.ChildOrder {
			dayNode := tripNode.Children[day]
			for _, title := range dayNode.ChildOrder {
				found[title] = struct{}{}
				if _, ok := allowedSubsectionTitles[title]; !ok {
					fmt.Fprintf(w, "Not allowed: %s in %s->%s\n", title, trip, day)
				}
			}
		}
	}
	var missing, extra []string
	for title := range allowedSubsectionTitles {
		if _, ok := found[title]; !ok {
			missing = append(missing, title)
		}
	}
	for title := range found {
		if _, ok := allowedSubsectionTitles[title]; !ok {
			extra = append(extra, title)
		}
	}
	sort.Strings(missing)
	sort.Strings(extra)
	fmt.Fprintf(w, "Allowable, but missing: %v\n", missing)
	fmt.Fprintf(w, "Not allowable, but found: %v\n", extra)
}

// ExpenseSummary aggregates the diary's expense sections in EUR.
type ExpenseSummary struct {
	// TotalExpenses in cents EUR, everything accounted.
	TotalExpenses MoneyWith2DecimalPlaces
	// SharedPerHead is the per-person share of DIVn-annotated expenses.
	SharedPerHead MoneyWith2DecimalPlaces
	// MyExpenses is the own total (shared expenses counted at per-head share).
	MyExpenses MoneyWith2DecimalPlaces
	// ByCategory and ByPayer in cents EUR.
	ByCategory map[string]MoneyWith2DecimalPlaces
	ByPayer    map[string]MoneyWith2DecimalPlaces
	// UnaccountedContent is expense-section text that didn't parse, kept for
	// manual review.
	UnaccountedContent []string
	// ConversionWarnings accumulates rate-lookup misses; they never abort.
	ConversionWarnings []string
}

// SummarizeExpenses walks the Expenses section of every diary day and builds
// EUR totals by category and payer. An Expenses section without content is a
// semantic error; a missing exchange rate only produces a warning.
func SummarizeExpenses(entries []DiaryEntry) (*ExpenseSummary, error) {
	summary := &ExpenseSummary{
		ByCategory: make(map[string]MoneyWith2DecimalPlaces),
		ByPayer:    make(map[string]MoneyWith2DecimalPlaces),
	}

	type accountedExpense struct {
		currency string
		amount   MoneyWith2DecimalPlaces
		details  string
		date     string
	}
	var accounted []accountedExpense

	for _, entry := range entries {
		node, ok := entry.Sections["Expenses"]
		if !ok {
			continue
		}
		if node.Content == "" {
			return nil, newSemanticError(
				"Expenses section has no content",
				entry.SourceFile, entry.SourceOffset,
				fmt.Sprintf("%s %s%s", entry.Weekday, entry.Date.Format(DiaryDateFormat), entry.Itinerary),
				entry.Date.Format(DiaryDateFormat), "",
			)
		}

		unaccounted := ""
		for _, line := range strings.Split(strings.TrimSpace(node.Content), "\n") {
			if unaccounted == "" {
				line = strings.TrimSpace(line)
				if line == "" {
					continue
				}
			}
			m := digestExpensePattern.FindStringSubmatch(line)
			if m == nil {
				unaccounted += line
				continue
			}
			var amount MoneyWith2DecimalPlaces
			if err := amount.ParseString(m[2]); err != nil {
				unaccounted += line
				continue
			}
			accounted = append(accounted, accountedExpense{
				currency: m[1],
				amount:   amount,
				details:  m[3],
				date:     entry.Date.Format(DiaryDateFormat),
			})
		}
		if unaccounted != "" {
			summary.UnaccountedContent = append(summary.UnaccountedContent,
				fmt.Sprintf("## %s %s%s\n", entry.Weekday, entry.Date.Format(DiaryDateFormat), entry.Itinerary),
				unaccounted)
		}
	}

	for _, expense := range accounted {
		amount := expense.amount
		if expense.currency != DEFAULT_BASE_CURRENCY {
			r, ok := GetExchangeRate(expense.currency, expense.date)
			if !ok {
				summary.ConversionWarnings = append(summary.ConversionWarnings,
					fmt.Sprintf("Unknown currency %s on %s", expense.currency, expense.date))
				continue
			}
			amount = MoneyFromFloat(float64(amount.Cents()) / 100 * r)
		}

		summary.TotalExpenses = addMoney(summary.TotalExpenses, amount)

		category := expense.details
		if i := strings.Index(category, " - "); i >= 0 {
			category = category[:i]
		}
		if i := strings.Index(category, " ("); i >= 0 {
			category = category[:i]
		}

		if m := paidByPattern.FindStringSubmatch(expense.details); m != nil {
			summary.ByPayer[m[1]] = addMoney(summary.ByPayer[m[1]], amount)
		}

		if m := sharedPattern.FindStringSubmatch(expense.details); m != nil {
			divisor, _ := strconv.Atoi(m[1])
			if divisor > 0 {
				amount = MoneyWith2DecimalPlaces{int: amount.Cents() / divisor}
				summary.SharedPerHead = addMoney(summary.SharedPerHead, amount)
			}
		}

		summary.ByCategory[category] = addMoney(summary.ByCategory[category], amount)
		summary.MyExpenses = addMoney(summary.MyExpenses, amount)
	}
	return summary, nil
}

// DumpExpenseSummary renders the summary as the markdown report the digest
// command prints.
func DumpExpenseSummary(w io.Writer, summary *ExpenseSummary) {
	fmt.Fprintf(w, "# Unaccounted text under expenses (look through)\n\n")
	fmt.Fprintf(w, "%s\n", strings.Join(summary.UnaccountedContent, "\n"))

	fmt.Fprintf(w, "# Expenses by payer\n\n")
	payers := sortedKeys(summary.ByPayer)
	for _, payer := range payers {
		fmt.Fprintf(w, " * %s %s - %s\n", DEFAULT_BASE_CURRENCY, summary.ByPayer[payer].String(), payer)
	}
	fmt.Fprintf(w, "\n# Expenses by category\n\n")
	categories := sortedKeys(summary.ByCategory)
	sort.Slice(categories, func(i, j int) bool {
		return summary.ByCategory[categories[i]].Cents() < summary.ByCategory[categories[j]].Cents()
	})
	for _, category := range categories {
		fmt.Fprintf(w, " * %s %s - %s\n", DEFAULT_BASE_CURRENCY, summary.ByCategory[category].String(), category)
	}
	fmt.Fprintln(w)

	if len(summary.ConversionWarnings) > 0 {
		fmt.Fprintf(w, "# Currency conversion warnings\n\n")
		for _, warning := range summary.ConversionWarnings {
			fmt.Fprintf(w, " * %s\n", warning)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "# Totals\n\n")
	fmt.Fprintf(w, "Total expenses: %s %s\n", DEFAULT_BASE_CURRENCY, summary.TotalExpenses.String())
	fmt.Fprintf(w, "Shared expenses per head: %s %s\n", DEFAULT_BASE_CURRENCY, summary.SharedPerHead.String())
	fmt.Fprintf(w, "My expenses: %s %s\n", DEFAULT_BASE_CURRENCY, summary.MyExpenses.String())
}

func addMoney(a, b MoneyWith2DecimalPlaces) MoneyWith2DecimalPlaces {
	return MoneyWith2DecimalPlaces{int: a.Cents() + b.Cents()}
}

func sortedKeys(m map[string]MoneyWith2DecimalPlaces) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
