package main

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// ExpenseLine is the parsed form of one "* CCY amount - type - description"
// diary line. Parse and Format round-trip: formatting a parsed line (with or
// without its reconciliation marker) and re-parsing yields an equal value.
type ExpenseLine struct {
	Currency    string
	Amount      MoneyWith2DecimalPlaces
	ExpenseType string
	Description string
	// ReconciliationMarker is the full "(reconciled: ...)" annotation found
	// on the line, empty when the line is not reconciled yet.
	ReconciliationMarker string
}

// ParseExpenseLine parses one diary line as an expense. Returns ok=false for
// anything that doesn't follow the grammar; that is never an error because
// the diary freely mixes expenses with prose.
func ParseExpenseLine(line string) (ExpenseLine, bool) {
	line = strings.TrimSpace(line)
	m := expenseLinePattern.FindStringSubmatch(line)
	if m == nil {
		return ExpenseLine{}, false
	}

	var amount MoneyWith2DecimalPlaces
	if err := amount.ParseString(m[2]); err != nil {
		return ExpenseLine{}, false
	}

	description := m[4]
	marker := ""
	if loc := reconciledAnnotationPattern.FindStringIndex(description); loc != nil {
		marker = description[loc[0]:loc[1]]
		description = strings.TrimSpace(description[:loc[0]])
	}

	return ExpenseLine{
		Currency:             m[1],
		Amount:               amount,
		ExpenseType:          strings.TrimSpace(m[3]),
		Description:          strings.TrimSpace(description),
		ReconciliationMarker: marker,
	}, true
}

// Format renders the line back to diary text.
func (e ExpenseLine) Format(includeReconciliation bool) string {
	line := fmt.Sprintf("* %s %s - %s - %s", e.Currency, e.Amount.String(), e.ExpenseType, e.Description)
	if includeReconciliation && e.ReconciliationMarker != "" {
		line += " " + e.ReconciliationMarker
	}
	return line
}

// IsReconciled reports whether the line already carries a marker.
func (e ExpenseLine) IsReconciled() bool {
	return e.ReconciliationMarker != ""
}

// ParseDiaryExpenses scans a diary file for expense lines that still need
// reconciliation. It never fails: a missing file yields no records and
// unparseable lines are skipped. Lines are only considered below some
// "## Weekday YYYY-MM-DD" heading, which supplies the record date.
//
// Filter priority per matched line: a "reconciled:"-prefixed split marker or
// a plain reconciled annotation drops the line as settled; an unprefixed
// split descriptor is retained on the record; a "(cash)" annotation drops
// the line because cash never reaches a bank statement.
func ParseDiaryExpenses(filePath string) []ExpenseRecord {
	buf, err := os.ReadFile(filePath)
	if err != nil {
		return nil
	}

	var records []ExpenseRecord
	var currentDate time.Time
	haveDate := false

	for lineNum, rawLine := range splitLines(string(buf)) {
		line := strings.TrimSpace(rawLine)

		if m := dateHeadingPattern.FindStringSubmatch(line); m != nil {
			if date, err := time.Parse(DiaryDateFormat, m[2]); err == nil {
				currentDate = date
				haveDate = true
			}
			continue
		}
		if !haveDate {
			continue
		}

		expense, ok := ParseExpenseLine(line)
		if !ok {
			continue
		}

		splitMarker := ""
		if m := splitMarkerLinePattern.FindStringSubmatch(line); m != nil {
			if m[1] != "" {
				continue // already settled split member
			}
			splitMarker = fmt.Sprintf("%s - %s - %s:%s/%s", m[2], m[3], m[4], m[5], m[6])
		} else if strings.Contains(line, "(reconciled:") {
			continue
		}
		if cashAnnotationPattern.MatchString(line) {
			continue
		}

		records = append(records, ExpenseRecord{
			Date:         currentDate,
			Amount:       expense.Amount,
			Currency:     expense.Currency,
			ExpenseType:  expense.ExpenseType,
			Description:  expense.Description,
			SplitMarker:  splitMarker,
			SourceFile:   filePath,
			LineNum:      lineNum + 1,
			OriginalLine: strings.TrimRight(rawLine, "\n"),
		})
	}
	return records
}

// CollectReconciledMarkers extracts the keys of every reconciliation marker
// already present in a diary file. A missing file is an empty set.
func CollectReconciledMarkers(filePath string) map[MarkerKey]struct{} {
	markers := make(map[MarkerKey]struct{})
	buf, err := os.ReadFile(filePath)
	if err != nil {
		return markers
	}

	for _, m := range reconciledMarkerPattern.FindAllStringSubmatch(string(buf), -1) {
		amount, err := formatAmountTo2Decimals(m[4])
		if err != nil {
			continue
		}
		markers[MarkerKey{Bank: m[1], Date: m[2], Currency: m[3], Amount: amount}] = struct{}{}
	}
	return markers
}

// splitLines splits file content into lines, keeping empty lines so that
// indices map to 1-based line numbers.
func splitLines(content string) []string {
	lines := strings.Split(content, "\n")
	// A trailing newline produces one empty phantom line; drop it.
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
