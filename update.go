package main

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"
	"unicode"
)

var updateDateHeadingPattern = regexp.MustCompile(`^## \S+ (\d{4}-\d{2}-\d{2})`)

// formatDateHeader renders the day heading of a diary entry with the
// English weekday.
func formatDateHeader(date time.Time) string {
	return fmt.Sprintf("## %s %s", date.Weekday().String(), date.Format(DiaryDateFormat))
}

// FormatExpenseLineEntry builds an expense bullet from its parts.
func FormatExpenseLineEntry(amount float64, currency, expenseType, description string) string {
	return fmt.Sprintf("* %s %.2f - %s - %s", currency, amount, expenseType, description)
}

// titleWords upper-cases the first letter of every word and lower-cases the
// rest, so "mistakes and incidents" becomes "Mistakes And Incidents".
func titleWords(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		runes := []rune(strings.ToLower(word))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// findOrCreateDateSection locates the day heading for the target date, or
// the chronological insertion point for a new one. The second return value
// reports whether the date already exists.
func findOrCreateDateSection(lines []string, targetDate time.Time) (int, bool) {
	dateHeader := formatDateHeader(targetDate)
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), dateHeader) {
			return i, true
		}
	}
	for i, line := range lines {
		m := updateDateHeadingPattern.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		entryDate, err := time.Parse(DiaryDateFormat, m[1])
		if err != nil {
			continue
		}
		if entryDate.After(targetDate) {
			return i, false
		}
	}
	return len(lines), false
}

// findSectionInDate scans a day entry for a subsection heading. The match is
// case-insensitive. Returns -1 when the day has no such subsection.
func findSectionInDate(lines []string, startLine int, sectionName string) int {
	sectionHeader := strings.ToLower("### " + titleWords(sectionName))
	for i := startLine + 1; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if updateDateHeadingPattern.MatchString(line) {
			return -1
		}
		if strings.ToLower(line) == sectionHeader {
			return i
		}
	}
	return -1
}

// findSectionEnd returns the line where a section's content stops, which is
// the next heading of level 2 or 3, or the end of the file.
func findSectionEnd(lines []string, sectionLine int) int {
	for i := sectionLine + 1; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if strings.HasPrefix(line, "## ") || strings.HasPrefix(line, "### ") {
			return i
		}
	}
	return len(lines)
}

// UpdateDiary inserts one bullet line into the given subsection of the given
// day, creating the day heading and the subsection as needed. Days are kept
// in chronological order, new lines land at the end of the subsection before
// its trailing blank lines. With dryRun the file is left untouched and the
// planned edit is printed instead.
func UpdateDiary(w io.Writer, diaryFile string, targetDate time.Time, section, line string, dryRun bool) error {
	content, err := os.ReadFile(diaryFile)
	if err != nil {
		return fmt.Errorf("can't read diary file %s: %w", diaryFile, err)
	}

	lines := strings.Split(string(content), "\n")
	dateLine, dateExists := findOrCreateDateSection(lines, targetDate)

	var action string
	if !dateExists {
		newBlock := []string{
			"",
			formatDateHeader(targetDate),
			"",
			"### " + titleWords(section),
			"",
			line,
		}
		lines = insertLines(lines, dateLine, newBlock)
		action = fmt.Sprintf("Created new date section for %s", targetDate.Format(DiaryDateFormat))
	} else if sectionLine := findSectionInDate(lines, dateLine, section); sectionLine < 0 {
		sectionEnd := findSectionEnd(lines, dateLine)
		newBlock := []string{
			"",
			"### " + titleWords(section),
			"",
			line,
		}
		lines = insertLines(lines, sectionEnd, newBlock)
		action = fmt.Sprintf("Created new %q section", section)
	} else {
		insertAt := findSectionEnd(lines, sectionLine)
		for insertAt > sectionLine && strings.TrimSpace(lines[insertAt-1]) == "" {
			insertAt--
		}
		lines = insertLines(lines, insertAt, []string{line})
		action = fmt.Sprintf("Added to existing %q section", section)
	}

	if dryRun {
		fmt.Fprintln(w, "=== DRY RUN ===")
		fmt.Fprintf(w, "Would update: %s\n", diaryFile)
		fmt.Fprintf(w, "Action: %s\n", action)
		fmt.Fprintf(w, "Line: %s\n", line)
		return nil
	}

	if err := os.WriteFile(diaryFile, []byte(strings.Join(lines, "\n")), 0644); err != nil {
		return fmt.Errorf("can't write diary file %s: %w", diaryFile, err)
	}
	fmt.Fprintf(w, "Updated %s\n", diaryFile)
	fmt.Fprintln(w, action)
	fmt.Fprintf(w, "Added: %s\n", line)
	return nil
}

// EnsureSectionExists creates the day heading and subsection if they are
// missing but adds no content. Returns whether the file was modified.
func EnsureSectionExists(w io.Writer, diaryFile string, targetDate time.Time, section string, dryRun bool) (bool, error) {
	content, err := os.ReadFile(diaryFile)
	if err != nil {
		return false, fmt.Errorf("can't read diary file %s: %w", diaryFile, err)
	}

	lines := strings.Split(string(content), "\n")
	dateLine, dateExists := findOrCreateDateSection(lines, targetDate)
	modified := false

	var action string
	if !dateExists {
		newBlock := []string{
			"",
			formatDateHeader(targetDate),
			"",
			"### " + titleWords(section),
			"",
		}
		lines = insertLines(lines, dateLine, newBlock)
		modified = true
		action = fmt.Sprintf("Created date section for %s with %s subsection", targetDate.Format(DiaryDateFormat), section)
	} else if sectionLine := findSectionInDate(lines, dateLine, section); sectionLine < 0 {
		sectionEnd := findSectionEnd(lines, dateLine)
		newBlock := []string{
			"",
			"### " + titleWords(section),
			"",
		}
		lines = insertLines(lines, sectionEnd, newBlock)
		modified = true
		action = fmt.Sprintf("Created %q section for %s", section, targetDate.Format(DiaryDateFormat))
	} else {
		action = fmt.Sprintf("Section %q already exists for %s", section, targetDate.Format(DiaryDateFormat))
	}

	if dryRun {
		fmt.Fprintln(w, "=== DRY RUN ===")
		fmt.Fprintf(w, "Action: %s\n", action)
		if modified {
			fmt.Fprintln(w, "Would modify file")
		}
		return modified, nil
	}

	if modified {
		if err := os.WriteFile(diaryFile, []byte(strings.Join(lines, "\n")), 0644); err != nil {
			return false, fmt.Errorf("can't write diary file %s: %w", diaryFile, err)
		}
		fmt.Fprintf(w, "Updated %s\n", diaryFile)
	}
	fmt.Fprintln(w, action)
	return modified, nil
}

func insertLines(lines []string, at int, block []string) []string {
	out := make([]string, 0, len(lines)+len(block))
	out = append(out, lines[:at]...)
	out = append(out, block...)
	out = append(out, lines[at:]...)
	return out
}
