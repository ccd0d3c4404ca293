package main

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Weekday names accepted in date headings, English and Norwegian.
var weekdaysEn = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}
var weekdaysNo = []string{
	"Mandag", "Tirsdag", "Onsdag", "Torsdag", "Fredag", "Lørdag", "Søndag",
}

// weekdayIndex maps every accepted weekday token to its time.Weekday value.
var weekdayIndex = func() map[string]time.Weekday {
	m := make(map[string]time.Weekday, len(weekdaysEn)+len(weekdaysNo))
	for i, name := range weekdaysEn {
		m[name] = time.Weekday((i + 1) % 7) // Monday first
	}
	for i, name := range weekdaysNo {
		m[name] = time.Weekday((i + 1) % 7)
	}
	return m
}()

// FlattenEntries projects a parsed heading tree into a chronologically
// ordered list of diary days. Every immediate child of every top-level
// heading must be a "<Weekday> <YYYY-MM-DD> <itinerary>" key; anything else
// is a fatal semantic error. Entries outside [start, end] (inclusive, either
// side may be nil) are silently dropped. The surviving entries must form a
// strictly chronological ledger across all top-level sections: a duplicate
// date is as fatal as an out-of-order one.
func FlattenEntries(root *HeadingNode, start, end *time.Time) ([]DiaryEntry, error) {
	var entries []DiaryEntry
	for _, trip := range root.ChildOrder {
		tripEntries, err := flattenTrip(trip, root.Children[trip], start, end)
		if err != nil {
			return nil, err
		}
		entries = append(entries, tripEntries...)
	}
	sortEntries(entries)
	if err := validateChronologicalOrder(entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func flattenTrip(trip string, node *HeadingNode, start, end *time.Time) ([]DiaryEntry, error) {
	var entries []DiaryEntry
	for _, day := range node.ChildOrder {
		if day == "TODO" {
			continue
		}
		dayNode := node.Children[day]

		m := entryHeadingPattern.FindStringSubmatch(day)
		if m == nil {
			return nil, newSemanticError(
				"section header doesn't match expected format 'Weekday YYYY-MM-DD ...'",
				dayNode.SourceFile, dayNode.SourceOffset, day, "",
				firstChars(dayNode.Content, 100),
			)
		}
		weekday, dateStr, itinerary := m[1], m[2], m[3]

		expected, ok := weekdayIndex[weekday]
		if !ok {
			return nil, newSemanticError(
				fmt.Sprintf("unknown weekday %q", weekday),
				dayNode.SourceFile, dayNode.SourceOffset, day, dateStr, "",
			)
		}

		date, err := time.Parse(DiaryDateFormat, dateStr)
		if err != nil {
			return nil, newSemanticError(
				fmt.Sprintf("invalid date %q: %v", dateStr, err),
				dayNode.SourceFile, dayNode.SourceOffset, day, dateStr, "",
			)
		}

		// The stated weekday must be the real weekday of the date. This is
		// what catches hand-edit typos in the diary.
		if date.Weekday() != expected {
			return nil, newSemanticError(
				fmt.Sprintf("weekday mismatch: %q is not the correct day for %s (should be %s)",
					weekday, dateStr, englishWeekday(date.Weekday())),
				dayNode.SourceFile, dayNode.SourceOffset, day, dateStr, "",
			)
		}

		if start != nil && date.Before(*start) {
			continue
		}
		if end != nil && date.After(*end) {
			continue
		}

		entries = append(entries, DiaryEntry{
			Trip:          trip,
			Weekday:       weekday,
			Date:          date,
			Itinerary:     itinerary,
			ItineraryList: decomposeItinerary(itinerary),
			Sections:      dayNode.Children,
			SectionOrder:  dayNode.ChildOrder,
			Content:       dayNode.Content,
			SourceFile:    dayNode.SourceFile,
			SourceOffset:  dayNode.SourceOffset,
		})
	}
	return entries, nil
}

// englishWeekday names a weekday the way the diary writes it in English.
func englishWeekday(d time.Weekday) string {
	return d.String()
}

// decomposeItinerary splits the free-text suffix of a date heading into
// alternating legs and parenthesized annotations:
// " - Oslo (ferry) - Bergen" -> ["", "Oslo ", "(ferry)", "Bergen"].
func decomposeItinerary(itinerary string) []string {
	var list []string
	for _, part := range strings.Split(itinerary, " - ") {
		m := itineraryLegPattern.FindStringSubmatch(part)
		if m == nil {
			continue
		}
		list = append(list, m[1])
		if m[2] != "" {
			list = append(list, m[2])
		}
	}
	return list
}

// sortEntries orders by date, then source file, then source offset. Stable
// because offsets are unique within a file.
func sortEntries(entries []DiaryEntry) {
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.SourceFile != b.SourceFile {
			return a.SourceFile < b.SourceFile
		}
		return a.SourceOffset < b.SourceOffset
	})
}

// validateChronologicalOrder walks sorted entries and rejects any date that
// is not strictly greater than its predecessor, including exact duplicates
// from the same or different sections, and any non-advancing position within
// one file. The error names both the offending and the preceding entry.
func validateChronologicalOrder(entries []DiaryEntry) error {
	lastFile := ""
	lastOffset := 0
	lastDate := time.Time{}
	lastSection := ""

	for _, entry := range entries {
		section := fmt.Sprintf("%s %s%s", entry.Weekday, entry.Date.Format(DiaryDateFormat), entry.Itinerary)
		if !entry.Date.After(lastDate) ||
			(entry.SourceFile == lastFile && entry.SourceOffset <= lastOffset) {
			return newSemanticError(
				"entries not in chronological order or duplicate date",
				entry.SourceFile, entry.SourceOffset, section,
				entry.Date.Format(DiaryDateFormat),
				fmt.Sprintf("Previous: %s (%s)", lastSection, lastDate.Format(DiaryDateFormat)),
			)
		}
		lastFile = entry.SourceFile
		lastOffset = entry.SourceOffset
		lastDate = entry.Date
		lastSection = section
	}
	return nil
}

func firstChars(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
