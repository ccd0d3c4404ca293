package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// MarkReconciled appends reconciliation markers to matched diary lines and
// upgrades split descriptors of matched groups to their "reconciled:" form.
// Edits are grouped per file and applied in descending line order within one
// read-modify-write pass, so earlier insertions never shift the line numbers
// of edits not yet applied. Returns the number of updated lines per file.
func MarkReconciled(matched []MatchedPair, groups []SplitGroup, dryRun bool) (map[string]int, error) {
	// Split group members get the same edit treatment as single matches.
	pairs := make([]MatchedPair, 0, len(matched))
	pairs = append(pairs, matched...)
	for _, g := range groups {
		for _, member := range g.Members {
			pairs = append(pairs, MatchedPair{Bank: g.Bank, Diary: member})
		}
	}

	byFile := make(map[string][]MatchedPair)
	var fileOrder []string
	for _, p := range pairs {
		if _, ok := byFile[p.Diary.SourceFile]; !ok {
			fileOrder = append(fileOrder, p.Diary.SourceFile)
		}
		byFile[p.Diary.SourceFile] = append(byFile[p.Diary.SourceFile], p)
	}

	updatedCounts := make(map[string]int)
	for _, filePath := range fileOrder {
		filePairs := byFile[filePath]

		buf, err := os.ReadFile(filePath)
		if err != nil {
			return updatedCounts, fmt.Errorf("can't read diary file '%s': %w", filePath, err)
		}
		lines := strings.Split(string(buf), "\n")

		sort.Slice(filePairs, func(i, j int) bool {
			return filePairs[i].Diary.LineNum > filePairs[j].Diary.LineNum
		})

		for _, p := range filePairs {
			lineIdx := p.Diary.LineNum - 1
			if lineIdx < 0 || lineIdx >= len(lines) {
				continue
			}
			lines[lineIdx] = reconcileLine(lines[lineIdx], p)
		}

		if !dryRun {
			if err := os.WriteFile(filePath, []byte(strings.Join(lines, "\n")), 0644); err != nil {
				return updatedCounts, fmt.Errorf("can't write diary file '%s': %w", filePath, err)
			}
		}
		updatedCounts[filePath] = len(filePairs)
	}
	return updatedCounts, nil
}

// reconcileLine produces the edited form of one diary line.
func reconcileLine(line string, p MatchedPair) string {
	if p.Diary.SplitMarker != "" {
		oldMarker := "(" + p.Diary.SplitMarker + ")"
		newMarker := "(reconciled: " + p.Diary.SplitMarker + ")"
		return strings.Replace(line, oldMarker, newMarker, 1)
	}
	// Two bank transactions may greedily match the same diary record in one
	// run; a line that already carries a marker must not get a second one.
	if expense, ok := ParseExpenseLine(strings.TrimSpace(line)); ok && expense.IsReconciled() {
		return line
	}
	return line + " " + FormatReconciliationMarker(p.Bank)
}
