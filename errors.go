package main

import (
	"fmt"
	"strings"
)

// DiaryErrorKind distinguishes the two fatal parse error classes.
type DiaryErrorKind int

const (
	// StructuralErrorKind marks heading structure violations found while
	// building the section tree (a heading level jump of more than one).
	StructuralErrorKind DiaryErrorKind = iota
	// SemanticErrorKind marks malformed or inconsistent diary content found
	// while flattening: bad date heading, unknown weekday, weekday/date
	// mismatch, duplicate or out-of-order entries.
	SemanticErrorKind
)

// DiaryParseError is the fatal error for diary parsing issues. It carries
// enough context to locate the offending section without re-reading the file.
type DiaryParseError struct {
	Kind         DiaryErrorKind
	Message      string
	FileName     string
	FilePosition int
	Section      string
	Date         string
	Content      string
}

func (e *DiaryParseError) Error() string {
	details := []string{e.Message}
	if e.FileName != "" {
		details = append(details, fmt.Sprintf("  File: %s", e.FileName))
	}
	if e.FilePosition > 0 {
		details = append(details, fmt.Sprintf("  Position: %d", e.FilePosition))
	}
	if e.Section != "" {
		details = append(details, fmt.Sprintf("  Section: %s", e.Section))
	}
	if e.Date != "" {
		details = append(details, fmt.Sprintf("  Date: %s", e.Date))
	}
	if e.Content != "" {
		preview := e.Content
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		details = append(details, fmt.Sprintf("  Content: %q", preview))
	}
	return strings.Join(details, "\n")
}

func newStructuralError(message, fileName string, filePosition int, section, content string) *DiaryParseError {
	return &DiaryParseError{
		Kind:         StructuralErrorKind,
		Message:      message,
		FileName:     fileName,
		FilePosition: filePosition,
		Section:      section,
		Content:      content,
	}
}

func newSemanticError(message, fileName string, filePosition int, section, date, content string) *DiaryParseError {
	return &DiaryParseError{
		Kind:         SemanticErrorKind,
		Message:      message,
		FileName:     fileName,
		FilePosition: filePosition,
		Section:      section,
		Date:         date,
		Content:      content,
	}
}
