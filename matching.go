package main

import (
	"math"
	"strings"
	"time"
	"unicode"
)

// MatchedPair is one bank transaction matched to one diary expense line.
type MatchedPair struct {
	Bank  BankTransaction
	Diary ExpenseRecord
}

// SplitGroup is one bank transaction jointly covered by several diary lines
// that carry the same split descriptor.
type SplitGroup struct {
	Bank    BankTransaction
	Members []ExpenseRecord
}

// ReconcileResult partitions bank transactions into matched pairs, matched
// split groups and an unmatched residue.
type ReconcileResult struct {
	Matched           []MatchedPair
	SplitGroups       []SplitGroup
	Unmatched         []BankTransaction
	AlreadyReconciled int
}

// ReconcileExpenses matches bank transactions against diary expense records.
// Per transaction the first applicable rule wins:
//  1. its marker key already exists in diary text -> settled, skipped;
//  2. a split group matches -> all members paired, transaction consumed;
//  3. greedy single-entry fuzzy match in diary file order, first qualifying
//     diary record wins.
func ReconcileExpenses(
	bank []BankTransaction,
	diary []ExpenseRecord,
	markers map[MarkerKey]struct{},
	aliases AliasTable,
	amountTolerance float64,
	dateToleranceDays int,
) ReconcileResult {
	var result ReconcileResult
	for _, t := range bank {
		if _, ok := markers[NewMarkerKey(t)]; ok {
			result.AlreadyReconciled++
			continue
		}

		if members := findSplitMatch(t, diary, dateToleranceDays); members != nil {
			result.SplitGroups = append(result.SplitGroups, SplitGroup{Bank: t, Members: members})
			continue
		}

		if match, ok := findMatch(t, diary, amountTolerance, dateToleranceDays, aliases); ok {
			result.Matched = append(result.Matched, MatchedPair{Bank: t, Diary: match})
			continue
		}

		result.Unmatched = append(result.Unmatched, t)
	}
	return result
}

// findSplitMatch groups diary records by their split descriptor and returns
// the members of the first group whose descriptor matches the transaction.
// The group's actual member count must equal the declared count: a diary
// edit that added or removed a member without updating the count must not
// match. Split amounts are pre-computed shares, so the amount tolerance is
// the fixed near-exact one, not the configurable general tolerance.
func findSplitMatch(t BankTransaction, diary []ExpenseRecord, dateToleranceDays int) []ExpenseRecord {
	byMarker := make(map[string][]ExpenseRecord)
	var markerOrder []string
	for _, rec := range diary {
		if rec.SplitMarker == "" {
			continue
		}
		if _, ok := byMarker[rec.SplitMarker]; !ok {
			markerOrder = append(markerOrder, rec.SplitMarker)
		}
		byMarker[rec.SplitMarker] = append(byMarker[rec.SplitMarker], rec)
	}

	for _, markerText := range markerOrder {
		marker, ok := ParseSplitMarker(markerText)
		if !ok {
			continue
		}
		if t.Bank != marker.Bank || t.Currency != marker.Currency {
			continue
		}
		if daysBetween(t.Date, marker.Date) > dateToleranceDays {
			continue
		}
		if absInt(t.Amount.Cents()-marker.Amount.Cents()) > SPLIT_AMOUNT_TOLERANCE_CENTS {
			continue
		}
		members := byMarker[markerText]
		if len(members) != marker.Count {
			continue
		}
		return members
	}
	return nil
}

// findMatch returns the first diary record (in file order, split members
// excluded) within the date window, in the same currency and within the
// amount tolerance. A near-exact amount short-circuits the description
// comparison; otherwise the alias-aware text match must hold.
func findMatch(
	t BankTransaction,
	diary []ExpenseRecord,
	amountTolerance float64,
	dateToleranceDays int,
	aliases AliasTable,
) (ExpenseRecord, bool) {
	toleranceCents := int(math.Round(amountTolerance * 100))
	for _, rec := range diary {
		if rec.SplitMarker != "" {
			continue
		}
		if daysBetween(t.Date, rec.Date) > dateToleranceDays {
			continue
		}
		if t.Currency != rec.Currency {
			continue
		}
		amountDiff := absInt(t.Amount.Cents() - rec.Amount.Cents())
		if amountDiff > toleranceCents {
			continue
		}
		if amountDiff < NEAR_EXACT_AMOUNT_CENTS {
			return rec, true
		}
		if textMatchesWithAliases(t.Description, rec.Description, aliases) {
			return rec, true
		}
	}
	return ExpenseRecord{}, false
}

// matchStopwords never carry shop identity.
var matchStopwords = map[string]struct{}{
	"the": {}, "an": {}, "and": {}, "or": {}, "of": {}, "in": {},
	"at": {}, "to": {}, "for": {}, "on": {}, "from": {}, "a": {},
}

// normalizeText lowers the text and extracts its alphanumeric tokens of
// length > 2, minus stopwords.
func normalizeText(text string) map[string]struct{} {
	words := make(map[string]struct{})
	var token strings.Builder
	flush := func() {
		if token.Len() > 2 {
			w := token.String()
			if _, stop := matchStopwords[w]; !stop {
				words[w] = struct{}{}
			}
		}
		token.Reset()
	}
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			token.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return words
}

// expandWithAliases adds the canonical tokens of every configured alias to
// the word set; expansion is applied one hop only.
func expandWithAliases(words map[string]struct{}, aliases AliasTable) map[string]struct{} {
	expanded := make(map[string]struct{}, len(words))
	for w := range words {
		expanded[w] = struct{}{}
		for canonical := range aliases[w] {
			expanded[canonical] = struct{}{}
		}
	}
	return expanded
}

// textMatchesWithAliases reports whether two descriptions refer to the same
// shop: their alias-expanded token sets intersect, or either whole lowercase
// string is itself an alias key whose canonical set intersects the other
// side. The looseness is intentional; it bridges inconsistent shop-name
// casing and spelling between bank exports and hand-typed diary text.
func textMatchesWithAliases(text1, text2 string, aliases AliasTable) bool {
	expanded1 := expandWithAliases(normalizeText(text1), aliases)
	expanded2 := expandWithAliases(normalizeText(text2), aliases)

	if intersects(expanded1, expanded2) {
		return true
	}

	if canonical, ok := aliases[strings.ToLower(strings.TrimSpace(text1))]; ok {
		if intersects(expanded2, canonical) {
			return true
		}
	}
	if canonical, ok := aliases[strings.ToLower(strings.TrimSpace(text2))]; ok {
		if intersects(expanded1, canonical) {
			return true
		}
	}
	return false
}

func intersects(a, b map[string]struct{}) bool {
	if len(b) < len(a) {
		a, b = b, a
	}
	for w := range a {
		if _, ok := b[w]; ok {
			return true
		}
	}
	return false
}

// daysBetween is the absolute whole-day distance between two dates.
func daysBetween(a, b time.Time) int {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return int(d.Hours() / 24)
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
