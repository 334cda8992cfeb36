package guess

import (
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/quincybot/rosterquiz/internal/model"
)

// TypoThreshold is the minimum similarity ratio (0-100) for a guess to
// count as a typo of an unclaimed primary surname
const TypoThreshold = 85

// Outcome classifies the result of matching a guess against a roster
type Outcome int

const (
	NotFound Outcome = iota
	Correct
	CorrectTypo
	AlreadyNamed
)

func (o Outcome) String() string {
	switch o {
	case Correct:
		return "correct"
	case CorrectTypo:
		return "correct_typo"
	case AlreadyNamed:
		return "already_named"
	default:
		return "not_found"
	}
}

// Result is the outcome plus the matched entry for correct guesses
type Result struct {
	Outcome Outcome
	Entry   *model.RosterEntry
}

// Normalize canonicalizes a guess or alias for comparison: whitespace
// trimmed, lower-cased, with ё folded into е
func Normalize(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "ё", "е")
}

// Match classifies a free-text guess against a roster. Matching runs in
// priority order:
//
//  1. exact alias match on an entry not yet named
//  2. fuzzy match (ratio >= TypoThreshold) on an unclaimed primary surname
//  3. alias match on an already-named entry
//
// A near-miss on an unclaimed player deliberately outranks the
// already-named classification, since (1) and (2) search unclaimed
// entries only.
func Match(raw string, roster []model.RosterEntry, namedPrimaries map[string]bool) Result {
	normalized := Normalize(raw)
	if normalized == "" {
		return Result{Outcome: NotFound}
	}

	for i := range roster {
		entry := &roster[i]
		if namedPrimaries[entry.Primary] {
			continue
		}
		if entry.HasAlias(normalized) {
			return Result{Outcome: Correct, Entry: entry}
		}
	}

	var best *model.RosterEntry
	bestRatio := 0
	for i := range roster {
		entry := &roster[i]
		if namedPrimaries[entry.Primary] {
			continue
		}
		ratio := fuzzy.Ratio(normalized, Normalize(entry.Primary))
		if ratio > bestRatio {
			bestRatio = ratio
			best = entry
		}
	}
	if best != nil && bestRatio >= TypoThreshold {
		return Result{Outcome: CorrectTypo, Entry: best}
	}

	for i := range roster {
		entry := &roster[i]
		if namedPrimaries[entry.Primary] && entry.HasAlias(normalized) {
			return Result{Outcome: AlreadyNamed, Entry: entry}
		}
	}

	return Result{Outcome: NotFound}
}
