package model

// ClubName identifies a club roster
type ClubName string

// RosterEntry is one member of a club roster. Aliases are stored
// normalized (trimmed, lower-cased, ё folded to е) and always include
// the normalized primary surname. Entries are immutable once loaded.
type RosterEntry struct {
	// Primary is the canonical surname, as written in the source data.
	// It dedupes a member across aliases within a round.
	Primary string
	// Aliases is the set of normalized names that count as naming this member.
	Aliases []string
}

// HasAlias reports whether the given normalized guess is one of the
// entry's accepted names.
func (e *RosterEntry) HasAlias(normalized string) bool {
	for _, a := range e.Aliases {
		if a == normalized {
			return true
		}
	}
	return false
}
