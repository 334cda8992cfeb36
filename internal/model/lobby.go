package model

import "time"

// OpenGame is a lobby entry: a match waiting for an opponent,
// discoverable by other clients. At most one per creator.
type OpenGame struct {
	Creator   Nickname
	Settings  Settings
	CreatedAt time.Time
}

// OpenGameListing is an open game enriched with the creator's rating,
// as shown in the shared lobby list.
type OpenGameListing struct {
	Creator       Nickname `json:"creator"`
	CreatorRating int      `json:"creator_rating"`
	Rounds        int      `json:"rounds"`
	TimeBankSecs  int      `json:"time_bank_secs"`
}
