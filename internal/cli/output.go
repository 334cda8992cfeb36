package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Player:
		o.printPlayer(v)
	case AuthResult:
		o.printAuthResult(v)
	case []OpenGameListing:
		o.printOpenGames(v)
	case GameState:
		o.printGameState(v)
	case StartGameResult:
		o.printStartGameResult(v)
	case GuessResult:
		o.printGuessResult(v)
	case []LeaderboardEntry:
		o.printLeaderboard(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	Nickname string `json:"nickname"`
	Rating   int    `json:"rating"`
	HasPass  bool   `json:"has_password"`
	IsBot    bool   `json:"is_bot,omitempty"`
}

// AuthResult combines player and token
type AuthResult struct {
	Player       Player `json:"player"`
	SessionToken string `json:"session_token"`
}

// OpenGameListing response type
type OpenGameListing struct {
	Creator       string `json:"creator"`
	CreatorRating int    `json:"creator_rating"`
	Rounds        int    `json:"rounds"`
	TimeBankSecs  int    `json:"time_bank_secs"`
}

// SlotInfo response type
type SlotInfo struct {
	Nickname string `json:"nickname"`
	IsBot    bool   `json:"is_bot,omitempty"`
}

// GameState mirrors the game snapshot
type GameState struct {
	Room        string              `json:"room"`
	Mode        string              `json:"mode"`
	Players     map[string]SlotInfo `json:"players"`
	Scores      map[string]float64  `json:"scores"`
	Round       int                 `json:"round"`
	TotalRounds int                 `json:"total_rounds"`
	Club        string              `json:"club"`
	Named       []NamedEntry        `json:"named"`
	RosterSize  int                 `json:"roster_size"`
	ActiveSlot  int                 `json:"active_slot"`
	TimeBanks   map[string]float64  `json:"time_banks"`
}

// NamedEntry response type
type NamedEntry struct {
	Surname string `json:"surname"`
	BySlot  int    `json:"by_slot"`
}

// StartGameResult response type
type StartGameResult struct {
	Room  string     `json:"room"`
	State *GameState `json:"state"`
}

// GuessResult response type
type GuessResult struct {
	Outcome       string `json:"outcome"`
	CorrectedName string `json:"corrected_name,omitempty"`
	TimedOut      bool   `json:"timed_out,omitempty"`
}

// LeaderboardEntry response type
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	Nickname string `json:"nickname"`
	Rating   int    `json:"rating"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printPlayer(p Player) {
	fmt.Printf("Player: %s\n", p.Nickname)
	fmt.Printf("Rating: %d\n", p.Rating)
	if p.IsBot {
		fmt.Println("Bot: yes")
	}
}

func (o *Output) printAuthResult(a AuthResult) {
	o.printPlayer(a.Player)
	fmt.Printf("Token: %s\n", a.SessionToken)
}

func (o *Output) printOpenGames(listings []OpenGameListing) {
	if len(listings) == 0 {
		fmt.Println("No open games")
		return
	}
	fmt.Printf("Open games (%d):\n", len(listings))
	for _, l := range listings {
		fmt.Printf("  - %s (%d) - %d rounds, %ds bank\n", l.Creator, l.CreatorRating, l.Rounds, l.TimeBankSecs)
	}
}

func (o *Output) printGameState(g GameState) {
	fmt.Printf("Game: %s (%s)\n", g.Room, g.Mode)
	fmt.Printf("Round: %d/%d\n", g.Round, g.TotalRounds)
	fmt.Printf("Club: %s\n", g.Club)
	fmt.Printf("Named: %d/%d\n", len(g.Named), g.RosterSize)

	slots := sortedSlots(g.Players)
	for _, slot := range slots {
		p := g.Players[slot]
		marker := " "
		if fmt.Sprint(g.ActiveSlot) == slot {
			marker = "*"
		}
		botStr := ""
		if p.IsBot {
			botStr = " [bot]"
		}
		fmt.Printf(" %s %s%s - %.1f pts, %.0fs left\n", marker, p.Nickname, botStr, g.Scores[slot], g.TimeBanks[slot])
	}

	if len(g.Named) > 0 {
		fmt.Println("Named so far:")
		for _, n := range g.Named {
			by := g.Players[fmt.Sprint(n.BySlot)].Nickname
			fmt.Printf("  - %s (%s)\n", n.Surname, by)
		}
	}
}

func (o *Output) printStartGameResult(r StartGameResult) {
	fmt.Printf("Started game %s\n", r.Room)
	if r.State != nil {
		o.printGameState(*r.State)
	}
}

func (o *Output) printGuessResult(g GuessResult) {
	switch g.Outcome {
	case "correct":
		fmt.Printf("Correct: %s\n", g.CorrectedName)
	case "correct_typo":
		fmt.Printf("Correct (typo): %s\n", g.CorrectedName)
	case "already_named":
		fmt.Println("Already named")
	default:
		fmt.Println("Not on the roster")
	}
	if g.TimedOut {
		fmt.Println("Too slow - the time bank ran out")
	}
}

func (o *Output) printLeaderboard(entries []LeaderboardEntry) {
	if len(entries) == 0 {
		fmt.Println("Leaderboard is empty")
		return
	}
	for _, e := range entries {
		fmt.Printf("%3d. %s - %d\n", e.Rank, e.Nickname, e.Rating)
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}

func sortedSlots(players map[string]SlotInfo) []string {
	slots := make([]string, 0, len(players))
	for slot := range players {
		slots = append(slots, slot)
	}
	sort.Strings(slots)
	return slots
}
