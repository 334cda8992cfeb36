package request

// RegisterRequest is the request body for registering an account
type RegisterRequest struct {
	Nickname string `json:"nickname"`
	Password string `json:"password"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Nickname string `json:"nickname"`
	Password string `json:"password"`
}

// GuestRequest is the request body for a passwordless guest login
type GuestRequest struct {
	Nickname string `json:"nickname"`
}

// GameSettings carries optional match settings; zero values fall back
// to the server defaults
type GameSettings struct {
	Rounds       int `json:"rounds,omitempty"`
	TimeBankSecs int `json:"time_bank_secs,omitempty"`
}

// StartGameRequest is the request body for starting a solo or bot game
type StartGameRequest struct {
	Mode     string       `json:"mode"`
	Settings GameSettings `json:"settings,omitempty"`
}

// CreateOpenGameRequest is the request body for opening a lobby game
type CreateOpenGameRequest struct {
	Settings GameSettings `json:"settings,omitempty"`
}

// GuessRequest is the request body for submitting a surname guess
type GuessRequest struct {
	Surname string `json:"surname"`
}
