package game

// Result types returned by the wager engine. Every operation answers with a
// success flag, a user-facing message and the resulting balance; rejections
// are plain results, never errors.

type ParityBetResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	WagerID   string `json:"wager_id,omitempty"`
	Round     int64  `json:"round,omitempty"`
	Potential int64  `json:"potential,omitempty"`
	Balance   int64  `json:"balance"`
}

type ClimbStartResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Balance int64  `json:"balance"`
}

type ClimbStopResponse struct {
	Success    bool    `json:"success"`
	Message    string  `json:"message"`
	WagerID    string  `json:"wager_id,omitempty"`
	Multiplier float64 `json:"multiplier,omitempty"`
	Payout     int64   `json:"payout,omitempty"`
	Balance    int64   `json:"balance"`
}

type ClimbFailResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	WagerID string `json:"wager_id,omitempty"`
	Balance int64  `json:"balance"`
}

type RouletteSpinResponse struct {
	Success    bool    `json:"success"`
	Message    string  `json:"message"`
	WagerID    string  `json:"wager_id,omitempty"`
	Slot       string  `json:"slot,omitempty"`
	Multiplier float64 `json:"multiplier"`
	Payout     int64   `json:"payout"`
	Balance    int64   `json:"balance"`
}

type SportsBetResponse struct {
	Success   bool    `json:"success"`
	Message   string  `json:"message"`
	WagerID   string  `json:"wager_id,omitempty"`
	Odds      float64 `json:"odds,omitempty"`
	Potential int64   `json:"potential,omitempty"`
	Balance   int64   `json:"balance"`
}

type CancelSportsResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Refunded int64  `json:"refunded,omitempty"`
	Balance  int64  `json:"balance"`
}

type BalanceResponse struct {
	AccountID string `json:"account_id"`
	Balance   int64  `json:"balance"`
}

// ParityStateMessage is pushed to clients every second while a parity session
// runs, and returned by the round-state endpoint.
type ParityStateMessage struct {
	Round       int64    `json:"round"`
	SecondsLeft int64    `json:"seconds_left"`
	Revealing   bool     `json:"revealing"`
	Outcome     string   `json:"outcome,omitempty"`
	Balance     int64    `json:"balance"`
	History     []string `json:"history,omitempty"`
}

// ClimbStateMessage is pushed to the owning player on every curve tick.
type ClimbStateMessage struct {
	Multiplier float64 `json:"multiplier"`
	Elapsed    float64 `json:"elapsed"`
	Running    bool    `json:"running"`
	Failed     bool    `json:"failed,omitempty"`
}

// WSMessage is the envelope for everything sent over the websocket.
type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}
