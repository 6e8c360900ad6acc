package ledger

import (
	"context"
	"errors"
	"time"
)

// Amounts are whole currency units. Multipliers stay float64 and payouts are
// rounded back to units when a wager settles.
const InitialBalance int64 = 100000

type GameKind string

const (
	GameParity   GameKind = "parity"
	GameClimb    GameKind = "climb"
	GameRoulette GameKind = "roulette"
	GameSports   GameKind = "sports"
)

type WagerStatus string

const (
	StatusPending WagerStatus = "PENDING"
	StatusWon     WagerStatus = "WON"
	StatusLost    WagerStatus = "LOST"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrWagerNotFound   = errors.New("wager not found")
)

type Account struct {
	ID      string `json:"id"`
	Balance int64  `json:"balance"`
}

// Wager is immutable after creation except Status and Result, which are set
// exactly once at settlement.
type Wager struct {
	ID         string      `json:"id"`
	AccountID  string      `json:"account_id"`
	Game       GameKind    `json:"game"`
	Choice     string      `json:"choice"`
	Stake      int64       `json:"stake"`
	Multiplier float64     `json:"multiplier"`
	Potential  int64       `json:"potential"`
	Round      int64       `json:"round,omitempty"`
	Status     WagerStatus `json:"status"`
	Result     string      `json:"result,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

// Store is the durable side of the wager engine: one balance cell per account
// plus an append-only wager table. SaveAccount overwrites the stored balance
// with the given one; callers serialize read-modify-write cycles per account.
type Store interface {
	FindAccount(ctx context.Context, id string) (*Account, error)
	EnsureAccount(ctx context.Context, id string) (*Account, error)
	SaveAccount(ctx context.Context, acct *Account) error

	AppendWager(ctx context.Context, w *Wager) error
	UpdateWager(ctx context.Context, w *Wager) error
	DeleteWager(ctx context.Context, id string) error
	FindWager(ctx context.Context, id string) (*Wager, error)
	ListPendingWagers(ctx context.Context, game GameKind) ([]Wager, error)
	ListWagersForAccount(ctx context.Context, accountID string, game GameKind) ([]Wager, error)
}
