package game

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hamsterganggang/BetLand/internal/ledger"
	"github.com/hamsterganggang/BetLand/internal/sportsbook"
)

// Engine validates wagers, performs the atomic debit/credit against the
// ledger store and settles due parity rounds. Every public operation takes an
// already-resolved account id; there is no ambient "current user".
//
// Balance mutation is a read-modify-write against the stored value,
// serialized per account, so two browser tabs (or a Stop racing a Fail tick)
// can never apply a stale balance.
type Engine struct {
	store   ledger.Store
	catalog *sportsbook.Catalog

	now func() time.Time

	wheelMu sync.Mutex
	wheel   *rand.Rand

	settleMu sync.Mutex

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

func NewEngine(store ledger.Store, catalog *sportsbook.Catalog) *Engine {
	return &Engine{
		store:   store,
		catalog: catalog,
		now:     time.Now,
		wheel:   rand.New(rand.NewSource(time.Now().UnixNano())),
		locks:   make(map[string]*sync.Mutex),
	}
}

// accountLock returns the mutex serializing balance mutation for one account.
func (e *Engine) accountLock(accountID string) *sync.Mutex {
	e.locksMu.Lock()
	defer e.locksMu.Unlock()
	mu, ok := e.locks[accountID]
	if !ok {
		mu = &sync.Mutex{}
		e.locks[accountID] = mu
	}
	return mu
}

// debit subtracts stake from the account under its lock. The in-memory copy
// is discarded when the save fails, so a failed persist never leaves a
// half-applied balance. insufficient is true for an ordinary balance
// rejection.
func (e *Engine) debit(ctx context.Context, accountID string, stake int64) (balance int64, insufficient bool, err error) {
	mu := e.accountLock(accountID)
	mu.Lock()
	defer mu.Unlock()

	acct, err := e.store.FindAccount(ctx, accountID)
	if err != nil {
		return 0, false, err
	}
	if acct.Balance < stake {
		return acct.Balance, true, nil
	}
	acct.Balance -= stake
	if err := e.store.SaveAccount(ctx, acct); err != nil {
		return 0, false, err
	}
	return acct.Balance, false, nil
}

// credit adds amount to the account under its lock.
func (e *Engine) credit(ctx context.Context, accountID string, amount int64) (int64, error) {
	mu := e.accountLock(accountID)
	mu.Lock()
	defer mu.Unlock()

	acct, err := e.store.FindAccount(ctx, accountID)
	if err != nil {
		return 0, err
	}
	acct.Balance += amount
	if err := e.store.SaveAccount(ctx, acct); err != nil {
		return 0, err
	}
	return acct.Balance, nil
}

// refund credits the stake back after a failed append, keeping money
// conserved when the wager record could not be written.
func (e *Engine) refund(ctx context.Context, accountID string, stake int64) {
	if _, err := e.credit(ctx, accountID, stake); err != nil {
		log.Printf("[ENGINE] refund of %d to %s failed: %v", stake, accountID, err)
	}
}

func potentialPayout(stake int64, multiplier float64) int64 {
	return int64(math.Round(float64(stake) * multiplier))
}

// PlaceParityBet debits the stake and records a pending wager tagged with the
// current round at the fixed 2x payout. Settlement of any already-elapsed
// rounds runs immediately afterwards, so a wager never waits for the next
// session tick to resolve earlier rounds.
func (e *Engine) PlaceParityBet(ctx context.Context, accountID, choice string, stake int64) ParityBetResponse {
	if choice != OutcomeOdd && choice != OutcomeEven {
		return ParityBetResponse{Message: "Choice must be odd or even"}
	}
	if stake <= 0 {
		return ParityBetResponse{Message: "Stake must be positive"}
	}

	balance, insufficient, err := e.debit(ctx, accountID, stake)
	if err != nil {
		return ParityBetResponse{Message: "Transaction failed"}
	}
	if insufficient {
		return ParityBetResponse{Message: "Insufficient balance", Balance: balance}
	}

	round := CurrentRound(e.now())
	w := &ledger.Wager{
		ID:         uuid.New().String(),
		AccountID:  accountID,
		Game:       ledger.GameParity,
		Choice:     choice,
		Stake:      stake,
		Multiplier: ParityPayout,
		Potential:  potentialPayout(stake, ParityPayout),
		Round:      round,
		Status:     ledger.StatusPending,
		CreatedAt:  e.now(),
	}
	if err := e.store.AppendWager(ctx, w); err != nil {
		e.refund(ctx, accountID, stake)
		return ParityBetResponse{Message: "Transaction failed"}
	}

	log.Printf("[ENGINE] parity bet %s: %s staked %d on %s (round %d)", w.ID, accountID, stake, choice, round)

	// Resolve anything already due before answering.
	e.SettleDueParity(ctx)

	return ParityBetResponse{
		Success:   true,
		Message:   fmt.Sprintf("Bet placed on %s", choice),
		WagerID:   w.ID,
		Round:     round,
		Potential: w.Potential,
		Balance:   balance,
	}
}

// StartClimb debits the stake up front; the stake is forfeit unless the
// player stops in time, so no wager record exists yet. The record is written
// by StopClimb or FailClimb.
func (e *Engine) StartClimb(ctx context.Context, accountID string, stake int64) ClimbStartResponse {
	if stake <= 0 {
		return ClimbStartResponse{Message: "Stake must be positive"}
	}
	balance, insufficient, err := e.debit(ctx, accountID, stake)
	if err != nil {
		return ClimbStartResponse{Message: "Transaction failed"}
	}
	if insufficient {
		return ClimbStartResponse{Message: "Insufficient balance", Balance: balance}
	}
	log.Printf("[ENGINE] climb started: %s staked %d", accountID, stake)
	return ClimbStartResponse{Success: true, Message: "Climb started", Balance: balance}
}

// StopClimb locks in the current multiplier: payout is credited and a won
// wager recorded with the realized multiplier as both choice and result.
func (e *Engine) StopClimb(ctx context.Context, accountID string, stake int64, multiplier float64) ClimbStopResponse {
	if multiplier < ClimbMinMultiplier || multiplier > ClimbMaxMultiplier {
		return ClimbStopResponse{Message: "Multiplier out of range"}
	}
	payout := potentialPayout(stake, multiplier)
	balance, err := e.credit(ctx, accountID, payout)
	if err != nil {
		return ClimbStopResponse{Message: "Transaction failed"}
	}

	label := fmt.Sprintf("x%.2f", multiplier)
	w := &ledger.Wager{
		ID:         uuid.New().String(),
		AccountID:  accountID,
		Game:       ledger.GameClimb,
		Choice:     label,
		Stake:      stake,
		Multiplier: multiplier,
		Potential:  payout,
		Status:     ledger.StatusWon,
		Result:     label,
		CreatedAt:  e.now(),
	}
	wagerID := w.ID
	if err := e.store.AppendWager(ctx, w); err != nil {
		// The payout already landed; answer with the money but no record id
		// rather than a phantom one.
		log.Printf("[ENGINE] climb stop record failed for %s: %v", accountID, err)
		wagerID = ""
	}

	log.Printf("[ENGINE] climb stopped: %s cashed %d at %s", accountID, payout, label)
	return ClimbStopResponse{
		Success:    true,
		Message:    fmt.Sprintf("Stopped at %s", label),
		WagerID:    wagerID,
		Multiplier: multiplier,
		Payout:     payout,
		Balance:    balance,
	}
}

// FailClimb records the forfeited session. The stake was taken at start, so
// no balance change happens here.
func (e *Engine) FailClimb(ctx context.Context, accountID string, stake int64) ClimbFailResponse {
	w := &ledger.Wager{
		ID:        uuid.New().String(),
		AccountID: accountID,
		Game:      ledger.GameClimb,
		Choice:    "fail",
		Stake:     stake,
		Status:    ledger.StatusLost,
		Result:    "fail",
		CreatedAt: e.now(),
	}
	if err := e.store.AppendWager(ctx, w); err != nil {
		log.Printf("[ENGINE] climb fail record failed for %s: %v", accountID, err)
		return ClimbFailResponse{Message: "Transaction failed"}
	}

	balance := int64(0)
	if acct, err := e.store.FindAccount(ctx, accountID); err == nil {
		balance = acct.Balance
	}
	log.Printf("[ENGINE] climb failed: %s lost %d", accountID, stake)
	return ClimbFailResponse{Success: true, Message: "Climb failed", WagerID: w.ID, Balance: balance}
}

// SpinRoulette settles in one call: debit, one independent wheel draw, credit
// of any payout, and the settled record. The response carries everything the
// client needs, including the resulting balance.
func (e *Engine) SpinRoulette(ctx context.Context, accountID string, stake int64) RouletteSpinResponse {
	if stake < RouletteMinStake {
		return RouletteSpinResponse{Message: fmt.Sprintf("Minimum stake is %d", RouletteMinStake)}
	}

	balance, insufficient, err := e.debit(ctx, accountID, stake)
	if err != nil {
		return RouletteSpinResponse{Message: "Transaction failed"}
	}
	if insufficient {
		return RouletteSpinResponse{Message: "Insufficient balance", Balance: balance}
	}

	e.wheelMu.Lock()
	slot := SpinWheel(e.wheel)
	e.wheelMu.Unlock()

	payout := int64(0)
	status := ledger.StatusLost
	if slot.Multiplier > 0 {
		payout = potentialPayout(stake, slot.Multiplier)
		status = ledger.StatusWon
		balance, err = e.credit(ctx, accountID, payout)
		if err != nil {
			// Stake is gone and the win could not be applied; put the
			// whole round back.
			e.refund(ctx, accountID, stake)
			return RouletteSpinResponse{Message: "Transaction failed"}
		}
	}

	w := &ledger.Wager{
		ID:         uuid.New().String(),
		AccountID:  accountID,
		Game:       ledger.GameRoulette,
		Choice:     slot.Label,
		Stake:      stake,
		Multiplier: slot.Multiplier,
		Potential:  payout,
		Status:     status,
		Result:     slot.Label,
		CreatedAt:  e.now(),
	}
	wagerID := w.ID
	if err := e.store.AppendWager(ctx, w); err != nil {
		log.Printf("[ENGINE] roulette record failed for %s: %v", accountID, err)
		wagerID = ""
	}

	msg := "No win this spin"
	if payout > 0 {
		msg = fmt.Sprintf("Hit %s, paid %d", slot.Label, payout)
	}
	log.Printf("[ENGINE] roulette: %s staked %d, drew %s, payout %d", accountID, stake, slot.Label, payout)
	return RouletteSpinResponse{
		Success:    true,
		Message:    msg,
		WagerID:    wagerID,
		Slot:       slot.Label,
		Multiplier: slot.Multiplier,
		Payout:     payout,
		Balance:    balance,
	}
}

// PlaceSportsBet records a pending fixed-odds wager at the coefficient
// quoted right now; later odds changes never touch a placed wager.
func (e *Engine) PlaceSportsBet(ctx context.Context, accountID, matchID, side string, stake int64) SportsBetResponse {
	if stake <= 0 {
		return SportsBetResponse{Message: "Stake must be positive"}
	}
	match, ok := e.catalog.Lookup(matchID)
	if !ok {
		return SportsBetResponse{Message: "Unknown match"}
	}
	if !match.Biddable {
		return SportsBetResponse{Message: "Match is closed for betting"}
	}
	odds, ok := e.catalog.OddsFor(matchID, side)
	if !ok {
		return SportsBetResponse{Message: "Unknown side for this match"}
	}

	balance, insufficient, err := e.debit(ctx, accountID, stake)
	if err != nil {
		return SportsBetResponse{Message: "Transaction failed"}
	}
	if insufficient {
		return SportsBetResponse{Message: "Insufficient balance", Balance: balance}
	}

	w := &ledger.Wager{
		ID:         uuid.New().String(),
		AccountID:  accountID,
		Game:       ledger.GameSports,
		Choice:     fmt.Sprintf("%s:%s", matchID, side),
		Stake:      stake,
		Multiplier: odds,
		Potential:  potentialPayout(stake, odds),
		Status:     ledger.StatusPending,
		CreatedAt:  e.now(),
	}
	if err := e.store.AppendWager(ctx, w); err != nil {
		e.refund(ctx, accountID, stake)
		return SportsBetResponse{Message: "Transaction failed"}
	}

	log.Printf("[ENGINE] sports bet %s: %s staked %d on %s @ %.2f", w.ID, accountID, stake, w.Choice, odds)
	return SportsBetResponse{
		Success:   true,
		Message:   fmt.Sprintf("Bet placed on %s at %.2f", side, odds),
		WagerID:   w.ID,
		Odds:      odds,
		Potential: w.Potential,
		Balance:   balance,
	}
}

// CancelSportsBet refunds and deletes a wager that is still pending. Anything
// already settled is rejected untouched.
func (e *Engine) CancelSportsBet(ctx context.Context, accountID, wagerID string) CancelSportsResponse {
	w, err := e.store.FindWager(ctx, wagerID)
	if err != nil {
		return CancelSportsResponse{Message: "Wager not found"}
	}
	if w.AccountID != accountID || w.Game != ledger.GameSports {
		return CancelSportsResponse{Message: "Wager not found"}
	}
	if w.Status != ledger.StatusPending {
		return CancelSportsResponse{Message: "Wager already settled"}
	}
	if err := e.store.DeleteWager(ctx, wagerID); err != nil {
		return CancelSportsResponse{Message: "Transaction failed"}
	}
	balance, err := e.credit(ctx, accountID, w.Stake)
	if err != nil {
		// Put the pending record back so a later cancel retries the refund;
		// without it the stake would be unrecoverable.
		if rerr := e.store.AppendWager(ctx, w); rerr != nil {
			log.Printf("[ENGINE] restoring wager %s after failed refund also failed: %v", wagerID, rerr)
		}
		log.Printf("[ENGINE] cancel refund failed for %s: %v", accountID, err)
		return CancelSportsResponse{Message: "Transaction failed"}
	}
	log.Printf("[ENGINE] sports bet %s cancelled, refunded %d to %s", wagerID, w.Stake, accountID)
	return CancelSportsResponse{Success: true, Message: "Bet cancelled", Refunded: w.Stake, Balance: balance}
}

// Balance settles anything due and returns the account's current balance.
func (e *Engine) Balance(ctx context.Context, accountID string) (BalanceResponse, error) {
	e.SettleDueParity(ctx)
	acct, err := e.store.FindAccount(ctx, accountID)
	if err != nil {
		return BalanceResponse{}, err
	}
	return BalanceResponse{AccountID: acct.ID, Balance: acct.Balance}, nil
}

// History settles anything due, then lists the account's wagers for one game,
// newest first.
func (e *Engine) History(ctx context.Context, accountID string, game ledger.GameKind) ([]ledger.Wager, error) {
	e.SettleDueParity(ctx)
	return e.store.ListWagersForAccount(ctx, accountID, game)
}

// SettleDueParity resolves every pending parity wager whose bet round has
// elapsed. The draw that decides a wager is the round after the one it was
// placed in: the bet round is still live when the bet lands, and the next
// round's outcome is the first one fixed afterwards.
//
// The whole sweep holds settleMu, so redundant and concurrent invocations
// (placement paths, balance reads, the background ticker) serialize; a wager
// is credited at most once.
func (e *Engine) SettleDueParity(ctx context.Context) {
	e.settleMu.Lock()
	defer e.settleMu.Unlock()

	current := CurrentRound(e.now())
	pending, err := e.store.ListPendingWagers(ctx, ledger.GameParity)
	if err != nil {
		log.Printf("[SWEEP] listing pending wagers failed: %v", err)
		return
	}

	for i := range pending {
		w := pending[i]
		if w.Round >= current {
			continue // bet round still live
		}
		outcome := ParityOutcomeFor(w.Round + 1)

		if w.Choice == outcome {
			w.Status = ledger.StatusWon
		} else {
			w.Status = ledger.StatusLost
		}
		w.Result = outcome
		if err := e.store.UpdateWager(ctx, &w); err != nil {
			log.Printf("[SWEEP] settling wager %s failed: %v", w.ID, err)
			continue
		}
		if w.Status == ledger.StatusWon {
			if _, err := e.credit(ctx, w.AccountID, w.Potential); err != nil {
				// Undo the settle so the next sweep retries the credit.
				w.Status = ledger.StatusPending
				w.Result = ""
				if uerr := e.store.UpdateWager(ctx, &w); uerr != nil {
					log.Printf("[SWEEP] rollback of wager %s failed: %v", w.ID, uerr)
				}
				log.Printf("[SWEEP] credit for wager %s failed: %v", w.ID, err)
				continue
			}
		}
		log.Printf("[SWEEP] wager %s settled %s (round %d drew %s)", w.ID, w.Status, w.Round+1, outcome)
	}
}

// Catalog exposes the read-only sportsbook fixtures.
func (e *Engine) Catalog() *sportsbook.Catalog {
	return e.catalog
}

// EnsureAccount resolves or creates the account for a caller-supplied id.
func (e *Engine) EnsureAccount(ctx context.Context, accountID string) (*ledger.Account, error) {
	if accountID == "" {
		return nil, errors.New("empty account id")
	}
	return e.store.EnsureAccount(ctx, accountID)
}
