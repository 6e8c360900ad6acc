package ledger

import (
	"context"
	"sync"
)

// MemoryStore keeps accounts and wagers in process memory. It backs unit
// tests and the no-database dev mode. All methods return copies so callers
// never alias stored rows.
type MemoryStore struct {
	mu       sync.Mutex
	accounts map[string]Account
	wagers   map[string]Wager
	order    []string // wager ids in insertion order

	// FailSaves makes the next SaveAccount calls fail, for rollback tests.
	FailSaves int
	// FailAppends does the same for AppendWager.
	FailAppends int
	failErr     error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[string]Account),
		wagers:   make(map[string]Wager),
	}
}

// FailNext arms the failure hooks: the next saves SaveAccount calls and the
// next appends AppendWager calls return err.
func (s *MemoryStore) FailNext(saves, appends int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FailSaves = saves
	s.FailAppends = appends
	s.failErr = err
}

func (s *MemoryStore) FindAccount(_ context.Context, id string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	cp := acct
	return &cp, nil
}

func (s *MemoryStore) EnsureAccount(_ context.Context, id string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[id]
	if !ok {
		acct = Account{ID: id, Balance: InitialBalance}
		s.accounts[id] = acct
	}
	cp := acct
	return &cp, nil
}

func (s *MemoryStore) SaveAccount(_ context.Context, acct *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSaves > 0 {
		s.FailSaves--
		return s.failErr
	}
	if _, ok := s.accounts[acct.ID]; !ok {
		return ErrAccountNotFound
	}
	s.accounts[acct.ID] = *acct
	return nil
}

func (s *MemoryStore) AppendWager(_ context.Context, w *Wager) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailAppends > 0 {
		s.FailAppends--
		return s.failErr
	}
	s.wagers[w.ID] = *w
	s.order = append(s.order, w.ID)
	return nil
}

func (s *MemoryStore) UpdateWager(_ context.Context, w *Wager) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.wagers[w.ID]; !ok {
		return ErrWagerNotFound
	}
	s.wagers[w.ID] = *w
	return nil
}

func (s *MemoryStore) DeleteWager(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.wagers[id]; !ok {
		return ErrWagerNotFound
	}
	delete(s.wagers, id)
	for i, wid := range s.order {
		if wid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryStore) FindWager(_ context.Context, id string) (*Wager, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wagers[id]
	if !ok {
		return nil, ErrWagerNotFound
	}
	cp := w
	return &cp, nil
}

func (s *MemoryStore) ListPendingWagers(_ context.Context, game GameKind) ([]Wager, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Wager
	for _, id := range s.order {
		w := s.wagers[id]
		if w.Game == game && w.Status == StatusPending {
			out = append(out, w)
		}
	}
	return out, nil
}

func (s *MemoryStore) ListWagersForAccount(_ context.Context, accountID string, game GameKind) ([]Wager, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Newest first: walk insertion order backwards.
	var out []Wager
	for i := len(s.order) - 1; i >= 0; i-- {
		w := s.wagers[s.order[i]]
		if w.AccountID == accountID && w.Game == game {
			out = append(out, w)
		}
	}
	return out, nil
}
