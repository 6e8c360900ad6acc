package ledger

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists accounts and wagers in Postgres. Balance writes go
// through SaveAccount as plain overwrites; the engine serializes
// read-modify-write cycles per account, so no row locking is needed here.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) FindAccount(ctx context.Context, id string) (*Account, error) {
	var acct Account
	err := s.pool.QueryRow(ctx,
		`SELECT id, balance FROM accounts WHERE id = $1`, id,
	).Scan(&acct.ID, &acct.Balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &acct, nil
}

func (s *PostgresStore) EnsureAccount(ctx context.Context, id string) (*Account, error) {
	var acct Account
	err := s.pool.QueryRow(ctx,
		`INSERT INTO accounts (id, balance) VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET id = EXCLUDED.id
		 RETURNING id, balance`,
		id, InitialBalance,
	).Scan(&acct.ID, &acct.Balance)
	if err != nil {
		return nil, err
	}
	return &acct, nil
}

func (s *PostgresStore) SaveAccount(ctx context.Context, acct *Account) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE accounts SET balance = $2 WHERE id = $1`,
		acct.ID, acct.Balance,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (s *PostgresStore) AppendWager(ctx context.Context, w *Wager) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO wagers
		   (id, account_id, game, choice, stake, multiplier, potential, round, status, result, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		w.ID, w.AccountID, string(w.Game), w.Choice, w.Stake, w.Multiplier,
		w.Potential, w.Round, string(w.Status), w.Result, w.CreatedAt,
	)
	return err
}

func (s *PostgresStore) UpdateWager(ctx context.Context, w *Wager) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE wagers SET status = $2, result = $3 WHERE id = $1`,
		w.ID, string(w.Status), w.Result,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrWagerNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteWager(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM wagers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrWagerNotFound
	}
	return nil
}

func (s *PostgresStore) FindWager(ctx context.Context, id string) (*Wager, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, account_id, game, choice, stake, multiplier, potential, round, status, result, created_at
		 FROM wagers WHERE id = $1`, id)
	w, err := scanWager(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrWagerNotFound
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (s *PostgresStore) ListPendingWagers(ctx context.Context, game GameKind) ([]Wager, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, account_id, game, choice, stake, multiplier, potential, round, status, result, created_at
		 FROM wagers WHERE game = $1 AND status = $2 ORDER BY created_at`,
		string(game), string(StatusPending))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectWagers(rows)
}

func (s *PostgresStore) ListWagersForAccount(ctx context.Context, accountID string, game GameKind) ([]Wager, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, account_id, game, choice, stake, multiplier, potential, round, status, result, created_at
		 FROM wagers WHERE account_id = $1 AND game = $2 ORDER BY created_at DESC`,
		accountID, string(game))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectWagers(rows)
}

func scanWager(row pgx.Row) (*Wager, error) {
	var w Wager
	var game, status string
	err := row.Scan(&w.ID, &w.AccountID, &game, &w.Choice, &w.Stake,
		&w.Multiplier, &w.Potential, &w.Round, &status, &w.Result, &w.CreatedAt)
	if err != nil {
		return nil, err
	}
	w.Game = GameKind(game)
	w.Status = WagerStatus(status)
	return &w, nil
}

func collectWagers(rows pgx.Rows) ([]Wager, error) {
	var out []Wager
	for rows.Next() {
		w, err := scanWager(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *w)
	}
	return out, rows.Err()
}
