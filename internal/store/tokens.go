package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Calindra/solana-twitter/internal/address"
	"github.com/Calindra/solana-twitter/internal/program"
)

// TokenAccount is a holding of one asset (mint) by one owner.
type TokenAccount struct {
	Address address.Address `json:"address"`
	Mint    address.Address `json:"mint"`
	Owner   address.Address `json:"owner"`
	Amount  int64           `json:"amount"`
}

// CreateTokenAccount registers a holding. Fails if the address is taken.
func (s *Store) CreateTokenAccount(ctx context.Context, ta TokenAccount) error {
	if ta.Amount <= 0 {
		ta.Amount = 1
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO token_accounts (address, mint, owner, amount)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(address) DO NOTHING
	`, ta.Address.String(), ta.Mint.String(), ta.Owner.String(), ta.Amount)
	if err != nil {
		return fmt.Errorf("create token account: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("create token account: %w", err)
	}
	if n == 0 {
		return program.ErrAlreadyExists.With("token account %s already exists", ta.Address)
	}
	return nil
}

// TokenAccount reads a holding outside any transaction.
func (s *Store) TokenAccount(ctx context.Context, addr address.Address) (TokenAccount, error) {
	return readTokenAccount(ctx, s.db, addr)
}

func readTokenAccount(ctx context.Context, q queryer, addr address.Address) (TokenAccount, error) {
	var mint, owner string
	ta := TokenAccount{Address: addr}
	err := q.QueryRowContext(ctx, `
		SELECT mint, owner, amount FROM token_accounts WHERE address = ?
	`, addr.String()).Scan(&mint, &owner, &ta.Amount)
	if errors.Is(err, sql.ErrNoRows) {
		return TokenAccount{}, program.ErrNotFound.With("no token account at %s", addr)
	}
	if err != nil {
		return TokenAccount{}, fmt.Errorf("read token account: %w", err)
	}
	if ta.Mint, err = address.Parse(mint); err != nil {
		return TokenAccount{}, fmt.Errorf("read token account %s mint: %w", addr, err)
	}
	if ta.Owner, err = address.Parse(owner); err != nil {
		return TokenAccount{}, fmt.Errorf("read token account %s owner: %w", addr, err)
	}
	return ta, nil
}
