package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Calindra/solana-twitter/internal/address"
	"github.com/Calindra/solana-twitter/internal/program"
)

// Tx is one all-or-nothing unit of account changes. It implements
// program.Accounts and program.Assets.
type Tx struct {
	tx   *sql.Tx
	rent Rent
}

var (
	_ program.Accounts = (*Tx)(nil)
	_ program.Assets   = (*Tx)(nil)
	_ program.Loader   = (*Store)(nil)
)

// Atomic runs fn inside one SQL transaction. The transaction commits only
// if fn returns nil; any error rolls back every change fn made.
func (s *Store) Atomic(ctx context.Context, fn func(tx *Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer sqlTx.Rollback() // No-op if committed

	if err := fn(&Tx{tx: sqlTx, rent: s.rent}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Load implements program.Loader.
func (t *Tx) Load(ctx context.Context, addr address.Address) (program.Slot, bool, error) {
	return loadSlot(ctx, t.tx, addr)
}

// Allocate implements program.Accounts. The deposit is debited from payer
// in the same transaction that creates the slot.
func (t *Tx) Allocate(ctx context.Context, addr, owner address.Address, size int, payer address.Address) error {
	_, exists, err := loadSlot(ctx, t.tx, addr)
	if err != nil {
		return err
	}
	if exists {
		return program.ErrAlreadyExists.With("account %s is already in use", addr)
	}

	deposit := t.rent.Deposit(size)
	balance, err := balance(ctx, t.tx, payer)
	if err != nil {
		return err
	}
	if balance < deposit {
		return program.ErrInsufficientFunds.With("%s holds %d lamports, deposit is %d", payer, balance, deposit)
	}

	if _, err := t.tx.ExecContext(ctx, `
		UPDATE balances SET lamports = lamports - ? WHERE address = ?
	`, deposit, payer.String()); err != nil {
		return fmt.Errorf("charge deposit: %w", err)
	}

	if _, err := t.tx.ExecContext(ctx, `
		INSERT INTO accounts (address, owner, data, deposit, payer)
		VALUES (?, ?, ?, ?, ?)
	`, addr.String(), owner.String(), make([]byte, size), deposit, payer.String()); err != nil {
		return fmt.Errorf("allocate account: %w", err)
	}
	return nil
}

// Write implements program.Accounts. The new data must match the size
// declared at allocation.
func (t *Tx) Write(ctx context.Context, addr address.Address, data []byte) error {
	slot, exists, err := loadSlot(ctx, t.tx, addr)
	if err != nil {
		return err
	}
	if !exists {
		return program.ErrNotFound.With("no account at %s", addr)
	}
	if len(data) != len(slot.Data) {
		return fmt.Errorf("write account %s: data is %d bytes, slot is %d", addr, len(data), len(slot.Data))
	}

	if _, err := t.tx.ExecContext(ctx, `
		UPDATE accounts SET data = ? WHERE address = ?
	`, data, addr.String()); err != nil {
		return fmt.Errorf("write account: %w", err)
	}
	return nil
}

// Reclaim implements program.Accounts.
func (t *Tx) Reclaim(ctx context.Context, addr, refundTo address.Address) (int64, error) {
	slot, exists, err := loadSlot(ctx, t.tx, addr)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, program.ErrNotFound.With("no account at %s", addr)
	}

	if _, err := t.tx.ExecContext(ctx, `DELETE FROM accounts WHERE address = ?`, addr.String()); err != nil {
		return 0, fmt.Errorf("reclaim account: %w", err)
	}
	if err := credit(ctx, t.tx, refundTo, slot.Deposit); err != nil {
		return 0, fmt.Errorf("refund deposit: %w", err)
	}
	return slot.Deposit, nil
}

// TokenAccount implements program.Assets.
func (t *Tx) TokenAccount(ctx context.Context, addr address.Address) (program.AssetProof, error) {
	ta, err := readTokenAccount(ctx, t.tx, addr)
	if err != nil {
		return program.AssetProof{}, err
	}
	return program.AssetProof{Account: ta.Address, Owner: ta.Owner, Asset: ta.Mint}, nil
}

// Load reads a slot outside any transaction. Implements program.Loader.
func (s *Store) Load(ctx context.Context, addr address.Address) (program.Slot, bool, error) {
	return loadSlot(ctx, s.db, addr)
}

// Balance returns the lamports held by addr. Unknown addresses hold zero.
func (s *Store) Balance(ctx context.Context, addr address.Address) (int64, error) {
	return balance(ctx, s.db, addr)
}

// Airdrop credits lamports to addr.
func (s *Store) Airdrop(ctx context.Context, addr address.Address, lamports int64) error {
	if lamports <= 0 {
		return fmt.Errorf("airdrop: amount must be positive, got %d", lamports)
	}
	if err := credit(ctx, s.db, addr, lamports); err != nil {
		return fmt.Errorf("airdrop: %w", err)
	}
	return nil
}

func loadSlot(ctx context.Context, q queryer, addr address.Address) (program.Slot, bool, error) {
	var owner, payer string
	slot := program.Slot{Address: addr}
	err := q.QueryRowContext(ctx, `
		SELECT owner, data, deposit, payer FROM accounts WHERE address = ?
	`, addr.String()).Scan(&owner, &slot.Data, &slot.Deposit, &payer)
	if errors.Is(err, sql.ErrNoRows) {
		return program.Slot{}, false, nil
	}
	if err != nil {
		return program.Slot{}, false, fmt.Errorf("read account: %w", err)
	}

	if slot.Owner, err = address.Parse(owner); err != nil {
		return program.Slot{}, false, fmt.Errorf("read account %s owner: %w", addr, err)
	}
	if slot.Payer, err = address.Parse(payer); err != nil {
		return program.Slot{}, false, fmt.Errorf("read account %s payer: %w", addr, err)
	}
	return slot, true, nil
}

func balance(ctx context.Context, q queryer, addr address.Address) (int64, error) {
	var lamports int64
	err := q.QueryRowContext(ctx, `
		SELECT lamports FROM balances WHERE address = ?
	`, addr.String()).Scan(&lamports)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read balance: %w", err)
	}
	return lamports, nil
}

func credit(ctx context.Context, q queryer, addr address.Address, lamports int64) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO balances (address, lamports) VALUES (?, ?)
		ON CONFLICT(address) DO UPDATE SET lamports = lamports + excluded.lamports
	`, addr.String(), lamports)
	return err
}
