package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Calindra/solana-twitter/internal/ir"
)

// DefaultListLimit caps ListReceipts when no limit is given.
const DefaultListLimit = 100

const receiptColumns = `id, seq, signer, instruction, args, outcome, error_code, error_message, error_detail, result, unix_timestamp`

// ReadReceipt returns the receipt for a transaction id.
// The bool is false if no such transaction was logged.
func (s *Store) ReadReceipt(ctx context.Context, id string) (ir.Receipt, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+receiptColumns+` FROM transactions WHERE id = ?`, id)
	r, err := scanReceipt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.Receipt{}, false, nil
	}
	if err != nil {
		return ir.Receipt{}, false, err
	}
	return r, true, nil
}

// HasTransaction reports whether id is already in the log.
func (s *Store) HasTransaction(ctx context.Context, id string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM transactions WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query transaction: %w", err)
	}
	return true, nil
}

// ListReceipts returns receipts with seq > after in seq order, at most
// limit of them. A limit <= 0 means DefaultListLimit.
//
// Returns an empty slice (not nil) if no receipts match.
func (s *Store) ListReceipts(ctx context.Context, after int64, limit int) ([]ir.Receipt, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+receiptColumns+`
		FROM transactions
		WHERE seq > ?
		ORDER BY seq ASC
		LIMIT ?
	`, after, limit)
	if err != nil {
		return nil, fmt.Errorf("query receipts: %w", err)
	}
	defer rows.Close()

	receipts := []ir.Receipt{}
	for rows.Next() {
		r, err := scanReceipt(rows)
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate receipts: %w", err)
	}
	return receipts, nil
}

// LastSeq returns the highest logged seq, or 0 for an empty log.
// The engine resumes its clock from here.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	var seq sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(seq) FROM transactions`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("query last seq: %w", err)
	}
	return seq.Int64, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReceipt(row scanner) (ir.Receipt, error) {
	var r ir.Receipt
	var argsJSON, resultJSON string
	err := row.Scan(
		&r.ID,
		&r.Seq,
		&r.Signer,
		&r.Instruction,
		&argsJSON,
		&r.Outcome,
		&r.ErrorCode,
		&r.ErrorMessage,
		&r.ErrorDetail,
		&resultJSON,
		&r.UnixTimestamp,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.Receipt{}, err
	}
	if err != nil {
		return ir.Receipt{}, fmt.Errorf("scan receipt: %w", err)
	}

	if r.Args, err = unmarshalObject(argsJSON); err != nil {
		return ir.Receipt{}, fmt.Errorf("receipt %s: %w", r.ID, err)
	}
	if r.Result, err = unmarshalObject(resultJSON); err != nil {
		return ir.Receipt{}, fmt.Errorf("receipt %s: %w", r.ID, err)
	}
	return r, nil
}
