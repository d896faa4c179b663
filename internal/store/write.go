package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/Calindra/solana-twitter/internal/ir"
)

// ErrDuplicateTransaction is returned when a receipt with the same
// transaction id is already logged.
var ErrDuplicateTransaction = errors.New("transaction already processed")

// WriteReceipt appends a receipt to the transaction log.
//
// The receipt's Args and Result are serialized to canonical JSON per
// RFC 8785 so stored receipts compare byte-for-byte.
func (s *Store) WriteReceipt(ctx context.Context, r ir.Receipt) error {
	argsJSON, err := marshalObject(r.Args)
	if err != nil {
		return fmt.Errorf("write receipt: %w", err)
	}
	resultJSON, err := marshalObject(r.Result)
	if err != nil {
		return fmt.Errorf("write receipt: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions
		(id, seq, signer, instruction, args, outcome, error_code, error_message, error_detail, result, unix_timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		r.ID,
		r.Seq,
		r.Signer,
		r.Instruction,
		argsJSON,
		r.Outcome,
		r.ErrorCode,
		r.ErrorMessage,
		r.ErrorDetail,
		resultJSON,
		r.UnixTimestamp,
	)
	if err != nil {
		return fmt.Errorf("write receipt: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("write receipt: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("write receipt %s: %w", r.ID, ErrDuplicateTransaction)
	}
	return nil
}
