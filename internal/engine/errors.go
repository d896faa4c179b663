package engine

import (
	"errors"
	"fmt"
)

// RuntimeError is a transaction rejected by the engine before it reached
// the program. No receipt is logged for it and no seq is consumed.
//
// Runtime errors include:
//   - Program mismatch: Message addressed to another program id
//   - Malformed: Unparseable signer, scheme, or signature encoding
//   - Bad signature: Signature does not verify for the signer
//   - Duplicate: Transaction id already in the log
//   - Unknown instruction: Instruction name the program does not define
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// TxID identifies the rejected transaction, when it could be computed.
	TxID string

	// Details contains additional context.
	Details map[string]string
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	ErrCodeProgramMismatch    RuntimeErrorCode = "PROGRAM_MISMATCH"
	ErrCodeMalformed          RuntimeErrorCode = "MALFORMED_TRANSACTION"
	ErrCodeBadSignature       RuntimeErrorCode = "BAD_SIGNATURE"
	ErrCodeDuplicate          RuntimeErrorCode = "DUPLICATE_TRANSACTION"
	ErrCodeUnknownInstruction RuntimeErrorCode = "UNKNOWN_INSTRUCTION"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.TxID != "" {
		return fmt.Sprintf("%s: %s (tx=%s)", e.Code, e.Message, e.TxID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsRuntimeError reports whether err carries a RuntimeError with code.
// Uses errors.As to handle wrapped errors.
func IsRuntimeError(err error, code RuntimeErrorCode) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// IsBadSignature returns true if the transaction's signature did not verify.
func IsBadSignature(err error) bool {
	return IsRuntimeError(err, ErrCodeBadSignature)
}

// IsDuplicate returns true if the transaction was already processed.
func IsDuplicate(err error) bool {
	return IsRuntimeError(err, ErrCodeDuplicate)
}

func newRuntimeError(code RuntimeErrorCode, txID, format string, args ...any) *RuntimeError {
	return &RuntimeError{Code: code, TxID: txID, Message: fmt.Sprintf(format, args...)}
}
