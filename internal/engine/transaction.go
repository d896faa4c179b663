package engine

import (
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/Calindra/solana-twitter/internal/address"
	"github.com/Calindra/solana-twitter/internal/identity"
	"github.com/Calindra/solana-twitter/internal/ir"
	"github.com/Calindra/solana-twitter/internal/program"
)

// NewMessage builds the unsigned message for kp to invoke instruction.
func NewMessage(programID address.Address, kp *identity.Keypair, instruction string, args ir.Object, requestToken string) ir.Message {
	if args == nil {
		args = ir.Object{}
	}
	return ir.Message{
		ProgramID:    programID.String(),
		Instruction:  instruction,
		Args:         args,
		Signer:       kp.Public.String(),
		Scheme:       string(kp.Scheme),
		RequestToken: requestToken,
	}
}

// Sign signs msg with kp. The message must name kp as its signer.
func Sign(kp *identity.Keypair, msg ir.Message) (ir.Transaction, error) {
	if msg.Signer != kp.Public.String() {
		return ir.Transaction{}, fmt.Errorf("sign: message signer %s is not keypair %s", msg.Signer, kp.Public)
	}
	payload, err := ir.SigningBytes(msg)
	if err != nil {
		return ir.Transaction{}, fmt.Errorf("sign: %w", err)
	}
	sig, err := kp.Sign(payload)
	if err != nil {
		return ir.Transaction{}, fmt.Errorf("sign: %w", err)
	}
	return ir.Transaction{Message: msg, Signature: base58.Encode(sig)}, nil
}

// ReceiptError converts a failed receipt back to its program error.
// Returns nil for successful receipts.
func ReceiptError(r ir.Receipt) error {
	if r.Succeeded() {
		return nil
	}
	return &program.Error{
		Code:    r.ErrorCode,
		Name:    r.Outcome,
		Message: r.ErrorMessage,
		Detail:  r.ErrorDetail,
	}
}
