package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mr-tron/base58"

	"github.com/Calindra/solana-twitter/internal/address"
	"github.com/Calindra/solana-twitter/internal/identity"
	"github.com/Calindra/solana-twitter/internal/ir"
	"github.com/Calindra/solana-twitter/internal/program"
	"github.com/Calindra/solana-twitter/internal/store"
)

// TokenGenerator produces request tokens for new messages.
type TokenGenerator interface {
	Generate() string
}

// Engine executes signed transactions against the store.
//
// Thread-safety: Execute and Submit may be called from any goroutine.
// Instruction execution is serialized by the writer lock.
type Engine struct {
	store     *store.Store
	programID address.Address
	host      program.HostClock
	clock     *Clock
	queue     *jobQueue
	tokens    TokenGenerator

	mu sync.Mutex // single writer
}

// Option configures an Engine.
type Option func(*Engine)

// WithTokenGenerator overrides the UUIDv7 request token generator.
func WithTokenGenerator(g TokenGenerator) Option {
	return func(e *Engine) {
		e.tokens = g
	}
}

// New creates an engine for programID over s. The logical clock resumes
// after the last seq already in the store's log.
func New(ctx context.Context, s *store.Store, programID address.Address, host program.HostClock, opts ...Option) (*Engine, error) {
	last, err := s.LastSeq(ctx)
	if err != nil {
		return nil, fmt.Errorf("resume clock: %w", err)
	}

	e := &Engine{
		store:     s,
		programID: programID,
		host:      host,
		clock:     NewClockAt(last),
		queue:     newJobQueue(),
		tokens:    UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// ProgramID returns the program id transactions must target.
func (e *Engine) ProgramID() address.Address {
	return e.programID
}

// Store returns the backing store.
func (e *Engine) Store() *store.Store {
	return e.store
}

// Seq returns the seq of the last logged receipt.
func (e *Engine) Seq() int64 {
	return e.clock.Current()
}

// NewRequestToken returns a fresh request token for a message.
func (e *Engine) NewRequestToken() string {
	return e.tokens.Generate()
}

// Program returns a read-only view of the program for record lookups.
func (e *Engine) Program() *program.Program {
	return program.New(e.programID, e.host)
}

// Execute runs one transaction synchronously and returns its receipt.
//
// A returned error means the transaction was rejected before execution
// (*RuntimeError) or the store failed; no receipt exists in either case.
// Program errors are not returned as errors: they come back as a failed
// receipt, which is also logged.
func (e *Engine) Execute(ctx context.Context, tx ir.Transaction) (ir.Receipt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.execute(ctx, tx)
}

func (e *Engine) execute(ctx context.Context, tx ir.Transaction) (ir.Receipt, error) {
	msg := tx.Message

	if msg.ProgramID != e.programID.String() {
		return ir.Receipt{}, newRuntimeError(ErrCodeProgramMismatch, "",
			"message targets program %q, ledger runs %s", msg.ProgramID, e.programID)
	}

	id, err := ir.TransactionID(tx)
	if err != nil {
		return ir.Receipt{}, newRuntimeError(ErrCodeMalformed, "", "compute transaction id: %v", err)
	}

	signer, err := e.verify(tx, id)
	if err != nil {
		return ir.Receipt{}, err
	}

	dup, err := e.store.HasTransaction(ctx, id)
	if err != nil {
		return ir.Receipt{}, fmt.Errorf("execute %s: %w", id, err)
	}
	if dup {
		return ir.Receipt{}, newRuntimeError(ErrCodeDuplicate, id, "transaction already processed")
	}

	if !program.Supports(msg.Instruction) {
		return ir.Receipt{}, newRuntimeError(ErrCodeUnknownInstruction, id, "program has no instruction %q", msg.Instruction)
	}

	now := e.host.UnixTimestamp()
	prog := program.New(e.programID, slotTime(now))

	var res ir.Object
	execErr := e.store.Atomic(ctx, func(stx *store.Tx) error {
		var err error
		res, err = prog.Dispatch(ctx, program.Env{Accounts: stx, Assets: stx}, signer, msg.Instruction, msg.Args)
		return err
	})

	receipt := ir.Receipt{
		ID:            id,
		Signer:        msg.Signer,
		Instruction:   msg.Instruction,
		Args:          msg.Args,
		UnixTimestamp: now,
	}
	if receipt.Args == nil {
		receipt.Args = ir.Object{}
	}

	if execErr != nil {
		pe, ok := program.AsError(execErr)
		if !ok {
			return ir.Receipt{}, fmt.Errorf("execute %s: %w", id, execErr)
		}
		receipt.Outcome = pe.Name
		receipt.ErrorCode = pe.Code
		receipt.ErrorMessage = pe.Message
		receipt.ErrorDetail = pe.Detail
		receipt.Result = ir.Object{}
	} else {
		receipt.Outcome = ir.OutcomeSuccess
		receipt.Result = res
	}

	receipt.Seq = e.clock.Next()
	if err := e.store.WriteReceipt(ctx, receipt); err != nil {
		return ir.Receipt{}, fmt.Errorf("execute %s: %w", id, err)
	}

	slog.Debug("transaction executed",
		"tx", id,
		"seq", receipt.Seq,
		"instruction", receipt.Instruction,
		"signer", receipt.Signer,
		"outcome", receipt.Outcome,
	)
	return receipt, nil
}

// verify decodes the signer and checks the signature over the message.
func (e *Engine) verify(tx ir.Transaction, id string) (address.Address, error) {
	msg := tx.Message

	signer, err := address.Parse(msg.Signer)
	if err != nil {
		return address.Address{}, newRuntimeError(ErrCodeMalformed, id, "signer: %v", err)
	}

	scheme, err := identity.ParseScheme(msg.Scheme)
	if err != nil {
		return address.Address{}, newRuntimeError(ErrCodeMalformed, id, "%v", err)
	}
	verifier, err := identity.VerifierFor(scheme)
	if err != nil {
		return address.Address{}, newRuntimeError(ErrCodeMalformed, id, "%v", err)
	}

	sig, err := base58.Decode(tx.Signature)
	if err != nil {
		return address.Address{}, newRuntimeError(ErrCodeMalformed, id, "signature encoding: %v", err)
	}

	signingBytes, err := ir.SigningBytes(msg)
	if err != nil {
		return address.Address{}, newRuntimeError(ErrCodeMalformed, id, "signing bytes: %v", err)
	}

	if err := verifier.Verify(signer, signingBytes, sig); err != nil {
		return address.Address{}, newRuntimeError(ErrCodeBadSignature, id, "%v", err)
	}
	return signer, nil
}

// Submit queues tx for the Run loop and waits for its receipt.
// Returns ctx.Err() if ctx ends first; the transaction may still execute.
func (e *Engine) Submit(ctx context.Context, tx ir.Transaction) (ir.Receipt, error) {
	j := job{tx: tx, reply: make(chan result, 1)}
	if !e.queue.Enqueue(j) {
		return ir.Receipt{}, errors.New("engine stopped")
	}

	select {
	case r := <-j.reply:
		return r.receipt, r.err
	case <-ctx.Done():
		return ir.Receipt{}, ctx.Err()
	}
}

// Run processes submitted transactions until ctx is cancelled.
// It must be called from exactly one goroutine.
func (e *Engine) Run(ctx context.Context) error {
	slog.Info("engine starting", "program", e.programID.String(), "seq", e.clock.Current())

	for {
		// Try non-blocking dequeue first
		j, ok := e.queue.TryDequeue()
		if ok {
			r, err := e.Execute(ctx, j.tx)
			if err != nil {
				logJobError(j, err)
			}
			j.reply <- result{receipt: r, err: err}
			continue
		}

		// No job ready - wait for signal or context cancellation
		select {
		case <-ctx.Done():
			slog.Info("engine stopping: context cancelled")
			e.queue.Close()
			e.drain(ctx.Err())
			return ctx.Err()

		case <-e.queue.Wait():
			// Signal received - loop back to TryDequeue
		}
	}
}

// drain fails every job still queued after the loop stops.
func (e *Engine) drain(err error) {
	for {
		j, ok := e.queue.TryDequeue()
		if !ok {
			return
		}
		j.reply <- result{err: err}
	}
}

func logJobError(j job, err error) {
	var re *RuntimeError
	if errors.As(err, &re) {
		slog.Warn("transaction rejected",
			"code", re.Code,
			"error", re.Message,
			"tx", re.TxID,
			"instruction", j.tx.Message.Instruction,
			"signer", j.tx.Message.Signer,
		)
		return
	}
	slog.Error("transaction processing failed",
		"error", err,
		"instruction", j.tx.Message.Instruction,
		"signer", j.tx.Message.Signer,
		"request_token", j.tx.Message.RequestToken,
	)
}

// slotTime is a host clock frozen for the duration of one instruction.
type slotTime int64

func (t slotTime) UnixTimestamp() int64 {
	return int64(t)
}
