package program

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/Calindra/solana-twitter/internal/address"
	"github.com/Calindra/solana-twitter/internal/layout"
)

// HostClock supplies the ledger's current time in unix seconds.
type HostClock interface {
	UnixTimestamp() int64
}

// Slot is a fixed-size storage slot held by the allocator.
type Slot struct {
	Address address.Address
	Owner   address.Address
	Data    []byte
	Deposit int64
	Payer   address.Address
}

// Loader reads slots by address.
type Loader interface {
	Load(ctx context.Context, addr address.Address) (Slot, bool, error)
}

// Accounts is the storage allocator.
//
// Allocate reserves exactly size zeroed bytes at addr, owned by owner and
// charged to payer; it returns ErrInsufficientFunds when payer cannot cover
// the deposit. Write replaces the slot's data and never changes its size.
// Reclaim removes the slot and refunds its deposit to refundTo.
type Accounts interface {
	Loader
	Allocate(ctx context.Context, addr, owner address.Address, size int, payer address.Address) error
	Write(ctx context.Context, addr address.Address, data []byte) error
	Reclaim(ctx context.Context, addr, refundTo address.Address) (int64, error)
}

// AssetProof states that Owner controls token account Account holding Asset.
type AssetProof struct {
	Account address.Address
	Owner   address.Address
	Asset   address.Address
}

// Assets is the asset-ownership collaborator. TokenAccount returns
// ErrNotFound when no token account exists at addr.
type Assets interface {
	TokenAccount(ctx context.Context, addr address.Address) (AssetProof, error)
}

// Program holds the immutable program id and the host clock.
type Program struct {
	id    address.Address
	clock HostClock
}

// New creates a program bound to id.
func New(id address.Address, clock HostClock) *Program {
	return &Program{id: id, clock: clock}
}

// ID returns the program id used for address derivation.
func (p *Program) ID() address.Address {
	return p.id
}

// PostAddress derives the address for (author, nonce) under this program.
func (p *Program) PostAddress(author address.Address, nonce []byte) (address.Address, error) {
	addr, _, err := address.PostAddress(p.id, author, nonce)
	if errors.Is(err, address.ErrMaxSeedLengthExceeded) {
		return address.Address{}, ErrSeedTooLong.With("nonce is %d bytes, max %d", len(nonce), address.MaxSeedLength)
	}
	if err != nil {
		return address.Address{}, fmt.Errorf("derive post address: %w", err)
	}
	return addr, nil
}

// ProfileAddress derives the profile address of owner under this program.
func (p *Program) ProfileAddress(owner address.Address) (address.Address, error) {
	addr, _, err := address.ProfileAddress(p.id, owner)
	if err != nil {
		return address.Address{}, fmt.Errorf("derive profile address: %w", err)
	}
	return addr, nil
}

// validateText enforces the scalar-value limits in order: topic, then content.
func validateText(topic, content string) error {
	if !utf8.ValidString(topic) {
		return ErrInvalidArgument.With("topic is not valid UTF-8")
	}
	if !utf8.ValidString(content) {
		return ErrInvalidArgument.With("content is not valid UTF-8")
	}
	if n := utf8.RuneCountInString(topic); n > layout.MaxTopicChars {
		return ErrTopicTooLong.With("topic has %d characters", n)
	}
	if n := utf8.RuneCountInString(content); n > layout.MaxContentChars {
		return ErrContentTooLong.With("content has %d characters", n)
	}
	return nil
}

// loadSlot loads addr and requires it to be a slot owned by this program.
func (p *Program) loadSlot(ctx context.Context, acc Loader, addr address.Address) (Slot, error) {
	slot, ok, err := acc.Load(ctx, addr)
	if err != nil {
		return Slot{}, fmt.Errorf("load %s: %w", addr, err)
	}
	if !ok {
		return Slot{}, ErrNotFound.With("no account at %s", addr)
	}
	if slot.Owner != p.id {
		return Slot{}, ErrAccountDiscriminatorMismatch.With("account %s is owned by %s", addr, slot.Owner)
	}
	return slot, nil
}

// ensureVacant fails with ErrAlreadyExists when addr holds a slot.
func ensureVacant(ctx context.Context, acc Loader, addr address.Address) error {
	_, ok, err := acc.Load(ctx, addr)
	if err != nil {
		return fmt.Errorf("load %s: %w", addr, err)
	}
	if ok {
		return ErrAlreadyExists.With("account %s is already in use", addr)
	}
	return nil
}

// allocateRecord reserves a slot of size and writes data into it.
func (p *Program) allocateRecord(ctx context.Context, acc Accounts, addr, payer address.Address, data []byte) error {
	if err := acc.Allocate(ctx, addr, p.id, len(data), payer); err != nil {
		return err
	}
	return acc.Write(ctx, addr, data)
}

func decodeError(err error) error {
	if errors.Is(err, layout.ErrDiscriminatorMismatch) || errors.Is(err, layout.ErrSizeMismatch) {
		return ErrAccountDiscriminatorMismatch.With("%v", err)
	}
	return err
}
