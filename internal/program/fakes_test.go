package program

import (
	"bytes"
	"context"

	"github.com/Calindra/solana-twitter/internal/address"
)

const testDepositPerByte = 10

// memAccounts is an in-memory allocator charging testDepositPerByte per byte.
type memAccounts struct {
	slots    map[address.Address]Slot
	balances map[address.Address]int64
}

func newMemAccounts() *memAccounts {
	return &memAccounts{
		slots:    map[address.Address]Slot{},
		balances: map[address.Address]int64{},
	}
}

func (m *memAccounts) Load(_ context.Context, addr address.Address) (Slot, bool, error) {
	s, ok := m.slots[addr]
	if !ok {
		return Slot{}, false, nil
	}
	s.Data = bytes.Clone(s.Data)
	return s, true, nil
}

func (m *memAccounts) Allocate(_ context.Context, addr, owner address.Address, size int, payer address.Address) error {
	if _, ok := m.slots[addr]; ok {
		return ErrAlreadyExists
	}
	deposit := int64(size) * testDepositPerByte
	if m.balances[payer] < deposit {
		return ErrInsufficientFunds
	}
	m.balances[payer] -= deposit
	m.slots[addr] = Slot{Address: addr, Owner: owner, Data: make([]byte, size), Deposit: deposit, Payer: payer}
	return nil
}

func (m *memAccounts) Write(_ context.Context, addr address.Address, data []byte) error {
	s, ok := m.slots[addr]
	if !ok {
		return ErrNotFound
	}
	if len(data) != len(s.Data) {
		return ErrInvalidArgument
	}
	s.Data = bytes.Clone(data)
	m.slots[addr] = s
	return nil
}

func (m *memAccounts) Reclaim(_ context.Context, addr, refundTo address.Address) (int64, error) {
	s, ok := m.slots[addr]
	if !ok {
		return 0, ErrNotFound
	}
	delete(m.slots, addr)
	m.balances[refundTo] += s.Deposit
	return s.Deposit, nil
}

func (m *memAccounts) raw(addr address.Address) []byte {
	return bytes.Clone(m.slots[addr].Data)
}

type memAssets map[address.Address]AssetProof

func (m memAssets) add(account, owner, asset address.Address) {
	m[account] = AssetProof{Account: account, Owner: owner, Asset: asset}
}

func (m memAssets) TokenAccount(_ context.Context, addr address.Address) (AssetProof, error) {
	p, ok := m[addr]
	if !ok {
		return AssetProof{}, ErrNotFound.With("no token account at %s", addr)
	}
	return p, nil
}
