package store

import (
	"path/filepath"
	"testing"

	"github.com/Calindra/solana-twitter/internal/address"
	"github.com/Calindra/solana-twitter/internal/ir"
)

// createTestStore creates a new temp-dir store for testing.
func createTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, opts...)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// testAddr returns a distinct address for each byte value.
func testAddr(b byte) address.Address {
	var a address.Address
	a[0] = b
	a[31] = b
	return a
}

// createTestReceipt creates a receipt with minimal required fields.
func createTestReceipt(id string, seq int64) ir.Receipt {
	return ir.Receipt{
		ID:            id,
		Seq:           seq,
		Signer:        testAddr(1).String(),
		Instruction:   ir.InstrCreatePost,
		Args:          ir.Object{"nonce": ir.String("n1")},
		Outcome:       ir.OutcomeSuccess,
		Result:        ir.Object{"topic": ir.String("hi")},
		UnixTimestamp: 1_700_000_000,
	}
}
