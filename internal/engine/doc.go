// Package engine is the host ledger executor for the twitter program.
//
// ARCHITECTURE:
//
// Single-Writer Execution:
// Transactions execute one at a time under the engine's writer lock. Run
// drains a FIFO queue fed by Submit in a single goroutine; Execute runs one
// transaction synchronously for one-shot callers such as the CLI. Both
// paths share the same lock, so the store never sees two instructions
// interleave.
//
// Transaction Flow:
//  1. Check the message targets this program id
//  2. Decode the signer and verify the signature over ir.SigningBytes
//  3. Reject transaction ids already in the log
//  4. Read the host clock once; the instruction sees a single timestamp
//  5. Run the instruction inside store.Atomic
//  6. Stamp the next seq and append the receipt
//
// Steps 1-3 fail with *RuntimeError and log nothing. Program errors from
// step 5 roll the store back and still produce a failed receipt, so the log
// records every instruction the ledger accepted for execution.
//
// Ordering:
// Receipts are ordered by seq from Clock, never by wall time. The clock
// resumes from the store's last seq when the engine is created.
package engine
