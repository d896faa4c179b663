// Package store provides SQLite-backed durable state for the ledger.
//
// The store holds four tables:
//   - accounts: fixed-size program slots with their deposit and payer
//   - balances: lamport balances of identities that pay deposits
//   - token_accounts: asset holdings consulted as ownership proofs
//   - transactions: the append-only receipt log
//
// # Atomicity
//
// Every instruction runs inside Atomic, which wraps one SQL transaction.
// The Tx handed to the callback implements program.Accounts and
// program.Assets, so a program error returned from the callback rolls back
// every allocation, write, charge, and refund it made.
//
// Receipts are written after the instruction's transaction has committed or
// rolled back, so rejected instructions are logged without touching records.
//
// # Ordering
//
// Receipt listings are ordered by seq (the engine's logical clock), never
// by wall time.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
