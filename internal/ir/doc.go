// Package ir defines the ledger's wire-level types: constrained argument
// values, signed messages, transactions and receipts.
//
// Everything that is hashed or signed goes through MarshalCanonical, which
// produces RFC 8785 canonical JSON. Two clients that build the same Message
// always produce the same bytes to sign and the same transaction ID.
//
// Key constraints:
//   - NO floats anywhere; numbers are int64
//   - JSON tags use snake_case
//   - ir imports nothing internal
package ir
