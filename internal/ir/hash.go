package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for hashed content. The version suffix allows a future
// change of encoding without colliding with old IDs.
const (
	DomainMessage     = "chirp/message/v1"
	DomainTransaction = "chirp/transaction/v1"
)

// hashWithDomain computes SHA256(domain || 0x00 || data).
// The null separator keeps domain and data boundaries unambiguous.
func hashWithDomain(domain string, data []byte) []byte {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return h.Sum(nil)
}

// SigningBytes returns the bytes a signer signs for a message:
// the domain-separated SHA-256 digest of its canonical JSON.
func SigningBytes(m Message) ([]byte, error) {
	canonical, err := MarshalCanonical(m.messageObject())
	if err != nil {
		return nil, fmt.Errorf("signing bytes: %w", err)
	}
	return hashWithDomain(DomainMessage, canonical), nil
}

// TransactionID computes the content-addressed ID of a signed transaction.
// It covers the signature too, so the same message signed twice by a
// randomized scheme yields different IDs.
func TransactionID(tx Transaction) (string, error) {
	canonical, err := MarshalCanonical(Object{
		"message":   tx.Message.messageObject(),
		"signature": String(tx.Signature),
	})
	if err != nil {
		return "", fmt.Errorf("transaction id: %w", err)
	}
	return hex.EncodeToString(hashWithDomain(DomainTransaction, canonical)), nil
}

// MustTransactionID is like TransactionID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustTransactionID(tx Transaction) string {
	id, err := TransactionID(tx)
	if err != nil {
		panic(err)
	}
	return id
}
