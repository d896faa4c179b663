package ir

// Version constants for the wire format and the ledger.
const (
	// WireVersion is the message encoding version.
	WireVersion = "1"

	// LedgerVersion is the chirp ledger version.
	LedgerVersion = "0.1.0"
)
