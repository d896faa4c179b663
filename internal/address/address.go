// Package address defines 32-byte identities and record addresses and the
// deterministic derivation of program-owned addresses from seed bytes.
//
// Derivation is a pure function of (seeds, program id). Any client can
// reproduce a record's address without asking the ledger.
package address

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

// Length is the byte width of an address or identity key.
const Length = 32

// Address is an ed25519-sized public key or a program-derived address.
type Address [Length]byte

// Zero is the all-zero address, the default value of unset key fields.
var Zero Address

// ErrInvalidAddress is returned when text does not decode to 32 bytes.
var ErrInvalidAddress = errors.New("invalid address")

// FromBytes copies b into an Address. b must be exactly 32 bytes.
func FromBytes(b []byte) (Address, error) {
	var a Address
	if len(b) != Length {
		return a, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidAddress, len(b), Length)
	}
	copy(a[:], b)
	return a, nil
}

// Parse decodes the base58 text form.
func Parse(s string) (Address, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %q: %v", ErrInvalidAddress, s, err)
	}
	return FromBytes(raw)
}

// MustParse is like Parse but panics on error.
// Use only for constants and tests.
func MustParse(s string) Address {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// String returns the base58 text form.
func (a Address) String() string {
	return base58.Encode(a[:])
}

// Bytes returns a copy of the raw bytes.
func (a Address) Bytes() []byte {
	b := make([]byte, Length)
	copy(b, a[:])
	return b
}

// IsZero reports whether a is the all-zero address.
func (a Address) IsZero() bool {
	return a == Zero
}

// MarshalJSON encodes the address as a base58 string.
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON decodes a base58 string.
func (a *Address) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
