package address

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
)

// Limits on derivation input, matching the host ledger.
const (
	MaxSeeds      = 16
	MaxSeedLength = 32
)

// pdaMarker is appended to every derivation preimage so derived addresses
// can never collide with hashes computed for another purpose.
const pdaMarker = "ProgramDerivedAddress"

var (
	// ErrMaxSeedLengthExceeded is returned when a seed exceeds MaxSeedLength
	// or there are more than MaxSeeds seeds.
	ErrMaxSeedLengthExceeded = errors.New("max seed length exceeded")

	// ErrOnCurve is returned when the derived bytes are a valid ed25519
	// point. Such an address could have a private key, so it is rejected.
	ErrOnCurve = errors.New("derived address is on the ed25519 curve")

	// ErrNoViableBump is returned when every bump from 255 down to 1 lands
	// on the curve. Practically unreachable.
	ErrNoViableBump = errors.New("unable to find a viable program address bump")
)

// CreateProgramAddress hashes SHA256(seeds... || programID || marker) and
// rejects results that are valid curve points.
func CreateProgramAddress(seeds [][]byte, programID Address) (Address, error) {
	if len(seeds) > MaxSeeds {
		return Address{}, fmt.Errorf("%w: %d seeds, max %d", ErrMaxSeedLengthExceeded, len(seeds), MaxSeeds)
	}
	h := sha256.New()
	for i, seed := range seeds {
		if len(seed) > MaxSeedLength {
			return Address{}, fmt.Errorf("%w: seed %d is %d bytes, max %d", ErrMaxSeedLengthExceeded, i, len(seed), MaxSeedLength)
		}
		h.Write(seed)
	}
	h.Write(programID[:])
	h.Write([]byte(pdaMarker))

	var out Address
	copy(out[:], h.Sum(nil))
	if IsOnCurve(out) {
		return Address{}, ErrOnCurve
	}
	return out, nil
}

// FindProgramAddress searches bump seeds from 255 down to 1 and returns the
// first off-curve address together with its bump. The bump is appended as
// the final one-byte seed, so seeds may hold at most MaxSeeds-1 entries.
func FindProgramAddress(seeds [][]byte, programID Address) (Address, uint8, error) {
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)

	for bump := 255; bump > 0; bump-- {
		withBump[len(seeds)] = []byte{byte(bump)}
		addr, err := CreateProgramAddress(withBump, programID)
		if err == nil {
			return addr, uint8(bump), nil
		}
		if !errors.Is(err, ErrOnCurve) {
			return Address{}, 0, err
		}
	}
	return Address{}, 0, ErrNoViableBump
}

// IsOnCurve reports whether a decodes to a point on edwards25519.
func IsOnCurve(a Address) bool {
	_, err := new(edwards25519.Point).SetBytes(a[:])
	return err == nil
}
