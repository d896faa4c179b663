package testutil

import (
	"crypto/sha256"

	"github.com/Calindra/solana-twitter/internal/address"
	"github.com/Calindra/solana-twitter/internal/identity"
)

// Identity returns a keypair derived from name. The same name always yields
// the same key, so tests and golden files can refer to identities by name.
func Identity(name string) *identity.Keypair {
	return IdentityWith(identity.Ed25519, name)
}

// IdentityWith is Identity for an explicit signature scheme.
func IdentityWith(scheme identity.Scheme, name string) *identity.Keypair {
	seed := sha256.Sum256([]byte("chirp/test-identity/" + name))
	kp, err := identity.FromSeed(scheme, seed)
	if err != nil {
		panic(err)
	}
	return kp
}

// Address returns a deterministic address for name, for mints and other
// keys that never sign.
func Address(name string) address.Address {
	return address.Address(sha256.Sum256([]byte("chirp/test-address/" + name)))
}
