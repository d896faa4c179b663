// Package identity provides signing keypairs and the signature verifier the
// ledger consults before executing a transaction.
//
// Two schemes are supported: ed25519 (the default) and sr25519.
// Both use 32-byte public keys, so an identity is always an address.Address.
package identity

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"

	schnorrkel "github.com/ChainSafe/go-schnorrkel"

	"github.com/Calindra/solana-twitter/internal/address"
)

// Scheme names a signature algorithm.
type Scheme string

const (
	Ed25519 Scheme = "ed25519"
	Sr25519 Scheme = "sr25519"
)

// signingContext separates sr25519 signatures made for this ledger from
// signatures over the same bytes in other protocols.
var signingContext = []byte("chirp")

var (
	// ErrUnknownScheme is returned for a scheme name that is not supported.
	ErrUnknownScheme = errors.New("unknown signature scheme")

	// ErrBadSignature is returned when a signature does not verify.
	ErrBadSignature = errors.New("signature verification failed")
)

// ParseScheme validates a scheme name. The empty string means Ed25519.
func ParseScheme(s string) (Scheme, error) {
	switch Scheme(s) {
	case "", Ed25519:
		return Ed25519, nil
	case Sr25519:
		return Sr25519, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownScheme, s)
	}
}

// Verifier checks that sig is a valid signature by pub over msg.
type Verifier interface {
	Verify(pub address.Address, msg, sig []byte) error
}

// VerifierFor returns the verifier for a scheme.
func VerifierFor(s Scheme) (Verifier, error) {
	switch s {
	case Ed25519:
		return ed25519Verifier{}, nil
	case Sr25519:
		return sr25519Verifier{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, s)
	}
}

type ed25519Verifier struct{}

func (ed25519Verifier) Verify(pub address.Address, msg, sig []byte) error {
	if len(sig) != ed25519.SignatureSize {
		return fmt.Errorf("%w: signature is %d bytes", ErrBadSignature, len(sig))
	}
	if !ed25519.Verify(ed25519.PublicKey(pub[:]), msg, sig) {
		return ErrBadSignature
	}
	return nil
}

type sr25519Verifier struct{}

func (sr25519Verifier) Verify(pub address.Address, msg, sig []byte) error {
	if len(sig) != 64 {
		return fmt.Errorf("%w: signature is %d bytes", ErrBadSignature, len(sig))
	}

	var pk schnorrkel.PublicKey
	if err := pk.Decode(pub); err != nil {
		return fmt.Errorf("%w: decode public key: %v", ErrBadSignature, err)
	}

	var sigRaw [64]byte
	copy(sigRaw[:], sig)
	var s schnorrkel.Signature
	if err := s.Decode(sigRaw); err != nil {
		return fmt.Errorf("%w: decode signature: %v", ErrBadSignature, err)
	}

	ok, err := pk.Verify(&s, schnorrkel.NewSigningContext(signingContext, msg))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	if !ok {
		return ErrBadSignature
	}
	return nil
}

// Keypair holds a secret key able to sign for Public.
type Keypair struct {
	Scheme Scheme
	Public address.Address

	// seed is the 32-byte secret: an ed25519 seed or an sr25519 mini secret.
	seed [32]byte
}

// Generate creates a random keypair for the scheme.
func Generate(s Scheme) (*Keypair, error) {
	var seed [32]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return nil, fmt.Errorf("generate keypair: %w", err)
	}
	return FromSeed(s, seed)
}

// FromSeed derives a keypair deterministically from a 32-byte secret.
func FromSeed(s Scheme, seed [32]byte) (*Keypair, error) {
	kp := &Keypair{Scheme: s, seed: seed}
	switch s {
	case Ed25519:
		priv := ed25519.NewKeyFromSeed(seed[:])
		copy(kp.Public[:], priv.Public().(ed25519.PublicKey))
	case Sr25519:
		mini, err := schnorrkel.NewMiniSecretKeyFromRaw(seed)
		if err != nil {
			return nil, fmt.Errorf("sr25519 secret: %w", err)
		}
		kp.Public = mini.Public().Encode()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, s)
	}
	return kp, nil
}

// Sign signs msg with the keypair's secret.
func (k *Keypair) Sign(msg []byte) ([]byte, error) {
	switch k.Scheme {
	case Ed25519:
		return ed25519.Sign(ed25519.NewKeyFromSeed(k.seed[:]), msg), nil
	case Sr25519:
		mini, err := schnorrkel.NewMiniSecretKeyFromRaw(k.seed)
		if err != nil {
			return nil, fmt.Errorf("sr25519 secret: %w", err)
		}
		sig, err := mini.ExpandEd25519().Sign(schnorrkel.NewSigningContext(signingContext, msg))
		if err != nil {
			return nil, fmt.Errorf("sr25519 sign: %w", err)
		}
		enc := sig.Encode()
		return enc[:], nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, k.Scheme)
	}
}

// Seed returns the 32-byte secret.
func (k *Keypair) Seed() [32]byte {
	return k.seed
}
