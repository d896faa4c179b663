package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Calindra/solana-twitter/internal/identity"
)

func TestIdentityDeterministic(t *testing.T) {
	assert.Equal(t, Identity("alice").Public, Identity("alice").Public)
	assert.NotEqual(t, Identity("alice").Public, Identity("bob").Public)
	assert.Equal(t, identity.Ed25519, Identity("alice").Scheme)
	assert.Equal(t, identity.Sr25519, IdentityWith(identity.Sr25519, "alice").Scheme)
}

func TestAddressDeterministic(t *testing.T) {
	assert.Equal(t, Address("mint-x"), Address("mint-x"))
	assert.NotEqual(t, Address("mint-x"), Address("mint-y"))
}
