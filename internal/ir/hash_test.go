package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMessage() Message {
	return Message{
		ProgramID:    "DEVemLxXHPz1tbnBbTVXtvNBHupP2RCBw1jTFN8Uz3FD",
		Instruction:  InstrCreatePost,
		Args:         Object{"nonce": String("n1"), "topic": String("hi"), "content": String("hello")},
		Signer:       "11111111111111111111111111111111",
		Scheme:       "ed25519",
		RequestToken: "req-1",
	}
}

func TestSigningBytesDeterminism(t *testing.T) {
	b1, err := SigningBytes(testMessage())
	require.NoError(t, err)
	b2, err := SigningBytes(testMessage())
	require.NoError(t, err)

	assert.Equal(t, b1, b2)
	assert.Len(t, b1, 32)
}

func TestSigningBytesChangesWithFields(t *testing.T) {
	base, err := SigningBytes(testMessage())
	require.NoError(t, err)

	m := testMessage()
	m.RequestToken = "req-2"
	other, err := SigningBytes(m)
	require.NoError(t, err)
	assert.NotEqual(t, base, other, "request token must be signed")

	m = testMessage()
	m.Args["topic"] = String("hey")
	other, err = SigningBytes(m)
	require.NoError(t, err)
	assert.NotEqual(t, base, other, "args must be signed")
}

func TestSigningBytesNilArgs(t *testing.T) {
	m := testMessage()
	m.Args = nil
	_, err := SigningBytes(m)
	require.NoError(t, err)
}

func TestTransactionIDCoversSignature(t *testing.T) {
	tx1 := Transaction{Message: testMessage(), Signature: "sigA"}
	tx2 := Transaction{Message: testMessage(), Signature: "sigB"}

	id1 := MustTransactionID(tx1)
	assert.Len(t, id1, 64)
	assert.Equal(t, id1, MustTransactionID(tx1))
	assert.NotEqual(t, id1, MustTransactionID(tx2))
}

func TestHashWithDomainSeparation(t *testing.T) {
	data := []byte("payload")
	assert.NotEqual(t, hashWithDomain(DomainMessage, data), hashWithDomain(DomainTransaction, data))
}
