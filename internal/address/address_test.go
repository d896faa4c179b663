package address

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoundTrip(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	a, err := FromBytes(pub)
	require.NoError(t, err)

	parsed, err := Parse(a.String())
	require.NoError(t, err)
	assert.Equal(t, a, parsed)
}

func TestZeroAddressText(t *testing.T) {
	assert.Equal(t, "11111111111111111111111111111111", Zero.String())
	assert.True(t, MustParse("11111111111111111111111111111111").IsZero())
}

func TestParseRejectsBadInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"not base58", "0OIl"},
		{"too short", "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			assert.ErrorIs(t, err, ErrInvalidAddress)
		})
	}
}

func TestAddressJSON(t *testing.T) {
	a := MustParse("DEVemLxXHPz1tbnBbTVXtvNBHupP2RCBw1jTFN8Uz3FD")

	data, err := json.Marshal(a)
	require.NoError(t, err)
	assert.Equal(t, `"DEVemLxXHPz1tbnBbTVXtvNBHupP2RCBw1jTFN8Uz3FD"`, string(data))

	var back Address
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, a, back)
}

func TestBytesIsCopy(t *testing.T) {
	a := MustParse("DEVemLxXHPz1tbnBbTVXtvNBHupP2RCBw1jTFN8Uz3FD")
	b := a.Bytes()
	b[0] ^= 0xff
	assert.NotEqual(t, b[0], a[0])
}
