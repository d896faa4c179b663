package address

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostAddress(t *testing.T) {
	author := Address{1}
	other := Address{2}

	a, _, err := PostAddress(testProgram, author, []byte("n1"))
	require.NoError(t, err)
	again, _, err := PostAddress(testProgram, author, []byte("n1"))
	require.NoError(t, err)
	assert.Equal(t, a, again)

	diffNonce, _, err := PostAddress(testProgram, author, []byte("n2"))
	require.NoError(t, err)
	assert.NotEqual(t, a, diffNonce)

	diffAuthor, _, err := PostAddress(testProgram, other, []byte("n1"))
	require.NoError(t, err)
	assert.NotEqual(t, a, diffAuthor)

	_, _, err = PostAddress(testProgram, author, bytes.Repeat([]byte("x"), MaxSeedLength+1))
	assert.ErrorIs(t, err, ErrMaxSeedLengthExceeded)
}

func TestProfileAddress(t *testing.T) {
	owner := Address{9}

	p, _, err := ProfileAddress(testProgram, owner)
	require.NoError(t, err)

	manual, _, err := FindProgramAddress([][]byte{[]byte("user"), owner[:]}, testProgram)
	require.NoError(t, err)
	assert.Equal(t, manual, p)

	post, _, err := PostAddress(testProgram, owner, []byte("user"))
	require.NoError(t, err)
	assert.NotEqual(t, p, post)
}

func TestRecordAddressesPinned(t *testing.T) {
	post, bump, err := PostAddress(testProgram, Address{1}, []byte("n1"))
	require.NoError(t, err)
	assert.Equal(t, "6AKGVenby4ar2N46J8ZXP1RyQ5dBPkJKqrjEEk3uqbnS", post.String())
	assert.Equal(t, uint8(254), bump)

	profile, bump, err := ProfileAddress(testProgram, Address{9})
	require.NoError(t, err)
	assert.Equal(t, "BT5SDbbUnHhLoambCeVETsYqLzYbfsCHaDpurMHuVFKg", profile.String())
	assert.Equal(t, uint8(255), bump)
}
