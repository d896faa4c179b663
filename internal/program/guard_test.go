package program

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Calindra/solana-twitter/internal/address"
)

func TestAuthorize(t *testing.T) {
	a := address.Address{1}
	b := address.Address{2}

	assert.NoError(t, Authorize(a, a))
	assert.ErrorIs(t, Authorize(b, a), ErrForbidden)
	assert.ErrorIs(t, Authorize(address.Zero, a), ErrForbidden)
}
