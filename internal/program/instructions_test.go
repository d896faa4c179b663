package program

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Calindra/solana-twitter/internal/ir"
	"github.com/Calindra/solana-twitter/internal/testutil"
)

func TestDispatchPostLifecycle(t *testing.T) {
	f := newFixture(t)
	env := Env{Accounts: f.acc, Assets: f.assets}

	res, err := f.prog.Dispatch(f.ctx, env, f.alice, ir.InstrCreatePost, ir.Object{
		"nonce": ir.String("n1"), "topic": ir.String("hi"), "content": ir.String("hello"),
	})
	require.NoError(t, err)
	postAddr, ok := res.Str("address")
	require.True(t, ok)
	author, _ := res.Str("author")
	assert.Equal(t, f.alice.String(), author)
	ts, _ := res.Int64("timestamp")
	assert.Equal(t, testutil.DefaultUnixTime, ts)

	res, err = f.prog.Dispatch(f.ctx, env, f.alice, ir.InstrUpdatePost, ir.Object{
		"post": ir.String(postAddr), "topic": ir.String("t2"), "content": ir.String("c2"),
	})
	require.NoError(t, err)
	topic, _ := res.Str("topic")
	assert.Equal(t, "t2", topic)

	_, err = f.prog.Dispatch(f.ctx, env, f.alice, ir.InstrUpdatePost, ir.Object{
		"post": ir.String(postAddr), "topic": ir.String(strings.Repeat("x", 51)), "content": ir.String("c"),
	})
	assert.ErrorIs(t, err, ErrTopicTooLong)

	res, err = f.prog.Dispatch(f.ctx, env, f.alice, ir.InstrDeletePost, ir.Object{"post": ir.String(postAddr)})
	require.NoError(t, err)
	refunded, _ := res.Int64("refunded")
	assert.Positive(t, refunded)
}

func TestDispatchProfileLifecycle(t *testing.T) {
	f := newFixture(t)
	env := Env{Accounts: f.acc, Assets: f.assets}
	tokenX, tokenY := testutil.Address("alice-x"), testutil.Address("alice-y")
	f.assets.add(tokenX, f.alice, testutil.Address("mint-x"))
	f.assets.add(tokenY, f.alice, testutil.Address("mint-y"))

	res, err := f.prog.Dispatch(f.ctx, env, f.alice, ir.InstrInitializeProfile, ir.Object{
		"token_account": ir.String(tokenX.String()),
	})
	require.NoError(t, err)
	profileAddr, _ := res.Str("address")

	// profile defaults to the signer's own profile
	res, err = f.prog.Dispatch(f.ctx, env, f.alice, ir.InstrUpdateProfile, ir.Object{
		"token_account": ir.String(tokenY.String()),
	})
	require.NoError(t, err)
	linked, _ := res.Str("linked_asset")
	assert.Equal(t, testutil.Address("mint-y").String(), linked)
	again, _ := res.Str("address")
	assert.Equal(t, profileAddr, again)

	_, err = f.prog.Dispatch(f.ctx, env, f.bob, ir.InstrUpdateProfile, ir.Object{
		"profile": ir.String(profileAddr), "token_account": ir.String(tokenY.String()),
	})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestDispatchBadArguments(t *testing.T) {
	f := newFixture(t)
	env := Env{Accounts: f.acc, Assets: f.assets}

	tests := []struct {
		name        string
		instruction string
		args        ir.Object
	}{
		{"missing nonce", ir.InstrCreatePost, ir.Object{"topic": ir.String("t"), "content": ir.String("c")}},
		{"nonce not string", ir.InstrCreatePost, ir.Object{"nonce": ir.Int(1), "topic": ir.String("t"), "content": ir.String("c")}},
		{"missing content", ir.InstrCreatePost, ir.Object{"nonce": ir.String("n"), "topic": ir.String("t")}},
		{"bad post address", ir.InstrUpdatePost, ir.Object{"post": ir.String("not-base58!"), "topic": ir.String("t"), "content": ir.String("c")}},
		{"missing post", ir.InstrDeletePost, ir.Object{}},
		{"missing token", ir.InstrInitializeProfile, ir.Object{}},
		{"bad profile", ir.InstrUpdateProfile, ir.Object{"profile": ir.Int(3), "token_account": ir.String(testutil.Address("t").String())}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.prog.Dispatch(f.ctx, env, f.alice, tt.instruction, tt.args)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestDispatchUnknownInstruction(t *testing.T) {
	f := newFixture(t)
	_, err := f.prog.Dispatch(f.ctx, Env{Accounts: f.acc, Assets: f.assets}, f.alice, "closeProfile", ir.Object{})
	assert.ErrorIs(t, err, ErrUnknownInstruction)
}

func TestSupports(t *testing.T) {
	for _, name := range []string{ir.InstrCreatePost, ir.InstrUpdatePost, ir.InstrDeletePost, ir.InstrInitializeProfile, ir.InstrUpdateProfile} {
		assert.True(t, Supports(name), name)
	}
	assert.False(t, Supports("closeProfile"))
	assert.False(t, Supports(""))
}
