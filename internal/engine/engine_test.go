package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Calindra/solana-twitter/internal/address"
	"github.com/Calindra/solana-twitter/internal/identity"
	"github.com/Calindra/solana-twitter/internal/ir"
	"github.com/Calindra/solana-twitter/internal/layout"
	"github.com/Calindra/solana-twitter/internal/program"
	"github.com/Calindra/solana-twitter/internal/store"
	"github.com/Calindra/solana-twitter/internal/testutil"
)

var testProgramID = address.MustParse("DEVemLxXHPz1tbnBbTVXtvNBHupP2RCBw1jTFN8Uz3FD")

type harness struct {
	t     *testing.T
	ctx   context.Context
	store *store.Store
	host  *testutil.HostClock
	eng   *Engine
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	tokens := make([]string, 256)
	for i := range tokens {
		tokens[i] = fmt.Sprintf("req-%03d", i+1)
	}
	host := testutil.NewHostClock(0)
	eng, err := New(ctx, s, testProgramID, host, WithTokenGenerator(NewFixedGenerator(tokens...)))
	require.NoError(t, err)

	for _, name := range []string{"alice", "bob"} {
		require.NoError(t, s.Airdrop(ctx, testutil.Identity(name).Public, 1_000_000_000))
	}
	return &harness{t: t, ctx: ctx, store: s, host: host, eng: eng}
}

func (h *harness) tx(kp *identity.Keypair, instruction string, args ir.Object) ir.Transaction {
	h.t.Helper()
	msg := NewMessage(testProgramID, kp, instruction, args, h.eng.NewRequestToken())
	tx, err := Sign(kp, msg)
	require.NoError(h.t, err)
	return tx
}

func (h *harness) exec(kp *identity.Keypair, instruction string, args ir.Object) ir.Receipt {
	h.t.Helper()
	r, err := h.eng.Execute(h.ctx, h.tx(kp, instruction, args))
	require.NoError(h.t, err)
	return r
}

func createArgs(nonce, topic, content string) ir.Object {
	return ir.Object{"nonce": ir.String(nonce), "topic": ir.String(topic), "content": ir.String(content)}
}

func TestExecute_PostLifecycleReceipts(t *testing.T) {
	h := newHarness(t)
	alice, bob := testutil.Identity("alice"), testutil.Identity("bob")

	// create
	r := h.exec(alice, ir.InstrCreatePost, createArgs("n1", "hi", "hello"))
	require.True(t, r.Succeeded(), r.ErrorMessage)
	assert.Equal(t, int64(1), r.Seq)
	assert.Equal(t, testutil.DefaultUnixTime, r.UnixTimestamp)
	postAddr, _ := r.Result.Str("address")
	ts, _ := r.Result.Int64("timestamp")
	assert.Equal(t, testutil.DefaultUnixTime, ts)

	addr := address.MustParse(postAddr)
	before, ok, err := h.store.Load(h.ctx, addr)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, before.Data, layout.PostSize)

	// oversized topic is rejected
	r = h.exec(alice, ir.InstrUpdatePost, ir.Object{
		"post": ir.String(postAddr), "topic": ir.String(strings.Repeat("x", 51)), "content": ir.String("ok"),
	})
	assert.Equal(t, "TopicTooLong", r.Outcome)
	assert.Equal(t, program.CodeTopicTooLong, r.ErrorCode)
	assert.ErrorIs(t, ReceiptError(r), program.ErrTopicTooLong)

	// only the author may update
	r = h.exec(bob, ir.InstrUpdatePost, ir.Object{
		"post": ir.String(postAddr), "topic": ir.String("y"), "content": ir.String("ok"),
	})
	assert.ErrorIs(t, ReceiptError(r), program.ErrForbidden)

	after, _, err := h.store.Load(h.ctx, addr)
	require.NoError(t, err)
	assert.Equal(t, before.Data, after.Data, "rejected updates leave the record unchanged")

	post, err := h.eng.Program().GetPost(h.ctx, h.store, addr)
	require.NoError(t, err)
	assert.Equal(t, "hi", post.Topic)

	// delete refunds the deposit and the address goes dead
	balBefore, err := h.store.Balance(h.ctx, alice.Public)
	require.NoError(t, err)
	r = h.exec(alice, ir.InstrDeletePost, ir.Object{"post": ir.String(postAddr)})
	require.True(t, r.Succeeded(), r.ErrorMessage)
	balAfter, err := h.store.Balance(h.ctx, alice.Public)
	require.NoError(t, err)
	assert.Equal(t, balBefore+store.DefaultRent.Deposit(layout.PostSize), balAfter)

	r = h.exec(alice, ir.InstrUpdatePost, ir.Object{
		"post": ir.String(postAddr), "topic": ir.String("y"), "content": ir.String("ok"),
	})
	assert.ErrorIs(t, ReceiptError(r), program.ErrNotFound)

	receipts, err := h.store.ListReceipts(h.ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, receipts, 5)
	for i, rec := range receipts {
		assert.Equal(t, int64(i+1), rec.Seq)
	}
}

func TestExecute_ProfileRelinkAndForbid(t *testing.T) {
	h := newHarness(t)
	alice, bob := testutil.Identity("alice"), testutil.Identity("bob")
	mintX, mintY := testutil.Address("mint-x"), testutil.Address("mint-y")
	tokX, tokY, tokB := testutil.Address("tok-x"), testutil.Address("tok-y"), testutil.Address("tok-b")
	require.NoError(t, h.store.CreateTokenAccount(h.ctx, store.TokenAccount{Address: tokX, Mint: mintX, Owner: alice.Public}))
	require.NoError(t, h.store.CreateTokenAccount(h.ctx, store.TokenAccount{Address: tokY, Mint: mintY, Owner: alice.Public}))
	require.NoError(t, h.store.CreateTokenAccount(h.ctx, store.TokenAccount{Address: tokB, Mint: mintX, Owner: bob.Public}))

	r := h.exec(alice, ir.InstrInitializeProfile, ir.Object{"token_account": ir.String(tokX.String())})
	require.True(t, r.Succeeded(), r.ErrorMessage)
	profileAddr, _ := r.Result.Str("address")

	r = h.exec(alice, ir.InstrUpdateProfile, ir.Object{"token_account": ir.String(tokY.String())})
	require.True(t, r.Succeeded(), r.ErrorMessage)

	r = h.exec(bob, ir.InstrUpdateProfile, ir.Object{
		"profile": ir.String(profileAddr), "token_account": ir.String(tokB.String()),
	})
	assert.ErrorIs(t, ReceiptError(r), program.ErrForbidden)

	profile, err := h.eng.Program().GetProfile(h.ctx, h.store, address.MustParse(profileAddr))
	require.NoError(t, err)
	assert.Equal(t, mintY, profile.LinkedAsset)
	assert.Equal(t, alice.Public, profile.Owner)
}

func TestExecute_RejectsBeforeExecution(t *testing.T) {
	h := newHarness(t)
	alice, bob := testutil.Identity("alice"), testutil.Identity("bob")

	t.Run("bad signature", func(t *testing.T) {
		tx := h.tx(alice, ir.InstrCreatePost, createArgs("n1", "hi", "hello"))
		tx.Message.Args["topic"] = ir.String("tampered")
		_, err := h.eng.Execute(h.ctx, tx)
		assert.True(t, IsBadSignature(err), "got %v", err)
	})

	t.Run("signer swapped", func(t *testing.T) {
		tx := h.tx(alice, ir.InstrCreatePost, createArgs("n2", "hi", "hello"))
		tx.Message.Signer = bob.Public.String()
		_, err := h.eng.Execute(h.ctx, tx)
		assert.True(t, IsBadSignature(err), "got %v", err)
	})

	t.Run("wrong program", func(t *testing.T) {
		msg := NewMessage(testutil.Address("other-program"), alice, ir.InstrCreatePost, createArgs("n3", "hi", "hello"), "r")
		tx, err := Sign(alice, msg)
		require.NoError(t, err)
		_, err = h.eng.Execute(h.ctx, tx)
		assert.True(t, IsRuntimeError(err, ErrCodeProgramMismatch), "got %v", err)
	})

	t.Run("unknown instruction", func(t *testing.T) {
		_, err := h.eng.Execute(h.ctx, h.tx(alice, "closeProfile", nil))
		assert.True(t, IsRuntimeError(err, ErrCodeUnknownInstruction), "got %v", err)
	})

	t.Run("malformed signature", func(t *testing.T) {
		tx := h.tx(alice, ir.InstrCreatePost, createArgs("n4", "hi", "hello"))
		tx.Signature = "0OIl"
		_, err := h.eng.Execute(h.ctx, tx)
		assert.True(t, IsRuntimeError(err, ErrCodeMalformed), "got %v", err)
	})

	receipts, err := h.store.ListReceipts(h.ctx, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, receipts, "rejected transactions are not logged")
	assert.Equal(t, int64(0), h.eng.Seq())
}

func TestExecute_DuplicateTransaction(t *testing.T) {
	h := newHarness(t)
	alice := testutil.Identity("alice")

	tx := h.tx(alice, ir.InstrCreatePost, createArgs("n1", "hi", "hello"))
	_, err := h.eng.Execute(h.ctx, tx)
	require.NoError(t, err)

	_, err = h.eng.Execute(h.ctx, tx)
	assert.True(t, IsDuplicate(err), "got %v", err)
}

func TestExecute_Sr25519Signer(t *testing.T) {
	h := newHarness(t)
	carol := testutil.IdentityWith(identity.Sr25519, "carol")
	require.NoError(t, h.store.Airdrop(h.ctx, carol.Public, 1_000_000_000))

	r := h.exec(carol, ir.InstrCreatePost, createArgs("n1", "sr", "schnorrkel"))
	require.True(t, r.Succeeded(), r.ErrorMessage)
	author, _ := r.Result.Str("author")
	assert.Equal(t, carol.Public.String(), author)
}

func TestExecute_InsufficientFunds(t *testing.T) {
	h := newHarness(t)
	dave := testutil.Identity("dave")

	r := h.exec(dave, ir.InstrCreatePost, createArgs("n1", "hi", "hello"))
	assert.ErrorIs(t, ReceiptError(r), program.ErrInsufficientFunds)
}

func TestNew_ResumesClock(t *testing.T) {
	h := newHarness(t)
	alice := testutil.Identity("alice")
	h.exec(alice, ir.InstrCreatePost, createArgs("n1", "hi", "hello"))
	h.exec(alice, ir.InstrCreatePost, createArgs("n2", "hi", "hello"))

	eng2, err := New(h.ctx, h.store, testProgramID, h.host)
	require.NoError(t, err)
	assert.Equal(t, int64(2), eng2.Seq())

	msg := NewMessage(testProgramID, alice, ir.InstrCreatePost, createArgs("n3", "hi", "hello"), "resumed")
	tx, err := Sign(alice, msg)
	require.NoError(t, err)
	r, err := eng2.Execute(h.ctx, tx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), r.Seq)
}

func TestSubmit_RunLoop(t *testing.T) {
	h := newHarness(t)
	alice := testutil.Identity("alice")

	ctx, cancel := context.WithCancel(h.ctx)
	done := make(chan error, 1)
	go func() { done <- h.eng.Run(ctx) }()

	txs := make([]ir.Transaction, 10)
	for i := range txs {
		txs[i] = h.tx(alice, ir.InstrCreatePost, createArgs("n"+string(rune('0'+i)), "hi", "hello"))
	}

	var wg sync.WaitGroup
	seqs := make(chan int64, len(txs))
	for _, tx := range txs {
		wg.Add(1)
		go func(tx ir.Transaction) {
			defer wg.Done()
			subCtx, subCancel := context.WithTimeout(h.ctx, 5*time.Second)
			defer subCancel()
			r, err := h.eng.Submit(subCtx, tx)
			assert.NoError(t, err)
			assert.True(t, r.Succeeded())
			seqs <- r.Seq
		}(tx)
	}
	wg.Wait()
	close(seqs)

	seen := map[int64]bool{}
	for s := range seqs {
		seen[s] = true
	}
	assert.Len(t, seen, len(txs), "every submit gets a distinct seq")

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}

	_, err := h.eng.Submit(h.ctx, h.tx(alice, ir.InstrCreatePost, createArgs("late", "hi", "hello")))
	assert.Error(t, err, "submit after stop must fail")
}

func TestSign_RejectsForeignSigner(t *testing.T) {
	alice, bob := testutil.Identity("alice"), testutil.Identity("bob")
	msg := NewMessage(testProgramID, alice, ir.InstrDeletePost, nil, "r")
	_, err := Sign(bob, msg)
	assert.Error(t, err)
}
