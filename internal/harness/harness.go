package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"strings"

	"github.com/Calindra/solana-twitter/internal/address"
	"github.com/Calindra/solana-twitter/internal/config"
	"github.com/Calindra/solana-twitter/internal/engine"
	"github.com/Calindra/solana-twitter/internal/identity"
	"github.com/Calindra/solana-twitter/internal/ir"
	"github.com/Calindra/solana-twitter/internal/store"
	"github.com/Calindra/solana-twitter/internal/testutil"
)

// Harness is the test execution engine.
// It runs scenarios against a real engine with a deterministic host clock,
// named keys, and fixed request tokens.
type Harness struct {
	store   *store.Store
	engine  *engine.Engine
	host    *testutil.HostClock
	refs    *refs
	signers map[string]*identity.Keypair
	logger  *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Create fresh in-memory database and engine
// 2. Register identities
// 3. Execute setup steps
// 4. Sign and execute flow steps, validating expect clauses
// 5. Evaluate assertions
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	host := testutil.NewHostClock(scenario.Clock)
	eng, err := engine.New(ctx, st, config.Default().ProgramID, host,
		engine.WithTokenGenerator(testutil.NewFixedTokenGenerator(scenario.RequestToken)))
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	h := &Harness{
		store:   st,
		engine:  eng,
		host:    host,
		refs:    newRefs(),
		signers: make(map[string]*identity.Keypair),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, def := range scenario.Identities {
		scheme := identity.Ed25519
		if def.Scheme != "" {
			scheme = identity.Scheme(def.Scheme)
		}
		kp := testutil.IdentityWith(scheme, def.Name)
		h.signers[def.Name] = kp
		h.refs.set(def.Name, kp.Public)
	}

	if err := h.executeSetup(ctx, scenario.Setup); err != nil {
		return nil, fmt.Errorf("failed to execute setup: %w", err)
	}

	result := NewResult()
	if err := h.executeFlow(ctx, scenario.Flow, result); err != nil {
		return nil, fmt.Errorf("failed to execute flow: %w", err)
	}

	actx := &AssertionContext{
		Ctx:     ctx,
		Store:   st,
		Program: eng.Program(),
		Refs:    h.refs,
	}
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(errMsg)
	}

	return result, nil
}

// executeSetup funds accounts and creates token accounts. These are host
// operations, not transactions, so they take no seq.
func (h *Harness) executeSetup(ctx context.Context, setup []SetupStep) error {
	for i, step := range setup {
		switch {
		case step.Airdrop != nil:
			to, err := h.refs.lookup(step.Airdrop.To)
			if err != nil {
				return fmt.Errorf("setup step %d: %w", i, err)
			}
			if err := h.store.Airdrop(ctx, to, step.Airdrop.Lamports); err != nil {
				return fmt.Errorf("setup step %d: %w", i, err)
			}
			h.logger.Info("setup airdrop", "step", i, "to", step.Airdrop.To, "lamports", step.Airdrop.Lamports)

		case step.Token != nil:
			owner, err := h.refs.lookup(step.Token.Owner)
			if err != nil {
				return fmt.Errorf("setup step %d: %w", i, err)
			}
			acct := h.refs.named(step.Token.Account)
			mint := h.refs.named(step.Token.Mint)
			amount := step.Token.Amount
			if amount == 0 {
				amount = 1
			}
			err = h.store.CreateTokenAccount(ctx, store.TokenAccount{
				Address: acct,
				Mint:    mint,
				Owner:   owner,
				Amount:  amount,
			})
			if err != nil {
				return fmt.Errorf("setup step %d: %w", i, err)
			}
			h.logger.Info("setup token account", "step", i, "account", step.Token.Account, "mint", step.Token.Mint)
		}
	}
	return nil
}

// executeFlow signs and executes every flow step through the engine and
// validates expect clauses against what actually happened.
func (h *Harness) executeFlow(ctx context.Context, flow []FlowStep, result *Result) error {
	for i, step := range flow {
		if step.Advance > 0 {
			h.host.Advance(step.Advance)
		}

		resolved, err := h.refs.resolveMap(step.Args)
		if err != nil {
			return fmt.Errorf("flow step %d: %w", i, err)
		}
		args, err := toObject(resolved)
		if err != nil {
			return fmt.Errorf("flow step %d: failed to convert args: %w", i, err)
		}

		token := step.RequestToken
		if token == "" {
			token = fmt.Sprintf("%s-%d", h.engine.NewRequestToken(), i+1)
		}

		kp := h.signers[step.Signer]
		tx, err := engine.Sign(kp, engine.NewMessage(h.engine.ProgramID(), kp, step.Invoke, args, token))
		if err != nil {
			return fmt.Errorf("flow step %d: %w", i, err)
		}

		ev := TraceEvent{
			Signer:      step.Signer,
			Instruction: step.Invoke,
			Args:        step.Args,
		}

		receipt, err := h.engine.Execute(ctx, tx)
		var re *engine.RuntimeError
		switch {
		case errors.As(err, &re):
			ev.Rejected = string(re.Code)
		case err != nil:
			return fmt.Errorf("flow step %d: %w", i, err)
		default:
			if step.Save != "" && receipt.Succeeded() {
				addr, ok := receipt.Result.Str("address")
				if !ok {
					return fmt.Errorf("flow step %d: result has no address to save as %q", i, step.Save)
				}
				a, err := address.Parse(addr)
				if err != nil {
					return fmt.Errorf("flow step %d: %w", i, err)
				}
				h.refs.set(step.Save, a)
			}
			ev.Seq = receipt.Seq
			ev.Outcome = receipt.Outcome
			ev.ErrorCode = receipt.ErrorCode
			if len(receipt.Result) > 0 {
				ev.Result = h.refs.renderObject(receipt.Result)
			}
		}
		result.AddTrace(ev)

		if msg := checkExpect(step.Expect, ev); msg != "" {
			result.AddError(fmt.Sprintf("flow[%d] %s: %s", i, step.Invoke, msg))
		}

		h.logger.Info("flow step completed",
			"step", i,
			"instruction", step.Invoke,
			"signer", step.Signer,
			"seq", ev.Seq,
			"outcome", ev.Outcome,
			"rejected", ev.Rejected,
		)
	}

	return nil
}

// checkExpect compares ev with the expect clause and describes any
// mismatch. A nil clause expects Success.
func checkExpect(expect *ExpectClause, ev TraceEvent) string {
	want := ExpectClause{Outcome: ir.OutcomeSuccess}
	if expect != nil {
		want = *expect
		if want.Outcome == "" && want.Rejected == "" {
			want.Outcome = ir.OutcomeSuccess
		}
	}

	if want.Rejected != "" {
		if ev.Rejected != want.Rejected {
			return fmt.Sprintf("expected rejection %s, got %s", want.Rejected, describe(ev))
		}
		return ""
	}
	if ev.Outcome != want.Outcome {
		return fmt.Sprintf("expected outcome %s, got %s", want.Outcome, describe(ev))
	}
	if want.Result != nil && !matchSubset(ev.Result, want.Result) {
		return fmt.Sprintf("result %v does not contain %v", ev.Result, want.Result)
	}
	return ""
}

func describe(ev TraceEvent) string {
	if ev.Rejected != "" {
		return "rejection " + ev.Rejected
	}
	return "outcome " + ev.Outcome
}

// matchSubset reports whether actual holds every key of expected with an
// equal value. Values are compared in their ir form so YAML ints match
// int64 results.
func matchSubset(actual, expected map[string]any) bool {
	if len(expected) == 0 {
		return true
	}
	act, err := toObject(actual)
	if err != nil {
		return false
	}
	exp, err := toObject(expected)
	if err != nil {
		return false
	}
	for key, want := range exp {
		got, ok := act[key]
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

// refs maps scenario names to addresses and back.
type refs struct {
	byName map[string]address.Address
	byAddr map[address.Address]string
}

func newRefs() *refs {
	return &refs{
		byName: make(map[string]address.Address),
		byAddr: make(map[address.Address]string),
	}
}

func (r *refs) set(name string, a address.Address) {
	r.byName[name] = a
	if _, taken := r.byAddr[a]; !taken {
		r.byAddr[a] = "$" + name
	}
}

// named returns the address registered under name, registering a
// deterministic one first if needed.
func (r *refs) named(name string) address.Address {
	name = strings.TrimPrefix(name, "$")
	if a, ok := r.byName[name]; ok {
		return a
	}
	a := testutil.Address(name)
	r.set(name, a)
	return a
}

// lookup resolves a name, with or without the leading "$".
func (r *refs) lookup(ref string) (address.Address, error) {
	name := strings.TrimPrefix(ref, "$")
	a, ok := r.byName[name]
	if !ok {
		return address.Address{}, fmt.Errorf("unknown reference %q", ref)
	}
	return a, nil
}

// resolve replaces "$name" strings in v with base58 addresses.
func (r *refs) resolve(v any) (any, error) {
	switch val := v.(type) {
	case string:
		if !strings.HasPrefix(val, "$") {
			return val, nil
		}
		a, err := r.lookup(val)
		if err != nil {
			return nil, err
		}
		return a.String(), nil
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			e, err := r.resolve(elem)
			if err != nil {
				return nil, err
			}
			out[i] = e
		}
		return out, nil
	case map[string]any:
		return r.resolveMap(val)
	default:
		return v, nil
	}
}

func (r *refs) resolveMap(m map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(m))
	for k, v := range m {
		rv, err := r.resolve(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		out[k] = rv
	}
	return out, nil
}

// render converts an ir value to plain Go data, replacing known addresses
// with their "$name".
func (r *refs) render(v ir.Value) any {
	switch val := v.(type) {
	case ir.String:
		return r.renderAddress(string(val))
	case ir.Int:
		return int64(val)
	case ir.Bool:
		return bool(val)
	case ir.Array:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = r.render(elem)
		}
		return out
	case ir.Object:
		return r.renderObject(val)
	default:
		return v
	}
}

func (r *refs) renderObject(obj ir.Object) map[string]any {
	out := make(map[string]any, len(obj))
	for k, v := range obj {
		out[k] = r.render(v)
	}
	return out
}

func (r *refs) renderAddress(s string) string {
	a, err := address.Parse(s)
	if err != nil {
		return s
	}
	if name, ok := r.byAddr[a]; ok {
		return name
	}
	return s
}
