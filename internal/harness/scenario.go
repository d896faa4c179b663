package harness

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Calindra/solana-twitter/internal/identity"
	"github.com/Calindra/solana-twitter/internal/ir"
)

// Scenario defines a conformance test scenario: named identities, funded
// and given token accounts in setup, then a flow of signed instructions
// with expected outcomes, then assertions over the trace and final state.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Clock is the host unix time at the first step.
	// Zero means testutil.DefaultUnixTime.
	Clock int64 `yaml:"clock,omitempty"`

	// RequestToken prefixes every step's request token.
	// If empty, defaults to "test-request-default".
	RequestToken string `yaml:"request_token,omitempty"`

	// Identities lists the signers. Keys derive from the names.
	Identities []IdentityDef `yaml:"identities"`

	// Setup funds identities and creates token accounts before the flow.
	// Setup steps are not ledger transactions and leave no trace.
	Setup []SetupStep `yaml:"setup,omitempty"`

	// Flow contains the signed instructions, executed in order.
	Flow []FlowStep `yaml:"flow"`

	// Assertions validate the final trace and state.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// IdentityDef names a signer. It accepts a bare name or a mapping with
// an explicit scheme.
type IdentityDef struct {
	Name   string `yaml:"name"`
	Scheme string `yaml:"scheme,omitempty"`
}

// UnmarshalYAML accepts "alice" as shorthand for {name: alice}.
func (d *IdentityDef) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		d.Name = node.Value
		return nil
	}
	type plain IdentityDef
	return node.Decode((*plain)(d))
}

// SetupStep holds exactly one of its fields.
type SetupStep struct {
	Airdrop *AirdropStep `yaml:"airdrop,omitempty"`
	Token   *TokenStep   `yaml:"token,omitempty"`
}

// AirdropStep credits lamports to an identity or named address.
type AirdropStep struct {
	To       string `yaml:"to"`
	Lamports int64  `yaml:"lamports"`
}

// TokenStep creates a token account named Account, held by Owner, for
// the mint named Mint. Both names become references.
type TokenStep struct {
	Account string `yaml:"account"`
	Owner   string `yaml:"owner"`
	Mint    string `yaml:"mint"`
	Amount  int64  `yaml:"amount,omitempty"`
}

// FlowStep signs and executes one instruction.
type FlowStep struct {
	// Invoke is the instruction name (e.g., "createPost").
	Invoke string `yaml:"invoke"`

	// Signer is an identity name.
	Signer string `yaml:"signer"`

	// Args are the instruction arguments. Strings of the form "$name"
	// resolve to the address registered under name.
	Args map[string]any `yaml:"args"`

	// Advance moves the host clock forward this many seconds first.
	Advance int64 `yaml:"advance,omitempty"`

	// RequestToken overrides the generated token. Reusing a token on an
	// identical message resubmits the same transaction.
	RequestToken string `yaml:"request_token,omitempty"`

	// Save registers the result's address under this name.
	Save string `yaml:"save,omitempty"`

	// Expect specifies the expected receipt. Nil means Success.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies expected execution behavior.
type ExpectClause struct {
	// Outcome is the receipt outcome ("Success", "Forbidden", ...).
	Outcome string `yaml:"outcome,omitempty"`

	// Rejected is the runtime error code of a transaction the ledger
	// refused before execution (e.g., "DUPLICATE_TRANSACTION").
	Rejected string `yaml:"rejected,omitempty"`

	// Result is a subset match against the rendered receipt result.
	Result map[string]any `yaml:"result,omitempty"`
}

// Assertion validates trace or final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "trace_contains": an event for Instruction with Outcome and Args
	// - "trace_order": Instructions appear in order
	// - "trace_count": Instruction appears exactly Count times
	// - "record": the record at Address is of Kind and matches Expect
	// - "balance": Account holds exactly Lamports
	// - "final_state": query a store table and verify expected values
	Type string `yaml:"type"`

	Instruction  string         `yaml:"instruction,omitempty"`
	Instructions []string       `yaml:"instructions,omitempty"`
	Outcome      string         `yaml:"outcome,omitempty"`
	Args         map[string]any `yaml:"args,omitempty"`
	Count        int            `yaml:"count,omitempty"`

	// Address is a "$name" reference (used by record).
	Address string `yaml:"address,omitempty"`

	// Kind is "post", "profile", or "none" (used by record).
	Kind string `yaml:"kind,omitempty"`

	// Account is a "$name" reference (used by balance).
	Account  string `yaml:"account,omitempty"`
	Lamports *int64 `yaml:"lamports,omitempty"`

	// Table and Where select one row (used by final_state).
	Table string         `yaml:"table,omitempty"`
	Where map[string]any `yaml:"where,omitempty"`

	// Expect contains expected field values (used by record and final_state).
	// Subset match - only specified fields are validated.
	Expect map[string]any `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertRecord        = "record"
	AssertBalance       = "balance"
	AssertFinalState    = "final_state"
)

// Record kinds for record assertions.
const (
	KindPost    = "post"
	KindProfile = "profile"
	KindNone    = "none"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Identities) == 0 {
		return fmt.Errorf("identities list is required and must be non-empty")
	}
	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	known := make(map[string]bool)
	for i, id := range s.Identities {
		if id.Name == "" {
			return fmt.Errorf("identities[%d]: name is required", i)
		}
		if known[id.Name] {
			return fmt.Errorf("identities[%d]: duplicate name %q", i, id.Name)
		}
		if id.Scheme != "" {
			if _, err := identity.ParseScheme(id.Scheme); err != nil {
				return fmt.Errorf("identities[%d]: %w", i, err)
			}
		}
		known[id.Name] = true
	}

	for i, step := range s.Setup {
		switch {
		case step.Airdrop != nil && step.Token != nil:
			return fmt.Errorf("setup[%d]: exactly one of airdrop or token is allowed", i)
		case step.Airdrop != nil:
			if step.Airdrop.To == "" {
				return fmt.Errorf("setup[%d].airdrop: to is required", i)
			}
			if step.Airdrop.Lamports <= 0 {
				return fmt.Errorf("setup[%d].airdrop: lamports must be positive", i)
			}
		case step.Token != nil:
			if step.Token.Account == "" || step.Token.Owner == "" || step.Token.Mint == "" {
				return fmt.Errorf("setup[%d].token: account, owner and mint are required", i)
			}
		default:
			return fmt.Errorf("setup[%d]: airdrop or token is required", i)
		}
	}

	for i, step := range s.Flow {
		if step.Invoke == "" {
			return fmt.Errorf("flow[%d]: invoke is required", i)
		}
		if step.Signer == "" {
			return fmt.Errorf("flow[%d]: signer is required", i)
		}
		if !known[step.Signer] {
			return fmt.Errorf("flow[%d]: unknown signer %q", i, step.Signer)
		}
		if step.Args == nil {
			return fmt.Errorf("flow[%d]: args is required (use empty map if no args)", i)
		}
		if step.Advance < 0 {
			return fmt.Errorf("flow[%d]: advance must be non-negative", i)
		}
		if step.Expect != nil && step.Expect.Outcome != "" && step.Expect.Rejected != "" {
			return fmt.Errorf("flow[%d].expect: outcome and rejected are exclusive", i)
		}
		if strings.HasPrefix(step.Save, "$") {
			return fmt.Errorf("flow[%d]: save takes a bare name, not %q", i, step.Save)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Instruction == "" {
			return fmt.Errorf("assertions[%d]: instruction is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Instructions) == 0 {
			return fmt.Errorf("assertions[%d]: instructions list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Instruction == "" {
			return fmt.Errorf("assertions[%d]: instruction is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertRecord:
		if a.Address == "" {
			return fmt.Errorf("assertions[%d]: address is required for record", index)
		}
		switch a.Kind {
		case KindPost, KindProfile, KindNone:
		default:
			return fmt.Errorf("assertions[%d]: kind must be post, profile or none, got %q", index, a.Kind)
		}
	case AssertBalance:
		if a.Account == "" {
			return fmt.Errorf("assertions[%d]: account is required for balance", index)
		}
		if a.Lamports == nil {
			return fmt.Errorf("assertions[%d]: lamports is required for balance", index)
		}
	case AssertFinalState:
		if a.Table == "" {
			return fmt.Errorf("assertions[%d]: table is required for final_state", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

// toObject converts YAML-decoded args to an ir.Object without resolving
// references.
func toObject(m map[string]any) (ir.Object, error) {
	if m == nil {
		return ir.Object{}, nil
	}
	v, err := ir.FromAny(m)
	if err != nil {
		return nil, err
	}
	return v.(ir.Object), nil
}
