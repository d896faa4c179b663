package testutil

// FixedTokenGenerator returns the same request token every time.
//
// Signed messages embed the request token, so a fixed token makes
// transaction ids reproducible across runs of the same scenario.
//
// Thread-safety: FixedTokenGenerator is stateless and safe for concurrent use.
type FixedTokenGenerator struct {
	token string
}

// NewFixedTokenGenerator creates a generator for token.
// If token is empty, Generate() returns "test-request-default".
func NewFixedTokenGenerator(token string) *FixedTokenGenerator {
	if token == "" {
		token = "test-request-default"
	}
	return &FixedTokenGenerator{token: token}
}

// Generate returns the fixed token.
//
// Implements engine.TokenGenerator interface.
func (g *FixedTokenGenerator) Generate() string {
	return g.token
}
