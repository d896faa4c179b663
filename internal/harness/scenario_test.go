package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validScenarioYAML = `
name: valid
description: "a valid scenario"
identities:
  - alice
  - { name: carol, scheme: sr25519 }
setup:
  - airdrop: { to: alice, lamports: 100 }
  - token: { account: acct, owner: alice, mint: nft }
flow:
  - invoke: createPost
    signer: alice
    args: { nonce: n1, topic: hi, content: hello }
    save: post
assertions:
  - type: record
    address: $post
    kind: post
`

func TestParseScenario_Valid(t *testing.T) {
	s, err := ParseScenario([]byte(validScenarioYAML))
	require.NoError(t, err)

	assert.Equal(t, "valid", s.Name)
	require.Len(t, s.Identities, 2)
	assert.Equal(t, IdentityDef{Name: "alice"}, s.Identities[0])
	assert.Equal(t, IdentityDef{Name: "carol", Scheme: "sr25519"}, s.Identities[1])
	require.Len(t, s.Setup, 2)
	assert.Equal(t, int64(100), s.Setup[0].Airdrop.Lamports)
	assert.Equal(t, "nft", s.Setup[1].Token.Mint)
	assert.Equal(t, "post", s.Flow[0].Save)
	assert.Equal(t, "$post", s.Assertions[0].Address)
}

func TestParseScenario_RejectsUnknownFields(t *testing.T) {
	_, err := ParseScenario([]byte(`
name: typo
description: "typo in flow"
identities: [alice]
flow:
  - invoke: createPost
    signer: alice
    arguments: {}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenario_Validation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing name",
			yaml:    "description: d\nidentities: [a]\nflow: [{invoke: createPost, signer: a, args: {}}]",
			wantErr: "name is required",
		},
		{
			name:    "missing identities",
			yaml:    "name: n\ndescription: d\nflow: [{invoke: createPost, signer: a, args: {}}]",
			wantErr: "identities list is required",
		},
		{
			name:    "duplicate identity",
			yaml:    "name: n\ndescription: d\nidentities: [a, a]\nflow: [{invoke: createPost, signer: a, args: {}}]",
			wantErr: "duplicate name",
		},
		{
			name:    "bad scheme",
			yaml:    "name: n\ndescription: d\nidentities: [{name: a, scheme: rsa}]\nflow: [{invoke: createPost, signer: a, args: {}}]",
			wantErr: "identities[0]",
		},
		{
			name:    "unknown signer",
			yaml:    "name: n\ndescription: d\nidentities: [a]\nflow: [{invoke: createPost, signer: b, args: {}}]",
			wantErr: `unknown signer "b"`,
		},
		{
			name:    "missing args",
			yaml:    "name: n\ndescription: d\nidentities: [a]\nflow: [{invoke: createPost, signer: a}]",
			wantErr: "args is required",
		},
		{
			name:    "empty setup step",
			yaml:    "name: n\ndescription: d\nidentities: [a]\nsetup: [{}]\nflow: [{invoke: createPost, signer: a, args: {}}]",
			wantErr: "airdrop or token is required",
		},
		{
			name:    "zero airdrop",
			yaml:    "name: n\ndescription: d\nidentities: [a]\nsetup: [{airdrop: {to: a, lamports: 0}}]\nflow: [{invoke: createPost, signer: a, args: {}}]",
			wantErr: "lamports must be positive",
		},
		{
			name:    "outcome and rejected",
			yaml:    "name: n\ndescription: d\nidentities: [a]\nflow: [{invoke: createPost, signer: a, args: {}, expect: {outcome: Success, rejected: BAD_SIGNATURE}}]",
			wantErr: "exclusive",
		},
		{
			name:    "save with dollar",
			yaml:    "name: n\ndescription: d\nidentities: [a]\nflow: [{invoke: createPost, signer: a, args: {}, save: $p}]",
			wantErr: "bare name",
		},
		{
			name:    "unknown assertion",
			yaml:    "name: n\ndescription: d\nidentities: [a]\nflow: [{invoke: createPost, signer: a, args: {}}]\nassertions: [{type: magic}]",
			wantErr: `unknown assertion type "magic"`,
		},
		{
			name:    "record kind",
			yaml:    "name: n\ndescription: d\nidentities: [a]\nflow: [{invoke: createPost, signer: a, args: {}}]\nassertions: [{type: record, address: $p, kind: tweet}]",
			wantErr: "kind must be post, profile or none",
		},
		{
			name:    "balance without lamports",
			yaml:    "name: n\ndescription: d\nidentities: [a]\nflow: [{invoke: createPost, signer: a, args: {}}]\nassertions: [{type: balance, account: $a}]",
			wantErr: "lamports is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_AllTestdata(t *testing.T) {
	files, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, f := range files {
		_, err := LoadScenario(f)
		assert.NoError(t, err, f)
	}
}

func TestLoadScenario_FromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validScenarioYAML), 0644))

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "valid", s.Name)
}
