// Package harness provides conformance testing for the chirp ledger.
//
// A scenario names identities, funds them, hands out token accounts, then
// drives signed instructions through a real engine backed by an in-memory
// store and checks what happened.
//
// # Scenario Format
//
//	name: post_lifecycle
//	description: "What this scenario validates"
//	clock: 1700000000
//	identities: [alice, bob]
//	setup:
//	  - airdrop: { to: alice, lamports: 1000000000 }
//	  - token: { account: alice_nft, owner: alice, mint: nft_one }
//	flow:
//	  - invoke: createPost
//	    signer: alice
//	    args: { nonce: n1, topic: hi, content: hello }
//	    save: post
//	  - invoke: updatePost
//	    signer: bob
//	    args: { post: $post, topic: x, content: y }
//	    expect: { outcome: Forbidden }
//	assertions:
//	  - type: record
//	    address: $post
//	    kind: post
//	    expect: { topic: hi }
//
// Strings of the form "$name" resolve to the address registered under
// name: an identity's public key, a token account or mint from setup, or
// a result address kept with save. Traces render those addresses back as
// "$name", so golden files never spell out base58.
//
// # Assertion Types
//
//   - trace_contains: an instruction appears with an outcome and args
//   - trace_order: instructions appear in the given order
//   - trace_count: an instruction appears exactly N times
//   - record: the record at an address is a post, a profile, or absent
//   - balance: an account holds an exact lamport balance
//   - final_state: one row of a store table holds expected values
//
// # Deterministic Testing
//
// Keys derive from identity names (testutil.Identity), the host clock
// starts at scenario.clock and only moves on "advance", and request
// tokens are "<request_token>-<step>". Together these make transaction
// ids, seqs and timestamps identical across runs.
package harness
