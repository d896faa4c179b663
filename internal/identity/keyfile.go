package identity

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mr-tron/base58"
)

// keyFile is the on-disk JSON form of a keypair.
type keyFile struct {
	Scheme Scheme `json:"scheme"`
	Public string `json:"public"`
	Secret string `json:"secret"`
}

// Save writes the keypair to path with owner-only permissions.
func (k *Keypair) Save(path string) error {
	data, err := json.MarshalIndent(keyFile{
		Scheme: k.Scheme,
		Public: k.Public.String(),
		Secret: base58.Encode(k.seed[:]),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode keypair: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write keypair: %w", err)
	}
	return nil
}

// Load reads a keypair written by Save and checks that the stored public
// key matches the one derived from the secret.
func Load(path string) (*Keypair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keypair: %w", err)
	}
	var kf keyFile
	if err := json.Unmarshal(data, &kf); err != nil {
		return nil, fmt.Errorf("parse keypair %s: %w", path, err)
	}
	scheme, err := ParseScheme(string(kf.Scheme))
	if err != nil {
		return nil, err
	}
	raw, err := base58.Decode(kf.Secret)
	if err != nil || len(raw) != 32 {
		return nil, fmt.Errorf("parse keypair %s: invalid secret", path)
	}
	var seed [32]byte
	copy(seed[:], raw)

	kp, err := FromSeed(scheme, seed)
	if err != nil {
		return nil, err
	}
	if kf.Public != "" && kf.Public != kp.Public.String() {
		return nil, fmt.Errorf("parse keypair %s: public key does not match secret", path)
	}
	return kp, nil
}
