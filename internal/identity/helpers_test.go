package identity

import "github.com/mr-tron/base58"

func secretText(k *Keypair) string {
	return base58.Encode(k.seed[:])
}
