package program

import "github.com/Calindra/solana-twitter/internal/address"

// Authorize allows a mutation only when caller is the record's owner.
// It is never consulted for the first creation of a record.
func Authorize(caller, owner address.Address) error {
	if caller != owner {
		return ErrForbidden
	}
	return nil
}
