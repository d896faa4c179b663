package program

import (
	"context"
	"fmt"

	"github.com/Calindra/solana-twitter/internal/address"
	"github.com/Calindra/solana-twitter/internal/layout"
)

// InitializeProfile creates the owner's single profile, linked to the asset
// held in tokenAccount. The token account must belong to owner.
func (p *Program) InitializeProfile(ctx context.Context, acc Accounts, assets Assets, owner, tokenAccount address.Address) (address.Address, layout.Profile, error) {
	proof, err := assets.TokenAccount(ctx, tokenAccount)
	if err != nil {
		return address.Address{}, layout.Profile{}, err
	}
	if proof.Owner != owner {
		return address.Address{}, layout.Profile{}, ErrForbidden.With("token account %s is held by %s", tokenAccount, proof.Owner)
	}

	addr, err := p.ProfileAddress(owner)
	if err != nil {
		return address.Address{}, layout.Profile{}, err
	}
	if err := ensureVacant(ctx, acc, addr); err != nil {
		return address.Address{}, layout.Profile{}, err
	}

	// A fresh profile links the zero asset, so the proof must name a real one.
	var profile layout.Profile
	if proof.Asset == profile.LinkedAsset {
		return address.Address{}, layout.Profile{}, ErrAssetUnchanged
	}
	profile.LinkedAsset = proof.Asset
	profile.Owner = owner

	data, err := profile.MarshalBinary()
	if err != nil {
		return address.Address{}, layout.Profile{}, fmt.Errorf("encode profile: %w", err)
	}
	if err := p.allocateRecord(ctx, acc, addr, owner, data); err != nil {
		return address.Address{}, layout.Profile{}, err
	}
	return addr, profile, nil
}

// UpdateProfile relinks the profile at addr to the asset in tokenAccount.
// Only the linked asset changes.
func (p *Program) UpdateProfile(ctx context.Context, acc Accounts, assets Assets, caller, addr, tokenAccount address.Address) (layout.Profile, error) {
	profile, err := p.GetProfile(ctx, acc, addr)
	if err != nil {
		return layout.Profile{}, err
	}
	if err := Authorize(caller, profile.Owner); err != nil {
		return layout.Profile{}, err
	}

	proof, err := assets.TokenAccount(ctx, tokenAccount)
	if err != nil {
		return layout.Profile{}, err
	}
	if proof.Owner != caller {
		return layout.Profile{}, ErrForbidden.With("token account %s is held by %s", tokenAccount, proof.Owner)
	}

	profile.LinkedAsset = proof.Asset
	data, err := profile.MarshalBinary()
	if err != nil {
		return layout.Profile{}, fmt.Errorf("encode profile: %w", err)
	}
	if err := acc.Write(ctx, addr, data); err != nil {
		return layout.Profile{}, err
	}
	return profile, nil
}

// GetProfile loads and decodes the profile at addr.
func (p *Program) GetProfile(ctx context.Context, acc Loader, addr address.Address) (layout.Profile, error) {
	slot, err := p.loadSlot(ctx, acc, addr)
	if err != nil {
		return layout.Profile{}, err
	}
	var profile layout.Profile
	if err := profile.UnmarshalBinary(slot.Data); err != nil {
		return layout.Profile{}, decodeError(err)
	}
	return profile, nil
}
