package program

import (
	"context"
	"fmt"

	"github.com/Calindra/solana-twitter/internal/address"
	"github.com/Calindra/solana-twitter/internal/layout"
)

// CreatePost allocates a post at the address derived from (author, nonce).
// The nonce only feeds the derivation and is not stored.
func (p *Program) CreatePost(ctx context.Context, acc Accounts, author address.Address, nonce []byte, topic, content string) (address.Address, layout.Post, error) {
	addr, err := p.PostAddress(author, nonce)
	if err != nil {
		return address.Address{}, layout.Post{}, err
	}
	if err := ensureVacant(ctx, acc, addr); err != nil {
		return address.Address{}, layout.Post{}, err
	}
	if err := validateText(topic, content); err != nil {
		return address.Address{}, layout.Post{}, err
	}

	post := layout.Post{
		Author:    author,
		Timestamp: p.clock.UnixTimestamp(),
		Topic:     topic,
		Content:   content,
	}
	data, err := post.MarshalBinary()
	if err != nil {
		return address.Address{}, layout.Post{}, fmt.Errorf("encode post: %w", err)
	}
	if err := p.allocateRecord(ctx, acc, addr, author, data); err != nil {
		return address.Address{}, layout.Post{}, err
	}
	return addr, post, nil
}

// UpdatePost overwrites topic and content of the post at addr. Author and
// timestamp are left untouched.
func (p *Program) UpdatePost(ctx context.Context, acc Accounts, caller, addr address.Address, topic, content string) (layout.Post, error) {
	post, err := p.GetPost(ctx, acc, addr)
	if err != nil {
		return layout.Post{}, err
	}
	if err := validateText(topic, content); err != nil {
		return layout.Post{}, err
	}
	if err := Authorize(caller, post.Author); err != nil {
		return layout.Post{}, err
	}

	post.Topic = topic
	post.Content = content
	data, err := post.MarshalBinary()
	if err != nil {
		return layout.Post{}, fmt.Errorf("encode post: %w", err)
	}
	if err := acc.Write(ctx, addr, data); err != nil {
		return layout.Post{}, err
	}
	return post, nil
}

// DeletePost reclaims the post at addr and refunds its deposit to the
// author. It returns the refunded amount.
func (p *Program) DeletePost(ctx context.Context, acc Accounts, caller, addr address.Address) (int64, error) {
	post, err := p.GetPost(ctx, acc, addr)
	if err != nil {
		return 0, err
	}
	if err := Authorize(caller, post.Author); err != nil {
		return 0, err
	}
	return acc.Reclaim(ctx, addr, post.Author)
}

// GetPost loads and decodes the post at addr.
func (p *Program) GetPost(ctx context.Context, acc Loader, addr address.Address) (layout.Post, error) {
	slot, err := p.loadSlot(ctx, acc, addr)
	if err != nil {
		return layout.Post{}, err
	}
	var post layout.Post
	if err := post.UnmarshalBinary(slot.Data); err != nil {
		return layout.Post{}, decodeError(err)
	}
	return post, nil
}
