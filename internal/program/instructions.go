package program

import (
	"context"
	"errors"
	"fmt"

	"github.com/Calindra/solana-twitter/internal/address"
	"github.com/Calindra/solana-twitter/internal/ir"
)

// ErrUnknownInstruction is returned by Dispatch for an unsupported name.
var ErrUnknownInstruction = errors.New("unknown instruction")

// Supports reports whether Dispatch knows instruction.
func Supports(instruction string) bool {
	switch instruction {
	case ir.InstrCreatePost, ir.InstrUpdatePost, ir.InstrDeletePost,
		ir.InstrInitializeProfile, ir.InstrUpdateProfile:
		return true
	}
	return false
}

// Env bundles the collaborators one instruction runs against.
type Env struct {
	Accounts Accounts
	Assets   Assets
}

// Dispatch decodes args for the named instruction, runs it for signer, and
// returns the result object recorded in the receipt.
//
// Argument keys:
//
//	createPost        nonce, topic, content
//	updatePost        post, topic, content
//	deletePost        post
//	initializeProfile token_account
//	updateProfile     token_account, profile (defaults to the signer's profile)
func (p *Program) Dispatch(ctx context.Context, env Env, signer address.Address, instruction string, args ir.Object) (ir.Object, error) {
	switch instruction {
	case ir.InstrCreatePost:
		nonce, err := argString(args, "nonce")
		if err != nil {
			return nil, err
		}
		topic, content, err := textArgs(args)
		if err != nil {
			return nil, err
		}
		addr, post, err := p.CreatePost(ctx, env.Accounts, signer, []byte(nonce), topic, content)
		if err != nil {
			return nil, err
		}
		return postResult(addr, post.Author, post.Timestamp, post.Topic, post.Content), nil

	case ir.InstrUpdatePost:
		addr, err := argAddress(args, "post")
		if err != nil {
			return nil, err
		}
		topic, content, err := textArgs(args)
		if err != nil {
			return nil, err
		}
		post, err := p.UpdatePost(ctx, env.Accounts, signer, addr, topic, content)
		if err != nil {
			return nil, err
		}
		return postResult(addr, post.Author, post.Timestamp, post.Topic, post.Content), nil

	case ir.InstrDeletePost:
		addr, err := argAddress(args, "post")
		if err != nil {
			return nil, err
		}
		refunded, err := p.DeletePost(ctx, env.Accounts, signer, addr)
		if err != nil {
			return nil, err
		}
		return ir.Object{"address": ir.String(addr.String()), "refunded": ir.Int(refunded)}, nil

	case ir.InstrInitializeProfile:
		token, err := argAddress(args, "token_account")
		if err != nil {
			return nil, err
		}
		addr, profile, err := p.InitializeProfile(ctx, env.Accounts, env.Assets, signer, token)
		if err != nil {
			return nil, err
		}
		return profileResult(addr, profile.Owner, profile.LinkedAsset), nil

	case ir.InstrUpdateProfile:
		token, err := argAddress(args, "token_account")
		if err != nil {
			return nil, err
		}
		addr, err := p.profileArg(args, signer)
		if err != nil {
			return nil, err
		}
		profile, err := p.UpdateProfile(ctx, env.Accounts, env.Assets, signer, addr, token)
		if err != nil {
			return nil, err
		}
		return profileResult(addr, profile.Owner, profile.LinkedAsset), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownInstruction, instruction)
	}
}

func (p *Program) profileArg(args ir.Object, signer address.Address) (address.Address, error) {
	if _, ok := args["profile"]; ok {
		return argAddress(args, "profile")
	}
	return p.ProfileAddress(signer)
}

func postResult(addr, author address.Address, ts int64, topic, content string) ir.Object {
	return ir.Object{
		"address":   ir.String(addr.String()),
		"author":    ir.String(author.String()),
		"timestamp": ir.Int(ts),
		"topic":     ir.String(topic),
		"content":   ir.String(content),
	}
}

func profileResult(addr, owner, asset address.Address) ir.Object {
	return ir.Object{
		"address":      ir.String(addr.String()),
		"owner":        ir.String(owner.String()),
		"linked_asset": ir.String(asset.String()),
	}
}

func argString(args ir.Object, key string) (string, error) {
	s, ok := args.Str(key)
	if !ok {
		return "", ErrInvalidArgument.With("%s must be a string", key)
	}
	return s, nil
}

func argAddress(args ir.Object, key string) (address.Address, error) {
	s, err := argString(args, key)
	if err != nil {
		return address.Address{}, err
	}
	a, err := address.Parse(s)
	if err != nil {
		return address.Address{}, ErrInvalidArgument.With("%s: %v", key, err)
	}
	return a, nil
}

func textArgs(args ir.Object) (topic, content string, err error) {
	if topic, err = argString(args, "topic"); err != nil {
		return "", "", err
	}
	if content, err = argString(args, "content"); err != nil {
		return "", "", err
	}
	return topic, content, nil
}
