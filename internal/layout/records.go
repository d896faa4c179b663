package layout

import (
	"github.com/Calindra/solana-twitter/internal/address"
)

// Post is the stored form of a post record.
type Post struct {
	Author    address.Address
	Timestamp int64
	Topic     string
	Content   string
}

// MarshalBinary encodes p into exactly PostSize bytes.
func (p Post) MarshalBinary() ([]byte, error) {
	w := &writer{buf: make([]byte, PostSize)}
	w.bytes(postDiscriminator[:])
	w.bytes(p.Author[:])
	w.int64(p.Timestamp)
	if err := w.text("topic", p.Topic, MaxTopicLength); err != nil {
		return nil, err
	}
	if err := w.text("content", p.Content, MaxContentLength); err != nil {
		return nil, err
	}
	return w.buf, nil
}

// UnmarshalBinary decodes a PostSize buffer.
func (p *Post) UnmarshalBinary(data []byte) error {
	r, err := header(data, PostSize, postDiscriminator, PostAccountName)
	if err != nil {
		return err
	}
	var out Post
	copy(out.Author[:], r.bytes(PublicKeyLength))
	out.Timestamp = r.int64()
	if out.Topic, err = r.text("topic", MaxTopicLength); err != nil {
		return err
	}
	if out.Content, err = r.text("content", MaxContentLength); err != nil {
		return err
	}
	*p = out
	return nil
}

// Profile is the stored form of a profile record. Field order follows
// the on-ledger layout: linked asset first, then owner.
type Profile struct {
	LinkedAsset address.Address
	Owner       address.Address
}

// MarshalBinary encodes p into exactly ProfileSize bytes.
func (p Profile) MarshalBinary() ([]byte, error) {
	w := &writer{buf: make([]byte, ProfileSize)}
	w.bytes(profileDiscriminator[:])
	w.bytes(p.LinkedAsset[:])
	w.bytes(p.Owner[:])
	return w.buf, nil
}

// UnmarshalBinary decodes a ProfileSize buffer.
func (p *Profile) UnmarshalBinary(data []byte) error {
	r, err := header(data, ProfileSize, profileDiscriminator, ProfileAccountName)
	if err != nil {
		return err
	}
	var out Profile
	copy(out.LinkedAsset[:], r.bytes(PublicKeyLength))
	copy(out.Owner[:], r.bytes(PublicKeyLength))
	*p = out
	return nil
}
