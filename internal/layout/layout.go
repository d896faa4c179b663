// Package layout computes fixed record sizes and encodes records into them.
//
// Every record is allocated once at its worst-case size and never resized:
// an 8-byte discriminator, then fixed-width fields, then each text field as
// a u32 little-endian byte length followed by a budget of MaxBytesPerChar
// bytes per allowed scalar value. Shorter text leaves zero bytes at the tail.
package layout

import (
	"crypto/sha256"
	"errors"
)

// Field widths in bytes.
const (
	DiscriminatorLength = 8
	PublicKeyLength     = 32
	TimestampLength     = 8
	StringLengthPrefix  = 4

	// MaxBytesPerChar is the widest UTF-8 encoding of one scalar value.
	MaxBytesPerChar = 4
)

// Semantic text limits, counted in Unicode scalar values.
const (
	MaxTopicChars   = 50
	MaxContentChars = 280

	MaxTopicLength   = MaxTopicChars * MaxBytesPerChar
	MaxContentLength = MaxContentChars * MaxBytesPerChar
)

// Record sizes.
const (
	PostSize = DiscriminatorLength +
		PublicKeyLength + // author
		TimestampLength + // timestamp
		StringLengthPrefix + MaxTopicLength + // topic
		StringLengthPrefix + MaxContentLength // content

	ProfileSize = DiscriminatorLength +
		PublicKeyLength + // linked asset
		PublicKeyLength // owner
)

// Account type names hashed into discriminators.
const (
	PostAccountName    = "Tweet"
	ProfileAccountName = "User"
)

var (
	// ErrDiscriminatorMismatch is returned when decoding bytes that belong
	// to another record kind.
	ErrDiscriminatorMismatch = errors.New("account discriminator mismatch")

	// ErrSizeMismatch is returned when a buffer is not the record's fixed size.
	ErrSizeMismatch = errors.New("record size mismatch")

	// ErrFieldOverflow is returned when a text field exceeds its byte budget.
	ErrFieldOverflow = errors.New("field exceeds its byte budget")
)

// Discriminator is the first 8 bytes of SHA256("account:" + name).
type Discriminator [DiscriminatorLength]byte

// DiscriminatorFor computes the discriminator for an account type name.
func DiscriminatorFor(name string) Discriminator {
	sum := sha256.Sum256([]byte("account:" + name))
	var d Discriminator
	copy(d[:], sum[:DiscriminatorLength])
	return d
}

var (
	postDiscriminator    = DiscriminatorFor(PostAccountName)
	profileDiscriminator = DiscriminatorFor(ProfileAccountName)
)

// Kind names the record kind stored in data by its discriminator.
// Returns "" for unknown or short data.
func Kind(data []byte) string {
	if len(data) < DiscriminatorLength {
		return ""
	}
	var d Discriminator
	copy(d[:], data)
	switch d {
	case postDiscriminator:
		return PostAccountName
	case profileDiscriminator:
		return ProfileAccountName
	default:
		return ""
	}
}
