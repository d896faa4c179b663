package program

import (
	"errors"
	"fmt"
)

// Error is a typed, caller-facing program error. Two errors are equal under
// errors.Is when their codes match, regardless of Detail.
type Error struct {
	Code    int
	Name    string
	Message string

	// Detail carries per-occurrence context, e.g. the offending length.
	Detail string
}

// Error codes. The first three match the on-ledger program.
const (
	CodeTopicTooLong                 = 6000
	CodeContentTooLong               = 6001
	CodeForbidden                    = 6002
	CodeNotFound                     = 6003
	CodeAlreadyExists                = 6004
	CodeAssetUnchanged               = 6005
	CodeSeedTooLong                  = 6006
	CodeInsufficientFunds            = 6007
	CodeAccountDiscriminatorMismatch = 6008
	CodeInvalidArgument              = 6009
)

var (
	ErrTopicTooLong = &Error{Code: CodeTopicTooLong, Name: "TopicTooLong",
		Message: "The provided topic should be 50 characters long maximum."}
	ErrContentTooLong = &Error{Code: CodeContentTooLong, Name: "ContentTooLong",
		Message: "The provided content should be 280 characters long maximum."}
	ErrForbidden = &Error{Code: CodeForbidden, Name: "Forbidden",
		Message: "Forbidden"}
	ErrNotFound = &Error{Code: CodeNotFound, Name: "NotFound",
		Message: "The target account does not exist."}
	ErrAlreadyExists = &Error{Code: CodeAlreadyExists, Name: "AlreadyExists",
		Message: "The target account is already in use."}
	ErrAssetUnchanged = &Error{Code: CodeAssetUnchanged, Name: "AssetUnchanged",
		Message: "A profile must link a non-zero asset."}
	ErrSeedTooLong = &Error{Code: CodeSeedTooLong, Name: "SeedTooLong",
		Message: "The nonce exceeds the maximum seed length."}
	ErrInsufficientFunds = &Error{Code: CodeInsufficientFunds, Name: "InsufficientFunds",
		Message: "The payer cannot cover the account deposit."}
	ErrAccountDiscriminatorMismatch = &Error{Code: CodeAccountDiscriminatorMismatch, Name: "AccountDiscriminatorMismatch",
		Message: "The account does not hold the expected record kind."}
	ErrInvalidArgument = &Error{Code: CodeInvalidArgument, Name: "InvalidArgument",
		Message: "An instruction argument is missing or malformed."}
)

var byCode = map[int]*Error{}

func init() {
	for _, e := range []*Error{
		ErrTopicTooLong, ErrContentTooLong, ErrForbidden, ErrNotFound,
		ErrAlreadyExists, ErrAssetUnchanged, ErrSeedTooLong,
		ErrInsufficientFunds, ErrAccountDiscriminatorMismatch, ErrInvalidArgument,
	} {
		byCode[e.Code] = e
	}
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (%d): %s: %s", e.Name, e.Code, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s (%d): %s", e.Name, e.Code, e.Message)
}

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// With returns a copy of e carrying detail.
func (e *Error) With(format string, args ...any) *Error {
	c := *e
	c.Detail = fmt.Sprintf(format, args...)
	return &c
}

// ErrorForCode returns the error registered for code, or nil.
func ErrorForCode(code int) *Error {
	return byCode[code]
}

// AsError extracts a program error from err's chain.
func AsError(err error) (*Error, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
