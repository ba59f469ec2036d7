// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
	"fmt"
)

// Kind classifies why an operation was rejected.
type Kind uint8

const (
	InvalidValue Kind = iota + 1
	Unauthorized
	InvalidAddress
	NoSuchEntity
)

func (k Kind) String() string {
	switch k {
	case InvalidValue:
		return "InvalidValue"
	case Unauthorized:
		return "Unauthorized"
	case InvalidAddress:
		return "InvalidAddress"
	case NoSuchEntity:
		return "NoSuchEntity"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// ErrRevert is a rejected precondition. The operation that returned it left no state change.
type ErrRevert struct {
	kind    Kind
	message string
}

func New(kind Kind, message string) *ErrRevert {
	return &ErrRevert{
		kind:    kind,
		message: message,
	}
}

func Newf(kind Kind, format string, args ...any) *ErrRevert {
	return New(kind, fmt.Sprintf(format, args...))
}

func (e *ErrRevert) Error() string {
	return e.message
}

func (e *ErrRevert) Kind() Kind {
	return e.kind
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

// KindOf returns the kind of a revert found in err's chain.
func KindOf(err error) (Kind, bool) {
	var ve *ErrRevert
	if errors.As(err, &ve) {
		return ve.kind, true
	}
	return 0, false
}

// Is reports whether err is a revert of the given kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
