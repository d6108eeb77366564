// Package rpcerr holds the typed provider error taxonomies, one closed enum
// per coin family, and the mapping from JSON-RPC error objects into them.
package rpcerr

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/quantumauth-io/quantum-wallet-rpc/internal/coin"
)

const (
	MsgInternalError      = "An internal error has occurred"
	MsgParsingError       = "Parsing error"
	MsgInvalidParams      = "Invalid parameters"
	MsgUnknownChain       = "Unknown chain"
	MsgInProgress         = "A request is already in progress"
	MsgChainExists        = "The chain already exists"
	MsgUserRejected       = "The user rejected the request"
	MsgDomainNotFound     = "Domain not found"
	MsgMethodNotSupported = "Method not supported"
)

// Code is implemented by the three provider error enums.
type Code interface {
	~int
	String() string
}

// Error is a provider error of one coin family.
type Error[C Code] struct {
	Code    C
	Message string
}

func (e *Error[C]) Error() string {
	if e.Message == "" {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Int returns the numeric code as sent on the wire.
func (e *Error[C]) Int() int { return int(e.Code) }

func (e *Error[C]) ErrorMessage() string { return e.Message }

func Eth(code ProviderError, msg string) *Error[ProviderError] {
	return &Error[ProviderError]{Code: code, Message: msg}
}

func Sol(code SolanaProviderError, msg string) *Error[SolanaProviderError] {
	return &Error[SolanaProviderError]{Code: code, Message: msg}
}

func Fil(code FilecoinProviderError, msg string) *Error[FilecoinProviderError] {
	return &Error[FilecoinProviderError]{Code: code, Message: msg}
}

// CodeOf extracts the code of a family from anywhere in err's chain.
func CodeOf[C Code](err error) (C, bool) {
	var e *Error[C]
	if errors.As(err, &e) {
		return e.Code, true
	}
	var zero C
	return zero, false
}

// Details returns the wire code and message of any provider error in err's chain.
func Details(err error) (int, string, bool) {
	var coded interface {
		Int() int
		ErrorMessage() string
	}
	if errors.As(err, &coded) {
		return coded.Int(), coded.ErrorMessage(), true
	}
	return 0, "", false
}

// FromCode maps a JSON-RPC error object into the family enum of c. Codes
// outside the closed enum become an internal error that keeps the message.
func FromCode(c coin.Type, code int, msg string) error {
	switch c {
	case coin.SOL:
		sc := SolanaProviderError(code)
		if !sc.known() {
			sc = SolanaInternalError
		}
		return Sol(sc, msg)
	case coin.FIL:
		if strings.Contains(strings.ToLower(msg), "actor not found") {
			return Fil(FilecoinActorNotFound, msg)
		}
		fc := FilecoinProviderError(code)
		if !fc.known() {
			fc = FilecoinInternalError
		}
		return Fil(fc, msg)
	default:
		pc := ProviderError(code)
		if !pc.known() {
			pc = ProviderInternalError
		}
		return Eth(pc, msg)
	}
}

func Internal(c coin.Type) error {
	return FromCode(c, -32603, MsgInternalError)
}

func Parsing(c coin.Type) error {
	return FromCode(c, -32700, MsgParsingError)
}

func InvalidParams(c coin.Type) error {
	return FromCode(c, -32602, MsgInvalidParams)
}

func UserRejected(c coin.Type, msg string) error {
	return FromCode(c, 4001, msg)
}

// Is reports whether err carries the given wire code for any family.
func Is(err error, code int) bool {
	got, _, ok := Details(err)
	return ok && got == code
}
