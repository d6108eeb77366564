package encoding

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// IsValidEthAddress reports whether s is a 0x-prefixed 20 byte hex address.
func IsValidEthAddress(s string) bool {
	return strings.HasPrefix(s, "0x") && common.IsHexAddress(s)
}

// ToChecksumAddress returns the EIP-55 form of a valid address, "" otherwise.
func ToChecksumAddress(s string) string {
	if !IsValidEthAddress(s) {
		return ""
	}
	return common.HexToAddress(s).Hex()
}

func IsZeroAddress(a common.Address) bool {
	return a == (common.Address{})
}

// SameAddress compares two hex addresses case-insensitively.
func SameAddress(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
