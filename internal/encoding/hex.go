package encoding

import (
	"encoding/hex"
	"math/big"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

// IsValidHexString reports whether s is "0x" followed by zero or more hex digits.
func IsValidHexString(s string) bool {
	if len(s) < 2 || (s[:2] != "0x" && s[:2] != "0X") {
		return false
	}
	for _, c := range s[2:] {
		if !isHexDigit(c) {
			return false
		}
	}
	return true
}

func isHexDigit(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func ToHex(b []byte) string {
	return hexutil.Encode(b)
}

// HexToBytes decodes a 0x-prefixed hex string. Odd-length input is left padded.
func HexToBytes(s string) ([]byte, error) {
	if !IsValidHexString(s) {
		return nil, errors.Newf("encoding: invalid hex string %q", s)
	}
	s = s[2:]
	if len(s)%2 != 0 {
		s = "0" + s
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(err, "encoding: decode hex")
	}
	return b, nil
}

// HexToUint256 parses a 0x-prefixed quantity, leading zeros allowed.
func HexToUint256(s string) (*uint256.Int, error) {
	if !IsValidHexString(s) || len(s) == 2 {
		return nil, errors.Newf("encoding: invalid hex quantity %q", s)
	}
	n, ok := new(big.Int).SetString(s[2:], 16)
	if !ok {
		return nil, errors.Newf("encoding: invalid hex quantity %q", s)
	}
	v, overflow := uint256.FromBig(n)
	if overflow {
		return nil, errors.Newf("encoding: hex quantity overflows uint256 %q", s)
	}
	return v, nil
}

// HexToUint64 parses a 0x-prefixed quantity that must fit 64 bits.
func HexToUint64(s string) (uint64, error) {
	v, err := HexToUint256(s)
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return 0, errors.Newf("encoding: hex quantity overflows uint64 %q", s)
	}
	return v.Uint64(), nil
}

func Uint256ToHex(v *uint256.Int) string {
	if v == nil {
		return "0x0"
	}
	return v.Hex()
}

func Base10ToUint256(s string) (*uint256.Int, error) {
	v, err := uint256.FromDecimal(strings.TrimSpace(s))
	if err != nil {
		return nil, errors.Wrapf(err, "encoding: invalid decimal %q", s)
	}
	return v, nil
}

// Base10ToHex converts "1234" into "0x4d2".
func Base10ToHex(s string) (string, error) {
	v, err := Base10ToUint256(s)
	if err != nil {
		return "", err
	}
	return v.Hex(), nil
}

// HexToBase10 converts "0x4d2" into "1234".
func HexToBase10(s string) (string, error) {
	v, err := HexToUint256(s)
	if err != nil {
		return "", err
	}
	return v.Dec(), nil
}

// PadLeft32 left pads b with zeros to a 32 byte word.
func PadLeft32(b []byte) []byte {
	if len(b) >= 32 {
		return b
	}
	out := make([]byte, 32)
	copy(out[32-len(b):], b)
	return out
}
