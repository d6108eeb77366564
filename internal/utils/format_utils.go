package utils

import (
	"math/big"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
)

// FormatUnitsTrim converts a base-unit amount to a human string: it divides
// by 10^decimals, truncates to maxFrac decimal places and drops trailing
// zeros.
//
//	amount=1234500000000000000, decimals=18 -> "1.2345"
//	amount=1000000000000000000, decimals=18 -> "1"
//	amount=1, decimals=18, maxFrac=18       -> "0.000000000000000001"
func FormatUnitsTrim(amount *big.Int, decimals uint8, maxFrac int) string {
	if amount == nil || amount.Sign() == 0 {
		return "0"
	}
	if maxFrac < 0 {
		maxFrac = 0
	}
	d := decimal.NewFromBigInt(amount, -int32(decimals)).Truncate(int32(maxFrac))
	return d.String()
}

// ParseUnits is the inverse of FormatUnitsTrim: "1.5" with 18 decimals is
// 1500000000000000000. More fractional digits than decimals is an error.
func ParseUnits(s string, decimals uint8) (*big.Int, error) {
	s = strings.TrimSpace(s)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, errors.Wrapf(err, "utils: parse amount %q", s)
	}
	if d.IsNegative() {
		return nil, errors.Newf("utils: negative amount %q", s)
	}
	scaled := d.Shift(int32(decimals))
	if !scaled.Equal(scaled.Truncate(0)) {
		return nil, errors.Newf("utils: %q has more than %d decimals", s, decimals)
	}
	return scaled.BigInt(), nil
}

// HexToDecimalString renders a 0x quantity (as returned for ETH balances) in
// base 10.
func HexToDecimalString(hex string) (string, error) {
	raw := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(hex), "0x"), "0X")
	if raw == "" {
		return "", errors.Newf("utils: empty quantity %q", hex)
	}
	v, ok := new(big.Int).SetString(raw, 16)
	if !ok {
		return "", errors.Newf("utils: invalid quantity %q", hex)
	}
	return v.String(), nil
}
