package coin

import (
	"fmt"
	"strconv"
	"strings"
)

// Type is the SLIP-44 coin type of a chain family.
type Type int

const (
	ETH Type = 60
	FIL Type = 461
	SOL Type = 501
)

func All() []Type {
	return []Type{ETH, SOL, FIL}
}

func (t Type) String() string {
	switch t {
	case ETH:
		return "ETH"
	case SOL:
		return "SOL"
	case FIL:
		return "FIL"
	default:
		return "coin(" + strconv.Itoa(int(t)) + ")"
	}
}

func (t Type) Valid() bool {
	switch t {
	case ETH, SOL, FIL:
		return true
	}
	return false
}

// ParseType accepts the ticker ("eth", "SOL") or the numeric coin type ("60").
func ParseType(s string) (Type, error) {
	s = strings.TrimSpace(s)
	switch strings.ToUpper(s) {
	case "ETH":
		return ETH, nil
	case "SOL":
		return SOL, nil
	case "FIL":
		return FIL, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		if t := Type(n); t.Valid() {
			return t, nil
		}
	}
	return 0, fmt.Errorf("coin: unknown coin type %q", s)
}

func (t Type) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("coin: cannot marshal %s", t)
	}
	return []byte(t.String()), nil
}

func (t *Type) UnmarshalText(b []byte) error {
	v, err := ParseType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}
