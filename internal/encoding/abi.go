package encoding

import (
	"bytes"
	"math/big"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var ErrShortData = errors.New("encoding: abi data too short")

// Selector returns the 4 byte function selector of a canonical signature
// such as "balanceOf(address)".
func Selector(signature string) []byte {
	return crypto.Keccak256([]byte(signature))[:4]
}

func SelectorHex(signature string) string {
	return ToHex(Selector(signature))
}

// Arguments builds an abi tuple from solidity type names.
func Arguments(types ...string) (abi.Arguments, error) {
	args := make(abi.Arguments, 0, len(types))
	for _, t := range types {
		typ, err := abi.NewType(t, "", nil)
		if err != nil {
			return nil, errors.Wrapf(err, "encoding: abi type %q", t)
		}
		args = append(args, abi.Argument{Type: typ})
	}
	return args, nil
}

// EncodeCall packs values as the tuple described by types and prefixes the selector.
func EncodeCall(selector []byte, types []string, values ...any) ([]byte, error) {
	if len(selector) != 4 {
		return nil, errors.Newf("encoding: selector must be 4 bytes, got %d", len(selector))
	}
	args, err := Arguments(types...)
	if err != nil {
		return nil, err
	}
	packed, err := args.Pack(values...)
	if err != nil {
		return nil, errors.Wrap(err, "encoding: abi pack")
	}
	out := make([]byte, 0, 4+len(packed))
	out = append(out, selector...)
	return append(out, packed...), nil
}

// EncodeCallHex is EncodeCall returning 0x-prefixed hex, ready for eth_call.
func EncodeCallHex(signature string, types []string, values ...any) (string, error) {
	b, err := EncodeCall(Selector(signature), types, values...)
	if err != nil {
		return "", err
	}
	return ToHex(b), nil
}

// Decode unpacks data as the tuple described by types.
func Decode(data []byte, types ...string) ([]any, error) {
	if len(types) > 0 && len(data) < 32 {
		return nil, ErrShortData
	}
	args, err := Arguments(types...)
	if err != nil {
		return nil, err
	}
	out, err := args.Unpack(data)
	if err != nil {
		return nil, errors.Wrap(err, "encoding: abi unpack")
	}
	if len(out) != len(types) {
		return nil, errors.Newf("encoding: abi unpack returned %d values, want %d", len(out), len(types))
	}
	return out, nil
}

func decodeOne[T any](data []byte, typ string) (T, error) {
	var zero T
	out, err := Decode(data, typ)
	if err != nil {
		return zero, err
	}
	v, ok := out[0].(T)
	if !ok {
		return zero, errors.Newf("encoding: unexpected %s value %T", typ, out[0])
	}
	return v, nil
}

func DecodeUint256(data []byte) (*big.Int, error) {
	return decodeOne[*big.Int](data, "uint256")
}

func DecodeAddress(data []byte) (common.Address, error) {
	return decodeOne[common.Address](data, "address")
}

func DecodeBool(data []byte) (bool, error) {
	return decodeOne[bool](data, "bool")
}

func DecodeString(data []byte) (string, error) {
	return decodeOne[string](data, "string")
}

func DecodeBytes(data []byte) ([]byte, error) {
	return decodeOne[[]byte](data, "bytes")
}

func DecodeStringArray(data []byte) ([]string, error) {
	return decodeOne[[]string](data, "string[]")
}

// OffchainLookupSelector is the selector of
// OffchainLookup(address,string[],bytes,bytes4,bytes).
var OffchainLookupSelector = Selector("OffchainLookup(address,string[],bytes,bytes4,bytes)")

// OffchainLookup is the EIP-3668 revert payload.
type OffchainLookup struct {
	Sender           common.Address
	URLs             []string
	CallData         []byte
	CallbackFunction [4]byte
	ExtraData        []byte
}

// DecodeOffchainLookup decodes revert data that starts with the
// OffchainLookup selector.
func DecodeOffchainLookup(data []byte) (*OffchainLookup, error) {
	if len(data) < 4 || !bytes.Equal(data[:4], OffchainLookupSelector) {
		return nil, errors.New("encoding: not an OffchainLookup revert")
	}
	out, err := Decode(data[4:], "address", "string[]", "bytes", "bytes4", "bytes")
	if err != nil {
		return nil, err
	}
	ol := &OffchainLookup{}
	var ok bool
	if ol.Sender, ok = out[0].(common.Address); !ok {
		return nil, errors.New("encoding: OffchainLookup sender")
	}
	if ol.URLs, ok = out[1].([]string); !ok {
		return nil, errors.New("encoding: OffchainLookup urls")
	}
	if ol.CallData, ok = out[2].([]byte); !ok {
		return nil, errors.New("encoding: OffchainLookup callData")
	}
	if ol.CallbackFunction, ok = out[3].([4]byte); !ok {
		return nil, errors.New("encoding: OffchainLookup callbackFunction")
	}
	if ol.ExtraData, ok = out[4].([]byte); !ok {
		return nil, errors.New("encoding: OffchainLookup extraData")
	}
	return ol, nil
}
