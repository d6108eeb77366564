package encoding

import (
	"encoding/base64"

	"github.com/btcsuite/btcd/btcutil/base58"
)

const SolanaPubkeySize = 32

func Base58Encode(b []byte) string {
	return base58.Encode(b)
}

// Base58Decode decodes s and checks the decoded length when size > 0.
func Base58Decode(s string, size int) ([]byte, bool) {
	if s == "" {
		return nil, false
	}
	b := base58.Decode(s)
	if len(b) == 0 {
		return nil, false
	}
	if size > 0 && len(b) != size {
		return nil, false
	}
	return b, true
}

func IsBase58EncodedSolanaPubkey(s string) bool {
	_, ok := Base58Decode(s, SolanaPubkeySize)
	return ok
}

func IsValidBase64(s string) bool {
	if s == "" {
		return false
	}
	_, err := base64.StdEncoding.DecodeString(s)
	return err == nil
}
