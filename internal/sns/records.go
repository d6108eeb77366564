package sns

import (
	"bytes"
	"crypto/ed25519"
	"encoding/binary"
	"encoding/hex"

	"github.com/cockroachdb/errors"

	"github.com/quantumauth-io/quantum-wallet-rpc/internal/solana"
)

// NameRegistryHeaderSize is parent, owner and class, 32 bytes each.
const NameRegistryHeaderSize = 96

var ErrShortAccount = errors.New("sns: account data too short")

// NameRegistry is the fixed header of every name service account.
type NameRegistry struct {
	Parent solana.PublicKey
	Owner  solana.PublicKey
	Class  solana.PublicKey
	Data   []byte
}

func ParseNameRegistry(b []byte) (NameRegistry, error) {
	if len(b) < NameRegistryHeaderSize {
		return NameRegistry{}, ErrShortAccount
	}
	var r NameRegistry
	copy(r.Parent[:], b[0:32])
	copy(r.Owner[:], b[32:64])
	copy(r.Class[:], b[64:96])
	r.Data = b[NameRegistryHeaderSize:]
	return r, nil
}

// Validation is the v2 staleness or right of association scheme.
type Validation uint16

const (
	ValidationNone Validation = iota
	ValidationSolana
	ValidationEthereum
	ValidationUnverifiedSolana
)

// idLength is the size of the id that follows the header for v.
func (v Validation) idLength() (int, bool) {
	switch v {
	case ValidationNone:
		return 0, true
	case ValidationSolana, ValidationUnverifiedSolana:
		return 32, true
	case ValidationEthereum:
		return 20, true
	}
	return 0, false
}

const recordV2HeaderSize = 8

// RecordDataV2 is a v2 record after the registry header:
// staleness u16, roa u16, content length u32, staleness id, roa id, content.
type RecordDataV2 struct {
	Staleness   Validation
	Roa         Validation
	StalenessID []byte
	RoaID       []byte
	Content     []byte
}

func ParseRecordV2(data []byte) (RecordDataV2, error) {
	if len(data) < recordV2HeaderSize {
		return RecordDataV2{}, ErrShortAccount
	}
	r := RecordDataV2{
		Staleness: Validation(binary.LittleEndian.Uint16(data[0:2])),
		Roa:       Validation(binary.LittleEndian.Uint16(data[2:4])),
	}
	contentLen := int(binary.LittleEndian.Uint32(data[4:8]))
	sLen, ok := r.Staleness.idLength()
	if !ok {
		return RecordDataV2{}, errors.Newf("sns: unknown staleness validation %d", r.Staleness)
	}
	rLen, ok := r.Roa.idLength()
	if !ok {
		return RecordDataV2{}, errors.Newf("sns: unknown roa validation %d", r.Roa)
	}
	rest := data[recordV2HeaderSize:]
	if len(rest) < sLen+rLen+contentLen {
		return RecordDataV2{}, ErrShortAccount
	}
	r.StalenessID = rest[:sLen]
	r.RoaID = rest[sLen : sLen+rLen]
	r.Content = rest[sLen+rLen : sLen+rLen+contentLen]
	return r, nil
}

// IsStale reports whether the record was not written by the current owner.
// Only solana-signed staleness ids are trusted.
func (r RecordDataV2) IsStale(owner solana.PublicKey) bool {
	return r.Staleness != ValidationSolana || !bytes.Equal(r.StalenessID, owner.Bytes())
}

// SolAddress returns the content of a SOL record whose right of association
// was signed by the address itself.
func (r RecordDataV2) SolAddress() (solana.PublicKey, bool) {
	var pk solana.PublicKey
	if len(r.Content) != len(pk) {
		return pk, false
	}
	if r.Roa != ValidationSolana || !bytes.Equal(r.RoaID, r.Content) {
		return pk, false
	}
	copy(pk[:], r.Content)
	return pk, true
}

const recordV1SolSize = 32 + ed25519.SignatureSize

// VerifySolRecordV1 checks a v1 SOL record: the 32 byte destination followed
// by the owner's signature over hex(destination || record key).
func VerifySolRecordV1(data []byte, recordKey, owner solana.PublicKey) (solana.PublicKey, bool) {
	var dest solana.PublicKey
	if len(data) < recordV1SolSize {
		return dest, false
	}
	copy(dest[:], data[:32])
	sig := data[32:recordV1SolSize]
	msg := SolRecordV1Message(dest, recordKey)
	if !ed25519.Verify(ed25519.PublicKey(owner.Bytes()), msg, sig) {
		return dest, false
	}
	return dest, true
}

// SolRecordV1Message is the text the domain owner signs for a v1 SOL record.
func SolRecordV1Message(dest, recordKey solana.PublicKey) []byte {
	buf := make([]byte, 0, 64)
	buf = append(buf, dest.Bytes()...)
	buf = append(buf, recordKey.Bytes()...)
	return []byte(hex.EncodeToString(buf))
}

// recordString trims the zero padding of v1 string records.
func recordString(b []byte) string {
	return string(bytes.TrimRight(b, "\x00"))
}

// mint layout of the SPL token program
const (
	mintSize         = 82
	mintSupplyOffset = 36
)

func mintSupply(data []byte) (uint64, bool) {
	if len(data) < mintSize {
		return 0, false
	}
	return binary.LittleEndian.Uint64(data[mintSupplyOffset : mintSupplyOffset+8]), true
}
