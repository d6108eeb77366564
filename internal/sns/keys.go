package sns

import (
	"crypto/sha256"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/quantumauth-io/quantum-wallet-rpc/internal/solana"
)

// Program and account ids of the name service.
var (
	NameServiceProgramID   = solana.MustPublicKey("namesLPneVptA9Z5rqUDD9tMTWEJwofgaYwp8cawRkX")
	RootDomainAccount      = solana.MustPublicKey("58PwtjSDuFHuUkYjH9BYnnQKHfwo9reZhC2zMJv9JPkx")
	NameTokenizerProgramID = solana.MustPublicKey("nftD3vbNkNqfj2Sd3HZwbpw4BxxKWr4AjGb9X38JeZk")
	RecordsCentralState    = solana.MustPublicKey("2pMnqHvei2N5oDcVGCRdZx48gqti199wr5CsyTTafsbo")
)

const hashPrefix = "SPL Name Service"

// Record names.
const (
	RecordSOL  = "SOL"
	RecordURL  = "url"
	RecordIPFS = "IPFS"
)

type RecordVersion byte

const (
	RecordV1 RecordVersion = 1
	RecordV2 RecordVersion = 2
)

func hashedName(name string) []byte {
	h := sha256.Sum256([]byte(hashPrefix + name))
	return h[:]
}

// NameAccountKey derives the registry account of name under parent. Zero
// class or parent keys are seeded as 32 zero bytes.
func NameAccountKey(name string, class, parent solana.PublicKey) (solana.PublicKey, error) {
	seeds := [][]byte{hashedName(name), class.Bytes(), parent.Bytes()}
	key, _, err := solana.FindProgramAddress(seeds, NameServiceProgramID)
	return key, err
}

// DomainKey derives the registry account of "name.sol" or "sub.name.sol".
func DomainKey(domain string) (solana.PublicKey, error) {
	labels := strings.Split(strings.TrimSuffix(domain, ".sol"), ".")
	switch len(labels) {
	case 1:
		return NameAccountKey(labels[0], solana.PublicKey{}, RootDomainAccount)
	case 2:
		parent, err := NameAccountKey(labels[1], solana.PublicKey{}, RootDomainAccount)
		if err != nil {
			return solana.PublicKey{}, err
		}
		return NameAccountKey("\x00"+labels[0], solana.PublicKey{}, parent)
	}
	return solana.PublicKey{}, errors.Newf("sns: unsupported domain depth %q", domain)
}

// RecordKey derives the account of a record of the domain at domainKey.
// V2 records live under the records central state class.
func RecordKey(domainKey solana.PublicKey, record string, v RecordVersion) (solana.PublicKey, error) {
	var class solana.PublicKey
	if v == RecordV2 {
		class = RecordsCentralState
	}
	return NameAccountKey(string([]byte{byte(v)})+record, class, domainKey)
}

// TokenizedMint derives the NFT mint a domain is wrapped into.
func TokenizedMint(domainKey solana.PublicKey) (solana.PublicKey, error) {
	key, _, err := solana.FindProgramAddress([][]byte{[]byte("tokenized_name"), domainKey.Bytes()}, NameTokenizerProgramID)
	return key, err
}
