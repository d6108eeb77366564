package ens

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
	"github.com/ipfs/go-cid"
)

// EIP-1577 namespace codes.
const (
	codecIPFS = 0xe3
	codecIPNS = 0xe5
)

// ContentHashToURL converts an EIP-1577 content hash into an ipfs:// or
// ipns:// URL. Other namespaces (swarm, onion) are not supported.
func ContentHashToURL(hash []byte) (string, error) {
	ns, n := binary.Uvarint(hash)
	if n <= 0 {
		return "", errors.New("ens: malformed contenthash namespace")
	}
	var scheme string
	switch ns {
	case codecIPFS:
		scheme = "ipfs://"
	case codecIPNS:
		scheme = "ipns://"
	default:
		return "", errors.Newf("ens: unsupported contenthash namespace 0x%x", ns)
	}
	c, err := cid.Cast(hash[n:])
	if err != nil {
		return "", errors.Wrap(err, "ens: contenthash cid")
	}
	if c.Version() == 0 {
		c = cid.NewCidV1(cid.DagProtobuf, c.Hash())
	}
	return scheme + c.String(), nil
}
