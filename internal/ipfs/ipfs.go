// Package ipfs validates content identifiers and maps ipfs:// and ipns://
// URLs onto an HTTP gateway.
package ipfs

import (
	"net/url"
	"strings"

	"github.com/ipfs/go-cid"

	"github.com/quantumauth-io/quantum-wallet-rpc/internal/constants"
)

func IsValidCID(s string) bool {
	_, err := cid.Decode(s)
	return err == nil
}

// IsIPFSScheme reports ipfs:// and ipns:// URLs.
func IsIPFSScheme(u *url.URL) bool {
	return u != nil && (u.Scheme == "ipfs" || u.Scheme == "ipns")
}

// ContentURL builds ipfs://<cid>[/path] from a bare CID and optional path.
func ContentURL(c string, path string) (*url.URL, bool) {
	if !IsValidCID(c) {
		return nil, false
	}
	u := &url.URL{Scheme: "ipfs", Host: c}
	if path != "" {
		u.Path = "/" + strings.TrimPrefix(path, "/")
	}
	return u, true
}

// ToGatewayURL rewrites ipfs://<cid>/path into <gateway>/ipfs/<cid>/path.
// An empty gateway uses the public default.
func ToGatewayURL(u *url.URL, gateway string) (*url.URL, bool) {
	if !IsIPFSScheme(u) || u.Host == "" {
		return nil, false
	}
	if u.Scheme == "ipfs" && !IsValidCID(u.Host) {
		return nil, false
	}
	if gateway == "" {
		gateway = constants.DefaultIpfsGateway
	}
	g, err := url.Parse(strings.TrimSuffix(gateway, "/"))
	if err != nil || (g.Scheme != "https" && g.Scheme != "http") || g.Host == "" {
		return nil, false
	}
	out := *g
	out.Path = g.Path + "/" + u.Scheme + "/" + u.Host + u.Path
	out.RawQuery = u.RawQuery
	return &out, true
}
