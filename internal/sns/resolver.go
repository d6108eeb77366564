// Package sns resolves Solana Name Service domains to wallet addresses and
// browsable URLs.
package sns

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/quantumauth-io/quantum-wallet-rpc/internal/coin"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/ipfs"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/networks"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/rpcerr"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/shared"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/solana"
)

var domainRegex = regexp.MustCompile(`^(?:[a-z0-9-]+\.){1,2}sol$`)

func IsValidSnsDomain(domain string) bool {
	return domainRegex.MatchString(domain)
}

// tokenAccountSize is the SPL token account layout: mint, owner, amount...
const (
	tokenAccountSize        = 165
	tokenAccountOwnerOffset = 32
	tokenAccountAmountOff   = 64
)

type Resolver struct {
	client  *solana.Client
	chainID string
	addrs   *shared.Flight[string]
	hosts   *shared.Flight[*url.URL]
}

func NewResolver(client *solana.Client) *Resolver {
	return &Resolver{
		client:  client,
		chainID: networks.SolanaMainnet,
		addrs:   &shared.Flight[string]{Coin: coin.SOL},
		hosts:   &shared.Flight[*url.URL]{Coin: coin.SOL},
	}
}

func domainNotFound() error {
	return rpcerr.Sol(rpcerr.SolanaInvalidParams, rpcerr.MsgDomainNotFound)
}

// lookup holds what one resolution has learned so far.
type lookup struct {
	r         *Resolver
	domain    string
	domainKey solana.PublicKey
	owner     solana.PublicKey
	nftOwner  *solana.PublicKey
}

func (r *Resolver) newLookup(domain string) (*lookup, error) {
	if !IsValidSnsDomain(domain) {
		return nil, rpcerr.InvalidParams(coin.SOL)
	}
	key, err := DomainKey(domain)
	if err != nil {
		return nil, rpcerr.InvalidParams(coin.SOL)
	}
	return &lookup{r: r, domain: domain, domainKey: key}, nil
}

func (l *lookup) account(ctx context.Context, key solana.PublicKey) (*solana.AccountInfo, error) {
	return l.r.client.GetAccountInfo(ctx, l.r.chainID, key.String())
}

// fetchOwner reads the domain registry. A missing registry means the domain
// is not registered.
func (l *lookup) fetchOwner(ctx context.Context) error {
	info, err := l.account(ctx, l.domainKey)
	if err != nil {
		return err
	}
	if info == nil {
		return domainNotFound()
	}
	reg, err := ParseNameRegistry(info.Data)
	if err != nil {
		return rpcerr.Parsing(coin.SOL)
	}
	l.owner = reg.Owner
	return nil
}

// fetchNftOwner sets nftOwner when the domain is wrapped into an NFT with
// supply 1 that some token account holds.
func (l *lookup) fetchNftOwner(ctx context.Context) error {
	mint, err := TokenizedMint(l.domainKey)
	if err != nil {
		return rpcerr.Internal(coin.SOL)
	}
	info, err := l.account(ctx, mint)
	if err != nil {
		return err
	}
	if info == nil {
		return nil
	}
	supply, ok := mintSupply(info.Data)
	if !ok || supply != 1 {
		return nil
	}
	accounts, err := l.r.client.GetProgramAccounts(ctx, l.r.chainID, solana.TokenProgramID,
		solana.DataSizeFilter(tokenAccountSize),
		solana.MemcmpFilter(0, mint),
		// base58 of the single byte 0x01: an amount of one
		solana.Filter{Memcmp: &solana.Memcmp{Offset: tokenAccountAmountOff, Bytes: "2"}},
	)
	if err != nil {
		return err
	}
	for _, acc := range accounts {
		data := acc.Account.Data
		if len(data) < tokenAccountOwnerOffset+32 {
			continue
		}
		var owner solana.PublicKey
		copy(owner[:], data[tokenAccountOwnerOffset:tokenAccountOwnerOffset+32])
		l.nftOwner = &owner
		return nil
	}
	return nil
}

// effectiveOwner is the NFT holder for tokenized domains.
func (l *lookup) effectiveOwner() solana.PublicKey {
	if l.nftOwner != nil {
		return *l.nftOwner
	}
	return l.owner
}

// record fetches the registry of a record. nil without error means absent
// or malformed, which callers treat as no record.
func (l *lookup) record(ctx context.Context, name string, v RecordVersion) (*NameRegistry, solana.PublicKey, error) {
	key, err := RecordKey(l.domainKey, name, v)
	if err != nil {
		return nil, key, rpcerr.Internal(coin.SOL)
	}
	info, err := l.account(ctx, key)
	if err != nil {
		return nil, key, err
	}
	if info == nil {
		return nil, key, nil
	}
	reg, err := ParseNameRegistry(info.Data)
	if err != nil {
		return nil, key, nil
	}
	return &reg, key, nil
}

func (l *lookup) solRecordV2(ctx context.Context) (*solana.PublicKey, error) {
	reg, _, err := l.record(ctx, RecordSOL, RecordV2)
	if err != nil || reg == nil {
		return nil, err
	}
	rec, err := ParseRecordV2(reg.Data)
	if err != nil || rec.IsStale(l.effectiveOwner()) {
		return nil, nil
	}
	addr, ok := rec.SolAddress()
	if !ok {
		return nil, nil
	}
	return &addr, nil
}

func (l *lookup) solRecordV1(ctx context.Context) (*solana.PublicKey, error) {
	reg, key, err := l.record(ctx, RecordSOL, RecordV1)
	if err != nil || reg == nil {
		return nil, err
	}
	addr, ok := VerifySolRecordV1(reg.Data, key, l.owner)
	if !ok {
		return nil, nil
	}
	return &addr, nil
}

// GetSolAddr resolves the wallet of domain: the NFT holder of a tokenized
// domain, else a valid v2 SOL record, else a signed v1 SOL record, else the
// registry owner. Only RPC failures are terminal.
func (r *Resolver) GetSolAddr(ctx context.Context, domain string) (string, error) {
	l, err := r.newLookup(domain)
	if err != nil {
		return "", err
	}
	return r.addrs.Do(ctx, domain, func(ctx context.Context) (string, error) {
		if err := l.fetchNftOwner(ctx); err != nil {
			return "", err
		}
		if l.nftOwner != nil {
			return l.nftOwner.String(), nil
		}
		if err := l.fetchOwner(ctx); err != nil {
			return "", err
		}
		for _, step := range []func(context.Context) (*solana.PublicKey, error){l.solRecordV2, l.solRecordV1} {
			addr, err := step(ctx)
			if err != nil {
				return "", err
			}
			if addr != nil {
				return addr.String(), nil
			}
		}
		return l.owner.String(), nil
	})
}

func parseURLRecord(s string) (*url.URL, bool) {
	s = strings.TrimSpace(s)
	u, err := url.Parse(s)
	if err != nil || u.Host == "" || (u.Scheme != "https" && u.Scheme != "http") {
		return nil, false
	}
	return u, true
}

func parseIPFSRecord(s string) (*url.URL, bool) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "ipfs://") {
		s = strings.TrimPrefix(s, "ipfs://")
	}
	c, path, _ := strings.Cut(s, "/")
	return ipfs.ContentURL(c, path)
}

func (l *lookup) hostRecord(ctx context.Context, name string, v RecordVersion) (*url.URL, error) {
	reg, _, err := l.record(ctx, name, v)
	if err != nil || reg == nil {
		return nil, err
	}
	var content string
	if v == RecordV2 {
		rec, err := ParseRecordV2(reg.Data)
		if err != nil || rec.IsStale(l.effectiveOwner()) {
			return nil, nil
		}
		content = string(rec.Content)
	} else {
		content = recordString(reg.Data)
	}
	parse := parseURLRecord
	if name == RecordIPFS {
		parse = parseIPFSRecord
	}
	if u, ok := parse(content); ok {
		return u, nil
	}
	return nil, nil
}

// ResolveHost resolves the URL of domain from the v2 url, v2 IPFS, v1 url
// then v1 IPFS record. nil without error means no usable record.
func (r *Resolver) ResolveHost(ctx context.Context, domain string) (*url.URL, error) {
	l, err := r.newLookup(domain)
	if err != nil {
		return nil, err
	}
	return r.hosts.Do(ctx, domain, func(ctx context.Context) (*url.URL, error) {
		if err := l.fetchOwner(ctx); err != nil {
			return nil, err
		}
		if err := l.fetchNftOwner(ctx); err != nil {
			return nil, err
		}
		order := []struct {
			name string
			v    RecordVersion
		}{
			{RecordURL, RecordV2}, {RecordIPFS, RecordV2}, {RecordURL, RecordV1}, {RecordIPFS, RecordV1},
		}
		for _, o := range order {
			u, err := l.hostRecord(ctx, o.name, o.v)
			if err != nil {
				return nil, err
			}
			if u != nil {
				return u, nil
			}
		}
		return nil, nil
	})
}
