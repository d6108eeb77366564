package eth

import (
	"bytes"
	"context"
	"math/big"
	"net/url"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/quantumauth-io/quantum-wallet-rpc/internal/coin"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/coingecko"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/encoding"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/rpcerr"
)

// ERC-165 interface ids.
const (
	ERC721InterfaceID          = "0x80ac58cd"
	ERC721MetadataInterfaceID  = "0x5b5e139f"
	ERC1155InterfaceID         = "0xd9b67a26"
	ERC1155MetadataInterfaceID = "0x0e89341c"
)

type TokenInfo struct {
	Contract    string `json:"contractAddress"`
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Decimals    uint8  `json:"decimals"`
	IsErc20     bool   `json:"isErc20"`
	CoingeckoID string `json:"coingeckoId,omitempty"`
	ChainID     string `json:"chainId"`
}

func parseTokenID(tokenID string) (*big.Int, bool) {
	v, err := encoding.HexToUint256(tokenID)
	if err != nil {
		return nil, false
	}
	return v.ToBig(), true
}

func parseInterfaceID(id string) ([4]byte, bool) {
	var out [4]byte
	b, err := encoding.HexToBytes(id)
	if err != nil || len(b) != 4 || len(id) != 10 {
		return out, false
	}
	copy(out[:], b)
	return out, true
}

// uint256Result checks the return data is a uint256 and hands it back as the
// hex string the node sent.
func (c *Client) uint256Result(ctx context.Context, chainID, contract, data string) (string, error) {
	s, err := c.Call(ctx, chainID, callTo(contract, data), BlockLatest)
	if err != nil {
		return "", err
	}
	b, err := encoding.HexToBytes(s)
	if err != nil {
		return "", rpcerr.Parsing(coin.ETH)
	}
	if _, err := encoding.DecodeUint256(b); err != nil {
		return "", rpcerr.Parsing(coin.ETH)
	}
	return s, nil
}

// GetERC20TokenBalance returns balanceOf(owner) as the node's hex word.
func (c *Client) GetERC20TokenBalance(ctx context.Context, chainID, contract, owner string) (string, error) {
	if !encoding.IsValidEthAddress(contract) || !encoding.IsValidEthAddress(owner) || chainID == "" {
		return "", rpcerr.InvalidParams(coin.ETH)
	}
	if _, err := c.endpoint(chainID); err != nil {
		return "", err
	}
	data, err := encoding.EncodeCallHex("balanceOf(address)", []string{"address"}, common.HexToAddress(owner))
	if err != nil {
		return "", rpcerr.InvalidParams(coin.ETH)
	}
	return c.uint256Result(ctx, chainID, contract, data)
}

func (c *Client) GetERC20TokenAllowance(ctx context.Context, chainID, contract, owner, spender string) (string, error) {
	if !encoding.IsValidEthAddress(contract) || !encoding.IsValidEthAddress(owner) || !encoding.IsValidEthAddress(spender) {
		return "", rpcerr.InvalidParams(coin.ETH)
	}
	data, err := encoding.EncodeCallHex("allowance(address,address)", []string{"address", "address"},
		common.HexToAddress(owner), common.HexToAddress(spender))
	if err != nil {
		return "", rpcerr.InvalidParams(coin.ETH)
	}
	return c.uint256Result(ctx, chainID, contract, data)
}

// GetERC721OwnerOf returns the checksummed owner of tokenID (hex).
func (c *Client) GetERC721OwnerOf(ctx context.Context, chainID, contract, tokenID string) (string, error) {
	id, ok := parseTokenID(tokenID)
	if !encoding.IsValidEthAddress(contract) || !ok {
		return "", rpcerr.InvalidParams(coin.ETH)
	}
	data, err := encoding.EncodeCallHex("ownerOf(uint256)", []string{"uint256"}, id)
	if err != nil {
		return "", rpcerr.InvalidParams(coin.ETH)
	}
	b, err := c.contractCall(ctx, chainID, contract, data)
	if err != nil {
		return "", err
	}
	addr, err := encoding.DecodeAddress(b)
	if err != nil {
		return "", rpcerr.Parsing(coin.ETH)
	}
	return addr.Hex(), nil
}

// GetERC721TokenBalance is "0x1" when account owns tokenID, "0x0" otherwise.
func (c *Client) GetERC721TokenBalance(ctx context.Context, chainID, contract, tokenID, account string) (string, error) {
	if !encoding.IsValidEthAddress(account) {
		return "", rpcerr.InvalidParams(coin.ETH)
	}
	owner, err := c.GetERC721OwnerOf(ctx, chainID, contract, tokenID)
	if err != nil {
		return "", err
	}
	if encoding.SameAddress(owner, account) {
		return "0x1", nil
	}
	return "0x0", nil
}

func (c *Client) GetERC1155TokenBalance(ctx context.Context, chainID, contract, tokenID, owner string) (string, error) {
	id, ok := parseTokenID(tokenID)
	if !encoding.IsValidEthAddress(contract) || !encoding.IsValidEthAddress(owner) || !ok {
		return "", rpcerr.InvalidParams(coin.ETH)
	}
	data, err := encoding.EncodeCallHex("balanceOf(address,uint256)", []string{"address", "uint256"},
		common.HexToAddress(owner), id)
	if err != nil {
		return "", rpcerr.InvalidParams(coin.ETH)
	}
	return c.uint256Result(ctx, chainID, contract, data)
}

// GetSupportsInterface asks contract for ERC-165 support of interfaceID.
func (c *Client) GetSupportsInterface(ctx context.Context, chainID, contract, interfaceID string) (bool, error) {
	iid, ok := parseInterfaceID(interfaceID)
	if !encoding.IsValidEthAddress(contract) || !ok {
		return false, rpcerr.InvalidParams(coin.ETH)
	}
	data, err := encoding.EncodeCallHex("supportsInterface(bytes4)", []string{"bytes4"}, iid)
	if err != nil {
		return false, rpcerr.InvalidParams(coin.ETH)
	}
	b, err := c.contractCall(ctx, chainID, contract, data)
	if err != nil {
		return false, err
	}
	v, err := encoding.DecodeBool(b)
	if err != nil {
		return false, rpcerr.Parsing(coin.ETH)
	}
	return v, nil
}

// GetEthNftStandard probes interfaces in order and returns the first one the
// contract supports, nil when none is. A failing probe counts as unsupported.
func (c *Client) GetEthNftStandard(ctx context.Context, chainID, contract string, interfaces []string) (*string, error) {
	if !encoding.IsValidEthAddress(contract) {
		return nil, rpcerr.InvalidParams(coin.ETH)
	}
	if _, err := c.endpoint(chainID); err != nil {
		return nil, err
	}
	for _, id := range interfaces {
		if _, ok := parseInterfaceID(id); !ok {
			return nil, rpcerr.InvalidParams(coin.ETH)
		}
	}
	for _, id := range interfaces {
		ok, err := c.GetSupportsInterface(ctx, chainID, contract, id)
		if err != nil {
			if ctx.Err() != nil {
				return nil, rpcerr.Internal(coin.ETH)
			}
			continue
		}
		if ok {
			found := id
			return &found, nil
		}
	}
	return nil, nil
}

// GetEthTokenURI reads the metadata URI of tokenID. interfaceID picks the
// standard: ERC721 tokenURI(uint256) or ERC1155 uri(uint256). The contract
// must advertise the metadata interface.
func (c *Client) GetEthTokenURI(ctx context.Context, chainID, contract, tokenID, interfaceID string) (*url.URL, error) {
	id, ok := parseTokenID(tokenID)
	if !encoding.IsValidEthAddress(contract) || !ok {
		return nil, rpcerr.InvalidParams(coin.ETH)
	}

	var sig string
	switch strings.ToLower(interfaceID) {
	case ERC721MetadataInterfaceID:
		sig = "tokenURI(uint256)"
	case ERC1155MetadataInterfaceID:
		sig = "uri(uint256)"
	default:
		return nil, rpcerr.InvalidParams(coin.ETH)
	}
	if _, err := c.endpoint(chainID); err != nil {
		return nil, err
	}

	supported, err := c.GetSupportsInterface(ctx, chainID, contract, interfaceID)
	if err != nil {
		return nil, err
	}
	if !supported {
		return nil, rpcerr.Eth(rpcerr.ProviderMethodNotSupported, rpcerr.MsgMethodNotSupported)
	}

	data, err := encoding.EncodeCallHex(sig, []string{"uint256"}, id)
	if err != nil {
		return nil, rpcerr.InvalidParams(coin.ETH)
	}
	b, err := c.contractCall(ctx, chainID, contract, data)
	if err != nil {
		return nil, err
	}
	raw, err := encoding.DecodeString(b)
	if err != nil {
		return nil, rpcerr.Parsing(coin.ETH)
	}
	if sig == "uri(uint256)" {
		raw = expandERC1155ID(raw, id)
	}
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" {
		return nil, rpcerr.Parsing(coin.ETH)
	}
	return u, nil
}

// expandERC1155ID substitutes the {id} placeholder with the zero padded,
// lowercase hex token id.
func expandERC1155ID(uri string, id *big.Int) string {
	if !strings.Contains(uri, "{id}") {
		return uri
	}
	hex := strings.TrimPrefix(encoding.ToHex(encoding.PadLeft32(id.Bytes())), "0x")
	return strings.ReplaceAll(uri, "{id}", hex)
}

// GetEthTokenSymbol handles both string and bytes32 symbol() returns.
func (c *Client) GetEthTokenSymbol(ctx context.Context, chainID, contract string) (string, error) {
	return c.stringProperty(ctx, chainID, contract, "symbol()")
}

func (c *Client) GetEthTokenName(ctx context.Context, chainID, contract string) (string, error) {
	return c.stringProperty(ctx, chainID, contract, "name()")
}

func (c *Client) GetEthTokenDecimals(ctx context.Context, chainID, contract string) (uint8, error) {
	if !encoding.IsValidEthAddress(contract) {
		return 0, rpcerr.InvalidParams(coin.ETH)
	}
	b, err := c.contractCall(ctx, chainID, contract, encoding.SelectorHex("decimals()"))
	if err != nil {
		return 0, err
	}
	v, err := encoding.DecodeUint256(b)
	if err != nil || !v.IsUint64() || v.Uint64() > 255 {
		return 0, rpcerr.Parsing(coin.ETH)
	}
	return uint8(v.Uint64()), nil
}

func (c *Client) stringProperty(ctx context.Context, chainID, contract, sig string) (string, error) {
	if !encoding.IsValidEthAddress(contract) {
		return "", rpcerr.InvalidParams(coin.ETH)
	}
	b, err := c.contractCall(ctx, chainID, contract, encoding.SelectorHex(sig))
	if err != nil {
		return "", err
	}
	if s, err := encoding.DecodeString(b); err == nil {
		return s, nil
	}
	if len(b) == 32 {
		return string(bytes.TrimRight(b, "\x00")), nil
	}
	return "", rpcerr.Parsing(coin.ETH)
}

// GetEthTokenInfo fetches symbol, name and decimals one after the other. A
// field that fails keeps its zero value; only bad input or an unknown chain
// fail the call.
func (c *Client) GetEthTokenInfo(ctx context.Context, chainID, contract string) (TokenInfo, error) {
	if !encoding.IsValidEthAddress(contract) {
		return TokenInfo{}, rpcerr.InvalidParams(coin.ETH)
	}
	if _, err := c.endpoint(chainID); err != nil {
		return TokenInfo{}, err
	}

	info := TokenInfo{Contract: encoding.ToChecksumAddress(contract), ChainID: chainID}
	symbol, symErr := c.GetEthTokenSymbol(ctx, chainID, contract)
	if symErr == nil {
		info.Symbol = symbol
	}
	if name, err := c.GetEthTokenName(ctx, chainID, contract); err == nil {
		info.Name = name
	}
	decimals, decErr := c.GetEthTokenDecimals(ctx, chainID, contract)
	if decErr == nil {
		info.Decimals = decimals
	}
	info.IsErc20 = symErr == nil && decErr == nil
	if id, ok := coingecko.GetCoingeckoID(chainID, contract); ok {
		info.CoingeckoID = id
	}
	return info, nil
}
