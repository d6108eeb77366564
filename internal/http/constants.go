package http

import "time"

// Generic HTTP / JSON strings
const (
	HTTPErrorInvalidJSONText = "invalid JSON"
	HTTPErrorForbiddenText   = "forbidden"
	HTTPErrorForbiddenHost   = "forbidden host"
	HTTPErrorUnknownCoinText = "unknown coin"
)

// Common JSON keys
const (
	JSONKeyOK       = "ok"
	JSONKeyError    = "error"
	JSONKeyCode     = "code"
	JSONKeyResult   = "result"
	JSONKeyChainID  = "chainId"
	JSONKeyNetworks = "networks"
	JSONKeyCurrent  = "current"
	JSONKeyPending  = "pending"
	JSONKeyAddress  = "address"
	JSONKeyURL      = "url"
	JSONKeyBalance  = "balance"
	JSONKeySelected = "selected"
)

// Route params and query keys
const (
	ParamCoin    = "coin"
	ParamChainID = "chainId"
	ParamDomain  = "domain"
	ParamAddress = "address"

	QueryOrigin        = "origin"
	QuerySymbol        = "symbol"
	QueryChainID       = "chainId"
	QueryCoin          = "coin"
	QueryAllowOffchain = "allowOffchain"
	QueryRemember      = "remember"
)

// OriginHeader lets a local caller act on behalf of a site origin. The CORS
// Origin header is used when it is absent.
const OriginHeader = "X-Wallet-Origin"

// JSON-RPC error codes (EIP-1474 style)
const (
	JSONRPCErrorCodeInvalidRequest = -32600
	JSONRPCErrorCodeInvalidParams  = -32602
	JSONRPCErrorCodeInternalError  = -32603
)

const corsMaxAge = 10 * time.Minute
