package rpcerr

import "strconv"

// ProviderError is the Ethereum provider error taxonomy (EIP-1193 + JSON-RPC).
type ProviderError int

const (
	ProviderSuccess             ProviderError = 0
	ProviderUserRejectedRequest ProviderError = 4001
	ProviderUnauthorized        ProviderError = 4100
	ProviderUnsupportedMethod   ProviderError = 4200
	ProviderDisconnected        ProviderError = 4900
	ProviderChainDisconnected   ProviderError = 4901
	ProviderUnknownChain        ProviderError = 4902
	ProviderParsingError        ProviderError = -32700
	ProviderInvalidRequest      ProviderError = -32600
	ProviderMethodNotFound      ProviderError = -32601
	ProviderInvalidParams       ProviderError = -32602
	ProviderInternalError       ProviderError = -32603
	ProviderInvalidInput        ProviderError = -32000
	ProviderResourceNotFound    ProviderError = -32001
	ProviderResourceUnavailable ProviderError = -32002
	ProviderTransactionRejected ProviderError = -32003
	ProviderMethodNotSupported  ProviderError = -32004
	ProviderLimitExceeded       ProviderError = -32005
)

var providerNames = map[ProviderError]string{
	ProviderSuccess:             "Success",
	ProviderUserRejectedRequest: "UserRejectedRequest",
	ProviderUnauthorized:        "Unauthorized",
	ProviderUnsupportedMethod:   "UnsupportedMethod",
	ProviderDisconnected:        "Disconnected",
	ProviderChainDisconnected:   "ChainDisconnected",
	ProviderUnknownChain:        "UnknownChain",
	ProviderParsingError:        "ParsingError",
	ProviderInvalidRequest:      "InvalidRequest",
	ProviderMethodNotFound:      "MethodNotFound",
	ProviderInvalidParams:       "InvalidParams",
	ProviderInternalError:       "InternalError",
	ProviderInvalidInput:        "InvalidInput",
	ProviderResourceNotFound:    "ResourceNotFound",
	ProviderResourceUnavailable: "ResourceUnavailable",
	ProviderTransactionRejected: "TransactionRejected",
	ProviderMethodNotSupported:  "MethodNotSupported",
	ProviderLimitExceeded:       "LimitExceeded",
}

func (c ProviderError) String() string {
	if s, ok := providerNames[c]; ok {
		return s
	}
	return "ProviderError(" + strconv.Itoa(int(c)) + ")"
}

func (c ProviderError) known() bool {
	_, ok := providerNames[c]
	return ok
}

// SolanaProviderError is the Solana provider error taxonomy.
type SolanaProviderError int

const (
	SolanaSuccess             SolanaProviderError = 0
	SolanaUserRejectedRequest SolanaProviderError = 4001
	SolanaUnauthorized        SolanaProviderError = 4100
	SolanaUnsupportedMethod   SolanaProviderError = 4200
	SolanaDisconnected        SolanaProviderError = 4900
	SolanaParsingError        SolanaProviderError = -32700
	SolanaInvalidRequest      SolanaProviderError = -32600
	SolanaMethodNotFound      SolanaProviderError = -32601
	SolanaInvalidParams       SolanaProviderError = -32602
	SolanaInternalError       SolanaProviderError = -32603
	SolanaLimitExceeded       SolanaProviderError = -32005

	// SolanaAccountNotCreated is never sent by a node; the solana client
	// derives it from "could not find account" responses.
	SolanaAccountNotCreated SolanaProviderError = 1
)

var solanaNames = map[SolanaProviderError]string{
	SolanaSuccess:             "Success",
	SolanaUserRejectedRequest: "UserRejectedRequest",
	SolanaUnauthorized:        "Unauthorized",
	SolanaUnsupportedMethod:   "UnsupportedMethod",
	SolanaDisconnected:        "Disconnected",
	SolanaParsingError:        "ParsingError",
	SolanaInvalidRequest:      "InvalidRequest",
	SolanaMethodNotFound:      "MethodNotFound",
	SolanaInvalidParams:       "InvalidParams",
	SolanaInternalError:       "InternalError",
	SolanaLimitExceeded:       "LimitExceeded",
	SolanaAccountNotCreated:   "AccountNotCreated",
}

func (c SolanaProviderError) String() string {
	if s, ok := solanaNames[c]; ok {
		return s
	}
	return "SolanaProviderError(" + strconv.Itoa(int(c)) + ")"
}

func (c SolanaProviderError) known() bool {
	_, ok := solanaNames[c]
	return ok && c != SolanaAccountNotCreated
}

// FilecoinProviderError is the Filecoin provider error taxonomy.
type FilecoinProviderError int

const (
	FilecoinSuccess             FilecoinProviderError = 0
	FilecoinUserRejectedRequest FilecoinProviderError = 4001
	FilecoinParsingError        FilecoinProviderError = -32700
	FilecoinInvalidRequest      FilecoinProviderError = -32600
	FilecoinMethodNotFound      FilecoinProviderError = -32601
	FilecoinInvalidParams       FilecoinProviderError = -32602
	FilecoinInternalError       FilecoinProviderError = -32603
	FilecoinLimitExceeded       FilecoinProviderError = -32005

	// FilecoinActorNotFound is derived from the message of lotus errors, which
	// all share code 1.
	FilecoinActorNotFound FilecoinProviderError = 1
)

var filecoinNames = map[FilecoinProviderError]string{
	FilecoinSuccess:             "Success",
	FilecoinUserRejectedRequest: "UserRejectedRequest",
	FilecoinParsingError:        "ParsingError",
	FilecoinInvalidRequest:      "InvalidRequest",
	FilecoinMethodNotFound:      "MethodNotFound",
	FilecoinInvalidParams:       "InvalidParams",
	FilecoinInternalError:       "InternalError",
	FilecoinLimitExceeded:       "LimitExceeded",
	FilecoinActorNotFound:       "ActorNotFound",
}

func (c FilecoinProviderError) String() string {
	if s, ok := filecoinNames[c]; ok {
		return s
	}
	return "FilecoinProviderError(" + strconv.Itoa(int(c)) + ")"
}

func (c FilecoinProviderError) known() bool {
	_, ok := filecoinNames[c]
	return ok && c != FilecoinActorNotFound
}
