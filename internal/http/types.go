package http

import (
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/prefs"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/shared"
)

type selectNetworkReq struct {
	ChainID string `json:"chainId" binding:"required"`
	Origin  string `json:"origin"`
}

type networksRes struct {
	Networks []shared.NetworkInfo `json:"networks"`
	Current  string               `json:"current"`
	Hidden   []string             `json:"hidden"`
}

type addChainForOriginReq struct {
	Origin  string             `json:"origin"  binding:"required"`
	Network shared.NetworkInfo `json:"network"`
}

type addChainCompletedReq struct {
	ChainID  string `json:"chainId" binding:"required"`
	Approved bool   `json:"approved"`
}

type switchChainReq struct {
	ChainID string `json:"chainId" binding:"required"`
	Origin  string `json:"origin"  binding:"required"`
}

type switchChainProcessedReq struct {
	Origin   string `json:"origin" binding:"required"`
	Approved bool   `json:"approved"`
}

// resolveMethodsReq updates the non-empty fields only.
type resolveMethodsReq struct {
	Ens         string `json:"ens"`
	EnsOffchain string `json:"ensOffchain"`
	Ud          string `json:"ud"`
	Sns         string `json:"sns"`
}

type resolveMethodsRes = prefs.ResolveMethods
