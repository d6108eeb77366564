package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/quantumauth-io/quantum-wallet-rpc/internal/jsonrpc"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/rpcerr"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/shared"
)

// maxRPCBody caps forwarded JSON-RPC payloads.
const maxRPCBody = 1 << 20

type Handler struct {
	svc *jsonrpc.Service
}

func NewHandler(svc *jsonrpc.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Health(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// GET /networks/:coin
func (h *Handler) ListNetworks(c *gin.Context) {
	ct, ok := coinParam(c)
	if !ok {
		return
	}
	hidden := h.svc.GetHiddenNetworks(ct)
	if hidden == nil {
		hidden = []string{}
	}
	c.JSON(http.StatusOK, networksRes{
		Networks: h.svc.GetAllNetworks(ct),
		Current:  h.svc.GetChainIDForOrigin(ct, requestOrigin(c)),
		Hidden:   hidden,
	})
}

// POST /networks/:coin/select
func (h *Handler) SelectNetwork(c *gin.Context) {
	ct, ok := coinParam(c)
	if !ok {
		return
	}
	var req selectNetworkReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, JSONRPCErrorCodeInvalidRequest, err.Error())
		return
	}
	origin := req.Origin
	if origin == "" {
		origin = requestOrigin(c)
	}
	selected, err := h.svc.SetNetwork(c.Request.Context(), req.ChainID, ct, origin)
	if err != nil {
		log.Error("http: select network", "coin", ct.String(), "chainId", req.ChainID, "error", err)
		writeRPCError(c, rpcerr.Internal(ct))
		return
	}
	c.JSON(http.StatusOK, gin.H{JSONKeySelected: selected})
}

// POST /networks/:coin/add
func (h *Handler) AddNetwork(c *gin.Context) {
	ct, ok := coinParam(c)
	if !ok {
		return
	}
	var n shared.NetworkInfo
	if err := c.ShouldBindJSON(&n); err != nil {
		writeError(c, http.StatusBadRequest, JSONRPCErrorCodeInvalidRequest, HTTPErrorInvalidJSONText)
		return
	}
	n.Coin = ct
	chainID, err := h.svc.AddChain(c.Request.Context(), n)
	if err != nil {
		writeRPCError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{JSONKeyChainID: chainID})
}

// DELETE /networks/:coin/:chainId
func (h *Handler) RemoveNetwork(c *gin.Context) {
	ct, ok := coinParam(c)
	if !ok {
		return
	}
	if err := h.svc.RemoveChain(c.Request.Context(), c.Param(ParamChainID), ct); err != nil {
		log.Error("http: remove network", "coin", ct.String(), "error", err)
		writeRPCError(c, rpcerr.Internal(ct))
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) HideNetwork(c *gin.Context) {
	ct, ok := coinParam(c)
	if !ok {
		return
	}
	if err := h.svc.AddHiddenNetwork(c.Request.Context(), ct, c.Param(ParamChainID)); err != nil {
		writeRPCError(c, rpcerr.Internal(ct))
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) UnhideNetwork(c *gin.Context) {
	ct, ok := coinParam(c)
	if !ok {
		return
	}
	if err := h.svc.RemoveHiddenNetwork(c.Request.Context(), ct, c.Param(ParamChainID)); err != nil {
		writeRPCError(c, rpcerr.Internal(ct))
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /rpc/:coin/:chainId forwards the body unchanged and returns the
// node's result.
func (h *Handler) Forward(c *gin.Context) {
	ct, ok := coinParam(c)
	if !ok {
		return
	}
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxRPCBody+1))
	if err != nil || len(body) > maxRPCBody || !json.Valid(body) {
		writeError(c, http.StatusBadRequest, JSONRPCErrorCodeInvalidRequest, HTTPErrorInvalidJSONText)
		return
	}
	res, err := h.svc.Request(c.Request.Context(), ct, c.Param(ParamChainID), body)
	if err != nil {
		writeRPCError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{JSONKeyResult: res})
}

// GET /balance/:coin/:chainId/:address
func (h *Handler) Balance(c *gin.Context) {
	ct, ok := coinParam(c)
	if !ok {
		return
	}
	bal, err := h.svc.GetBalance(c.Request.Context(), c.Param(ParamAddress), ct, c.Param(ParamChainID))
	if err != nil {
		writeRPCError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{JSONKeyBalance: bal})
}

// POST /reset
func (h *Handler) Reset(c *gin.Context) {
	if err := h.svc.Reset(c.Request.Context()); err != nil {
		log.Error("http: reset", "error", err)
		writeError(c, http.StatusInternalServerError, JSONRPCErrorCodeInternalError, rpcerr.MsgInternalError)
		return
	}
	c.JSON(http.StatusOK, gin.H{JSONKeyOK: true})
}
