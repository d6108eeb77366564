package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quantumauth-io/quantum-wallet-rpc/internal/coin"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/jsonrpc"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/rpcerr"
)

// GET /add-chain
func (h *Handler) PendingAddChain(c *gin.Context) {
	pending := h.svc.GetPendingAddChainRequests()
	if pending == nil {
		pending = []jsonrpc.AddChainRequest{}
	}
	c.JSON(http.StatusOK, gin.H{JSONKeyPending: pending})
}

// POST /add-chain queues a site's wallet_addEthereumChain.
func (h *Handler) AddChainForOrigin(c *gin.Context) {
	var req addChainForOriginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, JSONRPCErrorCodeInvalidRequest, HTTPErrorInvalidJSONText)
		return
	}
	req.Network.Coin = coin.ETH
	if err := h.svc.AddEthereumChainForOrigin(c.Request.Context(), req.Network, req.Origin); err != nil {
		writeRPCError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{JSONKeyChainID: req.Network.ChainID})
}

// POST /add-chain/completed
func (h *Handler) AddChainCompleted(c *gin.Context) {
	var req addChainCompletedReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, JSONRPCErrorCodeInvalidRequest, HTTPErrorInvalidJSONText)
		return
	}
	h.svc.AddEthereumChainRequestCompleted(c.Request.Context(), req.ChainID, req.Approved)
	c.JSON(http.StatusOK, gin.H{JSONKeyOK: true})
}

// GET /switch-chain
func (h *Handler) PendingSwitchChain(c *gin.Context) {
	pending := h.svc.GetPendingSwitchChainRequests()
	if pending == nil {
		pending = []jsonrpc.SwitchChainRequest{}
	}
	c.JSON(http.StatusOK, gin.H{JSONKeyPending: pending})
}

// POST /switch-chain blocks until the request is approved or rejected, or
// the caller goes away. The request stays pending in the latter case.
func (h *Handler) SwitchChain(c *gin.Context) {
	var req switchChainReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, JSONRPCErrorCodeInvalidRequest, HTTPErrorInvalidJSONText)
		return
	}
	ctx := c.Request.Context()
	done, err := h.svc.AddSwitchEthereumChainRequest(ctx, req.ChainID, req.Origin)
	if err != nil {
		writeRPCError(c, err)
		return
	}
	if done == nil {
		c.JSON(http.StatusOK, gin.H{JSONKeyOK: true, JSONKeyChainID: req.ChainID})
		return
	}
	select {
	case err := <-done:
		if err != nil {
			writeRPCError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{JSONKeyOK: true, JSONKeyChainID: req.ChainID})
	case <-ctx.Done():
		writeRPCError(c, rpcerr.Internal(coin.ETH))
	}
}

// POST /switch-chain/processed
func (h *Handler) SwitchChainProcessed(c *gin.Context) {
	var req switchChainProcessedReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, JSONRPCErrorCodeInvalidRequest, HTTPErrorInvalidJSONText)
		return
	}
	if err := h.svc.NotifySwitchChainRequestProcessed(c.Request.Context(), req.Approved, req.Origin); err != nil {
		writeRPCError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{JSONKeyOK: true})
}
