package http

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/quantumauth-io/quantum-wallet-rpc/internal/coin"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/ens"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/prefs"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/ud"
)

func ensOptions(c *gin.Context) *ens.Options {
	raw, ok := c.GetQuery(QueryAllowOffchain)
	if !ok {
		return nil
	}
	allow, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	remember, _ := strconv.ParseBool(c.Query(QueryRemember))
	return &ens.Options{AllowOffchain: &allow, Remember: remember}
}

func writeURL(c *gin.Context, u *url.URL) {
	s := ""
	if u != nil {
		s = u.String()
	}
	c.JSON(http.StatusOK, gin.H{JSONKeyURL: s})
}

// GET /ens/:domain/addr?allowOffchain=&remember=
func (h *Handler) EnsAddr(c *gin.Context) {
	res, err := h.svc.EnsGetEthAddr(c.Request.Context(), c.Param(ParamDomain), ensOptions(c))
	if err != nil {
		writeRPCError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /ens/:domain/contenthash?allowOffchain=&remember=
func (h *Handler) EnsContentHash(c *gin.Context) {
	res, err := h.svc.EnsGetContentHash(c.Request.Context(), c.Param(ParamDomain), ensOptions(c))
	if err != nil {
		writeRPCError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /ud/:domain/addr?symbol=&chainId=&coin=
func (h *Handler) UdAddr(c *gin.Context) {
	token := ud.Token{Symbol: c.Query(QuerySymbol), ChainID: c.Query(QueryChainID), Coin: coin.ETH}
	if raw := c.Query(QueryCoin); raw != "" {
		ct, err := coin.ParseType(raw)
		if err != nil {
			writeError(c, http.StatusBadRequest, JSONRPCErrorCodeInvalidParams, HTTPErrorUnknownCoinText)
			return
		}
		token.Coin = ct
	}
	addr, err := h.svc.UnstoppableDomainsGetWalletAddr(c.Request.Context(), c.Param(ParamDomain), token)
	if err != nil {
		writeRPCError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{JSONKeyAddress: addr})
}

// GET /ud/:domain/dns
func (h *Handler) UdDns(c *gin.Context) {
	u, err := h.svc.UnstoppableDomainsResolveDns(c.Request.Context(), c.Param(ParamDomain))
	if err != nil {
		writeRPCError(c, err)
		return
	}
	writeURL(c, u)
}

// GET /sns/:domain/addr
func (h *Handler) SnsAddr(c *gin.Context) {
	addr, err := h.svc.SnsGetSolAddr(c.Request.Context(), c.Param(ParamDomain))
	if err != nil {
		writeRPCError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{JSONKeyAddress: addr})
}

// GET /sns/:domain/host
func (h *Handler) SnsHost(c *gin.Context) {
	u, err := h.svc.SnsResolveHost(c.Request.Context(), c.Param(ParamDomain))
	if err != nil {
		writeRPCError(c, err)
		return
	}
	writeURL(c, u)
}

func (h *Handler) GetResolveMethods(c *gin.Context) {
	c.JSON(http.StatusOK, resolveMethodsRes(h.svc.ResolveMethods()))
}

// PUT /resolve-methods
func (h *Handler) SetResolveMethods(c *gin.Context) {
	var req resolveMethodsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, JSONRPCErrorCodeInvalidRequest, HTTPErrorInvalidJSONText)
		return
	}
	ctx := c.Request.Context()
	setters := []struct {
		raw string
		set func(prefs.ResolveMethod) error
	}{
		{req.Ens, func(m prefs.ResolveMethod) error { return h.svc.SetEnsResolveMethod(ctx, m) }},
		{req.EnsOffchain, func(m prefs.ResolveMethod) error { return h.svc.SetEnsOffchainResolveMethod(ctx, m) }},
		{req.Ud, func(m prefs.ResolveMethod) error { return h.svc.SetUnstoppableDomainsResolveMethod(ctx, m) }},
		{req.Sns, func(m prefs.ResolveMethod) error { return h.svc.SetSnsResolveMethod(ctx, m) }},
	}
	// validate everything before writing anything
	methods := make([]prefs.ResolveMethod, len(setters))
	for i, s := range setters {
		if s.raw == "" {
			continue
		}
		m, err := prefs.ParseResolveMethod(s.raw)
		if err != nil {
			writeError(c, http.StatusBadRequest, JSONRPCErrorCodeInvalidParams, err.Error())
			return
		}
		methods[i] = m
	}
	for i, s := range setters {
		if methods[i] == "" {
			continue
		}
		if err := s.set(methods[i]); err != nil {
			writeError(c, http.StatusInternalServerError, JSONRPCErrorCodeInternalError, err.Error())
			return
		}
	}
	c.JSON(http.StatusOK, resolveMethodsRes(h.svc.ResolveMethods()))
}
