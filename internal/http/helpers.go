package http

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/quantumauth-io/quantum-wallet-rpc/internal/coin"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/rpcerr"
)

func isLoopbackRequest(r *http.Request) bool {
	ra := r.RemoteAddr

	h, _, err := net.SplitHostPort(ra)
	if err != nil {
		ip := net.ParseIP(ra)
		return ip != nil && ip.IsLoopback()
	}
	ip := net.ParseIP(h)
	return ip != nil && ip.IsLoopback()
}

func isSafeLocalHost(hostport string) bool {
	host := hostport
	if h, _, err := net.SplitHostPort(hostport); err == nil {
		host = h
	}
	host = strings.Trim(strings.ToLower(host), "[]")
	return host == "127.0.0.1" || host == "localhost" || host == "::1"
}

func normalizeOrigin(in string) string {
	in = strings.TrimSpace(in)
	if in == "" {
		return ""
	}
	u, err := url.Parse(in)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return fmt.Sprintf("%s://%s", strings.ToLower(u.Scheme), strings.ToLower(u.Host))
}

// requestOrigin is the site a request acts for: the query parameter, then
// OriginHeader. Empty means the wallet itself.
func requestOrigin(c *gin.Context) string {
	if o := c.Query(QueryOrigin); o != "" {
		return o
	}
	return c.GetHeader(OriginHeader)
}

func coinParam(c *gin.Context) (coin.Type, bool) {
	t, err := coin.ParseType(c.Param(ParamCoin))
	if err != nil {
		writeError(c, http.StatusBadRequest, JSONRPCErrorCodeInvalidParams, HTTPErrorUnknownCoinText)
		return 0, false
	}
	return t, true
}

func writeError(c *gin.Context, status, code int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{JSONKeyError: msg, JSONKeyCode: code})
}

// writeRPCError maps a provider error to an HTTP status and writes its code
// and message. Anything else is reported as an internal error.
func writeRPCError(c *gin.Context, err error) {
	code, msg, ok := rpcerr.Details(err)
	if !ok {
		writeError(c, http.StatusInternalServerError, JSONRPCErrorCodeInternalError, rpcerr.MsgInternalError)
		return
	}
	writeError(c, statusForCode(code), code, msg)
}

func statusForCode(code int) int {
	switch code {
	case JSONRPCErrorCodeInvalidParams, JSONRPCErrorCodeInvalidRequest:
		return http.StatusBadRequest
	case int(rpcerr.ProviderUserRejectedRequest):
		return http.StatusForbidden
	case int(rpcerr.ProviderUnknownChain):
		return http.StatusNotFound
	case int(rpcerr.ProviderMethodNotSupported), int(rpcerr.ProviderMethodNotFound):
		return http.StatusNotImplemented
	default:
		return http.StatusBadGateway
	}
}
