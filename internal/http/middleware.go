package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quantumauth-io/quantum-go-utils/log"
)

// loopbackOnly refuses peers that are not on a loopback address and Host
// headers that do not name the local machine (DNS rebinding).
func loopbackOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !isLoopbackRequest(c.Request) {
			log.Warn("http: non loopback peer refused", "remote", c.Request.RemoteAddr)
			writeError(c, http.StatusForbidden, JSONRPCErrorCodeInvalidRequest, HTTPErrorForbiddenText)
			return
		}
		if !isSafeLocalHost(c.Request.Host) {
			writeError(c, http.StatusForbidden, JSONRPCErrorCodeInvalidRequest, HTTPErrorForbiddenHost)
			return
		}
		c.Next()
	}
}
