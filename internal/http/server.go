package http

import (
	"net/http"

	"github.com/quantumauth-io/quantum-wallet-rpc/internal/jsonrpc"
)

// DefaultAllowedOrigins is used when the config names no UI origins.
var DefaultAllowedOrigins = []string{"http://localhost:3000"}

// NewServer returns the loopback API for svc. allowedOrigins are the browser
// origins allowed through CORS.
func NewServer(svc *jsonrpc.Service, allowedOrigins []string) http.Handler {
	origins := make([]string, 0, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o = normalizeOrigin(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = DefaultAllowedOrigins
	}
	return NewRouter(NewHandler(svc), origins)
}
