package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(h *Handler, allowedOrigins []string) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:  allowedOrigins,
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", OriginHeader},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        corsMaxAge,
	}))
	r.Use(loopbackOnly())

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	networks := r.Group("/networks/:coin")
	{
		networks.GET("", h.ListNetworks)
		networks.POST("/select", h.SelectNetwork)
		networks.POST("/add", h.AddNetwork)
		networks.DELETE("/:chainId", h.RemoveNetwork)
		networks.POST("/:chainId/hidden", h.HideNetwork)
		networks.DELETE("/:chainId/hidden", h.UnhideNetwork)
	}

	r.POST("/rpc/:coin/:chainId", h.Forward)
	r.GET("/balance/:coin/:chainId/:address", h.Balance)

	r.GET("/ens/:domain/addr", h.EnsAddr)
	r.GET("/ens/:domain/contenthash", h.EnsContentHash)
	r.GET("/ud/:domain/addr", h.UdAddr)
	r.GET("/ud/:domain/dns", h.UdDns)
	r.GET("/sns/:domain/addr", h.SnsAddr)
	r.GET("/sns/:domain/host", h.SnsHost)
	r.GET("/resolve-methods", h.GetResolveMethods)
	r.PUT("/resolve-methods", h.SetResolveMethods)

	r.GET("/add-chain", h.PendingAddChain)
	r.POST("/add-chain", h.AddChainForOrigin)
	r.POST("/add-chain/completed", h.AddChainCompleted)

	r.GET("/switch-chain", h.PendingSwitchChain)
	r.POST("/switch-chain", h.SwitchChain)
	r.POST("/switch-chain/processed", h.SwitchChainProcessed)

	r.POST("/reset", h.Reset)

	return r
}
