package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quantumauth-io/quantum-go-utils/log"
	"github.com/urfave/cli/v2"

	"github.com/quantumauth-io/quantum-wallet-rpc/internal/coin"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/events"
	wallethttp "github.com/quantumauth-io/quantum-wallet-rpc/internal/http"
)

const shutdownTimeout = 5 * time.Second

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "run the loopback HTTP API",
		Action: serve,
	}
}

func serve(c *cli.Context) error {
	log.Info("quantum-wallet-rpc",
		"version", Version,
		"commit", Commit,
		"build_date", BuildDate,
	)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := openWallet(ctx, c)
	if err != nil {
		return err
	}
	defer w.Close()

	sub := w.svc.Events().Subscribe(events.ObserverFuncs{
		ChainChanged: func(chainID string, ct coin.Type, origin string) {
			log.Info("chain changed", "coin", ct.String(), "chainId", chainID, "origin", origin)
		},
		AddChainCompleted: func(chainID, errMsg string) {
			log.Info("add chain request completed", "chainId", chainID, "error", errMsg)
		},
		IsEip1559Changed: func(chainID string, isEip1559 bool) {
			log.Info("eip1559 support changed", "chainId", chainID, "isEip1559", isEip1559)
		},
	})
	defer sub.Unsubscribe()

	cs := w.cfg.ClientSettings
	addr := net.JoinHostPort(cs.LocalHost, cs.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           wallethttp.NewServer(w.svc, cs.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", "error", err)
		return err
	}
	log.Info("HTTP server gracefully stopped")
	return nil
}
