package main

import (
	"os"

	"github.com/quantumauth-io/quantum-go-utils/log"
	"github.com/urfave/cli/v2"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	app := &cli.App{
		Name:    "quantum-wallet-rpc",
		Usage:   "multi-chain JSON-RPC client and name resolver",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "config.yaml path (default: search ~/.config/quantum-wallet-rpc, ~/config, .)", EnvVars: []string{"QWR_CONFIG"}},
		},
		Commands: []*cli.Command{
			serveCommand(),
			networksCommand(),
			resolveCommand(),
			balanceCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal("quantum-wallet-rpc failed", "error", err)
	}
}
