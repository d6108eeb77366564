package main

import (
	"encoding/json"
	"math/big"
	"net/url"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v2"

	"github.com/quantumauth-io/quantum-wallet-rpc/internal/coin"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/ud"
	"github.com/quantumauth-io/quantum-wallet-rpc/internal/utils"
)

const displayDecimals = 6

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func coinFlag() *cli.StringFlag {
	return &cli.StringFlag{Name: "coin", Value: "eth", Usage: "eth, sol or fil"}
}

func parseCoin(c *cli.Context) (coin.Type, error) {
	ct, err := coin.ParseType(c.String("coin"))
	if err != nil {
		return 0, cli.Exit(err.Error(), 2)
	}
	return ct, nil
}

func networksCommand() *cli.Command {
	return &cli.Command{
		Name:  "networks",
		Usage: "inspect configured networks",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "print every network of a coin",
				Flags: []cli.Flag{coinFlag(), &cli.StringFlag{Name: "origin", Usage: "show the chain selected for this site"}},
				Action: func(c *cli.Context) error {
					ct, err := parseCoin(c)
					if err != nil {
						return err
					}
					w, err := openWallet(c.Context, c)
					if err != nil {
						return err
					}
					defer w.Close()
					return printJSON(map[string]any{
						"current":  w.svc.GetChainIDForOrigin(ct, c.String("origin")),
						"networks": w.svc.GetAllNetworks(ct),
					})
				},
			},
		},
	}
}

func resolveCommand() *cli.Command {
	domainArg := func(c *cli.Context) (string, error) {
		if c.NArg() != 1 {
			return "", cli.Exit("expected exactly one domain", 2)
		}
		return c.Args().First(), nil
	}
	return &cli.Command{
		Name:  "resolve",
		Usage: "resolve a decentralized name",
		Subcommands: []*cli.Command{
			{
				Name:      "ens",
				ArgsUsage: "<name.eth>",
				Flags:     []cli.Flag{&cli.BoolFlag{Name: "contenthash", Usage: "resolve the content hash instead of the address"}},
				Action: func(c *cli.Context) error {
					domain, err := domainArg(c)
					if err != nil {
						return err
					}
					w, err := openWallet(c.Context, c)
					if err != nil {
						return err
					}
					defer w.Close()
					if c.Bool("contenthash") {
						res, err := w.svc.EnsGetContentHash(c.Context, domain, nil)
						if err != nil {
							return err
						}
						return printJSON(res)
					}
					res, err := w.svc.EnsGetEthAddr(c.Context, domain, nil)
					if err != nil {
						return err
					}
					return printJSON(res)
				},
			},
			{
				Name:      "ud",
				ArgsUsage: "<name.crypto>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "symbol", Usage: "token symbol, native asset when empty"},
					&cli.StringFlag{Name: "chain", Usage: "token chain id"},
					coinFlag(),
					&cli.BoolFlag{Name: "dns", Usage: "resolve the website url instead of an address"},
				},
				Action: func(c *cli.Context) error {
					domain, err := domainArg(c)
					if err != nil {
						return err
					}
					ct, err := parseCoin(c)
					if err != nil {
						return err
					}
					w, err := openWallet(c.Context, c)
					if err != nil {
						return err
					}
					defer w.Close()
					if c.Bool("dns") {
						u, err := w.svc.UnstoppableDomainsResolveDns(c.Context, domain)
						if err != nil {
							return err
						}
						return printJSON(map[string]any{"url": urlString(u)})
					}
					addr, err := w.svc.UnstoppableDomainsGetWalletAddr(c.Context, domain,
						ud.Token{Symbol: c.String("symbol"), ChainID: c.String("chain"), Coin: ct})
					if err != nil {
						return err
					}
					return printJSON(map[string]any{"address": addr})
				},
			},
			{
				Name:      "sns",
				ArgsUsage: "<name.sol>",
				Flags:     []cli.Flag{&cli.BoolFlag{Name: "host", Usage: "resolve the website url instead of the owner"}},
				Action: func(c *cli.Context) error {
					domain, err := domainArg(c)
					if err != nil {
						return err
					}
					w, err := openWallet(c.Context, c)
					if err != nil {
						return err
					}
					defer w.Close()
					if c.Bool("host") {
						u, err := w.svc.SnsResolveHost(c.Context, domain)
						if err != nil {
							return err
						}
						return printJSON(map[string]any{"url": urlString(u)})
					}
					addr, err := w.svc.SnsGetSolAddr(c.Context, domain)
					if err != nil {
						return err
					}
					return printJSON(map[string]any{"address": addr})
				},
			},
		},
	}
}

func balanceCommand() *cli.Command {
	return &cli.Command{
		Name:  "balance",
		Usage: "print the native balance of an address",
		Flags: []cli.Flag{
			coinFlag(),
			&cli.StringFlag{Name: "chain", Usage: "chain id, the selected chain when empty"},
			&cli.StringFlag{Name: "address", Required: true},
		},
		Action: func(c *cli.Context) error {
			ct, err := parseCoin(c)
			if err != nil {
				return err
			}
			w, err := openWallet(c.Context, c)
			if err != nil {
				return err
			}
			defer w.Close()

			chainID := c.String("chain")
			if chainID == "" {
				chainID = w.svc.GetChainIDForOrigin(ct, "")
			}
			raw, err := w.svc.GetBalance(c.Context, c.String("address"), ct, chainID)
			if err != nil {
				return err
			}
			amount, err := baseUnits(ct, raw)
			if err != nil {
				return err
			}

			out := map[string]any{"chainId": chainID, "raw": raw}
			for _, n := range w.svc.GetAllNetworks(ct) {
				if n.ChainID == chainID {
					out["formatted"] = utils.FormatUnitsTrim(amount, n.Decimals, displayDecimals)
					out["symbol"] = n.Symbol
					break
				}
			}
			return printJSON(out)
		},
	}
}

// baseUnits parses a balance as returned by GetBalance: hex for ETH, base 10
// otherwise.
func baseUnits(ct coin.Type, raw string) (*big.Int, error) {
	if ct == coin.ETH {
		dec, err := utils.HexToDecimalString(raw)
		if err != nil {
			return nil, err
		}
		raw = dec
	}
	v, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, errors.Newf("invalid balance %q", raw)
	}
	return v, nil
}

func urlString(u *url.URL) string {
	if u == nil {
		return ""
	}
	return u.String()
}
