package config

import (
	"bytes"
	_ "embed"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	utilsEth "github.com/quantumauth-io/quantum-go-utils/ethrpc"
	"github.com/spf13/viper"

	"github.com/quantumauth-io/quantum-wallet-rpc/internal/constants"
)

//go:embed config.yaml
var EmbeddedConfigYAML []byte

// EnvPrefix prefixes environment overrides, e.g. QWR_WALLET_SERVICESKEY.
const EnvPrefix = "QWR"

type ClientSettings struct {
	LocalHost      string
	Port           string
	AllowedOrigins []string
}

type WalletSettings struct {
	PrefsBackend      string
	PrefsPath         string
	ServicesKey       string
	IpfsGateway       string
	RequestTimeout    time.Duration
	EnsGatewayTimeout time.Duration
	SimpleHashURL     string
	NftCacheTTL       time.Duration
}

type Config struct {
	ClientSettings *ClientSettings
	Wallet         *WalletSettings
	EthNetworks    *utilsEth.MultiConfig `mapstructure:"Ethereum"`
}

// SearchPaths are the directories scanned for config.yaml, lowest priority
// last.
func SearchPaths() []string {
	home, _ := os.UserHomeDir()
	return []string{
		filepath.Join(home, ".config", constants.AppName),
		filepath.Join(home, "config"),
		".",
	}
}

// Load reads the embedded defaults, merges the first config.yaml found (or
// explicitPath) over them and applies QWR_ environment overrides.
func Load(explicitPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(EmbeddedConfigYAML)); err != nil {
		return nil, errors.Wrap(err, "config: embedded defaults")
	}

	path := explicitPath
	if path == "" {
		for _, dir := range SearchPaths() {
			p := filepath.Join(dir, "config.yaml")
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, errors.Wrapf(err, "config: read %s", path)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "config: decode")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.ClientSettings == nil || c.Wallet == nil {
		return errors.New("config: ClientSettings and Wallet are required")
	}
	c.Wallet.PrefsBackend = strings.ToLower(strings.TrimSpace(c.Wallet.PrefsBackend))
	switch c.Wallet.PrefsBackend {
	case "", "file", "bolt", "memory":
	default:
		return errors.Newf("config: invalid Wallet.PrefsBackend %q (allowed: file, bolt, memory)", c.Wallet.PrefsBackend)
	}
	if c.Wallet.RequestTimeout <= 0 {
		c.Wallet.RequestTimeout = constants.DefaultRequestTimeout
	}
	if strings.TrimSpace(c.ClientSettings.Port) == "" {
		return errors.New("config: ClientSettings.Port is empty")
	}
	return nil
}
