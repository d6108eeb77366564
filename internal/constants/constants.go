package constants

import "time"

const (
	AppName = "quantum-wallet-rpc"

	PrefsFile     = "wallet_prefs.json"
	PrefsBoltFile = "wallet_prefs.db"

	SchemaV1      = 1
	FilePerm      = 0o600
	DirectoryPerm = 0o700

	ZeroAddress = "0x0000000000000000000000000000000000000000"

	DefaultRequestTimeout = 30 * time.Second
	DefaultIpfsGateway    = "https://ipfs.io"

	// BraveProxyHostSuffix marks endpoints that receive the services key header.
	BraveProxyHostSuffix = ".wallet.brave.com"
	ServicesKeyHeader    = "x-brave-key"

	SimpleHashProxyURL = "https://simplehash.wallet.brave.com"
	SimpleHashCDNHost  = "simplehash.wallet-cdn.brave.com"
)
