package config

import (
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Known cluster names and their public RPC endpoints.
var clusterEndpoints = map[string]string{
	"devnet":       rpc.DevNet_RPC,
	"testnet":      rpc.TestNet_RPC,
	"mainnet-beta": rpc.MainNetBeta_RPC,
	"localnet":     rpc.LocalNet_RPC,
}

var validCommitments = map[string]rpc.CommitmentType{
	"processed": rpc.CommitmentProcessed,
	"confirmed": rpc.CommitmentConfirmed,
	"finalized": rpc.CommitmentFinalized,
}

// Config is the validated startup configuration. Validation fails loudly
// before any on-chain call is attempted.
type Config struct {
	Network     string
	RPCEndpoint string
	ProgramID   solana.PublicKey
	Commitment  rpc.CommitmentType

	MarketplaceName string
	WalletPath      string
	AdminWallets    string
	IPFSGateway     string
	StateDir        string

	TxTimeout       time.Duration
	RefreshInterval time.Duration
	Debug           bool
}

// Load reads configuration from the environment (a .env file is honored if
// present) and validates it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("NETWORK", "devnet")
	v.SetDefault("COMMITMENT", "confirmed")
	v.SetDefault("MARKETPLACE_NAME", "main")
	v.SetDefault("IPFS_GATEWAY", "https://ipfs.io/ipfs/")
	v.SetDefault("STATE_DIR", ".solmart")
	v.SetDefault("TX_TIMEOUT", "60s")
	v.SetDefault("REFRESH_INTERVAL", "30s")
	v.AutomaticEnv()

	cfg := &Config{
		Network:         v.GetString("NETWORK"),
		RPCEndpoint:     v.GetString("RPC_ENDPOINT"),
		MarketplaceName: v.GetString("MARKETPLACE_NAME"),
		WalletPath:      v.GetString("WALLET_PATH"),
		AdminWallets:    v.GetString("ADMIN_WALLETS"),
		IPFSGateway:     v.GetString("IPFS_GATEWAY"),
		StateDir:        v.GetString("STATE_DIR"),
		TxTimeout:       v.GetDuration("TX_TIMEOUT"),
		RefreshInterval: v.GetDuration("REFRESH_INTERVAL"),
		Debug:           v.GetBool("DEBUG"),
	}

	endpoint, ok := clusterEndpoints[cfg.Network]
	if !ok {
		return nil, fmt.Errorf("unknown network %q (want devnet, testnet, mainnet-beta or localnet)", cfg.Network)
	}
	if cfg.RPCEndpoint == "" {
		cfg.RPCEndpoint = endpoint
	}

	commitment, ok := validCommitments[v.GetString("COMMITMENT")]
	if !ok {
		return nil, fmt.Errorf("unknown commitment %q (want processed, confirmed or finalized)", v.GetString("COMMITMENT"))
	}
	cfg.Commitment = commitment

	programStr := v.GetString("PROGRAM_ID")
	if programStr == "" {
		return nil, fmt.Errorf("PROGRAM_ID is required")
	}
	programID, err := solana.PublicKeyFromBase58(programStr)
	if err != nil {
		return nil, fmt.Errorf("malformed PROGRAM_ID %q: %w", programStr, err)
	}
	cfg.ProgramID = programID

	if cfg.TxTimeout <= 0 {
		return nil, fmt.Errorf("TX_TIMEOUT must be positive, got %v", cfg.TxTimeout)
	}
	if cfg.MarketplaceName == "" {
		return nil, fmt.Errorf("MARKETPLACE_NAME must not be empty")
	}

	return cfg, nil
}
