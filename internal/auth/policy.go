package auth

import (
	"strings"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// PolicyService manages which wallets may run admin actions.
type PolicyService struct {
	AdminWallets map[solana.PublicKey]bool // if empty, all wallets are admins (dev networks)
}

// NewPolicyService parses a comma-separated list of admin wallet addresses.
// Malformed addresses are skipped with a warning.
func NewPolicyService(adminWalletsStr string) *PolicyService {
	adminWallets := make(map[solana.PublicKey]bool)

	if adminWalletsStr != "" {
		for _, addrStr := range strings.Split(adminWalletsStr, ",") {
			addr, err := solana.PublicKeyFromBase58(strings.TrimSpace(addrStr))
			if err != nil {
				zap.L().Warn("skipping malformed admin wallet address",
					zap.String("address", addrStr),
					zap.Error(err))
				continue
			}
			adminWallets[addr] = true
		}
	}

	return &PolicyService{AdminWallets: adminWallets}
}

// IsAdmin checks if a wallet may run admin actions. An empty allowlist
// leaves admin actions open.
func (p *PolicyService) IsAdmin(wallet solana.PublicKey) bool {
	if len(p.AdminWallets) == 0 {
		return true
	}
	return p.AdminWallets[wallet]
}
