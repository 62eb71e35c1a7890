package gateway

import (
	"fmt"
	"math"
	"strings"

	"github.com/gagliardetto/solana-go"

	"github.com/Blessedbiello/NFT-Marketplace-sub000/internal/apperr"
)

// Validation bounds. Prices are decimal SOL; fees are basis points.
const (
	MinPriceSOL = 0.001
	MaxPriceSOL = 100_000.0

	MaxFeeBasisPoints = 2000 // 20%

	MaxMarketplaceNameLen = 32
)

// Characters that could enable injection in a marketplace name.
const forbiddenNameChars = `<>'"&`

// ValidatePrice checks a decimal SOL price against the configured bounds.
// NaN and infinities are rejected before any range comparison.
func ValidatePrice(priceSOL float64) error {
	if math.IsNaN(priceSOL) || math.IsInf(priceSOL, 0) {
		return apperr.NewValidation("price", "Price must be a finite number")
	}
	if priceSOL < MinPriceSOL {
		return apperr.NewValidation("price", fmt.Sprintf("Price must be at least %g SOL", MinPriceSOL))
	}
	if priceSOL > MaxPriceSOL {
		return apperr.NewValidation("price", fmt.Sprintf("Price must not exceed %g SOL", MaxPriceSOL))
	}
	return nil
}

// ValidateFeeBasisPoints checks a marketplace fee in basis points.
func ValidateFeeBasisPoints(feeBps int) error {
	if feeBps < 0 {
		return apperr.NewValidation("fee", "Fee must not be negative")
	}
	if feeBps > MaxFeeBasisPoints {
		return apperr.NewValidation("fee", fmt.Sprintf("Fee must not exceed %d basis points", MaxFeeBasisPoints))
	}
	return nil
}

// ValidateMarketplaceName checks a marketplace name for emptiness, length
// and characters that could enable injection.
func ValidateMarketplaceName(name string) error {
	if strings.TrimSpace(name) == "" {
		return apperr.NewValidation("name", "Marketplace name must not be empty")
	}
	if len(name) > MaxMarketplaceNameLen {
		return apperr.NewValidation("name", fmt.Sprintf("Marketplace name must be at most %d characters", MaxMarketplaceNameLen))
	}
	if strings.ContainsAny(name, forbiddenNameChars) {
		return apperr.NewValidation("name", "Marketplace name contains forbidden characters")
	}
	return nil
}

// SOLToLamports converts a validated decimal SOL amount to lamports.
func SOLToLamports(priceSOL float64) uint64 {
	return uint64(math.Round(priceSOL * float64(solana.LAMPORTS_PER_SOL)))
}
