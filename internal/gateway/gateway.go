// Package gateway wraps mutating marketplace calls with validation, rate
// limiting, timeout bounds and uniform error classification.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/Blessedbiello/NFT-Marketplace-sub000/internal/apperr"
	"github.com/Blessedbiello/NFT-Marketplace-sub000/internal/auth"
	"github.com/Blessedbiello/NFT-Marketplace-sub000/internal/program"
	"github.com/Blessedbiello/NFT-Marketplace-sub000/internal/ratelimit"
	"github.com/Blessedbiello/NFT-Marketplace-sub000/internal/wallet"
)

// CategoryTransactions is the rate-limit category for mutating calls.
const CategoryTransactions = "transactions"

// DefaultTimeout bounds each mutating call.
const DefaultTimeout = 60 * time.Second

// Gateway executes mutating marketplace operations. Every call validates its
// inputs locally, consults the rate limiter, races the underlying call
// against a timeout, and classifies failures.
type Gateway struct {
	program   *program.Client
	limiter   *ratelimit.Limiter
	policy    *auth.PolicyService
	timeout   time.Duration
	onSuccess func()
}

// New builds a gateway. onSuccess runs after every confirmed submission and
// is the refresh trigger; it may be nil.
func New(programClient *program.Client, limiter *ratelimit.Limiter, policy *auth.PolicyService, timeout time.Duration, onSuccess func()) *Gateway {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Gateway{
		program:   programClient,
		limiter:   limiter,
		policy:    policy,
		timeout:   timeout,
		onSuccess: onSuccess,
	}
}

// ListNft validates the price and lists the NFT at that price.
func (g *Gateway) ListNft(ctx context.Context, w *wallet.Wallet, nftMint solana.PublicKey, priceSOL float64) (solana.Signature, error) {
	if w == nil {
		return solana.Signature{}, apperr.New(apperr.KindWalletConnection, wallet.ErrNotConnected)
	}
	if err := ValidatePrice(priceSOL); err != nil {
		return solana.Signature{}, err
	}
	return g.execute(ctx, "list_nft", func(ctx context.Context) (solana.Signature, error) {
		return g.program.ListNft(ctx, w, nftMint, SOLToLamports(priceSOL))
	})
}

// PurchaseNft buys a listed NFT.
func (g *Gateway) PurchaseNft(ctx context.Context, w *wallet.Wallet, maker, nftMint solana.PublicKey) (solana.Signature, error) {
	if w == nil {
		return solana.Signature{}, apperr.New(apperr.KindWalletConnection, wallet.ErrNotConnected)
	}
	return g.execute(ctx, "purchase_nft", func(ctx context.Context) (solana.Signature, error) {
		return g.program.PurchaseNft(ctx, w, maker, nftMint)
	})
}

// DelistNft cancels the wallet's own listing.
func (g *Gateway) DelistNft(ctx context.Context, w *wallet.Wallet, nftMint solana.PublicKey) (solana.Signature, error) {
	if w == nil {
		return solana.Signature{}, apperr.New(apperr.KindWalletConnection, wallet.ErrNotConnected)
	}
	return g.execute(ctx, "delist_nft", func(ctx context.Context) (solana.Signature, error) {
		return g.program.DelistNft(ctx, w, nftMint)
	})
}

// InitializeMarketplace creates the marketplace config. Admin only.
func (g *Gateway) InitializeMarketplace(ctx context.Context, w *wallet.Wallet, name string, feeBps int) (solana.Signature, error) {
	if w == nil {
		return solana.Signature{}, apperr.New(apperr.KindWalletConnection, wallet.ErrNotConnected)
	}
	if err := ValidateMarketplaceName(name); err != nil {
		return solana.Signature{}, err
	}
	if err := ValidateFeeBasisPoints(feeBps); err != nil {
		return solana.Signature{}, err
	}
	if err := g.requireAdmin(w); err != nil {
		return solana.Signature{}, err
	}
	return g.execute(ctx, "initialize_marketplace", func(ctx context.Context) (solana.Signature, error) {
		return g.program.InitializeMarketplace(ctx, w, uint16(feeBps))
	})
}

// UpdateFee sets a new marketplace fee. Admin only.
func (g *Gateway) UpdateFee(ctx context.Context, w *wallet.Wallet, feeBps int) (solana.Signature, error) {
	if w == nil {
		return solana.Signature{}, apperr.New(apperr.KindWalletConnection, wallet.ErrNotConnected)
	}
	if err := ValidateFeeBasisPoints(feeBps); err != nil {
		return solana.Signature{}, err
	}
	if err := g.requireAdmin(w); err != nil {
		return solana.Signature{}, err
	}
	return g.execute(ctx, "update_fee", func(ctx context.Context) (solana.Signature, error) {
		return g.program.UpdateFee(ctx, w, uint16(feeBps))
	})
}

func (g *Gateway) requireAdmin(w *wallet.Wallet) error {
	if g.policy == nil || g.policy.IsAdmin(w.PublicKey()) {
		return nil
	}
	return apperr.NewValidation("wallet", "This wallet is not authorized for admin actions")
}

// execute runs one rate-limited, timeout-bounded mutating call. A timeout is
// ambiguous: the transaction may still confirm, so the raw error says so and
// callers must not assume the action did not happen.
func (g *Gateway) execute(ctx context.Context, operation string, action func(ctx context.Context) (solana.Signature, error)) (solana.Signature, error) {
	if !g.limiter.CanMakeCall(CategoryTransactions) {
		return solana.Signature{}, apperr.NewRateLimit(g.limiter.RetryAfter(CategoryTransactions))
	}
	g.limiter.RecordCall(CategoryTransactions)

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	sig, err := action(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%s timed out after %v; the transaction may still confirm: %w", operation, g.timeout, err)
		}
		classified := apperr.Classify(err)
		zap.L().Debug("mutating call failed",
			zap.String("operation", operation),
			zap.String("kind", string(classified.Kind)),
			zap.Error(err))
		return solana.Signature{}, classified
	}

	zap.L().Info("operation submitted",
		zap.String("operation", operation),
		zap.String("signature", sig.String()))
	if g.onSuccess != nil {
		g.onSuccess()
	}
	return sig, nil
}
