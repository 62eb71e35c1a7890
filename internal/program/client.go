// Package program builds and submits marketplace program instructions. The
// instruction implementations themselves live on chain; this package only
// speaks their account and argument interfaces.
package program

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/Blessedbiello/NFT-Marketplace-sub000/internal/wallet"
)

// Client submits marketplace transactions signed by a local wallet.
type Client struct {
	rpc             *rpc.Client
	programID       solana.PublicKey
	marketplaceName string
	commitment      rpc.CommitmentType
}

func NewClient(rpcClient *rpc.Client, programID solana.PublicKey, marketplaceName string, commitment rpc.CommitmentType) *Client {
	return &Client{
		rpc:             rpcClient,
		programID:       programID,
		marketplaceName: marketplaceName,
		commitment:      commitment,
	}
}

// InitializeMarketplace creates the marketplace config with the given fee.
func (c *Client) InitializeMarketplace(ctx context.Context, w *wallet.Wallet, feeBps uint16) (solana.Signature, error) {
	ix, err := c.initializeMarketplaceInstruction(w.PublicKey(), feeBps)
	if err != nil {
		return solana.Signature{}, err
	}
	return c.send(ctx, w, ix)
}

// ListNft escrows the NFT and creates a listing at the given lamport price.
func (c *Client) ListNft(ctx context.Context, w *wallet.Wallet, nftMint solana.PublicKey, priceLamports uint64) (solana.Signature, error) {
	ix, err := c.listNftInstruction(w.PublicKey(), nftMint, priceLamports)
	if err != nil {
		return solana.Signature{}, err
	}
	return c.send(ctx, w, ix)
}

// PurchaseNft buys a listed NFT from maker.
func (c *Client) PurchaseNft(ctx context.Context, w *wallet.Wallet, maker, nftMint solana.PublicKey) (solana.Signature, error) {
	ix, err := c.purchaseNftInstruction(w.PublicKey(), maker, nftMint)
	if err != nil {
		return solana.Signature{}, err
	}
	return c.send(ctx, w, ix)
}

// DelistNft cancels the wallet's own listing.
func (c *Client) DelistNft(ctx context.Context, w *wallet.Wallet, nftMint solana.PublicKey) (solana.Signature, error) {
	ix, err := c.delistNftInstruction(w.PublicKey(), nftMint)
	if err != nil {
		return solana.Signature{}, err
	}
	return c.send(ctx, w, ix)
}

// UpdateFee sets a new marketplace fee in basis points.
func (c *Client) UpdateFee(ctx context.Context, w *wallet.Wallet, newFeeBps uint16) (solana.Signature, error) {
	ix, err := c.updateFeeInstruction(w.PublicKey(), newFeeBps)
	if err != nil {
		return solana.Signature{}, err
	}
	return c.send(ctx, w, ix)
}

func (c *Client) send(ctx context.Context, w *wallet.Wallet, instructions ...solana.Instruction) (solana.Signature, error) {
	recent, err := c.rpc.GetLatestBlockhash(ctx, c.commitment)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to get recent blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(
		instructions,
		recent.Value.Blockhash,
		solana.TransactionPayer(w.PublicKey()),
	)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to build transaction: %w", err)
	}
	if _, err := tx.Sign(w.Signer()); err != nil {
		return solana.Signature{}, fmt.Errorf("failed to sign transaction: %w", err)
	}

	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: c.commitment,
	})
	if err != nil {
		return solana.Signature{}, err
	}

	zap.L().Debug("transaction submitted", zap.String("signature", sig.String()))
	return sig, nil
}
