// Package wallet loads the signing keypair and tracks connection state.
package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// ErrNotConnected reports that no wallet keypair is loaded.
var ErrNotConnected = errors.New("wallet not connected")

// Wallet is a connected signing wallet backed by a local keypair file.
type Wallet struct {
	privateKey solana.PrivateKey
}

// Load reads a keypair in solana-keygen JSON format.
func Load(path string) (*Wallet, error) {
	if path == "" {
		return nil, ErrNotConnected
	}
	key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load wallet keypair from %s: %w", path, err)
	}
	return &Wallet{privateKey: key}, nil
}

// FromPrivateKey wraps an in-memory keypair, mainly for ephemeral dev
// wallets and tests.
func FromPrivateKey(key solana.PrivateKey) *Wallet {
	return &Wallet{privateKey: key}
}

// PublicKey returns the wallet's address.
func (w *Wallet) PublicKey() solana.PublicKey {
	return w.privateKey.PublicKey()
}

// Signer returns the signing callback transactions expect.
func (w *Wallet) Signer() func(key solana.PublicKey) *solana.PrivateKey {
	return func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(w.privateKey.PublicKey()) {
			return &w.privateKey
		}
		return nil
	}
}

// Balance returns the wallet's lamport balance.
func (w *Wallet) Balance(ctx context.Context, client *rpc.Client, commitment rpc.CommitmentType) (uint64, error) {
	out, err := client.GetBalance(ctx, w.PublicKey(), commitment)
	if err != nil {
		return 0, fmt.Errorf("failed to get balance for %s: %w", w.PublicKey(), err)
	}
	return out.Value, nil
}
