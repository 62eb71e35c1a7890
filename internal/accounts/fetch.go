package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

// ErrNotFound reports that an account does not exist at the derived address.
// It is decided structurally from the RPC result, never by matching message
// text, so callers can distinguish "not created yet" from real failures.
var ErrNotFound = errors.New("account does not exist")

// Fetcher reads and decodes marketplace program accounts.
type Fetcher struct {
	rpc        *rpc.Client
	commitment rpc.CommitmentType
}

func NewFetcher(client *rpc.Client, commitment rpc.CommitmentType) *Fetcher {
	return &Fetcher{rpc: client, commitment: commitment}
}

// KeyedListing pairs a decoded listing with its account address.
type KeyedListing struct {
	Address solana.PublicKey
	Record  *ListingRecord
}

// Marketplace fetches and decodes the marketplace config at addr.
func (f *Fetcher) Marketplace(ctx context.Context, addr solana.PublicKey) (*MarketplaceConfig, error) {
	data, err := f.raw(ctx, addr)
	if err != nil {
		return nil, err
	}
	return DecodeMarketplace(data)
}

// Listing fetches and decodes the listing record at addr.
func (f *Fetcher) Listing(ctx context.Context, addr solana.PublicKey) (*ListingRecord, error) {
	data, err := f.raw(ctx, addr)
	if err != nil {
		return nil, err
	}
	return DecodeListing(data)
}

// Metadata fetches and decodes the Metaplex metadata account at addr.
func (f *Fetcher) Metadata(ctx context.Context, addr solana.PublicKey) (*OnChainMetadata, error) {
	data, err := f.raw(ctx, addr)
	if err != nil {
		return nil, err
	}
	return DecodeMetadata(data)
}

// Listings scans the program for all current listing accounts. Accounts that
// fail to decode are skipped, not fatal to the scan.
func (f *Fetcher) Listings(ctx context.Context, programID solana.PublicKey) ([]KeyedListing, error) {
	disc := ListingDiscriminator()
	out, err := f.rpc.GetProgramAccountsWithOpts(ctx, programID, &rpc.GetProgramAccountsOpts{
		Commitment: f.commitment,
		Filters: []rpc.RPCFilter{
			{
				Memcmp: &rpc.RPCFilterMemcmp{
					Offset: 0,
					Bytes:  solana.Base58(disc[:]),
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan listing accounts: %w", err)
	}

	listings := make([]KeyedListing, 0, len(out))
	for _, keyed := range out {
		data := keyed.Account.Data.GetBinary()
		rec, err := DecodeListing(data)
		if err != nil {
			zap.L().Debug("skipping undecodable listing account",
				zap.String("account", keyed.Pubkey.String()),
				zap.Error(err))
			continue
		}
		listings = append(listings, KeyedListing{Address: keyed.Pubkey, Record: rec})
	}
	return listings, nil
}

func (f *Fetcher) raw(ctx context.Context, addr solana.PublicKey) ([]byte, error) {
	info, err := f.rpc.GetAccountInfoWithOpts(ctx, addr, &rpc.GetAccountInfoOpts{
		Commitment: f.commitment,
	})
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, fmt.Errorf("account %s: %w", addr, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch account %s: %w", addr, err)
	}
	if info == nil || info.Value == nil {
		return nil, fmt.Errorf("account %s: %w", addr, ErrNotFound)
	}
	data := info.Value.Data.GetBinary()
	if data == nil {
		return nil, fmt.Errorf("account %s: %w", addr, ErrNotFound)
	}
	return data, nil
}
