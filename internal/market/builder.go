package market

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/Blessedbiello/NFT-Marketplace-sub000/internal/accounts"
	"github.com/Blessedbiello/NFT-Marketplace-sub000/internal/metadata"
	"github.com/Blessedbiello/NFT-Marketplace-sub000/internal/pda"
)

const placeholderName = "Unknown NFT"

// Builder orchestrates fetcher and resolver into UI-ready snapshots. One
// refresh runs at a time per builder; triggering a new refresh cancels the
// superseded one and its results are discarded.
type Builder struct {
	fetcher  *accounts.Fetcher
	resolver *metadata.Resolver
	rpc      *rpc.Client

	programID       solana.PublicKey
	marketplaceName string

	mu         sync.Mutex
	wallet     *solana.PublicKey
	generation uint64
	cancel     context.CancelFunc
	snapshot   Snapshot
}

func NewBuilder(fetcher *accounts.Fetcher, resolver *metadata.Resolver, rpcClient *rpc.Client, programID solana.PublicKey, marketplaceName string) *Builder {
	return &Builder{
		fetcher:         fetcher,
		resolver:        resolver,
		rpc:             rpcClient,
		programID:       programID,
		marketplaceName: marketplaceName,
		snapshot:        Snapshot{Phase: PhaseIdle},
	}
}

// Connect records the wallet whose portfolio future refreshes should include.
func (b *Builder) Connect(wallet solana.PublicKey) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.wallet = &wallet
}

// Disconnect clears the wallet and resets all view-model state immediately.
// Any in-flight refresh is cancelled and its eventual result discarded.
func (b *Builder) Disconnect() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.wallet = nil
	b.generation++
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
	b.snapshot = Snapshot{Phase: PhaseIdle}
}

// Snapshot returns the last committed view.
func (b *Builder) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshot
}

// Refresh runs one full refresh cycle and returns the committed snapshot.
// A refresh started later supersedes this one; superseded cycles stop at the
// next stage boundary and their results are never committed.
func (b *Builder) Refresh(ctx context.Context) (Snapshot, error) {
	b.mu.Lock()
	if b.cancel != nil {
		b.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	b.generation++
	gen := b.generation
	wallet := b.wallet
	b.mu.Unlock()
	defer cancel()

	if !b.advance(gen, PhaseFetchingMarketplace) {
		return b.Snapshot(), nil
	}
	marketplaceAddr, _, err := pda.Marketplace(b.programID, b.marketplaceName)
	if err != nil {
		return b.fail(gen, err)
	}
	config, err := b.fetcher.Marketplace(ctx, marketplaceAddr)
	if err != nil {
		return b.fail(gen, fmt.Errorf("failed to fetch marketplace: %w", err))
	}

	if !b.advance(gen, PhaseFetchingListings) {
		return b.Snapshot(), nil
	}
	keyed, err := b.fetcher.Listings(ctx, b.programID)
	if err != nil {
		return b.fail(gen, fmt.Errorf("failed to fetch listings: %w", err))
	}

	if !b.advance(gen, PhaseResolvingMetadata) {
		return b.Snapshot(), nil
	}
	mints := make([]solana.PublicKey, 0, len(keyed))
	for _, k := range keyed {
		mints = append(mints, k.Record.NftMint)
	}
	resolved := b.resolver.ResolveBatch(ctx, mints)
	listings := mergeListings(keyed, resolved)
	stats := ComputeStats(listings)

	var portfolio []PortfolioItem
	if wallet != nil {
		if !b.advance(gen, PhaseFetchingUserNFTs) {
			return b.Snapshot(), nil
		}
		portfolio, err = b.buildPortfolio(ctx, *wallet, listings)
		if err != nil {
			// Portfolio degradation must not block READY for marketplace data.
			zap.L().Warn("portfolio fetch failed, continuing without it", zap.Error(err))
			portfolio = nil
		}
	}

	next := Snapshot{
		Phase:       PhaseReady,
		Marketplace: config,
		Listings:    listings,
		Stats:       stats,
		Portfolio:   portfolio,
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if gen != b.generation {
		return b.snapshot, nil
	}
	b.snapshot = next
	return next, nil
}

// RunInterval refreshes on a timer until the context ends. Used by the watch
// command and the timed-refresh trigger.
func (b *Builder) RunInterval(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := b.Refresh(ctx); err != nil {
				zap.L().Warn("interval refresh failed", zap.Error(err))
			}
		}
	}
}

// advance moves the in-flight refresh to the next phase, reporting false if
// the refresh has been superseded.
func (b *Builder) advance(gen uint64, phase Phase) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if gen != b.generation {
		return false
	}
	b.snapshot.Phase = phase
	return true
}

func (b *Builder) fail(gen uint64, err error) (Snapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if gen != b.generation {
		return b.snapshot, nil
	}
	b.snapshot.Phase = PhaseError
	b.snapshot.Err = err
	return b.snapshot, err
}

// mergeListings combines decoded listing records with resolved metadata.
// Listings whose on-chain metadata could not be decoded are dropped; a
// missing off-chain document degrades to placeholder fields.
func mergeListings(keyed []accounts.KeyedListing, resolved map[solana.PublicKey]*metadata.Resolved) []NFTListing {
	listings := make([]NFTListing, 0, len(keyed))
	for _, k := range keyed {
		meta, ok := resolved[k.Record.NftMint]
		if !ok {
			continue
		}

		listing := NFTListing{
			ListingAddress: k.Address,
			Mint:           k.Record.NftMint,
			Seller:         k.Record.Maker,
			PriceSOL:       LamportsToSOL(k.Record.Price),
			Name:           meta.OnChain.Name,
			Symbol:         meta.OnChain.Symbol,
		}
		if listing.Name == "" {
			listing.Name = placeholderName
		}
		if meta.Document != nil {
			listing.Name = meta.Document.Name
			listing.Description = meta.Document.Description
			listing.Image = meta.Document.Image
			listing.Attributes = meta.Document.Attributes
		}
		listings = append(listings, listing)
	}
	return listings
}

// buildPortfolio lists the NFTs held by the wallet and marks those currently
// listed on the marketplace.
func (b *Builder) buildPortfolio(ctx context.Context, wallet solana.PublicKey, listings []NFTListing) ([]PortfolioItem, error) {
	mints, err := b.fetchNFTMints(ctx, wallet)
	if err != nil {
		return nil, err
	}

	listedPrice := make(map[solana.PublicKey]float64, len(listings))
	for _, l := range listings {
		listedPrice[l.Mint] = l.PriceSOL
	}

	resolved := b.resolver.ResolveBatch(ctx, mints)
	items := make([]PortfolioItem, 0, len(mints))
	for _, mint := range mints {
		item := PortfolioItem{Mint: mint, Name: placeholderName}
		if meta, ok := resolved[mint]; ok {
			item.Name = meta.OnChain.Name
			item.Symbol = meta.OnChain.Symbol
			if meta.Document != nil {
				item.Name = meta.Document.Name
				item.Image = meta.Document.Image
			}
		}
		if price, ok := listedPrice[mint]; ok {
			item.Listed = true
			item.PriceSOL = price
		}
		items = append(items, item)
	}
	return items, nil
}

// fetchNFTMints returns mints of token accounts holding exactly one unit of
// a zero-decimal token for the owner.
func (b *Builder) fetchNFTMints(ctx context.Context, owner solana.PublicKey) ([]solana.PublicKey, error) {
	tokenProgramID := solana.TokenProgramID
	out, err := b.rpc.GetTokenAccountsByOwner(ctx, owner,
		&rpc.GetTokenAccountsConfig{ProgramId: &tokenProgramID},
		&rpc.GetTokenAccountsOpts{Encoding: solana.EncodingJSONParsed},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get token accounts for %s: %w", owner, err)
	}

	var mints []solana.PublicKey
	for _, rawAcct := range out.Value {
		rawJSON := rawAcct.Account.Data.GetRawJSON()
		if rawJSON == nil {
			continue
		}
		var parent map[string]interface{}
		if err := json.Unmarshal(rawJSON, &parent); err != nil {
			continue
		}
		parsed, ok := parent["parsed"].(map[string]interface{})
		if !ok {
			continue
		}
		info, ok := parsed["info"].(map[string]interface{})
		if !ok {
			continue
		}
		mintStr, ok := info["mint"].(string)
		if !ok || mintStr == "" {
			continue
		}
		amount, ok := info["tokenAmount"].(map[string]interface{})
		if !ok {
			continue
		}
		uiAmount, uiOK := amount["uiAmount"].(float64)
		decimals, decOK := amount["decimals"].(float64)
		if !uiOK || !decOK || uiAmount != 1 || decimals != 0 {
			continue
		}
		mint, err := solana.PublicKeyFromBase58(mintStr)
		if err != nil {
			continue
		}
		mints = append(mints, mint)
	}
	return mints, nil
}
