package market

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/Blessedbiello/NFT-Marketplace-sub000/internal/accounts"
	"github.com/Blessedbiello/NFT-Marketplace-sub000/internal/metadata"
)

func testBuilder() *Builder {
	return NewBuilder(nil, nil, nil, solana.NewWallet().PublicKey(), "main")
}

func TestDisconnectClearsStateAndDiscardsInFlightRefresh(t *testing.T) {
	b := testBuilder()
	b.Connect(solana.NewWallet().PublicKey())

	// Simulate a refresh mid-flight holding a snapshot full of data.
	b.mu.Lock()
	b.generation++
	gen := b.generation
	b.snapshot = Snapshot{
		Phase:    PhaseResolvingMetadata,
		Listings: []NFTListing{listingAt(solana.NewWallet().PublicKey(), 1.0)},
		Stats:    Stats{TotalListings: 1, FloorPrice: 1.0},
		Portfolio: []PortfolioItem{
			{Mint: solana.NewWallet().PublicKey(), Name: "Held NFT"},
		},
	}
	b.mu.Unlock()

	b.Disconnect()

	snap := b.Snapshot()
	require.Equal(t, PhaseIdle, snap.Phase)
	require.Nil(t, snap.Marketplace)
	require.Empty(t, snap.Listings)
	require.Empty(t, snap.Portfolio)
	require.Equal(t, Stats{}, snap.Stats)

	// The in-flight cycle must not be able to commit its stale results.
	require.False(t, b.advance(gen, PhaseReady))
	require.Equal(t, PhaseIdle, b.Snapshot().Phase)
}

func TestAdvanceRejectsSupersededGeneration(t *testing.T) {
	b := testBuilder()

	b.mu.Lock()
	b.generation = 5
	b.mu.Unlock()

	require.False(t, b.advance(4, PhaseFetchingListings))
	require.True(t, b.advance(5, PhaseFetchingListings))
	require.Equal(t, PhaseFetchingListings, b.Snapshot().Phase)
}

func TestMergeListingsSkipsUnresolvedAndDegradesToPlaceholder(t *testing.T) {
	resolvedMint := solana.NewWallet().PublicKey()
	unresolvedMint := solana.NewWallet().PublicKey()
	degradedMint := solana.NewWallet().PublicKey()
	seller := solana.NewWallet().PublicKey()

	keyed := []accounts.KeyedListing{
		{
			Address: solana.NewWallet().PublicKey(),
			Record:  &accounts.ListingRecord{Maker: seller, NftMint: resolvedMint, Price: 2_000_000_000},
		},
		{
			Address: solana.NewWallet().PublicKey(),
			Record:  &accounts.ListingRecord{Maker: seller, NftMint: unresolvedMint, Price: 1_000_000_000},
		},
		{
			Address: solana.NewWallet().PublicKey(),
			Record:  &accounts.ListingRecord{Maker: seller, NftMint: degradedMint, Price: 3_000_000_000},
		},
	}
	resolved := map[solana.PublicKey]*metadata.Resolved{
		resolvedMint: {
			Mint:     resolvedMint,
			OnChain:  &accounts.OnChainMetadata{Name: "Chain Name", Symbol: "CN"},
			Document: &metadata.Document{Name: "Doc Name", Image: "https://x.test/i.png"},
		},
		// On-chain record decoded but the off-chain document was unavailable.
		degradedMint: {
			Mint:    degradedMint,
			OnChain: &accounts.OnChainMetadata{},
		},
	}

	listings := mergeListings(keyed, resolved)
	require.Len(t, listings, 2)

	byMint := make(map[solana.PublicKey]NFTListing)
	for _, l := range listings {
		byMint[l.Mint] = l
	}

	full := byMint[resolvedMint]
	require.Equal(t, "Doc Name", full.Name)
	require.Equal(t, "https://x.test/i.png", full.Image)
	require.Equal(t, 2.0, full.PriceSOL)

	degraded := byMint[degradedMint]
	require.Equal(t, placeholderName, degraded.Name)
	require.Equal(t, 3.0, degraded.PriceSOL)

	_, present := byMint[unresolvedMint]
	require.False(t, present)
}
