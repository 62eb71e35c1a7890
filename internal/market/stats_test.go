package market

import (
	"testing"

	"github.com/gagliardetto/solana-go"
)

func listingAt(seller solana.PublicKey, priceSOL float64) NFTListing {
	return NFTListing{
		ListingAddress: solana.NewWallet().PublicKey(),
		Mint:           solana.NewWallet().PublicKey(),
		Seller:         seller,
		PriceSOL:       priceSOL,
	}
}

func TestComputeStats(t *testing.T) {
	sellerA := solana.NewWallet().PublicKey()
	sellerB := solana.NewWallet().PublicKey()

	stats := ComputeStats([]NFTListing{
		listingAt(sellerA, 1.0),
		listingAt(sellerB, 2.0),
		listingAt(sellerA, 3.0),
	})

	if stats.TotalListings != 3 {
		t.Errorf("expected 3 listings, got %d", stats.TotalListings)
	}
	if stats.FloorPrice != 1.0 {
		t.Errorf("expected floor 1.0, got %f", stats.FloorPrice)
	}
	if stats.ListedValue != 6.0 {
		t.Errorf("expected listed value 6.0, got %f", stats.ListedValue)
	}
	if stats.AveragePrice != 2.0 {
		t.Errorf("expected average 2.0, got %f", stats.AveragePrice)
	}
	if stats.UniqueOwners != 2 {
		t.Errorf("expected 2 unique owners, got %d", stats.UniqueOwners)
	}
}

func TestComputeStatsEmpty(t *testing.T) {
	stats := ComputeStats(nil)

	if stats.TotalListings != 0 || stats.FloorPrice != 0 || stats.ListedValue != 0 ||
		stats.AveragePrice != 0 || stats.UniqueOwners != 0 {
		t.Errorf("expected zero stats for empty listing set, got %+v", stats)
	}
}

func TestComputeStatsIsPure(t *testing.T) {
	listings := []NFTListing{listingAt(solana.NewWallet().PublicKey(), 5.0)}

	first := ComputeStats(listings)
	second := ComputeStats(listings)

	if first != second {
		t.Errorf("expected identical stats for identical input: %+v vs %+v", first, second)
	}
}

func TestLamportsToSOL(t *testing.T) {
	if got := LamportsToSOL(1_000_000_000); got != 1.0 {
		t.Errorf("expected 1.0 SOL, got %f", got)
	}
	if got := LamportsToSOL(500_000_000); got != 0.5 {
		t.Errorf("expected 0.5 SOL, got %f", got)
	}
	if got := LamportsToSOL(0); got != 0 {
		t.Errorf("expected 0 SOL, got %f", got)
	}
}
