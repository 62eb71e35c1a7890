package market

import (
	"github.com/gagliardetto/solana-go"

	"github.com/Blessedbiello/NFT-Marketplace-sub000/internal/accounts"
	"github.com/Blessedbiello/NFT-Marketplace-sub000/internal/metadata"
)

// NFTListing is the UI-facing merge of a listing record and its resolved
// metadata, keyed by listing address. Price is decimal SOL.
type NFTListing struct {
	ListingAddress solana.PublicKey
	Mint           solana.PublicKey
	Seller         solana.PublicKey
	PriceSOL       float64
	Name           string
	Symbol         string
	Description    string
	Image          string
	Attributes     []metadata.Attribute
}

// Stats are derived aggregates recomputed from the full in-memory listing
// set on every refresh, never maintained incrementally.
//
// ListedValue is the summed price of everything currently for sale, not
// historical trading volume; no sale event log is consulted.
type Stats struct {
	TotalListings int
	ListedValue   float64
	AveragePrice  float64
	UniqueOwners  int
	FloorPrice    float64
}

// PortfolioItem is one NFT held by the connected wallet.
type PortfolioItem struct {
	Mint     solana.PublicKey
	Name     string
	Symbol   string
	Image    string
	Listed   bool
	PriceSOL float64
}

// Phase is the refresh cycle state.
type Phase string

const (
	PhaseIdle                Phase = "IDLE"
	PhaseFetchingMarketplace Phase = "FETCHING_MARKETPLACE"
	PhaseFetchingListings    Phase = "FETCHING_LISTINGS"
	PhaseResolvingMetadata   Phase = "RESOLVING_METADATA"
	PhaseFetchingUserNFTs    Phase = "FETCHING_USER_NFTS"
	PhaseReady               Phase = "READY"
	PhaseError               Phase = "ERROR"
)

// Snapshot is one consistent view of the marketplace as of the last
// completed refresh.
type Snapshot struct {
	Phase       Phase
	Marketplace *accounts.MarketplaceConfig
	Listings    []NFTListing
	Stats       Stats
	Portfolio   []PortfolioItem
	Err         error
}

// LamportsToSOL converts lamports to decimal SOL.
func LamportsToSOL(lamports uint64) float64 {
	return float64(lamports) / float64(solana.LAMPORTS_PER_SOL)
}
