package accounts

import (
	"crypto/sha256"

	"github.com/gagliardetto/solana-go"
)

// MarketplaceConfig mirrors the on-chain marketplace account. Singleton per
// marketplace name; mutated only by fee updates.
type MarketplaceConfig struct {
	Authority      solana.PublicKey
	FeeBasisPoints uint16
	Treasury       solana.PublicKey
	Name           string
	Bump           uint8
	TreasuryBump   uint8
}

// ListingRecord mirrors the on-chain listing account. One record per
// currently listed NFT; closed on purchase or delist.
type ListingRecord struct {
	Maker    solana.PublicKey
	NftMint  solana.PublicKey
	Price    uint64
	Metadata solana.PublicKey
	Bump     uint8
}

// Creator is one entry of an on-chain metadata creators list.
type Creator struct {
	Address  solana.PublicKey
	Verified bool
	Share    uint8
}

// OnChainMetadata is the decoded Metaplex metadata record for a mint.
// Name, Symbol and Uri are trimmed of trailing NUL padding.
type OnChainMetadata struct {
	UpdateAuthority      solana.PublicKey
	Mint                 solana.PublicKey
	Name                 string
	Symbol               string
	Uri                  string
	SellerFeeBasisPoints uint16
	Creators             []Creator
}

// Discriminator returns the 8-byte Anchor account discriminator for an
// account struct name: sha256("account:" + name)[:8].
func Discriminator(name string) [8]byte {
	sum := sha256.Sum256([]byte("account:" + name))
	var d [8]byte
	copy(d[:], sum[:8])
	return d
}

var (
	marketplaceDiscriminator = Discriminator("Marketplace")
	listingDiscriminator     = Discriminator("Listing")
)

// ListingDiscriminator is the discriminator prefixing every listing account,
// used to filter getProgramAccounts scans.
func ListingDiscriminator() [8]byte { return listingDiscriminator }
