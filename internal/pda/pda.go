// Package pda derives the deterministic account addresses the marketplace
// program and the Metaplex Token Metadata program expect. Seed byte order
// must match the on-chain derivations exactly; a mismatched seed surfaces
// later as "account not found" at read time.
package pda

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// MetaplexTokenMetadataProgramID is the program ID for the Metaplex Token
// Metadata program.
const MetaplexTokenMetadataProgramID = "metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s"

var metaplexProgramID = solana.MustPublicKeyFromBase58(MetaplexTokenMetadataProgramID)

// MetaplexProgramID returns the Metaplex Token Metadata program id.
func MetaplexProgramID() solana.PublicKey { return metaplexProgramID }

// Marketplace derives the marketplace config PDA for a marketplace name.
func Marketplace(programID solana.PublicKey, name string) (solana.PublicKey, uint8, error) {
	return find(programID, [][]byte{
		[]byte("marketplace"),
		[]byte(name),
	})
}

// Treasury derives the treasury PDA subordinate to a marketplace.
func Treasury(programID, marketplace solana.PublicKey) (solana.PublicKey, uint8, error) {
	return find(programID, [][]byte{
		[]byte("treasury"),
		marketplace.Bytes(),
	})
}

// Listing derives the listing PDA for an NFT mint under a marketplace.
func Listing(programID, marketplace, nftMint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return find(programID, [][]byte{
		[]byte("listing"),
		marketplace.Bytes(),
		nftMint.Bytes(),
	})
}

// Vault derives the escrow token account holding the NFT while listed. This
// is an associated token address owned by the listing PDA, not a seeds-based
// PDA of the marketplace program.
func Vault(listing, nftMint solana.PublicKey) (solana.PublicKey, error) {
	vault, _, err := solana.FindAssociatedTokenAddress(listing, nftMint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive vault for listing %s: %w", listing, err)
	}
	return vault, nil
}

// Metadata derives the Metaplex metadata PDA for a mint.
func Metadata(nftMint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return find(metaplexProgramID, [][]byte{
		[]byte("metadata"),
		metaplexProgramID.Bytes(),
		nftMint.Bytes(),
	})
}

// MasterEdition derives the Metaplex master edition PDA for a mint.
func MasterEdition(nftMint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return find(metaplexProgramID, [][]byte{
		[]byte("metadata"),
		metaplexProgramID.Bytes(),
		nftMint.Bytes(),
		[]byte("edition"),
	})
}

func find(programID solana.PublicKey, seeds [][]byte) (solana.PublicKey, uint8, error) {
	addr, bump, err := solana.FindProgramAddress(seeds, programID)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("failed to find program address: %w", err)
	}
	return addr, bump, nil
}
