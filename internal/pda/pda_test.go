package pda

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

var testProgramID = solana.MustPublicKeyFromBase58("BPFLoaderUpgradeab1e11111111111111111111111")

func TestMarketplaceDerivationIsDeterministic(t *testing.T) {
	addr1, bump1, err := Marketplace(testProgramID, "main")
	require.NoError(t, err)
	addr2, bump2, err := Marketplace(testProgramID, "main")
	require.NoError(t, err)

	require.Equal(t, addr1, addr2)
	require.Equal(t, bump1, bump2)
}

func TestMarketplaceDerivationVariesByName(t *testing.T) {
	addr1, _, err := Marketplace(testProgramID, "main")
	require.NoError(t, err)
	addr2, _, err := Marketplace(testProgramID, "other")
	require.NoError(t, err)

	require.NotEqual(t, addr1, addr2)
}

func TestListingDerivationVariesByMint(t *testing.T) {
	marketplace, _, err := Marketplace(testProgramID, "main")
	require.NoError(t, err)

	mintA := solana.NewWallet().PublicKey()
	mintB := solana.NewWallet().PublicKey()

	listingA, _, err := Listing(testProgramID, marketplace, mintA)
	require.NoError(t, err)
	listingB, _, err := Listing(testProgramID, marketplace, mintB)
	require.NoError(t, err)

	require.NotEqual(t, listingA, listingB)
}

func TestVaultIsAssociatedTokenAddress(t *testing.T) {
	marketplace, _, err := Marketplace(testProgramID, "main")
	require.NoError(t, err)
	mint := solana.NewWallet().PublicKey()
	listing, _, err := Listing(testProgramID, marketplace, mint)
	require.NoError(t, err)

	vault, err := Vault(listing, mint)
	require.NoError(t, err)

	want, _, err := solana.FindAssociatedTokenAddress(listing, mint)
	require.NoError(t, err)
	require.Equal(t, want, vault)
	require.NotEqual(t, listing, vault)
}

func TestMetadataDerivationMatchesMetaplexSeeds(t *testing.T) {
	mint := solana.NewWallet().PublicKey()

	got, bump, err := Metadata(mint)
	require.NoError(t, err)

	want, wantBump, err := solana.FindProgramAddress(
		[][]byte{
			[]byte("metadata"),
			MetaplexProgramID().Bytes(),
			mint.Bytes(),
		},
		MetaplexProgramID(),
	)
	require.NoError(t, err)
	require.Equal(t, want, got)
	require.Equal(t, wantBump, bump)
}

func TestMasterEditionDiffersFromMetadata(t *testing.T) {
	mint := solana.NewWallet().PublicKey()

	metadataAddr, _, err := Metadata(mint)
	require.NoError(t, err)
	editionAddr, _, err := MasterEdition(mint)
	require.NoError(t, err)

	require.NotEqual(t, metadataAddr, editionAddr)
}
