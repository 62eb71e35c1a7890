package program

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/Blessedbiello/NFT-Marketplace-sub000/internal/pda"
)

// InstructionDiscriminator returns the 8-byte Anchor instruction
// discriminator: sha256("global:" + name)[:8].
func InstructionDiscriminator(name string) [8]byte {
	sum := sha256.Sum256([]byte("global:" + name))
	var d [8]byte
	copy(d[:], sum[:8])
	return d
}

func encodeArgs(name string, args ...interface{}) ([]byte, error) {
	buf := new(bytes.Buffer)
	disc := InstructionDiscriminator(name)
	buf.Write(disc[:])
	enc := bin.NewBorshEncoder(buf)
	for _, arg := range args {
		if err := enc.Encode(arg); err != nil {
			return nil, fmt.Errorf("failed to encode %s args: %w", name, err)
		}
	}
	return buf.Bytes(), nil
}

// derived bundles every address a listing instruction needs. Seed order
// matches the on-chain program; see internal/pda.
type derived struct {
	marketplace solana.PublicKey
	treasury    solana.PublicKey
	listing     solana.PublicKey
	vault       solana.PublicKey
	metadata    solana.PublicKey
	edition     solana.PublicKey
}

func (c *Client) deriveForMint(nftMint solana.PublicKey) (*derived, error) {
	marketplace, _, err := pda.Marketplace(c.programID, c.marketplaceName)
	if err != nil {
		return nil, err
	}
	treasury, _, err := pda.Treasury(c.programID, marketplace)
	if err != nil {
		return nil, err
	}
	listing, _, err := pda.Listing(c.programID, marketplace, nftMint)
	if err != nil {
		return nil, err
	}
	vault, err := pda.Vault(listing, nftMint)
	if err != nil {
		return nil, err
	}
	metadata, _, err := pda.Metadata(nftMint)
	if err != nil {
		return nil, err
	}
	edition, _, err := pda.MasterEdition(nftMint)
	if err != nil {
		return nil, err
	}
	return &derived{
		marketplace: marketplace,
		treasury:    treasury,
		listing:     listing,
		vault:       vault,
		metadata:    metadata,
		edition:     edition,
	}, nil
}

// initializeMarketplaceInstruction creates the marketplace config and
// treasury accounts.
func (c *Client) initializeMarketplaceInstruction(admin solana.PublicKey, feeBps uint16) (solana.Instruction, error) {
	marketplace, _, err := pda.Marketplace(c.programID, c.marketplaceName)
	if err != nil {
		return nil, err
	}
	treasury, _, err := pda.Treasury(c.programID, marketplace)
	if err != nil {
		return nil, err
	}
	data, err := encodeArgs("initialize_marketplace", c.marketplaceName, feeBps)
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(c.programID, solana.AccountMetaSlice{
		solana.NewAccountMeta(admin, true, true),
		solana.NewAccountMeta(marketplace, true, false),
		solana.NewAccountMeta(treasury, true, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
	}, data), nil
}

// listNftInstruction escrows the NFT in the vault and creates the listing.
func (c *Client) listNftInstruction(maker, nftMint solana.PublicKey, priceLamports uint64) (solana.Instruction, error) {
	d, err := c.deriveForMint(nftMint)
	if err != nil {
		return nil, err
	}
	makerAta, _, err := solana.FindAssociatedTokenAddress(maker, nftMint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive maker token account: %w", err)
	}
	data, err := encodeArgs("list_nft", priceLamports)
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(c.programID, solana.AccountMetaSlice{
		solana.NewAccountMeta(maker, true, true),
		solana.NewAccountMeta(d.marketplace, false, false),
		solana.NewAccountMeta(nftMint, false, false),
		solana.NewAccountMeta(makerAta, true, false),
		solana.NewAccountMeta(d.vault, true, false),
		solana.NewAccountMeta(d.listing, true, false),
		solana.NewAccountMeta(d.metadata, false, false),
		solana.NewAccountMeta(d.edition, false, false),
		solana.NewAccountMeta(solana.SPLAssociatedTokenAccountProgramID, false, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
	}, data), nil
}

// purchaseNftInstruction pays the maker, deducts the fee to the treasury and
// releases the NFT from the vault.
func (c *Client) purchaseNftInstruction(taker, maker, nftMint solana.PublicKey) (solana.Instruction, error) {
	d, err := c.deriveForMint(nftMint)
	if err != nil {
		return nil, err
	}
	takerAta, _, err := solana.FindAssociatedTokenAddress(taker, nftMint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive taker token account: %w", err)
	}
	data, err := encodeArgs("purchase_nft")
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(c.programID, solana.AccountMetaSlice{
		solana.NewAccountMeta(taker, true, true),
		solana.NewAccountMeta(maker, true, false),
		solana.NewAccountMeta(d.marketplace, false, false),
		solana.NewAccountMeta(nftMint, false, false),
		solana.NewAccountMeta(takerAta, true, false),
		solana.NewAccountMeta(d.vault, true, false),
		solana.NewAccountMeta(d.listing, true, false),
		solana.NewAccountMeta(d.treasury, true, false),
		solana.NewAccountMeta(solana.SPLAssociatedTokenAccountProgramID, false, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
	}, data), nil
}

// delistNftInstruction returns the NFT to the maker and closes the listing.
func (c *Client) delistNftInstruction(maker, nftMint solana.PublicKey) (solana.Instruction, error) {
	d, err := c.deriveForMint(nftMint)
	if err != nil {
		return nil, err
	}
	makerAta, _, err := solana.FindAssociatedTokenAddress(maker, nftMint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive maker token account: %w", err)
	}
	data, err := encodeArgs("delist_nft")
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(c.programID, solana.AccountMetaSlice{
		solana.NewAccountMeta(maker, true, true),
		solana.NewAccountMeta(d.marketplace, false, false),
		solana.NewAccountMeta(nftMint, false, false),
		solana.NewAccountMeta(makerAta, true, false),
		solana.NewAccountMeta(d.vault, true, false),
		solana.NewAccountMeta(d.listing, true, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
	}, data), nil
}

// updateFeeInstruction changes the marketplace fee, admin only.
func (c *Client) updateFeeInstruction(admin solana.PublicKey, newFeeBps uint16) (solana.Instruction, error) {
	marketplace, _, err := pda.Marketplace(c.programID, c.marketplaceName)
	if err != nil {
		return nil, err
	}
	data, err := encodeArgs("update_fee", newFeeBps)
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(c.programID, solana.AccountMetaSlice{
		solana.NewAccountMeta(admin, false, true),
		solana.NewAccountMeta(marketplace, true, false),
	}, data), nil
}
