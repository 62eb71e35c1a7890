package program

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/require"
)

func testClient() *Client {
	programID := solana.MustPublicKeyFromBase58("BPFLoaderUpgradeab1e11111111111111111111111")
	return NewClient(nil, programID, "main", rpc.CommitmentConfirmed)
}

func TestInstructionDiscriminatorIsDeterministic(t *testing.T) {
	require.Equal(t,
		InstructionDiscriminator("list_nft"),
		InstructionDiscriminator("list_nft"))
	require.NotEqual(t,
		InstructionDiscriminator("list_nft"),
		InstructionDiscriminator("delist_nft"))
}

func TestEncodeArgsPrefixesDiscriminator(t *testing.T) {
	data, err := encodeArgs("list_nft", uint64(1_000_000_000))
	require.NoError(t, err)

	disc := InstructionDiscriminator("list_nft")
	require.Equal(t, disc[:], data[:8])
	// u64 Borsh little-endian after the discriminator.
	require.Equal(t, []byte{0x00, 0xCA, 0x9A, 0x3B, 0x00, 0x00, 0x00, 0x00}, data[8:])
}

func TestListNftInstructionAccounts(t *testing.T) {
	c := testClient()
	maker := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()

	ix, err := c.listNftInstruction(maker, mint, 1_000_000_000)
	require.NoError(t, err)

	accountsList := ix.Accounts()
	require.Len(t, accountsList, 11)
	require.Equal(t, maker, accountsList[0].PublicKey)
	require.True(t, accountsList[0].IsSigner)
	require.True(t, accountsList[0].IsWritable)
	require.Equal(t, solana.SystemProgramID, accountsList[len(accountsList)-1].PublicKey)
}

func TestPurchaseNftInstructionPaysMakerAndTreasury(t *testing.T) {
	c := testClient()
	taker := solana.NewWallet().PublicKey()
	maker := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()

	ix, err := c.purchaseNftInstruction(taker, maker, mint)
	require.NoError(t, err)

	accountsList := ix.Accounts()
	require.Equal(t, taker, accountsList[0].PublicKey)
	require.True(t, accountsList[0].IsSigner)
	require.Equal(t, maker, accountsList[1].PublicKey)
	require.True(t, accountsList[1].IsWritable)
	require.False(t, accountsList[1].IsSigner)
}

func TestUpdateFeeInstruction(t *testing.T) {
	c := testClient()
	admin := solana.NewWallet().PublicKey()

	ix, err := c.updateFeeInstruction(admin, 500)
	require.NoError(t, err)

	data, err := ix.Data()
	require.NoError(t, err)
	disc := InstructionDiscriminator("update_fee")
	require.Equal(t, disc[:], data[:8])
	require.Equal(t, []byte{0xF4, 0x01}, data[8:])

	accountsList := ix.Accounts()
	require.Len(t, accountsList, 2)
	require.True(t, accountsList[0].IsSigner)
}

func TestDeriveForMintIsDeterministic(t *testing.T) {
	c := testClient()
	mint := solana.NewWallet().PublicKey()

	d1, err := c.deriveForMint(mint)
	require.NoError(t, err)
	d2, err := c.deriveForMint(mint)
	require.NoError(t, err)

	require.Equal(t, d1, d2)
	require.NotEqual(t, d1.listing, d1.vault)
}
