package auth

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

func TestEmptyAllowlistLeavesAdminOpen(t *testing.T) {
	p := NewPolicyService("")
	require.True(t, p.IsAdmin(solana.NewWallet().PublicKey()))
}

func TestAllowlistedWalletIsAdmin(t *testing.T) {
	admin := solana.NewWallet().PublicKey()
	other := solana.NewWallet().PublicKey()

	p := NewPolicyService(admin.String())
	require.True(t, p.IsAdmin(admin))
	require.False(t, p.IsAdmin(other))
}

func TestAllowlistParsesCommaSeparatedWithSpaces(t *testing.T) {
	a := solana.NewWallet().PublicKey()
	b := solana.NewWallet().PublicKey()

	p := NewPolicyService(a.String() + " , " + b.String())
	require.True(t, p.IsAdmin(a))
	require.True(t, p.IsAdmin(b))
}

func TestMalformedAddressesAreSkipped(t *testing.T) {
	admin := solana.NewWallet().PublicKey()

	p := NewPolicyService("garbage!!," + admin.String())
	require.Len(t, p.AdminWallets, 1)
	require.True(t, p.IsAdmin(admin))
}
