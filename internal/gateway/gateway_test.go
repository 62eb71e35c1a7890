package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/Blessedbiello/NFT-Marketplace-sub000/internal/apperr"
	"github.com/Blessedbiello/NFT-Marketplace-sub000/internal/auth"
	"github.com/Blessedbiello/NFT-Marketplace-sub000/internal/ratelimit"
	"github.com/Blessedbiello/NFT-Marketplace-sub000/internal/wallet"
)

func testWallet() *wallet.Wallet {
	return wallet.FromPrivateKey(solana.NewWallet().PrivateKey)
}

func openLimiter() *ratelimit.Limiter {
	return ratelimit.New("", map[string]ratelimit.Rule{
		CategoryTransactions: {MaxCalls: 100, Window: time.Minute},
	})
}

func exhaustedLimiter() *ratelimit.Limiter {
	l := ratelimit.New("", map[string]ratelimit.Rule{
		CategoryTransactions: {MaxCalls: 1, Window: time.Minute},
	})
	l.RecordCall(CategoryTransactions)
	return l
}

func TestGatewayRejectsDisconnectedWallet(t *testing.T) {
	g := New(nil, openLimiter(), nil, time.Second, nil)

	_, err := g.ListNft(context.Background(), nil, solana.NewWallet().PublicKey(), 1.0)

	var classified *apperr.Error
	require.ErrorAs(t, err, &classified)
	require.Equal(t, apperr.KindWalletConnection, classified.Kind)
}

func TestGatewayValidatesBeforeDispatch(t *testing.T) {
	// The nil program client proves validation fails locally, before any
	// network call could be attempted.
	g := New(nil, openLimiter(), nil, time.Second, nil)

	_, err := g.ListNft(context.Background(), testWallet(), solana.NewWallet().PublicKey(), 0.0005)
	var classified *apperr.Error
	require.ErrorAs(t, err, &classified)
	require.Equal(t, apperr.KindValidation, classified.Kind)
}

func TestGatewayRateLimitsWithoutAttemptingCall(t *testing.T) {
	g := New(nil, exhaustedLimiter(), nil, time.Second, nil)

	_, err := g.PurchaseNft(context.Background(), testWallet(),
		solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey())

	var classified *apperr.Error
	require.ErrorAs(t, err, &classified)
	require.Equal(t, apperr.KindRateLimit, classified.Kind)
	require.Greater(t, classified.RetryAfter, time.Duration(0))
}

func TestGatewayDeniesNonAdminFeeUpdate(t *testing.T) {
	admin := solana.NewWallet().PublicKey()
	policy := auth.NewPolicyService(admin.String())
	g := New(nil, openLimiter(), policy, time.Second, nil)

	_, err := g.UpdateFee(context.Background(), testWallet(), 100)
	var classified *apperr.Error
	require.ErrorAs(t, err, &classified)
	require.Equal(t, apperr.KindValidation, classified.Kind)
}

func TestExecuteTriggersRefreshOnSuccess(t *testing.T) {
	refreshed := false
	g := New(nil, openLimiter(), nil, time.Second, func() { refreshed = true })

	want := solana.Signature{1, 2, 3}
	sig, err := g.execute(context.Background(), "test_op", func(ctx context.Context) (solana.Signature, error) {
		return want, nil
	})
	require.NoError(t, err)
	require.Equal(t, want, sig)
	require.True(t, refreshed)
}

func TestExecuteClassifiesTimeoutAsNetwork(t *testing.T) {
	refreshed := false
	g := New(nil, openLimiter(), nil, 10*time.Millisecond, func() { refreshed = true })

	_, err := g.execute(context.Background(), "slow_op", func(ctx context.Context) (solana.Signature, error) {
		<-ctx.Done()
		return solana.Signature{}, ctx.Err()
	})

	var classified *apperr.Error
	require.ErrorAs(t, err, &classified)
	require.Equal(t, apperr.KindNetwork, classified.Kind)
	// Timeout is ambiguous: the refresh trigger must not fire, and the raw
	// error must not claim the transaction failed.
	require.False(t, refreshed)
	require.ErrorIs(t, classified.Raw, context.DeadlineExceeded)
}

func TestExecuteClassifiesFailures(t *testing.T) {
	g := New(nil, openLimiter(), nil, time.Second, nil)

	_, err := g.execute(context.Background(), "bad_op", func(ctx context.Context) (solana.Signature, error) {
		return solana.Signature{}, errors.New("connection refused")
	})

	var classified *apperr.Error
	require.ErrorAs(t, err, &classified)
	require.Equal(t, apperr.KindNetwork, classified.Kind)
}
