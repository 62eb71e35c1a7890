package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/Blessedbiello/NFT-Marketplace-sub000/internal/accounts"
	"github.com/Blessedbiello/NFT-Marketplace-sub000/internal/apperr"
	"github.com/Blessedbiello/NFT-Marketplace-sub000/internal/auth"
	"github.com/Blessedbiello/NFT-Marketplace-sub000/internal/config"
	"github.com/Blessedbiello/NFT-Marketplace-sub000/internal/gateway"
	"github.com/Blessedbiello/NFT-Marketplace-sub000/internal/logger"
	"github.com/Blessedbiello/NFT-Marketplace-sub000/internal/market"
	"github.com/Blessedbiello/NFT-Marketplace-sub000/internal/metadata"
	"github.com/Blessedbiello/NFT-Marketplace-sub000/internal/program"
	"github.com/Blessedbiello/NFT-Marketplace-sub000/internal/ratelimit"
	"github.com/Blessedbiello/NFT-Marketplace-sub000/internal/wallet"
)

// app bundles the wired services every command shares.
type app struct {
	cfg     *config.Config
	rpc     *rpc.Client
	builder *market.Builder
	gateway *gateway.Gateway
	limiter *ratelimit.Limiter
}

func main() {
	cliApp := &cli.App{
		Name:  "solmart",
		Usage: "CLI client for an on-chain NFT marketplace",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "debug", Usage: "enable debug logging"},
		},
		Commands: []*cli.Command{
			{
				Name:   "listings",
				Usage:  "show all current listings",
				Action: withApp(runListings),
			},
			{
				Name:   "stats",
				Usage:  "show marketplace aggregates",
				Action: withApp(runStats),
			},
			{
				Name:   "portfolio",
				Usage:  "show NFTs held by the configured wallet",
				Action: withApp(runPortfolio),
			},
			{
				Name:  "list",
				Usage: "list an NFT for sale",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "mint", Required: true, Usage: "NFT mint address"},
					&cli.Float64Flag{Name: "price", Required: true, Usage: "price in SOL"},
				},
				Action: withApp(runList),
			},
			{
				Name:  "buy",
				Usage: "purchase a listed NFT",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "mint", Required: true, Usage: "NFT mint address"},
				},
				Action: withApp(runBuy),
			},
			{
				Name:  "delist",
				Usage: "cancel your own listing",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "mint", Required: true, Usage: "NFT mint address"},
				},
				Action: withApp(runDelist),
			},
			{
				Name:  "init-marketplace",
				Usage: "create the marketplace config (admin)",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "fee-bps", Required: true, Usage: "marketplace fee in basis points"},
				},
				Action: withApp(runInitMarketplace),
			},
			{
				Name:  "update-fee",
				Usage: "change the marketplace fee (admin)",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "fee-bps", Required: true, Usage: "new fee in basis points"},
				},
				Action: withApp(runUpdateFee),
			},
			{
				Name:   "watch",
				Usage:  "refresh and print stats on an interval",
				Action: withApp(runWatch),
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		printClassified(err)
		os.Exit(1)
	}
}

// withApp wires config, logger and services before running a command.
func withApp(action func(*cli.Context, *app) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		logger.Init(cfg.Debug || c.Bool("debug"))

		rpcClient := rpc.New(cfg.RPCEndpoint)
		fetcher := accounts.NewFetcher(rpcClient, cfg.Commitment)
		resolver := metadata.NewResolver(fetcher, cfg.IPFSGateway)
		builder := market.NewBuilder(fetcher, resolver, rpcClient, cfg.ProgramID, cfg.MarketplaceName)
		limiter := ratelimit.New(cfg.StateDir, nil)
		policy := auth.NewPolicyService(cfg.AdminWallets)
		programClient := program.NewClient(rpcClient, cfg.ProgramID, cfg.MarketplaceName, cfg.Commitment)

		gw := gateway.New(programClient, limiter, policy, cfg.TxTimeout, func() {
			if _, err := builder.Refresh(context.Background()); err != nil {
				zap.L().Warn("post-transaction refresh failed", zap.Error(err))
			}
		})

		return action(c, &app{
			cfg:     cfg,
			rpc:     rpcClient,
			builder: builder,
			gateway: gw,
			limiter: limiter,
		})
	}
}

// loadWallet connects the configured wallet and records the connection in
// its rate-limit category.
func (a *app) loadWallet(ctx context.Context) (*wallet.Wallet, error) {
	if !a.limiter.CanMakeCall("wallet_connections") {
		return nil, apperr.NewRateLimit(a.limiter.RetryAfter("wallet_connections"))
	}
	w, err := wallet.Load(a.cfg.WalletPath)
	if err != nil {
		return nil, apperr.New(apperr.KindWalletConnection, err)
	}
	a.limiter.RecordCall("wallet_connections")
	a.builder.Connect(w.PublicKey())
	return w, nil
}

// refresh runs one rate-limited refresh cycle.
func (a *app) refresh(ctx context.Context) (market.Snapshot, error) {
	if !a.limiter.CanMakeCall("queries") {
		return market.Snapshot{}, apperr.NewRateLimit(a.limiter.RetryAfter("queries"))
	}
	a.limiter.RecordCall("queries")
	return a.builder.Refresh(ctx)
}

func runListings(c *cli.Context, a *app) error {
	snap, err := a.refresh(c.Context)
	if err != nil {
		return err
	}
	if len(snap.Listings) == 0 {
		fmt.Println("No active listings.")
		return nil
	}
	for _, l := range snap.Listings {
		fmt.Printf("%-44s  %10.4f SOL  %s\n", l.Mint, l.PriceSOL, l.Name)
	}
	return nil
}

func runStats(c *cli.Context, a *app) error {
	snap, err := a.refresh(c.Context)
	if err != nil {
		return err
	}
	s := snap.Stats
	fmt.Printf("Listings:      %d\n", s.TotalListings)
	fmt.Printf("Floor price:   %.4f SOL\n", s.FloorPrice)
	fmt.Printf("Listed value:  %.4f SOL\n", s.ListedValue)
	fmt.Printf("Average price: %.4f SOL\n", s.AveragePrice)
	fmt.Printf("Unique owners: %d\n", s.UniqueOwners)
	if snap.Marketplace != nil {
		fmt.Printf("Fee:           %d bps\n", snap.Marketplace.FeeBasisPoints)
	}
	return nil
}

func runPortfolio(c *cli.Context, a *app) error {
	w, err := a.loadWallet(c.Context)
	if err != nil {
		return err
	}
	if lamports, err := w.Balance(c.Context, a.rpc, a.cfg.Commitment); err == nil {
		fmt.Printf("Balance: %.4f SOL\n", market.LamportsToSOL(lamports))
	}
	snap, err := a.refresh(c.Context)
	if err != nil {
		return err
	}
	if len(snap.Portfolio) == 0 {
		fmt.Println("No NFTs in wallet.")
		return nil
	}
	for _, item := range snap.Portfolio {
		status := ""
		if item.Listed {
			status = fmt.Sprintf("  (listed at %.4f SOL)", item.PriceSOL)
		}
		fmt.Printf("%-44s  %s%s\n", item.Mint, item.Name, status)
	}
	return nil
}

func runList(c *cli.Context, a *app) error {
	w, err := a.loadWallet(c.Context)
	if err != nil {
		return err
	}
	mint, err := solana.PublicKeyFromBase58(c.String("mint"))
	if err != nil {
		return apperr.NewValidation("mint", "Malformed mint address")
	}
	sig, err := a.gateway.ListNft(c.Context, w, mint, c.Float64("price"))
	if err != nil {
		return err
	}
	fmt.Printf("Listed. Transaction: %s\n", sig)
	return nil
}

func runBuy(c *cli.Context, a *app) error {
	w, err := a.loadWallet(c.Context)
	if err != nil {
		return err
	}
	mint, err := solana.PublicKeyFromBase58(c.String("mint"))
	if err != nil {
		return apperr.NewValidation("mint", "Malformed mint address")
	}

	snap, err := a.refresh(c.Context)
	if err != nil {
		return err
	}
	var maker *solana.PublicKey
	for _, l := range snap.Listings {
		if l.Mint.Equals(mint) {
			seller := l.Seller
			maker = &seller
			break
		}
	}
	if maker == nil {
		return apperr.NewValidation("mint", "No active listing for this mint")
	}

	sig, err := a.gateway.PurchaseNft(c.Context, w, *maker, mint)
	if err != nil {
		return err
	}
	fmt.Printf("Purchased. Transaction: %s\n", sig)
	return nil
}

func runDelist(c *cli.Context, a *app) error {
	w, err := a.loadWallet(c.Context)
	if err != nil {
		return err
	}
	mint, err := solana.PublicKeyFromBase58(c.String("mint"))
	if err != nil {
		return apperr.NewValidation("mint", "Malformed mint address")
	}
	sig, err := a.gateway.DelistNft(c.Context, w, mint)
	if err != nil {
		return err
	}
	fmt.Printf("Delisted. Transaction: %s\n", sig)
	return nil
}

func runInitMarketplace(c *cli.Context, a *app) error {
	w, err := a.loadWallet(c.Context)
	if err != nil {
		return err
	}
	sig, err := a.gateway.InitializeMarketplace(c.Context, w, a.cfg.MarketplaceName, c.Int("fee-bps"))
	if err != nil {
		return err
	}
	fmt.Printf("Marketplace %q initialized. Transaction: %s\n", a.cfg.MarketplaceName, sig)
	return nil
}

func runUpdateFee(c *cli.Context, a *app) error {
	w, err := a.loadWallet(c.Context)
	if err != nil {
		return err
	}
	sig, err := a.gateway.UpdateFee(c.Context, w, c.Int("fee-bps"))
	if err != nil {
		return err
	}
	fmt.Printf("Fee updated. Transaction: %s\n", sig)
	return nil
}

func runWatch(c *cli.Context, a *app) error {
	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := a.refresh(ctx); err != nil {
		return err
	}
	if err := runStats(c, a); err != nil {
		return err
	}
	zap.L().Info("watching for changes", zap.Duration("interval", a.cfg.RefreshInterval))
	a.builder.RunInterval(ctx, a.cfg.RefreshInterval)
	return nil
}

// printClassified renders a classified error with its recovery suggestions;
// raw vendor text stays out of the default path.
func printClassified(err error) {
	classified := apperr.Classify(err)
	fmt.Fprintf(os.Stderr, "Error: %s\n", classified.Message)
	if classified.RetryAfter > 0 {
		fmt.Fprintf(os.Stderr, "Retry in %s.\n", classified.RetryAfter.Round(time.Second))
	}
	for _, s := range classified.Suggestions() {
		fmt.Fprintf(os.Stderr, "  - %s\n", s)
	}
	if logger.IsDebugEnabled() && classified.Raw != nil {
		zap.L().Debug("raw error", zap.Error(classified.Raw))
	}
}
