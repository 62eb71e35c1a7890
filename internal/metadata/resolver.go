// Package metadata resolves the off-chain JSON documents referenced by
// on-chain Metaplex metadata records.
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/hashicorp/go-retryablehttp"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Blessedbiello/NFT-Marketplace-sub000/internal/accounts"
	"github.com/Blessedbiello/NFT-Marketplace-sub000/internal/pda"
)

// DefaultIPFSGateway serves content-addressed URIs over HTTPS.
const DefaultIPFSGateway = "https://ipfs.io/ipfs/"

const (
	batchSize       = 10
	fetchTimeout    = 30 * time.Second
	cacheTTL        = 10 * time.Minute
	cacheSweep      = 20 * time.Minute
	interBatchEvery = 500 * time.Millisecond
)

// Attribute is one trait of an off-chain metadata document. Values arrive as
// strings, numbers or booleans in the wild, so unmarshalling normalizes them.
type Attribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

func (a *Attribute) UnmarshalJSON(data []byte) error {
	var aux struct {
		TraitType string      `json:"trait_type"`
		Value     interface{} `json:"value"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	a.TraitType = aux.TraitType
	switch v := aux.Value.(type) {
	case string:
		a.Value = v
	case float64:
		a.Value = fmt.Sprintf("%g", v)
	case bool:
		a.Value = fmt.Sprintf("%t", v)
	case nil:
		a.Value = ""
	default:
		a.Value = fmt.Sprintf("%v", v)
	}
	return nil
}

// Document is the off-chain JSON metadata document for an NFT.
type Document struct {
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	Image        string      `json:"image"`
	Attributes   []Attribute `json:"attributes,omitempty"`
	ExternalURL  string      `json:"external_url,omitempty"`
	AnimationURL string      `json:"animation_url,omitempty"`
}

// Resolved pairs a mint's decoded on-chain record with its off-chain
// document. Document is nil when the off-chain fetch failed or the document
// was invalid; callers degrade to placeholders, not errors.
type Resolved struct {
	Mint     solana.PublicKey
	OnChain  *accounts.OnChainMetadata
	Document *Document
}

// Resolver fetches and caches metadata for mints. The cache is transient and
// keyed by mint address.
type Resolver struct {
	fetcher *accounts.Fetcher
	http    *retryablehttp.Client
	cache   *gocache.Cache
	gateway string
	pacer   *rate.Limiter
}

func NewResolver(fetcher *accounts.Fetcher, gateway string) *Resolver {
	if gateway == "" {
		gateway = DefaultIPFSGateway
	}
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.HTTPClient.Timeout = fetchTimeout
	client.Logger = nil

	return &Resolver{
		fetcher: fetcher,
		http:    client,
		cache:   gocache.New(cacheTTL, cacheSweep),
		gateway: gateway,
		pacer:   rate.NewLimiter(rate.Every(interBatchEvery), 1),
	}
}

// NormalizeURI rewrites ipfs:// URIs to the resolver's HTTPS gateway. Other
// schemes pass through trimmed.
func (r *Resolver) NormalizeURI(uri string) string {
	uri = strings.TrimSpace(uri)
	if strings.HasPrefix(uri, "ipfs://") {
		return r.gateway + strings.TrimPrefix(uri, "ipfs://")
	}
	return uri
}

// ResolveDocument fetches and parses the off-chain document at uri. Non-2xx
// responses, parse failures and documents without a name all resolve to an
// error the caller treats as "metadata unavailable".
func (r *Resolver) ResolveDocument(ctx context.Context, uri string) (*Document, error) {
	target := r.NormalizeURI(uri)
	if target == "" {
		return nil, fmt.Errorf("empty metadata URI")
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("bad metadata URI %q: %w", target, err)
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch metadata from %q: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("metadata fetch from %q returned status %d", target, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata body from %q: %w", target, err)
	}

	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("malformed metadata JSON from %q: %w", target, err)
	}
	if strings.TrimSpace(doc.Name) == "" {
		return nil, fmt.Errorf("metadata document from %q has no name", target)
	}

	doc.Name = strings.TrimRight(doc.Name, "\x00")
	doc.Image = r.NormalizeURI(doc.Image)
	doc.AnimationURL = r.NormalizeURI(doc.AnimationURL)
	return &doc, nil
}

// ResolveMint resolves on-chain plus off-chain metadata for one mint. An
// off-chain failure degrades to a nil Document; an on-chain failure is
// returned so the caller can skip the mint.
func (r *Resolver) ResolveMint(ctx context.Context, mint solana.PublicKey) (*Resolved, error) {
	key := mint.String()
	if cached, ok := r.cache.Get(key); ok {
		return cached.(*Resolved), nil
	}

	metadataAddr, _, err := pda.Metadata(mint)
	if err != nil {
		return nil, err
	}

	onChain, err := r.fetcher.Metadata(ctx, metadataAddr)
	if err != nil {
		return nil, err
	}

	resolved := &Resolved{Mint: mint, OnChain: onChain}
	if onChain.Uri != "" {
		doc, err := r.ResolveDocument(ctx, onChain.Uri)
		if err != nil {
			zap.L().Debug("off-chain metadata unavailable",
				zap.String("mint", key),
				zap.Error(err))
		} else {
			resolved.Document = doc
		}
	}

	r.cache.Set(key, resolved, gocache.DefaultExpiration)
	return resolved, nil
}

// ResolveBatch resolves metadata for many mints in fixed-size batches run
// concurrently, pacing between batches to stay inside RPC rate tolerances.
// Mints that fail are omitted from the result; partial failure never raises.
func (r *Resolver) ResolveBatch(ctx context.Context, mints []solana.PublicKey) map[solana.PublicKey]*Resolved {
	results := make(map[solana.PublicKey]*Resolved, len(mints))
	var mu sync.Mutex

	for start := 0; start < len(mints); start += batchSize {
		if err := r.pacer.Wait(ctx); err != nil {
			break
		}

		end := start + batchSize
		if end > len(mints) {
			end = len(mints)
		}

		var wg sync.WaitGroup
		for _, mint := range mints[start:end] {
			wg.Add(1)
			go func(m solana.PublicKey) {
				defer wg.Done()
				resolved, err := r.ResolveMint(ctx, m)
				if err != nil {
					zap.L().Debug("skipping mint with unresolvable metadata",
						zap.String("mint", m.String()),
						zap.Error(err))
					return
				}
				mu.Lock()
				results[m] = resolved
				mu.Unlock()
			}(mint)
		}
		wg.Wait()
	}

	return results
}
