package accounts

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"

	bin "github.com/gagliardetto/binary"
	tokenmetadata "github.com/gagliardetto/metaplex-go/clients/token-metadata"
	"go.uber.org/zap"
)

// DecodeError reports that account bytes did not match the declared schema.
// A single undecodable account is skipped by callers, never fatal to a batch.
type DecodeError struct {
	Account string
	Reason  string
	Err     error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode %s: %s: %v", e.Account, e.Reason, e.Err)
	}
	return fmt.Sprintf("decode %s: %s", e.Account, e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Sanity bounds for the manual metadata fallback parser. A declared length
// beyond these means the offsets are misaligned, not that the field is big.
const (
	maxNameLen   = 200
	maxSymbolLen = 50
	maxURILen    = 1000
)

// DecodeMarketplace decodes a marketplace config account: 8-byte Anchor
// discriminator followed by fixed-width Borsh fields.
func DecodeMarketplace(data []byte) (*MarketplaceConfig, error) {
	rest, err := stripDiscriminator(data, marketplaceDiscriminator, "Marketplace")
	if err != nil {
		return nil, err
	}

	var cfg MarketplaceConfig
	if err := bin.NewBorshDecoder(rest).Decode(&cfg); err != nil {
		return nil, &DecodeError{Account: "Marketplace", Reason: "borsh decode failed", Err: err}
	}
	cfg.Name = trimPadding(cfg.Name)
	return &cfg, nil
}

// DecodeListing decodes a listing account.
func DecodeListing(data []byte) (*ListingRecord, error) {
	rest, err := stripDiscriminator(data, listingDiscriminator, "Listing")
	if err != nil {
		return nil, err
	}

	var rec ListingRecord
	if err := bin.NewBorshDecoder(rest).Decode(&rec); err != nil {
		return nil, &DecodeError{Account: "Listing", Reason: "borsh decode failed", Err: err}
	}
	return &rec, nil
}

// DecodeMetadata decodes a Metaplex metadata account. The structured Borsh
// decode is attempted first; on format drift or truncation it falls back to
// a manual scan of the fixed head of the layout.
func DecodeMetadata(data []byte) (*OnChainMetadata, error) {
	if meta, err := decodeMetadataStructured(data); err == nil {
		return meta, nil
	} else {
		zap.L().Debug("structured metadata decode failed, trying manual fallback", zap.Error(err))
	}
	return decodeMetadataManual(data)
}

func decodeMetadataStructured(data []byte) (*OnChainMetadata, error) {
	var onChain tokenmetadata.Metadata
	if err := bin.NewBorshDecoder(data).Decode(&onChain); err != nil {
		return nil, err
	}

	meta := &OnChainMetadata{
		UpdateAuthority:      onChain.UpdateAuthority,
		Mint:                 onChain.Mint,
		Name:                 trimPadding(onChain.Data.Name),
		Symbol:               trimPadding(onChain.Data.Symbol),
		Uri:                  trimPadding(onChain.Data.Uri),
		SellerFeeBasisPoints: onChain.Data.SellerFeeBasisPoints,
	}
	if onChain.Data.Creators != nil {
		for _, c := range *onChain.Data.Creators {
			meta.Creators = append(meta.Creators, Creator{
				Address:  c.Address,
				Verified: c.Verified,
				Share:    c.Share,
			})
		}
	}
	return meta, nil
}

// decodeMetadataManual scans the fixed head of the Metaplex layout by hand:
// 1 key byte, update authority (32), mint (32), then u32-length-prefixed
// name, symbol and uri in that order.
func decodeMetadataManual(data []byte) (*OnChainMetadata, error) {
	const headLen = 1 + 32 + 32
	if len(data) < headLen {
		return nil, &DecodeError{Account: "Metadata", Reason: fmt.Sprintf("account too short: %d bytes", len(data))}
	}

	meta := &OnChainMetadata{}
	copy(meta.UpdateAuthority[:], data[1:33])
	copy(meta.Mint[:], data[33:65])
	offset := headLen

	fields := []struct {
		name string
		max  int
		dest *string
	}{
		{"name", maxNameLen, &meta.Name},
		{"symbol", maxSymbolLen, &meta.Symbol},
		{"uri", maxURILen, &meta.Uri},
	}

	for _, f := range fields {
		value, next, err := readLengthPrefixed(data, offset, f.max)
		if err != nil {
			return nil, &DecodeError{Account: "Metadata", Reason: fmt.Sprintf("bad %s field", f.name), Err: err}
		}
		*f.dest = trimPadding(value)
		offset = next
	}

	return meta, nil
}

func readLengthPrefixed(data []byte, offset, maxLen int) (string, int, error) {
	if offset+4 > len(data) {
		return "", 0, fmt.Errorf("length prefix overruns buffer at offset %d", offset)
	}
	length := int(binary.LittleEndian.Uint32(data[offset : offset+4]))
	if length > maxLen {
		return "", 0, fmt.Errorf("declared length %d exceeds bound %d", length, maxLen)
	}
	start := offset + 4
	if start+length > len(data) {
		return "", 0, fmt.Errorf("field of %d bytes overruns buffer at offset %d", length, start)
	}
	return string(data[start : start+length]), start + length, nil
}

func stripDiscriminator(data []byte, want [8]byte, account string) ([]byte, error) {
	if len(data) < 8 {
		return nil, &DecodeError{Account: account, Reason: fmt.Sprintf("account too short: %d bytes", len(data))}
	}
	if !bytes.Equal(data[:8], want[:]) {
		return nil, &DecodeError{Account: account, Reason: "discriminator mismatch"}
	}
	return data[8:], nil
}

func trimPadding(s string) string {
	return strings.TrimSpace(strings.TrimRight(s, "\x00"))
}
