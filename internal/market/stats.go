package market

// ComputeStats derives marketplace aggregates from the current listing set.
// Pure: the result is a function of the input alone.
func ComputeStats(listings []NFTListing) Stats {
	stats := Stats{TotalListings: len(listings)}
	if len(listings) == 0 {
		return stats
	}

	sellers := make(map[string]struct{}, len(listings))
	floor := listings[0].PriceSOL
	total := 0.0
	for _, l := range listings {
		total += l.PriceSOL
		if l.PriceSOL < floor {
			floor = l.PriceSOL
		}
		sellers[l.Seller.String()] = struct{}{}
	}

	stats.ListedValue = total
	stats.AveragePrice = total / float64(len(listings))
	stats.FloorPrice = floor
	stats.UniqueOwners = len(sellers)
	return stats
}
