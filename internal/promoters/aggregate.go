package promoters

import (
	"sort"

	"github.com/wonny/scamdunk/internal/contracts"
	"github.com/wonny/scamdunk/internal/schemes"
)

// Aggregate rebuilds the promoter database from the scheme database.
//
// Schemes are visited in id order and accounts in stored order, so two
// runs over the same input produce identical output. Accounts whose ids
// collide after sanitizing are merged into one entry.
//
// The co-promoter pass compares every pair of promoters (O(n²)).
func Aggregate(db *contracts.SchemeDatabase) *contracts.PromoterDatabase {
	byID := make(map[string]*contracts.PromoterEntry)

	for _, schemeID := range db.SortedIDs() {
		rec := db.Schemes[schemeID]
		for _, acct := range rec.PromoterAccounts {
			if acct.Platform == "" || acct.Identifier == "" {
				continue
			}
			id := PromoterID(acct.Platform, acct.Identifier)
			entry, ok := byID[id]
			if !ok {
				entry = &contracts.PromoterEntry{
					PromoterID:     id,
					Identifier:     acct.Identifier,
					Platform:       acct.Platform,
					FirstSeen:      acct.FirstSeen,
					LastSeen:       acct.LastSeen,
					Confidence:     contracts.ConfidenceLow,
					StocksPromoted: []contracts.StockPromotion{},
					CoPromoters:    []contracts.CoPromoter{},
				}
				byID[id] = entry
			}
			addAccount(entry, rec, acct)
		}
	}

	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	entries := make([]*contracts.PromoterEntry, len(ids))
	for i, id := range ids {
		entries[i] = byID[id]
		entries[i].IsActive = isActive(entries[i])
	}

	linkCoPromoters(entries)

	out := &contracts.PromoterDatabase{
		LastUpdated: db.LastUpdated,
		Promoters:   make([]contracts.PromoterEntry, 0, len(entries)),
	}
	for _, entry := range entries {
		entry.RiskLevel = Tier(entry)
		out.Promoters = append(out.Promoters, *entry)

		out.TotalPromoters++
		if entry.IsActive {
			out.ActivePromoters++
		}
		if entry.RiskLevel == contracts.PromoterSerialOffender {
			out.SerialOffenders++
		}
	}
	return out
}

func addAccount(entry *contracts.PromoterEntry, rec *contracts.SchemeRecord, acct contracts.PromoterAccount) {
	entry.TotalPosts += acct.PostCount
	entry.FirstSeen = contracts.MinDate(entry.FirstSeen, acct.FirstSeen)
	entry.LastSeen = contracts.MaxDate(entry.LastSeen, acct.LastSeen)
	entry.Confidence = entry.Confidence.Upgrade(acct.Confidence)

	for i := range entry.StocksPromoted {
		sp := &entry.StocksPromoted[i]
		if sp.Symbol == rec.Symbol && sp.SchemeID == rec.SchemeID {
			sp.PostCount += acct.PostCount
			sp.FirstSeen = contracts.MinDate(sp.FirstSeen, acct.FirstSeen)
			sp.LastSeen = contracts.MaxDate(sp.LastSeen, acct.LastSeen)
			return
		}
	}

	name := rec.SchemeName
	if name == "" {
		name = schemes.Name(rec)
	}
	entry.StocksPromoted = append(entry.StocksPromoted, contracts.StockPromotion{
		Symbol:       rec.Symbol,
		SchemeID:     rec.SchemeID,
		SchemeName:   name,
		SchemeStatus: rec.Status,
		FirstSeen:    acct.FirstSeen,
		LastSeen:     acct.LastSeen,
		PostCount:    acct.PostCount,
	})
}

func isActive(entry *contracts.PromoterEntry) bool {
	for _, sp := range entry.StocksPromoted {
		if sp.SchemeStatus.IsActive() {
			return true
		}
	}
	return false
}

// linkCoPromoters records a symmetric edge for every pair of promoters
// sharing at least one symbol. entries must be sorted by id.
func linkCoPromoters(entries []*contracts.PromoterEntry) {
	symbols := make([]map[string]struct{}, len(entries))
	for i, entry := range entries {
		set := make(map[string]struct{})
		for _, sym := range entry.Symbols() {
			set[sym] = struct{}{}
		}
		symbols[i] = set
	}

	for i := range entries {
		for j := i + 1; j < len(entries); j++ {
			shared := intersect(symbols[i], symbols[j])
			if len(shared) == 0 {
				continue
			}
			a, b := entries[i], entries[j]
			a.CoPromoters = append(a.CoPromoters, contracts.CoPromoter{
				PromoterID:   b.PromoterID,
				Identifier:   b.Identifier,
				Platform:     b.Platform,
				SharedStocks: shared,
			})
			b.CoPromoters = append(b.CoPromoters, contracts.CoPromoter{
				PromoterID:   a.PromoterID,
				Identifier:   a.Identifier,
				Platform:     a.Platform,
				SharedStocks: append([]string(nil), shared...),
			})
		}
	}
}

func intersect(a, b map[string]struct{}) []string {
	var out []string
	for sym := range a {
		if _, ok := b[sym]; ok {
			out = append(out, sym)
		}
	}
	sort.Strings(out)
	return out
}

// Tier assigns the promoter risk tier. First match wins:
//
//	SERIAL_OFFENDER  3+ stocks, or 2+ stocks with high confidence and a co-promoter
//	HIGH             2+ stocks, or high confidence with a co-promoter
//	MEDIUM           high confidence or any co-promoter
//	LOW              otherwise
func Tier(entry *contracts.PromoterEntry) contracts.PromoterRisk {
	stocks := len(entry.StocksPromoted)
	high := entry.Confidence == contracts.ConfidenceHigh
	linked := len(entry.CoPromoters) > 0

	switch {
	case stocks >= 3 || (stocks >= 2 && high && linked):
		return contracts.PromoterSerialOffender
	case stocks >= 2 || (high && linked):
		return contracts.PromoterHigh
	case high || linked:
		return contracts.PromoterMedium
	default:
		return contracts.PromoterLow
	}
}
