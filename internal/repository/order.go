package repository

import (
	model "bid-ledger/internal/models"
)

// Outranks reports whether a precedes b in winner order:
// higher price first, then earlier placement, then the smaller bid id.
func Outranks(a, b model.Bid) bool {
	if c := a.Price.Compare(b.Price); c != 0 {
		return c > 0
	}
	if !a.PlacedAt.Equal(b.PlacedAt) {
		return a.PlacedAt.Before(b.PlacedAt)
	}
	return a.BidID < b.BidID
}

// HighestOf returns the winning bid of a set; false when the set is empty
func HighestOf(bids []model.Bid) (model.Bid, bool) {
	if len(bids) == 0 {
		return model.Bid{}, false
	}

	winning := bids[0]
	for _, b := range bids[1:] {
		if Outranks(b, winning) {
			winning = b
		}
	}
	return winning, true
}
