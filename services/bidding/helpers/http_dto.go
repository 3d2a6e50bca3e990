package helpers

import (
	"time"

	model "bid-ledger/internal/models"

	"github.com/samber/lo"
)

// Request/Response DTOs

// PlaceBidRequest is the body of POST /items/:item_id/bids. Price accepts a JSON number or string.
type PlaceBidRequest struct {
	UserID string      `json:"userId" binding:"required"`
	Name   string      `json:"name"`
	Price  model.Price `json:"price"`
}

type BidResponse struct {
	BidID  string      `json:"bidId"`
	ItemID string      `json:"itemId"`
	UserID string      `json:"userId"`
	Name   string      `json:"name"`
	Price  model.Price `json:"price"`
	Time   string      `json:"time"`
}

type ItemResponse struct {
	ItemID         string      `json:"itemId"`
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	StartingPrice  model.Price `json:"startingPrice"`
	AuctionEndTime string      `json:"auctionEndTime"`
}

func ToBidResponse(bid model.Bid) BidResponse {
	return BidResponse{
		BidID:  bid.BidID,
		ItemID: bid.ItemID,
		UserID: bid.UserID,
		Name:   bid.DisplayName,
		Price:  bid.Price,
		Time:   bid.PlacedAt.UTC().Format(time.RFC3339Nano),
	}
}

func ToBidResponses(bids []model.Bid) []BidResponse {
	return lo.Map(bids, func(b model.Bid, _ int) BidResponse { return ToBidResponse(b) })
}

func ToItemResponse(item model.Item) ItemResponse {
	return ItemResponse{
		ItemID:         item.ItemID,
		Title:          item.Title,
		Description:    item.Description,
		StartingPrice:  item.StartingPrice,
		AuctionEndTime: item.AuctionEndTime.UTC().Format(time.RFC3339),
	}
}

func ToItemResponses(items []model.Item) []ItemResponse {
	return lo.Map(items, func(i model.Item, _ int) ItemResponse { return ToItemResponse(i) })
}
