package models

import (
	"time"
)

// Item represents an auction item held by the external catalog
type Item struct {
	ItemID         string    `json:"itemId"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	StartingPrice  Price     `json:"startingPrice"`
	AuctionEndTime time.Time `json:"auctionEndTime"`
}

// Closed reports whether the auction for the item has ended at now
func (i Item) Closed(now time.Time) bool {
	return !now.Before(i.AuctionEndTime)
}

// Bid represents a user's bid on an item. Bids are never modified once appended.
type Bid struct {
	BidID       string    `json:"bidId"`
	ItemID      string    `json:"itemId"`
	UserID      string    `json:"userId"`
	DisplayName string    `json:"name"`
	Price       Price     `json:"price"`
	PlacedAt    time.Time `json:"time"`
}

// OutcomeStatus classifies a user's bid against an item's auction
type OutcomeStatus string

const (
	StatusOngoing    OutcomeStatus = "ongoing"
	StatusWon        OutcomeStatus = "won"
	StatusLost       OutcomeStatus = "lost"
	StatusUnresolved OutcomeStatus = "unresolved"
)

// Outcome is derived per (user, item) and never persisted.
// UserID, DisplayName and Price describe the current or winning bid, not the caller's own bid.
type Outcome struct {
	ItemID      string        `json:"itemId"`
	Status      OutcomeStatus `json:"status"`
	BidID       string        `json:"bidId"`
	UserID      string        `json:"user_id,omitempty"`
	DisplayName string        `json:"user_name,omitempty"`
	Price       *Price        `json:"price,omitempty"`
	Error       string        `json:"error,omitempty"`
}

// Notification is a delivered new-bid notice
type Notification struct {
	NotificationID string    `json:"notificationId"`
	Timestamp      time.Time `json:"timestamp"`
	Message        string    `json:"message"`
}
