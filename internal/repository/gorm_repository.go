package repository

import (
	"context"
	"fmt"
	"time"

	"bid-ledger/internal/biddingerrors"
	model "bid-ledger/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDatabase opens a gorm connection for the configured storage driver
func OpenDatabase(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("open database: unsupported driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, biddingerrors.Unavailable("open database", err)
	}
	return db, nil
}

// bidRecord is the persisted row of a bid. The numeric price column only serves the
// (item, price) index; sqlite stores it as a float. The exact decimal text lives in price_text.
type bidRecord struct {
	BidID       string      `gorm:"column:bid_id;primaryKey;size:64"`
	ItemID      string      `gorm:"column:item_id;size:64;not null;index:idx_bids_item_price,priority:1"`
	UserID      string      `gorm:"column:user_id;size:64;not null;index:idx_bids_user"`
	DisplayName string      `gorm:"column:display_name;size:255"`
	Price       model.Price `gorm:"column:price;type:numeric;not null;index:idx_bids_item_price,priority:2,sort:desc"`
	PriceText   model.Price `gorm:"column:price_text;type:text;not null"`
	PlacedAt    time.Time   `gorm:"column:placed_at;not null"`
}

func (bidRecord) TableName() string {
	return "bids"
}

func toRecord(b model.Bid) bidRecord {
	return bidRecord{
		BidID:       b.BidID,
		ItemID:      b.ItemID,
		UserID:      b.UserID,
		DisplayName: b.DisplayName,
		Price:       b.Price,
		PriceText:   b.Price,
		PlacedAt:    b.PlacedAt.UTC(),
	}
}

func (r bidRecord) toBid() model.Bid {
	return model.Bid{
		BidID:       r.BidID,
		ItemID:      r.ItemID,
		UserID:      r.UserID,
		DisplayName: r.DisplayName,
		Price:       r.PriceText,
		PlacedAt:    r.PlacedAt.UTC(),
	}
}

// GormRepo is a durable Ledger backed by a SQL database
type GormRepo struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormRepo migrates the bids table and returns the ledger
func NewGormRepo(db *gorm.DB) (*GormRepo, error) {
	if err := db.AutoMigrate(&bidRecord{}); err != nil {
		return nil, biddingerrors.Unavailable("migrate bids", err)
	}
	return &GormRepo{db: db, now: time.Now}, nil
}

// Append inserts a single bid row
func (r *GormRepo) Append(ctx context.Context, bid model.Bid) (model.Bid, error) {
	bid, err := prepareBid(bid, r.now)
	if err != nil {
		return model.Bid{}, err
	}

	rec := toRecord(bid)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return model.Bid{}, biddingerrors.Unavailable("append bid for item "+bid.ItemID, err)
	}
	return rec.toBid(), nil
}

// ListByItem returns all bids for an item ordered by placement
func (r *GormRepo) ListByItem(ctx context.Context, itemID string) ([]model.Bid, error) {
	var records []bidRecord
	err := r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("placed_at ASC").Order("bid_id ASC").
		Find(&records).Error
	if err != nil {
		return nil, biddingerrors.Unavailable("list bids for item "+itemID, err)
	}
	return toBids(records), nil
}

// ListByUser returns all bids a user placed ordered by placement
func (r *GormRepo) ListByUser(ctx context.Context, userID string) ([]model.Bid, error) {
	var records []bidRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("placed_at ASC").Order("bid_id ASC").
		Find(&records).Error
	if err != nil {
		return nil, biddingerrors.Unavailable("list bids for user "+userID, err)
	}
	return toBids(records), nil
}

// HighestBid reads the rows at the top of the (item, price desc) index and picks the winner
// by exact price. Distinct prices that collapse to the same stored float all land in that set.
func (r *GormRepo) HighestBid(ctx context.Context, itemID string) (model.Bid, error) {
	top := r.db.Model(&bidRecord{}).Select("MAX(price)").Where("item_id = ?", itemID)

	var records []bidRecord
	err := r.db.WithContext(ctx).
		Where("item_id = ? AND price = (?)", itemID, top).
		Find(&records).Error
	if err != nil {
		return model.Bid{}, biddingerrors.Unavailable("get highest bid for item "+itemID, err)
	}

	winning, ok := HighestOf(toBids(records))
	if !ok {
		return model.Bid{}, fmt.Errorf("get highest bid for item %s: %w", itemID, biddingerrors.ErrNoBids)
	}
	return winning, nil
}

func toBids(records []bidRecord) []model.Bid {
	bids := make([]model.Bid, 0, len(records))
	for _, rec := range records {
		bids = append(bids, rec.toBid())
	}
	return bids
}
