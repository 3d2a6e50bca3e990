package notification

import (
	"context"
	"time"

	"bid-ledger/internal/biddingerrors"
	model "bid-ledger/internal/models"

	"gorm.io/gorm"
)

type notificationRecord struct {
	NotificationID string    `gorm:"column:notification_id;primaryKey;size:64"`
	Timestamp      time.Time `gorm:"column:timestamp;not null;index:idx_notifications_timestamp"`
	Message        string    `gorm:"column:message;type:text;not null"`
}

func (notificationRecord) TableName() string {
	return "notifications"
}

// GormStore is a durable Store backed by a SQL database
type GormStore struct {
	db *gorm.DB
}

// NewGormStore migrates the notifications table and returns the store
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&notificationRecord{}); err != nil {
		return nil, biddingerrors.Unavailable("migrate notifications", err)
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) Save(ctx context.Context, n model.Notification) error {
	rec := notificationRecord{
		NotificationID: n.NotificationID,
		Timestamp:      n.Timestamp.UTC(),
		Message:        n.Message,
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return biddingerrors.Unavailable("save notification", err)
	}
	return nil
}

// List scans the whole table. Volume is bounded by the retention policy, not by this store.
func (s *GormStore) List(ctx context.Context) ([]model.Notification, error) {
	var records []notificationRecord
	if err := s.db.WithContext(ctx).Find(&records).Error; err != nil {
		return nil, biddingerrors.Unavailable("list notifications", err)
	}

	out := make([]model.Notification, 0, len(records))
	for _, rec := range records {
		out = append(out, model.Notification{
			NotificationID: rec.NotificationID,
			Timestamp:      rec.Timestamp.UTC(),
			Message:        rec.Message,
		})
	}
	return out, nil
}
