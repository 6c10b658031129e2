package repository

import (
	"context"

	"postlogin/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ChannelRepository struct {
	db *gorm.DB
}

func NewChannelRepository(db *gorm.DB) *ChannelRepository {
	return &ChannelRepository{db: db}
}

// GetByID returns the channel setting or gorm.ErrRecordNotFound.
func (r *ChannelRepository) GetByID(ctx context.Context, channelID string) (*domain.ChannelSetting, error) {
	var channel domain.ChannelSetting
	if err := r.db.WithContext(ctx).First(&channel, "id = ?", channelID).Error; err != nil {
		return nil, err
	}
	return &channel, nil
}

// Upsert inserts the channel setting or updates its business unit.
func (r *ChannelRepository) Upsert(ctx context.Context, channel *domain.ChannelSetting) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"post_login_bu", "updated_at"}),
	}).Create(channel).Error
}
