package domain

import "time"

// ChannelSetting maps an inbound channel id to the business unit used
// for post-login sessions on that channel.
type ChannelSetting struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	PostLoginBU string    `json:"postLoginBu" gorm:"column:post_login_bu"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (ChannelSetting) TableName() string { return "channel_settings" }
