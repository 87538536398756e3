package models

import "time"

// Setting is a key/value row backing the notification toggles and
// recipient lists.
type Setting struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Key   string `gorm:"size:100;uniqueIndex;not null" json:"key"`
	Value string `gorm:"size:500" json:"value"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Well-known setting keys.
const (
	SettingAdminEmail          = "admin_email"
	SettingNotifyVIP           = "notify_vip_enabled"
	SettingNotifyBlacklist     = "notify_blacklist_enabled"
	SettingVIPRecipients       = "vip_recipients"
	SettingBlacklistRecipients = "blacklist_recipients"
)
