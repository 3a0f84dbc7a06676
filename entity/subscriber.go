package entity

import "time"

// Subscriber is a Telegram account that has registered with the bot via
// /start. Admins are designated in configuration by telegram id; Enabled
// gates delivery of sync-run notifications.
type Subscriber struct {
	TelegramId   int64     `json:"telegram_id" bson:"telegram_id"`
	Username     string    `json:"username" bson:"username"`
	Enabled      bool      `json:"enabled" bson:"enabled"`
	RegisteredAt time.Time `json:"registered_at" bson:"registered_at"`
}
