package model

import (
	"time"

	"gorm.io/datatypes"
)

// AnalyticsMessage is an append-only log of chat turns, one row per message.
// Assistant rows carry generation metadata; user rows leave those fields zero.
type AnalyticsMessage struct {
	Id        uint      `gorm:"primaryKey;autoIncrement"`
	SessionId string    `gorm:"type:varchar(64);not null;index"`
	Role      string    `gorm:"type:varchar(16);not null"`
	Content   string    `gorm:"type:text;not null"`
	Timestamp time.Time `gorm:"not null;index"`

	MessageLen  int `gorm:"not null"`
	ResponseLen int

	ModelName        string `gorm:"type:varchar(128)"`
	ServerDurationMs int64
	MissingInfo      bool
	RetrievedSources datatypes.JSON `gorm:"type:jsonb"`
	ContextChars     int
}

func (AnalyticsMessage) TableName() string {
	return "analytics_messages"
}
