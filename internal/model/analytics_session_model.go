package model

import (
	"time"
)

// AnalyticsSession is one row per chat session. Fields arriving later in the
// session (geo lookups, client hints) are merged into the existing row,
// never overwriting previously known values with blanks.
type AnalyticsSession struct {
	SessionId string    `gorm:"type:varchar(64);primaryKey"`
	VisitorId string    `gorm:"type:varchar(64);index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	IpHash    string `gorm:"type:varchar(64)"`
	IpPlain   string `gorm:"type:varchar(45)"`
	UserAgent string `gorm:"type:text"`
	Locale    string `gorm:"type:varchar(35)"`
	Timezone  string `gorm:"type:varchar(64)"`
	Referrer  string `gorm:"type:text"`
	PageUrl   string `gorm:"type:text"`
	Dnt       string `gorm:"type:varchar(8)"`

	NetDownlink string `gorm:"type:varchar(16)"`
	NetEffType  string `gorm:"type:varchar(16)"`
	NetRtt      string `gorm:"type:varchar(16)"`

	GeoCity    string  `gorm:"type:varchar(128)"`
	GeoRegion  string  `gorm:"type:varchar(128)"`
	GeoCountry string  `gorm:"type:varchar(128)"`
	GeoLat     float64 `gorm:"type:double precision"`
	GeoLon     float64 `gorm:"type:double precision"`
	GeoIsp     string  `gorm:"type:varchar(256)"`
}

func (AnalyticsSession) TableName() string {
	return "analytics_sessions"
}
