package contract

import (
	"context"
	"time"

	"gorm.io/datatypes"

	"portfolio-chat-be/internal/model"
)

// MessageExportRow is one chat message joined with its session's visitor
// context, shaped for downstream analysis tooling.
type MessageExportRow struct {
	SessionId        string         `json:"session_id"`
	VisitorId        string         `json:"visitor_id"`
	Role             string         `json:"role"`
	Content          string         `json:"content"`
	Timestamp        time.Time      `json:"timestamp"`
	MessageLen       int            `json:"message_len"`
	ResponseLen      int            `json:"response_len"`
	ModelName        string         `json:"model_name"`
	ServerDurationMs int64          `json:"server_duration_ms"`
	MissingInfo      bool           `json:"missing_info"`
	RetrievedSources datatypes.JSON `json:"retrieved_sources"`
	ContextChars     int            `json:"context_chars"`
	Locale           string         `json:"locale"`
	Timezone         string         `json:"timezone"`
	GeoCity          string         `json:"geo_city"`
	GeoRegion        string         `json:"geo_region"`
	GeoCountry       string         `json:"geo_country"`
	Referrer         string         `json:"referrer"`
	PageUrl          string         `json:"page_url"`
	Dnt              string         `json:"dnt"`
	UserAgent        string         `json:"user_agent"`
}

// SessionExportRow is one session row with its lifetime computed from the
// row's own timestamps, so sessions without persisted messages still export.
type SessionExportRow struct {
	SessionId       string    `json:"session_id"`
	VisitorId       string    `json:"visitor_id"`
	IpPlain         string    `json:"ip_plain"`
	GeoCountry      string    `json:"geo_country"`
	GeoRegion       string    `json:"geo_region"`
	GeoCity         string    `json:"geo_city"`
	GeoLat          float64   `json:"geo_lat"`
	GeoLon          float64   `json:"geo_lon"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	DurationSeconds float64   `json:"duration_seconds"`
}

// IAnalyticsRepository persists visitor analytics. All writes are best-effort
// from the caller's perspective: a failed insert never blocks a chat reply.
type IAnalyticsRepository interface {
	// UpsertSession inserts the session or merges the given fields into the
	// existing row. Empty incoming fields preserve stored values.
	UpsertSession(ctx context.Context, session *model.AnalyticsSession) error

	InsertMessage(ctx context.Context, message *model.AnalyticsMessage) error

	// ExportMessages returns per-message rows within the window, newest first.
	ExportMessages(ctx context.Context, since time.Time, limit int) ([]MessageExportRow, error)

	// ExportSessions returns session rows active within the window, most
	// recently active first.
	ExportSessions(ctx context.Context, since time.Time, limit int) ([]SessionExportRow, error)
}
