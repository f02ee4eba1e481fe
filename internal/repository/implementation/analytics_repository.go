package implementation

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"portfolio-chat-be/internal/model"
	"portfolio-chat-be/internal/repository/contract"
)

type analyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository creates a new analytics repository
func NewAnalyticsRepository(db *gorm.DB) contract.IAnalyticsRepository {
	return &analyticsRepository{db: db}
}

// mergedColumns are the session fields that follow merge-preserve semantics:
// an empty incoming value keeps whatever the row already holds.
var mergedColumns = []string{
	"visitor_id", "ip_hash", "ip_plain", "user_agent", "locale", "timezone",
	"referrer", "page_url", "dnt", "net_downlink", "net_eff_type", "net_rtt",
	"geo_city", "geo_region", "geo_country", "geo_isp",
}

func (r *analyticsRepository) UpsertSession(ctx context.Context, session *model.AnalyticsSession) error {
	assignments := make(map[string]interface{}, len(mergedColumns)+3)
	for _, col := range mergedColumns {
		assignments[col] = gorm.Expr(
			"COALESCE(NULLIF(excluded."+col+", ''), analytics_sessions."+col+")",
		)
	}
	// Numeric columns merge on zero instead of the empty string.
	for _, col := range []string{"geo_lat", "geo_lon"} {
		assignments[col] = gorm.Expr(
			"COALESCE(NULLIF(excluded."+col+", 0), analytics_sessions."+col+")",
		)
	}
	assignments["updated_at"] = time.Now().UTC()

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.Assignments(assignments),
	}).Create(session).Error
}

func (r *analyticsRepository) InsertMessage(ctx context.Context, message *model.AnalyticsMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *analyticsRepository) ExportMessages(ctx context.Context, since time.Time, limit int) ([]contract.MessageExportRow, error) {
	var rows []contract.MessageExportRow
	err := r.db.WithContext(ctx).
		Table("analytics_messages AS m").
		Select(`m.session_id, s.visitor_id, m.role, m.content, m.timestamp,
			m.message_len, m.response_len, m.model_name, m.server_duration_ms,
			m.missing_info, m.retrieved_sources, m.context_chars,
			s.locale, s.timezone, s.geo_city, s.geo_region, s.geo_country,
			s.referrer, s.page_url, s.dnt, s.user_agent`).
		Joins("LEFT JOIN analytics_sessions AS s ON s.session_id = m.session_id").
		Where("m.timestamp >= ?", since).
		Order("m.timestamp DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *analyticsRepository) ExportSessions(ctx context.Context, since time.Time, limit int) ([]contract.SessionExportRow, error) {
	var rows []contract.SessionExportRow
	err := r.db.WithContext(ctx).
		Table("analytics_sessions").
		Select(`session_id, visitor_id, ip_plain,
			geo_country, geo_region, geo_city, geo_lat, geo_lon,
			created_at, updated_at,
			EXTRACT(EPOCH FROM (updated_at - created_at)) AS duration_seconds`).
		Where("updated_at >= ?", since).
		Order("updated_at DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
