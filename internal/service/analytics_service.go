package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"portfolio-chat-be/internal/dto"
	"portfolio-chat-be/internal/repository/contract"
)

const (
	ExportShapeMessages = "messages"
	ExportShapeSessions = "sessions"

	ExportFormatNDJSON = "ndjson"
	ExportFormatCSV    = "csv"

	defaultExportDays  = 30
	defaultExportLimit = 1000
	maxExportLimit     = 10000
)

// ErrBadExportQuery marks an unexportable shape or format combination.
var ErrBadExportQuery = errors.New("bad export query")

type IAnalyticsService interface {
	// Export renders analytics rows in the requested shape and format and
	// returns the body together with its content type.
	Export(ctx context.Context, query dto.AnalyticsExportQuery) ([]byte, string, error)
}

type analyticsService struct {
	repo contract.IAnalyticsRepository
}

func NewAnalyticsService(repo contract.IAnalyticsRepository) IAnalyticsService {
	return &analyticsService{repo: repo}
}

func (s *analyticsService) Export(ctx context.Context, query dto.AnalyticsExportQuery) ([]byte, string, error) {
	days := query.Days
	if days <= 0 {
		days = defaultExportDays
	}
	limit := query.Limit
	if limit <= 0 {
		limit = defaultExportLimit
	}
	if limit > maxExportLimit {
		limit = maxExportLimit
	}
	since := time.Now().UTC().AddDate(0, 0, -days)

	shape := query.Shape
	if shape == "" {
		shape = ExportShapeMessages
	}
	format := query.Format
	if format == "" {
		format = ExportFormatNDJSON
	}

	switch shape {
	case ExportShapeMessages:
		rows, err := s.repo.ExportMessages(ctx, since, limit)
		if err != nil {
			return nil, "", err
		}
		return renderMessages(rows, format)
	case ExportShapeSessions:
		rows, err := s.repo.ExportSessions(ctx, since, limit)
		if err != nil {
			return nil, "", err
		}
		return renderSessions(rows, format)
	default:
		return nil, "", fmt.Errorf("%w: unknown shape %q", ErrBadExportQuery, shape)
	}
}

func renderMessages(rows []contract.MessageExportRow, format string) ([]byte, string, error) {
	switch format {
	case ExportFormatNDJSON:
		return renderNDJSON(len(rows), func(i int) interface{} { return rows[i] })
	case ExportFormatCSV:
		header := []string{
			"session_id", "visitor_id", "role", "content", "timestamp",
			"message_len", "response_len", "model_name", "server_duration_ms",
			"missing_info", "retrieved_sources", "context_chars",
			"locale", "timezone", "geo_city", "geo_region", "geo_country",
			"referrer", "page_url", "dnt", "user_agent",
		}
		return renderCSV(header, len(rows), func(i int) []string {
			r := rows[i]
			return []string{
				r.SessionId, r.VisitorId, r.Role, r.Content,
				r.Timestamp.UTC().Format(time.RFC3339),
				strconv.Itoa(r.MessageLen), strconv.Itoa(r.ResponseLen),
				r.ModelName, strconv.FormatInt(r.ServerDurationMs, 10),
				strconv.FormatBool(r.MissingInfo), string(r.RetrievedSources),
				strconv.Itoa(r.ContextChars),
				r.Locale, r.Timezone, r.GeoCity, r.GeoRegion, r.GeoCountry,
				r.Referrer, r.PageUrl, r.Dnt, r.UserAgent,
			}
		})
	default:
		return nil, "", fmt.Errorf("%w: unknown format %q", ErrBadExportQuery, format)
	}
}

func renderSessions(rows []contract.SessionExportRow, format string) ([]byte, string, error) {
	switch format {
	case ExportFormatNDJSON:
		return renderNDJSON(len(rows), func(i int) interface{} { return rows[i] })
	case ExportFormatCSV:
		header := []string{
			"session_id", "visitor_id", "ip_plain",
			"geo_country", "geo_region", "geo_city", "geo_lat", "geo_lon",
			"created_at", "updated_at", "duration_seconds",
		}
		return renderCSV(header, len(rows), func(i int) []string {
			r := rows[i]
			return []string{
				r.SessionId, r.VisitorId, r.IpPlain,
				r.GeoCountry, r.GeoRegion, r.GeoCity,
				strconv.FormatFloat(r.GeoLat, 'f', -1, 64),
				strconv.FormatFloat(r.GeoLon, 'f', -1, 64),
				r.CreatedAt.UTC().Format(time.RFC3339),
				r.UpdatedAt.UTC().Format(time.RFC3339),
				strconv.FormatFloat(r.DurationSeconds, 'f', 1, 64),
			}
		})
	default:
		return nil, "", fmt.Errorf("%w: unknown format %q", ErrBadExportQuery, format)
	}
}

func renderNDJSON(n int, row func(i int) interface{}) ([]byte, string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i := 0; i < n; i++ {
		if err := enc.Encode(row(i)); err != nil {
			return nil, "", err
		}
	}
	return buf.Bytes(), "application/x-ndjson", nil
}

func renderCSV(header []string, n int, row func(i int) []string) ([]byte, string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, "", err
	}
	for i := 0; i < n; i++ {
		if err := w.Write(row(i)); err != nil {
			return nil, "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), "text/csv", nil
}
