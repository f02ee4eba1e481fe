package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"portfolio-chat-be/internal/dto"
	"portfolio-chat-be/internal/model"
	"portfolio-chat-be/internal/repository/contract"
)

type fakeAnalyticsRepo struct {
	messages []contract.MessageExportRow
	sessions []contract.SessionExportRow

	lastSince time.Time
	lastLimit int
}

func (f *fakeAnalyticsRepo) UpsertSession(context.Context, *model.AnalyticsSession) error { return nil }
func (f *fakeAnalyticsRepo) InsertMessage(context.Context, *model.AnalyticsMessage) error { return nil }

func (f *fakeAnalyticsRepo) ExportMessages(_ context.Context, since time.Time, limit int) ([]contract.MessageExportRow, error) {
	f.lastSince, f.lastLimit = since, limit
	return f.messages, nil
}

func (f *fakeAnalyticsRepo) ExportSessions(_ context.Context, since time.Time, limit int) ([]contract.SessionExportRow, error) {
	f.lastSince, f.lastLimit = since, limit
	return f.sessions, nil
}

func TestExportMessagesNDJSON(t *testing.T) {
	repo := &fakeAnalyticsRepo{messages: []contract.MessageExportRow{
		{SessionId: "s1", Role: "user", Content: "hi", Timestamp: time.Now()},
		{SessionId: "s1", Role: "assistant", Content: "hello", Timestamp: time.Now(), ModelName: "m/one"},
	}}
	svc := NewAnalyticsService(repo)

	body, contentType, err := svc.Export(context.Background(), dto.AnalyticsExportQuery{})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if contentType != "application/x-ndjson" {
		t.Errorf("contentType = %q", contentType)
	}

	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	var row contract.MessageExportRow
	if err := json.Unmarshal([]byte(lines[1]), &row); err != nil {
		t.Fatalf("line 2 is not JSON: %v", err)
	}
	if row.ModelName != "m/one" {
		t.Errorf("ModelName = %q", row.ModelName)
	}
}

func TestExportSessionsCSV(t *testing.T) {
	created := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	repo := &fakeAnalyticsRepo{sessions: []contract.SessionExportRow{
		{
			SessionId:       "s1",
			IpPlain:         "1.2.3.4",
			GeoCountry:      "India",
			GeoRegion:       "Maharashtra",
			GeoCity:         "Mumbai",
			CreatedAt:       created,
			UpdatedAt:       created.Add(12500 * time.Millisecond),
			DurationSeconds: 12.5,
		},
	}}
	svc := NewAnalyticsService(repo)

	body, contentType, err := svc.Export(context.Background(), dto.AnalyticsExportQuery{
		Shape:  ExportShapeSessions,
		Format: ExportFormatCSV,
	})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if contentType != "text/csv" {
		t.Errorf("contentType = %q", contentType)
	}

	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want header + 1 row", len(lines))
	}
	for _, col := range []string{"session_id", "ip_plain", "geo_region", "geo_lat", "created_at", "updated_at", "duration_seconds"} {
		if !strings.Contains(lines[0], col) {
			t.Errorf("header %q missing %q", lines[0], col)
		}
	}
	for _, want := range []string{"12.5", "India", "Mumbai", "1.2.3.4", "2026-05-01T10:00:00Z"} {
		if !strings.Contains(lines[1], want) {
			t.Errorf("row %q missing %q", lines[1], want)
		}
	}
}

func TestExportMessagesCSVCarriesClientMeta(t *testing.T) {
	repo := &fakeAnalyticsRepo{messages: []contract.MessageExportRow{
		{
			SessionId:        "s1",
			Role:             "assistant",
			Content:          "hello",
			Timestamp:        time.Now(),
			RetrievedSources: []byte(`["resume.pdf"]`),
			Locale:           "en-IN",
			Timezone:         "Asia/Kolkata",
			PageUrl:          "https://example.com/about",
			Dnt:              "1",
		},
	}}
	svc := NewAnalyticsService(repo)

	body, _, err := svc.Export(context.Background(), dto.AnalyticsExportQuery{Format: ExportFormatCSV})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want header + 1 row", len(lines))
	}
	for _, col := range []string{"retrieved_sources", "locale", "timezone", "page_url", "dnt"} {
		if !strings.Contains(lines[0], col) {
			t.Errorf("header %q missing %q", lines[0], col)
		}
	}
	for _, want := range []string{"resume.pdf", "en-IN", "Asia/Kolkata", "https://example.com/about"} {
		if !strings.Contains(lines[1], want) {
			t.Errorf("row %q missing %q", lines[1], want)
		}
	}
}

func TestExportWindowDefaults(t *testing.T) {
	repo := &fakeAnalyticsRepo{}
	svc := NewAnalyticsService(repo)

	before := time.Now().UTC().AddDate(0, 0, -30)
	if _, _, err := svc.Export(context.Background(), dto.AnalyticsExportQuery{}); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if repo.lastLimit != 1000 {
		t.Errorf("limit = %d, want default 1000", repo.lastLimit)
	}
	if repo.lastSince.Before(before.Add(-time.Minute)) || repo.lastSince.After(time.Now()) {
		t.Errorf("since = %v, want ~30 days ago", repo.lastSince)
	}
}

func TestExportLimitClamped(t *testing.T) {
	repo := &fakeAnalyticsRepo{}
	svc := NewAnalyticsService(repo)

	if _, _, err := svc.Export(context.Background(), dto.AnalyticsExportQuery{Limit: 999999}); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if repo.lastLimit != 10000 {
		t.Errorf("limit = %d, want clamp to 10000", repo.lastLimit)
	}
}

func TestExportBadShape(t *testing.T) {
	svc := NewAnalyticsService(&fakeAnalyticsRepo{})

	_, _, err := svc.Export(context.Background(), dto.AnalyticsExportQuery{Shape: "bogus"})
	if !errors.Is(err, ErrBadExportQuery) {
		t.Errorf("err = %v, want ErrBadExportQuery", err)
	}

	_, _, err = svc.Export(context.Background(), dto.AnalyticsExportQuery{Format: "xml"})
	if !errors.Is(err, ErrBadExportQuery) {
		t.Errorf("err = %v, want ErrBadExportQuery", err)
	}
}

func TestHashIP(t *testing.T) {
	a := HashIP("1.2.3.4", "salt")
	b := HashIP("1.2.3.4", "salt")
	c := HashIP("1.2.3.4", "pepper")

	if a == "" || len(a) != 64 {
		t.Errorf("hash = %q, want 64 hex chars", a)
	}
	if a != b {
		t.Error("hash not deterministic")
	}
	if a == c {
		t.Error("salt has no effect")
	}
	if HashIP("", "salt") != "" {
		t.Error("empty IP must hash to empty string")
	}
}
