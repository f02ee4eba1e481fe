package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"portfolio-chat-be/internal/pkg/logger"
)

// GeoInfo is the subset of ip-api.com fields we keep.
type GeoInfo struct {
	City    string  `json:"city"`
	Region  string  `json:"regionName"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Isp     string  `json:"isp"`
}

type IGeoService interface {
	// Lookup resolves an IP to coarse location data. Private and unparsable
	// addresses return nil without error; lookups are always best-effort.
	Lookup(ctx context.Context, ip string) (*GeoInfo, error)
}

type geoService struct {
	httpClient *http.Client
	baseURL    string
	cache      sync.Map
	log        logger.ILogger
}

type cachedGeo struct {
	info      *GeoInfo
	expiresAt time.Time
}

const geoCacheTTL = 6 * time.Hour

func NewGeoService(log logger.ILogger) IGeoService {
	return &geoService{
		httpClient: &http.Client{Timeout: 3 * time.Second},
		baseURL:    "http://ip-api.com/json",
		log:        log,
	}
}

func (s *geoService) Lookup(ctx context.Context, ip string) (*GeoInfo, error) {
	parsed := net.ParseIP(ip)
	if parsed == nil || parsed.IsPrivate() || parsed.IsLoopback() || parsed.IsUnspecified() {
		return nil, nil
	}

	if val, ok := s.cache.Load(ip); ok {
		item := val.(cachedGeo)
		if time.Now().Before(item.expiresAt) {
			return item.info, nil
		}
		s.cache.Delete(ip)
	}

	url := fmt.Sprintf("%s/%s?fields=status,city,regionName,country,lat,lon,isp", s.baseURL, ip)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var result struct {
		Status string `json:"status"`
		GeoInfo
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}
	if result.Status != "success" {
		s.log.Debug("GeoService", "lookup returned no data", map[string]interface{}{"ip": ip})
		return nil, nil
	}

	info := result.GeoInfo
	s.cache.Store(ip, cachedGeo{info: &info, expiresAt: time.Now().Add(geoCacheTTL)})
	return &info, nil
}
